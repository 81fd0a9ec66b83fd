package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rogerio-castellano/eshop/internal/models"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageList     = "list"
	pageForm     = "form"
	pageNotFound = "not_found"
)

// Page titles.
const (
	TitleList   = "Product List"
	TitleCreate = "Create New Product"
	TitleEdit   = "Edit Product"
)

// StaticHandler serves the embedded stylesheet under /static/.
func (s *Server) StaticHandler() http.Handler {
	return http.FileServerFS(staticFS)
}

type pages struct {
	byName map[string]*template.Template
}

func parsePages() (*pages, error) {
	p := &pages{byName: map[string]*template.Template{}}
	for _, name := range []string{pageList, pageForm, pageNotFound} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

type listPage struct {
	Products []models.Product
}

type formPage struct {
	Title    string
	Action   string
	Name     string
	Quantity string
	Errors   []ProductValidationError
}

type notFoundPage struct {
	Message string
}

// render executes the page into a buffer first so a template error still
// produces a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.byName[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.lggr.Error("Could not render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.lggr.Warn("Failed to write page", zap.String("page", name), zap.Error(err))
	}
}

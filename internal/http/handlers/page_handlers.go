package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/eshop/internal/models"
	"github.com/rogerio-castellano/eshop/internal/repo"
	"go.uber.org/zap"
)

const listPath = "/product/list"

// maxFormBytes bounds urlencoded form bodies.
const maxFormBytes = 64 << 10

func (s *Server) HomeHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, listPath, http.StatusFound)
}

func (s *Server) ListPageHandler(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.GetAll(r.Context())
	if err != nil {
		s.lggr.Error("Could not fetch products", zap.Error(err))
		http.Error(w, "could not fetch products", http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, pageList, listPage{Products: products})
}

func (s *Server) CreatePageHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageForm, formPage{Title: TitleCreate, Action: "/product/create"})
}

// CreateSubmitHandler stores the submitted product and redirects to the list.
// Invalid input re-renders the form with 422 Unprocessable Entity.
func (s *Server) CreateSubmitHandler(w http.ResponseWriter, r *http.Request) {
	page := formPage{Title: TitleCreate, Action: "/product/create"}
	req, ok := s.readProductForm(w, r, &page)
	if !ok {
		return
	}

	now := timestamp()
	created, err := s.products.Create(r.Context(), models.Product{Name: req.Name, Quantity: req.Quantity, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		s.lggr.Error("Could not create product", zap.Error(err))
		http.Error(w, "could not create product", http.StatusInternalServerError)
		return
	}
	s.lggr.Info("Product created", zap.String("product_id", created.ID), zap.String("source", "form"))
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (s *Server) EditPageHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, http.StatusOK, pageForm, formPage{
		Title:    TitleEdit,
		Action:   "/product/edit/" + id,
		Name:     product.Name,
		Quantity: strconv.Itoa(product.Quantity),
	})
}

func (s *Server) EditSubmitHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.products.GetByID(r.Context(), id); err != nil {
		s.pageError(w, r, err)
		return
	}

	page := formPage{Title: TitleEdit, Action: "/product/edit/" + id}
	req, ok := s.readProductForm(w, r, &page)
	if !ok {
		return
	}

	if _, err := s.products.Update(r.Context(), models.Product{ID: id, Name: req.Name, Quantity: req.Quantity, UpdatedAt: timestamp()}); err != nil {
		s.pageError(w, r, err)
		return
	}
	s.lggr.Info("Product updated", zap.String("product_id", id), zap.String("source", "form"))
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (s *Server) DeleteSubmitHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.products.Delete(r.Context(), id); err != nil {
		s.pageError(w, r, err)
		return
	}
	s.lggr.Info("Product deleted", zap.String("product_id", id), zap.String("source", "form"))
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (s *Server) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, pageNotFound, notFoundPage{Message: "The page " + r.URL.Path + " does not exist."})
}

// readProductForm parses and validates the form. On failure it has already
// answered the request.
func (s *Server) readProductForm(w http.ResponseWriter, r *http.Request, page *formPage) (ProductRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return ProductRequest{}, false
	}

	page.Name = r.PostForm.Get("productName")
	page.Quantity = r.PostForm.Get("productQuantity")
	req, errs := parseProductForm(page.Name, page.Quantity)
	if len(errs) > 0 {
		page.Errors = errs
		s.render(w, http.StatusUnprocessableEntity, pageForm, *page)
		return ProductRequest{}, false
	}
	return req, true
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repo.ErrProductNotFound) {
		s.render(w, http.StatusNotFound, pageNotFound, notFoundPage{Message: "Product " + chi.URLParam(r, "id") + " was not found."})
		return
	}
	s.lggr.Error("Product operation failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

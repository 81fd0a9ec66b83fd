package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/eshop/docs"
	"github.com/rogerio-castellano/eshop/internal/auth"
	"github.com/rogerio-castellano/eshop/internal/http/handlers"
	mw "github.com/rogerio-castellano/eshop/internal/http/middleware"
	rl "github.com/rogerio-castellano/eshop/internal/http/rate_limiter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Options struct {
	Server *handlers.Server
	Issuer *auth.Issuer
	// Limiter is optional; nil disables rate limiting.
	Limiter *rl.Limiter
	Logger  *zap.Logger
}

func NewRouter(o Options) http.Handler {
	s := o.Server
	lggr := o.Logger
	if lggr == nil {
		lggr = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.AccessLog(lggr.Named("http")))
	r.Use(chimw.Recoverer)
	if o.Limiter != nil {
		r.Use(mw.RateLimitMiddleware(o.Limiter))
	}

	r.NotFound(s.NotFoundHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.HomeHandler)
	r.Handle("/static/*", s.StaticHandler())
	r.Route("/product", func(r chi.Router) {
		r.Get("/list", s.ListPageHandler)
		r.Get("/create", s.CreatePageHandler)
		r.Post("/create", s.CreateSubmitHandler)
		r.Get("/edit/{id}", s.EditPageHandler)
		r.Post("/edit/{id}", s.EditSubmitHandler)
		r.Post("/delete/{id}", s.DeleteSubmitHandler)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.LoginHandler)
		r.Get("/products", s.GetProductsHandler)
		r.Get("/products/{id}", s.GetProductByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(o.Issuer))
			r.Use(mw.RequireRole(auth.RoleAdmin))
			r.Post("/products", s.CreateProductHandler)
			r.Post("/products/import", s.ImportProductsHandler)
			r.Put("/products/{id}", s.UpdateProductHandler)
			r.Delete("/products/{id}", s.DeleteProductHandler)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	return r
}

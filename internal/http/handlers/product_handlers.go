package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/eshop/internal/models"
	"github.com/rogerio-castellano/eshop/internal/repo"
	"go.uber.org/zap"
)

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the catalogue
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 401 {string} string "Unauthorized"
// @Router /products [post]
func (s *Server) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	validationErrors := validateProduct(req)
	if len(validationErrors) > 0 {
		s.writeJSON(w, http.StatusBadRequest, validationErrors)
		return
	}

	now := timestamp()
	created, err := s.products.Create(r.Context(), models.Product{
		Name:      strings.TrimSpace(req.Name),
		Quantity:  req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.lggr.Error("Could not create product", zap.Error(err))
		http.Error(w, "could not create product", http.StatusInternalServerError)
		return
	}

	s.lggr.Info("Product created", zap.String("product_id", created.ID), zap.String("source", "api"))
	s.writeJSON(w, http.StatusCreated, toProductResponse(created))
}

// GetProductsHandler godoc
// @Summary List, filter and paginate products
// @Tags products
// @Produce json
// @Param name query string false "Filter by name"
// @Param minQty query int false "Minimum quantity"
// @Param maxQty query int false "Maximum quantity"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {string} string "Invalid query"
// @Failure 500 {string} string "Internal error"
// @Router /products [get]
func (s *Server) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repo.ProductFilter{Name: q.Get("name")}
	for param, dst := range map[string]**int{
		"minQty": &filter.MinQty,
		"maxQty": &filter.MaxQty,
		"offset": &filter.Offset,
		"limit":  &filter.Limit,
	} {
		v, err := parseIntPtr(q.Get(param))
		if err != nil {
			http.Error(w, param+" must be an integer", http.StatusBadRequest)
			return
		}
		*dst = v
	}

	if filter.Limit != nil && *filter.Limit <= 0 {
		http.Error(w, "limit must be greater than zero", http.StatusBadRequest)
		return
	}
	if filter.Offset != nil && *filter.Offset < 0 {
		http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
		return
	}

	products, total, err := s.products.Filter(r.Context(), filter)
	if err != nil {
		s.lggr.Error("Could not filter products", zap.Error(err))
		http.Error(w, "could not filter products", http.StatusInternalServerError)
		return
	}

	resp := ProductsSearchResult{
		Data: make([]ProductResponse, len(products)),
		Meta: Meta{TotalCount: total},
	}
	for i, p := range products {
		resp.Data[i] = toProductResponse(p)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [get]
func (s *Server) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := s.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.productError(w, "could not fetch product", err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [put]
// @Security BearerAuth
func (s *Server) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	validationErrors := validateProduct(req)
	if len(validationErrors) > 0 {
		s.writeJSON(w, http.StatusBadRequest, validationErrors)
		return
	}

	updated, err := s.products.Update(r.Context(), models.Product{
		ID:        chi.URLParam(r, "id"),
		Name:      strings.TrimSpace(req.Name),
		Quantity:  req.Quantity,
		UpdatedAt: timestamp(),
	})
	if err != nil {
		s.productError(w, "could not update product", err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponse(updated))
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Param id path string true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [delete]
// @Security BearerAuth
func (s *Server) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.products.Delete(r.Context(), id); err != nil {
		s.productError(w, "could not delete product", err)
		return
	}
	s.lggr.Info("Product deleted", zap.String("product_id", id), zap.String("source", "api"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) productError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, repo.ErrProductNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	s.lggr.Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		s.lggr.Warn("Failed to write JSON response", zap.Error(err))
	}
}

package repo

import (
	"context"
	"errors"

	"github.com/rogerio-castellano/eshop/internal/models"
)

// ErrProductNotFound is returned when a product is not found in the repository.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data operations.
//
// Product names are not unique: creating the same name twice stores two products.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id string) error
	Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error)
}

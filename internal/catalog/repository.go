package catalog

import (
	"context"
	"errors"

	"github.com/Abuxar/alif-luxury/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Repository is the boundary to the catalog store. Fulfillment is the only
// writer of inventory counts inside this process; admin edits happen through
// a different surface entirely.
type Repository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProducts(ctx context.Context, ids []string) ([]domain.Product, error)
	SaveProduct(ctx context.Context, product *domain.Product) error

	// DecrementInventory applies max(0, inventory_count - quantity) as a
	// single server-side update, so concurrent decrements of the same
	// product serialize in the store instead of racing read-modify-write.
	DecrementInventory(ctx context.Context, id string, quantity int) error
}

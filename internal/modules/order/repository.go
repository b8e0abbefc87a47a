package order

import (
	"context"

	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// Repository defines access to the order collection.
type Repository interface {
	// Search returns one page of orders for the query.
	Search(ctx context.Context, q browser.Query) (*gateway.Page[Order], error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id int64) (*Order, error)

	Create(ctx context.Context, req Request) (*Order, error)
	Update(ctx context.Context, id int64, req Request) (*Order, error)

	// UpdateStatus moves an order to a new lifecycle status.
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)

	Delete(ctx context.Context, id int64) error
	ExportURL(format string) string
}

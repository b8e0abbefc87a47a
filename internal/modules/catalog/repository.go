package catalog

import (
	"context"

	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// Repository defines access to the product collection.
type Repository interface {
	Search(ctx context.Context, q browser.Query) (*gateway.Page[Product], error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, req ProductRequest) (*Product, error)
	Update(ctx context.Context, id int64, req ProductRequest) (*Product, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) error
	LowStock(ctx context.Context, threshold int) (*LowStockReport, error)
	ExportURL(format string) string
}

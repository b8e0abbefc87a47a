package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	want := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == want {
			return st, nil
		}
	}
	return "", apperr.ValidationErr(
		fmt.Sprintf("Status %q must be one of PENDING, PROCESSING, SHIPPED, DELIVERED, CANCELLED.", s),
		map[string]string{"status": "invalid"},
	)
}

// Order is a customer order with its lines.
type Order struct {
	ID            int64     `json:"id"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	Status        Status    `json:"status"`
	Total         float64   `json:"total"`
	CreatedAt     time.Time `json:"createdAt"`
	Items         []Item    `json:"items,omitempty"`
}

// Item is one line of an order as the server priced it.
type Item struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

// ItemRequest is a line of a create or update payload. Prices are never
// sent; the server prices every line.
type ItemRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=1"`
}

// Request is the create/update payload. Status is only sent on update.
type Request struct {
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Status        Status        `json:"status,omitempty"`
	Items         []ItemRequest `json:"items" validate:"dive"`
}

// Export formats offered by the API.
var ExportFormats = []string{"csv", "excel", "pdf"}

package catalog

import (
	"encoding/json"
	"strings"
)

// Severity is the server's stock urgency rating for a product.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityUnknown  Severity = "UNKNOWN"
)

// UnmarshalJSON reads anything missing or unrecognised as UNKNOWN.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		*s = SeverityUnknown
		return nil
	}
	switch v := Severity(strings.ToUpper(*raw)); v {
	case SeverityCritical, SeverityLow, SeverityMedium:
		*s = v
	default:
		*s = SeverityUnknown
	}
	return nil
}

func (s Severity) String() string {
	if s == "" {
		return string(SeverityUnknown)
	}
	return string(s)
}

// Product is an inventory item as the API returns it.
type Product struct {
	ID                int64    `json:"id"`
	SKU               string   `json:"sku,omitempty"`
	Name              string   `json:"name"`
	Category          string   `json:"category,omitempty"`
	Brand             string   `json:"brand,omitempty"`
	Stock             int      `json:"stock"`
	Price             float64  `json:"price"`
	ReorderLevel      *int     `json:"reorderLevel,omitempty"`
	Severity          Severity `json:"severity,omitempty"`
	ReorderFlag       bool     `json:"reorderFlag"`
	ReorderSuggestion *int     `json:"reorderSuggestion,omitempty"`
}

// ProductRequest is the create/update payload.
type ProductRequest struct {
	SKU          string  `json:"sku,omitempty"`
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	Stock        int     `json:"stock" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	ReorderLevel int     `json:"reorderLevel" validate:"gte=0"`
}

// DefaultReorderLevel is used when a new product names none.
const DefaultReorderLevel = 5

// RequestFrom copies the editable fields of p into a request.
func RequestFrom(p *Product) ProductRequest {
	req := ProductRequest{
		SKU:          p.SKU,
		Name:         p.Name,
		Category:     p.Category,
		Brand:        p.Brand,
		Stock:        p.Stock,
		Price:        p.Price,
		ReorderLevel: DefaultReorderLevel,
	}
	if p.ReorderLevel != nil {
		req.ReorderLevel = *p.ReorderLevel
	}
	return req
}

// LowStockReport lists products at or below a stock threshold.
type LowStockReport struct {
	Threshold int       `json:"threshold"`
	Count     int       `json:"count"`
	Items     []Product `json:"items"`
}

// Export formats offered by the API.
var ExportFormats = []string{"csv", "excel", "pdf"}

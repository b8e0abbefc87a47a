package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

// Shape tags which form a list response arrived in.
type Shape int

const (
	// ShapeUnknown is a body that is neither form; it reads as an empty page.
	ShapeUnknown Shape = iota
	// ShapeEnvelope is {"content": [...], "totalElements": n, "totalPages": n}.
	ShapeEnvelope
	// ShapeFlat is a bare JSON array.
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeEnvelope:
		return "envelope"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Page is the one list shape every consumer sees, whatever the server sent.
type Page[T any] struct {
	Items         []T
	TotalElements int64
	TotalPages    int
	Shape         Shape
}

// DecodePage normalises a list response. page and pageSize only matter for a
// flat response: the server sent the whole collection, so the requested page
// is cut out of it here.
func DecodePage[T any](raw []byte, page, pageSize int) (*Page[T], error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("list response is not valid JSON")
	}
	doc := gjson.ParseBytes(raw)

	switch {
	case doc.IsArray():
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		total := len(items)
		pages := 1
		if pageSize > 0 && total > 0 {
			pages = (total + pageSize - 1) / pageSize
			items = window(items, page, pageSize)
		}
		return &Page[T]{Items: items, TotalElements: int64(total), TotalPages: pages, Shape: ShapeFlat}, nil

	case doc.IsObject() && doc.Get("content").Exists():
		var items []T
		if content := doc.Get("content"); content.IsArray() {
			if err := json.Unmarshal([]byte(content.Raw), &items); err != nil {
				return nil, fmt.Errorf("decode page content: %w", err)
			}
		}
		total := int64(len(items))
		if v := doc.Get("totalElements"); v.Exists() {
			total = v.Int()
		}
		pages := int(doc.Get("totalPages").Int())
		if pages < 1 {
			pages = 1
		}
		return &Page[T]{Items: items, TotalElements: total, TotalPages: pages, Shape: ShapeEnvelope}, nil
	}

	return &Page[T]{TotalPages: 1, Shape: ShapeUnknown}, nil
}

// window returns items[page*size : (page+1)*size], clamped to the slice.
func window[T any](items []T, page, size int) []T {
	if page < 0 {
		page = 0
	}
	lo := page * size
	if lo >= len(items) {
		return []T{}
	}
	return items[lo:min(lo+size, len(items))]
}

// GetPage fetches a collection and normalises the response. Methods cannot be
// generic, hence the free function.
func GetPage[T any](ctx context.Context, g *Gateway, path string, query url.Values, page, pageSize int) (*Page[T], error) {
	raw, err := g.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodePage[T](raw, page, pageSize)
	if err != nil {
		return nil, apperr.TransportErr(err)
	}
	return out, nil
}

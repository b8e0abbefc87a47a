package browser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc in any case; empty means asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", apperr.ValidationErr(fmt.Sprintf("Sort direction %q must be asc or desc.", s), nil)
}

// SortSpec is the structured sort control.
type SortSpec struct {
	Field     string
	Direction Direction
}

// ParseSortText reads a free-text sort string: "price,desc", "-price" or
// "price". It returns nil for blank input.
func ParseSortText(text string) *SortSpec {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if field, dir, ok := strings.Cut(text, ","); ok {
		d := Asc
		if strings.EqualFold(strings.TrimSpace(dir), "desc") {
			d = Desc
		}
		return &SortSpec{Field: strings.TrimSpace(field), Direction: d}
	}
	if strings.HasPrefix(text, "-") {
		return &SortSpec{Field: strings.TrimPrefix(text, "-"), Direction: Desc}
	}
	return &SortSpec{Field: text, Direction: Asc}
}

// Query is one fully built list request.
type Query struct {
	Page     int
	Size     int
	Filter   FilterSpec
	Sort     *SortSpec
	SortText string
}

// EffectiveSort is the sort in force, whichever control set it.
func (q Query) EffectiveSort() *SortSpec {
	if q.SortText != "" {
		return ParseSortText(q.SortText)
	}
	return q.Sort
}

// SortParam encodes the sort for the products API: the free text verbatim, or
// "-field" for descending and "field" for ascending.
func (q Query) SortParam() string {
	if q.SortText != "" {
		return q.SortText
	}
	if q.Sort == nil || q.Sort.Field == "" {
		return ""
	}
	if q.Sort.Direction == Desc {
		return "-" + q.Sort.Field
	}
	return q.Sort.Field
}

// BaseValues encodes paging and filters. Unset filters are omitted.
func (q Query) BaseValues() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	for key, value := range q.Filter {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

// Values encodes the query the way the products API expects it.
func (q Query) Values() url.Values {
	v := q.BaseValues()
	if s := q.SortParam(); s != "" {
		v.Set("sort", s)
	}
	return v
}

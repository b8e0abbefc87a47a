package browser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

// Filter keys understood by the collections.
const (
	KeyQuery         = "q"
	KeyMinPrice      = "minPrice"
	KeyMaxPrice      = "maxPrice"
	KeyMinStock      = "minStock"
	KeyMaxStock      = "maxStock"
	KeyCategory      = "category"
	KeyCustomerName  = "customerName"
	KeyMinTotal      = "minTotal"
	KeyMaxTotal      = "maxTotal"
	KeyCreatedAfter  = "createdAfter"
	KeyCreatedBefore = "createdBefore"
)

type keyKind int

const (
	kindText keyKind = iota
	kindNumeric
	kindExact
)

var filterKeys = map[string]keyKind{
	KeyQuery:         kindText,
	KeyCustomerName:  kindText,
	KeyMinPrice:      kindNumeric,
	KeyMaxPrice:      kindNumeric,
	KeyMinStock:      kindNumeric,
	KeyMaxStock:      kindNumeric,
	KeyMinTotal:      kindNumeric,
	KeyMaxTotal:      kindNumeric,
	KeyCategory:      kindExact,
	KeyCreatedAfter:  kindExact,
	KeyCreatedBefore: kindExact,
}

// IsFreeText reports whether edits to key are debounced.
func IsFreeText(key string) bool {
	kind, ok := filterKeys[key]
	return ok && kind == kindText
}

// FilterSpec holds the active filters. Absent keys are unfiltered; a key is
// never present with an empty value.
type FilterSpec map[string]string

// Set validates and applies one edit. An empty value removes the key.
func (f FilterSpec) Set(key, value string) error {
	kind, ok := filterKeys[key]
	if !ok {
		return apperr.ValidationErr(fmt.Sprintf("Unknown filter %q.", key), map[string]string{key: "unknown filter"})
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(f, key)
		return nil
	}
	if kind == kindNumeric {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return apperr.ValidationErr(fmt.Sprintf("%s must be a number.", key), map[string]string{key: "must be a number"})
		}
	}
	f[key] = value
	return nil
}

func (f FilterSpec) clone() FilterSpec {
	out := make(FilterSpec, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the active keys in sorted order.
func (f FilterSpec) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

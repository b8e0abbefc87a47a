// Package validation checks request structs before they are dispatched and
// turns failures into apperr validation errors.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

type FieldErrors map[string]string

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Report fields under their JSON names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v. The returned error is an *apperr.Error of kind
// Validation whose public message is the first failing field's message.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.ValidationErr("The submitted data is invalid.", FieldErrors{"_": err.Error()})
	}

	fields := FieldErrors{}
	first := ""
	for _, fe := range ve {
		msg := messageForTag(label(fe.StructField()), fe.Tag(), fe.Param())
		fields[fe.Field()] = msg
		if first == "" {
			first = msg
		}
	}
	return apperr.ValidationErr(first, fields)
}

func messageForTag(label, tag, param string) string {
	switch tag {
	case "required":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "gte", "min":
		if param == "0" {
			return label + " cannot be negative"
		}
		return label + " must be at least " + param
	case "gt":
		return label + " must be greater than " + param
	case "oneof":
		return label + " must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		return label + " is invalid"
	}
}

// label turns "ReorderLevel" into "Reorder level" and "ProductID" into
// "Product id".
func label(field string) string {
	var b strings.Builder
	prevLower := false
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			if prevLower {
				b.WriteRune(' ')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r)
	}
	return b.String()
}

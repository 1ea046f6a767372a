// Package validation validates model attributes and reports failures as
// field/message pairs.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// Error is returned when one or more fields are invalid.
type Error struct {
	Fields []FieldError
}

// Errorf returns an Error for a single field.
func Errorf(field, format string, args ...any) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Status returns the HTTP status code for a validation failure.
func (e *Error) Status() int {
	return http.StatusUnprocessableEntity
}

// Details returns the field errors grouped by field name.
func (e *Error) Details() any {
	details := make(map[string][]string)
	for _, f := range e.Fields {
		details[f.Field] = append(details[f.Field], f.Message)
	}
	return details
}

// Has reports whether field is among the invalid fields.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validator wraps go-playground/validator, naming fields by their json tag.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		default:
			return name
		}
	})
	return &Validator{v: v}
}

// Struct validates s and returns an *Error describing every invalid field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	verr := new(Error)
	for _, e := range errs {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   e.Field(),
			Message: message(e),
		})
	}
	sort.SliceStable(verr.Fields, func(i, j int) bool {
		return verr.Fields[i].Field < verr.Fields[j].Field
	})
	return verr
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "can't be blank"
	case "max":
		return fmt.Sprintf("should be at most %s character(s)", e.Param())
	case "min":
		return fmt.Sprintf("should be at least %s character(s)", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "hexcolor":
		return "must be a hex color"
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "is invalid"
	}
}

package lib

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(fld.Name)
	})
	return v
}

// FieldError represents a clean validation error for APIs
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a structured validation error
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// HasField reports whether field failed validation.
func (e *ValidationError) HasField(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Notice renders the field errors as a single sentence for the shopper.
func (e *ValidationError) Notice() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	if len(parts) == 0 {
		return "Please check the form and try again."
	}
	return "Please check the form: " + strings.Join(parts, "; ") + "."
}

// ExtractAndValidateBody extracts and validates the request body into the provided struct type T
func ExtractAndValidateBody[T any](r *http.Request) (*T, error) {
	defer r.Body.Close()

	var body T

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&body); err != nil {
		return nil, err
	}

	if err := Validate(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

// ExtractAndValidateForm binds an urlencoded or multipart form into T using
// `form` tags, then validates it. Supported field kinds are strings and
// integers; a value that does not parse is reported as a field error.
func ExtractAndValidateForm[T any](r *http.Request) (*T, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	var body T
	rv := reflect.ValueOf(&body).Elem()
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("form target must be a struct, got %s", rv.Kind())
	}

	bindErr := &ValidationError{}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := field.Tag.Get("form")
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}

		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			continue
		}

		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.String:
			// passwords keep their whitespace
			fv.SetString(r.PostForm.Get(name))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
			if err != nil {
				bindErr.Errors = append(bindErr.Errors, FieldError{Field: name, Message: "must be a whole number"})
				continue
			}
			fv.SetInt(n)
		default:
			return nil, fmt.Errorf("unsupported form field kind %s for %s", fv.Kind(), name)
		}
	}

	if len(bindErr.Errors) > 0 {
		return nil, bindErr
	}

	if err := Validate(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

// Validate runs the struct validation tags and maps failures to a
// *ValidationError.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return mapValidationErrors(ve)
		}
		return err
	}
	return nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func mapValidationErrors(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{}

	for _, e := range errs {
		numeric := isNumericKind(e.Kind())

		var message string
		switch e.Tag() {
		case "required":
			message = "is required"
		case "email":
			message = "must be a valid email address"
		case "min":
			if numeric {
				message = "must be at least " + e.Param()
			} else {
				message = "must be at least " + e.Param() + " characters"
			}
		case "max":
			if numeric {
				message = "must be at most " + e.Param()
			} else {
				message = "must be at most " + e.Param() + " characters"
			}
		case "gt":
			message = "must be greater than " + e.Param()
		case "gte":
			message = "must be greater than or equal to " + e.Param()
		case "lte":
			message = "must be less than or equal to " + e.Param()
		case "eqfield":
			message = "must match"
		case "oneof":
			message = "must be one of: " + e.Param()
		default:
			message = "is invalid"
		}

		out.Errors = append(out.Errors, FieldError{
			Field:   e.Field(),
			Message: message,
		})
	}

	return out
}

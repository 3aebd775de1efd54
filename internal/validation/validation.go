// Package validation checks decoded request bodies against the rules
// declared in their `validate` struct tags.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// userNamePattern matches email-shaped usernames.
var userNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is the list of failures for one input.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return userNamePattern.MatchString(fl.Field().String())
	})

	return v
}

// Struct validates v and returns Errors listing every failed rule.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// Decode reads a single JSON object from r into dst, rejecting unknown
// fields, then validates it.
func Decode(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return Errors{decodeError(err)}
	}
	if dec.More() {
		return Errors{{Rule: "json", Message: "body must contain a single JSON object"}}
	}
	return Struct(dst)
}

// DecodeBytes is Decode over an in-memory body.
func DecodeBytes(body []byte, dst any) error {
	return Decode(bytes.NewReader(body), dst)
}

func decodeError(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return FieldError{Rule: "required", Message: "request body is required"}
	case errors.As(err, &typeErr):
		return FieldError{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type),
		}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return FieldError{
			Field:   field,
			Rule:    "additionalProperties",
			Message: fmt.Sprintf("%s is not allowed", field),
		}
	default:
		return FieldError{Rule: "json", Message: "malformed JSON: " + err.Error()}
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "username":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

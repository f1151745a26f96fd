package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Bind decodes the request arguments into T and validates it with the
// `validate` struct tags. Errors name the offending argument by its JSON name.
func Bind[T any](req mcp.CallToolRequest) (T, error) {
	var out T

	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return out, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, fmt.Errorf("argument %q must be of type %s", typeErr.Field, typeErr.Type)
		}
		return out, fmt.Errorf("decode arguments: %w", err)
	}

	if err := validate.Struct(out); err != nil {
		return out, describeValidation(err)
	}
	return out, nil
}

func describeValidation(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("missing required argument %q", fe.Field())
	case "oneof":
		return fmt.Errorf("argument %q must be one of [%s]", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Errorf("argument %q must contain at least %s item(s)", fe.Field(), fe.Param())
		}
		return fmt.Errorf("argument %q must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("argument %q failed %q validation", fe.Field(), fe.Tag())
	}
}

// OrDefault returns value, or fallback when value is empty.
func OrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Text returns the first text content of a result.
func Text(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if t, ok := mcp.AsTextContent(c); ok {
			return t.Text
		}
	}
	return ""
}

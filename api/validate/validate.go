/* validate.go
 * Contains the single validation pass that every API response goes through: shape check against a Schema, decode
 * into the tagged record types, then struct constraint checks
 */

package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator runs the shape and struct checks. It is safe for concurrent use
type Validator struct {
	structs *validator.Validate
	strict  bool
}

// New creates a Validator. When strict is true, keys that a schema does not name are validation failures rather
// than entries in the Report
func New(strict bool) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the names they have in the JSON document
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Compare decimals as floats so numeric constraints such as gte work on them
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return &Validator{structs: v, strict: strict}
}

var defaultValidator = New(false)

// Struct runs the struct constraint checks on a value using the default validator
func Struct(value any) error {
	return defaultValidator.Struct(value)
}

// Decode checks body against schema and decodes it into out, which must be a pointer
// Preconditions: Receives the raw response body, the schema it must match and a pointer to the destination record
// Postconditions: Populates out and returns a Report, or returns a *ValidationError listing every issue found
func (v *Validator) Decode(body []byte, schema *Schema, out any) (Report, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Report{}, newValidationError(Issue{Problem: "empty response body"})
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return Report{}, newValidationError(Issue{Problem: fmt.Sprintf("malformed JSON: %v", err)})
	}

	issues, unknown := schema.Check(raw)
	report := Report{UnknownKeys: unknown}
	if v.strict {
		for _, path := range unknown {
			issues = append(issues, Issue{Path: path, Problem: "unexpected key"})
		}
	}
	if len(issues) > 0 {
		return report, newValidationError(issues...)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return report, newValidationError(Issue{Problem: fmt.Sprintf("decoding into %T: %v", out, err)})
	}

	if issues := v.structIssues(reflect.ValueOf(out), ""); len(issues) > 0 {
		return report, newValidationError(issues...)
	}
	return report, nil
}

// Struct runs the struct constraint checks on a single struct value
func (v *Validator) Struct(value any) error {
	if issues := v.structIssues(reflect.ValueOf(value), ""); len(issues) > 0 {
		return newValidationError(issues...)
	}
	return nil
}

// structIssues validates a struct, or each struct in a slice, and converts constraint failures into issues
func (v *Validator) structIssues(value reflect.Value, prefix string) []Issue {
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		var issues []Issue
		for i := 0; i < value.Len(); i++ {
			issues = append(issues, v.structIssues(value.Index(i), fmt.Sprintf("%s[%d]", prefix, i))...)
		}
		return issues

	case reflect.Struct:
		err := v.structs.Struct(value.Interface())
		if err == nil {
			return nil
		}
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return []Issue{{Path: prefix, Problem: err.Error()}}
		}
		issues := make([]Issue, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			issues = append(issues, Issue{
				Path:    fieldPath(prefix, fe.Namespace()),
				Problem: constraintProblem(fe),
			})
		}
		return issues
	}
	return nil
}

// fieldPath drops the struct type name that leads every namespace, e.g. "LeaderboardEntry.rank.public"
func fieldPath(prefix, namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}
	if prefix == "" {
		return rest
	}
	if strings.HasPrefix(rest, "[") {
		return prefix + rest
	}
	return prefix + "." + rest
}

func constraintProblem(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
	return fmt.Sprintf("failed %q constraint", fe.Tag()+"="+fe.Param())
}

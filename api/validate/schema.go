/* schema.go
 * Contains the Schema type which describes the expected shape of a decoded JSON value, and the walk that checks a
 * value against it. The walk records every problem it finds instead of stopping at the first one
 */

package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"numerai-bot/api/shared"

	"github.com/shopspring/decimal"
)

// Kind is the semantic type expected at a position in a JSON document
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumericString // a string holding a plain decimal number, e.g. "0.6931"
	KindInteger
	KindNumber // a JSON number or a numeric string
	KindTimestamp
	KindArray
	KindObject
)

// numericString is the pattern used by the "numeric" struct tag
var numericString = regexp.MustCompile(`^[-+]?[0-9]+(?:\.[0-9]+)?$`)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumericString:
		return "numeric string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "any"
	}
}

// Schema describes one position in a JSON document. Objects list their required keys in Keys and keys that are
// checked only when present in Optional. Keys outside both are reported as unknown unless the object is Open
type Schema struct {
	Kind     Kind
	Keys     map[string]*Schema
	Optional map[string]*Schema
	Items    *Schema
	Open     bool
	Nullable bool
	MaxItems int // 0 means no limit
}

func Any() *Schema           { return &Schema{Kind: KindAny} }
func String() *Schema        { return &Schema{Kind: KindString} }
func NumericString() *Schema { return &Schema{Kind: KindNumericString} }
func Integer() *Schema       { return &Schema{Kind: KindInteger} }
func Number() *Schema        { return &Schema{Kind: KindNumber} }
func Timestamp() *Schema     { return &Schema{Kind: KindTimestamp} }

// Array returns a schema for an array whose every item matches items
func Array(items *Schema) *Schema {
	return &Schema{Kind: KindArray, Items: items}
}

// Object returns a closed object schema with the given required keys
func Object(keys map[string]*Schema) *Schema {
	return &Schema{Kind: KindObject, Keys: keys}
}

// WithOptional adds keys that are type checked only when they are present
func (s *Schema) WithOptional(keys map[string]*Schema) *Schema {
	s.Optional = keys
	return s
}

// AllowExtra marks an object as open, its unlisted keys are expected and not reported
func (s *Schema) AllowExtra() *Schema {
	s.Open = true
	return s
}

// AllowNull accepts a JSON null in place of the value
func (s *Schema) AllowNull() *Schema {
	s.Nullable = true
	return s
}

// AtMost limits the length of an array
func (s *Schema) AtMost(n int) *Schema {
	s.MaxItems = n
	return s
}

// Report lists what a successful check noticed without failing on it
type Report struct {
	UnknownKeys []string
}

type checker struct {
	issues  []Issue
	unknown []string
}

func (c *checker) fail(path string, format string, args ...any) {
	c.issues = append(c.issues, Issue{Path: path, Problem: fmt.Sprintf(format, args...)})
}

// Check walks value against the schema. The value must come from a decoder with UseNumber set
// Preconditions: Receives a decoded JSON value (map[string]any, []any, json.Number, string, bool or nil)
// Postconditions: Returns the issues found and the paths of unknown keys
func (s *Schema) Check(value any) ([]Issue, []string) {
	c := &checker{}
	s.check(value, "", c)
	return c.issues, c.unknown
}

func (s *Schema) check(value any, path string, c *checker) {
	if value == nil {
		if !s.Nullable && s.Kind != KindAny {
			c.fail(path, "expected %s, got null", s.Kind)
		}
		return
	}

	switch s.Kind {
	case KindAny:
		return

	case KindString:
		if _, ok := value.(string); !ok {
			c.fail(path, "expected string, got %s", jsonType(value))
		}

	case KindNumericString:
		str, ok := value.(string)
		if !ok {
			c.fail(path, "expected numeric string, got %s", jsonType(value))
			return
		}
		if !numericString.MatchString(str) {
			c.fail(path, "expected numeric string, got %q", str)
		}

	case KindInteger:
		num, ok := value.(json.Number)
		if !ok {
			c.fail(path, "expected integer, got %s", jsonType(value))
			return
		}
		if _, err := num.Int64(); err != nil {
			c.fail(path, "expected integer, got %s", num.String())
		}

	case KindNumber:
		switch v := value.(type) {
		case json.Number:
			return
		case string:
			if _, err := decimal.NewFromString(v); err != nil {
				c.fail(path, "expected number, got %q", v)
			}
		default:
			c.fail(path, "expected number, got %s", jsonType(value))
		}

	case KindTimestamp:
		str, ok := value.(string)
		if !ok {
			c.fail(path, "expected timestamp, got %s", jsonType(value))
			return
		}
		if _, err := shared.ParseTimestamp(str); err != nil {
			c.fail(path, "expected timestamp, got %q", str)
		}

	case KindArray:
		items, ok := value.([]any)
		if !ok {
			c.fail(path, "expected array, got %s", jsonType(value))
			return
		}
		if s.MaxItems > 0 && len(items) > s.MaxItems {
			c.fail(path, "expected at most %d items, got %d", s.MaxItems, len(items))
		}
		if s.Items == nil {
			return
		}
		for i, item := range items {
			s.Items.check(item, fmt.Sprintf("%s[%d]", path, i), c)
		}

	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			c.fail(path, "expected object, got %s", jsonType(value))
			return
		}
		s.checkObject(obj, path, c)
	}
}

func (s *Schema) checkObject(obj map[string]any, path string, c *checker) {
	// Walk keys in sorted order so issues come out the same way every time
	for _, key := range sortedKeys(s.Keys) {
		child, ok := obj[key]
		if !ok {
			c.fail(joinKey(path, key), "missing required key")
			continue
		}
		s.Keys[key].check(child, joinKey(path, key), c)
	}
	for _, key := range sortedKeys(s.Optional) {
		if child, ok := obj[key]; ok {
			s.Optional[key].check(child, joinKey(path, key), c)
		}
	}
	if s.Open {
		return
	}
	for _, key := range sortedKeys(obj) {
		_, required := s.Keys[key]
		_, optional := s.Optional[key]
		if !required && !optional {
			c.unknown = append(c.unknown, joinKey(path, key))
		}
	}
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

package schema

import (
	"fmt"
	"reflect"
)

// Type describes the value type declared on a port or a config field.
// Implementations validate runtime values and supply the default (zero)
// value used when a pull resolves to nothing.
type Type interface {
	// Name returns the canonical name of the type (e.g. "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Zero returns the default value for the type.
	Zero() any
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }
func (t *StringType) Zero() any    { return "" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }
func (t *IntType) Zero() any    { return 0 }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Whole-number floats are accepted; JSON unmarshals every number as float64.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }
func (t *FloatType) Zero() any    { return 0.0 }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }
func (t *BoolType) Zero() any    { return false }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// AnyType accepts every value. It is the declared type of untyped ports.
type AnyType struct{}

func (t *AnyType) Name() string           { return "any" }
func (t *AnyType) Zero() any              { return nil }
func (t *AnyType) Validate(value any) error { return nil }

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Zero() any { return nil }

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elemType.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Elem returns the element type of the slice.
func (t *SliceType) Elem() Type { return t.elemType }

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	zero     any
	validate func(any) error
}

func (t *CustomType) Name() string           { return t.name }
func (t *CustomType) Zero() any              { return t.zero }
func (t *CustomType) Validate(value any) error { return t.validate(value) }

// --- Factory Functions ---

// String creates a string type.
func String() Type { return &StringType{} }

// Int creates an integer type.
func Int() Type { return &IntType{} }

// Float creates a float type.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// Any creates a type that accepts every value.
func Any() Type { return &AnyType{} }

// Slice creates a slice type for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a type with a user-defined validation function and zero value.
func Custom(name string, zero any, validate func(any) error) Type {
	return &CustomType{name: name, zero: zero, validate: validate}
}

// ParseType converts a type name to a Type.
// Supports the built-in names plus slice notation: "[string]", "[int]", etc.
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "any", "":
		return Any(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// MustType is ParseType that panics on failure. Intended for static
// declarations where the name is a compile-time constant.
func MustType(typeStr string) Type {
	t, err := ParseType(typeStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTypeMap converts a map of field names to type names into a Schema.
// Example: {"value": "int", "tags": "[string]"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

// Assignable reports whether a value of type src can feed a slot declared
// as dst. Identical names are always assignable; "any" accepts everything;
// ints widen to floats.
func Assignable(src, dst Type) bool {
	if src == nil || dst == nil {
		return src == dst
	}
	if dst.Name() == "any" || src.Name() == "any" {
		return true
	}
	if src.Name() == dst.Name() {
		return true
	}
	return src.Name() == "int" && dst.Name() == "float"
}

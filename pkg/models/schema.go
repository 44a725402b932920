package models

// FieldType represents the declared type of a schema field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeObject  FieldType = "object"
	FieldTypeArray   FieldType = "array"
	FieldTypeNull    FieldType = "null"

	// FieldTypeUnknown is the static type of data coming from a schema-less
	// source. It never appears on the wire.
	FieldTypeUnknown FieldType = ""
)

// SchemaField is one node of a typed field tree. It describes both a block's
// declared input/output shape and a connector's published contract.
type SchemaField struct {
	Name       string         `json:"name"                 validate:"required"`
	Type       FieldType      `json:"type"`
	Optional   bool           `json:"optional,omitempty"`
	Default    any            `json:"default,omitempty"`
	Of         FieldType      `json:"of,omitempty"` // element type for scalar arrays
	Properties []*SchemaField `json:"properties,omitempty"`
}

// Property returns the child field with the given name, or nil.
func (f *SchemaField) Property(name string) *SchemaField {
	for _, p := range f.Properties {
		if p.Name == name {
			return p
		}
	}

	return nil
}

// ElementSchema returns the schema describing one element of an array field.
// Arrays of scalars declare the element type in "of"; arrays of objects carry
// the element's fields in "properties".
func (f *SchemaField) ElementSchema() *SchemaField {
	if f.Type != FieldTypeArray {
		return nil
	}

	if f.Of != "" && f.Of != FieldTypeObject {
		return &SchemaField{Name: f.Name, Type: f.Of}
	}

	return &SchemaField{Name: f.Name, Type: FieldTypeObject, Properties: f.Properties}
}

// FieldByName finds a field in a schema list (an object root), or nil.
func FieldByName(fields []*SchemaField, name string) *SchemaField {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// TypeOfLiteral maps a decoded JSON value onto the schema type system.
func TypeOfLiteral(v any) FieldType {
	switch val := v.(type) {
	case nil:
		return FieldTypeNull
	case bool:
		return FieldTypeBoolean
	case string:
		return FieldTypeString
	case float64:
		// encoding/json decodes every number as float64.
		if val == float64(int64(val)) {
			return FieldTypeInteger
		}

		return FieldTypeNumber
	case int, int64:
		return FieldTypeInteger
	case map[string]any:
		return FieldTypeObject
	case []any:
		return FieldTypeArray
	default:
		return FieldTypeUnknown
	}
}

// TypeCompatible reports whether a literal of type got can populate a field
// declared as want. Integers satisfy number fields; null satisfies optional
// fields of any type, which the caller decides.
func TypeCompatible(want, got FieldType) bool {
	if want == FieldTypeUnknown || got == FieldTypeUnknown {
		return true
	}

	if want == got {
		return true
	}

	return want == FieldTypeNumber && got == FieldTypeInteger
}

package models

// InputKind is the closed set of cases every downstream component switches on
// when walking a block's input.
type InputKind int

const (
	InputLiteral InputKind = iota
	InputReference
	InputFormula
	InputText
	InputObject
	InputArray
)

func (k InputKind) String() string {
	switch k {
	case InputLiteral:
		return "literal"
	case InputReference:
		return "reference"
	case InputFormula:
		return "formula"
	case InputText:
		return "text"
	case InputObject:
		return "object"
	case InputArray:
		return "array"
	default:
		return "invalid"
	}
}

// InputValue is the tagged-variant form of a block's raw input value graph.
// The tree builder constructs it once so no later component re-inspects raw
// JSON.
type InputValue struct {
	Kind InputKind

	Literal any            // InputLiteral: the scalar value
	Raw     string         // InputReference (dotted), InputFormula, InputText: the raw leaf text
	RefObj  map[string]any // InputReference (structured): the raw object form

	Keys   []string               // InputObject: field names in deterministic order
	Fields map[string]*InputValue // InputObject
	Items  []*InputValue          // InputArray
}

// SourceKey is the reserved input field declaring the source array of an
// array-shaped mapping. Current-item path markers are only meaningful under
// one of these declarations.
const SourceKey = "____source"

// Field returns the named child of an object value, or nil.
func (v *InputValue) Field(name string) *InputValue {
	if v == nil || v.Kind != InputObject {
		return nil
	}

	return v.Fields[name]
}

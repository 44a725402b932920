package models

import "fmt"

// Severity of a validation issue. Errors fail the run; warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueCode is the closed taxonomy of validation defects.
type IssueCode string

const (
	CodeInvalidDocument      IssueCode = "invalid_document"
	CodeInvalidMetadata      IssueCode = "invalid_metadata"
	CodeDuplicateIdentifier  IssueCode = "duplicate_identifier"
	CodeMalformedReference   IssueCode = "malformed_reference"
	CodeUnresolvedReference  IssueCode = "unresolved_reference"
	CodeOutOfScopeReference  IssueCode = "out_of_scope_reference"
	CodeForwardReference     IssueCode = "forward_reference"
	CodeSchemaPathNotFound   IssueCode = "schema_path_not_found"
	CodeUnboundCurrentItem   IssueCode = "unbound_current_item"
	CodeUnverifiedReference  IssueCode = "unverified_reference"
	CodeFormulaSyntaxError   IssueCode = "formula_syntax_error"
	CodeDisallowedMethod     IssueCode = "disallowed_method"
	CodeArityMismatch        IssueCode = "arity_mismatch"
	CodeUnknownField         IssueCode = "unknown_field"
	CodeMissingRequiredField IssueCode = "missing_required_field"
	CodeTypeMismatch         IssueCode = "type_mismatch"
	CodeSchemaUnavailable    IssueCode = "schema_unavailable"
)

// warningCodes lists the codes that report but never fail a run.
var warningCodes = map[IssueCode]bool{
	CodeInvalidMetadata:     true,
	CodeUnverifiedReference: true,
	CodeUnknownField:        true,
	CodeSchemaUnavailable:   true,
}

// Severity returns the fixed severity of a code.
func (c IssueCode) Severity() Severity {
	if warningCodes[c] {
		return SeverityWarning
	}

	return SeverityError
}

// Location pinpoints an issue as a block identifier plus a JSON pointer into
// that block.
type Location struct {
	BlockAs string `json:"block"`
	Pointer string `json:"pointer,omitempty"`

	// Order is the located block's execution order key, carried so the
	// report can sort issues into document order. Document-level issues
	// have none and sort ahead of every block.
	Order []int `json:"-"`
}

func (l Location) String() string {
	if l.BlockAs == "" {
		return l.Pointer
	}

	return l.BlockAs + l.Pointer
}

// ValidationIssue is one validation defect. Issues are data; no component
// raises them as errors across package boundaries.
type ValidationIssue struct {
	Severity Severity  `json:"severity"`
	Code     IssueCode `json:"code"`
	Location Location  `json:"location"`
	Message  string    `json:"message"`
}

// NewIssue builds an issue with the severity fixed by its code.
func NewIssue(code IssueCode, loc Location, format string, args ...any) ValidationIssue {
	return ValidationIssue{
		Severity: code.Severity(),
		Code:     code,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (i ValidationIssue) IsError() bool {
	return i.Severity == SeverityError
}

// Key identifies an issue for deduplication: one report per distinct
// (code, location) pair.
func (i ValidationIssue) Key() string {
	return string(i.Code) + "@" + i.Location.String()
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("[%s] %s at %s: %s", i.Severity, i.Code, i.Location, i.Message)
}

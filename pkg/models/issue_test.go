package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueCode_Severity(t *testing.T) {
	tests := []struct {
		name     string
		code     IssueCode
		expected Severity
	}{
		{
			name:     "unresolved_reference_is_error",
			code:     CodeUnresolvedReference,
			expected: SeverityError,
		},
		{
			name:     "forward_reference_is_error",
			code:     CodeForwardReference,
			expected: SeverityError,
		},
		{
			name:     "disallowed_method_is_error",
			code:     CodeDisallowedMethod,
			expected: SeverityError,
		},
		{
			name:     "unverified_reference_is_warning",
			code:     CodeUnverifiedReference,
			expected: SeverityWarning,
		},
		{
			name:     "unknown_field_is_warning",
			code:     CodeUnknownField,
			expected: SeverityWarning,
		},
		{
			name:     "schema_unavailable_is_warning",
			code:     CodeSchemaUnavailable,
			expected: SeverityWarning,
		},
		{
			name:     "invalid_metadata_is_warning",
			code:     CodeInvalidMetadata,
			expected: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.Severity())
		})
	}
}

func TestNewIssue(t *testing.T) {
	issue := NewIssue(CodeTypeMismatch, Location{BlockAs: "a2", Pointer: "/input/amount"},
		"field %q is declared %s", "amount", FieldTypeNumber)

	assert.Equal(t, SeverityError, issue.Severity)
	assert.True(t, issue.IsError())
	assert.Equal(t, `field "amount" is declared number`, issue.Message)
	assert.Equal(t, "a2", issue.Location.BlockAs)
}

func TestValidationIssue_Key(t *testing.T) {
	a := NewIssue(CodeUnknownField, Location{BlockAs: "a2", Pointer: "/input/x"}, "first")
	b := NewIssue(CodeUnknownField, Location{BlockAs: "a2", Pointer: "/input/x"}, "second")
	c := NewIssue(CodeUnknownField, Location{BlockAs: "a3", Pointer: "/input/x"}, "third")

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

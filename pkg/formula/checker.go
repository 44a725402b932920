package formula

import (
	"strconv"

	"github.com/edvalho/recipelint/pkg/models"
)

// Check threads baseType through a parsed chain against the per-type method
// allowlist. It reports only the first failure in the chain; independent
// chains elsewhere in the document are unaffected.
//
// A base of FieldTypeUnknown suppresses the whole chain: either the base
// reference already failed to resolve (reported separately) or its source is
// schema-less, and cascading disallowed-method noise onto it helps nobody.
func Check(chain *Chain, baseType models.FieldType, loc models.Location) *models.ValidationIssue {
	current := baseType

	for _, call := range chain.Calls {
		if current == models.FieldTypeUnknown {
			return nil
		}

		sig, ok := LookupMethod(current, call.Name)
		if !ok {
			issue := models.NewIssue(models.CodeDisallowedMethod, loc,
				"method %q is not allowed on %s values", call.Name, current)

			return &issue
		}

		if len(call.Args) < sig.MinArgs || len(call.Args) > sig.MaxArgs {
			issue := models.NewIssue(models.CodeArityMismatch, loc,
				"method %q takes %s, got %d", call.Name, arityRange(sig), len(call.Args))

			return &issue
		}

		current = sig.Result
	}

	return nil
}

// ResultType returns the static type a clean chain evaluates to, or
// FieldTypeUnknown when the chain cannot be threaded.
func ResultType(chain *Chain, baseType models.FieldType) models.FieldType {
	current := baseType

	for _, call := range chain.Calls {
		sig, ok := LookupMethod(current, call.Name)
		if !ok {
			return models.FieldTypeUnknown
		}

		current = sig.Result
	}

	return current
}

func arityRange(sig MethodSig) string {
	switch {
	case sig.MinArgs == sig.MaxArgs && sig.MinArgs == 1:
		return "exactly 1 argument"
	case sig.MinArgs == sig.MaxArgs:
		return "exactly " + strconv.Itoa(sig.MinArgs) + " arguments"
	default:
		return "between " + strconv.Itoa(sig.MinArgs) + " and " + strconv.Itoa(sig.MaxArgs) + " arguments"
	}
}

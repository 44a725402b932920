// Package reference parses and resolves data-pill references between blocks.
package reference

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edvalho/recipelint/pkg/models"
)

// Static error variables for linter compliance.
var (
	ErrMalformed = errors.New("malformed reference")
)

const dottedPrefix = "data."

// currentItemMarker is the structured-syntax object form of a current-item
// path segment.
const currentItemMarker = "current_item"

// IsDotted reports whether a string leaf has the shape of a dotted reference.
// It is a classification check only; ParseDotted still validates the parts.
func IsDotted(s string) bool {
	return strings.HasPrefix(s, dottedPrefix)
}

// IsStructured reports whether an input object is the structured reference
// form: {"provider": ..., "line": ..., "path": [...]}.
func IsStructured(m map[string]any) bool {
	if m == nil {
		return false
	}

	_, hasProvider := m["provider"]
	_, hasLine := m["line"]
	_, hasPath := m["path"]

	return hasProvider && hasLine && hasPath
}

// ParseDotted normalizes the dotted surface syntax
// data.<provider>.<as>.<segment>(.<segment>)* into a DataReference.
// All-digit segments are literal array indexes. The dotted form cannot
// express current-item markers.
func ParseDotted(s string) (*models.DataReference, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 4 || parts[0] != "data" {
		return nil, fmt.Errorf("%w: %q is not of the form data.<provider>.<line>.<path>", ErrMalformed, s)
	}

	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment at position %d", ErrMalformed, s, i)
		}
	}

	if !isIdentifier(parts[1]) || !isIdentifier(parts[2]) {
		return nil, fmt.Errorf("%w: %q has an invalid provider or line identifier", ErrMalformed, s)
	}

	ref := &models.DataReference{
		Provider: parts[1],
		SourceAs: parts[2],
	}

	for _, part := range parts[3:] {
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			ref.Path = append(ref.Path, models.IndexSegment(idx))

			continue
		}

		ref.Path = append(ref.Path, models.FieldSegment(part))
	}

	return ref, nil
}

// ParseStructured normalizes the structured surface syntax into a
// DataReference. The path array mixes string segments with
// {"path_element_type":"current_item"} marker objects; this is the only
// syntax able to express current-item positions.
func ParseStructured(m map[string]any) (*models.DataReference, error) {
	provider, ok := m["provider"].(string)
	if !ok || provider == "" {
		return nil, fmt.Errorf("%w: structured reference is missing a provider", ErrMalformed)
	}

	line, ok := m["line"].(string)
	if !ok || line == "" {
		return nil, fmt.Errorf("%w: structured reference is missing a line", ErrMalformed)
	}

	rawPath, ok := m["path"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: structured reference path must be an array", ErrMalformed)
	}

	ref := &models.DataReference{
		Provider: provider,
		SourceAs: line,
	}

	for i, elem := range rawPath {
		switch seg := elem.(type) {
		case string:
			if seg == "" {
				return nil, fmt.Errorf("%w: structured reference has an empty path segment at position %d", ErrMalformed, i)
			}

			if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 {
				ref.Path = append(ref.Path, models.IndexSegment(idx))

				continue
			}

			ref.Path = append(ref.Path, models.FieldSegment(seg))
		case float64:
			if seg < 0 || seg != float64(int(seg)) {
				return nil, fmt.Errorf("%w: structured reference has an invalid index at position %d", ErrMalformed, i)
			}

			ref.Path = append(ref.Path, models.IndexSegment(int(seg)))
		case map[string]any:
			kind, _ := seg["path_element_type"].(string)
			if kind != currentItemMarker {
				return nil, fmt.Errorf("%w: unknown path element type %q at position %d", ErrMalformed, kind, i)
			}

			ref.Path = append(ref.Path, models.CurrentItemSegment())
		default:
			return nil, fmt.Errorf("%w: unsupported path element %T at position %d", ErrMalformed, elem, i)
		}
	}

	return ref, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return s != ""
}

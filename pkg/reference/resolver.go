package reference

import (
	"github.com/edvalho/recipelint/pkg/models"
)

// CurrentItemBinding records an enclosing ____source declaration seen while
// walking a block's input: the array a current-item marker may be bound to.
type CurrentItemBinding struct {
	SourceAs string
	Path     []models.PathSegment
}

// Resolution is the successful outcome of resolving a reference.
type Resolution struct {
	Source *models.Block

	// Field and Type describe the terminal schema node. When the source
	// block declares no output schema the path cannot be verified: Field is
	// nil, Type is FieldTypeUnknown and Verified is false.
	Field    *models.SchemaField
	Type     models.FieldType
	Verified bool
}

// Resolve looks up a normalized reference against the block index, enforces
// execution-order legality and walks the source block's output schema along
// the reference path. It returns the resolution (nil when resolution could
// not complete) and any issues found. Issues are data; Resolve never fails.
func Resolve(
	idx models.BlockIndex,
	from *models.Block,
	ref *models.DataReference,
	bindings []CurrentItemBinding,
	loc models.Location,
) (*Resolution, []models.ValidationIssue) {
	source, ok := idx.Lookup(ref.SourceAs)
	if !ok {
		return nil, []models.ValidationIssue{
			models.NewIssue(models.CodeUnresolvedReference, loc,
				"reference %q points at unknown block %q", ref, ref.SourceAs),
		}
	}

	if code := scopeViolation(source, from); code != "" {
		msg := "block %q runs after %q and its output is not yet available"
		if code == models.CodeOutOfScopeReference {
			msg = "block %q is not on the execution path that reaches %q"
		}

		return nil, []models.ValidationIssue{
			models.NewIssue(code, loc, msg, ref.SourceAs, from.As),
		}
	}

	if len(source.OutputSchema) == 0 {
		issue := models.NewIssue(models.CodeUnverifiedReference, loc,
			"block %q declares no output schema; reference %q cannot be verified", ref.SourceAs, ref)

		return &Resolution{Source: source, Type: models.FieldTypeUnknown}, []models.ValidationIssue{issue}
	}

	field, issues := walkSchema(source, ref, bindings, loc)
	if field == nil {
		return nil, issues
	}

	return &Resolution{Source: source, Field: field, Type: field.Type, Verified: true}, issues
}

// scopeViolation classifies the execution-order relation between a source
// block and the referencing block. The legal sources are the referencing
// block's ancestors and the earlier siblings of the block or of any of its
// ancestors; everything else is either forward in execution order or inside
// a sibling subtree the execution path never enters.
func scopeViolation(source, from *models.Block) models.IssueCode {
	s, t := source.OrderKey, from.OrderKey

	i := 0
	for i < len(s) && i < len(t) && s[i] == t[i] {
		i++
	}

	switch {
	case i == len(s) && i == len(t):
		// Self-reference: the block's own output does not exist while its
		// input is being evaluated.
		return models.CodeForwardReference
	case i == len(s):
		// Strict ancestor.
		return ""
	case i == len(t):
		// Source lives inside the referencing block's own subtree.
		return models.CodeForwardReference
	case s[i] > t[i]:
		return models.CodeForwardReference
	case len(s) == i+1:
		// Earlier sibling at a shared ancestor level.
		return ""
	default:
		// Inside an earlier sibling's subtree: executed before, but on a
		// branch the path to the referencing block never takes.
		return models.CodeOutOfScopeReference
	}
}

func walkSchema(
	source *models.Block,
	ref *models.DataReference,
	bindings []CurrentItemBinding,
	loc models.Location,
) (*models.SchemaField, []models.ValidationIssue) {
	current := &models.SchemaField{Type: models.FieldTypeObject, Properties: source.OutputSchema}

	for i, seg := range ref.Path {
		switch seg.Kind {
		case models.SegmentField:
			if current.Type != models.FieldTypeObject {
				return nil, []models.ValidationIssue{
					models.NewIssue(models.CodeSchemaPathNotFound, loc,
						"segment %q of %q addresses a field on a %s value", seg.Name, ref, current.Type),
				}
			}

			next := current.Property(seg.Name)
			if next == nil {
				return nil, []models.ValidationIssue{
					models.NewIssue(models.CodeSchemaPathNotFound, loc,
						"block %q declares no output field %q (segment %d of %q)", ref.SourceAs, seg.Name, i, ref),
				}
			}

			current = next

		case models.SegmentIndex:
			if current.Type != models.FieldTypeArray {
				return nil, []models.ValidationIssue{
					models.NewIssue(models.CodeSchemaPathNotFound, loc,
						"segment %d of %q indexes into a %s value", i, ref, current.Type),
				}
			}

			current = current.ElementSchema()

		case models.SegmentCurrentItem:
			if current.Type != models.FieldTypeArray {
				return nil, []models.ValidationIssue{
					models.NewIssue(models.CodeSchemaPathNotFound, loc,
						"current-item segment %d of %q descends into a %s value", i, ref, current.Type),
				}
			}

			if !bound(bindings, ref, i) {
				return nil, []models.ValidationIssue{
					models.NewIssue(models.CodeUnboundCurrentItem, loc,
						"current-item segment of %q has no enclosing %s declaration for that array", ref, models.SourceKey),
				}
			}

			current = current.ElementSchema()
		}
	}

	return current, nil
}

// bound reports whether the current-item marker at path position i is covered
// by an enclosing ____source declaration naming the same source array.
func bound(bindings []CurrentItemBinding, ref *models.DataReference, i int) bool {
	for _, b := range bindings {
		if b.SourceAs == ref.SourceAs && models.SegmentsEqual(b.Path, ref.PathPrefix(i)) {
			return true
		}
	}

	return false
}

// Package document parses raw recipe JSON into a block tree, enforces the
// structural invariants and builds the identifier index every later
// validation stage works from.
package document

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/edvalho/recipelint/pkg/formula"
	"github.com/edvalho/recipelint/pkg/models"
	"github.com/edvalho/recipelint/pkg/reference"
)

// BuildResult is the total outcome of parsing one document. Parsing never
// both fails and partially succeeds: either Recipe is non-nil (with possibly
// non-empty Issues) or Recipe is nil and Issues explain why no tree could be
// built.
type BuildResult struct {
	Recipe *models.Recipe
	Index  models.BlockIndex
	Issues []models.ValidationIssue
}

// Structural reports whether the document could not be built at all, the one
// condition that short-circuits the rest of validation.
func (r *BuildResult) Structural() bool {
	return r.Recipe == nil
}

// Build parses raw recipe JSON. Malformed input yields issues, never a Go
// error: the envelope pre-check and the invariant walk both accumulate
// defects instead of stopping at the first one.
func Build(raw []byte) *BuildResult {
	result := &BuildResult{Index: models.BlockIndex{}}

	if issues := checkEnvelope(raw); len(issues) > 0 {
		result.Issues = issues

		return result
	}

	var recipe models.Recipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		// The envelope check pins the structural field types, so this only
		// fires on JSON the schema could not see into.
		result.Issues = append(result.Issues, models.NewIssue(
			models.CodeInvalidDocument, models.Location{}, "document does not decode: %s", err))

		return result
	}

	result.Recipe = &recipe
	result.Issues = append(result.Issues, checkMetadata(&recipe)...)

	seen := map[string]bool{}
	walkBlock(recipe.Root, []int{recipe.Root.Number}, seen, result)

	return result
}

// checkMetadata lints document-level metadata with struct tags. Metadata is
// not part of the core invariants, so defects surface as warnings.
func checkMetadata(recipe *models.Recipe) []models.ValidationIssue {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.StructExcept(recipe, "Root")
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []models.ValidationIssue{
			models.NewIssue(models.CodeInvalidMetadata, models.Location{}, "metadata does not validate: %s", err),
		}
	}

	issues := make([]models.ValidationIssue, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		issues = append(issues, models.NewIssue(
			models.CodeInvalidMetadata,
			models.Location{Pointer: "/" + fieldErr.Field()},
			"metadata field %q fails %q validation", fieldErr.Field(), fieldErr.Tag(),
		))
	}

	return issues
}

func walkBlock(block *models.Block, orderKey []int, seen map[string]bool, result *BuildResult) {
	block.OrderKey = orderKey
	loc := models.Location{BlockAs: block.As, Order: orderKey}

	if len(orderKey) == 1 {
		if block.Number != 0 {
			result.Issues = append(result.Issues, models.NewIssue(
				models.CodeInvalidDocument, loc, "root block must be numbered 0, found %d", block.Number))
		}

		if !block.IsTrigger() {
			result.Issues = append(result.Issues, models.NewIssue(
				models.CodeInvalidDocument, loc, "root block must be the trigger, found keyword %q", block.Keyword))
		}
	} else if !block.IsAction() {
		result.Issues = append(result.Issues, models.NewIssue(
			models.CodeInvalidDocument, loc, "non-root block must be an action, found keyword %q", block.Keyword))
	}

	if seen[block.As] {
		// The duplicate is reported and kept out of the index so downstream
		// resolution fails safely instead of picking the wrong block.
		result.Issues = append(result.Issues, models.NewIssue(
			models.CodeDuplicateIdentifier, loc, "identifier %q is already used by another block", block.As))
		delete(result.Index, block.As)
	} else {
		seen[block.As] = true
		result.Index[block.As] = block
	}

	// An absent input stays nil so the contract check still holds the block
	// to its required fields; any present value, object or not, is a legal
	// input graph and gets classified.
	if block.Input != nil {
		block.Parsed = buildInputValue(block.Input)
	}

	checkSiblingNumbers(block.Children, orderKey, result)

	for _, child := range block.Children {
		childKey := make([]int, len(orderKey), len(orderKey)+1)
		copy(childKey, orderKey)
		walkBlock(child, append(childKey, child.Number), seen, result)
	}
}

// checkSiblingNumbers enforces the local numbering invariant: strictly
// increasing starting at 1. Exactly one issue per offending block.
func checkSiblingNumbers(siblings []*models.Block, parentKey []int, result *BuildResult) {
	prev := 0

	for _, sibling := range siblings {
		key := make([]int, len(parentKey), len(parentKey)+1)
		copy(key, parentKey)
		loc := models.Location{BlockAs: sibling.As, Order: append(key, sibling.Number)}

		switch {
		case sibling.Number == prev:
			result.Issues = append(result.Issues, models.NewIssue(
				models.CodeDuplicateIdentifier, loc,
				"sibling number %d is already taken", sibling.Number))
		case sibling.Number <= prev || (prev == 0 && sibling.Number != 1):
			result.Issues = append(result.Issues, models.NewIssue(
				models.CodeInvalidDocument, loc,
				"sibling numbers must increase from 1, found %d after %d", sibling.Number, prev))
		}

		if sibling.Number > prev {
			prev = sibling.Number
		}
	}
}

// buildInputValue turns a raw input value graph into the tagged variant every
// later component switches on. Object keys are sorted so walks stay
// deterministic regardless of JSON map iteration order.
func buildInputValue(raw any) *models.InputValue {
	switch v := raw.(type) {
	case map[string]any:
		if reference.IsStructured(v) {
			return &models.InputValue{Kind: models.InputReference, RefObj: v}
		}

		keys := make([]string, 0, len(v))
		fields := make(map[string]*models.InputValue, len(v))

		for key := range v {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			fields[key] = buildInputValue(v[key])
		}

		return &models.InputValue{Kind: models.InputObject, Keys: keys, Fields: fields}
	case []any:
		items := make([]*models.InputValue, 0, len(v))
		for _, item := range v {
			items = append(items, buildInputValue(item))
		}

		return &models.InputValue{Kind: models.InputArray, Items: items}
	case string:
		kind := formula.ClassifyLeaf(v)
		if kind == models.InputLiteral {
			return &models.InputValue{Kind: models.InputLiteral, Literal: v}
		}

		return &models.InputValue{Kind: kind, Raw: v}
	default:
		return &models.InputValue{Kind: models.InputLiteral, Literal: v}
	}
}

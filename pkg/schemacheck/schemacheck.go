// Package schemacheck compares a block's declared schemas and literal input
// shape against the connector's published contract.
package schemacheck

import (
	"strconv"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/models"
)

// Check validates one block against the published contract for its
// (provider, name) pair. A nil contract means the collaborator could not
// supply one: that degrades to a single SchemaUnavailable warning plus the
// self-consistency checks between the declared input schema and the literal
// input, and never blocks the rest of validation.
func Check(block *models.Block, contract *contracts.Contract) []models.ValidationIssue {
	var issues []models.ValidationIssue

	blockLoc := models.Location{BlockAs: block.As, Order: block.OrderKey}

	published := []*models.SchemaField(nil)
	if contract == nil {
		issues = append(issues, models.NewIssue(models.CodeSchemaUnavailable, blockLoc,
			"no published contract for %s/%s; input checked against declared schema only", block.Provider, block.Name))
	} else {
		published = contract.Input
	}

	// A non-object input is a formula, reference or other dynamic leaf
	// producing the whole input at runtime; its shape cannot be compared
	// against the contract, so only an absent input is held to it.
	input := block.Parsed
	dynamic := input != nil && input.Kind != models.InputObject

	if input == nil || dynamic {
		input = &models.InputValue{Kind: models.InputObject}
	}

	if published != nil && !dynamic {
		for _, key := range input.Keys {
			if key == models.SourceKey {
				continue
			}

			if models.FieldByName(published, key) == nil {
				issues = append(issues, models.NewIssue(models.CodeUnknownField,
					models.Location{BlockAs: block.As, Pointer: "/input/" + key, Order: block.OrderKey},
					"field %q is not part of the %s/%s contract", key, block.Provider, block.Name))
			}
		}

		for _, field := range published {
			if field.Optional {
				continue
			}

			if input.Field(field.Name) == nil && models.FieldByName(block.InputSchema, field.Name) == nil {
				issues = append(issues, models.NewIssue(models.CodeMissingRequiredField,
					models.Location{BlockAs: block.As, Pointer: "/input", Order: block.OrderKey},
					"required field %q of %s/%s is missing", field.Name, block.Provider, block.Name))
			}
		}
	}

	// Literal values are checked against the published field when there is
	// one, falling back to the block's own declared input schema.
	for _, key := range input.Keys {
		if key == models.SourceKey {
			continue
		}

		field := models.FieldByName(published, key)
		if field == nil {
			field = models.FieldByName(block.InputSchema, key)
		}

		if field == nil {
			continue
		}

		issues = append(issues, checkValue(input.Fields[key], field,
			models.Location{BlockAs: block.As, Pointer: "/input/" + key, Order: block.OrderKey})...)
	}

	return issues
}

// checkValue compares one literal input value against its declared field,
// descending through nested objects and arrays. References, formulas and
// text leaves have no static literal shape and are skipped; the reference
// resolver and formula checker own those.
func checkValue(value *models.InputValue, field *models.SchemaField, loc models.Location) []models.ValidationIssue {
	switch value.Kind {
	case models.InputLiteral:
		got := models.TypeOfLiteral(value.Literal)
		if got == models.FieldTypeNull && field.Optional {
			return nil
		}

		if !models.TypeCompatible(field.Type, got) {
			return []models.ValidationIssue{
				models.NewIssue(models.CodeTypeMismatch, loc,
					"field %q is declared %s but the supplied value is %s", field.Name, field.Type, got),
			}
		}

		return nil

	case models.InputObject:
		if field.Type != models.FieldTypeObject && field.Type != models.FieldTypeUnknown {
			return []models.ValidationIssue{
				models.NewIssue(models.CodeTypeMismatch, loc,
					"field %q is declared %s but the supplied value is an object", field.Name, field.Type),
			}
		}

		var issues []models.ValidationIssue

		for _, key := range value.Keys {
			if key == models.SourceKey {
				continue
			}

			child := field.Property(key)
			if child == nil {
				continue
			}

			childLoc := models.Location{BlockAs: loc.BlockAs, Pointer: loc.Pointer + "/" + key, Order: loc.Order}
			issues = append(issues, checkValue(value.Fields[key], child, childLoc)...)
		}

		return issues

	case models.InputArray:
		if field.Type != models.FieldTypeArray && field.Type != models.FieldTypeUnknown {
			return []models.ValidationIssue{
				models.NewIssue(models.CodeTypeMismatch, loc,
					"field %q is declared %s but the supplied value is an array", field.Name, field.Type),
			}
		}

		elem := field.ElementSchema()
		if elem == nil {
			return nil
		}

		var issues []models.ValidationIssue

		for i, item := range value.Items {
			itemLoc := models.Location{BlockAs: loc.BlockAs, Pointer: loc.Pointer + "/" + strconv.Itoa(i), Order: loc.Order}
			issues = append(issues, checkValue(item, elem, itemLoc)...)
		}

		return issues

	default:
		return nil
	}
}

// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"encoding/json"

	"github.com/edvalho/recipelint/pkg/models"
)

// CreateTestBlock creates an action block with default values that can be
// overridden.
func CreateTestBlock(number int, as string, overrides ...func(*models.Block)) *models.Block {
	block := &models.Block{
		Number:   number,
		Provider: "salesforce",
		Name:     "create_record",
		As:       as,
		Keyword:  models.KeywordAction,
		Input:    map[string]any{},
	}

	for _, override := range overrides {
		override(block)
	}

	return block
}

// CreateTestTrigger creates a root trigger block with one output field.
func CreateTestTrigger(overrides ...func(*models.Block)) *models.Block {
	block := &models.Block{
		Number:   0,
		Provider: "salesforce",
		Name:     "new_record",
		As:       "a1",
		Keyword:  models.KeywordTrigger,
		Input:    map[string]any{},
		OutputSchema: []*models.SchemaField{
			{Name: "id", Type: models.FieldTypeString},
			{Name: "name", Type: models.FieldTypeString},
		},
	}

	for _, override := range overrides {
		override(block)
	}

	return block
}

// WithProvider sets the block provider and capability name.
func WithProvider(provider, name string) func(*models.Block) {
	return func(b *models.Block) {
		b.Provider = provider
		b.Name = name
	}
}

// WithInput sets the block input value graph. Any JSON value is legal,
// including a bare formula or reference string.
func WithInput(input any) func(*models.Block) {
	return func(b *models.Block) {
		b.Input = input
	}
}

// WithOutputSchema sets the published output fields.
func WithOutputSchema(fields ...*models.SchemaField) func(*models.Block) {
	return func(b *models.Block) {
		b.OutputSchema = fields
	}
}

// WithChildren nests blocks under the block.
func WithChildren(children ...*models.Block) func(*models.Block) {
	return func(b *models.Block) {
		b.Children = children
	}
}

// CreateTestRecipe wraps a trigger block into a minimal recipe document.
func CreateTestRecipe(name string, root *models.Block, overrides ...func(*models.Recipe)) *models.Recipe {
	recipe := &models.Recipe{
		Name:        name,
		Concurrency: 1,
		Root:        root,
	}

	for _, override := range overrides {
		override(recipe)
	}

	return recipe
}

// MarshalRecipe renders a recipe back to the JSON wire form accepted by the
// document builder. Panics on marshal failure since inputs are test-owned.
func MarshalRecipe(recipe *models.Recipe) []byte {
	raw, err := json.Marshal(recipe)
	if err != nil {
		panic(err)
	}

	return raw
}

// Package models defines the core domain models for recipe validation.
package models

// Keyword distinguishes the two block roles in a recipe tree.
type Keyword string

const (
	KeywordTrigger Keyword = "trigger" // Root block only
	KeywordAction  Keyword = "action"  // Every other block
)

// Recipe is the top-level container for one automation workflow document.
type Recipe struct {
	Name        string `json:"name"                  validate:"required,min=3"`
	Concurrency int    `json:"concurrency,omitempty" validate:"omitempty,gte=1,lte=100"`
	Root        *Block `json:"root"`
}

// Block is one node in a recipe's strictly ordered execution tree.
type Block struct {
	Number       int            `json:"number"`
	Provider     string         `json:"provider"`
	Name         string         `json:"name"`
	As           string         `json:"as"`
	Keyword      Keyword        `json:"keyword"`
	Input        any            `json:"input,omitempty"`
	InputSchema  []*SchemaField `json:"input_schema,omitempty"`
	OutputSchema []*SchemaField `json:"output_schema,omitempty"`
	Children     []*Block       `json:"block,omitempty"`

	// OrderKey is the block's path from the root expressed as the sequence
	// of sibling numbers. The tree builder fills it in; the reference
	// resolver uses it to decide execution-order legality.
	OrderKey []int `json:"-"`

	// Parsed is the classified form of Input, built once by the tree builder.
	Parsed *InputValue `json:"-"`
}

func (b *Block) IsTrigger() bool {
	return b.Keyword == KeywordTrigger
}

func (b *Block) IsAction() bool {
	return b.Keyword == KeywordAction
}

// BlockIndex maps every non-duplicate "as" identifier to its block.
// The tree builder returns it as an explicit immutable value; nothing in the
// validation pass mutates it.
type BlockIndex map[string]*Block

// Lookup resolves an "as" identifier. Duplicated identifiers are excluded
// from the index by the tree builder, so resolution of a duplicate fails
// here rather than silently picking one of the blocks.
func (ix BlockIndex) Lookup(as string) (*Block, bool) {
	b, ok := ix[as]

	return b, ok
}

// Package validation drives the full pass over a recipe tree: it builds the
// document, resolves every data-pill reference, type-checks every formula,
// cross-validates schemas against connector contracts and aggregates every
// issue found into one report.
package validation

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/document"
	"github.com/edvalho/recipelint/pkg/formula"
	"github.com/edvalho/recipelint/pkg/models"
	"github.com/edvalho/recipelint/pkg/reference"
	"github.com/edvalho/recipelint/pkg/schemacheck"
)

// Validate is a pure function from a built document and a contract lookup to
// a report. The walk is single-threaded and mutates nothing, so the issue
// order is deterministic and reproducible.
//
// The only early termination is a document that could not be built at all;
// every other defect is collected and the pass continues, because the point
// of the tool is to report every problem in one run.
func Validate(build *document.BuildResult, lookup contracts.Lookup) *Report {
	report := &Report{RunID: uuid.New().String()}

	if lookup == nil {
		lookup = func(string, string) (*contracts.Contract, bool) { return nil, false }
	}

	if build.Recipe != nil {
		report.RecipeName = build.Recipe.Name
	}

	if build.Structural() {
		finalize(report, build.Issues)
		report.Verdict = VerdictFail

		return report
	}

	w := &walker{index: build.Index, lookup: lookup}
	w.issues = append(w.issues, build.Issues...)
	w.walkBlock(build.Recipe.Root)

	finalize(report, w.issues)

	return report
}

// Pairs lists the distinct (provider, name) capabilities a recipe invokes,
// the prefetch set for the contract source.
func Pairs(recipe *models.Recipe) []contracts.Pair {
	var pairs []contracts.Pair

	seen := map[string]bool{}

	var visit func(*models.Block)
	visit = func(b *models.Block) {
		key := contracts.Key(b.Provider, b.Name)
		if !seen[key] {
			seen[key] = true

			pairs = append(pairs, contracts.Pair{Provider: b.Provider, Name: b.Name})
		}

		for _, child := range b.Children {
			visit(child)
		}
	}

	if recipe != nil && recipe.Root != nil {
		visit(recipe.Root)
	}

	return pairs
}

type walker struct {
	index  models.BlockIndex
	lookup contracts.Lookup
	issues []models.ValidationIssue
}

func (w *walker) walkBlock(block *models.Block) {
	var contract *contracts.Contract
	if c, ok := w.lookup(block.Provider, block.Name); ok {
		contract = c
	}

	w.issues = append(w.issues, schemacheck.Check(block, contract)...)

	if block.Parsed != nil {
		w.walkValue(block, block.Parsed, "/input", nil)
	}

	for _, child := range block.Children {
		w.walkBlock(child)
	}
}

func (w *walker) walkValue(block *models.Block, value *models.InputValue, pointer string, bindings []reference.CurrentItemBinding) {
	loc := models.Location{BlockAs: block.As, Pointer: pointer, Order: block.OrderKey}

	switch value.Kind {
	case models.InputObject:
		// A ____source declaration binds current-item markers for every
		// reference in this object's subtree, the declaration included.
		if src := value.Field(models.SourceKey); src != nil {
			if ref := w.parseLeafReference(src); ref != nil {
				next := make([]reference.CurrentItemBinding, len(bindings), len(bindings)+1)
				copy(next, bindings)
				bindings = append(next, reference.CurrentItemBinding{SourceAs: ref.SourceAs, Path: ref.Path})
			}
		}

		for _, key := range value.Keys {
			w.walkValue(block, value.Fields[key], pointer+"/"+key, bindings)
		}

	case models.InputArray:
		for i, item := range value.Items {
			w.walkValue(block, item, pointer+"/"+strconv.Itoa(i), bindings)
		}

	case models.InputReference:
		ref, issue := w.parseReference(value, loc)
		if issue != nil {
			w.issues = append(w.issues, *issue)

			return
		}

		_, issues := reference.Resolve(w.index, block, ref, bindings, loc)
		w.issues = append(w.issues, issues...)

	case models.InputFormula:
		w.walkFormula(block, value.Raw, loc, bindings)

	case models.InputText:
		refs, issues := formula.ExtractTextReferences(value.Raw, loc)
		w.issues = append(w.issues, issues...)

		for _, raw := range refs {
			ref, err := reference.ParseDotted(raw)
			if err != nil {
				w.issues = append(w.issues, models.NewIssue(models.CodeMalformedReference, loc, "%s", err.Error()))

				continue
			}

			_, resolveIssues := reference.Resolve(w.index, block, ref, bindings, loc)
			w.issues = append(w.issues, resolveIssues...)
		}

	case models.InputLiteral:
		// Nothing to resolve.
	}
}

// walkFormula parses and type-checks one formula-mode leaf. An unresolved
// base suppresses the chain check so a broken reference is reported exactly
// once instead of cascading into disallowed-method noise.
func (w *walker) walkFormula(block *models.Block, raw string, loc models.Location, bindings []reference.CurrentItemBinding) {
	chain, issue := formula.Parse(raw, loc)
	if issue != nil {
		w.issues = append(w.issues, *issue)

		return
	}

	baseType := chain.Base.LiteralType

	if chain.Base.Kind == formula.BasePill {
		resolution, issues := reference.Resolve(w.index, block, chain.Base.Ref, bindings, loc)
		w.issues = append(w.issues, issues...)

		if resolution == nil {
			return
		}

		baseType = resolution.Type
	}

	if issue := formula.Check(chain, baseType, loc); issue != nil {
		w.issues = append(w.issues, *issue)
	}
}

// parseLeafReference parses a reference-shaped input value without recording
// issues; the leaf is also walked normally, which reports them.
func (w *walker) parseLeafReference(value *models.InputValue) *models.DataReference {
	ref, issue := w.parseReference(value, models.Location{})
	if issue != nil {
		return nil
	}

	return ref
}

func (w *walker) parseReference(value *models.InputValue, loc models.Location) (*models.DataReference, *models.ValidationIssue) {
	var (
		ref *models.DataReference
		err error
	)

	switch {
	case value.Kind == models.InputReference && value.RefObj != nil:
		ref, err = reference.ParseStructured(value.RefObj)
	case value.Kind == models.InputReference:
		ref, err = reference.ParseDotted(value.Raw)
	default:
		return nil, nil
	}

	if err != nil {
		issue := models.NewIssue(models.CodeMalformedReference, loc, "%s", err.Error())

		return nil, &issue
	}

	return ref, nil
}

package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/document"
	"github.com/edvalho/recipelint/pkg/models"
	"github.com/edvalho/recipelint/pkg/testutil"
)

func validate(t *testing.T, recipe *models.Recipe, lookup contracts.Lookup) *Report {
	t.Helper()

	return Validate(document.Build(testutil.MarshalRecipe(recipe)), lookup)
}

func issueCodes(issues []models.ValidationIssue) []models.IssueCode {
	codes := make([]models.IssueCode, 0, len(issues))
	for _, issue := range issues {
		codes = append(codes, issue.Code)
	}

	return codes
}

func TestValidate_CleanRecipePasses(t *testing.T) {
	recipe := testutil.CreateTestRecipe("Notify on new record", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2",
				testutil.WithProvider("slack", "post_message"),
				testutil.WithInput(map[string]any{
					"message": "New record: #{data.salesforce.a1.name}",
				}),
			),
		),
	))

	report := validate(t, recipe, nil)

	assert.Empty(t, filterErrors(report.Issues))
	assert.Equal(t, VerdictPass, report.Verdict)
	assert.True(t, report.Passed())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "Notify on new record", report.RecipeName)
}

// Scenario: a reference into a schema-less block degrades to a warning and
// the run still passes.
func TestValidate_UnverifiedReferenceStillPasses(t *testing.T) {
	middle := testutil.CreateTestBlock(1, "a2", testutil.WithOutputSchema()) // no schema
	last := testutil.CreateTestBlock(2, "a3",
		testutil.WithProvider("slack", "post_message"),
		testutil.WithInput(map[string]any{
			"message": "data.salesforce.a2.anything.at.all",
		}),
	)

	recipe := testutil.CreateTestRecipe("Unverified", testutil.CreateTestTrigger(
		testutil.WithChildren(middle, last),
	))

	report := validate(t, recipe, nil)

	assert.Equal(t, VerdictPass, report.Verdict)
	assert.Contains(t, issueCodes(report.Issues), models.CodeUnverifiedReference)
	assert.Positive(t, report.Warnings)
	assert.Zero(t, report.Errors)
}

// Scenario: a structural numbering defect fails the run.
func TestValidate_StructuralDefectFails(t *testing.T) {
	recipe := testutil.CreateTestRecipe("Bad numbering", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(2, "a2"),
			testutil.CreateTestBlock(3, "a3"),
		),
	))

	report := validate(t, recipe, nil)

	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Contains(t, issueCodes(report.Issues), models.CodeInvalidDocument)
}

// Scenario: a disallowed method on a resolved pill is reported exactly once.
func TestValidate_DisallowedMethodReportedOnce(t *testing.T) {
	recipe := testutil.CreateTestRecipe("Bad formula", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2", testutil.WithInput(map[string]any{
				"message": "=_dp('data.salesforce.a1.name').nonexistent_method()",
			})),
		),
	))

	report := validate(t, recipe, nil)

	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, 1, report.Errors)
	require.Len(t, filterErrors(report.Issues), 1)
	assert.Equal(t, models.CodeDisallowedMethod, filterErrors(report.Issues)[0].Code)
}

// Scenario: a broken base reference suppresses the chain check so the defect
// is reported once, not once per call.
func TestValidate_UnresolvedPillSuppressesChain(t *testing.T) {
	recipe := testutil.CreateTestRecipe("Broken pill", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2", testutil.WithInput(map[string]any{
				"message": "=_dp('data.salesforce.a9.name').nonexistent_method().another()",
			})),
		),
	))

	report := validate(t, recipe, nil)

	codes := issueCodes(filterErrors(report.Issues))
	assert.Equal(t, []models.IssueCode{models.CodeUnresolvedReference}, codes)
}

func TestValidate_ForwardReference(t *testing.T) {
	recipe := testutil.CreateTestRecipe("Forward", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2", testutil.WithInput(map[string]any{
				"message": "data.salesforce.a3.id",
			})),
			testutil.CreateTestBlock(2, "a3"),
		),
	))

	report := validate(t, recipe, nil)

	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Contains(t, issueCodes(report.Issues), models.CodeForwardReference)
}

func TestValidate_CurrentItemBinding(t *testing.T) {
	structuredRef := func() map[string]any {
		return map[string]any{
			"provider": "salesforce",
			"line":     "a1",
			"path": []any{
				"items",
				map[string]any{"path_element_type": "current_item"},
				"sku",
			},
		}
	}

	trigger := testutil.CreateTestTrigger(testutil.WithOutputSchema(
		&models.SchemaField{Name: "items", Type: models.FieldTypeArray, Properties: []*models.SchemaField{
			{Name: "sku", Type: models.FieldTypeString},
		}},
	))

	t.Run("bound_by_source_declaration", func(t *testing.T) {
		recipe := testutil.CreateTestRecipe("Bound", testutil.CreateTestTrigger(
			testutil.WithOutputSchema(trigger.OutputSchema...),
			testutil.WithChildren(
				testutil.CreateTestBlock(1, "a2", testutil.WithInput(map[string]any{
					"rows": map[string]any{
						models.SourceKey: "data.salesforce.a1.items",
						"sku":            structuredRef(),
					},
				})),
			),
		))

		report := validate(t, recipe, nil)

		assert.Empty(t, filterErrors(report.Issues))
		assert.Equal(t, VerdictPass, report.Verdict)
	})

	t.Run("marker_without_declaration_is_error", func(t *testing.T) {
		recipe := testutil.CreateTestRecipe("Unbound", testutil.CreateTestTrigger(
			testutil.WithOutputSchema(trigger.OutputSchema...),
			testutil.WithChildren(
				testutil.CreateTestBlock(1, "a2", testutil.WithInput(map[string]any{
					"rows": map[string]any{
						"sku": structuredRef(),
					},
				})),
			),
		))

		report := validate(t, recipe, nil)

		assert.Equal(t, VerdictFail, report.Verdict)
		assert.Contains(t, issueCodes(report.Issues), models.CodeUnboundCurrentItem)
	})
}

func TestValidate_ContractLookup(t *testing.T) {
	static := contracts.Static{
		contracts.Key("salesforce", "new_record"): {
			Provider: "salesforce", Name: "new_record",
		},
		contracts.Key("slack", "post_message"): {
			Provider: "slack", Name: "post_message",
			Input: []*models.SchemaField{
				{Name: "channel", Type: models.FieldTypeString},
				{Name: "message", Type: models.FieldTypeString, Optional: true},
			},
		},
	}

	lookup := func(provider, name string) (*contracts.Contract, bool) {
		c, err := static.Lookup(context.Background(), provider, name)
		if err != nil {
			return nil, false
		}

		return c, true
	}

	t.Run("missing_required_contract_field", func(t *testing.T) {
		recipe := testutil.CreateTestRecipe("Missing channel", testutil.CreateTestTrigger(
			testutil.WithChildren(
				testutil.CreateTestBlock(1, "a2",
					testutil.WithProvider("slack", "post_message"),
					testutil.WithInput(map[string]any{"message": "hello"}),
				),
			),
		))

		report := validate(t, recipe, lookup)

		assert.Equal(t, VerdictFail, report.Verdict)
		assert.Contains(t, issueCodes(report.Issues), models.CodeMissingRequiredField)
	})

	t.Run("unknown_provider_degrades_to_warning", func(t *testing.T) {
		recipe := testutil.CreateTestRecipe("Unknown provider", testutil.CreateTestTrigger(
			testutil.WithChildren(
				testutil.CreateTestBlock(1, "a2",
					testutil.WithProvider("fax_machine", "send"),
					testutil.WithInput(map[string]any{"number": "555"}),
				),
			),
		))

		report := validate(t, recipe, lookup)

		assert.Equal(t, VerdictPass, report.Verdict)
		assert.Contains(t, issueCodes(report.Issues), models.CodeSchemaUnavailable)
	})
}

// Scenario: issues come back in document order even when the builder finds
// its defect on a later block than the walker finds one on an earlier block.
func TestValidate_IssuesInDocumentOrder(t *testing.T) {
	recipe := testutil.CreateTestRecipe("Ordering", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(1, "early", testutil.WithInput(map[string]any{
				"message": "data.salesforce.a9.id",
			})),
			testutil.CreateTestBlock(2, "a1"),
		),
	))

	report := validate(t, recipe, nil)

	assert.Equal(t, []models.IssueCode{
		models.CodeUnresolvedReference,
		models.CodeDuplicateIdentifier,
	}, issueCodes(filterErrors(report.Issues)), "the early block's defect is reported first")
}

// Scenario: a block whose whole input is one formula leaf builds and
// validates normally; the contract's required fields cannot be held against
// a shape that only exists at runtime.
func TestValidate_WholeInputFormula(t *testing.T) {
	static := contracts.Static{
		contracts.Key("slack", "post_message"): {
			Provider: "slack", Name: "post_message",
			Input: []*models.SchemaField{
				{Name: "channel", Type: models.FieldTypeString},
			},
		},
	}

	lookup := func(provider, name string) (*contracts.Contract, bool) {
		c, err := static.Lookup(context.Background(), provider, name)
		if err != nil {
			return nil, false
		}

		return c, true
	}

	t.Run("clean_formula_passes", func(t *testing.T) {
		recipe := testutil.CreateTestRecipe("Whole input", testutil.CreateTestTrigger(
			testutil.WithChildren(
				testutil.CreateTestBlock(1, "a2",
					testutil.WithProvider("slack", "post_message"),
					testutil.WithInput("=_dp('data.salesforce.a1.name').upcase()"),
				),
			),
		))

		report := validate(t, recipe, lookup)

		assert.Empty(t, filterErrors(report.Issues))
		assert.Equal(t, VerdictPass, report.Verdict)
	})

	t.Run("broken_formula_still_analyzed", func(t *testing.T) {
		recipe := testutil.CreateTestRecipe("Whole input broken", testutil.CreateTestTrigger(
			testutil.WithChildren(
				testutil.CreateTestBlock(1, "a2",
					testutil.WithProvider("slack", "post_message"),
					testutil.WithInput("=_dp('data.salesforce.a9.id')"),
				),
			),
		))

		report := validate(t, recipe, lookup)

		assert.Equal(t, VerdictFail, report.Verdict)
		assert.Contains(t, issueCodes(report.Issues), models.CodeUnresolvedReference)
		assert.NotContains(t, issueCodes(report.Issues), models.CodeInvalidDocument)
	})
}

func TestPairs(t *testing.T) {
	recipe := testutil.CreateTestRecipe("Pairs", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2", testutil.WithProvider("slack", "post_message")),
			testutil.CreateTestBlock(2, "a3", testutil.WithProvider("slack", "post_message")),
			testutil.CreateTestBlock(3, "a4", testutil.WithProvider("shopify", "create_order")),
		),
	))

	pairs := Pairs(recipe)

	assert.Equal(t, []contracts.Pair{
		{Provider: "salesforce", Name: "new_record"},
		{Provider: "slack", Name: "post_message"},
		{Provider: "shopify", Name: "create_order"},
	}, pairs)
}

func filterErrors(issues []models.ValidationIssue) []models.ValidationIssue {
	var out []models.ValidationIssue

	for _, issue := range issues {
		if issue.IsError() {
			out = append(out, issue)
		}
	}

	return out
}

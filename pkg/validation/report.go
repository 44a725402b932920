package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edvalho/recipelint/pkg/models"
)

// Verdict is the overall outcome of a validation run.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Report is the produced interface of the validation engine: an ordered,
// deduplicated issue list and an overall verdict. Rendering is the caller's
// concern.
type Report struct {
	RunID      string                   `json:"run_id"`
	RecipeName string                   `json:"recipe_name,omitempty"`
	Verdict    Verdict                  `json:"verdict"`
	Issues     []models.ValidationIssue `json:"issues"`
	Errors     int                      `json:"errors"`
	Warnings   int                      `json:"warnings"`
}

func (r *Report) Passed() bool {
	return r.Verdict == VerdictPass
}

// Summary renders a short human-readable account of the run.
func (r *Report) Summary() string {
	var sb strings.Builder

	for _, issue := range r.Issues {
		sb.WriteString(issue.String())
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "%d error(s), %d warning(s): %s\n", r.Errors, r.Warnings, strings.ToUpper(string(r.Verdict)))

	return sb.String()
}

// finalize sorts the raw issue stream into document order, deduplicates it
// (one per distinct code and location, first occurrence wins), counts
// severities and settles the verdict. The sort is needed because the builder
// and the walker each emit in their own pass order; a builder defect on a
// late block would otherwise outrank walker defects on earlier ones.
func finalize(report *Report, issues []models.ValidationIssue) {
	ordered := make([]models.ValidationIssue, len(issues))
	copy(ordered, issues)

	sort.SliceStable(ordered, func(i, j int) bool {
		return issueLess(ordered[i], ordered[j])
	})

	seen := make(map[string]bool, len(ordered))
	kept := make([]models.ValidationIssue, 0, len(ordered))

	for _, issue := range ordered {
		if seen[issue.Key()] {
			continue
		}

		seen[issue.Key()] = true
		kept = append(kept, issue)

		if issue.IsError() {
			report.Errors++
		} else {
			report.Warnings++
		}
	}

	report.Issues = kept
	report.Verdict = VerdictPass

	if report.Errors > 0 {
		report.Verdict = VerdictFail
	}
}

// issueLess orders issues by document position: the located block's order
// key, then the JSON pointer within the block, then the code. Document-level
// issues carry no order key and sort ahead of every block.
func issueLess(a, b models.ValidationIssue) bool {
	if c := compareOrder(a.Location.Order, b.Location.Order); c != 0 {
		return c < 0
	}

	if a.Location.Pointer != b.Location.Pointer {
		return a.Location.Pointer < b.Location.Pointer
	}

	return a.Code < b.Code
}

func compareOrder(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}

	return len(a) - len(b)
}

package rules

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
)

// HeadingRule reports a page whose heading levels skip when going deeper,
// e.g. an h3 directly after an h1. Going back up any number of levels is fine.
type HeadingRule struct{}

// NewHeadingRule creates a new HeadingRule.
func NewHeadingRule() *HeadingRule {
	return &HeadingRule{}
}

// Name returns the rule name.
func (r *HeadingRule) Name() string {
	return "heading"
}

// Evaluate implements Evaluator. At most one finding is produced per page,
// listing the full heading sequence.
func (r *HeadingRule) Evaluate(ctx context.Context, sourceURL string, doc *goquery.Document) ([]model.Finding, error) {
	findings := make([]model.Finding, 0, 1)

	var levels []int
	err := eachUntilDone(ctx, doc.Find("h1, h2, h3, h4, h5, h6"), func(s *goquery.Selection) {
		levels = append(levels, int(goquery.NodeName(s)[1]-'0'))
	})
	if err != nil {
		return findings, err
	}

	if !SkipsLevel(levels) {
		return findings, nil
	}

	findings = append(findings, model.Finding{
		SourceURL: sourceURL,
		Category:  model.CategoryHeadingHierarchyIssue,
		Details:   "Heading levels skip: " + FormatLevels(levels),
	})
	return findings, nil
}

// SkipsLevel reports whether any heading is more than one level deeper
// than the heading before it.
func SkipsLevel(levels []int) bool {
	for i := 1; i < len(levels); i++ {
		if levels[i]-levels[i-1] > 1 {
			return true
		}
	}
	return false
}

// FormatLevels renders levels as "1, 2, 4".
func FormatLevels(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ", ")
}

package rules

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
)

// TableRule summarizes the structure of every table: whether it has a
// caption, column headers and row headers. Layout tables are reported too;
// telling them apart is left to the reviewer.
type TableRule struct{}

// NewTableRule creates a new TableRule.
func NewTableRule() *TableRule {
	return &TableRule{}
}

// Name returns the rule name.
func (r *TableRule) Name() string {
	return "table"
}

// TableStructure is the summary of one table.
type TableStructure struct {
	Caption       string
	HasCaption    bool
	ColumnHeaders bool
	RowHeaders    bool
}

// Details renders the summary, e.g.
// `Caption: Yes ("Prices") | Column headers: Yes | Row headers: No`.
func (t TableStructure) Details() string {
	caption := "No"
	if t.HasCaption {
		caption = "Yes"
		if t.Caption != "" {
			caption += ` ("` + t.Caption + `")`
		}
	}
	return "Caption: " + caption +
		" | Column headers: " + yesNo(t.ColumnHeaders) +
		" | Row headers: " + yesNo(t.RowHeaders)
}

// Evaluate implements Evaluator.
func (r *TableRule) Evaluate(ctx context.Context, sourceURL string, doc *goquery.Document) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	err := eachUntilDone(ctx, doc.Find("table"), func(s *goquery.Selection) {
		findings = append(findings, model.Finding{
			SourceURL: sourceURL,
			Category:  model.CategoryTableInfo,
			Details:   InspectTable(s).Details(),
		})
	})
	return findings, err
}

// InspectTable derives the structure of a single table element.
// Rows of nested tables are not attributed to the outer table.
func InspectTable(table *goquery.Selection) TableStructure {
	var ts TableStructure

	caption := table.ChildrenFiltered("caption").First()
	if caption.Length() > 0 {
		ts.HasCaption = true
		ts.Caption = strings.Join(strings.Fields(caption.Text()), " ")
	}

	rows := ownRows(table)

	if table.ChildrenFiltered("thead").Find("th").Length() > 0 {
		ts.ColumnHeaders = true
	} else if rows.Length() > 0 {
		first := rows.First().ChildrenFiltered("th, td")
		ts.ColumnHeaders = first.Length() > 0 && first.Length() == first.Filter("th").Length()
	}

	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.ChildrenFiltered("th").Length() > 0 && row.ChildrenFiltered("td").Length() > 0 {
			ts.RowHeaders = true
			return false
		}
		return true
	})

	return ts
}

// ownRows returns the tr elements belonging to table itself, whether they
// sit directly under it or inside thead, tbody or tfoot.
func ownRows(table *goquery.Selection) *goquery.Selection {
	direct := table.ChildrenFiltered("tr")
	sections := table.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")
	return direct.AddSelection(sections)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

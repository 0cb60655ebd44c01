package rules

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
)

// officeExtensions are the Word, Excel and PowerPoint file extensions.
var officeExtensions = []string{".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"}

// DocumentLinkRule inventories links to PDF and Office documents, which
// need their own accessibility review.
type DocumentLinkRule struct{}

// NewDocumentLinkRule creates a new DocumentLinkRule.
func NewDocumentLinkRule() *DocumentLinkRule {
	return &DocumentLinkRule{}
}

// Name returns the rule name.
func (r *DocumentLinkRule) Name() string {
	return "document-link"
}

// Evaluate implements Evaluator.
func (r *DocumentLinkRule) Evaluate(ctx context.Context, sourceURL string, doc *goquery.Document) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	base, baseErr := url.Parse(sourceURL)

	err := eachUntilDone(ctx, doc.Find("a[href]"), func(s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)

		category, ext, ok := ClassifyDocumentLink(href)
		if !ok {
			return
		}

		target := href
		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				target = base.ResolveReference(ref).String()
			}
		}

		details := "PDF document"
		if category == model.CategoryOfficeLink {
			details = "Office document (" + ext + ")"
		}

		findings = append(findings, model.Finding{
			SourceURL: sourceURL,
			Category:  category,
			Details:   details,
			LinkText:  strings.Join(strings.Fields(s.Text()), " "),
			TargetURL: target,
		})
	})
	return findings, err
}

// ClassifyDocumentLink decides whether href points at a PDF or Office
// document by its extension, ignoring any query string or fragment.
// It returns the category, the matched extension and whether it matched.
func ClassifyDocumentLink(href string) (model.Category, string, bool) {
	p := href
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.ToLower(p)

	if strings.HasSuffix(p, ".pdf") {
		return model.CategoryPdfLink, ".pdf", true
	}
	for _, ext := range officeExtensions {
		if strings.HasSuffix(p, ext) {
			return model.CategoryOfficeLink, ext, true
		}
	}
	return 0, "", false
}

package rules

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
)

// ImageRule reports every img element: missing alt text as an issue,
// present alt text as an inventory item for human review.
type ImageRule struct{}

// NewImageRule creates a new ImageRule.
func NewImageRule() *ImageRule {
	return &ImageRule{}
}

// Name returns the rule name.
func (r *ImageRule) Name() string {
	return "image"
}

// Evaluate implements Evaluator.
func (r *ImageRule) Evaluate(ctx context.Context, sourceURL string, doc *goquery.Document) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	err := eachUntilDone(ctx, doc.Find("img"), func(s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, hasAlt := s.Attr("alt")
		alt = strings.TrimSpace(alt)

		f := model.Finding{
			SourceURL:     sourceURL,
			TargetURL:     src,
			ImageFilename: ImageFilename(src),
		}
		if !hasAlt || alt == "" {
			f.Category = model.CategoryImageMissingAlt
		} else {
			f.Category = model.CategoryImageWithAlt
			f.Details = `alt="` + alt + `"`
		}
		findings = append(findings, f)
	})
	return findings, err
}

// ImageFilename returns the last path segment of src, or "" when src
// cannot be parsed or has no file name.
func ImageFilename(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return path.Base(p)
}

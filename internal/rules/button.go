package rules

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
)

// ButtonRule reports buttons without an accessible name, icon-only buttons,
// and buttons whose label is vague.
type ButtonRule struct {
	phrases *Phrases
}

// NewButtonRule creates a new ButtonRule using the given phrase lists.
// A nil value uses the defaults.
func NewButtonRule(phrases *Phrases) *ButtonRule {
	if phrases == nil {
		phrases = DefaultPhrases()
	}
	return &ButtonRule{phrases: phrases}
}

// Name returns the rule name.
func (r *ButtonRule) Name() string {
	return "button"
}

// Evaluate implements Evaluator.
func (r *ButtonRule) Evaluate(ctx context.Context, sourceURL string, doc *goquery.Document) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	err := eachUntilDone(ctx, doc.Find("button, input"), func(s *goquery.Selection) {
		if goquery.NodeName(s) == "input" {
			typ, _ := s.Attr("type")
			typ = strings.ToLower(strings.TrimSpace(typ))
			if typ != "submit" && typ != "button" {
				return
			}
		}

		label := accessibleName(doc, s)
		var details string
		switch {
		case label == "" && r.isIconOnly(s):
			details = "Icon-only button without an accessible name"
		case label == "":
			details = "Button has no accessible name"
		default:
			text := Normalize(label)
			if r.phrases.IsExcluded(text) {
				return
			}
			if _, ok := r.phrases.MatchTrigger(text); !ok {
				return
			}
			details = `Non-descriptive button label: "` + label + `"`
		}

		findings = append(findings, model.Finding{
			SourceURL: sourceURL,
			Category:  model.CategoryInaccessibleButton,
			Details:   details,
			LinkText:  label,
		})
	})
	return findings, err
}

// accessibleName resolves a button label in the order aria-label, title,
// value, text content, then the text of the aria-labelledby targets.
func accessibleName(doc *goquery.Document, s *goquery.Selection) string {
	for _, attr := range []string{"aria-label", "title", "value"} {
		if v, ok := s.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}

	if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
		return text
	}

	ids, ok := s.Attr("aria-labelledby")
	if !ok {
		return ""
	}
	var parts []string
	for _, id := range strings.Fields(ids) {
		doc.Find("[id]").EachWithBreak(func(_ int, target *goquery.Selection) bool {
			if v, _ := target.Attr("id"); v == id {
				if text := strings.Join(strings.Fields(target.Text()), " "); text != "" {
					parts = append(parts, text)
				}
				return false
			}
			return true
		})
	}
	return strings.Join(parts, " ")
}

// isIconOnly reports whether s renders an icon: an svg or img descendant,
// or an icon-font class on the element or a descendant.
func (r *ButtonRule) isIconOnly(s *goquery.Selection) bool {
	if s.Find("svg, img").Length() > 0 {
		return true
	}
	if class, ok := s.Attr("class"); ok && r.phrases.hasIconClass(class) {
		return true
	}
	found := false
	s.Find("[class]").EachWithBreak(func(_ int, d *goquery.Selection) bool {
		class, _ := d.Attr("class")
		found = r.phrases.hasIconClass(class)
		return !found
	})
	return found
}

package rules

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
)

// rawURLPattern finds scheme- or www-prefixed URLs in running text.
var rawURLPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s<>"'()\[\]{}]+`)

// rawURLSuffixes are the top-level domains a raw URL must end in to count.
// Restricting the list keeps version strings and file names out.
var rawURLSuffixes = []string{
	".com", ".org", ".net", ".gov", ".edu", ".info", ".io", ".co", ".us", ".ca",
}

// invisibleElements hold text that is never rendered.
var invisibleElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// LinkRule reports anchors with vague text such as "click here" and URLs
// written out as text, which screen readers spell out character by character.
type LinkRule struct {
	phrases *Phrases
}

// NewLinkRule creates a new LinkRule using the given phrase lists.
// A nil value uses the defaults.
func NewLinkRule(phrases *Phrases) *LinkRule {
	if phrases == nil {
		phrases = DefaultPhrases()
	}
	return &LinkRule{phrases: phrases}
}

// Name returns the rule name.
func (r *LinkRule) Name() string {
	return "link"
}

// Evaluate implements Evaluator.
func (r *LinkRule) Evaluate(ctx context.Context, sourceURL string, doc *goquery.Document) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	err := eachUntilDone(ctx, doc.Find("a"), func(s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !r.phrases.IsVague(text) {
			return
		}
		href, _ := s.Attr("href")
		findings = append(findings, model.Finding{
			SourceURL: sourceURL,
			Category:  model.CategoryInaccessibleLink,
			Details:   `Non-descriptive link text: "` + text + `"`,
			LinkText:  text,
			TargetURL: href,
		})
	})
	if err != nil {
		return findings, err
	}

	if err := ctx.Err(); err != nil {
		return findings, err
	}

	seen := make(map[string]bool)
	for _, match := range FindRawURLs(visibleText(doc)) {
		if seen[match] {
			continue
		}
		seen[match] = true
		findings = append(findings, model.Finding{
			SourceURL: sourceURL,
			Category:  model.CategoryInaccessibleLink,
			Details:   "Raw URL in page text: " + match,
			LinkText:  match,
			TargetURL: withScheme(match),
		})
	}

	return findings, nil
}

// FindRawURLs returns the URL-like substrings of text that end in a
// recognized top-level domain, in order of appearance. Whitespace-separated
// tokens containing "@" or "mailto:" are skipped as email addresses.
func FindRawURLs(text string) []string {
	var out []string
	for _, token := range strings.Fields(text) {
		if strings.Contains(token, "@") || strings.Contains(strings.ToLower(token), "mailto:") {
			continue
		}
		for _, m := range rawURLPattern.FindAllString(token, -1) {
			m = strings.TrimRight(m, ".,;:!?")
			if hasKnownSuffix(m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func hasKnownSuffix(match string) bool {
	u, err := url.Parse(withScheme(match))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range rawURLSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

func withScheme(match string) string {
	lower := strings.ToLower(match)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return match
	}
	return "https://" + match
}

// visibleText concatenates the text nodes a browser would render, with a
// space between nodes so words from adjacent elements do not merge.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && invisibleElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return b.String()
}

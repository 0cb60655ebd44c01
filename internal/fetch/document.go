package fetch

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
)

// Document is a parsed page ready for the rules.
// It is never shared across URLs and is dropped after evaluation.
type Document struct {
	// Page holds the fetched markup and transport metadata.
	Page *model.Page

	// DOM is the goquery handle over the parsed tree.
	DOM *goquery.Document
}

// Parse builds a Document from a fetched page.
// html.Parse follows the HTML5 error-recovery rules, so almost any input
// yields a tree. If it still fails, an empty document is used.
func Parse(page *model.Page) *Document {
	root, err := html.Parse(bytes.NewReader(page.Raw))
	if err != nil {
		root = &html.Node{Type: html.DocumentNode}
	}

	dom := goquery.NewDocumentFromNode(root)
	if base, err := url.Parse(page.BaseURL()); err == nil {
		dom.Url = base
	}
	return &Document{Page: page, DOM: dom}
}

// ParseString parses markup as if it had been fetched from sourceURL.
func ParseString(sourceURL, markup string) *Document {
	page := &model.Page{URL: sourceURL, StatusCode: 200, Raw: []byte(markup)}
	page.ComputeDigest()
	return Parse(page)
}

// NormalizeURL trims raw and adds an https scheme when none is given.
// Only absolute http and https URLs with a host are accepted.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}

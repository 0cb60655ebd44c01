package fetch

import (
	"errors"
	"testing"

	"github.com/nao1215/a11yscan/internal/model"
)

func TestParseLenient(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		markup string
		images int
	}{
		{"well formed", `<html><body><img src="a.png"></body></html>`, 1},
		{"unclosed tags", `<div><p><img src="a.png"><img src="b.png"`, 2},
		{"empty", ``, 0},
		{"binary noise", "\x00\x01\x02<img src=x>", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc := ParseString("https://example.com", tc.markup)
			if doc.DOM == nil {
				t.Fatal("expected a document")
			}
			if got := doc.DOM.Find("img").Length(); got != tc.images {
				t.Errorf("expected %d images, got %d", tc.images, got)
			}
		})
	}
}

func TestParseUsesBaseURL(t *testing.T) {
	t.Parallel()

	page := &model.Page{URL: "https://a.test/x", FinalURL: "https://b.test/y", Raw: []byte("<p>x</p>")}
	doc := Parse(page)
	if doc.DOM.Url.Host != "b.test" {
		t.Errorf("expected final URL host, got %q", doc.DOM.Url.Host)
	}
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://example.com/a", "https://example.com/a", false},
		{"  example.com  ", "https://example.com", false},
		{"http://example.com", "http://example.com", false},
		{"ftp://example.com", "", true},
		{"", "", true},
		{"https://", "", true},
	}

	for _, tc := range testCases {
		got, err := NormalizeURL(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("NormalizeURL(%q): expected ErrInvalidURL, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeURL(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}

package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Page represents a fetched web page before parsing.
// It holds the raw markup together with the transport metadata
// reported by the fetch source.
type Page struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after redirects, as reported by the source.
	// Empty when the source does not report it.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the upstream HTTP status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response, when known.
	ContentType string `json:"content_type,omitempty"`

	// Raw contains the markup. Limited to MaxPageSize bytes.
	Raw []byte `json:"-"`

	// Digest is the hex SHA3-256 of Raw.
	// Identical pages served under different URLs share a digest.
	Digest string `json:"digest"`
}

// MaxPageSize is the maximum amount of markup kept for one page.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// ComputeDigest calculates and sets the SHA3-256 digest of the raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeDigest() {
	if len(p.Raw) == 0 {
		p.Digest = ""
		return
	}

	sum := sha3.Sum256(p.Raw)
	p.Digest = hex.EncodeToString(sum[:])
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}

// BaseURL returns the URL relative references on the page resolve against.
func (p *Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// IsHTML reports whether the content type indicates markup.
// An unknown content type is treated as HTML because proxy sources
// do not always report one.
func (p *Page) IsHTML() bool {
	if p.ContentType == "" {
		return true
	}
	ct := strings.ToLower(p.ContentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

package model

import (
	"testing"
)

func TestPageComputeDigest(t *testing.T) {
	t.Parallel()

	t.Run("empty raw clears digest", func(t *testing.T) {
		t.Parallel()
		p := &Page{Digest: "stale"}
		p.ComputeDigest()
		if p.Digest != "" {
			t.Errorf("expected empty digest, got %q", p.Digest)
		}
	})

	t.Run("same content same digest", func(t *testing.T) {
		t.Parallel()
		a := &Page{URL: "https://a.test", Raw: []byte("<html></html>")}
		b := &Page{URL: "https://b.test", Raw: []byte("<html></html>")}
		a.ComputeDigest()
		b.ComputeDigest()
		if a.Digest != b.Digest {
			t.Errorf("expected equal digests, got %q and %q", a.Digest, b.Digest)
		}
		if len(a.Digest) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(a.Digest))
		}
	})

	t.Run("different content different digest", func(t *testing.T) {
		t.Parallel()
		a := &Page{Raw: []byte("a")}
		b := &Page{Raw: []byte("b")}
		a.ComputeDigest()
		b.ComputeDigest()
		if a.Digest == b.Digest {
			t.Error("expected different digests")
		}
	})
}

func TestPageTruncateRaw(t *testing.T) {
	t.Parallel()

	p := &Page{Raw: make([]byte, MaxPageSize+10)}
	p.TruncateRaw()
	if len(p.Raw) != MaxPageSize {
		t.Errorf("expected %d bytes, got %d", MaxPageSize, len(p.Raw))
	}
}

func TestPageBaseURL(t *testing.T) {
	t.Parallel()

	p := &Page{URL: "https://a.test/x"}
	if p.BaseURL() != "https://a.test/x" {
		t.Errorf("expected request URL, got %q", p.BaseURL())
	}
	p.FinalURL = "https://a.test/y"
	if p.BaseURL() != "https://a.test/y" {
		t.Errorf("expected final URL, got %q", p.BaseURL())
	}
}

func TestPageIsHTML(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		contentType string
		want        bool
	}{
		{"", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"TEXT/HTML", true},
		{"application/pdf", false},
		{"image/png", false},
	}
	for _, tc := range testCases {
		p := &Page{ContentType: tc.contentType}
		if p.IsHTML() != tc.want {
			t.Errorf("IsHTML(%q) = %v, expected %v", tc.contentType, p.IsHTML(), tc.want)
		}
	}
}

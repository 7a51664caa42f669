package static

import "testing"

func TestContentTypeForKnownExtensions(t *testing.T) {
	cases := map[string]string{
		"index.html":  "text/html",
		"app.js":      "application/javascript",
		"data.json":   "application/json",
		"photo.jpeg":  "image/jpeg",
		"icon.svg":    "image/svg+xml",
		"doc.pdf":     "application/pdf",
		"style.css":   "text/css",
		"archive.bin": "application/octet-stream",
	}
	for name, want := range cases {
		if got := ContentTypeFor(name, "text/plain"); got != want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestContentTypeForTextLikeFallsBackToDefault(t *testing.T) {
	if got := ContentTypeFor("config.yaml", "text/plain; charset=utf-8"); got != "text/plain; charset=utf-8" {
		t.Fatalf("expected text-like extension to use default content type, got %q", got)
	}
}

func TestContentTypeForTextLikeWithoutDefaultFallsBackToPlain(t *testing.T) {
	if got := ContentTypeFor("notes.log", ""); got != "text/plain" {
		t.Fatalf("expected bare text/plain fallback, got %q", got)
	}
}

func TestContentTypeForNoExtension(t *testing.T) {
	if got := ContentTypeFor("Makefile", "text/plain"); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream for extensionless file, got %q", got)
	}
}

func TestContentTypeForIsCaseInsensitive(t *testing.T) {
	if got := ContentTypeFor("IMAGE.PNG", "text/plain"); got != "image/png" {
		t.Fatalf("expected extension matching to be case-insensitive, got %q", got)
	}
}

package static

import "strings"

// extensionTypes is the fixed extension table from spec.md §4.5 — a narrower
// set than original_source/src/http/mime.rs's get_content_type, which also
// covers wasm, video/audio formats beyond mp4/webm/mp3/wav, and archive
// types. The narrower table here is spec.md's, not the original's; the
// match-table style is grounded on the original nonetheless.
var extensionTypes = map[string]string{
	"html":  "text/html",
	"htm":   "text/html",
	"css":   "text/css",
	"js":    "application/javascript",
	"json":  "application/json",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"svg":   "image/svg+xml",
	"webp":  "image/webp",
	"ico":   "image/x-icon",
	"pdf":   "application/pdf",
	"xml":   "application/xml",
	"txt":   "text/plain",
	"md":    "text/markdown",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"mp4":   "video/mp4",
	"webm":  "video/webm",
	"mp3":   "audio/mpeg",
	"wav":   "audio/wav",
}

// textLikeExtensions get a best-effort text/plain fallback under
// http.default_content_type rather than application/octet-stream, when the
// extension is unknown but looks source-like.
var textLikeExtensions = map[string]struct{}{
	"csv": {}, "log": {}, "yaml": {}, "yml": {}, "toml": {}, "ini": {},
	"conf": {}, "cfg": {}, "sh": {}, "go": {}, "rs": {}, "py": {},
}

// ContentTypeFor resolves the filename's extension to a Content-Type. Unknown
// extensions fall back to defaultContentType for text-like files, otherwise
// application/octet-stream (spec.md §4.5).
func ContentTypeFor(name, defaultContentType string) string {
	ext := extOf(name)
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}
	if _, textLike := textLikeExtensions[ext]; textLike {
		if defaultContentType != "" {
			return defaultContentType
		}
		return "text/plain"
	}
	return "application/octet-stream"
}

func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

package static

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// GenerateETag computes a strong, content-dependent ETag. The algorithm is
// an Open Question in spec.md §9 ("the exact hash function is unspecified");
// this implementation chooses FNV-1a 64-bit, the standard-library hash
// closest in spirit to original_source/src/http/cache.rs's generate_etag
// (Rust's DefaultHasher: a fast, non-cryptographic 64-bit hash), rendered the
// same way — quoted lowercase hex — matching spec.md §4.5's own example
// token shape ("23cc8d56a93cc61c"). See DESIGN.md for the full rationale.
func GenerateETag(content []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(content)
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// ETagMatches reports whether the client's If-None-Match header (a
// comma-separated list, possibly containing "*") matches the computed ETag.
func ETagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, tok := range strings.Split(ifNoneMatch, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "*" || tok == etag {
			return true
		}
	}
	return false
}

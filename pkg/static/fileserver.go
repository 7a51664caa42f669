package static

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// ResolveInDir joins subPath onto root and guards against path traversal by
// requiring the canonical result to remain within root's canonical form.
// Grounded on original_source/src/handler/static_files.rs's
// load_from_directory, which canonicalizes both sides and checks a prefix
// relationship; spec.md §4.5 requires exactly this ("the final canonical
// path must lie within the configured directory root").
func ResolveInDir(root, subPath string) (string, error) {
	cleanSub := filepath.Clean("/" + subPath)
	candidate := filepath.Join(root, cleanSub)

	canonicalRoot, err := canonicalize(root)
	if err != nil {
		return "", domain.ErrNotFound
	}
	canonicalCandidate, err := canonicalize(candidate)
	if err != nil {
		// The target itself may not exist yet (e.g. before an index-file
		// probe); fall back to a lexical check against the cleaned path.
		if lexical := filepath.Join(canonicalRoot, cleanSub); lexical != canonicalRoot && !strings.HasPrefix(lexical, canonicalRoot+string(filepath.Separator)) {
			return "", domain.ErrForbidden
		}
		return candidate, nil
	}

	if canonicalCandidate != canonicalRoot && !strings.HasPrefix(canonicalCandidate, canonicalRoot+string(filepath.Separator)) {
		return "", domain.ErrForbidden
	}
	return canonicalCandidate, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// FileInfo carries what the responder needs from the filesystem without
// re-reading metadata between the existence probe and the serve step.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	Content []byte
}

// LoadFile reads a regular file's full content and stat info. Index-file
// resolution and traversal guarding happen in the caller (ResolveDirTarget).
func LoadFile(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{}, domain.ErrNotFound
		}
		return FileInfo{}, fmt.Errorf("%w: %v", domain.ErrInternalIO, err)
	}
	if info.IsDir() {
		return FileInfo{}, domain.ErrNotFound
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %v", domain.ErrInternalIO, err)
	}
	return FileInfo{Path: path, Size: info.Size(), ModTime: info.ModTime(), Content: content}, nil
}

// ResolveDirTarget finds the file to serve for a directory-rooted action:
// the resolved sub-path directly if it names a regular file, otherwise the
// first existing name in indexFiles tried in order (spec.md §4.5 "Directory
// default").
func ResolveDirTarget(root, subPath string, indexFiles []string) (string, error) {
	resolved, err := ResolveInDir(root, subPath)
	if err != nil {
		return "", err
	}

	info, statErr := os.Stat(resolved)
	if statErr == nil && !info.IsDir() {
		return resolved, nil
	}

	dir := resolved
	if statErr != nil {
		// The exact path doesn't exist; treat it as a directory request only
		// if it ends in a trailing slash, else 404.
		if !strings.HasSuffix(subPath, "/") {
			return "", domain.ErrNotFound
		}
	}

	for _, name := range indexFiles {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", domain.ErrNotFound
}

// WriteFile writes the full GET/HEAD response for a resolved file: MIME,
// ETag, Last-Modified, conditional requests, and byte ranges (spec.md §4.5).
func WriteFile(w http.ResponseWriter, r *http.Request, fi FileInfo, defaultContentType string) {
	etag := GenerateETag(fi.Content)
	contentType := ContentTypeFor(fi.Path, defaultContentType)
	modTime := fi.ModTime.UTC().Truncate(time.Second)

	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", modTime.Format(http.TimeFormat))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Accept-Ranges", "bytes")

	if ETagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" && r.Header.Get("If-None-Match") == "" {
		if t, err := http.ParseTime(ims); err == nil && !modTime.After(t) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	body := fi.Content
	status := http.StatusOK

	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		br, result := ParseRange(rangeHeader, fi.Size)
		switch result {
		case RangeUnsatisfiable:
			w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(fi.Size, 10))
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		case RangeValid:
			status = http.StatusPartialContent
			body = fi.Content[br.Start : br.End+1]
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.Start, br.End, fi.Size))
		case RangeNone:
			// fall through to full body
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

// ErrIsDirTraversal reports whether err represents a blocked traversal
// attempt, for callers that want to log distinctly from an ordinary 404.
func ErrIsDirTraversal(err error) bool {
	return errors.Is(err, domain.ErrForbidden)
}

// Package accesslog formats and emits one line per completed data-plane
// request. It implements the contract spec.md §1 names as an external
// collaborator ("the access-log formatter (combined/common/json/custom)")
// without exhaustively specifying its grammar; the four modes below are
// grounded on original_source/src/config/types.rs's LoggingConfig, whose
// access_log_format accepts "combined", "common", "json", or a custom
// pattern string containing at least one "$variable" (spec.md §4.3's LOGGING
// validator rule).
package accesslog

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Entry carries everything a formatter might need for one request.
type Entry struct {
	Method      string
	Path        string
	Status      int
	Bytes       int64
	Duration    time.Duration
	Referer     string
	UserAgent   string
	Host        string
	Format      string
	ShowHeaders bool
	Headers     http.Header
}

// Writer renders Entry values to an output stream using the configured
// format.
type Writer struct {
	out io.Writer
}

// NewWriter opens the access log destination: a file when path is non-empty,
// otherwise stdout (original_source's "stdout if not set" default).
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return &Writer{out: os.Stdout}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open access log file %s: %w", path, err)
	}
	return &Writer{out: f}, nil
}

// Log renders and writes one access-log line.
func (w *Writer) Log(e Entry) {
	line := w.render(e)
	if _, err := fmt.Fprintln(w.out, line); err != nil {
		log.Error().Err(err).Msg("failed to write access log line")
	}
}

func (w *Writer) render(e Entry) string {
	switch e.Format {
	case "", "combined":
		return renderCombined(e)
	case "common":
		return renderCommon(e)
	case "json":
		return renderJSON(e)
	default:
		return renderPattern(e.Format, e)
	}
}

func renderCommon(e Entry) string {
	return fmt.Sprintf("%s - - [%s] %q %d %d",
		e.Host, time.Now().Format("02/Jan/2006:15:04:05 -0700"),
		e.Method+" "+e.Path+" HTTP/1.1", e.Status, e.Bytes)
}

func renderCombined(e Entry) string {
	return fmt.Sprintf("%s - - [%s] %q %d %d %q %q",
		e.Host, time.Now().Format("02/Jan/2006:15:04:05 -0700"),
		e.Method+" "+e.Path+" HTTP/1.1", e.Status, e.Bytes, e.Referer, e.UserAgent)
}

func renderJSON(e Entry) string {
	var headers strings.Builder
	if e.ShowHeaders {
		headers.WriteString(`,"headers":{`)
		first := true
		for k, v := range e.Headers {
			if !first {
				headers.WriteString(",")
			}
			first = false
			headers.WriteString(strconv.Quote(k))
			headers.WriteString(":")
			headers.WriteString(strconv.Quote(strings.Join(v, ",")))
		}
		headers.WriteString("}")
	}
	return fmt.Sprintf(
		`{"time":%q,"method":%q,"path":%q,"status":%d,"bytes":%d,"duration_ms":%d,"host":%q,"referer":%q,"user_agent":%q%s}`,
		time.Now().Format(time.RFC3339), e.Method, e.Path, e.Status, e.Bytes,
		e.Duration.Milliseconds(), e.Host, e.Referer, e.UserAgent, headers.String(),
	)
}

// renderPattern substitutes $variable tokens in a custom format string.
func renderPattern(pattern string, e Entry) string {
	replacements := map[string]string{
		"$method":     e.Method,
		"$path":       e.Path,
		"$status":     strconv.Itoa(e.Status),
		"$bytes":      strconv.FormatInt(e.Bytes, 10),
		"$duration":   e.Duration.String(),
		"$host":       e.Host,
		"$referer":    e.Referer,
		"$user_agent": e.UserAgent,
		"$time":       time.Now().Format(time.RFC3339),
	}
	out := pattern
	for k, v := range replacements {
		out = strings.ReplaceAll(out, k, v)
	}
	return out
}

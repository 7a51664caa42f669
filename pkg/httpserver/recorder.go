package httpserver

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// statusRecorder wraps http.ResponseWriter so the access-log formatter can
// observe the final status and byte count without the handler threading
// them through every return path. Grounded on the teacher's
// pkg/engine/http_handler.go statusRecorder, which solves the same problem
// for pipeline responses; the Hijack/Flush passthroughs are carried verbatim
// since the data plane needs the same guarantees (no double WriteHeader,
// Hijacker support preserved for completeness even though YARHS never
// upgrades connections today).
type statusRecorder struct {
	http.ResponseWriter
	status       int
	wroteHeader  bool
	bytesWritten int64
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.wroteHeader = true
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytesWritten += int64(n)
	return n, err
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	return hj.Hijack()
}

func (s *statusRecorder) StatusCode() int {
	if !s.wroteHeader {
		return http.StatusOK
	}
	return s.status
}

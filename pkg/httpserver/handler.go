// Package httpserver implements the data-plane connection driver: the
// per-request method gate, body-size enforcement, matcher dispatch, and
// response writing described in spec.md §4.4/§4.6. The per-connection
// read/write loop itself, keep-alive handling, and header parsing are left
// to net/http.Server — the idiomatic Go equivalent of the cooperative
// per-connection task the original source hand-rolls — configured with the
// deadlines spec.md §5 requires; see pkg/listener for the supervisor that
// owns *http.Server's underlying net.Listener.
package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lhanjian/yarhs/pkg/accesslog"
	"github.com/lhanjian/yarhs/pkg/domain"
	"github.com/lhanjian/yarhs/pkg/matcher"
	"github.com/lhanjian/yarhs/pkg/static"
	"github.com/lhanjian/yarhs/pkg/telemetry"
)

// Handler is the data-plane http.Handler. It reads a single atomic snapshot
// per request and never blocks on the config writer (spec.md §4.1/§5).
type Handler struct {
	registry *domain.Registry
	access   *accesslog.Writer
	metrics  *telemetry.Metrics
}

// NewHandler builds the data-plane handler over a live config registry.
// metrics may be nil to disable Prometheus recording (e.g. in tests).
func NewHandler(registry *domain.Registry, access *accesslog.Writer, metrics *telemetry.Metrics) *Handler {
	return &Handler{registry: registry, access: access, metrics: metrics}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w}

	if h.metrics != nil {
		h.metrics.ActiveConns.Inc()
		defer h.metrics.ActiveConns.Dec()
	}

	snap := h.registry.Current()

	if snap.HTTP.ServerName != "" {
		rec.Header().Set("Server", snap.HTTP.ServerName)
	}
	if snap.HTTP.EnableCORS {
		rec.Header().Set("Access-Control-Allow-Origin", "*")
	}

	h.dispatch(rec, r, snap)

	if h.metrics != nil {
		h.metrics.RequestsTotal.WithLabelValues(r.Method, telemetry.StatusClass(rec.StatusCode())).Inc()
		h.metrics.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	}

	if snap.Logging.AccessLog && h.access != nil {
		h.access.Log(accesslog.Entry{
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    rec.StatusCode(),
			Bytes:     rec.bytesWritten,
			Duration:  time.Since(start),
			Referer:   r.Header.Get("Referer"),
			UserAgent: r.Header.Get("User-Agent"),
			Host:      r.Host,
			Format:    snap.Logging.AccessLogFormat,
			ShowHeaders: snap.Logging.ShowHeaders,
			Headers:   r.Header,
		})
	}
}

func (h *Handler) dispatch(w *statusRecorder, r *http.Request, snap *domain.ConfigSnapshot) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		// full service, continue below
	case http.MethodOptions:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cl := r.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > snap.HTTP.MaxBodySize {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		} else if err != nil {
			log.Warn().Str("content_length", cl).Msg("non-numeric Content-Length header")
		}
	}

	outcome := matcher.Match(snap, r.Host, r.URL.Path, r.Header)

	switch outcome.Kind {
	case matcher.OutcomeHealthLiveness, matcher.OutcomeHealthReadiness:
		writeHealth(w)
	case matcher.OutcomeAction:
		h.dispatchAction(w, r, snap, outcome)
	default:
		write404(w)
	}
}

func writeHealth(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func write404(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("not found"))
}

func (h *Handler) dispatchAction(w *statusRecorder, r *http.Request, snap *domain.ConfigSnapshot, outcome matcher.Outcome) {
	action := outcome.Action
	switch action.Type {
	case domain.ActionDir:
		h.serveDir(w, r, snap, action, outcome)
	case domain.ActionFile:
		h.serveFile(w, r, snap, action)
	case domain.ActionRedirect:
		w.Header().Set("Location", action.Target)
		w.WriteHeader(action.Code)
	case domain.ActionDirect:
		w.Header().Set("Content-Type", action.ContentType)
		w.WriteHeader(action.Status)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(action.Body))
		}
	default:
		write404(w)
	}
}

func (h *Handler) serveDir(w *statusRecorder, r *http.Request, snap *domain.ConfigSnapshot, action domain.RouteAction, outcome matcher.Outcome) {
	subPath := matcher.StripMatchedPrefix(r.URL.Path, outcome.MatchedPrefix)
	resolved, err := static.ResolveDirTarget(action.Path, subPath, outcome.IndexFiles)
	if err != nil {
		writeStaticErr(w, err)
		return
	}
	h.serveResolvedFile(w, r, snap, resolved)
}

func (h *Handler) serveFile(w *statusRecorder, r *http.Request, snap *domain.ConfigSnapshot, action domain.RouteAction) {
	resolved, err := static.ResolveInDir(".", action.Path)
	if err != nil {
		writeStaticErr(w, err)
		return
	}
	h.serveResolvedFile(w, r, snap, resolved)
}

func (h *Handler) serveResolvedFile(w *statusRecorder, r *http.Request, snap *domain.ConfigSnapshot, path string) {
	fi, err := static.LoadFile(path)
	if err != nil {
		writeStaticErr(w, err)
		return
	}
	static.WriteFile(w, r, fi, snap.HTTP.DefaultContentType)
}

func writeStaticErr(w http.ResponseWriter, err error) {
	status := statusForError(err)
	w.WriteHeader(status)
}

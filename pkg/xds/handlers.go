package xds

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lhanjian/yarhs/pkg/domain"
	"github.com/lhanjian/yarhs/pkg/storage"
	"github.com/lhanjian/yarhs/pkg/telemetry"
)

// ListenerChange is delivered to OnListenerChange whenever a LISTENER POST is
// accepted and the resolved main or API address actually changed (or, with
// force_restart set, for both listeners regardless of change), so the
// caller (cmd/yarhs) can drive pkg/listener's hot-restart protocol. Grounded
// on original_source/src/api/updaters.rs's update_listener, which compares
// old vs new DynamicServerConfig under the write lock and only signals a
// restart when an address actually differs.
type ListenerChange struct {
	MainChanged bool
	MainAddr    domain.Endpoint
	APIChanged  bool
	APIAddr     domain.Endpoint
}

// Server implements the control-plane discovery endpoint.
type Server struct {
	registry   *domain.Registry
	onListener func(ListenerChange)
	store      storage.SnapshotStore
	metrics    *telemetry.Metrics
}

// NewServer builds the control-plane handler over the shared registry.
// onListenerChange may be nil if the caller doesn't need restart
// notifications (e.g. in tests). store may be nil to disable persistence
// (server.enable_state_persistence: false, the default); when set, every
// accepted POST is followed by a synchronous Save of the full snapshot, per
// the persistence-scope decision in DESIGN.md. metrics may be nil.
func NewServer(registry *domain.Registry, onListenerChange func(ListenerChange), store storage.SnapshotStore, metrics *telemetry.Metrics) *Server {
	return &Server{registry: registry, onListener: onListenerChange, store: store, metrics: metrics}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/v1/discovery":
		s.handleSnapshot(w, r)
	case strings.HasPrefix(path, "/v1/discovery:"):
		slug := strings.TrimPrefix(path, "/v1/discovery:")
		s.handleTyped(w, r, slug)
	case path == "/v1/state":
		// Persistence-management auxiliary endpoint; out of scope (spec.md §4.8).
		http.Error(w, "not implemented", http.StatusNotImplemented)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap := s.registry.Current()
	resp := DiscoveryResponse{
		VersionInfo: s.registry.VersionInfo(),
		Resources: ResourceSnapshot{
			Listener: VersionedValue[ListenerResource]{
				VersionInfo: snap.VersionInfo,
				Nonce:       s.registry.Nonce(domain.ResourceListener),
				Value:       ListenerResource{MainServer: snap.Listener.Main, APIServer: snap.Listener.API},
			},
			Route: VersionedValue[RouteResource]{
				VersionInfo: snap.VersionInfo,
				Nonce:       s.registry.Nonce(domain.ResourceRoute),
				Value: RouteResource{
					FaviconPaths: snap.Routes.FaviconPaths,
					IndexFiles:   snap.Routes.IndexFiles,
					CustomRoutes: snap.Routes.CustomRoutes,
					Health:       snap.Routes.Health,
				},
			},
			HTTP: VersionedValue[domain.HTTPConfig]{
				VersionInfo: snap.VersionInfo,
				Nonce:       s.registry.Nonce(domain.ResourceHTTP),
				Value:       snap.HTTP,
			},
			Logging: VersionedValue[domain.LoggingConfig]{
				VersionInfo: snap.VersionInfo,
				Nonce:       s.registry.Nonce(domain.ResourceLogging),
				Value:       snap.Logging,
			},
			Performance: VersionedValue[PerformanceResource]{
				VersionInfo: snap.VersionInfo,
				Nonce:       s.registry.Nonce(domain.ResourcePerformance),
				Value:       performanceToResource(snap.Performance),
			},
			VirtualHosts: VersionedValue[[]domain.VirtualHost]{
				VersionInfo: snap.VersionInfo,
				Nonce:       s.registry.Nonce(domain.ResourceVirtualHost),
				Value:       snap.VirtualHosts,
			},
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTyped(w http.ResponseWriter, r *http.Request, slug string) {
	t, ok := domain.ResourceTypeFromSlug(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleTypedGet(w, t)
	case http.MethodPost:
		s.handleTypedPost(w, r, t)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTypedGet(w http.ResponseWriter, t domain.ResourceType) {
	snap := s.registry.Current()
	value := valueForType(snap, t)
	raw, err := json.Marshal(value)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	resp := TypedDiscoveryResponse{
		VersionInfo: s.registry.VersionInfo(),
		Nonce:       s.registry.Nonce(t),
		TypeURL:     t.TypeURL(),
		Resources:   []json.RawMessage{raw},
	}
	writeJSON(w, http.StatusOK, resp)
}

func valueForType(snap *domain.ConfigSnapshot, t domain.ResourceType) any {
	switch t {
	case domain.ResourceListener:
		return ListenerResource{MainServer: snap.Listener.Main, APIServer: snap.Listener.API}
	case domain.ResourceRoute:
		return RouteResource{
			FaviconPaths: snap.Routes.FaviconPaths,
			IndexFiles:   snap.Routes.IndexFiles,
			CustomRoutes: snap.Routes.CustomRoutes,
			Health:       snap.Routes.Health,
		}
	case domain.ResourceHTTP:
		return snap.HTTP
	case domain.ResourceLogging:
		return snap.Logging
	case domain.ResourcePerformance:
		return performanceToResource(snap.Performance)
	case domain.ResourceVirtualHost:
		return snap.VirtualHosts
	default:
		return nil
	}
}

func (s *Server) handleTypedPost(w http.ResponseWriter, r *http.Request, t domain.ResourceType) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNack(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if len(req.Resources) == 0 {
		writeNack(w, http.StatusBadRequest, "resources must be non-empty")
		return
	}

	before := s.registry.Current()

	newVersion, newNonce, err := s.registry.Publish(req.VersionInfo, t, mutatorFor(t, req.Resources[0]))
	if err != nil {
		if s.metrics != nil {
			s.metrics.XDSUpdatesTotal.WithLabelValues(t.Slug(), "nack").Inc()
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			writeNack(w, http.StatusConflict, "version conflict: resource has been modified since version_info="+req.VersionInfo)
			return
		}
		writeNack(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.XDSUpdatesTotal.WithLabelValues(t.Slug(), "ack").Inc()
	}

	if t == domain.ResourceListener {
		s.notifyListenerChange(before, req.ForceRestart)
	}

	if s.store != nil {
		if err := s.store.Save(s.registry.Current()); err != nil {
			log.Warn().Err(err).Msg("failed to persist config snapshot after xds update")
		}
	}

	traceID := uuid.NewString()
	log.Info().Str("resource_type", t.Slug()).Str("version_info", newVersion).Str("trace_id", traceID).Msg("xds update applied")

	writeJSON(w, http.StatusOK, AckResponse{
		Status:      "ACK",
		VersionInfo: newVersion,
		Nonce:       newNonce,
		Message:     t.Slug() + " updated",
	})
}

func (s *Server) notifyListenerChange(before *domain.ConfigSnapshot, force bool) {
	if s.onListener == nil {
		return
	}
	after := s.registry.Current()
	change := ListenerChange{
		MainChanged: force || before.Listener.Main != after.Listener.Main,
		MainAddr:    after.Listener.Main,
		APIChanged:  force || before.Listener.API != after.Listener.API,
		APIAddr:     after.Listener.API,
	}
	if change.MainChanged || change.APIChanged {
		s.onListener(change)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNack(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, NackResponse{
		Status:      "NACK",
		ErrorDetail: ErrorDetail{Code: status, Message: message},
	})
}

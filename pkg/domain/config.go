package domain

import "time"

// ResourceType identifies one of the six xDS resource kinds YARHS serves.
type ResourceType int

const (
	ResourceListener ResourceType = iota
	ResourceRoute
	ResourceHTTP
	ResourceLogging
	ResourcePerformance
	ResourceVirtualHost
	resourceTypeCount
)

// Slug is the URL-path discriminator used in "/v1/discovery:<slug>".
func (t ResourceType) Slug() string {
	switch t {
	case ResourceListener:
		return "listeners"
	case ResourceRoute:
		return "routes"
	case ResourceHTTP:
		return "http"
	case ResourceLogging:
		return "logging"
	case ResourcePerformance:
		return "performance"
	case ResourceVirtualHost:
		return "vhosts"
	default:
		return ""
	}
}

// TypeURL is the xDS-style type identifier embedded in discovery responses.
func (t ResourceType) TypeURL() string {
	switch t {
	case ResourceListener:
		return "type.yarhs.io/LISTENER"
	case ResourceRoute:
		return "type.yarhs.io/ROUTE"
	case ResourceHTTP:
		return "type.yarhs.io/HTTP"
	case ResourceLogging:
		return "type.yarhs.io/LOGGING"
	case ResourcePerformance:
		return "type.yarhs.io/PERFORMANCE"
	case ResourceVirtualHost:
		return "type.yarhs.io/VIRTUAL_HOST"
	default:
		return ""
	}
}

// ResourceTypeFromSlug resolves the slug used on the wire back to a ResourceType.
func ResourceTypeFromSlug(slug string) (ResourceType, bool) {
	for t := ResourceType(0); t < resourceTypeCount; t++ {
		if t.Slug() == slug {
			return t, true
		}
	}
	return 0, false
}

// Endpoint is a bindable host/port pair.
type Endpoint struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Listener describes the two server-level bind points YARHS owns: the
// data-plane main server and the control-plane API server.
type Listener struct {
	Main Endpoint `json:"main_server" yaml:"main_server"`
	API  Endpoint `json:"api_server" yaml:"api_server"`
}

// HealthConfig controls the built-in liveness/readiness short-circuit.
type HealthConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	LivenessPath  string `json:"liveness_path" yaml:"liveness_path"`
	ReadinessPath string `json:"readiness_path" yaml:"readiness_path"`
}

// DefaultHealthConfig mirrors original_source's HealthConfig::default().
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		Enabled:       true,
		LivenessPath:  "/healthz",
		ReadinessPath: "/readyz",
	}
}

// ActionType discriminates the RouteAction tagged union.
type ActionType string

const (
	ActionDir      ActionType = "dir"
	ActionFile     ActionType = "file"
	ActionRedirect ActionType = "redirect"
	ActionDirect   ActionType = "direct"
)

// RouteAction is the closed sum of things a matched route can do. It is
// discriminated on the wire by the "type" field; Go represents the union as a
// single struct carrying only the fields relevant to its Type, following the
// teacher's preference for flat, JSON-tag-driven structs over interface sums
// for wire-shaped data.
type RouteAction struct {
	Type ActionType `json:"type" yaml:"type"`

	// dir, file
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// redirect
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Code   int    `json:"code,omitempty" yaml:"code,omitempty"`

	// direct
	Status      int    `json:"status,omitempty" yaml:"status,omitempty"`
	Body        string `json:"body,omitempty" yaml:"body,omitempty"`
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
}

// WithDefaults fills in the defaults spec.md names for optional action fields.
func (a RouteAction) WithDefaults() RouteAction {
	if a.Type == ActionRedirect && a.Code == 0 {
		a.Code = 302
	}
	if a.Type == ActionDirect && a.ContentType == "" {
		a.ContentType = "text/plain"
	}
	return a
}

// HeaderMatcher matches a single request header against one condition.
type HeaderMatcher struct {
	Name    string  `json:"name" yaml:"name"`
	Exact   *string `json:"exact,omitempty" yaml:"exact,omitempty"`
	Prefix  *string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Present *bool   `json:"present,omitempty" yaml:"present,omitempty"`
}

// RouteMatch holds the predicate a Route requires to fire.
type RouteMatch struct {
	Prefix  *string         `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Path    *string         `json:"path,omitempty" yaml:"path,omitempty"`
	Headers []HeaderMatcher `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// IsEmpty reports whether the match has no predicate at all, which is invalid
// per spec.md's VIRTUAL_HOST validator ("each route match present and non-empty").
func (m RouteMatch) IsEmpty() bool {
	return m.Prefix == nil && m.Path == nil && len(m.Headers) == 0
}

// Route is a single predicate/action pair inside a VirtualHost.
type Route struct {
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Match  RouteMatch  `json:"match" yaml:"match"`
	Action RouteAction `json:"action" yaml:"action"`
}

// VirtualHost groups domain patterns with an ordered route list.
type VirtualHost struct {
	Name       string   `json:"name" yaml:"name"`
	Domains    []string `json:"domains" yaml:"domains"`
	Routes     []Route  `json:"routes,omitempty" yaml:"routes,omitempty"`
	IndexFiles []string `json:"index_files,omitempty" yaml:"index_files,omitempty"`
}

// RoutesBundle is the legacy (pre-xDS) routing configuration: favicon paths,
// directory index fallback, and the custom_routes table. FaviconPaths is
// stored and round-tripped; the matcher does not consult it.
type RoutesBundle struct {
	FaviconPaths []string `json:"favicon_paths,omitempty" yaml:"favicon_paths,omitempty"`
	IndexFiles   []string `json:"index_files" yaml:"index_files"`

	// CustomRoutes maps a path to its action. CustomRouteOrder records
	// insertion order so that prefix-match tie-breaks (spec.md §4.4 step 3)
	// are deterministic, since Go map iteration order is not.
	CustomRoutes     map[string]RouteAction `json:"custom_routes" yaml:"custom_routes"`
	CustomRouteOrder []string               `json:"-" yaml:"-"`

	Health HealthConfig `json:"health" yaml:"health"`
}

// DefaultRoutesBundle mirrors original_source's RoutesConfig::default().
func DefaultRoutesBundle() RoutesBundle {
	return RoutesBundle{
		FaviconPaths: []string{"/favicon.ico", "/favicon.svg"},
		IndexFiles:   []string{"index.html", "index.htm"},
		CustomRoutes: map[string]RouteAction{},
		Health:       DefaultHealthConfig(),
	}
}

// SetCustomRoute inserts or replaces a custom route, preserving the original
// insertion position on replace and appending on first insert.
func (r *RoutesBundle) SetCustomRoute(path string, action RouteAction) {
	if r.CustomRoutes == nil {
		r.CustomRoutes = map[string]RouteAction{}
	}
	if _, exists := r.CustomRoutes[path]; !exists {
		r.CustomRouteOrder = append(r.CustomRouteOrder, path)
	}
	r.CustomRoutes[path] = action
}

// HTTPConfig controls request-size limits and response headers shared across
// the data plane.
type HTTPConfig struct {
	DefaultContentType string `json:"default_content_type" yaml:"default_content_type"`
	ServerName         string `json:"server_name" yaml:"server_name"`
	EnableCORS         bool   `json:"enable_cors" yaml:"enable_cors"`
	MaxBodySize        int64  `json:"max_body_size" yaml:"max_body_size"`
}

// LoggingConfig controls log verbosity and the access-log formatter.
type LoggingConfig struct {
	Level           string `json:"level" yaml:"level"`
	AccessLog       bool   `json:"access_log" yaml:"access_log"`
	ShowHeaders     bool   `json:"show_headers" yaml:"show_headers"`
	AccessLogFormat string `json:"access_log_format" yaml:"access_log_format"`
	AccessLogFile   string `json:"access_log_file,omitempty" yaml:"access_log_file,omitempty"`
	ErrorLogFile    string `json:"error_log_file,omitempty" yaml:"error_log_file,omitempty"`
}

// PerformanceConfig controls connection-level timeouts and caps.
type PerformanceConfig struct {
	KeepAliveTimeout time.Duration `json:"keep_alive_timeout" yaml:"keep_alive_timeout"`
	ReadTimeout      time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout     time.Duration `json:"write_timeout" yaml:"write_timeout"`
	MaxConnections   *int64        `json:"max_connections,omitempty" yaml:"max_connections,omitempty"`
}

// ConfigSnapshot is the single immutable unit the data plane reads. A new
// snapshot is built on every accepted write; it is never mutated in place.
type ConfigSnapshot struct {
	VersionInfo string

	Listener    Listener
	Routes      RoutesBundle
	HTTP        HTTPConfig
	Logging     LoggingConfig
	Performance PerformanceConfig
	VirtualHosts []VirtualHost
}

// Clone returns a copy suitable for a writer to mutate before publish. Slices
// and maps of the snapshot itself are copied; the pointer fields of each
// Route's Match and its header matcher slice are shared with the original.
func (s *ConfigSnapshot) Clone() *ConfigSnapshot {
	if s == nil {
		return &ConfigSnapshot{}
	}
	next := *s

	next.Routes.FaviconPaths = append([]string(nil), s.Routes.FaviconPaths...)
	next.Routes.IndexFiles = append([]string(nil), s.Routes.IndexFiles...)
	next.Routes.CustomRouteOrder = append([]string(nil), s.Routes.CustomRouteOrder...)
	next.Routes.CustomRoutes = make(map[string]RouteAction, len(s.Routes.CustomRoutes))
	for k, v := range s.Routes.CustomRoutes {
		next.Routes.CustomRoutes[k] = v
	}

	if s.Performance.MaxConnections != nil {
		v := *s.Performance.MaxConnections
		next.Performance.MaxConnections = &v
	}

	next.VirtualHosts = make([]VirtualHost, len(s.VirtualHosts))
	for i, vh := range s.VirtualHosts {
		vh.Domains = append([]string(nil), vh.Domains...)
		vh.Routes = append([]Route(nil), vh.Routes...)
		if vh.IndexFiles != nil {
			vh.IndexFiles = append([]string(nil), vh.IndexFiles...)
		}
		next.VirtualHosts[i] = vh
	}

	return &next
}

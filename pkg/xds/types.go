// Package xds implements the control-plane discovery endpoint (spec.md
// §4.8): GET/POST "/v1/discovery[:type]", the ACK/NACK envelope, and the
// per-type resource validators of §4.3. Wire shapes are grounded on
// original_source/src/api/types.rs's DiscoveryResponse/Resource/
// VersionedValue structs.
package xds

import (
	"encoding/json"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// VersionedValue wraps a resource value with its own version/nonce, used in
// the full-snapshot GET response.
type VersionedValue[T any] struct {
	VersionInfo string `json:"version_info"`
	Nonce       int64  `json:"nonce"`
	Value       T      `json:"value"`
}

// ListenerResource is the LISTENER resource's wire shape.
type ListenerResource struct {
	MainServer domain.Endpoint `json:"main_server"`
	APIServer  domain.Endpoint `json:"api_server"`
}

// RouteResource is the ROUTE (legacy bundle) resource's wire shape.
type RouteResource struct {
	FaviconPaths []string                      `json:"favicon_paths,omitempty"`
	IndexFiles   []string                      `json:"index_files"`
	CustomRoutes map[string]domain.RouteAction `json:"custom_routes"`
	Health       domain.HealthConfig           `json:"health"`
}

// PerformanceResource is the PERFORMANCE resource's wire shape; durations are
// carried as whole seconds on the wire, matching original_source's u64
// second fields.
type PerformanceResource struct {
	KeepAliveTimeout uint64  `json:"keep_alive_timeout"`
	ReadTimeout      uint64  `json:"read_timeout"`
	WriteTimeout     uint64  `json:"write_timeout"`
	MaxConnections   *uint64 `json:"max_connections,omitempty"`
}

// ResourceSnapshot is the "resources" field of the full-snapshot GET.
type ResourceSnapshot struct {
	Listener     VersionedValue[ListenerResource]      `json:"listener"`
	Route        VersionedValue[RouteResource]          `json:"route"`
	HTTP         VersionedValue[domain.HTTPConfig]       `json:"http"`
	Logging      VersionedValue[domain.LoggingConfig]    `json:"logging"`
	Performance  VersionedValue[PerformanceResource]     `json:"performance"`
	VirtualHosts VersionedValue[[]domain.VirtualHost]    `json:"virtual_hosts"`
}

// DiscoveryResponse is the GET "/v1/discovery" response body.
type DiscoveryResponse struct {
	VersionInfo string           `json:"version_info"`
	Resources   ResourceSnapshot `json:"resources"`
}

// TypedDiscoveryResponse is the GET "/v1/discovery:<type>" response body.
type TypedDiscoveryResponse struct {
	VersionInfo string            `json:"version_info"`
	Nonce       int64             `json:"nonce"`
	TypeURL     string            `json:"type_url"`
	Resources   []json.RawMessage `json:"resources"`
}

// UpdateRequest is the POST "/v1/discovery:<type>" request body.
type UpdateRequest struct {
	Resources    []json.RawMessage `json:"resources"`
	VersionInfo  string            `json:"version_info,omitempty"`
	ForceRestart bool              `json:"force_restart,omitempty"`
}

// AckResponse is returned on a successful POST.
type AckResponse struct {
	Status      string `json:"status"`
	VersionInfo string `json:"version_info"`
	Nonce       int64  `json:"nonce"`
	Message     string `json:"message"`
}

// NackResponse is returned on a rejected POST.
type NackResponse struct {
	Status      string      `json:"status"`
	ErrorDetail ErrorDetail `json:"error_detail"`
}

// ErrorDetail carries the NACK code and human-readable message.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

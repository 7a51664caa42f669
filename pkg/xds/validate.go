package xds

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// mutatorFor returns the Mutator that applies one POSTed resource (already
// the first element of the "resources" array, per spec.md §4.3's "single
// object wrapped for xDS compatibility") against the current snapshot,
// running that resource type's validator first. The returned error is a
// ConfigInvalid-shaped NACK/400 failure.
func mutatorFor(t domain.ResourceType, raw json.RawMessage) domain.Mutator {
	switch t {
	case domain.ResourceListener:
		return listenerMutator(raw)
	case domain.ResourceRoute:
		return routeMutator(raw)
	case domain.ResourceHTTP:
		return httpMutator(raw)
	case domain.ResourceLogging:
		return loggingMutator(raw)
	case domain.ResourcePerformance:
		return performanceMutator(raw)
	case domain.ResourceVirtualHost:
		return virtualHostMutator(raw)
	default:
		return func(*domain.ConfigSnapshot) (*domain.ConfigSnapshot, error) {
			return nil, domain.ErrUnknownResourceType
		}
	}
}

func listenerMutator(raw json.RawMessage) domain.Mutator {
	return func(cur *domain.ConfigSnapshot) (*domain.ConfigSnapshot, error) {
		var res ListenerResource
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, invalid("malformed listener resource: %v", err)
		}
		if err := validateEndpoint(res.MainServer); err != nil {
			return nil, invalid("main_server: %v", err)
		}
		if err := validateEndpoint(res.APIServer); err != nil {
			return nil, invalid("api_server: %v", err)
		}
		next := cur.Clone()
		next.Listener = domain.Listener{Main: res.MainServer, API: res.APIServer}
		return next, nil
	}
}

func validateEndpoint(e domain.Endpoint) error {
	if e.Port < 1 || e.Port > 65535 {
		return fmt.Errorf("port %d out of range [1, 65535]", e.Port)
	}
	if e.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if net.ParseIP(e.Host) != nil {
		return nil
	}
	if isValidHostname(e.Host) {
		return nil
	}
	return fmt.Errorf("host %q is not a valid IPv4/IPv6/hostname", e.Host)
}

func isValidHostname(host string) bool {
	if host == "localhost" {
		return true
	}
	labels := strings.Split(host, ".")
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, c := range label {
			if !(c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				return false
			}
		}
	}
	return len(labels) > 0
}

func routeMutator(raw json.RawMessage) domain.Mutator {
	return func(cur *domain.ConfigSnapshot) (*domain.ConfigSnapshot, error) {
		var res RouteResource
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, invalid("malformed route resource: %v", err)
		}
		for key, action := range res.CustomRoutes {
			if !strings.HasPrefix(key, "/") {
				return nil, invalid("custom_routes key %q must begin with /", key)
			}
			if err := validateAction(action); err != nil {
				return nil, invalid("custom_routes[%q]: %v", key, err)
			}
		}

		next := cur.Clone()
		next.Routes.FaviconPaths = res.FaviconPaths
		next.Routes.IndexFiles = res.IndexFiles
		next.Routes.Health = res.Health
		next.Routes.CustomRoutes = map[string]domain.RouteAction{}
		next.Routes.CustomRouteOrder = nil
		// JSON object key order is not preserved by encoding/json; route
		// updates therefore re-derive insertion order from the existing
		// snapshot where a key survives unchanged, appending genuinely new
		// keys in map iteration order, which is unspecified and may differ
		// between runs.
		for _, key := range cur.Routes.CustomRouteOrder {
			if action, ok := res.CustomRoutes[key]; ok {
				next.Routes.SetCustomRoute(key, action)
			}
		}
		for key, action := range res.CustomRoutes {
			if _, already := next.Routes.CustomRoutes[key]; !already {
				next.Routes.SetCustomRoute(key, action)
			}
		}
		return next, nil
	}
}

func validateAction(a domain.RouteAction) error {
	switch a.Type {
	case domain.ActionDir, domain.ActionFile:
		if a.Path == "" {
			return fmt.Errorf("%s action requires a non-empty path", a.Type)
		}
	case domain.ActionRedirect:
		if a.Target == "" {
			return fmt.Errorf("redirect action requires a non-empty target")
		}
	case domain.ActionDirect:
		if a.Status < 100 || a.Status > 599 {
			return fmt.Errorf("direct action status %d out of range", a.Status)
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

func httpMutator(raw json.RawMessage) domain.Mutator {
	return func(cur *domain.ConfigSnapshot) (*domain.ConfigSnapshot, error) {
		var res domain.HTTPConfig
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, invalid("malformed http resource: %v", err)
		}
		if res.MaxBodySize < 0 {
			return nil, invalid("max_body_size must be >= 0")
		}
		if res.ServerName == "" {
			return nil, invalid("server_name must be non-empty")
		}
		next := cur.Clone()
		next.HTTP = res
		return next, nil
	}
}

var validLogLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
var validAccessLogFormats = map[string]bool{"combined": true, "common": true, "json": true}

func loggingMutator(raw json.RawMessage) domain.Mutator {
	return func(cur *domain.ConfigSnapshot) (*domain.ConfigSnapshot, error) {
		var res domain.LoggingConfig
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, invalid("malformed logging resource: %v", err)
		}
		if !validLogLevels[strings.ToLower(res.Level)] {
			return nil, invalid("level %q must be one of trace,debug,info,warn,error", res.Level)
		}
		if !validAccessLogFormats[res.AccessLogFormat] && !strings.Contains(res.AccessLogFormat, "$") {
			return nil, invalid("access_log_format %q must be combined, common, json, or contain a $variable", res.AccessLogFormat)
		}
		next := cur.Clone()
		next.Logging = res
		return next, nil
	}
}

func performanceMutator(raw json.RawMessage) domain.Mutator {
	return func(cur *domain.ConfigSnapshot) (*domain.ConfigSnapshot, error) {
		var res PerformanceResource
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, invalid("malformed performance resource: %v", err)
		}
		if res.MaxConnections != nil && *res.MaxConnections < 1 {
			return nil, invalid("max_connections must be >= 1 when present")
		}
		next := cur.Clone()
		next.Performance = performanceFromResource(res)
		return next, nil
	}
}

func virtualHostMutator(raw json.RawMessage) domain.Mutator {
	return func(cur *domain.ConfigSnapshot) (*domain.ConfigSnapshot, error) {
		var hosts []domain.VirtualHost
		if err := json.Unmarshal(raw, &hosts); err != nil {
			return nil, invalid("malformed virtual_host resource: %v", err)
		}
		if len(hosts) == 0 {
			return nil, invalid("resources must be non-empty")
		}
		for _, vh := range hosts {
			if vh.Name == "" {
				return nil, invalid("virtual host name must be non-empty")
			}
			if len(vh.Domains) == 0 {
				return nil, invalid("virtual host %q must declare at least one domain", vh.Name)
			}
			for _, route := range vh.Routes {
				if route.Match.IsEmpty() {
					return nil, invalid("virtual host %q route %q has an empty match", vh.Name, route.Name)
				}
				if err := validateAction(route.Action); err != nil {
					return nil, invalid("virtual host %q route %q: %v", vh.Name, route.Name, err)
				}
			}
		}
		next := cur.Clone()
		next.VirtualHosts = hosts
		return next, nil
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrConfigInvalid, fmt.Sprintf(format, args...))
}

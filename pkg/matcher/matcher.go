// Package matcher implements the request matcher (spec §4.4): the priority
// chain from health probes through virtual-host routing, legacy custom
// routes, and finally a synthesized 404.
package matcher

import (
	"net/http"
	"strings"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// OutcomeKind discriminates what the matcher decided to do.
type OutcomeKind int

const (
	// OutcomeNotFound means nothing matched; the caller should synthesize a 404.
	OutcomeNotFound OutcomeKind = iota
	// OutcomeHealthLiveness/OutcomeHealthReadiness short-circuit to the health responder.
	OutcomeHealthLiveness
	OutcomeHealthReadiness
	// OutcomeAction means a route or custom_routes entry fired.
	OutcomeAction
)

// Outcome is the result of matching one request against a snapshot.
type Outcome struct {
	Kind OutcomeKind

	Action domain.RouteAction

	// MatchedPrefix is the prefix consumed by the match (a RouteMatch.Prefix
	// or a custom_routes key) when Action.Type is dir, used by the static
	// file responder to compute the sub-path served from the directory root.
	// On an exact match (RouteMatch.Path or a custom_routes exact hit) it is
	// the whole request path, so the sub-path is "/" and only the index-file
	// lookup remains.
	MatchedPrefix string

	// IndexFiles is the effective index-file list to try for dir actions:
	// the matched VirtualHost's override when present, else the legacy
	// routes.index_files default.
	IndexFiles []string
}

// Match runs the full priority chain of spec.md §4.4 against one request.
func Match(snap *domain.ConfigSnapshot, host, path string, headers http.Header) Outcome {
	if snap.Routes.Health.Enabled {
		if path == snap.Routes.Health.LivenessPath {
			return Outcome{Kind: OutcomeHealthLiveness}
		}
		if path == snap.Routes.Health.ReadinessPath {
			return Outcome{Kind: OutcomeHealthReadiness}
		}
	}

	if len(snap.VirtualHosts) > 0 {
		if vh := ResolveVirtualHost(host, snap.VirtualHosts); vh != nil {
			indexFiles := vh.IndexFiles
			if indexFiles == nil {
				indexFiles = snap.Routes.IndexFiles
			}
			if route := matchRoutes(path, headers, vh.Routes); route != nil {
				prefix := ""
				if route.Match.Prefix != nil {
					prefix = *route.Match.Prefix
				} else if route.Match.Path != nil {
					prefix = *route.Match.Path
				}
				return Outcome{
					Kind:          OutcomeAction,
					Action:        route.Action.WithDefaults(),
					MatchedPrefix: prefix,
					IndexFiles:    indexFiles,
				}
			}
			return Outcome{Kind: OutcomeNotFound}
		}
	}

	return matchLegacy(snap, path)
}

// matchRoutes scans an ordered route list and returns the first whose match
// holds against (path, headers); nil if none hold.
func matchRoutes(path string, headers http.Header, routes []domain.Route) *domain.Route {
	for i := range routes {
		if routeMatches(path, headers, routes[i].Match) {
			return &routes[i]
		}
	}
	return nil
}

func routeMatches(path string, headers http.Header, m domain.RouteMatch) bool {
	if !pathMatches(path, m) {
		return false
	}
	return headersMatch(headers, m.Headers)
}

func pathMatches(path string, m domain.RouteMatch) bool {
	if m.Path != nil {
		return path == *m.Path
	}
	if m.Prefix != nil {
		return matchPrefix(*m.Prefix, path)
	}
	return false
}

// matchPrefix implements the boundary-respecting prefix rule: "/v1" must not
// match "/v10" (spec.md §4.4). "/" is a special case: it is its own
// separator, so it matches every path rather than requiring a literal "//"
// boundary (spec.md §4.4's root-mapping rewrite depends on this).
func matchPrefix(prefix, path string) bool {
	if path == prefix {
		return true
	}
	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, prefix+"/")
}

func headersMatch(headers http.Header, matchers []domain.HeaderMatcher) bool {
	for _, hm := range matchers {
		if !headerMatches(headers, hm) {
			return false
		}
	}
	return true
}

func headerMatches(headers http.Header, hm domain.HeaderMatcher) bool {
	value := headers.Get(hm.Name)
	_, present := headers[http.CanonicalHeaderKey(hm.Name)]

	if hm.Present != nil {
		if *hm.Present != present {
			return false
		}
		if hm.Exact == nil && hm.Prefix == nil {
			return true
		}
	}
	if hm.Exact != nil {
		return present && value == *hm.Exact
	}
	if hm.Prefix != nil {
		return present && strings.HasPrefix(value, *hm.Prefix)
	}
	return present
}

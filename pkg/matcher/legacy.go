package matcher

import (
	"strings"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// matchLegacy implements spec.md §4.4 step 3: the legacy custom_routes dual
// pass. Pass (a) is an exact-key lookup. Pass (b) considers only directory
// entries (action.Type == dir) whose key is a path-prefix of the request;
// the longest matching key wins, ties broken by insertion order. This is a
// deliberate tightening of original_source/src/handler/router.rs's
// route_request, which does a first-match scan over ALL custom_routes
// entries (directory or not) in iteration order — spec.md §4.4 explicitly
// requires "longest prefix wins; tie-break by insertion order" instead.
func matchLegacy(snap *domain.ConfigSnapshot, path string) Outcome {
	routes := snap.Routes

	if action, ok := routes.CustomRoutes[path]; ok {
		return Outcome{
			Kind:          OutcomeAction,
			Action:        action.WithDefaults(),
			MatchedPrefix: path,
			IndexFiles:    routes.IndexFiles,
		}
	}

	var (
		bestKey   string
		bestLen   = -1
		bestFound bool
	)
	for _, key := range routes.CustomRouteOrder {
		action, ok := routes.CustomRoutes[key]
		if !ok || action.Type != domain.ActionDir {
			continue
		}
		if !matchPrefix(key, path) {
			continue
		}
		if len(key) > bestLen {
			bestKey = key
			bestLen = len(key)
			bestFound = true
		}
	}

	if bestFound {
		return Outcome{
			Kind:          OutcomeAction,
			Action:        routes.CustomRoutes[bestKey].WithDefaults(),
			MatchedPrefix: bestKey,
			IndexFiles:    routes.IndexFiles,
		}
	}

	return Outcome{Kind: OutcomeNotFound}
}

// StripMatchedPrefix computes the sub-path to resolve inside a dir action's
// root: the request path with the matched prefix removed, joined back onto
// "/". A bare "/" prefix mapping to a dir rewrites the served path to the
// directory root itself (spec.md §4.4's "Root-mapping (/ -> dir) rewrites the
// served path to the entry's directory root").
func StripMatchedPrefix(path, prefix string) string {
	if prefix == "" {
		return path
	}
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return rest
}

package matcher

import (
	"strings"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// ResolveVirtualHost picks the best-matching VirtualHost for a Host header
// using exact > wildcard (*.suffix) > catch-all (*) precedence, first
// insertion order wins on equal specificity (spec.md §4.4, grounded on
// original_source/src/routing/vhost.rs's resolve_virtual_host).
func ResolveVirtualHost(host string, hosts []domain.VirtualHost) *domain.VirtualHost {
	host = stripPort(host)

	for i := range hosts {
		for _, d := range hosts[i].Domains {
			if d == host {
				return &hosts[i]
			}
		}
	}

	for i := range hosts {
		for _, d := range hosts[i].Domains {
			if strings.HasPrefix(d, "*.") && matchWildcard(d, host) {
				return &hosts[i]
			}
		}
	}

	for i := range hosts {
		for _, d := range hosts[i].Domains {
			if d == "*" {
				return &hosts[i]
			}
		}
	}

	return nil
}

// MatchDomain is the single-pattern convenience form used by callers that
// already know which VirtualHost they want to test (and by tests).
func MatchDomain(pattern, host string) bool {
	host = stripPort(host)
	if pattern == "*" {
		return true
	}
	if pattern == host {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		return matchWildcard(pattern, host)
	}
	return false
}

func stripPort(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}

// matchWildcard implements "*.example.com" matching both "api.example.com"
// (any subdomain depth) and the bare domain "example.com" itself.
func matchWildcard(pattern, host string) bool {
	suffix := pattern[1:] // ".example.com"
	if strings.HasSuffix(host, suffix) {
		return true
	}
	bare := pattern[2:] // "example.com"
	return host == bare
}

package matcher

import (
	"net/http"
	"testing"

	"github.com/lhanjian/yarhs/pkg/domain"
)

func strp(s string) *string { return &s }

func baseSnapshot() *domain.ConfigSnapshot {
	return &domain.ConfigSnapshot{
		Routes: domain.RoutesBundle{
			IndexFiles:   []string{"index.html"},
			CustomRoutes: map[string]domain.RouteAction{},
			Health:       domain.DefaultHealthConfig(),
		},
	}
}

func TestMatchHealthLiveness(t *testing.T) {
	snap := baseSnapshot()
	out := Match(snap, "example.com", "/healthz", http.Header{})
	if out.Kind != OutcomeHealthLiveness {
		t.Fatalf("expected liveness outcome, got %v", out.Kind)
	}
}

func TestMatchHealthDisabled(t *testing.T) {
	snap := baseSnapshot()
	snap.Routes.Health.Enabled = false
	out := Match(snap, "example.com", "/healthz", http.Header{})
	if out.Kind == OutcomeHealthLiveness {
		t.Fatalf("expected health check to be bypassed when disabled")
	}
}

func TestMatchPrefixBoundaryRespectsPathSegments(t *testing.T) {
	if matchPrefix("/v1", "/v10") {
		t.Fatalf("/v1 must not match /v10")
	}
	if !matchPrefix("/v1", "/v1/users") {
		t.Fatalf("/v1 must match /v1/users")
	}
	if !matchPrefix("/v1", "/v1") {
		t.Fatalf("/v1 must match itself exactly")
	}
}

func TestMatchVirtualHostRouteWins(t *testing.T) {
	snap := baseSnapshot()
	snap.VirtualHosts = []domain.VirtualHost{
		{
			Name:    "api",
			Domains: []string{"api.example.com"},
			Routes: []domain.Route{
				{
					Name:   "users",
					Match:  domain.RouteMatch{Prefix: strp("/users")},
					Action: domain.RouteAction{Type: domain.ActionDirect, Status: 200, Body: "users"},
				},
			},
		},
	}
	out := Match(snap, "api.example.com", "/users/42", http.Header{})
	if out.Kind != OutcomeAction {
		t.Fatalf("expected action outcome, got %v", out.Kind)
	}
	if out.Action.Body != "users" {
		t.Fatalf("expected users action, got %+v", out.Action)
	}
}

func TestMatchVirtualHostResolvedButNoRouteIsNotFoundNotFallthrough(t *testing.T) {
	snap := baseSnapshot()
	snap.Routes.SetCustomRoute("/", domain.RouteAction{Type: domain.ActionDir, Path: "./public"})
	snap.VirtualHosts = []domain.VirtualHost{
		{Name: "api", Domains: []string{"api.example.com"}, Routes: nil},
	}
	out := Match(snap, "api.example.com", "/anything", http.Header{})
	if out.Kind != OutcomeNotFound {
		t.Fatalf("expected NotFound when vhost resolves but no route matches, got %v", out.Kind)
	}
}

func TestMatchFallsThroughToLegacyWhenNoVirtualHostMatches(t *testing.T) {
	snap := baseSnapshot()
	snap.Routes.SetCustomRoute("/legacy", domain.RouteAction{Type: domain.ActionDirect, Status: 200, Body: "legacy"})
	snap.VirtualHosts = []domain.VirtualHost{
		{Name: "other", Domains: []string{"other.example.com"}},
	}
	out := Match(snap, "unmatched.example.com", "/legacy", http.Header{})
	if out.Kind != OutcomeAction || out.Action.Body != "legacy" {
		t.Fatalf("expected fallthrough to legacy custom_routes, got %+v", out)
	}
}

func TestHeaderMatcherExactAndPresent(t *testing.T) {
	headers := http.Header{"X-Api-Key": []string{"secret"}}
	present := true
	hm := domain.HeaderMatcher{Name: "X-Api-Key", Exact: strp("secret"), Present: &present}
	if !headerMatches(headers, hm) {
		t.Fatalf("expected header matcher to hold")
	}
	hm.Exact = strp("wrong")
	if headerMatches(headers, hm) {
		t.Fatalf("expected header matcher to fail on wrong exact value")
	}
}

func TestHeaderMatcherPresentFalseRequiresAbsence(t *testing.T) {
	headers := http.Header{}
	notPresent := false
	hm := domain.HeaderMatcher{Name: "X-Debug", Present: &notPresent}
	if !headerMatches(headers, hm) {
		t.Fatalf("expected absent header to satisfy present=false")
	}
	headers.Set("X-Debug", "1")
	if headerMatches(headers, hm) {
		t.Fatalf("expected present header to fail present=false")
	}
}

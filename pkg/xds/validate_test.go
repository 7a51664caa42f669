package xds

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhanjian/yarhs/pkg/domain"
)

func TestRouteMutatorPreservesSurvivingKeyOrder(t *testing.T) {
	cur := newTestSnapshot()
	cur.Routes.SetCustomRoute("/z", domain.RouteAction{Type: domain.ActionDirect, Status: 200, Body: "z"})
	cur.Routes.SetCustomRoute("/a", domain.RouteAction{Type: domain.ActionDirect, Status: 200, Body: "a"})

	raw, _ := json.Marshal(RouteResource{
		IndexFiles: []string{"index.html"},
		CustomRoutes: map[string]domain.RouteAction{
			"/z":   {Type: domain.ActionDirect, Status: 200, Body: "z-updated"},
			"/a":   {Type: domain.ActionDirect, Status: 200, Body: "a"},
			"/new": {Type: domain.ActionDirect, Status: 200, Body: "new"},
		},
		Health: domain.DefaultHealthConfig(),
	})

	next, err := routeMutator(raw)(cur)
	require.NoError(t, err)
	require.Len(t, next.Routes.CustomRouteOrder, 3)
	assert.Equal(t, "/z", next.Routes.CustomRouteOrder[0])
	assert.Equal(t, "/a", next.Routes.CustomRouteOrder[1])
	assert.Equal(t, "z-updated", next.Routes.CustomRoutes["/z"].Body)
}

func TestRouteMutatorRejectsKeyWithoutLeadingSlash(t *testing.T) {
	cur := newTestSnapshot()
	raw, _ := json.Marshal(RouteResource{
		IndexFiles: []string{"index.html"},
		CustomRoutes: map[string]domain.RouteAction{
			"bad": {Type: domain.ActionDirect, Status: 200},
		},
		Health: domain.DefaultHealthConfig(),
	})

	_, err := routeMutator(raw)(cur)
	assert.Error(t, err, "expected error for custom_routes key without leading slash")
}

func TestListenerMutatorRejectsInvalidPort(t *testing.T) {
	cur := newTestSnapshot()
	raw, _ := json.Marshal(ListenerResource{
		MainServer: domain.Endpoint{Host: "0.0.0.0", Port: 70000},
		APIServer:  domain.Endpoint{Host: "0.0.0.0", Port: 9090},
	})

	_, err := listenerMutator(raw)(cur)
	assert.Error(t, err, "expected error for out-of-range port")
}

func TestListenerMutatorRejectsInvalidHostname(t *testing.T) {
	cur := newTestSnapshot()
	raw, _ := json.Marshal(ListenerResource{
		MainServer: domain.Endpoint{Host: "not a host!", Port: 8080},
		APIServer:  domain.Endpoint{Host: "0.0.0.0", Port: 9090},
	})

	_, err := listenerMutator(raw)(cur)
	assert.Error(t, err, "expected error for invalid hostname")
}

func TestVirtualHostMutatorRejectsEmptyMatch(t *testing.T) {
	cur := newTestSnapshot()
	hosts := []domain.VirtualHost{
		{
			Name:    "api",
			Domains: []string{"api.example.com"},
			Routes: []domain.Route{
				{Name: "bad", Match: domain.RouteMatch{}, Action: domain.RouteAction{Type: domain.ActionDirect, Status: 200}},
			},
		},
	}
	raw, _ := json.Marshal(hosts)

	_, err := virtualHostMutator(raw)(cur)
	assert.Error(t, err, "expected error for route with empty match")
}

func TestVirtualHostMutatorRejectsMissingDomains(t *testing.T) {
	cur := newTestSnapshot()
	hosts := []domain.VirtualHost{{Name: "api", Domains: nil}}
	raw, _ := json.Marshal(hosts)

	_, err := virtualHostMutator(raw)(cur)
	assert.Error(t, err, "expected error for virtual host with no domains")
}

func TestLoggingMutatorRejectsUnknownFormatWithoutVariable(t *testing.T) {
	cur := newTestSnapshot()
	raw, _ := json.Marshal(domain.LoggingConfig{Level: "info", AccessLogFormat: "weird"})

	_, err := loggingMutator(raw)(cur)
	assert.Error(t, err, "expected error for unrecognized access_log_format without a $variable")
}

func TestLoggingMutatorAcceptsCustomPatternWithVariable(t *testing.T) {
	cur := newTestSnapshot()
	raw, _ := json.Marshal(domain.LoggingConfig{Level: "info", AccessLogFormat: "$method $path"})

	_, err := loggingMutator(raw)(cur)
	assert.NoError(t, err)
}

func TestPerformanceMutatorRejectsZeroMaxConnections(t *testing.T) {
	cur := newTestSnapshot()
	zero := uint64(0)
	raw, _ := json.Marshal(PerformanceResource{MaxConnections: &zero})

	_, err := performanceMutator(raw)(cur)
	assert.Error(t, err, "expected error for max_connections=0")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhanjian/yarhs/pkg/domain"
)

func TestLoadWithEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.APIPort)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  host: "127.0.0.1"
  port: 9999
  api_host: "127.0.0.1"
  api_port: 9998
logging:
  level: debug
http:
  server_name: custom-server
routes:
  custom_routes:
    - path: /a
      type: direct
      status: 200
      body: alpha
    - path: /b
      type: direct
      status: 200
      body: beta
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Routes.CustomRoutes, 2)
	assert.Equal(t, "/a", cfg.Routes.CustomRoutes[0].Path)
	assert.Equal(t, "/b", cfg.Routes.CustomRoutes[1].Path)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesTakePrecedenceOverFileDefaults(t *testing.T) {
	t.Setenv("YARHS_HOST", "10.0.0.1")
	t.Setenv("YARHS_PORT", "7000")
	t.Setenv("YARHS_LOG_LEVEL", "warn")
	t.Setenv("YARHS_SERVER_NAME", "env-server")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "env-server", cfg.HTTP.ServerName)
}

func TestValidateRejectsInvalidLogLevel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "nonsense"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsPortOutOfRange(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsSamePortSameHost(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.APIPort = cfg.Server.Port
	cfg.Server.APIHost = cfg.Server.Host
	assert.Error(t, cfg.Validate(), "expected error when api_port collides with port on the same host")
}

func TestValidateAllowsSamePortOnDifferentHost(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.APIPort = cfg.Server.Port
	cfg.Server.APIHost = "127.0.0.1"
	cfg.Server.Host = "0.0.0.0"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsEmptyServerName(t *testing.T) {
	cfg := defaultConfig()
	cfg.HTTP.ServerName = ""
	assert.Error(t, cfg.Validate())
}

func TestToSnapshotConvertsSecondsToDuration(t *testing.T) {
	cfg := defaultConfig()
	cfg.Performance.ReadTimeout = 15
	snap := cfg.ToSnapshot()
	assert.Equal(t, 15*time.Second, snap.Performance.ReadTimeout)
}

func TestToSnapshotPreservesCustomRouteOrder(t *testing.T) {
	cfg := defaultConfig()
	cfg.Routes.CustomRoutes = []CustomRouteEntry{
		{Path: "/z", Action: domain.RouteAction{Type: domain.ActionDirect, Status: 200, Body: "z"}},
		{Path: "/a", Action: domain.RouteAction{Type: domain.ActionDirect, Status: 200, Body: "a"}},
	}
	snap := cfg.ToSnapshot()
	assert.Equal(t, []string{"/z", "/a"}, snap.Routes.CustomRouteOrder)
}

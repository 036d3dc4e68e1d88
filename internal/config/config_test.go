package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
environment: DEV
db:
  host: localhost
  port: 5432
  user: vendor_compliance
  name: vendor_compliance
  sslmode: disable
redis:
  enable: true
  addr: localhost:6379
  status_ttl: 10s
engine:
  service_key: test-key
auth:
  issuer: https://issuer.example.com/
  dev_mode_bypass: true
`), 0o644))
	t.Chdir(dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "DEV", cfg.Environment)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.True(t, cfg.Redis.Enable)
	assert.Equal(t, 10*time.Second, cfg.Redis.StatusTTL)
	assert.Equal(t, "test-key", cfg.Engine.ServiceKey)
	// trailing slash on the issuer is normalized away
	assert.Equal(t, "https://issuer.example.com", cfg.Auth.Issuer)
	// defaults applied for unset paths
	assert.Equal(t, "documentation/agents/review-engine-api.md", cfg.Engine.DocsPath)
	assert.Equal(t, "data/vendor-docs", cfg.Storage.DocumentsDir)
}

func TestNormalizeIssuer(t *testing.T) {
	assert.Equal(t, "https://idp.example.com", normalizeIssuer("https://idp.example.com/"))
	assert.Equal(t, "https://idp.example.com/realms/main", normalizeIssuer(" https://idp.example.com/realms/main "))
	assert.Equal(t, "", normalizeIssuer(""))
}

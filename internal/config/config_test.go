package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: klaso-client
  version: 1.0.0
backend:
  base_url: http://localhost:8081/api/
database:
  host: localhost
  port: 3306
  user: klaso
  password: secret
  name: klaso
  parse_time: true
redis:
  host: localhost
  port: 6379
`

func TestParse(t *testing.T) {
	t.Setenv(BackendURLEnv, "")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081/api", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "klaso:exports", cfg.Redis.ExportQueue)
	assert.Equal(t, ":dlq", cfg.Redis.DLQSuffix)
	assert.Equal(t, 2, cfg.Workers.Export.Count)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, "klaso:secret@tcp(localhost:3306)/klaso?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DatabaseDSN())
}

func TestParseBackendOverride(t *testing.T) {
	t.Setenv(BackendURLEnv, "https://api.klaso.test")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "https://api.klaso.test", cfg.Backend.BaseURL)
}

func TestParseRequiresBackend(t *testing.T) {
	t.Setenv(BackendURLEnv, "")

	_, err := Parse([]byte("app:\n  name: x\n"))
	assert.Error(t, err)
}

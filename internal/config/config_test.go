package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 0.4, cfg.Catalog.Threshold)
	assert.Equal(t, "qwen", cfg.Catalog.ClassifyVariant)
	assert.Equal(t, "ingredient_gemma", cfg.Catalog.Tables["gemma"])
	assert.Equal(t, "gemma2:2b", cfg.Inference.Models["tinygemma"])
	assert.Equal(t, 300, cfg.Inference.TimeoutSeconds)
	assert.Equal(t, 10, cfg.OCR.MaxUploadMB)
	assert.Equal(t, 40, cfg.OCR.MaxMegapixels)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9000
database:
  driver: mysql
  user: klean
  password: pw
catalog:
  classifyVariant: default
  tables:
    default: products
inference:
  provider: openai
  models:
    default: gpt-4o-mini
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, map[string]string{"default": "products"}, cfg.Catalog.Tables)
	assert.Equal(t, "klean:pw@tcp(localhost:3306)/klean?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DSN())
	assert.Empty(t, cfg.Inference.BaseURL)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[server]
port = 8080

[catalog]
threshold = 0.5

[catalog.tables]
default = "ingredient"
qwen = "ingredient_qwen"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Catalog.Threshold)
	assert.Len(t, cfg.Catalog.Tables, 2)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KLEAN_PORT", "7000")
	t.Setenv("KLEAN_DB_HOST", "db.internal")
	t.Setenv("KLEAN_API_KEYS", "a, b,")
	t.Setenv("KLEAN_RATE_LIMIT", "true")
	t.Setenv("KLEAN_THRESHOLD", "0.3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 0.3, cfg.Catalog.Threshold)
	assert.Equal(t, "postgres://:@db.internal:5432/klean?sslmode=disable", cfg.PostgresDSN())
}

func TestLoad_EnvBadNumber(t *testing.T) {
	t.Setenv("KLEAN_PORT", "eighty")
	_, err := Load("")
	assert.ErrorContains(t, err, "KLEAN_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad driver", "database:\n  driver: oracle\n", "database.driver"},
		{"bad table", "catalog:\n  tables:\n    default: \"x; drop\"\n    qwen: q\n", "invalid table name"},
		{"missing classify table", "catalog:\n  classifyVariant: llama\n", "has no table"},
		{"threshold", "catalog:\n  threshold: 1.5\n", "threshold"},
		{"provider", "inference:\n  provider: bedrock\n", "inference.provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "mysql://u:p@tcp(h:3306)/d?parseTime=true&multiStatements=true",
		MigrateURL("mysql", "u:p@tcp(h:3306)/d?parseTime=true"))
	assert.Equal(t, "postgres://h/d", MigrateURL("postgres", "postgres://h/d"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfig_MergesEnvironmentOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  port: 5432
  name: dashboard
server:
  port: ":8080"
`)
	writeFile(t, dir, "production.yaml", `
db:
  host: db.internal
`)

	cfgMap, err := LoadConfig("production", dir)
	require.NoError(t, err)

	var out struct {
		DB     DBConfig     `yaml:"db"`
		Server ServerConfig `yaml:"server"`
	}
	require.NoError(t, Decode(cfgMap, &out))

	assert.Equal(t, "db.internal", out.DB.Host)
	assert.Equal(t, 5432, out.DB.Port)
	assert.Equal(t, "dashboard", out.DB.Name)
	assert.Equal(t, ":8080", out.Server.Port)
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: \":9000\"\n")

	cfgMap, err := LoadConfig("staging", dir)
	require.NoError(t, err)

	var out struct {
		Server ServerConfig `yaml:"server"`
	}
	require.NoError(t, Decode(cfgMap, &out))
	assert.Equal(t, ":9000", out.Server.Port)
}

func TestLoadConfig_SubstitutesSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
jwt:
  secret: "${JWT_SECRET}"
db:
  password: "pw-${DB_PASSWORD}"
`)
	writeFile(t, dir, "secrets.env", "# comment\nJWT_SECRET=\"s3cret\"\nDB_PASSWORD=abc\n")

	cfgMap, err := LoadConfig("local", dir)
	require.NoError(t, err)

	var out struct {
		JWT JWTConfig `yaml:"jwt"`
		DB  DBConfig  `yaml:"db"`
	}
	require.NoError(t, Decode(cfgMap, &out))
	assert.Equal(t, "s3cret", out.JWT.Secret)
	assert.Equal(t, "pw-abc", out.DB.Password)
}

func TestLoadConfig_MissingBaseFails(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base.yaml")
}

func TestOverrideDBFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "other")

	cfg := DBConfig{Host: "localhost", Port: 5432, Name: "dashboard", User: "app"}
	OverrideDBFromEnv(&cfg)

	assert.Equal(t, "pg", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "other", cfg.Name)
	assert.Equal(t, "app", cfg.User)
}

func TestRefreshWindowsDefaults(t *testing.T) {
	var c RefreshConfig
	assert.Equal(t, "30s", c.ManualWindow().String())
	assert.Equal(t, "5s", c.EventWindow().String())
	assert.Equal(t, "500ms", c.ScanWindow().String())

	c.Manual = "10s"
	c.Event = "garbage"
	assert.Equal(t, "10s", c.ManualWindow().String())
	assert.Equal(t, "5s", c.EventWindow().String())
}

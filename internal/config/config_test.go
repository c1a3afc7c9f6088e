package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":3003", cfg.Addr())
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.RateLimit.ContactMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.ContactWindow)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.True(t, cfg.Auth.AllowSignup)
}

func TestLoad_EnvOverrides(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"PORT":                     "8080",
		"STORE_DRIVER":             "mongo",
		"MONGODB_URI":              "mongodb://db:27017",
		"CORS_ORIGINS":             "https://saba.studio, https://admin.saba.studio,",
		"CONTACT_RATE_WINDOW":      "900000",
		"CONTACT_DUPLICATE_WINDOW": "0s",
		"AUTH_REQUIRED":            "false",
		"AUTH_ALLOW_SIGNUP":        "false",
		"UPLOAD_MAX_BYTES":         "2048",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.MongoURI)
	assert.Equal(t, []string{"https://saba.studio", "https://admin.saba.studio"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.ContactWindow)
	assert.Equal(t, time.Duration(0), cfg.RateLimit.DuplicateWindow)
	assert.False(t, cfg.Auth.Required)
	assert.False(t, cfg.Auth.AllowSignup)
	assert.Equal(t, int64(2048), cfg.Upload.MaxBytes)
}

func TestLoad_ReportsEveryBadVariable(t *testing.T) {
	_, err := load(envMap(map[string]string{
		"PORT":          "eighty",
		"AUTH_REQUIRED": "maybe",
		"JWT_EXPIRY":    "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "AUTH_REQUIRED")
	assert.Contains(t, err.Error(), "JWT_EXPIRY")
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
store:
  driver: memory
rate_limit:
  contact_max: 5
  contact_window: 10m
email:
  studio_name: Saba Architects
`), 0o600))

	cfg, err := load(envMap(map[string]string{
		"CONFIG_FILE": path,
		"PORT":        "9100",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "environment wins over the file")
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.RateLimit.ContactMax)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.ContactWindow)
	assert.Equal(t, "Saba Architects", cfg.Email.StudioName)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.LoginWindow, "keys absent from the file keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(envMap(map[string]string{"CONFIG_FILE": "/does/not/exist.yaml"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, true},
		{"minio without endpoint", func(c *Config) { c.Upload.Driver = UploadMinio }, true},
		{"production default secret", func(c *Config) { c.AppEnv = "production" }, true},
		{"production short secret", func(c *Config) {
			c.AppEnv = "production"
			c.Auth.JWTSecret = "short"
		}, true},
		{"production ok", func(c *Config) {
			c.AppEnv = "production"
			c.Auth.JWTSecret = "a-production-secret-that-is-long-enough"
		}, false},
		{"production without auth", func(c *Config) {
			c.AppEnv = "production"
			c.Auth.JWTSecret = "a-production-secret-that-is-long-enough"
			c.Auth.Required = false
		}, true},
		{"email without host", func(c *Config) { c.Email.Enabled = true }, true},
		{"zero contact max", func(c *Config) { c.RateLimit.ContactMax = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

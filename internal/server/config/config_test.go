package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 7*24*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, "slog", c.LogBackend)
	assert.Empty(t, c.SecretKey, "secret must never have a default")
	assert.Empty(t, c.DatabaseDSN, "DSN must never have a default")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.LoadDefaults()
		c.SecretKey = testSecret
		c.DatabaseDSN = "postgres://localhost/auth"
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing dsn", func(c *Config) { c.DatabaseDSN = "" }, ErrMissingDatabaseDSN},
		{"missing secret", func(c *Config) { c.SecretKey = "" }, ErrMissingSecretKey},
		{"short secret", func(c *Config) { c.SecretKey = "starry-sky-secret-key" }, ErrShortSecretKey},
		{"zero ttl", func(c *Config) { c.TokenValidityDuration = 0 }, ErrInvalidTokenTTL},
		{"cost too low", func(c *Config) { c.BcryptCost = 1 }, ErrInvalidBcryptCost},
		{"cost too high", func(c *Config) { c.BcryptCost = 99 }, ErrInvalidBcryptCost},
		{"unknown log backend", func(c *Config) { c.LogBackend = "logrus" }, ErrInvalidLogBackend},
		{"empty log backend", func(c *Config) { c.LogBackend = "" }, ErrInvalidLogBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_RefusesWithoutSecret(t *testing.T) {
	_, err := Load(nil, envMap(map[string]string{EnvDatabaseDSN: "postgres://db"}))
	require.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestLoad_RefusesWithoutDSN(t *testing.T) {
	_, err := Load(nil, envMap(map[string]string{EnvSecretKey: testSecret}))
	require.ErrorIs(t, err, ErrMissingDatabaseDSN)
}

func TestLoad_FromEnvironment(t *testing.T) {
	cfg, err := Load(nil, envMap(map[string]string{
		EnvSecretKey:   testSecret,
		EnvDatabaseDSN: "postgres://db",
		EnvHTTPAddr:    ":9000",
		EnvGRPCAddr:    ":9001",
		EnvTokenTTL:    "2h",
		EnvBcryptCost:  "10",
		EnvLogBackend:  "zerolog",
	}))
	require.NoError(t, err)

	assert.Equal(t, testSecret, cfg.SecretKey)
	assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
	assert.Equal(t, ":9000", cfg.EndpointAddrHTTP)
	assert.Equal(t, ":9001", cfg.EndpointAddrGRPC)
	assert.Equal(t, 2*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "zerolog", cfg.LogBackend)
}

func TestLoad_BadEnvironmentValues(t *testing.T) {
	_, err := Load(nil, envMap(map[string]string{EnvTokenTTL: "soon"}))
	require.Error(t, err)

	_, err = Load(nil, envMap(map[string]string{EnvBcryptCost: "ten"}))
	require.Error(t, err)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	cfg, err := Load(
		[]string{"-s", testSecret + "-flag", "-t", "1"},
		envMap(map[string]string{EnvSecretKey: testSecret, EnvDatabaseDSN: "postgres://db"}),
	)
	require.NoError(t, err)
	assert.Equal(t, testSecret+"-flag", cfg.SecretKey)
	assert.Equal(t, time.Hour, cfg.TokenValidityDuration)
}

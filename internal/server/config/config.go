// Package config handles configuration for the server component: defaults,
// JSON file overlay, environment, command-line flags and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/skyauth/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretKeyLength is the shortest HMAC secret accepted. HS256 keys shorter
// than the hash output weaken the MAC.
const MinSecretKeyLength = 32

var (
	ErrMissingSecretKey   = errors.New("secret key is required")
	ErrShortSecretKey     = fmt.Errorf("secret key must be at least %d bytes", MinSecretKeyLength)
	ErrMissingDatabaseDSN = errors.New("database DSN is required")
	ErrInvalidTokenTTL    = errors.New("token validity duration must be positive")
	ErrInvalidBcryptCost  = fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	ErrInvalidLogBackend  = fmt.Errorf("log backend must be %q or %q", logging.BackendSlog, logging.BackendZerolog)
)

// Config holds runtime settings for the auth server.
//
// SecretKey and DatabaseDSN have no defaults: the process must be given both.
type Config struct {
	EndpointAddrHTTP      string
	EndpointAddrGRPC      string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	BcryptCost            int
	LogBackend            string
}

// LoadDefaults populates the settings that are safe to default.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.TokenValidityDuration = 7 * 24 * time.Hour
	c.BcryptCost = 12
	c.LogBackend = logging.BackendSlog
}

// Validate reports the first setting that prevents the server from starting.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseDSN == "":
		return ErrMissingDatabaseDSN
	case c.SecretKey == "":
		return ErrMissingSecretKey
	case len(c.SecretKey) < MinSecretKeyLength:
		return ErrShortSecretKey
	case c.TokenValidityDuration <= 0:
		return ErrInvalidTokenTTL
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return ErrInvalidBcryptCost
	case !logging.ValidBackend(c.LogBackend):
		return ErrInvalidLogBackend
	}
	return nil
}

// Load builds a Config from defaults, then the JSON file named by -c/-config,
// then the environment, then flags, and validates the result.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg, getenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.Getenv)
}

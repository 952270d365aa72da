package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variable names. JWT_SECRET and DATABASE_URL keep the names the
// deployment already uses.
const (
	EnvSecretKey   = "JWT_SECRET"
	EnvDatabaseDSN = "DATABASE_URL"
	EnvHTTPAddr    = "HTTP_ADDR"
	EnvGRPCAddr    = "GRPC_ADDR"
	EnvTokenTTL    = "TOKEN_TTL"
	EnvBcryptCost  = "BCRYPT_COST"
	EnvLogBackend  = "LOG_BACKEND"
)

// parseEnv overlays non-empty environment variables onto config.
// TOKEN_TTL uses time.ParseDuration syntax ("168h").
func parseEnv(config *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}

	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&config.SecretKey, EnvSecretKey)
	setString(&config.DatabaseDSN, EnvDatabaseDSN)
	setString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	setString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	setString(&config.LogBackend, EnvLogBackend)

	if v := getenv(EnvTokenTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTokenTTL, err)
		}
		config.TokenValidityDuration = d
	}

	if v := getenv(EnvBcryptCost); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBcryptCost, err)
		}
		config.BcryptCost = n
	}

	return nil
}

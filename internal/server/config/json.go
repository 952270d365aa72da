package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/skyauth/internal/flagx"
	"github.com/dmitrijs2005/skyauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent fields leave
// the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	BcryptCost            *int            `json:"bcrypt_cost"`
	LogBackend            *string         `json:"log_backend"`
}

// parseJson loads the file named by -c/-config in args, if any, and copies
// the fields it sets into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	copyIfSet(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	copyIfSet(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	copyIfSet(&config.DatabaseDSN, c.DatabaseDSN)
	copyIfSet(&config.SecretKey, c.SecretKey)
	copyIfSet(&config.BcryptCost, c.BcryptCost)
	copyIfSet(&config.LogBackend, c.LogBackend)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}

	return nil
}

func copyIfSet[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

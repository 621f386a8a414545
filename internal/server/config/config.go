// Package config handles configuration for the authentication server,
// including defaults, JSON overlay, environment variables and command-line
// flags.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/dmitrijs2005/dbsauth/internal/common"
)

// Config holds runtime settings for the auth server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256).
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - AllowedOrigins: origins allowed to make credentialed cross-origin calls.
//   - Environment: "production" enables Secure cookies and HSTS.
type Config struct {
	EndpointAddrHTTP             string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	AllowedOrigins               []string
	Environment                  string
}

// LoadDefaults populates Config with development defaults. SecretKey stays
// empty and Validate rejects it.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.AllowedOrigins = []string{"http://localhost:5173"}
	c.Environment = "development"
}

// IsProduction reports whether the server runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == common.EnvironmentProduction
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required (JWT_SECRET or -s)"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("refresh token validity must be positive"))
	}
	if c.IsProduction() && c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required in production"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.Getenv)
}

// load applies defaults, then the optional JSON file, then environment
// variables and finally command-line flags.
func load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, getenv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	return cfg, nil
}

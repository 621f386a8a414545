package config

import "strings"

// parseEnv overlays the variables the deployment environment provides:
//
//	PORT             listen port, becomes ":PORT"
//	DATABASE_URL     PostgreSQL DSN
//	JWT_SECRET       HMAC signing secret
//	ALLOWED_ORIGINS  comma-separated CORS allow-list
//	APP_ENV          environment name ("production", "development", ...)
//
// Unset or empty variables leave the current value alone.
func parseEnv(config *Config, getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		config.DatabaseDSN = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		config.AllowedOrigins = splitList(v)
	}
	if v := getenv("APP_ENV"); v != "" {
		config.Environment = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret",
				"-t", "1", "-r", "3", "-o", "https://x.example,https://y.example", "-e", "production",
			},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:9090",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				AllowedOrigins:               []string{"https://x.example", "https://y.example"},
				Environment:                  "production",
			},
		},
		{
			name: "unrelated flags are ignored",
			args: []string{"-c", "cfg.json", "-s", "k", "-verbose"},
			expected: &Config{
				SecretKey:                    "k",
				EndpointAddrHTTP:             ":8080",
				AccessTokenValidityDuration:  15 * time.Minute,
				RefreshTokenValidityDuration: 7 * 24 * time.Hour,
				AllowedOrigins:               []string{"http://localhost:5173"},
				Environment:                  "development",
			},
		},
		{
			name:    "non-numeric minutes",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			config.LoadDefaults()

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, config)
		})
	}
}

func TestParseFlags_KeepsSubMinuteDurationsWhenUnset(t *testing.T) {
	config := &Config{AccessTokenValidityDuration: 30 * time.Second, RefreshTokenValidityDuration: time.Hour}

	require.NoError(t, parseFlags(config, []string{"-s", "k"}))

	assert.Equal(t, 30*time.Second, config.AccessTokenValidityDuration)
	assert.Equal(t, time.Hour, config.RefreshTokenValidityDuration)
}

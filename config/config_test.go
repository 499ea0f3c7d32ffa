package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret-key-at-least-32-chars-long")
	t.Setenv("RESEND_API_KEY", "re_test_key")
	t.Setenv("EMAIL_FROM_ADDRESS", "digest@splitz.app")
	t.Setenv("DIGEST_SECRET", "digest-secret-16ch")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 8, cfg.Invitation.CodeLength)
	assert.Equal(t, 7, cfg.Invitation.TTLDays)
	assert.Equal(t, 0, cfg.Invitation.DefaultMaxUses)
	assert.Equal(t, 500, cfg.Digest.BatchSize)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("INVITATION_TTL_DAYS", "14")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 14, cfg.Invitation.TTLDays)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "short jwt secret",
			env:     map[string]string{"JWT_SECRET_KEY": "too-short"},
			wantErr: "JWT secret key",
		},
		{
			name:    "missing resend key",
			env:     map[string]string{"RESEND_API_KEY": ""},
			wantErr: "resend API key",
		},
		{
			name:    "short digest secret",
			env:     map[string]string{"DIGEST_SECRET": "short"},
			wantErr: "digest secret",
		},
		{
			name:    "invite code too short",
			env:     map[string]string{"INVITATION_CODE_LENGTH": "4"},
			wantErr: "code length",
		},
		{
			name:    "zero invitation ttl",
			env:     map[string]string{"INVITATION_TTL_DAYS": "0"},
			wantErr: "TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "splitz",
		Password: "p@ss word",
		Name:     "splitz_dev",
		SSLMode:  "disable",
	}

	url := cfg.URL()
	assert.Contains(t, url, "postgres://splitz:")
	assert.Contains(t, url, "@localhost:5432/splitz_dev?sslmode=disable")
	// Password characters must be escaped so the URL stays parseable.
	assert.NotContains(t, url, "p@ss word")
}

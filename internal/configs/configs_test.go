package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("S3_BUCKET_NAME", "parley-files")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "minio")
	t.Setenv("S3_SECRET_ACCESS_KEY", "minio123")
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigInvalidPort(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("PORT", "not-a-port")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("PORT", "80")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://app@db:5432/parley")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigMissingS3(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_BUCKET_NAME", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

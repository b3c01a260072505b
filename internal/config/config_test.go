package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"RESERVED_USERNAME", "AUTOTEST_API_TOKEN", "CSRF_ENABLED", "AUTH_USER_HEADER", "MAX_UPLOAD_BYTES"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "kerneltest", cfg.Upload.ReservedUsername)
	assert.Equal(t, int64(2<<20), cfg.Upload.MaxBytes)
	assert.Empty(t, cfg.Upload.AutotestToken)
	assert.True(t, cfg.Session.CSRFEnabled)
	assert.Equal(t, "X-Remote-User", cfg.Session.UserHeader)
}

func TestLogConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, LogConfig{}.Location())
	assert.Equal(t, time.UTC, LogConfig{Timezone: "Not/AZone"}.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

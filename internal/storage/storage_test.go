package storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"kerneltest/internal/config"
)

func TestLogKey(t *testing.T) {
	assert.Equal(t, "logs/3f1c.log", LogKey("3f1c"))
}

func TestTranslateErr(t *testing.T) {
	missing := translateErr("logs/a.log", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
	assert.ErrorIs(t, missing, ErrObjectNotFound)
	assert.Contains(t, missing.Error(), "logs/a.log")

	other := errors.New("connection refused")
	assert.Same(t, other, translateErr("logs/a.log", other))
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{name: "no endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}, want: "endpoint"},
		{name: "no credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "c"}, want: "credentials"},
		{name: "no bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, want: "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(tt.cfg)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

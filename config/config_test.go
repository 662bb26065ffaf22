package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	c := AppConfig{
		JWTSecret:         "secret",
		AdminPasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		MediaProvider:     "local",
	}
	applyDefaults(&c)
	applyDerived(&c)
	return c
}

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	applyDerived(&c)

	assert.Equal(t, "5001", c.AppPort)
	assert.Equal(t, "release", c.GinMode)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, "cloudinary", c.MediaProvider)
	assert.Equal(t, 500, c.UploadMaxFileMB)
	assert.Equal(t, 50, c.UploadMaxFiles)
	assert.Equal(t, 0, c.UploadRetries)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, "http://localhost:5001/media", c.LocalMediaBaseURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("MEDIA_PROVIDER", "R2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://localhost:5174,")
	t.Setenv("UPLOAD_RETRIES", "3")
	t.Setenv("REDIS_ENABLED", "true")

	var c AppConfig
	applyDefaults(&c)
	applyEnvOverrides(&c)
	applyDerived(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "5432", c.DBPort)
	assert.Equal(t, "r2", c.MediaProvider)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:5174"}, c.AllowedOrigins)
	assert.Equal(t, 3, c.UploadRetries)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, "http://localhost:8080/media", c.LocalMediaBaseURL)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validConfig()))

	c := validConfig()
	c.JWTSecret = ""
	assert.ErrorContains(t, Validate(c), "JWTSecret")

	c = validConfig()
	c.MediaProvider = "cloudinary"
	assert.ErrorContains(t, Validate(c), "CloudinaryCloudName")

	c = validConfig()
	c.MediaProvider = "s3"
	assert.ErrorContains(t, Validate(c), "S3_BUCKET")

	c = validConfig()
	c.MediaProvider = "ftp"
	assert.Error(t, Validate(c))

	c = validConfig()
	c.UploadRetries = 11
	assert.ErrorContains(t, Validate(c), "UploadRetries")
}

func TestLoadJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"app": {"AppPort": "6000", "JWTSecret": "from-file"},
		"database": {"Driver": "memory"},
		"media": {"Provider": "local", "LocalDir": "/tmp/media"},
		"upload": {"MaxFileMB": 20, "Concurrency": 2}
	}`), 0o644))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))

	assert.Equal(t, "6000", c.AppPort)
	assert.Equal(t, "from-file", c.JWTSecret)
	assert.Equal(t, "memory", c.DBDriver)
	assert.Equal(t, "/tmp/media", c.LocalMediaDir)
	assert.Equal(t, 20, c.UploadMaxFileMB)
	assert.Equal(t, 2, c.UploadConcurrency)

	// missing file is not an error
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "none.json"), &c))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"app":`), 0o644))
	assert.Error(t, loadJSONConfig(bad, &c))
}

func TestDSN(t *testing.T) {
	c := validConfig()
	c.DBUser, c.DBPassword, c.DBName = "studio", "pw", "cms"
	assert.Equal(t, "studio:pw@tcp(127.0.0.1:3306)/cms?charset=utf8mb4&parseTime=True&loc=UTC", DSN(c))

	c.DBDriver = "postgres"
	c.DBPort = "5432"
	assert.Contains(t, DSN(c), "host=127.0.0.1 port=5432 user=studio")

	c.DatabaseURI = "postgres://u:p@db/cms"
	assert.Equal(t, "postgres://u:p@db/cms", DSN(c))

	c.DBDriver = "memory"
	d, err := Dialector(c)
	assert.NoError(t, err)
	assert.Nil(t, d)

	c.DBDriver = "sqlite"
	_, err = Dialector(c)
	assert.Error(t, err)
}

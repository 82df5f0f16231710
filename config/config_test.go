package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Empty(t, cfg.Classifier.URL)
	assert.Empty(t, cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "credit.assessments", cfg.Kafka.Topic)
	assert.Equal(t, 10*time.Second, cfg.Recorder.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("CREDITICIO_SERVER_ADDR", ":9090")
	t.Setenv("CREDITICIO_CLASSIFIER_URL", "http://model:8000/predict")
	t.Setenv("CREDITICIO_REDIS_ADDR", "redis:6379")
	t.Setenv("CREDITICIO_RECORDER_TIMEOUT", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://model:8000/predict", cfg.Classifier.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 3*time.Second, cfg.Recorder.Timeout)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	path := filepath.Join(dir, "crediticio.yaml")
	content := `server:
  addr: ":7070"
postgres:
  host: "db"
  dbname: "riesgo"
kafka:
  brokers: ["k1:9092", "k2:9092"]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, "riesgo", cfg.Postgres.DBName)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CREDITICIO_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CREDITICIO_LOG_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	chdirForTest(t, t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdirForTest(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Classifier.StubProbability = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Classifier.StubProbability = math.NaN()
	assert.Error(t, cfg.Validate())

	cfg.Classifier.StubProbability = 0.2
	cfg.RateLimit.Burst = 0
	assert.Error(t, cfg.Validate())
}

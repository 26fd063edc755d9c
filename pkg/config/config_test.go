package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "gemini-3-flash-preview", cfg.AI.Model)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 4, cfg.AI.Workers)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, int64(50*1024*1024), cfg.Media.MaxBytes)
	assert.Contains(t, cfg.Media.AllowedMIMEs, "video/mp4")
	assert.Equal(t, 24*time.Hour, cfg.Cache.SessionTTL)
}

func TestFromViperFallsBackToGeminiKey(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"GEMINI_API_KEY": "secret"}))
	assert.Equal(t, "secret", cfg.AI.APIKey)

	cfg = fromViper(newTestViper(map[string]interface{}{"API_KEY": "primary", "GEMINI_API_KEY": "secondary"}))
	assert.Equal(t, "primary", cfg.AI.APIKey)
}

func TestFromViperNormalisesDriver(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"DB_DRIVER": " SQLite "}))
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)

	cfg = fromViper(newTestViper(map[string]interface{}{"DB_DRIVER": "mysql"}))
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}

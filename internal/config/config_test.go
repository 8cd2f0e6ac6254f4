package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MAX_UPLOAD_MB", "AI_API_KEY", "AI_ON_DEGENERATE", "ALLOW_ORIGINS", "ANALOGUE_THRESHOLD"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, 8082, cfg.Port)
	assert.Equal(t, 20, cfg.MaxUploadMB)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.True(t, cfg.AIOnDegenerate)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 0.5, cfg.AnalogueThreshold)
	assert.Empty(t, cfg.AIAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AI_ON_DEGENERATE", "off")
	t.Setenv("AI_RPS", "2.5")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg := Load()
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.False(t, cfg.AIOnDegenerate)
	assert.Equal(t, 2.5, cfg.AIRPS)
	assert.Equal(t, 20, cfg.MaxUploadMB)
}

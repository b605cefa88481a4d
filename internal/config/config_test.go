package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Resolver.MaxHops)
	assert.Equal(t, 5*time.Second, cfg.Resolver.Timeout)
	assert.Equal(t, 6*time.Second, cfg.TLS.Timeout)
	assert.Equal(t, "URL-Phishing-Checker/1.0", cfg.Resolver.UserAgent)
	assert.False(t, cfg.Resolver.InsecureTLS)
	assert.Empty(t, cfg.SSRF.AllowCIDRs)
	assert.Contains(t, cfg.Lists["suspicious_tlds"], "tk")
	assert.Contains(t, cfg.Lists["brand_keywords"], "paypal")
	assert.NotEmpty(t, cfg.Advice.Do)
	assert.NotEmpty(t, cfg.Advice.Dont)
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phishhunter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolver:\n  max_hops: 8\nlists:\n  brand_keywords: [acme]\n"), 0o644))

	t.Chdir(dir)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Resolver.MaxHops)
	assert.Equal(t, 5*time.Second, cfg.Resolver.Timeout, "untouched keys keep defaults")
	assert.Equal(t, []string{"acme"}, cfg.Lists["brand_keywords"])
	assert.Contains(t, cfg.Lists["suspicious_tlds"], "xyz")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"PHISHHUNTER_MAX_HOPS":    "3",
		"PHISHHUNTER_TIMEOUT":     "2s",
		"PHISHHUNTER_ALLOW_CIDRS": "127.0.0.0/8, ::1/128",
		"PHISHHUNTER_RATE_LIMIT":  "1.5",
		"PHISHHUNTER_USER_AGENT":  "test-agent",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }
	require.NoError(t, cfg.applyEnv(lookup))

	assert.Equal(t, 3, cfg.Resolver.MaxHops)
	assert.Equal(t, 2*time.Second, cfg.Resolver.Timeout)
	assert.Equal(t, []string{"127.0.0.0/8", "::1/128"}, cfg.SSRF.AllowCIDRs)
	assert.Equal(t, 1.5, cfg.Web.RateLimit)
	assert.Equal(t, "test-agent", cfg.Resolver.UserAgent)

	env["PHISHHUNTER_MAX_HOPS"] = "many"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PHISHHUNTER_THREADS", "4")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Runner.Threads)
}

func TestValidate(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	cfg.Resolver.MaxHops = 0
	assert.Error(t, cfg.Validate())

	cfg, _ = Default()
	cfg.TLS.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg, _ = Default()
	cfg.Runner.Threads = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Runner.Threads)
}

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chainlog-project/chainlog/pkg/config"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "sha256", cfg.Algo)
	assert.Equal(t, "5m", cfg.Lock.LeaseTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Webhook.Enabled)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := config.Default()
	cfg.Lock.LeaseTTL = "90s"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	cfg.Webhook.Enabled = true
	cfg.Webhook.Hooks = []config.HookConfig{{
		URL:    "https://hooks.example.com/ledger",
		Secret: "s3cret",
		Events: []string{"verify.failed"},
	}}
	require.NoError(t, config.Save(root, cfg))

	loaded, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_RejectsUnknownAlgo(t *testing.T) {
	root := t.TempDir()
	cfgDir := filepath.Join(root, ".chainlog")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"),
		[]byte("algo: sha512\n"), 0644))

	_, err := config.Load(root)
	assert.True(t, errors.Is(err, errclass.ErrAlgoUnsupported))
}

func TestLoad_MalformedYAML(t *testing.T) {
	root := t.TempDir()
	cfgDir := filepath.Join(root, ".chainlog")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"),
		[]byte("algo: [unterminated"), 0644))

	_, err := config.Load(root)
	assert.Error(t, err)
}

func TestLeaseTTL(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 5*time.Minute, cfg.LeaseTTL())

	cfg.Lock.LeaseTTL = "30s"
	assert.Equal(t, 30*time.Second, cfg.LeaseTTL())

	cfg.Lock.LeaseTTL = "garbage"
	assert.Equal(t, 5*time.Minute, cfg.LeaseTTL())

	cfg.Lock.LeaseTTL = "-1m"
	assert.Equal(t, 5*time.Minute, cfg.LeaseTTL())
}

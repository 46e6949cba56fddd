package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	loader := NewConfigLoader(t.TempDir(), "")
	cfg, err := loader.LoadConfig()
	require.NoError(t, err)

	assert.Empty(t, loader.GetConfigPath())
	assert.Equal(t, 10, cfg.Scan.Concurrency)
	assert.Equal(t, time.Second, cfg.Scan.Timeout)
	assert.Equal(t, time.Second, cfg.Scan.Grace)
	assert.False(t, cfg.Scan.Adaptive)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "neoport.yaml", `
log:
  level: debug
  format: json
scan:
  concurrency: 200
  timeout: 250ms
  adaptive: true
  proxy: socks5://127.0.0.1:1080
output:
  csv_file: out.csv
server:
  port: 9090
`)

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 200, cfg.Scan.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.Timeout)
	assert.True(t, cfg.Scan.Adaptive)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Scan.Proxy)
	assert.Equal(t, "out.csv", cfg.Output.CsvFile)
	assert.Equal(t, 9090, cfg.Server.Port)
	// 未出现的项仍取默认值
	assert.Equal(t, time.Second, cfg.Scan.Grace)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("NEOPORT_SCAN_CONCURRENCY", "32")
	t.Setenv("NEOPORT_SCAN_TIMEOUT", "3s")

	cfg, err := NewConfigLoader(t.TempDir(), "").LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Scan.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Scan.Timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "scan:\n  concurrency: 0\n")

	_, err := LoadConfigFromFile(path)
	assert.Error(t, err)

	path = writeFile(t, dir, "broken.yaml", "scan: [\n")
	_, err = LoadConfigFromFile(path)
	assert.Error(t, err)
}

func TestWatch_NoFile(t *testing.T) {
	loader := NewConfigLoader(t.TempDir(), "")
	cfg, err := loader.LoadConfig()
	require.NoError(t, err)
	assert.False(t, loader.Watch(cfg, nil, nil))
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "log:\n  level: info\n")

	loader := NewConfigLoader(path, "")
	cfg, err := loader.LoadConfig()
	require.NoError(t, err)

	levels := make(chan string, 4)
	require.True(t, loader.Watch(cfg, func(oldConfig, newConfig *Config) error {
		levels <- newConfig.Log.Level
		return nil
	}, nil))

	// 先写临时文件再改名，只产生一次事件
	tmp := writeFile(t, dir, "config.yaml.tmp", "log:\n  level: debug\n")
	require.NoError(t, os.Rename(tmp, path))

	select {
	case level := <-levels:
		assert.Equal(t, "debug", level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestEnvLoader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "NEOPORT_TEST_ONLY_KEY=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("NEOPORT_TEST_ONLY_KEY") })

	loader := NewEnvLoader(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, loader.Load())
	assert.Equal(t, "from-dotenv", os.Getenv("NEOPORT_TEST_ONLY_KEY"))

	// 重复加载无副作用
	require.NoError(t, loader.Load())
}

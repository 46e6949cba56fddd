package options

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoport/internal/config"
	"neoport/internal/core/model"
	"neoport/internal/core/reporter"
)

func TestPortScanOptions_Validate(t *testing.T) {
	o := NewPortScanOptions()
	assert.Error(t, o.Validate())

	o.Target = "127.0.0.1"
	assert.Error(t, o.Validate(), "ports required")

	o.Ports = "80"
	assert.NoError(t, o.Validate())

	o.Concurrency = 0
	assert.Error(t, o.Validate())
	o.Concurrency = 1

	o.Timeout = 0
	assert.Error(t, o.Validate())
	o.Timeout = time.Second

	o.Grace = -time.Second
	assert.Error(t, o.Validate())
}

func TestPortScanOptions_ApplyConfig(t *testing.T) {
	cfg := &config.Config{
		Scan: &config.ScanConfig{
			Concurrency: 50,
			Timeout:     300 * time.Millisecond,
			Grace:       2 * time.Second,
			Adaptive:    true,
			Proxy:       "socks5://127.0.0.1:1080",
		},
		Output: &config.OutputConfig{CsvFile: "cfg.csv", NoBanner: true},
	}

	flags := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	o := NewPortScanOptions()
	flags.IntVarP(&o.Concurrency, "concurrency", "c", o.Concurrency, "")
	flags.DurationVar(&o.Timeout, "timeout", o.Timeout, "")
	require.NoError(t, flags.Parse([]string{"-c", "5"}))

	o.ApplyConfig(cfg, flags)

	// 命令行显式指定的优先
	assert.Equal(t, 5, o.Concurrency)
	assert.Equal(t, 300*time.Millisecond, o.Timeout)
	assert.Equal(t, 2*time.Second, o.Grace)
	assert.True(t, o.Adaptive)
	assert.Equal(t, "socks5://127.0.0.1:1080", o.Proxy)
	assert.Equal(t, "cfg.csv", o.Output.OutputCsv)
	assert.True(t, o.Output.NoBanner)
}

func TestPortScanOptions_ToScanConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ports.txt")
	require.NoError(t, os.WriteFile(path, []byte("443\nfoo\n22\n"), 0o644))

	o := NewPortScanOptions()
	o.Target = "127.0.0.1"
	o.Ports = "80,80"
	o.PortFile = path
	o.PortList = []int{8080}

	cfg, err := o.ToScanConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{80, 80, 443, 22, 8080}, cfg.Ports)
	assert.Equal(t, "127.0.0.1", cfg.Target.Addr.String())
	assert.Equal(t, 10, cfg.Concurrency)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestPortScanOptions_ToScanConfigErrors(t *testing.T) {
	o := NewPortScanOptions()
	o.Target = "127.0.0.1"
	o.Ports = "90-80"
	_, err := o.ToScanConfig(context.Background())
	assert.Error(t, err)

	o.Ports = "80"
	o.Concurrency = 0
	_, err = o.ToScanConfig(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestOutputOptions_FileReporters(t *testing.T) {
	o := OutputOptions{}
	assert.Empty(t, o.FileReporters())

	o.OutputJson = "a.json"
	o.OutputCsv = "a.csv"
	rs := o.FileReporters()
	require.Len(t, rs, 2)
	assert.IsType(t, &reporter.JsonReporter{}, rs[0])
	assert.IsType(t, &reporter.CsvReporter{}, rs[1])
}

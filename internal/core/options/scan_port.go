package options

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"neoport/internal/config"
	"neoport/internal/core/model"
	"neoport/internal/core/pipeline"
)

// PortScanOptions 端口扫描参数 (CLI flag 与 HTTP 请求共用)
type PortScanOptions struct {
	Target       string
	Ports        string // -p 端口表达式
	PortFile     string // -f 端口列表文件
	PortList     []int  // 调用方直接给出的端口 (HTTP 请求)
	Concurrency  int
	Timeout      time.Duration
	Grace        time.Duration
	Adaptive     bool
	Proxy        string
	ServiceFiles []string

	Output OutputOptions
}

// NewPortScanOptions 创建默认参数
func NewPortScanOptions() *PortScanOptions {
	return &PortScanOptions{
		Concurrency: 10,
		Timeout:     1 * time.Second,
		Grace:       1 * time.Second,
	}
}

// ApplyConfig 用配置文件的值填充未在命令行显式指定的参数
// flags 为 nil 时全部取配置值
func (o *PortScanOptions) ApplyConfig(cfg *config.Config, flags *pflag.FlagSet) {
	if cfg == nil {
		return
	}
	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	if s := cfg.Scan; s != nil {
		if !changed("concurrency") && s.Concurrency > 0 {
			o.Concurrency = s.Concurrency
		}
		if !changed("timeout") && s.Timeout > 0 {
			o.Timeout = s.Timeout
		}
		if !changed("grace") && s.Grace >= 0 {
			o.Grace = s.Grace
		}
		if !changed("adaptive") {
			o.Adaptive = s.Adaptive
		}
		if !changed("proxy") {
			o.Proxy = s.Proxy
		}
		if !changed("service-file") {
			o.ServiceFiles = s.ServiceFiles
		}
	}

	if out := cfg.Output; out != nil {
		if !changed("oj") {
			o.Output.OutputJson = out.JsonFile
		}
		if !changed("oc") {
			o.Output.OutputCsv = out.CsvFile
		}
		if !changed("all") {
			o.Output.ShowAll = out.ShowAll
		}
		if !changed("no-banner") {
			o.Output.NoBanner = out.NoBanner
		}
		if !changed("no-progress") {
			o.Output.NoProgress = out.NoProgress
		}
	}
}

func (o *PortScanOptions) Validate() error {
	if o.Target == "" {
		return fmt.Errorf("target is required")
	}
	if o.Ports == "" && o.PortFile == "" && len(o.PortList) == 0 {
		return fmt.Errorf("port list is required (-p or -f)")
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", o.Concurrency)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", o.Timeout)
	}
	if o.Grace < 0 {
		return fmt.Errorf("grace must be >= 0, got %s", o.Grace)
	}
	return nil
}

// LoadPorts 合并 -p、-f 和 PortList，保持顺序与重复
func (o *PortScanOptions) LoadPorts() ([]int, error) {
	var ports []int
	if o.Ports != "" {
		parsed, err := pipeline.ParsePortList(o.Ports)
		if err != nil {
			return nil, err
		}
		ports = append(ports, parsed...)
	}
	if o.PortFile != "" {
		loaded, err := pipeline.LoadPortFile(o.PortFile)
		if err != nil {
			return nil, err
		}
		ports = append(ports, loaded...)
	}
	ports = append(ports, o.PortList...)
	return ports, nil
}

// ToScanConfig 解析目标和端口，生成核心扫描配置
func (o *PortScanOptions) ToScanConfig(ctx context.Context) (*model.ScanConfig, error) {
	ports, err := o.LoadPorts()
	if err != nil {
		return nil, err
	}

	target, err := pipeline.ResolveTarget(ctx, o.Target)
	if err != nil {
		return nil, err
	}

	cfg := model.NewScanConfig(target, ports, o.Concurrency, o.Timeout)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

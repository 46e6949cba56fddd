package options

import (
	"context"

	"neoport/internal/core/model"
)

// ScanOption 定义所有扫描参数结构体必须实现的接口
type ScanOption interface {
	// Validate 验证参数合法性
	Validate() error

	// ToScanConfig 将参数转换为核心扫描配置
	ToScanConfig(ctx context.Context) (*model.ScanConfig, error)
}

var _ ScanOption = (*PortScanOptions)(nil)

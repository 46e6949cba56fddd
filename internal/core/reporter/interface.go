/**
 * 结果输出接口定义
 * @author: Sun977
 * @date: 2026.01.21
 * @description: 定义结果输出的通用接口，解耦 Console/File 输出。
 */

package reporter

import (
	"context"
	"errors"

	"neoport/internal/core/model"
)

// TabularData 是一个可以被渲染为表格的数据接口
// model.ScanResult 实现了此接口
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

// Reporter 定义结果输出的行为
type Reporter interface {
	// Report 输出扫描结果 (可能是 Cancelled 的部分结果)
	Report(ctx context.Context, result *model.ScanResult) error
}

// MultiReporter 支持同时向多个目标输出 (e.g., Console + File)
// 单个输出失败不影响其他输出
type MultiReporter struct {
	reporters []Reporter
}

func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{
		reporters: reporters,
	}
}

// Add 追加输出目标
func (m *MultiReporter) Add(r Reporter) {
	if r != nil {
		m.reporters = append(m.reporters, r)
	}
}

func (m *MultiReporter) Report(ctx context.Context, result *model.ScanResult) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.Report(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

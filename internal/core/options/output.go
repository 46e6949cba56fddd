package options

import (
	"neoport/internal/core/reporter"
)

// OutputOptions 定义结果输出的通用参数
type OutputOptions struct {
	OutputJson string // --oj, --outputJson
	OutputCsv  string // --oc, --outputCsv
	ShowAll    bool   // --all 结果表包含非开放端口
	NoBanner   bool   // --no-banner
	NoProgress bool   // --no-progress
}

// FileReporters 根据参数创建文件输出
func (o *OutputOptions) FileReporters() []reporter.Reporter {
	var reporters []reporter.Reporter
	if o.OutputJson != "" {
		reporters = append(reporters, reporter.NewJsonReporter(o.OutputJson))
	}
	if o.OutputCsv != "" {
		reporters = append(reporters, reporter.NewCsvReporter(o.OutputCsv))
	}
	return reporters
}

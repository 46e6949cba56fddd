package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"neoport/internal/core/model"
)

// JsonReporter 将完整结果 (含状态、计数、耗时) 导出为 JSON
type JsonReporter struct {
	FilePath string
}

func NewJsonReporter(filePath string) *JsonReporter {
	return &JsonReporter{FilePath: filePath}
}

func (r *JsonReporter) Report(ctx context.Context, result *model.ScanResult) error {
	return SaveJsonResult(r.FilePath, result)
}

// SaveJsonResult 一次性将结果保存为 JSON
func SaveJsonResult(path string, result *model.ScanResult) error {
	if result == nil {
		return nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write json file: %w", err)
	}
	return nil
}

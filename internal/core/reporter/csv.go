package reporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"neoport/internal/core/model"
)

// CsvReporter 负责将结果导出为 CSV 文件
// 导出全部端口结果 (完成顺序)，不只是开放端口
type CsvReporter struct {
	FilePath string
}

func NewCsvReporter(filePath string) *CsvReporter {
	return &CsvReporter{
		FilePath: filePath,
	}
}

func (r *CsvReporter) Report(ctx context.Context, result *model.ScanResult) error {
	return SaveCsvResult(r.FilePath, result)
}

// SaveCsvResult 一次性将结果保存为 CSV
func SaveCsvResult(path string, data TabularData) error {
	if data == nil {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	// 写入 UTF-8 BOM，防止 Excel 打开乱码
	if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(data.Headers()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	// WriteAll 内部会 Flush
	if err := w.WriteAll(data.Rows()); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return nil
}

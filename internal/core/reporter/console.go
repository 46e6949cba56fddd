package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm" // 引入 pterm 库用于控制台输出
	"github.com/pterm/pterm/putils"

	"neoport/internal/core/model"
)

const separator = "--------------------------------------------------"

// ConsoleReporter 控制台输出
// 扫描过程中逐条打印开放端口，结束后打印结果表和汇总
type ConsoleReporter struct {
	out     io.Writer
	showAll bool // 结果表是否包含非开放端口
}

func NewConsoleReporter(out io.Writer, showAll bool) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out, showAll: showAll}
}

// PrintBanner 打印横幅
func (r *ConsoleReporter) PrintBanner() {
	banner, err := pterm.DefaultBigText.
		WithLetters(putils.LettersFromStringWithStyle("neo", pterm.NewStyle(pterm.FgCyan)),
			putils.LettersFromStringWithStyle("port", pterm.NewStyle(pterm.FgLightBlue))).
		Srender()
	if err != nil {
		return
	}
	fmt.Fprint(r.out, banner)
}

// PrintHeader 打印扫描目标与开始时间
func (r *ConsoleReporter) PrintHeader(target model.Target, ports int, startedAt time.Time) {
	fmt.Fprintln(r.out, separator)
	fmt.Fprintf(r.out, "Scanning Target > %s\n", target)
	fmt.Fprintf(r.out, "Ports > %d\n", ports)
	fmt.Fprintf(r.out, "Scanning started at > %s\n", startedAt.Format("2006-01-02 15:04:05.000"))
	fmt.Fprintln(r.out, separator)
	fmt.Fprintln(r.out, "Please wait...")
	fmt.Fprintln(r.out)
}

// PrintEvent 实时打印单条结果，只输出开放端口
func (r *ConsoleReporter) PrintEvent(ev model.PortEvent) {
	if !ev.Outcome.IsOpen() {
		return
	}
	if ev.Outcome.Service != "" {
		fmt.Fprintf(r.out, "Port %d: %s > %s\n", ev.Port, ev.Outcome.Service, pterm.Green("open"))
		return
	}
	fmt.Fprintf(r.out, "Port %d > %s\n", ev.Port, pterm.Green("open"))
}

// Report 打印结果表、汇总和结束语
func (r *ConsoleReporter) Report(ctx context.Context, result *model.ScanResult) error {
	if result == nil {
		return nil
	}

	rows := result.OpenRows()
	if r.showAll {
		rows = result.Rows()
	}

	fmt.Fprintln(r.out)
	if len(rows) == 0 {
		fmt.Fprintln(r.out, pterm.Yellow("No open ports found."))
	} else if err := r.printTableFromData(result.Headers(), rows); err != nil {
		return err
	}

	c := result.Counts
	fmt.Fprintf(r.out, "\n%d/%d ports scanned in %s: %d open, %d closed, %d timed out, %d errored\n",
		c.Total(), result.Requested, result.Elapsed.Round(time.Millisecond), c.Open, c.Closed, c.TimedOut, c.Errored)
	if result.SmoothedRTT > 0 {
		fmt.Fprintf(r.out, "Smoothed connect RTT: %s\n", result.SmoothedRTT.Round(time.Microsecond))
	}

	switch result.State {
	case model.ScanStateCompleted:
		fmt.Fprintln(r.out, "\nScan complete.")
	case model.ScanStateCancelled:
		fmt.Fprintln(r.out, pterm.Yellow("\nScan aborted by user."))
	case model.ScanStateFatal:
		fmt.Fprintln(r.out, pterm.Red("\nScan failed: "+result.Error))
	}
	return nil
}

func (r *ConsoleReporter) printTableFromData(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	// 使用 pterm 渲染表格
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)

	table, err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false). // 简洁风格
		WithData(tableData).
		Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(r.out, strings.TrimRight(table, "\n"))
	return nil
}

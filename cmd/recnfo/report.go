package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/John-Robertt/recnfo/internal/domain"
	"github.com/John-Robertt/recnfo/internal/infra/fsx"
)

// 表格里路径列的最大显示宽度（按终端列宽计，中文占两列）。
const maxPathWidth = 56

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleWarn   = styleCell.Foreground(lipgloss.Color("192"))
	styleError  = styleCell.Foreground(lipgloss.Color("204"))
	styleBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// emitReport 输出最终报告：
// - stdout 是 TTY：摘要 + 问题条目表格
// - stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）
func emitReport(stdout, stderr io.Writer, rr domain.RunReport, stdoutTTY bool) {
	if stdoutTTY {
		fmt.Fprintln(stdout, summaryLine(rr))
		if t := problemTable(rr); t != "" {
			fmt.Fprintln(stdout, t)
		}
		return
	}

	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(stderr, summaryLine(rr))
}

func summaryLine(rr domain.RunReport) string {
	s := rr.Summary
	return fmt.Sprintf("完成：generated=%d fresh=%d planned=%d rejected=%d unmatched=%d failed=%d",
		s.Generated, s.Fresh, s.Planned, s.Rejected, s.Unmatched, s.Failed,
	)
}

// problemTable 渲染被拒绝/无法匹配/失败的条目；没有问题条目时返回空串。
func problemTable(rr domain.RunReport) string {
	var (
		rows     [][]string
		statuses []string
	)
	for _, it := range rr.Items {
		switch it.Status {
		case domain.StatusRejected, domain.StatusUnmatched, domain.StatusFailed:
		default:
			continue
		}
		p := it.Path
		if p == "" {
			// 根目录/配置等合成条目：用根目录做定位锚点。
			p = filepath.ToSlash(rr.Root)
		}
		rows = append(rows, []string{it.Status, it.ErrorCode, truncate(p, maxPathWidth)})
		statuses = append(statuses, it.Status)
	}
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("状态", "原因", "路径").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col != 0 || row < 0 || row >= len(statuses) {
				return styleCell
			}
			if statuses[row] == domain.StatusFailed {
				return styleError
			}
			return styleWarn
		})
	return t.String()
}

// truncate 按显示宽度截断（保证 CJK 标题不会把表格撑破）。
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Dir(abs), filepath.Base(abs), b)
}

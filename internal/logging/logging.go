// Package logging 构造进程内唯一的 charmbracelet/log 日志器。
package logging

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const timeFormat = "2006-01-02 15:04:05"

// New 创建写往 w 的日志器：带时间戳，级别标签用 lipgloss 着色（非终端时自动退化为纯文本）。
func New(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
	})
	l.SetStyles(levelStyles())
	return l
}

// Install 创建日志器并设为 charmbracelet/log 的默认日志器。
func Install(w io.Writer, level log.Level) *log.Logger {
	l := New(w, level)
	log.SetDefault(l)
	return l
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Bold(true).
		Foreground(lipgloss.Color("63"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO ").
		Bold(true).
		Foreground(lipgloss.Color("86"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN ").
		Bold(true).
		Foreground(lipgloss.Color("192"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))

	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	return styles
}

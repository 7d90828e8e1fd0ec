package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/John-Robertt/recnfo/internal/app/run"
	"github.com/John-Robertt/recnfo/internal/config"
	"github.com/John-Robertt/recnfo/internal/domain"
	"github.com/John-Robertt/recnfo/internal/name"
)

var _ run.Observer = (*logObserver)(nil)

// logObserver 把 run 事件写成结构化日志（stderr），不污染 stdout 的报告输出。
//
// 级别约定：遍历细节 debug，每个生成的 NFO info，被跳过的目录/文件 warn，I/O 失败 error。
type logObserver struct {
	l         *log.Logger
	startedAt time.Time
}

func newLogObserver(l *log.Logger) *logObserver {
	return &logObserver{l: l}
}

func (o *logObserver) OnStart(eff config.EffectiveConfig) {
	o.startedAt = time.Now()
	mode := "write"
	if eff.DryRun {
		mode = "dry-run"
	}
	o.l.Info("开始扫描", "root", eff.Root, "mode", mode, "force", eff.Force)
	if eff.ConfigPath != "" {
		o.l.Debug("已读取配置文件", "path", eff.ConfigPath)
	}
	o.l.Debug("生效配置", "extensions", eff.Extensions, "default_time", eff.DefaultClock.String(), "tag", eff.Tag, "collection", eff.Collection)
}

func (o *logObserver) OnDir(dir domain.RecordingDir, res name.DirResult) {
	if !res.Accepted() {
		o.l.Warn("文件夹匹配失败，已跳过", "dir", dir.Name, "err", res.Err)
		return
	}
	if d := res.DateHint(); d != nil {
		o.l.Debug("进入文件夹", "dir", dir.Name, "date", d.String())
		return
	}
	o.l.Debug("进入文件夹", "dir", dir.Name, "date", "<取自文件名>")
}

func (o *logObserver) OnItemDone(idx int, res domain.ItemResult, dur time.Duration) {
	if len(res.Annotations) > 0 {
		o.l.Debug("已剥离标题前的注释", "file", res.Path, "annotations", strings.Join(res.Annotations, ","))
	}
	switch res.Status {
	case domain.StatusGenerated:
		o.l.Info("已生成", "nfo", res.NFO, "title", res.Title, "dateadded", res.DateAdded)
	case domain.StatusPlanned:
		o.l.Info("将生成（dry-run）", "nfo", res.NFO, "title", res.Title, "dateadded", res.DateAdded)
	case domain.StatusFresh:
		o.l.Debug("NFO 已是最新，跳过", "file", res.Path)
	case domain.StatusUnmatched:
		o.l.Warn("文件名匹配失败，已跳过", "file", res.Path, "code", res.ErrorCode, "err", res.ErrorMsg)
	default:
		o.l.Error("处理失败", "file", res.Path, "code", res.ErrorCode, "err", res.ErrorMsg)
	}
}

func (o *logObserver) OnDirDone(dir domain.RecordingDir, files int, dur time.Duration) {
	if files == 0 {
		o.l.Debug("文件夹内没有媒体文件", "dir", dir.Name)
		return
	}
	o.l.Debug("文件夹处理完成", "dir", dir.Name, "files", files, "dur", formatShortDuration(dur))
}

func formatShortDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	return d.Round(time.Millisecond).String()
}

package run

import (
	"time"

	"github.com/John-Robertt/recnfo/internal/config"
	"github.com/John-Robertt/recnfo/internal/domain"
	"github.com/John-Robertt/recnfo/internal/name"
)

// Observer 用于把“运行进度/目录判定/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 事件按处理顺序在调用 Execute 的 goroutine 上同步发出。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnDir 在每个录播文件夹完成名字判定后调用（被拒绝的目录也会调用）。
	OnDir(dir domain.RecordingDir, res name.DirResult)
	// OnItemDone 在每个媒体文件处理完成时调用；idx 从 1 开始累计。
	OnItemDone(idx int, res domain.ItemResult, dur time.Duration)
	// OnDirDone 在一个已接受目录内的文件全部处理完成后调用。
	OnDirDone(dir domain.RecordingDir, files int, dur time.Duration)
}

// nopObserver 在调用方没有传入 Observer 时使用。
type nopObserver struct{}

func (nopObserver) OnStart(config.EffectiveConfig) {}
func (nopObserver) OnDir(domain.RecordingDir, name.DirResult) {}
func (nopObserver) OnItemDone(int, domain.ItemResult, time.Duration) {}
func (nopObserver) OnDirDone(domain.RecordingDir, int, time.Duration) {}

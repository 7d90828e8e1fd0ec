package run

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/recnfo/internal/config"
	"github.com/John-Robertt/recnfo/internal/domain"
	"github.com/John-Robertt/recnfo/internal/infra/fsx"
	"github.com/John-Robertt/recnfo/internal/name"
	"github.com/John-Robertt/recnfo/internal/nfo"
	"github.com/John-Robertt/recnfo/internal/planner"
	"github.com/John-Robertt/recnfo/internal/scan"
)

// Execute 执行一次 run，并返回对外稳定的 RunReport。
// 该函数尽量把错误“降级”为 item 级失败（单条失败不影响其他）。
func Execute(ctx context.Context, eff config.EffectiveConfig) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度（由上层决定是否启用）。
//
// 流程（串行）：根目录的每个子目录 -> MatchDir -> 目录内每个媒体文件 -> Plan -> MatchFile -> Encode -> WriteSidecar。
// 只有根目录不可读是整体失败；ctx 取消时在条目之间停止，并追加一条合成失败项。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, obs Observer) domain.RunReport {
	if obs == nil {
		obs = nopObserver{}
	}
	obs.OnStart(eff)

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Root:      eff.Root,
		DryRun:    eff.DryRun,
		Force:     eff.Force,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, 64),
	}
	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	clock := eff.DefaultClock
	g, err := name.NewGrammar(name.Options{DefaultClock: &clock})
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeConfigInvalid, err.Error()))
		return finish()
	}

	dirs, err := scan.ListDirs(eff.Root, eff.ExcludeDirs)
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeRootUnreadable, fmt.Sprintf("读取根目录失败：%v", err)))
		return finish()
	}

	w := worker{
		eff:     eff,
		grammar: g,
		nfoOpts: nfo.Options{Tag: eff.Tag, Collection: eff.Collection},
	}

	done := 0
	for _, d := range dirs {
		if ctx.Err() != nil {
			break
		}

		dirStarted := time.Now()
		dr := g.MatchDir(d.Name)
		obs.OnDir(d, dr)
		if !dr.Accepted() {
			rr.Items = append(rr.Items, rejectedDir(d, dr.Err))
			continue
		}

		files, err := scan.ListMedia(eff.Root, d, eff.Extensions)
		if err != nil {
			rr.Items = append(rr.Items, domain.ItemResult{
				Kind:      domain.KindDir,
				Path:      d.Name,
				Status:    domain.StatusFailed,
				ErrorCode: domain.ErrCodeIOFailed,
				ErrorMsg:  fmt.Sprintf("读取目录失败：%v", err),
			})
			continue
		}

		hint := dr.DateHint()
		processed := 0
		for _, f := range files {
			if ctx.Err() != nil {
				break
			}
			oneStarted := time.Now()
			res := w.processFile(f, hint)
			rr.Items = append(rr.Items, res)
			done++
			processed++
			obs.OnItemDone(done, res, time.Since(oneStarted))
		}
		obs.OnDirDone(d, processed, time.Since(dirStarted))
	}

	if err := ctx.Err(); err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeCanceled, fmt.Sprintf("运行被中断：%v", err)))
	}
	return finish()
}

type worker struct {
	eff     config.EffectiveConfig
	grammar *name.Grammar
	nfoOpts nfo.Options
}

func (w worker) processFile(f domain.MediaFile, hint *name.Date) domain.ItemResult {
	item := domain.ItemResult{
		Kind:   domain.KindFile,
		Path:   f.RelPath,
		Status: domain.StatusGenerated, // 失败时覆盖
		NFO:    strings.TrimSuffix(f.RelPath, filepath.Ext(f.RelPath)) + ".nfo",
	}
	fail := func(status, code, msg string) domain.ItemResult {
		item.Status = status
		item.ErrorCode = code
		item.ErrorMsg = msg
		return item
	}

	plan, err := planner.Plan(f, w.eff.Force)
	switch {
	case err == nil:
	case fsx.IsPathTypeConflict(err):
		return fail(domain.StatusFailed, domain.ErrCodeTargetConflict, err.Error())
	case planner.IsStatError(err):
		return fail(domain.StatusFailed, domain.ErrCodeStatFailed, err.Error())
	default:
		return fail(domain.StatusFailed, domain.ErrCodeIOFailed, err.Error())
	}
	if !plan.Need {
		item.Status = domain.StatusFresh
		return item
	}

	parsed, err := w.grammar.MatchFile(f.Name, hint)
	if err != nil {
		return fail(domain.StatusUnmatched, errCodeOf(err), err.Error())
	}
	rec := domain.Recording{
		Moment:      parsed.Moment(),
		Title:       parsed.Title,
		Annotations: parsed.Annotations,
	}
	item.Title = rec.Title
	item.Annotations = rec.Annotations
	item.DateAdded = rec.Moment.Format("2006-01-02 15:04:05")

	doc, err := nfo.Encode(rec, w.nfoOpts)
	if err != nil {
		return fail(domain.StatusFailed, domain.ErrCodeIOFailed, fmt.Sprintf("生成 NFO 失败：%v", err))
	}

	// dry-run：只做 plan+parse+encode 验证；不落盘。
	if w.eff.DryRun {
		item.Status = domain.StatusPlanned
		return item
	}

	if err := fsx.WriteSidecar(plan.NFOPath, doc); err != nil {
		if fsx.IsPathTypeConflict(err) {
			return fail(domain.StatusFailed, domain.ErrCodeTargetConflict, err.Error())
		}
		return fail(domain.StatusFailed, domain.ErrCodeIOFailed, fmt.Sprintf("写入 NFO 失败：%v", err))
	}
	return item
}

func rejectedDir(d domain.RecordingDir, err error) domain.ItemResult {
	return domain.ItemResult{
		Kind:      domain.KindDir,
		Path:      d.Name,
		Status:    domain.StatusRejected,
		ErrorCode: errCodeOf(err),
		ErrorMsg:  fmt.Sprintf("文件夹 %s 匹配失败：%v", d.Name, err),
	}
}

func errCodeOf(err error) string {
	switch name.KindOf(err) {
	case name.KindFieldParse:
		return domain.ErrCodeFieldParse
	default:
		return domain.ErrCodeNameRejected
	}
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Kind:      domain.KindRoot,
		Path:      "",
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}

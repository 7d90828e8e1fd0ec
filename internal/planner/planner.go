// Package planner 判定一个媒体文件是否需要（重新）生成旁挂 NFO。
package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/recnfo/internal/domain"
	"github.com/John-Robertt/recnfo/internal/infra/fsx"
)

// StatError 表示读取媒体文件或旁挂文件元数据失败。
// 上层把它映射为 error_code=stat_failed。
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("读取文件元数据失败：%q：%v", e.Path, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

func IsStatError(err error) bool {
	var e *StatError
	return errors.As(err, &e)
}

// SidecarPath 返回媒体文件对应的旁挂 NFO 路径：同目录，同名，扩展名替换为 .nfo。
func SidecarPath(mediaAbs string) string {
	return strings.TrimSuffix(mediaAbs, filepath.Ext(mediaAbs)) + ".nfo"
}

// Plan 基于文件系统现状生成确定性的执行计划（不做任何写入）。
//
// 需要生成的条件（任一成立）：
// - 旁挂文件不存在
// - force
// - 旁挂文件的 mtime 不晚于媒体文件的 mtime（相等也视为过期）
//
// 失败：
// - 媒体文件/旁挂文件 stat 失败 => *StatError
// - 旁挂路径是目录等非普通文件 => *fsx.PathTypeConflictError（force 也无法绕过）
func Plan(media domain.MediaFile, force bool) (domain.SidecarPlan, error) {
	plan := domain.SidecarPlan{NFOPath: SidecarPath(media.AbsPath)}

	mfi, err := os.Stat(media.AbsPath)
	if err != nil {
		return domain.SidecarPlan{}, &StatError{Path: media.AbsPath, Err: err}
	}

	exists, err := fsx.CheckRegular(plan.NFOPath)
	if err != nil {
		if fsx.IsPathTypeConflict(err) {
			return domain.SidecarPlan{}, err
		}
		return domain.SidecarPlan{}, &StatError{Path: plan.NFOPath, Err: err}
	}

	switch {
	case !exists:
		plan.Need, plan.Reason = true, domain.ReasonMissing
	case force:
		plan.Need, plan.Reason = true, domain.ReasonForce
	default:
		nfi, err := os.Stat(plan.NFOPath)
		if err != nil {
			return domain.SidecarPlan{}, &StatError{Path: plan.NFOPath, Err: err}
		}
		if nfi.ModTime().After(mfi.ModTime()) {
			plan.Reason = domain.ReasonFresh
		} else {
			plan.Need, plan.Reason = true, domain.ReasonStale
		}
	}
	return plan, nil
}

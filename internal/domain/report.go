package domain

import (
	"sort"
	"time"
)

const (
	StatusGenerated = "generated"
	StatusFresh     = "fresh"
	StatusPlanned   = "planned"
	StatusRejected  = "rejected"
	StatusUnmatched = "unmatched"
	StatusFailed    = "failed"
)

const (
	KindDir  = "dir"
	KindFile = "file"
	KindRoot = "root"
)

const (
	ErrCodeNameRejected   = "name_rejected"
	ErrCodeFieldParse     = "field_parse"
	ErrCodeStatFailed     = "stat_failed"
	ErrCodeIOFailed       = "io_failed"
	ErrCodeTargetConflict = "target_conflict"
	ErrCodeRootUnreadable = "root_unreadable"
	ErrCodeConfigInvalid  = "config_invalid"
	ErrCodeCanceled       = "canceled"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	Root   string `json:"root"`
	DryRun bool   `json:"dry_run"`
	Force  bool   `json:"force"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Generated int `json:"generated"`
	Fresh     int `json:"fresh"`
	Planned   int `json:"planned"`
	Rejected  int `json:"rejected"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
}

// ItemResult 是一个目录或媒体文件的处理结果。
// Kind=dir 的条目只在目录被拒绝时出现；Kind=root 是根目录/配置失败的合成项。
type ItemResult struct {
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Status string `json:"status"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Title       string   `json:"title,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
	DateAdded   string   `json:"dateadded,omitempty"`
	NFO         string   `json:"nfo,omitempty"`
}

// OK 报告本次运行是否没有任何失败或无法匹配的文件。
// 被拒绝的目录只告警，不影响结果。
func (r *RunReport) OK() bool {
	return r.Summary.Failed == 0 && r.Summary.Unmatched == 0
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 path 字典序；path=="" 的合成项排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Items == nil {
		r.Items = []ItemResult{}
	}

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Path
		b := r.Items[j].Path
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusGenerated:
			s.Generated++
		case StatusFresh:
			s.Fresh++
		case StatusPlanned:
			s.Planned++
		case StatusRejected:
			s.Rejected++
		case StatusUnmatched:
			s.Unmatched++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

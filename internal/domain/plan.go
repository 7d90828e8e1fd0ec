package domain

// SidecarPlan 是对单个媒体文件的最小执行计划：是否需要（重新）生成旁挂 NFO。
type SidecarPlan struct {
	NFOPath string
	Need    bool
	// Reason 取值：missing / stale / force / fresh
	Reason string
}

const (
	ReasonMissing = "missing"
	ReasonStale   = "stale"
	ReasonForce   = "force"
	ReasonFresh   = "fresh"
)

package domain

import "time"

// RecordingDir 描述根目录下的一个录播文件夹（只做 ReadDir，不读内容）。
//
// 不变量：
// - AbsPath 必须是 clean + absolute
// - Name 已做 NFC 规范化，用于名字解析；AbsPath 保留磁盘上的原始字节
type RecordingDir struct {
	AbsPath string
	Name    string
}

// MediaFile 描述录播文件夹内一个可处理的媒体文件。
//
// 不变量：
// - AbsPath 必须是 clean + absolute
// - RelPath 相对于扫描根目录，使用 '/' 分隔，用于报告与日志
// - Name 是 NFC 规范化后的完整文件名（含扩展名）
type MediaFile struct {
	AbsPath string
	RelPath string
	Name    string
	Ext     string // ".flv"
}

// Recording 是一个媒体文件解析后的录制信息，也是 NFO 的全部输入。
type Recording struct {
	Moment      time.Time // 墙上时间（UTC location，不做时区换算）
	Title       string
	Annotations []string
}

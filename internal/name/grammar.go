// Package name 把人工编辑过的录播目录名/文件名解码为结构化字段（日期、时刻、标题）。
//
// 规范语法（唯一，不做多版本合并）：
//
//	SEP     := '-' | 空白
//	DIR     := YYYY[.]MM[.]DD SEP [主播 '-'] 标题     -> DirDated（目录携带日期）
//	         | YY[.]MM[.]DD SEP 其余                   -> DirUndated（日期由文件自身提供）
//	FILE    := [CC]YY[.]MM[.]DD SEP [HHMMSS SEP] {【注释】} 标题 '.' 扩展名
//	         | HHMMSS SEP {【注释】} 标题 '.' 扩展名      （仅当目录携带日期）
//
// 解析分两步：先用显式扫描规则切出 日期戳/时间戳/注释/标题 片段（最具体的规则优先），
// 再对每个数字片段做带范围校验的转换。所有函数都是纯函数，可并发调用。
package name

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Options 是构造 Grammar 的可调参数。
type Options struct {
	// DefaultClock 在文件名没有 HHMMSS 时使用；零值 Options 会回退到 20:00:00。
	DefaultClock *Clock
	// Brackets 是可被剥离的注释括号对（开, 闭）；为空时使用 DefaultBrackets。
	Brackets [][2]rune
}

// DefaultBrackets 是默认支持的全角注释括号。
var DefaultBrackets = [][2]rune{
	{'【', '】'},
	{'〖', '〗'},
}

// Grammar 是编译后的不可变解析规则；构造一次，之后只读共享。
type Grammar struct {
	defaultClock Clock
	closeOf      map[rune]rune
	isClose      map[rune]bool
}

// Default 是使用默认参数构造的 Grammar。
var Default = mustGrammar(Options{})

// NewGrammar 校验参数并构造 Grammar。
func NewGrammar(opts Options) (*Grammar, error) {
	clock := DefaultClock
	if opts.DefaultClock != nil {
		c, ok := NewClock(opts.DefaultClock.Hour, opts.DefaultClock.Minute, opts.DefaultClock.Second)
		if !ok {
			return nil, fmt.Errorf("默认时刻越界：%s", opts.DefaultClock)
		}
		clock = c
	}

	pairs := opts.Brackets
	if len(pairs) == 0 {
		pairs = DefaultBrackets
	}
	g := &Grammar{
		defaultClock: clock,
		closeOf:      make(map[rune]rune, len(pairs)),
		isClose:      make(map[rune]bool, len(pairs)),
	}
	for _, p := range pairs {
		open, closing := p[0], p[1]
		if open == closing || isSep(open) || isSep(closing) {
			return nil, fmt.Errorf("非法括号对：%q%q", open, closing)
		}
		if _, dup := g.closeOf[open]; dup || g.isClose[open] || g.isClose[closing] {
			return nil, fmt.Errorf("括号对重复：%q%q", open, closing)
		}
		g.closeOf[open] = closing
		g.isClose[closing] = true
	}
	return g, nil
}

func mustGrammar(opts Options) *Grammar {
	g, err := NewGrammar(opts)
	if err != nil {
		panic(err)
	}
	return g
}

// DefaultClock 返回该 Grammar 的默认时刻。
func (g *Grammar) DefaultClock() Clock { return g.defaultClock }

// DirKind 是目录名的判定结果。
type DirKind int

const (
	// DirRejected：目录名不符合预期形态，调用方应跳过整个目录并告警。
	DirRejected DirKind = iota
	// DirDated：目录名携带四位年份日期，目录内文件共用该日期。
	DirDated
	// DirUndated：目录名只有六位日期前缀；日期由每个文件自身的日期戳提供。
	DirUndated
)

func (k DirKind) String() string {
	switch k {
	case DirDated:
		return "dated"
	case DirUndated:
		return "undated"
	default:
		return "rejected"
	}
}

// DirResult 是 MatchDir 的结果。Date 仅在 Kind==DirDated 时有效；Err 仅在 DirRejected 时非空。
type DirResult struct {
	Kind     DirKind
	Date     Date
	Streamer string
	Title    string
	Err      error
}

// Accepted 报告目录是否应继续处理。
func (r DirResult) Accepted() bool { return r.Kind != DirRejected }

// DateHint 返回目录提供的日期（若有），供 MatchFile 作为 fallback。
func (r DirResult) DateHint() *Date {
	if r.Kind != DirDated {
		return nil
	}
	d := r.Date
	return &d
}

// MatchDir 判定目录名形态，并在目录携带日期时解析出日期。
//
// 规则：
// - 非法 UTF-8 => 拒绝
// - 先尝试 YYYY[.]MM[.]DD + SEP；形态匹配但不是合法日历日期 => 拒绝（field_parse），不再尝试其他形态
// - 主播段：标题中第一个 '-' 之前的非空片段；只有 '-' 之后仍有非空标题时才成立
// - 再尝试 YY[.]MM[.]DD + SEP + 非空剩余 => DirUndated
func (g *Grammar) MatchDir(dirName string) DirResult {
	if !utf8.ValidString(dirName) {
		return DirResult{Kind: DirRejected, Err: rejected(dirName, "目录名不是合法的 UTF-8")}
	}
	c := newCursor(dirName)

	if y, m, d, ok := c.scanTriple(4); ok && c.sep() {
		date, ok := NewDate(y, m, d)
		if !ok {
			return DirResult{Kind: DirRejected, Err: fieldError(dirName, "date",
				fmt.Sprintf("%04d-%02d-%02d 不是有效日期", y, m, d))}
		}
		streamer, title := splitStreamer(c.rest())
		if title == "" {
			return DirResult{Kind: DirRejected, Err: rejected(dirName, "日期之后缺少标题")}
		}
		return DirResult{Kind: DirDated, Date: date, Streamer: streamer, Title: title}
	}

	c = newCursor(dirName)
	if _, _, _, ok := c.scanTriple(2); ok && c.sep() {
		if title := trimSeps(c.rest()); title != "" {
			return DirResult{Kind: DirUndated, Title: title}
		}
		return DirResult{Kind: DirRejected, Err: rejected(dirName, "日期之后缺少标题")}
	}

	return DirResult{Kind: DirRejected, Err: rejected(dirName, "缺少 YYYYMMDD 日期前缀或其后的分隔符")}
}

func splitStreamer(rest string) (streamer, title string) {
	if i := strings.IndexRune(rest, '-'); i > 0 {
		s := strings.TrimSpace(rest[:i])
		t := trimSeps(rest[i+1:])
		if s != "" && t != "" {
			return s, t
		}
	}
	return "", trimSeps(rest)
}

// ParsedName 是 MatchFile 的结果。
type ParsedName struct {
	// Date 是最终采用的日期：目录提供了日期则用目录日期，否则用文件日期戳。
	Date Date
	// Stamp 是文件名自身的日期戳；HasStamp 为 false 时（带日期目录内只写时刻的文件）为零值。
	Stamp    Date
	HasStamp bool
	// HasClock 表示文件名是否写了 HHMMSS；为 false 时 Clock 是默认时刻。
	HasClock bool
	Clock    Clock
	// Annotations 是被剥离的注释段内容（不含括号），按出现顺序。
	Annotations []string
	Title       string
	Ext         string
}

// Moment 返回录制时刻（日期 + 时刻）。
func (p ParsedName) Moment() time.Time { return p.Date.At(p.Clock) }

// MatchFile 解析媒体文件名（含扩展名）。fallback 非空时作为最终日期（目录携带的日期）。
//
// 开头的数字段：
// - fallback 为空：必须是 [CC]YY[.]MM[.]DD 日期戳，其后可选 HHMMSS
// - fallback 非空：开头是单独一段 HHMMSS（其后不再紧跟第二段六位数字）时按时刻解析；
//   否则与无 fallback 时相同（日期戳仍会被校验，但日期取 fallback）
//
// 失败（*Error）：
// - name_rejected：非法 UTF-8 / 缺少扩展名 / 缺少日期戳 / 注释括号不成对或嵌套 / 标题为空
// - field_parse：日期戳或时间戳不构成合法的日期/时刻
func (g *Grammar) MatchFile(fileName string, fallback *Date) (ParsedName, error) {
	if !utf8.ValidString(fileName) {
		return ParsedName{}, rejected(fileName, "文件名不是合法的 UTF-8")
	}
	dot := strings.LastIndexByte(fileName, '.')
	if dot <= 0 || dot == len(fileName)-1 {
		return ParsedName{}, rejected(fileName, "缺少扩展名")
	}
	base, ext := fileName[:dot], fileName[dot+1:]

	out := ParsedName{Clock: g.defaultClock, Ext: ext}
	c := newCursor(base)
	var err error
	if fallback != nil && c.clockOnly() {
		out.Date = *fallback
		err = g.readClock(c, fileName, &out)
	} else {
		err = g.readStamp(c, fileName, fallback, &out)
	}
	if err != nil {
		return ParsedName{}, err
	}

	c.skipSeps()
	notes, err := g.stripAnnotations(c, fileName)
	if err != nil {
		return ParsedName{}, err
	}
	out.Annotations = notes

	title := trimSeps(c.rest())
	if title == "" {
		return ParsedName{}, rejected(fileName, "标题为空")
	}
	if err := g.checkBalanced(title, fileName); err != nil {
		return ParsedName{}, err
	}
	out.Title = title
	return out, nil
}

// readStamp 读取必需的日期戳，以及其后可选的时间戳。
func (g *Grammar) readStamp(c *cursor, fileName string, fallback *Date, out *ParsedName) error {
	century, yy, mm, dd, ok := c.scanStamp()
	if !ok {
		return rejected(fileName, "缺少 YYMMDD 日期戳或其后的分隔符")
	}
	year := stampYear(century, yy)
	stamp, ok := NewDate(year, mm, dd)
	if !ok {
		return fieldError(fileName, "date", fmt.Sprintf("%04d-%02d-%02d 不是有效日期", year, mm, dd))
	}
	out.Stamp, out.HasStamp = stamp, true
	out.Date = stamp
	if fallback != nil {
		out.Date = *fallback
	}

	c.skipSeps()
	if _, _, _, ok := c.peekClock(); ok {
		return g.readClock(c, fileName, out)
	}
	return nil
}

// readClock 读取一段 HHMMSS 并做范围校验；调用方已确认该位置是时间戳形态。
func (g *Grammar) readClock(c *cursor, fileName string, out *ParsedName) error {
	h, m, s, _ := c.scanClock()
	clock, ok := NewClock(h, m, s)
	if !ok {
		return fieldError(fileName, "time", fmt.Sprintf("%02d:%02d:%02d 不是有效时刻", h, m, s))
	}
	out.Clock = clock
	out.HasClock = true
	return nil
}

// stripAnnotations 剥离标题前连续出现的注释段（例如 "【3D】"）。
func (g *Grammar) stripAnnotations(c *cursor, fileName string) ([]string, error) {
	var notes []string
	for {
		r, ok := c.peek()
		if !ok {
			return notes, nil
		}
		if g.isClose[r] {
			return nil, rejected(fileName, fmt.Sprintf("注释括号 %q 没有对应的开括号", r))
		}
		closing, isOpen := g.closeOf[r]
		if !isOpen {
			return notes, nil
		}

		end := -1
		for i := c.pos + 1; i < len(c.rs); i++ {
			if _, nested := g.closeOf[c.rs[i]]; nested {
				return nil, rejected(fileName, "注释括号嵌套")
			}
			if c.rs[i] == closing {
				end = i
				break
			}
			if g.isClose[c.rs[i]] {
				return nil, rejected(fileName, "注释括号不成对")
			}
		}
		if end < 0 {
			return nil, rejected(fileName, fmt.Sprintf("注释括号 %q 未闭合", r))
		}
		note := strings.TrimSpace(string(c.rs[c.pos+1 : end]))
		if note == "" {
			return nil, rejected(fileName, "注释内容为空")
		}
		notes = append(notes, note)
		c.pos = end + 1
		c.skipSeps()
	}
}

// checkBalanced 要求标题内出现的注释括号成对且不嵌套；标题中的成对括号会原样保留。
func (g *Grammar) checkBalanced(title, fileName string) error {
	var want rune
	for _, r := range title {
		if closing, ok := g.closeOf[r]; ok {
			if want != 0 {
				return rejected(fileName, "标题中的括号嵌套")
			}
			want = closing
			continue
		}
		if g.isClose[r] {
			if r != want {
				return rejected(fileName, "标题中的括号不成对")
			}
			want = 0
		}
	}
	if want != 0 {
		return rejected(fileName, "标题中的括号未闭合")
	}
	return nil
}

// Extract 从单个文件名中提取录制时刻与标题（日期取自文件自身的日期戳）。
func (g *Grammar) Extract(fileName string) (time.Time, string, error) {
	p, err := g.MatchFile(fileName, nil)
	if err != nil {
		return time.Time{}, "", err
	}
	return p.Moment(), p.Title, nil
}

// MatchDir 使用 Default 语法。
func MatchDir(dirName string) DirResult { return Default.MatchDir(dirName) }

// MatchFile 使用 Default 语法。
func MatchFile(fileName string, fallback *Date) (ParsedName, error) {
	return Default.MatchFile(fileName, fallback)
}

// Extract 使用 Default 语法。
func Extract(fileName string) (time.Time, string, error) { return Default.Extract(fileName) }

package name

import (
	"strings"
	"unicode"
)

// cursor 是名字的逐 rune 扫描器。
// 所有 scan* 方法失败时都会把位置恢复到调用前，调用方可以直接尝试下一种规则。
type cursor struct {
	rs  []rune
	pos int
}

func newCursor(s string) *cursor {
	return &cursor{rs: []rune(s)}
}

func (c *cursor) peek() (rune, bool) {
	if c.pos >= len(c.rs) {
		return 0, false
	}
	return c.rs[c.pos], true
}

func (c *cursor) rest() string {
	return string(c.rs[c.pos:])
}

// digits 读取恰好 n 个 ASCII 数字并返回其数值。
func (c *cursor) digits(n int) (int, bool) {
	if c.pos+n > len(c.rs) {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		r := c.rs[c.pos+i]
		if r < '0' || r > '9' {
			return 0, false
		}
		v = v*10 + int(r-'0')
	}
	c.pos += n
	return v, true
}

// accept 读取一个指定字符（可选字符用它，失败不移动位置）。
func (c *cursor) accept(r rune) bool {
	if p, ok := c.peek(); ok && p == r {
		c.pos++
		return true
	}
	return false
}

// sep 读取一个分隔符：'-' 或任意空白。
func (c *cursor) sep() bool {
	if p, ok := c.peek(); ok && isSep(p) {
		c.pos++
		return true
	}
	return false
}

func (c *cursor) skipSeps() {
	for c.sep() {
	}
}

// scanTriple 读取 AA[.]BB[.]CC，first 为首段位数（4 或 2）。
func (c *cursor) scanTriple(first int) (a, b, d int, ok bool) {
	start := c.pos
	if a, ok = c.digits(first); !ok {
		c.pos = start
		return 0, 0, 0, false
	}
	c.accept('.')
	if b, ok = c.digits(2); !ok {
		c.pos = start
		return 0, 0, 0, false
	}
	c.accept('.')
	if d, ok = c.digits(2); !ok {
		c.pos = start
		return 0, 0, 0, false
	}
	return a, b, d, true
}

// scanStamp 读取文件名日期戳：[CC]YY[.]MM[.]DD，且其后必须紧跟分隔符。
// 先尝试带世纪前缀的写法（更具体），失败再退回六位写法；century=-1 表示未写世纪。
func (c *cursor) scanStamp() (century, yy, mm, dd int, ok bool) {
	start := c.pos
	if cc, ok := c.digits(2); ok {
		if y, m, d, ok := c.scanTriple(2); ok && c.sep() {
			return cc, y, m, d, true
		}
	}
	c.pos = start
	if y, m, d, ok := c.scanTriple(2); ok && c.sep() {
		return -1, y, m, d, true
	}
	c.pos = start
	return 0, 0, 0, 0, false
}

// scanClock 读取连续六位 HHMMSS，且其后必须紧跟分隔符；只做形态识别，不做范围校验。
func (c *cursor) scanClock() (h, m, s int, ok bool) {
	start := c.pos
	hms, ok := c.digits(6)
	if !ok || !c.sep() {
		c.pos = start
		return 0, 0, 0, false
	}
	return hms / 10000, hms / 100 % 100, hms % 100, true
}

// peekClock 与 scanClock 相同，但不移动位置。
func (c *cursor) peekClock() (h, m, s int, ok bool) {
	start := c.pos
	h, m, s, ok = c.scanClock()
	c.pos = start
	return h, m, s, ok
}

// clockOnly 报告当前位置是否是单独一段 HHMMSS SEP：其后（跳过分隔符）不再紧跟第二段。
// 两段相连时第一段是日期戳。不移动位置。
func (c *cursor) clockOnly() bool {
	start := c.pos
	defer func() { c.pos = start }()
	if _, _, _, ok := c.scanClock(); !ok {
		return false
	}
	c.skipSeps()
	_, _, _, second := c.scanClock()
	return !second
}

func isSep(r rune) bool {
	return r == '-' || unicode.IsSpace(r)
}

func trimSeps(s string) string {
	return strings.TrimFunc(s, isSep)
}

package name

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date 是不带时区的日历日期（只承载墙上时间字段）。
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String 以 YYYY-MM-DD 输出。
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Clock 是一天内的时刻（时/分/秒）。
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// String 以 HH:MM:SS 输出。
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// DefaultClock 是文件名缺少时间戳时使用的默认开播时刻。
var DefaultClock = Clock{Hour: 20}

// NewDate 校验并构造日历日期。
//
// 约束：月份/日期越界必须失败（例如 13 月、2 月 30 日），
// 不允许依赖 time.Date 的进位规范化把非法值“悄悄”变成另一天。
func NewDate(year, month, day int) (Date, bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}

// NewClock 校验并构造时刻；不接受闰秒（60 秒）。
func NewClock(hour, minute, second int) (Clock, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute, Second: second}, true
}

// ParseClock 解析 "HH:MM:SS" 或 "HH:MM"（配置项 default_time 使用）。
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Clock{}, fmt.Errorf("时间格式应为 HH:MM:SS，实际是 %q", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		if len(p) != 2 {
			return Clock{}, fmt.Errorf("时间格式应为 HH:MM:SS，实际是 %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Clock{}, fmt.Errorf("时间格式应为 HH:MM:SS，实际是 %q", s)
		}
		vals[i] = n
	}
	c, ok := NewClock(vals[0], vals[1], vals[2])
	if !ok {
		return Clock{}, fmt.Errorf("时间越界：%q", s)
	}
	return c, nil
}

// At 把日期与时刻合成为一个 time.Time（固定 UTC，只表达墙上时间，不做时区换算）。
func (d Date) At(c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
}

// stampYear 把文件名里的两位年份补全为四位。
// century<0 表示文件名没有写世纪前缀，此时按 20xx 处理。
func stampYear(century, yy int) int {
	if century < 0 {
		return 2000 + yy
	}
	return century*100 + yy
}

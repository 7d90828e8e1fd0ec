package name

import (
	"errors"
	"fmt"
)

// Kind 区分两类解析失败。
type Kind string

const (
	// KindNameRejected：名字不符合任何受支持的形态。
	KindNameRejected Kind = "name_rejected"
	// KindFieldParse：形态正确，但数字字段不构成合法的日期/时间。
	KindFieldParse Kind = "field_parse"
)

var (
	ErrNameRejected = errors.New("name rejected")
	ErrFieldParse   = errors.New("field parse failed")
)

// Error 是目录名/文件名解析失败的结构化错误。
// errors.Is(err, ErrNameRejected) / errors.Is(err, ErrFieldParse) 可用于区分种类。
type Error struct {
	Kind   Kind
	Name   string
	Field  string // 仅 KindFieldParse 时非空："date" / "time"
	Reason string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindFieldParse:
		return fmt.Sprintf("名字 `%s` 的 %s 字段无效：%s", e.Name, e.Field, e.Reason)
	default:
		return fmt.Sprintf("名字 `%s` 匹配失败：%s", e.Name, e.Reason)
	}
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNameRejected:
		return e.Kind == KindNameRejected
	case ErrFieldParse:
		return e.Kind == KindFieldParse
	}
	return false
}

// KindOf 从 error 中提取 Kind；若不是 *Error 则返回空串。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func rejected(name, reason string) *Error {
	return &Error{Kind: KindNameRejected, Name: name, Reason: reason}
}

func fieldError(name, field, reason string) *Error {
	return &Error{Kind: KindFieldParse, Name: name, Field: field, Reason: reason}
}

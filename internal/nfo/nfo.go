package nfo

import (
	"encoding/xml"
	"errors"
	"strings"

	"github.com/John-Robertt/recnfo/internal/domain"
)

// DefaultTag 同时用作 <tag> 与 <set><name>。
const DefaultTag = "A-SOUL"

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// Options 控制 NFO 里的固定字段；零值使用 DefaultTag。
type Options struct {
	Tag        string
	Collection string
}

type movie struct {
	XMLName xml.Name `xml:"movie"`

	DateAdded     string `xml:"dateadded"`
	Title         string `xml:"title"`
	OriginalTitle string `xml:"originaltitle"`
	Year          int    `xml:"year"`
	Premiered     string `xml:"premiered"`
	ReleaseDate   string `xml:"releasedate"`
	Tag           string `xml:"tag"`
	Set           set    `xml:"set"`
}

type set struct {
	Name string `xml:"name"`
}

var errEmptyTitle = errors.New("标题为空，拒绝生成 NFO")

// Encode 把 Recording 转成 Kodi/Jellyfin/Emby 可读取的 NFO（XML）。
//
// 规则：
// - 字段集合与顺序固定；title 与 originaltitle 相同
// - 日期字段只取墙上时间，不做时区换算
// - 标题中的 XML 特殊字符由 encoding/xml 转义
func Encode(rec domain.Recording, opts Options) ([]byte, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return nil, errEmptyTitle
	}
	tag := strings.TrimSpace(opts.Tag)
	if tag == "" {
		tag = DefaultTag
	}
	collection := strings.TrimSpace(opts.Collection)
	if collection == "" {
		collection = tag
	}

	day := rec.Moment.Format(dateLayout)
	m := movie{
		DateAdded:     rec.Moment.Format(dateTimeLayout),
		Title:         title,
		OriginalTitle: title,
		Year:          rec.Moment.Year(),
		Premiered:     day,
		ReleaseDate:   day,
		Tag:           tag,
		Set:           set{Name: collection},
	}

	b, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	const header = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>` + "\n"
	out := make([]byte, 0, len(header)+len(b)+1)
	out = append(out, header...)
	out = append(out, b...)
	return append(out, '\n'), nil
}

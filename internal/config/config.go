package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/recnfo/internal/name"
	"github.com/John-Robertt/recnfo/internal/nfo"
	"github.com/John-Robertt/recnfo/internal/scan"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法（CLI 参数不合法也归入此类）。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是根目录下的项目级配置文件名。
	FileName = "recnfo.yaml"
	// EnvLogLevel 是覆盖日志级别的环境变量名。
	EnvLogLevel = "RECNFO_LOG"
	// DefaultLogLevel 在 CLI、环境变量与配置文件都未指定时使用。
	DefaultLogLevel = log.DebugLevel

	userConfigRel = "recnfo/config.yaml"
)

// searchUserConfig 查找用户级配置（$XDG_CONFIG_HOME 及 $XDG_CONFIG_DIRS）；测试可替换。
var searchUserConfig = func() (string, error) {
	return xdg.SearchConfigFile(userConfigRel)
}

// CLIArgs 是 CLI 暴露的入口参数，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --force=false 必须能覆盖 force: true。
type CLIArgs struct {
	Root string

	// ConfigPath 非空时只读取该文件（必须存在），不再做自动发现。
	ConfigPath string

	Force    bool
	ForceSet bool

	DryRun bool

	LogLevel string
	// EnvLogLevel 是调用方读出的 RECNFO_LOG 取值（为空表示未设置）。
	EnvLogLevel string

	Extensions    []string
	ExtensionsSet bool
}

// FileConfig 对应 recnfo.yaml 的解析结构；未知字段视为错误。
type FileConfig struct {
	Extensions  []string `yaml:"extensions"`
	DefaultTime string   `yaml:"default_time"`
	Tag         string   `yaml:"tag"`
	Collection  string   `yaml:"collection"`
	LogLevel    string   `yaml:"log_level"`
	Force       *bool    `yaml:"force"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Root string
	// ConfigPath 是实际读取的配置文件；未读取任何文件时为空。
	ConfigPath string

	Force  bool
	DryRun bool

	Extensions   []string
	DefaultClock name.Clock
	Tag          string
	Collection   string
	LogLevel     log.Level
	ExcludeDirs  []string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（只读取第一个命中的文件）：
// 1) --config 指定的文件（必须存在）
// 2) <root>/recnfo.yaml（可选）
// 3) $XDG_CONFIG_HOME/recnfo/config.yaml（可选）
//
// 覆盖优先级：
// - force：CLI --force/--force=false > config > 默认 false
// - extensions：CLI --ext > config > 默认 flv,mp4
// - log_level：CLI --log-level > 环境变量 RECNFO_LOG > config > 默认 debug
// - 其他字段：仅由 config 控制
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	if strings.TrimSpace(cli.Root) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Err: errors.New("缺少根目录参数")}
	}
	root := absCleanFrom(cwdAbs, cli.Root)

	cfgPath, fc, err := discover(cwdAbs, root, cli.ConfigPath)
	if err != nil {
		return EffectiveConfig{}, err
	}
	return merge(root, cli, fc, cfgPath)
}

func discover(cwdAbs, root, explicit string) (string, FileConfig, error) {
	if strings.TrimSpace(explicit) != "" {
		p := absCleanFrom(cwdAbs, explicit)
		fc, exists, err := readFileConfig(p)
		if err != nil {
			return "", FileConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		if !exists {
			return "", FileConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: os.ErrNotExist}
		}
		return p, fc, nil
	}

	candidates := []string{filepath.Join(root, FileName)}
	if p, err := searchUserConfig(); err == nil && p != "" {
		candidates = append(candidates, p)
	}
	for _, p := range candidates {
		fc, exists, err := readFileConfig(p)
		if err != nil {
			return "", FileConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		if exists {
			return p, fc, nil
		}
	}
	return "", FileConfig{}, nil
}

func merge(root string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// force：CLI > config > 默认 false
	force := false
	if cli.ForceSet {
		force = cli.Force
	} else if fc.Force != nil {
		force = *fc.Force
	}

	// extensions：CLI > config > 默认
	rawExts := fc.Extensions
	if cli.ExtensionsSet {
		rawExts = cli.Extensions
	}
	exts := scan.DefaultExtensions
	if cli.ExtensionsSet || len(rawExts) > 0 {
		exts = scan.NormalizeExtensions(rawExts)
		if len(exts) == 0 {
			return EffectiveConfig{}, invalid(errors.New("extensions 不能为空"))
		}
	}

	clock := name.DefaultClock
	if s := strings.TrimSpace(fc.DefaultTime); s != "" {
		c, err := name.ParseClock(s)
		if err != nil {
			return EffectiveConfig{}, invalid(fmt.Errorf("default_time 无效：%w", err))
		}
		clock = c
	}

	level, err := pickLogLevel(cli, fc)
	if err != nil {
		return EffectiveConfig{}, invalid(err)
	}

	tag := strings.TrimSpace(fc.Tag)
	if tag == "" {
		tag = nfo.DefaultTag
	}
	collection := strings.TrimSpace(fc.Collection)
	if collection == "" {
		collection = tag
	}

	return EffectiveConfig{
		Root:         root,
		ConfigPath:   cfgPath,
		Force:        force,
		DryRun:       cli.DryRun,
		Extensions:   append([]string(nil), exts...),
		DefaultClock: clock,
		Tag:          tag,
		Collection:   collection,
		LogLevel:     level,
		ExcludeDirs:  append([]string(nil), fc.ExcludeDirs...),
	}, nil
}

func pickLogLevel(cli CLIArgs, fc FileConfig) (log.Level, error) {
	sources := []struct {
		what  string
		value string
	}{
		{"--log-level", cli.LogLevel},
		{EnvLogLevel, cli.EnvLogLevel},
		{"log_level", fc.LogLevel},
	}
	for _, s := range sources {
		v := strings.TrimSpace(s.value)
		if v == "" {
			continue
		}
		lvl, err := log.ParseLevel(strings.ToLower(v))
		if err != nil {
			return 0, fmt.Errorf("%s 无效：%q", s.what, v)
		}
		return lvl, nil
	}
	return DefaultLogLevel, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）；空文件等价于空配置。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return FileConfig{}, true, nil
		}
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	"github.com/John-Robertt/recnfo/internal/domain"
)

// isolate 让测试不受运行环境的用户级配置与 RECNFO_LOG 影响。
func isolate(t *testing.T) {
	t.Helper()
	old := log.Default()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	t.Setenv("RECNFO_LOG", "")
	xdg.Reload()
	t.Cleanup(func() {
		log.SetDefault(old)
		xdg.Reload()
	})
}

func TestCLI_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	// stdout 非 TTY 时只能输出一个 RunReport JSON（日志/摘要必须走 stderr）。
	isolate(t)
	root := t.TempDir()
	media(t, filepath.Join(root, "20210818 向晚生日会", "20210818-210116-【3D】看！看点儿啥呢！！！.flv"))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{root}, &stdout, &stderr, false)
	if code != exitOK {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, stderr.String())
	}

	dec := json.NewDecoder(&stdout)
	var rr domain.RunReport
	if err := dec.Decode(&rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v", err)
	}
	if dec.More() {
		t.Fatalf("stdout 只能包含一个 JSON")
	}
	if rr.Summary.Generated != 1 || rr.RunID == "" {
		t.Fatalf("报告不一致：%+v", rr)
	}
	if !strings.Contains(stderr.String(), "完成：generated=1") {
		t.Fatalf("摘要应写到 stderr：%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "已生成") {
		t.Fatalf("默认 debug 级别应输出生成日志：%s", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(root, "20210818 向晚生日会", "20210818-210116-【3D】看！看点儿啥呢！！！.nfo")); err != nil {
		t.Fatalf("期望写出 NFO：%v", err)
	}
}

func TestCLI_TTY_SummaryAndProblemTable(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	media(t, filepath.Join(root, "20210116-乃琳 温柔夜谈", "20210116 夜谈.flv"))
	media(t, filepath.Join(root, "20210116-乃琳 温柔夜谈", "杂谈.flv"))
	media(t, filepath.Join(root, "随便一个文件夹", "x.flv"))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{root}, &stdout, &stderr, true)
	if code != exitFail {
		t.Fatalf("存在 unmatched 时期望退出码 1，实际 %d", code)
	}
	out := stdout.String()
	for _, want := range []string{"完成：generated=1", "unmatched", "name_rejected", "杂谈.flv", "随便一个文件夹", "rejected"} {
		if !strings.Contains(out, want) {
			t.Fatalf("TTY 输出缺少 %q：\n%s", want, out)
		}
	}
	if strings.Contains(out, "{\"run_id\"") {
		t.Fatalf("TTY 下不应输出 JSON：\n%s", out)
	}
	if !strings.Contains(stderr.String(), "文件夹匹配失败") {
		t.Fatalf("被拒绝的目录应有告警日志：%s", stderr.String())
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{}, {"--bogus", "x"}, {"a", "b"}} {
		var stdout, stderr bytes.Buffer
		if code := execute(context.Background(), args, &stdout, &stderr, false); code != exitUsage {
			t.Fatalf("%v：期望退出码 2，实际 %d", args, code)
		}
		if !strings.Contains(stderr.String(), "参数错误") {
			t.Fatalf("%v：stderr 应包含用法提示：%s", args, stderr.String())
		}
		if stdout.Len() != 0 {
			t.Fatalf("%v：参数错误时 stdout 应为空：%s", args, stdout.String())
		}
	}
}

func TestCLI_Help(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	if code := execute(context.Background(), []string{"--help"}, &stdout, &stderr, false); code != exitOK {
		t.Fatalf("--help 期望退出码 0，实际 %d", code)
	}
	if !strings.Contains(stdout.String(), "recnfo <root>") || !strings.Contains(stdout.String(), "--dry-run") {
		t.Fatalf("帮助信息不完整：%s", stdout.String())
	}
}

func TestCLI_ConfigInvalid_ReportsSyntheticItem(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{root, "--config", filepath.Join(root, "none.yaml")}, &stdout, &stderr, false)
	if code != exitFail {
		t.Fatalf("期望退出码 1，实际 %d", code)
	}
	var rr domain.RunReport
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\n%s", err, stdout.String())
	}
	if len(rr.Items) != 1 || rr.Items[0].ErrorCode != domain.ErrCodeConfigInvalid || rr.Items[0].Kind != domain.KindRoot {
		t.Fatalf("期望一条 config_invalid 合成项，实际 %+v", rr.Items)
	}
}

func TestCLI_RootUnreadable(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr, false)
	if code != exitFail {
		t.Fatalf("期望退出码 1，实际 %d", code)
	}
	var rr domain.RunReport
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v", err)
	}
	if rr.Summary.Failed != 1 || rr.Items[0].ErrorCode != domain.ErrCodeRootUnreadable {
		t.Fatalf("期望 root_unreadable，实际 %+v", rr.Items)
	}
}

func TestCLI_DryRunWithReportFile(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	dir := filepath.Join(root, "20210214 情人节")
	media(t, filepath.Join(dir, "20210214 今天是情人节呢~聊天杂谈.flv"))
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"-n", "--report", reportPath, root}, &stdout, &stderr, false)
	if code != exitOK {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "20210214 今天是情人节呢~聊天杂谈.nfo")); !os.IsNotExist(err) {
		t.Fatalf("dry-run 不应写入 NFO：err=%v", err)
	}

	b, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("读取报告文件失败：%v", err)
	}
	var rr domain.RunReport
	if err := json.Unmarshal(b, &rr); err != nil {
		t.Fatalf("报告文件不是合法 JSON：%v", err)
	}
	if !rr.DryRun || rr.Summary.Planned != 1 || rr.Items[0].Title != "今天是情人节呢~聊天杂谈" {
		t.Fatalf("报告文件内容不一致：%+v", rr)
	}
}

func TestCLI_ExtFlagAndRootConfig(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	dir := filepath.Join(root, "20210116-夜谈")
	media(t, filepath.Join(dir, "20210116 夜谈.mkv"))
	media(t, filepath.Join(dir, "20210116 夜谈2.flv"))
	if err := os.WriteFile(filepath.Join(root, "recnfo.yaml"), []byte("tag: 乃琳\n"), 0o644); err != nil {
		t.Fatalf("写入配置失败：%v", err)
	}

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{root, "--ext", "mkv"}, &stdout, &stderr, false)
	if code != exitOK {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, stderr.String())
	}
	b, err := os.ReadFile(filepath.Join(dir, "20210116 夜谈.nfo"))
	if err != nil {
		t.Fatalf("读取 NFO 失败：%v", err)
	}
	if !strings.Contains(string(b), "<tag>乃琳</tag>") {
		t.Fatalf("应使用根目录配置中的 tag：\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(dir, "20210116 夜谈2.nfo")); !os.IsNotExist(err) {
		t.Fatalf("--ext 覆盖后不应处理 flv：err=%v", err)
	}
}

func TestCLI_LogLevelFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("RECNFO_LOG", "warn")
	root := t.TempDir()
	media(t, filepath.Join(root, "20210116-夜谈", "20210116 夜谈.flv"))

	var stdout, stderr bytes.Buffer
	if code := execute(context.Background(), []string{root}, &stdout, &stderr, false); code != exitOK {
		t.Fatalf("期望退出码 0，实际 %d", code)
	}
	if strings.Contains(stderr.String(), "开始扫描") || strings.Contains(stderr.String(), "已生成") {
		t.Fatalf("warn 级别不应输出 info/debug 日志：%s", stderr.String())
	}
}

func media(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	past := time.Date(2021, 8, 19, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("设置 mtime 失败：%v", err)
	}
}

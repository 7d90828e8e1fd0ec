package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSidecar_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "20210116 夜谈.nfo")

	if err := WriteSidecar(dst, []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	assertNoTemp(t, dir)
}

func TestWriteSidecar_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a.nfo")
	if err := os.WriteFile(dst, []byte("old-and-longer"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}

	if err := WriteSidecar(dst, []byte("new")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "new" {
		t.Fatalf("期望被完整替换，实际：%q", string(b))
	}
}

func TestWriteSidecar_RenameFail_KeepsOldAndCleansTemp(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a.nfo")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteSidecar(dst, []byte("new")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "old" {
		t.Fatalf("失败时不应改动旧文件，实际：%q", string(b))
	}
	assertNoTemp(t, dir)
}

func TestWriteSidecar_TargetConflictDir(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a.nfo")

	// 目标路径是目录：应返回 PathTypeConflictError。
	if err := os.Mkdir(dst, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteSidecar(dst, []byte("hello"))
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
	assertNoTemp(t, dir)
}

func TestWriteSidecar_MissingDir(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "a.nfo")
	if err := WriteSidecar(dst, []byte("x")); err == nil {
		t.Fatalf("目录不存在时期望失败")
	}
}

func TestCheckRegular(t *testing.T) {
	dir := t.TempDir()

	exists, err := CheckRegular(filepath.Join(dir, "none"))
	if err != nil || exists {
		t.Fatalf("不存在的路径应返回 (false, nil)，实际 (%v, %v)", exists, err)
	}

	f := filepath.Join(dir, "f")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	exists, err = CheckRegular(f)
	if err != nil || !exists {
		t.Fatalf("普通文件应返回 (true, nil)，实际 (%v, %v)", exists, err)
	}
}

func TestWriteFileAtomic_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := WriteFileAtomic(dir, "r.json", []byte("{}")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "r.json")); err != nil {
		t.Fatalf("期望文件存在：%v", err)
	}
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") && strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

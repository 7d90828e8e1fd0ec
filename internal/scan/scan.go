// Package scan 列出根目录下的录播文件夹，以及文件夹内可处理的媒体文件。
//
// 扫描只有两层：根目录的直接子目录，和每个子目录的直接子文件（不递归）。
// 扫描阶段只做 ReadDir/stat，不读文件内容。
package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/John-Robertt/recnfo/internal/domain"
)

// DefaultExtensions 是默认处理的媒体扩展名。
var DefaultExtensions = []string{"flv", "mp4"}

// ListDirs 返回 root 的直接子目录（按名字排序），并应用目录排除规则。
//
// excludeDirs：来自配置文件，均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）。
// 指向目录的符号链接会被跟随；悬空链接按文件处理（直接忽略）。
func ListDirs(root string, excludeDirs []string) ([]domain.RecordingDir, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	dirs := make([]domain.RecordingDir, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if isExcluded(path, excluded) || !isDirEntry(path, e) {
			continue
		}
		dirs = append(dirs, domain.RecordingDir{
			AbsPath: path,
			Name:    nfc(e.Name()),
		})
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}

// ListMedia 返回 dir 内扩展名属于 exts 的文件（不递归，按名字排序）。
// RelPath 相对 root 计算并统一为 '/' 分隔。
func ListMedia(root string, dir domain.RecordingDir, exts []string) ([]domain.MediaFile, error) {
	root = filepath.Clean(root)
	allowed := extSet(exts)

	entries, err := os.ReadDir(dir.AbsPath)
	if err != nil {
		return nil, err
	}

	files := make([]domain.MediaFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(dir.AbsPath, name)
		if isDirEntry(path, e) {
			continue
		}
		ext := filepath.Ext(name)
		if _, ok := allowed[strings.ToLower(ext)]; !ok {
			continue
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}

		files = append(files, domain.MediaFile{
			AbsPath: path,
			RelPath: filepath.ToSlash(nfc(rel)),
			Name:    nfc(name),
			Ext:     strings.ToLower(ext),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// NormalizeExtensions 把配置里的扩展名统一为不带 '.' 的小写形式，并去重排序。
func NormalizeExtensions(exts []string) []string {
	set := extSet(exts)
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, strings.TrimPrefix(e, "."))
	}
	sort.Strings(out)
	return out
}

func extSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if e = normalizeExt(e); e != "." {
			set[e] = struct{}{}
		}
	}
	return set
}

func normalizeExt(ext string) string {
	return "." + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// nfc 对合法 UTF-8 做 NFC 规范化；非法字节原样保留，交给名字解析拒绝。
func nfc(s string) string {
	if !utf8.ValidString(s) {
		return s
	}
	return norm.NFC.String(s)
}

func isDirEntry(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		// x 是相对路径：相对 root。
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	// 排除列表排序后，isExcluded 的行为更可预测（且便于测试）。
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}

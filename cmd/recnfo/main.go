package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/recnfo/internal/app/run"
	"github.com/John-Robertt/recnfo/internal/config"
	"github.com/John-Robertt/recnfo/internal/domain"
	"github.com/John-Robertt/recnfo/internal/logging"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, isTTY(os.Stdout))
	stop()
	os.Exit(code)
}

// cliFlags 是 cobra 绑定的原始参数。
type cliFlags struct {
	force      bool
	dryRun     bool
	configPath string
	logLevel   string
	exts       []string
	reportPath string
}

// execute 解析参数并完成一次运行，返回进程退出码。
// stdoutTTY 决定报告形态：终端输出摘要与表格，否则 stdout 只输出一个 RunReport JSON。
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, stdoutTTY bool) int {
	var (
		f    cliFlags
		code = exitOK
	)

	cmd := &cobra.Command{
		Use:   "recnfo <root>",
		Short: "为录播文件夹里的媒体文件生成 NFO",
		Long: `recnfo 扫描 <root> 下的每个录播文件夹，从文件夹名与文件名中解析录制日期、时刻与标题，
并在每个 flv/mp4 旁边写入同名 .nfo（供 Jellyfin/Kodi/Emby 读取）。

已存在且比媒体文件新的 .nfo 会被跳过；使用 --force 强制重新生成。`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code = runRoot(cmd.Context(), cmd, args[0], f, stdout, stderr, stdoutTTY)
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.BoolVarP(&f.force, "force", "f", false, "忽略新旧判断，重新生成所有 NFO")
	fl.BoolVarP(&f.dryRun, "dry-run", "n", false, "只解析与规划，不写入任何文件")
	fl.StringVarP(&f.configPath, "config", "c", "", "配置文件路径（默认依次查找 <root>/recnfo.yaml 与 $XDG_CONFIG_HOME/recnfo/config.yaml）")
	fl.StringVar(&f.logLevel, "log-level", "", "日志级别：debug|info|warn|error（默认 debug，可用 RECNFO_LOG 覆盖）")
	fl.StringSliceVar(&f.exts, "ext", nil, "处理的媒体扩展名，逗号分隔（默认 flv,mp4）")
	fl.StringVar(&f.reportPath, "report", "", "额外把 RunReport JSON 写入该文件")

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n%s", err, cmd.UsageString())
		return exitUsage
	}
	return code
}

func runRoot(ctx context.Context, cmd *cobra.Command, root string, f cliFlags, stdout, stderr io.Writer, stdoutTTY bool) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
		return exitFail
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Root:          root,
		ConfigPath:    f.configPath,
		Force:         f.force,
		ForceSet:      cmd.Flags().Changed("force"),
		DryRun:        f.dryRun,
		LogLevel:      f.logLevel,
		EnvLogLevel:   os.Getenv(config.EnvLogLevel),
		Extensions:    f.exts,
		ExtensionsSet: cmd.Flags().Changed("ext"),
	})
	if err != nil {
		logger := logging.New(stderr, config.DefaultLogLevel)
		logger.Error("加载配置失败", "err", err)
		emitReport(stdout, stderr, reportForConfigError(root, f, err), stdoutTTY)
		return exitFail
	}

	logger := logging.Install(stderr, eff.LogLevel)
	rr := run.ExecuteWithObserver(ctx, eff, newLogObserver(logger))

	if f.reportPath != "" {
		if err := writeReportFile(f.reportPath, rr); err != nil {
			logger.Error("写入报告文件失败", "path", f.reportPath, "err", err)
			emitReport(stdout, stderr, rr, stdoutTTY)
			return exitFail
		}
		logger.Debug("已写入报告文件", "path", f.reportPath)
	}

	emitReport(stdout, stderr, rr, stdoutTTY)
	if rr.OK() {
		return exitOK
	}
	return exitFail
}

func reportForConfigError(root string, f cliFlags, err error) domain.RunReport {
	now := time.Now().UTC()
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rr := domain.RunReport{
		RunID:      uuid.NewString(),
		Root:       root,
		DryRun:     f.dryRun,
		Force:      f.force,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Kind:      domain.KindRoot,
			Status:    domain.StatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

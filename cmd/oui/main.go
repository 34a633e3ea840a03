// oui 查询 MAC 地址或 OUI 所属的厂商。
//
// 用法:
//
//	oui [全局选项] <mac-or-oui>...
//	oui [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径（.yaml/.yml/.json）
//	-d, --dir      注册表目录，覆盖配置中的 registry.dir
//	    --json     以 JSON 输出查询结果
//	    --online   本地注册表未命中时查询 maclookup.app
//	    --log-level 日志级别，覆盖配置中的 log.level
//
// 命令:
//
//	update         下载 IEEE 注册表并重写快照
//	watch          后台按计划刷新注册表，直到收到信号
//	convert <mac>  打印地址的各种表示形式
//	random         生成随机地址
//
// 首次运行且注册表目录为空时会自动下载一次。
//
// 退出码:
//
//	0: 成功（包括未登记的前缀）
//	1: 运行错误（配置错误、没有可用的注册表数据等）
//	2: 参数错误（非法的 MAC/OUI、未知命令等）
//
// 示例:
//
//	oui 24:6d:5e:bb:99:cc                 # 24-6D-5E: Vendor Name
//	oui 246D5E 79B74DA FFFFFFFFFFFF       # 多个输入逐行输出
//	oui --json --online 3C22FB            # 本地未命中时在线查询，JSON 输出
//	oui update --force                    # 忽略有效期强制下载
//	MACLOOKUP_API_KEY=xxx oui --online ...  # 带 API 密钥提高在线查询配额
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// 退出码。
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitError 表示需要非零退出码但已完成输出的场景。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。stdout 接收查询结果，stderr 接收错误与默认日志。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "oui",
		Usage:     "查询 MAC 地址或 OUI 所属的厂商",
		ArgsUsage: "<mac-or-oui>...",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				Sources: cli.EnvVars("XOUI_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "注册表目录",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "以 JSON 输出",
			},
			&cli.BoolFlag{
				Name:  "online",
				Usage: "本地注册表未命中时在线查询",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
			},
		},
		Commands: createCommands(),
		Action:   lookupAction,
		Authors: []any{
			"XOUI Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, cmd *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(cmd.Root().ErrWriter, err)
			}
		},
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := setupSignalHandler(cancel)
	defer stop()

	if err := app.Run(ctx, args); err != nil {
		return exitCode(err, stderr)
	}
	return exitOK
}

// exitCode 把命令错误映射为退出码并输出必要的错误信息。
func exitCode(err error, stderr io.Writer) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "oui: %v\n", usageErr)
		return exitUsage
	}
	if isCLIUsageError(err) {
		fmt.Fprintf(stderr, "oui: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(stderr, "oui: %v\n", err)
	return exitFailure
}

// isCLIUsageError 识别 urfave/cli 产生的参数错误（未知 flag、缺少参数值等）。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, s := range []string{"flag provided but not defined", "flag needs an argument", "invalid value", "No help topic for"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/oui/xrefresh"
	"github.com/omeyang/xoui/pkg/oui/xresolve"
	"github.com/omeyang/xoui/pkg/util/xmac"
)

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createUpdateCommand(),
		createWatchCommand(),
		createConvertCommand(),
		createRandomCommand(),
	}
}

// lookupAction 逐个解析参数并逐行输出。任一输入非法时退出码为 2。
func lookupAction(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		return cli.ShowRootCommandHelp(cmd)
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	engine, err := rt.engine(ctx)
	if err != nil {
		return err
	}

	batch := make([]xresolve.Input, len(inputs))
	for i, in := range inputs {
		batch[i] = xresolve.Text(in)
	}
	outcomes := engine.ResolveBatch(ctx, batch)

	var invalid bool
	if cmd.Bool("json") {
		invalid, err = writeJSON(rt.stdout, inputs, outcomes)
		if err != nil {
			return err
		}
	} else {
		invalid = writeText(rt.stdout, inputs, outcomes)
	}
	if invalid {
		return &exitError{code: exitUsage}
	}
	return nil
}

// writeText 按 "<前缀>: <组织>" 逐行输出，返回是否存在非法输入。
func writeText(w io.Writer, inputs []string, outcomes []xresolve.Outcome) bool {
	invalid := false
	for i, o := range outcomes {
		switch {
		case isInvalid(o.Err):
			invalid = true
			fmt.Fprintf(w, "%s is not a valid MAC or OUI\n", inputs[i])
		case o.Err != nil:
			fmt.Fprintf(w, "%s: %v\n", inputs[i], o.Err)
		case o.Result.Found():
			fmt.Fprintf(w, "%s: %s\n", o.Result.HyphenPrefix(), o.Result.Organization)
		default:
			fmt.Fprintf(w, "%s: No entries with IEEE\n", xmac.Format(o.Result.Digits, xmac.NotationHyphen, xmac.Upper))
		}
	}
	return invalid
}

// jsonError 是 --json 输出中失败的条目。
type jsonError struct {
	Input string `json:"input"`
	Error string `json:"error"`
}

func writeJSON(w io.Writer, inputs []string, outcomes []xresolve.Outcome) (bool, error) {
	invalid := false
	out := make([]any, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			invalid = invalid || isInvalid(o.Err)
			out[i] = jsonError{Input: inputs[i], Error: o.Err.Error()}
			continue
		}
		out[i] = o.Result
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return invalid, enc.Encode(out)
}

func isInvalid(err error) bool {
	var ioe *xresolve.InvalidOUIError
	return errors.As(err, &ioe)
}

// createUpdateCommand 创建 update 子命令：下载注册表、重建并重写快照。
func createUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "下载 IEEE 注册表并重写快照",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "忽略有效期，总是下载",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			dir := rt.settings.Registry.Dir
			report, ferr := rt.fetcher(cmd.Bool("force")).Fetch(ctx, dir)
			for _, f := range report.Files {
				status := "downloaded"
				switch {
				case f.Err != nil:
					status = "failed: " + f.Err.Error()
				case f.Skipped:
					status = "up to date"
				}
				fmt.Fprintf(rt.stdout, "%s: %s\n", f.Path, status)
			}
			if ferr != nil && report.Downloaded() == 0 {
				return ferr
			}

			// 无论是否下载都重建，保证快照与目录一致
			target := &storeTarget{}
			r, err := xrefresh.New(target, dir, rt.refreshOptions()...)
			if err != nil {
				return err
			}
			stats, err := r.Refresh(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.stdout, "%d records loaded from %s\n", stats.Records, dir)
			return ferr
		},
	}
}

// createWatchCommand 创建 watch 子命令：按计划刷新并监视目录，直到收到信号。
func createWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "后台按计划刷新注册表，直到收到信号",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "schedule",
				Usage: "cron 表达式，覆盖配置中的 refresh.schedule",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			engine, err := rt.engine(ctx)
			if err != nil {
				return err
			}
			schedule := rt.settings.Refresh.Schedule
			if s := cmd.String("schedule"); s != "" {
				schedule = s
			}
			opts := append(rt.refreshOptions(),
				xrefresh.WithFetcher(rt.fetcher(false)),
				xrefresh.WithSchedule(schedule),
			)
			if rt.settings.Refresh.Watch {
				opts = append(opts, xrefresh.WithWatch(rt.settings.Refresh.Debounce))
			}
			r, err := xrefresh.New(engine, rt.settings.Registry.Dir, opts...)
			if err != nil {
				return &usageError{msg: err.Error()}
			}
			rt.logger.Info(ctx, "watching registry",
				xlog.Path(rt.settings.Registry.Dir), xlog.Count(engine.Store().Len()))
			return r.Run(ctx)
		},
	}
}

// createConvertCommand 创建 convert 子命令：打印地址的各种表示形式。
func createConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "打印地址的各种表示形式",
		ArgsUsage: "<mac>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "IPv6 前缀（如 2001:db8::/64），用于生成全局地址",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "convert requires exactly one address"}
			}
			addr, err := xmac.Parse(cmd.Args().First())
			if err != nil {
				return &usageError{msg: err.Error()}
			}
			return writeConversions(cmd.Root().Writer, addr, cmd.String("prefix"))
		},
	}
}

func writeConversions(w io.Writer, addr xmac.Addr, prefix string) error {
	lines := [][2]string{
		{"clean", addr.Format(xmac.NotationNone, xmac.Upper)},
		{"colon", addr.Format(xmac.NotationColon, xmac.Upper)},
		{"hyphen", addr.Format(xmac.NotationHyphen, xmac.Upper)},
		{"period", addr.Format(xmac.NotationPeriod, xmac.Lower)},
		{"space", addr.Format(xmac.NotationSpace, xmac.Upper)},
		{"decimal", fmt.Sprint(addr.Decimal())},
		{"binary", addr.Binary()},
		{"oui", xmac.Format(addr.OUI(), xmac.NotationHyphen, xmac.Upper)},
		{"eui64", addr.EUI64Suffix()},
		{"link-local", addr.LinkLocal().String()},
	}
	if prefix != "" {
		global, err := addr.GlobalAddress(prefix)
		if err != nil {
			return &usageError{msg: err.Error()}
		}
		lines = append(lines, [2]string{"global", global.String()})
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-10s %s\n", l[0]+":", l[1]); err != nil {
			return err
		}
	}
	return nil
}

// createRandomCommand 创建 random 子命令：生成随机地址。
func createRandomCommand() *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "生成随机地址",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "bits",
				Usage: "位宽：48 或 64",
				Value: xmac.Bits48,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "生成数量",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "notation",
				Usage: "分隔风格：colon/hyphen/period/space/none",
				Value: "colon",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			notation, err := xmac.ParseNotation(cmd.String("notation"))
			if err != nil {
				return &usageError{msg: err.Error()}
			}
			var b strings.Builder
			for range max(cmd.Int("count"), 1) {
				addr, err := xmac.Random(int(cmd.Int("bits")))
				if err != nil {
					return &usageError{msg: err.Error()}
				}
				b.WriteString(addr.Format(notation, xmac.Upper))
				b.WriteByte('\n')
			}
			_, err = io.WriteString(cmd.Root().Writer, b.String())
			return err
		},
	}
}

// Package xfetch 从 IEEE 下载 MA-L、MA-M、MA-S 注册表 CSV 到本地目录。
//
// 三个文件并行下载，单个文件失败按 retry-go 重试，不影响其它文件。
// 内容先写入同目录下的临时文件，校验表头后再 rename 覆盖目标，
// 读者不会看到写了一半的文件。
//
// 覆盖策略：目标文件存在且修改时间在 MaxAge 之内时跳过下载，
// 除非使用 [WithForce]。
//
//	f := xfetch.New(xfetch.DefaultSources(), xfetch.WithMaxAge(7*24*time.Hour))
//	report, err := f.Fetch(ctx, dir)
package xfetch

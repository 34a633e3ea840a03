// Package xrefresh 维护运行中的注册表：启动时从快照或 CSV 载入，
// 之后按 cron 计划下载并重建，或在注册表目录的文件变化时重建。
//
// 重建完成后通过 [Target] 原子替换，正在进行的解析不受影响；
// 旧注册表学习层中的记录迁移到新注册表，最后保存快照。
// 重建失败时保留旧注册表。
//
//	store, origin, err := xrefresh.Bootstrap(ctx, dir, xrefresh.WithSnapshot(path, true))
//	engine, err := xresolve.New(store)
//	r, err := xrefresh.New(engine, dir,
//		xrefresh.WithFetcher(xfetch.New(xfetch.DefaultSources())),
//		xrefresh.WithSchedule("@daily"),
//		xrefresh.WithWatch(500*time.Millisecond),
//	)
//	err = r.Run(ctx) // 阻塞到 ctx 结束
package xrefresh

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xoui/pkg/config/xconf"
	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/observability/xmetrics"
	"github.com/omeyang/xoui/pkg/oui/xfetch"
	"github.com/omeyang/xoui/pkg/oui/xlookup"
	"github.com/omeyang/xoui/pkg/oui/xrefresh"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
	"github.com/omeyang/xoui/pkg/oui/xresolve"
	"github.com/omeyang/xoui/pkg/util/xlru"
)

// redisLimiterKey 是多进程共享在线查询配额的 Redis 键。
const redisLimiterKey = "xoui:maclookup"

// runtime 是一次命令执行所需的依赖，由 newRuntime 按配置组装。
type runtime struct {
	settings xconf.Settings
	logger   xlog.Logger
	observer xmetrics.Observer
	stdout   io.Writer

	closers []func() error
}

// newRuntime 读取配置并创建日志与观测器。
func newRuntime(cmd *cli.Command) (*runtime, error) {
	settings, err := xconf.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if dir := cmd.String("dir"); dir != "" {
		settings.Registry.Dir = dir
	}
	if level := cmd.String("log-level"); level != "" {
		settings.Log.Level = level
	}
	if cmd.Bool("online") {
		settings.Lookup.Enabled = true
	}
	if err := settings.Validate(); err != nil {
		return nil, &usageError{msg: err.Error()}
	}

	b := xlog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevelString(settings.Log.Level).
		SetFormat(settings.Log.Format)
	if settings.Log.File != "" {
		b.SetRotation(settings.Log.File, settings.Log.Rotation)
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, err
	}
	xlog.SetDefault(logger)

	observer, err := xmetrics.NewOTelObserver(xmetrics.WithInstrumentationName("github.com/omeyang/xoui"))
	if err != nil {
		_ = cleanup()
		return nil, err
	}

	return &runtime{
		settings: settings,
		logger:   logger,
		observer: observer,
		stdout:   cmd.Root().Writer,
		closers:  []func() error{cleanup},
	}, nil
}

// Close 按注册的逆序释放资源。
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func (rt *runtime) onClose(fn func() error) {
	rt.closers = append(rt.closers, fn)
}

// fetcher 按配置创建 IEEE 下载器。
func (rt *runtime) fetcher(force bool) *xfetch.Fetcher {
	r := rt.settings.Registry
	return xfetch.New(xfetch.Sources(r.MALURL, r.MAMURL, r.MASURL),
		xfetch.WithUserAgent("xoui/"+Version),
		xfetch.WithTimeout(r.Timeout),
		xfetch.WithAttempts(r.Attempts),
		xfetch.WithMaxAge(r.MaxAge),
		xfetch.WithForce(force),
		xfetch.WithLogger(rt.logger),
	)
}

// refreshOptions 是 Bootstrap 与 Refresher 共用的选项。
func (rt *runtime) refreshOptions() []xrefresh.Option {
	opts := []xrefresh.Option{
		xrefresh.WithLogger(rt.logger),
		xrefresh.WithObserver(rt.observer),
	}
	if rt.settings.Snapshot.Enabled {
		opts = append(opts, xrefresh.WithSnapshot(rt.settings.SnapshotPath(), rt.settings.Snapshot.Compress))
	}
	return opts
}

// loadStore 载入注册表。目录中没有任何数据时先下载一次。
// 启用在线查询时允许没有本地数据。
func (rt *runtime) loadStore(ctx context.Context) (*xregistry.Store, error) {
	dir := rt.settings.Registry.Dir
	store, origin, err := xrefresh.Bootstrap(ctx, dir, rt.refreshOptions()...)
	if errors.Is(err, xregistry.ErrNoData) {
		rt.logger.Info(ctx, "registry data missing, downloading", xlog.Path(dir))
		if _, ferr := rt.fetcher(true).Fetch(ctx, dir); ferr != nil {
			rt.logger.Warn(ctx, "registry download incomplete", xlog.Err(ferr))
		}
		store, origin, err = xrefresh.Bootstrap(ctx, dir, rt.refreshOptions()...)
	}
	if err != nil {
		if errors.Is(err, xregistry.ErrNoData) && rt.settings.Lookup.Enabled {
			rt.logger.Warn(ctx, "no local registry data, using online lookup only", xlog.Path(dir))
			return xregistry.Build(ctx, nil), nil
		}
		return nil, fmt.Errorf("load registry: %w", err)
	}
	rt.logger.Debug(ctx, "registry ready",
		xlog.Source(origin.String()), xlog.Count(store.Len()))
	return store, nil
}

// engine 组装解析引擎，启用在线查询时接入 xlookup 客户端与未命中缓存。
func (rt *runtime) engine(ctx context.Context) (*xresolve.Engine, error) {
	store, err := rt.loadStore(ctx)
	if err != nil {
		return nil, err
	}

	opts := []xresolve.Option{
		xresolve.WithLogger(rt.logger),
		xresolve.WithObserver(rt.observer),
	}
	lk := rt.settings.Lookup
	if lk.Enabled {
		opts = append(opts,
			xresolve.WithFallback(rt.lookupClient()),
			xresolve.WithLearn(lk.Learn),
			xresolve.WithFallbackTimeout(lk.Timeout),
			xresolve.WithEmptyStore(),
		)
		if lk.NegativeSize > 0 {
			cache, err := xlru.New[string, struct{}](xlru.Config{Size: lk.NegativeSize, TTL: lk.NegativeTTL})
			if err != nil {
				return nil, err
			}
			opts = append(opts, xresolve.WithNegativeCache(cache))
		}
	}

	engine, err := xresolve.New(store, opts...)
	if err != nil {
		return nil, err
	}
	rt.onClose(func() error {
		engine.Close()
		return nil
	})
	return engine, nil
}

// lookupClient 创建在线查询客户端。配置了 Redis 时多个进程共享配额。
func (rt *runtime) lookupClient() *xlookup.Client {
	lk := rt.settings.Lookup
	var limiter xlookup.Limiter
	if lk.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: lk.RedisAddr})
		rt.onClose(rdb.Close)
		limiter = xlookup.NewRedisLimiter(rdb, redisLimiterKey, lk.EffectiveRate())
	} else {
		limiter = xlookup.NewLocalLimiter(lk.EffectiveRate())
	}
	return xlookup.New(
		xlookup.WithBaseURL(lk.BaseURL),
		xlookup.WithAPIKey(lk.APIKey),
		xlookup.WithUserAgent("xoui/"+Version),
		xlookup.WithTimeout(lk.Timeout),
		xlookup.WithLimiter(limiter),
		xlookup.WithLogger(rt.logger),
	)
}

package xrefresh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/observability/xmetrics"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
)

const componentName = "xrefresh"

// parser 接受标准五段式表达式与 "@daily"、"@every 6h" 等描述符。
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Stats 是一次刷新的结果。
type Stats struct {
	// Downloaded 实际下载的文件数。
	Downloaded int
	// Records 新注册表的记录数。
	Records int
	// Migrated 从旧注册表迁移的学习记录数。
	Migrated int
	// Skipped 为 true 表示注册表文件未变化，没有重建。
	Skipped  bool
	Duration time.Duration
}

// Refresher 刷新 Target 的注册表。Refresh 与 Reload 互斥执行。
type Refresher struct {
	target   Target
	dir      string
	opts     *options
	schedule cron.Schedule

	mu sync.Mutex
	// built 是上次构建时注册表文件的最新修改时间
	built time.Time
}

// New 创建 Refresher。
func New(target Target, dir string, opts ...Option) (*Refresher, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	r := &Refresher{target: target, dir: dir, opts: applyOptions(opts)}
	if r.opts.schedule != "" {
		s, err := parser.Parse(r.opts.schedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, r.opts.schedule, err)
		}
		r.schedule = s
	}
	r.built, _ = newestRegistryFile(dir)
	return r, nil
}

// Refresh 下载（若配置了下载器）并重建注册表。
//
// 下载失败只记录日志，随后仍用目录中已有的文件重建；重建失败时保留旧注册表并返回错误。
func (r *Refresher) Refresh(ctx context.Context) (Stats, error) {
	return r.run(ctx, "refresh", true)
}

// Reload 在注册表文件比上次构建更新时重建，不下载。
func (r *Refresher) Reload(ctx context.Context) (Stats, error) {
	return r.run(ctx, "reload", false)
}

func (r *Refresher) run(ctx context.Context, op string, fetch bool) (stats Stats, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := xmetrics.Start(ctx, r.opts.observer, xmetrics.SpanOptions{Component: componentName, Operation: op})
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		span.End(xmetrics.Result{
			Err:   err,
			Attrs: []xmetrics.Attr{xmetrics.Int("records", stats.Records), xmetrics.Bool("skipped", stats.Skipped)},
		})
	}()

	if fetch && r.opts.fetcher != nil {
		report, ferr := r.opts.fetcher.Fetch(ctx, r.dir)
		stats.Downloaded = report.Downloaded()
		if ferr != nil {
			r.opts.logger.Warn(ctx, "registry download incomplete", xlog.Path(r.dir), xlog.Err(ferr))
		}
	}

	newest, _ := newestRegistryFile(r.dir)
	if !fetch && !newest.After(r.built) {
		stats.Skipped = true
		return stats, nil
	}

	store, err := xregistry.LoadDir(ctx, r.dir, xregistry.WithLogger(r.opts.logger))
	if err != nil {
		r.opts.logger.Error(ctx, "registry rebuild failed, keeping current registry", xlog.Path(r.dir), xlog.Err(err))
		return stats, err
	}
	if r.opts.keepLearned {
		stats.Migrated = migrateLearned(r.target.Store(), store)
	}
	old, err := r.target.Swap(store)
	if err != nil {
		return stats, err
	}
	if r.opts.keepLearned {
		// 复制与替换之间写入旧表的记录
		stats.Migrated += migrateLearned(old, store)
	}
	r.built = newest
	stats.Records = store.Len()
	r.opts.logger.Info(ctx, "registry swapped",
		xlog.Count(stats.Records), xlog.Source(op), xlog.Duration(time.Since(start)))

	saveSnapshot(ctx, r.opts, store)
	return stats, nil
}

// migrateLearned 把 from 的学习层记录写入 to，返回新写入的条数。
func migrateLearned(from, to *xregistry.Store) int {
	var n int
	for rec := range from.LearnedRecords() {
		if to.Learn(rec) {
			n++
		}
	}
	return n
}

// Run 按计划刷新并监视目录，阻塞到 ctx 结束。ctx 结束时返回 nil。
// 没有配置计划与监视时立即返回 nil。
func (r *Refresher) Run(ctx context.Context) error {
	if r.schedule == nil && !r.opts.watch {
		return nil
	}

	if r.schedule != nil {
		c := cron.New(cron.WithParser(parser))
		c.Schedule(r.schedule, cron.FuncJob(func() {
			if _, err := r.Refresh(ctx); err != nil {
				r.opts.logger.Warn(ctx, "scheduled refresh failed", xlog.Err(err))
			}
		}))
		c.Start()
		defer func() { <-c.Stop().Done() }()
	}

	if !r.opts.watch {
		<-ctx.Done()
		return nil
	}
	return r.watch(ctx)
}

// watch 监视注册表目录（而非单个文件），下载器与编辑器都以 rename 的方式替换文件。
func (r *Refresher) watch(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("xrefresh: create %s: %w", r.dir, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("xrefresh: create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(r.dir); err != nil {
		return fmt.Errorf("xrefresh: watch %s: %w", r.dir, err)
	}

	names := registryFiles()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, watched := names[filepath.Base(event.Name)]; !watched {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(r.opts.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.opts.logger.Warn(ctx, "registry watch error", xlog.Err(err))

		case <-timer.C:
			if _, err := r.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.opts.logger.Warn(ctx, "registry reload failed", xlog.Err(err))
			}
		}
	}
}

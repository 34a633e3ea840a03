package xrefresh

import (
	"context"
	"time"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/observability/xmetrics"
	"github.com/omeyang/xoui/pkg/oui/xfetch"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
)

// Target 是被刷新的对象，通常是 *xresolve.Engine。
type Target interface {
	Store() *xregistry.Store
	Swap(store *xregistry.Store) (*xregistry.Store, error)
}

// Fetcher 把注册表文件下载到目录，通常是 *xfetch.Fetcher。
type Fetcher interface {
	Fetch(ctx context.Context, dir string) (xfetch.Report, error)
}

type options struct {
	fetcher      Fetcher
	snapshotPath string
	compress     bool
	schedule     string
	watch        bool
	debounce     time.Duration
	keepLearned  bool
	logger       xlog.Logger
	observer     xmetrics.Observer
}

// Option 配置 Refresher 与 Bootstrap。
type Option func(*options)

func defaultOptions() *options {
	return &options{
		debounce:    500 * time.Millisecond,
		keepLearned: true,
		logger:      xlog.Discard(),
		observer:    xmetrics.NoopObserver{},
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFetcher 设置下载器。未设置时刷新只重新读取目录。
func WithFetcher(f Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithSnapshot 设置快照路径，空路径表示不使用快照。
func WithSnapshot(path string, compress bool) Option {
	return func(o *options) {
		o.snapshotPath = path
		o.compress = compress
	}
}

// WithSchedule 设置 cron 表达式（五段式或 "@daily" 等描述符），空值表示不定时刷新。
func WithSchedule(spec string) Option {
	return func(o *options) {
		o.schedule = spec
	}
}

// WithWatch 监视注册表目录，文件变化在 debounce 内合并后触发一次重建。
// debounce 非正时保留默认值。
func WithWatch(debounce time.Duration) Option {
	return func(o *options) {
		o.watch = true
		if debounce > 0 {
			o.debounce = debounce
		}
	}
}

// WithKeepLearned 设置重建时是否迁移学习层记录，默认迁移。
func WithKeepLearned(keep bool) Option {
	return func(o *options) {
		o.keepLearned = keep
	}
}

// WithLogger 设置日志记录器，nil 忽略。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，nil 忽略。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

package xfetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	retry "github.com/avast/retry-go/v5"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
)

// IEEE 注册表下载地址。
const (
	MALURL = "https://standards-oui.ieee.org/oui/oui.csv"
	MAMURL = "https://standards-oui.ieee.org/oui28/mam.csv"
	MASURL = "https://standards-oui.ieee.org/oui36/oui36.csv"
)

// csvHeader 是注册表 CSV 首行的前缀。
var csvHeader = []byte("Registry,Assignment")

// Source 是一个注册表的下载源。
type Source struct {
	Assignment xregistry.Assignment
	URL        string
}

// File 返回该源在目录中的文件名。
func (s Source) File() string {
	return xregistry.CSVFile(s.Assignment)
}

// DefaultSources 返回 IEEE 官方的三个下载源。
func DefaultSources() []Source {
	return []Source{
		{Assignment: xregistry.MAL, URL: MALURL},
		{Assignment: xregistry.MAM, URL: MAMURL},
		{Assignment: xregistry.MAS, URL: MASURL},
	}
}

// Sources 按给定地址构造下载源，空地址使用官方地址。
func Sources(mal, mam, mas string) []Source {
	out := DefaultSources()
	for i, u := range []string{mal, mam, mas} {
		if u != "" {
			out[i].URL = u
		}
	}
	return out
}

// FileResult 是单个文件的处理结果。
type FileResult struct {
	Source  Source
	Path    string
	Skipped bool
	Bytes   int64
	Err     error
}

// Report 是一次 Fetch 的结果，顺序与下载源一致。
type Report struct {
	Files []FileResult
}

// Downloaded 返回实际下载（未跳过且成功）的文件数。
func (r Report) Downloaded() int {
	n := 0
	for _, f := range r.Files {
		if !f.Skipped && f.Err == nil {
			n++
		}
	}
	return n
}

type options struct {
	httpClient *http.Client
	userAgent  string
	attempts   uint
	retryDelay time.Duration
	maxAge     time.Duration
	force      bool
	logger     xlog.Logger
}

// Option 配置 Fetcher。
type Option func(*options)

// WithHTTPClient 设置 HTTP 客户端，nil 忽略。
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout 设置单个文件的下载超时，非正值忽略。
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent 设置 User-Agent，空值忽略。IEEE 会拒绝部分默认 UA。
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithAttempts 设置单个文件最多尝试次数，0 忽略。
func WithAttempts(n uint) Option {
	return func(o *options) {
		if n > 0 {
			o.attempts = n
		}
	}
}

// WithRetryDelay 设置重试间隔，负值忽略。
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.retryDelay = d
		}
	}
}

// WithMaxAge 设置文件有效期：修改时间在有效期内的文件不再下载。0 表示总是下载。
func WithMaxAge(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.maxAge = d
		}
	}
}

// WithForce 忽略有效期，总是下载。
func WithForce(force bool) Option {
	return func(o *options) {
		o.force = force
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

// Fetcher 下载注册表文件。
type Fetcher struct {
	sources []Source
	opts    options
	now     func() time.Time
}

// New 创建 Fetcher。
func New(sources []Source, opts ...Option) *Fetcher {
	o := options{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  "xoui",
		attempts:   3,
		retryDelay: time.Second,
		logger:     xlog.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fetcher{sources: sources, opts: o, now: time.Now}
}

// Fetch 把所有源下载到 dir，目录不存在时创建。
//
// 各文件相互独立：部分失败时仍返回完整的 Report，错误为所有失败的合并，
// 匹配 [ErrDownload] 或 [ErrInvalidContent]。
func (f *Fetcher) Fetch(ctx context.Context, dir string) (Report, error) {
	if len(f.sources) == 0 {
		return Report{}, ErrNoSources
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Report{}, fmt.Errorf("xfetch: create %s: %w", dir, err)
	}

	report := Report{Files: make([]FileResult, len(f.sources))}
	var g errgroup.Group
	for i, src := range f.sources {
		g.Go(func() error {
			report.Files[i] = f.fetchOne(ctx, dir, src)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range report.Files {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return report, errors.Join(errs...)
}

func (f *Fetcher) fetchOne(ctx context.Context, dir string, src Source) FileResult {
	res := FileResult{Source: src, Path: filepath.Join(dir, src.File())}
	if f.fresh(res.Path) {
		res.Skipped = true
		f.opts.logger.Debug(ctx, "registry file is fresh, skipped", xlog.Path(res.Path))
		return res
	}

	start := f.now()
	n, err := retry.NewWithData[int64](
		retry.Context(ctx),
		retry.Attempts(f.opts.attempts),
		retry.Delay(f.opts.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.opts.logger.Warn(ctx, "registry download retry",
				xlog.URL(src.URL), xlog.Count(int(n)+1), xlog.Err(err))
		}),
	).Do(func() (int64, error) {
		return f.download(ctx, src.URL, res.Path)
	})
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", src.URL, err)
		f.opts.logger.Error(ctx, "registry download failed", xlog.URL(src.URL), xlog.Err(err))
		return res
	}
	res.Bytes = n
	f.opts.logger.Info(ctx, "registry downloaded",
		xlog.Assignment(src.Assignment.String()), xlog.Path(res.Path),
		xlog.Bytes(n), xlog.Duration(f.now().Sub(start)))
	return res
}

// fresh 判断目标文件是否在有效期内。
func (f *Fetcher) fresh(path string) bool {
	if f.opts.force || f.opts.maxAge <= 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return f.now().Sub(info.ModTime()) < f.opts.maxAge
}

// download 执行一次下载。4xx 与内容校验失败不可重试。
func (f *Fetcher) download(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, retry.Unrecoverable(fmt.Errorf("%w: %w", ErrDownload, err))
	}
	req.Header.Set("User-Agent", f.opts.userAgent)

	resp, err := f.opts.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s", ErrDownload, resp.Status)
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return 0, retry.Unrecoverable(err)
		}
		return 0, err
	}
	return writeAtomic(dest, resp.Body)
}

// writeAtomic 校验表头后把 r 写入 dest 同目录的临时文件，再 rename 到 dest。
func writeAtomic(dest string, r io.Reader) (n int64, err error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(csvHeader) + 3)
	head = bytes.TrimPrefix(head, []byte("\xEF\xBB\xBF"))
	if !bytes.HasPrefix(head, csvHeader) {
		return 0, retry.Unrecoverable(fmt.Errorf("%w: unexpected header %q", ErrInvalidContent, head))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return 0, retry.Unrecoverable(fmt.Errorf("xfetch: create temp: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if n, err = io.Copy(tmp, br); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if err = tmp.Sync(); err != nil {
		return 0, fmt.Errorf("xfetch: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("xfetch: close: %w", err)
	}
	if err = os.Chmod(tmp.Name(), fs.FileMode(0o644)); err != nil {
		return 0, fmt.Errorf("xfetch: chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("xfetch: rename: %w", err)
	}
	return n, nil
}

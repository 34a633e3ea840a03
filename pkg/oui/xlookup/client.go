package xlookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
	"github.com/omeyang/xoui/pkg/util/xmac"
)

// DefaultBaseURL 是 maclookup.app v2 接口地址。
const DefaultBaseURL = "https://api.maclookup.app/v2/macs"

const (
	defaultTimeout          = 5 * time.Second
	defaultAttempts         = 3
	defaultRetryDelay       = 200 * time.Millisecond
	defaultBreakerThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second
	maxBodySize             = 64 << 10
)

// Response 是接口响应。
type Response struct {
	Success    bool   `json:"success"`
	Found      bool   `json:"found"`
	MACPrefix  string `json:"macPrefix"`
	Company    string `json:"company"`
	Address    string `json:"address,omitempty"`
	BlockStart string `json:"blockStart,omitempty"`
	BlockEnd   string `json:"blockEnd,omitempty"`
	BlockSize  int64  `json:"blockSize,omitempty"`
	BlockType  string `json:"blockType,omitempty"`
	Updated    string `json:"updated,omitempty"`
	IsRand     bool   `json:"isRand,omitempty"`
	IsPrivate  bool   `json:"isPrivate,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"errorCode,omitempty"`
}

// Record 把命中的响应转换为注册表记录。
func (r Response) Record() xregistry.Record {
	rec := xregistry.Record{
		Prefix:       strings.ToUpper(r.MACPrefix),
		Organization: strings.TrimSpace(r.Company),
		RawAddress:   strings.TrimSpace(r.Address),
	}
	if a, err := xregistry.ParseAssignment(r.BlockType); err == nil {
		rec.Assignment = a
	}
	return rec
}

type config struct {
	baseURL          string
	apiKey           string
	userAgent        string
	httpClient       *http.Client
	limiter          Limiter
	attempts         uint
	retryDelay       time.Duration
	breakerThreshold uint32
	breakerTimeout   time.Duration
	logger           xlog.Logger
}

// Option 配置 Client。
type Option func(*config)

// WithBaseURL 设置接口地址，空值忽略。
func WithBaseURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIKey 设置 API 密钥。
func WithAPIKey(key string) Option {
	return func(c *config) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithUserAgent 设置 User-Agent，空值忽略。
func WithUserAgent(ua string) Option {
	return func(c *config) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient 设置 HTTP 客户端，nil 忽略。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout 设置单次请求超时，非正值忽略。只在未指定 HTTP 客户端时生效。
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLimiter 设置限流器，nil 忽略。默认按是否有 API 密钥使用 [DefaultRate]。
func WithLimiter(l Limiter) Option {
	return func(c *config) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithAttempts 设置最多尝试次数（含首次），0 忽略。
func WithAttempts(n uint) Option {
	return func(c *config) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithRetryDelay 设置重试基础间隔，负值忽略。
func WithRetryDelay(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// WithBreaker 设置熔断阈值（连续失败次数）与打开时长，零值保留默认。
func WithBreaker(threshold uint32, openFor time.Duration) Option {
	return func(c *config) {
		if threshold > 0 {
			c.breakerThreshold = threshold
		}
		if openFor > 0 {
			c.breakerTimeout = openFor
		}
	}
}

// WithLogger 设置日志记录器，nil 忽略。
func WithLogger(l xlog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client 是厂商查询客户端，并发安全。
type Client struct {
	cfg     config
	breaker *gobreaker.CircuitBreaker[Response]
}

// New 创建客户端。
func New(opts ...Option) *Client {
	cfg := config{
		baseURL:          DefaultBaseURL,
		userAgent:        "xoui",
		httpClient:       &http.Client{Timeout: defaultTimeout},
		attempts:         defaultAttempts,
		retryDelay:       defaultRetryDelay,
		breakerThreshold: defaultBreakerThreshold,
		breakerTimeout:   defaultBreakerTimeout,
		logger:           xlog.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.limiter == nil {
		cfg.limiter = NewLocalLimiter(DefaultRate(cfg.apiKey != ""))
	}

	threshold := cfg.breakerThreshold
	logger := cfg.logger
	cb := gobreaker.NewCircuitBreaker[Response](gobreaker.Settings{
		Name:        "maclookup",
		MaxRequests: 1,
		Timeout:     cfg.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 被拒绝的请求说明服务可达，不计入熔断
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "vendor lookup breaker state changed",
				xlog.Component(name), xlog.Source(from.String()), xlog.Class(to.String()))
		},
	})
	return &Client{cfg: cfg, breaker: cb}
}

// Lookup 查询一个地址或 OUI。不足 12 位的输入在右侧补零。
//
// 未找到不是错误：返回 Found=false 的响应。熔断打开、网络或服务端错误
// 匹配 [ErrUnavailable]；429 匹配 [ErrRateLimited]；其它 4xx 匹配 [ErrRejected]。
func (c *Client) Lookup(ctx context.Context, addr string) (Response, error) {
	digits, err := xmac.Normalize(addr)
	if err != nil || len(digits) < 6 || len(digits) > xmac.Digits48 {
		return Response{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	digits = xmac.FillHex(digits, xmac.Digits48, true)

	// 熔断打开时不消耗配额
	if c.breaker.State() == gobreaker.StateOpen {
		return Response{}, fmt.Errorf("%w: %w", ErrUnavailable, gobreaker.ErrOpenState)
	}
	if err := c.cfg.limiter.Wait(ctx); err != nil {
		return Response{}, err
	}

	resp, err := c.breaker.Execute(func() (Response, error) {
		return retry.NewWithData[Response](
			retry.Context(ctx),
			retry.Attempts(c.cfg.attempts),
			retry.DelayType(c.backoff),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				c.cfg.logger.Debug(ctx, "vendor lookup retry", xlog.Count(int(n)), xlog.Err(err))
			}),
		).Do(func() (Response, error) {
			return c.get(ctx, digits)
		})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Response{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, err
}

// LookupVendor 以注册表记录的形式返回查询结果，供解析引擎兜底使用。
func (c *Client) LookupVendor(ctx context.Context, digits string) (xregistry.Record, bool, error) {
	resp, err := c.Lookup(ctx, digits)
	if err != nil {
		return xregistry.Record{}, false, err
	}
	if !resp.Found {
		return xregistry.Record{}, false, nil
	}
	return resp.Record(), true, nil
}

// backoff 返回第 n 次重试前的等待：基础间隔按 2 的幂增长，叠加至多一个基础间隔的随机抖动。
func (c *Client) backoff(n uint, _ error, _ retry.DelayContext) time.Duration {
	base := c.cfg.retryDelay
	if base <= 0 {
		return 0
	}
	shift := min(max(n, 1)-1, 6)
	return base<<shift + rand.N(base)
}

func (c *Client) endpoint(digits string) string {
	u := c.cfg.baseURL + "/" + url.PathEscape(digits)
	if c.cfg.apiKey != "" {
		u += "?" + url.Values{"apiKey": {c.cfg.apiKey}}.Encode()
	}
	return u
}

// get 执行一次请求。不可重试的错误用 retry.Unrecoverable 标记。
func (c *Client) get(ctx context.Context, digits string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(digits), nil)
	if err != nil {
		return Response{}, retry.Unrecoverable(fmt.Errorf("%w: %w", ErrRejected, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.userAgent)

	httpResp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, retry.Unrecoverable(fmt.Errorf("%w: %w", ErrUnavailable, err))
		}
		return Response{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return Response{}, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return Response{}, fmt.Errorf("%w: %s", ErrRateLimited, httpResp.Status)
	case httpResp.StatusCode >= http.StatusInternalServerError:
		return Response{}, fmt.Errorf("%w: %s", ErrUnavailable, httpResp.Status)
	case httpResp.StatusCode >= http.StatusBadRequest:
		return Response{}, retry.Unrecoverable(fmt.Errorf("%w: %s: %s", ErrRejected, httpResp.Status, errorMessage(body)))
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, retry.Unrecoverable(fmt.Errorf("%w: %w", ErrInvalidResponse, err))
	}
	if !resp.Success {
		return Response{}, retry.Unrecoverable(fmt.Errorf("%w: %s", ErrRejected, resp.Error))
	}
	return resp, nil
}

func errorMessage(body []byte) string {
	var resp Response
	if json.Unmarshal(body, &resp) == nil && resp.Error != "" {
		return resp.Error
	}
	return strings.TrimSpace(string(body))
}

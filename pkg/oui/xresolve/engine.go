package xresolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/observability/xmetrics"
	"github.com/omeyang/xoui/pkg/oui/xclassify"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
	"github.com/omeyang/xoui/pkg/util/xlru"
	"github.com/omeyang/xoui/pkg/util/xmac"
)

const (
	minDigits = 6
	maxDigits = xmac.Digits64

	defaultFallbackTimeout  = 5 * time.Second
	defaultBatchConcurrency = 8

	componentName = "xresolve"
)

// VendorLookup 是外部厂商查询。digits 是补齐到 12 位的地址。
// 未找到返回 found=false 且 err=nil；err 只表示查询本身失败。
type VendorLookup interface {
	LookupVendor(ctx context.Context, digits string) (rec xregistry.Record, found bool, err error)
}

type options struct {
	rules            xclassify.Rules
	fallback         VendorLookup
	learn            bool
	fallbackTimeout  time.Duration
	negative         *xlru.Cache[string, struct{}]
	logger           xlog.Logger
	observer         xmetrics.Observer
	batchConcurrency int
	allowEmpty       bool
}

// Option 配置 Engine。
type Option func(*options)

// WithRules 替换分类规则，nil 表示不做任何分类。
func WithRules(rules xclassify.Rules) Option {
	return func(o *options) {
		o.rules = rules
	}
}

// WithFallback 设置外部厂商查询，nil 忽略。
func WithFallback(l VendorLookup) Option {
	return func(o *options) {
		if l != nil {
			o.fallback = l
		}
	}
}

// WithLearn 设置外部查询成功后是否写回注册表学习层。
func WithLearn(learn bool) Option {
	return func(o *options) {
		o.learn = learn
	}
}

// WithFallbackTimeout 设置单次外部查询超时，非正值忽略。
func WithFallbackTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fallbackTimeout = d
		}
	}
}

// WithNegativeCache 缓存外部查询的未命中结果，避免重复请求。
// 缓存由 Engine 持有，Close 时释放。
func WithNegativeCache(c *xlru.Cache[string, struct{}]) Option {
	return func(o *options) {
		o.negative = c
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

// WithBatchConcurrency 设置批量解析的并发度，非正值忽略。
func WithBatchConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchConcurrency = n
		}
	}
}

// WithEmptyStore 允许以空注册表创建 Engine，例如只依赖外部查询的场景。
func WithEmptyStore() Option {
	return func(o *options) {
		o.allowEmpty = true
	}
}

// Engine 是解析引擎。
type Engine struct {
	opts   options
	holder *xregistry.Holder
	group  singleflight.Group
}

// New 创建 Engine。store 为空时返回 [ErrEmptyStore]，除非指定了 [WithEmptyStore]。
func New(store *xregistry.Store, opts ...Option) (*Engine, error) {
	o := options{
		rules:            xclassify.DefaultRules(),
		fallbackTimeout:  defaultFallbackTimeout,
		logger:           xlog.Discard(),
		observer:         xmetrics.NoopObserver{},
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if store.Len() == 0 && !o.allowEmpty {
		return nil, ErrEmptyStore
	}
	o.logger = o.logger.With(xlog.Component(componentName))
	return &Engine{opts: o, holder: xregistry.NewHolder(store)}, nil
}

// Store 返回当前注册表。
func (e *Engine) Store() *xregistry.Store {
	return e.holder.Load()
}

// Swap 原子替换注册表，返回旧值。空注册表被拒绝，当前注册表保持不变。
// 替换后清空未命中缓存。
func (e *Engine) Swap(store *xregistry.Store) (*xregistry.Store, error) {
	if store.Len() == 0 && !e.opts.allowEmpty {
		return nil, ErrEmptyStore
	}
	old := e.holder.Swap(store)
	if e.opts.negative != nil {
		e.opts.negative.Purge()
	}
	return old, nil
}

// Close 释放 Engine 持有的资源。
func (e *Engine) Close() {
	if e.opts.negative != nil {
		e.opts.negative.Close()
	}
}

// Resolve 解析单个输入。
//
// 非法输入返回 [*InvalidOUIError]；其它情况总是返回结果，未注册时 Class 为
// [ClassUnregistered]。
func (e *Engine) Resolve(ctx context.Context, in Input) (res Result, err error) {
	ctx, span := xmetrics.Start(ctx, e.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "resolve",
	})
	defer func() {
		span.End(xmetrics.Result{
			Err:   err,
			Attrs: []xmetrics.Attr{xmetrics.String("class", res.Class.String()), xmetrics.String("source", res.Source.String())},
		})
	}()

	raw := in.String()
	digits, err := in.digits()
	if err != nil {
		if errors.Is(err, xmac.ErrEmpty) {
			return Result{}, tooShort(raw)
		}
		return Result{}, notHex(raw)
	}
	switch {
	case len(digits) < minDigits:
		return Result{}, tooShort(raw)
	case len(digits) > maxDigits:
		return Result{}, tooLong(raw)
	}

	if res, ok := e.classify(raw, digits); ok {
		return res, nil
	}
	if rec, ok := e.holder.Load().Lookup(digits); ok {
		return fromRecord(raw, digits, rec, SourceRegistry), nil
	}
	if res, ok := e.lookupFallback(ctx, raw, digits); ok {
		return res, nil
	}
	return Result{
		Input:  raw,
		Digits: digits,
		Prefix: digits[:minDigits],
		Class:  ClassUnregistered,
		Source: SourceNone,
	}, nil
}

// classify 用补齐后的地址求值分类规则。
func (e *Engine) classify(raw, digits string) (Result, bool) {
	padded := digits
	switch {
	case len(digits) < xmac.Digits48:
		padded = xmac.FillHex(digits, xmac.Digits48, true)
	case len(digits) > xmac.Digits48 && len(digits) < xmac.Digits64:
		padded = xmac.FillHex(digits, xmac.Digits64, true)
	}
	m, ok := e.opts.rules.Classify(padded)
	if !ok {
		return Result{}, false
	}
	prefix := m.Prefix
	if m.Kind != xclassify.KindExactOUI {
		// 补齐只用于分类，结果保留原始位数
		prefix = digits
	}
	return Result{
		Input:        raw,
		Digits:       digits,
		Prefix:       prefix,
		Organization: m.Label,
		Class:        classOf(m.Class),
		Source:       SourceRules,
	}, true
}

type fallbackAnswer struct {
	rec   xregistry.Record
	found bool
}

// lookupFallback 查询外部厂商接口。失败与超时都按未命中处理。
func (e *Engine) lookupFallback(ctx context.Context, raw, digits string) (Result, bool) {
	if e.opts.fallback == nil {
		return Result{}, false
	}
	query := xmac.FillHex(digits, xmac.Digits48, true)[:xmac.Digits48]
	if e.opts.negative != nil && e.opts.negative.Contains(query) {
		return Result{}, false
	}

	// 共享查询与发起者的取消解耦，只受 fallbackTimeout 约束；
	// 每个调用方按自己的 ctx 放弃等待。
	shared := context.WithoutCancel(ctx)
	ch := e.group.DoChan(query, func() (any, error) {
		qctx, cancel := context.WithTimeout(shared, e.opts.fallbackTimeout)
		defer cancel()
		rec, found, err := e.opts.fallback.LookupVendor(qctx, query)
		if err != nil {
			return nil, err
		}
		return fallbackAnswer{rec: rec, found: found}, nil
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		e.opts.logger.Warn(ctx, "vendor fallback abandoned", xlog.Input(raw), xlog.Err(ctx.Err()))
		return Result{}, false
	}
	if res.Err != nil {
		e.opts.logger.Warn(ctx, "vendor fallback failed", xlog.Input(raw), xlog.Err(res.Err))
		return Result{}, false
	}
	ans, ok := res.Val.(fallbackAnswer)
	if !ok || !ans.found || ans.rec.Organization == "" {
		if e.opts.negative != nil {
			e.opts.negative.Set(query, struct{}{})
		}
		return Result{}, false
	}

	rec := ans.rec
	if e.opts.learn && e.holder.Load().Learn(rec) {
		e.opts.logger.Info(ctx, "learned registry record",
			xlog.Prefix(rec.Prefix), xlog.Organization(rec.Organization))
	}
	if p, err := xmac.Normalize(rec.Prefix); err == nil && len(p) >= minDigits {
		rec.Prefix = p
	} else {
		rec.Prefix = digits[:minDigits]
	}
	if !rec.Assignment.Valid() {
		rec.Assignment = assignmentFor(len(rec.Prefix))
	}
	return fromRecord(raw, digits, rec, SourceFallback), true
}

func assignmentFor(n int) xregistry.Assignment {
	switch n {
	case xregistry.MAS.PrefixLen():
		return xregistry.MAS
	case xregistry.MAM.PrefixLen():
		return xregistry.MAM
	case xregistry.MAL.PrefixLen():
		return xregistry.MAL
	default:
		return 0
	}
}

// ResolveBatch 解析多个输入，结果与输入一一对应、顺序一致。
func (e *Engine) ResolveBatch(ctx context.Context, inputs []Input) []Outcome {
	out := make([]Outcome, len(inputs))
	var g errgroup.Group
	g.SetLimit(e.opts.batchConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := e.Resolve(ctx, in)
			out[i] = Outcome{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ResolveAny 转换任意输入后批量解析。类型不受支持时在任何查询之前返回
// [ErrUnsupportedInput]。
func (e *Engine) ResolveAny(ctx context.Context, v any) ([]Outcome, error) {
	inputs, err := InputsFrom(v)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return e.ResolveBatch(ctx, inputs), nil
}

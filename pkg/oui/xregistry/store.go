package xregistry

import (
	"cmp"
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/util/xmac"
)

type options struct {
	logger xlog.Logger
}

// Option 配置 Build 与 LoadDir。
type Option func(*options)

// WithLogger 设置日志记录器，nil 忽略。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{logger: xlog.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type table map[string]Record

// Store 是构建完成的注册表。零值不可用，使用 [Build] 创建。
type Store struct {
	// base 构建后只读
	base [MAS + 1]table

	// learned 是学习层，写时复制，读者无锁
	learned atomic.Pointer[table]
	mu      sync.Mutex
}

// Build 按分配类型分组构建 Store。
//
// 同一分配类型内前缀重复时后写入者生效，并记录 Warn 日志。
// 前缀非法或分配类型未知的记录被跳过并记录 Warn 日志。
func Build(ctx context.Context, records []Record, opts ...Option) *Store {
	o := applyOptions(opts)
	s := newStore()
	skipped := 0
	for _, rec := range records {
		rec, ok := normalizeRecord(rec)
		if !ok {
			skipped++
			o.logger.Warn(ctx, "registry record skipped",
				xlog.Prefix(rec.Prefix), xlog.Assignment(rec.Assignment.String()))
			continue
		}
		t := s.base[rec.Assignment]
		if prev, dup := t[rec.Prefix]; dup {
			o.logger.Warn(ctx, "duplicate registry prefix, last write wins",
				xlog.Prefix(rec.Prefix),
				xlog.Assignment(rec.Assignment.String()),
				xlog.Organization(rec.Organization),
				slog.String("previous", prev.Organization))
		}
		t[rec.Prefix] = rec.clone()
	}
	if skipped > 0 {
		o.logger.Warn(ctx, "registry records skipped", xlog.Count(skipped))
	}
	o.logger.Debug(ctx, "registry built", xlog.Count(s.Len()))
	return s
}

func newStore() *Store {
	s := &Store{}
	for _, a := range Assignments() {
		s.base[a] = make(table)
	}
	empty := make(table)
	s.learned.Store(&empty)
	return s
}

// normalizeRecord 规范化前缀并校验位数，Assignment 为零值时按位数推断。
func normalizeRecord(rec Record) (Record, bool) {
	digits, err := xmac.Normalize(rec.Prefix)
	if err != nil {
		return rec, false
	}
	rec.Prefix = digits
	rec.Organization = strings.TrimSpace(rec.Organization)
	if rec.Assignment == 0 {
		rec.Assignment = assignmentFor(len(digits))
	}
	if !rec.Assignment.Valid() || len(digits) != rec.Assignment.PrefixLen() {
		return rec, false
	}
	return rec, true
}

// Lookup 按 MA-S(9) → MA-M(7) → MA-L(6) 的顺序查询 digits 的前缀，
// 每一级先查构建表再查学习层。digits 必须是规范化后的大写数字串。
//
// 返回值是副本，之后对 Store 的任何修改都不会影响它。
func (s *Store) Lookup(digits string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	learned := *s.learned.Load()
	for _, a := range lookupOrder {
		n := a.PrefixLen()
		if len(digits) < n {
			continue
		}
		key := digits[:n]
		if rec, ok := s.base[a][key]; ok {
			return rec.clone(), true
		}
		if rec, ok := learned[key]; ok {
			return rec.clone(), true
		}
	}
	return Record{}, false
}

// Learn 把一条外部查询得到的记录写入学习层。
//
// 前缀位数为 7 或 9 时按 MA-M/MA-S 分类，其余截断为 6 位写入 MA-L。
// 前缀已存在（构建表或学习层）时不写入并返回 false，重复写入无副作用。
// 写入串行化，并发读者看到的是完整的旧表或新表。
func (s *Store) Learn(rec Record) bool {
	if s == nil {
		return false
	}
	digits, err := xmac.Normalize(rec.Prefix)
	if err != nil || len(digits) < 6 {
		return false
	}
	if assignmentFor(len(digits)) == 0 {
		digits = digits[:6]
	}
	rec.Prefix = digits
	rec.Assignment = assignmentFor(len(digits))
	rec.Organization = strings.TrimSpace(rec.Organization)
	if rec.Organization == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.base[rec.Assignment][digits]; ok {
		return false
	}
	cur := *s.learned.Load()
	if _, ok := cur[digits]; ok {
		return false
	}
	next := make(table, len(cur)+1)
	maps.Copy(next, cur)
	next[digits] = rec.clone()
	s.learned.Store(&next)
	return true
}

// Len 返回记录总数（含学习层）。
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	n := len(*s.learned.Load())
	for _, a := range Assignments() {
		n += len(s.base[a])
	}
	return n
}

// Count 返回某一分配类型的记录数（含学习层）。
func (s *Store) Count(a Assignment) int {
	if s == nil || !a.Valid() {
		return 0
	}
	n := len(s.base[a])
	for _, rec := range *s.learned.Load() {
		if rec.Assignment == a {
			n++
		}
	}
	return n
}

// Learned 返回学习层记录数。
func (s *Store) Learned() int {
	if s == nil {
		return 0
	}
	return len(*s.learned.Load())
}

// Records 按分配类型、前缀排序遍历全部记录（含学习层），用于快照。
func (s *Store) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if s == nil {
			return
		}
		all := make([]Record, 0, s.Len())
		for _, a := range Assignments() {
			for _, rec := range s.base[a] {
				all = append(all, rec)
			}
		}
		for _, rec := range *s.learned.Load() {
			all = append(all, rec)
		}
		slices.SortFunc(all, func(x, y Record) int {
			return cmp.Or(cmp.Compare(x.Assignment, y.Assignment), strings.Compare(x.Prefix, y.Prefix))
		})
		for _, rec := range all {
			if !yield(rec.clone()) {
				return
			}
		}
	}
}

// LearnedRecords 遍历学习层记录，顺序不确定。重建注册表时用于迁移学习结果。
func (s *Store) LearnedRecords() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if s == nil {
			return
		}
		for _, rec := range *s.learned.Load() {
			if !yield(rec.clone()) {
				return
			}
		}
	}
}

package xregistry

import "sync/atomic"

// Holder 持有当前生效的 Store，刷新时整体替换。
//
// 替换是单次指针交换，读者要么看到旧 Store，要么看到新 Store。
type Holder struct {
	p atomic.Pointer[Store]
}

// NewHolder 创建 Holder。s 为 nil 时持有空 Store。
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.Swap(s)
	return h
}

// Load 返回当前 Store，永不为 nil。
func (h *Holder) Load() *Store {
	if s := h.p.Load(); s != nil {
		return s
	}
	// 零值 Holder 惰性初始化
	h.p.CompareAndSwap(nil, newStore())
	return h.p.Load()
}

// Swap 替换当前 Store 并返回旧值。s 为 nil 时替换为空 Store。
func (h *Holder) Swap(s *Store) *Store {
	if s == nil {
		s = newStore()
	}
	return h.p.Swap(s)
}

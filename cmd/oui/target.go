package main

import "github.com/omeyang/xoui/pkg/oui/xregistry"

// storeTarget 是只持有注册表的刷新目标，用于 update 这类不需要解析引擎的命令。
type storeTarget struct {
	holder xregistry.Holder
}

func (t *storeTarget) Store() *xregistry.Store { return t.holder.Load() }

func (t *storeTarget) Swap(s *xregistry.Store) (*xregistry.Store, error) {
	return t.holder.Swap(s), nil
}

package xrefresh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/omeyang/xoui/pkg/observability/xlog"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
	"github.com/omeyang/xoui/pkg/oui/xsnapshot"
)

// Origin 说明 Bootstrap 得到的注册表来自哪里。
type Origin int

// Bootstrap 的载入来源。
const (
	// OriginSnapshot 快照不旧于注册表文件，直接载入。
	OriginSnapshot Origin = iota + 1
	// OriginRegistry 从注册表文件重建。
	OriginRegistry
	// OriginStaleSnapshot 注册表文件不可用，退回到过期快照。
	OriginStaleSnapshot
)

func (o Origin) String() string {
	switch o {
	case OriginSnapshot:
		return "snapshot"
	case OriginRegistry:
		return "registry"
	case OriginStaleSnapshot:
		return "stale-snapshot"
	default:
		return "unknown"
	}
}

// Bootstrap 载入启动时的注册表。
//
// 快照存在、完整且不早于目录中最新的注册表文件时使用快照；否则从目录重建，
// 成功后重写快照。目录中没有数据但快照可用时退回到快照。
// 两者都不可用时返回 [xregistry.ErrNoData]，调用方应视为启动失败。
func Bootstrap(ctx context.Context, dir string, opts ...Option) (*xregistry.Store, Origin, error) {
	o := applyOptions(opts)
	regOpts := []xregistry.Option{xregistry.WithLogger(o.logger)}

	var (
		snapStore *xregistry.Store
		snapMeta  xsnapshot.Meta
	)
	if o.snapshotPath != "" {
		store, meta, err := xsnapshot.Load(ctx, o.snapshotPath, regOpts...)
		switch {
		case err == nil:
			snapStore, snapMeta = store, meta
		case errors.Is(err, os.ErrNotExist):
		default:
			// 版本不符或损坏：丢弃，从注册表文件重建
			o.logger.Warn(ctx, "snapshot unusable, rebuilding", xlog.Path(o.snapshotPath), xlog.Err(err))
		}
	}

	newest, hasFiles := newestRegistryFile(dir)
	if snapStore != nil && snapStore.Len() > 0 && (!hasFiles || !snapMeta.CreatedAt.Before(newest)) {
		o.logger.Debug(ctx, "registry loaded from snapshot",
			xlog.Path(o.snapshotPath), xlog.Count(snapStore.Len()))
		if !hasFiles {
			return snapStore, OriginStaleSnapshot, nil
		}
		return snapStore, OriginSnapshot, nil
	}

	store, err := xregistry.LoadDir(ctx, dir, regOpts...)
	if err != nil {
		if snapStore != nil && snapStore.Len() > 0 {
			o.logger.Warn(ctx, "registry rebuild failed, using stale snapshot", xlog.Path(dir), xlog.Err(err))
			return snapStore, OriginStaleSnapshot, nil
		}
		return nil, 0, err
	}
	saveSnapshot(ctx, o, store)
	return store, OriginRegistry, nil
}

// newestRegistryFile 返回目录中注册表文件（CSV 或文本）的最新修改时间。
func newestRegistryFile(dir string) (time.Time, bool) {
	var (
		newest time.Time
		found  bool
	)
	for name := range registryFiles() {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			continue
		}
		found = true
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, found
}

// registryFiles 返回目录中可能出现的注册表文件名集合。
func registryFiles() map[string]struct{} {
	names := make(map[string]struct{}, 6)
	for _, a := range xregistry.Assignments() {
		names[xregistry.CSVFile(a)] = struct{}{}
		names[xregistry.TextFile(a)] = struct{}{}
	}
	return names
}

func saveSnapshot(ctx context.Context, o *options, store *xregistry.Store) {
	if o.snapshotPath == "" {
		return
	}
	meta, err := xsnapshot.Save(o.snapshotPath, store, o.compress)
	if err != nil {
		o.logger.Warn(ctx, "snapshot save failed", xlog.Path(o.snapshotPath), xlog.Err(err))
		return
	}
	o.logger.Debug(ctx, "snapshot saved", xlog.Path(o.snapshotPath), xlog.Count(meta.Records))
}

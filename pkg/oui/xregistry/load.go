package xregistry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xoui/pkg/observability/xlog"
)

// CSVFile 返回分配类型对应的 IEEE CSV 文件名。
func CSVFile(a Assignment) string {
	switch a {
	case MAL:
		return "oui.csv"
	case MAM:
		return "mam.csv"
	case MAS:
		return "oui36.csv"
	default:
		return ""
	}
}

// TextFile 返回分配类型对应的 IEEE 文本文件名。
func TextFile(a Assignment) string {
	switch a {
	case MAL:
		return "oui.txt"
	case MAM:
		return "mam.txt"
	case MAS:
		return "oui36.txt"
	default:
		return ""
	}
}

// LoadDir 并行读取 dir 中的三份注册表并构建 Store。
//
// 每种分配类型优先读取 CSV，不存在时读取同名文本格式；两者都不存在时记录 Warn 并跳过。
// 任一文件解析失败返回错误；三份文件合计没有记录时返回 [ErrNoData]。
func LoadDir(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	o := applyOptions(opts)
	start := time.Now()

	assignments := Assignments()
	parts := make([][]Record, len(assignments))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range assignments {
		g.Go(func() error {
			records, err := loadAssignment(gctx, dir, a, o.logger)
			if err != nil {
				return err
			}
			parts[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Record
	for _, p := range parts {
		all = append(all, p...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, dir)
	}
	store := Build(ctx, all, opts...)
	o.logger.Info(ctx, "registry loaded",
		xlog.Path(dir), xlog.Count(store.Len()), xlog.Duration(time.Since(start)))
	return store, nil
}

func loadAssignment(ctx context.Context, dir string, a Assignment, logger xlog.Logger) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	csvPath := filepath.Join(dir, CSVFile(a))
	records, err := parseFile(csvPath, func(f *os.File) ([]Record, error) { return ParseCSV(f) })
	if !errors.Is(err, fs.ErrNotExist) {
		return records, err
	}
	txtPath := filepath.Join(dir, TextFile(a))
	records, err = parseFile(txtPath, func(f *os.File) ([]Record, error) { return ParseText(f, a) })
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn(ctx, "registry file missing", xlog.Assignment(a.String()), xlog.Path(csvPath))
		return nil, nil
	}
	return records, err
}

func parseFile(path string, parse func(*os.File) ([]Record, error)) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

package xfetch

import "errors"

var (
	// ErrDownload 表示文件下载失败（重试耗尽）。
	ErrDownload = errors.New("xfetch: download failed")

	// ErrInvalidContent 表示下载内容不是注册表 CSV，例如服务端返回的错误页面。
	ErrInvalidContent = errors.New("xfetch: invalid registry content")

	// ErrNoSources 表示没有配置任何下载源。
	ErrNoSources = errors.New("xfetch: no sources")
)

// Package xconf 加载 xoui 的配置文件。
//
// 基于 koanf：YAML/JSON 由扩展名识别，文件中未出现的键保留 [Default] 的值，
// 最后应用环境变量覆盖并校验。
//
//	settings, err := xconf.Load("/etc/xoui/config.yaml")
//	if err != nil {
//		return err
//	}
package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const (
	delim = "."
	tag   = "koanf"
)

// Load 从文件加载配置。path 为空时只使用默认值与环境变量。
func Load(path string) (Settings, error) {
	if path == "" {
		return finish(Default())
	}
	format, err := detectFormat(path)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载配置，需要显式指定格式。空数据等价于只用默认值。
func LoadBytes(data []byte, format Format) (Settings, error) {
	parser, err := parserFor(format)
	if err != nil {
		return Settings{}, err
	}

	settings := Default()
	if len(data) > 0 {
		k := koanf.New(delim)
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return Settings{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
		if err := k.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{Tag: tag}); err != nil {
			return Settings{}, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
		}
	}
	return finish(settings)
}

// finish 应用环境变量覆盖并校验。
func finish(s Settings) (Settings, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		s.Lookup.APIKey = key
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatYAML:
		return yaml.Parser(), nil
	case FormatJSON:
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

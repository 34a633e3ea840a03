package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/omeyang/xoui/pkg/observability/xlog"
)

// EnvAPIKey 是外部厂商查询 API 密钥的环境变量，优先级高于配置文件。
const EnvAPIKey = "MACLOOKUP_API_KEY"

// IEEE 注册表默认下载地址。
const (
	DefaultMALURL = "https://standards-oui.ieee.org/oui/oui.csv"
	DefaultMAMURL = "https://standards-oui.ieee.org/oui28/mam.csv"
	DefaultMASURL = "https://standards-oui.ieee.org/oui36/oui36.csv"

	DefaultLookupURL = "https://api.maclookup.app/v2/macs"
)

// Settings 是 xoui 的完整配置。
type Settings struct {
	Registry RegistrySettings `koanf:"registry"`
	Snapshot SnapshotSettings `koanf:"snapshot"`
	Lookup   LookupSettings   `koanf:"lookup"`
	Log      LogSettings      `koanf:"log"`
	Refresh  RefreshSettings  `koanf:"refresh"`
}

// RegistrySettings 注册表文件的存放与下载。
type RegistrySettings struct {
	// Dir 存放 oui.csv / mam.csv / oui36.csv 的目录。
	Dir    string `koanf:"dir"`
	MALURL string `koanf:"ma_l_url"`
	MAMURL string `koanf:"ma_m_url"`
	MASURL string `koanf:"ma_s_url"`
	// MaxAge 本地文件超过该时长才重新下载，0 表示每次都下载。
	MaxAge time.Duration `koanf:"max_age"`
	// Timeout 单个文件下载超时。
	Timeout time.Duration `koanf:"timeout"`
	// Attempts 单个文件最多尝试次数。
	Attempts uint `koanf:"attempts"`
}

// SnapshotSettings 持久化快照。
type SnapshotSettings struct {
	Enabled bool `koanf:"enabled"`
	// Path 为空时使用 registry.dir 下的 registry.snapshot。
	Path string `koanf:"path"`
	// Compress 是否使用 zstd 压缩快照。
	Compress bool `koanf:"compress"`
}

// LookupSettings 外部厂商查询（降级兜底）。
type LookupSettings struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	// Timeout 单次查询超时。
	Timeout time.Duration `koanf:"timeout"`
	// Learn 查询成功后是否写回内存中的 MA-L 表。
	Learn bool `koanf:"learn"`
	// RatePerSecond 0 表示按是否有 API 密钥自动选择（2 或 10）。
	RatePerSecond float64 `koanf:"rate_per_second"`
	// RedisAddr 非空时通过 Redis 在多进程间共享配额。
	RedisAddr string `koanf:"redis_addr"`
	// NegativeTTL 查询未命中结果的缓存时长。
	NegativeTTL time.Duration `koanf:"negative_ttl"`
	// NegativeSize 未命中缓存容量。
	NegativeSize int `koanf:"negative_size"`
}

// LogSettings 日志输出。
type LogSettings struct {
	Level    string        `koanf:"level"`
	Format   string        `koanf:"format"`
	File     string        `koanf:"file"`
	Rotation xlog.Rotation `koanf:"rotation"`
}

// RefreshSettings 后台刷新。
type RefreshSettings struct {
	// Schedule cron 表达式，支持 "@daily" 等描述符。
	Schedule string `koanf:"schedule"`
	// Watch 是否监视注册表目录并在文件变化时重建。
	Watch    bool          `koanf:"watch"`
	Debounce time.Duration `koanf:"debounce"`
}

// Default 返回默认配置。数据目录默认位于用户缓存目录下。
func Default() Settings {
	dir := defaultDataDir()
	return Settings{
		Registry: RegistrySettings{
			Dir:      dir,
			MALURL:   DefaultMALURL,
			MAMURL:   DefaultMAMURL,
			MASURL:   DefaultMASURL,
			MaxAge:   7 * 24 * time.Hour,
			Timeout:  60 * time.Second,
			Attempts: 3,
		},
		Snapshot: SnapshotSettings{
			Enabled:  true,
			Compress: true,
		},
		Lookup: LookupSettings{
			BaseURL:      DefaultLookupURL,
			Timeout:      5 * time.Second,
			NegativeTTL:  time.Hour,
			NegativeSize: 4096,
		},
		Log: LogSettings{
			Level:  "warn",
			Format: "text",
		},
		Refresh: RefreshSettings{
			Schedule: "@daily",
			Watch:    true,
			Debounce: 500 * time.Millisecond,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "xoui")
	}
	return ".xoui"
}

// Validate 检查配置的一致性。
func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Registry.Dir) == "" {
		problems = append(problems, "registry.dir is empty")
	}
	if s.Registry.Timeout <= 0 {
		problems = append(problems, "registry.timeout must be positive")
	}
	if s.Registry.Attempts == 0 {
		problems = append(problems, "registry.attempts must be at least 1")
	}
	if s.Lookup.Enabled {
		if s.Lookup.BaseURL == "" {
			problems = append(problems, "lookup.base_url is empty")
		}
		if s.Lookup.Timeout <= 0 {
			problems = append(problems, "lookup.timeout must be positive")
		}
	}
	if _, err := xlog.ParseLevel(s.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if s.Lookup.RatePerSecond < 0 {
		problems = append(problems, "lookup.rate_per_second must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

// SnapshotPath 返回快照文件路径。
func (s Settings) SnapshotPath() string {
	if p := strings.TrimSpace(s.Snapshot.Path); p != "" {
		return p
	}
	return filepath.Join(s.Registry.Dir, "registry.snapshot")
}

// EffectiveRate 返回外部查询每秒请求上限：显式配置优先，
// 否则有 API 密钥为 10，匿名为 2。
func (l LookupSettings) EffectiveRate() float64 {
	if l.RatePerSecond > 0 {
		return l.RatePerSecond
	}
	if l.APIKey != "" {
		return 10
	}
	return 2
}

package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
registry:
  dir: /var/lib/xoui
  max_age: 24h
  attempts: 5
lookup:
  enabled: true
  learn: true
  timeout: 2s
  redis_addr: localhost:6379
log:
  level: debug
  format: json
  rotation:
    max_size_mb: 10
refresh:
  schedule: "0 3 * * *"
`

func TestLoadBytes_YAML(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	s, err := LoadBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/xoui", s.Registry.Dir)
	assert.Equal(t, 24*time.Hour, s.Registry.MaxAge)
	assert.Equal(t, uint(5), s.Registry.Attempts)
	// 未出现的键保留默认值
	assert.Equal(t, DefaultMALURL, s.Registry.MALURL)
	assert.Equal(t, 60*time.Second, s.Registry.Timeout)
	assert.True(t, s.Snapshot.Enabled)
	assert.Equal(t, "/var/lib/xoui/registry.snapshot", s.SnapshotPath())

	assert.True(t, s.Lookup.Enabled)
	assert.True(t, s.Lookup.Learn)
	assert.Equal(t, 2*time.Second, s.Lookup.Timeout)
	assert.Equal(t, "localhost:6379", s.Lookup.RedisAddr)
	assert.Equal(t, DefaultLookupURL, s.Lookup.BaseURL)

	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, 10, s.Log.Rotation.MaxSizeMB)
	assert.Equal(t, "0 3 * * *", s.Refresh.Schedule)
	assert.True(t, s.Refresh.Watch)
}

func TestLoadBytes_JSON(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	s, err := LoadBytes([]byte(`{"snapshot":{"path":"/tmp/x.snap","compress":false}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.snap", s.SnapshotPath())
	assert.False(t, s.Snapshot.Compress)
}

func TestLoadBytes_Empty(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	s, err := LoadBytes(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "secret")
	path := filepath.Join(t.TempDir(), "xoui.yml")
	require.NoError(t, os.WriteFile(path, []byte("lookup:\n  api_key: from-file\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", s.Lookup.APIKey)
	assert.Equal(t, float64(10), s.Lookup.EffectiveRate())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	badYAML := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("registry: [unclosed"), 0o600))
	badValue := filepath.Join(dir, "value.json")
	require.NoError(t, os.WriteFile(badValue, []byte(`{"registry":{"timeout":"soon"}}`), 0o600))
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("log:\n  level: loud\n"), 0o600))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"unknown_extension", filepath.Join(dir, "x.toml"), ErrUnsupportedFormat},
		{"missing_file", filepath.Join(dir, "missing.yaml"), ErrLoadFailed},
		{"parse_error", badYAML, ErrParseFailed},
		{"unmarshal_error", badValue, ErrUnmarshalFailed},
		{"invalid_value", invalid, ErrInvalidSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := LoadBytes([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty_dir", func(s *Settings) { s.Registry.Dir = " " }},
		{"zero_timeout", func(s *Settings) { s.Registry.Timeout = 0 }},
		{"zero_attempts", func(s *Settings) { s.Registry.Attempts = 0 }},
		{"lookup_without_url", func(s *Settings) { s.Lookup.Enabled = true; s.Lookup.BaseURL = "" }},
		{"lookup_zero_timeout", func(s *Settings) { s.Lookup.Enabled = true; s.Lookup.Timeout = 0 }},
		{"negative_rate", func(s *Settings) { s.Lookup.RatePerSecond = -1 }},
		{"bad_level", func(s *Settings) { s.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLookupSettings_EffectiveRate(t *testing.T) {
	assert.Equal(t, float64(2), LookupSettings{}.EffectiveRate())
	assert.Equal(t, float64(10), LookupSettings{APIKey: "k"}.EffectiveRate())
	assert.Equal(t, 3.5, LookupSettings{APIKey: "k", RatePerSecond: 3.5}.EffectiveRate())
}

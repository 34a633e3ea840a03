package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xoui/pkg/util/xmac"
)

const (
	testHeader = "Registry,Assignment,Organization Name,Organization Address\n"
	testMAL    = testHeader + "MA-L,246D5E,\"TEST Systems, Inc\",1 Main St US\nMA-L,79B74D,Broad Block Ltd,US\n"
	testMAM    = testHeader + "MA-M,79B74DA,TEST Labs,Austin US\n"
)

type cliEnv struct {
	dir    string
	config string
}

// newEnv 准备注册表目录与配置文件。extra 追加到配置 YAML 末尾。
func newEnv(t *testing.T, withData bool, extra string) cliEnv {
	t.Helper()
	t.Setenv("MACLOOKUP_API_KEY", "")
	t.Setenv("XOUI_CONFIG", "")
	root := t.TempDir()
	dir := filepath.Join(root, "registry")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if withData {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "oui.csv"), []byte(testMAL), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "mam.csv"), []byte(testMAM), 0o644))
	}
	config := filepath.Join(root, "xoui.yaml")
	body := fmt.Sprintf("registry:\n  dir: %s\n  attempts: 1\n", dir) + extra
	require.NoError(t, os.WriteFile(config, []byte(body), 0o600))
	return cliEnv{dir: dir, config: config}
}

func (e cliEnv) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	argv := append([]string{"oui", "--config", e.config}, args...)
	code := run(argv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// ieeeServer 模拟 IEEE 下载站点。
func ieeeServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch r.URL.Path {
		case "/oui.csv":
			_, _ = w.Write([]byte(testMAL))
		case "/mam.csv":
			_, _ = w.Write([]byte(testMAM))
		default:
			_, _ = w.Write([]byte(testHeader))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func registryURLs(srv *httptest.Server) string {
	return fmt.Sprintf("  ma_l_url: %s/oui.csv\n  ma_m_url: %s/mam.csv\n  ma_s_url: %s/oui36.csv\n", srv.URL, srv.URL, srv.URL)
}

func TestLookup_Text(t *testing.T) {
	env := newEnv(t, true, "")
	code, out, _ := env.run("24:6d:5e:bb:99:cc", "79B74DA12345", "A8BBCC", "ff-ff-ff-ff-ff-ff")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, strings.Join([]string{
		"24-6D-5E: TEST Systems, Inc",
		"79-B7-4D-A: TEST Labs",
		"A8-BB-CC: No entries with IEEE",
		"FF-FF-FF-FF-FF-FF: Broadcast",
	}, "\n")+"\n", out)

	// 首次运行写入快照，第二次运行直接使用
	_, err := os.Stat(filepath.Join(env.dir, "registry.snapshot"))
	require.NoError(t, err)
	code, out, _ = env.run("246D5E")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "24-6D-5E: TEST Systems, Inc\n", out)
}

func TestLookup_InvalidInput(t *testing.T) {
	env := newEnv(t, true, "")
	code, out, _ := env.run("246D5E", "not-a-mac", "24")
	assert.Equal(t, exitUsage, code)
	assert.Equal(t, "24-6D-5E: TEST Systems, Inc\nnot-a-mac is not a valid MAC or OUI\n24 is not a valid MAC or OUI\n", out)
}

func TestLookup_JSON(t *testing.T) {
	env := newEnv(t, true, "")
	code, out, _ := env.run("--json", "246D5E", "zz")
	assert.Equal(t, exitUsage, code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "TEST Systems, Inc", got[0]["organization"])
	assert.Equal(t, "registered", got[0]["class"])
	assert.Equal(t, "MA-L", got[0]["assignment"])
	assert.Equal(t, "zz", got[1]["input"])
	assert.Contains(t, got[1]["error"], "not a valid hex string")
}

func TestLookup_Online(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	requested := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return slices.Clone(paths)
	}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"found":true,"macPrefix":"3C22FB","company":"Online Co","blockType":"MA-L"}`))
	}))
	t.Cleanup(api.Close)

	env := newEnv(t, true, fmt.Sprintf("lookup:\n  base_url: %s/v2/macs\n  learn: true\n", api.URL))
	code, out, _ := env.run("--online", "3C:22:FB:01:02:03", "246D5E")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "3C-22-FB: Online Co\n24-6D-5E: TEST Systems, Inc\n", out)
	assert.Equal(t, []string{"/v2/macs/3C22FB010203"}, requested())

	// 未开启在线查询时不访问接口
	code, out, _ = env.run("3C22FB")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "3C-22-FB: No entries with IEEE\n", out)
	assert.Len(t, requested(), 1)
}

func TestLookup_DownloadsWhenMissing(t *testing.T) {
	srv := ieeeServer(t, http.StatusOK)
	env := newEnv(t, false, registryURLs(srv))
	code, out, stderr := env.run("79B74D000000")
	assert.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "79-B7-4D: Broad Block Ltd\n", out)
	_, err := os.Stat(filepath.Join(env.dir, "oui.csv"))
	assert.NoError(t, err)
}

func TestLookup_NoData(t *testing.T) {
	srv := ieeeServer(t, http.StatusNotFound)
	env := newEnv(t, false, registryURLs(srv))
	code, _, stderr := env.run("246D5E")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "no registry data")
}

func TestUpdate(t *testing.T) {
	srv := ieeeServer(t, http.StatusOK)
	env := newEnv(t, true, registryURLs(srv))

	code, out, _ := env.run("update")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "oui.csv: up to date")
	assert.Contains(t, out, "3 records loaded")

	code, out, _ = env.run("update", "--force")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "oui36.csv: downloaded")
	_, err := os.Stat(filepath.Join(env.dir, "registry.snapshot"))
	assert.NoError(t, err)
}

func TestConvert(t *testing.T) {
	env := newEnv(t, false, "")
	code, out, _ := env.run("convert", "--prefix", "2001:db8::/64", "24:6d:5e:bb:99:cc")
	require.Equal(t, exitOK, code)
	for _, want := range []string{
		"clean:     246D5EBB99CC",
		"colon:     24:6D:5E:BB:99:CC",
		"hyphen:    24-6D-5E-BB-99-CC",
		"period:    246d.5ebb.99cc",
		"decimal:   40052159388108",
		"oui:       24-6D-5E",
		"link-local: fe80::266d:5eff:febb:99cc",
		"global:    2001:db8::266d:5eff:febb:99cc",
	} {
		assert.Contains(t, out, want)
	}

	code, _, _ = env.run("convert", "zz")
	assert.Equal(t, exitUsage, code)
	code, _, _ = env.run("convert")
	assert.Equal(t, exitUsage, code)
}

func TestRandom(t *testing.T) {
	env := newEnv(t, false, "")
	code, out, _ := env.run("random", "--bits", "64", "-n", "3", "--notation", "hyphen")
	require.Equal(t, exitOK, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		addr, err := xmac.Parse(l)
		require.NoError(t, err)
		assert.Equal(t, xmac.Bits64, addr.Bits())
		assert.Equal(t, xmac.NotationHyphen, addr.Notation())
	}

	code, _, _ = env.run("random", "--bits", "32")
	assert.Equal(t, exitUsage, code)
}

func TestUsageErrors(t *testing.T) {
	env := newEnv(t, true, "")
	code, _, _ := env.run("--no-such-flag", "246D5E")
	assert.Equal(t, exitUsage, code)

	code, _, _ = env.run("--log-level", "loud", "246D5E")
	assert.Equal(t, exitUsage, code)
}

func TestIsCLIUsageError(t *testing.T) {
	assert.True(t, isCLIUsageError(fmt.Errorf("flag provided but not defined: -x")))
	assert.False(t, isCLIUsageError(fmt.Errorf("boom")))
}

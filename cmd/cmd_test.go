package cmd

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/publish"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hwai.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Humans Winning AI", cfg.SiteTitle)
	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, ":1313", cfg.Server.Addr)
	assert.Equal(t, 16*time.Millisecond, cfg.Server.FrameInterval)
	assert.Equal(t, time.Second, cfg.Server.PosterInterval)
	assert.Equal(t, 2*time.Second, cfg.Auth.SimulatedDelay)
	assert.Equal(t, "log", cfg.Submissions.Driver)
	assert.Equal(t, "https://discord.gg/z5FUGp6NAY", cfg.Links.Discord)
}

func TestLoadConfigLayers(t *testing.T) {
	file := writeConfig(t, `
siteTitle: HWAI Preview
outputDir: dist
auth:
  simulatedDelay: 500ms
submissions:
  driver: sqlite
  dsn: data/hwai.db
publish:
  bucket: hwai-site
`)
	t.Setenv("HWAI_SERVER_ADDR", ":9000")
	t.Setenv("HWAI_PUBLISH_PREFIX", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.String("prefix", "", "")
	require.NoError(t, flags.Parse([]string{"--output", "site-out"}))

	cfg, err := loadConfig(flags, file)
	require.NoError(t, err)
	assert.Equal(t, "HWAI Preview", cfg.SiteTitle)
	assert.Equal(t, "site-out", cfg.OutputDir, "flag beats file")
	assert.Equal(t, ":9000", cfg.Server.Addr, "env beats default")
	assert.Equal(t, "from-env", cfg.Publish.Prefix, "unset flag does not mask env")
	assert.Equal(t, 500*time.Millisecond, cfg.Auth.SimulatedDelay)
	assert.Equal(t, "sqlite", cfg.Submissions.Driver)
	assert.Equal(t, "hwai-site", cfg.Publish.Bucket)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = loadConfig(nil, writeConfig(t, "submissions:\n  driver: redis\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = loadConfig(nil, writeConfig(t, "submissions:\n  driver: postgres\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = loadConfig(nil, writeConfig(t, "server:\n  posterInterval: 0s\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.LogConfig{Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))

	log, err = newLogger(config.LogConfig{Level: "warn", Development: true}, true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(config.LogConfig{Level: "loud"}, false)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := loadConfig(nil, "")
	require.NoError(t, err)
	cfg.OutputDir = filepath.Join(t.TempDir(), "public")
	return cfg
}

func TestRunBuild(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, runBuild(context.Background(), cfg, zap.NewNop()))
	for _, f := range []string{"index.html", "about/index.html", "404.html", "effects/home-hero.svg", "static/css/site.css"} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, filepath.FromSlash(f)))
		assert.NoError(t, err, f)
	}
}

func TestRunPublishNeedsBucket(t *testing.T) {
	cfg := testConfig(t)
	assert.ErrorIs(t, runPublish(context.Background(), cfg, zap.NewNop()), publish.ErrNoBucket)
}

func TestRunServe(t *testing.T) {
	cfg := testConfig(t)
	cfg.Submissions = config.SubmissionsConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "hwai.db")}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, zap.NewNop(), ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	get := func(path string) (int, string) {
		resp, err := client.Get(base + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get("/effects/auth-spiral.svg")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<svg")

	_, body = get("/metrics")
	assert.Contains(t, body, "hwai_effect_surfaces_attached 9")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

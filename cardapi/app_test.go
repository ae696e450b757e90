package cardapi_test

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/alovak/cardflow-gateway/cardapi"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestAppLifecycle(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	cfg := cardapi.DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"

	app := cardapi.NewApp(logger, cfg)
	require.NoError(t, app.Start())
	defer app.Shutdown()

	resp, err := http.Get("http://" + app.Addr + "/-/live")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Post("http://"+app.Addr+"/cards/classify", "application/json",
		bytes.NewBufferString(`{"number":"4111111111111111","month":"12","year":"30"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAppRejectsBadPolicy(t *testing.T) {
	cfg := cardapi.DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MatchPolicy = "whatever"

	app := cardapi.NewApp(slog.New(slog.NewTextHandler(os.Stderr, nil)), cfg)
	require.Error(t, app.Start())
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := cardapi.LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, cardapi.DefaultConfig(), cfg)
	})

	t.Run("file and env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cardflow.yaml")
		err := os.WriteFile(path, []byte(`
http_addr: 0.0.0.0:8080
match_policy: specific
log_level: debug
spreedly:
  environment_key: env
  access_secret: secret
`), 0o600)
		require.NoError(t, err)

		t.Setenv("CARDFLOW_HTTP_ADDR", "127.0.0.1:7070")

		cfg, err := cardapi.LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:7070", cfg.HTTPAddr)
		require.Equal(t, "specific", cfg.MatchPolicy)
		require.Equal(t, slog.LevelDebug, cfg.Level())
		require.True(t, cfg.Spreedly.Enabled())
	})

	t.Run("broken file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http_addr: [oops"), 0o600))

		_, err := cardapi.LoadConfig(path)
		require.Error(t, err)

		_, err = cardapi.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

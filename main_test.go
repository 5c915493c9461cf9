package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/korjavin/catmoodbot/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BotToken:     "token",
		OwnerChatID:  42,
		DatabasePath: filepath.Join(t.TempDir(), "data", "catmood.db"),
		CatalogPath:  filepath.Join("assets", "markup.json"),
		CardArtDir:   t.TempDir(),
		CardArtExt:   "png",
		OracleURL:    "http://127.0.0.1:0",
		HTTPTimeout:  time.Second,
	}
}

func TestRunClosesDatabaseWhenBotFails(t *testing.T) {
	telegram := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer telegram.Close()

	cfg := testConfig(t)
	cfg.TelegramAPI = telegram.URL + "/bot%s/%s"

	core, logs := observer.New(zapcore.DebugLevel)
	err := run(context.Background(), cfg, zap.New(core))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize bot")
	assert.Equal(t, 1, logs.FilterMessage("database closed").Len())
}

func TestRunReturnsCatalogError(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.json")

	core, logs := observer.New(zapcore.DebugLevel)
	err := run(context.Background(), cfg, zap.New(core))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load card catalog")
	assert.Zero(t, logs.FilterMessage("database closed").Len())
	assert.NoFileExists(t, cfg.DatabasePath)
}

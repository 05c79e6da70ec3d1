package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aceconsult/cmsapi/internal/shell/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tempConfig(t *testing.T) *Config {
	t.Helper()
	cfg := validConfig(t)
	dir := t.TempDir()
	cfg.Database.DSN = filepath.Join(dir, "db", "cms.db")
	cfg.Uploads.Dir = filepath.Join(dir, "uploads")
	cfg.Uploads.StagingDir = filepath.Join(dir, "staging")
	return cfg
}

func TestNewServer_BootstrapsAdmin(t *testing.T) {
	cfg := tempConfig(t)
	cfg.Admin = AdminConfig{BootstrapEmail: "admin@example.com", BootstrapPassword: "s3cret-pass", BootstrapName: "Admin"}

	srv, err := NewServer(cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { srv.store.Close() })

	count, err := srv.store.CountAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A second bootstrap keeps the existing admin.
	require.NoError(t, bootstrapAdmin(context.Background(), srv.store, AdminConfig{
		BootstrapEmail: "other@example.com", BootstrapPassword: "s3cret-pass", BootstrapName: "Other",
	}, testLogger()))
	_, err = srv.store.GetAdminByEmail(context.Background(), "other@example.com")
	assert.True(t, store.IsNotFound(err))

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"s3cret-pass"}`)))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestNewServer_WeakSecretOutsideDev(t *testing.T) {
	cfg := tempConfig(t)
	cfg.Auth.JWTSecret = "short"

	_, err := NewServer(cfg, testLogger())
	require.Error(t, err)

	var sErr *ServerError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, ExitConfigError, sErr.ExitCode)
}

func TestNewServer_DatabaseError(t *testing.T) {
	cfg := tempConfig(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cfg.Database.DSN = filepath.Join(blocker, "cms.db")

	_, err := NewServer(cfg, testLogger())
	require.Error(t, err)

	var sErr *ServerError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, ExitDatabaseError, sErr.ExitCode)
}

func TestServer_StartStopsOnContextCancel(t *testing.T) {
	cfg := tempConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	srv, err := NewServer(cfg, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.Start(ctx))
}

func TestRunSeed(t *testing.T) {
	cfg := tempConfig(t)

	require.NoError(t, RunSeed(context.Background(), cfg, "default", testLogger()))
	require.NoError(t, RunSeed(context.Background(), cfg, "default", testLogger()))

	s, err := store.NewSQLiteStore(cfg.Database.DSN)
	require.NoError(t, err)
	defer s.Close()

	categories, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 14)

	err = RunSeed(context.Background(), cfg, filepath.Join(t.TempDir(), "missing.yaml"), testLogger())
	var sErr *ServerError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, ExitSeedError, sErr.ExitCode)
}

package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lightdance/showcompiler/internal/channel"
	"github.com/lightdance/showcompiler/internal/config"
	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/monitoring"
	"github.com/lightdance/showcompiler/internal/show"
)

var (
	apiTestTemplatePath string
)

func TestMain(m *testing.M) {
	code := runAPITestMain(m)
	os.Exit(code)
}

// runAPITestMain seeds one fixture database and lets every test clone it.
func runAPITestMain(m *testing.M) int {
	monitoring.SetLogger(nil)

	tmpDir, err := os.MkdirTemp("", "showc-api-template-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create API test template directory: %v\n", err)
		return 1
	}
	defer os.RemoveAll(tmpDir)

	apiTestTemplatePath = filepath.Join(tmpDir, "template.db")

	templateDB, err := db.NewDB(apiTestTemplatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize API test template DB: %v\n", err)
		return 1
	}
	if err := templateDB.LoadFixtureFile(filepath.Join("testdata", "show.yaml")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed API test template DB: %v\n", err)
		_ = templateDB.Close()
		return 1
	}
	if _, err := templateDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to checkpoint API test template DB: %v\n", err)
		_ = templateDB.Close()
		return 1
	}
	if err := templateDB.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close API test template DB: %v\n", err)
		return 1
	}

	return m.Run()
}

func cloneAPITestDB(t *testing.T) string {
	t.Helper()

	if apiTestTemplatePath == "" {
		t.Fatal("API test template DB not initialized")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := copyFile(apiTestTemplatePath, dbPath); err != nil {
		t.Fatalf("failed to clone API test DB template: %v", err)
	}
	return dbPath
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// setupTestServer returns a server over a fresh copy of the fixture show.
// A nil cfg selects the defaults.
func setupTestServer(t *testing.T, cfg *config.ServerConfig) *Server {
	t.Helper()

	store, err := db.NewDB(cloneAPITestDB(t))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	c := show.NewCompiler(store, channel.Default(), show.Options{
		AlphaMax: cfg.GetAlphaMax(),
		Workers:  cfg.GetPartWorkers(),
	})
	return NewServer(c, store, cfg)
}

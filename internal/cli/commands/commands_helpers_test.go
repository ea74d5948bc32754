package commands

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"ProductManager/internal/config"
	"ProductManager/internal/handlers"
	"ProductManager/internal/repo"
	"ProductManager/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// withTempConfig points every client file at a temp dir so that artifacts
// (session, cache, prefs) never touch the real user config.
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ServerURL:    serverURL,
		ClientDBPath: filepath.Join(dir, "users"),
		SessionFile:  filepath.Join(dir, "session"),
		PrefsFile:    filepath.Join(dir, "prefs.toml"),
	}
}

// newServer runs the full server over a private in-memory SQLite.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logger := zap.NewNop().Sugar()
	h := handlers.NewHandler(
		service.NewUserService(repo.NewUserRepository(db)),
		service.NewDocumentService(repo.NewDocumentRepository(db), service.NewHub(), logger),
		logger,
		&config.Config{AuthSecret: "test-secret"},
	)
	ts := httptest.NewServer(h.Router)
	t.Cleanup(ts.Close)
	return ts
}

// syncBuffer is a bytes.Buffer safe for a command writing in the background.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureOut redirects Out for the rest of the test.
func captureOut(t *testing.T) *syncBuffer {
	t.Helper()
	old := Out
	buf := &syncBuffer{}
	Out = buf
	t.Cleanup(func() { Out = old })
	return buf
}

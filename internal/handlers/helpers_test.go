package handlers_test

import (
	"ProductManager/internal/config"
	"ProductManager/internal/handlers"
	"ProductManager/internal/middleware"
	"ProductManager/internal/repo"
	"ProductManager/internal/service"
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const testSecret = "test-secret"

// newTestRouter builds the full router over a private in-memory SQLite.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logger := zap.NewNop().Sugar()
	cfg := &config.Config{AuthSecret: testSecret}
	userSvc := service.NewUserService(repo.NewUserRepository(db))
	docSvc := service.NewDocumentService(repo.NewDocumentRepository(db), service.NewHub(), logger)
	return handlers.NewHandler(userSvc, docSvc, logger, cfg).Router
}

func addAuthCookie(t *testing.T, req *http.Request, userID string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, testSecret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		addAuthCookie(t, req, userID)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type sseEvent struct {
	Name string
	Data string
}

// readEvent reads one server-sent event.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if ev.Name != "" || ev.Data != "" {
				return ev
			}
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			ev.Data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func decodeDocs(t *testing.T, data string) []map[string]any {
	t.Helper()
	var resp struct {
		Documents []map[string]any `json:"documents"`
	}
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		t.Fatalf("decode documents: %v (%s)", err, data)
	}
	return resp.Documents
}

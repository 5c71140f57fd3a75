package activity

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectdir/internal/platform/logger"
	"projectdir/pkg/requestcontext"
)

func openTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Requests.txt")
	log, err := Open(path, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log, path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestMiddlewareRecordsOneLinePerRequest(t *testing.T) {
	log, path := openTestLog(t)

	now := time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC)
	handler := log.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodGet, "/requestproject?country=USA", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req = req.WithContext(requestcontext.WithTime(req.Context(), now))

	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t,
		`[2024-Mar-15 12:30] 10.1.2.3 GET http /requestproject?country=USA 400 "Chrome/120.0.0.0"`,
		lines[0])
}

func TestMiddlewareDefaultsStatusTo200(t *testing.T) {
	log, path := openTestLog(t)

	handler := log.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Heya!")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " 200 ")
}

func TestMiddlewareUnknownBrowserAndForwardedScheme(t *testing.T) {
	log, path := openTestLog(t)

	handler := log.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/createproject", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " POST https /createproject ")
	assert.Contains(t, lines[0], `"unknown"`)
}

func TestMiddlewareAppendsAcrossRequests(t *testing.T) {
	log, path := openTestLog(t)

	handler := log.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	assert.Len(t, readLines(t, path), 3)
}

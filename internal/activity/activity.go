// Package activity keeps the durable per-call record: one line per inbound
// request with timestamp, caller address, call kind, transport scheme,
// path with arguments, and resulting status. It is a transport collaborator
// and has no bearing on the core's correctness; a write failure is logged
// and never fails the request.
package activity

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/mssola/useragent"

	"projectdir/internal/platform/middleware"
	"projectdir/pkg/requestcontext"
)

const timestampLayout = "2006-Jan-02 15:04"

// Log appends call records to a local file. Writes are serialized.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
}

// Open opens (or creates) the activity file in append mode.
func Open(path string, logger *slog.Logger) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open activity file: %w", err)
	}
	return &Log{file: f, logger: logger}, nil
}

// Middleware records one line per handled request, after the response is
// written.
func (l *Log) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &middleware.StatusWriter{ResponseWriter: w, Code: http.StatusOK}
		next.ServeHTTP(sw, r)

		line := fmt.Sprintf("[%s] %s %s %s %s %d %q\n",
			requestcontext.Now(r.Context()).Format(timestampLayout),
			callerAddr(r),
			r.Method,
			scheme(r),
			r.URL.RequestURI(),
			sw.Code,
			browser(requestcontext.UserAgent(r.Context())),
		)
		l.append(r, line)
	})
}

func (l *Log) append(r *http.Request, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.WriteString(line); err != nil {
		l.logger.ErrorContext(r.Context(), "failed to append activity record",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
	}
}

// Close releases the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

func callerAddr(r *http.Request) string {
	if ip := requestcontext.ClientIP(r.Context()); ip != "" {
		return ip
	}
	return middleware.ClientIPFromRequest(r)
}

func scheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// browser reduces the raw User-Agent header to a short family name so the
// record stays one readable line.
func browser(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		return "unknown"
	}
	if version == "" {
		return name
	}
	return name + "/" + version
}

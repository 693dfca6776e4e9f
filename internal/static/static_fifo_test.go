//go:build linux || darwin

package static

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// A named pipe never delivers EOF to a reader without a writer, so serving
// one would hang the request.
func TestNonRegularFilesAreForbiddenWithoutReading(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"feed.txt", "feed.js"} {
		if err := syscall.Mkfifo(filepath.Join(dir, name), 0o644); err != nil {
			t.Skipf("mkfifo: %v", err)
		}
	}
	fifo, err := NewHandler(dir, nil, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	t.Cleanup(func() { fifo.Close() })

	for _, name := range []string{"/feed.txt", "/feed.js"} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			done := make(chan struct{})
			go func() {
				defer close(done)
				fifo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, name, nil))
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("request blocked on a named pipe")
			}
			if rec.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
			}
		})
	}
}

package static

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"syscall"
)

// HostToken is replaced in HTML with the host the client used.
const HostToken = "//LOCALHOST"

var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "application/javascript",
	".css":  "text/css",
	".png":  "image/png",
	".jpg":  "image/jpeg",
}

// PortPair maps a plain port to its TLS counterpart.
type PortPair struct {
	Plain int
	TLS   int
}

// Handler serves the web client from a directory.
type Handler struct {
	root    *os.Root
	tlsRepl *strings.Replacer
	log     *slog.Logger
}

// NewHandler serves files under dir. Pages fetched over TLS have their
// http/ws URLs and the listed ports rewritten to the TLS equivalents.
func NewHandler(dir string, pairs []PortPair, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	oldnew := []string{"http://", "https://", "ws://", "wss://"}
	for _, p := range pairs {
		oldnew = append(oldnew, ":"+strconv.Itoa(p.Plain), ":"+strconv.Itoa(p.TLS))
	}
	return &Handler{root: root, tlsRepl: strings.NewReplacer(oldnew...), log: logger}, nil
}

// Close releases the root directory.
func (h *Handler) Close() error {
	return h.root.Close()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	for _, seg := range strings.Split(r.URL.Path, "/") {
		if seg == ".." {
			h.log.Warn("static: path traversal rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	info, err := h.root.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) || errors.Is(err, syscall.ENOTDIR) {
			http.NotFound(w, r)
			return
		}
		h.log.Warn("static: stat failed", "path", name, "error", err)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}
	ctype, ok := contentTypes[path.Ext(name)]
	if !ok || !info.Mode().IsRegular() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	data, err := h.root.ReadFile(name)
	if err != nil {
		h.log.Warn("static: read failed", "path", name, "error", err)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if ctype == "text/html" {
		data = h.rewrite(data, r)
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(data)
	}
}

func (h *Handler) rewrite(page []byte, r *http.Request) []byte {
	page = bytes.ReplaceAll(page, []byte(HostToken), []byte("//"+requestHost(r)))
	if r.TLS != nil {
		page = []byte(h.tlsRepl.Replace(string(page)))
	}
	return page
}

// requestHost returns the Host header without its port. IPv6 literals
// keep their brackets so the result can be followed by ":port".
func requestHost(r *http.Request) string {
	host := r.Host
	if host == "" {
		host = r.RemoteAddr
	}
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if strings.Contains(h, ":") {
		return "[" + h + "]"
	}
	return h
}

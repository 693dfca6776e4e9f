package audio

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/junsooki/airbridge/internal/transport"
)

// Handler serves the audio WebSocket endpoint.
type Handler struct {
	queue *Queue
	log   *slog.Logger
}

func NewHandler(queue *Queue, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{queue: queue, log: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !transport.IsWebSocket(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}
	ws, err := transport.Upgrade(w, r, transport.KindAudio, h.log)
	if err != nil {
		h.log.Warn("audio: upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		if err := ws.DrainReads(); err != nil && !transport.IsNormalClose(err) {
			h.log.Debug("audio: read side closed", append(ws.LogAttrs(), "error", err)...)
		}
	}()

	h.log.Info("audio: client connected", ws.LogAttrs()...)
	f := NewFanout(h.queue, ws, ws.Conn, h.log)
	if err := f.Run(ctx); err != nil {
		h.log.Warn("audio: client send failed", append(ws.LogAttrs(), "error", err)...)
	}
	h.log.Info("audio: client disconnected", append(ws.LogAttrs(), "chunks", f.Sent())...)
}

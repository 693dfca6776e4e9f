package control

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/junsooki/airbridge/internal/transport"
)

// Handler serves the control WebSocket endpoint.
type Handler struct {
	dispatch Dispatcher
	log      *slog.Logger
}

func NewHandler(d Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatch: d, log: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !transport.IsWebSocket(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}
	ws, err := transport.Upgrade(w, r, transport.KindControl, h.log)
	if err != nil {
		h.log.Warn("control: upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer ws.Close()
	stop := context.AfterFunc(r.Context(), func() { ws.Close() })
	defer stop()

	h.log.Info("control: client connected", ws.LogAttrs()...)
	ch := NewChannel(ws, ws.Conn, h.dispatch, h.log)
	if err := ch.Run(r.Context()); err != nil {
		h.log.Warn("control: connection error", append(ws.LogAttrs(), "error", err)...)
	}
	h.log.Info("control: client disconnected", append(ws.LogAttrs(), "commands", ch.Handled(), "faults", ch.Faults())...)
}

package mjpeg

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/junsooki/airbridge/internal/capture"
	"github.com/junsooki/airbridge/internal/encoder"
	"github.com/junsooki/airbridge/internal/pacing"
	"github.com/junsooki/airbridge/internal/transport"
)

// Handler serves the MJPEG stream. Every request gets its own Fanout.
type Handler struct {
	slot     *capture.Slot
	enc      encoder.Encoder
	interval time.Duration
	log      *slog.Logger
}

// NewHandler creates a stream handler paced at fps.
func NewHandler(slot *capture.Slot, enc encoder.Encoder, fps int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		slot:     slot,
		enc:      enc,
		interval: pacing.Interval(fps),
		log:      logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	conn := transport.NewConn(transport.KindVideo, r.RemoteAddr)
	WriteHeader(w)
	if r.Method == http.MethodHead {
		return
	}

	h.log.Info("video: client connected", conn.LogAttrs()...)
	fanout := NewFanout(h.slot, h.enc, NewWriter(w), h.interval, conn, h.log)
	err := fanout.Run(r.Context())

	conn.MarkClosing()
	conn.MarkClosed()
	attrs := append(conn.LogAttrs(), "chunks", fanout.Sent(), "duration", time.Since(conn.Opened).Round(time.Millisecond))
	if err != nil {
		h.log.Info("video: client dropped", append(attrs, "error", err)...)
		return
	}
	h.log.Info("video: client disconnected", attrs...)
}

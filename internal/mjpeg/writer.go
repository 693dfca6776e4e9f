// Package mjpeg serves the latest captured frame to HTTP clients as a
// multipart/x-mixed-replace JPEG stream.
package mjpeg

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// Boundary is the multipart boundary marker written before every image.
const Boundary = "--boundary"

// ContentType is the response content type of the stream.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

// WriteHeader sends the stream response header.
func WriteHeader(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)
}

// Writer writes multipart chunks to one client. Each chunk is assembled
// in memory and written with a single Write.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
	buf     bytes.Buffer
}

// NewWriter wraps w. If w is an http.Flusher it is flushed after each chunk.
func NewWriter(w io.Writer) *Writer {
	wr := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		wr.flusher = f
	}
	return wr
}

// WriteChunk writes one JPEG image as a multipart chunk.
func (wr *Writer) WriteChunk(jpeg []byte) error {
	if len(jpeg) == 0 {
		return errors.New("mjpeg: empty image")
	}
	wr.buf.Reset()
	wr.buf.WriteString("\r\n")
	wr.buf.WriteString(Boundary)
	wr.buf.WriteString("\r\nContent-Type: image/jpeg\r\nContent-Length: ")
	wr.buf.WriteString(strconv.Itoa(len(jpeg)))
	wr.buf.WriteString("\r\n\r\n")
	wr.buf.Write(jpeg)
	wr.buf.WriteString("\r\n")

	if _, err := wr.w.Write(wr.buf.Bytes()); err != nil {
		return err
	}
	if wr.flusher != nil {
		wr.flusher.Flush()
	}
	return nil
}

package mjpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/junsooki/airbridge/internal/capture"
	"github.com/junsooki/airbridge/internal/encoder"
	"github.com/junsooki/airbridge/internal/transport"
)

func TestWriteChunkFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteChunk([]byte("JPEGDATA")); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	want := "\r\n--boundary\r\nContent-Type: image/jpeg\r\nContent-Length: 8\r\n\r\nJPEGDATA\r\n"
	if got := buf.String(); got != want {
		t.Fatalf("chunk = %q, want %q", got, want)
	}
}

func TestWriteChunkRejectsEmpty(t *testing.T) {
	if err := NewWriter(io.Discard).WriteChunk(nil); err == nil {
		t.Fatal("WriteChunk(nil) succeeded")
	}
}

// readChunk parses one multipart chunk and returns its JPEG payload.
func readChunk(br *bufio.Reader) ([]byte, error) {
	expect := func(want string) error {
		line, err := br.ReadString('\n')
		if err != nil {
			return err
		}
		if line != want {
			return fmt.Errorf("line = %q, want %q", line, want)
		}
		return nil
	}
	for _, want := range []string{"\r\n", "--boundary\r\n", "Content-Type: image/jpeg\r\n"} {
		if err := expect(want); err != nil {
			return nil, err
		}
	}
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, "Content-Length: "), "\r\n"))
	if err != nil {
		return nil, fmt.Errorf("bad length line %q", line)
	}
	if err := expect("\r\n"); err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, err
	}
	crlf := make([]byte, 2)
	if _, err := io.ReadFull(br, crlf); err != nil {
		return nil, err
	}
	if string(crlf) != "\r\n" {
		return nil, fmt.Errorf("chunk trailer = %q", crlf)
	}
	return data, nil
}

func newSlotWithFrame() *capture.Slot {
	slot := capture.NewSlot()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	slot.Store(&capture.Frame{Image: img, Width: 32, Height: 24, Seq: 1, Timestamp: time.Now()})
	return slot
}

func TestHandlerStreamsJPEGChunks(t *testing.T) {
	h := NewHandler(newSlotWithFrame(), encoder.NewJPEGEncoder(60), 50, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=--boundary" {
		t.Fatalf("Content-Type = %q", ct)
	}

	br := bufio.NewReader(resp.Body)
	for i := 0; i < 3; i++ {
		data, err := readChunk(br)
		if err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("chunk %d not a JPEG: %v", i, err)
		}
		if img.Bounds().Dx() != 32 {
			t.Fatalf("chunk %d width = %d", i, img.Bounds().Dx())
		}
	}
}

func TestHandlerWaitsForFirstFrame(t *testing.T) {
	slot := capture.NewSlot()
	h := NewHandler(slot, encoder.NewJPEGEncoder(60), 50, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	time.AfterFunc(50*time.Millisecond, func() {
		slot.Store(&capture.Frame{Image: image.NewRGBA(image.Rect(0, 0, 8, 8)), Width: 8, Height: 8, Seq: 1})
	})
	if _, err := readChunk(bufio.NewReader(resp.Body)); err != nil {
		t.Fatalf("first chunk: %v", err)
	}
}

func TestClosingOneClientKeepsOthersStreaming(t *testing.T) {
	h := NewHandler(newSlotWithFrame(), encoder.NewJPEGEncoder(60), 50, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	first, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET first: %v", err)
	}
	second, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET second: %v", err)
	}
	defer second.Body.Close()

	firstReader := bufio.NewReader(first.Body)
	if _, err := readChunk(firstReader); err != nil {
		t.Fatalf("first client chunk: %v", err)
	}
	first.Body.Close()

	br := bufio.NewReader(second.Body)
	for i := 0; i < 5; i++ {
		if _, err := readChunk(br); err != nil {
			t.Fatalf("second client chunk %d after first closed: %v", i, err)
		}
	}
}

func TestHandlerRejectsPost(t *testing.T) {
	h := NewHandler(capture.NewSlot(), encoder.NewJPEGEncoder(60), 10, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

// nopEncoder returns a fixed payload with no encode cost.
type nopEncoder struct{}

func (nopEncoder) Encode(*image.RGBA) (*encoder.Chunk, error) {
	return encoder.NewJPEGEncoder(1).Encode(image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func (nopEncoder) SetQuality(int) {}

// stampWriter records when each write happened and cancels after limit writes.
type stampWriter struct {
	mu     sync.Mutex
	stamps []time.Time
	limit  int
	cancel context.CancelFunc
}

func (w *stampWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stamps = append(w.stamps, time.Now())
	if len(w.stamps) == w.limit {
		w.cancel()
	}
	return len(p), nil
}

func TestFanoutPacing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := &stampWriter{limit: 26, cancel: cancel}
	interval := 20 * time.Millisecond
	f := NewFanout(newSlotWithFrame(), nopEncoder{}, NewWriter(sw), interval, transport.NewConn(transport.KindVideo, "test"), nil)
	if err := f.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	for i := 1; i < len(sw.stamps); i++ {
		if gap := sw.stamps[i].Sub(sw.stamps[i-1]); gap < 0 {
			t.Fatalf("negative gap %v at chunk %d", gap, i)
		}
	}
	avg := sw.stamps[len(sw.stamps)-1].Sub(sw.stamps[0]) / time.Duration(len(sw.stamps)-1)
	if avg < 18*time.Millisecond || avg > 30*time.Millisecond {
		t.Errorf("average gap = %v, want about %v", avg, interval)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestFanoutStopsOnWriteFailure(t *testing.T) {
	f := NewFanout(newSlotWithFrame(), encoder.NewJPEGEncoder(50), NewWriter(failingWriter{}), 10*time.Millisecond, transport.NewConn(transport.KindVideo, "test"), nil)
	if err := f.Run(context.Background()); err == nil {
		t.Fatal("Run returned nil after write failure")
	}
}

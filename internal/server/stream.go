package server

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameBuffer holds the most recent annotated frame as JPEG. Writers
// replace it; readers wait for the next replacement.
type FrameBuffer struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	changed chan struct{}
	viewers int
}

// NewFrameBuffer creates an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{changed: make(chan struct{})}
}

// Publish encodes frame as JPEG and makes it the latest frame.
func (b *FrameBuffer) Publish(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	b.PublishJPEG(bytes.Clone(buf.GetBytes()))
	return nil
}

// PublishJPEG makes data the latest frame and wakes every waiting reader.
func (b *FrameBuffer) PublishJPEG(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.jpeg = data
	b.seq++
	close(b.changed)
	b.changed = make(chan struct{})
}

// Latest returns the current frame, its sequence number and a channel that
// is closed when a newer frame is published. seq is 0 before the first
// frame.
func (b *FrameBuffer) Latest() (data []byte, seq uint64, changed <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jpeg, b.seq, b.changed
}

// Viewers returns how many stream clients are connected. Publishers may
// skip encoding while it is zero.
func (b *FrameBuffer) Viewers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewers
}

func (b *FrameBuffer) addViewer(delta int) {
	b.mu.Lock()
	b.viewers += delta
	b.mu.Unlock()
}

// StreamHandler serves the frame buffer as MJPEG.
type StreamHandler struct {
	frames *FrameBuffer
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams each newly published frame until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	h.frames.addViewer(1)
	defer h.frames.addViewer(-1)

	var sent uint64
	for {
		data, seq, changed := h.frames.Latest()
		if seq != sent {
			if err := writePart(w, data); err != nil {
				return
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-changed:
		}
	}
}

func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\r\n")); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

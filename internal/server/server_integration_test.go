package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/gesturedrive/internal/gesture"
	"github.com/ayusman/gesturedrive/internal/store"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// readPart reads one MJPEG part and returns its body.
func readPart(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	var length int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read part header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" && length > 0 {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			fmt.Sscanf(v, "%d", &length)
		}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("read part body: %v", err)
	}
	return string(body)
}

func TestAPI_Stream(t *testing.T) {
	frames := NewFrameBuffer()
	frames.PublishJPEG([]byte("first"))
	ts := httptest.NewServer(New(Config{Frames: frames}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %s", ct)
	}

	r := bufio.NewReader(resp.Body)
	if got := readPart(t, r); got != "first" {
		t.Errorf("first part = %q, want first", got)
	}
	waitFor(t, "viewer", func() bool { return frames.Viewers() == 1 })

	frames.PublishJPEG([]byte("second"))
	if got := readPart(t, r); got != "second" {
		t.Errorf("second part = %q, want second", got)
	}

	cancel()
	waitFor(t, "viewer to leave", func() bool { return frames.Viewers() == 0 })
}

func TestAPI_State(t *testing.T) {
	hub := NewHub(nil)
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/state"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	waitFor(t, "client registration", func() bool { return hub.Clients() == 1 })

	hub.Broadcast(State{
		Frame:  7,
		Left:   gesture.Count2,
		Right:  gesture.Count1,
		Rule:   "accelerate-left",
		Action: "A W",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read state: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if got["left"] != "COUNT_2" || got["right"] != "COUNT_1" {
		t.Errorf("gestures = %v / %v", got["left"], got["right"])
	}
	if got["rule"] != "accelerate-left" || got["action"] != "A W" || got["frame"] != float64(7) {
		t.Errorf("unexpected state %s", msg)
	}

	hub.Close()
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to close after hub shutdown")
	}
	if hub.Clients() != 0 {
		t.Errorf("Clients() = %d after Close", hub.Clients())
	}
}

func TestAPI_History(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	if err := st.Runs().Create(&store.Run{Score: 321}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	ts := httptest.NewServer(New(Config{Store: st}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/runs")
	if err != nil {
		t.Fatalf("GET /api/runs error = %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Runs []struct {
			Score int `json:"score"`
		} `json:"runs"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Runs) != 1 || body.Runs[0].Score != 321 {
		t.Errorf("runs = %+v", body.Runs)
	}

	resp2, err := ts.Client().Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("GET /api/sessions status = %d", resp2.StatusCode)
	}
}

func TestServer_ListenAndServe(t *testing.T) {
	s := New(Config{Hub: NewHub(nil)})
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}

package websocketPkg

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestClient() *webSocketClient {
	return &webSocketClient{
		readTimeout:  2 * time.Second,
		writeTimeout: 2 * time.Second,
	}
}

// landmarkEchoServer answers every binary frame with a fixed detection JSON.
func landmarkEchoServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			messageType, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProcessLandmarkFrameUnavailable(t *testing.T) {
	t.Setenv("LANDMARK_WS_URL", "")

	client := newTestClient()

	if _, err := client.ProcessLandmarkFrame([]byte("frame")); err == nil {
		t.Error("expected error when the landmark service is not configured")
	}
	if client.IsConnected() {
		t.Error("client must not report a connection after a failed dial")
	}
}

func TestProcessLandmarkFrameRoundTrip(t *testing.T) {
	srv := landmarkEchoServer(t, `{
		"frame_top_y": 0.3,
		"frame_bottom_y": 0.5,
		"left_pupil": {"x": 0.6, "y": 0.4},
		"right_pupil": {"x": 0.4, "y": 0.4},
		"rotation": 12.5,
		"confidence": 0.8
	}`)
	defer srv.Close()
	t.Setenv("LANDMARK_WS_URL", wsURL(srv))

	client := newTestClient()

	result, err := client.ProcessLandmarkFrame([]byte("frame-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FrameTopY != 0.3 || result.FrameBottomY != 0.5 {
		t.Errorf("frame lines = (%v, %v), want (0.3, 0.5)", result.FrameTopY, result.FrameBottomY)
	}
	if result.Rotation != 0 {
		t.Errorf("rotation = %v, want 0 regardless of the upstream value", result.Rotation)
	}
	if !client.IsConnected() {
		t.Error("client should stay connected after a successful exchange")
	}
}

func TestProcessLandmarkFrameDropsConnOnFailure(t *testing.T) {
	upgrader := websocket.Upgrader{}

	// Serves exactly one exchange, then hangs up.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"frame_top_y": 0.3, "frame_bottom_y": 0.5}`))
	}))
	defer srv.Close()
	t.Setenv("LANDMARK_WS_URL", wsURL(srv))

	client := newTestClient()

	if _, err := client.ProcessLandmarkFrame([]byte("frame")); err != nil {
		t.Fatalf("setup exchange failed: %v", err)
	}

	// The dead upstream must surface as an error, never as a panic, and the
	// connection must be discarded so the next call redials.
	if _, err := client.ProcessLandmarkFrame([]byte("frame")); err == nil {
		t.Error("expected error against a closed upstream")
	}
	if client.IsConnected() {
		t.Error("client must drop the connection after a failed exchange")
	}
}

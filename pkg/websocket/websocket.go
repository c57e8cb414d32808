package websocketPkg

import (
	"OptiSense/internal/entity"
	"encoding/json"
	"fmt"
	"github.com/gorilla/websocket"
	"log"
	"os"
	"sync"
	"time"
)

// IWebsocket is the client side of the realtime landmark detection service:
// binary image frames go out, marker fields come back.
type IWebsocket interface {
	ProcessLandmarkFrame(frame []byte) (*entity.LandmarkDetection, error)
	IsConnected() bool
	Reconnect() error
	CloseConnection()
}

type webSocketClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewLandmarkWebSocketClient() IWebsocket {
	client := &webSocketClient{
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go func() {
		if err := client.Reconnect(); err != nil {
			log.Printf("Initial connection to landmark service failed: %v. Will retry on demand.", err)
		} else {
			log.Printf("Successfully connected to landmark service")
		}
	}()

	return client
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnectLocked()
}

// reconnectLocked dials the landmark service. Callers must hold c.mu.
func (c *webSocketClient) reconnectLocked() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	url := os.Getenv("LANDMARK_WS_URL")
	if url == "" {
		return fmt.Errorf("URL for landmark detection service not configured")
	}

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Printf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn
	return nil
}

func (c *webSocketClient) ProcessLandmarkFrame(frame []byte) (*entity.LandmarkDetection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.reconnectLocked(); err != nil {
			return nil, fmt.Errorf("landmark service unavailable: %w", err)
		}
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return nil, err
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.conn.Close()
		c.conn = nil
		return nil, fmt.Errorf("failed to send frame: %w", err)
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return nil, err
	}

	_, message, err := c.conn.ReadMessage()
	if err != nil {
		c.conn.Close()
		c.conn = nil
		return nil, fmt.Errorf("failed to read detection: %w", err)
	}

	var result entity.LandmarkDetection
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("invalid detection payload: %w", err)
	}

	// The realtime service never judges ruler tilt either.
	result.Rotation = 0

	return &result, nil
}

func (c *webSocketClient) CloseConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

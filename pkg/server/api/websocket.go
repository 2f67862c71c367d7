package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/tracker"
)

// WebSocketServer handles WebSocket connections for interactive product
// queries and live observation updates.
type WebSocketServer struct {
	addr     string
	tracker  *tracker.Tracker
	logger   *logging.Logger
	upgrader websocket.Upgrader

	// Client management
	mu      sync.RWMutex
	clients map[*WebSocketClient]bool

	// Observation updates channel
	updates chan *tracker.Summary

	// Server control
	ctx    context.Context
	cancel context.CancelFunc
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *WebSocketServer
}

// WebSocketMessage is a client request: an action name and its payload.
type WebSocketMessage struct {
	Action  string `json:"action"`
	Payload string `json:"payload"`
}

// ObservationMessage is pushed to clients when a new observation is recorded.
type ObservationMessage struct {
	Type      string           `json:"type"` // "observation"
	Timestamp string           `json:"timestamp"`
	Summary   *tracker.Summary `json:"summary"`
}

// NewWebSocketServer creates a new WebSocket server.
func NewWebSocketServer(addr string, trk *tracker.Tracker, logger *logging.Logger) *WebSocketServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &WebSocketServer{
		addr:    addr,
		tracker: trk,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// Allow all origins (configure CORS as needed)
				return true
			},
		},
		clients: make(map[*WebSocketClient]bool),
		updates: make(chan *tracker.Summary, 100),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start starts the WebSocket server.
func (s *WebSocketServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start broadcast goroutine
	go s.broadcastUpdates()

	s.logger.Info("Starting WebSocket server", "addr", s.addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("WebSocket server error", "error", err)
		}
	}()

	// Wait for context cancellation
	<-s.ctx.Done()

	// Graceful shutdown with timeout based on parent context
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Stop stops the WebSocket server.
func (s *WebSocketServer) Stop() {
	s.cancel()
}

// SendUpdate pushes a recorded observation to all connected clients.
func (s *WebSocketServer) SendUpdate(summary *tracker.Summary) {
	select {
	case s.updates <- summary:
	case <-time.After(100 * time.Millisecond):
		s.logger.Warn("Update channel full, dropping observation update")
	}
}

// handleWebSocket handles new WebSocket connections.
func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := &WebSocketClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.registerClient(client)

	// Start client goroutines
	go client.writePump()
	go client.readPump()

	s.logger.Info("New WebSocket client connected", "remote", conn.RemoteAddr())
}

// registerClient adds a client to the server.
func (s *WebSocketServer) registerClient(client *WebSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

// unregisterClient removes a client from the server.
func (s *WebSocketServer) unregisterClient(client *WebSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// broadcastUpdates forwards recorded observations to all clients.
func (s *WebSocketServer) broadcastUpdates() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case summary := <-s.updates:
			s.broadcast(summary)
		}
	}
}

// broadcast sends one observation update to all connected clients.
func (s *WebSocketServer) broadcast(summary *tracker.Summary) {
	if summary == nil {
		return
	}

	message := ObservationMessage{
		Type:      "observation",
		Timestamp: time.Now().Format(time.RFC3339),
		Summary:   summary,
	}

	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("Failed to marshal observation update", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			s.logger.Warn("Client send buffer full, skipping update")
		}
	}
}

// writePump sends messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads messages from the WebSocket connection.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage processes one client request.
func (c *WebSocketClient) handleMessage(data []byte) {
	var msg WebSocketMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.server.logger.Warn("Invalid client message", "error", err)
		c.sendError(msg.Action, "invalid message")
		return
	}

	ctx, cancel := context.WithTimeout(c.server.ctx, 30*time.Second)
	defer cancel()

	switch msg.Action {
	case "get-product-title":
		c.handleProductTitle(ctx, msg.Payload)
	case "getProductInfo":
		c.handleProductInfo(ctx, msg.Payload)
	case "toggle-option":
		c.handleToggleOption(ctx, msg.Payload)
	case "ping":
		c.sendJSON(map[string]string{"type": "pong"})
	default:
		c.server.logger.Warn("Unknown message action", "action", msg.Action)
		c.sendError(msg.Action, "unknown action")
	}
}

// handleProductTitle resolves just the product title for a URL.
func (c *WebSocketClient) handleProductTitle(ctx context.Context, url string) {
	info, err := c.server.tracker.Inspect(ctx, url)
	if err != nil {
		if errors.Is(err, tracker.ErrNoProduct) {
			c.sendJSON(map[string]interface{}{"type": "product-title", "detected": false})
			return
		}
		c.server.logger.Error("Failed to resolve product title", "url", url, "error", err)
		c.sendError("get-product-title", "lookup failed")
		return
	}

	c.sendJSON(map[string]interface{}{
		"type":         "product-title",
		"detected":     true,
		"productTitle": info.ProductTitle,
	})
}

// handleProductInfo records an observation for a URL and returns the summary.
func (c *WebSocketClient) handleProductInfo(ctx context.Context, url string) {
	summary, err := c.server.tracker.Observe(ctx, url, time.Now())
	switch {
	case errors.Is(err, tracker.ErrNoProduct):
		c.sendJSON(map[string]interface{}{"type": "product-info", "detected": false})
	case errors.Is(err, tracker.ErrTrackingDisabled):
		c.sendError("getProductInfo", "tracking is disabled")
	case err != nil:
		c.server.logger.Error("Failed to observe product", "url", url, "error", err)
		c.sendError("getProductInfo", "observation failed")
	default:
		c.sendJSON(map[string]interface{}{
			"type":     "product-info",
			"detected": true,
			"summary":  summary,
		})
	}
}

// handleToggleOption flips a tracking option by name.
func (c *WebSocketClient) handleToggleOption(ctx context.Context, name string) {
	opts, err := c.server.tracker.ToggleOption(ctx, name)
	if err != nil {
		if errors.Is(err, tracker.ErrUnknownOption) {
			c.sendError("toggle-option", "unknown option")
			return
		}
		c.server.logger.Error("Failed to toggle option", "option", name, "error", err)
		c.sendError("toggle-option", "toggle failed")
		return
	}

	c.sendJSON(map[string]interface{}{
		"type":    "options",
		"options": opts,
	})
}

// sendJSON queues a JSON message for the client, dropping it when the send
// buffer is full.
func (c *WebSocketClient) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.server.logger.Error("Failed to marshal message", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// sendError reports a failed action back to the client.
func (c *WebSocketClient) sendError(action, reason string) {
	c.sendJSON(map[string]string{
		"type":   "error",
		"action": action,
		"error":  reason,
	})
}

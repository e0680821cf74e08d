package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/message"
	"github.com/msto63/nsms/internal/router"
	"github.com/msto63/nsms/pkg/core/logging"
)

const wsReadTimeout = 120 * time.Second

// WebSocket upgrader with permissive settings for the local tester page
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler lets a browser act as a phone on the tester backend.
type WebSocketHandler struct {
	router *router.Router
	tester *router.TesterBackend
	logger *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(r *router.Router, tester *router.TesterBackend, logger *logging.Logger) *WebSocketHandler {
	return &WebSocketHandler{router: r, tester: tester, logger: logger}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`    // "send", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSSendPayload is a text typed on the simulated phone.
type WSSendPayload struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"`    // "reply", "error", "pong"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// WSReplyPayload is an outgoing tester message.
type WSReplyPayload struct {
	ID           string `json:"id"`
	Identity     string `json:"identity"`
	Text         string `json:"text"`
	Status       string `json:"status"`
	InResponseTo string `json:"in_response_to"`
	Class        string `json:"class"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsConn serializes writes; gorilla connections allow one writer at a time.
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteJSON(resp)
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.tester == nil {
		http.Error(w, "tester backend disabled", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(&wsConn{Conn: conn})
}

// handleConnection forwards every tester reply to the client and feeds the
// client's texts into the router.
func (h *WebSocketHandler) handleConnection(conn *wsConn) {
	defer conn.Close()

	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies, unsubscribe := h.tester.Subscribe(32)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer unsubscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range replies {
			if err := conn.send(WSResponse{Type: "reply", Payload: replyPayload(msg)}); err != nil {
				h.logger.Warn("WebSocket send error", "error", err)
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			h.reply(conn, WSResponse{Type: "pong"})

		case "send":
			var payload WSSendPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, "invalid_payload", "Invalid send payload")
				continue
			}
			if strings.TrimSpace(payload.Sender) == "" {
				h.sendError(conn, "invalid_request", "sender required")
				continue
			}
			if _, err := h.router.HandleIncoming(ctx, h.tester.Name(), payload.Sender, payload.Text); err != nil {
				h.sendError(conn, strings.ToLower(string(nsmserror.GetCode(err))), err.Error())
			}

		default:
			h.sendError(conn, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

func replyPayload(msg *message.Message) WSReplyPayload {
	return WSReplyPayload{
		ID:           msg.ID,
		Identity:     msg.Identity,
		Text:         msg.Text,
		Status:       msg.Status.String(),
		InResponseTo: msg.InResponseTo,
		Class:        message.DisplayClass(msg),
	}
}

func (h *WebSocketHandler) reply(conn *wsConn, resp WSResponse) {
	if err := conn.send(resp); err != nil {
		h.logger.Warn("WebSocket send error", "error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(conn *wsConn, code, msg string) {
	h.reply(conn, WSResponse{
		Type: "error",
		Payload: WSErrorPayload{
			Code:    code,
			Message: msg,
		},
	})
}

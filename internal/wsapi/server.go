// Package wsapi provides a WebSocket chat transport on top of the
// session manager.
package wsapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ordena/ordena/internal/chat"
)

// ChatMessage is one inbound user message over the socket.
type ChatMessage struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatReply is the assistant reply for one turn.
type ChatReply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// ErrorReply reports a protocol or processing error.
type ErrorReply struct {
	Error string `json:"error"`
}

// Server handles WebSocket chat connections.
type Server struct {
	manager  *chat.Manager
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a WebSocket chat server.
func NewServer(manager *chat.Manager, logger *zap.Logger) *Server {
	return &Server{
		manager: manager,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the websocket route with the echo server.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", s.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and serves one chat loop.
// Each connection is bound to a single session: the first message
// without a session id gets one assigned.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Error("failed to upgrade websocket", zap.Error(err))
		return err
	}
	defer ws.Close()

	ctx := c.Request().Context()
	sessionID := ""

	for {
		var msg ChatMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return nil
		}

		if msg.Message == "" {
			if err := ws.WriteJSON(ErrorReply{Error: "message is required"}); err != nil {
				return nil
			}
			continue
		}

		if msg.SessionID != "" {
			sessionID = msg.SessionID
		}
		if sessionID == "" {
			sessionID = chat.NewSessionID()
		}

		reply, err := s.manager.Run(ctx, sessionID, msg.Message)
		if err != nil {
			s.logger.Error("websocket turn failed", zap.String("session_id", sessionID), zap.Error(err))
			if err := ws.WriteJSON(ErrorReply{Error: "failed to process message"}); err != nil {
				return nil
			}
			continue
		}

		if err := ws.WriteJSON(ChatReply{SessionID: sessionID, Reply: reply}); err != nil {
			return nil
		}
	}
}

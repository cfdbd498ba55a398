package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

const writeWait = 10 * time.Second

var ErrNoSession = errors.New("no session joined")

type uGame interface {
	StartSession(ctx context.Context, mode string) (*entity.SessionState, error)
	SubmitMove(ctx context.Context, sessionID string, cell int) (*entity.SessionState, error)
	ResetSession(ctx context.Context, sessionID string) (*entity.SessionState, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionState, error)
	EndSession(ctx context.Context, sessionID string) error
}

// client belongs to the read loop of one connection. Other loops only write to
// conn, and writeMu keeps those writes apart.
type client struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	sessionID string
}

type Server struct {
	logger *slog.Logger
	uGame  uGame

	computerDelay time.Duration
	upgrader      websocket.Upgrader
	hub           *hub

	handlers map[string]func(ctx context.Context, c *client, payload *RequestPayload) error
}

// New returns a server that shows the computer's answer computerDelay after the
// player's own move.
func New(logger *slog.Logger, uGame uGame, computerDelay time.Duration) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,

		computerDelay: computerDelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		hub: newHub(),
	}

	server.handlers = map[string]func(context.Context, *client, *RequestPayload) error{
		actionNew:   server.handleNewGame,
		actionJoin:  server.handleJoinGame,
		actionTurn:  server.handleGameTurn,
		actionReset: server.handleResetGame,
		actionLeave: server.handleLeaveGame,
	}

	return server
}

// Handler serves the socket on /ws. Open connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	c := &client{conn: conn}
	defer func() {
		that.hub.leave(c.sessionID, c)
	}()

	if err = that.handleMessages(ctx, c); err != nil {
		log.Info("WebSocket connection closed", "reason", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			if err = that.sendError(c, "invalid message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			if err = that.sendError(c, "unknown action: "+message.Action); err != nil {
				return err
			}
			continue
		}

		var payload RequestPayload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &payload); err != nil {
				log.Error("failed to unmarshal payload", "action", message.Action, "error", err)
				if err = that.sendError(c, "invalid payload"); err != nil {
					return err
				}
				continue
			}
		}

		if err = handler(ctx, c, &payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			if err = that.sendError(c, err.Error()); err != nil {
				return err
			}
		}
	}
}

func (that *Server) sendState(c *client, view entity.StateView) error {
	return that.sendMessage(c, actionState, ResponsePayload{Game: &view})
}

// broadcast sends to every connection watching the session. Only a failure on
// origin is returned; the other connections notice their own broken sockets.
func (that *Server) broadcast(origin *client, sessionID, action string, payload ResponsePayload) error {
	var originErr error

	for _, c := range that.hub.members(sessionID) {
		err := that.sendMessage(c, action, payload)
		switch {
		case err == nil:
		case c == origin:
			originErr = err
		default:
			that.logger.Debug("failed to push to watcher", "session_id", sessionID, "error", err)
		}
	}

	return originErr
}

func (that *Server) broadcastState(origin *client, view entity.StateView) error {
	return that.broadcast(origin, view.ID, actionState, ResponsePayload{Game: &view})
}

func (that *Server) sendError(c *client, message string) error {
	return that.sendMessage(c, actionError, ResponsePayload{Error: message})
}

func (that *Server) sendMessage(c *client, action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err = c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = c.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

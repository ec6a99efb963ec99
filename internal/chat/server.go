// Package chat serves the Sphinx over WebSocket: one connection per player,
// one game turn per "message" frame.
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"example.com/meme-sphinx/internal/auth"
	"example.com/meme-sphinx/internal/game"
)

const (
	pingInterval = 25 * time.Second
	maxFrameSize = 4 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type TurnHandler interface {
	HandleTurn(ctx context.Context, turn game.Turn, now time.Time) game.Reply
}

type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Server struct {
	turns    TurnHandler
	verifier Verifier
	log      *zap.Logger
	now      func() time.Time
}

func NewServer(turns TurnHandler, verifier Verifier, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		turns:    turns,
		verifier: verifier,
		log:      log.Named("chat"),
		now:      time.Now,
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
}

type clientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *clientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

func (c *clientConn) sendEnvelope(typ string, payload any) {
	b, err := json.Marshal(Envelope{Type: typ, Payload: mustJSON(payload)})
	if err != nil {
		return
	}
	c.send <- b
}

func (c *clientConn) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.WriteMessage(websocket.TextMessage, msg)
		case <-ticker.C:
			_ = c.ws.WriteMessage(websocket.PingMessage, []byte{})
		}
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// handleWS requires a player token, in the Authorization header or the
// token query parameter. Gateways relay over POST /api/turns instead.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}
	claims, err := s.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.IsGateway() || claims.Address == "" {
		http.Error(w, "player token required", http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ws.SetReadLimit(maxFrameSize)

	cc := &clientConn{
		ws:   ws,
		send: make(chan []byte, 16),
	}
	go cc.writeLoop()
	defer cc.Close()

	log := s.log.With(zap.String("identity", claims.Address))
	log.Debug("player connected")
	cc.sendEnvelope("ready", ReadyPayload{Address: claims.Address})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			cc.sendEnvelope("error", ErrorPayload{Code: "bad_json", Message: "invalid json"})
			continue
		}

		switch env.Type {
		case "message":
			var p MessagePayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				cc.sendEnvelope("error", ErrorPayload{Code: "bad_input", Message: "invalid payload"})
				continue
			}
			reply := s.turns.HandleTurn(r.Context(), game.Turn{
				Identity:    claims.Address,
				DisplayName: claims.DisplayName,
				Text:        p.Text,
			}, s.now())
			if reply.Status == game.StatusDropped {
				continue
			}
			cc.sendEnvelope("reply", ReplyPayload{Status: reply.Status, Text: reply.Text})

		default:
			cc.sendEnvelope("error", ErrorPayload{Code: "unknown_type", Message: "unknown message type"})
		}
	}

	log.Debug("player disconnected")
}

// Package ws pushes live order changes to connected dashboard browsers.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/codehasanali/rafine-web/internal/config"
	"github.com/codehasanali/rafine-web/internal/ordersync"
	"github.com/codehasanali/rafine-web/internal/session"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	Engine *ordersync.Engine
	Logger *zap.Logger
	Config config.Config

	ordersRealtime *ordersRealtime
}

func New(engine *ordersync.Engine, logger *zap.Logger, cfg config.Config) *Server {
	srv := &Server{Engine: engine, Logger: logger, Config: cfg}
	srv.ordersRealtime = newOrdersRealtime(logger)
	engine.AddListener(func(change ordersync.Change) {
		srv.ordersRealtime.broadcast(map[string]any{
			"type": string(change.Kind),
			"data": change.Order,
		})
	})
	return srv
}

type wsRealtimeClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsRealtimeClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (c *wsRealtimeClient) ping(deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

type ordersRealtime struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[*wsRealtimeClient]struct{}
}

func newOrdersRealtime(logger *zap.Logger) *ordersRealtime {
	return &ordersRealtime{
		logger: logger,
		subs:   make(map[*wsRealtimeClient]struct{}),
	}
}

// register adds the client and writes its initial state frame while the hub
// lock is held, so no broadcast can reach the client before that frame.
func (or *ordersRealtime) register(client *wsRealtimeClient, state func() any) (unsubscribe func()) {
	or.mu.Lock()
	or.subs[client] = struct{}{}
	if err := client.writeJSON(map[string]any{"type": "orders.state", "data": state()}); err != nil {
		delete(or.subs, client)
		or.mu.Unlock()
		_ = client.conn.Close()
		return func() {}
	}
	or.mu.Unlock()

	return func() {
		or.mu.Lock()
		delete(or.subs, client)
		or.mu.Unlock()
	}
}

func (or *ordersRealtime) broadcast(message any) {
	or.mu.RLock()
	clients := make([]*wsRealtimeClient, 0, len(or.subs))
	for c := range or.subs {
		clients = append(clients, c)
	}
	or.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			or.mu.Lock()
			delete(or.subs, c)
			or.mu.Unlock()
		}
	}
}

// OrdersWS upgrades a staff browser connection and streams order changes to
// it. The first frame is always the full current view, so a client that
// reconnects never has to reconcile gaps itself.
func (s *Server) OrdersWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := r.URL.Query().Get("token")
	claims, err := session.VerifyToken(token, s.Config.SessionSecret)
	if err != nil || !claims.IsAdmin {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	ctx := r.Context()
	client := &wsRealtimeClient{conn: conn}
	unsubscribe := s.ordersRealtime.register(client, func() any { return s.Engine.Orders() })
	defer unsubscribe()

	heartbeat := s.Config.WSHeartbeatInterval
	_ = conn.SetReadDeadline(time.Now().Add(2 * heartbeat))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * heartbeat))
	})

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.ping(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
		}
	}
}

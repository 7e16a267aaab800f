package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type EventKind string

const (
	EventOrderCreated EventKind = "newOrder"
	EventOrderUpdated EventKind = "orderUpdate"
)

// Event carries only the order id. Payload fields beyond the id are not
// trusted; consumers re-fetch the full record.
type Event struct {
	Kind    EventKind
	OrderID string
}

const joinRoom = "admin"

// Subscriber maintains the websocket subscription to the platform
// notification socket. Connection loss triggers reconnection with a fixed
// delay and a bounded attempt budget; the budget resets after every
// successful connect. There is no event replay, which is why OnConnect
// exists: the sync engine reloads its snapshot there.
type Subscriber struct {
	URL               string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	HandshakeTimeout  time.Duration
	HeartbeatInterval time.Duration
	Logger            *zap.Logger

	OnEvent   func(Event)
	OnConnect func()
}

type socketFrame struct {
	Event string `json:"event"`
	Room  string `json:"room,omitempty"`
	Data  struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Run blocks until ctx is cancelled or the reconnect budget is exhausted.
func (s *Subscriber) Run(ctx context.Context) error {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	attempts := s.ReconnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := s.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.runConnection(ctx, log)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return ctx.Err()
		}
		if err == errConnected {
			// The connection was established and later dropped; start a
			// fresh attempt budget.
			failures = 0
			err = nil
		} else {
			failures++
		}

		if failures >= attempts {
			log.Error("notification socket reconnect budget exhausted",
				zap.Int("attempts", attempts))
			return errors.New("notification socket: reconnect attempts exhausted")
		}

		log.Warn("notification socket disconnected, retrying",
			zap.Int("failures", failures),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// errConnected signals that the dial succeeded before the connection died,
// distinguishing a dropped session from a failed attempt.
var errConnected = errors.New("connection established then lost")

func (s *Subscriber) runConnection(ctx context.Context, log *zap.Logger) error {
	dialer := websocket.Dialer{HandshakeTimeout: s.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Register interest in the admin order room; sent once per connection.
	join := map[string]string{"event": "joinOrderRoom", "room": joinRoom}
	if err := conn.WriteJSON(join); err != nil {
		return err
	}

	log.Info("notification socket connected", zap.String("room", joinRoom))
	if s.OnConnect != nil {
		s.OnConnect()
	}

	heartbeat := s.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	readWait := heartbeat * 2
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	for {
		var frame socketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errConnected
		}
		event, ok := decodeFrame(frame)
		if !ok {
			log.Debug("ignoring unknown socket frame", zap.String("event", frame.Event))
			continue
		}
		if s.OnEvent != nil {
			s.OnEvent(event)
		}
	}
}

func decodeFrame(frame socketFrame) (Event, bool) {
	id := strings.TrimSpace(frame.Data.ID)
	if id == "" {
		return Event{}, false
	}
	switch EventKind(frame.Event) {
	case EventOrderCreated:
		return Event{Kind: EventOrderCreated, OrderID: id}, true
	case EventOrderUpdated:
		return Event{Kind: EventOrderUpdated, OrderID: id}, true
	default:
		return Event{}, false
	}
}

// DecodeFrame parses a raw notification frame. Exposed for the dashboard's
// own socket plumbing and for tests.
func DecodeFrame(raw []byte) (Event, bool) {
	var frame socketFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Event{}, false
	}
	return decodeFrame(frame)
}

package waclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/oklog/ulid/v2"
)

const (
	gwSubprotocol = "explore.session.v1"

	gwDefaultWriteTimeout   = 5 * time.Second
	gwDefaultCommandTimeout = 30 * time.Second
	gwEventQueueSize        = 256
)

var (
	// ErrSessionClosed is returned for any command issued after Destroy.
	ErrSessionClosed = errors.New("session closed")

	// ErrAgentUnavailable is returned when the automation agent cannot be
	// reached or rejects the session start.
	ErrAgentUnavailable = errors.New("automation agent unavailable")
)

// envelope is the wire frame exchanged with the automation agent.
type envelope struct {
	Type     string          `json:"type"`
	ID       string          `json:"id,omitempty"`
	DeviceID string          `json:"device_id,omitempty"`
	Method   string          `json:"method,omitempty"`
	Args     []any           `json:"args,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Frame types.
const (
	frameStart   = "session.start"
	frameCommand = "session.command"
	frameResult  = "session.result"
	frameEvent   = "session.event"
)

// Gateway is the Factory for agent-backed sessions. One WebSocket per device.
type Gateway struct {
	log *slog.Logger

	agentURL       string
	writeTimeout   time.Duration
	commandTimeout time.Duration
}

// NewGateway constructs a Gateway pointing at the automation agent.
func NewGateway(log *slog.Logger, agentURL string, writeTimeout, commandTimeout time.Duration) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if writeTimeout <= 0 {
		writeTimeout = gwDefaultWriteTimeout
	}
	if commandTimeout <= 0 {
		commandTimeout = gwDefaultCommandTimeout
	}
	return &Gateway{
		log:            log,
		agentURL:       agentURL,
		writeTimeout:   writeTimeout,
		commandTimeout: commandTimeout,
	}
}

// New dials the agent and starts a session channel for deviceID.
func (g *Gateway) New(ctx context.Context, deviceID string) (Session, error) {
	conn, _, err := websocket.Dial(ctx, g.agentURL, &websocket.DialOptions{
		Subprotocols: []string{gwSubprotocol},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}

	s := &wsSession{
		log:            g.log.With("device_id", deviceID),
		conn:           conn,
		deviceID:       deviceID,
		writeTimeout:   g.writeTimeout,
		commandTimeout: g.commandTimeout,
		events:         make(chan Event, gwEventQueueSize),
		pending:        make(map[string]chan envelope),
		done:           make(chan struct{}),
	}

	if err := s.write(ctx, envelope{Type: frameStart, DeviceID: deviceID}); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "start failed")
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}

	go s.readLoop()
	return s, nil
}

// wsSession is the agent-backed Session implementation.
type wsSession struct {
	log      *slog.Logger
	conn     *websocket.Conn
	deviceID string

	writeTimeout   time.Duration
	commandTimeout time.Duration

	events chan Event

	mu      sync.Mutex
	pending map[string]chan envelope
	info    Info

	done      chan struct{}
	closeOnce sync.Once
}

func (s *wsSession) Events() <-chan Event { return s.events }

func (s *wsSession) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *wsSession) Initialize(ctx context.Context) error {
	_, err := s.command(ctx, "initialize", nil)
	return err
}

func (s *wsSession) Logout(ctx context.Context) error {
	_, err := s.command(ctx, "logout", nil)
	return err
}

// Destroy tells the agent to drop the session, closes the socket, and closes
// the event channel. Safe to call more than once.
func (s *wsSession) Destroy(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		_, err = s.command(ctx, "destroy", nil)
		close(s.done)
		_ = s.conn.Close(websocket.StatusNormalClosure, "destroyed")
	})
	return err
}

func (s *wsSession) Send(ctx context.Context, chatID, body string, media *Media) error {
	args := []any{chatID, body}
	if media != nil {
		args = append(args, media)
	}
	_, err := s.command(ctx, "sendMessage", args)
	return err
}

func (s *wsSession) Chats(ctx context.Context) ([]Chat, error) {
	raw, err := s.command(ctx, "getChats", nil)
	if err != nil {
		return nil, err
	}
	var chats []Chat
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &chats); err != nil {
			return nil, fmt.Errorf("decode chats: %w", err)
		}
	}
	return chats, nil
}

func (s *wsSession) Execute(ctx context.Context, method string, args []any) (any, error) {
	raw, err := s.command(ctx, method, args)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

// command performs one request/response round trip keyed by a ULID
// correlation id.
func (s *wsSession) command(ctx context.Context, method string, args []any) (json.RawMessage, error) {
	select {
	case <-s.done:
		return nil, ErrSessionClosed
	default:
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.commandTimeout)
		defer cancel()
	}

	id := ulid.Make().String()
	reply := make(chan envelope, 1)

	s.mu.Lock()
	s.pending[id] = reply
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	err := s.write(ctx, envelope{
		Type:     frameCommand,
		ID:       id,
		DeviceID: s.deviceID,
		Method:   method,
		Args:     args,
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrSessionClosed
	case env := <-reply:
		if env.Error != "" {
			return nil, errors.New(env.Error)
		}
		return env.Payload, nil
	}
}

func (s *wsSession) write(ctx context.Context, env envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return s.conn.Write(wctx, websocket.MessageText, b)
}

// readLoop routes result frames to pending commands and event frames to the
// event channel, in arrival order. It closes the event channel on exit so
// consumers observe a terminated stream exactly once.
func (s *wsSession) readLoop() {
	defer close(s.events)

	ctx := context.Background()
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			select {
			case <-s.done:
			default:
				s.log.Info("waclient.read.end", "err", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.Warn("waclient.frame.bad_json", "err", err)
			continue
		}

		switch env.Type {
		case frameResult:
			s.mu.Lock()
			reply := s.pending[env.ID]
			s.mu.Unlock()
			if reply != nil {
				reply <- env
			}

		case frameEvent:
			ev, ok := decodeEvent(env.Payload)
			if !ok {
				s.log.Warn("waclient.event.unknown", "payload", string(env.Payload))
				continue
			}
			if ev.Kind == EventReady {
				s.mu.Lock()
				s.info.Phone = ev.Phone
				s.mu.Unlock()
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}

		default:
			s.log.Warn("waclient.frame.unknown", "type", env.Type)
		}
	}
}

// eventPayload is the agent's event frame payload.
type eventPayload struct {
	Kind    string   `json:"kind"`
	Code    string   `json:"code,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Message *Message `json:"message,omitempty"`
}

func decodeEvent(raw json.RawMessage) (Event, bool) {
	var p eventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Event{}, false
	}

	switch EventKind(p.Kind) {
	case EventQR:
		return Event{Kind: EventQR, Code: p.Code}, true
	case EventReady:
		return Event{Kind: EventReady, Phone: p.Phone}, true
	case EventAuthFailure:
		return Event{Kind: EventAuthFailure, Reason: p.Reason}, true
	case EventDisconnected:
		return Event{Kind: EventDisconnected, Phone: p.Phone, Reason: p.Reason}, true
	case EventMessage:
		if p.Message == nil {
			return Event{}, false
		}
		return Event{Kind: EventMessage, Message: p.Message}, true
	}
	return Event{}, false
}

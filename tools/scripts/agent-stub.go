// Package main provides a stub automation agent for local development.
//
// It speaks the explore.session.v1 WebSocket protocol:
//   - accepts session.start for any device id
//   - answers session.command frames with canned results
//   - emits a qr event after initialize, then ready after -scan-delay
//   - optionally emits periodic inbound message events (-chatter)
//
// It lets the server run end to end without a real browser-backed agent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
)

const subprotocol = "explore.session.v1"

type envelope struct {
	Type     string          `json:"type"`
	ID       string          `json:"id,omitempty"`
	DeviceID string          `json:"device_id,omitempty"`
	Method   string          `json:"method,omitempty"`
	Args     []any           `json:"args,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type stub struct {
	phone     string
	scanDelay time.Duration
	failAuth  bool
	chatter   time.Duration
}

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:3001", "listen address")
		phone     = flag.String("phone", "919999999999", "phone number reported on ready")
		scanDelay = flag.Duration("scan-delay", 5*time.Second, "delay between qr and ready events")
		failAuth  = flag.Bool("fail-auth", false, "emit auth_failure instead of ready")
		chatter   = flag.Duration("chatter", 0, "emit a fake inbound message at this interval (0 disables)")
	)
	flag.Parse()

	s := &stub{
		phone:     *phone,
		scanDelay: *scanDelay,
		failAuth:  *failAuth,
		chatter:   *chatter,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/session", s.handleSession)

	log.Printf("agent-stub listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
}

func (s *stub) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{subprotocol},
	})
	if err != nil {
		log.Printf("accept failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx := r.Context()

	var deviceID string
	stop := make(chan struct{})
	defer close(stop)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Printf("session end (%s): %v", deviceID, err)
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("bad frame: %v", err)
			continue
		}

		switch env.Type {
		case "session.start":
			deviceID = env.DeviceID
			log.Printf("session start: %s", deviceID)

		case "session.command":
			s.handleCommand(ctx, conn, env, stop)

		default:
			log.Printf("unknown frame type: %q", env.Type)
		}
	}
}

func (s *stub) handleCommand(ctx context.Context, conn *websocket.Conn, env envelope, stop <-chan struct{}) {
	switch env.Method {
	case "initialize":
		writeFrame(ctx, conn, envelope{Type: "session.result", ID: env.ID})
		go s.lifecycle(conn, env.DeviceID, stop)

	case "logout", "destroy":
		writeFrame(ctx, conn, envelope{Type: "session.result", ID: env.ID})

	case "sendMessage":
		log.Printf("sendMessage %s: %v", env.DeviceID, env.Args)
		writeFrame(ctx, conn, envelope{Type: "session.result", ID: env.ID})

	case "getChats":
		chats := []map[string]any{
			{"id": "919999999999@c.us", "name": "Stub Contact", "is_group": false},
			{"id": "120363000000000000@g.us", "name": "Stub Group", "is_group": true},
		}
		writeResult(ctx, conn, env.ID, chats)

	case "getState":
		writeResult(ctx, conn, env.ID, "CONNECTED")

	default:
		writeResult(ctx, conn, env.ID, map[string]any{"method": env.Method, "ok": true})
	}
}

// lifecycle plays the scan flow: qr, then ready or auth_failure, then
// optional chatter.
func (s *stub) lifecycle(conn *websocket.Conn, deviceID string, stop <-chan struct{}) {
	ctx := context.Background()

	emit(ctx, conn, map[string]any{"kind": "qr", "code": fmt.Sprintf("stub-qr-%s-%d", deviceID, time.Now().Unix())})

	select {
	case <-stop:
		return
	case <-time.After(s.scanDelay):
	}

	if s.failAuth {
		emit(ctx, conn, map[string]any{"kind": "auth_failure", "reason": "stub forced failure"})
		return
	}
	emit(ctx, conn, map[string]any{"kind": "ready", "phone": s.phone})

	if s.chatter <= 0 {
		return
	}
	t := time.NewTicker(s.chatter)
	defer t.Stop()
	for i := 1; ; i++ {
		select {
		case <-stop:
			return
		case <-t.C:
			emit(ctx, conn, map[string]any{"kind": "message", "message": map[string]any{
				"id":      fmt.Sprintf("stub-msg-%d", i),
				"chat_id": s.phone + "@c.us",
				"from":    s.phone + "@c.us",
				"body":    fmt.Sprintf("stub message %d", i),
				"ts":      time.Now().UTC(),
			}})
		}
	}
}

func emit(ctx context.Context, conn *websocket.Conn, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal event: %v", err)
		return
	}
	writeFrame(ctx, conn, envelope{Type: "session.event", Payload: b})
}

func writeResult(ctx context.Context, conn *websocket.Conn, id string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal result: %v", err)
		return
	}
	writeFrame(ctx, conn, envelope{Type: "session.result", ID: id, Payload: b})
}

func writeFrame(ctx context.Context, conn *websocket.Conn, env envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Printf("marshal frame: %v", err)
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, b); err != nil {
		log.Printf("write failed: %v", err)
	}
}

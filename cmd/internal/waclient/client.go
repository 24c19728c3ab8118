// Package waclient drives the opaque browser-automation protocol client.
//
// The messaging protocol itself is not reimplemented here: sessions are
// capabilities backed by an external automation agent, reached over a
// WebSocket command/event channel. The rest of the system only ever sees the
// Session interface.
package waclient

import "context"

// Media is a binary attachment, base64-encoded, ready to send.
type Media struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
	Filename string `json:"filename"`
}

// Chat is one conversation known to the session.
type Chat struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// Info describes the authenticated subscriber behind a session.
type Info struct {
	Phone string
}

// Session is one device's protocol client. A Session is exclusively owned by
// its registry entry and must not be used after Destroy.
type Session interface {
	// Initialize starts the underlying client. Events begin to flow on the
	// Events channel once initialization is underway.
	Initialize(ctx context.Context) error

	// Logout ends the authenticated session on the remote side and triggers
	// the backend's logout hook.
	Logout(ctx context.Context) error

	// Destroy releases all resources and closes the Events channel.
	// It is idempotent.
	Destroy(ctx context.Context) error

	// Send delivers a message to chatID, optionally with an attachment
	// (body becomes the caption).
	Send(ctx context.Context, chatID, body string, media *Media) error

	// Chats lists conversations known to the session.
	Chats(ctx context.Context) ([]Chat, error)

	// Execute invokes a named client operation with positional args.
	// Callers are responsible for allow-listing method names.
	Execute(ctx context.Context, method string, args []any) (any, error)

	// Info returns what is known about the subscriber (zero value before the
	// ready event).
	Info() Info

	// Events is the ordered stream of asynchronous session events. It is
	// closed by Destroy.
	Events() <-chan Event
}

// Factory creates sessions, one per device id.
type Factory interface {
	New(ctx context.Context, deviceID string) (Session, error)
}

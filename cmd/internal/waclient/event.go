package waclient

import "time"

// EventKind identifies an asynchronous session event from the automation agent.
type EventKind string

const (
	// EventQR carries a credential challenge that must be approved out-of-band.
	EventQR EventKind = "qr"
	// EventReady signals that the session is authenticated and usable.
	EventReady EventKind = "ready"
	// EventAuthFailure signals an unrecoverable credential rejection.
	EventAuthFailure EventKind = "auth_failure"
	// EventDisconnected signals that the underlying session dropped.
	EventDisconnected EventKind = "disconnected"
	// EventMessage carries one inbound message.
	EventMessage EventKind = "message"
)

// Message is one inbound message as reported by the agent.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	From      string    `json:"from"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"ts"`
}

// Event is the union of session events. Exactly the fields relevant to Kind
// are populated.
type Event struct {
	Kind EventKind

	// Code is the raw challenge payload (Kind == EventQR).
	Code string

	// Phone is the subscriber identity (Kind == EventReady, best-effort on
	// EventDisconnected).
	Phone string

	// Reason is set on EventAuthFailure and EventDisconnected when known.
	Reason string

	// Message is set on EventMessage.
	Message *Message
}

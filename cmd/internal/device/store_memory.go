package device

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/indeses-deepak/explore/cmd/internal/waclient"
)

// InMemoryStore is the default message buffer: per-device ordered slices,
// unbounded for the process lifetime unless the device is dropped.
type InMemoryStore struct {
	mu      sync.Mutex
	devices map[string]*memBuffer
}

type memBuffer struct {
	seq  int64
	msgs []StoredMessage
}

// NewInMemoryStore constructs an in-memory MessageStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{devices: make(map[string]*memBuffer)}
}

// Close closes the store (noop for in-memory).
func (s *InMemoryStore) Close() error { return nil }

// Append records one inbound message in arrival order.
func (s *InMemoryStore) Append(ctx context.Context, deviceID string, msg waclient.Message, now time.Time) (StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return StoredMessage{}, err
	}

	id := msg.ID
	if id == "" {
		id = ulid.Make().String()
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.devices[deviceID]
	if b == nil {
		b = &memBuffer{msgs: make([]StoredMessage, 0, 64)}
		s.devices[deviceID] = b
	}

	b.seq++
	stored := StoredMessage{
		DeviceID:   deviceID,
		Seq:        b.seq,
		MessageID:  id,
		ChatID:     msg.ChatID,
		From:       msg.From,
		Body:       msg.Body,
		ReceivedAt: ts,
	}
	b.msgs = append(b.msgs, stored)
	return stored, nil
}

// List returns the device's buffer in arrival order.
func (s *InMemoryStore) List(ctx context.Context, deviceID string) ([]StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.devices[deviceID]
	if b == nil {
		return nil, nil
	}
	return append([]StoredMessage(nil), b.msgs...), nil
}

// Drop discards the device's buffer.
func (s *InMemoryStore) Drop(ctx context.Context, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.devices, deviceID)
	s.mu.Unlock()
	return nil
}

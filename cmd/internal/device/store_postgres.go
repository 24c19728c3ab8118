package device

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/indeses-deepak/explore/cmd/internal/waclient"
)

// PostgresStore archives inbound messages in explore.device_messages.
// Seq allocation relies on the controller serializing appends per device
// (one event loop per device), so the max+1 subselect is race-free per key.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed MessageStore.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("device: nil db pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the store. The pool is owned by the app, so this is a no-op.
func (s *PostgresStore) Close() error { return nil }

// Append inserts one message with the next per-device seq.
func (s *PostgresStore) Append(ctx context.Context, deviceID string, msg waclient.Message, now time.Time) (StoredMessage, error) {
	id := msg.ID
	if id == "" {
		id = ulid.Make().String()
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = now
	}

	var seq int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO explore.device_messages (
			device_id, seq, message_id, chat_id, sender, body, received_at
		)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4, $5, $6
		FROM explore.device_messages
		WHERE device_id = $1
		RETURNING seq
	`, deviceID, id, msg.ChatID, msg.From, msg.Body, ts).Scan(&seq)
	if err != nil {
		return StoredMessage{}, err
	}

	return StoredMessage{
		DeviceID:   deviceID,
		Seq:        seq,
		MessageID:  id,
		ChatID:     msg.ChatID,
		From:       msg.From,
		Body:       msg.Body,
		ReceivedAt: ts,
	}, nil
}

// List returns a device's archive ordered by seq ASC.
func (s *PostgresStore) List(ctx context.Context, deviceID string) ([]StoredMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT device_id, seq, message_id, chat_id, sender, body, received_at
		FROM explore.device_messages
		WHERE device_id = $1
		ORDER BY seq ASC
	`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredMessage
	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.DeviceID, &m.Seq, &m.MessageID, &m.ChatID, &m.From, &m.Body, &m.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Drop deletes a device's archive.
func (s *PostgresStore) Drop(ctx context.Context, deviceID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM explore.device_messages WHERE device_id = $1
	`, deviceID)
	return err
}

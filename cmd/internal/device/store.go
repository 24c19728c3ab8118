package device

import (
	"context"
	"time"

	"github.com/indeses-deepak/explore/cmd/internal/waclient"
)

// StoredMessage is the canonical buffered inbound message.
type StoredMessage struct {
	DeviceID   string    `json:"deviceId"`
	Seq        int64     `json:"seq"`
	MessageID  string    `json:"messageId"`
	ChatID     string    `json:"chatId"`
	From       string    `json:"from"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// MessageStore buffers inbound messages per device.
//
// Requirements:
//   - insertion order preserved (monotonic seq per device)
//   - List returns messages ordered by seq ASC
//   - Drop removes a device's buffer entirely
type MessageStore interface {
	Append(ctx context.Context, deviceID string, msg waclient.Message, now time.Time) (StoredMessage, error)
	List(ctx context.Context, deviceID string) ([]StoredMessage, error)
	Drop(ctx context.Context, deviceID string) error
	Close() error
}

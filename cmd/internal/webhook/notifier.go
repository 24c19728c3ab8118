// Package webhook posts device status and message events to an external
// collector. Delivery is best-effort: failures are logged and counted, never
// retried, and never block the lifecycle path that produced the event.
package webhook

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/indeses-deepak/explore/cmd/internal/timeutil"
)

// Suffix paths appended to the configured base URL. These are part of the
// external contract and must not change.
const (
	statusPath  = "receiveWhatsappNodeStatus"
	messagePath = "receiveWhatsappNode"
)

const defaultPostTimeout = 10 * time.Second

// statusPayload is the status event body.
type statusPayload struct {
	DeviceID    string `json:"deviceId"`
	Status      string `json:"status"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// messagePayload is the inbound message event body.
type messagePayload struct {
	DeviceID    string `json:"deviceId"`
	MessageBody any    `json:"messageBody"`
	Timestamp   string `json:"timestamp"`
}

// Notifier fires webhook calls. A disabled Notifier drops everything silently.
type Notifier struct {
	log     *slog.Logger
	clock   *timeutil.Clock
	client  *http.Client
	baseURL string
	enabled bool

	// onFailure is invoked once per failed delivery (metrics hook).
	onFailure func()
}

// NewNotifier constructs a Notifier. When enabled is false or baseURL is
// empty, every call is a no-op.
func NewNotifier(log *slog.Logger, clock *timeutil.Clock, baseURL string, enabled bool, timeout time.Duration) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultPostTimeout
	}
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Notifier{
		log:     log,
		clock:   clock,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		enabled: enabled && baseURL != "",
	}
}

// OnFailure registers a hook called for every failed delivery.
func (n *Notifier) OnFailure(fn func()) {
	if n != nil && fn != nil {
		n.onFailure = fn
	}
}

// Status reports a lifecycle transition. Fire-and-forget.
func (n *Notifier) Status(deviceID, status, phone string) {
	if n == nil || !n.enabled {
		return
	}
	payload := statusPayload{
		DeviceID:    deviceID,
		Status:      status,
		PhoneNumber: phone,
		Timestamp:   n.clock.NowISO(),
	}
	go n.post(statusPath, payload)
}

// Message reports one inbound message. Fire-and-forget.
func (n *Notifier) Message(deviceID string, body any) {
	if n == nil || !n.enabled {
		return
	}
	payload := messagePayload{
		DeviceID:    deviceID,
		MessageBody: body,
		Timestamp:   n.clock.NowISO(),
	}
	go n.post(messagePath, payload)
}

func (n *Notifier) post(path string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		n.fail(path, err)
		return
	}

	resp, err := n.client.Post(n.baseURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		n.fail(path, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		n.log.Warn("webhook.status_code", "path", path, "status", resp.StatusCode)
		if n.onFailure != nil {
			n.onFailure()
		}
		return
	}

	n.log.Debug("webhook.sent", "path", path)
}

func (n *Notifier) fail(path string, err error) {
	n.log.Warn("webhook.fail", "path", path, "err", err)
	if n.onFailure != nil {
		n.onFailure()
	}
}

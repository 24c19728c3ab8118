package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/indeses-deepak/explore/cmd/internal/sessiondir"
	"github.com/indeses-deepak/explore/cmd/internal/timeutil"
	"github.com/indeses-deepak/explore/cmd/internal/waclient"
	"github.com/indeses-deepak/explore/cmd/internal/webhook"
)

// Webhook status strings. These are the external contract of the status
// notification path.
const (
	hookInitializing = "INITIALIZING"
	hookQR           = "QR"
	hookReady        = "READY"
	hookFailed       = "FAILED"
	hookDisconnected = "DISCONNECTED"
)

// Config tunes controller behavior.
type Config struct {
	// InitTimeout bounds client start-up.
	InitTimeout time.Duration
	// TeardownTimeout bounds logout/destroy and storage reclamation.
	TeardownTimeout time.Duration
	// CreateAnswerGrace is how long Create waits for a first event after
	// Initialize returns before answering "initialization started".
	CreateAnswerGrace time.Duration

	// ExecuteEnabled turns the allow-listed dispatch endpoint on. Off by
	// default; every execute request is rejected as not permitted while off.
	ExecuteEnabled bool

	// RemoveOnTerminal removes registry entries after auth-failure or
	// disconnect events. Off by default: terminal entries stay visible for
	// status introspection.
	RemoveOnTerminal bool
}

func (c Config) withDefaults() Config {
	if c.InitTimeout <= 0 {
		c.InitTimeout = 2 * time.Minute
	}
	if c.TeardownTimeout <= 0 {
		c.TeardownTimeout = 60 * time.Second
	}
	if c.CreateAnswerGrace <= 0 {
		c.CreateAnswerGrace = 2 * time.Second
	}
	return c
}

// CreateResult is the single answer to a create request. Exactly one of
// Challenge / Ready / AuthFailed / Started describes the outcome.
type CreateResult struct {
	DeviceID string

	// Challenge is the raw credential challenge awaiting out-of-band scan.
	Challenge string

	// Ready is set when the session authenticated from stored credentials.
	Ready bool
	Phone string

	// AuthFailed is set when credentials were rejected during start-up.
	AuthFailed bool

	// Started is set when initialization is underway but no event has
	// arrived yet; later events are reported via the webhook only.
	Started bool
}

// SendInput is one send-message command.
type SendInput struct {
	DeviceID      string
	Number        string
	Body          string
	ChatID        string
	IsGroup       bool
	AttachmentURL string
}

// Record is the device record returned by reconnect.
type Record struct {
	ID              string `json:"id"`
	Status          Status `json:"status"`
	LastReconnected string `json:"lastReconnected"`
}

// Controller orchestrates the device lifecycle: create/replace, event-driven
// transitions, command dispatch, and teardown. Lifecycle-mutating operations
// are serialized per device id.
type Controller struct {
	log      *slog.Logger
	cfg      Config
	clock    *timeutil.Clock
	registry *Registry
	factory  waclient.Factory
	store    MessageStore
	hooks    *webhook.Notifier
	teardown *sessiondir.Teardown
	media    *MediaFetcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewController wires a Controller.
func NewController(
	log *slog.Logger,
	cfg Config,
	clock *timeutil.Clock,
	registry *Registry,
	factory waclient.Factory,
	store MessageStore,
	hooks *webhook.Notifier,
	teardown *sessiondir.Teardown,
	media *MediaFetcher,
) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if media == nil {
		media = NewMediaFetcher(0)
	}
	return &Controller{
		log:      log,
		cfg:      cfg.withDefaults(),
		clock:    clock,
		registry: registry,
		factory:  factory,
		store:    store,
		hooks:    hooks,
		teardown: teardown,
		media:    media,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lock serializes lifecycle operations for one device id. The returned func
// releases the lock.
func (c *Controller) lock(deviceID string) func() {
	c.mu.Lock()
	l := c.locks[deviceID]
	if l == nil {
		l = &sync.Mutex{}
		c.locks[deviceID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Create installs a fresh session for deviceID. An existing live entry is
// torn down first (failures logged, never blocking the new entry). The first
// qr/ready/auth_failure event answers the request exactly once; later events
// go only to the webhook path.
func (c *Controller) Create(ctx context.Context, deviceID string) (CreateResult, error) {
	unlock := c.lock(deviceID)
	locked := true
	defer func() {
		if locked {
			unlock()
		}
	}()

	if old := c.registry.Get(deviceID); old != nil {
		c.log.Warn("device.replace", "device_id", deviceID)
		c.stopAndReclaim(ctx, old)
		c.removeEntry(ctx, deviceID)
	}

	sess, err := c.factory.New(ctx, deviceID)
	if err != nil {
		return CreateResult{}, fmt.Errorf("start session: %w", err)
	}

	now := c.clock.Now()
	dev := newDeviceSession(deviceID, sess, now)
	c.registry.Put(deviceID, dev)
	metricLiveDevices.Inc()
	metricTransitions.WithLabelValues(string(StatusInitializing)).Inc()

	c.log.Info("device.create", "device_id", deviceID)
	c.hooks.Status(deviceID, hookInitializing, "")

	first := make(chan CreateResult, 1)
	go c.consumeEvents(dev, sess, first)

	unlock()
	locked = false

	initCtx, cancel := context.WithTimeout(ctx, c.cfg.InitTimeout)
	defer cancel()

	if err := sess.Initialize(initCtx); err != nil {
		c.abortCreate(dev)
		if errors.Is(err, context.DeadlineExceeded) {
			return CreateResult{}, fmt.Errorf("%w: initialize", ErrTimeout)
		}
		return CreateResult{}, fmt.Errorf("initialize: %w", err)
	}

	select {
	case res := <-first:
		return res, nil
	case <-time.After(c.cfg.CreateAnswerGrace):
		return CreateResult{DeviceID: deviceID, Started: true}, nil
	case <-ctx.Done():
		return CreateResult{}, ctx.Err()
	}
}

// abortCreate rolls back a failed create: teardown and entry removal.
func (c *Controller) abortCreate(dev *DeviceSession) {
	unlock := c.lock(dev.ID)
	defer unlock()

	if c.registry.Get(dev.ID) != dev {
		return
	}
	c.stopAndReclaim(context.Background(), dev)
	c.removeEntry(context.Background(), dev.ID)
	c.log.Error("device.create.abort", "device_id", dev.ID)
}

// consumeEvents is the single per-device event loop. Events are applied to
// the state machine in arrival order; the first decisive event answers the
// pending create request via the buffered channel.
func (c *Controller) consumeEvents(dev *DeviceSession, sess waclient.Session, first chan<- CreateResult) {
	answered := false
	answer := func(res CreateResult) {
		if answered {
			return
		}
		answered = true
		first <- res
	}

	for ev := range sess.Events() {
		metricEvents.WithLabelValues(string(ev.Kind)).Inc()
		now := c.clock.Now()

		switch ev.Kind {
		case waclient.EventQR:
			c.transition(dev, StatusAwaitingScan, now)
			c.hooks.Status(dev.ID, hookQR, "")
			answer(CreateResult{DeviceID: dev.ID, Challenge: ev.Code})

		case waclient.EventReady:
			c.transition(dev, StatusReady, now)
			c.log.Info("device.ready", "device_id", dev.ID, "phone", ev.Phone)
			c.hooks.Status(dev.ID, hookReady, ev.Phone)
			answer(CreateResult{DeviceID: dev.ID, Ready: true, Phone: ev.Phone})

		case waclient.EventAuthFailure:
			c.transition(dev, StatusAuthFailed, now)
			c.log.Warn("device.auth_failure", "device_id", dev.ID, "reason", ev.Reason)
			c.hooks.Status(dev.ID, hookFailed, "")
			c.terminate(dev)
			answer(CreateResult{DeviceID: dev.ID, AuthFailed: true})

		case waclient.EventDisconnected:
			c.transition(dev, StatusDisconnected, now)
			c.log.Info("device.disconnected", "device_id", dev.ID)
			c.hooks.Status(dev.ID, hookDisconnected, ev.Phone)
			c.terminate(dev)

		case waclient.EventMessage:
			if ev.Message == nil {
				continue
			}
			if _, err := c.store.Append(context.Background(), dev.ID, *ev.Message, now); err != nil {
				c.log.Error("device.message.append.fail", "device_id", dev.ID, "err", err)
				continue
			}
			metricMessages.Inc()
			c.hooks.Message(dev.ID, ev.Message)
		}
	}
}

func (c *Controller) transition(dev *DeviceSession, to Status, now time.Time) {
	dev.setStatus(to, now)
	metricTransitions.WithLabelValues(string(to)).Inc()
}

// terminate runs teardown after a terminal event. The registry entry is kept
// (terminal status visible) unless RemoveOnTerminal is set.
func (c *Controller) terminate(dev *DeviceSession) {
	unlock := c.lock(dev.ID)
	defer unlock()

	c.stopAndReclaim(context.Background(), dev)
	if c.cfg.RemoveOnTerminal {
		c.removeEntry(context.Background(), dev.ID)
	}
}

// stopAndReclaim detaches the session handle (single-shot), stops the client,
// and reclaims its on-disk storage. Failures are logged, never propagated:
// teardown must not block a lifecycle transition.
func (c *Controller) stopAndReclaim(ctx context.Context, dev *DeviceSession) {
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.TeardownTimeout)
	defer cancel()

	if sess := dev.detach(); sess != nil {
		if err := sess.Logout(tctx); err != nil {
			c.log.Warn("device.logout.fail", "device_id", dev.ID, "err", err)
		}
		if err := sess.Destroy(tctx); err != nil {
			c.log.Warn("device.destroy.fail", "device_id", dev.ID, "err", err)
		}
	}

	if err := c.teardown.Run(tctx, dev.ID); err != nil {
		metricTeardownFailures.Inc()
		c.log.Error("device.teardown.fail", "device_id", dev.ID, "err", err)
	}
}

func (c *Controller) removeEntry(ctx context.Context, deviceID string) {
	if c.registry.Remove(deviceID) {
		metricLiveDevices.Dec()
	}
	if err := c.store.Drop(ctx, deviceID); err != nil {
		c.log.Warn("device.messages.drop.fail", "device_id", deviceID, "err", err)
	}
}

// Disconnect stops the device's client, reclaims storage, and removes the
// registry entry with its buffered messages. Unknown devices report
// ErrDeviceNotFound.
func (c *Controller) Disconnect(ctx context.Context, deviceID string) error {
	unlock := c.lock(deviceID)
	defer unlock()

	dev := c.registry.Get(deviceID)
	if dev == nil {
		return ErrDeviceNotFound
	}

	phone := ""
	if sess := dev.Session(); sess != nil {
		phone = sess.Info().Phone
	}

	c.transition(dev, StatusDisconnected, c.clock.Now())
	c.stopAndReclaim(ctx, dev)
	c.removeEntry(ctx, deviceID)

	c.log.Info("device.disconnect", "device_id", deviceID)
	c.hooks.Status(deviceID, hookDisconnected, phone)
	return nil
}

// Reconnect relabels a still-live session. It never restarts the client;
// absent devices and torn-down sessions fail.
func (c *Controller) Reconnect(ctx context.Context, deviceID string) (Record, error) {
	unlock := c.lock(deviceID)
	defer unlock()

	dev := c.registry.Get(deviceID)
	if dev == nil {
		return Record{}, ErrDeviceNotFound
	}
	if dev.Session() == nil {
		return Record{}, ErrSessionGone
	}

	c.transition(dev, StatusReconnected, c.clock.Now())
	st, _ := dev.Status()

	return Record{
		ID:              deviceID,
		Status:          st,
		LastReconnected: c.clock.Today(),
	}, nil
}

// DeviceStatus is a pure registry read.
func (c *Controller) DeviceStatus(deviceID string) (Status, error) {
	dev := c.registry.Get(deviceID)
	if dev == nil {
		return "", ErrDeviceNotFound
	}
	st, _ := dev.Status()
	return st, nil
}

// Messages returns the device's buffered messages in arrival order.
func (c *Controller) Messages(ctx context.Context, deviceID string) ([]StoredMessage, error) {
	if c.registry.Get(deviceID) == nil {
		return nil, ErrDeviceNotFound
	}
	return c.store.List(ctx, deviceID)
}

// List snapshots all registered devices.
func (c *Controller) List() []Info {
	return c.registry.ListAll()
}

// Send delivers one message, optionally with an attachment fetched from a
// caller-supplied URL. Requires a live session.
func (c *Controller) Send(ctx context.Context, in SendInput) error {
	dev := c.registry.Get(in.DeviceID)
	if dev == nil {
		return ErrDeviceNotFound
	}
	sess := dev.Session()
	if sess == nil {
		return ErrSessionGone
	}

	target, err := ResolveTarget(in.Number, in.ChatID, in.IsGroup)
	if err != nil {
		return err
	}

	var media *waclient.Media
	if in.AttachmentURL != "" {
		media, err = c.media.Fetch(ctx, in.AttachmentURL)
		if err != nil {
			return err
		}
	}

	if err := sess.Send(ctx, target, in.Body, media); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	c.log.Info("device.send", "device_id", in.DeviceID, "target", target, "media", media != nil)
	return nil
}

// Chats lists the device's conversations; onlyGroups filters to groups.
func (c *Controller) Chats(ctx context.Context, deviceID string, onlyGroups bool) ([]waclient.Chat, error) {
	dev := c.registry.Get(deviceID)
	if dev == nil {
		return nil, ErrDeviceNotFound
	}
	sess := dev.Session()
	if sess == nil {
		return nil, ErrSessionGone
	}

	chats, err := sess.Chats(ctx)
	if err != nil {
		return nil, err
	}
	if !onlyGroups {
		return chats, nil
	}

	groups := chats[:0:0]
	for _, ch := range chats {
		if ch.IsGroup {
			groups = append(groups, ch)
		}
	}
	return groups, nil
}

// Execute dispatches an allow-listed client operation. Dispatch is disabled
// unless configured on; disabled or unlisted methods never touch the client.
func (c *Controller) Execute(ctx context.Context, deviceID, method string, args []any) (any, error) {
	if !c.cfg.ExecuteEnabled {
		return nil, fmt.Errorf("%w: execute dispatch disabled", ErrMethodNotPermitted)
	}

	dev := c.registry.Get(deviceID)
	if dev == nil {
		return nil, ErrDeviceNotFound
	}
	sess := dev.Session()
	if sess == nil {
		return nil, ErrSessionGone
	}

	actual, ok := resolveMethod(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotPermitted, method)
	}

	out, err := sess.Execute(ctx, actual, args)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", actual, err)
	}
	return out, nil
}

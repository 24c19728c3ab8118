package device

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/indeses-deepak/explore/cmd/internal/sessiondir"
	"github.com/indeses-deepak/explore/cmd/internal/timeutil"
	"github.com/indeses-deepak/explore/cmd/internal/waclient"
	"github.com/indeses-deepak/explore/cmd/internal/webhook"
)

type sendCall struct {
	chatID string
	body   string
	media  *waclient.Media
}

// fakeSession scripts the agent side of the lifecycle: tests pre-queue events
// and observe which commands the controller issued.
type fakeSession struct {
	events    chan waclient.Event
	closeOnce sync.Once

	mu           sync.Mutex
	initErr      error
	chats        []waclient.Chat
	info         waclient.Info
	initCalls    int
	logoutCalls  int
	destroyCalls int
	execMethods  []string
	sent         []sendCall
}

func newFakeSession() *fakeSession {
	return &fakeSession{events: make(chan waclient.Event, 16)}
}

func (s *fakeSession) emit(ev waclient.Event) { s.events <- ev }

func (s *fakeSession) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalls++
	return s.initErr
}

func (s *fakeSession) Logout(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutCalls++
	return nil
}

func (s *fakeSession) Destroy(_ context.Context) error {
	s.mu.Lock()
	s.destroyCalls++
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.events) })
	return nil
}

func (s *fakeSession) Send(_ context.Context, chatID, body string, media *waclient.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sendCall{chatID: chatID, body: body, media: media})
	return nil
}

func (s *fakeSession) Chats(_ context.Context) ([]waclient.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chats, nil
}

func (s *fakeSession) Execute(_ context.Context, method string, _ []any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execMethods = append(s.execMethods, method)
	return "ok", nil
}

func (s *fakeSession) Info() waclient.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *fakeSession) Events() <-chan waclient.Event { return s.events }

func (s *fakeSession) counts() (init, logout, destroy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initCalls, s.logoutCalls, s.destroyCalls
}

func (s *fakeSession) sentCalls() []sendCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sendCall(nil), s.sent...)
}

func (s *fakeSession) executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.execMethods...)
}

// fakeFactory hands out pre-queued sessions in order.
type fakeFactory struct {
	mu    sync.Mutex
	queue []*fakeSession
	err   error
	calls int
}

func (f *fakeFactory) New(_ context.Context, _ string) (waclient.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queue) == 0 {
		return nil, errors.New("no session queued")
	}
	s := f.queue[0]
	f.queue = f.queue[1:]
	return s, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(t *testing.T, cfg Config, factory waclient.Factory) (*Controller, *Registry, *InMemoryStore) {
	t.Helper()

	clock, err := timeutil.NewClock("UTC")
	if err != nil {
		t.Fatalf("clock: %v", err)
	}

	log := discardLogger()
	reg := NewRegistry()
	store := NewInMemoryStore()
	hooks := webhook.NewNotifier(log, clock, "", false, 0)
	td := sessiondir.NewTeardown(log, t.TempDir(), sessiondir.NewReclaimer(log, 1, time.Millisecond))

	return NewController(log, cfg, clock, reg, factory, store, hooks, td, nil), reg, store
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCreateAnswersChallenge(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventQR, Code: "scan-me"})
	ctrl, reg, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	res, err := ctrl.Create(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.DeviceID != "dev-1" || res.Challenge != "scan-me" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Ready || res.AuthFailed || res.Started {
		t.Fatalf("challenge result must not carry other outcomes: %+v", res)
	}

	st, _ := reg.Get("dev-1").Status()
	if st != StatusAwaitingScan {
		t.Fatalf("status = %q, want %q", st, StatusAwaitingScan)
	}

	init, _, _ := sess.counts()
	if init != 1 {
		t.Fatalf("initCalls = %d, want 1", init)
	}
}

func TestCreateReadyFromStoredCredentials(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "919999999999"})
	ctrl, reg, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	res, err := ctrl.Create(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.Ready || res.Phone != "919999999999" {
		t.Fatalf("unexpected result: %+v", res)
	}

	st, _ := reg.Get("dev-1").Status()
	if st != StatusReady {
		t.Fatalf("status = %q, want %q", st, StatusReady)
	}
}

func TestCreateAuthFailureTearsDownButKeepsEntry(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventAuthFailure, Reason: "rejected"})
	ctrl, reg, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	res, err := ctrl.Create(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.AuthFailed {
		t.Fatalf("unexpected result: %+v", res)
	}

	dev := reg.Get("dev-1")
	if dev == nil {
		t.Fatal("terminal entry must stay registered for introspection")
	}
	st, _ := dev.Status()
	if st != StatusAuthFailed {
		t.Fatalf("status = %q, want %q", st, StatusAuthFailed)
	}
	if dev.Session() != nil {
		t.Fatal("session must be detached after teardown")
	}

	_, logout, destroy := sess.counts()
	if logout != 1 || destroy != 1 {
		t.Fatalf("teardown calls: logout=%d destroy=%d, want 1/1", logout, destroy)
	}
}

func TestCreateRemovesEntryOnTerminalWhenConfigured(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventAuthFailure})
	ctrl, reg, _ := newTestController(t, Config{RemoveOnTerminal: true}, &fakeFactory{queue: []*fakeSession{sess}})

	res, err := ctrl.Create(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.AuthFailed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if reg.Get("dev-1") != nil {
		t.Fatal("entry must be removed when terminal removal is configured")
	}
}

func TestCreateStartedWhenNoEventArrives(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	ctrl, reg, _ := newTestController(t, Config{CreateAnswerGrace: 20 * time.Millisecond},
		&fakeFactory{queue: []*fakeSession{sess}})

	res, err := ctrl.Create(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.Started {
		t.Fatalf("unexpected result: %+v", res)
	}

	st, _ := reg.Get("dev-1").Status()
	if st != StatusInitializing {
		t.Fatalf("status = %q, want %q", st, StatusInitializing)
	}
}

func TestCreateReplacesExistingDevice(t *testing.T) {
	t.Parallel()

	first := newFakeSession()
	first.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	second := newFakeSession()
	second.emit(waclient.Event{Kind: waclient.EventReady, Phone: "222"})

	factory := &fakeFactory{queue: []*fakeSession{first, second}}
	ctrl, reg, _ := newTestController(t, Config{}, factory)

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	res, err := ctrl.Create(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if res.Phone != "222" {
		t.Fatalf("second create answered by wrong session: %+v", res)
	}

	_, _, destroy := first.counts()
	if destroy != 1 {
		t.Fatalf("replaced session destroyCalls = %d, want 1", destroy)
	}
	if factory.calls != 2 {
		t.Fatalf("factory calls = %d, want 2", factory.calls)
	}
	if reg.Get("dev-1").Session() == nil {
		t.Fatal("new entry must be live")
	}
}

func TestCreateFactoryFailure(t *testing.T) {
	t.Parallel()

	ctrl, reg, _ := newTestController(t, Config{}, &fakeFactory{err: errors.New("agent down")})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err == nil {
		t.Fatal("expected error")
	}
	if reg.Get("dev-1") != nil {
		t.Fatal("failed create must not leave an entry")
	}
}

func TestCreateInitializeFailureRollsBack(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.initErr = errors.New("chromium crashed")
	ctrl, reg, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err == nil {
		t.Fatal("expected error")
	}
	if reg.Get("dev-1") != nil {
		t.Fatal("failed create must roll back the entry")
	}
	_, _, destroy := sess.counts()
	if destroy != 1 {
		t.Fatalf("destroyCalls = %d, want 1", destroy)
	}
}

func TestDisconnect(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, reg, store := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess.emit(waclient.Event{Kind: waclient.EventMessage, Message: &waclient.Message{Body: "hi"}})
	waitFor(t, "message buffered", func() bool {
		msgs, _ := store.List(context.Background(), "dev-1")
		return len(msgs) == 1
	})

	if err := ctrl.Disconnect(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if reg.Get("dev-1") != nil {
		t.Fatal("disconnect must remove the entry")
	}
	_, logout, destroy := sess.counts()
	if logout != 1 || destroy != 1 {
		t.Fatalf("teardown calls: logout=%d destroy=%d, want 1/1", logout, destroy)
	}

	msgs, err := store.List(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if msgs != nil {
		t.Fatal("disconnect must drop the message buffer")
	}

	if err := ctrl.Disconnect(context.Background(), "dev-1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("second disconnect err = %v, want ErrDeviceNotFound", err)
	}
}

func TestDisconnectedEventTerminatesSession(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, reg, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess.emit(waclient.Event{Kind: waclient.EventDisconnected, Reason: "phone offline"})

	waitFor(t, "terminal teardown", func() bool {
		dev := reg.Get("dev-1")
		if dev == nil {
			return false
		}
		st, _ := dev.Status()
		return st == StatusDisconnected && dev.Session() == nil
	})
	_ = ctrl
}

func TestReconnect(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Reconnect(context.Background(), "dev-1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("reconnect unknown err = %v, want ErrDeviceNotFound", err)
	}

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, err := ctrl.Reconnect(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	if rec.ID != "dev-1" || rec.Status != StatusReconnected {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.LastReconnected != time.Now().UTC().Format("2006-01-02") {
		t.Fatalf("LastReconnected = %q", rec.LastReconnected)
	}

	init, _, _ := sess.counts()
	if init != 1 {
		t.Fatalf("reconnect must not restart the client, initCalls = %d", init)
	}
}

func TestReconnectAfterTeardownFails(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventAuthFailure})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := ctrl.Reconnect(context.Background(), "dev-1"); !errors.Is(err, ErrSessionGone) {
		t.Fatalf("err = %v, want ErrSessionGone", err)
	}
}

func TestSendResolvesTargets(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := ctrl.Send(context.Background(), SendInput{DeviceID: "dev-1", Number: "919999999999", Body: "hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	err = ctrl.Send(context.Background(), SendInput{DeviceID: "dev-1", ChatID: "120363", IsGroup: true, Body: "group hello"})
	if err != nil {
		t.Fatalf("Send group: %v", err)
	}

	sent := sess.sentCalls()
	if len(sent) != 2 {
		t.Fatalf("sent calls = %d, want 2", len(sent))
	}
	if sent[0].chatID != "919999999999@c.us" || sent[0].body != "hello" {
		t.Fatalf("direct send: %+v", sent[0])
	}
	if sent[1].chatID != "120363@g.us" {
		t.Fatalf("group send: %+v", sent[1])
	}

	err = ctrl.Send(context.Background(), SendInput{DeviceID: "ghost", Number: "1", Body: "x"})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestSendWithAttachment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-fake"))
	}))
	defer srv.Close()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := ctrl.Send(context.Background(), SendInput{
		DeviceID:      "dev-1",
		Number:        "919999999999",
		Body:          "see attached",
		AttachmentURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	sent := sess.sentCalls()
	if len(sent) != 1 || sent[0].media == nil {
		t.Fatalf("attachment missing: %+v", sent)
	}
	if sent[0].media.MimeType != "application/pdf" || sent[0].media.Filename != "media_file" {
		t.Fatalf("media = %+v", sent[0].media)
	}

	err = ctrl.Send(context.Background(), SendInput{
		DeviceID:      "dev-1",
		Number:        "919999999999",
		Body:          "broken",
		AttachmentURL: "http://127.0.0.1:1/nope",
	})
	if !errors.Is(err, ErrMediaFetch) {
		t.Fatalf("err = %v, want ErrMediaFetch", err)
	}
	if len(sess.sentCalls()) != 1 {
		t.Fatal("failed media fetch must not reach the session")
	}
}

func TestExecuteDisabledByDefault(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := ctrl.Execute(context.Background(), "dev-1", "getState", nil)
	if !errors.Is(err, ErrMethodNotPermitted) {
		t.Fatalf("err = %v, want ErrMethodNotPermitted", err)
	}
	if len(sess.executed()) != 0 {
		t.Fatal("disabled dispatch must never touch the client")
	}
}

func TestExecuteAllowList(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, _, _ := newTestController(t, Config{ExecuteEnabled: true}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := ctrl.Execute(context.Background(), "dev-1", "checkRegistered", []any{"919999999999"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "ok" {
		t.Fatalf("out = %v", out)
	}

	_, err = ctrl.Execute(context.Background(), "dev-1", "formatMachine", nil)
	if !errors.Is(err, ErrMethodNotPermitted) {
		t.Fatalf("err = %v, want ErrMethodNotPermitted", err)
	}

	exec := sess.executed()
	if len(exec) != 1 || exec[0] != "isRegisteredUser" {
		t.Fatalf("executed = %v, want [isRegisteredUser]", exec)
	}

	_, err = ctrl.Execute(context.Background(), "ghost", "getState", nil)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestInboundMessagesBufferedInOrder(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, body := range []string{"one", "two", "three"} {
		sess.emit(waclient.Event{Kind: waclient.EventMessage, Message: &waclient.Message{Body: body}})
	}

	waitFor(t, "three messages", func() bool {
		msgs, _ := ctrl.Messages(context.Background(), "dev-1")
		return len(msgs) == 3
	})

	msgs, err := ctrl.Messages(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Body != want {
			t.Fatalf("msgs[%d].Body = %q, want %q", i, msgs[i].Body, want)
		}
		if msgs[i].Seq != int64(i+1) {
			t.Fatalf("msgs[%d].Seq = %d, want %d", i, msgs[i].Seq, i+1)
		}
	}

	if _, err := ctrl.Messages(context.Background(), "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestChatsFiltersGroups(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.chats = []waclient.Chat{
		{ID: "a@c.us", Name: "Alice"},
		{ID: "g1@g.us", Name: "Team", IsGroup: true},
		{ID: "b@c.us", Name: "Bob"},
	}
	sess.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{sess}})

	if _, err := ctrl.Create(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := ctrl.Chats(context.Background(), "dev-1", false)
	if err != nil {
		t.Fatalf("Chats: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all chats = %d, want 3", len(all))
	}

	groups, err := ctrl.Chats(context.Background(), "dev-1", true)
	if err != nil {
		t.Fatalf("Chats groups: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != "g1@g.us" {
		t.Fatalf("groups = %v", groups)
	}
}

func TestDeviceStatusAndList(t *testing.T) {
	t.Parallel()

	s1 := newFakeSession()
	s1.emit(waclient.Event{Kind: waclient.EventReady, Phone: "111"})
	s2 := newFakeSession()
	s2.emit(waclient.Event{Kind: waclient.EventQR, Code: "scan"})
	ctrl, _, _ := newTestController(t, Config{}, &fakeFactory{queue: []*fakeSession{s1, s2}})

	if _, err := ctrl.Create(context.Background(), "bravo"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := ctrl.Create(context.Background(), "alpha"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	st, err := ctrl.DeviceStatus("bravo")
	if err != nil {
		t.Fatalf("DeviceStatus: %v", err)
	}
	if st != StatusReady {
		t.Fatalf("status = %q, want %q", st, StatusReady)
	}
	if _, err := ctrl.DeviceStatus("ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}

	list := ctrl.List()
	if len(list) != 2 || list[0].ID != "alpha" || list[1].ID != "bravo" {
		t.Fatalf("list = %v", list)
	}
	if list[0].Status != StatusAwaitingScan || list[1].Status != StatusReady {
		t.Fatalf("list statuses = %v", list)
	}
}

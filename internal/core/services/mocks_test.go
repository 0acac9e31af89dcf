package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/learnquest/questsync/internal/adapters/driven/storage/memory"
	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/normalisers/entity"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:3000: connect: connection refused")

// --- Mock backend ---

// mockBackend implements driven.BackendAPI for testing.
// Calls fail with offline when it is set, otherwise with the error
// registered for the method, otherwise they return the canned response.
type mockBackend struct {
	mu        sync.Mutex
	offline   bool
	errs      map[string]error
	responses map[string]json.RawMessage
	calls     []string
	bodies    map[string][]any

	// hooks run before the call completes
	hooks map[string]func()
}

var _ driven.BackendAPI = (*mockBackend)(nil)

func newMockBackend() *mockBackend {
	return &mockBackend{
		errs:      make(map[string]error),
		responses: make(map[string]json.RawMessage),
		bodies:    make(map[string][]any),
		hooks:     make(map[string]func()),
	}
}

func (m *mockBackend) setOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

func (m *mockBackend) fail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
}

func (m *mockBackend) respond(method, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[method] = json.RawMessage(body)
}

func (m *mockBackend) count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *mockBackend) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockBackend) sent(method string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.bodies[method]...)
}

func (m *mockBackend) call(method string, body any) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, method)
	if body != nil {
		m.bodies[method] = append(m.bodies[method], body)
	}
	hook := m.hooks[method]
	m.mu.Unlock()

	if hook != nil {
		hook()
	}

	m.mu.Lock()
	offline := m.offline
	err := m.errs[method]
	resp := m.responses[method]
	m.mu.Unlock()

	if offline {
		return nil, errConnRefused
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *mockBackend) Ping(_ context.Context) error {
	_, err := m.call("Ping", nil)
	return err
}

func (m *mockBackend) ListStudents(_ context.Context) (json.RawMessage, error) {
	return m.call("ListStudents", nil)
}

func (m *mockBackend) GetStudent(_ context.Context, id string) (json.RawMessage, error) {
	return m.call("GetStudent", id)
}

func (m *mockBackend) CreateStudent(_ context.Context, body any) (json.RawMessage, error) {
	return m.call("CreateStudent", body)
}

func (m *mockBackend) UpdateStudent(_ context.Context, id string, body any) (json.RawMessage, error) {
	return m.call("UpdateStudent", fmt.Sprintf("%s %s", id, mustJSON(body)))
}

func (m *mockBackend) DeleteStudent(_ context.Context, id string) error {
	_, err := m.call("DeleteStudent", id)
	return err
}

func (m *mockBackend) ListQuests(_ context.Context) (json.RawMessage, error) {
	return m.call("ListQuests", nil)
}

func (m *mockBackend) GetQuest(_ context.Context, id string) (json.RawMessage, error) {
	return m.call("GetQuest", id)
}

func (m *mockBackend) CreateQuest(_ context.Context, body any) (json.RawMessage, error) {
	return m.call("CreateQuest", body)
}

func (m *mockBackend) UpdateQuest(_ context.Context, id string, body any) (json.RawMessage, error) {
	return m.call("UpdateQuest", fmt.Sprintf("%s %s", id, mustJSON(body)))
}

func (m *mockBackend) DeleteQuest(_ context.Context, id string) error {
	_, err := m.call("DeleteQuest", id)
	return err
}

func (m *mockBackend) ListProgress(_ context.Context) (json.RawMessage, error) {
	return m.call("ListProgress", nil)
}

func (m *mockBackend) ListStudentProgress(_ context.Context, studentID string) (json.RawMessage, error) {
	return m.call("ListStudentProgress", studentID)
}

func (m *mockBackend) SubmitProgress(_ context.Context, body any) error {
	_, err := m.call("SubmitProgress", body)
	return err
}

func (m *mockBackend) ListSMSLogs(_ context.Context) (json.RawMessage, error) {
	return m.call("ListSMSLogs", nil)
}

func (m *mockBackend) SendSMS(_ context.Context, body any) error {
	_, err := m.call("SendSMS", body)
	return err
}

func (m *mockBackend) GetRecommendations(_ context.Context, studentID string) (json.RawMessage, error) {
	return m.call("GetRecommendations", studentID)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// --- Mock notifier ---

type mockNotifier struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (m *mockNotifier) Notify(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, n)
}

func (m *mockNotifier) kinds() []domain.NotificationKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]domain.NotificationKind, 0, len(m.notes))
	for _, n := range m.notes {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (m *mockNotifier) last() domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notes) == 0 {
		return domain.Notification{}
	}
	return m.notes[len(m.notes)-1]
}

// --- Clock ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Harness ---

type harness struct {
	engine   *SyncEngine
	cache    *CacheManager
	store    *memory.KeyValueStore
	backend  *mockBackend
	notifier *mockNotifier
	clock    *testClock
	sleeper  *recordingSleeper
}

func newHarness() *harness {
	clock := newTestClock()
	store := memory.NewKeyValueStore()
	norm := entity.New(entity.WithClock(clock.Now))
	cache := NewCacheManager(store, norm, time.Hour)
	cache.now = clock.Now

	backend := newMockBackend()
	notifier := &mockNotifier{}
	engine := NewSyncEngine(backend, cache, norm, notifier, domain.DefaultAppSettings().Sync)
	engine.now = clock.Now
	sleeper := &recordingSleeper{}
	engine.sleep = sleeper.sleep

	return &harness{
		engine:   engine,
		cache:    cache,
		store:    store,
		backend:  backend,
		notifier: notifier,
		clock:    clock,
		sleeper:  sleeper,
	}
}

func (h *harness) queue(ctx context.Context) []domain.PendingOperation {
	return h.cache.PendingOperations(ctx)
}

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnquest/questsync/internal/core/domain"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
	Type   string
}

// newTestServer returns a client wired to a handler that records every
// request before delegating to respond.
func newTestServer(t *testing.T, respond http.HandlerFunc) (*Client, func() []recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Body:   string(body),
			Auth:   r.Header.Get("Authorization"),
			Type:   r.Header.Get("Content-Type"),
		})
		mu.Unlock()
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(domain.APISettings{BaseURL: srv.URL + "/api/", Timeout: 5 * time.Second})
	return client, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), seen...)
	}
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(domain.APISettings{})

	assert.Equal(t, domain.DefaultBaseURL, c.BaseURL())
	assert.Equal(t, domain.DefaultAPITimeout, c.hc.Timeout)
}

func TestClient_Routes(t *testing.T) {
	ctx := context.Background()
	c, requests := newTestServer(t, jsonHandler(http.StatusOK, `{}`))

	calls := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"ping", func() error { return c.Ping(ctx) }, "GET", "/api/health"},
		{"list students", func() error { _, err := c.ListStudents(ctx); return err }, "GET", "/api/students"},
		{"get student", func() error { _, err := c.GetStudent(ctx, "s1"); return err }, "GET", "/api/students/s1"},
		{"create student", func() error { _, err := c.CreateStudent(ctx, map[string]any{"name": "A"}); return err }, "POST", "/api/students"},
		{"update student", func() error { _, err := c.UpdateStudent(ctx, "s1", map[string]any{}); return err }, "PUT", "/api/students/s1"},
		{"delete student", func() error { return c.DeleteStudent(ctx, "s1") }, "DELETE", "/api/students/s1"},
		{"list quests", func() error { _, err := c.ListQuests(ctx); return err }, "GET", "/api/quests"},
		{"get quest", func() error { _, err := c.GetQuest(ctx, "q1"); return err }, "GET", "/api/quests/q1"},
		{"create quest", func() error { _, err := c.CreateQuest(ctx, map[string]any{}); return err }, "POST", "/api/quests"},
		{"update quest", func() error { _, err := c.UpdateQuest(ctx, "q1", map[string]any{}); return err }, "PUT", "/api/quests/q1"},
		{"delete quest", func() error { return c.DeleteQuest(ctx, "q1") }, "DELETE", "/api/quests/q1"},
		{"list progress", func() error { _, err := c.ListProgress(ctx); return err }, "GET", "/api/progress"},
		{"student progress", func() error { _, err := c.ListStudentProgress(ctx, "s1"); return err }, "GET", "/api/progress/s1"},
		{"submit progress", func() error { return c.SubmitProgress(ctx, map[string]any{}) }, "POST", "/api/progress"},
		{"sms logs", func() error { _, err := c.ListSMSLogs(ctx); return err }, "GET", "/api/smslogs"},
		{"send sms", func() error { return c.SendSMS(ctx, map[string]any{}) }, "POST", "/api/sms/send"},
		{"recommendations", func() error { _, err := c.GetRecommendations(ctx, "s1"); return err }, "GET", "/api/recommendations/s1"},
	}

	for _, tc := range calls {
		require.NoError(t, tc.call(), tc.name)
	}

	seen := requests()
	require.Len(t, seen, len(calls))
	for i, tc := range calls {
		assert.Equal(t, tc.method, seen[i].Method, tc.name)
		assert.Equal(t, tc.path, seen[i].Path, tc.name)
	}
}

func TestClient_SendsJSONBody(t *testing.T) {
	c, requests := newTestServer(t, jsonHandler(http.StatusCreated, `{"id":"s-1","name":"Neema"}`))

	raw, err := c.CreateStudent(context.Background(), map[string]any{"name": "Neema", "level": 1})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s-1","name":"Neema"}`, string(raw))
	seen := requests()
	require.Len(t, seen, 1)
	assert.JSONEq(t, `{"name":"Neema","level":1}`, seen[0].Body)
	assert.Equal(t, "application/json", seen[0].Type)
	assert.Empty(t, seen[0].Auth)
}

func TestClient_EscapesIDs(t *testing.T) {
	c, requests := newTestServer(t, jsonHandler(http.StatusOK, `{}`))

	_, err := c.GetQuest(context.Background(), "a/b c")

	require.NoError(t, err)
	assert.Equal(t, "/api/quests/a%2Fb%20c", requests()[0].Path)
}

func TestClient_RemoteErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		message   string
		rejection bool
		notFound  bool
	}{
		{"error field", http.StatusNotFound, `{"error":"Quest not found"}`, "Quest not found", true, true},
		{"message field", http.StatusBadRequest, `{"message":"title required"}`, "title required", true, false},
		{"plain text", http.StatusInternalServerError, "boom", "boom", false, false},
		{"empty body", http.StatusServiceUnavailable, "", "Service Unavailable", false, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, "slow down", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, jsonHandler(tt.status, tt.body))

			_, err := c.GetQuest(context.Background(), "q1")

			var remoteErr *domain.RemoteError
			require.True(t, errors.As(err, &remoteErr))
			assert.Equal(t, tt.status, remoteErr.StatusCode)
			assert.Equal(t, tt.message, remoteErr.Message)
			assert.Contains(t, remoteErr.URL, "/api/quests/q1")
			assert.Equal(t, tt.rejection, domain.IsRejection(err))
			assert.Equal(t, tt.notFound, domain.IsNotFound(err))
		})
	}
}

func TestClient_TransportErrorIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(domain.APISettings{BaseURL: base, Timeout: time.Second})
	err := c.Ping(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOffline)
	assert.False(t, domain.IsRejection(err))
}

func TestClient_BearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(domain.APISettings{BaseURL: srv.URL, Token: "secret"})

	require.NoError(t, c.DeleteQuest(context.Background(), "q1"))
	assert.Equal(t, "Bearer secret", auth)
}

func TestClient_NoContent(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	raw, err := c.UpdateQuest(context.Background(), "q1", json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestClient_CancelledContext(t *testing.T) {
	c, requests := newTestServer(t, jsonHandler(http.StatusOK, `{}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListQuests(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, requests())
}

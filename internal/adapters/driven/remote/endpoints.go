package remote

import (
	"context"
	"encoding/json"
	"net/http"
)

// Ping checks GET /health.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// --- Students ---

func (c *Client) ListStudents(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/students", nil)
}

func (c *Client) GetStudent(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/students/"+escape(id), nil)
}

func (c *Client) CreateStudent(ctx context.Context, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/students", body)
}

func (c *Client) UpdateStudent(ctx context.Context, id string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, "/students/"+escape(id), body)
}

func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/students/"+escape(id), nil)
	return err
}

// --- Quests ---

func (c *Client) ListQuests(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/quests", nil)
}

func (c *Client) GetQuest(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/quests/"+escape(id), nil)
}

func (c *Client) CreateQuest(ctx context.Context, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/quests", body)
}

func (c *Client) UpdateQuest(ctx context.Context, id string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, "/quests/"+escape(id), body)
}

func (c *Client) DeleteQuest(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/quests/"+escape(id), nil)
	return err
}

// --- Progress ---

func (c *Client) ListProgress(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/progress", nil)
}

func (c *Client) ListStudentProgress(ctx context.Context, studentID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/progress/"+escape(studentID), nil)
}

func (c *Client) SubmitProgress(ctx context.Context, body any) error {
	_, err := c.do(ctx, http.MethodPost, "/progress", body)
	return err
}

// --- SMS ---

func (c *Client) ListSMSLogs(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/smslogs", nil)
}

func (c *Client) SendSMS(ctx context.Context, body any) error {
	_, err := c.do(ctx, http.MethodPost, "/sms/send", body)
	return err
}

// --- Recommendations ---

func (c *Client) GetRecommendations(ctx context.Context, studentID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/recommendations/"+escape(studentID), nil)
}

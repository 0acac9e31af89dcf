package driven

import (
	"context"
	"encoding/json"
)

// BackendAPI is the remote LearnQuest API.
//
// Read methods return the raw JSON payload; the core normalises it.
// Any transport failure or non-2xx response is returned as an error,
// non-2xx responses as *domain.RemoteError.
type BackendAPI interface {
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	ListStudents(ctx context.Context) (json.RawMessage, error)
	GetStudent(ctx context.Context, id string) (json.RawMessage, error)
	CreateStudent(ctx context.Context, body any) (json.RawMessage, error)
	UpdateStudent(ctx context.Context, id string, body any) (json.RawMessage, error)
	DeleteStudent(ctx context.Context, id string) error

	ListQuests(ctx context.Context) (json.RawMessage, error)
	GetQuest(ctx context.Context, id string) (json.RawMessage, error)
	CreateQuest(ctx context.Context, body any) (json.RawMessage, error)
	UpdateQuest(ctx context.Context, id string, body any) (json.RawMessage, error)
	DeleteQuest(ctx context.Context, id string) error

	ListProgress(ctx context.Context) (json.RawMessage, error)
	ListStudentProgress(ctx context.Context, studentID string) (json.RawMessage, error)
	SubmitProgress(ctx context.Context, body any) error

	ListSMSLogs(ctx context.Context) (json.RawMessage, error)
	SendSMS(ctx context.Context, body any) error

	GetRecommendations(ctx context.Context, studentID string) (json.RawMessage, error)
}

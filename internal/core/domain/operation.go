package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// OperationKind tags a pending operation on the wire.
type OperationKind string

// Known operation kinds.
const (
	KindCreateQuest    OperationKind = "create-quest"
	KindUpdateQuest    OperationKind = "update-quest"
	KindDeleteQuest    OperationKind = "delete-quest"
	KindProgressUpdate OperationKind = "progress-update"
	KindCreateStudent  OperationKind = "create-student"
	KindUpdateStudent  OperationKind = "update-student"
	KindDeleteStudent  OperationKind = "delete-student"
	KindSendSMS        OperationKind = "send-sms"
)

// Operation is a deferred mutation. The set of implementations is closed:
// CreateQuestOp, UpdateQuestOp, DeleteQuestOp, ProgressUpdateOp,
// CreateStudentOp, UpdateStudentOp, DeleteStudentOp, SendSMSOp and UnknownOp.
type Operation interface {
	// Kind returns the wire tag of the operation.
	Kind() OperationKind

	// TargetID returns the id of the entity the operation applies to, if any.
	TargetID() string

	operation()
}

// CreateQuestOp creates a quest that was first stored under a temporary id.
type CreateQuestOp struct {
	Quest Quest
}

// UpdateQuestOp replaces a quest with its locally merged state.
type UpdateQuestOp struct {
	QuestID string
	Quest   Quest
}

// DeleteQuestOp deletes a quest.
type DeleteQuestOp struct {
	QuestID string
}

// ProgressUpdateOp submits a progress record.
type ProgressUpdateOp struct {
	Progress Progress
}

// CreateStudentOp creates a student that was first stored under a temporary id.
type CreateStudentOp struct {
	Student Student
}

// UpdateStudentOp applies a partial student update.
type UpdateStudentOp struct {
	StudentID string
	Patch     StudentPatch
}

// DeleteStudentOp deletes a student.
type DeleteStudentOp struct {
	StudentID string
}

// SendSMSOp sends a parent SMS.
type SendSMSOp struct {
	Request SMSRequest
}

// UnknownOp is an operation this client cannot interpret.
// Its encoding is kept verbatim so newer clients can still replay it.
type UnknownOp struct {
	RawKind string
	Raw     json.RawMessage
}

func (CreateQuestOp) Kind() OperationKind    { return KindCreateQuest }
func (UpdateQuestOp) Kind() OperationKind    { return KindUpdateQuest }
func (DeleteQuestOp) Kind() OperationKind    { return KindDeleteQuest }
func (ProgressUpdateOp) Kind() OperationKind { return KindProgressUpdate }
func (CreateStudentOp) Kind() OperationKind  { return KindCreateStudent }
func (UpdateStudentOp) Kind() OperationKind  { return KindUpdateStudent }
func (DeleteStudentOp) Kind() OperationKind  { return KindDeleteStudent }
func (SendSMSOp) Kind() OperationKind        { return KindSendSMS }
func (o UnknownOp) Kind() OperationKind      { return OperationKind(o.RawKind) }

func (o CreateQuestOp) TargetID() string   { return o.Quest.ID }
func (o UpdateQuestOp) TargetID() string   { return o.QuestID }
func (o DeleteQuestOp) TargetID() string   { return o.QuestID }
func (ProgressUpdateOp) TargetID() string  { return "" }
func (o CreateStudentOp) TargetID() string { return o.Student.ID }
func (o UpdateStudentOp) TargetID() string { return o.StudentID }
func (o DeleteStudentOp) TargetID() string { return o.StudentID }
func (SendSMSOp) TargetID() string         { return "" }
func (UnknownOp) TargetID() string         { return "" }

func (CreateQuestOp) operation()    {}
func (UpdateQuestOp) operation()    {}
func (DeleteQuestOp) operation()    {}
func (ProgressUpdateOp) operation() {}
func (CreateStudentOp) operation()  {}
func (UpdateStudentOp) operation()  {}
func (DeleteStudentOp) operation()  {}
func (SendSMSOp) operation()        {}
func (UnknownOp) operation()        {}

// PendingOperation is a queued operation with its enqueue time.
// A zero EnqueuedAt means the entry carries no timestamp and is
// exempt from age-based eviction.
type PendingOperation struct {
	Op         Operation
	EnqueuedAt time.Time
}

// HasTimestamp reports whether the operation records when it was queued.
func (p PendingOperation) HasTimestamp() bool {
	return !p.EnqueuedAt.IsZero()
}

// operationEnvelope is the persisted shape of a pending operation.
type operationEnvelope struct {
	Type      string          `json:"type,omitempty"`
	ID        string          `json:"id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp *int64          `json:"timestamp,omitempty"`
}

// MarshalJSON encodes the operation as {type, id, data, timestamp}.
// Unknown operations are written back exactly as they were read.
func (p PendingOperation) MarshalJSON() ([]byte, error) {
	if unknown, ok := p.Op.(UnknownOp); ok {
		if len(unknown.Raw) == 0 {
			return nil, fmt.Errorf("unknown operation %q has no encoding", unknown.RawKind)
		}
		return unknown.Raw, nil
	}
	if p.Op == nil {
		return nil, fmt.Errorf("pending operation has no operation")
	}

	var data any
	switch op := p.Op.(type) {
	case CreateQuestOp:
		data = op.Quest
	case UpdateQuestOp:
		data = op.Quest
	case DeleteQuestOp:
		data = nil
	case ProgressUpdateOp:
		data = op.Progress
	case CreateStudentOp:
		data = op.Student
	case UpdateStudentOp:
		data = op.Patch
	case DeleteStudentOp:
		data = nil
	case SendSMSOp:
		data = op.Request
	}

	env := operationEnvelope{
		Type: string(p.Op.Kind()),
		ID:   p.Op.TargetID(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshalling %s data: %w", p.Op.Kind(), err)
		}
		env.Data = raw
	}
	if p.HasTimestamp() {
		ms := p.EnqueuedAt.UnixMilli()
		env.Timestamp = &ms
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes a persisted operation. An entry without a type is
// a legacy progress submission. Entries whose type is unknown, or whose
// data cannot be decoded, become UnknownOp so they are never dropped.
func (p *PendingOperation) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("pending operation is not an object")
	}
	kept := append(json.RawMessage(nil), trimmed...)

	var env operationEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		// The type field may be a non-string. Keep the entry as unknown.
		p.Op = UnknownOp{Raw: kept}
		p.EnqueuedAt = time.Time{}
		return nil //nolint:nilerr // undecodable envelopes are preserved, not rejected
	}

	p.EnqueuedAt = time.Time{}
	if env.Timestamp != nil {
		p.EnqueuedAt = time.UnixMilli(*env.Timestamp).UTC()
	}

	if env.Type == "" {
		var progress Progress
		if err := json.Unmarshal(trimmed, &progress); err != nil {
			p.Op = UnknownOp{Raw: kept}
			return nil //nolint:nilerr // preserved as unknown
		}
		p.Op = ProgressUpdateOp{Progress: progress}
		return nil
	}

	op, err := decodeOperation(OperationKind(env.Type), env.ID, env.Data)
	if err != nil {
		p.Op = UnknownOp{RawKind: env.Type, Raw: kept}
		return nil //nolint:nilerr // preserved as unknown
	}
	p.Op = op
	return nil
}

func decodeOperation(kind OperationKind, id string, data json.RawMessage) (Operation, error) {
	decode := func(v any) error {
		if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			return fmt.Errorf("%s: data missing", kind)
		}
		return json.Unmarshal(data, v)
	}

	switch kind {
	case KindCreateQuest:
		var q Quest
		if err := decode(&q); err != nil {
			return nil, err
		}
		return CreateQuestOp{Quest: q}, nil
	case KindUpdateQuest:
		var q Quest
		if err := decode(&q); err != nil {
			return nil, err
		}
		if id == "" {
			id = q.ID
		}
		return UpdateQuestOp{QuestID: id, Quest: q}, nil
	case KindDeleteQuest:
		if id == "" {
			return nil, fmt.Errorf("%s: id missing", kind)
		}
		return DeleteQuestOp{QuestID: id}, nil
	case KindProgressUpdate:
		var pr Progress
		if err := decode(&pr); err != nil {
			return nil, err
		}
		return ProgressUpdateOp{Progress: pr}, nil
	case KindCreateStudent:
		var s Student
		if err := decode(&s); err != nil {
			return nil, err
		}
		if s.ID == "" {
			s.ID = id
		}
		return CreateStudentOp{Student: s}, nil
	case KindUpdateStudent:
		var patch StudentPatch
		if err := decode(&patch); err != nil {
			return nil, err
		}
		if id == "" {
			return nil, fmt.Errorf("%s: id missing", kind)
		}
		return UpdateStudentOp{StudentID: id, Patch: patch}, nil
	case KindDeleteStudent:
		if id == "" {
			return nil, fmt.Errorf("%s: id missing", kind)
		}
		return DeleteStudentOp{StudentID: id}, nil
	case KindSendSMS:
		var req SMSRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		return SendSMSOp{Request: req}, nil
	default:
		return nil, fmt.Errorf("unsupported operation kind %q", kind)
	}
}

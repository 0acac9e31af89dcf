package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driving"
)

// mockSync records writes and serves canned reads.
type mockSync struct {
	students []domain.Student
	quests   []domain.Quest
	progress []domain.Progress
	smsLogs  []domain.SMSLog
	rec      domain.RecommendationResponse
	outcome  domain.WriteOutcome
	err      error

	progressFor  string
	drafts       []domain.StudentDraft
	patches      map[string]domain.StudentPatch
	questDrafts  []domain.Quest
	questPatches map[string]domain.QuestPatch
	deleted      []string
	submitted    []domain.Progress
	sent         []domain.SMSRequest
}

func (m *mockSync) FetchStudents(context.Context) []domain.Student { return m.students }

func (m *mockSync) FetchStudent(_ context.Context, id string) (*domain.Student, bool) {
	for i := range m.students {
		if m.students[i].ID == id {
			return &m.students[i], true
		}
	}
	return nil, false
}

func (m *mockSync) FetchQuests(context.Context) []domain.Quest { return m.quests }

func (m *mockSync) FetchQuest(_ context.Context, id string) (*domain.Quest, bool) {
	for i := range m.quests {
		if m.quests[i].ID == id {
			return &m.quests[i], true
		}
	}
	return nil, false
}

func (m *mockSync) FetchProgress(_ context.Context, studentID string) []domain.Progress {
	m.progressFor = studentID
	var out []domain.Progress
	for _, p := range m.progress {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out
}

func (m *mockSync) FetchAllProgress(context.Context) []domain.Progress { return m.progress }

func (m *mockSync) FetchSMSLogs(context.Context) []domain.SMSLog { return m.smsLogs }

func (m *mockSync) FetchRecommendations(context.Context, string) domain.RecommendationResponse {
	return m.rec
}

func (m *mockSync) SubmitProgress(_ context.Context, p domain.Progress) (domain.WriteOutcome, error) {
	m.submitted = append(m.submitted, p)
	return m.outcome, m.err
}

func (m *mockSync) CreateStudent(_ context.Context, draft domain.StudentDraft) (*domain.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.drafts = append(m.drafts, draft)
	return &domain.Student{ID: "srv-1", Name: draft.Name, Level: draft.Level}, nil
}

func (m *mockSync) UpdateStudent(_ context.Context, id string, patch domain.StudentPatch) (*domain.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.patches == nil {
		m.patches = map[string]domain.StudentPatch{}
	}
	m.patches[id] = patch
	s := patch.Apply(domain.Student{ID: id})
	return &s, nil
}

func (m *mockSync) DeleteStudent(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockSync) CreateQuest(_ context.Context, draft domain.Quest) (*domain.Quest, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.questDrafts = append(m.questDrafts, draft)
	draft.ID = "q-new"
	return &draft, nil
}

func (m *mockSync) UpdateQuest(_ context.Context, id string, patch domain.QuestPatch) (*domain.Quest, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.questPatches == nil {
		m.questPatches = map[string]domain.QuestPatch{}
	}
	m.questPatches[id] = patch
	q := patch.Apply(domain.Quest{ID: id})
	return &q, nil
}

func (m *mockSync) DeleteQuest(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockSync) SendSMS(_ context.Context, req domain.SMSRequest) (domain.WriteOutcome, error) {
	m.sent = append(m.sent, req)
	return m.outcome, m.err
}

type mockReconciler struct {
	cleanup domain.CleanupReport
	report  domain.ReplayReport
	err     error
	calls   int
}

func (m *mockReconciler) Cleanup(context.Context) (domain.CleanupReport, error) {
	return m.cleanup, m.err
}

func (m *mockReconciler) Replay(context.Context) (domain.ReplayReport, error) {
	return m.report, m.err
}

func (m *mockReconciler) Reconcile(context.Context) (domain.CleanupReport, domain.ReplayReport, error) {
	m.calls++
	return m.cleanup, m.report, m.err
}

type mockQueue struct {
	pending  []domain.PendingOperation
	rejected []domain.PendingOperation
	cache    []driving.CacheStatus
	cleared  bool
}

func (m *mockQueue) PendingOperations(context.Context) []domain.PendingOperation { return m.pending }

func (m *mockQueue) RejectedOperations(context.Context) []domain.PendingOperation {
	return m.rejected
}

func (m *mockQueue) ClearRejected(context.Context) error {
	m.cleared = true
	m.rejected = nil
	return nil
}

func (m *mockQueue) CacheStatus(context.Context) []driving.CacheStatus { return m.cache }

type mockWatcher struct {
	startErr error
	started  int
	stopped  int
	online   bool
}

func (m *mockWatcher) Start(context.Context) error {
	m.started++
	return m.startErr
}

func (m *mockWatcher) Stop() error {
	m.stopped++
	return nil
}

func (m *mockWatcher) SetOnline(_ context.Context, online bool) { m.online = online }

func (m *mockWatcher) IsOnline() bool { return m.online }

type mockSettings struct {
	settings domain.AppSettings
	saved    int
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	m.saved++
	return nil
}

func (m *mockSettings) SetBaseURL(baseURL string) error {
	if !strings.HasPrefix(baseURL, "http") {
		return domain.ErrInvalidInput
	}
	m.settings.API.BaseURL = strings.TrimRight(baseURL, "/")
	return nil
}

func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

type mockProber struct {
	err error
}

func (m *mockProber) Ping(context.Context) error { return m.err }

var errBoom = errors.New("boom")

// mocks bundles one of each fake.
type mocks struct {
	sync       *mockSync
	reconciler *mockReconciler
	queue      *mockQueue
	watcher    *mockWatcher
	settings   *mockSettings
	prober     *mockProber
}

func newMocks() *mocks {
	return &mocks{
		sync:       &mockSync{},
		reconciler: &mockReconciler{},
		queue:      &mockQueue{},
		watcher:    &mockWatcher{},
		settings:   &mockSettings{settings: domain.DefaultAppSettings()},
		prober:     &mockProber{},
	}
}

func (m *mocks) services() *Services {
	return &Services{
		Sync:       m.sync,
		Reconciler: m.reconciler,
		Queue:      m.queue,
		Watcher:    m.watcher,
		Settings:   m.settings,
		Prober:     m.prober,
	}
}

// execute runs the root command with args and returns its combined output.
// Flags are reset afterwards so tests do not leak values into each other.
func execute(t *testing.T, m *mocks, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, m, "", args...)
}

func executeWithInput(t *testing.T, m *mocks, input string, args ...string) (string, error) {
	t.Helper()

	if m != nil {
		SetServices(m.services())
	}
	t.Cleanup(func() {
		SetServices(nil)
		resetFlags(rootCmd)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

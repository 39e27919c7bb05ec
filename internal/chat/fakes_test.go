package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/conversation"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/dispatch"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/prompt"
)

var testNow = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

func discardLogger() zerolog.Logger { return zerolog.New(io.Discard) }

// memJobs mirrors the conditional updates of the PostgreSQL repository.
type memJobs struct {
	mu     sync.Mutex
	jobs   map[string]domain.Job
	writes int
	clock  time.Time
}

func newMemJobs(jobs ...domain.Job) *memJobs {
	m := &memJobs{jobs: map[string]domain.Job{}, clock: testNow.Add(-time.Hour)}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *memJobs) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memJobs) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	job.CreatedAt = m.tick()
	job.UpdatedAt = job.CreatedAt
	m.jobs[job.ID] = *job
	return nil
}

func (m *memJobs) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (m *memJobs) ListByUser(ctx context.Context, handle string, limit int) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Job
	for _, j := range m.jobs {
		if j.UserHandle == handle {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJobs) Transition(ctx context.Context, id string, update domain.JobUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !domain.CanTransition(j.Status, update.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, update.Status)
	}
	m.writes++
	j.Status = update.Status
	if update.VideoURL != "" {
		j.VideoURL = update.VideoURL
	}
	if update.Provider != "" {
		j.Provider = update.Provider
	}
	j.UpdatedAt = m.tick()
	m.jobs[id] = j
	return nil
}

func (m *memJobs) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	m.writes++
	delete(m.jobs, id)
	return nil
}

func (m *memJobs) DeleteByUser(ctx context.Context, handle string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, j := range m.jobs {
		if j.UserHandle == handle {
			delete(m.jobs, id)
			n++
		}
	}
	m.writes++
	return n, nil
}

func (m *memJobs) get(id string) domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}

func (m *memJobs) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type sentMessage struct {
	To    string
	Body  string
	Media []string
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	// failFirst makes the first n sends fail without delivering.
	failFirst int
	attempts  int
}

func (c *captureNotifier) Send(ctx context.Context, to, body string, mediaURLs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	if c.attempts <= c.failFirst {
		return errors.New("twilio: 503 service unavailable")
	}
	c.sent = append(c.sent, sentMessage{To: to, Body: body, Media: mediaURLs})
	return nil
}

func (c *captureNotifier) attemptCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *captureNotifier) messages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.sent...)
}

type fakeClassifier struct {
	result  *prompt.Classification
	err     error
	apology string
	calls   int
	history []conversation.Turn
}

func (f *fakeClassifier) Classify(ctx context.Context, message string, history []conversation.Turn) (*prompt.Classification, error) {
	f.calls++
	f.history = history
	return f.result, f.err
}

func (f *fakeClassifier) Apologize(ctx context.Context, job *domain.Job) string {
	return f.apology
}

type captureDispatcher struct {
	tasks []dispatch.Task
	err   error
}

func (c *captureDispatcher) Dispatch(ctx context.Context, task dispatch.Task) error {
	if c.err != nil {
		return c.err
	}
	c.tasks = append(c.tasks, task)
	return nil
}

type botFixture struct {
	bot        *Bot
	jobs       *memJobs
	notifier   *captureNotifier
	classifier *fakeClassifier
	dispatcher *captureDispatcher
	history    *conversation.MemoryStore
}

func newBotFixture(jobs ...domain.Job) *botFixture {
	f := &botFixture{
		jobs:       newMemJobs(jobs...),
		notifier:   &captureNotifier{},
		classifier: &fakeClassifier{apology: "We're sorry, the video could not be made."},
		dispatcher: &captureDispatcher{},
		history:    conversation.NewMemoryStore(6),
	}
	f.bot = NewBot(Options{
		Jobs:       f.jobs,
		Classifier: f.classifier,
		Notifier:   f.notifier,
		History:    f.history,
		Dispatcher: f.dispatcher,
		Logger:     discardLogger(),
		Now:        func() time.Time { return testNow },
		NewID:      func() string { return "job-new" },
	})
	return f
}

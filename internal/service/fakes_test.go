package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"history_quiz_backend/internal/config"
	"history_quiz_backend/internal/model"
	"history_quiz_backend/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type memoryStore struct {
	mu        sync.Mutex
	docs      map[uint]*model.Session
	saveErr   error
	loadErr   error
	deleteErr error
	deletes   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[uint]*model.Session)}
}

func (m *memoryStore) Save(ctx context.Context, userID uint, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[userID] = s.Clone()
	return nil
}

func (m *memoryStore) Load(ctx context.Context, userID uint) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.docs[userID].Clone(), nil
}

func (m *memoryStore) Delete(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.docs, userID)
	return nil
}

func (m *memoryStore) has(userID uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[userID]
	return ok
}

func (m *memoryStore) get(userID uint) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[userID].Clone()
}

func (m *memoryStore) failDeletes(err error) {
	m.mu.Lock()
	m.deleteErr = err
	m.mu.Unlock()
}

var _ repository.SessionStore = (*memoryStore)(nil)

// stubGenerator returns fixed questions. When gate is set every call blocks on it after
// announcing itself on entered.
type stubGenerator struct {
	mu        sync.Mutex
	questions []model.Question
	err       error
	calls     int
	entered   chan struct{}
	gate      chan struct{}
}

func (g *stubGenerator) generate() ([]model.Question, error) {
	g.mu.Lock()
	g.calls++
	entered, gate := g.entered, g.gate
	qs, err := g.questions, g.err
	g.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (g *stubGenerator) GeneratePractice(ctx context.Context, topic string, count int, mode model.QuizMode) ([]model.Question, error) {
	return g.generate()
}

func (g *stubGenerator) GenerateExam(ctx context.Context, blueprint []config.BlueprintEntry) ([]model.Question, error) {
	return g.generate()
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recorded struct {
	userID    uint
	score     float64
	reason    string
	timeSpent int
	exam      bool
}

type recorderSpy struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorderSpy) RecordResult(userID uint, s *model.Session, reason string, timeSpent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorded{userID: userID, score: s.Score, reason: reason, timeSpent: timeSpent, exam: s.IsExamMode})
}

func (r *recorderSpy) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func mcq(correct int) model.Question {
	return model.NewMCQ("Cách mạng tháng Tám thành công năm nào?", []string{"1930", "1945", "1954", "1975"}, correct, "Năm 1945.")
}

func group(keys ...bool) model.Question {
	sts := make([]model.TFStatement, len(keys))
	for i, k := range keys {
		sts[i] = model.TFStatement{Text: "Nhận định", Answer: k}
	}
	return model.NewTFGroup("Tư liệu về chiến dịch Hồ Chí Minh.", sts, "Giải thích.")
}

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func examConfig(tick time.Duration, duration, countdown int) config.ExamConfig {
	return config.ExamConfig{
		Title:           "Đề thi thử",
		DurationSeconds: duration,
		CountdownTicks:  countdown,
		TickInterval:    tick,
		Blueprint:       config.DefaultBlueprint(),
	}
}

func newTestService(t *testing.T, gen *stubGenerator, exam config.ExamConfig) (*QuizService, *memoryStore, *recorderSpy) {
	t.Helper()
	store := newMemoryStore()
	rec := &recorderSpy{}
	svc := NewQuizService(store, gen, rec, exam)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		svc.Shutdown(ctx)
	})
	return svc, store, rec
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func entryCount(svc *QuizService) int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.entries)
}

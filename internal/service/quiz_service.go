package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"history_quiz_backend/internal/config"
	"history_quiz_backend/internal/model"
	"history_quiz_backend/internal/quiz"
	"history_quiz_backend/internal/repository"
	"history_quiz_backend/internal/util"
	"history_quiz_backend/pkg/logger"
	"history_quiz_backend/pkg/monitoring"
	"history_quiz_backend/pkg/tracing"

	"go.uber.org/zap"
)

const (
	ReasonManual   = "manual"
	ReasonTimeout  = "timeout"
	ReasonFinished = "finished"
)

// sessionEntry 每个用户一个，mu 串行化用户操作与计时器 tick。
// refs 由 QuizService.mu 保护，空闲且无人引用时从 entries 中移除。
type sessionEntry struct {
	mu      sync.Mutex
	session *model.Session
	loading bool
	timer   *examTimer
	refs    int
}

type QuizService struct {
	store     repository.SessionStore
	generator Generator
	recorder  ResultRecorder
	now       func() time.Time

	cfgMu sync.RWMutex
	exam  config.ExamConfig

	mu      sync.Mutex
	entries map[uint]*sessionEntry
	closed  bool
	timerWG sync.WaitGroup

	storeTimeout time.Duration
}

func NewQuizService(store repository.SessionStore, generator Generator, recorder ResultRecorder, exam config.ExamConfig) *QuizService {
	return &QuizService{
		store:        store,
		generator:    generator,
		recorder:     recorder,
		now:          time.Now,
		exam:         exam,
		entries:      make(map[uint]*sessionEntry),
		storeTimeout: 5 * time.Second,
	}
}

// UpdateExamConfig applies to sessions created afterwards.
func (s *QuizService) UpdateExamConfig(exam config.ExamConfig) {
	s.cfgMu.Lock()
	s.exam = exam
	s.cfgMu.Unlock()
}

func (s *QuizService) examConfig() config.ExamConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.exam
}

// acquire returns the user's entry, creating it on first use. Every acquire must be
// paired with release.
func (s *QuizService) acquire(userID uint) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &sessionEntry{}
		s.entries[userID] = e
	}
	e.refs++
	return e
}

// release drops the entry from the map once nobody holds it and it carries no session.
// Callers must not hold e.mu.
func (s *QuizService) release(userID uint, e *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.refs--
	if e.refs > 0 {
		return
	}
	// refs == 0: 没有其他调用方持有 e.mu 后再去拿 s.mu，这里按 s.mu -> e.mu 加锁不会死锁
	e.mu.Lock()
	idle := e.session == nil && !e.loading && e.timer == nil
	e.mu.Unlock()
	if idle && s.entries[userID] == e {
		delete(s.entries, userID)
	}
}

type PracticeRequest struct {
	Topic string         `json:"topic"`
	Count int            `json:"count"`
	Mode  model.QuizMode `json:"mode"`
}

func (r *PracticeRequest) normalize() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return util.ErrEmptyTopic
	}
	if r.Count == 0 {
		r.Count = 10
	}
	if r.Count < util.MinPracticeCount || r.Count > util.MaxPracticeCount {
		return util.ErrInvalidCount
	}
	if r.Mode == "" {
		r.Mode = model.ModeMix
	}
	if !r.Mode.Valid() {
		return util.ErrInvalidMode
	}
	return nil
}

// beginLoading marks the user as generating. A second request while one is in flight
// is refused and changes nothing.
func (s *QuizService) beginLoading(e *sessionEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loading {
		return util.ErrGenerationInProgress
	}
	e.loading = true
	return nil
}

func (s *QuizService) endLoading(e *sessionEntry) {
	e.mu.Lock()
	e.loading = false
	e.mu.Unlock()
}

func (s *QuizService) StartPractice(ctx context.Context, userID uint, req PracticeRequest) (*SessionView, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	e := s.acquire(userID)
	defer s.release(userID, e)
	if err := s.beginLoading(e); err != nil {
		return nil, err
	}
	defer s.endLoading(e)

	questions, err := s.generator.GeneratePractice(ctx, req.Topic, req.Count, req.Mode)
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("practice").Inc()
		logger.Log.Warn("Practice generation failed", zap.Uint("user_id", userID), zap.String("topic", req.Topic), zap.Error(err))
		return nil, wrapGenerationErr(err)
	}

	session, err := quiz.NewPractice(quiz.PracticeConfig{Topic: req.Topic, Count: req.Count, Mode: req.Mode}, questions, s.now())
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("practice").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s.replaceSessionLocked(e, session)
	monitoring.SessionsStarted.WithLabelValues("practice").Inc()
	logger.Log.Info("Practice session started",
		zap.Uint("user_id", userID),
		zap.String("topic", req.Topic),
		zap.Int("questions", len(session.Questions)))
	return BuildView(session, s.now()), nil
}

func (s *QuizService) StartExam(ctx context.Context, userID uint) (*SessionView, error) {
	exam := s.examConfig()

	e := s.acquire(userID)
	defer s.release(userID, e)
	if err := s.beginLoading(e); err != nil {
		return nil, err
	}
	defer s.endLoading(e)

	questions, err := s.generator.GenerateExam(ctx, exam.Blueprint)
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("exam").Inc()
		logger.Log.Warn("Exam generation failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, wrapGenerationErr(err)
	}

	session, err := quiz.NewExam(quiz.ExamConfig{
		Topic:           exam.Title,
		DurationSeconds: exam.DurationSeconds,
		CountdownTicks:  exam.CountdownTicks,
	}, questions, s.now())
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("exam").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s.replaceSessionLocked(e, session)
	s.startTimerLocked(userID, e)
	monitoring.SessionsStarted.WithLabelValues("exam").Inc()
	logger.Log.Info("Exam session started",
		zap.Uint("user_id", userID),
		zap.Int("questions", len(session.Questions)),
		zap.Int("duration", session.Duration))
	return BuildView(session, s.now()), nil
}

func wrapGenerationErr(err error) error {
	if errors.Is(err, util.ErrGenerationFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
}

// replaceSessionLocked installs a new in-memory session, stopping whatever ran before.
func (s *QuizService) replaceSessionLocked(e *sessionEntry, session *model.Session) {
	e.timer.stop()
	e.timer = nil
	if e.session == nil && session != nil {
		monitoring.ActiveSessions.Inc()
	} else if e.session != nil && session == nil {
		monitoring.ActiveSessions.Dec()
	}
	e.session = session
}

func (s *QuizService) startTimerLocked(userID uint, e *sessionEntry) {
	e.timer.stop()
	e.timer = nil
	if e.session == nil || !e.session.IsExamMode || quiz.IsFinished(e.session) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	t := startExamTimer(s.examConfig().TickInterval, func(t *examTimer) bool {
		return s.onTick(userID, e, t)
	})
	e.timer = t
	s.timerWG.Add(1)
	go func() {
		<-t.done
		s.timerWG.Done()
	}()
}

func (s *QuizService) onTick(userID uint, e *sessionEntry, t *examTimer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != t || t.stopped() || e.session == nil {
		return false
	}

	switch quiz.Tick(e.session, s.now()) {
	case quiz.TickStarted:
		logger.Log.Debug("Exam clock started", zap.Uint("user_id", userID))
	case quiz.TickExpired:
		logger.Log.Info("Exam time is up, auto-submitted", zap.Uint("user_id", userID))
		s.finishLocked(userID, e, ReasonTimeout)
		return false
	}
	return !quiz.IsFinished(e.session)
}

// finishLocked runs once per graded session: it stops the clock, hands the result to
// the recorder and removes the saved copy.
func (s *QuizService) finishLocked(userID uint, e *sessionEntry, reason string) {
	e.timer.stop()
	e.timer = nil

	session := e.session
	mode := string(model.ResultPractice)
	if session.IsExamMode {
		mode = string(model.ResultExam)
	}
	monitoring.SessionsSubmitted.WithLabelValues(mode, reason).Inc()

	if s.recorder != nil {
		s.recorder.RecordResult(userID, session, reason, quiz.TimeSpent(session, s.now()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.storeTimeout)
	defer cancel()
	if err := s.store.Delete(ctx, userID); err != nil {
		logger.Log.Error("Failed to delete saved session after submit", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// withSession runs fn on the user's in-memory session under its lock.
func (s *QuizService) withSession(userID uint, fn func(e *sessionEntry) error) (*SessionView, error) {
	e := s.acquire(userID)
	defer s.release(userID, e)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, util.ErrNoActiveSession
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	return BuildView(e.session, s.now()), nil
}

func (s *QuizService) View(userID uint) (*SessionView, error) {
	return s.withSession(userID, func(*sessionEntry) error { return nil })
}

type AnswerInput struct {
	Option    *int  `json:"option"`
	Statement *int  `json:"statement"`
	Value     *bool `json:"value"`
}

func (s *QuizService) Answer(userID uint, in AnswerInput) (*SessionView, error) {
	return s.withSession(userID, func(e *sessionEntry) error {
		switch {
		case in.Option != nil:
			return quiz.SelectOption(e.session, *in.Option)
		case in.Statement != nil && in.Value != nil:
			return quiz.AnswerStatement(e.session, *in.Statement, *in.Value)
		}
		return util.ErrInvalidAnswer
	})
}

func (s *QuizService) Next(userID uint) (*SessionView, error) {
	return s.withSession(userID, func(e *sessionEntry) error {
		wasFinished := quiz.IsFinished(e.session)
		if err := quiz.Next(e.session, s.now()); err != nil {
			return err
		}
		if !wasFinished && quiz.IsFinished(e.session) {
			s.finishLocked(userID, e, ReasonFinished)
		}
		return nil
	})
}

func (s *QuizService) Prev(userID uint) (*SessionView, error) {
	return s.withSession(userID, func(e *sessionEntry) error {
		quiz.Prev(e.session)
		return nil
	})
}

func (s *QuizService) JumpTo(userID uint, idx int) (*SessionView, error) {
	return s.withSession(userID, func(e *sessionEntry) error {
		return quiz.JumpTo(e.session, idx)
	})
}

func (s *QuizService) ToggleMark(userID uint, idx int) (*SessionView, error) {
	return s.withSession(userID, func(e *sessionEntry) error {
		_, err := quiz.ToggleMark(e.session, idx)
		return err
	})
}

// Submit is idempotent: a second submit returns the graded view again.
func (s *QuizService) Submit(userID uint) (*SessionView, error) {
	return s.withSession(userID, func(e *sessionEntry) error {
		submitted, err := quiz.ManualSubmit(e.session, s.now())
		if err != nil {
			return err
		}
		if submitted {
			s.finishLocked(userID, e, ReasonManual)
		}
		return nil
	})
}

// SaveAndExit persists a paused copy and leaves the session. On a storage failure the
// session keeps running in memory. A graded session has nothing left to resume: it is
// dropped and saved reports false.
func (s *QuizService) SaveAndExit(ctx context.Context, userID uint) (bool, error) {
	e := s.acquire(userID)
	defer s.release(userID, e)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return false, util.ErrNoActiveSession
	}
	if quiz.IsFinished(e.session) {
		s.replaceSessionLocked(e, nil)
		return false, nil
	}

	snapshot := e.session.Clone()
	quiz.Pause(snapshot)

	ctx, span := tracing.Tracer.Start(ctx, "session.save")
	defer span.End()
	if err := s.store.Save(ctx, userID, snapshot); err != nil {
		span.RecordError(err)
		logger.Log.Error("Failed to save session", zap.Uint("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("%w: %v", util.ErrPersistenceFailed, err)
	}

	s.replaceSessionLocked(e, nil)
	logger.Log.Info("Session saved", zap.Uint("user_id", userID), zap.Bool("exam", snapshot.IsExamMode))
	return true, nil
}

// Exit drops the in-memory session without saving. Any saved copy stays.
func (s *QuizService) Exit(userID uint) {
	e := s.acquire(userID)
	defer s.release(userID, e)
	e.mu.Lock()
	defer e.mu.Unlock()
	s.replaceSessionLocked(e, nil)
}

type SavedSummary struct {
	Topic      string           `json:"topic"`
	IsExamMode bool             `json:"isExamMode"`
	ExamStatus model.ExamStatus `json:"examStatus"`
	Answered   int              `json:"answered"`
	Total      int              `json:"total"`
	Timer      int              `json:"timer"`
}

// CheckSaved reports the resumable session, if any. A finished session found in
// storage is deleted, and any storage error reads as "nothing saved".
func (s *QuizService) CheckSaved(ctx context.Context, userID uint) *SavedSummary {
	saved, err := s.loadResumable(ctx, userID)
	if err != nil {
		logger.Log.Warn("Saved session check failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil
	}
	if saved == nil {
		return nil
	}
	return &SavedSummary{
		Topic:      saved.Topic,
		IsExamMode: saved.IsExamMode,
		ExamStatus: saved.ExamStatus,
		Answered:   quiz.AnsweredCount(saved),
		Total:      len(saved.Questions),
		Timer:      saved.Timer,
	}
}

func (s *QuizService) loadResumable(ctx context.Context, userID uint) (*model.Session, error) {
	ctx, span := tracing.Tracer.Start(ctx, "session.load")
	defer span.End()

	saved, err := s.store.Load(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if saved == nil {
		return nil, nil
	}

	if saved.Screen == model.ScreenResult || quiz.IsFinished(saved) {
		s.deleteSaved(ctx, userID, "finished")
		return nil, nil
	}
	if err := quiz.CheckInvariants(saved); err != nil {
		logger.Log.Warn("Discarding corrupt saved session", zap.Uint("user_id", userID), zap.Error(err))
		s.deleteSaved(ctx, userID, "corrupt")
		return nil, nil
	}
	return saved, nil
}

func (s *QuizService) deleteSaved(ctx context.Context, userID uint, why string) {
	if err := s.store.Delete(ctx, userID); err != nil {
		logger.Log.Warn("Failed to delete saved session", zap.Uint("user_id", userID), zap.String("why", why), zap.Error(err))
	}
}

// Resume loads the saved session back into memory and removes the stored copy, so a
// session can only be resumed once. If the copy cannot be removed nothing is resumed.
// A paused exam picks up its clock; one still counting down restarts the countdown.
func (s *QuizService) Resume(ctx context.Context, userID uint) (*SessionView, error) {
	saved, err := s.loadResumable(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrPersistenceFailed, err)
	}
	if saved == nil {
		return nil, util.ErrNoSavedSession
	}

	e := s.acquire(userID)
	defer s.release(userID, e)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loading {
		return nil, util.ErrGenerationInProgress
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		logger.Log.Error("Failed to remove saved session on resume", zap.Uint("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrPersistenceFailed, err)
	}

	quiz.Resume(saved, s.examConfig().CountdownTicks)
	s.replaceSessionLocked(e, saved)
	s.startTimerLocked(userID, e)
	logger.Log.Info("Session resumed", zap.Uint("user_id", userID), zap.Bool("exam", saved.IsExamMode))
	return BuildView(saved, s.now()), nil
}

func (s *QuizService) Discard(ctx context.Context, userID uint) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", util.ErrPersistenceFailed, err)
	}
	return nil
}

// Shutdown stops every exam clock and saves sessions still in play so they can be
// resumed after restart.
func (s *QuizService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	entries := make(map[uint]*sessionEntry, len(s.entries))
	for id, e := range s.entries {
		entries[id] = e
	}
	s.mu.Unlock()

	for userID, e := range entries {
		e.mu.Lock()
		e.timer.stop()
		e.timer = nil
		if e.session != nil && !quiz.IsFinished(e.session) {
			snapshot := e.session.Clone()
			quiz.Pause(snapshot)
			if err := s.store.Save(ctx, userID, snapshot); err != nil {
				logger.Log.Error("Failed to save session on shutdown", zap.Uint("user_id", userID), zap.Error(err))
			}
		}
		e.mu.Unlock()
	}

	done := make(chan struct{})
	go func() {
		s.timerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

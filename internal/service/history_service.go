package service

import (
	"context"
	"sync"
	"time"

	"history_quiz_backend/internal/event"
	"history_quiz_backend/internal/model"
	"history_quiz_backend/internal/quiz"
	"history_quiz_backend/internal/repository"
	"history_quiz_backend/pkg/logger"
	"history_quiz_backend/pkg/tracing"

	"go.uber.org/zap"
)

// ResultRecorder is told about every finished session. It must not block the caller.
type ResultRecorder interface {
	RecordResult(userID uint, session *model.Session, reason string, timeSpent int)
}

type ResultStore interface {
	Create(ctx context.Context, result *model.QuizResult) error
	ListByUser(ctx context.Context, userID uint, page, limit int) ([]model.QuizResult, int64, error)
	StatsByUser(ctx context.Context, userID uint) ([]repository.ResultStats, error)
}

type Archiver interface {
	ArchiveSession(ctx context.Context, userID uint, resultID string, session *model.Session) (string, error)
}

type HistoryService struct {
	results   ResultStore
	archive   Archiver
	publisher event.Publisher
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewHistoryService archive 与 publisher 可为 nil
func NewHistoryService(results ResultStore, archive Archiver, publisher event.Publisher) *HistoryService {
	return &HistoryService{
		results:   results,
		archive:   archive,
		publisher: publisher,
		timeout:   10 * time.Second,
	}
}

func resultType(s *model.Session) model.ResultType {
	if s.IsExamMode {
		return model.ResultExam
	}
	return model.ResultPractice
}

// RecordResult 异步写历史记录，失败只记日志
func (s *HistoryService) RecordResult(userID uint, session *model.Session, reason string, timeSpent int) {
	snapshot := session.Clone()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.record(ctx, userID, snapshot, reason, timeSpent)
	}()
}

func (s *HistoryService) record(ctx context.Context, userID uint, session *model.Session, reason string, timeSpent int) {
	ctx, span := tracing.Tracer.Start(ctx, "history.record")
	defer span.End()

	total := quiz.TotalPossible(session.Questions, session.IsExamMode)
	result := &model.QuizResult{
		UserID:           userID,
		Topic:            session.Topic,
		Score:            session.Score,
		TotalPossible:    total,
		TimeSpentSeconds: timeSpent,
		Type:             resultType(session),
	}

	if err := s.results.Create(ctx, result); err != nil {
		span.RecordError(err)
		logger.Log.Error("Failed to record quiz result",
			zap.Uint("user_id", userID),
			zap.String("type", string(result.Type)),
			zap.Float64("score", result.Score),
			zap.Error(err))
		return
	}

	var archiveURL string
	if s.archive != nil {
		url, err := s.archive.ArchiveSession(ctx, userID, result.ID, session)
		if err != nil {
			logger.Log.Warn("Failed to archive graded session", zap.Uint("user_id", userID), zap.Error(err))
		} else {
			archiveURL = url
		}
	}

	if s.publisher == nil {
		return
	}
	submittedAt := time.Now()
	if session.SubmittedAt != nil {
		submittedAt = *session.SubmittedAt
	}
	if err := s.publisher.PublishSessionSubmitted(ctx, &event.SessionSubmittedEvent{
		UserID:      userID,
		Topic:       session.Topic,
		IsExam:      session.IsExamMode,
		Reason:      reason,
		Score:       session.Score,
		Total:       total,
		SubmittedAt: submittedAt,
	}); err != nil {
		logger.Log.Warn("Failed to publish session event", zap.Error(err))
	}
	if err := s.publisher.PublishResultRecorded(ctx, &event.ResultRecordedEvent{
		ResultID:         result.ID,
		UserID:           userID,
		Type:             string(result.Type),
		Score:            result.Score,
		TotalPossible:    total,
		TimeSpentSeconds: timeSpent,
		ArchiveURL:       archiveURL,
		RecordedAt:       time.Now(),
	}); err != nil {
		logger.Log.Warn("Failed to publish result event", zap.Error(err))
	}
}

// Wait blocks until every pending record has finished.
func (s *HistoryService) Wait() {
	s.wg.Wait()
}

type HistoryPage struct {
	List  []model.QuizResult       `json:"list"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
	Stats []repository.ResultStats `json:"stats"`
}

func (s *HistoryService) History(ctx context.Context, userID uint, page, limit int) (*HistoryPage, error) {
	list, total, err := s.results.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	stats, err := s.results.StatsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.QuizResult{}
	}
	return &HistoryPage{List: list, Total: total, Page: page, Limit: limit, Stats: stats}, nil
}

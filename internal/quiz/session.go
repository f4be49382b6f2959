package quiz

import (
	"fmt"
	"time"

	"history_quiz_backend/internal/model"
)

const (
	DefaultExamDuration   = 2700
	DefaultCountdownTicks = 3
)

type PracticeConfig struct {
	Topic string
	Count int
	Mode  model.QuizMode
}

type ExamConfig struct {
	Topic           string
	DurationSeconds int
	CountdownTicks  int
}

// NewPractice builds a practice session in play. The answer slots are sized to the
// question list here and nowhere else.
func NewPractice(cfg PracticeConfig, questions []model.Question, now time.Time) (*model.Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := model.NewConfigSession()
	s.Topic = cfg.Topic
	s.Count = cfg.Count
	s.Mode = cfg.Mode
	s.Questions = withIDs(questions)
	s.UserAnswers = make([]*model.Answer, len(questions))
	s.Screen = model.ScreenPlaying
	s.IsActive = true
	s.StartedAt = now
	return s, nil
}

// NewExam builds an exam session waiting on its pre-start countdown.
func NewExam(cfg ExamConfig, questions []model.Question, now time.Time) (*model.Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if cfg.DurationSeconds <= 0 {
		cfg.DurationSeconds = DefaultExamDuration
	}
	if cfg.CountdownTicks <= 0 {
		cfg.CountdownTicks = DefaultCountdownTicks
	}

	s := model.NewConfigSession()
	s.Topic = cfg.Topic
	s.Count = len(questions)
	s.Mode = model.ModeMix
	s.Questions = withIDs(questions)
	s.UserAnswers = make([]*model.Answer, len(questions))
	s.Screen = model.ScreenPlaying
	s.IsExamMode = true
	s.ExamStatus = model.ExamCountdown
	s.Countdown = cfg.CountdownTicks
	s.Timer = cfg.DurationSeconds
	s.Duration = cfg.DurationSeconds
	s.IsActive = false
	s.StartedAt = now
	return s, nil
}

// CheckInvariants reports structural corruption, e.g. in a document loaded from storage.
func CheckInvariants(s *model.Session) error {
	if s == nil {
		return ErrNoQuestions
	}
	if s.Screen == model.ScreenConfig {
		return nil
	}
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	if len(s.UserAnswers) != len(s.Questions) {
		return fmt.Errorf("%w: %d answers for %d questions", ErrAnswersMismatch, len(s.UserAnswers), len(s.Questions))
	}
	if s.CurrentIdx < 0 || s.CurrentIdx >= len(s.Questions) {
		return fmt.Errorf("%w: current %d", ErrIndexOutOfRange, s.CurrentIdx)
	}
	return nil
}

// Current returns the question under the pointer and its answer slot.
func Current(s *model.Session) (model.Question, *model.Answer, bool) {
	if s.CurrentIdx < 0 || s.CurrentIdx >= len(s.Questions) {
		return model.Question{}, nil, false
	}
	return s.Questions[s.CurrentIdx], s.UserAnswers[s.CurrentIdx], true
}

// AnsweredCount counts answer slots that hold a selection.
func AnsweredCount(s *model.Session) int {
	n := 0
	for i, a := range s.UserAnswers {
		if i < len(s.Questions) && isAnswered(s.Questions[i], a) {
			n++
		}
	}
	return n
}

func isAnswered(q model.Question, a *model.Answer) bool {
	if a == nil {
		return false
	}
	if q.Type == model.QuestionMCQ {
		return a.Selected != nil
	}
	for _, v := range a.Statements {
		if v != nil {
			return true
		}
	}
	return false
}

func withIDs(questions []model.Question) []model.Question {
	out := make([]model.Question, len(questions))
	copy(out, questions)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
	return out
}

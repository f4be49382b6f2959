package quiz

import (
	"time"

	"history_quiz_backend/internal/model"
)

// Next advances the pointer. Practice mode requires the current question to be answered
// first; at the last question a practice session finishes. An exam stays put at the end
// because submission is explicit.
func Next(s *model.Session, now time.Time) error {
	if s.Screen != model.ScreenPlaying {
		return nil
	}
	if !s.IsExamMode && !canLeave(s) {
		return ErrNotAnswered
	}
	if s.CurrentIdx < len(s.Questions)-1 {
		s.CurrentIdx++
		s.Draft = nil
		return nil
	}
	if !s.IsExamMode {
		Submit(s, now)
	}
	return nil
}

// 空的判断题组无法作答，允许直接跳过
func canLeave(s *model.Session) bool {
	if s.CurrentIdx < 0 || s.CurrentIdx >= len(s.Questions) {
		return true
	}
	if s.UserAnswers[s.CurrentIdx] != nil {
		return true
	}
	q := s.Questions[s.CurrentIdx]
	return q.Type == model.QuestionTFGroup && q.StatementCount() == 0
}

func Prev(s *model.Session) {
	if s.CurrentIdx > 0 {
		s.CurrentIdx--
		s.Draft = nil
	}
}

// JumpTo is used by the progress grid and is allowed regardless of answered state.
func JumpTo(s *model.Session, idx int) error {
	if idx < 0 || idx >= len(s.Questions) {
		return ErrIndexOutOfRange
	}
	if idx != s.CurrentIdx {
		s.Draft = nil
	}
	s.CurrentIdx = idx
	return nil
}

// ToggleMark flags a question for review and returns the new marked state.
func ToggleMark(s *model.Session, idx int) (bool, error) {
	if idx < 0 || idx >= len(s.Questions) {
		return false, ErrIndexOutOfRange
	}
	marked := !s.IsMarked(idx)
	s.SetMarked(idx, marked)
	return marked, nil
}

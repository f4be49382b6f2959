package quiz

import (
	"time"

	"history_quiz_backend/internal/model"
)

type TickResult int

const (
	TickIgnored TickResult = iota
	TickCounted
	TickStarted
	TickExpired
)

func (r TickResult) String() string {
	switch r {
	case TickCounted:
		return "counted"
	case TickStarted:
		return "started"
	case TickExpired:
		return "expired"
	}
	return "ignored"
}

// CountdownTick advances the pre-exam countdown. The final tick starts the exam clock.
func CountdownTick(s *model.Session) TickResult {
	if !s.IsExamMode || s.ExamStatus != model.ExamCountdown {
		return TickIgnored
	}
	if s.Countdown > 0 {
		s.Countdown--
	}
	if s.Countdown > 0 {
		return TickCounted
	}
	s.ExamStatus = model.ExamInProgress
	s.IsActive = true
	return TickStarted
}

// Tick is one second of exam time. Reaching zero submits the exam exactly once; any
// tick outside an active, in-progress exam is ignored.
func Tick(s *model.Session, now time.Time) TickResult {
	if s.ExamStatus == model.ExamCountdown {
		return CountdownTick(s)
	}
	if !s.IsExamMode || !s.IsActive || s.ExamStatus != model.ExamInProgress {
		return TickIgnored
	}
	if s.Timer > 0 {
		s.Timer--
	}
	if s.Timer > 0 {
		return TickCounted
	}
	if Submit(s, now) {
		return TickExpired
	}
	return TickIgnored
}

// Submit grades the session from scratch and moves it to the result screen. It returns
// false without touching anything when the session was already submitted.
func Submit(s *model.Session, now time.Time) bool {
	if s.ExamStatus == model.ExamSubmitted || s.Screen == model.ScreenResult {
		return false
	}
	if s.IsExamMode {
		s.ExamStatus = model.ExamSubmitted
	}
	s.Draft = nil
	Grade(s)
	s.IsActive = false
	s.Screen = model.ScreenResult
	s.SubmittedAt = &now
	return true
}

// IsFinished reports whether the session reached its terminal screen.
func IsFinished(s *model.Session) bool {
	return s.Screen == model.ScreenResult || s.ExamStatus == model.ExamSubmitted
}

// TimeSpent is the seconds used: the consumed part of the exam budget, or wall clock
// time since the start of a practice run.
func TimeSpent(s *model.Session, now time.Time) int {
	if s.IsExamMode {
		spent := s.Duration - s.Timer
		if spent < 0 {
			return 0
		}
		return spent
	}
	end := now
	if s.SubmittedAt != nil {
		end = *s.SubmittedAt
	}
	if s.StartedAt.IsZero() || end.Before(s.StartedAt) {
		return 0
	}
	return int(end.Sub(s.StartedAt).Seconds())
}

// Pause stops the clock without changing the phase, e.g. on save-and-exit.
func Pause(s *model.Session) {
	s.IsActive = false
}

// Resume restarts a paused session. An exam that was still counting down restarts
// its countdown from the beginning.
func Resume(s *model.Session, countdownTicks int) {
	if IsFinished(s) {
		return
	}
	if !s.IsExamMode {
		s.IsActive = true
		return
	}
	switch s.ExamStatus {
	case model.ExamCountdown, model.ExamIdle:
		if countdownTicks <= 0 {
			countdownTicks = DefaultCountdownTicks
		}
		s.ExamStatus = model.ExamCountdown
		s.Countdown = countdownTicks
		s.IsActive = false
	case model.ExamInProgress:
		s.IsActive = true
	}
}

// ManualSubmit is the user-triggered submit. A repeated submit is a no-op, not an error.
func ManualSubmit(s *model.Session, now time.Time) (bool, error) {
	if IsFinished(s) {
		return false, nil
	}
	if s.Screen != model.ScreenPlaying {
		return false, ErrNotPlaying
	}
	if s.IsExamMode && s.ExamStatus != model.ExamInProgress {
		return false, ErrExamNotStarted
	}
	return Submit(s, now), nil
}

package quiz

import (
	"errors"
	"testing"

	"history_quiz_backend/internal/model"
)

func TestPracticeMCQScoring(t *testing.T) {
	testCases := []struct {
		name     string
		option   int
		expected float64
	}{
		{"correct adds one", 1, 1},
		{"wrong adds nothing", 2, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := practice(mcq(1))
			if err := SelectOption(s, tc.option); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Score != tc.expected {
				t.Errorf("expected score %.2f, got %.2f", tc.expected, s.Score)
			}
			if s.UserAnswers[0].IsCorrect != (tc.expected == 1) {
				t.Errorf("unexpected IsCorrect %v", s.UserAnswers[0].IsCorrect)
			}
		})
	}
}

func TestPracticeAnswerIsLocked(t *testing.T) {
	s := practice(mcq(1))
	if err := SelectOption(s, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SelectOption(s, 0); !errors.Is(err, ErrAnswerLocked) {
		t.Fatalf("expected ErrAnswerLocked, got %v", err)
	}
	if s.Score != 1 || *s.UserAnswers[0].Selected != 1 {
		t.Errorf("locked answer changed: score=%.2f selected=%d", s.Score, *s.UserAnswers[0].Selected)
	}
}

func TestPracticeStatementsLockIndividually(t *testing.T) {
	s := practice(group(true, false, true, false))
	if err := AnswerStatement(s, 1, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AnswerStatement(s, 1, true); !errors.Is(err, ErrAnswerLocked) {
		t.Fatalf("expected ErrAnswerLocked, got %v", err)
	}
	if s.Score != 0 {
		t.Errorf("incomplete group must not score yet, got %.2f", s.Score)
	}
}

func TestExamAnswersEditableUntilSubmit(t *testing.T) {
	s := startedExam(mcq(1), group(true, false, true, false))
	if err := SelectOption(s, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SelectOption(s, 1); err != nil {
		t.Fatalf("exam answer should stay editable: %v", err)
	}
	if s.UserAnswers[0].IsCorrect {
		t.Error("exam answers carry a false placeholder until grading")
	}
	if s.Score != 0 {
		t.Errorf("exam score must not move before submit, got %.2f", s.Score)
	}

	Next(s, t0)
	for i, v := range []bool{true, false, true, true} {
		if err := AnswerStatement(s, i, v); err != nil {
			t.Fatalf("statement %d: %v", i, err)
		}
	}
	if err := AnswerStatement(s, 3, false); err != nil {
		t.Fatalf("statement edit: %v", err)
	}

	Submit(s, t0)
	if s.Score != 1.25 {
		t.Errorf("expected 0.25 + 1.00, got %.2f", s.Score)
	}
	if err := SelectOption(s, 2); !errors.Is(err, ErrSessionSubmitted) {
		t.Errorf("expected ErrSessionSubmitted, got %v", err)
	}
}

func TestExamAnswerBeforeStart(t *testing.T) {
	s, err := NewExam(ExamConfig{}, []model.Question{mcq(0)}, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SelectOption(s, 0); !errors.Is(err, ErrExamNotStarted) {
		t.Errorf("expected ErrExamNotStarted, got %v", err)
	}
}

func TestAnswerTypeAndRangeChecks(t *testing.T) {
	s := practice(mcq(0), group(true))
	if err := AnswerStatement(s, 0, true); !errors.Is(err, ErrWrongQuestionType) {
		t.Errorf("expected ErrWrongQuestionType, got %v", err)
	}
	if err := SelectOption(s, 4); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("expected ErrOptionOutOfRange, got %v", err)
	}
	if err := JumpTo(s, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SelectOption(s, 0); !errors.Is(err, ErrWrongQuestionType) {
		t.Errorf("expected ErrWrongQuestionType, got %v", err)
	}
	if err := AnswerStatement(s, 1, true); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("expected ErrOptionOutOfRange, got %v", err)
	}
}

func TestEmptyGroupIsContained(t *testing.T) {
	s := practice(model.NewTFGroup("Tư liệu", nil, ""), mcq(0))
	if err := AnswerStatement(s, 0, true); !errors.Is(err, ErrNoStatements) {
		t.Fatalf("expected ErrNoStatements, got %v", err)
	}
	if err := Next(s, t0); err != nil {
		t.Fatalf("an empty group must not block the session: %v", err)
	}
	if err := SelectOption(s, 0); err != nil {
		t.Fatalf("rest of the session must stay usable: %v", err)
	}
	Next(s, t0)
	if s.Screen != model.ScreenResult || s.Score != 1 {
		t.Errorf("expected result with score 1, got %s %.2f", s.Screen, s.Score)
	}
}

func TestPracticeEndToEnd(t *testing.T) {
	s := practice(mcq(1), group(true, false, true, false))

	if err := SelectOption(s, 1); err != nil {
		t.Fatalf("mcq: %v", err)
	}
	if s.Score != 1 {
		t.Fatalf("after mcq expected 1, got %.2f", s.Score)
	}
	Next(s, t0)

	for i, v := range []bool{true, false, true, true} {
		if err := AnswerStatement(s, i, v); err != nil {
			t.Fatalf("statement %d: %v", i, err)
		}
	}
	if s.Score != 4 {
		t.Fatalf("after group expected 4, got %.2f", s.Score)
	}
	if got := TotalPossible(s.Questions, s.IsExamMode); got != 5 {
		t.Errorf("expected 5 scorable items, got %.0f", got)
	}

	Next(s, t0)
	if s.Screen != model.ScreenResult {
		t.Fatalf("expected result screen, got %s", s.Screen)
	}
	if s.Score != 4 {
		t.Errorf("final grading changed the score: %.2f", s.Score)
	}
	if s.UserAnswers[1].IsCorrect {
		t.Error("3 of 4 statements is not correct for display")
	}
}

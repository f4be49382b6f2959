package quiz

import (
	"errors"
	"testing"

	"history_quiz_backend/internal/model"
)

func TestPrevAtFirstQuestionIsNoop(t *testing.T) {
	s := practice(mcq(0), mcq(1))
	Prev(s)
	if s.CurrentIdx != 0 {
		t.Fatalf("expected index 0, got %d", s.CurrentIdx)
	}
}

func TestNextAtLastQuestion(t *testing.T) {
	t.Run("practice finishes", func(t *testing.T) {
		s := practice(mcq(0), mcq(1))
		_ = SelectOption(s, 0)
		if err := Next(s, t0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.CurrentIdx != 1 {
			t.Fatalf("expected index 1, got %d", s.CurrentIdx)
		}
		_ = SelectOption(s, 1)
		if err := Next(s, t0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Screen != model.ScreenResult {
			t.Errorf("expected result screen, got %s", s.Screen)
		}
		if s.IsActive {
			t.Error("expected session to be inactive")
		}
	})

	t.Run("exam stays", func(t *testing.T) {
		s := startedExam(mcq(0), mcq(1))
		_ = Next(s, t0)
		_ = Next(s, t0)
		if s.CurrentIdx != 1 || s.Screen != model.ScreenPlaying || s.ExamStatus != model.ExamInProgress {
			t.Errorf("exam next at last should be a no-op, got idx=%d screen=%s status=%s", s.CurrentIdx, s.Screen, s.ExamStatus)
		}
	})
}

func TestPracticeNextRequiresAnswer(t *testing.T) {
	tests := []struct {
		name      string
		questions []model.Question
		prepare   func(s *model.Session)
	}{
		{"unanswered mcq", []model.Question{mcq(0), mcq(1)}, func(*model.Session) {}},
		{"wrong option is still an answer", []model.Question{mcq(0), mcq(1)}, nil},
		{"incomplete group", []model.Question{group(true, false), mcq(0)}, func(s *model.Session) {
			_ = AnswerStatement(s, 0, true)
		}},
		{"unanswered last question", []model.Question{mcq(0)}, func(*model.Session) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := practice(tt.questions...)
			if tt.prepare == nil {
				if err := SelectOption(s, 3); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if err := Next(s, t0); err != nil {
					t.Fatalf("answered question should advance, got %v", err)
				}
				if s.CurrentIdx != 1 {
					t.Errorf("expected index 1, got %d", s.CurrentIdx)
				}
				return
			}
			tt.prepare(s)
			if err := Next(s, t0); !errors.Is(err, ErrNotAnswered) {
				t.Fatalf("expected ErrNotAnswered, got %v", err)
			}
			if s.CurrentIdx != 0 || s.Screen != model.ScreenPlaying || !s.IsActive {
				t.Errorf("refused next changed the session: idx=%d screen=%s active=%v", s.CurrentIdx, s.Screen, s.IsActive)
			}
			if s.UserAnswers[0] != nil {
				t.Error("refused next must not record an answer")
			}
		})
	}
}

func TestExamNextSkipsUnanswered(t *testing.T) {
	s := startedExam(mcq(0), mcq(1))
	if err := Next(s, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentIdx != 1 || s.UserAnswers[0] != nil {
		t.Errorf("expected to move past the blank question, idx=%d", s.CurrentIdx)
	}
}

func TestNavigationClearsDraft(t *testing.T) {
	s := practice(mcq(0), group(true, false, true, false))
	_ = SelectOption(s, 0)
	_ = Next(s, t0)
	if err := AnswerStatement(s, 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Draft) != 4 {
		t.Fatalf("expected draft of 4, got %d", len(s.Draft))
	}
	Prev(s)
	if s.Draft != nil {
		t.Error("draft should be cleared when leaving the question")
	}
	if s.UserAnswers[1] != nil {
		t.Error("an incomplete draft must not become an answer")
	}
}

func TestJumpTo(t *testing.T) {
	s := startedExam(mcq(0), mcq(1), group(true, true, true, true))
	if err := JumpTo(s, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentIdx != 2 {
		t.Errorf("expected index 2, got %d", s.CurrentIdx)
	}
	for _, idx := range []int{-1, 3} {
		if err := JumpTo(s, idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("jump to %d: expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
	if s.CurrentIdx != 2 {
		t.Errorf("rejected jump moved the pointer to %d", s.CurrentIdx)
	}
}

func TestToggleMark(t *testing.T) {
	s := startedExam(mcq(0), mcq(1), mcq(2))
	for _, idx := range []int{2, 0} {
		if marked, err := ToggleMark(s, idx); err != nil || !marked {
			t.Fatalf("toggle %d: marked=%v err=%v", idx, marked, err)
		}
	}
	if len(s.MarkedQuestions) != 2 || s.MarkedQuestions[0] != 0 || s.MarkedQuestions[1] != 2 {
		t.Errorf("expected sorted [0 2], got %v", s.MarkedQuestions)
	}
	if marked, _ := ToggleMark(s, 2); marked {
		t.Error("second toggle should unmark")
	}
	if s.IsMarked(2) {
		t.Error("index 2 still marked")
	}
	if _, err := ToggleMark(s, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestAnswersStayAlignedWithQuestions(t *testing.T) {
	s := practice(mcq(0), group(true, false), mcq(2))
	steps := []func(){
		func() { _ = SelectOption(s, 0) },
		func() { _ = Next(s, t0) },
		func() { _ = AnswerStatement(s, 0, true) },
		func() { _ = AnswerStatement(s, 1, true) },
		func() { Prev(s) },
		func() { _ = JumpTo(s, 2) },
		func() { _, _ = ToggleMark(s, 1) },
		func() { _ = Next(s, t0) },
	}
	for i, step := range steps {
		step()
		if len(s.UserAnswers) != len(s.Questions) {
			t.Fatalf("step %d: %d answers for %d questions", i, len(s.UserAnswers), len(s.Questions))
		}
	}
}

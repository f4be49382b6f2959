package quiz

import (
	"testing"

	"history_quiz_backend/internal/model"
)

func TestExamGroupCredit(t *testing.T) {
	testCases := []struct {
		correct  int
		expected float64
	}{
		{0, 0.00},
		{1, 0.10},
		{2, 0.25},
		{3, 0.50},
		{4, 1.00},
	}

	q := group(true, false, true, false)
	for _, tc := range testCases {
		a := &model.Answer{Statements: make([]*bool, 4)}
		for i := 0; i < 4; i++ {
			key := q.TFGroup.Statements[i].Answer
			if i < tc.correct {
				a.Statements[i] = boolPtr(key)
			} else {
				a.Statements[i] = boolPtr(!key)
			}
		}
		got := Score([]model.Question{q}, []*model.Answer{a}, true)
		if got != tc.expected {
			t.Errorf("%d correct: expected %.2f, got %.2f", tc.correct, tc.expected, got)
		}
	}
}

func TestExamGroupCreditNonStandardSize(t *testing.T) {
	if got := ExamGroupCredit(3, 3); got != 1 {
		t.Errorf("all of 3 correct: expected 1.00, got %.2f", got)
	}
	if got := ExamGroupCredit(4, 5); got != 0.5 {
		t.Errorf("4 of 5 correct: expected 0.50, got %.2f", got)
	}
	if got := ExamGroupCredit(0, 0); got != 0 {
		t.Errorf("empty group: expected 0, got %.2f", got)
	}
}

func TestScorePolicies(t *testing.T) {
	questions := []model.Question{mcq(1), mcq(2), group(true, false, true, false)}
	answers := []*model.Answer{
		{Selected: intPtr(1)},
		{Selected: intPtr(0)},
		{Statements: []*bool{boolPtr(true), boolPtr(false), boolPtr(false), nil}},
	}

	testCases := []struct {
		name     string
		examMode bool
		expected float64
	}{
		{"practice", false, 3}, // 1 + 0 + 2
		{"exam", true, 0.50},   // 0.25 + 0 + 0.25
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(questions, answers, tc.examMode)
			if got != tc.expected {
				t.Errorf("expected %.2f, got %.2f", tc.expected, got)
			}
			if again := Score(questions, answers, tc.examMode); again != got {
				t.Errorf("score not idempotent: %.2f then %.2f", got, again)
			}
		})
	}
}

func TestScoreUnansweredContributesZero(t *testing.T) {
	questions := []model.Question{mcq(0), group(true, true, true, true), model.NewTFGroup("", nil, "")}
	answers := []*model.Answer{nil, {Statements: nil}, {Statements: []*bool{boolPtr(true)}}}

	for _, exam := range []bool{false, true} {
		if got := Score(questions, answers, exam); got != 0 {
			t.Errorf("exam=%v: expected 0, got %.2f", exam, got)
		}
	}
	if got := Score(questions, nil, false); got != 0 {
		t.Errorf("nil answers: expected 0, got %.2f", got)
	}
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	questions := []model.Question{group(true, true, true, true), group(true, true, true, true), group(true, true, true, true)}
	one := &model.Answer{Statements: []*bool{boolPtr(true), boolPtr(false), boolPtr(false), boolPtr(false)}}
	got := Score(questions, []*model.Answer{one, one, one}, true)
	if got != 0.3 {
		t.Errorf("expected 0.30, got %v", got)
	}
}

func TestIsAnswerCorrect(t *testing.T) {
	q := group(true, false)
	if IsAnswerCorrect(q, &model.Answer{Statements: []*bool{boolPtr(true), nil}}) {
		t.Error("partially answered group must not be correct")
	}
	if !IsAnswerCorrect(q, &model.Answer{Statements: []*bool{boolPtr(true), boolPtr(false)}}) {
		t.Error("fully matching group should be correct")
	}
	if IsAnswerCorrect(model.NewTFGroup("", nil, ""), &model.Answer{}) {
		t.Error("group without statements can never be correct")
	}
	if !IsAnswerCorrect(mcq(3), &model.Answer{Selected: intPtr(3)}) {
		t.Error("matching mcq selection should be correct")
	}
	if IsAnswerCorrect(mcq(3), nil) {
		t.Error("nil answer must not be correct")
	}
}

func TestTotalPossible(t *testing.T) {
	questions := []model.Question{mcq(0), group(true, false, true, false), mcq(1)}
	if got := TotalPossible(questions, false); got != 6 {
		t.Errorf("practice: expected 6, got %.0f", got)
	}
	if got := TotalPossible(questions, true); got != 10 {
		t.Errorf("exam: expected 10, got %.0f", got)
	}
}

func TestStandardBlueprintTotalsTen(t *testing.T) {
	var questions []model.Question
	var answers []*model.Answer
	for i := 0; i < 24; i++ {
		questions = append(questions, mcq(0))
		answers = append(answers, &model.Answer{Selected: intPtr(0)})
	}
	for i := 0; i < 4; i++ {
		questions = append(questions, group(true, false, true, false))
		answers = append(answers, &model.Answer{Statements: []*bool{boolPtr(true), boolPtr(false), boolPtr(true), boolPtr(false)}})
	}
	if got := Score(questions, answers, true); got != ExamTotalPoints {
		t.Errorf("perfect exam: expected %.2f, got %.2f", ExamTotalPoints, got)
	}
}

func TestGradeIgnoresPlaceholderFlags(t *testing.T) {
	s := practice(mcq(1), mcq(2))
	s.IsExamMode = true
	s.UserAnswers[0] = &model.Answer{Selected: intPtr(1), IsCorrect: false}
	s.UserAnswers[1] = &model.Answer{Selected: intPtr(0), IsCorrect: true}

	Grade(s)

	if !s.UserAnswers[0].IsCorrect || s.UserAnswers[1].IsCorrect {
		t.Errorf("flags not recomputed: %v %v", s.UserAnswers[0].IsCorrect, s.UserAnswers[1].IsCorrect)
	}
	if s.Score != 0.25 {
		t.Errorf("expected 0.25, got %.2f", s.Score)
	}
}

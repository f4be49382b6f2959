package service

import (
	"testing"
	"time"

	"history_quiz_backend/internal/model"
	"history_quiz_backend/internal/quiz"
)

func TestViewRedactsExamKeysUntilSubmitted(t *testing.T) {
	now := time.Now()
	s, _ := quiz.NewExam(quiz.ExamConfig{DurationSeconds: 60, CountdownTicks: 1}, []model.Question{mcq(2), group(true, false, true, false)}, now)
	quiz.CountdownTick(s)
	quiz.SelectOption(s, 2)

	v := BuildView(s, now)
	for _, q := range v.Questions {
		if q.CorrectIndex != nil || q.Explanation != "" || q.IsCorrect != nil {
			t.Errorf("question %d leaks its key before submission: %+v", q.Index, q)
		}
		for _, st := range q.Statements {
			if st.Answer != nil {
				t.Errorf("question %d leaks a statement key", q.Index)
			}
		}
	}
	if !v.Questions[0].Answered || v.Answered != 1 {
		t.Errorf("answer not reflected: %+v", v.Questions[0])
	}

	quiz.Submit(s, now)
	v = BuildView(s, now)
	first := v.Questions[0]
	if first.CorrectIndex == nil || *first.CorrectIndex != 2 || first.Explanation == "" {
		t.Errorf("key should be revealed after submission: %+v", first)
	}
	if first.IsCorrect == nil || !*first.IsCorrect || first.Credit == nil || *first.Credit != 0.25 {
		t.Errorf("unexpected grading in view: %+v", first)
	}
}

func TestViewRevealsPracticeQuestionOnceLocked(t *testing.T) {
	now := time.Now()
	s, _ := quiz.NewPractice(quiz.PracticeConfig{Topic: "Lịch sử", Count: 2, Mode: model.ModeMix}, []model.Question{mcq(1), group(true, false)}, now)

	v := BuildView(s, now)
	if v.Questions[0].CorrectIndex != nil {
		t.Fatal("unanswered practice question must stay hidden")
	}

	quiz.SelectOption(s, 0)
	v = BuildView(s, now)
	if v.Questions[0].CorrectIndex == nil || *v.Questions[0].IsCorrect {
		t.Errorf("locked wrong answer should be revealed as incorrect: %+v", v.Questions[0])
	}

	quiz.Next(s, now)
	quiz.AnswerStatement(s, 0, true)
	v = BuildView(s, now)
	sts := v.Questions[1].Statements
	if sts[0].Answer == nil || sts[1].Answer != nil {
		t.Errorf("only the answered statement should be revealed: %+v", sts)
	}
	if len(v.Questions[1].Draft) != 2 || v.Questions[1].Draft[0] == nil {
		t.Errorf("draft missing from view: %+v", v.Questions[1].Draft)
	}
}

func TestViewLabelsAndIntegrity(t *testing.T) {
	now := time.Now()
	empty := model.NewTFGroup("Tư liệu", nil, "")
	s, _ := quiz.NewExam(quiz.ExamConfig{}, []model.Question{mcq(0), mcq(1), group(true, true, true, true), empty}, now)

	v := BuildView(s, now)
	wantLabels := []string{"Part I: 1/2", "Part I: 2/2", "Part II: 1/2", "Part II: 2/2"}
	for i, want := range wantLabels {
		if v.Questions[i].Label != want {
			t.Errorf("question %d: expected label %q, got %q", i, want, v.Questions[i].Label)
		}
	}
	if v.Overview.PartI != 2 || v.Overview.PartII != 2 {
		t.Errorf("unexpected overview %+v", v.Overview)
	}
	if v.Questions[3].IntegrityError == "" || v.Questions[2].IntegrityError != "" {
		t.Error("only the empty group should carry an integrity error")
	}
	if v.TotalPossible != 10 {
		t.Errorf("exam total should be 10, got %v", v.TotalPossible)
	}
}

package quiz

import (
	"math"

	"history_quiz_backend/internal/model"
)

const (
	examMCQPoints   = 0.25
	ExamTotalPoints = 10.0
)

// examGroupCredit is the national-exam partial credit for a 4-statement true/false group,
// indexed by the number of correctly answered statements.
var examGroupCredit = [...]float64{0, 0.10, 0.25, 0.50, 1.00}

// Score computes the aggregate score for answers against questions. It has no side effects.
func Score(questions []model.Question, answers []*model.Answer, examMode bool) float64 {
	total := 0.0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		total += QuestionScore(q, answers[i], examMode)
	}
	return Round2(total)
}

// QuestionScore is the credit one answer earns under the practice or exam policy.
func QuestionScore(q model.Question, a *model.Answer, examMode bool) float64 {
	if a == nil {
		return 0
	}
	switch q.Type {
	case model.QuestionMCQ:
		if !mcqCorrect(q, a) {
			return 0
		}
		if examMode {
			return examMCQPoints
		}
		return 1
	case model.QuestionTFGroup:
		correct := CorrectStatements(q, a)
		if examMode {
			return ExamGroupCredit(correct, q.StatementCount())
		}
		return float64(correct)
	}
	return 0
}

// ExamGroupCredit maps correct statements to exam credit. Groups that are not the
// standard four statements only get full credit when every statement is right.
func ExamGroupCredit(correct, n int) float64 {
	if n <= 0 || correct <= 0 {
		return 0
	}
	if n == len(examGroupCredit)-1 {
		if correct > n {
			correct = n
		}
		return examGroupCredit[correct]
	}
	if correct >= n {
		return 1
	}
	if correct > 3 {
		correct = 3
	}
	return examGroupCredit[correct]
}

// CorrectStatements counts sub-statements whose stored answer matches the key.
func CorrectStatements(q model.Question, a *model.Answer) int {
	if a == nil || q.TFGroup == nil {
		return 0
	}
	n := 0
	for i, st := range q.TFGroup.Statements {
		if i >= len(a.Statements) {
			break
		}
		if v := a.Statements[i]; v != nil && *v == st.Answer {
			n++
		}
	}
	return n
}

// IsAnswerCorrect is the all-or-nothing rule used for pass/fail display.
func IsAnswerCorrect(q model.Question, a *model.Answer) bool {
	if a == nil {
		return false
	}
	switch q.Type {
	case model.QuestionMCQ:
		return mcqCorrect(q, a)
	case model.QuestionTFGroup:
		n := q.StatementCount()
		return n > 0 && CorrectStatements(q, a) == n
	}
	return false
}

// TotalPossible is the score ceiling: scorable items in practice, a fixed 10 in exam mode.
func TotalPossible(questions []model.Question, examMode bool) float64 {
	if examMode {
		return ExamTotalPoints
	}
	return float64(ScorableItems(questions))
}

func ScorableItems(questions []model.Question) int {
	n := 0
	for _, q := range questions {
		switch q.Type {
		case model.QuestionMCQ:
			n++
		case model.QuestionTFGroup:
			n += q.StatementCount()
		}
	}
	return n
}

// Grade recomputes every IsCorrect flag from scratch and stores the aggregate score.
func Grade(s *model.Session) {
	for i, q := range s.Questions {
		if i < len(s.UserAnswers) && s.UserAnswers[i] != nil {
			s.UserAnswers[i].IsCorrect = IsAnswerCorrect(q, s.UserAnswers[i])
		}
	}
	s.Score = Score(s.Questions, s.UserAnswers, s.IsExamMode)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mcqCorrect(q model.Question, a *model.Answer) bool {
	return q.MCQ != nil && a.Selected != nil && *a.Selected == q.MCQ.CorrectIndex
}

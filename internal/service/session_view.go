package service

import (
	"time"

	"history_quiz_backend/internal/model"
	"history_quiz_backend/internal/quiz"
)

type StatementView struct {
	Text   string `json:"text"`
	Answer *bool  `json:"answer,omitempty"`
}

// QuestionView 对外展示的题目，未到揭晓时机时不含答案与解析
type QuestionView struct {
	Index          int             `json:"index"`
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Label          string          `json:"label"`
	Position       quiz.Label      `json:"position"`
	Prompt         string          `json:"question,omitempty"`
	Context        string          `json:"context,omitempty"`
	Options        []string        `json:"options,omitempty"`
	Statements     []StatementView `json:"statements,omitempty"`
	CorrectIndex   *int            `json:"correctIndex,omitempty"`
	Explanation    string          `json:"explanation,omitempty"`
	Answer         *model.Answer   `json:"answer,omitempty"`
	Draft          []*bool         `json:"draft,omitempty"`
	Answered       bool            `json:"answered"`
	Marked         bool            `json:"marked"`
	IsCorrect      *bool           `json:"isCorrect,omitempty"`
	Credit         *float64        `json:"credit,omitempty"`
	IntegrityError string          `json:"integrityError,omitempty"`
}

type SessionView struct {
	Screen          model.Screen     `json:"screen"`
	Topic           string           `json:"topic"`
	Mode            model.QuizMode   `json:"mode"`
	IsExamMode      bool             `json:"isExamMode"`
	ExamStatus      model.ExamStatus `json:"examStatus"`
	IsActive        bool             `json:"isActive"`
	Countdown       int              `json:"countdown"`
	Timer           int              `json:"timer"`
	CurrentIdx      int              `json:"currentIdx"`
	Score           float64          `json:"score"`
	TotalPossible   float64          `json:"totalPossible"`
	Answered        int              `json:"answered"`
	Total           int              `json:"total"`
	MarkedQuestions []int            `json:"markedQuestions"`
	Overview        quiz.Overview    `json:"overview"`
	TimeSpent       int              `json:"timeSpent"`
	Questions       []QuestionView   `json:"questions"`
}

// BuildView renders the session for the client. In an exam nothing is revealed before
// submission; in practice a question is revealed once its answer is locked.
func BuildView(s *model.Session, now time.Time) *SessionView {
	v := &SessionView{
		Screen:          s.Screen,
		Topic:           s.Topic,
		Mode:            s.Mode,
		IsExamMode:      s.IsExamMode,
		ExamStatus:      s.ExamStatus,
		IsActive:        s.IsActive,
		Countdown:       s.Countdown,
		Timer:           s.Timer,
		CurrentIdx:      s.CurrentIdx,
		Score:           s.Score,
		TotalPossible:   quiz.TotalPossible(s.Questions, s.IsExamMode),
		Answered:        quiz.AnsweredCount(s),
		Total:           len(s.Questions),
		MarkedQuestions: append([]int{}, s.MarkedQuestions...),
		Overview:        quiz.Partitions(s.Questions),
		TimeSpent:       quiz.TimeSpent(s, now),
		Questions:       make([]QuestionView, 0, len(s.Questions)),
	}

	finished := quiz.IsFinished(s)
	for i, q := range s.Questions {
		var a *model.Answer
		if i < len(s.UserAnswers) {
			a = s.UserAnswers[i]
		}
		var draft []*bool
		if i == s.CurrentIdx && !s.IsExamMode {
			draft = s.Draft
		}
		v.Questions = append(v.Questions, questionView(s, i, q, a, draft, finished))
	}
	return v
}

func questionView(s *model.Session, idx int, q model.Question, a *model.Answer, draft []*bool, finished bool) QuestionView {
	label, _ := quiz.Position(s.Questions, idx)
	qv := QuestionView{
		Index:    idx,
		ID:       q.ID,
		Type:     string(q.Type),
		Label:    label.String(),
		Position: label,
		Answer:   a.Clone(),
		Draft:    copyBools(draft),
		Marked:   s.IsMarked(idx),
	}

	revealed := finished || (!s.IsExamMode && a != nil)

	switch q.Type {
	case model.QuestionMCQ:
		if q.MCQ != nil {
			qv.Prompt = q.MCQ.Prompt
			qv.Context = q.MCQ.Context
			qv.Options = q.MCQ.Options
			if revealed {
				key := q.MCQ.CorrectIndex
				qv.CorrectIndex = &key
			}
		}
		qv.Answered = a != nil && a.Selected != nil
	case model.QuestionTFGroup:
		if q.TFGroup != nil {
			qv.Context = q.TFGroup.Context
			for j, st := range q.TFGroup.Statements {
				sv := StatementView{Text: st.Text}
				// 练习模式下已锁定的小题立即给出答案
				if revealed || (j < len(draft) && draft[j] != nil) {
					ans := st.Answer
					sv.Answer = &ans
				}
				qv.Statements = append(qv.Statements, sv)
			}
		}
		if q.StatementCount() == 0 {
			qv.IntegrityError = "true/false group has no statements"
		}
		qv.Answered = a != nil && len(a.Statements) > 0
	}

	if revealed {
		qv.Explanation = q.Explanation
		correct := quiz.IsAnswerCorrect(q, a)
		qv.IsCorrect = &correct
		credit := quiz.QuestionScore(q, a, s.IsExamMode)
		qv.Credit = &credit
	} else if qv.Answer != nil {
		// 未揭晓前不暴露占位的 IsCorrect
		qv.Answer.IsCorrect = false
	}
	return qv
}

func copyBools(in []*bool) []*bool {
	if in == nil {
		return nil
	}
	out := make([]*bool, len(in))
	for i, b := range in {
		if b != nil {
			v := *b
			out[i] = &v
		}
	}
	return out
}

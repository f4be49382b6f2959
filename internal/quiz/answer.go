package quiz

import "history_quiz_backend/internal/model"

// SelectOption records an mcq choice for the current question. In practice mode the
// first choice locks the answer and is scored immediately; in exam mode the choice can
// be changed until submission and is only graded then.
func SelectOption(s *model.Session, option int) error {
	if err := checkEditable(s); err != nil {
		return err
	}
	q, a, ok := Current(s)
	if !ok {
		return ErrIndexOutOfRange
	}
	if q.Type != model.QuestionMCQ || q.MCQ == nil {
		return ErrWrongQuestionType
	}
	if option < 0 || option >= len(q.MCQ.Options) {
		return ErrOptionOutOfRange
	}

	if s.IsExamMode {
		s.UserAnswers[s.CurrentIdx] = &model.Answer{Selected: &option}
		return nil
	}

	if a != nil && a.Selected != nil {
		return ErrAnswerLocked
	}
	ans := &model.Answer{Selected: &option}
	ans.IsCorrect = IsAnswerCorrect(q, ans)
	s.UserAnswers[s.CurrentIdx] = ans
	s.Score = Round2(s.Score + QuestionScore(q, ans, false))
	return nil
}

// AnswerStatement records a true/false value for one sub-statement of the current group.
// Practice answers collect in the draft buffer and lock once every statement has a value.
func AnswerStatement(s *model.Session, stmt int, value bool) error {
	if err := checkEditable(s); err != nil {
		return err
	}
	q, a, ok := Current(s)
	if !ok {
		return ErrIndexOutOfRange
	}
	if q.Type != model.QuestionTFGroup {
		return ErrWrongQuestionType
	}
	n := q.StatementCount()
	if n == 0 {
		return ErrNoStatements
	}
	if stmt < 0 || stmt >= n {
		return ErrOptionOutOfRange
	}

	if s.IsExamMode {
		if a == nil {
			a = &model.Answer{}
			s.UserAnswers[s.CurrentIdx] = a
		}
		if len(a.Statements) != n {
			resized := make([]*bool, n)
			copy(resized, a.Statements)
			a.Statements = resized
		}
		a.Statements[stmt] = &value
		a.IsCorrect = false
		return nil
	}

	if a != nil {
		return ErrAnswerLocked
	}
	if len(s.Draft) != n {
		s.Draft = make([]*bool, n)
	}
	if s.Draft[stmt] != nil {
		return ErrAnswerLocked
	}
	s.Draft[stmt] = &value

	for _, v := range s.Draft {
		if v == nil {
			return nil
		}
	}
	ans := &model.Answer{Statements: s.Draft}
	ans.IsCorrect = IsAnswerCorrect(q, ans)
	s.UserAnswers[s.CurrentIdx] = ans
	s.Draft = nil
	s.Score = Round2(s.Score + QuestionScore(q, ans, false))
	return nil
}

func checkEditable(s *model.Session) error {
	if s.IsExamMode && s.ExamStatus == model.ExamSubmitted {
		return ErrSessionSubmitted
	}
	if s.Screen == model.ScreenResult {
		return ErrSessionSubmitted
	}
	if s.Screen != model.ScreenPlaying {
		return ErrNotPlaying
	}
	if s.IsExamMode && s.ExamStatus != model.ExamInProgress {
		return ErrExamNotStarted
	}
	return nil
}

package quiz

import "errors"

var (
	ErrNoQuestions       = errors.New("quiz: no questions")
	ErrIndexOutOfRange   = errors.New("quiz: question index out of range")
	ErrOptionOutOfRange  = errors.New("quiz: option index out of range")
	ErrWrongQuestionType = errors.New("quiz: operation does not match question type")
	ErrAnswerLocked      = errors.New("quiz: answer already locked")
	ErrSessionSubmitted  = errors.New("quiz: session already submitted")
	ErrExamNotStarted    = errors.New("quiz: exam has not started")
	ErrNotPlaying        = errors.New("quiz: session is not in play")
	ErrNoStatements      = errors.New("quiz: true/false group has no statements")
	ErrAnswersMismatch   = errors.New("quiz: answers do not match questions")
	ErrNotAnswered       = errors.New("quiz: answer the current question before moving on")
)

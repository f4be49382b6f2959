package model

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	QuestionMCQ     QuestionType = "mcq"
	QuestionTFGroup QuestionType = "tf_group"
)

// MCQ 单选题
type MCQ struct {
	Prompt       string
	Context      string
	Options      []string
	CorrectIndex int
}

// TFStatement 判断题组中的一个小题
type TFStatement struct {
	Text   string `json:"text"`
	Answer bool   `json:"answer"`
}

// TFGroup 材料 + 若干判断小题
type TFGroup struct {
	Context    string
	Statements []TFStatement
}

// Question is a tagged union: exactly one of MCQ / TFGroup is set, matching Type.
type Question struct {
	ID          string
	Type        QuestionType
	Explanation string
	MCQ         *MCQ
	TFGroup     *TFGroup
}

// questionDoc 是题目在接口和存储中的扁平结构
type questionDoc struct {
	ID           string        `json:"id,omitempty"`
	Type         QuestionType  `json:"type"`
	Question     string        `json:"question,omitempty"`
	Context      string        `json:"context,omitempty"`
	Options      []string      `json:"options,omitempty"`
	CorrectIndex *int          `json:"correctIndex,omitempty"`
	Statements   []TFStatement `json:"statements,omitempty"`
	Explanation  string        `json:"explanation,omitempty"`
}

func NewMCQ(prompt string, options []string, correctIndex int, explanation string) Question {
	return Question{
		Type:        QuestionMCQ,
		Explanation: explanation,
		MCQ:         &MCQ{Prompt: prompt, Options: options, CorrectIndex: correctIndex},
	}
}

func NewTFGroup(context string, statements []TFStatement, explanation string) Question {
	return Question{
		Type:        QuestionTFGroup,
		Explanation: explanation,
		TFGroup:     &TFGroup{Context: context, Statements: statements},
	}
}

// StatementCount returns the number of sub-statements of a tf_group, 0 for anything else.
func (q Question) StatementCount() int {
	if q.Type != QuestionTFGroup || q.TFGroup == nil {
		return 0
	}
	return len(q.TFGroup.Statements)
}

func (q Question) MarshalJSON() ([]byte, error) {
	doc := questionDoc{ID: q.ID, Type: q.Type, Explanation: q.Explanation}
	switch q.Type {
	case QuestionMCQ:
		if q.MCQ != nil {
			idx := q.MCQ.CorrectIndex
			doc.Question = q.MCQ.Prompt
			doc.Context = q.MCQ.Context
			doc.Options = q.MCQ.Options
			doc.CorrectIndex = &idx
		}
	case QuestionTFGroup:
		if q.TFGroup != nil {
			doc.Context = q.TFGroup.Context
			doc.Statements = q.TFGroup.Statements
		}
	}
	return json.Marshal(doc)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var doc questionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*q = Question{ID: doc.ID, Type: doc.Type, Explanation: doc.Explanation}
	switch doc.Type {
	case QuestionMCQ:
		correct := -1
		if doc.CorrectIndex != nil {
			correct = *doc.CorrectIndex
		}
		q.MCQ = &MCQ{
			Prompt:       doc.Question,
			Context:      doc.Context,
			Options:      doc.Options,
			CorrectIndex: correct,
		}
	case QuestionTFGroup:
		ctx := doc.Context
		if ctx == "" {
			ctx = doc.Question
		}
		q.TFGroup = &TFGroup{Context: ctx, Statements: doc.Statements}
	default:
		return fmt.Errorf("unknown question type %q", doc.Type)
	}
	return nil
}

package quiz

import (
	"fmt"

	"history_quiz_backend/internal/model"
)

type Part int

const (
	PartI  Part = 1
	PartII Part = 2
)

func (p Part) String() string {
	if p == PartII {
		return "II"
	}
	return "I"
}

func partOf(t model.QuestionType) Part {
	if t == model.QuestionTFGroup {
		return PartII
	}
	return PartI
}

// Label is the position of a question inside its own type partition.
type Label struct {
	Part   Part `json:"part"`
	Number int  `json:"number"`
	Total  int  `json:"total"`
}

func (l Label) String() string {
	return fmt.Sprintf("Part %s: %d/%d", l.Part, l.Number, l.Total)
}

// Position computes the label for questions[idx]. It is derived on demand and never stored.
func Position(questions []model.Question, idx int) (Label, bool) {
	if idx < 0 || idx >= len(questions) {
		return Label{}, false
	}
	part := partOf(questions[idx].Type)
	l := Label{Part: part}
	for i, q := range questions {
		if partOf(q.Type) != part {
			continue
		}
		l.Total++
		if i <= idx {
			l.Number++
		}
	}
	return l, true
}

// Overview holds the partition sizes shown in the progress grid.
type Overview struct {
	PartI  int `json:"partI"`
	PartII int `json:"partII"`
}

func Partitions(questions []model.Question) Overview {
	var o Overview
	for _, q := range questions {
		if partOf(q.Type) == PartII {
			o.PartII++
		} else {
			o.PartI++
		}
	}
	return o
}

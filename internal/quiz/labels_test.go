package quiz

import (
	"testing"

	"history_quiz_backend/internal/model"
)

func TestPosition(t *testing.T) {
	questions := []model.Question{mcq(0), mcq(1), group(true), mcq(2), group(false)}

	testCases := []struct {
		idx      int
		expected string
	}{
		{0, "Part I: 1/3"},
		{1, "Part I: 2/3"},
		{2, "Part II: 1/2"},
		{3, "Part I: 3/3"},
		{4, "Part II: 2/2"},
	}

	for _, tc := range testCases {
		l, ok := Position(questions, tc.idx)
		if !ok {
			t.Fatalf("index %d: no label", tc.idx)
		}
		if l.String() != tc.expected {
			t.Errorf("index %d: expected %q, got %q", tc.idx, tc.expected, l.String())
		}
	}

	if _, ok := Position(questions, 5); ok {
		t.Error("out of range index should have no label")
	}

	o := Partitions(questions)
	if o.PartI != 3 || o.PartII != 2 {
		t.Errorf("unexpected partitions %+v", o)
	}
}

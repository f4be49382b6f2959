package model

import (
	"encoding/json"
	"testing"
)

func TestQuestionDecodeGeneratedPayload(t *testing.T) {
	payload := `[
		{"type":"mcq","question":"Ai đọc Tuyên ngôn độc lập năm 1945?","options":["Hồ Chí Minh","Võ Nguyên Giáp"],"correctIndex":0,"explanation":"Ngày 2/9/1945."},
		{"type":"tf_group","context":"Tư liệu","statements":[{"text":"a","answer":true},{"text":"b","answer":false}],"explanation":"..."},
		{"type":"tf_group","question":"Chỉ có đề","explanation":""}
	]`

	var qs []Question
	if err := json.Unmarshal([]byte(payload), &qs); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[0].MCQ == nil || qs[0].TFGroup != nil || qs[0].MCQ.CorrectIndex != 0 || len(qs[0].MCQ.Options) != 2 {
		t.Errorf("mcq decoded wrongly: %+v", qs[0])
	}
	if qs[1].TFGroup == nil || qs[1].MCQ != nil || qs[1].StatementCount() != 2 {
		t.Errorf("tf_group decoded wrongly: %+v", qs[1])
	}
	if qs[2].StatementCount() != 0 || qs[2].TFGroup.Context != "Chỉ có đề" {
		t.Errorf("empty tf_group should decode with no statements: %+v", qs[2])
	}
}

func TestQuestionDecodeMissingCorrectIndex(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"type":"mcq","question":"?","options":["a","b"]}`), &q); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if q.MCQ.CorrectIndex != -1 {
		t.Errorf("missing correctIndex should decode as -1, got %d", q.MCQ.CorrectIndex)
	}
}

func TestQuestionDecodeUnknownType(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"type":"essay","question":"?"}`), &q); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	sel := 1
	yes := true
	s := &Session{
		Questions:       []Question{NewMCQ("?", []string{"a", "b"}, 1, "")},
		UserAnswers:     []*Answer{{Selected: &sel, Statements: []*bool{&yes}}},
		MarkedQuestions: []int{0},
	}

	c := s.Clone()
	*c.UserAnswers[0].Selected = 0
	*c.UserAnswers[0].Statements[0] = false
	c.MarkedQuestions[0] = 9

	if *s.UserAnswers[0].Selected != 1 || !*s.UserAnswers[0].Statements[0] || s.MarkedQuestions[0] != 0 {
		t.Error("clone shares state with the original")
	}
}

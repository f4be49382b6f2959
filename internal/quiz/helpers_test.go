package quiz

import (
	"time"

	"history_quiz_backend/internal/model"
)

var t0 = time.Date(2024, 6, 27, 7, 30, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func mcq(correct int) model.Question {
	return model.NewMCQ("Chiến dịch Điện Biên Phủ kết thúc năm nào?", []string{"1945", "1954", "1975", "1986"}, correct, "Năm 1954.")
}

func group(keys ...bool) model.Question {
	sts := make([]model.TFStatement, len(keys))
	for i, k := range keys {
		sts[i] = model.TFStatement{Text: "Nhận định", Answer: k}
	}
	return model.NewTFGroup("Đoạn tư liệu về Cách mạng tháng Tám.", sts, "Giải thích.")
}

func practice(questions ...model.Question) *model.Session {
	s, err := NewPractice(PracticeConfig{Topic: "Lịch sử Việt Nam", Count: len(questions), Mode: model.ModeMix}, questions, t0)
	if err != nil {
		panic(err)
	}
	return s
}

func startedExam(questions ...model.Question) *model.Session {
	s, err := NewExam(ExamConfig{Topic: "Đề thi THPT", DurationSeconds: 60, CountdownTicks: 3}, questions, t0)
	if err != nil {
		panic(err)
	}
	for CountdownTick(s) != TickStarted {
	}
	return s
}

package event

import "time"

const (
	RoutingSessionSubmitted = "quiz.session.submitted"
	RoutingResultRecorded   = "quiz.result.recorded"
)

// SessionSubmittedEvent 会话结束（手动提交/超时/练习完成）
type SessionSubmittedEvent struct {
	EventType   string    `json:"eventType"`
	UserID      uint      `json:"userId"`
	Topic       string    `json:"topic"`
	IsExam      bool      `json:"isExam"`
	Reason      string    `json:"reason"`
	Score       float64   `json:"score"`
	Total       float64   `json:"total"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type ResultRecordedEvent struct {
	EventType        string    `json:"eventType"`
	ResultID         string    `json:"resultId"`
	UserID           uint      `json:"userId"`
	Type             string    `json:"type"`
	Score            float64   `json:"score"`
	TotalPossible    float64   `json:"totalPossible"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	ArchiveURL       string    `json:"archiveUrl,omitempty"`
	RecordedAt       time.Time `json:"recordedAt"`
}

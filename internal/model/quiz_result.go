package model

type ResultType string

const (
	ResultPractice ResultType = "practice"
	ResultExam     ResultType = "exam"
)

// QuizResult 练习/考试历史记录，只追加
type QuizResult struct {
	ResultBase
	UserID           uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	Topic            string     `gorm:"size:255" json:"topic"`
	Score            float64    `gorm:"not null" json:"score"`
	TotalPossible    float64    `gorm:"not null" json:"totalPossible"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`
	Type             ResultType `gorm:"type:varchar(16);index" json:"type"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

package model

import "time"

// SavedSession 每个用户一行，user_id 为主键保证只保留最后一次保存
type SavedSession struct {
	UserID   uint      `gorm:"primaryKey;autoIncrement:false;type:bigint unsigned" json:"userId"`
	Document string    `gorm:"type:json;not null" json:"-"`
	Screen   Screen    `gorm:"size:16" json:"screen"`
	IsExam   bool      `json:"isExam"`
	Topic    string    `gorm:"size:255" json:"topic"`
	SavedAt  time.Time `gorm:"autoUpdateTime" json:"savedAt"`
}

func (SavedSession) TableName() string {
	return "saved_sessions"
}

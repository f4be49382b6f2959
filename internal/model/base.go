package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResultBase 只追加的记录：uuid 主键 + 创建时间，不做软删除
type ResultBase struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (b *ResultBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

func NewID() string {
	return uuid.NewString()
}

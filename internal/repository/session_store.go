package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"history_quiz_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore keeps at most one saved session per user. Load returns (nil, nil) when
// nothing is stored. Implementations never retain the pointer they are given.
type SessionStore interface {
	Save(ctx context.Context, userID uint, s *model.Session) error
	Load(ctx context.Context, userID uint) (*model.Session, error)
	Delete(ctx context.Context, userID uint) error
}

func encodeSession(s *model.Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	return json.Marshal(s)
}

func decodeSession(data []byte) (*model.Session, error) {
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode saved session: %w", err)
	}
	return &s, nil
}

// GormSessionStore 基于 MySQL saved_sessions 表
type GormSessionStore struct {
	DB *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{DB: db}
}

func (r *GormSessionStore) Save(ctx context.Context, userID uint, s *model.Session) error {
	doc, err := encodeSession(s)
	if err != nil {
		return err
	}

	row := model.SavedSession{
		UserID:   userID,
		Document: string(doc),
		Screen:   s.Screen,
		IsExam:   s.IsExamMode,
		Topic:    s.Topic,
	}

	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "screen", "is_exam", "topic", "saved_at"}),
	}).Create(&row).Error
}

func (r *GormSessionStore) Load(ctx context.Context, userID uint) (*model.Session, error) {
	var row model.SavedSession
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSession([]byte(row.Document))
}

func (r *GormSessionStore) Delete(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.SavedSession{}).Error
}

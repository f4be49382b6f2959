package repository

import (
	"context"

	"history_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuizResultRepository struct {
	DB *gorm.DB
}

func NewQuizResultRepository(db *gorm.DB) *QuizResultRepository {
	return &QuizResultRepository{DB: db}
}

func (r *QuizResultRepository) Create(ctx context.Context, result *model.QuizResult) error {
	return r.DB.WithContext(ctx).Create(result).Error
}

func (r *QuizResultRepository) ListByUser(ctx context.Context, userID uint, page, limit int) ([]model.QuizResult, int64, error) {
	var results []model.QuizResult
	var total int64

	db := r.DB.WithContext(ctx).Model(&model.QuizResult{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&results).Error
	return results, total, err
}

// ResultStats 按类型汇总
type ResultStats struct {
	Type         model.ResultType `json:"type"`
	Attempts     int64            `json:"attempts"`
	AverageScore float64          `json:"averageScore"`
	BestScore    float64          `json:"bestScore"`
}

func (r *QuizResultRepository) StatsByUser(ctx context.Context, userID uint) ([]ResultStats, error) {
	var stats []ResultStats
	err := r.DB.WithContext(ctx).Model(&model.QuizResult{}).
		Select("type, COUNT(*) AS attempts, COALESCE(AVG(score), 0) AS average_score, COALESCE(MAX(score), 0) AS best_score").
		Where("user_id = ?", userID).
		Group("type").
		Order("type").
		Scan(&stats).Error
	return stats, err
}

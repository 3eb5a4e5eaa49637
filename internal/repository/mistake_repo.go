package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// MistakeRepository persists mistake records in bulk.
type MistakeRepository interface {
	CreateBatch(ctx context.Context, mistakes []models.Mistake) error
	ListByEvaluationID(ctx context.Context, evaluationID uint) ([]models.Mistake, error)
	ListByEvaluationIDs(ctx context.Context, evaluationIDs []uint) ([]models.Mistake, error)
}

// NewMistakeRepository constructs a mistake repository.
func NewMistakeRepository(db *gorm.DB) MistakeRepository {
	return &mistakeRepository{db: db}
}

type mistakeRepository struct {
	db *gorm.DB
}

func (r *mistakeRepository) CreateBatch(ctx context.Context, mistakes []models.Mistake) error {
	if len(mistakes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&mistakes).Error
}

func (r *mistakeRepository) ListByEvaluationID(ctx context.Context, evaluationID uint) ([]models.Mistake, error) {
	var mistakes []models.Mistake
	err := r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("position_start ASC").
		Find(&mistakes).Error
	return mistakes, err
}

func (r *mistakeRepository) ListByEvaluationIDs(ctx context.Context, evaluationIDs []uint) ([]models.Mistake, error) {
	if len(evaluationIDs) == 0 {
		return nil, nil
	}

	var mistakes []models.Mistake
	err := r.db.WithContext(ctx).
		Where("evaluation_id IN ?", evaluationIDs).
		Find(&mistakes).Error
	return mistakes, err
}

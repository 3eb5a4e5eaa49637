package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// EvaluationRepository persists evaluation records.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id uint) (models.Evaluation, error)
	GetBySubmissionID(ctx context.Context, submissionID uint) (models.Evaluation, error)
	ListBySubmissionIDs(ctx context.Context, submissionIDs []uint) ([]models.Evaluation, error)
	// PurgeBySubmissionID removes the evaluation and its dependent mistakes
	// and feedback in one transaction. Used before a retry so a failed
	// attempt's partial artifacts never masquerade as authoritative results.
	PurgeBySubmissionID(ctx context.Context, submissionID uint) error
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

type evaluationRepository struct {
	db *gorm.DB
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Submission").
		Preload("Submission.Activity").
		First(&evaluation, id).Error
	if err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) GetBySubmissionID(ctx context.Context, submissionID uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&evaluation).Error
	if err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) ListBySubmissionIDs(ctx context.Context, submissionIDs []uint) ([]models.Evaluation, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}

	var evaluations []models.Evaluation
	err := r.db.WithContext(ctx).
		Where("submission_id IN ?", submissionIDs).
		Find(&evaluations).Error
	return evaluations, err
}

func (r *evaluationRepository) PurgeBySubmissionID(ctx context.Context, submissionID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var evaluation models.Evaluation
		err := tx.Where("submission_id = ?", submissionID).First(&evaluation).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		if err := tx.Where("evaluation_id = ?", evaluation.ID).Delete(&models.Mistake{}).Error; err != nil {
			return err
		}
		if err := tx.Where("evaluation_id = ?", evaluation.ID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Evaluation{}, evaluation.ID).Error
	})
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// SubmissionRepository exposes the read and status-transition operations the
// pipeline needs on the submission store.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	ListPending(ctx context.Context, limit int) ([]models.Submission, error)
	ListRecentByStudent(ctx context.Context, studentID uint, limit int) ([]models.Submission, error)
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Activity").
		Preload("Activity.Rubric").
		First(&submission, id).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *submissionRepository) ListPending(ctx context.Context, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 10
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("status = ?", models.SubmissionStatusPending).
		Order("submitted_at ASC").
		Limit(limit).
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListRecentByStudent(ctx context.Context, studentID uint, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 10
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&submissions).Error
	return submissions, err
}

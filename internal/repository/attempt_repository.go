package repository

import (
	"time"

	"edu_assess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.StudentAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.StudentAttempt, error) {
	var a model.StudentAttempt
	if err := r.DB.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByAssessment(assessmentID uint, page, limit int) ([]model.StudentAttempt, int64, error) {
	var as []model.StudentAttempt
	var total int64
	query := r.DB.Model(&model.StudentAttempt{}).Where("assessment_id = ?", assessmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

// Finalize transitions InProgress -> Completed. The WHERE clause on
// is_completed makes the transition single-winner under concurrent submits:
// the loser sees zero rows affected and must report the attempt as already
// completed.
func (r *AttemptRepository) Finalize(id string, score, totalPoints, percentage, timeTaken int, submittedAt time.Time) (bool, error) {
	res := r.DB.Model(&model.StudentAttempt{}).
		Where("id = ? AND is_completed = ?", id, false).
		Updates(map[string]interface{}{
			"is_completed":       true,
			"submitted_at":       submittedAt,
			"score":              score,
			"total_points":       totalPoints,
			"percentage":         percentage,
			"time_taken_minutes": timeTaken,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateAnswer inserts one answer, relying on the (attempt_id, question_id)
// unique index. A conflicting concurrent insert is not an error: created is
// false and the caller reads back the stored row.
func (r *AttemptRepository) CreateAnswer(answer *model.StudentAnswer) (bool, error) {
	if answer.ID == "" {
		answer.ID = model.GenerateUUID()
	}
	res := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoNothing: true,
	}).Create(answer)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AttemptRepository) FindAnswer(attemptID string, questionID uint) (*model.StudentAnswer, error) {
	var a model.StudentAnswer
	err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListAnswers(attemptID string) ([]model.StudentAnswer, error) {
	var answers []model.StudentAnswer
	// id breaks ties when two answers land in the same timestamp tick, so
	// the "last answered" lookup in the adaptive step stays deterministic.
	err := r.DB.Where("attempt_id = ?", attemptID).Order("created_at asc, id asc").Find(&answers).Error
	return answers, err
}

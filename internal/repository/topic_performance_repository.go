package repository

import (
	"time"

	"edu_assess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TopicPerformanceRepository struct {
	DB *gorm.DB
}

func NewTopicPerformanceRepository(db *gorm.DB) *TopicPerformanceRepository {
	return &TopicPerformanceRepository{DB: db}
}

// Upsert is a single increment-or-insert statement on the
// (student_id, topic_id, subtopic_id) unique index, so concurrent answer
// submissions for the same student/topic cannot lose updates.
// subtopicID 0 is the course-level bucket.
func (r *TopicPerformanceRepository) Upsert(studentID, topicID, subtopicID uint, isCorrect bool, now time.Time) error {
	correct := 0
	if isCorrect {
		correct = 1
	}
	rec := model.TopicPerformance{
		StudentID:       studentID,
		TopicID:         topicID,
		SubtopicID:      subtopicID,
		Attempts:        1,
		CorrectAnswers:  correct,
		LastAttemptedAt: now,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "topic_id"}, {Name: "subtopic_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempts":          gorm.Expr("attempts + 1"),
			"correct_answers":   gorm.Expr("correct_answers + ?", correct),
			"last_attempted_at": now,
		}),
	}).Create(&rec).Error
}

func (r *TopicPerformanceRepository) ListByStudent(studentID uint) ([]model.TopicPerformance, error) {
	var recs []model.TopicPerformance
	err := r.DB.Where("student_id = ?", studentID).
		Order("last_attempted_at desc").Find(&recs).Error
	return recs, err
}

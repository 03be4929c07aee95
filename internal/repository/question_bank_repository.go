package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu_assess_backend/internal/engine"
	"edu_assess_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Candidate pools are re-read on every adaptive step, so the filtered listing
// is cached briefly in redis and invalidated on any bank write for the course.
const bankPoolTTL = 30 * time.Second

type QuestionBankRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewQuestionBankRepository(db *gorm.DB, rdb *redis.Client) *QuestionBankRepository {
	return &QuestionBankRepository{DB: db, Redis: rdb}
}

func (r *QuestionBankRepository) Create(q *model.Question) error {
	q.AssessmentID = nil
	if err := r.DB.Create(q).Error; err != nil {
		return err
	}
	r.invalidate(q.CourseID)
	return nil
}

// Update replaces the question row and its option set.
func (r *QuestionBankRepository) Update(q *model.Question) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", q.ID).
			Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		return tx.Save(q).Error
	})
	if err != nil {
		return err
	}
	r.invalidate(q.CourseID)
	return nil
}

func (r *QuestionBankRepository) Delete(courseID, id uint) error {
	err := r.DB.Where("course_id = ? AND assessment_id IS NULL", courseID).
		Delete(&model.Question{}, id).Error
	if err != nil {
		return err
	}
	r.invalidate(courseID)
	return nil
}

func (r *QuestionBankRepository) List(courseID uint, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64
	query := r.DB.Model(&model.Question{}).
		Where("course_id = ? AND assessment_id IS NULL", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Options").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// ListEligible implements engine.QuestionSource. Exclusion of already-asked
// ids stays in the selector so the cached pool is shared across attempts.
func (r *QuestionBankRepository) ListEligible(courseID uint, f engine.Filters) ([]model.Question, error) {
	key := poolKey(courseID, f)
	if cached, ok := r.poolFromCache(key); ok {
		return cached, nil
	}

	query := r.DB.Where("course_id = ? AND assessment_id IS NULL", courseID)
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.TopicID != 0 {
		query = query.Where("topic_id = ?", f.TopicID)
	}
	if f.SubtopicID != 0 {
		query = query.Where("subtopic_id = ?", f.SubtopicID)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}

	var qs []model.Question
	if err := query.Find(&qs).Error; err != nil {
		return nil, err
	}
	r.poolToCache(key, qs)
	return qs, nil
}

func poolKey(courseID uint, f engine.Filters) string {
	return fmt.Sprintf("bankpool:%d:%s:%d:%d:%s", courseID, f.Type, f.TopicID, f.SubtopicID, f.Difficulty)
}

func (r *QuestionBankRepository) poolFromCache(key string) ([]model.Question, bool) {
	if r.Redis == nil {
		return nil, false
	}
	raw, err := r.Redis.Get(context.Background(), key).Bytes()
	if err != nil {
		return nil, false
	}
	var qs []model.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, false
	}
	return qs, true
}

func (r *QuestionBankRepository) poolToCache(key string, qs []model.Question) {
	if r.Redis == nil {
		return
	}
	raw, err := json.Marshal(qs)
	if err != nil {
		return
	}
	r.Redis.Set(context.Background(), key, raw, bankPoolTTL)
}

func (r *QuestionBankRepository) invalidate(courseID uint) {
	if r.Redis == nil {
		return
	}
	ctx := context.Background()
	iter := r.Redis.Scan(ctx, 0, fmt.Sprintf("bankpool:%d:*", courseID), 0).Iterator()
	for iter.Next(ctx) {
		r.Redis.Del(ctx, iter.Val())
	}
}

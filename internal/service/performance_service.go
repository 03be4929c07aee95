package service

import (
	"time"

	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/util"
)

type PerformanceStore interface {
	Upsert(studentID, topicID, subtopicID uint, isCorrect bool, now time.Time) error
	ListByStudent(studentID uint) ([]model.TopicPerformance, error)
}

// EnrollmentChecker answers whether an instructor teaches any course the
// student is enrolled in.
type EnrollmentChecker interface {
	HasStudentInCourses(instructorID, studentID uint) (bool, error)
}

// PerformanceService maintains the rolling per-topic accuracy counters and
// serves the read accessor consumed by recommendation generation.
type PerformanceService struct {
	Repo    PerformanceStore
	Courses EnrollmentChecker
	now     func() time.Time
}

func NewPerformanceService(repo PerformanceStore, courses EnrollmentChecker) *PerformanceService {
	return &PerformanceService{Repo: repo, Courses: courses, now: time.Now}
}

// RecordResult increments the (student, topic, subtopic) counters, creating
// the record on first sight. Called once per evaluated answer; when the
// question carries no subtopic the course-level bucket (subtopic 0) is used.
func (s *PerformanceService) RecordResult(studentID, topicID, subtopicID uint, isCorrect bool) error {
	if err := s.Repo.Upsert(studentID, topicID, subtopicID, isCorrect, s.now()); err != nil {
		return util.Storage(err)
	}
	return nil
}

type TopicAccuracy struct {
	TopicID         uint      `json:"topicId"`
	SubtopicID      uint      `json:"subtopicId,omitempty"`
	Attempts        int       `json:"attempts"`
	CorrectAnswers  int       `json:"correctAnswers"`
	Accuracy        float64   `json:"accuracy"` // Percentage, one decimal
	LastAttemptedAt time.Time `json:"lastAttemptedAt"`
}

// InstructorView serves a student's accuracy records to an instructor. Only
// instructors teaching a course the student is enrolled in may look; admins
// skip the check.
func (s *PerformanceService) InstructorView(viewerID uint, role model.UserRole, studentID uint) ([]TopicAccuracy, error) {
	if role != model.Admin {
		ok, err := s.Courses.HasStudentInCourses(viewerID, studentID)
		if err != nil {
			return nil, util.Storage(err)
		}
		if !ok {
			return nil, util.ErrPermissionDenied
		}
	}
	return s.StudentPerformance(studentID)
}

func (s *PerformanceService) StudentPerformance(studentID uint) ([]TopicAccuracy, error) {
	recs, err := s.Repo.ListByStudent(studentID)
	if err != nil {
		return nil, util.Storage(err)
	}
	out := make([]TopicAccuracy, len(recs))
	for i, rec := range recs {
		out[i] = TopicAccuracy{
			TopicID:         rec.TopicID,
			SubtopicID:      rec.SubtopicID,
			Attempts:        rec.Attempts,
			CorrectAnswers:  rec.CorrectAnswers,
			Accuracy:        rec.Accuracy(),
			LastAttemptedAt: rec.LastAttemptedAt,
		}
	}
	return out, nil
}

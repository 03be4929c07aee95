package service

import (
	"errors"

	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/repository"
	"edu_assess_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	Repo *repository.CourseRepository
}

func NewCourseService(repo *repository.CourseRepository) *CourseService {
	return &CourseService{Repo: repo}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CourseRequest) (*model.Course, error) {
	c := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: instructorID,
	}
	if err := s.Repo.Create(c); err != nil {
		return nil, util.Storage(err)
	}
	return c, nil
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	c, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, util.Storage(err)
	}
	return c, nil
}

func (s *CourseService) ListCourses(page, limit int) ([]model.Course, int64, error) {
	cs, total, err := s.Repo.List(page, limit)
	if err != nil {
		return nil, 0, util.Storage(err)
	}
	return cs, total, nil
}

// Enroll links a student to a course. Enrolling twice is not an error; the
// existing link is returned.
func (s *CourseService) Enroll(studentID, courseID uint) (*model.Enrollment, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindEnrollment(studentID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.Storage(err)
	}

	e, err := s.Repo.Enroll(studentID, courseID)
	if err != nil {
		return nil, util.Storage(err)
	}
	return e, nil
}

func (s *CourseService) UpdateCourse(instructorID, courseID uint, req CourseRequest) (*model.Course, error) {
	c, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if c.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}

	c.Title = req.Title
	c.Description = req.Description
	if err := s.Repo.Update(c); err != nil {
		return nil, util.Storage(err)
	}
	return c, nil
}

func (s *CourseService) ListMyEnrollments(studentID uint) ([]model.Enrollment, error) {
	es, err := s.Repo.ListEnrollments(studentID)
	if err != nil {
		return nil, util.Storage(err)
	}
	return es, nil
}

type TopicRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *CourseService) CreateTopic(instructorID, courseID uint, req TopicRequest) (*model.Topic, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}

	t := &model.Topic{CourseID: courseID, Name: req.Name, Description: req.Description}
	if err := s.Repo.CreateTopic(t); err != nil {
		return nil, util.Storage(err)
	}
	return t, nil
}

func (s *CourseService) ListTopics(courseID uint) ([]model.Topic, error) {
	ts, err := s.Repo.ListTopics(courseID)
	if err != nil {
		return nil, util.Storage(err)
	}
	return ts, nil
}

func (s *CourseService) CreateSubtopic(instructorID, topicID uint, name string) (*model.Subtopic, error) {
	topic, err := s.Repo.FindTopicByID(topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.Validation("topic %d not found", topicID)
		}
		return nil, util.Storage(err)
	}
	course, err := s.GetCourse(topic.CourseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}

	st := &model.Subtopic{TopicID: topicID, Name: name}
	if err := s.Repo.CreateSubtopic(st); err != nil {
		return nil, util.Storage(err)
	}
	return st, nil
}

func (s *CourseService) ListSubtopics(topicID uint) ([]model.Subtopic, error) {
	sts, err := s.Repo.ListSubtopics(topicID)
	if err != nil {
		return nil, util.Storage(err)
	}
	return sts, nil
}

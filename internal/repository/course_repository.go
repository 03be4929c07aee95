package repository

import (
	"time"

	"edu_assess_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var c model.Course
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) List(page, limit int) ([]model.Course, int64, error) {
	var cs []model.Course
	var total int64
	query := r.DB.Model(&model.Course{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// Enrollment related methods

// FindEnrollment returns the link record proving a student may attempt the
// course's assessments, or gorm.ErrRecordNotFound.
func (r *CourseRepository) FindEnrollment(studentID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// HasStudentInCourses reports whether the student is enrolled in any course
// taught by the instructor. The soft-delete filter must be applied to the
// joined table by hand; gorm only scopes the primary model.
func (r *CourseRepository) HasStudentInCourses(instructorID, studentID uint) (bool, error) {
	var n int64
	err := r.DB.Model(&model.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id AND courses.deleted_at IS NULL").
		Where("courses.instructor_id = ? AND enrollments.student_id = ?", instructorID, studentID).
		Count(&n).Error
	return n > 0, err
}

func (r *CourseRepository) ListEnrollments(studentID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Where("student_id = ?", studentID).Order("enrolled_at desc").Find(&es).Error
	return es, err
}

func (r *CourseRepository) Enroll(studentID, courseID uint) (*model.Enrollment, error) {
	e := &model.Enrollment{StudentID: studentID, CourseID: courseID, EnrolledAt: time.Now()}
	if err := r.DB.Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// Topic related methods

func (r *CourseRepository) CreateTopic(t *model.Topic) error {
	return r.DB.Create(t).Error
}

func (r *CourseRepository) FindTopicByID(id uint) (*model.Topic, error) {
	var t model.Topic
	if err := r.DB.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *CourseRepository) ListTopics(courseID uint) ([]model.Topic, error) {
	var ts []model.Topic
	err := r.DB.Where("course_id = ?", courseID).Order("created_at asc").Find(&ts).Error
	return ts, err
}

func (r *CourseRepository) CreateSubtopic(st *model.Subtopic) error {
	return r.DB.Create(st).Error
}

func (r *CourseRepository) ListSubtopics(topicID uint) ([]model.Subtopic, error) {
	var sts []model.Subtopic
	err := r.DB.Where("topic_id = ?", topicID).Order("created_at asc").Find(&sts).Error
	return sts, err
}

package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	InstructorID uint   `gorm:"index;type:bigint unsigned" json:"instructorId"`
	Instructor   *User  `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment links a student to a course. An attempt may only be started
// against assessments of courses the student is enrolled in.
type Enrollment struct {
	BaseModel
	StudentID  uint      `gorm:"uniqueIndex:idx_student_course;type:bigint unsigned" json:"studentId"`
	CourseID   uint      `gorm:"uniqueIndex:idx_student_course;type:bigint unsigned" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

type Topic struct {
	BaseModel
	CourseID    uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Topic) TableName() string {
	return "topics"
}

type Subtopic struct {
	BaseModel
	TopicID uint   `gorm:"index;type:bigint unsigned" json:"topicId"`
	Name    string `gorm:"size:255;not null" json:"name"`
}

func (Subtopic) TableName() string {
	return "subtopics"
}

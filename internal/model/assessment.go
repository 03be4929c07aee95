package model

import "time"

// swagger:model Assessment
type Assessment struct {
	BaseModel
	CourseID        uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	InstructorID    uint       `gorm:"index;type:bigint unsigned" json:"instructorId"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	IsPublished     bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	MCQCount        int        `gorm:"default:0" json:"mcqCount"`
	MSQCount        int        `gorm:"default:0" json:"msqCount"`
	SubjectiveCount int        `gorm:"default:0" json:"subjectiveCount"`
	TimeLimit       int        `gorm:"default:0" json:"timeLimit"` // Minutes, 0 = unlimited
	PassingScore    int        `gorm:"default:0" json:"passingScore"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (a *Assessment) QuestionCount() int {
	return a.MCQCount + a.MSQCount + a.SubjectiveCount
}

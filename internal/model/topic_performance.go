package model

import "time"

// TopicPerformance is the rolling per-student accuracy counter consumed by
// recommendation generation. SubtopicID 0 is the course-level bucket and is a
// distinct key from any real subtopic.
type TopicPerformance struct {
	BaseModel
	StudentID       uint      `gorm:"uniqueIndex:idx_student_topic;type:bigint unsigned" json:"studentId"`
	TopicID         uint      `gorm:"uniqueIndex:idx_student_topic;type:bigint unsigned" json:"topicId"`
	SubtopicID      uint      `gorm:"uniqueIndex:idx_student_topic;type:bigint unsigned;default:0" json:"subtopicId"`
	Attempts        int       `gorm:"default:0" json:"attempts"`
	CorrectAnswers  int       `gorm:"default:0" json:"correctAnswers"`
	LastAttemptedAt time.Time `json:"lastAttemptedAt"`
}

func (TopicPerformance) TableName() string {
	return "topic_performances"
}

// Accuracy returns correct/attempts as a percentage rounded to one decimal,
// 0 when the record has no attempts.
func (p *TopicPerformance) Accuracy() float64 {
	if p.Attempts == 0 {
		return 0
	}
	pct := float64(p.CorrectAnswers) / float64(p.Attempts) * 100
	return float64(int(pct*10+0.5)) / 10
}

package model

import (
	"encoding/json"
	"time"
)

// StudentAttempt is one student's run through an assessment. It is created by
// the start call, mutated only by answer submission and the single finalize
// step, and never deleted.
// swagger:model StudentAttempt
type StudentAttempt struct {
	UUIDBase
	AssessmentID     uint       `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	StudentID        uint       `gorm:"index;type:bigint unsigned" json:"studentId"`
	EnrollmentID     uint       `gorm:"type:bigint unsigned" json:"enrollmentId"`
	StartedAt        time.Time  `json:"startedAt"`
	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	IsCompleted      bool       `gorm:"default:false" json:"isCompleted"`
	Score            int        `gorm:"default:0" json:"score"`
	TotalPoints      int        `gorm:"default:0" json:"totalPoints"`
	Percentage       int        `gorm:"default:0" json:"percentage"`
	TimeTakenMinutes int        `gorm:"default:0" json:"timeTakenMinutes"`
}

func (StudentAttempt) TableName() string {
	return "student_attempts"
}

// StudentAnswer is append-only per attempt. The unique index keeps two
// concurrent submissions for the same question from both inserting; the
// conflicting writer reads back the stored row.
type StudentAnswer struct {
	UUIDBase
	AttemptID         string          `gorm:"uniqueIndex:idx_attempt_question;type:varchar(36)" json:"attemptId"`
	QuestionID        uint            `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned" json:"questionId"`
	SelectedOptionIDs json.RawMessage `gorm:"type:json" json:"selectedOptionIds,omitempty"` // JSON []uint, MCQ/MSQ only
	AnswerText        string          `gorm:"type:text" json:"answerText,omitempty"`        // Subjective only
	IsCorrect         bool            `gorm:"default:false" json:"isCorrect"`
	PointsEarned      int             `gorm:"default:0" json:"pointsEarned"`
	Feedback          string          `gorm:"type:text" json:"feedback,omitempty"`
	Pending           bool            `gorm:"default:false" json:"pending"` // Subjective verdicts awaiting review
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}

// SelectedIDs decodes the stored option id set; nil for subjective answers.
func (a *StudentAnswer) SelectedIDs() []uint {
	if len(a.SelectedOptionIDs) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(a.SelectedOptionIDs, &ids); err != nil {
		return nil
	}
	return ids
}

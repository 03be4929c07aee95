package model

type QuestionType string

const (
	QuestionMCQ        QuestionType = "mcq"
	QuestionMSQ        QuestionType = "msq"
	QuestionSubjective QuestionType = "subjective"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question serves both scopes: rows with AssessmentID set belong to one
// assessment; rows without it are reusable bank entries for their course,
// tagged by topic/subtopic/difficulty for adaptive selection.
// swagger:model Question
type Question struct {
	BaseModel
	AssessmentID *uint            `gorm:"index;type:bigint unsigned" json:"assessmentId,omitempty"`
	CourseID     uint             `gorm:"index;type:bigint unsigned" json:"courseId"`
	Type         QuestionType     `gorm:"type:enum('mcq','msq','subjective');not null" json:"type"`
	Text         string           `gorm:"type:text;not null" json:"text"`
	Points       int              `gorm:"default:1" json:"points"`
	Difficulty   Difficulty       `gorm:"type:enum('easy','medium','hard');default:'medium'" json:"difficulty"`
	BloomLevel   string           `gorm:"size:50" json:"bloomLevel,omitempty"` // Opaque pedagogical tag
	TopicID      uint             `gorm:"index;type:bigint unsigned" json:"topicId,omitempty"`
	SubtopicID   uint             `gorm:"index;type:bigint unsigned" json:"subtopicId,omitempty"`
	Explanation  string           `gorm:"type:text" json:"explanation,omitempty"`
	Options      []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) IsBankEntry() bool {
	return q.AssessmentID == nil
}

// CorrectOptionIDs is derived from preloaded options; grading paths that skip
// the preload fetch the set through the repository instead.
func (q *Question) CorrectOptionIDs() []uint {
	var ids []uint
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Label      string `gorm:"size:10" json:"label"` // "A", "B", ...
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}

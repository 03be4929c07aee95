package service

import (
	"errors"

	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/repository"
	"edu_assess_backend/internal/util"

	"gorm.io/gorm"
)

type AssessmentService struct {
	Repo    *repository.AssessmentRepository
	Bank    *repository.QuestionBankRepository
	Courses *repository.CourseRepository
}

func NewAssessmentService(repo *repository.AssessmentRepository, bank *repository.QuestionBankRepository, courses *repository.CourseRepository) *AssessmentService {
	return &AssessmentService{Repo: repo, Bank: bank, Courses: courses}
}

type AssessmentRequest struct {
	CourseID     uint   `json:"courseId"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	TimeLimit    int    `json:"timeLimit"`
	PassingScore int    `json:"passingScore"`
}

func (s *AssessmentService) CreateAssessment(instructorID uint, req AssessmentRequest) (*model.Assessment, error) {
	course, err := s.Courses.FindByID(req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, util.Storage(err)
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}

	a := &model.Assessment{
		CourseID:     req.CourseID,
		InstructorID: instructorID,
		Title:        req.Title,
		Description:  req.Description,
		TimeLimit:    req.TimeLimit,
		PassingScore: req.PassingScore,
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, util.Storage(err)
	}
	return a, nil
}

func (s *AssessmentService) GetAssessment(id uint) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, util.Storage(err)
	}
	return a, nil
}

// UpdateAssessment edits metadata only; questions and attempt aggregates are
// untouched.
func (s *AssessmentService) UpdateAssessment(instructorID, id uint, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.ownedAssessment(instructorID, id)
	if err != nil {
		return nil, err
	}

	a.Title = req.Title
	a.Description = req.Description
	a.TimeLimit = req.TimeLimit
	a.PassingScore = req.PassingScore
	if err := s.Repo.Update(a); err != nil {
		return nil, util.Storage(err)
	}
	return a, nil
}

// SetPublished toggles student visibility; nothing else about the assessment
// changes.
func (s *AssessmentService) SetPublished(instructorID, id uint, published bool) error {
	if _, err := s.ownedAssessment(instructorID, id); err != nil {
		return err
	}
	if err := s.Repo.SetPublished(id, published); err != nil {
		return util.Storage(err)
	}
	return nil
}

// ListCourseAssessments lists a course's assessments; students only ever see
// published ones.
func (s *AssessmentService) ListCourseAssessments(courseID uint, publishedOnly bool) ([]model.Assessment, error) {
	as, err := s.Repo.ListByCourse(courseID, publishedOnly)
	if err != nil {
		return nil, util.Storage(err)
	}
	return as, nil
}

type OptionRequest struct {
	Label     string `json:"label"`
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionRequest struct {
	Type        model.QuestionType `json:"type" binding:"required"`
	Text        string             `json:"text" binding:"required"`
	Points      int                `json:"points"`
	Difficulty  model.Difficulty   `json:"difficulty"`
	BloomLevel  string             `json:"bloomLevel"`
	TopicID     uint               `json:"topicId"`
	SubtopicID  uint               `json:"subtopicId"`
	Explanation string             `json:"explanation"`
	Options     []OptionRequest    `json:"options"`
}

// validateQuestion enforces the option invariants per question type: MCQ has
// exactly one correct option, MSQ at least two, subjective none.
func validateQuestion(req QuestionRequest) error {
	correct := 0
	for _, o := range req.Options {
		if o.IsCorrect {
			correct++
		}
	}
	switch req.Type {
	case model.QuestionMCQ:
		if len(req.Options) < 2 {
			return util.Validation("mcq question needs at least two options")
		}
		if correct != 1 {
			return util.Validation("mcq question needs exactly one correct option, got %d", correct)
		}
	case model.QuestionMSQ:
		if correct < 2 {
			return util.Validation("msq question needs at least two correct options, got %d", correct)
		}
	case model.QuestionSubjective:
		if len(req.Options) != 0 {
			return util.Validation("subjective question cannot have options")
		}
	default:
		return util.Validation("unknown question type %q", req.Type)
	}
	return nil
}

func buildQuestion(courseID uint, assessmentID *uint, req QuestionRequest) *model.Question {
	q := &model.Question{
		AssessmentID: assessmentID,
		CourseID:     courseID,
		Type:         req.Type,
		Text:         req.Text,
		Points:       req.Points,
		Difficulty:   req.Difficulty,
		BloomLevel:   req.BloomLevel,
		TopicID:      req.TopicID,
		SubtopicID:   req.SubtopicID,
		Explanation:  req.Explanation,
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	for _, o := range req.Options {
		q.Options = append(q.Options, model.QuestionOption{
			Label:     o.Label,
			Text:      o.Text,
			IsCorrect: o.IsCorrect,
		})
	}
	return q
}

func (s *AssessmentService) CreateQuestion(instructorID, assessmentID uint, req QuestionRequest) (*model.Question, error) {
	a, err := s.ownedAssessment(instructorID, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	q := buildQuestion(a.CourseID, &a.ID, req)
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, util.Storage(err)
	}
	return q, nil
}

func (s *AssessmentService) ListQuestions(assessmentID uint) ([]model.Question, error) {
	qs, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, util.Storage(err)
	}
	return qs, nil
}

func (s *AssessmentService) DeleteQuestion(instructorID, assessmentID, questionID uint) error {
	if _, err := s.ownedAssessment(instructorID, assessmentID); err != nil {
		return err
	}
	if err := s.Repo.DeleteQuestion(questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return util.Storage(err)
	}
	return nil
}

// Student view: questions without correct-option flags or explanations.

func (s *AssessmentService) StudentQuestions(assessmentID uint) ([]StudentQuestion, error) {
	a, err := s.GetAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished {
		return nil, util.ErrNotPublished
	}

	qs, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, util.Storage(err)
	}
	views := make([]StudentQuestion, len(qs))
	for i := range qs {
		views[i] = *toStudentQuestion(&qs[i])
	}
	return views, nil
}

// Question bank: course-scoped reusable entries feeding adaptive selection.

func (s *AssessmentService) CreateBankEntry(instructorID, courseID uint, req QuestionRequest) (*model.Question, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, util.Storage(err)
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	q := buildQuestion(courseID, nil, req)
	if err := s.Bank.Create(q); err != nil {
		return nil, util.Storage(err)
	}
	return q, nil
}

// UpdateBankEntry replaces a bank question's content in place. Attempts that
// already answered the old version keep their stored verdicts.
func (s *AssessmentService) UpdateBankEntry(instructorID, courseID, questionID uint, req QuestionRequest) (*model.Question, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, util.Storage(err)
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}

	existing, err := s.Repo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, util.Storage(err)
	}
	if !existing.IsBankEntry() || existing.CourseID != courseID {
		return nil, util.ErrQuestionNotFound
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	q := buildQuestion(courseID, nil, req)
	q.ID = questionID
	if err := s.Bank.Update(q); err != nil {
		return nil, util.Storage(err)
	}
	return q, nil
}

func (s *AssessmentService) ListBank(courseID uint, page, limit int) ([]model.Question, int64, error) {
	qs, total, err := s.Bank.List(courseID, page, limit)
	if err != nil {
		return nil, 0, util.Storage(err)
	}
	return qs, total, nil
}

func (s *AssessmentService) DeleteBankEntry(instructorID, courseID, questionID uint) error {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return util.Storage(err)
	}
	if course.InstructorID != instructorID {
		return util.ErrPermissionDenied
	}
	if err := s.Bank.Delete(courseID, questionID); err != nil {
		return util.Storage(err)
	}
	return nil
}

func (s *AssessmentService) ownedAssessment(instructorID, id uint) (*model.Assessment, error) {
	a, err := s.GetAssessment(id)
	if err != nil {
		return nil, err
	}
	if a.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

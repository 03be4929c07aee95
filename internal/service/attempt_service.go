package service

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"edu_assess_backend/internal/engine"
	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/util"

	"gorm.io/gorm"
)

// Narrow store contracts consumed by the attempt lifecycle. The gorm
// repositories satisfy them; tests plug in-memory fakes.

type AssessmentStore interface {
	FindByID(id uint) (*model.Assessment, error)
	ListQuestions(assessmentID uint) ([]model.Question, error)
	ListQuestionsByIDs(ids []uint) ([]model.Question, error)
	FindQuestionByID(id uint) (*model.Question, error)
	GetCorrectOptionIDs(questionID uint) ([]uint, error)
}

type EnrollmentStore interface {
	FindEnrollment(studentID, courseID uint) (*model.Enrollment, error)
}

type AttemptStore interface {
	Create(attempt *model.StudentAttempt) error
	FindByID(id string) (*model.StudentAttempt, error)
	ListByAssessment(assessmentID uint, page, limit int) ([]model.StudentAttempt, int64, error)
	Finalize(id string, score, totalPoints, percentage, timeTaken int, submittedAt time.Time) (bool, error)
	CreateAnswer(answer *model.StudentAnswer) (bool, error)
	FindAnswer(attemptID string, questionID uint) (*model.StudentAnswer, error)
	ListAnswers(attemptID string) ([]model.StudentAnswer, error)
}

type PerformanceTracker interface {
	RecordResult(studentID, topicID, subtopicID uint, isCorrect bool) error
}

// AttemptService owns the attempt state machine: start, the answer submission
// loop, and the single finalize step. All collaborators are injected; nothing
// here reaches for globals.
type AttemptService struct {
	Assessments AssessmentStore
	Enrollments EnrollmentStore
	Attempts    AttemptStore
	Performance PerformanceTracker
	Evaluator   *engine.Evaluator
	Selector    *engine.Selector
	now         func() time.Time
}

func NewAttemptService(
	assessments AssessmentStore,
	enrollments EnrollmentStore,
	attempts AttemptStore,
	performance PerformanceTracker,
	evaluator *engine.Evaluator,
	selector *engine.Selector,
) *AttemptService {
	return &AttemptService{
		Assessments: assessments,
		Enrollments: enrollments,
		Attempts:    attempts,
		Performance: performance,
		Evaluator:   evaluator,
		Selector:    selector,
		now:         time.Now,
	}
}

type StartAttemptResponse struct {
	AttemptID     string    `json:"attemptId"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"questionCount"`
	TimeLimit     int       `json:"timeLimit"`
	StartedAt     time.Time `json:"startedAt"`
}

// StartAttempt creates one attempt row in InProgress. No scoring happens here.
func (s *AttemptService) StartAttempt(studentID, assessmentID uint) (*StartAttemptResponse, error) {
	assessment, err := s.Assessments.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, util.Storage(err)
	}
	if !assessment.IsPublished {
		return nil, util.ErrNotPublished
	}

	enrollment, err := s.Enrollments.FindEnrollment(studentID, assessment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, util.Storage(err)
	}

	attempt := &model.StudentAttempt{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		EnrollmentID: enrollment.ID,
		StartedAt:    s.now(),
	}
	if err := s.Attempts.Create(attempt); err != nil {
		return nil, util.Storage(err)
	}

	return &StartAttemptResponse{
		AttemptID:     attempt.ID,
		Title:         assessment.Title,
		QuestionCount: assessment.QuestionCount(),
		TimeLimit:     assessment.TimeLimit,
		StartedAt:     attempt.StartedAt,
	}, nil
}

// AnswerSubmission is one answer as posted by the client; the payload fields
// used depend on the question type.
type AnswerSubmission struct {
	QuestionID        uint   `json:"questionId"`
	SelectedOptionIDs []uint `json:"selectedOptionIds,omitempty"`
	AnswerText        string `json:"answerText,omitempty"`
}

type AnswerDetail struct {
	QuestionID   uint   `json:"questionId"`
	IsCorrect    bool   `json:"isCorrect"`
	PointsEarned int    `json:"pointsEarned"`
	Pending      bool   `json:"pending"`
	Feedback     string `json:"feedback,omitempty"`
}

type AttemptSummary struct {
	AttemptID        string    `json:"attemptId"`
	Score            int       `json:"score"`
	TotalPoints      int       `json:"totalPoints"`
	Percentage       int       `json:"percentage"`
	TimeTakenMinutes int       `json:"timeTakenMinutes"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

type SubmitBatchResponse struct {
	Summary AttemptSummary `json:"summary"`
	Answers []AnswerDetail `json:"answers"`
}

// SubmitBatch evaluates every answer, persists them, and finalizes the
// attempt in one call. Total points always cover the whole assessment, so an
// unanswered question costs its full points.
func (s *AttemptService) SubmitBatch(studentID uint, attemptID string, answers []AnswerSubmission) (*SubmitBatchResponse, error) {
	attempt, err := s.loadOpenAttempt(studentID, attemptID)
	if err != nil {
		return nil, err
	}

	assessment, err := s.Assessments.FindByID(attempt.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, util.Storage(err)
	}

	questions, err := s.Assessments.ListQuestions(assessment.ID)
	if err != nil {
		return nil, util.Storage(err)
	}
	questionMap := make(map[uint]model.Question, len(questions))
	totalPoints := 0
	for _, q := range questions {
		questionMap[q.ID] = q
		totalPoints += q.Points
	}

	score := 0
	details := make([]AnswerDetail, 0, len(answers))
	for _, sub := range answers {
		if sub.QuestionID == 0 {
			return nil, util.Validation("answer missing question id")
		}
		q, ok := questionMap[sub.QuestionID]
		if !ok {
			return nil, util.Validation("question %d is not part of this assessment", sub.QuestionID)
		}

		detail, err := s.recordAnswer(attempt, &q, sub)
		if err != nil {
			return nil, err
		}
		score += detail.PointsEarned
		details = append(details, *detail)
	}

	summary, err := s.finalize(attempt, score, totalPoints)
	if err != nil {
		return nil, err
	}
	return &SubmitBatchResponse{Summary: *summary, Answers: details}, nil
}

// SubmitAnswerRequest carries one adaptive answer plus the optional practice
// filters for the next draw.
type SubmitAnswerRequest struct {
	QuestionID        uint               `json:"questionId"`
	SelectedOptionIDs []uint             `json:"selectedOptionIds,omitempty"`
	AnswerText        string             `json:"answerText,omitempty"`
	QuestionType      model.QuestionType `json:"questionType,omitempty"`
	TopicID           uint               `json:"topicId,omitempty"`
	SubtopicID        uint               `json:"subtopicId,omitempty"`
}

// StudentQuestion is a question as shown to a student: no correct-option
// flags, no explanation.
type StudentQuestion struct {
	ID         uint             `json:"id"`
	Type       model.QuestionType `json:"type"`
	Text       string           `json:"text"`
	Points     int              `json:"points"`
	Difficulty model.Difficulty `json:"difficulty"`
	TopicID    uint             `json:"topicId,omitempty"`
	SubtopicID uint             `json:"subtopicId,omitempty"`
	Options    []StudentOption  `json:"options,omitempty"`
}

type StudentOption struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type SubmitAnswerResponse struct {
	Result            AnswerDetail    `json:"result"`
	EvaluationPending bool            `json:"evaluationPending"`
	Completed         bool            `json:"completed"`
	Summary           *AttemptSummary `json:"summary,omitempty"`
	NextQuestion      *StudentQuestion `json:"nextQuestion,omitempty"`
}

// SubmitOneAndAdvance evaluates one answer, updates topic performance, and
// asks the selector for the next bank question. When the pool is exhausted
// the attempt is finalized over the questions actually asked.
func (s *AttemptService) SubmitOneAndAdvance(studentID uint, attemptID string, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	attempt, err := s.loadOpenAttempt(studentID, attemptID)
	if err != nil {
		return nil, err
	}
	if req.QuestionID == 0 {
		return nil, util.Validation("answer missing question id")
	}

	assessment, err := s.Assessments.FindByID(attempt.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, util.Storage(err)
	}

	question, err := s.Assessments.FindQuestionByID(req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, util.Storage(err)
	}

	detail, err := s.recordAnswer(attempt, question, AnswerSubmission{
		QuestionID:        req.QuestionID,
		SelectedOptionIDs: req.SelectedOptionIDs,
		AnswerText:        req.AnswerText,
	})
	if err != nil {
		return nil, err
	}

	answers, err := s.Attempts.ListAnswers(attempt.ID)
	if err != nil {
		return nil, util.Storage(err)
	}
	askedIDs := make([]uint, len(answers))
	for i, a := range answers {
		askedIDs[i] = a.QuestionID
	}

	filters := engine.Filters{
		Type:       req.QuestionType,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
	}
	prev := question.Difficulty
	next, err := s.Selector.Next(assessment.CourseID, filters, &prev, detail.IsCorrect, askedIDs)
	if err != nil {
		return nil, util.Storage(err)
	}

	resp := &SubmitAnswerResponse{
		Result:            *detail,
		EvaluationPending: question.Type == model.QuestionSubjective,
	}

	if next == nil {
		score, totalPoints, err := s.adaptiveTotals(answers)
		if err != nil {
			return nil, err
		}
		summary, err := s.finalize(attempt, score, totalPoints)
		if err != nil {
			return nil, err
		}
		resp.Completed = true
		resp.Summary = summary
		return resp, nil
	}

	// The pool listing skips options; refetch so the student sees them.
	full, err := s.Assessments.FindQuestionByID(next.ID)
	if err != nil {
		return nil, util.Storage(err)
	}
	resp.NextQuestion = toStudentQuestion(full)
	return resp, nil
}

// NextQuestion serves the adaptive loop's read side: the first draw of an
// attempt (uniform over the full eligible pool) or a re-request of the
// current position, seeded by the last recorded answer. A nil question means
// the pool is exhausted; the caller should submit-and-advance to finalize, or
// this returns completed state directly when nothing was ever asked.
func (s *AttemptService) NextQuestion(studentID uint, attemptID string, filters engine.Filters) (*StudentQuestion, error) {
	attempt, err := s.loadOpenAttempt(studentID, attemptID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.Assessments.FindByID(attempt.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, util.Storage(err)
	}

	answers, err := s.Attempts.ListAnswers(attempt.ID)
	if err != nil {
		return nil, util.Storage(err)
	}

	var prev *model.Difficulty
	wasCorrect := false
	askedIDs := make([]uint, len(answers))
	for i, a := range answers {
		askedIDs[i] = a.QuestionID
	}
	if len(answers) > 0 {
		last := answers[len(answers)-1]
		q, err := s.Assessments.FindQuestionByID(last.QuestionID)
		if err != nil {
			return nil, util.Storage(err)
		}
		prev = &q.Difficulty
		wasCorrect = last.IsCorrect
	}

	next, err := s.Selector.Next(assessment.CourseID, filters, prev, wasCorrect, askedIDs)
	if err != nil {
		return nil, util.Storage(err)
	}
	if next == nil {
		return nil, nil
	}
	full, err := s.Assessments.FindQuestionByID(next.ID)
	if err != nil {
		return nil, util.Storage(err)
	}
	return toStudentQuestion(full), nil
}

type AttemptDetailResponse struct {
	Attempt   *model.StudentAttempt `json:"attempt"`
	Answers   []model.StudentAnswer `json:"answers"`
	Questions []model.Question      `json:"questions"`
}

// GetAttempt returns the attempt with its answers and questions for results
// display. Only the owning student may read it.
func (s *AttemptService) GetAttempt(studentID uint, attemptID string) (*AttemptDetailResponse, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, util.Storage(err)
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}

	answers, err := s.Attempts.ListAnswers(attempt.ID)
	if err != nil {
		return nil, util.Storage(err)
	}

	questions, err := s.Assessments.ListQuestions(attempt.AssessmentID)
	if err != nil {
		return nil, util.Storage(err)
	}
	// Adaptive attempts answer bank questions that are not assessment-scoped;
	// fetch whatever the answer list references beyond the fixed set.
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	var missing []uint
	for _, a := range answers {
		if !known[a.QuestionID] {
			missing = append(missing, a.QuestionID)
		}
	}
	if len(missing) > 0 {
		extra, err := s.Assessments.ListQuestionsByIDs(missing)
		if err != nil {
			return nil, util.Storage(err)
		}
		questions = append(questions, extra...)
	}

	return &AttemptDetailResponse{Attempt: attempt, Answers: answers, Questions: questions}, nil
}

// ListAssessmentAttempts is the instructor view over all attempts at one
// assessment.
func (s *AttemptService) ListAssessmentAttempts(instructorID, assessmentID uint, page, limit int) ([]model.StudentAttempt, int64, error) {
	assessment, err := s.Assessments.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrAssessmentNotFound
		}
		return nil, 0, util.Storage(err)
	}
	if assessment.InstructorID != instructorID {
		return nil, 0, util.ErrPermissionDenied
	}
	attempts, total, err := s.Attempts.ListByAssessment(assessmentID, page, limit)
	if err != nil {
		return nil, 0, util.Storage(err)
	}
	return attempts, total, nil
}

// loadOpenAttempt fetches an attempt and verifies it is writable by this
// student.
func (s *AttemptService) loadOpenAttempt(studentID uint, attemptID string) (*model.StudentAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, util.Storage(err)
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.IsCompleted {
		return nil, util.ErrAttemptCompleted
	}
	return attempt, nil
}

// recordAnswer evaluates one submission and persists it. A concurrent
// duplicate for the same question is not an error; the stored verdict is
// returned instead. Topic performance is recorded only for the insert winner
// so counters move once per question.
func (s *AttemptService) recordAnswer(attempt *model.StudentAttempt, q *model.Question, sub AnswerSubmission) (*AnswerDetail, error) {
	correctIDs := q.CorrectOptionIDs()
	if correctIDs == nil && q.Type != model.QuestionSubjective {
		ids, err := s.Assessments.GetCorrectOptionIDs(q.ID)
		if err != nil {
			return nil, util.Storage(err)
		}
		correctIDs = ids
	}

	ev := s.Evaluator.Evaluate(engine.QuestionView{
		ID:               q.ID,
		Type:             q.Type,
		Points:           q.Points,
		CorrectOptionIDs: correctIDs,
	}, toEngineAnswer(q.Type, sub))

	answer := &model.StudentAnswer{
		AttemptID:    attempt.ID,
		QuestionID:   q.ID,
		IsCorrect:    ev.IsCorrect,
		PointsEarned: ev.PointsEarned,
		Pending:      q.Type == model.QuestionSubjective,
	}
	if q.Type == model.QuestionSubjective {
		answer.AnswerText = sub.AnswerText
	} else if len(sub.SelectedOptionIDs) > 0 {
		raw, err := json.Marshal(sub.SelectedOptionIDs)
		if err != nil {
			return nil, util.Storage(err)
		}
		answer.SelectedOptionIDs = raw
	}

	created, err := s.Attempts.CreateAnswer(answer)
	if err != nil {
		return nil, util.Storage(err)
	}
	if !created {
		existing, err := s.Attempts.FindAnswer(attempt.ID, q.ID)
		if err != nil {
			return nil, util.Storage(err)
		}
		answer = existing
	} else if q.TopicID != 0 {
		if err := s.Performance.RecordResult(attempt.StudentID, q.TopicID, q.SubtopicID, ev.IsCorrect); err != nil {
			return nil, err
		}
	}

	return &AnswerDetail{
		QuestionID:   q.ID,
		IsCorrect:    answer.IsCorrect,
		PointsEarned: answer.PointsEarned,
		Pending:      answer.Pending,
		Feedback:     answer.Feedback,
	}, nil
}

// finalize performs the single InProgress -> Completed transition. The
// conditional update has exactly one winner; the loser reports the attempt
// as already completed.
func (s *AttemptService) finalize(attempt *model.StudentAttempt, score, totalPoints int) (*AttemptSummary, error) {
	now := s.now()
	percentage := 0
	if totalPoints > 0 {
		percentage = int(math.Round(float64(score) / float64(totalPoints) * 100))
	}
	timeTaken := int(math.Round(now.Sub(attempt.StartedAt).Minutes()))

	won, err := s.Attempts.Finalize(attempt.ID, score, totalPoints, percentage, timeTaken, now)
	if err != nil {
		return nil, util.Storage(err)
	}
	if !won {
		return nil, util.ErrAttemptCompleted
	}

	return &AttemptSummary{
		AttemptID:        attempt.ID,
		Score:            score,
		TotalPoints:      totalPoints,
		Percentage:       percentage,
		TimeTakenMinutes: timeTaken,
		SubmittedAt:      now,
	}, nil
}

// adaptiveTotals aggregates over the questions actually asked, since an
// adaptive attempt has no fixed question set.
func (s *AttemptService) adaptiveTotals(answers []model.StudentAnswer) (score, totalPoints int, err error) {
	ids := make([]uint, len(answers))
	for i, a := range answers {
		score += a.PointsEarned
		ids[i] = a.QuestionID
	}
	questions, err := s.Assessments.ListQuestionsByIDs(ids)
	if err != nil {
		return 0, 0, util.Storage(err)
	}
	for _, q := range questions {
		totalPoints += q.Points
	}
	return score, totalPoints, nil
}

func toEngineAnswer(t model.QuestionType, sub AnswerSubmission) engine.Answer {
	switch t {
	case model.QuestionMCQ:
		return engine.MCQAnswer{SelectedOptionIDs: sub.SelectedOptionIDs}
	case model.QuestionMSQ:
		return engine.MSQAnswer{SelectedOptionIDs: sub.SelectedOptionIDs}
	default:
		return engine.SubjectiveAnswer{Text: sub.AnswerText}
	}
}

func toStudentQuestion(q *model.Question) *StudentQuestion {
	view := &StudentQuestion{
		ID:         q.ID,
		Type:       q.Type,
		Text:       q.Text,
		Points:     q.Points,
		Difficulty: q.Difficulty,
		TopicID:    q.TopicID,
		SubtopicID: q.SubtopicID,
	}
	for _, o := range q.Options {
		view.Options = append(view.Options, StudentOption{ID: o.ID, Label: o.Label, Text: o.Text})
	}
	return view
}

package service

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"edu_assess_backend/internal/engine"
	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/util"

	"gorm.io/gorm"
)

// In-memory fakes over the store contracts. The attempt fake reproduces the
// two datastore guards the real schema provides: the conditional finalize
// update and the (attempt, question) uniqueness on answers.

type fakeAssessments struct {
	assessments map[uint]*model.Assessment
	questions   map[uint]*model.Question
}

func (f *fakeAssessments) FindByID(id uint) (*model.Assessment, error) {
	a, ok := f.assessments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *a
	return &copy, nil
}

func (f *fakeAssessments) ListQuestions(assessmentID uint) ([]model.Question, error) {
	var qs []model.Question
	for _, q := range f.questions {
		if q.AssessmentID != nil && *q.AssessmentID == assessmentID {
			qs = append(qs, *q)
		}
	}
	return qs, nil
}

func (f *fakeAssessments) ListQuestionsByIDs(ids []uint) ([]model.Question, error) {
	var qs []model.Question
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			qs = append(qs, *q)
		}
	}
	return qs, nil
}

func (f *fakeAssessments) FindQuestionByID(id uint) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *q
	return &copy, nil
}

func (f *fakeAssessments) GetCorrectOptionIDs(questionID uint) ([]uint, error) {
	q, ok := f.questions[questionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q.CorrectOptionIDs(), nil
}

// ListEligible makes the fake double as the selector's bank source.
func (f *fakeAssessments) ListEligible(courseID uint, filters engine.Filters) ([]model.Question, error) {
	var qs []model.Question
	for _, q := range f.questions {
		if q.AssessmentID != nil || q.CourseID != courseID {
			continue
		}
		if filters.Type != "" && q.Type != filters.Type {
			continue
		}
		if filters.TopicID != 0 && q.TopicID != filters.TopicID {
			continue
		}
		if filters.SubtopicID != 0 && q.SubtopicID != filters.SubtopicID {
			continue
		}
		if filters.Difficulty != "" && q.Difficulty != filters.Difficulty {
			continue
		}
		qs = append(qs, *q)
	}
	return qs, nil
}

type fakeEnrollments struct {
	enrollments map[uint]map[uint]*model.Enrollment // studentID -> courseID
}

func (f *fakeEnrollments) FindEnrollment(studentID, courseID uint) (*model.Enrollment, error) {
	if e, ok := f.enrollments[studentID][courseID]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeAttempts struct {
	mu       sync.Mutex
	attempts map[string]*model.StudentAttempt
	answers  map[string][]*model.StudentAnswer
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{
		attempts: map[string]*model.StudentAttempt{},
		answers:  map[string][]*model.StudentAnswer{},
	}
}

func (f *fakeAttempts) Create(a *model.StudentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = model.GenerateUUID()
	}
	copy := *a
	f.attempts[a.ID] = &copy
	return nil
}

func (f *fakeAttempts) FindByID(id string) (*model.StudentAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *a
	return &copy, nil
}

func (f *fakeAttempts) ListByAssessment(assessmentID uint, page, limit int) ([]model.StudentAttempt, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StudentAttempt
	for _, a := range f.attempts {
		if a.AssessmentID == assessmentID {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttempts) Finalize(id string, score, totalPoints, percentage, timeTaken int, submittedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok || a.IsCompleted {
		return false, nil
	}
	a.IsCompleted = true
	a.SubmittedAt = &submittedAt
	a.Score = score
	a.TotalPoints = totalPoints
	a.Percentage = percentage
	a.TimeTakenMinutes = timeTaken
	return true, nil
}

func (f *fakeAttempts) CreateAnswer(answer *model.StudentAnswer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.answers[answer.AttemptID] {
		if existing.QuestionID == answer.QuestionID {
			return false, nil
		}
	}
	if answer.ID == "" {
		answer.ID = model.GenerateUUID()
	}
	copy := *answer
	f.answers[answer.AttemptID] = append(f.answers[answer.AttemptID], &copy)
	return true, nil
}

func (f *fakeAttempts) FindAnswer(attemptID string, questionID uint) (*model.StudentAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.answers[attemptID] {
		if a.QuestionID == questionID {
			copy := *a
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ListAnswers sorts like the real store: created_at first, id as tiebreak.
func (f *fakeAttempts) ListAnswers(attemptID string) ([]model.StudentAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StudentAnswer
	for _, a := range f.answers[attemptID] {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type perfCall struct {
	studentID, topicID, subtopicID uint
	isCorrect                      bool
}

type fakePerformance struct {
	mu    sync.Mutex
	calls []perfCall
}

func (f *fakePerformance) RecordResult(studentID, topicID, subtopicID uint, isCorrect bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, perfCall{studentID, topicID, subtopicID, isCorrect})
	return nil
}

// Fixture helpers

func option(id uint, label string, correct bool) model.QuestionOption {
	o := model.QuestionOption{Label: label, Text: label, IsCorrect: correct}
	o.ID = id
	return o
}

func assessmentQuestion(id, assessmentID, courseID uint, t model.QuestionType, points int, opts ...model.QuestionOption) *model.Question {
	q := &model.Question{
		AssessmentID: &assessmentID,
		CourseID:     courseID,
		Type:         t,
		Text:         "q",
		Points:       points,
		Difficulty:   model.DifficultyMedium,
		Options:      opts,
	}
	q.ID = id
	return q
}

func bankEntry(id, courseID uint, diff model.Difficulty, topicID uint, opts ...model.QuestionOption) *model.Question {
	q := &model.Question{
		CourseID:   courseID,
		Type:       model.QuestionMCQ,
		Text:       "bank q",
		Points:     2,
		Difficulty: diff,
		TopicID:    topicID,
		Options:    opts,
	}
	q.ID = id
	return q
}

type fixture struct {
	svc         *AttemptService
	assessments *fakeAssessments
	attempts    *fakeAttempts
	performance *fakePerformance
}

func newFixture(seed int64) *fixture {
	assessments := &fakeAssessments{
		assessments: map[uint]*model.Assessment{},
		questions:   map[uint]*model.Question{},
	}
	enrollments := &fakeEnrollments{enrollments: map[uint]map[uint]*model.Enrollment{}}
	attempts := newFakeAttempts()
	performance := &fakePerformance{}

	svc := NewAttemptService(
		assessments,
		enrollments,
		attempts,
		performance,
		engine.NewEvaluator(nil),
		engine.NewSelector(assessments, rand.New(rand.NewSource(seed))),
	)
	return &fixture{svc: svc, assessments: assessments, attempts: attempts, performance: performance}
}

func (fx *fixture) addAssessment(id, courseID uint, published bool) {
	a := &model.Assessment{CourseID: courseID, InstructorID: 50, Title: "Test", IsPublished: published, TimeLimit: 30}
	a.ID = id
	fx.assessments.assessments[id] = a
}

func (fx *fixture) enroll(studentID, courseID uint) {
	es := fx.svc.Enrollments.(*fakeEnrollments)
	if es.enrollments[studentID] == nil {
		es.enrollments[studentID] = map[uint]*model.Enrollment{}
	}
	e := &model.Enrollment{StudentID: studentID, CourseID: courseID}
	e.ID = 7
	es.enrollments[studentID][courseID] = e
}

func (fx *fixture) startAttempt(t *testing.T, studentID, assessmentID uint) string {
	t.Helper()
	resp, err := fx.svc.StartAttempt(studentID, assessmentID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	return resp.AttemptID
}

func TestStartAttemptErrors(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.addAssessment(2, 10, false)
	fx.enroll(100, 10)

	cases := []struct {
		name         string
		studentID    uint
		assessmentID uint
		want         error
	}{
		{"missing assessment", 100, 99, util.ErrAssessmentNotFound},
		{"unpublished assessment", 100, 2, util.ErrNotPublished},
		{"not enrolled", 200, 1, util.ErrNotEnrolled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.StartAttempt(tc.studentID, tc.assessmentID)
			if !errors.Is(err, tc.want) {
				t.Errorf("StartAttempt error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestStartAttemptCreatesInProgress(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.assessments.assessments[1].MCQCount = 3
	fx.enroll(100, 10)

	resp, err := fx.svc.StartAttempt(100, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if resp.Title != "Test" || resp.QuestionCount != 3 || resp.TimeLimit != 30 {
		t.Errorf("unexpected summary: %+v", resp)
	}

	attempt, err := fx.attempts.FindByID(resp.AttemptID)
	if err != nil {
		t.Fatalf("attempt not persisted: %v", err)
	}
	if attempt.IsCompleted || attempt.Score != 0 {
		t.Errorf("new attempt not InProgress: %+v", attempt)
	}
}

// The 1 MCQ + 1 subjective scenario: correct MCQ worth 1, "I don't know" for
// the 5-point subjective. Expected score 1/6 = 17%.
func TestSubmitBatchScoring(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	fx.assessments.questions[11] = assessmentQuestion(11, 1, 10, model.QuestionMCQ, 1,
		option(111, "A", true), option(112, "B", false))
	fx.assessments.questions[12] = assessmentQuestion(12, 1, 10, model.QuestionSubjective, 5)

	attemptID := fx.startAttempt(t, 100, 1)

	resp, err := fx.svc.SubmitBatch(100, attemptID, []AnswerSubmission{
		{QuestionID: 11, SelectedOptionIDs: []uint{111}},
		{QuestionID: 12, AnswerText: "I don't know"},
	})
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}

	if resp.Summary.Score != 1 || resp.Summary.TotalPoints != 6 || resp.Summary.Percentage != 17 {
		t.Errorf("summary = %+v, want score 1, total 6, percentage 17", resp.Summary)
	}

	byQuestion := map[uint]AnswerDetail{}
	for _, d := range resp.Answers {
		byQuestion[d.QuestionID] = d
	}
	if !byQuestion[11].IsCorrect {
		t.Error("MCQ answer should be correct")
	}
	if byQuestion[12].IsCorrect {
		t.Error("non-answer subjective should be incorrect")
	}

	attempt, _ := fx.attempts.FindByID(attemptID)
	if !attempt.IsCompleted {
		t.Error("attempt not completed after batch submit")
	}
}

func TestSubmitBatchZeroTotalPoints(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)

	attemptID := fx.startAttempt(t, 100, 1)
	resp, err := fx.svc.SubmitBatch(100, attemptID, nil)
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if resp.Summary.Percentage != 0 {
		t.Errorf("percentage = %d, want 0 for empty assessment", resp.Summary.Percentage)
	}
}

func TestSubmitBatchValidation(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	attemptID := fx.startAttempt(t, 100, 1)

	_, err := fx.svc.SubmitBatch(100, attemptID, []AnswerSubmission{{QuestionID: 0}})
	if !errors.Is(err, util.ErrValidation) {
		t.Errorf("missing question id: got %v, want validation error", err)
	}

	_, err = fx.svc.SubmitBatch(100, attemptID, []AnswerSubmission{{QuestionID: 999}})
	if !errors.Is(err, util.ErrValidation) {
		t.Errorf("foreign question id: got %v, want validation error", err)
	}
}

func TestSubmitOnCompletedAttempt(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	attemptID := fx.startAttempt(t, 100, 1)

	if _, err := fx.svc.SubmitBatch(100, attemptID, nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if _, err := fx.svc.SubmitBatch(100, attemptID, nil); !errors.Is(err, util.ErrAttemptCompleted) {
		t.Errorf("second batch submit: got %v, want ErrAttemptCompleted", err)
	}
	_, err := fx.svc.SubmitOneAndAdvance(100, attemptID, SubmitAnswerRequest{QuestionID: 1})
	if !errors.Is(err, util.ErrAttemptCompleted) {
		t.Errorf("adaptive submit on completed: got %v, want ErrAttemptCompleted", err)
	}
}

// Two concurrent finalizations: exactly one winner, the loser gets
// ErrAttemptCompleted.
func TestConcurrentFinalizeSingleWinner(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	attemptID := fx.startAttempt(t, 100, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.svc.SubmitBatch(100, attemptID, nil)
		}(i)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, util.ErrAttemptCompleted):
			losers++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Errorf("winners = %d, losers = %d, want exactly one of each", winners, losers)
	}
}

func TestGetAttemptOwnership(t *testing.T) {
	fx := newFixture(1)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	attemptID := fx.startAttempt(t, 100, 1)

	if _, err := fx.svc.GetAttempt(200, attemptID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign reader: got %v, want ErrPermissionDenied", err)
	}
	if _, err := fx.svc.GetAttempt(100, attemptID); err != nil {
		t.Errorf("owner read: %v", err)
	}
}

// Adaptive flow: an incorrect answer at medium must restrict the next draw to
// the easy pool.
func TestAdaptiveStepDeescalates(t *testing.T) {
	fx := newFixture(3)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)

	fx.assessments.questions[21] = bankEntry(21, 10, model.DifficultyMedium, 5,
		option(211, "A", true), option(212, "B", false))
	fx.assessments.questions[22] = bankEntry(22, 10, model.DifficultyEasy, 5,
		option(221, "A", true), option(222, "B", false))
	fx.assessments.questions[23] = bankEntry(23, 10, model.DifficultyEasy, 5,
		option(231, "A", true), option(232, "B", false))
	fx.assessments.questions[24] = bankEntry(24, 10, model.DifficultyHard, 5,
		option(241, "A", true), option(242, "B", false))

	attemptID := fx.startAttempt(t, 100, 1)

	// Wrong answer on the medium question.
	resp, err := fx.svc.SubmitOneAndAdvance(100, attemptID, SubmitAnswerRequest{
		QuestionID:        21,
		SelectedOptionIDs: []uint{212},
	})
	if err != nil {
		t.Fatalf("SubmitOneAndAdvance: %v", err)
	}
	if resp.Result.IsCorrect {
		t.Fatal("wrong option graded correct")
	}
	if resp.Completed {
		t.Fatal("attempt completed while easy pool still has questions")
	}
	if resp.NextQuestion == nil || resp.NextQuestion.Difficulty != model.DifficultyEasy {
		t.Errorf("next question = %+v, want an easy one", resp.NextQuestion)
	}
	if resp.NextQuestion.ID == 21 {
		t.Error("selector repeated an already-asked question")
	}
	for _, o := range resp.NextQuestion.Options {
		if o.Label == "" || o.Text == "" {
			t.Error("student view lost option content")
		}
	}
}

// When the pool is exhausted the attempt finalizes over the questions
// actually asked.
func TestAdaptiveCompletion(t *testing.T) {
	fx := newFixture(9)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	fx.assessments.questions[21] = bankEntry(21, 10, model.DifficultyMedium, 5,
		option(211, "A", true), option(212, "B", false))

	attemptID := fx.startAttempt(t, 100, 1)

	resp, err := fx.svc.SubmitOneAndAdvance(100, attemptID, SubmitAnswerRequest{
		QuestionID:        21,
		SelectedOptionIDs: []uint{211},
	})
	if err != nil {
		t.Fatalf("SubmitOneAndAdvance: %v", err)
	}
	if !resp.Completed || resp.Summary == nil {
		t.Fatalf("expected completion, got %+v", resp)
	}
	if resp.Summary.Score != 2 || resp.Summary.TotalPoints != 2 || resp.Summary.Percentage != 100 {
		t.Errorf("summary = %+v, want 2/2 = 100%%", resp.Summary)
	}

	attempt, _ := fx.attempts.FindByID(attemptID)
	if !attempt.IsCompleted {
		t.Error("attempt row not finalized")
	}
}

func TestAdaptiveFirstDraw(t *testing.T) {
	fx := newFixture(4)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	fx.assessments.questions[21] = bankEntry(21, 10, model.DifficultyHard, 5,
		option(211, "A", true), option(212, "B", false))

	attemptID := fx.startAttempt(t, 100, 1)

	q, err := fx.svc.NextQuestion(100, attemptID, engine.Filters{})
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	// No prior difficulty: the hard-only bank must still serve the first draw.
	if q == nil || q.ID != 21 {
		t.Errorf("first draw = %+v, want question 21", q)
	}
}

// A duplicate submission for an answered question returns the stored verdict
// and does not double-count topic performance.
func TestDuplicateAnswerReturnsStoredResult(t *testing.T) {
	fx := newFixture(5)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)
	fx.assessments.questions[21] = bankEntry(21, 10, model.DifficultyMedium, 5,
		option(211, "A", true), option(212, "B", false))
	fx.assessments.questions[22] = bankEntry(22, 10, model.DifficultyHard, 5,
		option(221, "A", true), option(222, "B", false))

	attemptID := fx.startAttempt(t, 100, 1)

	first, err := fx.svc.SubmitOneAndAdvance(100, attemptID, SubmitAnswerRequest{
		QuestionID:        21,
		SelectedOptionIDs: []uint{211},
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !first.Result.IsCorrect {
		t.Fatal("correct option graded wrong")
	}

	// Re-submit the same question with a wrong option: the stored correct
	// verdict must come back.
	second, err := fx.svc.SubmitOneAndAdvance(100, attemptID, SubmitAnswerRequest{
		QuestionID:        21,
		SelectedOptionIDs: []uint{212},
	})
	if err != nil {
		t.Fatalf("duplicate submit: %v", err)
	}
	if !second.Result.IsCorrect || second.Result.PointsEarned != first.Result.PointsEarned {
		t.Errorf("duplicate result = %+v, want stored %+v", second.Result, first.Result)
	}

	if len(fx.performance.calls) != 1 {
		t.Errorf("performance recorded %d times, want 1", len(fx.performance.calls))
	}
	call := fx.performance.calls[0]
	if call.studentID != 100 || call.topicID != 5 || !call.isCorrect {
		t.Errorf("unexpected performance call: %+v", call)
	}
}

func TestNextQuestionLatestAnswerOnTimestampTie(t *testing.T) {
	fx := newFixture(5)
	fx.addAssessment(1, 10, true)
	fx.enroll(100, 10)

	// Both answered questions are medium, so the ratchet direction depends
	// entirely on which answer counts as the most recent.
	fx.assessments.questions[31] = bankEntry(31, 10, model.DifficultyMedium, 5,
		option(311, "A", true), option(312, "B", false))
	fx.assessments.questions[32] = bankEntry(32, 10, model.DifficultyMedium, 5,
		option(321, "A", true), option(322, "B", false))
	fx.assessments.questions[33] = bankEntry(33, 10, model.DifficultyHard, 5,
		option(331, "A", true), option(332, "B", false))
	fx.assessments.questions[34] = bankEntry(34, 10, model.DifficultyEasy, 5,
		option(341, "A", true), option(342, "B", false))

	attemptID := fx.startAttempt(t, 100, 1)

	// Same timestamp tick, inserted out of id order; "b" sorts last.
	tick := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fx.attempts.answers[attemptID] = []*model.StudentAnswer{
		{UUIDBase: model.UUIDBase{ID: "b-latest", CreatedAt: tick}, AttemptID: attemptID, QuestionID: 31, IsCorrect: true},
		{UUIDBase: model.UUIDBase{ID: "a-earlier", CreatedAt: tick}, AttemptID: attemptID, QuestionID: 32, IsCorrect: false},
	}

	next, err := fx.svc.NextQuestion(100, attemptID, engine.Filters{})
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if next == nil {
		t.Fatal("expected a next question, got terminal")
	}
	if next.ID != 33 {
		t.Errorf("next question = %d, want 33 (escalated off the latest, correct answer)", next.ID)
	}
}

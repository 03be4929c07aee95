package service

import (
	"errors"
	"testing"
	"time"

	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/util"
)

type upsertCall struct {
	studentID, topicID, subtopicID uint
	isCorrect                      bool
}

type fakePerformanceStore struct {
	calls []upsertCall
	recs  []model.TopicPerformance
}

func (f *fakePerformanceStore) Upsert(studentID, topicID, subtopicID uint, isCorrect bool, now time.Time) error {
	f.calls = append(f.calls, upsertCall{studentID, topicID, subtopicID, isCorrect})
	return nil
}

func (f *fakePerformanceStore) ListByStudent(studentID uint) ([]model.TopicPerformance, error) {
	return f.recs, nil
}

// fakeEnrollmentChecker maps instructor id to the students they teach.
type fakeEnrollmentChecker struct {
	taught map[uint][]uint
	calls  int
}

func (f *fakeEnrollmentChecker) HasStudentInCourses(instructorID, studentID uint) (bool, error) {
	f.calls++
	for _, id := range f.taught[instructorID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func TestRecordResultUpserts(t *testing.T) {
	store := &fakePerformanceStore{}
	svc := NewPerformanceService(store, &fakeEnrollmentChecker{})

	if err := svc.RecordResult(100, 5, 0, true); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := svc.RecordResult(100, 5, 3, false); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	want := []upsertCall{
		{100, 5, 0, true},
		{100, 5, 3, false},
	}
	if len(store.calls) != len(want) {
		t.Fatalf("got %d upserts, want %d", len(store.calls), len(want))
	}
	for i, c := range store.calls {
		if c != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestAccuracyRounding(t *testing.T) {
	cases := []struct {
		name     string
		attempts int
		correct  int
		want     float64
	}{
		{"two thirds", 3, 2, 66.7},
		{"one third", 3, 1, 33.3},
		{"perfect", 4, 4, 100},
		{"none right", 4, 0, 0},
		{"no attempts yet", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := model.TopicPerformance{Attempts: tc.attempts, CorrectAnswers: tc.correct}
			if got := rec.Accuracy(); got != tc.want {
				t.Errorf("Accuracy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStudentPerformanceView(t *testing.T) {
	attempted := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &fakePerformanceStore{recs: []model.TopicPerformance{
		{StudentID: 100, TopicID: 5, SubtopicID: 0, Attempts: 3, CorrectAnswers: 2, LastAttemptedAt: attempted},
		{StudentID: 100, TopicID: 6, SubtopicID: 2, Attempts: 1, CorrectAnswers: 0, LastAttemptedAt: attempted},
	}}
	svc := NewPerformanceService(store, &fakeEnrollmentChecker{})

	out, err := svc.StudentPerformance(100)
	if err != nil {
		t.Fatalf("StudentPerformance: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].Accuracy != 66.7 || out[0].TopicID != 5 {
		t.Errorf("row 0 = %+v", out[0])
	}
	if out[1].Accuracy != 0 || out[1].SubtopicID != 2 {
		t.Errorf("row 1 = %+v", out[1])
	}
}

func TestInstructorViewRequiresOwnCourse(t *testing.T) {
	store := &fakePerformanceStore{recs: []model.TopicPerformance{
		{StudentID: 100, TopicID: 5, Attempts: 2, CorrectAnswers: 1},
	}}
	checker := &fakeEnrollmentChecker{taught: map[uint][]uint{
		7: {100}, // instructor 7 teaches student 100
	}}
	svc := NewPerformanceService(store, checker)

	t.Run("own student is visible", func(t *testing.T) {
		out, err := svc.InstructorView(7, model.Instructor, 100)
		if err != nil {
			t.Fatalf("InstructorView: %v", err)
		}
		if len(out) != 1 || out[0].TopicID != 5 {
			t.Errorf("out = %+v", out)
		}
	})

	t.Run("foreign student is denied", func(t *testing.T) {
		if _, err := svc.InstructorView(8, model.Instructor, 100); !errors.Is(err, util.ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("admin skips the enrollment check", func(t *testing.T) {
		before := checker.calls
		out, err := svc.InstructorView(9, model.Admin, 100)
		if err != nil {
			t.Fatalf("InstructorView: %v", err)
		}
		if len(out) != 1 {
			t.Errorf("out = %+v", out)
		}
		if checker.calls != before {
			t.Errorf("admin path consulted the enrollment checker")
		}
	})
}

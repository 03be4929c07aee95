// Package engine holds the pure core of the adaptive assessment flow: answer
// evaluation and next-question selection. Nothing in here touches the
// datastore; persistence is the caller's responsibility.
package engine

import (
	"strings"

	"edu_assess_backend/internal/model"
)

// Answer is the tagged payload variant for one submitted answer. The
// evaluator dispatches on the concrete type rather than probing optional
// fields.
type Answer interface {
	isAnswer()
}

type MCQAnswer struct {
	SelectedOptionIDs []uint
}

type MSQAnswer struct {
	SelectedOptionIDs []uint
}

type SubjectiveAnswer struct {
	Text string
}

func (MCQAnswer) isAnswer()        {}
func (MSQAnswer) isAnswer()        {}
func (SubjectiveAnswer) isAnswer() {}

// QuestionView is the minimal slice of a question the evaluator needs.
type QuestionView struct {
	ID               uint
	Type             model.QuestionType
	Points           int
	CorrectOptionIDs []uint
}

type Evaluation struct {
	IsCorrect    bool
	PointsEarned int
}

// SubjectiveGrader decides correctness of a free-text answer. The default is
// the keyword/length heuristic below; a semantic grader can replace it
// without touching the lifecycle manager.
type SubjectiveGrader interface {
	Grade(text string) bool
}

// nonAnswerTokens are recognized ways of writing "no answer". A match anywhere
// in the lowercased text marks the answer incorrect.
var nonAnswerTokens = []string{
	"na", "n/a", "idk", "dont know", "no idea", "blank", "nothing", "none",
}

// HeuristicGrader marks a subjective answer correct iff it is a genuine
// attempt (no non-answer token) of at least minAnswerLength trimmed
// characters. A stand-in for real semantic grading; such answers stay
// flagged for instructor review.
type HeuristicGrader struct{}

const minAnswerLength = 10

func (HeuristicGrader) Grade(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	// Apostrophes are dropped so "don't know" matches the dont-know token.
	lower := strings.ReplaceAll(strings.ToLower(trimmed), "'", "")
	for _, token := range nonAnswerTokens {
		if strings.Contains(lower, token) {
			return false
		}
	}
	return len(trimmed) >= minAnswerLength
}

// Evaluator scores one answer against its question. Pure; safe for
// concurrent use.
type Evaluator struct {
	Subjective SubjectiveGrader
}

func NewEvaluator(grader SubjectiveGrader) *Evaluator {
	if grader == nil {
		grader = HeuristicGrader{}
	}
	return &Evaluator{Subjective: grader}
}

// Evaluate decides correctness and points for one submitted answer.
// A payload whose tag does not match the question type scores zero.
func (e *Evaluator) Evaluate(q QuestionView, ans Answer) Evaluation {
	correct := false

	switch a := ans.(type) {
	case MCQAnswer:
		correct = q.Type == model.QuestionMCQ &&
			len(a.SelectedOptionIDs) == 1 &&
			containsID(q.CorrectOptionIDs, a.SelectedOptionIDs[0])
	case MSQAnswer:
		correct = q.Type == model.QuestionMSQ &&
			sameIDSet(a.SelectedOptionIDs, q.CorrectOptionIDs)
	case SubjectiveAnswer:
		correct = q.Type == model.QuestionSubjective && e.Subjective.Grade(a.Text)
	}

	ev := Evaluation{IsCorrect: correct}
	if correct {
		ev.PointsEarned = q.Points
	}
	return ev
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// sameIDSet is set equality in both directions: no subset or superset credit,
// and duplicates in the selection do not help.
func sameIDSet(selected, correct []uint) bool {
	if len(correct) == 0 {
		return false
	}
	sel := make(map[uint]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	if len(sel) != len(correct) {
		return false
	}
	for _, id := range correct {
		if !sel[id] {
			return false
		}
	}
	return true
}

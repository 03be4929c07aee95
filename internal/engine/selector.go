package engine

import (
	"math/rand"
	"time"

	"edu_assess_backend/internal/model"
)

// Filters narrow the candidate pool for adaptive selection. Zero values mean
// "no filter"; Difficulty is set by the selector itself, not the caller.
type Filters struct {
	Type       model.QuestionType
	TopicID    uint
	SubtopicID uint
	Difficulty model.Difficulty
}

// QuestionSource lists bank entries matching a course and filters. Implemented
// by the question bank repository; tests use an in-memory slice.
type QuestionSource interface {
	ListEligible(courseID uint, f Filters) ([]model.Question, error)
}

// NextDifficulty applies the difficulty ratchet: a correct answer escalates,
// an incorrect one de-escalates, and hard/easy absorb at the ends.
func NextDifficulty(prev model.Difficulty, wasCorrect bool) model.Difficulty {
	if wasCorrect {
		switch prev {
		case model.DifficultyEasy:
			return model.DifficultyMedium
		default:
			return model.DifficultyHard
		}
	}
	switch prev {
	case model.DifficultyHard:
		return model.DifficultyMedium
	default:
		return model.DifficultyEasy
	}
}

// Selector draws the next bank question for an attempt. The random source is
// injectable so adaptive sequences can be replayed in tests; when nil, a
// time-seeded source is used.
type Selector struct {
	src QuestionSource
	rng *rand.Rand
}

func NewSelector(src QuestionSource, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{src: src, rng: rng}
}

// Next picks the next question uniformly at random from the eligible pool.
// prev is the difficulty of the previously answered question, nil for the
// first draw of an attempt (no difficulty filter). askedIDs are never drawn
// again. A nil question with nil error is the terminal "no further question"
// signal.
func (s *Selector) Next(courseID uint, f Filters, prev *model.Difficulty, wasCorrect bool, askedIDs []uint) (*model.Question, error) {
	if prev != nil {
		f.Difficulty = NextDifficulty(*prev, wasCorrect)
		pool, err := s.pool(courseID, f, askedIDs)
		if err != nil {
			return nil, err
		}
		if len(pool) > 0 {
			return s.pick(pool), nil
		}
		// Target difficulty exhausted; fall back to any difficulty.
	}

	f.Difficulty = ""
	pool, err := s.pool(courseID, f, askedIDs)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}
	return s.pick(pool), nil
}

func (s *Selector) pool(courseID uint, f Filters, askedIDs []uint) ([]model.Question, error) {
	candidates, err := s.src.ListEligible(courseID, f)
	if err != nil {
		return nil, err
	}
	asked := make(map[uint]bool, len(askedIDs))
	for _, id := range askedIDs {
		asked[id] = true
	}
	pool := candidates[:0:0]
	for _, q := range candidates {
		if !asked[q.ID] {
			pool = append(pool, q)
		}
	}
	return pool, nil
}

func (s *Selector) pick(pool []model.Question) *model.Question {
	q := pool[s.rng.Intn(len(pool))]
	return &q
}

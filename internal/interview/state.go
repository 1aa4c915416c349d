package interview

import (
	"slices"
	"time"

	"github.com/spigell/mock-interviewer/internal/ai"
)

// Limits bound the length of one session. They are drawn once at start.
type Limits struct {
	MinQuestions int
	MaxQuestions int
}

// State is the record of the interview in progress. The zero value is the reset state.
type State struct {
	SessionID string
	Profile   ai.Profile

	// QuestionPool is consumed from the end.
	QuestionPool      []string
	PreviousQA        []ai.QA
	PerformanceScores []float64

	CrossQuestionCount     int
	ConsecutiveGoodAnswers int
	ConsecutivePoorAnswers int

	StartTime time.Time
	Limits    Limits
	Finished  bool
}

// Active reports whether a session has been started since the last reset.
func (s State) Active() bool {
	return s.SessionID != ""
}

// NextQuestionNumber is the number of the question that follows the recorded history.
func (s State) NextQuestionNumber() int {
	return len(s.PreviousQA) + 1
}

func (s *State) popQuestion() (string, bool) {
	n := len(s.QuestionPool)
	if n == 0 {
		return "", false
	}
	q := s.QuestionPool[n-1]
	s.QuestionPool = s.QuestionPool[:n-1]
	return q, true
}

func (s *State) record(qa ai.QA, score float64) {
	s.PreviousQA = append(s.PreviousQA, qa)
	s.PerformanceScores = append(s.PerformanceScores, score)
}

func (s *State) applyVerdict(v Verdict) {
	switch v {
	case VerdictGood:
		s.ConsecutiveGoodAnswers++
		s.ConsecutivePoorAnswers = 0
	case VerdictPoor:
		s.ConsecutivePoorAnswers++
		s.ConsecutiveGoodAnswers = 0
	}
}

func (s State) clone() State {
	s.QuestionPool = slices.Clone(s.QuestionPool)
	s.PreviousQA = slices.Clone(s.PreviousQA)
	s.PerformanceScores = slices.Clone(s.PerformanceScores)
	return s
}

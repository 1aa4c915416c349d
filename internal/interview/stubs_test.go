package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spigell/mock-interviewer/internal/ai"
)

// fixedRand returns the same draw every time and never reorders.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }

func (r fixedRand) IntN(n int) int { return r.n % n }

func (fixedRand) Shuffle(int, func(i, j int)) {}

type questionCall struct {
	qc    ai.QuestionContext
	cross bool
}

type stubQuestions struct {
	mu        sync.Mutex
	pool      []string
	poolErr   error
	nextErr   error
	poolCalls int
	calls     []questionCall
}

func (s *stubQuestions) QuestionPool(context.Context, ai.Profile) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poolCalls++
	if s.poolErr != nil {
		return nil, s.poolErr
	}
	return append([]string(nil), s.pool...), nil
}

func (s *stubQuestions) NextQuestion(_ context.Context, qc ai.QuestionContext, cross bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, questionCall{qc: qc, cross: cross})
	if s.nextErr != nil {
		return "", s.nextErr
	}
	if cross {
		return fmt.Sprintf("follow-up %d", len(s.calls)), nil
	}
	return fmt.Sprintf("generated %d", len(s.calls)), nil
}

type stubScorer struct {
	mu     sync.Mutex
	scores []float64
	err    error
	seen   []ai.ScoreContext
}

func (s *stubScorer) Score(_ context.Context, sc ai.ScoreContext) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, sc)
	if s.err != nil {
		return 0, s.err
	}
	if len(s.scores) == 0 {
		return 7, nil
	}
	score := s.scores[0]
	s.scores = s.scores[1:]
	return score, nil
}

type stubNarrator struct {
	text string
	err  error
	last ai.SummaryRequest
}

func (s *stubNarrator) Summarize(_ context.Context, req ai.SummaryRequest) (string, error) {
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBoom = errors.New("boom")

func technicalProfile() ai.Profile {
	return ai.Profile{
		ResumeText:      "Go developer, five years of distributed systems",
		JobRole:         "Backend Engineer",
		JobDescription:  "Build and run Go services",
		ExperienceLevel: "Senior",
		Domain:          ai.DomainTechnical,
	}
}

package ai

import (
	"context"
	"errors"
	"strings"
)

// Domain selects the interviewer persona and the focus areas of generated questions.
type Domain string

const (
	DomainTechnical    Domain = "Technical"
	DomainNonTechnical Domain = "NonTechnical"
)

// ErrUnknownDomain is returned by ParseDomain for values outside the supported set.
var ErrUnknownDomain = errors.New("unknown interview domain")

// ErrUnparsableScore is returned by assessors when a model response carries no usable number.
var ErrUnparsableScore = errors.New("score response is not a number")

// LegacyNonTechnical is the spelling of DomainNonTechnical used by older clients.
const LegacyNonTechnical = "Non Technical"

// ParseDomain accepts the exact domain names, ignoring surrounding whitespace.
func ParseDomain(raw string) (Domain, error) {
	switch strings.TrimSpace(raw) {
	case string(DomainTechnical):
		return DomainTechnical, nil
	case string(DomainNonTechnical), LegacyNonTechnical:
		return DomainNonTechnical, nil
	default:
		return "", ErrUnknownDomain
	}
}

// QA is one answered turn.
type QA struct {
	Question string `json:"question" mapstructure:"question"`
	Answer   string `json:"answer" mapstructure:"answer"`
}

// Profile describes the candidate and the position they interview for.
type Profile struct {
	ResumeText      string
	JobRole         string
	JobDescription  string
	ExperienceLevel string
	Domain          Domain
}

// QuestionContext is everything a QuestionSource may use to produce a question.
type QuestionContext struct {
	Profile   Profile
	History   []QA
	FocusArea string
}

// ScoreContext is the input of a single answer assessment.
type ScoreContext struct {
	Question        string
	Answer          string
	ExperienceLevel string
}

// Metrics are the headline numbers of a finished interview.
type Metrics struct {
	ResponseQuality    float64 `json:"response_quality"`
	TechnicalAccuracy  float64 `json:"technical_accuracy"`
	CommunicationScore float64 `json:"communication_score"`
	ProblemSolving     float64 `json:"problem_solving"`
}

// SummaryRequest carries the aggregated interview data handed to a Narrator.
type SummaryRequest struct {
	History         []QA
	AverageScore    float64
	DurationMinutes float64
	Metrics         Metrics
	Category        string
}

// QuestionSource produces interview questions.
type QuestionSource interface {
	// QuestionPool is called once per session. Order of the result is not significant.
	QuestionPool(ctx context.Context, profile Profile) ([]string, error)
	// NextQuestion generates a fresh question or, when cross is set, a follow-up on the last answer.
	NextQuestion(ctx context.Context, qc QuestionContext, cross bool) (string, error)
}

// ScoreAssessor rates an answer on a 1-10 scale.
type ScoreAssessor interface {
	Score(ctx context.Context, sc ScoreContext) (float64, error)
}

// Narrator writes the free-text part of the final evaluation.
type Narrator interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

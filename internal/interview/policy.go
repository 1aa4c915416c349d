package interview

import (
	"math"
	"strings"

	"github.com/spigell/mock-interviewer/internal/ai"
)

const (
	goodThresholdLow  = 7.5
	goodThresholdHigh = 8.5
	poorThresholdLow  = 3.5
	poorThresholdHigh = 4.5

	minQuestionsLow  = 3
	minQuestionsHigh = 4
	maxQuestionsLow  = 7
	maxQuestionsHigh = 9

	// strongStreak does not scale with experience level.
	strongStreak = 2
	poorStreak   = 3

	crossQuestionScore = 7
	maxCrossQuestions  = 2

	minScore     = 1
	maxScore     = 10
	neutralScore = 5
)

var hedgingMarkers = []string{"not sure", "maybe", "i think", "possibly"}

var focusAreas = map[ai.Domain][]string{
	ai.DomainTechnical: {
		"technical skills",
		"problem-solving approach",
		"project experience",
		"system design",
		"coding practices",
		"team collaboration",
	},
	ai.DomainNonTechnical: {
		"leadership style",
		"conflict resolution",
		"project management",
		"team dynamics",
		"work ethics",
		"communication skills",
	},
}

// Rand is the randomness used for thresholds, limits, pool order and focus areas.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Thresholds split scores into good, poor and the neutral band between them.
type Thresholds struct {
	Good float64
	Poor float64
}

func uniform(r Rand, low, high float64) float64 {
	return low + r.Float64()*(high-low)
}

func drawThresholds(r Rand) Thresholds {
	return Thresholds{
		Good: uniform(r, goodThresholdLow, goodThresholdHigh),
		Poor: uniform(r, poorThresholdLow, poorThresholdHigh),
	}
}

func drawLimits(r Rand) Limits {
	return Limits{
		MinQuestions: minQuestionsLow + r.IntN(minQuestionsHigh-minQuestionsLow+1),
		MaxQuestions: maxQuestionsLow + r.IntN(maxQuestionsHigh-maxQuestionsLow+1),
	}
}

// Verdict is the classification of a single answer.
type Verdict int

const (
	VerdictNeutral Verdict = iota
	VerdictGood
	VerdictPoor
)

func (v Verdict) String() string {
	switch v {
	case VerdictGood:
		return "good"
	case VerdictPoor:
		return "poor"
	default:
		return "neutral"
	}
}

// Classify places a score relative to the thresholds. Scores strictly between them are neutral.
func Classify(score float64, th Thresholds) Verdict {
	switch {
	case score >= th.Good:
		return VerdictGood
	case score <= th.Poor:
		return VerdictPoor
	default:
		return VerdictNeutral
	}
}

type terminationRule struct {
	name  string
	fires func(s *State) bool
}

var terminationRules = []terminationRule{
	{
		name: "strong_streak",
		fires: func(s *State) bool {
			return len(s.PreviousQA) >= s.Limits.MinQuestions && s.ConsecutiveGoodAnswers >= strongStreak
		},
	},
	{
		name: "max_questions",
		fires: func(s *State) bool {
			return len(s.PreviousQA) >= s.Limits.MaxQuestions
		},
	},
	{
		name: "poor_streak",
		fires: func(s *State) bool {
			return s.ConsecutivePoorAnswers >= poorStreak
		},
	},
}

// shouldTerminate returns the name of the first rule that ends the session.
func shouldTerminate(s *State) (string, bool) {
	for _, rule := range terminationRules {
		if rule.fires(s) {
			return rule.name, true
		}
	}
	return "", false
}

// NeedsCrossQuestion reports whether the next turn should follow up on the last answer.
func NeedsCrossQuestion(score float64, crossCount int, answer string) bool {
	if score < crossQuestionScore && crossCount < maxCrossQuestions {
		return true
	}
	return isHedging(answer)
}

func isHedging(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range hedgingMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// FocusAreas lists the question focus hints for a domain.
func FocusAreas(d ai.Domain) []string {
	return focusAreas[d]
}

func pickFocusArea(r Rand, d ai.Domain) string {
	areas := focusAreas[d]
	if len(areas) == 0 {
		return ""
	}
	return areas[r.IntN(len(areas))]
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return neutralScore
	}
	return math.Min(math.Max(v, minScore), maxScore)
}

package interview

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/mock-interviewer/internal/ai"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	th := Thresholds{Good: 8.0, Poor: 4.0}

	tests := []struct {
		name  string
		score float64
		want  Verdict
	}{
		{name: "above good", score: 9, want: VerdictGood},
		{name: "exactly good", score: 8, want: VerdictGood},
		{name: "middle band", score: 6, want: VerdictNeutral},
		{name: "just above poor", score: 4.01, want: VerdictNeutral},
		{name: "exactly poor", score: 4, want: VerdictPoor},
		{name: "below poor", score: 1, want: VerdictPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.score, th))
		})
	}
}

func TestApplyVerdictResetsOppositeStreak(t *testing.T) {
	s := State{ConsecutivePoorAnswers: 2}

	s.applyVerdict(Classify(9, Thresholds{Good: 8.0, Poor: 4.0}))
	assert.Equal(t, 1, s.ConsecutiveGoodAnswers)
	assert.Zero(t, s.ConsecutivePoorAnswers)

	s.applyVerdict(VerdictNeutral)
	assert.Equal(t, 1, s.ConsecutiveGoodAnswers)

	s.applyVerdict(VerdictPoor)
	assert.Zero(t, s.ConsecutiveGoodAnswers)
	assert.Equal(t, 1, s.ConsecutivePoorAnswers)
}

func TestDrawnValuesStayInRange(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 1000; i++ {
		th := drawThresholds(r)
		assert.GreaterOrEqual(t, th.Good, goodThresholdLow)
		assert.LessOrEqual(t, th.Good, goodThresholdHigh)
		assert.GreaterOrEqual(t, th.Poor, poorThresholdLow)
		assert.LessOrEqual(t, th.Poor, poorThresholdHigh)

		limits := drawLimits(r)
		assert.Contains(t, []int{3, 4}, limits.MinQuestions)
		assert.Contains(t, []int{7, 8, 9}, limits.MaxQuestions)
	}
}

func TestShouldTerminate(t *testing.T) {
	t.Parallel()

	history := func(n int) []ai.QA { return make([]ai.QA, n) }
	limits := Limits{MinQuestions: 3, MaxQuestions: 8}

	tests := []struct {
		name   string
		state  State
		reason string
		done   bool
	}{
		{
			name:  "strong streak before minimum",
			state: State{PreviousQA: history(2), ConsecutiveGoodAnswers: 2, Limits: limits},
		},
		{
			name:   "strong streak at minimum",
			state:  State{PreviousQA: history(3), ConsecutiveGoodAnswers: 2, Limits: limits},
			reason: "strong_streak",
			done:   true,
		},
		{
			name:  "single good answer",
			state: State{PreviousQA: history(5), ConsecutiveGoodAnswers: 1, Limits: limits},
		},
		{
			name:   "hard cap",
			state:  State{PreviousQA: history(8), Limits: limits},
			reason: "max_questions",
			done:   true,
		},
		{
			name:   "poor streak on first turns",
			state:  State{PreviousQA: history(3), ConsecutivePoorAnswers: 3, Limits: limits},
			reason: "poor_streak",
			done:   true,
		},
		{
			name:  "two poor answers",
			state: State{PreviousQA: history(2), ConsecutivePoorAnswers: 2, Limits: limits},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reason, done := shouldTerminate(&tt.state)
			assert.Equal(t, tt.done, done)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestNeedsCrossQuestion(t *testing.T) {
	t.Parallel()

	assert.True(t, NeedsCrossQuestion(6.9, 0, "a full answer"))
	assert.True(t, NeedsCrossQuestion(6.9, 1, "a full answer"))
	assert.False(t, NeedsCrossQuestion(6.9, 2, "a full answer"))
	assert.False(t, NeedsCrossQuestion(7, 0, "a full answer"))
	assert.True(t, NeedsCrossQuestion(10, 0, "I'm not sure"))
	assert.True(t, NeedsCrossQuestion(10, 5, "Possibly a cache"))
	assert.True(t, NeedsCrossQuestion(9, 2, "well, I think so"))
	assert.True(t, NeedsCrossQuestion(9, 2, "Maybe."))
}

func TestFocusAreas(t *testing.T) {
	t.Parallel()

	assert.Len(t, FocusAreas(ai.DomainTechnical), 6)
	assert.Len(t, FocusAreas(ai.DomainNonTechnical), 6)
	assert.Empty(t, FocusAreas(""))
	assert.Equal(t, "team collaboration", pickFocusArea(fixedRand{n: 5}, ai.DomainTechnical))
	assert.Equal(t, "communication skills", pickFocusArea(fixedRand{n: 5}, ai.DomainNonTechnical))
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, clampScore(0))
	assert.Equal(t, 10.0, clampScore(11))
	assert.Equal(t, 6.5, clampScore(6.5))
	assert.Equal(t, 5.0, clampScore(math.NaN()))
}

package interview

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spigell/mock-interviewer/internal/ai"
)

const (
	CategoryExcellent        = "Excellent"
	CategoryGood             = "Good"
	CategoryFair             = "Fair"
	CategoryNeedsImprovement = "Needs Improvement"

	// DateLayout formats the interview start in reports.
	DateLayout = "2006-01-02 15:04:05"
)

// Report is the final evaluation of a finished interview.
type Report struct {
	DetailedEvaluation  string     `json:"detailed_evaluation"`
	AverageScore        float64    `json:"average_score"`
	TotalQuestions      int        `json:"total_questions"`
	DurationMinutes     float64    `json:"interview_duration"`
	InterviewDate       string     `json:"interview_date"`
	Metrics             ai.Metrics `json:"metrics"`
	QAPairs             []ai.QA    `json:"qa_pairs"`
	PerformanceCategory string     `json:"performance_category"`
}

// ReportBuilder aggregates a session into a Report, delegating the narrative to a Narrator.
type ReportBuilder struct {
	narrator ai.Narrator
	now      func() time.Time
}

func NewReportBuilder(narrator ai.Narrator, now func() time.Time) *ReportBuilder {
	if now == nil {
		now = time.Now
	}
	return &ReportBuilder{narrator: narrator, now: now}
}

// Build computes the metrics and requests the narrative. Only the narrative can fail.
func (b *ReportBuilder) Build(ctx context.Context, history []ai.QA, scores []float64, start time.Time) (*Report, error) {
	avg := AverageScore(scores)
	duration := b.now().Sub(start).Minutes()
	metrics := MetricsFor(avg)
	category := CategoryFor(avg)
	pairs := slices.Clone(history)
	if pairs == nil {
		pairs = []ai.QA{}
	}

	narrative, err := b.narrator.Summarize(ctx, ai.SummaryRequest{
		History:         pairs,
		AverageScore:    avg,
		DurationMinutes: duration,
		Metrics:         metrics,
		Category:        category,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize interview: %w", err)
	}

	return &Report{
		DetailedEvaluation:  NormalizeNarrative(narrative),
		AverageScore:        avg,
		TotalQuestions:      len(pairs),
		DurationMinutes:     duration,
		InterviewDate:       start.Format(DateLayout),
		Metrics:             metrics,
		QAPairs:             pairs,
		PerformanceCategory: category,
	}, nil
}

// AverageScore is the arithmetic mean, or 0 for no scores.
func AverageScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func MetricsFor(avg float64) ai.Metrics {
	return ai.Metrics{
		ResponseQuality:    avg,
		TechnicalAccuracy:  math.Min(avg+1, maxScore),
		CommunicationScore: math.Min(avg+0.5, maxScore),
		ProblemSolving:     math.Min(avg+0.7, maxScore),
	}
}

func CategoryFor(avg float64) string {
	switch {
	case avg >= 8.5:
		return CategoryExcellent
	case avg >= 7:
		return CategoryGood
	case avg >= 5:
		return CategoryFair
	default:
		return CategoryNeedsImprovement
	}
}

var (
	markupPattern     = regexp.MustCompile("[#*`]+")
	blankLinesPattern = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
	spacesPattern     = regexp.MustCompile(`[ \t\f\v]{2,}`)

	glyphReplacer = strings.NewReplacer(
		"●", "-",
		"•", "-",
		"■", "-",
		"‣", "-",
		"⁃", "-",
		"‘", "'",
		"’", "'",
		"“", `"`,
		"”", `"`,
	)
)

// NormalizeNarrative turns model markdown into plain text: markup characters are
// removed, runs of blank lines become one blank line, runs of spaces become one
// space, bullet glyphs become "-" and smart quotes become straight quotes.
// Newlines are never folded into spaces, so paragraph breaks and list lines
// survive the cleanup.
func NormalizeNarrative(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = markupPattern.ReplaceAllString(text, "")
	text = glyphReplacer.Replace(text)
	text = spacesPattern.ReplaceAllString(text, " ")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

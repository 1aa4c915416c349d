package gemini

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/mock-interviewer/internal/ai"
)

var (
	listMarkerPattern = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)
	labeledScore      = regexp.MustCompile(`(?i)^(?:score\s*[:=]\s*)?(-?\d+(?:\.\d+)?)\s*(?:/\s*10)?\s*\.?$`)
)

// parseScore extracts the numeric rating from a model response. Plain numbers,
// "7/10", "Score: 7" and {"score": 7} are accepted.
func parseScore(raw string) (float64, error) {
	cleaned := extractJSON(raw)

	if score, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return finiteScore(score, raw)
	}

	if match := labeledScore.FindStringSubmatch(cleaned); match != nil {
		score, err := strconv.ParseFloat(match[1], 64)
		if err == nil {
			return finiteScore(score, raw)
		}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil {
		return finiteScore(coerceFloat(data["score"]), raw)
	}

	return 0, fmt.Errorf("%w: %q", ai.ErrUnparsableScore, raw)
}

func finiteScore(score float64, raw string) (float64, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: %q", ai.ErrUnparsableScore, raw)
	}
	return score, nil
}

// parseQuestionList splits a one-question-per-line response.
func parseQuestionList(raw string) []string {
	lines := strings.Split(extractJSON(raw), "\n")
	questions := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = listMarkerPattern.ReplaceAllString(line, "")
		line = cleanQuestion(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
	}
	return questions
}

func cleanQuestion(raw string) string {
	q := strings.TrimSpace(raw)
	q = strings.Trim(q, "*`\"")
	return strings.TrimSpace(q)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

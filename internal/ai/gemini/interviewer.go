package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

var (
	//go:embed prompts/technical.md
	technicalSystemPrompt string
	//go:embed prompts/nontechnical.md
	nonTechnicalSystemPrompt string
	//go:embed prompts/pool.md
	poolTemplate string
	//go:embed prompts/question.md
	questionTemplate string
	//go:embed prompts/score.md
	scoreTemplate string
	//go:embed prompts/evaluation.md
	evaluationTemplate string
)

const (
	defaultMaxLogLength = 200
	defaultPoolSize     = 10
)

// Interviewer implements the question, scoring and narrative contracts on top of Gemini.
type Interviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	poolSize  int
}

var (
	_ ai.QuestionSource = (*Interviewer)(nil)
	_ ai.ScoreAssessor  = (*Interviewer)(nil)
	_ ai.Narrator       = (*Interviewer)(nil)
)

func NewInterviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Interviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Interviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		poolSize:  defaultPoolSize,
	}
}

func (i *Interviewer) QuestionPool(ctx context.Context, profile ai.Profile) ([]string, error) {
	prompt := render(poolTemplate,
		"{{RESUME}}", profile.ResumeText,
		"{{EXPERIENCE}}", profile.ExperienceLevel,
		"{{JOB_ROLE}}", profile.JobRole,
		"{{JOB_DESCRIPTION}}", profile.JobDescription,
		"{{COUNT}}", strconv.Itoa(i.poolSize),
	)

	raw, err := i.generate(ctx, "question_pool", systemPrompt(profile.Domain), prompt)
	if err != nil {
		return nil, err
	}

	return parseQuestionList(raw), nil
}

func (i *Interviewer) NextQuestion(ctx context.Context, qc ai.QuestionContext, cross bool) (string, error) {
	task := "a cross-question based on the last answer"
	if !cross {
		task = fmt.Sprintf("a new question focusing on %s", qc.FocusArea)
	}

	previous := make([]string, 0, len(qc.History))
	for _, qa := range qc.History {
		previous = append(previous, qa.Question)
	}
	asked := "none"
	if len(previous) > 0 {
		asked = strings.Join(previous, "; ")
	}

	prompt := render(questionTemplate,
		"{{RESUME}}", qc.Profile.ResumeText,
		"{{EXPERIENCE}}", qc.Profile.ExperienceLevel,
		"{{JOB_ROLE}}", qc.Profile.JobRole,
		"{{JOB_DESCRIPTION}}", qc.Profile.JobDescription,
		"{{HISTORY}}", formatHistory(qc.History),
		"{{TASK}}", task,
		"{{PREVIOUS_QUESTIONS}}", asked,
	)

	raw, err := i.generate(ctx, "next_question", systemPrompt(qc.Profile.Domain), prompt)
	if err != nil {
		return "", err
	}

	return cleanQuestion(raw), nil
}

func (i *Interviewer) Score(ctx context.Context, sc ai.ScoreContext) (float64, error) {
	prompt := render(scoreTemplate,
		"{{EXPERIENCE}}", sc.ExperienceLevel,
		"{{QUESTION}}", sc.Question,
		"{{ANSWER}}", sc.Answer,
	)

	raw, err := i.generate(ctx, "score", "", prompt)
	if err != nil {
		return 0, err
	}

	return parseScore(raw)
}

func (i *Interviewer) Summarize(ctx context.Context, req ai.SummaryRequest) (string, error) {
	history := req.History
	if history == nil {
		history = []ai.QA{}
	}

	historyJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal interview history: %w", err)
	}

	prompt := render(evaluationTemplate,
		"{{HISTORY_JSON}}", string(historyJSON),
		"{{AVERAGE}}", oneDecimal(req.AverageScore),
		"{{DURATION}}", oneDecimal(req.DurationMinutes),
		"{{TOTAL}}", strconv.Itoa(len(history)),
		"{{RESPONSE_QUALITY}}", oneDecimal(req.Metrics.ResponseQuality),
		"{{TECHNICAL_ACCURACY}}", oneDecimal(req.Metrics.TechnicalAccuracy),
		"{{COMMUNICATION}}", oneDecimal(req.Metrics.CommunicationScore),
		"{{PROBLEM_SOLVING}}", oneDecimal(req.Metrics.ProblemSolving),
		"{{CATEGORY}}", req.Category,
	)

	return i.generate(ctx, "evaluation", "", prompt)
}

func (i *Interviewer) generate(ctx context.Context, purpose, system, prompt string) (string, error) {
	if i.generator == nil {
		return "", fmt.Errorf("gemini generator is not configured")
	}

	i.logger.Debug("gemini generate content request",
		zap.String("purpose", purpose),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", purpose, err)
	}

	i.logger.Debug("gemini generate content response",
		zap.String("purpose", purpose),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
	)

	return raw, nil
}

func systemPrompt(domain ai.Domain) string {
	if domain == ai.DomainTechnical {
		return technicalSystemPrompt
	}
	return nonTechnicalSystemPrompt
}

func render(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

func formatHistory(history []ai.QA) string {
	if len(history) == 0 {
		return "none"
	}

	lines := make([]string, 0, len(history))
	for _, qa := range history {
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", qa.Question, qa.Answer))
	}
	return strings.Join(lines, "\n")
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

package interview

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/logger"
)

const tracerName = "github.com/spigell/mock-interviewer/internal/interview"

// Deps are the collaborators of the orchestrator.
type Deps struct {
	Questions ai.QuestionSource
	Scorer    ai.ScoreAssessor
	Narrator  ai.Narrator
	Logger    *zap.Logger
}

type Option func(*Orchestrator)

// WithRand replaces the default time-seeded random source.
func WithRand(r Rand) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.rand = r
		}
	}
}

// WithSeed makes thresholds, limits and question order reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) {
		if tp != nil {
			o.tracer = tp.Tracer(tracerName)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Turn is the outcome of Start or Submit. Report is set once the interview is over.
type Turn struct {
	SessionID     string
	Question      string
	Number        int
	StartTime     time.Time
	Elapsed       time.Duration
	CrossQuestion bool
	EndReason     string
	Report        *Report
}

// Finished reports whether the turn ended the interview.
func (t *Turn) Finished() bool {
	return t.Report != nil
}

// Orchestrator runs a single interview session. All operations are serialized;
// adapter calls are made while the lock is held.
type Orchestrator struct {
	mu sync.Mutex

	questions ai.QuestionSource
	scorer    ai.ScoreAssessor
	reports   *ReportBuilder
	logger    *zap.Logger
	tracer    trace.Tracer
	rand      Rand
	now       func() time.Time

	state State
}

func New(deps Deps, opts ...Option) (*Orchestrator, error) {
	if deps.Questions == nil {
		return nil, errors.New("question source is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("score assessor is required")
	}
	if deps.Narrator == nil {
		return nil, errors.New("narrator is required")
	}

	seed := uint64(time.Now().UnixNano())
	o := &Orchestrator{
		questions: deps.Questions,
		scorer:    deps.Scorer,
		logger:    logger.WithFields(deps.Logger),
		tracer:    otel.Tracer(tracerName),
		rand:      rand.New(rand.NewPCG(seed, seed>>1)),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	o.reports = NewReportBuilder(deps.Narrator, o.now)

	return o, nil
}

// Start resets the session and begins a new one for the profile.
func (o *Orchestrator) Start(ctx context.Context, profile ai.Profile) (turn *Turn, err error) {
	const op = "start interview"

	ctx, span := o.tracer.Start(ctx, "interview.start")
	defer func() { endSpan(span, err) }()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = State{}

	profile, err = normalizeProfile(profile)
	if err != nil {
		return nil, validationError(op, err)
	}

	o.state = State{
		SessionID: uuid.NewString(),
		Profile:   profile,
		StartTime: o.now(),
		Limits:    drawLimits(o.rand),
	}
	span.SetAttributes(
		attribute.String("interview.session_id", o.state.SessionID),
		attribute.String("interview.domain", string(profile.Domain)),
	)

	log := o.sessionLogger(0)
	log.Info("starting interview",
		zap.String("job_role", profile.JobRole),
		zap.String("experience_level", profile.ExperienceLevel),
		zap.Int("min_questions", o.state.Limits.MinQuestions),
		zap.Int("max_questions", o.state.Limits.MaxQuestions),
	)

	pool, err := o.questions.QuestionPool(ctx, profile)
	if err != nil {
		o.state = State{}
		return nil, adapterError(op, fmt.Errorf("generate question pool: %w", err))
	}

	pool = compactQuestions(pool)
	o.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	o.state.QuestionPool = pool

	log.Debug("question pool ready", zap.Int("pool_size", len(pool)))

	question, err := o.nextQuestion(ctx, false)
	if err != nil {
		o.state = State{}
		return nil, adapterError(op, err)
	}

	return &Turn{
		SessionID: o.state.SessionID,
		Question:  question,
		Number:    1,
		StartTime: o.state.StartTime,
	}, nil
}

// Submit records an answer and returns either the next question or the final report.
func (o *Orchestrator) Submit(ctx context.Context, question, answer string) (turn *Turn, err error) {
	const op = "submit answer"

	ctx, span := o.tracer.Start(ctx, "interview.submit")
	defer func() { endSpan(span, err) }()

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.Active() {
		return nil, validationError(op, ErrNoSession)
	}
	if o.state.Finished {
		return nil, validationError(op, ErrFinished)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, validationError(op, errors.New("question is required"))
	}

	number := o.state.NextQuestionNumber()
	log := o.sessionLogger(number)
	span.SetAttributes(
		attribute.String("interview.session_id", o.state.SessionID),
		attribute.Int("interview.question_number", number),
	)

	score := o.assess(ctx, log, question, answer)

	thresholds := drawThresholds(o.rand)
	verdict := Classify(score, thresholds)
	o.state.applyVerdict(verdict)
	o.state.record(ai.QA{Question: question, Answer: answer}, score)

	log.Info("answer assessed",
		zap.Float64("score", score),
		zap.String("verdict", verdict.String()),
		zap.Int("consecutive_good", o.state.ConsecutiveGoodAnswers),
		zap.Int("consecutive_poor", o.state.ConsecutivePoorAnswers),
	)

	if reason, done := shouldTerminate(&o.state); done {
		o.state.Finished = true
		log.Info("interview finished", zap.String("reason", reason), zap.Int("total_questions", len(o.state.PreviousQA)))

		report, err := o.reports.Build(ctx, o.state.PreviousQA, o.state.PerformanceScores, o.state.StartTime)
		if err != nil {
			return nil, adapterError(op, err)
		}

		return &Turn{
			SessionID: o.state.SessionID,
			Number:    len(o.state.PreviousQA),
			StartTime: o.state.StartTime,
			Elapsed:   o.now().Sub(o.state.StartTime),
			EndReason: reason,
			Report:    report,
		}, nil
	}

	cross := NeedsCrossQuestion(score, o.state.CrossQuestionCount, answer)

	next, err := o.nextQuestion(ctx, cross)
	if err != nil {
		return nil, adapterError(op, err)
	}
	if cross {
		o.state.CrossQuestionCount++
	}

	return &Turn{
		SessionID:     o.state.SessionID,
		Question:      next,
		Number:        o.state.NextQuestionNumber(),
		StartTime:     o.state.StartTime,
		Elapsed:       o.now().Sub(o.state.StartTime),
		CrossQuestion: cross,
	}, nil
}

// Evaluate rebuilds the report of a finished session.
func (o *Orchestrator) Evaluate(ctx context.Context) (report *Report, err error) {
	const op = "evaluate interview"

	ctx, span := o.tracer.Start(ctx, "interview.evaluate")
	defer func() { endSpan(span, err) }()

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.Active() {
		return nil, validationError(op, ErrNoSession)
	}
	if !o.state.Finished {
		return nil, validationError(op, ErrNotFinished)
	}

	report, err = o.reports.Build(ctx, o.state.PreviousQA, o.state.PerformanceScores, o.state.StartTime)
	if err != nil {
		return nil, adapterError(op, err)
	}
	return report, nil
}

// Reset discards the current session. It always succeeds.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Active() {
		o.sessionLogger(0).Info("interview reset")
	}
	o.state = State{}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state.clone()
}

func (o *Orchestrator) assess(ctx context.Context, log *zap.Logger, question, answer string) float64 {
	score, err := o.scorer.Score(ctx, ai.ScoreContext{
		Question:        question,
		Answer:          answer,
		ExperienceLevel: o.state.Profile.ExperienceLevel,
	})
	if err != nil {
		log.Warn("answer assessment failed, using neutral score",
			zap.Error(&Error{Kind: KindScoring, Op: "assess answer", Err: err}),
			zap.Float64("score", neutralScore),
		)
		return neutralScore
	}
	return clampScore(score)
}

// nextQuestion takes a fresh question from the pool when possible and
// generates one otherwise. Cross-questions are always generated.
func (o *Orchestrator) nextQuestion(ctx context.Context, cross bool) (string, error) {
	if !cross {
		if q, ok := o.state.popQuestion(); ok {
			return q, nil
		}
	}

	qc := ai.QuestionContext{
		Profile:   o.state.Profile,
		History:   append([]ai.QA(nil), o.state.PreviousQA...),
		FocusArea: pickFocusArea(o.rand, o.state.Profile.Domain),
	}

	o.sessionLogger(o.state.NextQuestionNumber()).Debug("generating question",
		zap.Bool("cross_question", cross),
		zap.String("focus_area", qc.FocusArea),
	)

	q, err := o.questions.NextQuestion(ctx, qc, cross)
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}

func (o *Orchestrator) sessionLogger(number int) *zap.Logger {
	return logger.WithFields(o.logger, logger.SessionFields(o.state.SessionID, string(o.state.Profile.Domain), number)...)
}

func normalizeProfile(p ai.Profile) (ai.Profile, error) {
	domain, err := ai.ParseDomain(string(p.Domain))
	if err != nil {
		return ai.Profile{}, fmt.Errorf("%w: %q (expected %s or %s)", err, p.Domain, ai.DomainTechnical, ai.DomainNonTechnical)
	}

	p.Domain = domain
	p.ResumeText = strings.TrimSpace(p.ResumeText)
	p.JobRole = strings.TrimSpace(p.JobRole)
	p.JobDescription = strings.TrimSpace(p.JobDescription)
	p.ExperienceLevel = strings.TrimSpace(p.ExperienceLevel)

	required := []struct {
		name  string
		value string
	}{
		{"resume text", p.ResumeText},
		{"job role", p.JobRole},
		{"job description", p.JobDescription},
		{"experience level", p.ExperienceLevel},
	}
	for _, field := range required {
		if field.value == "" {
			return ai.Profile{}, fmt.Errorf("%s is required", field.name)
		}
	}

	return p, nil
}

func compactQuestions(pool []string) []string {
	out := make([]string, 0, len(pool))
	for _, q := range pool {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

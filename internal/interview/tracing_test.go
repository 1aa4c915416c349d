package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func newTracedOrchestrator(t *testing.T) (*Orchestrator, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	orch, err := New(Deps{
		Questions: &stubQuestions{pool: []string{"pool a", "pool b", "pool c"}},
		Scorer:    &stubScorer{},
		Narrator:  &stubNarrator{text: "fine"},
		Logger:    zap.NewNop(),
	}, WithRand(fixedRand{f: 0.5}), WithTracerProvider(tp))
	require.NoError(t, err)

	return orch, recorder
}

func spansNamed(recorder *tracetest.SpanRecorder, name string) []sdktrace.ReadOnlySpan {
	var spans []sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			spans = append(spans, span)
		}
	}
	return spans
}

func TestSubmitRecordsSpan(t *testing.T) {
	orch, recorder := newTracedOrchestrator(t)

	turn, err := orch.Start(context.Background(), technicalProfile())
	require.NoError(t, err)
	_, err = orch.Submit(context.Background(), turn.Question, "an answer")
	require.NoError(t, err)

	require.Len(t, spansNamed(recorder, "interview.start"), 1)
	submits := spansNamed(recorder, "interview.submit")
	require.Len(t, submits, 1)

	span := submits[0]
	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("interview.session_id", turn.SessionID))
	assert.Contains(t, span.Attributes(), attribute.Int("interview.question_number", 1))
}

func TestSubmitWithoutSessionMarksSpanFailed(t *testing.T) {
	orch, recorder := newTracedOrchestrator(t)

	_, err := orch.Submit(context.Background(), "question", "answer")
	require.ErrorIs(t, err, ErrNoSession)

	submits := spansNamed(recorder, "interview.submit")
	require.Len(t, submits, 1)
	assert.Equal(t, codes.Error, submits[0].Status().Code)
	assert.Contains(t, submits[0].Status().Description, ErrNoSession.Error())

	var recorded bool
	for _, event := range submits[0].Events() {
		if event.Name == "exception" {
			recorded = true
		}
	}
	assert.True(t, recorded, "error should be recorded as an exception event")
}

func TestEvaluateBeforeFinishMarksSpanFailed(t *testing.T) {
	orch, recorder := newTracedOrchestrator(t)

	_, err := orch.Start(context.Background(), technicalProfile())
	require.NoError(t, err)
	_, err = orch.Evaluate(context.Background())
	require.ErrorIs(t, err, ErrNotFinished)

	evaluations := spansNamed(recorder, "interview.evaluate")
	require.Len(t, evaluations, 1)
	assert.Equal(t, codes.Error, evaluations[0].Status().Code)
}

// Package history keeps finished interview evaluations per user.
package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/mock-interviewer/internal/ai"
)

var (
	// ErrInvalidRecord is returned when a record misses the user email or the evaluation text.
	ErrInvalidRecord = errors.New("invalid evaluation record")
	// ErrUnknownBackend is returned by Open for unsupported backend names.
	ErrUnknownBackend = errors.New("unknown history backend")
)

// Evaluation is the part of a finished interview report that is kept in history.
type Evaluation struct {
	AverageScore        float64 `json:"average_score" mapstructure:"average_score"`
	InterviewDuration   float64 `json:"interview_duration" mapstructure:"interview_duration"`
	TotalQuestions      int     `json:"total_questions" mapstructure:"total_questions"`
	QAPairs             []ai.QA `json:"qa_pairs" mapstructure:"qa_pairs"`
	DetailedEvaluation  string  `json:"detailed_evaluation" mapstructure:"detailed_evaluation"`
	PerformanceCategory string  `json:"performance_category,omitempty" mapstructure:"performance_category"`
}

// Record is a stored evaluation.
type Record struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"createdAt"`
	Evaluation
}

// Store persists records. ListByUser returns the newest record first.
type Store interface {
	Save(ctx context.Context, rec Record) error
	ListByUser(ctx context.Context, email string) ([]Record, error)
	Close() error
}

// NewRecord validates the input and stamps a fresh id and creation time.
func NewRecord(email string, ev Evaluation, now time.Time) (Record, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return Record{}, fmt.Errorf("%w: user email is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(ev.DetailedEvaluation) == "" {
		return Record{}, fmt.Errorf("%w: detailed evaluation is required", ErrInvalidRecord)
	}
	if ev.QAPairs == nil {
		ev.QAPairs = []ai.QA{}
	}
	if ev.TotalQuestions == 0 {
		ev.TotalQuestions = len(ev.QAPairs)
	}

	return Record{
		ID:         uuid.NewString(),
		UserEmail:  email,
		CreatedAt:  now.UTC(),
		Evaluation: ev,
	}, nil
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortNewestFirst(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of "memory", "redis" or "postgres". Empty means memory.
	Backend  string         `mapstructure:"backend"`
	Memory   MemoryOptions  `mapstructure:"memory"`
	Redis    RedisOptions   `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds the connection string of the postgres backend.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Ephemeral reports whether records live only as long as the process that saved them.
func (c Config) Ephemeral() bool {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "", "memory":
		return true
	default:
		return false
	}
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemory(cfg.Memory)
	case "redis":
		return NewRedis(ctx, cfg.Redis)
	case "postgres", "postgresql":
		return NewPostgres(ctx, cfg.Postgres.DSN)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

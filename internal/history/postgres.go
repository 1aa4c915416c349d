package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres keeps records in the evaluation_history table.
type Postgres struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

var _ Store = (*Postgres)(nil)

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	p.schemaOnce.Do(func() {
		_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS evaluation_history (
  id TEXT PRIMARY KEY,
  user_email TEXT NOT NULL,
  average_score DOUBLE PRECISION NOT NULL,
  interview_duration DOUBLE PRECISION NOT NULL,
  total_questions INTEGER NOT NULL,
  qa_pairs JSONB NOT NULL DEFAULT '[]',
  detailed_evaluation TEXT NOT NULL,
  performance_category TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_evaluation_history_user ON evaluation_history (user_email, created_at DESC);
`)
		if err != nil {
			p.schemaErr = fmt.Errorf("create evaluation_history schema: %w", err)
		}
	})
	return p.schemaErr
}

func (p *Postgres) Save(ctx context.Context, rec Record) error {
	if NormalizeEmail(rec.UserEmail) == "" || rec.ID == "" {
		return fmt.Errorf("%w: id and user email are required", ErrInvalidRecord)
	}

	pairs, err := json.Marshal(rec.QAPairs)
	if err != nil {
		return fmt.Errorf("marshal qa pairs: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
INSERT INTO evaluation_history (
  id, user_email, average_score, interview_duration, total_questions,
  qa_pairs, detailed_evaluation, performance_category, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, NormalizeEmail(rec.UserEmail), rec.AverageScore, rec.InterviewDuration, rec.TotalQuestions,
		string(pairs), rec.DetailedEvaluation, rec.PerformanceCategory, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

func (p *Postgres) ListByUser(ctx context.Context, email string) ([]Record, error) {
	rows, err := p.db.QueryContext(ctx, `
SELECT id, user_email, average_score, interview_duration, total_questions,
  qa_pairs, detailed_evaluation, performance_category, created_at
FROM evaluation_history WHERE user_email = $1
ORDER BY created_at DESC`, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, 16)
	for rows.Next() {
		var (
			rec   Record
			pairs []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.UserEmail,
			&rec.AverageScore,
			&rec.InterviewDuration,
			&rec.TotalQuestions,
			&pairs,
			&rec.DetailedEvaluation,
			&rec.PerformanceCategory,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal(pairs, &rec.QAPairs); err != nil {
			return nil, fmt.Errorf("unmarshal qa pairs of %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

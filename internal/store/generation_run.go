package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

const generationRunsSchema = `
CREATE TABLE IF NOT EXISTS generation_runs (
	id                BIGINT PRIMARY KEY,
	issue_key         TEXT NOT NULL DEFAULT '',
	provider          TEXT NOT NULL,
	model             TEXT NOT NULL,
	is_additional     BOOLEAN NOT NULL DEFAULT FALSE,
	prompt            TEXT NOT NULL,
	raw_output        TEXT NOT NULL DEFAULT '',
	case_count        INTEGER NOT NULL DEFAULT 0,
	latency_ms        BIGINT NOT NULL DEFAULT 0,
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	error             TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS generation_runs_issue_key_idx ON generation_runs (issue_key, created_at DESC);
`

// DBTX is the subset of pgxpool.Pool and pgx.Tx the stores use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type generationRunStore struct {
	db DBTX
}

func newGenerationRunStore(db DBTX) GenerationRunStore {
	return &generationRunStore{db: db}
}

// EnsureSchema creates the generation_runs table when missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, generationRunsSchema); err != nil {
		return fmt.Errorf("creating generation_runs: %w", err)
	}
	return nil
}

func (s *generationRunStore) Create(ctx context.Context, run *model.GenerationRun) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO generation_runs (
			id, issue_key, provider, model, is_additional, prompt, raw_output,
			case_count, latency_ms, prompt_tokens, completion_tokens, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID, run.IssueKey, run.Provider, run.Model, run.Additional, run.Prompt, run.RawOutput,
		run.CaseCount, run.LatencyMs, run.PromptTokens, run.CompletionTokens, run.Error, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting generation run: %w", err)
	}
	return nil
}

func (s *generationRunStore) ListByIssue(ctx context.Context, issueKey string, limit int32) ([]model.GenerationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, issue_key, provider, model, is_additional, prompt, raw_output,
		       case_count, latency_ms, prompt_tokens, completion_tokens, error, created_at
		FROM generation_runs
		WHERE issue_key = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		issueKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing generation runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.GenerationRun, error) {
		var r model.GenerationRun
		err := row.Scan(
			&r.ID, &r.IssueKey, &r.Provider, &r.Model, &r.Additional, &r.Prompt, &r.RawOutput,
			&r.CaseCount, &r.LatencyMs, &r.PromptTokens, &r.CompletionTokens, &r.Error, &r.CreatedAt,
		)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning generation runs: %w", err)
	}
	return runs, nil
}

type noopGenerationRunStore struct{}

// NewNoopGenerationRunStore drops writes and reports ErrDisabled on reads.
func NewNoopGenerationRunStore() GenerationRunStore {
	return noopGenerationRunStore{}
}

func (noopGenerationRunStore) Create(context.Context, *model.GenerationRun) error {
	return nil
}

func (noopGenerationRunStore) ListByIssue(context.Context, string, int32) ([]model.GenerationRun, error) {
	return nil, ErrDisabled
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const llmRequestTable = "llm_requests"

// eventRepo implements EventRepo.
type eventRepo struct {
	db      *sql.DB
	dialect string
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	q := builder(r.dialect).Insert(llmRequestTable).
		Columns(
			"id", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "created_at",
		).
		Values(
			uuid.NewString(), data.Provider, data.Model, data.Purpose, data.InputTokens,
			data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage, toMillis(time.Now()),
		)
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) LLMUsage(ctx context.Context, since time.Time) ([]LLMUsageRow, error) {
	q := builder(r.dialect).Select(
		"purpose",
		entsql.Count("*"),
		"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
	).
		From(builder(r.dialect).Table(llmRequestTable)).
		Where(entsql.GTE("created_at", toMillis(since))).
		GroupBy("purpose").
		OrderBy(entsql.Asc("purpose"))

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsageRow
	for rows.Next() {
		var row LLMUsageRow
		if err := rows.Scan(&row.Purpose, &row.Requests, &row.Failures, &row.InputTokens, &row.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

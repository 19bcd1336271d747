package server

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) SavePrompt(record PromptRecord) error {
	if strings.TrimSpace(record.CreatedAt) == "" {
		record.CreatedAt = nowRFC3339()
	}
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO prompts (fingerprint,request_id,vibe,prompt,family,source,model_used,context_summary,
		        quality_score,quality_grade,security_verdict,sanitized_issues,used_fallback,generation_time_ms,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		 ON CONFLICT (fingerprint) DO UPDATE SET
		        request_id=EXCLUDED.request_id, vibe=EXCLUDED.vibe, prompt=EXCLUDED.prompt,
		        family=EXCLUDED.family, source=EXCLUDED.source, model_used=EXCLUDED.model_used,
		        context_summary=EXCLUDED.context_summary, quality_score=EXCLUDED.quality_score,
		        quality_grade=EXCLUDED.quality_grade, security_verdict=EXCLUDED.security_verdict,
		        sanitized_issues=EXCLUDED.sanitized_issues, used_fallback=EXCLUDED.used_fallback,
		        generation_time_ms=EXCLUDED.generation_time_ms, created_at=EXCLUDED.created_at`,
		record.Fingerprint, record.RequestID, record.Vibe, record.Prompt, record.Family,
		record.Source, nullStr(record.ModelUsed), nullStr(record.ContextSummary),
		record.QualityScore, record.QualityGrade, record.SecurityVerdict,
		record.SanitizedIssues, record.UsedFallback, record.GenerationTimeMS, record.CreatedAt)
	return err
}

func (s *PgStore) GetPrompt(fingerprint string) (PromptRecord, bool) {
	row := s.pool.QueryRow(context.Background(),
		`SELECT fingerprint,request_id,vibe,prompt,family,source,model_used,context_summary,
		        quality_score,quality_grade,security_verdict,sanitized_issues,used_fallback,generation_time_ms,created_at
		 FROM prompts WHERE fingerprint=$1`, fingerprint)
	record, err := scanPromptRecord(row)
	if err != nil {
		return PromptRecord{}, false
	}
	return record, true
}

func (s *PgStore) ListRecentPrompts(limit int) []PromptRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(context.Background(),
		`SELECT fingerprint,request_id,vibe,prompt,family,source,model_used,context_summary,
		        quality_score,quality_grade,security_verdict,sanitized_issues,used_fallback,generation_time_ms,created_at
		 FROM prompts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return []PromptRecord{}
	}
	defer rows.Close()
	var out []PromptRecord
	for rows.Next() {
		record, err := scanPromptRecord(rows)
		if err != nil {
			continue
		}
		out = append(out, record)
	}
	if out == nil {
		return []PromptRecord{}
	}
	return out
}

func (s *PgStore) GetStatsOverview() StatsOverview {
	overview := StatsOverview{GeneratedAt: nowRFC3339()}
	_ = s.pool.QueryRow(context.Background(),
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE used_fallback),
			COUNT(*) FILTER (WHERE security_verdict='WARN'),
			COALESCE(AVG(quality_score),0),
			COALESCE(AVG(generation_time_ms),0)::bigint
		 FROM prompts`).Scan(
		&overview.TotalPrompts, &overview.FallbackPrompts, &overview.WarnPrompts,
		&overview.AverageQuality, &overview.AverageDurationMS)
	_ = s.pool.QueryRow(context.Background(),
		`SELECT family FROM prompts GROUP BY family ORDER BY COUNT(*) DESC, family LIMIT 1`).
		Scan(&overview.TopFamily)
	return overview
}

// --- helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanPromptRecord(row scannable) (PromptRecord, error) {
	var record PromptRecord
	var modelUsed, contextSummary *string
	var createdAt time.Time
	err := row.Scan(&record.Fingerprint, &record.RequestID, &record.Vibe, &record.Prompt,
		&record.Family, &record.Source, &modelUsed, &contextSummary,
		&record.QualityScore, &record.QualityGrade, &record.SecurityVerdict,
		&record.SanitizedIssues, &record.UsedFallback, &record.GenerationTimeMS, &createdAt)
	if err != nil {
		return PromptRecord{}, err
	}
	record.ModelUsed = deref(modelUsed)
	record.ContextSummary = deref(contextSummary)
	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return record, nil
}

func nullStr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ensure PgStore implements Store at compile time.
var _ Store = (*PgStore)(nil)

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is one translate invocation as recorded by the CLI.
type Job struct {
	ID          string
	Status      JobStatus
	InputName   string
	SourceLang  string
	TargetLang  string
	StylePreset string
	GlossaryID  string
	SourceText  string
	Translation string
	Confidence  float64
	Retries     int
	TotalTokens int
	// ResultJSON holds the serialized pipeline result of a completed job.
	ResultJSON string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JobOutcome is what a completed job records.
type JobOutcome struct {
	Translation string
	Confidence  float64
	Retries     int
	TotalTokens int
	ResultJSON  []byte
}

type JobStats struct {
	Total         int
	Processing    int
	Completed     int
	Failed        int
	TotalTokens   int
	AvgConfidence float64
}

// CreateJob records a job in the processing state and returns its ID.
func (s *Store) CreateJob(ctx context.Context, job Job) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, input_name, source_lang, target_lang, style_preset, glossary_id, source_text, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, JobProcessing, job.InputName, job.SourceLang, job.TargetLang, job.StylePreset, job.GlossaryID, job.SourceText, now, now)
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	return id, nil
}

func (s *Store) CompleteJob(ctx context.Context, id string, out JobOutcome) error {
	var result sql.NullString
	if len(out.ResultJSON) > 0 {
		result = sql.NullString{String: string(out.ResultJSON), Valid: true}
	}
	return s.finishJob(ctx, id,
		`UPDATE jobs SET status = ?, translation = ?, confidence = ?, retries = ?, total_tokens = ?, result_json = ?, updated_at = ? WHERE id = ?`,
		JobCompleted, out.Translation, out.Confidence, out.Retries, out.TotalTokens, result, time.Now().UTC(), id)
}

func (s *Store) FailJob(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.finishJob(ctx, id,
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		JobFailed, msg, time.Now().UTC(), id)
}

func (s *Store) finishJob(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

const jobColumns = `id, status, input_name, source_lang, target_lang, style_preset, glossary_id, source_text,
	translation, confidence, retries, total_tokens, result_json, error, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	var result sql.NullString
	err := row.Scan(&j.ID, &j.Status, &j.InputName, &j.SourceLang, &j.TargetLang, &j.StylePreset, &j.GlossaryID, &j.SourceText,
		&j.Translation, &j.Confidence, &j.Retries, &j.TotalTokens, &result, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.ResultJSON = result.String
	return &j, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return j, err
}

// ListJobs returns jobs newest first. A limit of zero or less returns all.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.finishJob(ctx, id, `DELETE FROM jobs WHERE id = ?`, id)
}

func (s *Store) JobStats(ctx context.Context) (*JobStats, error) {
	stats := &JobStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(AVG(CASE WHEN status = ? THEN confidence END), 0)
		FROM jobs`,
		JobProcessing, JobCompleted, JobFailed, JobCompleted).Scan(
		&stats.Total,
		&stats.Processing,
		&stats.Completed,
		&stats.Failed,
		&stats.TotalTokens,
		&stats.AvgConfidence,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

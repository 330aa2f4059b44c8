// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/omiai/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		title_clean TEXT NOT NULL,
		objective TEXT,
		main_activities TEXT,
		required_competencies TEXT,
		description_clean TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_title_clean ON jobs(title_clean);

	CREATE TABLE IF NOT EXISTS applicants (
		candidate_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		resume_text TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS prospects (
		job_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		outcome_status TEXT NOT NULL,
		PRIMARY KEY (job_id, candidate_id)
	);

	CREATE INDEX IF NOT EXISTS idx_prospects_candidate ON prospects(candidate_id);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertJob inserts or replaces a job posting.
func (s *SQLiteStorage) UpsertJob(ctx context.Context, job *models.JobPosting) error {
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, title_clean, objective, main_activities, required_competencies, description_clean, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   title_clean = excluded.title_clean,
		   objective = excluded.objective,
		   main_activities = excluded.main_activities,
		   required_competencies = excluded.required_competencies,
		   description_clean = excluded.description_clean,
		   updated_at = excluded.updated_at`,
		job.ID, job.Title, job.TitleClean, job.Objective, job.MainActivities,
		job.RequiredCompetencies, job.DescriptionClean, job.CreatedAt, job.UpdatedAt,
	)
	return err
}

// GetJob returns a job posting by ID.
func (s *SQLiteStorage) GetJob(ctx context.Context, id string) (*models.JobPosting, error) {
	var job models.JobPosting
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, title_clean, objective, main_activities, required_competencies, description_clean, created_at, updated_at
		 FROM jobs WHERE id = ?`, id,
	).Scan(&job.ID, &job.Title, &job.TitleClean, &job.Objective, &job.MainActivities,
		&job.RequiredCompetencies, &job.DescriptionClean, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns job postings ordered by cleaned title, with offset and limit.
func (s *SQLiteStorage) ListJobs(ctx context.Context, offset, limit int) ([]*models.JobPosting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, title_clean, objective, main_activities, required_competencies, description_clean, created_at, updated_at
		 FROM jobs ORDER BY title_clean, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.JobPosting
	for rows.Next() {
		var job models.JobPosting
		if err := rows.Scan(&job.ID, &job.Title, &job.TitleClean, &job.Objective, &job.MainActivities,
			&job.RequiredCompetencies, &job.DescriptionClean, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// UpsertApplicant inserts or replaces an applicant.
func (s *SQLiteStorage) UpsertApplicant(ctx context.Context, a *models.Applicant) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applicants (candidate_id, name, resume_text, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(candidate_id) DO UPDATE SET
		   name = excluded.name,
		   resume_text = excluded.resume_text,
		   updated_at = excluded.updated_at`,
		a.CandidateID, a.Name, a.ResumeText, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// GetApplicant returns an applicant by candidate ID.
func (s *SQLiteStorage) GetApplicant(ctx context.Context, candidateID string) (*models.Applicant, error) {
	var a models.Applicant
	err := s.db.QueryRowContext(ctx,
		`SELECT candidate_id, name, resume_text, created_at, updated_at
		 FROM applicants WHERE candidate_id = ?`, candidateID,
	).Scan(&a.CandidateID, &a.Name, &a.ResumeText, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("applicant not found: %s", candidateID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListApplicants returns applicants in insertion order, with offset and limit.
// Insertion order is what makes recommendation tie-breaking deterministic.
func (s *SQLiteStorage) ListApplicants(ctx context.Context, offset, limit int) ([]*models.Applicant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT candidate_id, name, resume_text, created_at, updated_at
		 FROM applicants ORDER BY rowid LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applicants []*models.Applicant
	for rows.Next() {
		var a models.Applicant
		if err := rows.Scan(&a.CandidateID, &a.Name, &a.ResumeText, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		applicants = append(applicants, &a)
	}
	return applicants, rows.Err()
}

// SetResumeText replaces only the resume text of an applicant.
func (s *SQLiteStorage) SetResumeText(ctx context.Context, candidateID, resumeText string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE applicants SET resume_text = ?, updated_at = ? WHERE candidate_id = ?`,
		resumeText, time.Now(), candidateID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("applicant not found: %s", candidateID)
	}
	return nil
}

// BatchCreateProspects inserts prospects in a transaction, replacing duplicates.
func (s *SQLiteStorage) BatchCreateProspects(ctx context.Context, prospects []*models.Prospect) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO prospects (job_id, candidate_id, outcome_status) VALUES (?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range prospects {
		if _, err := stmt.ExecContext(ctx, p.JobID, p.CandidateID, p.OutcomeStatus); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListProspects returns all prospect rows.
func (s *SQLiteStorage) ListProspects(ctx context.Context) ([]*models.Prospect, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, candidate_id, outcome_status FROM prospects ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prospects []*models.Prospect
	for rows.Next() {
		var p models.Prospect
		if err := rows.Scan(&p.JobID, &p.CandidateID, &p.OutcomeStatus); err != nil {
			return nil, err
		}
		prospects = append(prospects, &p)
	}
	return prospects, rows.Err()
}

// CountJobs returns the total number of job postings.
func (s *SQLiteStorage) CountJobs(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count)
	return count, err
}

// CountApplicants returns the total number of applicants.
func (s *SQLiteStorage) CountApplicants(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applicants`).Scan(&count)
	return count, err
}

// CountProspects returns the total number of prospect rows.
func (s *SQLiteStorage) CountProspects(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prospects`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Package storage defines the persistence interface for the ingested source tables.
package storage

import (
	"context"

	"github.com/hyperjump/omiai/internal/models"
)

// Storage defines persistence for job postings, applicants, and prospects.
// These are the three tables the matching core consumes; derived data
// (skill flags, similarity matrices) is never persisted.
type Storage interface {
	// Job operations
	UpsertJob(ctx context.Context, job *models.JobPosting) error
	GetJob(ctx context.Context, id string) (*models.JobPosting, error)
	ListJobs(ctx context.Context, offset, limit int) ([]*models.JobPosting, error)

	// Applicant operations
	UpsertApplicant(ctx context.Context, a *models.Applicant) error
	GetApplicant(ctx context.Context, candidateID string) (*models.Applicant, error)
	ListApplicants(ctx context.Context, offset, limit int) ([]*models.Applicant, error)
	SetResumeText(ctx context.Context, candidateID, resumeText string) error

	// Prospect operations (training data only)
	BatchCreateProspects(ctx context.Context, prospects []*models.Prospect) error
	ListProspects(ctx context.Context) ([]*models.Prospect, error)

	// Stats
	CountJobs(ctx context.Context) (int64, error)
	CountApplicants(ctx context.Context) (int64, error)
	CountProspects(ctx context.Context) (int64, error)

	Close() error
}

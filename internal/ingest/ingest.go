// Package ingest imports source tables and resume files into storage.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/omiai/internal/extract"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/storage"
	"github.com/hyperjump/omiai/internal/textnorm"
)

// Importer loads job, applicant, and prospect tables from JSON or XLSX files
// and attaches resume documents to applicants. Derived fields (cleaned title,
// cleaned description) are computed at import time so the matching core only
// ever sees prepared rows.
type Importer struct {
	storage   storage.Storage
	extractor *extract.Extractor
	logger    *zap.Logger // optional; when set, logs per-file row counts
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets a logger for import progress.
func WithLogger(l *zap.Logger) ImporterOption {
	return func(im *Importer) { im.logger = l }
}

// NewImporter creates an importer over the given storage.
func NewImporter(store storage.Storage, opts ...ImporterOption) *Importer {
	im := &Importer{storage: store, extractor: extract.NewExtractor()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// jobRow is the wire shape of one job record in a source file.
type jobRow struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Objective            string `json:"objective"`
	MainActivities       string `json:"main_activities"`
	RequiredCompetencies string `json:"required_competencies"`
}

// applicantRow is the wire shape of one applicant record in a source file.
type applicantRow struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	ResumeText  string `json:"resume_text"`
}

// prospectRow is the wire shape of one prospect record in a source file.
type prospectRow struct {
	JobID         string `json:"job_id"`
	CandidateID   string `json:"candidate_id"`
	OutcomeStatus string `json:"outcome_status"`
}

// prepareJob builds a JobPosting from raw fields: the displayed title drops
// the trailing requisition suffix and the free-text fields are concatenated
// and normalized into the matching description. Missing fields degrade to
// empty text, never an error.
func prepareJob(row jobRow) *models.JobPosting {
	raw := strings.TrimSpace(row.Objective + " " + row.MainActivities + " " + row.RequiredCompetencies)
	return &models.JobPosting{
		ID:                   row.ID,
		Title:                row.Title,
		TitleClean:           textnorm.CleanTitle(row.Title),
		Objective:            row.Objective,
		MainActivities:       row.MainActivities,
		RequiredCompetencies: row.RequiredCompetencies,
		DescriptionClean:     textnorm.Normalize(raw),
	}
}

// ImportJobs loads a jobs table (.json array or .xlsx sheet) into storage.
// Returns the number of imported rows.
func (im *Importer) ImportJobs(ctx context.Context, path string) (int, error) {
	var rows []jobRow
	if err := im.readTable(path, "jobs", &rows, jobHeader); err != nil {
		return 0, err
	}
	count := 0
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		if err := im.storage.UpsertJob(ctx, prepareJob(row)); err != nil {
			return count, fmt.Errorf("upsert job %s: %w", row.ID, err)
		}
		count++
	}
	if im.logger != nil {
		im.logger.Info("jobs imported", zap.String("path", path), zap.Int("rows", count))
	}
	return count, nil
}

// ImportApplicants loads an applicants table into storage.
func (im *Importer) ImportApplicants(ctx context.Context, path string) (int, error) {
	var rows []applicantRow
	if err := im.readTable(path, "applicants", &rows, applicantHeader); err != nil {
		return 0, err
	}
	count := 0
	for _, row := range rows {
		if row.CandidateID == "" {
			continue
		}
		a := &models.Applicant{
			CandidateID: row.CandidateID,
			Name:        row.Name,
			ResumeText:  row.ResumeText,
		}
		if err := im.storage.UpsertApplicant(ctx, a); err != nil {
			return count, fmt.Errorf("upsert applicant %s: %w", row.CandidateID, err)
		}
		count++
	}
	if im.logger != nil {
		im.logger.Info("applicants imported", zap.String("path", path), zap.Int("rows", count))
	}
	return count, nil
}

// ImportProspects loads a prospects table into storage.
func (im *Importer) ImportProspects(ctx context.Context, path string) (int, error) {
	var rows []prospectRow
	if err := im.readTable(path, "prospects", &rows, prospectHeader); err != nil {
		return 0, err
	}
	prospects := make([]*models.Prospect, 0, len(rows))
	for _, row := range rows {
		if row.JobID == "" || row.CandidateID == "" {
			continue
		}
		prospects = append(prospects, &models.Prospect{
			JobID:         row.JobID,
			CandidateID:   row.CandidateID,
			OutcomeStatus: row.OutcomeStatus,
		})
	}
	if err := im.storage.BatchCreateProspects(ctx, prospects); err != nil {
		return 0, fmt.Errorf("batch create prospects: %w", err)
	}
	if im.logger != nil {
		im.logger.Info("prospects imported", zap.String("path", path), zap.Int("rows", len(prospects)))
	}
	return len(prospects), nil
}

// AttachResume extracts text from a resume document (pdf, docx, rtf, odt,
// xlsx, or plain text) and stores it as the applicant's resume text.
func (im *Importer) AttachResume(ctx context.Context, candidateID, path string) error {
	text, err := im.extractor.Extract(path)
	if err != nil {
		return fmt.Errorf("extract resume: %w", err)
	}
	if err := im.storage.SetResumeText(ctx, candidateID, text); err != nil {
		return err
	}
	if im.logger != nil {
		im.logger.Info("resume attached",
			zap.String("candidate_id", candidateID),
			zap.String("path", path),
			zap.Int("chars", len(text)),
		)
	}
	return nil
}

// readTable dispatches on the file extension: .json arrays or .xlsx sheets.
func (im *Importer) readTable(path, table string, out any, header []string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s table: %w", table, err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s table: %w", table, err)
		}
		return nil
	case ".xlsx":
		return readXLSX(path, table, out, header)
	default:
		return fmt.Errorf("unsupported %s table format %q (want .json or .xlsx)", table, filepath.Ext(path))
	}
}

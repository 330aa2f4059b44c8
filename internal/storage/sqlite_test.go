package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/omiai/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_Jobs(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	job := &models.JobPosting{
		ID:               "j1",
		Title:            "Backend Engineer - 1234",
		TitleClean:       "Backend Engineer",
		Objective:        "build APIs",
		DescriptionClean: "build apis python docker",
	}
	if err := store.UpsertJob(ctx, job); err != nil {
		t.Fatal(err)
	}
	if job.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetJob(ctx, "j1")
	if err != nil {
		t.Fatal(err)
	}
	if got.TitleClean != "Backend Engineer" {
		t.Errorf("got %+v", got)
	}

	job.Objective = "build better APIs"
	if err := store.UpsertJob(ctx, job); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetJob(ctx, "j1")
	if got.Objective != "build better APIs" {
		t.Errorf("upsert did not update: %q", got.Objective)
	}

	list, err := store.ListJobs(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 job, got %d", len(list))
	}

	if _, err := store.GetJob(ctx, "missing"); err == nil {
		t.Error("missing job should error")
	}
}

func TestSQLiteStorage_Applicants(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for _, a := range []*models.Applicant{
		{CandidateID: "c1", Name: "Ana", ResumeText: "python docker"},
		{CandidateID: "c2", Name: "Bruno", ResumeText: "excel sql"},
	} {
		if err := store.UpsertApplicant(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.GetApplicant(ctx, "c2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Bruno" {
		t.Errorf("got %+v", got)
	}

	if err := store.SetResumeText(ctx, "c2", "excel sql powerbi"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetApplicant(ctx, "c2")
	if got.ResumeText != "excel sql powerbi" {
		t.Errorf("resume not updated: %q", got.ResumeText)
	}
	if err := store.SetResumeText(ctx, "nope", "x"); err == nil {
		t.Error("unknown candidate should error")
	}

	list, err := store.ListApplicants(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].CandidateID != "c1" {
		t.Errorf("list should preserve insertion order, got %+v", list)
	}
}

func TestSQLiteStorage_Prospects(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	prospects := []*models.Prospect{
		{JobID: "j1", CandidateID: "c1", OutcomeStatus: "Contratado"},
		{JobID: "j1", CandidateID: "c2", OutcomeStatus: "Rejected"},
	}
	if err := store.BatchCreateProspects(ctx, prospects); err != nil {
		t.Fatal(err)
	}

	list, err := store.ListProspects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 prospects, got %d", len(list))
	}

	// Re-import replaces, not duplicates.
	if err := store.BatchCreateProspects(ctx, prospects[:1]); err != nil {
		t.Fatal(err)
	}
	n, err := store.CountProspects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestSQLiteStorage_Counts(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	if err := store.UpsertJob(ctx, &models.JobPosting{ID: "j1", Title: "T", TitleClean: "T"}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertApplicant(ctx, &models.Applicant{CandidateID: "c1", Name: "N"}); err != nil {
		t.Fatal(err)
	}
	jobs, _ := store.CountJobs(ctx)
	apps, _ := store.CountApplicants(ctx)
	if jobs != 1 || apps != 1 {
		t.Errorf("counts = %d jobs, %d applicants", jobs, apps)
	}
}

package trainer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/omiai/internal/artifact"
	"github.com/hyperjump/omiai/internal/classifier"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/storage"
	"github.com/hyperjump/omiai/internal/vectorize"
)

func newFixtures(t *testing.T) (*storage.SQLiteStorage, *artifact.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	artifacts, err := artifact.NewStore(filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatal(err)
	}
	return store, artifacts
}

func seed(t *testing.T, store *storage.SQLiteStorage, applicants []*models.Applicant, prospects []*models.Prospect) {
	t.Helper()
	ctx := context.Background()
	for _, a := range applicants {
		if err := store.UpsertApplicant(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	if len(prospects) > 0 {
		if err := store.BatchCreateProspects(ctx, prospects); err != nil {
			t.Fatal(err)
		}
	}
}

func TestTrainer_Label(t *testing.T) {
	store, artifacts := newFixtures(t)
	tr := New(store, artifacts, []string{"hired", "contratado"})

	tests := []struct {
		status string
		want   int
	}{
		{"hired", 1},
		{"Hired", 1},
		{"CONTRATADO", 1},
		{"Contratado!", 1},
		{"rejected", 0},
		{"not hired", 0},     // exact membership, not substring
		{"hired-ish", 0},     // "hired ish" after normalization
		{"", 0},
	}
	for _, tt := range tests {
		if got := tr.Label(tt.status); got != tt.want {
			t.Errorf("Label(%q) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestTrainer_BuildDataset_dropsUnmatched(t *testing.T) {
	store, artifacts := newFixtures(t)
	tr := New(store, artifacts, []string{"hired"})

	applicants := []*models.Applicant{
		{CandidateID: "c1", ResumeText: "python"},
	}
	prospects := []*models.Prospect{
		{JobID: "j1", CandidateID: "c1", OutcomeStatus: "hired"},
		{JobID: "j1", CandidateID: "ghost", OutcomeStatus: "hired"},
		{JobID: "j2", CandidateID: "ghost2", OutcomeStatus: "rejected"},
	}
	samples, dropped := tr.BuildDataset(prospects, applicants)
	if len(samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(samples))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if samples[0].Label != 1 || samples[0].ResumeText != "python" {
		t.Errorf("sample = %+v", samples[0])
	}
}

func TestTrainer_Run(t *testing.T) {
	store, artifacts := newFixtures(t)
	seed(t, store,
		[]*models.Applicant{
			{CandidateID: "c1", Name: "Ana", ResumeText: "python docker aws"},
			{CandidateID: "c2", Name: "Bruno", ResumeText: "excel sql reporting"},
			{CandidateID: "c3", Name: "Carla", ResumeText: "python kubernetes"},
			{CandidateID: "c4", Name: "Duda", ResumeText: "sql powerbi"},
		},
		[]*models.Prospect{
			{JobID: "j1", CandidateID: "c1", OutcomeStatus: "Contratado"},
			{JobID: "j1", CandidateID: "c2", OutcomeStatus: "Rejected"},
			{JobID: "j2", CandidateID: "c3", OutcomeStatus: "hired"},
			{JobID: "j2", CandidateID: "c4", OutcomeStatus: "In process"},
			{JobID: "j2", CandidateID: "missing", OutcomeStatus: "hired"},
		},
	)

	tr := New(store, artifacts, []string{"hired", "contratado"})
	report, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Samples != 4 || report.Positives != 2 || report.DroppedProspects != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Fingerprint == "" || report.VocabularySize == 0 {
		t.Errorf("report missing fingerprint or vocabulary: %+v", report)
	}

	pair, err := artifacts.Load()
	if err != nil {
		t.Fatal(err)
	}
	if pair.Space.Fingerprint() != report.Fingerprint {
		t.Errorf("persisted fingerprint %q != report %q", pair.Space.Fingerprint(), report.Fingerprint)
	}
	prob, err := pair.Model.Predict(pair.Space.Transform("python docker"))
	if err != nil {
		t.Fatal(err)
	}
	if prob < 0 || prob > 1 {
		t.Errorf("probability out of range: %v", prob)
	}
}

func TestTrainer_Run_singleClassFailsAndKeepsPriorArtifacts(t *testing.T) {
	store, artifacts := newFixtures(t)
	seed(t, store,
		[]*models.Applicant{
			{CandidateID: "c1", ResumeText: "python docker"},
			{CandidateID: "c2", ResumeText: "excel sql"},
		},
		[]*models.Prospect{
			{JobID: "j1", CandidateID: "c1", OutcomeStatus: "hired"},
			{JobID: "j1", CandidateID: "c2", OutcomeStatus: "hired"},
		},
	)
	tr := New(store, artifacts, []string{"hired"})
	if _, err := tr.Run(context.Background()); !errors.Is(err, classifier.ErrInsufficientData) {
		t.Errorf("error = %v, want ErrInsufficientData", err)
	}
	if _, err := artifacts.Load(); !errors.Is(err, artifact.ErrNoArtifacts) {
		t.Errorf("failed run must not leave artifacts, got %v", err)
	}
}

func TestTrainer_Run_emptyCorpusFails(t *testing.T) {
	store, artifacts := newFixtures(t)
	seed(t, store,
		[]*models.Applicant{
			{CandidateID: "c1", ResumeText: ""},
			{CandidateID: "c2", ResumeText: "  "},
		},
		[]*models.Prospect{
			{JobID: "j1", CandidateID: "c1", OutcomeStatus: "hired"},
			{JobID: "j1", CandidateID: "c2", OutcomeStatus: "rejected"},
		},
	)
	tr := New(store, artifacts, []string{"hired"})
	if _, err := tr.Run(context.Background()); !errors.Is(err, vectorize.ErrEmptyCorpus) {
		t.Errorf("error = %v, want ErrEmptyCorpus", err)
	}
}

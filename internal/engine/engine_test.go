package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/omiai/internal/artifact"
	"github.com/hyperjump/omiai/internal/config"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/recommend"
	"github.com/hyperjump/omiai/internal/skills"
	"github.com/hyperjump/omiai/internal/storage"
	"github.com/hyperjump/omiai/internal/trainer"
)

func newTestEngine(t *testing.T) (*Engine, storage.Storage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "omiai.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	artifacts, err := artifact.NewStore(filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	tagger := skills.NewTagger([]string{"python", "aws", "docker"})
	tr := trainer.New(store, artifacts, []string{"hired", "contratado"})
	cfg := &config.RecommendConfig{DefaultTopN: 10, MaxTopN: 100, MaxApplicants: 150}
	return New(store, recommend.New(tagger), tr, artifacts, cfg, zap.NewNop()), store
}

func seed(t *testing.T, store storage.Storage) {
	t.Helper()
	ctx := context.Background()
	jobs := []*models.JobPosting{
		{ID: "j1", Title: "Backend Engineer - 4521", TitleClean: "Backend Engineer",
			RequiredCompetencies: "Python, Docker", DescriptionClean: "backend python docker services"},
		{ID: "j2", Title: "Data Analyst", TitleClean: "Data Analyst",
			DescriptionClean: "reports dashboards excel"},
	}
	for _, j := range jobs {
		if err := store.UpsertJob(ctx, j); err != nil {
			t.Fatalf("UpsertJob: %v", err)
		}
	}
	applicants := []*models.Applicant{
		{CandidateID: "c1", Name: "Ana", ResumeText: "python docker backend services"},
		{CandidateID: "c2", Name: "Bruno", ResumeText: "excel sql reports"},
		{CandidateID: "c3", Name: "Carla", ResumeText: "python aws kubernetes"},
	}
	for _, a := range applicants {
		if err := store.UpsertApplicant(ctx, a); err != nil {
			t.Fatalf("UpsertApplicant: %v", err)
		}
	}
	prospects := []*models.Prospect{
		{JobID: "j1", CandidateID: "c1", OutcomeStatus: "Hired"},
		{JobID: "j1", CandidateID: "c2", OutcomeStatus: "Rejected"},
		{JobID: "j2", CandidateID: "c3", OutcomeStatus: "In review"},
	}
	if err := store.BatchCreateProspects(ctx, prospects); err != nil {
		t.Fatalf("BatchCreateProspects: %v", err)
	}
}

func TestRecommendWithoutArtifacts(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store)

	_, err := e.Recommend(context.Background(), &models.RecommendQuery{JobID: "j1"})
	if !errors.Is(err, artifact.ErrNoArtifacts) {
		t.Fatalf("err = %v, want ErrNoArtifacts", err)
	}
}

func TestTrainThenRecommend(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store)
	ctx := context.Background()

	report, err := e.Train(ctx)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if report.Samples != 3 || report.Positives != 1 {
		t.Errorf("report = %+v", report)
	}
	if !e.Loaded() {
		t.Fatal("engine not loaded after training")
	}
	if e.Fingerprint() != report.Fingerprint {
		t.Errorf("fingerprint = %q, want %q", e.Fingerprint(), report.Fingerprint)
	}

	resp, err := e.Recommend(ctx, &models.RecommendQuery{JobID: "j1", Skills: []string{"python"}, TopN: 2})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.PoolSize != 2 {
		t.Errorf("pool size = %d, want 2", resp.PoolSize)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].CandidateID != "c1" {
		t.Errorf("top candidate = %s, want c1", resp.Results[0].CandidateID)
	}
	for _, rec := range resp.Results {
		if rec.HireProbability == nil {
			t.Errorf("candidate %s missing hire probability", rec.CandidateID)
		}
	}
}

func TestReloadWithoutArtifactsClearsPair(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store)

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if e.Loaded() {
		t.Error("engine loaded with no artifacts in store")
	}
}

func TestReloadPicksUpExternalTraining(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store)
	ctx := context.Background()

	// Train through a separate store handle over the same directory, the way
	// a CLI train command runs beside a server.
	other, err := artifact.NewStore(e.artifacts.Dir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	tr := trainer.New(store, other, []string{"hired"})
	report, err := tr.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if e.Fingerprint() != report.Fingerprint {
		t.Errorf("fingerprint = %q, want %q", e.Fingerprint(), report.Fingerprint)
	}
}

func TestGetJobWithDefaultSkills(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store)

	detail, err := e.GetJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if detail.Job.TitleClean != "Backend Engineer" {
		t.Errorf("TitleClean = %q", detail.Job.TitleClean)
	}
	want := []string{"python", "docker"}
	if len(detail.DefaultSkills) != len(want) {
		t.Fatalf("DefaultSkills = %v, want %v", detail.DefaultSkills, want)
	}
	for i := range want {
		if detail.DefaultSkills[i] != want[i] {
			t.Errorf("DefaultSkills[%d] = %q, want %q", i, detail.DefaultSkills[i], want[i])
		}
	}
}

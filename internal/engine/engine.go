// Package engine wires storage, training, and the matching core behind one
// orchestrator that owns the loaded artifact pair.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/omiai/internal/artifact"
	"github.com/hyperjump/omiai/internal/config"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/recommend"
	"github.com/hyperjump/omiai/internal/storage"
	"github.com/hyperjump/omiai/internal/trainer"
)

const listAll = int(^uint(0) >> 1)

// Engine serves recommendations against the currently loaded artifact pair
// and refreshes that pair after training runs. Readers take a snapshot of the
// pair under a read lock, so recommendations in flight always see a matched
// vector space and classifier even while a reload swaps them.
type Engine struct {
	storage     storage.Storage
	recommender *recommend.Recommender
	trainer     *trainer.Trainer
	artifacts   *artifact.Store
	cfg         *config.RecommendConfig
	logger      *zap.Logger

	mu   sync.RWMutex
	pair *artifact.Pair
}

// New creates an engine with the given dependencies. Call Reload to pick up
// artifacts persisted by an earlier run.
func New(
	store storage.Storage,
	rec *recommend.Recommender,
	tr *trainer.Trainer,
	artifacts *artifact.Store,
	cfg *config.RecommendConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		storage:     store,
		recommender: rec,
		trainer:     tr,
		artifacts:   artifacts,
		cfg:         cfg,
		logger:      logger,
	}
}

// Reload loads the current artifact pair from the store and swaps it in. A
// store with no completed training run clears the loaded pair; any other load
// failure keeps the previous pair serving.
func (e *Engine) Reload() error {
	pair, err := e.artifacts.Load()
	if err != nil {
		if errors.Is(err, artifact.ErrNoArtifacts) {
			e.mu.Lock()
			e.pair = nil
			e.mu.Unlock()
			e.logger.Warn("no trained artifacts to load")
			return nil
		}
		e.logger.Error("artifact reload failed", zap.Error(err))
		return err
	}
	e.mu.Lock()
	e.pair = pair
	e.mu.Unlock()
	e.logger.Info("artifacts loaded",
		zap.String("fingerprint", pair.Space.Fingerprint()),
		zap.Int("vocabulary_size", pair.Space.Dimensions()),
	)
	return nil
}

// snapshot returns the loaded pair, or nil when none is loaded.
func (e *Engine) snapshot() *artifact.Pair {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pair
}

// Loaded reports whether an artifact pair is currently serving.
func (e *Engine) Loaded() bool {
	return e.snapshot() != nil
}

// Fingerprint returns the loaded pair's fingerprint, or empty when none.
func (e *Engine) Fingerprint() string {
	pair := e.snapshot()
	if pair == nil {
		return ""
	}
	return pair.Space.Fingerprint()
}

// Train runs a full training pass over the stored prospects and swaps the
// resulting artifact pair in.
func (e *Engine) Train(ctx context.Context) (*models.TrainReport, error) {
	report, err := e.trainer.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.Reload(); err != nil {
		return nil, fmt.Errorf("load trained artifacts: %w", err)
	}
	return report, nil
}

// Recommend ranks stored applicants for the queried job using the loaded
// artifact pair. Returns artifact.ErrNoArtifacts when nothing has been
// trained yet.
func (e *Engine) Recommend(ctx context.Context, q *models.RecommendQuery) (*models.RecommendResponse, error) {
	pair := e.snapshot()
	if pair == nil {
		return nil, artifact.ErrNoArtifacts
	}
	if q.MaxApplicants == 0 && e.cfg != nil {
		q.MaxApplicants = e.cfg.MaxApplicants
	}

	jobs, err := e.storage.ListJobs(ctx, 0, listAll)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	applicants, err := e.storage.ListApplicants(ctx, 0, listAll)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return e.recommender.Recommend(jobs, applicants, pair.Space, pair.Model, q)
}

// JobDetail is a stored posting plus the skill filters derived from its
// required competencies.
type JobDetail struct {
	Job           *models.JobPosting `json:"job"`
	DefaultSkills []string           `json:"default_skills"`
}

// GetJob returns one posting with its default skill filters.
func (e *Engine) GetJob(ctx context.Context, jobID string) (*JobDetail, error) {
	job, err := e.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &JobDetail{
		Job:           job,
		DefaultSkills: e.recommender.DefaultSkills(job),
	}, nil
}

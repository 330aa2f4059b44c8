// Package trainer builds the training set and fits the vector space / classifier pair.
package trainer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/omiai/internal/artifact"
	"github.com/hyperjump/omiai/internal/classifier"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/storage"
	"github.com/hyperjump/omiai/internal/textnorm"
	"github.com/hyperjump/omiai/internal/vectorize"
)

// Trainer runs one training cycle: join prospects with applicants, derive
// labels, fit a TF-IDF space on the joined resumes, train the classifier, and
// persist both as a fingerprinted pair.
type Trainer struct {
	storage       storage.Storage
	store         *artifact.Store
	hiredStatuses map[string]bool
	opts          *classifier.Options
	logger        *zap.Logger // optional; when set, logs join loss and run summary
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithLogger sets a logger for run summaries and join-loss counts.
func WithLogger(l *zap.Logger) TrainerOption {
	return func(t *Trainer) { t.logger = l }
}

// WithClassifierOptions overrides the classifier training parameters.
func WithClassifierOptions(opts *classifier.Options) TrainerOption {
	return func(t *Trainer) { t.opts = opts }
}

// New creates a trainer. hiredStatuses is the exact set of outcome statuses
// counted as a positive label; entries are normalized so config values like
// "Contratado" match.
func New(store storage.Storage, artifacts *artifact.Store, hiredStatuses []string, opts ...TrainerOption) *Trainer {
	hired := make(map[string]bool, len(hiredStatuses))
	for _, s := range hiredStatuses {
		if cleaned := textnorm.Normalize(s); cleaned != "" {
			hired[cleaned] = true
		}
	}
	t := &Trainer{storage: store, store: artifacts, hiredStatuses: hired}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sample is one joined prospect-applicant training row.
type Sample struct {
	ResumeText string
	Label      int
}

// BuildDataset joins prospects to applicants by candidate ID and derives the
// 0/1 label from the outcome status. Prospects whose candidate is not in the
// applicant set are dropped silently; the dropped count is returned for
// observability, never as an error.
func (t *Trainer) BuildDataset(prospects []*models.Prospect, applicants []*models.Applicant) (samples []*Sample, dropped int) {
	byID := make(map[string]*models.Applicant, len(applicants))
	for _, a := range applicants {
		byID[a.CandidateID] = a
	}
	for _, p := range prospects {
		a, ok := byID[p.CandidateID]
		if !ok {
			dropped++
			continue
		}
		samples = append(samples, &Sample{
			ResumeText: a.ResumeText,
			Label:      t.Label(p.OutcomeStatus),
		})
	}
	return samples, dropped
}

// Label maps an outcome status to 1 when its normalized text is a member of
// the hired-synonym set, else 0. Exact membership, not substring match.
func (t *Trainer) Label(outcomeStatus string) int {
	if t.hiredStatuses[textnorm.Normalize(outcomeStatus)] {
		return 1
	}
	return 0
}

// Run executes a full training cycle and persists the resulting pair.
// Fails with vectorize.ErrEmptyCorpus when no joined resume has word content
// and with classifier.ErrInsufficientData when the labels have a single
// class. A failed run leaves previously persisted artifacts untouched.
func (t *Trainer) Run(ctx context.Context) (*models.TrainReport, error) {
	prospects, err := t.storage.ListProspects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	applicants, err := t.storage.ListApplicants(ctx, 0, int(^uint(0)>>1))
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}

	samples, dropped := t.BuildDataset(prospects, applicants)
	if t.logger != nil && dropped > 0 {
		t.logger.Info("prospects dropped during join", zap.Int("dropped", dropped))
	}

	corpus := make([]string, len(samples))
	labels := make([]int, len(samples))
	positives := 0
	for i, s := range samples {
		corpus[i] = s.ResumeText
		labels[i] = s.Label
		positives += s.Label
	}

	space, err := vectorize.Fit(corpus)
	if err != nil {
		return nil, err
	}
	features := make([][]float64, len(corpus))
	for i, text := range corpus {
		features[i] = space.Transform(text)
	}
	model, err := classifier.Train(features, labels, t.opts)
	if err != nil {
		return nil, err
	}

	fingerprint := uuid.New().String()
	if err := space.SetFingerprint(fingerprint); err != nil {
		return nil, err
	}
	if err := model.SetFingerprint(fingerprint); err != nil {
		return nil, err
	}
	if err := t.store.Save(&artifact.Pair{Space: space, Model: model}); err != nil {
		return nil, fmt.Errorf("persist artifacts: %w", err)
	}

	report := &models.TrainReport{
		Fingerprint:      fingerprint,
		Samples:          len(samples),
		Positives:        positives,
		DroppedProspects: dropped,
		VocabularySize:   space.Dimensions(),
	}
	if t.logger != nil {
		t.logger.Info("training run complete",
			zap.String("fingerprint", report.Fingerprint),
			zap.Int("samples", report.Samples),
			zap.Int("positives", report.Positives),
			zap.Int("dropped_prospects", report.DroppedProspects),
			zap.Int("vocabulary_size", report.VocabularySize),
		)
	}
	return report, nil
}

// Package recommend ranks applicants for a selected job posting.
package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/omiai/internal/classifier"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/similarity"
	"github.com/hyperjump/omiai/internal/skills"
	"github.com/hyperjump/omiai/internal/textnorm"
	"github.com/hyperjump/omiai/internal/vectorize"
)

// ErrUnknownJob is returned when the selected job identifier is not in the
// current job set.
var ErrUnknownJob = errors.New("unknown job")

// ErrInvalidFilter is returned when a requested skill filter is outside the
// configured vocabulary.
var ErrInvalidFilter = errors.New("skill filter outside vocabulary")

// Recommender composes the matching pipeline: skill tagging, vectorization,
// similarity scoring, filtering, and ranking. Tables and fitted artifacts are
// passed in per call; the recommender holds only the vocabulary tagger.
type Recommender struct {
	tagger *skills.Tagger
}

// New creates a recommender over the given skill tagger.
func New(tagger *skills.Tagger) *Recommender {
	return &Recommender{tagger: tagger}
}

// Recommend returns the top-N applicants for the selected job, ordered by
// text-similarity score descending with original applicant order breaking
// ties. An empty filter set passes every applicant; an empty result after
// filtering is not an error. When model is non-nil its hire probability is
// reported per candidate but never blended into the ranking score.
func (r *Recommender) Recommend(
	jobs []*models.JobPosting,
	applicants []*models.Applicant,
	space *vectorize.VectorSpace,
	model *classifier.Model,
	q *models.RecommendQuery,
) (*models.RecommendResponse, error) {
	start := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var job *models.JobPosting
	for _, j := range jobs {
		if j.ID == q.JobID {
			job = j
			break
		}
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, q.JobID)
	}

	filters := make([]string, 0, len(q.Skills))
	for _, s := range q.Skills {
		cleaned := textnorm.Normalize(s)
		if !r.tagger.Contains(cleaned) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
		}
		filters = append(filters, cleaned)
	}

	pool := applicants
	if q.MaxApplicants > 0 && len(pool) > q.MaxApplicants {
		pool = pool[:q.MaxApplicants]
	}
	r.tagger.TagApplicants(pool)

	jobVec := space.Transform(job.DescriptionClean)

	type scored struct {
		applicant *models.Applicant
		vec       []float64
		score     float64
	}
	kept := make([]*scored, 0, len(pool))
	for _, a := range pool {
		if !hasAllSkills(a, filters) {
			continue
		}
		vec := space.Transform(a.ResumeText)
		kept = append(kept, &scored{
			applicant: a,
			vec:       vec,
			score:     similarity.Cosine(jobVec, vec),
		})
	}

	// Stable sort keeps original applicant order for equal scores, so output
	// is deterministic.
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	poolSize := len(kept)
	if len(kept) > q.TopN {
		kept = kept[:q.TopN]
	}

	results := make([]*models.Recommendation, 0, len(kept))
	for i, s := range kept {
		rec := &models.Recommendation{
			CandidateID: s.applicant.CandidateID,
			Name:        s.applicant.Name,
			Score:       s.score,
			Rank:        i + 1,
		}
		if model != nil {
			if prob, err := model.Predict(s.vec); err == nil {
				rec.HireProbability = &prob
			}
		}
		results = append(results, rec)
	}

	return &models.RecommendResponse{
		JobID:      job.ID,
		TitleClean: job.TitleClean,
		Results:    results,
		PoolSize:   poolSize,
		QueryTime:  time.Since(start).Milliseconds(),
	}, nil
}

func hasAllSkills(a *models.Applicant, filters []string) bool {
	for _, skill := range filters {
		if !a.SkillFlags[skill] {
			return false
		}
	}
	return true
}

// DefaultSkills returns the vocabulary skills mentioned in the job's
// required-competencies field, split on commas and semicolons. The selection
// surface uses these to pre-seed its filter controls.
func (r *Recommender) DefaultSkills(job *models.JobPosting) []string {
	var defaults []string
	for _, part := range strings.FieldsFunc(job.RequiredCompetencies, func(c rune) bool {
		return c == ',' || c == ';'
	}) {
		cleaned := textnorm.Normalize(part)
		if cleaned == "" {
			continue
		}
		if r.tagger.Contains(cleaned) {
			defaults = append(defaults, cleaned)
		}
	}
	return defaults
}

package models

import "fmt"

// RecommendQuery is a recommendation request for one selected job.
type RecommendQuery struct {
	JobID string `json:"job_id"`
	// Skills are required skill names; an applicant must carry every one.
	// Empty means no filtering.
	Skills []string `json:"skills,omitempty"`
	TopN   int      `json:"top_n,omitempty"`
	// MaxApplicants caps the applicant pool before scoring (presentation mode).
	// 0 means no cap.
	MaxApplicants int `json:"max_applicants,omitempty"`
}

// Validate ensures the query has valid fields and sets defaults.
// Returns an error when the job id is missing or top_n is negative.
func (q *RecommendQuery) Validate() error {
	if q.JobID == "" {
		return fmt.Errorf("job_id cannot be empty")
	}
	if q.TopN < 0 {
		return fmt.Errorf("top_n must be positive")
	}
	if q.TopN == 0 {
		q.TopN = 10
	}
	if q.TopN > 100 {
		q.TopN = 100
	}
	if q.MaxApplicants < 0 {
		q.MaxApplicants = 0
	}
	return nil
}

// Recommendation is a single ranked candidate for a job.
type Recommendation struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	// HireProbability is the trained classifier's estimate, reported alongside
	// the score but never blended into it. Nil when no model is loaded.
	HireProbability *float64 `json:"hire_probability,omitempty"`
	Rank            int      `json:"rank"`
}

// RecommendResponse is the response for a recommendation request.
type RecommendResponse struct {
	JobID      string            `json:"job_id"`
	TitleClean string            `json:"title_clean"`
	Results    []*Recommendation `json:"results"`
	// PoolSize is the applicant count after filtering, before top-N truncation.
	PoolSize  int   `json:"pool_size"`
	QueryTime int64 `json:"query_time_ms"`
}

// TrainReport summarizes one training run.
type TrainReport struct {
	Fingerprint      string `json:"fingerprint"`
	Samples          int    `json:"samples"`
	Positives        int    `json:"positives"`
	DroppedProspects int    `json:"dropped_prospects"`
	VocabularySize   int    `json:"vocabulary_size"`
}

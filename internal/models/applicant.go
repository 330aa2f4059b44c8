package models

import "time"

// Applicant is a candidate with free-text resume and derived skill flags.
// SkillFlags has one entry per vocabulary skill, computed deterministically
// from the normalized resume text; it is never persisted.
type Applicant struct {
	CandidateID string          `json:"candidate_id" db:"candidate_id"`
	Name        string          `json:"name" db:"name"`
	ResumeText  string          `json:"resume_text" db:"resume_text"`
	SkillFlags  map[string]bool `json:"skill_flags,omitempty" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Prospect links a job to a candidate with a historical outcome status.
// Used only to build training sets, never for serving-time scoring.
type Prospect struct {
	JobID         string `json:"job_id" db:"job_id"`
	CandidateID   string `json:"candidate_id" db:"candidate_id"`
	OutcomeStatus string `json:"outcome_status" db:"outcome_status"`
}

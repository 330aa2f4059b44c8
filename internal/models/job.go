// Package models defines core data structures for jobs, applicants, prospects, and recommendations.
package models

import "time"

// JobPosting is a job opening with the free-text fields used for matching.
// Title keeps the raw source value; TitleClean has the trailing " - <digits>"
// suffix stripped and is what the selection surface displays. Two rows may
// share a TitleClean; they stay distinct rows here.
type JobPosting struct {
	ID                   string    `json:"id" db:"id"`
	Title                string    `json:"title" db:"title"`
	TitleClean           string    `json:"title_clean" db:"title_clean"`
	Objective            string    `json:"objective" db:"objective"`
	MainActivities       string    `json:"main_activities" db:"main_activities"`
	RequiredCompetencies string    `json:"required_competencies" db:"required_competencies"`
	DescriptionClean     string    `json:"description_clean" db:"description_clean"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

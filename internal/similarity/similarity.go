// Package similarity computes cosine similarity and the job-by-applicant matrix.
package similarity

import (
	"math"

	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/vectorize"
)

// Cosine returns the cosine similarity of two equal-length vectors.
// A zero-norm vector (a document with no recognized vocabulary terms) has
// similarity 0 with everything; never NaN and never a division error.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Matrix is a dense job-by-applicant similarity table. Rows follow the job
// slice order, columns the applicant slice order, exactly as given to Compute.
// It is recomputed per serving session and never persisted.
type Matrix struct {
	scores [][]float64
}

// Compute transforms every job description and applicant resume with the same
// fitted space and fills the full matrix. Documents that transform to the zero
// vector score 0 against everything; no cell is left missing.
func Compute(jobs []*models.JobPosting, applicants []*models.Applicant, space *vectorize.VectorSpace) *Matrix {
	applicantVecs := make([][]float64, len(applicants))
	for j, a := range applicants {
		applicantVecs[j] = space.Transform(a.ResumeText)
	}
	scores := make([][]float64, len(jobs))
	for i, job := range jobs {
		jobVec := space.Transform(job.DescriptionClean)
		row := make([]float64, len(applicants))
		for j := range applicants {
			row[j] = Cosine(jobVec, applicantVecs[j])
		}
		scores[i] = row
	}
	return &Matrix{scores: scores}
}

// Score returns the similarity for the given job row and applicant column.
func (m *Matrix) Score(jobRow, applicantCol int) float64 {
	return m.scores[jobRow][applicantCol]
}

// JobRow returns the full applicant score row for one job.
func (m *Matrix) JobRow(jobRow int) []float64 {
	return m.scores[jobRow]
}

// Jobs returns the number of job rows.
func (m *Matrix) Jobs() int {
	return len(m.scores)
}

// Applicants returns the number of applicant columns.
func (m *Matrix) Applicants() int {
	if len(m.scores) == 0 {
		return 0
	}
	return len(m.scores[0])
}

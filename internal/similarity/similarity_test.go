package similarity

import (
	"math"
	"testing"

	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/vectorize"
)

func TestCosine(t *testing.T) {
	if got := Cosine([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %v, want 1", got)
	}
	if got := Cosine([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: got %v, want 0", got)
	}
}

func TestCosine_zeroVectorIsZeroNotNaN(t *testing.T) {
	cases := [][2][]float64{
		{{0, 0}, {1, 2}},
		{{1, 2}, {0, 0}},
		{{0, 0}, {0, 0}},
		{nil, nil},
		{{1}, {1, 2}},
	}
	for _, c := range cases {
		got := Cosine(c[0], c[1])
		if got != 0 || math.IsNaN(got) {
			t.Errorf("Cosine(%v, %v) = %v, want 0", c[0], c[1], got)
		}
	}
}

func TestCompute_denseAndBounded(t *testing.T) {
	jobs := []*models.JobPosting{
		{ID: "j1", DescriptionClean: "python docker backend"},
		{ID: "j2", DescriptionClean: "excel sql reporting"},
	}
	applicants := []*models.Applicant{
		{CandidateID: "a1", ResumeText: "python docker"},
		{CandidateID: "a2", ResumeText: "excel sql"},
		{CandidateID: "a3", ResumeText: "underwater basket weaving"},
	}
	space, err := vectorize.Fit([]string{
		jobs[0].DescriptionClean, jobs[1].DescriptionClean,
		applicants[0].ResumeText, applicants[1].ResumeText, applicants[2].ResumeText,
	})
	if err != nil {
		t.Fatal(err)
	}

	m := Compute(jobs, applicants, space)
	if m.Jobs() != 2 || m.Applicants() != 3 {
		t.Fatalf("matrix shape %dx%d, want 2x3", m.Jobs(), m.Applicants())
	}
	for i := 0; i < m.Jobs(); i++ {
		for j := 0; j < m.Applicants(); j++ {
			s := m.Score(i, j)
			if math.IsNaN(s) || s < 0 || s > 1+1e-9 {
				t.Errorf("score[%d][%d] = %v out of range", i, j, s)
			}
		}
	}
	if m.Score(0, 0) <= m.Score(0, 1) {
		t.Error("python resume should beat excel resume for the python job")
	}
	// a3 shares no vocabulary terms relevant to j1's description weighting
	// beyond the fitted corpus, but must still have a defined score.
	if got := m.Score(1, 0); math.IsNaN(got) {
		t.Error("cell must never be NaN")
	}
}

func TestCompute_emptyDescriptionScoresZero(t *testing.T) {
	jobs := []*models.JobPosting{{ID: "j1", DescriptionClean: ""}}
	applicants := []*models.Applicant{{CandidateID: "a1", ResumeText: "python"}}
	space, err := vectorize.Fit([]string{"python docker"})
	if err != nil {
		t.Fatal(err)
	}
	m := Compute(jobs, applicants, space)
	if got := m.Score(0, 0); got != 0 {
		t.Errorf("empty description score = %v, want 0", got)
	}
}

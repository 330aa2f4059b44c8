// Package skills derives boolean skill-presence flags from resume text.
package skills

import (
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/textnorm"
)

// Tagger flags the presence of a fixed skill vocabulary in resume text.
// The vocabulary comes from configuration; matching is whole-word and
// case-insensitive over normalized text.
type Tagger struct {
	vocabulary []string
}

// NewTagger creates a tagger for the given vocabulary. Vocabulary entries are
// normalized once so config values like "Python" match normalized resumes.
func NewTagger(vocabulary []string) *Tagger {
	vocab := make([]string, 0, len(vocabulary))
	for _, s := range vocabulary {
		if cleaned := textnorm.Normalize(s); cleaned != "" {
			vocab = append(vocab, cleaned)
		}
	}
	return &Tagger{vocabulary: vocab}
}

// Vocabulary returns the normalized skill vocabulary in config order.
func (t *Tagger) Vocabulary() []string {
	return t.vocabulary
}

// Contains reports whether skill is in the vocabulary (after normalization).
func (t *Tagger) Contains(skill string) bool {
	cleaned := textnorm.Normalize(skill)
	for _, s := range t.vocabulary {
		if s == cleaned {
			return true
		}
	}
	return false
}

// Tag returns one flag per vocabulary skill for the given resume text.
// A flag is true iff the skill appears as a whole word in the normalized
// resume. An empty vocabulary yields an empty map; a resume with no matches
// yields all-false flags. Deterministic and side-effect free.
func (t *Tagger) Tag(resumeText string) map[string]bool {
	flags := make(map[string]bool, len(t.vocabulary))
	words := make(map[string]bool)
	for _, w := range textnorm.Tokenize(resumeText) {
		words[w] = true
	}
	for _, skill := range t.vocabulary {
		flags[skill] = words[skill]
	}
	return flags
}

// TagApplicants fills SkillFlags on every applicant in place and returns the slice.
func (t *Tagger) TagApplicants(applicants []*models.Applicant) []*models.Applicant {
	for _, a := range applicants {
		a.SkillFlags = t.Tag(a.ResumeText)
	}
	return applicants
}

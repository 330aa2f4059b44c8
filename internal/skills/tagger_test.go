package skills

import (
	"testing"

	"github.com/hyperjump/omiai/internal/models"
)

var testVocabulary = []string{"python", "aws", "docker", "kubernetes", "terraform"}

func TestTagger_Tag(t *testing.T) {
	tagger := NewTagger(testVocabulary)

	flags := tagger.Tag("Senior engineer: Python, Docker and AWS.")
	wantTrue := map[string]bool{"python": true, "aws": true, "docker": true}
	for _, skill := range testVocabulary {
		if flags[skill] != wantTrue[skill] {
			t.Errorf("flag %q = %v, want %v", skill, flags[skill], wantTrue[skill])
		}
	}
}

func TestTagger_Tag_wholeWordOnly(t *testing.T) {
	tagger := NewTagger([]string{"aws"})
	if tagger.Tag("awesome sawsbuck")["aws"] {
		t.Error("substring must not count as a whole-word match")
	}
	if !tagger.Tag("deployed on aws")["aws"] {
		t.Error("whole word should match")
	}
}

func TestTagger_Tag_flagCountMatchesVocabularyHits(t *testing.T) {
	tagger := NewTagger(testVocabulary)
	flags := tagger.Tag("python kubernetes terraform python")
	set := 0
	for _, on := range flags {
		if on {
			set++
		}
	}
	if set != 3 {
		t.Errorf("set flags = %d, want 3", set)
	}
	if len(flags) != len(testVocabulary) {
		t.Errorf("flag count = %d, want %d", len(flags), len(testVocabulary))
	}
}

func TestTagger_Tag_emptyCases(t *testing.T) {
	empty := NewTagger(nil)
	if got := empty.Tag("python everywhere"); len(got) != 0 {
		t.Errorf("empty vocabulary should yield no flags, got %v", got)
	}

	tagger := NewTagger(testVocabulary)
	for skill, on := range tagger.Tag("fluent in excel and sql") {
		if on {
			t.Errorf("flag %q should be false for non-matching resume", skill)
		}
	}
}

func TestTagger_TagApplicants(t *testing.T) {
	tagger := NewTagger(testVocabulary)
	applicants := []*models.Applicant{
		{CandidateID: "1", ResumeText: "python docker"},
		{CandidateID: "2", ResumeText: "excel sql"},
	}
	tagger.TagApplicants(applicants)
	if !applicants[0].SkillFlags["python"] || !applicants[0].SkillFlags["docker"] {
		t.Error("applicant 1 should have python and docker flags")
	}
	if applicants[1].SkillFlags["python"] {
		t.Error("applicant 2 should not have python flag")
	}
}

func TestTagger_Contains(t *testing.T) {
	tagger := NewTagger(testVocabulary)
	if !tagger.Contains("Python") {
		t.Error("Contains should normalize its argument")
	}
	if tagger.Contains("cobol") {
		t.Error("cobol is not in the vocabulary")
	}
}

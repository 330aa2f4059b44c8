// Package vectorize provides a TF-IDF vector space fitted on a text corpus.
package vectorize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/omiai/internal/textnorm"
	"github.com/hyperjump/omiai/pkg/utils"
)

// ErrEmptyCorpus is returned by Fit when the corpus has no usable documents.
var ErrEmptyCorpus = errors.New("empty corpus: no non-empty documents to fit")

// VectorSpace is an immutable fitted term-weighting model. It maps text to
// fixed-length vectors in a learned TF-IDF space. A similarity computation is
// only meaningful between vectors transformed by the same fitted space; the
// Fingerprint identifies the training run that produced it.
type VectorSpace struct {
	vocabulary  map[string]int
	idf         []float64
	fingerprint string
}

// Fit builds a vector space from the given documents. Tokenization follows
// textnorm rules, vocabulary order is sorted for determinism, and IDF uses
// log(N/(df+1))+1 smoothing. Returns ErrEmptyCorpus when no document contains
// any word content.
func Fit(corpus []string) (*VectorSpace, error) {
	docFreq := make(map[string]int)
	usable := 0
	for _, doc := range corpus {
		tokens := textnorm.Tokenize(doc)
		if len(tokens) == 0 {
			continue
		}
		usable++
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				docFreq[tok]++
				seen[tok] = true
			}
		}
	}
	if usable == 0 {
		return nil, ErrEmptyCorpus
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	space := &VectorSpace{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(usable)
	for i, term := range terms {
		space.vocabulary[term] = i
		space.idf[i] = math.Log(n/(float64(docFreq[term])+1)) + 1
	}
	return space, nil
}

// Transform projects text into the space's coordinate system and returns an
// L2-normalized TF-IDF vector of length Dimensions. Terms outside the
// vocabulary contribute zero; text with no recognized terms yields the zero
// vector. Never errors and never mutates the space.
func (s *VectorSpace) Transform(text string) []float64 {
	vec := make([]float64, len(s.idf))
	tokens := textnorm.Tokenize(text)
	if len(tokens) == 0 {
		return vec
	}
	counts := make(map[int]int)
	for _, tok := range tokens {
		if col, ok := s.vocabulary[tok]; ok {
			counts[col]++
		}
	}
	total := float64(len(tokens))
	for col, count := range counts {
		vec[col] = (float64(count) / total) * s.idf[col]
	}
	utils.NormalizeL2(vec)
	return vec
}

// Dimensions returns the vector length of the space.
func (s *VectorSpace) Dimensions() int {
	return len(s.idf)
}

// Fingerprint returns the training-run fingerprint, or "" when unset.
func (s *VectorSpace) Fingerprint() string {
	return s.fingerprint
}

// SetFingerprint stamps the space with the training run that produced it.
// A fingerprint can only be set once.
func (s *VectorSpace) SetFingerprint(fp string) error {
	if s.fingerprint != "" {
		return fmt.Errorf("fingerprint already set to %s", s.fingerprint)
	}
	s.fingerprint = fp
	return nil
}

// Terms returns the vocabulary in column order.
func (s *VectorSpace) Terms() []string {
	terms := make([]string, len(s.idf))
	for term, col := range s.vocabulary {
		terms[col] = term
	}
	return terms
}

// IDF returns the inverse-document-frequency weight for the given column.
func (s *VectorSpace) IDF(col int) float64 {
	return s.idf[col]
}

// Restore rebuilds a fitted space from its column-ordered terms, IDF weights,
// and fingerprint, as read back from a persisted artifact.
func Restore(terms []string, idf []float64, fingerprint string) (*VectorSpace, error) {
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("terms/idf length mismatch: %d vs %d", len(terms), len(idf))
	}
	space := &VectorSpace{
		vocabulary:  make(map[string]int, len(terms)),
		idf:         make([]float64, len(idf)),
		fingerprint: fingerprint,
	}
	copy(space.idf, idf)
	for i, term := range terms {
		if _, dup := space.vocabulary[term]; dup {
			return nil, fmt.Errorf("duplicate term %q in persisted vocabulary", term)
		}
		space.vocabulary[term] = i
	}
	return space, nil
}

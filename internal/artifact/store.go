// Package artifact persists the fitted vector space and trained classifier as a pair.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/omiai/internal/classifier"
	"github.com/hyperjump/omiai/internal/vectorize"
)

// ErrArtifactMismatch is returned when the persisted vector space and
// classifier were not produced by the same training run, or when their
// dimensionalities disagree.
var ErrArtifactMismatch = errors.New("artifact mismatch: vector space and classifier are not a matched pair")

// ErrNoArtifacts is returned by Load when no training run has been persisted yet.
var ErrNoArtifacts = errors.New("no trained artifacts available")

const (
	currentFile = "CURRENT"
	spaceFile   = "space.bin"
	modelFile   = "model.bin"
	runPrefix   = "run-"
)

// Pair is a fitted vector space and the classifier trained in it. Both carry
// the fingerprint of the training run that produced them.
type Pair struct {
	Space *vectorize.VectorSpace
	Model *classifier.Model
}

// Validate checks the pairing invariant: equal non-empty fingerprints and
// matching dimensionality. Returns ErrArtifactMismatch on violation.
func (p *Pair) Validate() error {
	if p.Space == nil || p.Model == nil {
		return fmt.Errorf("%w: missing space or model", ErrArtifactMismatch)
	}
	if p.Space.Fingerprint() == "" || p.Space.Fingerprint() != p.Model.Fingerprint() {
		return fmt.Errorf("%w: fingerprints %q vs %q", ErrArtifactMismatch, p.Space.Fingerprint(), p.Model.Fingerprint())
	}
	if p.Space.Dimensions() != p.Model.Dimensions() {
		return fmt.Errorf("%w: space has %d dimensions, classifier expects %d",
			ErrArtifactMismatch, p.Space.Dimensions(), p.Model.Dimensions())
	}
	return nil
}

// Store reads and writes artifact pairs under a directory. Each training run
// gets its own run-<fingerprint> subdirectory; the CURRENT file names the
// active run and is replaced atomically, so a concurrent reader sees either
// the fully-old or fully-new pair, never a mix.
type Store struct {
	dir string
}

// NewStore creates a store over dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// PointerPath returns the path of the CURRENT pointer file. Watching this file
// is how the server learns that a new training run has landed.
func (s *Store) PointerPath() string {
	return filepath.Join(s.dir, currentFile)
}

// Save persists the pair and switches CURRENT to it. The run directory is
// fully written before the pointer moves; a failed save leaves the previous
// run in place.
func (s *Store) Save(pair *Pair) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	fp := pair.Space.Fingerprint()
	runDir := filepath.Join(s.dir, runPrefix+fp)
	tmpDir := runDir + ".tmp"
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := writeFileVia(filepath.Join(tmpDir, spaceFile), func(f *os.File) error {
		return encodeSpace(f, pair.Space)
	}); err != nil {
		return fmt.Errorf("write space: %w", err)
	}
	if err := writeFileVia(filepath.Join(tmpDir, modelFile), func(f *os.File) error {
		return encodeModel(f, pair.Model)
	}); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("clear stale run dir: %w", err)
	}
	if err := os.Rename(tmpDir, runDir); err != nil {
		return fmt.Errorf("publish run dir: %w", err)
	}

	// Pointer swap via temp file + rename keeps the switch atomic.
	tmpPtr := filepath.Join(s.dir, currentFile+".tmp")
	if err := os.WriteFile(tmpPtr, []byte(fp+"\n"), 0644); err != nil {
		return fmt.Errorf("write pointer: %w", err)
	}
	if err := os.Rename(tmpPtr, s.PointerPath()); err != nil {
		return fmt.Errorf("publish pointer: %w", err)
	}
	return nil
}

// CurrentFingerprint returns the fingerprint of the active run, or
// ErrNoArtifacts when none has been persisted.
func (s *Store) CurrentFingerprint() (string, error) {
	data, err := os.ReadFile(s.PointerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoArtifacts
		}
		return "", fmt.Errorf("read pointer: %w", err)
	}
	fp := strings.TrimSpace(string(data))
	if fp == "" {
		return "", ErrNoArtifacts
	}
	return fp, nil
}

// Load reads the active pair and enforces the pairing invariant: both blobs
// must carry the CURRENT fingerprint and the classifier's dimensionality must
// match the space's. Violations return ErrArtifactMismatch.
func (s *Store) Load() (*Pair, error) {
	fp, err := s.CurrentFingerprint()
	if err != nil {
		return nil, err
	}
	runDir := filepath.Join(s.dir, runPrefix+fp)

	space, err := readFileVia(filepath.Join(runDir, spaceFile), decodeSpace)
	if err != nil {
		return nil, fmt.Errorf("load space: %w", err)
	}
	model, err := readFileVia(filepath.Join(runDir, modelFile), decodeModel)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if space.Fingerprint() != fp {
		return nil, fmt.Errorf("%w: space fingerprint %q, current run %q", ErrArtifactMismatch, space.Fingerprint(), fp)
	}
	pair := &Pair{Space: space, Model: model}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return pair, nil
}

func writeFileVia(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readFileVia[T any](path string, decode func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return decode(f)
}

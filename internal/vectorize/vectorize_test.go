package vectorize

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestFit_emptyCorpus(t *testing.T) {
	for _, corpus := range [][]string{nil, {}, {"", "   ", "...!"}} {
		if _, err := Fit(corpus); !errors.Is(err, ErrEmptyCorpus) {
			t.Errorf("Fit(%v) error = %v, want ErrEmptyCorpus", corpus, err)
		}
	}
}

func TestFit_deterministic(t *testing.T) {
	corpus := []string{"python docker", "python aws", "excel sql"}
	a, err := Fit(corpus)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Fit(corpus)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Terms(), b.Terms()) {
		t.Errorf("vocabulary order differs: %v vs %v", a.Terms(), b.Terms())
	}
	if !reflect.DeepEqual(a.Transform("python aws"), b.Transform("python aws")) {
		t.Error("transforms differ between identical fits")
	}
}

func TestTransform_dimensionsAndUnknownTerms(t *testing.T) {
	space, err := Fit([]string{"python docker", "excel sql", "python aws kubernetes"})
	if err != nil {
		t.Fatal(err)
	}
	vec := space.Transform("python haskell")
	if len(vec) != space.Dimensions() {
		t.Fatalf("vector length %d != dimensions %d", len(vec), space.Dimensions())
	}
	nonZero := 0
	for _, v := range vec {
		if v != 0 {
			nonZero++
		}
	}
	// "haskell" is outside the vocabulary and must contribute nothing.
	if nonZero != 1 {
		t.Errorf("non-zero components = %d, want 1 (python only)", nonZero)
	}
}

func TestTransform_zeroVectorForNoOverlap(t *testing.T) {
	space, err := Fit([]string{"python docker aws"})
	if err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"cobol fortran", "", "?!"} {
		for i, v := range space.Transform(text) {
			if v != 0 {
				t.Errorf("Transform(%q)[%d] = %v, want 0", text, i, v)
			}
		}
	}
}

func TestTransform_unitNorm(t *testing.T) {
	space, err := Fit([]string{"python docker", "aws docker terraform"})
	if err != nil {
		t.Fatal(err)
	}
	vec := space.Transform("python docker docker")
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("norm^2 = %v, want 1", sum)
	}
}

func TestSetFingerprint_once(t *testing.T) {
	space, err := Fit([]string{"python"})
	if err != nil {
		t.Fatal(err)
	}
	if err := space.SetFingerprint("run-1"); err != nil {
		t.Fatal(err)
	}
	if err := space.SetFingerprint("run-2"); err == nil {
		t.Error("second SetFingerprint should fail")
	}
	if space.Fingerprint() != "run-1" {
		t.Errorf("fingerprint = %q", space.Fingerprint())
	}
}

func TestRestore_roundTrip(t *testing.T) {
	space, err := Fit([]string{"python docker", "aws python"})
	if err != nil {
		t.Fatal(err)
	}
	terms := space.Terms()
	idf := make([]float64, space.Dimensions())
	for i := range idf {
		idf[i] = space.IDF(i)
	}
	restored, err := Restore(terms, idf, "run-9")
	if err != nil {
		t.Fatal(err)
	}
	if restored.Fingerprint() != "run-9" {
		t.Errorf("fingerprint = %q", restored.Fingerprint())
	}
	if !reflect.DeepEqual(space.Transform("python aws"), restored.Transform("python aws")) {
		t.Error("restored space transforms differently")
	}
}

func TestRestore_mismatch(t *testing.T) {
	if _, err := Restore([]string{"a", "b"}, []float64{1}, ""); err == nil {
		t.Error("length mismatch should fail")
	}
	if _, err := Restore([]string{"a", "a"}, []float64{1, 1}, ""); err == nil {
		t.Error("duplicate term should fail")
	}
}

package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float64{3, 4}
	NormalizeL2(v)
	if math.Abs(v[0]-0.6) > 1e-9 || math.Abs(v[1]-0.8) > 1e-9 {
		t.Errorf("got %v", v)
	}
}

func TestNormalizeL2_zeroVector(t *testing.T) {
	v := []float64{0, 0, 0}
	NormalizeL2(v)
	for i, x := range v {
		if x != 0 {
			t.Errorf("index %d changed to %v", i, x)
		}
	}
}

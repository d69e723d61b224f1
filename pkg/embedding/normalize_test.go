package embedding

import (
	"math"
	"testing"
)

func TestNormalizeUnitLength(t *testing.T) {
	vec := []float32{3, 4}

	normalized, ok := Normalize(vec)
	if !ok {
		t.Fatal("expected normalization to apply")
	}

	var magnitude float64
	for _, v := range normalized {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if math.Abs(magnitude-1) > 1e-6 {
		t.Errorf("magnitude = %v, want 1", magnitude)
	}

	// Input left untouched.
	if vec[0] != 3 || vec[1] != 4 {
		t.Errorf("input mutated: %v", vec)
	}
}

func TestNormalizeNearZeroVector(t *testing.T) {
	vec := []float32{0, 0, 0}

	got, ok := Normalize(vec)
	if ok {
		t.Error("expected normalization to be skipped for a zero vector")
	}
	for i, v := range got {
		if v != vec[i] {
			t.Errorf("vector changed at %d: %v", i, got)
		}
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
		want bool
	}{
		{name: "finite", vec: []float32{0.1, -0.5, 2}, want: true},
		{name: "nan", vec: []float32{0.1, float32(math.NaN())}, want: false},
		{name: "inf", vec: []float32{float32(math.Inf(1))}, want: false},
		{name: "empty", vec: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.vec); got != tt.want {
				t.Errorf("IsFinite = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDot(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	if got := Dot(a, b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
}

package pipeline

import (
	"slices"
	"testing"
)

func TestCapturePoints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		duration float64
		interval float64
		want     []float64
	}{
		{"short video", 20, 5, []float64{1, 10, 17}},
		{"short boundary", 30, 5, []float64{1, 15, 27}},
		{"very short", 2, 5, []float64{1, 1, 1}},
		{"long video stride from duration", 100, 5, []float64{10, 20, 30, 40, 50, 60, 70, 80, 90}},
		{"long video stride from interval", 40, 5, []float64{5, 10, 15, 20, 25, 30, 35}},
		{"interval dominates", 120, 30, []float64{30, 60, 90}},
		{"zero duration", 0, 5, nil},
	}

	for _, tc := range cases {
		got := CapturePoints(tc.duration, tc.interval)
		if !slices.Equal(got, tc.want) {
			t.Errorf("%s: CapturePoints(%v, %v) = %v, want %v",
				tc.name, tc.duration, tc.interval, got, tc.want)
		}
	}
}

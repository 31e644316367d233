package pipeline

import "math"

// maxSamples bounds how many frames a long video yields.
const maxSamples = 10

// CapturePoints returns the screenshot offsets in seconds for a video of the
// given duration. Short videos get a fixed three-point profile (start,
// middle, near-end); longer videos are sampled on a stride of at least
// interval seconds, never closer than one second to the end.
func CapturePoints(duration, interval float64) []float64 {
	if duration <= 0 {
		return nil
	}

	if duration <= 30 {
		return []float64{
			1,
			math.Floor(duration / 2),
			math.Max(1, duration-3),
		}
	}

	step := math.Max(interval, duration/10)
	points := make([]float64, 0, maxSamples)
	for i := 1; i <= maxSamples; i++ {
		offset := float64(i) * step
		if offset >= duration-1 {
			break
		}
		points = append(points, offset)
	}
	return points
}

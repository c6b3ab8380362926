package emotions

import "math"

// Softmax converts raw network scores into probabilities that sum to 1.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	// Subtract the max for numerical stability
	maxV := float64(logits[0])
	for _, v := range logits[1:] {
		maxV = math.Max(maxV, float64(v))
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// NormalizePercent rescales scores reported as percentages (0-100) to 0-1.
// Scores already in 0-1 are returned unchanged.
func NormalizePercent(s Scores) Scores {
	percent := false
	for _, v := range s {
		if v > 1 {
			percent = true
			break
		}
	}

	out := make(Scores, len(s))
	for k, v := range s {
		if percent {
			v /= 100
		}
		out[k] = clamp(v, 0, 1)
	}
	return out
}

// clamp restricts a value to a range.
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

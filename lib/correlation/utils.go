// Package correlation has the pairwise distance and correlation helpers
// used by the brute-force reference joins in lib/stomp. They are
// O(window length) per call and not meant for the hot path of the diagonal
// STOMP kernel, which amortizes this work across a whole diagonal instead.
package correlation

import (
	"fmt"
	"math"
)

// EuclideanDistance returns the Euclidean distance between two equal-length
// windows.
func EuclideanDistance(x []float64, y []float64) (float64, error) {
	sq, err := SquaredEuclideanDistance(x, y)
	if err != nil {
		return 0.0, err
	}
	return math.Sqrt(sq), nil
}

// SquaredEuclideanDistance returns the squared Euclidean distance between
// two equal-length windows, i.e. what the raw (non z-normalized) matrix
// profile reduces over before the final square root.
func SquaredEuclideanDistance(x []float64, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0.0, fmt.Errorf("euclidean distance needs windows of the same length, got %d and %d", len(x), len(y))
	}
	sum := 0.0
	for i, xi := range x {
		diff := xi - y[i]
		sum += diff * diff
	}
	return sum, nil
}

// PearsonCorrelation returns the incremental-formula Pearson correlation
// coefficient between two equal-length windows.
func PearsonCorrelation(x []float64, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0.0, fmt.Errorf("correlation needs windows of the same length, got %d and %d", len(x), len(y))
	}
	var s1, s2, s3, s4, s5 float64
	for i, xi := range x {
		s1 += xi
		s2 += xi * xi
		s3 += y[i]
		s4 += y[i] * y[i]
		s5 += xi * y[i]
	}
	n := float64(len(x))

	denom := math.Sqrt((n*s2 - s1*s1) * (n*s4 - s3*s3))
	if denom == 0.0 {
		// Either window is constant, so the formula would divide by zero.
		// A degenerate window scores zero correlation against anything
		// (z-normalized distance sqrt(2m)), never NaN.
		return 0.0, nil
	}
	return (n*s5 - (s1 * s3)) / denom, nil
}

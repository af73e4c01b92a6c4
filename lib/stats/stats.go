// Package stats computes the per-window mean, standard deviation and
// squared sum that the STOMP kernel needs, in O(n) total via a single
// prefix-sum pass rather than O(n*m) of naive per-window summation.
package stats

import (
	"math"

	qmerrors "github.com/kpaschen/quickmp/lib/errors"
)

// degenerateTolerance bounds how small a window's variance can be before
// it is treated as exactly zero: a window is degenerate when its variance
// is at most degenerateTolerance*m. This is effectively an exact-zero test;
// a small positive residue left by prefix-sum cancellation is above it and
// the window is not flagged.
const degenerateTolerance = 1e-300

// MeanStd returns, for every length-m window of T, its mean mu[i] and the
// inverse of its standard deviation sigmaInv[i], plus a degenerate[i] flag
// for windows whose variance rounds to zero (constant windows). Windows
// flagged degenerate get sigmaInv[i] = 0 rather than +Inf, so a correlation
// computed against them comes out as zero rather than NaN.
func MeanStd(T []float64, m int) (mu []float64, sigmaInv []float64, degenerate []bool, err error) {
	n := len(T)
	if n < m {
		return nil, nil, nil, qmerrors.NewShapeMismatch("series length %d is less than window size %d", n, m)
	}
	if m < 3 {
		return nil, nil, nil, qmerrors.NewShapeMismatch("window size %d is below the minimum of 3", m)
	}

	l := n - m + 1

	// Prefix sums of T and T^2, one longer than T so that
	// prefixSum[i+m] - prefixSum[i] is the sum over T[i:i+m].
	prefixSum := make([]float64, n+1)
	prefixSumSq := make([]float64, n+1)
	for i, v := range T {
		prefixSum[i+1] = prefixSum[i] + v
		prefixSumSq[i+1] = prefixSumSq[i] + v*v
	}

	mu = make([]float64, l)
	sigmaInv = make([]float64, l)
	degenerate = make([]bool, l)

	invM := 1.0 / float64(m)
	for i := 0; i < l; i++ {
		sum := prefixSum[i+m] - prefixSum[i]
		sumSq := prefixSumSq[i+m] - prefixSumSq[i]

		mean := sum * invM
		variance := sumSq*invM - mean*mean
		if variance < 0 {
			// Catastrophic cancellation between the two prefix sums can
			// push this slightly negative; clamp before the square root.
			variance = 0
		}

		mu[i] = mean
		if variance <= degenerateTolerance*float64(m) {
			degenerate[i] = true
			sigmaInv[i] = 0
		} else {
			sigmaInv[i] = 1.0 / math.Sqrt(variance)
		}
	}

	return mu, sigmaInv, degenerate, nil
}

// SquaredSum returns, for every length-m window of T, S[i] = sum of T[i+k]^2
// for k in [0, m). It is the raw-Euclidean counterpart of MeanStd's second
// moment, used directly by the non-normalized STOMP variants.
func SquaredSum(T []float64, m int) ([]float64, error) {
	n := len(T)
	if n < m {
		return nil, qmerrors.NewShapeMismatch("series length %d is less than window size %d", n, m)
	}

	prefixSumSq := make([]float64, n+1)
	for i, v := range T {
		prefixSumSq[i+1] = prefixSumSq[i] + v*v
	}

	l := n - m + 1
	S := make([]float64, l)
	for i := 0; i < l; i++ {
		S[i] = prefixSumSq[i+m] - prefixSumSq[i]
	}
	return S, nil
}

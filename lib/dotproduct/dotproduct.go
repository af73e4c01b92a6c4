// Package dotproduct computes the sliding dot product QT[i] = sum_k
// Q[k]*T[i+k] for every offset i, the building block the STOMP kernel uses
// to seed its first row (and the ab-join's per-row j=0 entry). It offers a naive
// O(n*m) implementation and an O(n log n) one built on a real-input FFT.
package dotproduct

import (
	"gonum.org/v1/gonum/dsp/fourier"

	qmerrors "github.com/kpaschen/quickmp/lib/errors"
)

// SlidingDotProductNaive computes QT[i] = sum_{k=0}^{m-1} Q[k]*T[i+k] for i
// in [0, len(T)-m] by direct summation. len(Q) must equal m exactly.
func SlidingDotProductNaive(T []float64, Q []float64) ([]float64, error) {
	n := len(T)
	m := len(Q)
	if n < m {
		return nil, qmerrors.NewShapeMismatch("series length %d is less than query length %d", n, m)
	}

	l := n - m + 1
	QT := make([]float64, l)
	for j := 0; j < m; j++ {
		qj := Q[j]
		for i := 0; i < l; i++ {
			QT[i] += qj * T[i+j]
		}
	}
	return QT, nil
}

// SlidingDotProductFFT computes the same result as SlidingDotProductNaive
// using a single pair of real-input FFTs of length 2*len(T), following the
// standard zero-pad-and-reverse trick: T is zero-padded to 2n, Q is
// reversed and zero-padded to 2n, their spectra are multiplied, and the
// sliding dot product falls out of the inverse transform at offsets
// [m-1, n).
func SlidingDotProductFFT(T []float64, Q []float64) ([]float64, error) {
	n := len(T)
	m := len(Q)
	if n < m {
		return nil, qmerrors.NewShapeMismatch("series length %d is less than query length %d", n, m)
	}

	padded := 2 * n
	Ta := make([]float64, padded)
	copy(Ta, T)

	Qra := make([]float64, padded)
	for i := 0; i < m; i++ {
		Qra[i] = Q[m-i-1]
	}

	fft := fourier.NewFFT(padded)

	Taf := fft.Coefficients(nil, Ta)
	Qraf := fft.Coefficients(nil, Qra)

	for i := range Taf {
		Qraf[i] *= Taf[i]
	}

	conv := fft.Sequence(nil, Qraf)

	// Coefficients followed by Sequence scales the signal by the transform
	// length; gonum documents this explicitly, so divide it back out.
	l := n - m + 1
	QT := make([]float64, l)
	for i := m - 1; i < n; i++ {
		QT[i-m+1] = conv[i] / float64(padded)
	}
	return QT, nil
}

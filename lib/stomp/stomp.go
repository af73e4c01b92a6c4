// Package stomp implements the diagonal-update STOMP recurrence: given a
// window size m, it computes a matrix profile by tracking, for every
// subsequence, the best (max correlation or min distance) score seen so
// far against every other subsequence it is allowed to pair with. Each
// outer step computes one row of the implicit distance matrix, deriving
// every entry in O(1) from its diagonal predecessor in the previous row
// instead of recomputing it from scratch.
package stomp

import (
	"math"

	"github.com/kpaschen/quickmp/lib/correlation"
	qmerrors "github.com/kpaschen/quickmp/lib/errors"
	"github.com/kpaschen/quickmp/lib/dotproduct"
	"github.com/kpaschen/quickmp/lib/settings"
	"github.com/kpaschen/quickmp/lib/stats"
)

// SelfJoin computes the z-normalized matrix profile of T against itself:
// for every subsequence i, the maximum correlation (equivalently the
// minimum z-normalized Euclidean distance) against any subsequence at
// least ExclusionZone()+1 positions away. P[i] holds that distance.
func SelfJoin(T []float64, m int, s settings.QuickmpSettings) ([]float64, error) {
	n := len(T)
	if n < m {
		return nil, qmerrors.NewShapeMismatch("series length %d is less than window size %d", n, m)
	}
	l := n - m + 1
	exclZone := s.ComputeDerivedFields().ExclusionZone()

	mu, sigmaInv, _, err := stats.MeanStd(T, m)
	if err != nil {
		return nil, err
	}

	QT, err := dotproduct.SlidingDotProductNaive(T, T[:m])
	if err != nil {
		return nil, err
	}

	P := make([]float64, l)
	for j := 0; j < l; j++ {
		P[j] = (QT[j] - float64(m)*mu[0]*mu[j]) * sigmaInv[0] * sigmaInv[j]
	}

	excl := exclZone
	if excl+1 > l {
		excl = l - 1
	}
	for j := 0; j <= excl && j < l; j++ {
		P[j] = 0.0
	}
	for j := excl + 1; j < l; j++ {
		P[0] = math.Max(P[0], P[j])
	}

	QT2 := make([]float64, l)
	for i := 1; i < l; i++ {
		maxPi := P[i]

		for j := i + excl + 1; j < l; j++ {
			QT2[j] = QT[j-1] - T[j-1]*T[i-1] + T[j+m-1]*T[i+m-1]

			dist := (QT2[j] - float64(m)*mu[i]*mu[j]) * sigmaInv[i] * sigmaInv[j]

			if dist > P[j] {
				P[j] = dist
			}
			if dist > maxPi {
				maxPi = dist
			}
		}

		P[i] = maxPi
		QT, QT2 = QT2, QT
	}

	for i := 0; i < l; i++ {
		score := 2.0 * float64(m) * (1.0 - P[i]/float64(m))
		if score < 0 {
			score = 0
		}
		P[i] = math.Sqrt(score)
	}

	return P, nil
}

// ABJoin computes, for each subsequence of T1, its nearest neighbor
// (z-normalized Euclidean distance) among the subsequences of T2.
func ABJoin(T1 []float64, T2 []float64, m int) ([]float64, error) {
	n1 := len(T1)
	n2 := len(T2)
	if n1 < m {
		return nil, qmerrors.NewShapeMismatch("series T1 length %d is less than window size %d", n1, m)
	}
	if n2 < m {
		return nil, qmerrors.NewShapeMismatch("series T2 length %d is less than window size %d", n2, m)
	}
	l1 := n1 - m + 1
	l2 := n2 - m + 1

	mu1, sigmaInv1, _, err := stats.MeanStd(T1, m)
	if err != nil {
		return nil, err
	}
	mu2, sigmaInv2, _, err := stats.MeanStd(T2, m)
	if err != nil {
		return nil, err
	}

	QT, err := dotproduct.SlidingDotProductNaive(T1, T2[:m])
	if err != nil {
		return nil, err
	}

	P := make([]float64, l1)
	for j := 0; j < l1; j++ {
		P[j] = (QT[j] - float64(m)*mu1[j]*mu2[0]) * sigmaInv1[j] * sigmaInv2[0]
	}

	QT2 := make([]float64, l1)
	for i := 1; i < l2; i++ {
		leftQT, err := dotproduct.SlidingDotProductNaive(T1[:m], T2[i:i+m])
		if err != nil {
			return nil, err
		}
		QT2[0] = leftQT[0]
		leftDist := (leftQT[0] - float64(m)*mu1[0]*mu2[i]) * sigmaInv1[0] * sigmaInv2[i]
		if leftDist > P[0] {
			P[0] = leftDist
		}

		for j := 1; j < l1; j++ {
			QT2[j] = QT[j-1] - T1[j-1]*T2[i-1] + T1[j+m-1]*T2[i+m-1]

			dist := (QT2[j] - float64(m)*mu1[j]*mu2[i]) * sigmaInv1[j] * sigmaInv2[i]
			if dist > P[j] {
				P[j] = dist
			}
		}

		QT, QT2 = QT2, QT
	}

	for i := 0; i < l1; i++ {
		score := 2.0 * float64(m) * (1.0 - P[i]/float64(m))
		if score < 0 {
			score = 0
		}
		P[i] = math.Sqrt(score)
	}

	return P, nil
}

// SelfJoinRaw computes the non-normalized (raw Euclidean) matrix profile
// of T against itself: for every subsequence i, the minimum Euclidean
// distance against any subsequence at least ExclusionZone()+1 away.
func SelfJoinRaw(T []float64, m int, s settings.QuickmpSettings) ([]float64, error) {
	n := len(T)
	if n < m {
		return nil, qmerrors.NewShapeMismatch("series length %d is less than window size %d", n, m)
	}
	l := n - m + 1
	exclZone := s.ComputeDerivedFields().ExclusionZone()

	S, err := stats.SquaredSum(T, m)
	if err != nil {
		return nil, err
	}

	QT, err := dotproduct.SlidingDotProductNaive(T, T[:m])
	if err != nil {
		return nil, err
	}

	P := make([]float64, l)
	for j := 0; j < l; j++ {
		P[j] = S[0] + S[j] - 2.0*QT[j]
	}

	excl := exclZone
	if excl+1 > l {
		excl = l - 1
	}
	for j := 0; j <= excl && j < l; j++ {
		P[j] = math.Inf(1)
	}
	for j := excl + 1; j < l; j++ {
		P[0] = math.Min(P[0], P[j])
	}

	QT2 := make([]float64, l)
	for i := 1; i < l; i++ {
		minPi := P[i]

		for j := i + excl + 1; j < l; j++ {
			QT2[j] = QT[j-1] - T[j-1]*T[i-1] + T[j+m-1]*T[i+m-1]

			distSq := S[i] + S[j] - 2.0*QT2[j]
			if distSq < P[j] {
				P[j] = distSq
			}
			if distSq < minPi {
				minPi = distSq
			}
		}

		P[i] = minPi
		QT, QT2 = QT2, QT
	}

	for i := 0; i < l; i++ {
		P[i] = math.Sqrt(P[i])
	}

	return P, nil
}

// ABJoinRaw computes, for each subsequence of T1, its nearest neighbor
// (raw Euclidean distance) among the subsequences of T2.
func ABJoinRaw(T1 []float64, T2 []float64, m int) ([]float64, error) {
	n1 := len(T1)
	n2 := len(T2)
	if n1 < m {
		return nil, qmerrors.NewShapeMismatch("series T1 length %d is less than window size %d", n1, m)
	}
	if n2 < m {
		return nil, qmerrors.NewShapeMismatch("series T2 length %d is less than window size %d", n2, m)
	}
	l1 := n1 - m + 1
	l2 := n2 - m + 1

	S1, err := stats.SquaredSum(T1, m)
	if err != nil {
		return nil, err
	}
	S2, err := stats.SquaredSum(T2, m)
	if err != nil {
		return nil, err
	}

	QT, err := dotproduct.SlidingDotProductNaive(T1, T2[:m])
	if err != nil {
		return nil, err
	}

	P := make([]float64, l1)
	for j := 0; j < l1; j++ {
		P[j] = S1[j] + S2[0] - 2.0*QT[j]
	}

	QT2 := make([]float64, l1)
	for i := 1; i < l2; i++ {
		leftQT, err := dotproduct.SlidingDotProductNaive(T1[:m], T2[i:i+m])
		if err != nil {
			return nil, err
		}
		QT2[0] = leftQT[0]
		leftDistSq := S1[0] + S2[i] - 2.0*leftQT[0]
		if leftDistSq < P[0] {
			P[0] = leftDistSq
		}

		for j := 1; j < l1; j++ {
			QT2[j] = QT[j-1] - T1[j-1]*T2[i-1] + T1[j+m-1]*T2[i+m-1]

			distSq := S1[j] + S2[i] - 2.0*QT2[j]
			if distSq < P[j] {
				P[j] = distSq
			}
		}

		QT, QT2 = QT2, QT
	}

	for i := 0; i < l1; i++ {
		P[i] = math.Sqrt(P[i])
	}

	return P, nil
}

// SelfJoinBrute is the O(L^2) reference self-join: it materializes every
// allowed pair of windows and scores it with correlation.EuclideanDistance
// directly, rather than the diagonal recurrence. Used only to check
// SelfJoinRaw against an independently-derived answer in tests.
func SelfJoinBrute(T []float64, m int, s settings.QuickmpSettings) ([]float64, error) {
	n := len(T)
	if n < m {
		return nil, qmerrors.NewShapeMismatch("series length %d is less than window size %d", n, m)
	}
	l := n - m + 1
	exclZone := s.ComputeDerivedFields().ExclusionZone()

	P := make([]float64, l)
	for i := 0; i < l; i++ {
		best := math.Inf(1)
		for j := 0; j < l; j++ {
			if abs(i-j) <= exclZone {
				continue
			}
			d, err := correlation.EuclideanDistance(T[i:i+m], T[j:j+m])
			if err != nil {
				return nil, err
			}
			if d < best {
				best = d
			}
		}
		P[i] = best
	}
	return P, nil
}

// ABJoinBrute is the O(L1*L2) reference ab-join: for each window of T1, it
// scans every window of T2 directly with correlation.EuclideanDistance.
func ABJoinBrute(T1 []float64, T2 []float64, m int) ([]float64, error) {
	n1 := len(T1)
	n2 := len(T2)
	if n1 < m {
		return nil, qmerrors.NewShapeMismatch("series T1 length %d is less than window size %d", n1, m)
	}
	if n2 < m {
		return nil, qmerrors.NewShapeMismatch("series T2 length %d is less than window size %d", n2, m)
	}
	l1 := n1 - m + 1
	l2 := n2 - m + 1

	P := make([]float64, l1)
	for i := 0; i < l1; i++ {
		best := math.Inf(1)
		for j := 0; j < l2; j++ {
			d, err := correlation.EuclideanDistance(T1[i:i+m], T2[j:j+m])
			if err != nil {
				return nil, err
			}
			if d < best {
				best = d
			}
		}
		P[i] = best
	}
	return P, nil
}

// SelfJoinBruteNormalized is the O(L^2) reference z-normalized self-join:
// it materializes every allowed pair of windows and scores it with
// correlation.PearsonCorrelation converted to a z-normalized Euclidean
// distance, rather than the diagonal recurrence. Used only to check
// SelfJoin against an independently-derived answer in tests.
func SelfJoinBruteNormalized(T []float64, m int, s settings.QuickmpSettings) ([]float64, error) {
	n := len(T)
	if n < m {
		return nil, qmerrors.NewShapeMismatch("series length %d is less than window size %d", n, m)
	}
	l := n - m + 1
	exclZone := s.ComputeDerivedFields().ExclusionZone()

	P := make([]float64, l)
	for i := 0; i < l; i++ {
		best := math.Inf(1)
		for j := 0; j < l; j++ {
			if abs(i-j) <= exclZone {
				continue
			}
			rho, err := correlation.PearsonCorrelation(T[i:i+m], T[j:j+m])
			if err != nil {
				return nil, err
			}
			d := normalizedDistance(rho, m)
			if d < best {
				best = d
			}
		}
		P[i] = best
	}
	return P, nil
}

// ABJoinBruteNormalized is the O(L1*L2) reference z-normalized ab-join: for
// each window of T1, it scans every window of T2 directly with
// correlation.PearsonCorrelation converted to a z-normalized Euclidean
// distance.
func ABJoinBruteNormalized(T1 []float64, T2 []float64, m int) ([]float64, error) {
	n1 := len(T1)
	n2 := len(T2)
	if n1 < m {
		return nil, qmerrors.NewShapeMismatch("series T1 length %d is less than window size %d", n1, m)
	}
	if n2 < m {
		return nil, qmerrors.NewShapeMismatch("series T2 length %d is less than window size %d", n2, m)
	}
	l1 := n1 - m + 1
	l2 := n2 - m + 1

	P := make([]float64, l1)
	for i := 0; i < l1; i++ {
		best := math.Inf(1)
		for j := 0; j < l2; j++ {
			rho, err := correlation.PearsonCorrelation(T1[i:i+m], T2[j:j+m])
			if err != nil {
				return nil, err
			}
			d := normalizedDistance(rho, m)
			if d < best {
				best = d
			}
		}
		P[i] = best
	}
	return P, nil
}

// normalizedDistance converts a Pearson correlation coefficient to the
// equivalent z-normalized Euclidean distance over a window of length m.
func normalizedDistance(rho float64, m int) float64 {
	score := 2.0 * float64(m) * (1.0 - rho)
	if score < 0 {
		score = 0
	}
	return math.Sqrt(score)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

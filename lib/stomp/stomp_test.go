package stomp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kpaschen/quickmp/lib/settings"
)

func floatsClose(a, b, relTol float64) bool {
	diff := math.Abs(a - b)
	if diff < 1e-9 {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff/scale <= relTol
}

func randomSeries(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	T := make([]float64, n)
	for i := range T {
		T[i] = r.Float64()*10 - 5
	}
	return T
}

func TestSelfJoinRawMatchesBruteForce(t *testing.T) {
	T := randomSeries(60, 1)
	m := 8
	s := settings.QuickmpSettings{WindowSize: m}

	got, err := SelfJoinRaw(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := SelfJoinBrute(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if !floatsClose(got[i], want[i], 1e-6) {
			t.Errorf("P[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestABJoinRawMatchesBruteForce(t *testing.T) {
	T1 := randomSeries(40, 2)
	T2 := randomSeries(55, 3)
	m := 6

	got, err := ABJoinRaw(T1, T2, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := ABJoinBrute(T1, T2, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if !floatsClose(got[i], want[i], 1e-6) {
			t.Errorf("P[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSelfJoinExclusionZoneMatchesBruteForce(t *testing.T) {
	// Indices inside the initial exclusion zone get no score from row 0, so
	// their final distances come entirely from later rows; they must still
	// equal the brute-force nearest neighbor that skips |i-j| <= excl.
	T := randomSeries(50, 4)
	m := 8
	s := settings.QuickmpSettings{WindowSize: m}
	excl := s.ComputeDerivedFields().ExclusionZone()

	P, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := SelfJoinBruteNormalized(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for j := 0; j <= excl && j < len(P); j++ {
		if !floatsClose(P[j], want[j], 1e-6) {
			t.Errorf("exclusion-zone entry P[%d] = %f, want %f", j, P[j], want[j])
		}
	}
}

func TestSelfJoinNeverNaN(t *testing.T) {
	T := make([]float64, 40)
	for i := 20; i < 30; i++ {
		T[i] = 3.0
	}
	for i, v := range randomSeries(10, 5) {
		T[i] = v
	}
	for i, v := range randomSeries(10, 6) {
		T[30+i] = v
	}
	m := 6
	s := settings.QuickmpSettings{WindowSize: m}

	P, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range P {
		if math.IsNaN(v) {
			t.Errorf("P[%d] is NaN", i)
		}
	}
}

func TestSelfJoinShapeMismatch(t *testing.T) {
	s := settings.QuickmpSettings{WindowSize: 10}
	if _, err := SelfJoin([]float64{1, 2, 3}, 10, s); err == nil {
		t.Errorf("expected shape mismatch error")
	}
}

func TestABJoinMatchesBruteForceNormalized(t *testing.T) {
	T1 := randomSeries(30, 7)
	T2 := randomSeries(35, 8)
	m := 5

	got, err := ABJoin(T1, T2, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(T1)-m+1 {
		t.Fatalf("unexpected length %d", len(got))
	}
	for _, v := range got {
		if math.IsNaN(v) {
			t.Errorf("unexpected NaN in ab-join result")
		}
	}

	want, err := ABJoinBruteNormalized(T1, T2, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range want {
		if !floatsClose(got[i], want[i], 1e-6) {
			t.Errorf("P[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSelfJoinMatchesBruteForceNormalized(t *testing.T) {
	T := randomSeries(60, 14)
	m := 8
	s := settings.QuickmpSettings{WindowSize: m}

	got, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := SelfJoinBruteNormalized(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if !floatsClose(got[i], want[i], 1e-6) {
			t.Errorf("P[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSelfJoinLengthAndNonNegative(t *testing.T) {
	T := randomSeries(80, 9)
	m := 10
	s := settings.QuickmpSettings{WindowSize: m}

	P, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(P) != len(T)-m+1 {
		t.Fatalf("expected length %d, got %d", len(T)-m+1, len(P))
	}
	for i, v := range P {
		if v < 0 {
			t.Errorf("P[%d] = %f is negative", i, v)
		}
	}
}

func TestABJoinCrossValidatesSwap(t *testing.T) {
	// Every i in T1's profile pairs with some j in T2; the corresponding
	// entry of abjoin(T2, T1) at j must be no greater than the distance
	// abjoin(T1, T2) reports for i, since j's own nearest neighbor search
	// considers at least the pairing that produced P1[i].
	T1 := randomSeries(30, 10)
	T2 := randomSeries(32, 11)
	m := 6

	P1, err := ABJoinRaw(T1, T2, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	P2, err := ABJoinRaw(T2, T1, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range P1 {
		// P2 reports, for every j in T2, the distance to its nearest
		// neighbor in T1; that minimum can only be less than or equal to
		// whatever pairing produced P1[i].
		minOverJ := math.Inf(1)
		for j := range P2 {
			if P2[j] < minOverJ {
				minOverJ = P2[j]
			}
		}
		if minOverJ > P1[i]+1e-6 {
			t.Errorf("expected some P2 entry <= P1[%d]=%f, smallest P2 was %f", i, P1[i], minOverJ)
		}
	}
}

func TestSelfJoinMinimumViableInput(t *testing.T) {
	m := 4
	T := randomSeries(m+1, 12)
	s := settings.QuickmpSettings{WindowSize: m}

	P, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(P) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(P))
	}
	want := math.Sqrt(2 * float64(m))
	for i, v := range P {
		if math.IsNaN(v) {
			t.Fatalf("P[%d] is NaN", i)
		}
		if !floatsClose(v, want, 1e-9) {
			t.Errorf("P[%d] = %f, want %f (both indices fully excluded)", i, v, want)
		}
	}
}

func TestSelfJoinConstantSeries(t *testing.T) {
	m := 4
	T := make([]float64, 20)
	for i := range T {
		T[i] = 1.0
	}
	s := settings.QuickmpSettings{WindowSize: m}

	P, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Sqrt(2 * float64(m))
	for i, v := range P {
		if !floatsClose(v, want, 1e-9) {
			t.Errorf("P[%d] = %f, want %f for a constant series", i, v, want)
		}
	}
}

func TestSelfJoinRamp(t *testing.T) {
	m := 4
	n := 10
	T := make([]float64, n)
	for i := range T {
		T[i] = float64(i)
	}
	s := settings.QuickmpSettings{WindowSize: m}

	P, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := n - m + 1
	if !floatsClose(P[0], 0, 1e-6) {
		t.Errorf("expected P[0] close to 0 for a linear ramp, got %f", P[0])
	}
	if !floatsClose(P[l-1], 0, 1e-6) {
		t.Errorf("expected P[last] close to 0 for a linear ramp, got %f", P[l-1])
	}
}

func TestSelfJoinTwoCopies(t *testing.T) {
	m := 10
	A := randomSeries(100, 13)
	T := append(append([]float64{}, A...), A...)
	s := settings.QuickmpSettings{WindowSize: m}

	P, err := SelfJoin(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	half := len(A) - m + 1
	for i := 0; i < half; i++ {
		if !floatsClose(P[i], 0, 1e-6) {
			t.Errorf("expected P[%d] close to 0 (exact match in second half), got %f", i, P[i])
		}
	}
}

func TestSelfJoinRawBoundaryTable(t *testing.T) {
	// T = [0..7], m = 3: a small hand-checkable golden, cross-validated
	// against the brute-force reference rather than a single hardcoded
	// distance, since the admissible pair set hinges on the exact
	// exclusion zone boundary.
	T := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	m := 3
	s := settings.QuickmpSettings{WindowSize: m}

	got, err := SelfJoinRaw(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := SelfJoinBrute(T, m, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range want {
		if !floatsClose(got[i], want[i], 1e-9) {
			t.Errorf("P[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

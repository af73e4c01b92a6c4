// Package settings contains all the tunable parameters for the quickmp
// matrix profile engine.
package settings

const (
	// FFTCrossoverM is the window size at or above which the façade's
	// SlidingDotProduct entry point prefers the FFT implementation over the
	// naive one. No crossover is pinned down in the reference implementation
	// ("TODO: use FFT if m is large" appears with no threshold); 256 is the
	// value this port settles on.
	FFTCrossoverM = 256

	// DefaultSampleInterval is how often, in seconds, the ingestion service
	// expects a new sample per series when none is configured explicitly.
	DefaultSampleInterval = 10

	// DefaultExclusionZoneDivisor is the divisor d in E = ceil(m / d) used
	// by the self-join exclusion zone. The spec fixes d = 4.
	DefaultExclusionZoneDivisor = 4
)

// QuickmpSettings bundles the parameters needed to run a join. WindowSize,
// Normalize and SampleInterval are used by the ingestion service (package
// service) and WindowSize and Normalize by the CLI; both hand WindowSize
// and Normalize on to the façade (package quickmp) as plain arguments.
type QuickmpSettings struct {
	// WindowSize is the subsequence window length m.
	WindowSize int

	// Normalize selects the z-normalized join (true) or raw Euclidean join
	// (false).
	Normalize bool

	// FFTCrossoverM is filled with the package default by
	// ComputeDerivedFields when zero. The façade's SlidingDotProduct does
	// not read this field; it always compares against the package constant
	// FFTCrossoverM.
	FFTCrossoverM int

	// ExclusionZoneDivisor is the divisor d in E = ceil(m / d). Zero means
	// "use the package default" (4).
	ExclusionZoneDivisor int

	// SampleInterval is how often, in seconds, the ingestion service expects
	// a new sample per series. Zero means "use the package default".
	SampleInterval int

	// StreamCount is carried along but not read by ComputeDerivedFields,
	// the ingestion service or the façade: the service processes completed
	// windows one at a time on stream 0 whatever its value, and a zero
	// value is left as zero.
	StreamCount int
}

// ComputeDerivedFields fills in any zero-valued fields with their package
// defaults and returns the result. It never mutates the receiver.
func (s QuickmpSettings) ComputeDerivedFields() QuickmpSettings {
	if s.FFTCrossoverM == 0 {
		s.FFTCrossoverM = FFTCrossoverM
	}
	if s.ExclusionZoneDivisor == 0 {
		s.ExclusionZoneDivisor = DefaultExclusionZoneDivisor
	}
	if s.SampleInterval == 0 {
		s.SampleInterval = DefaultSampleInterval
	}
	return s
}

// ExclusionZone returns E = ceil(m / ExclusionZoneDivisor) for the
// receiver's window size and divisor.
func (s QuickmpSettings) ExclusionZone() int {
	divisor := s.ExclusionZoneDivisor
	if divisor == 0 {
		divisor = DefaultExclusionZoneDivisor
	}
	return (s.WindowSize + divisor - 1) / divisor
}

package service

import (
	"testing"
	"time"
)

func TestSeriesAccumulatorSelfJoinFlush(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	windowChannel := make(chan *Window, 2)
	acc := NewSeriesAccumulator("temp", "", 4, 1, start, windowChannel)

	for i := 0; i < 4; i++ {
		acc.AddObservation(&Observation{
			Series:    "temp",
			Value:     float64(i),
			Timestamp: start.Add(time.Duration(i) * time.Second),
		})
	}

	// A sample past the window boundary triggers the flush.
	acc.AddObservation(&Observation{
		Series:    "temp",
		Value:     99,
		Timestamp: start.Add(10 * time.Second),
	})

	select {
	case w := <-windowChannel:
		if len(w.Primary) != 4 {
			t.Fatalf("expected 4 samples in flushed window, got %d", len(w.Primary))
		}
		for i, v := range w.Primary {
			if v != float64(i) {
				t.Errorf("Primary[%d] = %f, want %f", i, v, float64(i))
			}
		}
		if w.Secondary != nil {
			t.Errorf("expected nil secondary for a self-join accumulator")
		}
	default:
		t.Fatalf("expected a window to be published")
	}
}

func TestSeriesAccumulatorInterpolatesGaps(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	windowChannel := make(chan *Window, 2)
	acc := NewSeriesAccumulator("a", "", 4, 1, start, windowChannel)

	acc.AddObservation(&Observation{Series: "a", Value: 10, Timestamp: start})
	// Skip slot 1, land directly on slot 2.
	acc.AddObservation(&Observation{Series: "a", Value: 20, Timestamp: start.Add(2 * time.Second)})
	acc.AddObservation(&Observation{Series: "a", Value: 30, Timestamp: start.Add(3 * time.Second)})
	acc.AddObservation(&Observation{Series: "a", Value: 99, Timestamp: start.Add(10 * time.Second)})

	w := <-windowChannel
	if len(w.Primary) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(w.Primary))
	}
	wantInterpolated := (10.0 + 20.0) / 2
	if w.Primary[1] != wantInterpolated {
		t.Errorf("expected interpolated slot 1 = %f, got %f", wantInterpolated, w.Primary[1])
	}
}

func TestSeriesAccumulatorABJoinBothSeries(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	windowChannel := make(chan *Window, 2)
	acc := NewSeriesAccumulator("a", "b", 3, 1, start, windowChannel)

	for i := 0; i < 3; i++ {
		ts := start.Add(time.Duration(i) * time.Second)
		acc.AddObservation(&Observation{Series: "a", Value: float64(i), Timestamp: ts})
		acc.AddObservation(&Observation{Series: "b", Value: float64(i) * 10, Timestamp: ts})
	}
	acc.AddObservation(&Observation{Series: "a", Value: 0, Timestamp: start.Add(10 * time.Second)})

	w := <-windowChannel
	if len(w.Primary) != 3 || len(w.Secondary) != 3 {
		t.Fatalf("expected both series to have 3 samples, got primary=%d secondary=%d",
			len(w.Primary), len(w.Secondary))
	}
}

func TestSeriesAccumulatorIgnoresUnknownSeries(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	windowChannel := make(chan *Window, 1)
	acc := NewSeriesAccumulator("a", "", 2, 1, start, windowChannel)

	acc.AddObservation(&Observation{Series: "unknown", Value: 1, Timestamp: start})

	select {
	case <-windowChannel:
		t.Fatalf("unexpected window published for an unrelated series")
	default:
	}
}

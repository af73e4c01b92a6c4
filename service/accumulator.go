// Package service ingests samples for one or two named time series and,
// once a full window's worth of aligned samples has accumulated, hands
// the window off to the quickmp façade to compute a matrix profile. It
// generalizes the teacher's many-row accumulator (one row per metric
// fingerprint, flushed every stride) down to the matrix profile's
// one-or-two-series case, flushed every window.
package service

import (
	"fmt"
	"log"
	"math"
	"time"
)

// Observation is a single timestamped sample for a named series.
type Observation struct {
	Series    string
	Value     float64
	Timestamp time.Time
}

// Window is a complete, aligned batch of samples ready for the façade:
// Primary always has exactly WindowSize entries; Secondary is nil for a
// self-join accumulator and has exactly WindowSize entries for an ab-join
// accumulator.
type Window struct {
	Primary   []float64
	Secondary []float64
	StartTs   time.Time
	EndTs     time.Time
}

// SeriesAccumulator buffers samples for up to two named series until each
// has WindowSize aligned slots filled, then emits a Window on
// WindowChannel and starts the next window. Each sample is slotted by
// elapsed time since the window start; gaps are interpolated, exactly as
// the teacher's accumulator does for a stride. A sample whose slot is
// already filled (a duplicate, or a late arrival for a slot that was
// interpolated) is dropped.
type SeriesAccumulator struct {
	windowSize     int
	sampleInterval int

	primaryName   string
	secondaryName string
	hasSecondary  bool

	buffers map[string][]float64

	windowStartTs time.Time
	windowMaxTs   time.Time
	windowDuration time.Duration

	WindowChannel chan<- *Window
}

func windowMaxTime(start time.Time, duration time.Duration) time.Time {
	return start.Add(duration).Add(-1 * time.Second)
}

// NewSeriesAccumulator creates an accumulator for a self-join over
// primaryName alone (secondaryName == "") or an ab-join over the pair.
func NewSeriesAccumulator(primaryName string, secondaryName string, windowSize int,
	sampleInterval int, startTime time.Time, wc chan<- *Window) *SeriesAccumulator {

	duration := time.Duration(windowSize*sampleInterval) * time.Second
	a := &SeriesAccumulator{
		windowSize:     windowSize,
		sampleInterval: sampleInterval,
		primaryName:    primaryName,
		secondaryName:  secondaryName,
		hasSecondary:   secondaryName != "",
		buffers:        make(map[string][]float64),
		windowStartTs:  startTime,
		windowMaxTs:    windowMaxTime(startTime, duration),
		windowDuration: duration,
		WindowChannel:  wc,
	}
	a.buffers[primaryName] = make([]float64, 0, windowSize)
	if a.hasSecondary {
		a.buffers[secondaryName] = make([]float64, 0, windowSize)
	}
	log.Printf("created series accumulator with start time %v and end time %v\n",
		a.windowStartTs.UTC().Format("20060102150405"),
		a.windowMaxTs.UTC().Format("20060102150405"))
	return a
}

func (a *SeriesAccumulator) computeSlotIndex(timestamp time.Time) (int, error) {
	if timestamp.After(a.windowMaxTs) {
		return -1, nil
	}
	if timestamp.Before(a.windowStartTs) {
		return -2, fmt.Errorf("backfill timestamp, ignore")
	}
	diff := timestamp.Sub(a.windowStartTs).Seconds()
	return int(diff / float64(a.sampleInterval)), nil
}

func (a *SeriesAccumulator) completeBuffers() {
	for name, b := range a.buffers {
		if len(b) > a.windowSize {
			log.Printf("series %s has length %d greater than window size %d\n", name, len(b), a.windowSize)
			panic("bug")
		}
		if len(b) < a.windowSize {
			interpolated := float64(0)
			if len(b) > 0 {
				interpolated = b[len(b)-1]
			}
			for i := len(b); i < a.windowSize; i++ {
				a.buffers[name] = append(a.buffers[name], interpolated)
			}
		}
	}
}

func (a *SeriesAccumulator) extractWindow() *Window {
	w := &Window{
		Primary: a.buffers[a.primaryName],
		StartTs: a.windowStartTs,
		EndTs:   a.windowMaxTs,
	}
	a.buffers[a.primaryName] = make([]float64, 0, a.windowSize)
	if a.hasSecondary {
		w.Secondary = a.buffers[a.secondaryName]
		a.buffers[a.secondaryName] = make([]float64, 0, a.windowSize)
	}
	return w
}

// AddObservation records a sample, flushing and starting the next window
// whenever a sample lands past the current window's end.
func (a *SeriesAccumulator) AddObservation(observation *Observation) {
	if observation.Series != a.primaryName && observation.Series != a.secondaryName {
		log.Printf("ignoring observation for unknown series %q\n", observation.Series)
		return
	}

	slot, err := a.computeSlotIndex(observation.Timestamp)
	if err != nil {
		// Backfill: safe to ignore.
		return
	}
	if slot < 0 {
		a.completeBuffers()
		log.Printf("publish window to channel\n")
		a.WindowChannel <- a.extractWindow()

		a.windowStartTs = observation.Timestamp
		a.windowMaxTs = windowMaxTime(observation.Timestamp, a.windowDuration)
		log.Printf("updated accumulator for next window with start time %v and end time %v\n",
			a.windowStartTs.UTC().Format("20060102150405"),
			a.windowMaxTs.UTC().Format("20060102150405"))
		slot, err = a.computeSlotIndex(observation.Timestamp)
		if err != nil || slot < 0 {
			log.Printf("failed to compute slot index after reset: %v\n", err)
			panic("got negative timestamp after resetting buffers")
		}
	}

	value := observation.Value
	if math.IsNaN(value) {
		value = 0
	}

	buf := a.buffers[observation.Series]
	if slot < len(buf) {
		// Duplicate message for an already-filled slot; ignore it.
		return
	}

	lastSlot := len(buf) - 1
	if lastSlot < slot-1 {
		interpolated := float64(0)
		if len(buf) > 0 {
			interpolated = (buf[lastSlot] + value) / 2
		}
		for i := lastSlot + 1; i < slot; i++ {
			buf = append(buf, interpolated)
		}
	}
	buf = append(buf, value)
	a.buffers[observation.Series] = buf
}

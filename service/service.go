package service

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/model"
	"github.com/prometheus/prometheus/prompb"
	"github.com/prometheus/prometheus/storage/remote"

	"github.com/kpaschen/quickmp/lib/settings"
	"github.com/kpaschen/quickmp/quickmp"
)

var (
	receivedSamples = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickmp_received_samples_total",
			Help: "Total number of received samples.",
		},
	)
	requestedJoins = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickmp_requested_joins_total",
			Help: "Total number of times a matrix profile join has been requested.",
		},
	)
	joinDurationHist = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:                            "quickmp_join_duration_seconds",
			Help:                            "Duration of matrix profile join calls triggered by a completed window.",
			Buckets:                         prometheus.DefBuckets,
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  10,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
	)
	unknownSeriesSamples = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickmp_unknown_series_samples_total",
			Help: "Number of received samples for a series other than the configured primary/secondary.",
		},
	)
)

func init() {
	prometheus.MustRegister(receivedSamples)
	prometheus.MustRegister(requestedJoins)
	prometheus.MustRegister(joinDurationHist)
	prometheus.MustRegister(unknownSeriesSamples)
}

// Processor receives Prometheus remote-write samples for one or two named
// series, accumulates them into complete windows, and runs each completed
// window through the quickmp façade. It never calls into lib/stats,
// lib/dotproduct or lib/stomp directly.
type Processor struct {
	accumulator   *SeriesAccumulator
	settings      settings.QuickmpSettings
	windowChannel chan *Window
	streamID      int
}

// NewProcessor creates a processor for a self-join over primaryName
// (secondaryName == "") or an ab-join over the pair, using s for the
// window size, normalization mode and sample interval.
func NewProcessor(primaryName string, secondaryName string, s settings.QuickmpSettings) *Processor {
	s = s.ComputeDerivedFields()
	windowChannel := make(chan *Window, 2)

	p := &Processor{
		accumulator: NewSeriesAccumulator(primaryName, secondaryName, s.WindowSize,
			s.SampleInterval, time.Now().UTC(), windowChannel),
		settings:      s,
		windowChannel: windowChannel,
	}

	if err := quickmp.Initialize(0, 1); err != nil {
		log.Printf("quickmp facade already initialized: %v\n", err)
	}

	go func() {
		log.Println("waiting for completed windows")
		for {
			select {
			case window := <-windowChannel:
				p.processWindow(window)
			case <-time.After(10 * time.Minute):
				log.Printf("got no window data for 10 minutes")
			}
		}
	}()

	return p
}

func (p *Processor) processWindow(w *Window) {
	requestedJoins.Inc()
	start := time.Now()

	var result *quickmp.Result
	var err error
	if w.Secondary == nil {
		result, err = quickmp.SelfJoin(w.Primary, p.settings.WindowSize, p.streamID, p.settings.Normalize)
	} else {
		result, err = quickmp.ABJoin(w.Primary, w.Secondary, p.settings.WindowSize, p.streamID, p.settings.Normalize)
	}

	if err != nil {
		log.Printf("failed to compute matrix profile for window %v to %v: %v\n", w.StartTs, w.EndTs, err)
		return
	}

	joinDurationHist.Observe(time.Since(start).Seconds())
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("failed to marshal matrix profile result: %v\n", err)
		return
	}
	log.Printf("matrix profile for window %v to %v: %s\n", w.StartTs, w.EndTs, payload)
}

func (p *Processor) observeSamples(req *prompb.WriteRequest) error {
	for _, ts := range req.Timeseries {
		metric := make(model.Metric, len(ts.Labels))
		for _, l := range ts.Labels {
			metric[model.LabelName(l.Name)] = model.LabelValue(l.Value)
		}
		name := string(metric[model.MetricNameLabel])

		sampleCount := 0
		for _, s := range ts.Samples {
			p.accumulator.AddObservation(&Observation{
				Series:    name,
				Value:     s.Value,
				Timestamp: time.Unix(s.Timestamp/1000, 0).UTC(),
			})
			sampleCount++
		}
		receivedSamples.Add(float64(sampleCount))
	}
	return nil
}

// ReceiveWrite handles a Prometheus remote-write HTTP request.
func (p *Processor) ReceiveWrite(w http.ResponseWriter, r *http.Request) {
	req, err := remote.DecodeWriteRequest(r.Body)
	if err != nil {
		log.Printf("failed to decode write request: %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := p.observeSamples(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Router builds the HTTP routes the ingestion service exposes: the
// remote-write endpoint and the Prometheus metrics endpoint.
func (p *Processor) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/api/v1/write", p.ReceiveWrite)
	router.Handle("/metrics", promhttp.Handler())
	return router
}

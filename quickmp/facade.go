// Package quickmp is the façade every consumer of the matrix profile
// engine goes through: the ingestion service, the CLI, and tests. It owns
// the process-wide initialize/finalize lifecycle, device and stream
// bookkeeping, and per-call instrumentation, and dispatches to
// lib/stats, lib/dotproduct and lib/stomp for the actual numerics.
package quickmp

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kpaschen/quickmp/lib/dotproduct"
	qmerrors "github.com/kpaschen/quickmp/lib/errors"
	"github.com/kpaschen/quickmp/lib/settings"
	"github.com/kpaschen/quickmp/lib/stats"
	"github.com/kpaschen/quickmp/lib/stomp"
)

var (
	kernelRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickmp_kernel_requests_total",
			Help: "Total number of matrix profile kernel calls that completed without error, by kernel name.",
		},
		[]string{"kernel"},
	)

	kernelDurationHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "quickmp_kernel_duration_seconds",
			Help:                            "Duration of matrix profile kernel calls that completed without error.",
			Buckets:                         prometheus.DefBuckets,
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  10,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"kernel"},
	)
)

func init() {
	prometheus.MustRegister(kernelRequests)
	prometheus.MustRegister(kernelDurationHist)
}

// state is the process-wide lifecycle state the CPU backend keeps: whether
// quickmp has been initialized, and which of its (single, for this
// backend) devices is current. Guarded by lifecycleMu since, unlike the teacher's
// receiver.go which has one dedicated watcher goroutine per piece of
// state, the façade can be called from any goroutine.
var (
	lifecycleMu   sync.Mutex
	initialized   bool
	currentDevice int
)

// Initialize marks the façade ready to use. device_start and device_count
// are accepted for interface parity with multi-device backends but are
// ignored: this is a CPU-only backend with exactly one device.
func Initialize(deviceStart int, deviceCount int) error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if initialized {
		return &qmerrors.AlreadyInitialized{}
	}
	initialized = true
	currentDevice = 0
	return nil
}

// Finalize marks the façade no longer ready to use.
func Finalize() error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if !initialized {
		return &qmerrors.NotInitialized{}
	}
	initialized = false
	return nil
}

// GetDeviceCount returns the number of devices the backend exposes. The
// CPU backend always has exactly one.
func GetDeviceCount() (int, error) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if !initialized {
		return 0, &qmerrors.NotInitialized{}
	}
	return 1, nil
}

// UseDevice selects the current device. The CPU backend only accepts 0.
func UseDevice(device int) error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if !initialized {
		return &qmerrors.NotInitialized{}
	}
	if device != 0 {
		return &qmerrors.InvalidDevice{Requested: device}
	}
	currentDevice = device
	return nil
}

// GetCurrentDevice returns the currently selected device.
func GetCurrentDevice() (int, error) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if !initialized {
		return 0, &qmerrors.NotInitialized{}
	}
	return currentDevice, nil
}

// GetStreamCount returns how many independent streams of execution the
// façade can usefully be called with concurrently, mirroring the
// reference backend's std::thread::hardware_concurrency().
func GetStreamCount() (int, error) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if !initialized {
		return 0, &qmerrors.NotInitialized{}
	}
	cores := runtime.NumCPU()
	if cores <= 0 {
		cores = 1
	}
	return cores, nil
}

// SleepUs blocks the calling goroutine for the given number of
// microseconds. stream is accepted for interface parity; the CPU backend
// has no per-stream execution context to sleep on.
func SleepUs(microseconds uint64, stream int) error {
	lifecycleMu.Lock()
	ready := initialized
	lifecycleMu.Unlock()
	if !ready {
		return &qmerrors.NotInitialized{}
	}
	time.Sleep(time.Duration(microseconds) * time.Microsecond)
	return nil
}

func requireInitialized() error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if !initialized {
		return &qmerrors.NotInitialized{}
	}
	return nil
}

func observe(kernel string, start time.Time) {
	kernelRequests.WithLabelValues(kernel).Inc()
	kernelDurationHist.WithLabelValues(kernel).Observe(time.Since(start).Seconds())
}

// SelfJoin computes the matrix profile of T against itself, z-normalized
// if normalize is true or raw Euclidean otherwise. stream is accepted for
// interface parity; streams do not alias state in this backend so no
// stream-specific handling is needed.
func SelfJoin(T []float64, m int, stream int, normalize bool) (*Result, error) {
	start := time.Now()
	if err := requireInitialized(); err != nil {
		return nil, err
	}

	s := settings.QuickmpSettings{WindowSize: m}
	var P []float64
	var err error
	if normalize {
		P, err = stomp.SelfJoin(T, m, s)
	} else {
		P, err = stomp.SelfJoinRaw(T, m, s)
	}
	if err != nil {
		return nil, err
	}

	observe("self_join", start)
	return &Result{Profile: P, WindowSize: m, Normalized: normalize, StreamID: stream}, nil
}

// ABJoin computes, for each subsequence of T1, its nearest neighbor among
// the subsequences of T2, z-normalized if normalize is true or raw
// Euclidean otherwise.
func ABJoin(T1 []float64, T2 []float64, m int, stream int, normalize bool) (*Result, error) {
	start := time.Now()
	if err := requireInitialized(); err != nil {
		return nil, err
	}

	var P []float64
	var err error
	if normalize {
		P, err = stomp.ABJoin(T1, T2, m)
	} else {
		P, err = stomp.ABJoinRaw(T1, T2, m)
	}
	if err != nil {
		return nil, err
	}

	observe("ab_join", start)
	return &Result{Profile: P, WindowSize: m, Normalized: normalize, StreamID: stream}, nil
}

// SlidingDotProduct computes QT[i] = sum_k Q[k]*T[i+k] for every offset,
// choosing the FFT implementation once m reaches the package constant
// settings.FFTCrossoverM and the naive one below it.
func SlidingDotProduct(T []float64, Q []float64, stream int) ([]float64, error) {
	start := time.Now()
	if err := requireInitialized(); err != nil {
		return nil, err
	}

	var QT []float64
	var err error
	if len(Q) >= settings.FFTCrossoverM {
		QT, err = dotproduct.SlidingDotProductFFT(T, Q)
	} else {
		QT, err = dotproduct.SlidingDotProductNaive(T, Q)
	}
	if err != nil {
		return nil, err
	}

	observe("sliding_dot_product", start)
	return QT, nil
}

// ComputeMeanStd returns, for every length-m window of T, its mean and the
// inverse of its standard deviation.
func ComputeMeanStd(T []float64, m int, stream int) (mu []float64, sigmaInv []float64, err error) {
	start := time.Now()
	if err := requireInitialized(); err != nil {
		return nil, nil, err
	}

	mu, sigmaInv, _, err = stats.MeanStd(T, m)
	if err != nil {
		return nil, nil, err
	}

	observe("compute_mean_std", start)
	return mu, sigmaInv, nil
}

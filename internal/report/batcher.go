// Package report aggregates per-operation outcomes from a running
// cmd/bbqbench scenario and periodically emits throughput summaries.
//
// It follows the same queue-then-ticker-flush shape as a classic event
// batcher, but what gets batched is a stream of Sample values that get
// reduced into counts instead of events that get appended to a log.
package report

import (
	"time"

	"go.uber.org/zap"
)

// Sample is one completed Push or Pop outcome.
type Sample struct {
	Op      Op
	OK      bool
	Latency time.Duration
}

// Op identifies which queue operation a Sample describes.
type Op uint8

const (
	OpPush Op = iota
	OpPop
)

// Summary is the reduction of a batch of Samples, emitted once per flush.
type Summary struct {
	Pushes     int
	PushesFull int
	Pops       int
	PopsEmpty  int
	TotalLatency time.Duration
}

// Throughput returns successful operations per second, computed over
// window.
func (s Summary) Throughput(window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(s.Pushes+s.Pops) / window.Seconds()
}

// Reporter batches Samples off the hot path and periodically logs a
// Summary, reducing instead of persisting.
type Reporter struct {
	logger        *zap.SugaredLogger
	queue         chan Sample
	flushInterval time.Duration
	shutdownCh    chan struct{}
	shutdownDone  chan struct{}
}

// NewReporter creates a Reporter that flushes an aggregated Summary every
// flushInterval. bufferSize bounds how many Samples can wait for the
// batch loop to take them before Record starts dropping them.
func NewReporter(logger *zap.SugaredLogger, bufferSize int, flushInterval time.Duration) *Reporter {
	if bufferSize <= 0 {
		bufferSize = 4096
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}

	return &Reporter{
		logger:        logger,
		queue:         make(chan Sample, bufferSize),
		flushInterval: flushInterval,
		shutdownCh:    make(chan struct{}),
		shutdownDone:  make(chan struct{}),
	}
}

// Start begins the batching loop in the background.
func (r *Reporter) Start() {
	go r.batchLoop()
}

func (r *Reporter) batchLoop() {
	defer close(r.shutdownDone)

	var batch Summary
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case s := <-r.queue:
			accumulate(&batch, s)

		case <-ticker.C:
			if batch != (Summary{}) {
				r.flush(batch)
				batch = Summary{}
			}

		case <-r.shutdownCh:
			for {
				select {
				case s := <-r.queue:
					accumulate(&batch, s)
				default:
					if batch != (Summary{}) {
						r.flush(batch)
					}
					return
				}
			}
		}
	}
}

func accumulate(batch *Summary, s Sample) {
	switch {
	case s.Op == OpPush && s.OK:
		batch.Pushes++
		batch.TotalLatency += s.Latency
	case s.Op == OpPush && !s.OK:
		batch.PushesFull++
	case s.Op == OpPop && s.OK:
		batch.Pops++
		batch.TotalLatency += s.Latency
	case s.Op == OpPop && !s.OK:
		batch.PopsEmpty++
	}
}

func (r *Reporter) flush(batch Summary) {
	r.logger.Infow("throughput",
		"pushes", batch.Pushes,
		"pushes_full", batch.PushesFull,
		"pops", batch.Pops,
		"pops_empty", batch.PopsEmpty,
		"throughput_ops_per_sec", batch.Throughput(r.flushInterval),
	)
}

// Record queues a Sample for the next flush. It is non-blocking: if the
// internal queue is full, the sample is dropped and counted against
// nothing — the next flush's numbers will simply undercount slightly
// under sustained overload, which is acceptable for a benchmark reporter.
func (r *Reporter) Record(s Sample) {
	select {
	case r.queue <- s:
	default:
		r.logger.Warnw("reporter queue full, dropping sample")
	}
}

// Shutdown flushes any pending samples and waits for the batch loop to
// exit.
func (r *Reporter) Shutdown() {
	close(r.shutdownCh)
	<-r.shutdownDone
}

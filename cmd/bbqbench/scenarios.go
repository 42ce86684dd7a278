package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rishav/bbq"
	"github.com/rishav/bbq/internal/metrics"
	"github.com/rishav/bbq/internal/report"
)

// Result summarizes one scenario run.
type Result struct {
	Scenario string
	Pushed   uint64
	Popped   uint64
	Elapsed  time.Duration
}

// RunScenario drives one of bbqbench's named scenarios against a fresh
// queue built from cfg, recording samples into rec and rep as it goes.
//
// smoke is a single producer/consumer sanity pass, spsc/spmc/mpsc/mpmc
// vary the number of producer and consumer goroutines, and backpressure
// deliberately saturates the queue to exercise ErrFull.
func RunScenario(ctx context.Context, cfg Config, logger *zap.SugaredLogger, rec *metrics.Recorder, rep *report.Reporter) (Result, error) {
	switch cfg.Scenario {
	case "smoke":
		return runSmoke(cfg, logger, rec, rep)
	case "spsc":
		return runThroughput(ctx, cfg, 1, 1, logger, rec, rep)
	case "spmc":
		return runThroughput(ctx, cfg, 1, cfg.Consumers, logger, rec, rep)
	case "mpsc":
		return runThroughput(ctx, cfg, cfg.Producers, 1, logger, rec, rep)
	case "mpmc":
		return runThroughput(ctx, cfg, cfg.Producers, cfg.Consumers, logger, rec, rep)
	case "backpressure":
		return runBackpressure(cfg, logger, rec, rep)
	default:
		return Result{}, fmt.Errorf("bbqbench: unknown scenario %q", cfg.Scenario)
	}
}

// runSmoke pushes and pops a handful of values on a single goroutine,
// confirming FIFO order on a two-block, four-slot queue across one block
// boundary.
func runSmoke(cfg Config, logger *zap.SugaredLogger, rec *metrics.Recorder, rep *report.Reporter) (Result, error) {
	q := bbq.New[int](2, 4)

	const n = 6
	for i := 0; i < n; i++ {
		start := time.Now()
		err := q.Push(i)
		rec.ObservePush(time.Since(start), err == nil)
		rep.Record(report.Sample{Op: report.OpPush, OK: err == nil, Latency: time.Since(start)})
		if err != nil {
			return Result{}, fmt.Errorf("smoke: push %d: %w", i, err)
		}
	}

	for i := 0; i < n; i++ {
		start := time.Now()
		v, ok := q.Pop()
		rec.ObservePop(time.Since(start), ok)
		rep.Record(report.Sample{Op: report.OpPop, OK: ok, Latency: time.Since(start)})
		if !ok {
			return Result{}, fmt.Errorf("smoke: pop %d: queue unexpectedly empty", i)
		}
		if v != i {
			return Result{}, fmt.Errorf("smoke: pop %d: got %d, want FIFO order", i, v)
		}
	}

	logger.Infow("smoke scenario passed", "count", n)
	return Result{Scenario: "smoke", Pushed: n, Popped: n}, nil
}

// runThroughput runs producers goroutines pushing and consumers
// goroutines popping concurrently for cfg.Duration, and reports the
// total operations each side completed.
func runThroughput(ctx context.Context, cfg Config, producers, consumers int, logger *zap.SugaredLogger, rec *metrics.Recorder, rep *report.Reporter) (Result, error) {
	q := bbq.New[uint64](cfg.BlockNum, cfg.SlotNum)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var pushed, popped uint64
	var wg sync.WaitGroup

	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(id int) {
			defer wg.Done()
			var i uint64
			for {
				select {
				case <-runCtx.Done():
					return
				default:
				}
				start := time.Now()
				err := q.Push(i)
				ok := err == nil
				rec.ObservePush(time.Since(start), ok)
				rep.Record(report.Sample{Op: report.OpPush, OK: ok, Latency: time.Since(start)})
				if ok {
					atomic.AddUint64(&pushed, 1)
					i++
				}
			}
		}(p)
	}

	wg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				default:
				}
				start := time.Now()
				_, ok := q.Pop()
				rec.ObservePop(time.Since(start), ok)
				rep.Record(report.Sample{Op: report.OpPop, OK: ok, Latency: time.Since(start)})
				if ok {
					atomic.AddUint64(&popped, 1)
				}
			}
		}(c)
	}

	start := time.Now()
	wg.Wait()
	elapsed := time.Since(start)

	logger.Infow("throughput scenario finished",
		"scenario", cfg.Scenario,
		"producers", producers,
		"consumers", consumers,
		"pushed", pushed,
		"popped", popped,
		"elapsed", elapsed,
	)

	return Result{Scenario: cfg.Scenario, Pushed: pushed, Popped: popped, Elapsed: elapsed}, nil
}

// runBackpressure fills a small queue past capacity on one goroutine
// with no consumer running, confirming ErrFull is returned once the
// queue saturates, then drains it.
func runBackpressure(cfg Config, logger *zap.SugaredLogger, rec *metrics.Recorder, rep *report.Reporter) (Result, error) {
	q := bbq.New[int](2, 8)
	capacity := q.Capacity()

	var pushed uint64
	var full bool
	for i := 0; i < capacity*2; i++ {
		start := time.Now()
		err := q.Push(i)
		ok := err == nil
		rec.ObservePush(time.Since(start), ok)
		rep.Record(report.Sample{Op: report.OpPush, OK: ok, Latency: time.Since(start)})
		if ok {
			pushed++
			continue
		}
		full = true
		break
	}

	if !full {
		return Result{}, fmt.Errorf("backpressure: expected ErrFull after %d pushes, queue never reported full", capacity)
	}

	var popped uint64
	for {
		start := time.Now()
		_, ok := q.Pop()
		rec.ObservePop(time.Since(start), ok)
		rep.Record(report.Sample{Op: report.OpPop, OK: ok, Latency: time.Since(start)})
		if !ok {
			break
		}
		popped++
	}

	logger.Infow("backpressure scenario passed", "capacity", capacity, "pushed", pushed, "popped", popped)
	return Result{Scenario: "backpressure", Pushed: pushed, Popped: popped}, nil
}

// Package bbq implements a bounded, lock-free, multi-producer /
// multi-consumer FIFO queue backed by a block-based ring buffer (BBQ).
//
// The ring's storage is partitioned into a small number of equal-sized
// blocks. Producers and consumers synchronize block-by-block rather than
// slot-by-slot: each block carries four atomic cursors (allocated,
// committed, reserved, consumed) and producers/consumers only contend on
// the global head/tail cursors when a block is exhausted. See SPEC_FULL.md
// for the full cursor protocol.
//
// Push and Pop never block. On a full queue Push returns ErrFull and does
// not store the value; an empty queue returns ok=false from Pop. Callers that want
// to wait choose their own retry strategy — internal/backoff provides the
// one this package uses internally between the queue's own lock-free
// retries, not as part of the queue's contract.
//
// Reference: https://lmax-exchange.github.io/disruptor/ (LMAX Disruptor
// pattern, the single-slot-cursor ancestor this ring's block-level
// partitioning generalizes).
package bbq

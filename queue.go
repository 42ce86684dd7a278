package bbq

import "github.com/rishav/bbq/internal/backoff"

// advanceResult is the outcome of advanceHead / advanceTail.
type advanceResult int8

const (
	advanceSuccess advanceResult = iota
	advanceNoEntry
	advanceNotAvailable
)

// Queue is a bounded, lock-free, multi-producer/multi-consumer FIFO
// queue. Its storage is blockNum blocks of slotNum slots each; producers
// and consumers synchronize block-by-block via head/tail, and slot-by-
// slot within a block via the four cursors described in block.go.
//
// A Queue is ready to use as soon as New returns and is safe to share
// across any number of goroutines for any element type T.
type Queue[T any] struct {
	head paddedCursor
	tail paddedCursor

	blocks   []*block[T]
	blockNum uint64
	slotNum  int
	oneLap   uint64

	backoffPolicy backoff.Policy
}

// New constructs a Queue with the given number of blocks and slots per
// block. Both must be powers of two, and blockNum must be at least 2;
// violating either is a programming error and New panics, matching the
// source specification's contract-breach-aborts-the-process treatment of
// construction-time parameter violations.
func New[T any](blockNum, slotNum int, opts ...Option) *Queue[T] {
	if blockNum < 2 || !isPowerOfTwo(blockNum) {
		panic("bbq: blockNum must be a power of two >= 2")
	}
	if !isPowerOfTwo(slotNum) {
		panic("bbq: slotNum must be a power of two")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	oneLap := oneLapFor(blockNum, slotNum)

	q := &Queue[T]{
		blocks:        make([]*block[T], blockNum),
		blockNum:      uint64(blockNum),
		slotNum:       slotNum,
		oneLap:        oneLap,
		backoffPolicy: cfg.backoffPolicy,
	}

	for i := range q.blocks {
		initial := uint64(0)
		if i != 0 {
			// Every block but the first starts "already exhausted": its
			// index field equals slotNum, so producers must pass through
			// advanceHead before they can commit into it, and consumers
			// see it as empty until they do.
			initial = uint64(slotNum)
		}
		q.blocks[i] = newBlock[T](slotNum, oneLap, initial)
	}

	return q
}

// Capacity returns blockNum * slotNum, the fixed total number of elements
// the queue can hold.
func (q *Queue[T]) Capacity() int {
	return int(q.blockNum) * q.slotNum
}

// Push stores value in the queue, returning nil on success. If the queue
// is full, Push returns ErrFull and value is not stored; the caller still
// owns it.
func (q *Queue[T]) Push(value T) error {
	bo := backoff.New(q.backoffPolicy)

	for {
		h := q.head.load()
		blk := q.blocks[index(h, q.oneLap)]

		result, v := blk.tryCommit(value)
		switch result {
		case commitSuccess:
			return nil
		case commitBlockDone:
			value = v
			switch q.advanceHead(h) {
			case advanceNoEntry:
				return ErrFull
			case advanceNotAvailable:
				_ = bo.Wait(nil)
			case advanceSuccess:
				bo.Reset()
			}
		}
	}
}

// Pop removes and returns the oldest element in the queue. ok is false
// and the returned value is the zero value of T if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	bo := backoff.New(q.backoffPolicy)

	for {
		t := q.tail.load()
		blk := q.blocks[index(t, q.oneLap)]

		result, v := blk.tryConsume()
		switch result {
		case consumeSuccess:
			return v, true
		case consumeNoEntry:
			var zero T
			return zero, false
		case consumeNotAvailable:
			_ = bo.Wait(nil)
		case consumeBlockDone:
			switch q.advanceTail(t) {
			case advanceNoEntry:
				var zero T
				return zero, false
			case advanceSuccess:
				bo.Reset()
			}
		}
	}
}

// advanceHead moves the producer frontier from oldHead onto the next
// block, preparing that block for a new producer lap. It refuses to
// advance onto a block the consumer side hasn't finished draining from
// its previous lap, distinguishing "truly full" (no entry anywhere)
// from "not yet available" (the consumer just hasn't caught up).
func (q *Queue[T]) advanceHead(oldHead uint64) advanceResult {
	oldIdx := index(oldHead, q.oneLap)
	oldVsn := version(oldHead, q.oneLap)

	next := q.blocks[(oldIdx+1)%q.blockNum]

	nextConsumed := next.consumed.load()
	cvsn := version(nextConsumed, q.oneLap)
	cnt := index(nextConsumed, q.oneLap)

	if cvsn < oldVsn || (cvsn == oldVsn && cnt != next.slotNum) {
		nextReserved := next.reserved.load()
		ridx := index(nextReserved, q.oneLap)

		if ridx == cnt {
			return advanceNoEntry
		}
		return advanceNotAvailable
	}

	next.committed.fetchMax(oldVsn + q.oneLap)
	next.allocated.fetchMax(oldVsn + q.oneLap)

	var newHead uint64
	if oldIdx+1 < q.blockNum {
		newHead = oldHead + 1
	} else {
		newHead = oldVsn + q.oneLap
	}
	q.head.fetchMax(newHead)

	return advanceSuccess
}

// advanceTail moves the consumer frontier from oldTail onto the next
// block, preparing that block for a new consumer lap. It advances as
// soon as producers have opened the next block for the incoming lap
// (its committed version matches), whether or not any slot there is
// committed yet; tryConsume then keeps a consumer from reserving a slot
// no producer has published.
func (q *Queue[T]) advanceTail(oldTail uint64) advanceResult {
	oldIdx := index(oldTail, q.oneLap)
	oldVsn := version(oldTail, q.oneLap)

	next := q.blocks[(oldIdx+1)%q.blockNum]

	nextCommitted := next.committed.load()
	cvsn := version(nextCommitted, q.oneLap)

	if cvsn != oldVsn+q.oneLap {
		return advanceNoEntry
	}

	next.consumed.fetchMax(oldVsn + q.oneLap)
	next.reserved.fetchMax(oldVsn + q.oneLap)

	var newTail uint64
	if oldIdx+1 < q.blockNum {
		newTail = oldTail + 1
	} else {
		newTail = oldVsn + q.oneLap
	}
	q.tail.fetchMax(newTail)

	return advanceSuccess
}

// Len returns a best-effort, instantaneously-stale count of elements
// currently in the queue. It is not part of the push/pop contract — any
// value it returns may be wrong the moment it returns under concurrent
// mutation. Use it only for metrics/progress reporting, never for
// correctness decisions.
func (q *Queue[T]) Len() int {
	total := 0
	for _, b := range q.blocks {
		committed := b.committed.load()
		consumed := b.consumed.load()
		committedIdx := index(committed, q.oneLap)
		consumedIdx := index(consumed, q.oneLap)
		if version(consumed, q.oneLap) != version(committed, q.oneLap) {
			// Producers have opened a new lap on this block that consumers
			// have not entered yet: none of its entries are consumed.
			consumedIdx = 0
		}
		if committedIdx > consumedIdx {
			total += int(committedIdx - consumedIdx)
		}
	}
	if cap := q.Capacity(); total > cap {
		total = cap
	}
	return total
}

// IsEmpty reports whether Len() observed zero elements. Hint only, see Len.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull reports whether Len() observed the queue at capacity. Hint only,
// see Len.
func (q *Queue[T]) IsFull() bool {
	return q.Len() >= q.Capacity()
}

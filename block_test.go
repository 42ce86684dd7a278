package bbq

import "testing"

func TestBlockTryCommitFillsSlots(t *testing.T) {
	oneLap := oneLapFor(2, 4)
	b := newBlock[int](4, oneLap, 0)

	for i := 0; i < 4; i++ {
		result, _ := b.tryCommit(i)
		if result != commitSuccess {
			t.Fatalf("commit %d: expected commitSuccess, got %v", i, result)
		}
	}

	result, v := b.tryCommit(99)
	if result != commitBlockDone {
		t.Fatalf("commit past capacity: expected commitBlockDone, got %v", result)
	}
	if v != 99 {
		t.Fatalf("commit past capacity: expected value handed back, got %d", v)
	}
}

func TestBlockTryConsumeDrainsInOrder(t *testing.T) {
	oneLap := oneLapFor(2, 4)
	b := newBlock[int](4, oneLap, 0)

	for i := 0; i < 4; i++ {
		if result, _ := b.tryCommit(i); result != commitSuccess {
			t.Fatalf("commit %d failed", i)
		}
	}

	for i := 0; i < 4; i++ {
		result, v := b.tryConsume()
		if result != consumeSuccess {
			t.Fatalf("consume %d: expected consumeSuccess, got %v", i, result)
		}
		if v != i {
			t.Fatalf("consume %d: expected %d, got %d", i, i, v)
		}
	}

	result, _ := b.tryConsume()
	if result != consumeBlockDone {
		t.Fatalf("consume past commits: expected consumeBlockDone, got %v", result)
	}
}

func TestBlockTryConsumeNoEntryOnEmptyBlock(t *testing.T) {
	oneLap := oneLapFor(2, 4)
	b := newBlock[int](4, oneLap, 0)

	result, _ := b.tryConsume()
	if result != consumeNoEntry {
		t.Fatalf("consume on untouched block: got %v, want consumeNoEntry", result)
	}
}

func TestBlockTryConsumeNotAvailableBehindInFlightCommit(t *testing.T) {
	oneLap := oneLapFor(2, 4)
	b := newBlock[int](4, oneLap, 0)

	// Commit slot 0, then claim slot 1's allocation without committing
	// it. A consumer now sees committed count 1 but allocated count 2 —
	// a producer is still mid-commit somewhere in [1,2) — so it must
	// back off rather than assume slot 0 is safe to hand out.
	if result, _ := b.tryCommit(42); result != commitSuccess {
		t.Fatal("expected first commit to succeed")
	}
	if b.allocated.fetchMax(2) != 1 {
		t.Fatal("expected to win the allocated bump from 1")
	}

	result, _ := b.tryConsume()
	if result != consumeNotAvailable {
		t.Fatalf("consume behind in-flight commit: got %v, want consumeNotAvailable", result)
	}
}

func TestCursorIndexAndVersion(t *testing.T) {
	oneLap := oneLapFor(4, 1024)

	cases := []struct {
		cursor  uint64
		wantIdx uint64
		wantVsn uint64
	}{
		{0, 0, 0},
		{5, 5, 0},
		{oneLap, 0, oneLap},
		{oneLap + 3, 3, oneLap},
	}

	for _, c := range cases {
		if got := index(c.cursor, oneLap); got != c.wantIdx {
			t.Errorf("index(%d): got %d, want %d", c.cursor, got, c.wantIdx)
		}
		if got := version(c.cursor, oneLap); got != c.wantVsn {
			t.Errorf("version(%d): got %d, want %d", c.cursor, got, c.wantVsn)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	yes := []int{1, 2, 4, 8, 1024}
	no := []int{0, 3, 5, 6, 1023}

	for _, n := range yes {
		if !isPowerOfTwo(n) {
			t.Errorf("isPowerOfTwo(%d): expected true", n)
		}
	}
	for _, n := range no {
		if isPowerOfTwo(n) {
			t.Errorf("isPowerOfTwo(%d): expected false", n)
		}
	}
}

func TestPaddedCursorFetchMax(t *testing.T) {
	var c paddedCursor
	c.v.Store(10)

	if prev := c.fetchMax(5); prev != 10 {
		t.Fatalf("fetchMax(5) on 10: expected previous value 10, got %d", prev)
	}
	if got := c.load(); got != 10 {
		t.Fatalf("fetchMax(5) should not lower the cursor: got %d, want 10", got)
	}

	if prev := c.fetchMax(20); prev != 10 {
		t.Fatalf("fetchMax(20) on 10: expected previous value 10, got %d", prev)
	}
	if got := c.load(); got != 20 {
		t.Fatalf("fetchMax(20) should raise the cursor: got %d, want 20", got)
	}
}

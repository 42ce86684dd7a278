package bbq

// Every cursor in this package (the Ring's head/tail, and each Block's
// allocated/committed/reserved/consumed) packs two fields into one
// uint64: the low bits are an index (which block, or how many slots),
// the high bits are a version that increments by oneLap each time the
// cursor wraps its index range. A single atomic load observes both
// fields at once, and a monotonic-max update can advance either without
// ABA confusion for as long as versions don't wrap the word.

// index extracts the low-bits position field of a packed cursor.
func index(cursor, oneLap uint64) uint64 {
	return cursor & (oneLap - 1)
}

// version extracts the high-bits lap-generation field of a packed cursor.
func version(cursor, oneLap uint64) uint64 {
	return cursor &^ (oneLap - 1)
}

// oneLapFor computes the lap constant for a ring with the given block and
// slot counts: max(blockNum, slotNum*2). Both inputs are already powers
// of two (checked by New), and the max of two powers of two is itself a
// power of two, so no additional rounding is needed. The *2 keeps the
// version bits strictly above the largest legal in-block index (slotNum),
// so "block full" (index == slotNum) is distinguishable from "index at a
// lap boundary" — see SPEC_FULL.md §9, open question 3.
func oneLapFor(blockNum, slotNum int) uint64 {
	n := uint64(blockNum)
	s := uint64(slotNum) * 2
	if s > n {
		return s
	}
	return n
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

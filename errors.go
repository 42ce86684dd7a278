package bbq

import "errors"

// ErrFull is returned by Push when the queue has no room for another
// element. The value passed to Push is not stored; the caller still owns
// it and may retry, drop it, or route it elsewhere.
var ErrFull = errors.New("bbq: queue is full")

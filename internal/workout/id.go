package workout

import (
	"fmt"
	"sync"
	"time"
)

const idModulus = 10_000_000_000

var ids struct {
	mu   sync.Mutex
	last int64
}

// nextID keeps the last ten digits of the creation instant in milliseconds.
// Two records created inside the same millisecond get consecutive values.
func nextID(at time.Time) string {
	ms := at.UnixMilli()

	ids.mu.Lock()
	if ms <= ids.last {
		ms = ids.last + 1
	}
	ids.last = ms
	ids.mu.Unlock()

	return fmt.Sprintf("%010d", ms%idModulus)
}

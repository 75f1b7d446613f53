package upsert

import (
	"hash/fnv"
	"sync"
)

// stripedMutex provides mutual exclusion per string key by hashing keys onto
// a fixed set of mutexes. Two upserts sharing a key always share a stripe;
// unrelated keys may occasionally share one too, which only costs latency.
type stripedMutex struct {
	stripes []sync.Mutex
}

func newStripedMutex(n int) *stripedMutex {
	if n <= 0 {
		n = 64
	}
	return &stripedMutex{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for key and returns its unlock func.
func (m *stripedMutex) Lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	stripe := &m.stripes[int(h.Sum32())%len(m.stripes)]
	stripe.Lock()
	return stripe.Unlock
}

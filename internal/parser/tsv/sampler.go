package tsv

import "sync"

// sampler counts messages and keeps the first few for a summary log.
type sampler struct {
	mu    sync.Mutex
	limit int
	count int
	first []string
}

func newSampler(limit int) *sampler {
	return &sampler{limit: limit}
}

func (a *sampler) add(msg string) {
	a.mu.Lock()
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}

func (a *sampler) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.first) == 0 {
		return nil
	}
	return append([]string(nil), a.first...)
}

package batch

import (
	"strings"
	"sync"
)

// accumulator collects records keyed by their original (trimmed) input
// string while processing runs in arbitrary order. The keyed map means a
// duplicated input collapses to one record (last write wins); the replay in
// assemble then emits it once per occurrence with identical content.
type accumulator struct {
	mu      sync.Mutex
	records map[string]Record
}

func newAccumulator() *accumulator {
	return &accumulator{records: make(map[string]Record)}
}

func (a *accumulator) put(key string, rec Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[key] = rec
}

func (a *accumulator) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// assemble replays the original input sequence, emitting the accumulated
// record for each non-blank entry that has one. Entries skipped by
// cancellation are simply absent.
func (a *accumulator) assemble(inputs []string) ResultSet {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(ResultSet, 0, len(inputs))
	for _, input := range inputs {
		key := strings.TrimSpace(input)
		if key == "" {
			continue
		}
		if rec, ok := a.records[key]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Package report accumulates diagnostics across the stages of a catalog
// build run.
package report

import (
	"fmt"
	"sync"
)

// Report is the single shared warning accumulator for one run. Appends are
// serialized so concurrent stages can share it. The final status is failed
// as soon as any warning has been recorded.
type Report struct {
	mu       sync.Mutex
	warnings []string
}

func New() *Report {
	return &Report{}
}

// Warnf records one diagnostic line.
func (r *Report) Warnf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns the recorded diagnostics in append order.
func (r *Report) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Failed reports whether the run outcome is failed.
func (r *Report) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings) > 0
}

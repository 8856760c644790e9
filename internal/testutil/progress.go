package testutil

import (
	"sync"
)

// RecordingProgressTracker captures progress callbacks for assertions.
type RecordingProgressTracker struct {
	mu sync.Mutex

	Updates   []int64
	Completed bool
	Err       error
}

// Update records the transferred byte count.
func (p *RecordingProgressTracker) Update(bytesTransferred, _ int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Updates = append(p.Updates, bytesTransferred)
}

// Complete records successful completion.
func (p *RecordingProgressTracker) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Completed = true
}

// Error records the failure passed to the tracker.
func (p *RecordingProgressTracker) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Err = err
}

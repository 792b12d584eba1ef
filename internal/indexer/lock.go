package indexer

import "sync/atomic"

// IndexLock guards a project against overlapping index runs. Callers that
// fail to acquire it report "indexing in progress" instead of waiting.
type IndexLock struct {
	state atomic.Bool
}

// TryAcquire takes the lock if it is free
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(false, true)
}

// Release frees the lock. Only the holder may call it.
func (l *IndexLock) Release() {
	l.state.Store(false)
}

package reactive

// Batch groups multiple signal updates into a single notification phase.
// All signal updates within the batch function are collected, deduplicated,
// and then all affected listeners are notified once when the batch completes.
//
// Batches can be nested. Notifications only fire when the outermost batch completes.
//
//	Batch(func() {
//	    first.Set("John")
//	    last.Set("Doe")
//	})
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// processPendingUpdates deduplicates and notifies all pending listeners.
// Listeners notified while flushing (effects that write) are flushed too.
func processPendingUpdates() {
	for {
		updates := drainPendingUpdates()
		if len(updates) == 0 {
			return
		}

		seen := make(map[uint64]bool, len(updates))
		unique := make([]Listener, 0, len(updates))
		for _, listener := range updates {
			id := listener.ID()
			if !seen[id] {
				seen[id] = true
				unique = append(unique, listener)
			}
		}

		for _, listener := range unique {
			listener.MarkDirty()
		}
	}
}

// Untracked runs a function without tracking signal reads as dependencies.
//
// For single signal reads, use signal.Peek() instead.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

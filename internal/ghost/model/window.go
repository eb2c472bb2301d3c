package model

// ProcessedBlocksWindowCapacity matches the node's default ZMQ high-water mark.
const ProcessedBlocksWindowCapacity = 1000

// ProcessedBlocksWindow is a bounded FIFO of recently live-ingested block hashes.
// The zero value is an empty window.
type ProcessedBlocksWindow struct {
	hashes []string
	index  map[string]struct{}
}

// NewProcessedBlocksWindow restores a window from persisted hashes, oldest first.
// Duplicates are dropped and only the newest entries up to capacity are kept.
func NewProcessedBlocksWindow(hashes []string) ProcessedBlocksWindow {
	w := ProcessedBlocksWindow{}
	for _, h := range hashes {
		w.Insert(h)
	}
	return w
}

// Contains reports whether hash is in the window.
func (w *ProcessedBlocksWindow) Contains(hash string) bool {
	_, ok := w.index[hash]
	return ok
}

// Insert appends hash, evicting the oldest entry once capacity is exceeded.
// Inserting a hash that is already present is a no-op.
func (w *ProcessedBlocksWindow) Insert(hash string) (evicted string, ok bool) {
	if w.index == nil {
		w.index = make(map[string]struct{}, ProcessedBlocksWindowCapacity)
	}
	if _, dup := w.index[hash]; dup {
		return "", false
	}

	w.hashes = append(w.hashes, hash)
	w.index[hash] = struct{}{}

	if len(w.hashes) > ProcessedBlocksWindowCapacity {
		evicted = w.hashes[0]
		w.hashes = w.hashes[1:]
		delete(w.index, evicted)
		return evicted, true
	}
	return "", false
}

// Len returns the number of hashes in the window.
func (w *ProcessedBlocksWindow) Len() int {
	return len(w.hashes)
}

// Hashes returns a copy of the window contents, oldest first.
func (w *ProcessedBlocksWindow) Hashes() []string {
	return append([]string(nil), w.hashes...)
}

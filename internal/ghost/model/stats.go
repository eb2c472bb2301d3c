package model

// HeightStats aggregates the persisted block heights as computed by the store.
type HeightStats struct {
	Count uint64
	Min   uint64
	Max   uint64
	Sum   uint64
}

// BlockNotification is a single push-feed delivery.
type BlockNotification struct {
	Hash     string
	Sequence uint32
	Err      error
}

package ingester

const (
	modeCatchup = "catchup"
	modeListen  = "listen"

	// prefetchBatchPerWorker bounds how many heights each read-ahead worker fetches per round.
	prefetchBatchPerWorker = 4

	catchupLogInterval uint64 = 1000
)

// FILE: lixenwraith/lconfig/timing.go
package lconfig

import "time"

// Watcher timing. Intervals are ordered by frequency.
const (
	MinPollInterval      = 100 * time.Millisecond // floor for file stat polling
	ShutdownTimeout      = 100 * time.Millisecond // time Stop waits for the poll loop
	DefaultDebounce      = 500 * time.Millisecond // coalesces bursts of file writes
	DefaultPollInterval  = time.Second
	DefaultReloadTimeout = 5 * time.Second // bound on one rebuild
)

const (
	// debounceSettleMultiplier is how many debounce periods a reload needs to settle
	debounceSettleMultiplier = 3
)

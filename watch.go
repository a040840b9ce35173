// FILE: lixenwraith/lconfig/watch.go
package lconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultMaxWatchers = 100 // Prevent resource exhaustion

// Notifications sent to subscribers besides changed "section:option" keys.
// File notifications carry the path after a colon.
const (
	NotifyFileDeleted        = "file_deleted"
	NotifyPermissionsChanged = "permissions_changed"
	NotifyReloadError        = "reload_error"
	NotifyReloadTimeout      = "reload_timeout"
)

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// PollInterval for file stat checks (minimum 100ms)
	PollInterval time.Duration

	// Debounce duration to avoid rapid reloads
	Debounce time.Duration

	// MaxWatchers limits concurrent subscriber channels
	MaxWatchers int

	// ReloadTimeout bounds a single rebuild
	ReloadTimeout time.Duration

	// VerifyPermissions skips reloads when group/world permission bits change
	VerifyPermissions bool
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:      DefaultPollInterval,
		Debounce:          DefaultDebounce,
		MaxWatchers:       DefaultMaxWatchers,
		ReloadTimeout:     DefaultReloadTimeout,
		VerifyPermissions: true,
	}
}

type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
	mode    os.FileMode
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size(), mode: info.Mode()}
}

// Watcher rebuilds a Config from a Builder whenever one of its files
// changes and publishes the result as a new snapshot. A published *Config is
// never mutated by the Watcher, so readers may use it without locking.
type Watcher struct {
	builder *Builder
	current atomic.Pointer[Config]
	opts    WatchOptions

	mu            sync.RWMutex
	cancel        context.CancelFunc
	done          chan struct{} // closed when the running loop has exited
	subscribers   map[int64]chan string
	subscriberID  atomic.Int64
	debounceTimer *time.Timer

	filesMu sync.Mutex
	files   map[string]fileState

	watching atomic.Bool
	reloadMu sync.Mutex
}

// NewWatcher builds the initial Config from b. The builder is copied, so
// later changes to b do not affect the Watcher. Polling starts with Start.
// Every file a build reads is watched, included files among them.
func NewWatcher(b *Builder, opts WatchOptions) (*Watcher, error) {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}

	builder := b.clone()
	cfg, err := builder.Build()
	if FatalOnly(err) != nil {
		return nil, err
	}

	w := &Watcher{
		builder:     builder,
		opts:        opts,
		subscribers: make(map[int64]chan string),
	}
	w.trackFiles(cfg)
	w.current.Store(cfg)
	return w, nil
}

// Config returns the latest published snapshot.
func (w *Watcher) Config() *Config {
	return w.current.Load()
}

// Start begins polling the builder's files. Calling Start on a running
// Watcher does nothing. After Stop, Start waits for the previous poll loop to
// exit before starting a new one.
func (w *Watcher) Start() {
	for {
		w.mu.Lock()
		if w.cancel != nil {
			w.mu.Unlock()
			return
		}
		prev := w.done
		if prev == nil || isClosed(prev) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			w.cancel = cancel
			w.done = done
			w.watching.Store(true)
			go w.watchLoop(ctx, done)
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()
		// the old loop closes subscribers under mu, so wait unlocked
		<-prev
	}
}

// Stop ends polling and closes every subscriber channel.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	done := w.done
	w.mu.Unlock()

	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(ShutdownTimeout):
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// IsWatching returns true while the poll loop runs
func (w *Watcher) IsWatching() bool {
	return w.watching.Load()
}

// WatcherCount returns the number of active subscriber channels
func (w *Watcher) WatcherCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers)
}

// Subscribe returns a channel receiving the "section:option" keys changed by
// each reload, plus the Notify* events. The channel is closed by Stop. A
// stopped Watcher, or one at its subscriber limit, returns a closed channel.
func (w *Watcher) Subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil || len(w.subscribers) >= w.opts.MaxWatchers {
		ch := make(chan string)
		close(ch)
		return ch
	}

	// Buffered so a slow subscriber does not block reloads
	ch := make(chan string, 10)
	id := w.subscriberID.Add(1)
	w.subscribers[id] = ch
	return ch
}

// Reload rebuilds the Config now, publishes it and notifies subscribers.
// It returns the changed keys, sorted.
func (w *Watcher) Reload(ctx context.Context) ([]string, error) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	return w.reload(ctx)
}

func (w *Watcher) reload(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.ReloadTimeout)
	defer cancel()

	type result struct {
		cfg *Config
		err error
	}
	done := make(chan result, 1)
	go func() {
		cfg, err := w.builder.Build()
		done <- result{cfg, err}
	}()

	select {
	case r := <-done:
		if FatalOnly(r.err) != nil {
			return nil, r.err
		}
		w.trackFiles(r.cfg)
		old := w.current.Swap(r.cfg)
		changed := diffSnapshots(snapshot(old), snapshot(r.cfg))
		r.cfg.logger.Debug("reloaded configuration", "changed", len(changed))
		for _, key := range changed {
			w.notify(key)
		}
		return changed, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", NotifyReloadTimeout, ctx.Err())
	}
}

// watchLoop is the main file watching loop
func (w *Watcher) watchLoop(ctx context.Context, done chan struct{}) {
	defer func() {
		w.closeSubscribers()
		w.watching.Store(false)
		close(done)
	}()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.checkFiles(ctx)
		}
	}
}

// trackFiles makes the watched set the files cfg was built from, plus the
// builder's own file sources. Known files keep their last state so a change
// seen before this reload is not reported twice.
func (w *Watcher) trackFiles(cfg *Config) {
	paths := append(w.builder.Files(), cfg.Files()...)

	w.filesMu.Lock()
	defer w.filesMu.Unlock()
	next := make(map[string]fileState, len(paths))
	for _, path := range paths {
		if state, ok := w.files[path]; ok {
			next[path] = state
			continue
		}
		next[path] = statFile(path)
	}
	w.files = next
}

// checkFiles compares each file against its last known state and schedules
// a debounced reload when any of them changed.
func (w *Watcher) checkFiles(ctx context.Context) {
	var events []string
	changed := false

	w.filesMu.Lock()
	for path, last := range w.files {
		now := statFile(path)
		switch {
		case !now.exists && last.exists:
			w.files[path] = now
			events = append(events, NotifyFileDeleted+":"+path)
			continue
		case !now.exists:
			continue
		}

		// SECURITY: group/world permission changes are reported, not reloaded
		if w.opts.VerifyPermissions && last.exists && (now.mode&0077) != (last.mode&0077) {
			w.files[path] = now
			events = append(events, NotifyPermissionsChanged+":"+path)
			continue
		}

		if !last.exists || !now.modTime.Equal(last.modTime) || now.size != last.size {
			w.files[path] = now
			changed = true
		}
	}
	w.filesMu.Unlock()

	for _, event := range events {
		w.notify(event)
	}
	if !changed {
		return
	}

	// Debounce rapid changes
	w.mu.Lock()
	defer w.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		w.performReload(ctx)
	})
}

// performReload runs a debounced reload unless one is already in progress.
func (w *Watcher) performReload(ctx context.Context) {
	if ctx.Err() != nil || !w.reloadMu.TryLock() {
		return
	}
	defer w.reloadMu.Unlock()

	if _, err := w.reload(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.notify(NotifyReloadTimeout)
			return
		}
		w.notify(fmt.Sprintf("%s:%v", NotifyReloadError, err))
	}
}

// notify sends change notification to all subscribers
func (w *Watcher) notify(key string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.subscribers {
		select {
		case ch <- key:
		default:
			// Channel full, skip
		}
	}
}

func (w *Watcher) closeSubscribers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.subscribers {
		delete(w.subscribers, id)
		close(ch)
	}
}

// snapshot maps "section:option" to the resolved values of every option
// stored in a section, falling back to raw values when resolution fails.
func snapshot(c *Config) map[string][]string {
	out := make(map[string][]string)
	if c == nil {
		return out
	}
	for _, sec := range c.sections {
		for _, opt := range sec.options {
			values, err := c.GetAll(sec.name, opt.key)
			if err != nil {
				values = opt.values
			}
			out[sec.name+":"+opt.key] = values
		}
	}
	return out
}

// diffSnapshots returns the keys added, removed or changed, sorted.
func diffSnapshots(old, next map[string][]string) []string {
	var changed []string
	for key, values := range next {
		if prev, ok := old[key]; !ok || !slices.Equal(prev, values) {
			changed = append(changed, key)
		}
	}
	for key := range old {
		if _, ok := next[key]; !ok {
			changed = append(changed, key)
		}
	}
	slices.Sort(changed)
	return changed
}

package defaults

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/fsrmon/internal/fsr"
	"github.com/five82/fsrmon/internal/metrics"
)

// DefaultRetryDelay is the fixed pause between failed fetches.
const DefaultRetryDelay = time.Second

// Options configure a Loader.
type Options struct {
	// RetryDelay is the pause after a failed fetch; zero uses DefaultRetryDelay.
	RetryDelay time.Duration
	// OnLoad receives each successfully fetched configuration, once per chain.
	OnLoad func(fsr.Defaults)

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Loader fetches the bootstrap configuration, retrying forever until it
// succeeds. At most one fetch chain (request plus backoff timer) runs at a
// time; Reload cancels the running chain before starting a new one.
type Loader struct {
	fetcher fsr.DefaultsFetcher
	opts    Options
	log     zerolog.Logger

	mu     sync.Mutex
	parent context.Context
	cached *fsr.Defaults
	gen    uint64
	cancel context.CancelFunc
	closed bool

	// deliver serializes OnLoad so a newer chain never overtakes an older
	// callback that is still running.
	deliver sync.Mutex
	chains  atomic.Int32
}

// New builds a Loader around fetcher.
func New(fetcher fsr.DefaultsFetcher, opts Options) *Loader {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Loader{
		fetcher: fetcher,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "defaults").Logger(),
	}
}

// Load starts a fetch chain unless one is already running or a configuration
// is cached. It returns immediately. ctx bounds every chain this loader
// starts, including those started later by Reload.
func (l *Loader) Load(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.parent = ctx
	if l.cached != nil || l.cancel != nil {
		return
	}
	l.startLocked(0)
}

// Reload drops the cached configuration, cancels any running chain with its
// pending retry, and starts a fresh one.
func (l *Loader) Reload() {
	l.ReloadAfter(0)
}

// ReloadAfter is Reload with the first fetch deferred by delay. The wait
// belongs to the new chain, so a later Reload or Close cancels it.
func (l *Loader) ReloadAfter(delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.cached = nil
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.log.Info().Dur("delay", delay).Msg("reloading defaults")
	l.startLocked(delay)
}

// Defaults returns the cached configuration.
func (l *Loader) Defaults() (fsr.Defaults, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached == nil {
		return fsr.Defaults{}, false
	}
	return *l.cached, true
}

// Close cancels the running chain. Later Load and Reload calls do nothing.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader) startLocked(delay time.Duration) {
	parent := l.parent
	if parent == nil {
		parent = context.Background()
	}
	l.gen++
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.chains.Add(1)
	go l.chain(ctx, l.gen, delay)
}

func (l *Loader) chain(ctx context.Context, gen uint64, delay time.Duration) {
	defer l.chains.Add(-1)

	if delay > 0 && !sleep(ctx, delay) {
		return
	}

	for attempt := 1; ; attempt++ {
		d, err := l.fetcher.FetchDefaults(ctx)
		l.opts.Metrics.DefaultsFetched(err)
		if err == nil {
			l.complete(gen, d, attempt)
			return
		}
		if ctx.Err() != nil {
			return
		}
		l.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", l.opts.RetryDelay).Msg("fetch defaults failed")

		if !sleep(ctx, l.opts.RetryDelay) {
			return
		}
	}
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (l *Loader) complete(gen uint64, d fsr.Defaults, attempts int) {
	l.deliver.Lock()
	defer l.deliver.Unlock()

	l.mu.Lock()
	if gen != l.gen || l.closed {
		l.mu.Unlock()
		l.log.Debug().Uint64("generation", gen).Msg("discard stale defaults")
		return
	}
	l.cached = &d
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()

	l.log.Info().
		Int("channels", d.Channels()).
		Int("profiles", len(d.Profiles)).
		Str("cur_profile", d.CurProfile).
		Int("attempts", attempts).
		Msg("defaults loaded")
	if l.opts.OnLoad != nil {
		l.opts.OnLoad(d)
	}
}

// activeChains reports running chain goroutines.
func (l *Loader) activeChains() int {
	return int(l.chains.Load())
}

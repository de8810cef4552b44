package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/fsrmon/internal/defaults"
	"github.com/five82/fsrmon/internal/fsr"
	"github.com/five82/fsrmon/internal/metrics"
	"github.com/five82/fsrmon/internal/state"
	"github.com/five82/fsrmon/internal/wsconn"
)

var (
	// ErrNotConnected is returned when no connection exists to send on.
	ErrNotConnected = errors.New("not connected")
	// ErrEmptyProfileName rejects blank profile names before they reach the server.
	ErrEmptyProfileName = errors.New("profile name is empty")
)

// DefaultHistorySize is the ring capacity when none is configured.
const DefaultHistorySize = 1000

// Status summarizes the session for the UI.
type Status int

const (
	Loading Status = iota
	Connecting
	Open
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return "loading"
	}
}

// Options configure a Session.
type Options struct {
	Fetcher     fsr.DefaultsFetcher
	URL         string
	Header      http.Header
	HistorySize int
	RetryDelay  time.Duration

	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	// Conn supplies keepalive and dialer settings for each connection;
	// Router, OnClose, Header, Logger and Metrics are filled in by the session.
	Conn wsconn.Options
}

// Session is the synchronized client state: one history ring, one threshold
// vector and one profile set, kept current by whichever connection is live.
// The shared structures are created once and survive reconnects; only their
// contents are reset.
type Session struct {
	opts    Options
	log     zerolog.Logger
	normLog zerolog.Logger

	ring       *state.Ring
	thresholds *state.Thresholds
	profiles   *state.Profiles
	router     *wsconn.Router
	loader     *defaults.Loader

	mu     sync.Mutex
	ctx    context.Context
	conn   *wsconn.Conn
	gen    uint64 // bumped per dial; closes from older dials are ignored
	closed bool
}

// New builds a Session. Nothing connects until Start.
func New(opts Options) *Session {
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	log := opts.Logger.With().Str("component", "session").Logger()
	s := &Session{
		opts:       opts,
		log:        log,
		normLog:    log.Sample(&zerolog.BurstSampler{Burst: 1, Period: 10 * time.Second}),
		ring:       state.NewRing(opts.HistorySize),
		thresholds: state.NewThresholds(nil),
		profiles:   &state.Profiles{},
		router:     wsconn.NewRouter(),
	}
	s.loader = defaults.New(opts.Fetcher, defaults.Options{
		RetryDelay: opts.RetryDelay,
		OnLoad:     s.onLoad,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
	})
	s.bind()
	return s
}

// Start begins loading defaults and connecting. It returns immediately.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.loader.Load(ctx)
}

// Close stops retries and closes the live connection without triggering a
// reconnect.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.loader.Close()
	if conn != nil {
		_ = conn.Close()
	}
}

// Status reports Loading while no live connection exists.
func (s *Session) Status() Status {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return Loading
	}
	switch conn.State() {
	case wsconn.Open:
		return Open
	case wsconn.Closed:
		return Loading
	default:
		return Connecting
	}
}

// History returns the shared sensor history.
func (s *Session) History() *state.Ring { return s.ring }

// Thresholds returns the shared threshold vector.
func (s *Session) Thresholds() *state.Thresholds { return s.thresholds }

// Profiles returns the shared profile set.
func (s *Session) Profiles() *state.Profiles { return s.profiles }

// Emit sends a message on the live connection.
func (s *Session) Emit(action string, args ...any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("emit %s: %w", action, ErrNotConnected)
	}
	err := conn.Emit(action, args...)
	if errors.Is(err, wsconn.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	return err
}

// SetThreshold clamps value, applies it locally and sends the full vector
// with the changed index. The local edit stands even if sending fails; the
// next resync from the server overwrites it. It returns the applied value.
func (s *Session) SetThreshold(index, value int) (int, error) {
	value = state.Clamp(value)
	vec, err := s.thresholds.SetAndSnapshot(index, value)
	if err != nil {
		return 0, err
	}
	return value, s.Emit(fsr.ActionUpdateThreshold, vec, index)
}

// AdjustThreshold moves one channel by delta, clamped.
func (s *Session) AdjustThreshold(index, delta int) (int, error) {
	cur, ok := s.thresholds.Get(index)
	if !ok {
		return 0, fmt.Errorf("adjust threshold %d: %w", index, state.ErrChannelRange)
	}
	return s.SetThreshold(index, cur+delta)
}

// AddProfile asks the server to store the current thresholds under name.
func (s *Session) AddProfile(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyProfileName
	}
	return s.Emit(fsr.ActionAddProfile, name, s.thresholds.Values(nil))
}

// RemoveProfile asks the server to delete a profile.
func (s *Session) RemoveProfile(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyProfileName
	}
	return s.Emit(fsr.ActionRemoveProfile, name)
}

// ChangeProfile asks the server to activate a profile.
func (s *Session) ChangeProfile(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyProfileName
	}
	return s.Emit(fsr.ActionChangeProfile, name)
}

// PersistThresholds asks the server to save the active thresholds.
func (s *Session) PersistThresholds() error {
	return s.Emit(fsr.ActionPersistThresholds)
}

func (s *Session) bind() {
	s.router.Handle(fsr.ActionValues, func(raw json.RawMessage) error {
		var p fsr.ValuesPayload
		if err := fsr.ParsePayload(raw, &p); err != nil {
			return fmt.Errorf("decode values: %w", err)
		}
		if len(p.Values) == 0 {
			return fmt.Errorf("decode values: %w: no readings", fsr.ErrMalformedMessage)
		}
		if s.ring.Append(fsr.Snapshot(p.Values)) {
			s.opts.Metrics.Normalized()
			s.normLog.Warn().Int("got", len(p.Values)).Int("want", s.ring.Width()).Msg("values width mismatch")
		}
		return nil
	})
	s.router.Handle(fsr.ActionThresholds, func(raw json.RawMessage) error {
		var p fsr.ThresholdsPayload
		if err := fsr.ParsePayload(raw, &p); err != nil {
			return fmt.Errorf("decode thresholds: %w", err)
		}
		if len(p.Thresholds) == 0 {
			return fmt.Errorf("decode thresholds: %w: no thresholds", fsr.ErrMalformedMessage)
		}
		values := p.Thresholds
		if width := s.ring.Width(); len(values) != width {
			s.log.Warn().Int("got", len(values)).Int("want", width).Msg("thresholds width mismatch")
			values = state.Fit(values, width)
		}
		s.thresholds.ReplaceAll(values)
		return nil
	})
	s.router.Handle(fsr.ActionGetProfiles, func(raw json.RawMessage) error {
		var p fsr.ProfilesPayload
		if err := fsr.ParsePayload(raw, &p); err != nil {
			return fmt.Errorf("decode profiles: %w", err)
		}
		s.profiles.SetNames(p.Profiles)
		return nil
	})
	s.router.Handle(fsr.ActionGetCurProfile, func(raw json.RawMessage) error {
		var p fsr.CurProfilePayload
		if err := fsr.ParsePayload(raw, &p); err != nil {
			return fmt.Errorf("decode current profile: %w", err)
		}
		s.profiles.SetCurrent(p.CurProfile)
		return nil
	})
	s.router.Handle(fsr.ActionThresholdsPersisted, func(json.RawMessage) error {
		s.profiles.MarkPersisted(time.Now())
		return nil
	})
}

// onLoad reseeds the shared state from fresh defaults and dials a new
// connection, closing any previous one first.
func (s *Session) onLoad(d fsr.Defaults) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	old := s.conn
	s.conn = nil
	s.gen++
	gen := s.gen
	ctx := s.ctx
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.ring.Reset(d.Channels())
	s.thresholds.ReplaceAll(d.Thresholds)
	s.profiles.Seed(d.Profiles, d.CurProfile)

	connOpts := s.opts.Conn
	connOpts.Router = s.router
	connOpts.OnClose = func(cause error) { s.onClose(gen, cause) }
	connOpts.Header = s.opts.Header
	connOpts.Logger = s.opts.Logger
	connOpts.Metrics = s.opts.Metrics
	conn := wsconn.Dial(ctx, s.opts.URL, connOpts)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()
}

// onClose restarts from defaults. A failed handshake waits one retry delay
// first so an unreachable /ws cannot spin against a healthy /defaults.
// Closes from a connection that was already superseded are ignored.
func (s *Session) onClose(gen uint64, cause error) {
	s.mu.Lock()
	stale := s.closed || gen != s.gen
	s.mu.Unlock()
	if stale {
		s.log.Debug().Err(cause).Uint64("gen", gen).Msg("ignoring close of superseded connection")
		return
	}
	if errors.Is(cause, wsconn.ErrDial) {
		s.log.Warn().Err(cause).Msg("connect failed, reloading defaults")
		s.loader.ReloadAfter(s.retryDelay())
		return
	}
	s.log.Warn().Err(cause).Msg("connection lost, reloading defaults")
	s.loader.Reload()
}

func (s *Session) retryDelay() time.Duration {
	if s.opts.RetryDelay > 0 {
		return s.opts.RetryDelay
	}
	return defaults.DefaultRetryDelay
}

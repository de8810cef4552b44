package wsconn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/five82/fsrmon/internal/fsr"
	"github.com/five82/fsrmon/internal/metrics"
)

var (
	// ErrClosed is returned by Emit once the connection has closed.
	ErrClosed = errors.New("connection closed")
	// ErrDial wraps the OnClose cause when the handshake never completed.
	ErrDial = errors.New("dial")
)

// State is the lifecycle position of a Conn.
type State int32

const (
	Idle State = iota
	Connecting
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const (
	defaultWriteWait  = 10 * time.Second
	defaultPongWait   = 60 * time.Second
	defaultPingPeriod = 30 * time.Second
)

// Options configures a Conn.
type Options struct {
	// Router dispatches inbound messages. Nil ignores every message.
	Router *Router
	// OnClose runs once when the connection closes for any reason other than
	// Close. The argument is the transport error that ended it.
	OnClose func(cause error)
	// Header is sent with the handshake (User-Agent, for example).
	Header http.Header
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer

	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

func (o *Options) applyDefaults() {
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defaultWriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = defaultPongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = min(defaultPingPeriod, o.PongWait*9/10)
	}
}

// Conn is one websocket connection attempt to the pad server. It starts
// connecting as soon as it is created and is never reused: once Closed, the
// owner builds a new Conn.
type Conn struct {
	id   string
	url  string
	opts Options
	log  zerolog.Logger

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	// mu guards the fields below and serializes data writes, so a flush of
	// the connect-time queue and a concurrent Emit cannot interleave.
	mu         sync.Mutex
	ws         *websocket.Conn
	queue      []queued
	cleaningUp bool
}

type queued struct {
	action string
	data   []byte
}

// Dial creates a Conn and starts connecting to url in the background.
// Cancelling ctx closes the connection the same way Close does.
func Dial(ctx context.Context, url string, opts Options) *Conn {
	opts.applyDefaults()
	id := uuid.NewString()
	c := &Conn{
		id:   id,
		url:  url,
		opts: opts,
		log:  opts.Logger.With().Str("component", "wsconn").Str("conn", id).Logger(),
		done: make(chan struct{}),
	}
	c.state.Store(int32(Connecting))

	dialCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.done:
		}
	}()
	go c.run(dialCtx)
	return c
}

// ID identifies the connection in logs.
func (c *Conn) ID() string { return c.id }

// State reports the current lifecycle state.
func (c *Conn) State() State { return State(c.state.Load()) }

// IsReady reports whether messages are written immediately.
func (c *Conn) IsReady() bool { return c.State() == Open }

// Done is closed when the connection reaches Closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Emit sends [action, args...]. While connecting the message is queued and
// flushed in order before the connection reports Open. After close it
// returns ErrClosed.
func (c *Conn) Emit(action string, args ...any) error {
	data, err := fsr.Encode(action, args...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	switch c.State() {
	case Closed:
		c.mu.Unlock()
		return fmt.Errorf("emit %s: %w", action, ErrClosed)
	case Open:
		err = c.write(action, data)
		c.mu.Unlock()
		if err != nil {
			c.abort()
			return fmt.Errorf("emit %s: %w", action, err)
		}
		return nil
	default:
		c.queue = append(c.queue, queued{action: action, data: data})
		c.mu.Unlock()
		c.log.Debug().Str("action", action).Msg("queued until open")
		return nil
	}
}

// Close tears the connection down without invoking OnClose. It is safe to
// call more than once and from any goroutine.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.State() == Closed {
		c.mu.Unlock()
		return nil
	}
	c.cleaningUp = true
	ws := c.ws
	c.mu.Unlock()

	c.cancel()
	if ws != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait))
	}
	c.finish(nil)
	return nil
}

func (c *Conn) run(ctx context.Context) {
	c.log.Info().Str("url", c.url).Msg("connecting")
	ws, _, err := c.opts.Dialer.DialContext(ctx, c.url, c.opts.Header)
	if err != nil {
		if ctx.Err() == nil {
			c.opts.Metrics.ConnectFailed()
		}
		c.finish(fmt.Errorf("%w %s: %w", ErrDial, c.url, err))
		return
	}

	c.mu.Lock()
	if c.cleaningUp || c.State() == Closed {
		c.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.ws = ws
	for _, q := range c.queue {
		if err := c.write(q.action, q.data); err != nil {
			c.mu.Unlock()
			c.finish(fmt.Errorf("flush %s: %w", q.action, err))
			return
		}
	}
	flushed := len(c.queue)
	c.queue = nil
	c.state.Store(int32(Open))
	c.mu.Unlock()

	c.opts.Metrics.Connected()
	c.log.Info().Int("flushed", flushed).Msg("connection open")

	go c.keepalive(ws)
	c.read(ws)
}

func (c *Conn) read(ws *websocket.Conn) {
	_ = ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.finish(fmt.Errorf("read: %w", err))
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		c.dispatch(data)
	}
}

func (c *Conn) dispatch(data []byte) {
	action, payload, err := fsr.Decode(data)
	if err != nil {
		c.opts.Metrics.Malformed()
		c.log.Warn().Err(err).Int("bytes", len(data)).Msg("skip frame")
		return
	}
	c.opts.Metrics.Received(action)

	handled, err := c.opts.Router.Dispatch(action, payload)
	switch {
	case !handled:
		c.log.Debug().Str("action", action).Msg("no handler")
	case err != nil:
		c.log.Warn().Err(err).Str("action", action).Msg("handler failed")
	}
}

func (c *Conn) keepalive(ws *websocket.Conn) {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait)); err != nil {
				c.log.Warn().Err(err).Msg("ping failed")
				_ = ws.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// write sends one data frame. Callers hold c.mu.
func (c *Conn) write(action string, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	c.opts.Metrics.Sent(action)
	return nil
}

// abort closes the socket after a write failure; the reader then observes
// the error and finishes the connection.
func (c *Conn) abort() {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws != nil {
		_ = ws.Close()
	}
}

// finish moves the connection to Closed exactly once.
func (c *Conn) finish(cause error) {
	c.mu.Lock()
	prev := c.State()
	if prev == Closed {
		c.mu.Unlock()
		return
	}
	c.state.Store(int32(Closed))
	intentional := c.cleaningUp
	dropped := len(c.queue)
	c.queue = nil
	ws := c.ws
	c.mu.Unlock()

	c.cancel()
	if ws != nil {
		_ = ws.Close()
	}
	close(c.done)

	if prev == Open {
		c.opts.Metrics.Disconnected(!intentional)
	}
	if dropped > 0 {
		c.opts.Metrics.Dropped(dropped)
		c.log.Warn().Int("dropped", dropped).Msg("discarded messages queued before open")
	}

	if intentional {
		c.log.Info().Msg("connection closed")
		return
	}
	c.log.Warn().Err(cause).Str("state", prev.String()).Msg("connection lost")
	if c.opts.OnClose != nil {
		c.opts.OnClose(cause)
	}
}

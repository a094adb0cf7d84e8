// Package client implements the chat UI: prompt, chat log, status bars,
// command routing and the frame loop that renders them by diffing grids.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/simple-chat/logging"
	"github.com/lixenwraith/simple-chat/network"
	"github.com/lixenwraith/simple-chat/terminal"
)

// Conn is the byte pipe to the chat server
type Conn interface {
	Send(p []byte) error
	// TryReceive returns (nil, nil) when nothing is pending and network.ErrClosed on EOF
	TryReceive() ([]byte, error)
	RemoteAddr() string
	Close() error
}

// Dialer opens a connection to a resolved host:port address
type Dialer func(ctx context.Context, addr string) (Conn, error)

// Notifier is told about every received message
type Notifier interface {
	Notify()
}

// Options configures a Client; zero values fall back to defaults
type Options struct {
	Title          string
	Tick           time.Duration
	DefaultPort    int
	ConnectTimeout time.Duration
	Dial           Dialer
	Notifier       Notifier
	Commands       []Command
}

// State of the frame loop
type State uint8

const (
	StateRunning State = iota
	StateQuitting
)

// Client owns all UI state; it is only touched from the loop goroutine
type Client struct {
	term   terminal.Terminal
	opts   Options
	state  State
	prompt *Prompt
	log    *ChatLog
	router *Router
	conn   Conn

	// dial is the connect attempt in flight, if any
	dial *pendingDial

	// curr is rendered each tick and diffed against prev, the last displayed frame
	curr, prev    *terminal.Grid
	width, height int
}

// New creates a client sized to term
func New(term terminal.Terminal, opts Options) *Client {
	if opts.Title == "" {
		opts.Title = "simple-chat"
	}
	if opts.Tick <= 0 {
		opts.Tick = 16 * time.Millisecond
	}
	if opts.DefaultPort <= 0 {
		opts.DefaultPort = network.DefaultPort
	}
	if opts.Dial == nil {
		cfg := network.DefaultConfig()
		opts.Dial = func(ctx context.Context, addr string) (Conn, error) {
			c, err := network.Dial(ctx, addr, cfg)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	if opts.Commands == nil {
		opts.Commands = DefaultCommands()
	}

	w, h := term.Size()
	return &Client{
		term:   term,
		opts:   opts,
		prompt: NewPrompt(),
		log:    NewChatLog(),
		router: NewRouter(opts.Commands...),
		curr:   terminal.NewGrid(w, h),
		prev:   terminal.NewGrid(w, h),
		width:  w,
		height: h,
	}
}

// State returns the loop state
func (c *Client) State() State { return c.state }

// Prompt returns the input line
func (c *Client) Prompt() *Prompt { return c.prompt }

// Log returns the chat log
func (c *Client) Log() *ChatLog { return c.log }

// Connected reports whether a connection is open
func (c *Client) Connected() bool { return c.conn != nil }

// Connecting reports whether a /connect is still dialing
func (c *Client) Connecting() bool { return c.dial != nil }

// Run draws the blank screen and ticks until quit or ctx is done
// The connection is closed on return
func (c *Client) Run(ctx context.Context) error {
	defer c.closeConn()
	defer c.abandonDial()

	if err := c.redraw(); err != nil {
		return err
	}

	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()

	for {
		if err := c.Tick(); err != nil {
			return err
		}
		if c.state == StateQuitting {
			logging.Info("client", "quit requested")
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one frame: input, network, render, present
func (c *Client) Tick() error {
	if err := c.pollInput(); err != nil {
		return err
	}
	if c.state == StateQuitting {
		return nil
	}
	c.pollDial()
	c.pollConnection()
	return c.present()
}

// --- Input ---

// pollInput applies every pending resize and at most one other event
func (c *Client) pollInput() error {
	for {
		ev, ok := c.term.PollEvent()
		if !ok {
			return nil
		}

		switch ev.Type {
		case terminal.EventResize:
			if err := c.resize(ev.Width, ev.Height); err != nil {
				return err
			}
			continue
		case terminal.EventKey:
			c.handleKey(ev)
		case terminal.EventClosed:
			logging.Warn("client", "terminal input closed")
			c.quit()
		case terminal.EventError:
			return errors.Wrap(ev.Err, "terminal input")
		}
		return nil
	}
}

func (c *Client) handleKey(ev terminal.Event) {
	switch ev.Key {
	case terminal.KeyCtrlC:
		c.quit()
	case terminal.KeyLeft, terminal.KeyCtrlH:
		c.prompt.Left()
	case terminal.KeyRight, terminal.KeyCtrlL:
		c.prompt.Right()
	case terminal.KeyHome, terminal.KeyCtrlA:
		c.prompt.Home()
	case terminal.KeyEnd, terminal.KeyCtrlE:
		c.prompt.End()
	case terminal.KeyBackspace:
		c.prompt.Backspace()
	case terminal.KeyDelete:
		c.prompt.Delete()
	case terminal.KeyEscape:
		c.prompt.Clear()
	case terminal.KeyEnter:
		c.submit()
	case terminal.KeyRune:
		if ev.Modifiers&terminal.ModAlt == 0 && ev.Rune >= 0x20 {
			c.prompt.Insert(ev.Rune)
		}
	}
}

func (c *Client) submit() {
	if c.router.Route(c, c.prompt.String()) {
		c.prompt.Clear()
	}
}

// resize rebuilds both grids and repaints from blank
func (c *Client) resize(w, h int) error {
	if w <= 0 || h <= 0 {
		w, h = c.term.Size()
	}
	logging.Debug("client", "resize %dx%d", w, h)
	c.width, c.height = w, h
	c.curr = terminal.NewGrid(w, h)
	c.prev = terminal.NewGrid(w, h)
	return c.redraw()
}

// redraw makes the physical screen match prev unconditionally
func (c *Client) redraw() error {
	sink := c.term.Sink()
	if err := terminal.Flush(sink, c.prev); err != nil {
		return errors.Wrap(err, "redraw")
	}
	return nil
}

// --- Network ---

func (c *Client) pollConnection() {
	if c.conn == nil {
		return
	}

	data, err := c.conn.TryReceive()
	switch {
	case errors.Is(err, network.ErrClosed):
		c.log.Info(fmt.Sprintf("Server %s closed the connection", c.conn.RemoteAddr()))
		c.closeConn()
	case err != nil:
		logging.Error("client", err, "receive from %s", c.conn.RemoteAddr())
		c.log.Error(fmt.Sprintf("Connection to %s failed: %v", c.conn.RemoteAddr(), err))
		c.closeConn()
	case data != nil:
		c.log.Plain(string(data))
		if c.opts.Notifier != nil {
			c.opts.Notifier.Notify()
		}
	}
}

// sendMessage reports whether line was delivered
func (c *Client) sendMessage(line string) bool {
	if c.dial != nil {
		c.log.Info(fmt.Sprintf("Still connecting to %s", c.dial.addr))
		return false
	}
	if c.conn == nil {
		c.log.Info("You are offline. Use /connect <ip> to join a server")
		return false
	}

	if err := c.conn.Send([]byte(line)); err != nil {
		logging.Error("client", err, "send to %s", c.conn.RemoteAddr())
		c.log.Error(fmt.Sprintf("Could not send message: %v", err))
		c.closeConn()
		return false
	}
	c.log.Plain(line)
	return true
}

// dialResult is what a background dial hands back to the loop
type dialResult struct {
	conn Conn
	err  error
}

// pendingDial tracks one background dial; result receives exactly one value
type pendingDial struct {
	addr   string
	cancel context.CancelFunc
	result chan dialResult
}

// connect starts dialing in the background so frames keep flowing
func (c *Client) connect(arg string) {
	if c.conn != nil {
		c.log.Error(fmt.Sprintf("Already connected to %s. Use /disconnect first", c.conn.RemoteAddr()))
		return
	}
	if c.dial != nil {
		c.log.Error(fmt.Sprintf("Already connecting to %s. Use /disconnect to cancel", c.dial.addr))
		return
	}

	addr := network.ResolveAddress(arg, c.opts.DefaultPort)
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.opts.ConnectTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.opts.ConnectTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	d := &pendingDial{addr: addr, cancel: cancel, result: make(chan dialResult, 1)}
	c.dial = d
	logging.Debug("client", "dialing %s", addr)

	go func(dial Dialer) {
		conn, err := dial(ctx, addr)
		d.result <- dialResult{conn: conn, err: err}
	}(c.opts.Dial)
}

// pollDial picks up a finished dial without waiting for one
func (c *Client) pollDial() {
	if c.dial == nil {
		return
	}

	var res dialResult
	select {
	case res = <-c.dial.result:
	default:
		return
	}

	addr := c.dial.addr
	c.dial.cancel()
	c.dial = nil

	if res.err != nil {
		logging.Error("client", res.err, "connect to %s", addr)
		c.log.Error(fmt.Sprintf("Could not connect to %s: %v", addr, res.err))
		return
	}
	c.conn = res.conn
	logging.Info("client", "connected to %s", addr)
	c.log.Info("Connected to " + addr)
}

// abandonDial cancels a dial in flight; a connection it still produces is closed
func (c *Client) abandonDial() {
	d := c.dial
	if d == nil {
		return
	}
	c.dial = nil
	d.cancel()

	go func() {
		if res := <-d.result; res.conn != nil {
			logging.Debug("client", "closing abandoned connection to %s", d.addr)
			res.conn.Close()
		}
	}()
}

func (c *Client) disconnect() {
	if c.dial != nil {
		addr := c.dial.addr
		c.abandonDial()
		c.log.Info("Cancelled connection to " + addr)
		return
	}
	if c.conn == nil {
		c.log.Info("You are not connected")
		return
	}
	addr := c.conn.RemoteAddr()
	c.closeConn()
	c.log.Info("Disconnected from " + addr)
}

func (c *Client) closeConn() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		logging.Warn("client", "close %s: %v", c.conn.RemoteAddr(), err)
	}
	c.conn = nil
}

func (c *Client) quit() {
	c.state = StateQuitting
}

// --- Rendering ---

func (c *Client) statusLabel() string {
	if c.dial != nil {
		return "Connecting: " + c.dial.addr
	}
	if c.conn == nil {
		return "Offline"
	}
	return "Online: " + c.conn.RemoteAddr()
}

// render lays out the frame into curr
func (c *Client) render() {
	g := c.curr
	g.Clear()

	StatusBar(g, c.opts.Title, 0, 0, c.width)
	c.log.Render(g, 0, 1)
	if c.height >= 2 {
		StatusBar(g, c.statusLabel(), 0, c.height-2, c.width)
	}
	if c.height >= 1 {
		c.prompt.Render(g, 0, c.height-1, c.width)
	}
}

// present sends the difference from the last frame and parks the cursor on the prompt
func (c *Client) present() error {
	c.render()

	sink := c.term.Sink()
	terminal.ApplyPatches(sink, c.curr.Diff(c.prev))
	if c.height >= 1 {
		c.prompt.SyncCursor(sink, 0, c.height-1, c.width)
	}
	if err := sink.Flush(); err != nil {
		return errors.Wrap(err, "present frame")
	}

	c.curr, c.prev = c.prev, c.curr
	return nil
}

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anticomputer/corfu/internal/logger"
	"github.com/anticomputer/corfu/internal/utils"
	"github.com/anticomputer/corfu/pkg/candidate"
	"github.com/anticomputer/corfu/pkg/config"
	"github.com/anticomputer/corfu/pkg/host"
	"github.com/anticomputer/corfu/pkg/popup"
	"github.com/anticomputer/corfu/pkg/provider"
	"github.com/charmbracelet/log"
)

// Status tags a committed completion.
type Status string

const (
	// StatusExact marks a commit where the very first recomputation
	// produced a single unexpandable match.
	StatusExact Status = "exact"
	// StatusFinished marks an explicit or later commit.
	StatusFinished Status = "finished"
)

// ErrNoSelection is returned by commands that require a highlighted
// candidate when the prompt is selected instead.
var ErrNoSelection = errors.New("no candidate selected")

// ErrNoData is returned when an external lookup yields nothing.
var ErrNoData = errors.New("no data available for candidate")

// errStaleFetch marks a fetch whose input snapshot moved on while it
// was suspended. The result is discarded, never applied.
var errStaleFetch = errors.New("stale fetch result discarded")

// ExitFn is invoked on commit with the final field text.
type ExitFn func(finalText string, status Status)

// EchoFn receives deferred candidate documentation.
type EchoFn func(doc string)

// Options configures an Engine.
type Options struct {
	Rows        int
	Margin      int
	MinWidth    int
	MaxWidth    int
	ScreenWidth int

	Cycle          bool
	PreselectFirst bool

	Auto       bool
	AutoPrefix int
	AutoDelay  time.Duration

	// QuitNoMatch quits the session when a refresh yields nothing.
	// With a nonzero NoMatchLinger the session survives as long as
	// it started within that window.
	QuitNoMatch   bool
	NoMatchLinger time.Duration

	EchoDelay time.Duration

	// Sort is the fallback ordering when provider metadata names
	// none. nil means candidate.DefaultSort.
	Sort candidate.SortFn

	// ContinueCommands keep the session alive on an emptied field.
	// nil means DefaultContinueCommands.
	ContinueCommands []string

	OnExit ExitFn
	OnEcho EchoFn
}

// DefaultOptions mirrors the builtin config defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// OptionsFromConfig maps a loaded config onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	quit, linger := cfg.NoMatchPolicy()
	return Options{
		Rows:           cfg.Popup.Rows,
		Margin:         cfg.Popup.Margin,
		MinWidth:       cfg.Popup.MinWidth,
		MaxWidth:       cfg.Popup.MaxWidth,
		Cycle:          cfg.Session.Cycle,
		PreselectFirst: cfg.Session.PreselectFirst,
		Auto:           cfg.Session.Auto,
		AutoPrefix:     cfg.Session.AutoPrefix,
		AutoDelay:      time.Duration(cfg.Session.AutoDelayMs) * time.Millisecond,
		QuitNoMatch:    quit,
		NoMatchLinger:  linger,
		EchoDelay:      250 * time.Millisecond,
		ContinueCommands: append([]string(nil),
			append(cfg.Session.ContinueCommands, DefaultContinueCommands...)...),
	}
}

// Engine is the session lifecycle: an Idle/Active state machine
// wired to one host surface and one provider. All state transitions
// run under one mutex; host events and timer callbacks serialize on
// it, so a Session is never mutated concurrently.
type Engine struct {
	mu      sync.Mutex
	surface host.Surface
	prov    provider.Provider
	opts    Options
	fmtr    *popup.Formatter
	logger  *log.Logger

	sess        *Session
	fetchCancel context.CancelFunc
	autoTimer   *time.Timer
	echoTimer   *time.Timer
	echoShown   bool
	frame       *popup.Frame
	noMatch     bool
	undoOpen    bool
}

// NewEngine creates an Idle engine over the given surface and
// provider.
func NewEngine(surface host.Surface, prov provider.Provider, opts Options) *Engine {
	if opts.Rows < 1 {
		opts.Rows = 1
	}
	if opts.Margin > opts.Rows/2 {
		opts.Margin = opts.Rows / 2
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	if opts.ContinueCommands == nil {
		opts.ContinueCommands = DefaultContinueCommands
	}
	return &Engine{
		surface: surface,
		prov:    prov,
		opts:    opts,
		fmtr:    popup.NewFormatter(opts.MinWidth, opts.MaxWidth, opts.ScreenWidth),
		logger:  logger.New("session"),
	}
}

// Active reports whether a session is live.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess != nil
}

// Frame returns the current popup frame, if one should be shown.
func (e *Engine) Frame() (popup.Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frame == nil {
		return popup.Frame{}, false
	}
	return *e.frame, true
}

// NoMatch reports whether the current frame is the no-match
// indicator rather than a candidate list.
func (e *Engine) NoMatch() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.noMatch
}

// Preview returns the field text with the highlighted candidate
// substituted in place, for the host's in-place preview overlay.
func (e *Engine) Preview() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return "", false
	}
	c, ok := e.sess.Selected()
	if !ok {
		return "", false
	}
	t := e.sess.snapshotText
	return t[:e.sess.base] + c.Text + t[e.sess.snapshotCursor:], true
}

// Session exposes the live session for inspection, or nil when Idle.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Start explicitly opens a session. Starting while already Active
// first runs full Quit semantics, then establishes fresh state.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.start(time.Now())
}

func (e *Engine) start(ts time.Time) {
	if e.sess != nil {
		e.quit()
	}
	e.surface.BeginUndo()
	e.undoOpen = true
	e.sess = newSession(ts)
	e.update(CmdStart)
}

// NotifyEdit is the host's edit event hook. While Active it drives
// the update loop; while Idle it arms the auto-trigger timer. At
// most one pending auto-trigger exists; every edit reschedules it.
func (e *Engine) NotifyEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess != nil {
		e.update(CmdEdit)
		return
	}
	if !e.opts.Auto {
		return
	}
	if e.autoTimer != nil {
		e.autoTimer.Stop()
		e.autoTimer = nil
	}
	text, cursor := e.surface.Span()
	word := utils.CurrentWord(text[:min(cursor, len(text))])
	if len(word) < e.opts.AutoPrefix {
		return
	}
	e.autoTimer = time.AfterFunc(e.opts.AutoDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.sess != nil {
			return
		}
		// A newer edit reschedules; only fire on the snapshot that
		// armed the timer.
		cur, c := e.surface.Span()
		if cur != text || c != cursor {
			return
		}
		e.start(time.Now())
	})
}

// Quit discards the session. Idempotent.
func (e *Engine) Quit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.quit()
}

func (e *Engine) quit() {
	if e.sess == nil {
		return
	}
	if e.fetchCancel != nil {
		e.fetchCancel()
		e.fetchCancel = nil
	}
	e.stopEcho()
	e.echoShown = false
	e.frame = nil
	e.noMatch = false
	if e.undoOpen {
		e.surface.AmalgamateUndo()
		e.undoOpen = false
	}
	e.sess = nil
	e.logger.Debug("Session closed")
}

// update is the per-event transition table. Branches run in order:
// recompute guard, first-refresh no-candidates, unique unexpandable
// match, live popup, no-match linger, default quit.
func (e *Engine) update(cmd string) {
	s := e.sess
	if s == nil {
		return
	}
	text, cursor := e.surface.Span()
	if cursor > len(text) {
		cursor = len(text)
	}
	// A fresh session always recomputes: its zero-value snapshot can
	// coincide with an empty field.
	changed := s.refreshes == 0 || text != s.snapshotText || cursor != s.snapshotCursor
	if changed {
		if text == "" && !matchesCommand(e.opts.ContinueCommands, cmd) {
			e.quit()
			return
		}
		if err := e.recompute(text, cursor); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, errStaleFetch) {
				// Superseded by a newer input event; that event owns
				// the session now.
				return
			}
			e.logger.Errorf("Candidate fetch failed: %v", err)
			e.quit()
			return
		}
	}
	e.decide()
}

// recompute runs the interruptible fetch plus the candidate
// pipeline, replacing the session's candidate state wholesale. It
// never leaves the session half-updated: any error discards the
// whole result.
func (e *Engine) recompute(text string, cursor int) error {
	if e.fetchCancel != nil {
		e.fetchCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.fetchCancel = cancel

	res, err := e.prov.Fetch(ctx, text, cursor)
	if err != nil {
		return err
	}
	if cur, c := e.surface.Span(); cur != text || c != cursor {
		return errStaleFetch
	}
	if res.Base < 0 || res.Base > cursor {
		return errors.New("provider returned base outside field")
	}

	sortFn := res.Meta.Sort
	if sortFn == nil && !res.Meta.PreserveOrder {
		sortFn = e.opts.Sort
		if sortFn == nil {
			sortFn = candidate.DefaultSort
		}
	}
	proc := candidate.Process(res.Items, text[res.Base:cursor], candidate.Options{
		FilePath:       res.Meta.Category == provider.CategoryFile,
		PreselectFirst: e.opts.PreselectFirst,
		Sort:           sortFn,
		ValidExact:     res.Meta.ValidExact,
	})

	s := e.sess
	s.snapshotText = text
	s.snapshotCursor = cursor
	s.base = res.Base
	s.candidates = proc.Candidates
	s.total = proc.Total
	s.preselect = proc.Preselect
	s.index = proc.Preselect
	s.meta = res.Meta
	s.refreshes++
	e.logger.Debug("Recomputed candidates",
		"total", s.total, "base", s.base, "preselect", s.preselect)
	return nil
}

// decide picks the post-recomputation branch.
func (e *Engine) decide() {
	s := e.sess
	field := s.snapshotText[s.base:s.snapshotCursor]

	switch {
	case s.refreshes == 1 && s.total == 0:
		e.quit()

	case s.snapshotText != "" && s.total == 1 && s.candidates[0].Text == field:
		status := StatusFinished
		if s.refreshes == 1 {
			status = StatusExact
		}
		e.commit(status)

	case s.total > 0:
		e.render()
		e.armEcho()

	case !e.opts.QuitNoMatch || e.withinNoMatchWindow():
		fr := e.fmtr.NoMatch()
		e.frame = &fr
		e.noMatch = true
		e.stopEcho()

	default:
		e.quit()
	}
}

// withinNoMatchWindow checks the duration form of quit-no-match.
// Selection activity holds the session open regardless of the
// window.
func (e *Engine) withinNoMatchWindow() bool {
	if e.opts.NoMatchLinger <= 0 {
		return false
	}
	s := e.sess
	if s.holdNoMatch {
		return true
	}
	return !s.started.IsZero() && time.Since(s.started) < e.opts.NoMatchLinger
}

// render recomputes scroll and formats the visible window.
func (e *Engine) render() {
	s := e.sess
	rows := e.opts.Rows
	s.scroll = popup.Scroll(s.scroll, s.index, s.total, rows, e.opts.Margin)
	barOff, barLen, hasBar := popup.Bar(s.scroll, s.total, rows)

	last := min(s.scroll+rows, s.total)
	visible := make([]popup.Row, 0, last-s.scroll)
	for i := s.scroll; i < last; i++ {
		c := s.candidates[i]
		if s.meta.Annotate != nil {
			c = s.meta.Annotate(c)
		}
		text := c.Text
		if s.meta.Highlight != nil {
			text = s.meta.Highlight(text)
		}
		visible = append(visible, popup.Row{
			Prefix:     c.Prefix,
			Text:       text,
			Suffix:     c.Suffix,
			Deprecated: c.Deprecated,
		})
	}

	fr := e.fmtr.Format(visible, s.index-s.scroll, barOff, barLen, hasBar)
	e.frame = &fr
	e.noMatch = false
}

// armEcho re-arms the deferred documentation echo. The timer is
// cancelled on every refresh and re-armed only while nothing is
// currently displayed.
func (e *Engine) armEcho() {
	e.stopEcho()
	if e.opts.OnEcho == nil || e.opts.EchoDelay <= 0 || e.echoShown {
		return
	}
	s := e.sess
	if s.meta.Document == nil {
		return
	}
	c, ok := s.Selected()
	if !ok {
		return
	}
	document := s.meta.Document
	text := c.Text
	echo := e.opts.OnEcho
	e.echoTimer = time.AfterFunc(e.opts.EchoDelay, func() {
		doc := document(text)
		if doc == "" {
			return
		}
		e.mu.Lock()
		e.echoShown = true
		e.mu.Unlock()
		echo(doc)
	})
}

func (e *Engine) stopEcho() {
	if e.echoTimer != nil {
		e.echoTimer.Stop()
		e.echoTimer = nil
	}
}

// commit replaces the field span with base-prefix plus the selected
// candidate (or keeps the literal input when nothing is selected),
// amalgamates the session's undo group, invokes the exit callback,
// and quits.
func (e *Engine) commit(status Status) {
	s := e.sess
	text := s.snapshotText
	final := text
	cursor := s.snapshotCursor
	if c, ok := s.Selected(); ok {
		final = text[:s.base] + c.Text + text[s.snapshotCursor:]
		cursor = s.base + len(c.Text)
	}
	e.surface.ReplaceSpan(final, cursor)
	if e.undoOpen {
		e.surface.AmalgamateUndo()
		e.undoOpen = false
	}
	if e.opts.OnExit != nil {
		e.opts.OnExit(final, status)
	}
	e.quit()
}

// move runs a selection op and re-renders without refetching.
func (e *Engine) move(f func(s *Session)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return
	}
	f(e.sess)
	if e.sess.total > 0 {
		e.render()
		e.armEcho()
	}
}

// Next selects the following candidate.
func (e *Engine) Next() { e.move(func(s *Session) { s.Next(1, e.opts.Cycle) }) }

// Previous selects the preceding candidate.
func (e *Engine) Previous() { e.move(func(s *Session) { s.Next(-1, e.opts.Cycle) }) }

// First toggles between the first candidate and the prompt.
func (e *Engine) First() { e.move(func(s *Session) { s.First() }) }

// Last selects the final candidate.
func (e *Engine) Last() { e.move(func(s *Session) { s.Last() }) }

// PageDown moves the selection down one window.
func (e *Engine) PageDown() { e.move(func(s *Session) { s.Page(1, e.opts.Rows) }) }

// PageUp moves the selection up one window.
func (e *Engine) PageUp() { e.move(func(s *Session) { s.Page(-1, e.opts.Rows) }) }

// Insert inserts the highlighted candidate into the field and keeps
// the session alive.
func (e *Engine) Insert() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return ErrNoSelection
	}
	s := e.sess
	c, ok := s.Selected()
	if !ok {
		return ErrNoSelection
	}
	text := s.snapshotText
	final := text[:s.base] + c.Text + text[s.snapshotCursor:]
	e.surface.ReplaceSpan(final, s.base+len(c.Text))
	e.update(CmdInsert)
	return nil
}

// Finish commits the highlighted candidate, or the literal input
// when the prompt is selected, and closes the session.
func (e *Engine) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return
	}
	e.commit(StatusFinished)
}

// CompleteOrCycle commits a sole candidate or an explicit selection,
// otherwise advances the selection.
func (e *Engine) CompleteOrCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return
	}
	s := e.sess
	if s.total == 1 {
		s.index = 0
		e.commit(StatusFinished)
		return
	}
	if _, ok := s.Selected(); ok {
		e.commit(StatusFinished)
		return
	}
	s.Next(1, e.opts.Cycle)
	e.render()
}

// Reset reverts the selection to the preselect default. When nothing
// is selected it instead cancels every edit made since the session
// began and opens a fresh undo group. A second reset in immediate
// succession with nothing to revert quits the session.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return
	}
	s := e.sess
	if s.index != s.preselect {
		s.Goto(s.preselect)
		s.lastAction = actionGotoFirst
		if s.total > 0 {
			e.render()
		}
		return
	}
	if s.lastAction == actionReset {
		e.quit()
		return
	}
	if e.undoOpen {
		e.surface.CancelUndo()
		e.surface.BeginUndo()
	}
	s.lastAction = actionReset
	e.update(CmdReset)
}

// ShowDocumentation returns documentation for the highlighted
// candidate. It fails when nothing is selected or no documentation
// exists.
func (e *Engine) ShowDocumentation() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return "", ErrNoSelection
	}
	c, ok := e.sess.Selected()
	if !ok {
		return "", ErrNoSelection
	}
	if e.sess.meta.Document == nil {
		return "", ErrNoData
	}
	doc := e.sess.meta.Document(c.Text)
	if doc == "" {
		return "", ErrNoData
	}
	return doc, nil
}

// ShowLocation returns the definition location for the highlighted
// candidate. It fails when nothing is selected or the lookup yields
// nothing.
func (e *Engine) ShowLocation() (provider.Location, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return provider.Location{}, ErrNoSelection
	}
	c, ok := e.sess.Selected()
	if !ok {
		return provider.Location{}, ErrNoSelection
	}
	if e.sess.meta.Locate == nil {
		return provider.Location{}, ErrNoData
	}
	loc, ok := e.sess.meta.Locate(c.Text)
	if !ok {
		return provider.Location{}, ErrNoData
	}
	return loc, nil
}

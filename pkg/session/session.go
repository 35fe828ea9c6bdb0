// Package session owns the completion session: the mutable state for
// one completion run, the selection cursor over the candidate list,
// and the Idle/Active lifecycle driving recomputation, popup
// visibility, and the exit protocol.
package session

import (
	"time"

	"github.com/anticomputer/corfu/pkg/candidate"
	"github.com/anticomputer/corfu/pkg/provider"
)

// actionKind tags the last selection action so toggle and
// double-press semantics work without inspecting host command
// history.
type actionKind int

const (
	actionNone actionKind = iota
	actionMove
	actionGotoFirst
	actionReset
)

// Session is the state of one active completion run. It is owned
// exclusively by the Engine and exists only while the lifecycle is
// Active.
type Session struct {
	snapshotText   string
	snapshotCursor int

	base       int
	candidates []candidate.Candidate
	total      int
	index      int
	preselect  int
	scroll     int
	meta       provider.Metadata

	refreshes   int
	started time.Time
	holdNoMatch bool
	lastAction  actionKind
}

func newSession(started time.Time) *Session {
	return &Session{index: -1, preselect: -1, started: started}
}

// Index returns the selection cursor: a candidate index, or a
// negative value when the prompt itself is selected.
func (s *Session) Index() int { return s.index }

// Total returns the candidate count.
func (s *Session) Total() int { return s.total }

// ScrollOffset returns the first visible candidate index.
func (s *Session) ScrollOffset() int { return s.scroll }

// Base returns the byte offset candidates are appended onto.
func (s *Session) Base() int { return s.base }

// Candidates returns the ordered candidate list.
func (s *Session) Candidates() []candidate.Candidate { return s.candidates }

// Selected returns the highlighted candidate, if any.
func (s *Session) Selected() (candidate.Candidate, bool) {
	if s.index >= 0 && s.index < s.total {
		return s.candidates[s.index], true
	}
	return candidate.Candidate{}, false
}

// Goto moves the selection to target, clamped to
// [preselect, total-1]. Selection activity cancels any pending
// no-match auto-quit countdown.
func (s *Session) Goto(target int) {
	s.index = max(s.preselect, min(target, s.total-1))
	s.holdNoMatch = true
	s.lastAction = actionMove
}

// Next moves the selection by n (negative for previous). With
// cycling enabled and the prompt participating (preselect -1) the
// cycle space has total+1 slots including the prompt slot.
func (s *Session) Next(n int, cycle bool) {
	switch {
	case s.total == 0:
		s.index = -1
		s.holdNoMatch = true
		s.lastAction = actionMove
	case cycle && s.preselect < 0:
		s.index = floorMod(s.index+n+1, s.total+1) - 1
		s.holdNoMatch = true
		s.lastAction = actionMove
	case cycle:
		s.index = floorMod(s.index+n, s.total)
		s.holdNoMatch = true
		s.lastAction = actionMove
	default:
		s.Goto(s.index + n)
	}
}

// First toggles between the first candidate and the prompt: go to
// index 0 when beyond it, otherwise back to the prompt.
func (s *Session) First() {
	if s.index > 0 {
		s.Goto(0)
	} else {
		s.Goto(-1)
	}
	s.lastAction = actionGotoFirst
}

// Last selects the final candidate.
func (s *Session) Last() {
	s.Goto(s.total - 1)
}

// Page moves the selection by n windows of rows candidates, clamped
// at the list ends. Paging never cycles.
func (s *Session) Page(n, rows int) {
	s.Goto(s.index + n*rows)
}

// floorMod is the modulo that follows the divisor's sign, so
// negative movement wraps instead of sticking at -1.
func floorMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

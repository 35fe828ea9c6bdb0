// Package host defines the text-surface contract the completion
// engine talks to, plus an in-memory Buffer implementation used by
// the CLI demo and tests.
package host

// Surface is the host's editable text span. The engine reads the
// span, replaces it on commit, and brackets each session in an undo
// group so the whole session collapses into one undo unit.
type Surface interface {
	// Span returns the current text and cursor offset.
	Span() (text string, cursor int)

	// ReplaceSpan replaces the whole span and moves the cursor.
	ReplaceSpan(text string, cursor int)

	// BeginUndo opens an undo group at the current state.
	BeginUndo()

	// AmalgamateUndo closes the innermost group, keeping all edits
	// made inside it as a single unit.
	AmalgamateUndo()

	// CancelUndo closes the innermost group and reverts every edit
	// made inside it.
	CancelUndo()
}

type checkpoint struct {
	text   string
	cursor int
}

// Buffer is a minimal in-memory Surface with a checkpoint-based undo
// journal.
type Buffer struct {
	text        string
	cursor      int
	checkpoints []checkpoint
}

// NewBuffer returns a Buffer holding the given text with the cursor
// at its end.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, cursor: len(text)}
}

func (b *Buffer) Span() (string, int) {
	return b.text, b.cursor
}

func (b *Buffer) ReplaceSpan(text string, cursor int) {
	b.text = text
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	b.cursor = cursor
}

// Insert types s at the cursor, the way an edit event would.
func (b *Buffer) Insert(s string) {
	b.text = b.text[:b.cursor] + s + b.text[b.cursor:]
	b.cursor += len(s)
}

// DeleteBack removes n bytes before the cursor.
func (b *Buffer) DeleteBack(n int) {
	if n > b.cursor {
		n = b.cursor
	}
	b.text = b.text[:b.cursor-n] + b.text[b.cursor:]
	b.cursor -= n
}

func (b *Buffer) BeginUndo() {
	b.checkpoints = append(b.checkpoints, checkpoint{b.text, b.cursor})
}

func (b *Buffer) AmalgamateUndo() {
	if n := len(b.checkpoints); n > 0 {
		b.checkpoints = b.checkpoints[:n-1]
	}
}

func (b *Buffer) CancelUndo() {
	if n := len(b.checkpoints); n > 0 {
		cp := b.checkpoints[n-1]
		b.checkpoints = b.checkpoints[:n-1]
		b.text = cp.text
		b.cursor = cp.cursor
	}
}

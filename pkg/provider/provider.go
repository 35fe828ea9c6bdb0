// Package provider defines the candidate source contract and ships
// four implementations: a patricia-trie dictionary, a file-path
// walker, a msgpack subprocess client, and a static list for tests.
package provider

import (
	"context"

	"github.com/anticomputer/corfu/pkg/candidate"
)

// Category flags how a candidate batch should be post-processed.
const (
	CategoryDefault = ""
	CategoryFile    = "file"
)

// Location is the result of a show-location lookup: either a file
// position or raw text to display.
type Location struct {
	File string
	Line int
	Text string
}

// Metadata is the per-batch capability bag. Every hook is optional.
// Hooks are injected into the session at creation time; the core
// never rebinds shared behavior.
type Metadata struct {
	// Category is CategoryFile for file-path completion.
	Category string

	// Sort reorders the batch. When nil and PreserveOrder is false
	// the engine falls back to its configured default sort.
	Sort candidate.SortFn

	// PreserveOrder keeps provider order even when Sort is nil,
	// for providers that pre-rank their results.
	PreserveOrder bool

	// Annotate attaches prefix/suffix affixation to a candidate for
	// display. Called only on the visible slice.
	Annotate func(c candidate.Candidate) candidate.Candidate

	// Highlight returns the display string for a candidate. Called
	// lazily, only on the visible slice.
	Highlight func(text string) string

	// ValidExact reports whether the field text as a whole is
	// already a valid completion.
	ValidExact func(field string) bool

	// Document returns documentation for a candidate, or "" when
	// none exists.
	Document func(text string) string

	// Locate returns the definition location for a candidate.
	Locate func(text string) (Location, bool)
}

// Result is one raw candidate batch.
type Result struct {
	// Base is the byte offset into the field text that candidates
	// are appended onto when inserted.
	Base  int
	Items []candidate.Candidate
	Meta  Metadata
}

// Provider produces candidate batches for a field snapshot. Fetch
// must be safely callable repeatedly and cheaply abortable: when ctx
// is cancelled mid-fetch it returns ctx.Err() rather than stale data.
type Provider interface {
	Fetch(ctx context.Context, text string, cursor int) (*Result, error)
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context, text string, cursor int) (*Result, error)

func (f Func) Fetch(ctx context.Context, text string, cursor int) (*Result, error) {
	return f(ctx, text, cursor)
}

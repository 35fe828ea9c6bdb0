package provider

import (
	"context"

	"github.com/anticomputer/corfu/internal/utils"
	"github.com/anticomputer/corfu/pkg/candidate"
)

// Static serves a fixed word list, completing the word at the cursor.
// Mainly for tests and the CLI demo's fallback mode.
type Static struct {
	Words []string
	Meta  Metadata
}

// NewStatic returns a provider over the given words.
func NewStatic(words ...string) *Static {
	return &Static{Words: words}
}

// Fetch returns every word, leaving prefix filtering and reordering
// to the candidate pipeline.
func (s *Static) Fetch(ctx context.Context, text string, cursor int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cursor < 0 || cursor > len(text) {
		cursor = len(text)
	}
	word := utils.CurrentWord(text[:cursor])

	items := make([]candidate.Candidate, len(s.Words))
	for i, w := range s.Words {
		items[i] = candidate.Candidate{Text: w}
	}

	meta := s.Meta
	if meta.ValidExact == nil {
		meta.ValidExact = func(field string) bool {
			w := utils.CurrentWord(field)
			for _, word := range s.Words {
				if word == w {
					return true
				}
			}
			return false
		}
	}

	return &Result{Base: cursor - len(word), Items: items, Meta: meta}, nil
}

// Package candidate implements the candidate pipeline: raw provider
// batches go in, an ordered, deduplicated, reordered list plus a
// preselect decision comes out. The pipeline is pure; session state
// lives elsewhere.
package candidate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/anticomputer/corfu/internal/utils"
)

// PathSeparator is the separator used for file-path candidates.
// Providers normalize platform separators to this before handing
// candidates to the pipeline.
const PathSeparator = "/"

// Candidate is an opaque completion string plus optional display
// annotations. Identity is string equality on Text.
type Candidate struct {
	Text       string
	Prefix     string
	Suffix     string
	Deprecated bool
}

// SortFn orders candidates. A nil SortFn preserves provider order.
type SortFn func(a, b Candidate) bool

// DefaultSort orders by increasing string length, ties broken
// lexicographically.
func DefaultSort(a, b Candidate) bool {
	if len(a.Text) != len(b.Text) {
		return len(a.Text) < len(b.Text)
	}
	return a.Text < b.Text
}

// DefaultIgnoredFiles matches backup and version-control artifacts
// that file-path completion drops by default.
var DefaultIgnoredFiles = regexp.MustCompile(`(~|#|\.(bak|orig|rej|swp|tmp|o|elc|pyc|class))$`)

// Options controls one run of the pipeline.
type Options struct {
	// FilePath marks the batch as file-path completion, enabling the
	// ignored-extension filter and the directory short-circuit.
	FilePath bool

	// PreselectFirst enables default-selecting the first candidate
	// instead of the prompt.
	PreselectFirst bool

	// Sort reorders candidates after filtering. nil keeps provider order.
	Sort SortFn

	// Ignored overrides DefaultIgnoredFiles when non-nil.
	Ignored *regexp.Regexp

	// ValidExact reports whether the field text as a whole is already
	// a valid completion. Consulted only for the preselect decision.
	ValidExact func(field string) bool
}

// Processed is the pipeline output.
type Processed struct {
	Candidates []Candidate
	Total      int
	Preselect  int // -1 prompt, 0 first candidate
}

// Process runs the full pipeline over one raw batch. Steps run in
// order, each over the previous step's output:
// file filter, sort, adjacent dedup, prefix partition, directory
// short-circuit, exact-match front, preselect.
func Process(items []Candidate, field string, opts Options) Processed {
	word := utils.CurrentWord(field)

	cands := items
	if opts.FilePath {
		cands = filterFiles(cands, opts.Ignored)
	}
	if opts.Sort != nil {
		sorted := make([]Candidate, len(cands))
		copy(sorted, cands)
		sort.SliceStable(sorted, func(i, j int) bool {
			return opts.Sort(sorted[i], sorted[j])
		})
		cands = sorted
	}
	cands = dedupAdjacent(cands)
	cands = partitionPrefix(cands, word)
	if opts.FilePath && !strings.HasSuffix(word, PathSeparator) {
		cands = moveToFront(cands, word+PathSeparator)
	}
	cands = moveToFront(cands, word)

	return Processed{
		Candidates: cands,
		Total:      len(cands),
		Preselect:  preselect(cands, field, word, opts),
	}
}

// filterFiles drops ignored artifacts and the self/parent directory
// markers. If the filter would remove everything, the unfiltered set
// is kept: this filter alone never empties the batch.
func filterFiles(cands []Candidate, ignored *regexp.Regexp) []Candidate {
	if ignored == nil {
		ignored = DefaultIgnoredFiles
	}
	kept := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		base := strings.TrimSuffix(c.Text, PathSeparator)
		if base == "." || base == ".." || strings.HasSuffix(base, PathSeparator+".") || strings.HasSuffix(base, PathSeparator+"..") {
			continue
		}
		if ignored.MatchString(c.Text) {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return cands
	}
	return kept
}

// dedupAdjacent removes consecutive duplicates only. An equal string
// reappearing non-adjacently is kept.
func dedupAdjacent(cands []Candidate) []Candidate {
	if len(cands) < 2 {
		return cands
	}
	out := make([]Candidate, 1, len(cands))
	out[0] = cands[0]
	for _, c := range cands[1:] {
		if c.Text != out[len(out)-1].Text {
			out = append(out, c)
		}
	}
	return out
}

// partitionPrefix moves candidates whose first len(word) bytes equal
// word before all others, preserving relative order within each
// partition.
func partitionPrefix(cands []Candidate, word string) []Candidate {
	if word == "" {
		return cands
	}
	matches := make([]Candidate, 0, len(cands))
	var rest []Candidate
	for _, c := range cands {
		if utils.HasWordPrefix(c.Text, word) {
			matches = append(matches, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(matches, rest...)
}

// moveToFront moves the first candidate exactly equal to text to
// index 0, keeping everything else in order.
func moveToFront(cands []Candidate, text string) []Candidate {
	for i, c := range cands {
		if c.Text == text {
			if i == 0 {
				return cands
			}
			out := make([]Candidate, 0, len(cands))
			out = append(out, c)
			out = append(out, cands[:i]...)
			return append(out, cands[i+1:]...)
		}
	}
	return cands
}

// preselect decides between prompt (-1) and first candidate (0).
// The prompt wins when preselect-first is off, the list is empty, or
// the literal field is already a valid completion that is not simply
// the top candidate (including the file-path directory form).
func preselect(cands []Candidate, field, word string, opts Options) int {
	if !opts.PreselectFirst || len(cands) == 0 {
		return -1
	}
	if opts.ValidExact != nil && opts.ValidExact(field) &&
		word != cands[0].Text &&
		!(opts.FilePath && word+PathSeparator == cands[0].Text) {
		return -1
	}
	return 0
}

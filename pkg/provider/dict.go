package provider

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/anticomputer/corfu/internal/utils"
	"github.com/anticomputer/corfu/pkg/candidate"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Dict is a frequency-ranked dictionary provider backed by a
// patricia trie. Batches come back ordered by decreasing frequency
// with PreserveOrder set, so the engine keeps the ranking.
type Dict struct {
	trie         *patricia.Trie
	totalWords   int
	maxFrequency int
	minFreq      int
	minFreqShort int
}

// NewDict creates an empty dictionary. minFreq is the frequency
// floor for suggestions; minFreqShort is the stricter floor applied
// to prefixes of two characters or less and to repetitive input.
func NewDict(minFreq, minFreqShort int) *Dict {
	return &Dict{
		trie:         patricia.NewTrie(),
		minFreq:      minFreq,
		minFreqShort: minFreqShort,
	}
}

// AddWord adds a word with its frequency.
func (d *Dict) AddWord(word string, frequency int) {
	d.trie.Insert(patricia.Prefix(strings.ToLower(word)), frequency)
	d.totalWords++
	if frequency > d.maxFrequency {
		d.maxFrequency = frequency
	}
}

// LoadWordList loads a plain-text word list: one "word frequency"
// pair per line, frequency optional (defaults to 1). maxWords 0
// loads everything.
func (d *Dict) LoadWordList(path string, maxWords int) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	loaded := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if maxWords > 0 && loaded >= maxWords {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		freq := 1
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				freq = n
			}
		}
		d.AddWord(fields[0], freq)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	log.Debugf("Loaded %d words from %s", loaded, path)
	return nil
}

// Stats returns basic dictionary statistics.
func (d *Dict) Stats() map[string]int {
	return map[string]int{
		"totalWords":   d.totalWords,
		"maxFrequency": d.maxFrequency,
	}
}

// Fetch returns frequency-ranked completions for the word at the
// cursor. The trie visit checks ctx between entries so a cancelled
// fetch aborts instead of returning stale data.
func (d *Dict) Fetch(ctx context.Context, text string, cursor int) (*Result, error) {
	if cursor < 0 || cursor > len(text) {
		cursor = len(text)
	}
	word := utils.CurrentWord(text[:cursor])
	base := cursor - len(word)

	lower := strings.ToLower(word)
	threshold := d.minFreq
	if len(lower) <= 2 || utils.IsRepetitive(lower) {
		threshold = d.minFreqShort
	}

	type ranked struct {
		word string
		freq int
	}
	var hits []ranked
	if utils.IsValidInput(lower) {
		err := d.trie.VisitSubtree(patricia.Prefix(lower), func(p patricia.Prefix, item patricia.Item) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry := string(p)
			if entry == lower {
				return nil
			}
			freq := 1
			switch v := item.(type) {
			case int:
				freq = v
			case int32:
				freq = int(v)
			case uint32:
				freq = int(v)
			case float64:
				freq = int(v)
			default:
				log.Errorf("Unknown item type: %T for word %s", item, p)
			}
			if freq < threshold {
				return nil
			}
			hits = append(hits, ranked{applyCapitalization(entry, word), freq})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].freq > hits[j].freq
	})

	items := make([]candidate.Candidate, len(hits))
	for i, h := range hits {
		items[i] = candidate.Candidate{Text: h.word}
	}

	freqOf := make(map[string]int, len(hits))
	for _, h := range hits {
		freqOf[h.word] = h.freq
	}

	return &Result{
		Base:  base,
		Items: items,
		Meta: Metadata{
			PreserveOrder: true,
			Annotate: func(c candidate.Candidate) candidate.Candidate {
				if freq, ok := freqOf[c.Text]; ok {
					c.Suffix = fmt.Sprintf(" %d", freq)
				}
				return c
			},
			ValidExact: func(field string) bool {
				w := strings.ToLower(utils.CurrentWord(field))
				return w != "" && d.trie.Get(patricia.Prefix(w)) != nil
			},
		},
	}, nil
}

// applyCapitalization copies the typed prefix's capitalization
// pattern onto a dictionary word.
func applyCapitalization(word, typed string) string {
	if typed == strings.ToLower(typed) {
		return word
	}
	runes := []rune(word)
	for i, r := range typed {
		if i >= len(runes) {
			break
		}
		if r >= 'A' && r <= 'Z' && runes[i] >= 'a' && runes[i] <= 'z' {
			runes[i] = runes[i] - 'a' + 'A'
		}
	}
	return string(runes)
}

package provider

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/anticomputer/corfu/internal/utils"
	"github.com/anticomputer/corfu/pkg/candidate"
)

// Files completes file paths relative to Root. Candidates carry the
// directory part of the typed word so the pipeline's directory
// short-circuit and exact-match rules see full word-relative paths.
type Files struct {
	Root string
}

// NewFiles returns a file-path provider rooted at root ("" means the
// process working directory).
func NewFiles(root string) *Files {
	return &Files{Root: root}
}

// Fetch lists the directory named by the word at the cursor and
// returns entries matching its last segment. Directories get a
// trailing separator. A directory that does not exist yields an
// empty batch, not an error.
func (f *Files) Fetch(ctx context.Context, text string, cursor int) (*Result, error) {
	if cursor < 0 || cursor > len(text) {
		cursor = len(text)
	}
	word := utils.CurrentWord(text[:cursor])
	base := cursor - len(word)

	dirPart := ""
	partial := word
	if i := strings.LastIndex(word, candidate.PathSeparator); i >= 0 {
		dirPart = word[:i+1]
		partial = word[i+1:]
	}

	root := f.Root
	if root == "" {
		root = "."
	}
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dirPart)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var items []candidate.Candidate
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if partial != "" && !utils.HasWordPrefix(name, partial) {
			continue
		}
		text := dirPart + name
		if entry.IsDir() {
			text += candidate.PathSeparator
		}
		items = append(items, candidate.Candidate{Text: text})
	}

	return &Result{
		Base:  base,
		Items: items,
		Meta: Metadata{
			Category: CategoryFile,
			Sort:     candidate.DefaultSort,
			ValidExact: func(field string) bool {
				w := utils.CurrentWord(field)
				if w == "" {
					return false
				}
				_, err := os.Stat(filepath.Join(root, filepath.FromSlash(w)))
				return err == nil
			},
		},
	}, nil
}

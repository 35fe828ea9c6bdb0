package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func testTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src", "internal"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"main.go", "main_test.go", "README.md", "src/app.go"} {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func itemTexts(res *Result) []string {
	out := make([]string, len(res.Items))
	for i, c := range res.Items {
		out[i] = c.Text
	}
	return out
}

func TestFilesFetch(t *testing.T) {
	f := NewFiles(testTree(t))
	res, err := f.Fetch(context.Background(), "main", 4)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if res.Meta.Category != CategoryFile {
		t.Errorf("Category = %q", res.Meta.Category)
	}
	got := itemTexts(res)
	if len(got) != 2 {
		t.Fatalf("items = %v", got)
	}
	for _, text := range got {
		if text != "main.go" && text != "main_test.go" {
			t.Errorf("unexpected item %q", text)
		}
	}
}

// directories complete with a trailing separator so a follow-up
// session descends into them
func TestFilesFetchDirectory(t *testing.T) {
	f := NewFiles(testTree(t))
	res, err := f.Fetch(context.Background(), "sr", 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got := itemTexts(res)
	if len(got) != 1 || got[0] != "src/" {
		t.Errorf("items = %v, want [src/]", got)
	}
}

func TestFilesFetchInsideDirectory(t *testing.T) {
	f := NewFiles(testTree(t))
	text := "src/"
	res, err := f.Fetch(context.Background(), text, len(text))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if res.Base != 0 {
		t.Errorf("Base = %d, want 0", res.Base)
	}
	got := itemTexts(res)
	expectedSet := map[string]bool{"src/app.go": true, "src/internal/": true}
	if len(got) != 2 {
		t.Fatalf("items = %v", got)
	}
	for _, text := range got {
		if !expectedSet[text] {
			t.Errorf("unexpected item %q", text)
		}
	}
}

func TestFilesFetchMissingDirectory(t *testing.T) {
	f := NewFiles(testTree(t))
	res, err := f.Fetch(context.Background(), "nope/x", 6)
	if err != nil {
		t.Fatalf("Fetch should not fail on a missing directory: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("items = %v, want none", res.Items)
	}
}

func TestStaticFetch(t *testing.T) {
	s := NewStatic("alpha", "beta", "gamma")
	res, err := s.Fetch(context.Background(), "irrelevant", 10)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Items) != 3 {
		t.Errorf("items = %v", res.Items)
	}
}

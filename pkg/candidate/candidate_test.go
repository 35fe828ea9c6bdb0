package candidate

import (
	"testing"
)

func words(ws ...string) []Candidate {
	out := make([]Candidate, len(ws))
	for i, w := range ws {
		out[i] = Candidate{Text: w}
	}
	return out
}

func texts(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Text
	}
	return out
}

func equal(a []string, b []Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i].Text {
			return false
		}
	}
	return true
}

// the partition step moves prefix matches first but keeps relative
// order inside each half
func TestProcessPartition(t *testing.T) {
	testCases := []struct {
		field       string
		input       []string
		expected    []string
		description string
	}{
		{"fo", []string{"bar", "foo", "baz", "food"}, []string{"foo", "food", "bar", "baz"}, "Prefix matches move first"},
		{"fo", []string{"foo", "food"}, []string{"foo", "food"}, "All match, order kept"},
		{"fo", []string{"bar", "baz"}, []string{"bar", "baz"}, "No matches, order kept"},
		{"", []string{"bar", "foo"}, []string{"bar", "foo"}, "Empty word partitions nothing"},
		{"fo", []string{}, []string{}, "Empty input"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := Process(words(tc.input...), tc.field, Options{})
			if !equal(tc.expected, got.Candidates) {
				t.Errorf("field %q: expected %v, got %v", tc.field, tc.expected, texts(got.Candidates))
			}
			if got.Total != len(tc.expected) {
				t.Errorf("Total = %d, want %d", got.Total, len(tc.expected))
			}
		})
	}
}

func TestDefaultSort(t *testing.T) {
	got := Process(words("banana", "fig", "apple", "kiwi"), "", Options{Sort: DefaultSort})
	expected := []string{"fig", "kiwi", "apple", "banana"}
	if !equal(expected, got.Candidates) {
		t.Errorf("expected %v, got %v", expected, texts(got.Candidates))
	}
}

// only consecutive duplicates collapse; a string reappearing after
// the partition step is kept
func TestDedupAdjacent(t *testing.T) {
	testCases := []struct {
		input       []string
		expected    []string
		description string
	}{
		{[]string{"a", "a", "b"}, []string{"a", "b"}, "Adjacent pair collapses"},
		{[]string{"a", "b", "a"}, []string{"a", "b", "a"}, "Non-adjacent duplicate kept"},
		{[]string{"a", "a", "a"}, []string{"a"}, "Run collapses to one"},
		{[]string{"a"}, []string{"a"}, "Single entry"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := dedupAdjacent(words(tc.input...))
			if !equal(tc.expected, got) {
				t.Errorf("expected %v, got %v", tc.expected, texts(got))
			}
		})
	}
}

// dedup must not mutate the input slice it was handed
func TestDedupAdjacentNoAliasing(t *testing.T) {
	in := words("a", "b", "b", "c")
	dedupAdjacent(in)
	if in[2].Text != "b" {
		t.Errorf("input slice mutated: %v", texts(in))
	}
}

func TestFilterFiles(t *testing.T) {
	testCases := []struct {
		input       []string
		expected    []string
		description string
	}{
		{[]string{"main.go", "main.go~", "a.bak"}, []string{"main.go"}, "Backup artifacts dropped"},
		{[]string{".", "..", "src/"}, []string{"src/"}, "Dot entries dropped"},
		{[]string{"lib/.", "lib/.."}, []string{"lib/.", "lib/.."}, "Filter never empties the batch"},
		{[]string{"x.pyc", "x.elc"}, []string{"x.pyc", "x.elc"}, "All ignored keeps originals"},
		{[]string{"a.go", "b.go"}, []string{"a.go", "b.go"}, "Nothing to drop"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := filterFiles(words(tc.input...), nil)
			if !equal(tc.expected, got) {
				t.Errorf("expected %v, got %v", tc.expected, texts(got))
			}
		})
	}
}

// typing a directory name surfaces "name/" before its contents
func TestProcessDirectoryShortCircuit(t *testing.T) {
	got := Process(words("srcdir", "src/", "src.go"), "src", Options{FilePath: true})
	if got.Candidates[0].Text != "src/" {
		t.Errorf("expected 'src/' first, got %v", texts(got.Candidates))
	}
}

func TestProcessExactMatchFront(t *testing.T) {
	got := Process(words("foobar", "foo", "food"), "foo", Options{})
	if got.Candidates[0].Text != "foo" {
		t.Errorf("expected exact match first, got %v", texts(got.Candidates))
	}
}

func TestPreselect(t *testing.T) {
	valid := func(field string) bool { return field == "foo" || field == "src" }

	testCases := []struct {
		field       string
		input       []string
		opts        Options
		expected    int
		description string
	}{
		{"fo", []string{"foo"}, Options{PreselectFirst: true}, 0, "First candidate preselected"},
		{"fo", []string{"foo"}, Options{}, -1, "Preselect-first disabled"},
		{"fo", []string{}, Options{PreselectFirst: true}, -1, "Empty list selects prompt"},
		{"foo", []string{"foo", "foobar"}, Options{PreselectFirst: true, ValidExact: valid}, 0, "Valid exact that is the top candidate"},
		{"foo", []string{"foobar", "foobaz"}, Options{PreselectFirst: true, ValidExact: valid}, -1, "Valid exact not in list selects prompt"},
		{"src", []string{"src/", "src.go"}, Options{PreselectFirst: true, FilePath: true, ValidExact: valid}, 0, "Directory form counts as top candidate"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := Process(words(tc.input...), tc.field, tc.opts)
			if got.Preselect != tc.expected {
				t.Errorf("Preselect = %d, want %d", got.Preselect, tc.expected)
			}
		})
	}
}

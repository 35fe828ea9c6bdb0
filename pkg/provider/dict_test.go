package provider

import (
	"context"
	"testing"
)

func testDict() *Dict {
	d := NewDict(20, 24)
	d.AddWord("the", 2000)
	d.AddWord("there", 1000)
	d.AddWord("their", 950)
	d.AddWord("theory", 400)
	d.AddWord("thin", 300)
	d.AddWord("rare", 10) // below threshold
	return d
}

func TestDictFetchRanking(t *testing.T) {
	d := testDict()
	res, err := d.Fetch(context.Background(), "the", 3)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if res.Base != 0 {
		t.Errorf("Base = %d, want 0", res.Base)
	}
	if !res.Meta.PreserveOrder {
		t.Error("dictionary ranking must preserve order")
	}
	// exact entry "the" is excluded, rest ranked by frequency
	expected := []string{"there", "their", "theory"}
	if len(res.Items) != len(expected) {
		t.Fatalf("got %d items, want %d", len(res.Items), len(expected))
	}
	for i, want := range expected {
		if res.Items[i].Text != want {
			t.Errorf("item %d = %q, want %q", i, res.Items[i].Text, want)
		}
	}
}

func TestDictFetchBase(t *testing.T) {
	d := testDict()
	res, err := d.Fetch(context.Background(), "say the", 7)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Base != 4 {
		t.Errorf("Base = %d, want 4", res.Base)
	}
}

func TestDictFrequencyThreshold(t *testing.T) {
	d := testDict()
	res, err := d.Fetch(context.Background(), "rar", 3)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("below-threshold word leaked: %v", res.Items)
	}
}

func TestDictShortPrefixThreshold(t *testing.T) {
	d := NewDict(20, 2000)
	d.AddWord("their", 950)
	d.AddWord("the", 2001)

	// two-char prefix uses the stricter floor
	res, err := d.Fetch(context.Background(), "th", 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Text != "the" {
		t.Errorf("items = %v, want only the high-frequency word", res.Items)
	}
}

func TestDictCapitalization(t *testing.T) {
	d := testDict()
	res, err := d.Fetch(context.Background(), "The", 3)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	for _, item := range res.Items {
		if item.Text[0] != 'T' {
			t.Errorf("capitalization not applied: %q", item.Text)
		}
	}
}

func TestDictValidExact(t *testing.T) {
	d := testDict()
	res, err := d.Fetch(context.Background(), "the", 3)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !res.Meta.ValidExact("the") {
		t.Error("known word should be a valid exact match")
	}
	if res.Meta.ValidExact("thex") {
		t.Error("unknown word reported valid")
	}
}

func TestDictAnnotate(t *testing.T) {
	d := testDict()
	res, err := d.Fetch(context.Background(), "thei", 4)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Items) == 0 {
		t.Fatal("no items")
	}
	annotated := res.Meta.Annotate(res.Items[0])
	if annotated.Suffix != " 950" {
		t.Errorf("Suffix = %q, want %q", annotated.Suffix, " 950")
	}
}

func TestDictCancelledFetch(t *testing.T) {
	d := testDict()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Fetch(ctx, "the", 3); err == nil {
		t.Error("cancelled context should abort the fetch")
	}
}

func TestDictInvalidInput(t *testing.T) {
	d := testDict()
	res, err := d.Fetch(context.Background(), "12345", 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("digit-only prefix should yield nothing: %v", res.Items)
	}
}

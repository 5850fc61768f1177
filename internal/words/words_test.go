package words

import "testing"

func TestAllReturnsStableOrder(t *testing.T) {
	first := All()
	second := All()

	if len(first) != len(second) {
		t.Fatalf("Expected identical lengths, got %d and %d", len(first), len(second))
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Entry %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	original := list[0]

	list[0] = Entry{Word: "mutated", Translation: "mutated"}

	fresh := All()
	if fresh[0] != original {
		t.Errorf("Mutating the returned slice leaked into the vocabulary: got %+v, want %+v", fresh[0], original)
	}
}

func TestCount(t *testing.T) {
	if Count() != len(All()) {
		t.Errorf("Count() = %d, want %d", Count(), len(All()))
	}

	if Count() == 0 {
		t.Error("Vocabulary must not be empty")
	}
}

func TestByIndex(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		wantOK bool
	}{
		{name: "first word", index: 0, wantOK: true},
		{name: "last word", index: Count() - 1, wantOK: true},
		{name: "negative index", index: -1, wantOK: false},
		{name: "past the end", index: Count(), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := ByIndex(tt.index)
			if ok != tt.wantOK {
				t.Fatalf("ByIndex(%d) ok = %v, want %v", tt.index, ok, tt.wantOK)
			}
			if ok && entry.Word == "" {
				t.Errorf("ByIndex(%d) returned an empty word", tt.index)
			}
		})
	}
}

func TestFind(t *testing.T) {
	entry, ok := Find("cá")
	if !ok {
		t.Fatal("Expected to find 'cá'")
	}
	if entry.Translation != "fish" {
		t.Errorf("Expected translation 'fish', got %q", entry.Translation)
	}

	if _, ok := Find("xyzzy"); ok {
		t.Error("Expected lookup miss for unknown word")
	}
}

func TestEntriesAreWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for i, e := range All() {
		if e.Word == "" {
			t.Errorf("Entry %d has an empty word", i)
		}
		if e.Translation == "" {
			t.Errorf("Entry %d (%q) has an empty translation", i, e.Word)
		}
		if seen[e.Word] {
			t.Errorf("Duplicate word %q at index %d", e.Word, i)
		}
		seen[e.Word] = true
	}
}

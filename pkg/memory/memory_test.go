package memory

import "testing"

func buildAmharic() *Trie {
	t := New()
	for _, p := range []Pair{
		{Code: "a", Output: "እ"},
		{Code: "f", Output: "ፍ"},
		{Code: "ri", Output: "ሪ"},
		{Code: "m", Output: "ም"},
	} {
		t.Insert([]rune(p.Code), p.Output)
	}
	return t
}

func TestCursorHitAndState(t *testing.T) {
	trie := buildAmharic()
	cur := trie.NewCursor(64)

	st := cur.Hit('a')
	if !st.HasOutput || st.Output != "እ" {
		t.Fatalf("expected output እ at depth 1, got %+v", st)
	}

	cur.Clear()
	st = cur.Hit('r')
	if st.HasOutput {
		t.Fatalf("expected no output for partial sequence 'r', got %+v", st)
	}
	st = cur.Hit('i')
	if !st.HasOutput || st.Output != "ሪ" {
		t.Fatalf("expected output ሪ after 'ri', got %+v", st)
	}
}

func TestCursorMissRetriesFromRoot(t *testing.T) {
	trie := buildAmharic()
	cur := trie.NewCursor(64)

	cur.Hit('a')
	st := cur.Hit('f')
	if !st.HasOutput || st.Output != "ፍ" {
		t.Fatalf("expected 'f' to restart recognition from root after missing on 'a', got %+v", st)
	}
	if !st.Restarted {
		t.Fatalf("expected Restarted=true after a miss-then-retry, got %+v", st)
	}

	trie2 := New()
	trie2.Insert([]rune("ae"), "æ")
	trie2.Insert([]rune("aei"), "ǣ")
	cur2 := trie2.NewCursor(64)
	cur2.Hit('a')
	st = cur2.Hit('e')
	if st.Restarted {
		t.Fatalf("expected Restarted=false when continuing a known child, got %+v", st)
	}
	st = cur2.Hit('i')
	if st.Restarted || !st.HasOutput || st.Output != "ǣ" {
		t.Fatalf("expected continuation into 'aei' with no restart, got %+v", st)
	}
}

func TestCursorUndo(t *testing.T) {
	trie := buildAmharic()
	cur := trie.NewCursor(64)
	cur.Hit('r')
	cur.Hit('i')

	out, ok := cur.Undo()
	if !ok || out != "ሪ" {
		t.Fatalf("expected to undo ሪ, got %q ok=%v", out, ok)
	}
	if cur.Depth() != 2 {
		t.Fatalf("expected depth 2 after undo (root + 'r'), got %d", cur.Depth())
	}
	_, ok = cur.Undo()
	if ok {
		t.Fatalf("undoing a non-accepting node should report ok=false")
	}
	if cur.Depth() != 1 {
		t.Fatalf("expected depth 1 after undoing back to root, got %d", cur.Depth())
	}
	_, ok = cur.Undo()
	if ok || cur.Depth() != 1 {
		t.Fatalf("undo past the root must be a no-op, got depth %d ok=%v", cur.Depth(), ok)
	}
}

func TestCursorClearAndIsEmpty(t *testing.T) {
	trie := buildAmharic()
	cur := trie.NewCursor(64)
	if !cur.IsEmpty() {
		t.Fatalf("fresh cursor should be empty")
	}
	cur.Hit('a')
	if cur.IsEmpty() {
		t.Fatalf("cursor should not be empty after a hit")
	}
	cur.Clear()
	if !cur.IsEmpty() {
		t.Fatalf("cursor should be empty after Clear")
	}
	st := cur.State()
	if st.Depth != 0 || st.HasOutput {
		t.Fatalf("cleared cursor should have depth 0 and no output, got %+v", st)
	}
}

func TestCursorCapacityEviction(t *testing.T) {
	trie := New()
	trie.Insert([]rune("abcdefgh"), "overflow")
	cur := trie.NewCursor(4)

	for _, r := range "abcdefgh" {
		cur.Hit(r)
	}
	if cur.Depth() > 4 {
		t.Fatalf("cursor depth should be capped at capacity, got %d", cur.Depth())
	}
	top := cur.top()
	if top.Code != 'h' {
		t.Fatalf("top of stack must remain the most recent hit, got %q", top.Code)
	}
}

func TestTrieLoadSkipsMalformedRows(t *testing.T) {
	trie := New()
	warnings := trie.Load([]Pair{
		{Code: "a", Output: "A"},
		{Code: "", Output: "B"},
		{Code: "c", Output: ""},
	})
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings for malformed rows, got %d: %v", len(warnings), warnings)
	}
	cur := trie.NewCursor(8)
	st := cur.Hit('a')
	if st.Output != "A" {
		t.Fatalf("well-formed row must still load, got %+v", st)
	}
}

func TestToSequence(t *testing.T) {
	trie := buildAmharic()
	cur := trie.NewCursor(8)
	cur.Hit('r')
	cur.Hit('i')
	seq := cur.ToSequence()
	if len(seq) != 3 || seq[0] != rootCode || seq[1] != 'r' || seq[2] != 'i' {
		t.Fatalf("unexpected sequence %v", seq)
	}
}

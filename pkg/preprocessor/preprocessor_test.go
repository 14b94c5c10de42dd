package preprocessor

import (
	"testing"
	"time"

	"github.com/afrim-go/afrim/pkg/memory"
)

func amharicTrie() *memory.Trie {
	t := memory.New()
	t.Insert([]rune("a"), "እ")
	t.Insert([]rune("f"), "ፍ")
	t.Insert([]rune("ri"), "ሪ")
	t.Insert([]rune("m"), "ም")
	return t
}

func collect(cmds []Command) []Command { return cmds }

func TestAmharicRoundTrip(t *testing.T) {
	p := New(amharicTrie(), Options{})

	got := collect(p.Process(Char('a')))
	want := []Command{cmdCommit("እ")}
	assertCommands(t, "a", got, want)

	got = p.Process(Char('f'))
	assertCommands(t, "f", got, []Command{cmdCommit("ፍ")})

	got = p.Process(Char('r'))
	assertCommands(t, "r", got, []Command{cmdCommit("r")})

	got = p.Process(Char('i'))
	assertCommands(t, "i", got, []Command{cmdDelete(1), cmdCommit("ሪ")})

	got = p.Process(Char('m'))
	assertCommands(t, "m", got, []Command{cmdCommit("ም")})
}

func TestOverlapResume(t *testing.T) {
	trie := memory.New()
	trie.Insert([]rune("ae"), "æ")
	trie.Insert([]rune("aei"), "ǣ")
	p := New(trie, Options{})

	p.Process(Char('a'))
	got := p.Process(Char('e'))
	assertCommands(t, "e", got, []Command{cmdDelete(1), cmdCommit("æ")})

	got = p.Process(Char('i'))
	assertCommands(t, "i", got, []Command{cmdDelete(1), cmdCommit("ǣ")})
}

func TestBackspaceAcrossRewrite(t *testing.T) {
	p := New(amharicTrie(), Options{})
	p.Process(Char('a'))
	p.Process(Char('f'))
	p.Process(Char('r'))
	p.Process(Char('i')) // commits ሪ, replacing echoed r

	got := p.Process(Press(KeyBackspace))
	if len(got) == 0 || got[0].Kind != CommandDelete || got[0].N != 1 {
		t.Fatalf("expected leading Delete(1) from backspace, got %+v", got)
	}
}

func TestCapsLockNeutrality(t *testing.T) {
	p := New(amharicTrie(), Options{})
	p.Process(Char('a'))
	got := p.Process(Press(KeyCapsLock))
	assertCommands(t, "capslock", got, []Command{cmdNOP()})
	if p.IsEmpty() {
		t.Fatalf("CapsLock must not clear the cursor")
	}
	got = p.Process(Char('f'))
	assertCommands(t, "f after capslock", got, []Command{cmdCommit("ፍ")})
}

func TestPauseToggle(t *testing.T) {
	now := time.Now()
	clock := &now
	p := New(amharicTrie(), Options{Clock: func() time.Time { return *clock }})

	p.Process(Press(KeyControlLeft))
	*clock = clock.Add(50 * time.Millisecond)
	got := p.Process(Press(KeyControlLeft))
	if len(got) != 1 || got[0].Kind != CommandPause {
		t.Fatalf("expected Pause after double-ctrl, got %+v", got)
	}

	got = p.Process(Char('a'))
	if len(got) != 1 || got[0].Kind != CommandKey || got[0].Char != 'a' {
		t.Fatalf("expected pass-through Key('a') while paused, got %+v", got)
	}

	p.Process(Press(KeyControlLeft))
	*clock = clock.Add(50 * time.Millisecond)
	got = p.Process(Press(KeyControlLeft))
	if len(got) != 1 || got[0].Kind != CommandResume {
		t.Fatalf("expected Resume after second double-ctrl, got %+v", got)
	}
}

func TestEscapeClears(t *testing.T) {
	p := New(amharicTrie(), Options{})
	p.Process(Char('r'))
	p.Process(Press(KeyEscape))
	if !p.IsEmpty() {
		t.Fatalf("Escape must clear the cursor")
	}
}

func assertCommands(t *testing.T, label string, got, want []Command) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: command count mismatch: got %+v want %+v", label, got, want)
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Text != want[i].Text || got[i].N != want[i].N {
			t.Fatalf("%s: command %d mismatch: got %+v want %+v", label, i, got[i], want[i])
		}
	}
}

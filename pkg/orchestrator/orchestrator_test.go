package orchestrator

import (
	"testing"

	"github.com/afrim-go/afrim/pkg/memory"
	"github.com/afrim-go/afrim/pkg/preprocessor"
	"github.com/afrim-go/afrim/pkg/translator"
)

type recordingTyping struct{ cmds []preprocessor.Command }

func (r *recordingTyping) Apply(cmds []preprocessor.Command) { r.cmds = append(r.cmds, cmds...) }

type recordingSuggest struct{ last []translator.Predicate }

func (r *recordingSuggest) Suggest(preds []translator.Predicate) { r.last = preds }

func TestOrchestratorSuggestsAfterCommit(t *testing.T) {
	trie := memory.New()
	trie.Insert([]rune("a"), "A")

	tr := translator.New(translator.Options{})
	tr.Insert("a", []string{"alpha"}, false)

	pre := preprocessor.New(trie, preprocessor.Options{})
	typing := &recordingTyping{}
	suggest := &recordingSuggest{}
	orch := New(pre, tr, typing, suggest)

	orch.HandleEvent(preprocessor.Char('a'))

	if len(typing.cmds) == 0 {
		t.Fatalf("expected typing sink to receive commands")
	}
	if len(suggest.last) != 1 || suggest.last[0].Code != "a" {
		t.Fatalf("expected a suggestion for 'a', got %+v", suggest.last)
	}
}

func TestOrchestratorCommitClearsSession(t *testing.T) {
	trie := memory.New()
	trie.Insert([]rune("a"), "A")
	tr := translator.New(translator.Options{})
	pre := preprocessor.New(trie, preprocessor.Options{})
	typing := &recordingTyping{}
	suggest := &recordingSuggest{}
	orch := New(pre, tr, typing, suggest)

	orch.HandleEvent(preprocessor.Char('a'))
	orch.Commit("replacement")

	if !orch.IsCursorEmpty() {
		t.Fatalf("expected cursor to be cleared after Commit")
	}
}

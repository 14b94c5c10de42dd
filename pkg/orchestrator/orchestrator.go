// Package orchestrator wires the Preprocessor and Translator together
// behind a single Frontend API: push a key event, get commands back, and
// query ranked suggestions for whatever input the Preprocessor currently
// has pending.
package orchestrator

import (
	"github.com/afrim-go/afrim/pkg/preprocessor"
	"github.com/afrim-go/afrim/pkg/translator"
)

// TypingSink receives the commands a key event produces, in order.
type TypingSink interface {
	Apply(cmds []preprocessor.Command)
}

// SuggestionSink receives the ranked predicates for a committed fragment.
type SuggestionSink interface {
	Suggest(preds []translator.Predicate)
}

// Orchestrator holds no state of its own beyond references to its
// collaborators; all session state lives in the Preprocessor.
type Orchestrator struct {
	pre        *preprocessor.Preprocessor
	translator *translator.Translator
	typing     TypingSink
	suggest    SuggestionSink
}

// New builds an Orchestrator over pre and tr, delivering commands to typing
// and predicates to suggest.
func New(pre *preprocessor.Preprocessor, tr *translator.Translator, typing TypingSink, suggest SuggestionSink) *Orchestrator {
	return &Orchestrator{pre: pre, translator: tr, typing: typing, suggest: suggest}
}

// HandleEvent pushes ev through the Preprocessor, applies the resulting
// commands to the typing sink, and — if the event produced a committed
// fragment worth querying — asks the Translator for suggestions.
func (o *Orchestrator) HandleEvent(ev preprocessor.Event) {
	cmds := o.pre.Process(ev)
	if o.typing != nil {
		o.typing.Apply(cmds)
	}
	if !hasCommit(cmds) {
		return
	}
	o.querySuggestions()
}

func hasCommit(cmds []preprocessor.Command) bool {
	for _, c := range cmds {
		if c.Kind == preprocessor.CommandCommitText {
			return true
		}
	}
	return false
}

func (o *Orchestrator) querySuggestions() {
	if o.suggest == nil {
		return
	}
	input := o.pre.GetPendingWord()
	if input == "" {
		o.suggest.Suggest(nil)
		return
	}
	preds := o.translator.Translate(input)
	o.suggest.Suggest(preds)
}

// Commit bypasses the pending cursor state and directly commits text — the
// path used when the caller accepts a suggestion.
func (o *Orchestrator) Commit(text string) {
	cmds := o.pre.Commit(text)
	if o.typing != nil {
		o.typing.Apply(cmds)
	}
	if o.suggest != nil {
		o.suggest.Suggest(nil)
	}
}

// Clear resets the current session without emitting commands.
func (o *Orchestrator) Clear() {
	o.pre.Clear()
}

// IsCursorEmpty reports whether the pending sequence is empty, for UI
// gating (e.g. hiding the suggestion popup).
func (o *Orchestrator) IsCursorEmpty() bool {
	return o.pre.IsEmpty()
}

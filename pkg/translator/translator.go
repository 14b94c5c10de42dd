// Package translator ranks candidate outputs for a committed input fragment
// by combining an exact dictionary lookup, sandboxed scripted predicates,
// prefix completions, and fuzzy dictionary matches.
package translator

import (
	"sort"

	"github.com/afrim-go/afrim/pkg/script"
	"github.com/charmbracelet/log"
)

// Entry is one dictionary row: an input code mapped to an ordered list of
// output candidates, plus whether a unique exact match should auto-commit.
type Entry struct {
	Code       string
	Texts      []string
	AutoCommit bool
}

// Predicate is one ranked suggestion: the code fragment that produced it,
// the unmatched remainder (set by prefix completions and by scripted
// predicates that report one; empty for exact and fuzzy matches), the
// ordered candidate texts, and whether it should auto-commit on unique
// exact match.
type Predicate struct {
	Code       string
	Remaining  string
	Texts      []string
	AutoCommit bool
	score      float64
}

// Options configures a Translator.
type Options struct {
	PageSize       int
	FuzzyThreshold float64
	ScriptBudget   int
	Logger         *log.Logger
}

// Translator holds the built dictionary, prefix index, and compiled scripts
// used to answer Translate queries. Once populated with Insert and
// RegisterScript it is not mutated by Translate, and is safe for concurrent
// read-only use by many sessions.
type Translator struct {
	dict        map[string]Entry
	order       []string // insertion order, for deterministic fuzzy tie-breaks
	prefix      *prefixIndex
	scripts     map[string]*script.Program
	scriptOrder []string // registration order, for deterministic Translate output
	opts        Options
	logger      *log.Logger
}

// New builds an empty Translator ready to be populated with Insert and
// RegisterScript.
func New(opts Options) *Translator {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = 0.7
	}
	if opts.ScriptBudget <= 0 {
		opts.ScriptBudget = 10000
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Translator{
		dict:    make(map[string]Entry),
		prefix:  newPrefixIndex(),
		scripts: make(map[string]*script.Program),
		opts:    opts,
		logger:  logger,
	}
}

// Insert adds or overwrites a dictionary entry and indexes it for prefix
// completion.
func (t *Translator) Insert(code string, texts []string, autoCommit bool) {
	if code == "" || len(texts) == 0 {
		return
	}
	if _, exists := t.dict[code]; !exists {
		t.order = append(t.order, code)
		t.prefix.insert(code)
	}
	t.dict[code] = Entry{Code: code, Texts: texts, AutoCommit: autoCommit}
}

// RegisterScript compiles and registers source under name, replacing any
// script previously registered under the same name. Re-registering an
// existing name keeps its original position in the registration order.
func (t *Translator) RegisterScript(name, source string) error {
	prog, err := script.Compile(source)
	if err != nil {
		return err
	}
	if _, exists := t.scripts[name]; !exists {
		t.scriptOrder = append(t.scriptOrder, name)
	}
	t.scripts[name] = prog
	return nil
}

// UnregisterScript removes a previously registered script.
func (t *Translator) UnregisterScript(name string) {
	delete(t.scripts, name)
	for i, n := range t.scriptOrder {
		if n == name {
			t.scriptOrder = append(t.scriptOrder[:i], t.scriptOrder[i+1:]...)
			break
		}
	}
}

// Translate returns ranked predicates for input, in priority order: exact
// dictionary hit, scripted predicates, prefix completions, fuzzy matches —
// merged, deduplicated by (code, remaining, first text), and truncated to
// PageSize.
func (t *Translator) Translate(input string) []Predicate {
	var out []Predicate

	if entry, ok := t.dict[input]; ok {
		out = append(out, Predicate{Code: input, Texts: entry.Texts, AutoCommit: entry.AutoCommit, score: 1.0})
	}

	for _, name := range t.scriptOrder {
		prog := t.scripts[name]
		res, err := prog.Translate(input, t.opts.ScriptBudget)
		if err != nil {
			t.logger.Warn("translator: script predicate failed", "script", name, "err", err)
			continue
		}
		if res.Code == "" || len(res.Texts) == 0 {
			continue
		}
		out = append(out, Predicate{Code: res.Code, Remaining: res.Remaining, Texts: res.Texts, AutoCommit: res.AutoCommit, score: 1.0})
	}

	out = append(out, t.prefixPredicates(input)...)
	out = append(out, t.fuzzyPredicates(input)...)

	deduped := dedupe(out)
	pageSize := t.opts.PageSize
	if len(deduped) > pageSize {
		deduped = deduped[:pageSize]
	}
	return deduped
}

func (t *Translator) prefixPredicates(input string) []Predicate {
	if input == "" {
		return nil
	}
	matches := t.prefix.completions(input)
	preds := make([]Predicate, 0, len(matches))
	for _, key := range matches {
		entry := t.dict[key]
		preds = append(preds, Predicate{
			Code:      key,
			Remaining: key[len(input):],
			Texts:     entry.Texts,
			score:     0.5,
		})
	}
	sort.SliceStable(preds, func(i, j int) bool {
		if len(preds[i].Remaining) != len(preds[j].Remaining) {
			return len(preds[i].Remaining) < len(preds[j].Remaining)
		}
		return preds[i].Code < preds[j].Code
	})
	return preds
}

func (t *Translator) fuzzyPredicates(input string) []Predicate {
	if t.opts.FuzzyThreshold > 1 {
		return nil
	}
	var preds []Predicate
	for _, key := range t.order {
		if key == input {
			continue
		}
		score := similarity(input, key)
		if score < t.opts.FuzzyThreshold {
			continue
		}
		entry := t.dict[key]
		preds = append(preds, Predicate{Code: key, Texts: entry.Texts, score: score})
	}
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].score != preds[j].score {
			return preds[i].score > preds[j].score
		}
		return preds[i].Code < preds[j].Code
	})
	return preds
}

func dedupe(preds []Predicate) []Predicate {
	seen := make(map[string]bool, len(preds))
	out := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		firstText := ""
		if len(p.Texts) > 0 {
			firstText = p.Texts[0]
		}
		key := p.Code + "\x00" + p.Remaining + "\x00" + firstText
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

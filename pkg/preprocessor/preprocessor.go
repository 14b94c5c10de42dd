package preprocessor

import (
	"time"
	"unicode"

	"github.com/afrim-go/afrim/pkg/memory"
)

// historyEntry is one (input code, emitted output) pair retained so a
// Backspace can reconstruct the state that existed before a rewrite.
type historyEntry struct {
	Code   rune
	Output string
}

// Options configures a Preprocessor. Zero-value BufferSize and PauseWindow
// fall back to the defaults named in the configuration surface
// (core.buffer_size, core.pause_window_ms). AutoCapitalize is used as given:
// its zero value false disables auto-capitalisation.
type Options struct {
	BufferSize     int
	AutoCapitalize bool
	PauseWindow    time.Duration
	// Clock is overridable in tests; defaults to time.Now.
	Clock func() time.Time
}

// Preprocessor is the per-session keystroke state machine described by the
// core's event algorithm: it drives one Cursor, keeps a bounded history of
// recent (code, output) pairs, and emits Commands for the typing sink.
type Preprocessor struct {
	cursor         *memory.Cursor
	history        []historyEntry
	historyCap     int
	autoCapitalize bool
	visibleLen     int

	// pendingWord accumulates the raw printable characters typed since the
	// last boundary, independent of the trie cursor's recognised suffix.
	// It is what the Translator is queried with, since the translator's
	// own dictionary need not relate to Memory's input codes at all.
	pendingWord []rune

	paused        bool
	capsLock      bool
	shiftDown     bool
	pendingCtrl   bool
	lastCtrlAt    time.Time
	pauseWindow   time.Duration
	clock         func() time.Time
}

// New builds a Preprocessor bound to trie, sized and configured by opts.
func New(trie *memory.Trie, opts Options) *Preprocessor {
	bufSize := opts.BufferSize
	if bufSize < 1 {
		bufSize = 64
	}
	window := opts.PauseWindow
	if window <= 0 {
		window = 250 * time.Millisecond
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Preprocessor{
		cursor:         trie.NewCursor(bufSize),
		historyCap:     bufSize,
		autoCapitalize: opts.AutoCapitalize,
		pauseWindow:    window,
		clock:          clock,
	}
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// emit appends cmd to cmds and keeps visibleLen — the rune-length of
// whatever text is currently on screen for the pending sequence — in sync
// with every CommitText/Delete this Preprocessor has sent.
func (p *Preprocessor) emit(cmds []Command, cmd Command) []Command {
	switch cmd.Kind {
	case CommandCommitText:
		p.visibleLen += runeLen(cmd.Text)
	case CommandDelete:
		p.visibleLen -= cmd.N
		if p.visibleLen < 0 {
			p.visibleLen = 0
		}
	}
	return append(cmds, cmd)
}

func (p *Preprocessor) pushHistory(code rune, output string) {
	p.history = append(p.history, historyEntry{Code: code, Output: output})
	if len(p.history) > p.historyCap {
		p.history = p.history[1:]
	}
}

func (p *Preprocessor) popHistory() (historyEntry, bool) {
	if len(p.history) == 0 {
		return historyEntry{}, false
	}
	last := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	return last, true
}

// Clear resets the cursor, history, and pending visible length to a fresh
// session boundary.
func (p *Preprocessor) Clear() {
	p.cursor.Clear()
	p.history = p.history[:0]
	p.visibleLen = 0
	p.pendingWord = p.pendingWord[:0]
}

// GetPendingWord returns the raw characters typed since the last session
// boundary, for querying the Translator.
func (p *Preprocessor) GetPendingWord() string {
	return string(p.pendingWord)
}

// IsEmpty reports whether the session currently has no pending sequence.
func (p *Preprocessor) IsEmpty() bool {
	return p.cursor.IsEmpty()
}

// GetInput returns the input codes accumulated by the cursor for the
// pending sequence, with root markers removed.
func (p *Preprocessor) GetInput() string {
	seq := p.cursor.ToSequence()
	out := make([]rune, 0, len(seq))
	for _, r := range seq {
		if r == 0 {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// Commit discards the pending input and replaces it with text directly —
// the path used when the caller accepts a translator suggestion rather than
// typing it out key by key.
func (p *Preprocessor) Commit(text string) []Command {
	var cmds []Command
	if p.visibleLen > 0 {
		cmds = p.emit(cmds, cmdDelete(p.visibleLen))
	}
	if text != "" {
		cmds = p.emit(cmds, cmdCommit(text))
	}
	p.Clear()
	return cmds
}

// Process consumes one raw key event and returns the commands it produces,
// in emission order. Process never fails on malformed input.
func (p *Preprocessor) Process(ev Event) []Command {
	if isCtrl(ev.Key) {
		return p.handleCtrl(ev)
	}

	if p.paused {
		return []Command{cmdKey(ev.Key, ev.Char)}
	}

	switch ev.Key {
	case KeyCapsLock:
		if ev.Direction == KeyPress {
			p.capsLock = !p.capsLock
		}
		return []Command{cmdNOP()}
	case KeyShift:
		p.shiftDown = ev.Direction == KeyPress
		return []Command{cmdNOP()}
	case KeyEscape, KeyPause:
		if ev.Direction == KeyPress {
			p.Clear()
		}
		return []Command{cmdNOP()}
	case KeyBackspace:
		if ev.Direction != KeyPress {
			return []Command{cmdNOP()}
		}
		return p.handleBackspace()
	case KeyChar:
		if ev.Direction != KeyPress {
			return []Command{cmdNOP()}
		}
		return p.handleChar(ev.Char)
	case KeyOther:
		p.Clear()
		return []Command{cmdNOP()}
	default:
		return []Command{cmdNOP()}
	}
}

func isCtrl(k Key) bool {
	return k == KeyControlLeft || k == KeyControlRight
}

// handleCtrl implements the double-Ctrl pause/resume gate. It runs before
// the paused check so the same gesture can un-pause the session.
func (p *Preprocessor) handleCtrl(ev Event) []Command {
	if ev.Direction != KeyPress {
		return []Command{cmdNOP()}
	}
	now := p.clock()
	if p.pendingCtrl && now.Sub(p.lastCtrlAt) <= p.pauseWindow {
		p.pendingCtrl = false
		p.paused = !p.paused
		if p.paused {
			return []Command{cmdPause()}
		}
		return []Command{cmdResume()}
	}
	p.pendingCtrl = true
	p.lastCtrlAt = now
	return []Command{cmdNOP()}
}

func (p *Preprocessor) handleBackspace() []Command {
	var cmds []Command
	cmds = p.emit(cmds, cmdDelete(1))

	if len(p.pendingWord) > 0 {
		p.pendingWord = p.pendingWord[:len(p.pendingWord)-1]
	}

	popped, ok := p.popHistory()
	if !ok {
		return cmds
	}
	// The history entry, not the popped node, records what was displayed:
	// an echoed character is stored there while its node has no output.
	p.cursor.Undo()

	pLen := runeLen(popped.Output)
	state := p.cursor.State()
	qLen := 0
	if state.HasOutput {
		qLen = runeLen(state.Output)
	}
	if pLen > 1 && pLen > qLen {
		cmds = p.emit(cmds, cmdDelete(pLen-qLen))
		if qLen > 0 {
			cmds = p.emit(cmds, cmdCommit(state.Output))
		}
	}
	return cmds
}

func (p *Preprocessor) handleChar(c rune) []Command {
	p.pendingWord = append(p.pendingWord, c)
	lookup := c
	if p.autoCapitalize && unicode.IsLetter(c) {
		if len(p.history) == 0 {
			lookup = unicode.ToUpper(c)
		} else {
			lookup = unicode.ToLower(c)
		}
	}

	state := p.cursor.Hit(lookup)
	var cmds []Command

	if state.Restarted {
		// Whatever was on screen belongs to a sequence that just ended;
		// it is already final and must not be touched by this one.
		p.visibleLen = 0
	}

	switch {
	case state.HasOutput:
		if p.visibleLen > 0 {
			cmds = p.emit(cmds, cmdDelete(p.visibleLen))
		}
		cmds = p.emit(cmds, cmdCommit(state.Output))
		p.pushHistory(lookup, state.Output)
	case state.Depth >= 1:
		// Non-accepting but continuing a known prefix: tentative echo,
		// may be replaced by the next keystroke.
		cmds = p.emit(cmds, cmdCommit(string(lookup)))
		p.pushHistory(lookup, string(lookup))
	default:
		// Hit restarted to the root: no known sequence starts with c.
		cmds = p.emit(cmds, cmdCommit(string(lookup)))
		p.pushHistory(lookup, string(lookup))
	}
	// Resume-from-ended-sequence is implicit: the cursor is left at the
	// node Hit just pushed (accepting or not), so the next Hit naturally
	// continues from it instead of restarting.
	return cmds
}

package memory

// Cursor tracks the longest recognised suffix of recent input against one
// Trie. The bottom of the stack is always the trie root; Cursor is
// single-writer and must not be shared across goroutines.
type Cursor struct {
	trie     *Trie
	stack    []*Node
	capacity int
}

// State is a snapshot of the cursor's current top.
type State struct {
	Depth  int
	Output string
	Code   rune
	// HasOutput distinguishes a present-but-empty Output (impossible by
	// construction) from "this node is not accepting".
	HasOutput bool
	// Restarted is true when this Hit did not continue the previous top's
	// child path — the sequence began over, either from the trie root's
	// own child for code or, failing that, the bare root. A caller tracking
	// on-screen length for the pending sequence should not try to delete
	// anything from before a restart: whatever was displayed already
	// belongs to a finished, unrelated sequence.
	Restarted bool
}

func (c *Cursor) top() *Node {
	return c.stack[len(c.stack)-1]
}

// State returns the top node's (depth, optional output, code).
func (c *Cursor) State() State {
	n := c.top()
	return State{Depth: n.Depth, Output: n.Output, Code: n.Code, HasOutput: n.Output != ""}
}

// Hit advances the cursor by one input code. If the current top has a child
// keyed by code, that child is pushed. Otherwise the sequence restarts: code
// is retried from the trie root, so a fresh recognised prefix beginning with
// code is not lost on a miss. If the root itself has no such child either,
// the bare root is pushed. Capacity is enforced by evicting the bottom-most
// non-root entry, which never changes the current top. Hit returns the new
// top's state, with Restarted set whenever the primary (current top's
// child) lookup missed.
func (c *Cursor) Hit(code rune) State {
	next := c.top().child(code)
	restarted := false
	if next == nil {
		next = c.trie.root.child(code)
		restarted = true
	}
	if next == nil {
		next = c.trie.root
		restarted = true
	}
	c.push(next)
	st := c.State()
	st.Restarted = restarted
	return st
}

func (c *Cursor) push(n *Node) {
	if len(c.stack) >= c.capacity {
		// Evict the bottom-most non-root entry (index 1); index 0 is always
		// the root and must survive so Clear/State keep working.
		if len(c.stack) > 1 {
			c.stack = append(c.stack[:1], c.stack[2:]...)
		}
	}
	c.stack = append(c.stack, n)
}

// Undo pops the top, unless it is already the sole root entry, and returns
// the popped node's output (if any). It pops at most one level.
func (c *Cursor) Undo() (string, bool) {
	if len(c.stack) <= 1 {
		return "", false
	}
	popped := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return popped.Output, popped.Output != ""
}

// Clear empties the stack down to a single root marker.
func (c *Cursor) Clear() {
	c.stack = c.stack[:1]
}

// IsEmpty reports whether only the root marker remains.
func (c *Cursor) IsEmpty() bool {
	return len(c.stack) == 1
}

// ToSequence returns the sequence of input codes currently tracked, root
// markers included as rootCode, for diagnostics and Preprocessor.GetInput.
func (c *Cursor) ToSequence() []rune {
	seq := make([]rune, len(c.stack))
	for i, n := range c.stack {
		seq[i] = n.Code
	}
	return seq
}

// Depth returns the current stack size (including the root entry).
func (c *Cursor) Depth() int {
	return len(c.stack)
}

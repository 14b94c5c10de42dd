// Package memory implements the prefix trie and cursor that back incremental
// keystroke-to-output lookups.
package memory

// rootCode marks the root of a node path; it can never be produced by a real
// keystroke, so it doubles as a sentinel in Cursor.ToSequence.
const rootCode = rune(0)

// Node is one vertex of the trie. A Node is accepting when Output is
// non-empty. Depth equals the length of the input path from the root.
type Node struct {
	Code     rune
	Depth    int
	Output   string
	children map[rune]*Node
}

func newNode(code rune, depth int) *Node {
	return &Node{Code: code, Depth: depth}
}

func (n *Node) child(code rune) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[code]
}

func (n *Node) childOrCreate(code rune) *Node {
	if n.children == nil {
		n.children = make(map[rune]*Node)
	}
	c, ok := n.children[code]
	if !ok {
		c = newNode(code, n.Depth+1)
		n.children[code] = c
	}
	return c
}

// Trie is a read-only-after-build prefix tree from input codes to output
// strings. Many Cursors may read one Trie concurrently; Trie itself is never
// mutated once Insert/Load calls have finished.
type Trie struct {
	root *Node
}

// New returns an empty Trie with a single root node.
func New() *Trie {
	return &Trie{root: newNode(rootCode, 0)}
}

// Insert adds or overwrites the output string reached by following code from
// the root. code must be non-empty; empty output is a no-op to avoid creating
// an accepting node with no output.
func (t *Trie) Insert(code []rune, output string) {
	if len(code) == 0 || output == "" {
		return
	}
	n := t.root
	for _, r := range code {
		n = n.childOrCreate(r)
	}
	n.Output = output
}

// Pair is one (code, output) row used by Load.
type Pair struct {
	Code   string
	Output string
}

// Load ingests pairs in order. Rows with an empty code or output are skipped
// and reported back to the caller as warnings rather than failing the whole
// load, matching the dataset-tolerant behaviour required of Memory.
func (t *Trie) Load(pairs []Pair) []string {
	var warnings []string
	for i, p := range pairs {
		if p.Code == "" || p.Output == "" {
			warnings = append(warnings, warnf(i, p))
			continue
		}
		t.Insert([]rune(p.Code), p.Output)
	}
	return warnings
}

func warnf(i int, p Pair) string {
	return "memory: skipping malformed row " + itoa(i) + " (code=" + p.Code + ")"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// NewCursor returns a fresh Cursor over this Trie with the given capacity.
func (t *Trie) NewCursor(capacity int) *Cursor {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cursor{trie: t, capacity: capacity}
	c.stack = make([]*Node, 0, capacity)
	c.stack = append(c.stack, t.root)
	return c
}

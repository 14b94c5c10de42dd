package translator

import "github.com/tchap/go-patricia/v2/patricia"

// prefixIndex tracks dictionary keys so completions() can find every key
// that has a given input as a proper prefix, without a full dictionary scan.
type prefixIndex struct {
	trie *patricia.Trie
}

func newPrefixIndex() *prefixIndex {
	return &prefixIndex{trie: patricia.NewTrie()}
}

func (p *prefixIndex) insert(key string) {
	p.trie.Insert(patricia.Prefix(key), key)
}

// completions returns every indexed key of which input is a proper prefix,
// in the order the trie visits them.
func (p *prefixIndex) completions(input string) []string {
	var out []string
	p.trie.VisitSubtree(patricia.Prefix(input), func(prefix patricia.Prefix, item patricia.Item) error {
		key, ok := item.(string)
		if !ok || key == input {
			return nil
		}
		out = append(out, key)
		return nil
	})
	return out
}

package tokenizers

import (
	"sort"
	"strings"
)

type RuneNode struct {
	rune      rune               // The rune this node represents.
	runes     []rune             // The prior runes that led to this node.
	terminal  bool               // If this node ends a special string.
	childs    map[rune]*RuneNode // The child nodes.
	childsArr *[]*RuneNode       // The child nodes in an array, for precedence
}

// NewRuneTree builds a trie over the given special strings.
func NewRuneTree(specials []string) *RuneNode {
	runeTree := &RuneNode{
		runes:  []rune{},
		childs: make(map[rune]*RuneNode, 0),
	}
	for _, special := range specials {
		runeTree.insert(special)
	}
	return runeTree
}

func (root *RuneNode) insert(special string) {
	keyRunes := []rune(special)
	keyLen := len(keyRunes)
	node := root
	for i := 0; i < keyLen; i++ {
		r := keyRunes[i]
		childNode, ok := node.childs[r]
		if !ok {
			children := make([]*RuneNode, 0)
			node.childs[r] = &RuneNode{
				rune:      r,
				runes:     keyRunes[:i+1],
				terminal:  i == keyLen-1,
				childs:    make(map[rune]*RuneNode, 0),
				childsArr: &children,
			}
		} else if i == keyLen-1 {
			childNode.terminal = true
		}
		if len(node.childs) > 10 {
			// Past 10 children the map is faster than a linear scan.
			node.childsArr = nil
		} else {
			if node.childsArr == nil {
				children := make([]*RuneNode, 0)
				node.childsArr = &children
			}
			if len(node.childs) != len(*node.childsArr) {
				*node.childsArr = append(*node.childsArr, node.childs[r])
			}
		}
		node = node.childs[r]
	}
}

func (node *RuneNode) evaluate(r rune) (*RuneNode, bool) {
	if node.childsArr != nil {
		for _, child := range *node.childsArr {
			if child.rune == r {
				return child, child.terminal
			}
		}
	} else if child, ok := node.childs[r]; ok {
		return child, child.terminal
	}
	return nil, false
}

// longestMatch returns the length in runes of the longest special string
// that starts at runes[start], or 0 when none does.
func (root *RuneNode) longestMatch(runes []rune, start int) int {
	node := root
	longest := 0
	for idx := start; idx < len(runes); idx++ {
		next, terminal := node.evaluate(runes[idx])
		if next == nil {
			break
		}
		if terminal {
			longest = idx - start + 1
		}
		node = next
	}
	return longest
}

// Represent the tree as a string by traversing the tree, and using tree
// characters to represent the tree structure.
func (node *RuneNode) string(level int) string {
	if node == nil {
		return ""
	}
	s := string(node.rune)
	if len(node.childs) == 1 {
		for r := range node.childs {
			s += node.childs[r].string(level)
		}
		return s
	}
	level += 1
	s += "\n"

	keys := make([]rune, 0, len(node.childs))
	for r := range node.childs {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for idx, r := range keys {
		childPrefix := strings.Repeat("| ", level-1)
		if idx == len(keys)-1 {
			childPrefix += "└─"
		} else {
			childPrefix += "├─"
		}
		s += childPrefix + node.childs[r].string(level)
	}
	return s
}

func (node *RuneNode) String() string {
	return node.string(0)
}

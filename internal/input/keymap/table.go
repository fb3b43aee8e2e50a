package keymap

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/danielrainer/fish-shell/internal/input/key"
)

// Registration errors
var (
	ErrEmptySequence = errors.New("binding has an empty key sequence")
	ErrNoCommands    = errors.New("binding has no commands")
)

// Table holds bindings keyed by (mode, sequence). Each mode has its own
// prefix tree, so lookups never look at other modes.
//
// The resolver reads the table during an attempt; mutations are expected
// only between attempts. The lock keeps tools that inspect a live table
// (key reader, reload staging) safe.
type Table struct {
	mu    sync.RWMutex
	modes map[string]*prefixNode
	count int
}

type prefixNode struct {
	children map[key.Key]*prefixNode
	binding  *Binding

	// below counts bindings strictly under this node.
	below int
}

func newNode() *prefixNode {
	return &prefixNode{children: make(map[key.Key]*prefixNode)}
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{modes: make(map[string]*prefixNode)}
}

// Register adds a binding. An identical (mode, sequence) replaces the
// previous binding. An empty mode means DefaultMode.
func (t *Table) Register(mode string, seq key.Sequence, commands []string, user bool, setsMode string) error {
	if len(seq) == 0 {
		return ErrEmptySequence
	}
	if len(commands) == 0 {
		return fmt.Errorf("%w: %s", ErrNoCommands, seq)
	}
	if mode == "" {
		mode = DefaultMode
	}

	b := &Binding{
		Sequence: seq.Clone(),
		Mode:     mode,
		Commands: append([]string(nil), commands...),
		SetsMode: setsMode,
		User:     user,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.insertLocked(b)
	return nil
}

// Add registers a prepared binding.
func (t *Table) Add(b Binding) error {
	return t.Register(b.Mode, b.Sequence, b.Commands, b.User, b.SetsMode)
}

func (t *Table) insertLocked(b *Binding) {
	root, ok := t.modes[b.Mode]
	if !ok {
		root = newNode()
		t.modes[b.Mode] = root
	}

	path := make([]*prefixNode, 0, len(b.Sequence)+1)
	node := root
	for _, k := range b.Sequence {
		path = append(path, node)
		child, ok := node.children[k]
		if !ok {
			child = newNode()
			node.children[k] = child
		}
		node = child
	}

	if node.binding == nil {
		for _, p := range path {
			p.below++
		}
		t.count++
	}
	node.binding = b
}

// find returns the node for seq in mode, or nil.
func (t *Table) find(mode string, seq key.Sequence) *prefixNode {
	node := t.modes[mode]
	for _, k := range seq {
		if node == nil {
			return nil
		}
		node = node.children[k]
	}
	return node
}

// Candidates returns every binding in mode whose sequence has soFar as a
// prefix, including an exact match. Results are ordered by sequence length,
// then by key order.
func (t *Table) Candidates(mode string, soFar key.Sequence) []*Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(mode, soFar)
	if node == nil {
		return nil
	}
	var out []*Binding
	collect(node, &out)
	sortBindings(out)
	return out
}

func collect(node *prefixNode, out *[]*Binding) {
	if node.binding != nil {
		*out = append(*out, node.binding)
	}
	for _, child := range node.children {
		collect(child, out)
	}
}

// Probe reports, for keys seen so far in mode, the exact binding (if any)
// and whether a strictly longer binding could still match.
func (t *Table) Probe(mode string, soFar key.Sequence) (exact *Binding, longer bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(mode, soFar)
	if node == nil {
		return nil, false
	}
	return node.binding, node.below > 0
}

// Lookup returns the binding for exactly seq in mode, or nil.
func (t *Table) Lookup(mode string, seq key.Sequence) *Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(seq) == 0 {
		return nil
	}
	if node := t.find(mode, seq); node != nil {
		return node.binding
	}
	return nil
}

// Erase removes the binding for seq in mode. It reports whether one existed.
func (t *Table) Erase(mode string, seq key.Sequence) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.modes[mode]
	if root == nil || len(seq) == 0 {
		return false
	}

	path := make([]*prefixNode, 0, len(seq)+1)
	node := root
	for _, k := range seq {
		path = append(path, node)
		node = node.children[k]
		if node == nil {
			return false
		}
	}
	if node.binding == nil {
		return false
	}

	node.binding = nil
	t.count--
	for _, p := range path {
		p.below--
	}

	// Prune empty nodes from leaf to root
	for i := len(seq) - 1; i >= 0; i-- {
		child := path[i].children[seq[i]]
		if child.binding != nil || len(child.children) > 0 {
			break
		}
		delete(path[i].children, seq[i])
	}
	if len(root.children) == 0 {
		delete(t.modes, mode)
	}
	return true
}

// EraseMode removes the bindings of mode. With presetOnly, user bindings are
// kept. It returns the number removed.
func (t *Table) EraseMode(mode string, presetOnly bool) int {
	t.mu.Lock()
	root := t.modes[mode]
	if root == nil {
		t.mu.Unlock()
		return 0
	}

	var all []*Binding
	collect(root, &all)

	if !presetOnly {
		delete(t.modes, mode)
		t.count -= len(all)
		t.mu.Unlock()
		return len(all)
	}
	t.mu.Unlock()

	removed := 0
	for _, b := range all {
		if !b.User && t.Erase(mode, b.Sequence) {
			removed++
		}
	}
	return removed
}

// Modes returns the modes that have bindings, sorted.
func (t *Table) Modes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	modes := make([]string, 0, len(t.modes))
	for m := range t.modes {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// Bindings returns the bindings of mode in sequence order.
func (t *Table) Bindings(mode string) []*Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()

	root := t.modes[mode]
	if root == nil {
		return nil
	}
	var out []*Binding
	collect(root, &out)
	sortBindings(out)
	return out
}

// Len returns the total number of bindings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c := NewTable()
	for _, root := range t.modes {
		var all []*Binding
		collect(root, &all)
		for _, b := range all {
			c.insertLocked(b.Clone())
		}
	}
	return c
}

// Merge registers every binding of other into t, replacing duplicates.
func (t *Table) Merge(other *Table) {
	other.mu.RLock()
	var all []*Binding
	for _, root := range other.modes {
		collect(root, &all)
	}
	other.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range all {
		t.insertLocked(b.Clone())
	}
}

// Shadow describes a binding that is a strict prefix of longer bindings in
// the same mode. Typing it makes the resolver wait for more input.
type Shadow struct {
	Binding *Binding
	Longer  []*Binding
}

// Shadowed returns the bindings of mode that have longer extensions.
func (t *Table) Shadowed(mode string) []Shadow {
	var out []Shadow
	for _, b := range t.Bindings(mode) {
		cands := t.Candidates(mode, b.Sequence)
		if len(cands) > 1 {
			out = append(out, Shadow{Binding: b, Longer: cands[1:]})
		}
	}
	return out
}

func sortBindings(bs []*Binding) {
	sort.Slice(bs, func(i, j int) bool {
		a, b := bs[i].Sequence, bs[j].Sequence
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if c := key.Compare(a[k], b[k]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// Package archivetree implements the hierarchical selection structure an
// archive job accumulates resources into before it is expanded against a
// catalog and turned into a flat write plan.
//
// Each internal node holds entries keyed by resource identifier. An entry
// is either Pending (selected, not yet expanded) or Expanded (resolved
// into a child node one level finer, or, at the Instance level, into a
// concrete Leaf). This mirrors the node shape Orthanc's ArchiveIndex uses,
// generalized into a tagged variant instead of a nullable pointer map.
package archivetree

import (
	"github.com/caio-sobreiro/dicomarchive/resource"
)

// Leaf is one concrete instance discovered during Expand, carrying the
// uncompressed size needed for the ZIP64 decision and progress reporting.
type Leaf struct {
	InstanceID       string
	UncompressedSize uint64
}

// Visitor receives a depth-first walk of an expanded Tree. Open/Close
// bracket each internal level (Patient, Study, Series); AddInstance is
// called once per resolved leaf, in insertion order, with no Open/Close
// pair of its own.
type Visitor interface {
	Open(level resource.Level, id string) error
	Close() error
	AddInstance(instanceID string, uncompressedSize uint64) error
}

type entry struct {
	pending bool
	child   *node
	leaf    *Leaf
}

type node struct {
	level   resource.Level
	order   []string
	entries map[string]*entry
}

func newNode(level resource.Level) *node {
	return &node{level: level, entries: make(map[string]*entry)}
}

// Tree is the root of one archive job's selection, always rooted at the
// Patient level.
type Tree struct {
	root *node
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{root: newNode(resource.Patient)}
}

// Add records path as selected. Adding a coarser path after a finer one
// was already added under it supersedes the finer selection (the whole
// subtree is re-marked Pending, to be fully re-expanded). Adding a finer
// path under an already-Pending coarser selection is a no-op: the
// coarser selection already covers it. Both operations are idempotent.
func (t *Tree) Add(path resource.Path) {
	t.root.add(path)
}

func (n *node) add(path resource.Path) {
	id := path.Identifier(n.level)
	e, exists := n.entries[id]
	if !exists {
		e = &entry{}
		n.entries[id] = e
		n.order = append(n.order, id)
	}

	if path.Level() == n.level {
		e.pending, e.child, e.leaf = true, nil, nil
		return
	}

	if e.pending {
		return
	}

	if e.child == nil {
		e.child = newNode(n.level.Next())
	}
	e.child.add(path)
}

// Expand resolves every Pending entry against cat: internal entries fetch
// their children and mark each of them Pending in a new child node;
// Instance-level entries fetch attachment metadata and become a Leaf, or
// are dropped silently if the attachment is gone. Expand is idempotent:
// entries already Expanded are traversed (to resolve any Pending
// descendants) but not re-queried.
func (t *Tree) Expand(cat Catalog) error {
	return t.root.expand(cat)
}

func (n *node) expand(cat Catalog) error {
	if n.level == resource.Instance {
		return n.expandInstances(cat)
	}

	for _, id := range n.order {
		e := n.entries[id]
		if e.pending {
			children, err := cat.Children(id)
			if err != nil {
				return err
			}
			child := newNode(n.level.Next())
			for _, childID := range children {
				child.markPending(childID)
			}
			e.pending = false
			e.child = child
		}
		if e.child != nil {
			if err := e.child.expand(cat); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *node) expandInstances(cat Catalog) error {
	kept := n.order[:0]
	for _, id := range n.order {
		e := n.entries[id]
		if e.pending {
			leaf, found, err := resolveLeaf(cat, id)
			if err != nil {
				return err
			}
			e.pending = false
			if !found {
				delete(n.entries, id)
				continue
			}
			e.leaf = &leaf
		} else if e.leaf == nil {
			delete(n.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	n.order = kept
	return nil
}

func (n *node) markPending(id string) {
	if _, exists := n.entries[id]; exists {
		return
	}
	n.entries[id] = &entry{pending: true}
	n.order = append(n.order, id)
}

// Visit performs the pre-order walk described by Visitor over an expanded
// tree. Calling Visit before Expand visits nothing below a still-Pending
// entry (its child is nil and it is skipped).
func (t *Tree) Visit(v Visitor) error {
	return t.root.visit(v)
}

func (n *node) visit(v Visitor) error {
	if n.level == resource.Instance {
		for _, id := range n.order {
			leaf := n.entries[id].leaf
			if leaf == nil {
				continue
			}
			if err := v.AddInstance(leaf.InstanceID, leaf.UncompressedSize); err != nil {
				return err
			}
		}
		return nil
	}

	for _, id := range n.order {
		e := n.entries[id]
		if e.child == nil {
			continue
		}
		if err := v.Open(n.level, id); err != nil {
			return err
		}
		if err := e.child.visit(v); err != nil {
			return err
		}
		if err := v.Close(); err != nil {
			return err
		}
	}
	return nil
}

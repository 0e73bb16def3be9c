package ast

import (
	"fmt"
	"sync/atomic"

	"github.com/andrewchambers/cfront/cpp"
	"github.com/andrewchambers/cfront/diag"
)

// Node is an element of the abstract syntax tree. It is either a *Composite
// or a *Leaf.
type Node interface {
	Kind() Kind
	// Name is a debug name unique within the process.
	Name() string
	Serial() uint64
	// Parent is nil until the node is attached.
	Parent() *Composite
	Pos() cpp.FilePos

	setParent(p *Composite)
}

var serials atomic.Uint64

type element struct {
	kind   Kind
	serial uint64
	parent *Composite
	pos    cpp.FilePos
}

func newElement(k Kind, pos cpp.FilePos) element {
	return element{
		kind:   k,
		serial: serials.Add(1),
		pos:    pos,
	}
}

func (e *element) Kind() Kind             { return e.kind }
func (e *element) Serial() uint64         { return e.serial }
func (e *element) Parent() *Composite     { return e.parent }
func (e *element) Pos() cpp.FilePos       { return e.pos }
func (e *element) setParent(p *Composite) { e.parent = p }

// Composite is an interior node. Its children live in a fixed number of
// slots, each holding children in insertion order.
type Composite struct {
	element
	slots [][]Node
}

func NewComposite(k Kind, pos cpp.FilePos) *Composite {
	if !k.valid() || k.IsLeaf() {
		panic(fmt.Sprintf("internal error - %s is not a composite kind", k))
	}
	return &Composite{
		element: newElement(k, pos),
		slots:   make([][]Node, k.NumSlots()),
	}
}

func (c *Composite) Name() string {
	return fmt.Sprintf("%s_%d", c.kind, c.serial)
}

func (c *Composite) NumSlots() int {
	return len(c.slots)
}

// AddChild appends child to slot. The parent takes ownership of the child.
func (c *Composite) AddChild(child Node, slot Slot) error {
	if child == nil {
		return diag.Errorf(diag.StructuralViolation, c.pos, "nil child for %s", c.kind)
	}
	if slot < 0 || int(slot) >= len(c.slots) {
		return diag.Errorf(diag.StructuralViolation, child.Pos(),
			"%s has %d slots, cannot attach %s to slot %d", c.kind, len(c.slots), child.Kind(), slot)
	}
	if child.Parent() != nil {
		return diag.Errorf(diag.StructuralViolation, child.Pos(),
			"%s is already attached to %s", child.Name(), child.Parent().Name())
	}
	child.setParent(c)
	c.slots[slot] = append(c.slots[slot], child)
	return nil
}

// Children returns the children in slot, nil for an empty or unknown slot.
func (c *Composite) Children(slot Slot) []Node {
	if slot < 0 || int(slot) >= len(c.slots) {
		return nil
	}
	return c.slots[slot]
}

// Child returns the first child in slot.
func (c *Composite) Child(slot Slot) Node {
	children := c.Children(slot)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// SlotOf returns the slot holding child.
func (c *Composite) SlotOf(child Node) (Slot, bool) {
	for s, children := range c.slots {
		for _, n := range children {
			if n == child {
				return Slot(s), true
			}
		}
	}
	return 0, false
}

// Leaf is a terminal node holding the text of one token.
type Leaf struct {
	element
	lexeme string
}

func NewLeaf(k Kind, lexeme string, pos cpp.FilePos) *Leaf {
	if !k.IsLeaf() {
		panic(fmt.Sprintf("internal error - %s is not a leaf kind", k))
	}
	return &Leaf{
		element: newElement(k, pos),
		lexeme:  lexeme,
	}
}

func (l *Leaf) Name() string {
	return fmt.Sprintf("%s_%d", l.lexeme, l.serial)
}

func (l *Leaf) Lexeme() string {
	return l.lexeme
}

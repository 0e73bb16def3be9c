package ast

// Handler processes one node. info carries whatever context the caller
// threads down the tree.
type Handler[R, I any] func(n Node, info I) R

// Visitor dispatches on node kind. Kinds without a handler fall back to
// VisitChildren, so a visitor only registers the kinds it cares about.
type Visitor[R, I any] struct {
	handlers [numKinds]Handler[R, I]

	// Aggregate, if set, folds the results of the children visited by
	// VisitChildren. Otherwise VisitChildren returns the zero R.
	Aggregate func(acc, next R) R
}

func NewVisitor[R, I any]() *Visitor[R, I] {
	return &Visitor[R, I]{}
}

// On registers h for nodes of kind k, replacing any earlier handler.
func (v *Visitor[R, I]) On(k Kind, h Handler[R, I]) *Visitor[R, I] {
	v.handlers[k] = h
	return v
}

func (v *Visitor[R, I]) Visit(n Node, info I) R {
	if k := n.Kind(); k.valid() && v.handlers[k] != nil {
		return v.handlers[k](n, info)
	}
	return v.VisitChildren(n, info)
}

// VisitChildren visits every child, slots in ascending order and children
// within a slot in insertion order. Leaves have no children.
func (v *Visitor[R, I]) VisitChildren(n Node, info I) R {
	var acc R
	c, ok := n.(*Composite)
	if !ok {
		return acc
	}
	for s := range c.slots {
		acc = v.visitAll(c.slots[s], info, acc)
	}
	return acc
}

// VisitSlot visits the children of one slot of c.
func (v *Visitor[R, I]) VisitSlot(c *Composite, s Slot, info I) R {
	var acc R
	return v.visitAll(c.Children(s), info, acc)
}

func (v *Visitor[R, I]) visitAll(children []Node, info I, acc R) R {
	for _, child := range children {
		r := v.Visit(child, info)
		if v.Aggregate != nil {
			acc = v.Aggregate(acc, r)
		}
	}
	return acc
}

package ast

// DeclaredIdentifier follows a declarator shape down to the identifier it
// declares. It returns nil for abstract declarators.
func DeclaredIdentifier(n Node) *Leaf {
	for n != nil {
		switch n.Kind() {
		case Identifier:
			return n.(*Leaf)
		case PointerType:
			n = n.(*Composite).Child(PointerTarget)
		case FunctionType:
			n = n.(*Composite).Child(FunctionTypeDeclarator)
		case ArrayType:
			n = n.(*Composite).Child(ArrayElement)
		case InitDeclarator:
			n = n.(*Composite).Child(InitDecl)
		default:
			return nil
		}
	}
	return nil
}

// Binder returns the declarator node an identifier hangs from directly,
// nil when the identifier stands alone.
func Binder(id *Leaf) *Composite {
	p := id.Parent()
	if p == nil {
		return nil
	}
	slot, _ := p.SlotOf(id)
	switch {
	case p.Kind() == PointerType && slot == PointerTarget,
		p.Kind() == FunctionType && slot == FunctionTypeDeclarator,
		p.Kind() == ArrayType && slot == ArrayElement:
		return p
	}
	return nil
}

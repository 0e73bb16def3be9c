// Package scope builds the lexical scope tree of a translation unit and
// the per-namespace symbol tables hanging from it.
package scope

import (
	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/diag"
)

// Namespace is one of the disjoint identifier classes of C.
type Namespace int

const (
	Ordinary Namespace = iota
	Tags
	Members
	Labels
	numNamespaces
)

var namespaceToStr = [...]string{
	Ordinary: "ordinary",
	Tags:     "tags",
	Members:  "members",
	Labels:   "labels",
}

func (ns Namespace) String() string {
	if ns < 0 || ns >= numNamespaces {
		return "unknown"
	}
	return namespaceToStr[ns]
}

type Kind int

const (
	FileScope Kind = iota
	FunctionScope
	BlockScope
	FunctionPrototypeScope
	StructUnionEnumScope
	numKinds
)

var kindToStr = [...]string{
	FileScope:              "file",
	FunctionScope:          "function",
	BlockScope:             "block",
	FunctionPrototypeScope: "prototype",
	StructUnionEnumScope:   "struct",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindToStr[k]
}

// Namespaces present in each kind of scope. Lookups and insertions for a
// missing namespace go to the parent.
var kindNamespaces = [numKinds][]Namespace{
	FileScope:              {Ordinary, Tags},
	FunctionScope:          {Ordinary, Tags, Labels},
	BlockScope:             {Ordinary, Tags},
	FunctionPrototypeScope: {Ordinary, Tags},
	StructUnionEnumScope:   {Members, Tags},
}

type SymbolKind int

const (
	Variable SymbolKind = iota
	Function
	Type
	Label
	EnumConstant
)

var symbolKindToStr = [...]string{
	Variable:     "variable",
	Function:     "function",
	Type:         "type",
	Label:        "label",
	EnumConstant: "enumerator",
}

func (k SymbolKind) String() string {
	if k < 0 || int(k) >= len(symbolKindToStr) {
		return "unknown"
	}
	return symbolKindToStr[k]
}

type Symbol struct {
	Name string
	Kind SymbolKind
	// Node is the identifier that declared the symbol. After a merge it is
	// the one of the definition.
	Node  ast.Node
	Scope *Scope
	// Defined is set for function definitions and tags declared with a body.
	Defined bool
	// Tag is the specifier kind of a tag symbol: StructSpecifier,
	// UnionSpecifier or EnumSpecifier.
	Tag ast.Kind
}

// tagKeyword is the C keyword introducing a tag of kind k.
func tagKeyword(k ast.Kind) string {
	switch k {
	case ast.StructSpecifier:
		return "struct"
	case ast.UnionSpecifier:
		return "union"
	case ast.EnumSpecifier:
		return "enum"
	}
	return k.String()
}

// Table maps names to symbols within one namespace of one scope.
type Table struct {
	symbols map[string]*Symbol
	order   []*Symbol
}

func newTable() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

func (t *Table) Lookup(name string) *Symbol {
	return t.symbols[name]
}

// Symbols returns the symbols in insertion order.
func (t *Table) Symbols() []*Symbol {
	return t.order
}

func (t *Table) Len() int {
	return len(t.order)
}

func (t *Table) add(sym *Symbol) {
	t.symbols[sym.Name] = sym
	t.order = append(t.order, sym)
}

type Scope struct {
	Kind Kind
	// Name is the function or tag name for scopes that have one.
	Name  string
	Owner ast.Node

	parent   *Scope
	children []*Scope
	tables   [numNamespaces]*Table
}

func newScope(kind Kind, name string, owner ast.Node, parent *Scope) *Scope {
	s := &Scope{
		Kind:   kind,
		Name:   name,
		Owner:  owner,
		parent: parent,
	}
	for _, ns := range kindNamespaces[kind] {
		s.tables[ns] = newTable()
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

// Children returns the nested scopes in the order they were entered.
func (s *Scope) Children() []*Scope {
	return s.children
}

// Table returns the table of ns, or nil when the scope lacks it.
func (s *Scope) Table(ns Namespace) *Table {
	if ns < 0 || ns >= numNamespaces {
		return nil
	}
	return s.tables[ns]
}

func (s *Scope) Has(ns Namespace) bool {
	return s.Table(ns) != nil
}

// LookupLocal searches only s itself.
func (s *Scope) LookupLocal(ns Namespace, name string) *Symbol {
	if t := s.Table(ns); t != nil {
		return t.Lookup(name)
	}
	return nil
}

// Lookup searches s and then its ancestors. A nil result means the name is
// not declared, which callers may or may not treat as an error.
func (s *Scope) Lookup(ns Namespace, name string) *Symbol {
	for sc := s; sc != nil; sc = sc.parent {
		if sym := sc.LookupLocal(ns, name); sym != nil {
			return sym
		}
	}
	return nil
}

// Insert adds sym to the nearest scope, starting at s, that has ns.
//
// A name already present in that scope and namespace is a DuplicateSymbol,
// except that function declarations and tags of one keyword merge with
// each other and with at most one definition. Insert returns the symbol that ends up in
// the table, which is the earlier one after a merge.
func (s *Scope) Insert(ns Namespace, sym *Symbol) (*Symbol, error) {
	sc := s
	for sc != nil && !sc.Has(ns) {
		sc = sc.parent
	}
	if sc == nil {
		return nil, diag.Errorf(diag.StructuralViolation, sym.Node.Pos(),
			"no enclosing scope has a %s namespace for %s", ns, sym.Name)
	}
	t := sc.tables[ns]
	prev := t.Lookup(sym.Name)
	if prev == nil {
		sym.Scope = sc
		t.add(sym)
		return sym, nil
	}
	if mergeable(ns, prev, sym) {
		if sym.Defined {
			prev.Defined = true
			prev.Node = sym.Node
		}
		return prev, nil
	}
	if ns == Tags && prev.Tag != sym.Tag {
		return nil, diag.Errorf(diag.DuplicateSymbol, sym.Node.Pos(),
			"%s redeclared as %s, previous %s declared on line %d",
			sym.Name, tagKeyword(sym.Tag), tagKeyword(prev.Tag), prev.Node.Pos().Line)
	}
	what := "redefinition"
	if prev.Kind != sym.Kind {
		what = "conflicting declaration"
	}
	return nil, diag.Errorf(diag.DuplicateSymbol, sym.Node.Pos(),
		"%s of %s, previous %s declared on line %d", what, sym.Name, prev.Kind, prev.Node.Pos().Line)
}

func mergeable(ns Namespace, prev, sym *Symbol) bool {
	if prev.Kind != sym.Kind || prev.Tag != sym.Tag || (prev.Defined && sym.Defined) {
		return false
	}
	return prev.Kind == Function || ns == Tags
}

package scope

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/cpp"
	"github.com/andrewchambers/cfront/diag"
)

// Resolution is the result of resolving one translation unit.
type Resolution struct {
	Global *Scope
	// Uses maps identifier, typedef name, tag and goto label references
	// to the symbols they denote.
	Uses map[*ast.Leaf]*Symbol
	// Unresolved lists, in traversal order, the references no scope
	// declares.
	Unresolved []*ast.Leaf
}

// role is the context a subtree is reached through. It decides what an
// identifier below it means.
type role int

const (
	roleUse role = iota
	roleDeclare
	roleTypedef
	roleMember
	roleSkip
	roleFunctionBody
)

type resolver struct {
	sys *System
	v   *ast.Visitor[struct{}, role]
	res *Resolution
	// Gotos of the current function, resolved once all its labels are known.
	gotos []*ast.Leaf
}

// Resolve builds the scope tree of root, which must be a translation unit.
// The first duplicate declaration or malformed node aborts the run.
func Resolve(root *ast.Composite, log *slog.Logger) (res *Resolution, err error) {
	defer diag.Catch(&err)
	if root == nil || root.Kind() != ast.TranslationUnit {
		diag.Abort(diag.Errorf(diag.StructuralViolation, cpp.FilePos{}, "resolve expects a translation unit"))
	}
	r := &resolver{
		sys: NewSystem(log),
		res: &Resolution{Uses: make(map[*ast.Leaf]*Symbol)},
	}
	r.v = ast.NewVisitor[struct{}, role]()
	r.register()
	r.v.Visit(root, roleUse)
	if r.sys.Depth() != 0 {
		diag.Abort(diag.Errorf(diag.StructuralViolation, root.Pos(), "%d scopes left open", r.sys.Depth()))
	}
	r.res.Global = r.sys.Global()
	r.sys.log.Debug("resolved", "uses", len(r.res.Uses), "unresolved", len(r.res.Unresolved))
	return r.res, nil
}

func (r *resolver) on(k ast.Kind, h func(c *ast.Composite, ro role)) {
	r.v.On(k, func(n ast.Node, ro role) struct{} {
		h(n.(*ast.Composite), ro)
		return struct{}{}
	})
}

func (r *resolver) onLeaf(k ast.Kind, h func(l *ast.Leaf, ro role)) {
	r.v.On(k, func(n ast.Node, ro role) struct{} {
		h(n.(*ast.Leaf), ro)
		return struct{}{}
	})
}

func (r *resolver) register() {
	r.on(ast.TranslationUnit, r.translationUnit)
	r.on(ast.FunctionDefinition, r.functionDefinition)
	r.on(ast.Declaration, r.declaration)
	r.on(ast.InitDeclarator, r.initDeclarator)
	r.on(ast.ParameterDeclaration, r.parameterDeclaration)
	r.on(ast.TypeName, r.typeName)
	r.on(ast.ArrayType, r.arrayType)
	r.on(ast.FunctionType, r.functionType)
	r.on(ast.StructSpecifier, r.record)
	r.on(ast.UnionSpecifier, r.record)
	r.on(ast.StructDeclaration, r.structDeclaration)
	r.on(ast.EnumSpecifier, r.enumSpecifier)
	r.on(ast.Enumerator, r.enumerator)
	r.on(ast.CompoundStatement, r.compoundStatement)
	r.on(ast.ForStatement, r.forStatement)
	r.on(ast.LabeledStatement, r.labeledStatement)
	r.on(ast.GotoStatement, r.gotoStatement)
	r.on(ast.MemberAccess, r.memberAccess)
	r.on(ast.PointerMemberAccess, r.memberAccess)
	r.onLeaf(ast.Identifier, r.identifier)
	r.onLeaf(ast.TypedefName, r.typedefName)
}

func (r *resolver) enter(kind Kind, name string, owner ast.Node) {
	if _, err := r.sys.Enter(kind, name, owner); err != nil {
		diag.Abort(err)
	}
}

func (r *resolver) exit() {
	if _, err := r.sys.Exit(); err != nil {
		diag.Abort(err)
	}
}

func (r *resolver) declare(ns Namespace, id *ast.Leaf, kind SymbolKind, defined bool) *Symbol {
	return r.insert(ns, &Symbol{
		Name:    id.Lexeme(),
		Kind:    kind,
		Node:    id,
		Defined: defined,
	})
}

func (r *resolver) insert(ns Namespace, sym *Symbol) *Symbol {
	got, err := r.sys.Current().Insert(ns, sym)
	if err != nil {
		diag.Abort(err)
	}
	return got
}

// use records the symbol id refers to, searching from the current scope.
func (r *resolver) use(ns Namespace, id *ast.Leaf) {
	r.bind(r.sys.Current(), ns, id)
}

func (r *resolver) bind(from *Scope, ns Namespace, id *ast.Leaf) {
	if sym := from.Lookup(ns, id.Lexeme()); sym != nil {
		r.res.Uses[id] = sym
		return
	}
	r.res.Unresolved = append(r.res.Unresolved, id)
}

func (r *resolver) translationUnit(tu *ast.Composite, _ role) {
	r.enter(FileScope, tu.Pos().File, tu)
	// Functions and declarations share one namespace, so they are visited
	// in the order they were written. Serials follow creation order.
	var items []ast.Node
	items = append(items, tu.Children(ast.UnitFunctions)...)
	items = append(items, tu.Children(ast.UnitDeclarations)...)
	slices.SortStableFunc(items, func(a, b ast.Node) int {
		return cmp.Compare(a.Serial(), b.Serial())
	})
	for _, n := range items {
		r.v.Visit(n, roleUse)
	}
	r.exit()
}

func (r *resolver) functionDefinition(fd *ast.Composite, _ role) {
	decl := fd.Child(ast.FuncDeclarator)
	id := ast.DeclaredIdentifier(decl)
	if id == nil {
		diag.Abort(diag.Errorf(diag.MissingRequiredChild, fd.Pos(), "function definition without a name"))
	}
	r.v.VisitSlot(fd, ast.FuncSpecifiers, roleUse)
	r.declare(Ordinary, id, Function, true)

	r.enter(FunctionScope, id.Lexeme(), fd)
	r.gotos = nil
	params := fd.Children(ast.FuncParameters)
	if ft := parameterOwner(id, fd); ft != nil {
		// Declarators like "char *f(int n)" keep the parameters in the
		// function type under the pointer. Whatever sits in the definition's
		// own slot then belongs to the returned function type.
		if len(params) > 0 {
			r.prototype(id.Lexeme(), fd, params)
		}
		params = ft.Children(ast.FunctionTypeParameters)
	}
	for _, p := range params {
		r.v.Visit(p, roleUse)
	}
	r.v.VisitSlot(fd, ast.FuncBody, roleFunctionBody)
	for _, g := range r.gotos {
		r.use(Labels, g)
	}
	r.gotos = nil
	r.exit()
}

// parameterOwner returns the function type nearest to the name of a
// function definition, nil when the parameters sit in the definition.
func parameterOwner(id *ast.Leaf, fd *ast.Composite) *ast.Composite {
	for p := id.Parent(); p != nil && p != fd; p = p.Parent() {
		if p.Kind() == ast.FunctionType {
			return p
		}
	}
	return nil
}

func (r *resolver) prototype(name string, owner ast.Node, params []ast.Node) {
	r.enter(FunctionPrototypeScope, name, owner)
	for _, p := range params {
		r.v.Visit(p, roleUse)
	}
	r.exit()
}

func isTypedef(d *ast.Composite) bool {
	for _, n := range d.Children(ast.DeclStorageClass) {
		if l, ok := n.(*ast.Leaf); ok && l.Lexeme() == "typedef" {
			return true
		}
	}
	return false
}

func (r *resolver) declaration(d *ast.Composite, _ role) {
	r.v.VisitSlot(d, ast.DeclType, roleUse)
	ro := roleDeclare
	if isTypedef(d) {
		ro = roleTypedef
	}
	r.v.VisitSlot(d, ast.DeclDeclarators, ro)
}

func (r *resolver) initDeclarator(id *ast.Composite, ro role) {
	// The name is visible in its own initializer.
	r.v.VisitSlot(id, ast.InitDecl, ro)
	r.v.VisitSlot(id, ast.InitValue, roleUse)
}

func (r *resolver) parameterDeclaration(pd *ast.Composite, _ role) {
	r.v.VisitSlot(pd, ast.ParamSpecifiers, roleUse)
	r.v.VisitSlot(pd, ast.ParamDeclarator, roleDeclare)
}

func (r *resolver) typeName(tn *ast.Composite, _ role) {
	r.v.VisitSlot(tn, ast.TypeNameSpecifiers, roleUse)
	r.v.VisitSlot(tn, ast.TypeNameDeclarator, roleSkip)
}

func (r *resolver) arrayType(a *ast.Composite, ro role) {
	r.v.VisitSlot(a, ast.ArrayElement, ro)
	r.v.VisitSlot(a, ast.ArraySize, roleUse)
}

func (r *resolver) functionType(ft *ast.Composite, ro role) {
	r.v.VisitSlot(ft, ast.FunctionTypeDeclarator, ro)
	params := ft.Children(ast.FunctionTypeParameters)
	if len(params) == 0 {
		return
	}
	name := ""
	if id := ast.DeclaredIdentifier(ft); id != nil {
		name = id.Lexeme()
	}
	r.prototype(name, ft, params)
}

func (r *resolver) identifier(id *ast.Leaf, ro role) {
	switch ro {
	case roleUse, roleFunctionBody:
		r.use(Ordinary, id)
	case roleDeclare:
		kind := Variable
		if b := ast.Binder(id); b != nil && b.Kind() == ast.FunctionType {
			kind = Function
		}
		r.declare(Ordinary, id, kind, false)
	case roleTypedef:
		r.declare(Ordinary, id, Type, false)
	case roleMember:
		r.declare(Members, id, Variable, false)
	case roleSkip:
	}
}

func (r *resolver) typedefName(tn *ast.Leaf, _ role) {
	r.use(Ordinary, tn)
}

// tag declares or references the tag of a struct, union or enum. A body
// makes it a definition. Without a body an unknown tag is declared in the
// current scope, and so is a visible tag of another keyword, which is a
// duplicate when both live in the same scope.
func (r *resolver) tag(tag *ast.Leaf, spec ast.Kind, hasBody bool) {
	if !hasBody {
		if sym := r.sys.Current().Lookup(Tags, tag.Lexeme()); sym != nil && sym.Tag == spec {
			r.res.Uses[tag] = sym
			return
		}
	}
	r.insert(Tags, &Symbol{
		Name:    tag.Lexeme(),
		Kind:    Type,
		Node:    tag,
		Defined: hasBody,
		Tag:     spec,
	})
}

func (r *resolver) record(s *ast.Composite, _ role) {
	members := s.Children(ast.RecordMembers)
	name := ""
	if tag, ok := s.Child(ast.RecordTag).(*ast.Leaf); ok {
		name = tag.Lexeme()
		r.tag(tag, s.Kind(), len(members) > 0)
	}
	if len(members) == 0 {
		return
	}
	r.enter(StructUnionEnumScope, name, s)
	for _, m := range members {
		r.v.Visit(m, roleUse)
	}
	r.exit()
}

func (r *resolver) structDeclaration(sd *ast.Composite, _ role) {
	r.v.VisitSlot(sd, ast.MemberSpecifiers, roleUse)
	r.v.VisitSlot(sd, ast.MemberDeclarators, roleMember)
}

// enumSpecifier opens no scope. Enumerators land in the nearest ordinary
// namespace.
func (r *resolver) enumSpecifier(e *ast.Composite, _ role) {
	enumerators := e.Children(ast.EnumEnumerators)
	if tag, ok := e.Child(ast.EnumTag).(*ast.Leaf); ok {
		r.tag(tag, ast.EnumSpecifier, len(enumerators) > 0)
	}
	for _, en := range enumerators {
		r.v.Visit(en, roleUse)
	}
}

func (r *resolver) enumerator(en *ast.Composite, _ role) {
	name, ok := en.Child(ast.EnumeratorName).(*ast.Leaf)
	if !ok {
		diag.Abort(diag.Errorf(diag.MissingRequiredChild, en.Pos(), "enumerator without a name"))
	}
	// The value is resolved before the enumerator itself is visible.
	r.v.VisitSlot(en, ast.EnumeratorValue, roleUse)
	r.declare(Ordinary, name, EnumConstant, false)
}

func (r *resolver) compoundStatement(c *ast.Composite, ro role) {
	if ro == roleFunctionBody {
		r.v.VisitSlot(c, ast.CompoundItems, roleUse)
		return
	}
	r.enter(BlockScope, "", c)
	r.v.VisitSlot(c, ast.CompoundItems, roleUse)
	r.exit()
}

func (r *resolver) forStatement(f *ast.Composite, _ role) {
	r.enter(BlockScope, "", f)
	r.v.VisitChildren(f, roleUse)
	r.exit()
}

func (r *resolver) labeledStatement(ls *ast.Composite, _ role) {
	label, ok := ls.Child(ast.LabelName).(*ast.Leaf)
	if !ok {
		diag.Abort(diag.Errorf(diag.MissingRequiredChild, ls.Pos(), "labeled statement without a label"))
	}
	r.declare(Labels, label, Label, true)
	r.v.VisitSlot(ls, ast.LabelStatement, roleUse)
}

func (r *resolver) gotoStatement(g *ast.Composite, _ role) {
	label, ok := g.Child(ast.GotoLabel).(*ast.Leaf)
	if !ok {
		diag.Abort(diag.Errorf(diag.MissingRequiredChild, g.Pos(), "goto without a label"))
	}
	r.gotos = append(r.gotos, label)
}

// memberAccess resolves the object only. Member names need the type of
// the object, which is not known to this pass.
func (r *resolver) memberAccess(m *ast.Composite, _ role) {
	r.v.VisitSlot(m, ast.MemberObject, roleUse)
}

// Package lower converts the concrete syntax tree built by package parse
// into the abstract syntax tree of package ast.
//
// The lowering walks the CST once, top down. A stack of build frames records
// which AST node and which of its slots the node currently being lowered
// attaches to. Every descent pushes a frame and pops it on the way out, so
// sibling subtrees always see the frame of their common parent.
package lower

import (
	"strings"

	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/cpp"
	"github.com/andrewchambers/cfront/diag"
	"github.com/andrewchambers/cfront/parse"
)

type frame struct {
	parent *ast.Composite
	slot   ast.Slot
}

type lowerer struct {
	root   *ast.Composite
	frames []frame
	// Innermost pointer of the pointer chain being lowered, set until the
	// declarator that owns the chain consumes it.
	bottom *ast.Composite
}

// Lower builds the AST of a translation unit. The first malformed construct
// aborts the lowering.
func Lower(tu parse.Node) (root *ast.Composite, err error) {
	defer diag.Catch(&err)
	l := &lowerer{}
	l.visit(tu)
	if l.root == nil {
		l.fail(diag.StructuralViolation, tu.Pos(), "input is not a translation unit")
	}
	return l.root, nil
}

func (l *lowerer) fail(kind diag.Kind, pos cpp.FilePos, format string, args ...interface{}) {
	diag.Abort(diag.Errorf(kind, pos, format, args...))
}

func (l *lowerer) push(parent *ast.Composite, slot ast.Slot) {
	l.frames = append(l.frames, frame{parent: parent, slot: slot})
}

func (l *lowerer) pop() {
	l.frames = l.frames[:len(l.frames)-1]
}

func (l *lowerer) top(pos cpp.FilePos) frame {
	if len(l.frames) == 0 {
		l.fail(diag.StructuralViolation, pos, "no enclosing node to attach to")
	}
	return l.frames[len(l.frames)-1]
}

// into lowers n as a child of parent in slot.
func (l *lowerer) into(parent *ast.Composite, slot ast.Slot, n parse.Node) {
	l.push(parent, slot)
	defer l.pop()
	l.visit(n)
}

// attach adds n to the current frame.
func (l *lowerer) attach(n ast.Node) {
	f := l.top(n.Pos())
	if err := f.parent.AddChild(n, f.slot); err != nil {
		diag.Abort(err)
	}
}

// open creates a composite for r and attaches it to the current frame.
func (l *lowerer) open(kind ast.Kind, r *parse.Rule) *ast.Composite {
	c := ast.NewComposite(kind, r.Pos())
	l.attach(c)
	return c
}

func (l *lowerer) visit(n parse.Node) {
	switch n := n.(type) {
	case *parse.Terminal:
		l.terminal(n)
	case *parse.Rule:
		l.rule(n)
	default:
		l.fail(diag.StructuralViolation, cpp.FilePos{}, "unknown CST node %T", n)
	}
}

// children lowers every child of r into the current frame.
func (l *lowerer) children(r *parse.Rule) {
	for _, c := range r.Children {
		l.visit(c)
	}
}

// required returns child i of r, which must be a rule.
func (l *lowerer) required(r *parse.Rule, i int, what string) *parse.Rule {
	rules := r.Rules()
	if i >= len(rules) {
		l.fail(diag.MissingRequiredChild, r.Pos(), "%s without %s", r.Kind, what)
	}
	return rules[i]
}

func (l *lowerer) rule(r *parse.Rule) {
	switch r.Kind {
	case parse.RuleTranslationUnit:
		l.translationUnit(r)
	case parse.RuleFunctionDefinition:
		l.functionDefinition(r)
	case parse.RuleDeclaration:
		l.declaration(r)
	case parse.RuleDeclarationSpecifiers, parse.RuleStorageClassSpecifier,
		parse.RuleTypeSpecifier, parse.RuleTypeQualifier,
		parse.RuleInitDeclaratorList, parse.RuleInitializerList,
		parse.RuleParameterList, parse.RuleArgumentExpressionList,
		parse.RuleDirectDeclaratorIdentifier, parse.RuleDirectDeclaratorParenthesized:
		l.children(r)
	case parse.RuleStructOrUnionSpecifier:
		l.structOrUnion(r)
	case parse.RuleStructDeclaration:
		l.structDeclaration(r)
	case parse.RuleEnumSpecifier:
		l.enumSpecifier(r)
	case parse.RuleEnumerator:
		l.enumerator(r)
	case parse.RuleInitDeclarator:
		l.initDeclarator(r)
	case parse.RuleInitializer:
		l.initializer(r)
	case parse.RuleDeclarator:
		l.declarator(r)
	case parse.RulePointer:
		l.pointer(r)
	case parse.RuleDirectDeclaratorArray:
		l.arrayDeclarator(r)
	case parse.RuleDirectDeclaratorFunction:
		l.functionDeclarator(r)
	case parse.RuleParameterDeclaration:
		l.parameterDeclaration(r)
	case parse.RuleTypeName:
		l.typeName(r)

	case parse.RuleCompoundStatement:
		l.compoundStatement(r)
	case parse.RuleExpressionStatement:
		l.slots(r, ast.ExpressionStatement, ast.StatementExpression)
	case parse.RuleIfStatement:
		l.slots(r, ast.IfStatement, ast.IfCond, ast.IfThen, ast.IfElse)
	case parse.RuleSwitchStatement:
		l.slots(r, ast.SwitchStatement, ast.SwitchCond, ast.SwitchBody)
	case parse.RuleWhileStatement:
		l.slots(r, ast.WhileStatement, ast.WhileCond, ast.WhileBody)
	case parse.RuleDoWhileStatement:
		l.slots(r, ast.DoWhileStatement, ast.DoBody, ast.DoCond)
	case parse.RuleForStatement:
		l.forStatement(r)
	case parse.RuleLabeledStatement:
		l.labeledStatement(r)
	case parse.RuleCaseStatement:
		l.slots(r, ast.CaseStatement, ast.CaseValue, ast.CaseBody)
	case parse.RuleDefaultStatement:
		l.slots(r, ast.DefaultStatement, ast.DefaultBody)
	case parse.RuleGotoStatement:
		l.gotoStatement(r)
	case parse.RuleContinueStatement:
		l.open(ast.ContinueStatement, r)
	case parse.RuleBreakStatement:
		l.open(ast.BreakStatement, r)
	case parse.RuleReturnStatement:
		l.slots(r, ast.ReturnStatement, ast.ReturnValue)

	case parse.RuleExpression, parse.RuleLogicalOrExpression, parse.RuleLogicalAndExpression,
		parse.RuleInclusiveOrExpression, parse.RuleExclusiveOrExpression, parse.RuleAndExpression,
		parse.RuleEqualityExpression, parse.RuleRelationalExpression, parse.RuleShiftExpression,
		parse.RuleAdditiveExpression, parse.RuleMultiplicativeExpression:
		l.binary(r, binaryOperator)
	case parse.RuleAssignmentExpression:
		l.binary(r, assignmentOperator)
	case parse.RuleConditionalExpression:
		l.conditional(r)
	case parse.RuleCastExpression:
		l.cast(r)
	case parse.RuleUnaryExpression:
		l.unary(r)
	case parse.RulePostfixExpression:
		l.postfix(r)
	case parse.RulePrimaryExpression:
		l.primary(r)
	default:
		l.fail(diag.StructuralViolation, r.Pos(), "unexpected %s", r.Kind)
	}
}

func (l *lowerer) translationUnit(r *parse.Rule) {
	if l.root != nil {
		l.fail(diag.StructuralViolation, r.Pos(), "nested translation unit")
	}
	l.root = ast.NewComposite(ast.TranslationUnit, r.Pos())
	for _, c := range r.Children {
		cr, ok := c.(*parse.Rule)
		if !ok {
			l.fail(diag.StructuralViolation, c.Pos(), "stray token at file scope")
		}
		switch cr.Kind {
		case parse.RuleFunctionDefinition:
			l.into(l.root, ast.UnitFunctions, cr)
		case parse.RuleDeclaration:
			l.into(l.root, ast.UnitDeclarations, cr)
		default:
			l.fail(diag.StructuralViolation, cr.Pos(), "%s at file scope", cr.Kind)
		}
	}
}

// specifiers distributes declaration specifiers between a storage class
// slot and a type slot, which may be the same.
func (l *lowerer) specifiers(r *parse.Rule, parent *ast.Composite, storage, typ ast.Slot) {
	specs := r.First(parse.RuleDeclarationSpecifiers)
	if specs == nil {
		return
	}
	for _, s := range specs.Rules() {
		slot := typ
		if s.Kind == parse.RuleStorageClassSpecifier {
			slot = storage
		}
		l.into(parent, slot, s)
	}
}

func (l *lowerer) functionDefinition(r *parse.Rule) {
	fd := l.open(ast.FunctionDefinition, r)
	l.specifiers(r, fd, ast.FuncSpecifiers, ast.FuncSpecifiers)
	decl := r.First(parse.RuleDeclarator)
	if decl == nil {
		l.fail(diag.MissingRequiredChild, r.Pos(), "function definition without declarator")
	}
	body := r.First(parse.RuleCompoundStatement)
	if body == nil {
		l.fail(diag.MissingRequiredChild, r.Pos(), "function definition without body")
	}
	// A parameter list directly below routes itself into the definition's
	// own slots, see functionDeclarator.
	l.into(fd, ast.FuncDeclarator, decl)
	l.into(fd, ast.FuncBody, body)
}

func (l *lowerer) declaration(r *parse.Rule) {
	d := l.open(ast.Declaration, r)
	l.specifiers(r, d, ast.DeclStorageClass, ast.DeclType)
	if list := r.First(parse.RuleInitDeclaratorList); list != nil {
		l.into(d, ast.DeclDeclarators, list)
	}
}

func (l *lowerer) initDeclarator(r *parse.Rule) {
	decl := r.First(parse.RuleDeclarator)
	if decl == nil {
		l.fail(diag.MissingRequiredChild, r.Pos(), "init declarator without declarator")
	}
	init := r.First(parse.RuleInitializer)
	if init == nil {
		l.visit(decl)
		return
	}
	id := l.open(ast.InitDeclarator, r)
	l.into(id, ast.InitDecl, decl)
	l.into(id, ast.InitValue, init)
}

func (l *lowerer) initializer(r *parse.Rule) {
	if r.Token('{') == nil {
		l.children(r)
		return
	}
	list := l.open(ast.InitializerList, r)
	if items := r.First(parse.RuleInitializerList); items != nil {
		l.into(list, ast.ListItems, items)
	}
}

// declarator lowers an optional pointer chain followed by a direct
// declarator. With a chain, the direct declarator hangs below the innermost
// pointer, so "int **p" becomes PointerType{PointerType{p}}.
func (l *lowerer) declarator(r *parse.Rule) {
	var ptr, direct *parse.Rule
	for _, c := range r.Rules() {
		if c.Kind == parse.RulePointer {
			ptr = c
		} else {
			direct = c
		}
	}
	if ptr == nil {
		if direct != nil {
			l.visit(direct)
		}
		return
	}
	l.pointer(ptr)
	bottom := l.bottom
	l.bottom = nil
	if direct != nil {
		l.into(bottom, ast.PointerTarget, direct)
	}
}

func (l *lowerer) pointer(r *parse.Rule) {
	p := l.open(ast.PointerType, r)
	var nested *parse.Rule
	for _, c := range r.Rules() {
		switch c.Kind {
		case parse.RuleTypeQualifier:
			l.into(p, ast.PointerQualifiers, c)
		case parse.RulePointer:
			nested = c
		}
	}
	if nested == nil {
		l.bottom = p
		return
	}
	l.into(p, ast.PointerTarget, nested)
}

func (l *lowerer) arrayDeclarator(r *parse.Rule) {
	elem := l.required(r, 0, "element declarator")
	a := l.open(ast.ArrayType, r)
	l.into(a, ast.ArrayElement, elem)
	if rules := r.Rules(); len(rules) > 1 {
		l.into(a, ast.ArraySize, rules[1])
	}
}

// functionDeclarator lowers "declarator ( parameters )". Directly below a
// function definition the parts fill the definition's own slots. Anywhere
// else the declarator names a function type. The function type is the
// outer node, so "int (*f)(int)" is FunctionType{PointerType{f}}.
func (l *lowerer) functionDeclarator(r *parse.Rule) {
	inner := l.required(r, 0, "declarator")
	params := r.First(parse.RuleParameterList)
	if parent := l.top(r.Pos()).parent; parent.Kind() == ast.FunctionDefinition {
		l.into(parent, ast.FuncDeclarator, inner)
		if params != nil {
			l.into(parent, ast.FuncParameters, params)
		}
		return
	}
	ft := l.open(ast.FunctionType, r)
	l.into(ft, ast.FunctionTypeDeclarator, inner)
	if params != nil {
		l.into(ft, ast.FunctionTypeParameters, params)
	}
}

func (l *lowerer) parameterDeclaration(r *parse.Rule) {
	pd := l.open(ast.ParameterDeclaration, r)
	l.specifiers(r, pd, ast.ParamSpecifiers, ast.ParamSpecifiers)
	if d := r.First(parse.RuleDeclarator); d != nil {
		l.into(pd, ast.ParamDeclarator, d)
	}
}

func (l *lowerer) typeName(r *parse.Rule) {
	tn := l.open(ast.TypeName, r)
	l.specifiers(r, tn, ast.TypeNameSpecifiers, ast.TypeNameSpecifiers)
	if d := r.First(parse.RuleDeclarator); d != nil {
		l.into(tn, ast.TypeNameDeclarator, d)
	}
}

func (l *lowerer) structOrUnion(r *parse.Rule) {
	kind := ast.StructSpecifier
	switch kw := r.TerminalAt(0); {
	case kw == nil:
		l.fail(diag.MissingRequiredChild, r.Pos(), "%s without keyword", r.Kind)
	case kw.Kind() == cpp.UNION:
		kind = ast.UnionSpecifier
	}
	s := l.open(kind, r)
	if tag := r.Token(cpp.IDENT); tag != nil {
		l.into(s, ast.RecordTag, tag)
	}
	for _, m := range r.All(parse.RuleStructDeclaration) {
		l.into(s, ast.RecordMembers, m)
	}
}

func (l *lowerer) structDeclaration(r *parse.Rule) {
	sd := l.open(ast.StructDeclaration, r)
	l.specifiers(r, sd, ast.MemberSpecifiers, ast.MemberSpecifiers)
	for _, d := range r.All(parse.RuleDeclarator) {
		l.into(sd, ast.MemberDeclarators, d)
	}
}

func (l *lowerer) enumSpecifier(r *parse.Rule) {
	e := l.open(ast.EnumSpecifier, r)
	if tag := r.Token(cpp.IDENT); tag != nil {
		l.into(e, ast.EnumTag, tag)
	}
	for _, en := range r.All(parse.RuleEnumerator) {
		l.into(e, ast.EnumEnumerators, en)
	}
}

func (l *lowerer) enumerator(r *parse.Rule) {
	name := r.Token(cpp.IDENT)
	if name == nil {
		l.fail(diag.MissingRequiredChild, r.Pos(), "enumerator without name")
	}
	en := l.open(ast.Enumerator, r)
	l.into(en, ast.EnumeratorName, name)
	if rules := r.Rules(); len(rules) > 0 {
		l.into(en, ast.EnumeratorValue, rules[0])
	}
}

// slots creates a node of kind for r and lowers the child rules of r, in
// order, into the given slots. Missing trailing children leave their
// slots empty.
func (l *lowerer) slots(r *parse.Rule, kind ast.Kind, slots ...ast.Slot) {
	n := l.open(kind, r)
	rules := r.Rules()
	if len(rules) > len(slots) {
		l.fail(diag.StructuralViolation, r.Pos(), "%s has %d parts, expected at most %d", r.Kind, len(rules), len(slots))
	}
	for i, c := range rules {
		l.into(n, slots[i], c)
	}
}

func (l *lowerer) compoundStatement(r *parse.Rule) {
	c := l.open(ast.CompoundStatement, r)
	for _, item := range r.Rules() {
		l.into(c, ast.CompoundItems, item)
	}
}

// forStatement places each clause by counting the separators before it.
// A declaration in the first clause carries its own semicolon.
func (l *lowerer) forStatement(r *parse.Rule) {
	f := l.open(ast.ForStatement, r)
	clause := ast.ForInit
	for _, c := range r.Children {
		switch c := c.(type) {
		case *parse.Terminal:
			switch c.Kind() {
			case ';':
				clause++
			case ')':
				clause = ast.ForBody
			}
		case *parse.Rule:
			if clause > ast.ForBody {
				l.fail(diag.StructuralViolation, c.Pos(), "too many clauses in for statement")
			}
			l.into(f, clause, c)
			if c.Kind == parse.RuleDeclaration {
				clause = ast.ForCond
			}
		}
	}
}

func (l *lowerer) labeledStatement(r *parse.Rule) {
	label := r.Token(cpp.IDENT)
	if label == nil {
		l.fail(diag.MissingRequiredChild, r.Pos(), "labeled statement without label")
	}
	stmt := l.required(r, 0, "statement")
	ls := l.open(ast.LabeledStatement, r)
	l.into(ls, ast.LabelName, label)
	l.into(ls, ast.LabelStatement, stmt)
}

func (l *lowerer) gotoStatement(r *parse.Rule) {
	label := r.Token(cpp.IDENT)
	if label == nil {
		l.fail(diag.MissingRequiredChild, r.Pos(), "goto without label")
	}
	g := l.open(ast.GotoStatement, r)
	l.into(g, ast.GotoLabel, label)
}

// binary lowers a left associative level. A single child is a pass-through
// and creates no node.
func (l *lowerer) binary(r *parse.Rule, operator func(cpp.TokenKind) (ast.Kind, bool)) {
	switch len(r.Children) {
	case 1:
		l.visit(r.Children[0])
		return
	case 3:
	default:
		l.fail(diag.StructuralViolation, r.Pos(), "%s with %d children", r.Kind, len(r.Children))
	}
	op := r.TerminalAt(1)
	if op == nil {
		l.fail(diag.StructuralViolation, r.Pos(), "%s without operator", r.Kind)
	}
	kind, ok := operator(op.Kind())
	if !ok {
		l.fail(diag.UnhandledOperator, op.Pos(), "%s in %s", op.Kind(), r.Kind)
	}
	n := l.open(kind, r)
	l.into(n, ast.Left, r.Children[0])
	l.into(n, ast.Right, r.Children[2])
}

func (l *lowerer) conditional(r *parse.Rule) {
	switch len(r.Children) {
	case 1:
		l.visit(r.Children[0])
	case 5:
		n := l.open(ast.Conditional, r)
		l.into(n, ast.CondTest, r.Children[0])
		l.into(n, ast.CondThen, r.Children[2])
		l.into(n, ast.CondElse, r.Children[4])
	default:
		l.fail(diag.StructuralViolation, r.Pos(), "%s with %d children", r.Kind, len(r.Children))
	}
}

func (l *lowerer) cast(r *parse.Rule) {
	if len(r.Children) == 1 {
		l.visit(r.Children[0])
		return
	}
	tn := r.First(parse.RuleTypeName)
	if tn == nil || len(r.Children) != 4 {
		l.fail(diag.MissingRequiredChild, r.Pos(), "cast without type name")
	}
	n := l.open(ast.Cast, r)
	l.into(n, ast.CastType, tn)
	l.into(n, ast.CastOperand, r.Children[3])
}

func (l *lowerer) unary(r *parse.Rule) {
	if len(r.Children) == 1 {
		l.visit(r.Children[0])
		return
	}
	op := r.TerminalAt(0)
	if op == nil {
		l.fail(diag.StructuralViolation, r.Pos(), "%s without operator", r.Kind)
	}
	if op.Kind() == cpp.SIZEOF {
		if tn := r.First(parse.RuleTypeName); tn != nil {
			n := l.open(ast.SizeofType, r)
			l.into(n, ast.Operand, tn)
			return
		}
		n := l.open(ast.SizeofExpression, r)
		l.into(n, ast.Operand, r.Children[1])
		return
	}
	kind, ok := unaryOperator(op.Kind())
	if !ok {
		l.fail(diag.UnhandledOperator, op.Pos(), "unary %s", op.Kind())
	}
	n := l.open(kind, r)
	l.into(n, ast.Operand, r.Children[1])
}

func (l *lowerer) postfix(r *parse.Rule) {
	if len(r.Children) == 1 {
		l.visit(r.Children[0])
		return
	}
	op := r.TerminalAt(1)
	if op == nil {
		l.fail(diag.StructuralViolation, r.Pos(), "%s without operator", r.Kind)
	}
	operand := r.Children[0]
	switch op.Kind() {
	case '[':
		n := l.open(ast.ArraySubscript, r)
		l.into(n, ast.SubscriptArray, operand)
		l.into(n, ast.SubscriptIndex, l.required(r, 1, "index"))
	case '(':
		n := l.open(ast.FunctionCall, r)
		l.into(n, ast.CallFunction, operand)
		if args := r.First(parse.RuleArgumentExpressionList); args != nil {
			l.into(n, ast.CallArguments, args)
		}
	case '.', cpp.ARROW:
		kind := ast.MemberAccess
		if op.Kind() == cpp.ARROW {
			kind = ast.PointerMemberAccess
		}
		member := r.Token(cpp.IDENT)
		if member == nil {
			l.fail(diag.MissingRequiredChild, op.Pos(), "member access without member name")
		}
		n := l.open(kind, r)
		l.into(n, ast.MemberObject, operand)
		l.into(n, ast.MemberName, member)
	default:
		kind, ok := postfixOperator(op.Kind())
		if !ok {
			l.fail(diag.UnhandledOperator, op.Pos(), "postfix %s", op.Kind())
		}
		n := l.open(kind, r)
		l.into(n, ast.Operand, operand)
	}
}

func (l *lowerer) primary(r *parse.Rule) {
	if len(r.Children) == 1 {
		l.visit(r.Children[0])
		return
	}
	if t := r.TerminalAt(0); t != nil && t.Kind() == '(' {
		// Parentheses only group.
		l.visit(l.required(r, 0, "expression"))
		return
	}
	// Adjacent string literals form one literal.
	var parts []string
	for _, c := range r.Children {
		t, ok := c.(*parse.Terminal)
		if !ok || t.Kind() != cpp.STRING {
			l.fail(diag.StructuralViolation, c.Pos(), "unexpected %T in %s", c, r.Kind)
		}
		parts = append(parts, t.Text())
	}
	l.attach(ast.NewLeaf(ast.StringLiteral, strings.Join(parts, " "), r.Pos()))
}

// terminal turns a token into a leaf. Punctuation and keywords that only
// shape the tree produce nothing.
func (l *lowerer) terminal(t *parse.Terminal) {
	kind, ok := leafKind(t.Kind())
	if !ok {
		return
	}
	l.attach(ast.NewLeaf(kind, t.Text(), t.Pos()))
}

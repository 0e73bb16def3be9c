package parse

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/andrewchambers/cfront/cpp"
)

// TokenSource supplies tokens to the parser. *cpp.Lexer is one.
type TokenSource interface {
	Next() (*cpp.Token, error)
}

type parser struct {
	types       *scope
	src         TokenSource
	curt, nextt *cpp.Token
}

type parseErrorBreakOut struct {
	err error
}

// Parse reads a whole translation unit and returns its concrete syntax tree.
func Parse(src TokenSource) (tu *Rule, errRet error) {
	p := &parser{}
	p.src = src
	p.types = newScope(nil)

	defer func() {
		if e := recover(); e != nil {
			peb := e.(parseErrorBreakOut) // Will re-panic if not a breakout.
			tu = nil
			errRet = peb.err
		}
	}()
	p.next()
	p.next()
	return p.parseTranslationUnit(), nil
}

// ParseReader lexes and parses the source read from r.
func ParseReader(fname string, r io.Reader) (*Rule, error) {
	return Parse(cpp.Lex(fname, r))
}

func (p *parser) errorPos(m string, pos cpp.FilePos, vals ...interface{}) {
	err := fmt.Errorf("syntax error: "+m, vals...)
	if os.Getenv("CCDEBUG") == "true" {
		err = fmt.Errorf("%s\n%s", err, debug.Stack())
	}
	err = cpp.ErrWithLoc(err, pos)
	panic(parseErrorBreakOut{err})
}

func (p *parser) expect(k cpp.TokenKind) *Terminal {
	if p.curt.Kind != k {
		p.errorPos("expected %s got %s", p.curt.Pos, k, p.curt.Kind)
	}
	return p.terminal()
}

// terminal consumes the current token.
func (p *parser) terminal() *Terminal {
	t := NewTerminal(p.curt)
	p.next()
	return t
}

func (p *parser) next() {
	p.curt = p.nextt
	t, err := p.src.Next()
	if err != nil {
		panic(parseErrorBreakOut{err})
	}
	p.nextt = t
}

func (p *parser) pushScope() {
	p.types = newScope(p.types)
}

func (p *parser) popScope() {
	p.types = p.types.parent
}

func (p *parser) parseTranslationUnit() *Rule {
	tu := NewRule(RuleTranslationUnit)
	for p.curt.Kind != cpp.EOF {
		tu.Children = append(tu.Children, p.parseDeclaration(true))
	}
	return tu
}

func (p *parser) isTypeNameStart(t *cpp.Token) bool {
	switch t.Kind {
	case cpp.VOID, cpp.CHAR, cpp.SHORT, cpp.INT, cpp.LONG, cpp.FLOAT, cpp.DOUBLE,
		cpp.SIGNED, cpp.UNSIGNED, cpp.STRUCT, cpp.UNION, cpp.ENUM,
		cpp.CONST, cpp.VOLATILE, cpp.RESTRICT:
		return true
	case cpp.IDENT:
		return p.types.isType(t.Val)
	}
	return false
}

func (p *parser) isDeclarationStart(t *cpp.Token) bool {
	switch t.Kind {
	case cpp.TYPEDEF, cpp.EXTERN, cpp.STATIC, cpp.AUTO, cpp.REGISTER:
		return true
	case cpp.IDENT:
		// A label may reuse a typedef name.
		if p.nextt.Kind == ':' {
			return false
		}
	}
	return p.isTypeNameStart(t)
}

// parseDeclaration parses a declaration, or at file scope a function
// definition, which shares its prefix.
func (p *parser) parseDeclaration(isGlobal bool) *Rule {
	specs, isTypedef := p.parseDeclarationSpecifiers(true)
	if p.curt.Kind == ';' {
		return NewRule(RuleDeclaration, specs, p.terminal())
	}
	var inits []Node
	for {
		decl := p.parseDeclarator(false)
		if len(inits) == 0 && isGlobal && !isTypedef && p.curt.Kind == '{' {
			return p.parseFunctionDefinition(specs, decl)
		}
		p.declare(decl, isTypedef)
		initDecl := NewRule(RuleInitDeclarator, decl)
		if p.curt.Kind == '=' {
			initDecl.Children = append(initDecl.Children, p.terminal(), p.parseInitializer())
		}
		inits = append(inits, initDecl)
		if p.curt.Kind != ',' {
			break
		}
		inits = append(inits, p.terminal())
	}
	if p.curt.Kind != ';' {
		p.errorPos("expected '=', ',' or ';'", p.curt.Pos)
	}
	return NewRule(RuleDeclaration, specs, NewRule(RuleInitDeclaratorList, inits...), p.terminal())
}

func (p *parser) parseFunctionDefinition(specs, decl *Rule) *Rule {
	p.declare(decl, false)
	p.pushScope()
	if params := innermostParameters(decl); params != nil {
		for _, pd := range params.All(RuleParameterDeclaration) {
			if d := pd.First(RuleDeclarator); d != nil {
				p.declare(d, false)
			}
		}
	}
	// The body shares the scope of the parameters.
	body := p.parseCompoundStatement(false)
	p.popScope()
	return NewRule(RuleFunctionDefinition, specs, decl, body)
}

func (p *parser) declare(decl *Rule, isType bool) {
	if name := declaredName(decl); name != nil {
		p.types.define(name.Text(), isType)
	}
}

func (p *parser) parseDeclarationSpecifiers(allowStorage bool) (*Rule, bool) {
	specs := NewRule(RuleDeclarationSpecifiers)
	isTypedef := false
	sawType := false
	add := func(kind RuleKind, n Node) {
		specs.Children = append(specs.Children, NewRule(kind, n))
	}
loop:
	for {
		switch p.curt.Kind {
		case cpp.TYPEDEF, cpp.EXTERN, cpp.STATIC, cpp.AUTO, cpp.REGISTER: // Typedef is actually a storage class like static.
			if !allowStorage {
				p.errorPos("unexpected storage class %s", p.curt.Pos, p.curt.Kind)
			}
			if p.curt.Kind == cpp.TYPEDEF {
				isTypedef = true
			}
			add(RuleStorageClassSpecifier, p.terminal())
		case cpp.CONST, cpp.VOLATILE, cpp.RESTRICT:
			add(RuleTypeQualifier, p.terminal())
		case cpp.VOID, cpp.CHAR, cpp.SHORT, cpp.INT, cpp.LONG, cpp.FLOAT, cpp.DOUBLE,
			cpp.SIGNED, cpp.UNSIGNED:
			sawType = true
			add(RuleTypeSpecifier, p.terminal())
		case cpp.STRUCT, cpp.UNION:
			sawType = true
			add(RuleTypeSpecifier, p.parseStructOrUnionSpecifier())
		case cpp.ENUM:
			sawType = true
			add(RuleTypeSpecifier, p.parseEnumSpecifier())
		case cpp.IDENT:
			if sawType || !p.types.isType(p.curt.Val) {
				break loop
			}
			sawType = true
			tok := *p.curt
			tok.Kind = cpp.TYPENAME
			p.next()
			add(RuleTypeSpecifier, NewTerminal(&tok))
		default:
			break loop
		}
	}
	if len(specs.Children) == 0 {
		p.errorPos("expected declaration specifiers but got %s", p.curt.Pos, p.curt.Kind)
	}
	return specs, isTypedef
}

func (p *parser) parseStructOrUnionSpecifier() *Rule {
	r := NewRule(RuleStructOrUnionSpecifier, p.terminal())
	if p.curt.Kind == cpp.IDENT {
		r.Children = append(r.Children, p.terminal())
	}
	if p.curt.Kind == '{' {
		r.Children = append(r.Children, p.terminal())
		for p.curt.Kind != '}' {
			r.Children = append(r.Children, p.parseStructDeclaration())
		}
		r.Children = append(r.Children, p.expect('}'))
	}
	if len(r.Children) == 1 {
		p.errorPos("expected tag or '{' after %s", p.curt.Pos, r.TerminalAt(0).Kind())
	}
	return r
}

func (p *parser) parseStructDeclaration() *Rule {
	specs, _ := p.parseDeclarationSpecifiers(false)
	r := NewRule(RuleStructDeclaration, specs)
	if p.curt.Kind != ';' {
		for {
			r.Children = append(r.Children, p.parseDeclarator(false))
			if p.curt.Kind != ',' {
				break
			}
			r.Children = append(r.Children, p.terminal())
		}
	}
	r.Children = append(r.Children, p.expect(';'))
	return r
}

func (p *parser) parseEnumSpecifier() *Rule {
	r := NewRule(RuleEnumSpecifier, p.expect(cpp.ENUM))
	if p.curt.Kind == cpp.IDENT {
		r.Children = append(r.Children, p.terminal())
	}
	if p.curt.Kind == '{' {
		r.Children = append(r.Children, p.terminal())
		for p.curt.Kind != '}' {
			r.Children = append(r.Children, p.parseEnumerator())
			if p.curt.Kind != ',' {
				break
			}
			r.Children = append(r.Children, p.terminal())
		}
		r.Children = append(r.Children, p.expect('}'))
	}
	if len(r.Children) == 1 {
		p.errorPos("expected tag or '{' after enum", p.curt.Pos)
	}
	return r
}

func (p *parser) parseEnumerator() *Rule {
	name := p.expect(cpp.IDENT)
	p.types.define(name.Text(), false)
	r := NewRule(RuleEnumerator, name)
	if p.curt.Kind == '=' {
		r.Children = append(r.Children, p.terminal(), p.parseConditionalExpression())
	}
	return r
}

// Declarator
// ----------
//
// A declarator is the part of a declaration that specifies
// the name that is to be introduced into the program.
//
// unsigned int a, *b, **c, *const*d *volatile*e ;
//              ^  ^^  ^^^  ^^^^^^^^ ^^^^^^^^^^^
//
// Direct Declarator
// -----------------
//
// A direct declarator is missing the pointer prefix.
//
// e.g.
// unsigned int *a[32], b[];
//               ^^^^^  ^^^
//
// Abstract Declarator
// -------------------
//
// A delcarator missing an identifier.

func (p *parser) parseDeclarator(abstract bool) *Rule {
	d := NewRule(RuleDeclarator)
	pos := p.curt.Pos
	if p.curt.Kind == '*' {
		d.Children = append(d.Children, p.parsePointer())
	}
	if dd := p.parseDirectDeclarator(abstract); dd != nil {
		d.Children = append(d.Children, dd)
	}
	if len(d.Children) == 0 {
		p.errorPos("expected ident, '(' or '*' but got %s", pos, p.curt.Kind)
	}
	if !abstract && declaredName(d) == nil {
		p.errorPos("declarator has no identifier", pos)
	}
	return d
}

func (p *parser) parsePointer() *Rule {
	r := NewRule(RulePointer, p.expect('*'))
	for p.curt.Kind == cpp.CONST || p.curt.Kind == cpp.VOLATILE || p.curt.Kind == cpp.RESTRICT {
		r.Children = append(r.Children, NewRule(RuleTypeQualifier, p.terminal()))
	}
	if p.curt.Kind == '*' {
		r.Children = append(r.Children, p.parsePointer())
	}
	return r
}

func (p *parser) parseDirectDeclarator(abstract bool) *Rule {
	var dd *Rule
	switch p.curt.Kind {
	case cpp.IDENT:
		dd = NewRule(RuleDirectDeclaratorIdentifier, p.terminal())
	case '(':
		if abstract && p.nextt.Kind != '*' && p.nextt.Kind != '(' && p.nextt.Kind != cpp.IDENT {
			return nil
		}
		lparen := p.terminal()
		inner := p.parseDeclarator(abstract)
		dd = NewRule(RuleDirectDeclaratorParenthesized, lparen, inner, p.expect(')'))
	default:
		if !abstract {
			p.errorPos("expected ident, '(' or '*' but got %s", p.curt.Pos, p.curt.Kind)
		}
		return nil
	}
	for {
		switch p.curt.Kind {
		case '[':
			r := NewRule(RuleDirectDeclaratorArray, dd, p.terminal())
			if p.curt.Kind != ']' {
				r.Children = append(r.Children, p.parseAssignmentExpression())
			}
			r.Children = append(r.Children, p.expect(']'))
			dd = r
		case '(':
			r := NewRule(RuleDirectDeclaratorFunction, dd, p.terminal())
			if p.curt.Kind != ')' {
				r.Children = append(r.Children, p.parseParameterList())
			}
			r.Children = append(r.Children, p.expect(')'))
			dd = r
		default:
			return dd
		}
	}
}

func (p *parser) parseParameterList() *Rule {
	r := NewRule(RuleParameterList)
	for {
		if p.curt.Kind == cpp.ELLIPSIS {
			r.Children = append(r.Children, p.terminal())
			break
		}
		r.Children = append(r.Children, p.parseParameterDeclaration())
		if p.curt.Kind != ',' {
			break
		}
		r.Children = append(r.Children, p.terminal())
	}
	return r
}

func (p *parser) parseParameterDeclaration() *Rule {
	specs, _ := p.parseDeclarationSpecifiers(true)
	r := NewRule(RuleParameterDeclaration, specs)
	if p.curt.Kind != ',' && p.curt.Kind != ')' {
		r.Children = append(r.Children, p.parseDeclarator(true))
	}
	return r
}

func (p *parser) parseTypeName() *Rule {
	specs, _ := p.parseDeclarationSpecifiers(false)
	r := NewRule(RuleTypeName, specs)
	if p.curt.Kind == '*' || p.curt.Kind == '(' {
		r.Children = append(r.Children, p.parseDeclarator(true))
	}
	return r
}

func (p *parser) parseInitializer() *Rule {
	if p.curt.Kind != '{' {
		return NewRule(RuleInitializer, p.parseAssignmentExpression())
	}
	r := NewRule(RuleInitializer, p.terminal())
	list := NewRule(RuleInitializerList)
	for p.curt.Kind != '}' {
		list.Children = append(list.Children, p.parseInitializer())
		if p.curt.Kind != ',' {
			break
		}
		list.Children = append(list.Children, p.terminal())
	}
	r.Children = append(r.Children, list, p.expect('}'))
	return r
}

func (p *parser) parseStatement() *Rule {
	if p.curt.Kind == cpp.IDENT && p.nextt.Kind == ':' {
		label := p.terminal()
		colon := p.terminal()
		return NewRule(RuleLabeledStatement, label, colon, p.parseStatement())
	}

	switch p.curt.Kind {
	case cpp.CASE:
		kw := p.terminal()
		e := p.parseConditionalExpression()
		colon := p.expect(':')
		return NewRule(RuleCaseStatement, kw, e, colon, p.parseStatement())
	case cpp.DEFAULT:
		kw := p.terminal()
		colon := p.expect(':')
		return NewRule(RuleDefaultStatement, kw, colon, p.parseStatement())
	case cpp.GOTO:
		kw := p.terminal()
		label := p.expect(cpp.IDENT)
		return NewRule(RuleGotoStatement, kw, label, p.expect(';'))
	case cpp.CONTINUE:
		kw := p.terminal()
		return NewRule(RuleContinueStatement, kw, p.expect(';'))
	case cpp.BREAK:
		kw := p.terminal()
		return NewRule(RuleBreakStatement, kw, p.expect(';'))
	case cpp.RETURN:
		r := NewRule(RuleReturnStatement, p.terminal())
		if p.curt.Kind != ';' {
			r.Children = append(r.Children, p.parseExpression())
		}
		r.Children = append(r.Children, p.expect(';'))
		return r
	case cpp.WHILE:
		return p.parseWhile()
	case cpp.DO:
		return p.parseDoWhile()
	case cpp.FOR:
		return p.parseFor()
	case cpp.IF:
		return p.parseIf()
	case cpp.SWITCH:
		return p.parseSwitch()
	case '{':
		return p.parseCompoundStatement(true)
	case ';':
		return NewRule(RuleExpressionStatement, p.terminal())
	default:
		e := p.parseExpression()
		return NewRule(RuleExpressionStatement, e, p.expect(';'))
	}
}

func (p *parser) parseIf() *Rule {
	r := NewRule(RuleIfStatement, p.expect(cpp.IF), p.expect('('))
	r.Children = append(r.Children, p.parseExpression(), p.expect(')'))
	r.Children = append(r.Children, p.parseStatement())
	if p.curt.Kind == cpp.ELSE {
		r.Children = append(r.Children, p.terminal(), p.parseStatement())
	}
	return r
}

func (p *parser) parseSwitch() *Rule {
	r := NewRule(RuleSwitchStatement, p.expect(cpp.SWITCH), p.expect('('))
	r.Children = append(r.Children, p.parseExpression(), p.expect(')'))
	r.Children = append(r.Children, p.parseStatement())
	return r
}

func (p *parser) parseFor() *Rule {
	r := NewRule(RuleForStatement, p.expect(cpp.FOR), p.expect('('))
	// A declaration in the first clause is scoped to the loop.
	p.pushScope()
	defer p.popScope()
	if p.isDeclarationStart(p.curt) {
		r.Children = append(r.Children, p.parseDeclaration(false))
	} else {
		if p.curt.Kind != ';' {
			r.Children = append(r.Children, p.parseExpression())
		}
		r.Children = append(r.Children, p.expect(';'))
	}
	if p.curt.Kind != ';' {
		r.Children = append(r.Children, p.parseExpression())
	}
	r.Children = append(r.Children, p.expect(';'))
	if p.curt.Kind != ')' {
		r.Children = append(r.Children, p.parseExpression())
	}
	r.Children = append(r.Children, p.expect(')'))
	r.Children = append(r.Children, p.parseStatement())
	return r
}

func (p *parser) parseWhile() *Rule {
	r := NewRule(RuleWhileStatement, p.expect(cpp.WHILE), p.expect('('))
	r.Children = append(r.Children, p.parseExpression(), p.expect(')'))
	r.Children = append(r.Children, p.parseStatement())
	return r
}

func (p *parser) parseDoWhile() *Rule {
	r := NewRule(RuleDoWhileStatement, p.expect(cpp.DO))
	r.Children = append(r.Children, p.parseStatement())
	r.Children = append(r.Children, p.expect(cpp.WHILE), p.expect('('))
	r.Children = append(r.Children, p.parseExpression(), p.expect(')'))
	r.Children = append(r.Children, p.expect(';'))
	return r
}

// parseCompoundStatement parses a block. Function bodies pass false for
// newScope since they share the scope holding the parameters.
func (p *parser) parseCompoundStatement(newScope bool) *Rule {
	r := NewRule(RuleCompoundStatement, p.expect('{'))
	if newScope {
		p.pushScope()
		defer p.popScope()
	}
	for p.curt.Kind != '}' {
		if p.curt.Kind == cpp.EOF {
			p.errorPos("expected '}' got EOF", p.curt.Pos)
		}
		if p.isDeclarationStart(p.curt) {
			r.Children = append(r.Children, p.parseDeclaration(false))
		} else {
			r.Children = append(r.Children, p.parseStatement())
		}
	}
	r.Children = append(r.Children, p.expect('}'))
	return r
}

func isAssignmentOperator(k cpp.TokenKind) bool {
	switch k {
	case '=', cpp.ADD_ASSIGN, cpp.SUB_ASSIGN, cpp.MUL_ASSIGN, cpp.QUO_ASSIGN, cpp.REM_ASSIGN,
		cpp.AND_ASSIGN, cpp.OR_ASSIGN, cpp.XOR_ASSIGN, cpp.SHL_ASSIGN, cpp.SHR_ASSIGN:
		return true
	}
	return false
}

func (p *parser) parseExpression() *Rule {
	l := NewRule(RuleExpression, p.parseAssignmentExpression())
	for p.curt.Kind == ',' {
		op := p.terminal()
		l = NewRule(RuleExpression, l, op, p.parseAssignmentExpression())
	}
	return l
}

func (p *parser) parseAssignmentExpression() *Rule {
	l := p.parseConditionalExpression()
	if isAssignmentOperator(p.curt.Kind) {
		u := unaryOf(l)
		if u == nil {
			p.errorPos("lvalue required as left operand of %s", p.curt.Pos, p.curt.Kind)
		}
		op := p.terminal()
		return NewRule(RuleAssignmentExpression, u, op, p.parseAssignmentExpression())
	}
	return NewRule(RuleAssignmentExpression, l)
}

// unaryOf finds the unary expression a chain of single child rules
// bottoms out in, the only valid left side of an assignment.
func unaryOf(r *Rule) *Rule {
	for {
		if r.Kind == RuleUnaryExpression {
			return r
		}
		if len(r.Children) != 1 {
			return nil
		}
		child, ok := r.Children[0].(*Rule)
		if !ok {
			return nil
		}
		r = child
	}
}

// Aka Ternary operator.
func (p *parser) parseConditionalExpression() *Rule {
	cond := p.parseLogicalOrExpression()
	if p.curt.Kind != '?' {
		return NewRule(RuleConditionalExpression, cond)
	}
	q := p.terminal()
	then := p.parseExpression()
	colon := p.expect(':')
	return NewRule(RuleConditionalExpression, cond, q, then, colon, p.parseConditionalExpression())
}

// parseBinary parses a left associative precedence level.
func (p *parser) parseBinary(kind RuleKind, operand func() *Rule, ops ...cpp.TokenKind) *Rule {
	l := NewRule(kind, operand())
	for isOneOf(p.curt.Kind, ops) {
		op := p.terminal()
		l = NewRule(kind, l, op, operand())
	}
	return l
}

func isOneOf(k cpp.TokenKind, ops []cpp.TokenKind) bool {
	for _, op := range ops {
		if k == op {
			return true
		}
	}
	return false
}

func (p *parser) parseLogicalOrExpression() *Rule {
	return p.parseBinary(RuleLogicalOrExpression, p.parseLogicalAndExpression, cpp.LOR)
}

func (p *parser) parseLogicalAndExpression() *Rule {
	return p.parseBinary(RuleLogicalAndExpression, p.parseInclusiveOrExpression, cpp.LAND)
}

func (p *parser) parseInclusiveOrExpression() *Rule {
	return p.parseBinary(RuleInclusiveOrExpression, p.parseExclusiveOrExpression, '|')
}

func (p *parser) parseExclusiveOrExpression() *Rule {
	return p.parseBinary(RuleExclusiveOrExpression, p.parseAndExpression, '^')
}

func (p *parser) parseAndExpression() *Rule {
	return p.parseBinary(RuleAndExpression, p.parseEqualityExpression, '&')
}

func (p *parser) parseEqualityExpression() *Rule {
	return p.parseBinary(RuleEqualityExpression, p.parseRelationalExpression, cpp.EQL, cpp.NEQ)
}

func (p *parser) parseRelationalExpression() *Rule {
	return p.parseBinary(RuleRelationalExpression, p.parseShiftExpression, '<', '>', cpp.LEQ, cpp.GEQ)
}

func (p *parser) parseShiftExpression() *Rule {
	return p.parseBinary(RuleShiftExpression, p.parseAdditiveExpression, cpp.SHL, cpp.SHR)
}

func (p *parser) parseAdditiveExpression() *Rule {
	return p.parseBinary(RuleAdditiveExpression, p.parseMultiplicativeExpression, '+', '-')
}

func (p *parser) parseMultiplicativeExpression() *Rule {
	return p.parseBinary(RuleMultiplicativeExpression, p.parseCastExpression, '*', '/', '%')
}

func (p *parser) parseCastExpression() *Rule {
	if p.curt.Kind == '(' && p.isTypeNameStart(p.nextt) {
		lparen := p.terminal()
		tn := p.parseTypeName()
		rparen := p.expect(')')
		return NewRule(RuleCastExpression, lparen, tn, rparen, p.parseCastExpression())
	}
	return NewRule(RuleCastExpression, p.parseUnaryExpression())
}

func (p *parser) parseUnaryExpression() *Rule {
	switch p.curt.Kind {
	case cpp.INC, cpp.DEC:
		op := p.terminal()
		return NewRule(RuleUnaryExpression, op, p.parseUnaryExpression())
	case '*', '+', '-', '!', '~', '&':
		op := p.terminal()
		return NewRule(RuleUnaryExpression, op, p.parseCastExpression())
	case cpp.SIZEOF:
		op := p.terminal()
		if p.curt.Kind == '(' && p.isTypeNameStart(p.nextt) {
			lparen := p.terminal()
			tn := p.parseTypeName()
			return NewRule(RuleUnaryExpression, op, lparen, tn, p.expect(')'))
		}
		return NewRule(RuleUnaryExpression, op, p.parseUnaryExpression())
	default:
		return NewRule(RuleUnaryExpression, p.parsePostfixExpression())
	}
}

func (p *parser) parsePostfixExpression() *Rule {
	l := NewRule(RulePostfixExpression, p.parsePrimaryExpression())
	for {
		switch p.curt.Kind {
		case '[':
			lbrack := p.terminal()
			idx := p.parseExpression()
			l = NewRule(RulePostfixExpression, l, lbrack, idx, p.expect(']'))
		case '.', cpp.ARROW:
			op := p.terminal()
			l = NewRule(RulePostfixExpression, l, op, p.expect(cpp.IDENT))
		case '(':
			call := NewRule(RulePostfixExpression, l, p.terminal())
			if p.curt.Kind != ')' {
				call.Children = append(call.Children, p.parseArgumentExpressionList())
			}
			call.Children = append(call.Children, p.expect(')'))
			l = call
		case cpp.INC, cpp.DEC:
			l = NewRule(RulePostfixExpression, l, p.terminal())
		default:
			return l
		}
	}
}

func (p *parser) parseArgumentExpressionList() *Rule {
	r := NewRule(RuleArgumentExpressionList, p.parseAssignmentExpression())
	for p.curt.Kind == ',' {
		r.Children = append(r.Children, p.terminal(), p.parseAssignmentExpression())
	}
	return r
}

func (p *parser) parsePrimaryExpression() *Rule {
	switch p.curt.Kind {
	case cpp.IDENT, cpp.INT_CONSTANT, cpp.FLOAT_CONSTANT, cpp.CHAR_CONSTANT:
		return NewRule(RulePrimaryExpression, p.terminal())
	case cpp.STRING:
		r := NewRule(RulePrimaryExpression)
		for p.curt.Kind == cpp.STRING {
			r.Children = append(r.Children, p.terminal())
		}
		return r
	case '(':
		lparen := p.terminal()
		e := p.parseExpression()
		return NewRule(RulePrimaryExpression, lparen, e, p.expect(')'))
	default:
		p.errorPos("expected an identifier, constant, string or expression", p.curt.Pos)
	}
	panic("unreachable")
}

// directOf returns the direct declarator of a declarator, nil when the
// declarator is an abstract pointer chain.
func directOf(decl *Rule) *Rule {
	for _, r := range decl.Rules() {
		if r.Kind != RulePointer {
			return r
		}
	}
	return nil
}

// declaredName returns the identifier a declarator introduces.
func declaredName(decl *Rule) *Terminal {
	r := directOf(decl)
	for r != nil {
		switch r.Kind {
		case RuleDirectDeclaratorIdentifier:
			return r.TerminalAt(0)
		case RuleDirectDeclaratorParenthesized:
			inner := r.First(RuleDeclarator)
			if inner == nil {
				return nil
			}
			r = directOf(inner)
		case RuleDirectDeclaratorArray, RuleDirectDeclaratorFunction:
			r, _ = r.Children[0].(*Rule)
		default:
			return nil
		}
	}
	return nil
}

// innermostParameters returns the parameter list bound closest to the
// declared name, which for a function definition is its own.
func innermostParameters(decl *Rule) *Rule {
	var found *Rule
	r := directOf(decl)
	for r != nil {
		switch r.Kind {
		case RuleDirectDeclaratorParenthesized:
			inner := r.First(RuleDeclarator)
			if inner == nil {
				return found
			}
			r = directOf(inner)
		case RuleDirectDeclaratorFunction:
			found = r.First(RuleParameterList)
			r, _ = r.Children[0].(*Rule)
		case RuleDirectDeclaratorArray:
			r, _ = r.Children[0].(*Rule)
		default:
			return found
		}
	}
	return found
}

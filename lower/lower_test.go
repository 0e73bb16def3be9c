package lower

import (
	"strings"
	"testing"

	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/cpp"
	"github.com/andrewchambers/cfront/diag"
	"github.com/andrewchambers/cfront/parse"
)

func mustLower(t *testing.T, src string) *ast.Composite {
	t.Helper()
	cst, err := parse.ParseReader("test.c", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	tu, err := Lower(cst)
	if err != nil {
		t.Fatal(err)
	}
	return tu
}

func expectDump(t *testing.T, src, want string) {
	t.Helper()
	if got := ast.Sprint(mustLower(t, src)); got != want {
		t.Fatalf("%s\ngot\n%s\nwant\n%s", src, got, want)
	}
}

func TestPointerChain(t *testing.T) {
	expectDump(t, "int **p;", `TranslationUnit
  .declarations
    Declaration
      .type
        IntType "int"
      .declarators
        PointerType
          .target
            PointerType
              .target
                Identifier "p"
`)
}

func TestPointerQualifiers(t *testing.T) {
	expectDump(t, "static char *const s;", `TranslationUnit
  .declarations
    Declaration
      .storage
        StorageClass "static"
      .type
        CharType "char"
      .declarators
        PointerType
          .target
            Identifier "s"
          .qualifiers
            TypeQualifier "const"
`)
}

func TestFunctionDefinitionSlots(t *testing.T) {
	expectDump(t, "int f(int a) { return a; }", `TranslationUnit
  .functions
    FunctionDefinition
      .specifiers
        IntType "int"
      .declarator
        Identifier "f"
      .parameters
        ParameterDeclaration
          .specifiers
            IntType "int"
          .declarator
            Identifier "a"
      .body
        CompoundStatement
          .items
            ReturnStatement
              .value
                Identifier "a"
`)
}

func TestPrototypeIsFunctionType(t *testing.T) {
	expectDump(t, "int f(int a, ...);", `TranslationUnit
  .declarations
    Declaration
      .type
        IntType "int"
      .declarators
        FunctionType
          .declarator
            Identifier "f"
          .parameters
            ParameterDeclaration
              .specifiers
                IntType "int"
              .declarator
                Identifier "a"
            Ellipsis "..."
`)
}

func TestFunctionPointer(t *testing.T) {
	expectDump(t, "int (*fp)(void);", `TranslationUnit
  .declarations
    Declaration
      .type
        IntType "int"
      .declarators
        FunctionType
          .declarator
            PointerType
              .target
                Identifier "fp"
          .parameters
            ParameterDeclaration
              .specifiers
                VoidType "void"
`)
}

func TestPointerReturningDefinition(t *testing.T) {
	// The parameters belong to the function type under the pointer.
	fd := mustLower(t, "char *f(int n) { return 0; }").Child(ast.UnitFunctions).(*ast.Composite)
	if params := fd.Children(ast.FuncParameters); len(params) != 0 {
		t.Fatalf("expected no parameters on the definition, got %d", len(params))
	}
	ptr := fd.Child(ast.FuncDeclarator)
	if ptr.Kind() != ast.PointerType {
		t.Fatalf("declarator is %s", ptr.Kind())
	}
	ft := ptr.(*ast.Composite).Child(ast.PointerTarget)
	if ft.Kind() != ast.FunctionType {
		t.Fatalf("pointer target is %s", ft.Kind())
	}
	if id := ast.DeclaredIdentifier(ptr); id == nil || id.Lexeme() != "f" {
		t.Fatal("expected f to be the declared name")
	}
}

func TestArrayDeclarator(t *testing.T) {
	expectDump(t, "int a[4][];", `TranslationUnit
  .declarations
    Declaration
      .type
        IntType "int"
      .declarators
        ArrayType
          .element
            ArrayType
              .element
                Identifier "a"
              .size
                IntegerConstant "4"
`)
}

func TestInitDeclaratorOnlyWithInitializer(t *testing.T) {
	expectDump(t, "int x, y = a - b - c;", `TranslationUnit
  .declarations
    Declaration
      .type
        IntType "int"
      .declarators
        Identifier "x"
        InitDeclarator
          .declarator
            Identifier "y"
          .initializer
            Subtraction
              .left
                Subtraction
                  .left
                    Identifier "a"
                  .right
                    Identifier "b"
              .right
                Identifier "c"
`)
}

func TestInitializerList(t *testing.T) {
	expectDump(t, "int v[] = {1, {2}};", `TranslationUnit
  .declarations
    Declaration
      .type
        IntType "int"
      .declarators
        InitDeclarator
          .declarator
            ArrayType
              .element
                Identifier "v"
          .initializer
            InitializerList
              .items
                IntegerConstant "1"
                InitializerList
                  .items
                    IntegerConstant "2"
`)
}

func TestStructAndEnum(t *testing.T) {
	expectDump(t, "struct s { int a, *b; } v; enum e { A, B = 2 };", `TranslationUnit
  .declarations
    Declaration
      .type
        StructSpecifier
          .tag
            Identifier "s"
          .members
            StructDeclaration
              .specifiers
                IntType "int"
              .declarators
                Identifier "a"
                PointerType
                  .target
                    Identifier "b"
      .declarators
        Identifier "v"
    Declaration
      .type
        EnumSpecifier
          .tag
            Identifier "e"
          .enumerators
            Enumerator
              .name
                Identifier "A"
            Enumerator
              .name
                Identifier "B"
              .value
                IntegerConstant "2"
`)
}

func TestTypedefName(t *testing.T) {
	tu := mustLower(t, "typedef unsigned long T; T x;")
	decls := tu.Children(ast.UnitDeclarations)
	if len(decls) != 2 {
		t.Fatalf("got %d declarations", len(decls))
	}
	typ := decls[1].(*ast.Composite).Child(ast.DeclType)
	if typ.Kind() != ast.TypedefName || typ.(*ast.Leaf).Lexeme() != "T" {
		t.Fatalf("got %s", typ.Kind())
	}
	td := decls[0].(*ast.Composite)
	if got := len(td.Children(ast.DeclType)); got != 2 {
		t.Fatalf("expected unsigned long as two type leaves, got %d", got)
	}
}

func TestForClauses(t *testing.T) {
	body := func(src string) *ast.Composite {
		fd := mustLower(t, "int f(void) { "+src+" }").Child(ast.UnitFunctions).(*ast.Composite)
		return fd.Child(ast.FuncBody).(*ast.Composite).Child(ast.CompoundItems).(*ast.Composite)
	}
	tests := []struct {
		src  string
		want [4]ast.Kind
	}{
		{"for (i = 0; i < n; i++) ;", [4]ast.Kind{ast.Assignment, ast.Less, ast.PostIncrement, ast.ExpressionStatement}},
		{"for (int i = 0; i; ) break;", [4]ast.Kind{ast.Declaration, ast.Identifier, -1, ast.BreakStatement}},
		{"for (;;) continue;", [4]ast.Kind{-1, -1, -1, ast.ContinueStatement}},
		{"for (; ; i--) ;", [4]ast.Kind{-1, -1, ast.PostDecrement, ast.ExpressionStatement}},
	}
	for _, tc := range tests {
		f := body(tc.src)
		if f.Kind() != ast.ForStatement {
			t.Fatalf("%s: got %s", tc.src, f.Kind())
		}
		for i, want := range tc.want {
			c := f.Child(ast.Slot(i))
			switch {
			case want == -1 && c != nil:
				t.Fatalf("%s: clause %d should be empty, got %s", tc.src, i, c.Kind())
			case want != -1 && (c == nil || c.Kind() != want):
				t.Fatalf("%s: clause %d want %s", tc.src, i, want)
			}
		}
	}
}

func TestStatements(t *testing.T) {
	src := `int f(int x) {
	if (x) x = 1; else x = 2;
	while (x) x--;
	do x++; while (x);
	switch (x) { case 1: break; default: ; }
	out: goto out;
	;
}`
	items := mustLower(t, src).Child(ast.UnitFunctions).(*ast.Composite).Child(ast.FuncBody).(*ast.Composite).Children(ast.CompoundItems)
	want := []ast.Kind{
		ast.IfStatement,
		ast.WhileStatement,
		ast.DoWhileStatement,
		ast.SwitchStatement,
		ast.LabeledStatement,
		ast.ExpressionStatement,
	}
	if len(items) != len(want) {
		t.Fatalf("got %d statements", len(items))
	}
	for i, k := range want {
		if items[i].Kind() != k {
			t.Fatalf("statement %d is %s, want %s", i, items[i].Kind(), k)
		}
	}
	ifs := items[0].(*ast.Composite)
	if ifs.Child(ast.IfElse) == nil {
		t.Fatal("else branch missing")
	}
	do := items[2].(*ast.Composite)
	if do.Child(ast.DoBody).Kind() != ast.ExpressionStatement || do.Child(ast.DoCond).Kind() != ast.Identifier {
		t.Fatal("do while slots swapped")
	}
	label := items[4].(*ast.Composite)
	if label.Child(ast.LabelStatement).Kind() != ast.GotoStatement {
		t.Fatal("expected the goto under the label")
	}
	if items[5].(*ast.Composite).Child(ast.StatementExpression) != nil {
		t.Fatal("empty statement has an expression")
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		expr string
		want ast.Kind
	}{
		{"x, y", ast.CommaExpression},
		{"x = y", ast.Assignment},
		{"x *= y", ast.MulAssign},
		{"x /= y", ast.DivAssign},
		{"x %= y", ast.ModAssign},
		{"x += y", ast.AddAssign},
		{"x -= y", ast.SubAssign},
		{"x <<= y", ast.ShlAssign},
		{"x >>= y", ast.ShrAssign},
		{"x &= y", ast.AndAssign},
		{"x ^= y", ast.XorAssign},
		{"x |= y", ast.OrAssign},
		{"x ? y : z", ast.Conditional},
		{"x || y", ast.LogicalOr},
		{"x && y", ast.LogicalAnd},
		{"x | y", ast.BitwiseOr},
		{"x ^ y", ast.BitwiseXor},
		{"x & y", ast.BitwiseAnd},
		{"x == y", ast.Equal},
		{"x != y", ast.NotEqual},
		{"x < y", ast.Less},
		{"x > y", ast.Greater},
		{"x <= y", ast.LessOrEqual},
		{"x >= y", ast.GreaterOrEqual},
		{"x << y", ast.ShiftLeft},
		{"x >> y", ast.ShiftRight},
		{"x + y", ast.Addition},
		{"x - y", ast.Subtraction},
		{"x * y", ast.Multiplication},
		{"x / y", ast.Division},
		{"x % y", ast.Modulo},
		{"(int)x", ast.Cast},
		{"++x", ast.PreIncrement},
		{"--x", ast.PreDecrement},
		{"&x", ast.AddressOf},
		{"*x", ast.Dereference},
		{"+x", ast.UnaryPlus},
		{"-x", ast.UnaryMinus},
		{"~x", ast.BitwiseNot},
		{"!x", ast.LogicalNot},
		{"sizeof x", ast.SizeofExpression},
		{"sizeof (int *)", ast.SizeofType},
		{"x[y]", ast.ArraySubscript},
		{"x(y, z)", ast.FunctionCall},
		{"x.y", ast.MemberAccess},
		{"x->y", ast.PointerMemberAccess},
		{"x++", ast.PostIncrement},
		{"x--", ast.PostDecrement},
		{"(x)", ast.Identifier},
		{`"a" "b"`, ast.StringLiteral},
		{"1.5", ast.FloatConstant},
		{"'c'", ast.CharConstant},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			fd := mustLower(t, "int f(void) { "+tc.expr+"; }").Child(ast.UnitFunctions).(*ast.Composite)
			stmt := fd.Child(ast.FuncBody).(*ast.Composite).Child(ast.CompoundItems).(*ast.Composite)
			e := stmt.Child(ast.StatementExpression)
			if e == nil || e.Kind() != tc.want {
				t.Fatalf("got %v, want %s", e, tc.want)
			}
		})
	}
}

func TestOperandSlots(t *testing.T) {
	expectDump(t, "int f(void) { a.b = c(d)[e]; }", `TranslationUnit
  .functions
    FunctionDefinition
      .specifiers
        IntType "int"
      .declarator
        Identifier "f"
      .parameters
        ParameterDeclaration
          .specifiers
            VoidType "void"
      .body
        CompoundStatement
          .items
            ExpressionStatement
              .expression
                Assignment
                  .left
                    MemberAccess
                      .object
                        Identifier "a"
                      .member
                        Identifier "b"
                  .right
                    ArraySubscript
                      .array
                        FunctionCall
                          .function
                            Identifier "c"
                          .arguments
                            Identifier "d"
                      .index
                        Identifier "e"
`)
}

func TestStringConcatenation(t *testing.T) {
	tu := mustLower(t, `char *s = "a" "b";`)
	id := tu.Child(ast.UnitDeclarations).(*ast.Composite).Child(ast.DeclDeclarators).(*ast.Composite)
	lit := id.Child(ast.InitValue).(*ast.Leaf)
	if lit.Lexeme() != `"a" "b"` {
		t.Fatalf("got %q", lit.Lexeme())
	}
}

var testPos = cpp.FilePos{File: "t.c", Line: 1, Col: 1}

func term(kind cpp.TokenKind, val string) *parse.Terminal {
	return parse.NewTerminal(&cpp.Token{Kind: kind, Val: val, Pos: testPos})
}

func primary(name string) *parse.Rule {
	return parse.NewRule(parse.RulePrimaryExpression, term(cpp.IDENT, name))
}

// declarationOf wraps an initializer expression into "int x = expr;".
func declarationOf(expr parse.Node) *parse.Rule {
	return parse.NewRule(parse.RuleTranslationUnit,
		parse.NewRule(parse.RuleDeclaration,
			parse.NewRule(parse.RuleDeclarationSpecifiers,
				parse.NewRule(parse.RuleTypeSpecifier, term(cpp.INT, "int"))),
			parse.NewRule(parse.RuleInitDeclaratorList,
				parse.NewRule(parse.RuleInitDeclarator,
					parse.NewRule(parse.RuleDeclarator,
						parse.NewRule(parse.RuleDirectDeclaratorIdentifier, term(cpp.IDENT, "x"))),
					term('=', "="),
					parse.NewRule(parse.RuleInitializer, expr))),
			term(';', ";")))
}

func TestUnhandledOperator(t *testing.T) {
	tests := []parse.Node{
		parse.NewRule(parse.RuleAdditiveExpression, primary("a"), term('?', "?"), primary("b")),
		parse.NewRule(parse.RuleAssignmentExpression, primary("a"), term(cpp.EQL, "=="), primary("b")),
		parse.NewRule(parse.RuleUnaryExpression, term('%', "%"), primary("a")),
		parse.NewRule(parse.RulePostfixExpression, primary("a"), term('!', "!")),
	}
	for _, expr := range tests {
		root, err := Lower(declarationOf(expr))
		if !diag.Is(err, diag.UnhandledOperator) {
			t.Fatalf("expected an unhandled operator, got %v", err)
		}
		if root != nil {
			t.Fatal("expected no tree on error")
		}
	}
}

func TestHandBuiltMatchesParsed(t *testing.T) {
	expr := parse.NewRule(parse.RuleAdditiveExpression, primary("a"), term('+', "+"), primary("b"))
	root, err := Lower(declarationOf(expr))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ast.Sprint(root), ast.Sprint(mustLower(t, "int x = a + b;")); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestMissingRequiredChild(t *testing.T) {
	tests := []parse.Node{
		parse.NewRule(parse.RuleTranslationUnit,
			parse.NewRule(parse.RuleFunctionDefinition,
				parse.NewRule(parse.RuleDeclarationSpecifiers,
					parse.NewRule(parse.RuleTypeSpecifier, term(cpp.INT, "int"))),
				parse.NewRule(parse.RuleCompoundStatement, term('{', "{"), term('}', "}")))),
		declarationOf(parse.NewRule(parse.RuleCastExpression, term('(', "("), term(')', ")"), primary("a"))),
		declarationOf(parse.NewRule(parse.RulePostfixExpression, primary("a"), term('.', "."))),
	}
	for _, n := range tests {
		if _, err := Lower(n); !diag.Is(err, diag.MissingRequiredChild) {
			t.Fatalf("expected a missing child, got %v", err)
		}
	}
}

func TestStructuralViolations(t *testing.T) {
	decl := parse.NewRule(parse.RuleDeclaration,
		parse.NewRule(parse.RuleDeclarationSpecifiers,
			parse.NewRule(parse.RuleTypeSpecifier, term(cpp.INT, "int"))),
		term(';', ";"))
	tests := map[string]parse.Node{
		"bare declaration": decl,
		"nested unit": parse.NewRule(parse.RuleTranslationUnit,
			parse.NewRule(parse.RuleTranslationUnit)),
		"stray token": parse.NewRule(parse.RuleTranslationUnit, term(';', ";")),
		"lone terminal": term(cpp.IDENT, "x"),
	}
	for name, n := range tests {
		if _, err := Lower(n); !diag.Is(err, diag.StructuralViolation) {
			t.Fatalf("%s: expected a structural violation, got %v", name, err)
		}
	}
}

func TestErrorPosition(t *testing.T) {
	expr := parse.NewRule(parse.RuleAdditiveExpression, primary("a"),
		parse.NewTerminal(&cpp.Token{Kind: '?', Val: "?", Pos: cpp.FilePos{File: "t.c", Line: 3, Col: 7}}),
		primary("b"))
	_, err := Lower(declarationOf(expr))
	if err == nil || !strings.HasSuffix(err.Error(), "at t.c:3:7") {
		t.Fatalf("got %v", err)
	}
}

package scope

import (
	"cmp"
	"slices"
	"strings"
	"testing"

	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/diag"
	"github.com/andrewchambers/cfront/lower"
	"github.com/andrewchambers/cfront/parse"
)

func lowerSource(t *testing.T, src string) *ast.Composite {
	t.Helper()
	cst, err := parse.ParseReader("test.c", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	tu, err := lower.Lower(cst)
	if err != nil {
		t.Fatal(err)
	}
	return tu
}

func mustResolve(t *testing.T, src string) (*ast.Composite, *Resolution) {
	t.Helper()
	tu := lowerSource(t, src)
	res, err := Resolve(tu, nil)
	if err != nil {
		t.Fatal(err)
	}
	return tu, res
}

func resolveError(t *testing.T, src string) error {
	t.Helper()
	_, err := Resolve(lowerSource(t, src), nil)
	if err == nil {
		t.Fatalf("%s: expected an error", src)
	}
	return err
}

// identifiers returns the identifier leaves named name in source order.
func identifiers(tu *ast.Composite, name string) []*ast.Leaf {
	var ret []*ast.Leaf
	v := ast.NewVisitor[struct{}, struct{}]()
	v.On(ast.Identifier, func(n ast.Node, _ struct{}) struct{} {
		if l := n.(*ast.Leaf); l.Lexeme() == name {
			ret = append(ret, l)
		}
		return struct{}{}
	})
	v.Visit(tu, struct{}{})
	// The unit keeps functions and declarations in separate slots.
	slices.SortFunc(ret, func(a, b *ast.Leaf) int {
		return cmp.Compare(a.Serial(), b.Serial())
	})
	return ret
}

func TestDuplicateInBlock(t *testing.T) {
	err := resolveError(t, "int f(void) {\n  int x;\n  int x;\n}\n")
	if !diag.Is(err, diag.DuplicateSymbol) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "redefinition of x") || !strings.HasSuffix(err.Error(), "at test.c:3:7") {
		t.Fatalf("got %q", err.Error())
	}
}

func TestDuplicates(t *testing.T) {
	tests := []string{
		"int x; int x;",
		"int f(void) { return 0; } int f(void) { return 1; }",
		"int f; int f(void);",
		"int f(int a) { int a; return a; }",
		"int g(int a, int a);",
		"struct s { int a; }; struct s { int b; };",
		"struct s { int a; int a; };",
		"enum { A, A };",
		"int A; enum { A };",
		"int f(void) { a: ; a: ; return 0; }",
		"typedef int T; int T;",
		"struct S; union S { int a; };",
		"enum E { A }; struct E;",
		"union U { int a; }; struct U *p;",
		"int f(void) { enum E { A } e; struct E *p; return 0; }",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if err := resolveError(t, src); !diag.Is(err, diag.DuplicateSymbol) {
				t.Fatalf("got %v", err)
			}
		})
	}
}

func TestLegalDeclarations(t *testing.T) {
	tests := []string{
		"int f(int); int f(int a) { return a; } int f(int);",
		"struct x { int a; }; int x;",
		"struct s; struct s { int a; }; struct s *p;",
		"struct S { int a; }; int f(void) { union S { int b; } u; return 0; }",
		"enum E { A }; enum E e;",
		"int g(int a); int a;",
		"int f(int x) { { int x; } return x; }",
		"int f(void) { for (int i = 0; i < 3; i++) ; int i; return 0; }",
		"struct a { int x; }; struct b { int x; };",
		"int f(void) { int x; { int x; { int x; } } return 0; }",
		"int f(void) { l: ; return 0; } int g(void) { l: ; return 0; }",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			mustResolve(t, src)
		})
	}
}

func TestShadowing(t *testing.T) {
	tu, res := mustResolve(t, "int f(int x) { { int x; x = 1; } return x; }")
	xs := identifiers(tu, "x")
	if len(xs) != 4 {
		t.Fatalf("found %d identifiers", len(xs))
	}
	inner, outer := res.Uses[xs[2]], res.Uses[xs[3]]
	if inner == nil || outer == nil {
		t.Fatal("uses not resolved")
	}
	if inner.Scope.Kind != BlockScope || inner.Node != xs[1] {
		t.Fatal("x = 1 should refer to the block local")
	}
	if outer.Scope.Kind != FunctionScope || outer.Node != xs[0] {
		t.Fatal("return x should refer to the parameter")
	}
}

func TestFunctionSymbols(t *testing.T) {
	tu, res := mustResolve(t, "int f(int); int (*fp)(int); char *g(int n) { return 0; } int f(int a) { return g(a)[0]; }")
	f := res.Global.LookupLocal(Ordinary, "f")
	if f == nil || f.Kind != Function || !f.Defined {
		t.Fatal("f should be a defined function")
	}
	if fs := identifiers(tu, "f"); f.Node != fs[1] {
		t.Fatal("f should point at its definition")
	}
	if fp := res.Global.LookupLocal(Ordinary, "fp"); fp == nil || fp.Kind != Variable {
		t.Fatal("a function pointer is a variable")
	}
	g := res.Global.LookupLocal(Ordinary, "g")
	if g == nil || g.Kind != Function || !g.Defined {
		t.Fatal("g should be a defined function")
	}
	fn := res.Global.Children()
	// Prototype scopes of f and fp, then the bodies of g and f.
	if len(fn) != 4 {
		t.Fatalf("got %d scopes under the file scope", len(fn))
	}
	if fn[2].Kind != FunctionScope || fn[2].LookupLocal(Ordinary, "n") == nil {
		t.Fatal("parameter n of a pointer returning function not declared")
	}
	if fn[0].Kind != FunctionPrototypeScope || fn[0].Table(Ordinary).Len() != 0 {
		t.Fatal("expected an empty prototype scope for f(int)")
	}
}

func TestPrototypeScopeHoldsParameters(t *testing.T) {
	_, res := mustResolve(t, "int g(int a, char *b);")
	if res.Global.LookupLocal(Ordinary, "a") != nil {
		t.Fatal("prototype parameters leaked into the file scope")
	}
	proto := res.Global.Children()[0]
	if proto.Kind != FunctionPrototypeScope || proto.Name != "g" {
		t.Fatalf("got %s %q", proto.Kind, proto.Name)
	}
	if proto.LookupLocal(Ordinary, "a") == nil || proto.LookupLocal(Ordinary, "b") == nil {
		t.Fatal("parameters missing")
	}
}

func TestStructMembers(t *testing.T) {
	_, res := mustResolve(t, "struct point { int x, y; struct inner { int z; } in; } p;")
	tag := res.Global.LookupLocal(Tags, "point")
	if tag == nil || !tag.Defined {
		t.Fatal("tag point not defined")
	}
	if res.Global.LookupLocal(Ordinary, "x") != nil {
		t.Fatal("members leaked into the ordinary namespace")
	}
	body := res.Global.Children()[0]
	if body.Kind != StructUnionEnumScope || body.Name != "point" {
		t.Fatalf("got %s %q", body.Kind, body.Name)
	}
	for _, m := range []string{"x", "y", "in"} {
		if body.LookupLocal(Members, m) == nil {
			t.Fatalf("member %s missing", m)
		}
	}
	if body.LookupLocal(Tags, "inner") == nil {
		t.Fatal("nested tag should live in the struct scope")
	}
	if p := res.Global.LookupLocal(Ordinary, "p"); p == nil || p.Kind != Variable {
		t.Fatal("p missing")
	}
}

func TestTagReferences(t *testing.T) {
	tu, res := mustResolve(t, "struct s; struct s { int a; }; struct s *p;")
	ss := identifiers(tu, "s")
	tag := res.Global.LookupLocal(Tags, "s")
	if tag == nil || !tag.Defined || tag.Node != ss[1] {
		t.Fatal("forward declaration should merge with the definition")
	}
	if res.Uses[ss[2]] != tag {
		t.Fatal("struct s *p should refer to the tag")
	}
}

func TestTagKindMismatch(t *testing.T) {
	err := resolveError(t, "struct S;\nunion S { int a; };\n")
	if !diag.Is(err, diag.DuplicateSymbol) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "S redeclared as union, previous struct declared on line 1") {
		t.Fatalf("got %v", err)
	}
	if !strings.HasSuffix(err.Error(), "at test.c:2:7") {
		t.Fatalf("bad position in %v", err)
	}
}

func TestTagKindsPerScope(t *testing.T) {
	tu, res := mustResolve(t, "struct S { int a; } s; int f(void) { union S *p; return 0; }")
	ss := identifiers(tu, "S")
	outer := res.Global.LookupLocal(Tags, "S")
	if outer == nil || outer.Tag != ast.StructSpecifier {
		t.Fatal("file scope S should be a struct tag")
	}
	if _, ok := res.Uses[ss[1]]; ok {
		t.Fatal("union S must not refer to struct S")
	}
	fn := res.Global.Children()[1]
	inner := fn.LookupLocal(Tags, "S")
	if inner == nil || inner.Tag != ast.UnionSpecifier || inner.Defined {
		t.Fatal("union S should be forward declared in the function scope")
	}
}

func TestTypedefs(t *testing.T) {
	tu, res := mustResolve(t, "typedef int T; T x; int f(void) { T y; return sizeof(T); }")
	sym := res.Global.LookupLocal(Ordinary, "T")
	if sym == nil || sym.Kind != Type {
		t.Fatal("T should be a type")
	}
	n := 0
	v := ast.NewVisitor[struct{}, struct{}]()
	v.On(ast.TypedefName, func(node ast.Node, _ struct{}) struct{} {
		if res.Uses[node.(*ast.Leaf)] != sym {
			t.Errorf("typedef name at %s not resolved", node.Pos())
		}
		n++
		return struct{}{}
	})
	v.Visit(tu, struct{}{})
	if n != 3 {
		t.Fatalf("saw %d typedef names", n)
	}
}

func TestEnumerators(t *testing.T) {
	tu, res := mustResolve(t, "enum color { RED, GREEN = RED + 1 }; int c = GREEN;")
	if tag := res.Global.LookupLocal(Tags, "color"); tag == nil || !tag.Defined {
		t.Fatal("enum tag missing")
	}
	red := res.Global.LookupLocal(Ordinary, "RED")
	if red == nil || red.Kind != EnumConstant {
		t.Fatal("RED should be an enumerator")
	}
	if reds := identifiers(tu, "RED"); res.Uses[reds[1]] != red {
		t.Fatal("RED + 1 should refer to RED")
	}
	if len(res.Global.Children()) != 0 {
		t.Fatal("an enum opens no scope")
	}
}

func TestEnumeratorInsideStruct(t *testing.T) {
	_, res := mustResolve(t, "struct s { enum { A, B } kind; };")
	if res.Global.LookupLocal(Ordinary, "A") == nil {
		t.Fatal("enumerators declared in a struct belong to the enclosing scope")
	}
}

func TestLabels(t *testing.T) {
	tu, res := mustResolve(t, "int f(void) { goto done; { done: ; } goto missing; return 0; }")
	dones := identifiers(tu, "done")
	label := res.Uses[dones[0]]
	if label == nil || label.Kind != Label || label.Scope.Kind != FunctionScope || label.Node != dones[1] {
		t.Fatal("forward goto should resolve to the label in the function scope")
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0].Lexeme() != "missing" {
		t.Fatalf("unresolved: %v", res.Unresolved)
	}
}

func TestUnresolvedUses(t *testing.T) {
	tu, res := mustResolve(t, "struct p { int x; } v; int f(void) { return v.x + y; }")
	if len(res.Unresolved) != 1 || res.Unresolved[0].Lexeme() != "y" {
		t.Fatalf("unresolved: %v", res.Unresolved)
	}
	vs := identifiers(tu, "v")
	if res.Uses[vs[1]] == nil {
		t.Fatal("v should resolve")
	}
	xs := identifiers(tu, "x")
	if _, ok := res.Uses[xs[1]]; ok {
		t.Fatal("member names are not resolved")
	}
}

func TestSourceOrderAcrossSlots(t *testing.T) {
	// g is used by f before it is declared, so it stays unresolved even
	// though declarations and functions live in different slots.
	_, res := mustResolve(t, "int f(void) { return g; } int g;")
	if len(res.Unresolved) != 1 || res.Unresolved[0].Lexeme() != "g" {
		t.Fatalf("unresolved: %v", res.Unresolved)
	}
}

func TestResolveRejectsNonUnit(t *testing.T) {
	if _, err := Resolve(nil, nil); !diag.Is(err, diag.StructuralViolation) {
		t.Fatalf("got %v", err)
	}
	decl := ast.NewComposite(ast.Declaration, pos)
	if _, err := Resolve(decl, nil); !diag.Is(err, diag.StructuralViolation) {
		t.Fatalf("got %v", err)
	}
}

func TestMissingFunctionName(t *testing.T) {
	tu := ast.NewComposite(ast.TranslationUnit, pos)
	fd := ast.NewComposite(ast.FunctionDefinition, pos)
	if err := tu.AddChild(fd, ast.UnitFunctions); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(tu, nil); !diag.Is(err, diag.MissingRequiredChild) {
		t.Fatalf("got %v", err)
	}
}

func TestIndependentRuns(t *testing.T) {
	tu := lowerSource(t, "int x;")
	for i := 0; i < 2; i++ {
		if _, err := Resolve(tu, nil); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestFprint(t *testing.T) {
	_, res := mustResolve(t, "int g;\nint f(int a) {\n  int b;\n  out: return b;\n}\n")
	var sb strings.Builder
	if err := Fprint(&sb, res.Global); err != nil {
		t.Fatal(err)
	}
	want := `file "test.c"
  ordinary
    g variable 1:5
    f function 2:5 defined
  function "f"
    ordinary
      a variable 2:11
      b variable 3:7
    labels
      out label 4:3
`
	if got := sb.String(); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestFprintTags(t *testing.T) {
	_, res := mustResolve(t, "struct s { int a; };\nenum e { A };\n")
	var sb strings.Builder
	if err := Fprint(&sb, res.Global); err != nil {
		t.Fatal(err)
	}
	want := `file "test.c"
  ordinary
    A enumerator 2:10
  tags
    s struct 1:8 defined
    e enum 2:6 defined
  struct "s"
    members
      a variable 1:16
`
	if got := sb.String(); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

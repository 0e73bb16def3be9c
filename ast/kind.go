package ast

// Kind identifies the syntactic category of a node. It decides whether the
// node is a leaf and how many child slots a composite has.
type Kind int

const (
	TranslationUnit Kind = iota
	Declaration
	FunctionDefinition
	ParameterDeclaration
	InitDeclarator
	InitializerList
	StructDeclaration
	StructSpecifier
	UnionSpecifier
	EnumSpecifier
	Enumerator
	TypeName

	PointerType
	FunctionType
	ArrayType

	// Leaves.
	Identifier
	TypedefName
	VoidType
	CharType
	ShortType
	IntType
	LongType
	FloatType
	DoubleType
	SignedType
	UnsignedType
	StorageClass
	TypeQualifier
	Ellipsis
	IntegerConstant
	FloatConstant
	CharConstant
	StringLiteral

	CompoundStatement
	ExpressionStatement
	IfStatement
	SwitchStatement
	WhileStatement
	DoWhileStatement
	ForStatement
	LabeledStatement
	CaseStatement
	DefaultStatement
	GotoStatement
	ContinueStatement
	BreakStatement
	ReturnStatement

	CommaExpression
	Assignment
	MulAssign
	DivAssign
	ModAssign
	AddAssign
	SubAssign
	ShlAssign
	ShrAssign
	AndAssign
	XorAssign
	OrAssign
	Conditional
	LogicalOr
	LogicalAnd
	BitwiseOr
	BitwiseXor
	BitwiseAnd
	Equal
	NotEqual
	Less
	Greater
	LessOrEqual
	GreaterOrEqual
	ShiftLeft
	ShiftRight
	Addition
	Subtraction
	Multiplication
	Division
	Modulo
	Cast
	PreIncrement
	PreDecrement
	AddressOf
	Dereference
	UnaryPlus
	UnaryMinus
	BitwiseNot
	LogicalNot
	SizeofExpression
	SizeofType
	ArraySubscript
	FunctionCall
	MemberAccess
	PointerMemberAccess
	PostIncrement
	PostDecrement

	numKinds
)

// Slot indexes the children of a composite. Slot numbers are per kind.
type Slot int

const (
	UnitFunctions    Slot = 0
	UnitDeclarations Slot = 1

	DeclStorageClass Slot = 0
	DeclType         Slot = 1
	DeclDeclarators  Slot = 2

	FuncSpecifiers Slot = 0
	FuncDeclarator Slot = 1
	FuncParameters Slot = 2
	FuncBody       Slot = 3

	ParamSpecifiers Slot = 0
	ParamDeclarator Slot = 1

	InitDecl  Slot = 0
	InitValue Slot = 1

	ListItems Slot = 0

	MemberSpecifiers  Slot = 0
	MemberDeclarators Slot = 1

	RecordTag     Slot = 0
	RecordMembers Slot = 1

	EnumTag         Slot = 0
	EnumEnumerators Slot = 1

	EnumeratorName  Slot = 0
	EnumeratorValue Slot = 1

	TypeNameSpecifiers Slot = 0
	TypeNameDeclarator Slot = 1

	PointerTarget     Slot = 0
	PointerQualifiers Slot = 1

	FunctionTypeDeclarator Slot = 0
	FunctionTypeParameters Slot = 1

	ArrayElement Slot = 0
	ArraySize    Slot = 1

	CompoundItems Slot = 0

	StatementExpression Slot = 0

	IfCond Slot = 0
	IfThen Slot = 1
	IfElse Slot = 2

	SwitchCond Slot = 0
	SwitchBody Slot = 1

	WhileCond Slot = 0
	WhileBody Slot = 1

	DoBody Slot = 0
	DoCond Slot = 1

	ForInit Slot = 0
	ForCond Slot = 1
	ForStep Slot = 2
	ForBody Slot = 3

	LabelName      Slot = 0
	LabelStatement Slot = 1

	CaseValue Slot = 0
	CaseBody  Slot = 1

	DefaultBody Slot = 0

	GotoLabel Slot = 0

	ReturnValue Slot = 0

	// Binary operators, assignments and the comma operator.
	Left  Slot = 0
	Right Slot = 1

	// Unary prefix and postfix operators, including both sizeof forms.
	Operand Slot = 0

	CondTest Slot = 0
	CondThen Slot = 1
	CondElse Slot = 2

	CastType    Slot = 0
	CastOperand Slot = 1

	SubscriptArray Slot = 0
	SubscriptIndex Slot = 1

	CallFunction  Slot = 0
	CallArguments Slot = 1

	MemberObject Slot = 0
	MemberName   Slot = 1
)

type kindInfo struct {
	name  string
	leaf  bool
	slots []string
}

var (
	binarySlots = []string{"left", "right"}
	unarySlots  = []string{"operand"}
)

func leaf(name string) kindInfo {
	return kindInfo{name: name, leaf: true}
}

func composite(name string, slots ...string) kindInfo {
	return kindInfo{name: name, slots: slots}
}

var kindTable = [numKinds]kindInfo{
	TranslationUnit:      composite("TranslationUnit", "functions", "declarations"),
	Declaration:          composite("Declaration", "storage", "type", "declarators"),
	FunctionDefinition:   composite("FunctionDefinition", "specifiers", "declarator", "parameters", "body"),
	ParameterDeclaration: composite("ParameterDeclaration", "specifiers", "declarator"),
	InitDeclarator:       composite("InitDeclarator", "declarator", "initializer"),
	InitializerList:      composite("InitializerList", "items"),
	StructDeclaration:    composite("StructDeclaration", "specifiers", "declarators"),
	StructSpecifier:      composite("StructSpecifier", "tag", "members"),
	UnionSpecifier:       composite("UnionSpecifier", "tag", "members"),
	EnumSpecifier:        composite("EnumSpecifier", "tag", "enumerators"),
	Enumerator:           composite("Enumerator", "name", "value"),
	TypeName:             composite("TypeName", "specifiers", "declarator"),

	PointerType:  composite("PointerType", "target", "qualifiers"),
	FunctionType: composite("FunctionType", "declarator", "parameters"),
	ArrayType:    composite("ArrayType", "element", "size"),

	Identifier:      leaf("Identifier"),
	TypedefName:     leaf("TypedefName"),
	VoidType:        leaf("VoidType"),
	CharType:        leaf("CharType"),
	ShortType:       leaf("ShortType"),
	IntType:         leaf("IntType"),
	LongType:        leaf("LongType"),
	FloatType:       leaf("FloatType"),
	DoubleType:      leaf("DoubleType"),
	SignedType:      leaf("SignedType"),
	UnsignedType:    leaf("UnsignedType"),
	StorageClass:    leaf("StorageClass"),
	TypeQualifier:   leaf("TypeQualifier"),
	Ellipsis:        leaf("Ellipsis"),
	IntegerConstant: leaf("IntegerConstant"),
	FloatConstant:   leaf("FloatConstant"),
	CharConstant:    leaf("CharConstant"),
	StringLiteral:   leaf("StringLiteral"),

	CompoundStatement:   composite("CompoundStatement", "items"),
	ExpressionStatement: composite("ExpressionStatement", "expression"),
	IfStatement:         composite("IfStatement", "cond", "then", "else"),
	SwitchStatement:     composite("SwitchStatement", "cond", "body"),
	WhileStatement:      composite("WhileStatement", "cond", "body"),
	DoWhileStatement:    composite("DoWhileStatement", "body", "cond"),
	ForStatement:        composite("ForStatement", "init", "cond", "step", "body"),
	LabeledStatement:    composite("LabeledStatement", "label", "statement"),
	CaseStatement:       composite("CaseStatement", "value", "body"),
	DefaultStatement:    composite("DefaultStatement", "body"),
	GotoStatement:       composite("GotoStatement", "label"),
	ContinueStatement:   composite("ContinueStatement"),
	BreakStatement:      composite("BreakStatement"),
	ReturnStatement:     composite("ReturnStatement", "value"),

	CommaExpression:     composite("CommaExpression", binarySlots...),
	Assignment:          composite("Assignment", binarySlots...),
	MulAssign:           composite("MulAssign", binarySlots...),
	DivAssign:           composite("DivAssign", binarySlots...),
	ModAssign:           composite("ModAssign", binarySlots...),
	AddAssign:           composite("AddAssign", binarySlots...),
	SubAssign:           composite("SubAssign", binarySlots...),
	ShlAssign:           composite("ShlAssign", binarySlots...),
	ShrAssign:           composite("ShrAssign", binarySlots...),
	AndAssign:           composite("AndAssign", binarySlots...),
	XorAssign:           composite("XorAssign", binarySlots...),
	OrAssign:            composite("OrAssign", binarySlots...),
	Conditional:         composite("Conditional", "test", "then", "else"),
	LogicalOr:           composite("LogicalOr", binarySlots...),
	LogicalAnd:          composite("LogicalAnd", binarySlots...),
	BitwiseOr:           composite("BitwiseOr", binarySlots...),
	BitwiseXor:          composite("BitwiseXor", binarySlots...),
	BitwiseAnd:          composite("BitwiseAnd", binarySlots...),
	Equal:               composite("Equal", binarySlots...),
	NotEqual:            composite("NotEqual", binarySlots...),
	Less:                composite("Less", binarySlots...),
	Greater:             composite("Greater", binarySlots...),
	LessOrEqual:         composite("LessOrEqual", binarySlots...),
	GreaterOrEqual:      composite("GreaterOrEqual", binarySlots...),
	ShiftLeft:           composite("ShiftLeft", binarySlots...),
	ShiftRight:          composite("ShiftRight", binarySlots...),
	Addition:            composite("Addition", binarySlots...),
	Subtraction:         composite("Subtraction", binarySlots...),
	Multiplication:      composite("Multiplication", binarySlots...),
	Division:            composite("Division", binarySlots...),
	Modulo:              composite("Modulo", binarySlots...),
	Cast:                composite("Cast", "type", "operand"),
	PreIncrement:        composite("PreIncrement", unarySlots...),
	PreDecrement:        composite("PreDecrement", unarySlots...),
	AddressOf:           composite("AddressOf", unarySlots...),
	Dereference:         composite("Dereference", unarySlots...),
	UnaryPlus:           composite("UnaryPlus", unarySlots...),
	UnaryMinus:          composite("UnaryMinus", unarySlots...),
	BitwiseNot:          composite("BitwiseNot", unarySlots...),
	LogicalNot:          composite("LogicalNot", unarySlots...),
	SizeofExpression:    composite("SizeofExpression", unarySlots...),
	SizeofType:          composite("SizeofType", unarySlots...),
	ArraySubscript:      composite("ArraySubscript", "array", "index"),
	FunctionCall:        composite("FunctionCall", "function", "arguments"),
	MemberAccess:        composite("MemberAccess", "object", "member"),
	PointerMemberAccess: composite("PointerMemberAccess", "object", "member"),
	PostIncrement:       composite("PostIncrement", unarySlots...),
	PostDecrement:       composite("PostDecrement", unarySlots...),
}

func (k Kind) valid() bool {
	return k >= 0 && k < numKinds
}

func (k Kind) String() string {
	if !k.valid() {
		return "Unknown"
	}
	return kindTable[k].name
}

// IsLeaf reports whether nodes of kind k carry a lexeme instead of children.
func (k Kind) IsLeaf() bool {
	return k.valid() && kindTable[k].leaf
}

// NumSlots is the number of child slots of a composite of kind k.
func (k Kind) NumSlots() int {
	if !k.valid() {
		return 0
	}
	return len(kindTable[k].slots)
}

// SlotName names slot s of kind k for dumps.
func (k Kind) SlotName(s Slot) string {
	if s < 0 || int(s) >= k.NumSlots() {
		return "?"
	}
	return kindTable[k].slots[s]
}

// Kinds returns every node kind in declaration order.
func Kinds() []Kind {
	ret := make([]Kind, numKinds)
	for i := range ret {
		ret[i] = Kind(i)
	}
	return ret
}

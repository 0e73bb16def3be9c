package cpp

import (
	"fmt"
)

// The list of tokens.
const (

	// Single char tokens are themselves.
	ADD       = '+'
	SUB       = '-'
	MUL       = '*'
	QUO       = '/'
	REM       = '%'
	AND       = '&'
	OR        = '|'
	XOR       = '^'
	QUESTION  = '?'
	LSS       = '<'
	GTR       = '>'
	ASSIGN    = '='
	NOT       = '!'
	BNOT      = '~'
	LPAREN    = '('
	LBRACK    = '['
	LBRACE    = '{'
	COMMA     = ','
	PERIOD    = '.'
	RPAREN    = ')'
	RBRACK    = ']'
	RBRACE    = '}'
	SEMICOLON = ';'
	COLON     = ':'

	ERROR = 10000 + iota
	EOF
	// Identifiers and basic type literals
	// (these tokens stand for classes of literals)
	TYPENAME       // Same as ident, but typedefed.
	IDENT          // main
	INT_CONSTANT   // 12345
	FLOAT_CONSTANT // 123.45
	CHAR_CONSTANT  // 'a'
	STRING         // "abc"

	SHL        // <<
	SHR        // >>
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	QUO_ASSIGN // /=
	REM_ASSIGN // %=
	AND_ASSIGN // &=
	OR_ASSIGN  // |=
	XOR_ASSIGN // ^=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
	LAND       // &&
	LOR        // ||
	ARROW      // ->
	INC        // ++
	DEC        // --
	EQL        // ==
	NEQ        // !=
	LEQ        // <=
	GEQ        // >=
	ELLIPSIS   // ...

	// Keywords
	AUTO
	REGISTER
	EXTERN
	STATIC
	TYPEDEF
	CONST
	VOLATILE
	RESTRICT
	SHORT
	BREAK
	CASE
	DO
	CONTINUE
	DEFAULT
	ELSE
	FOR
	WHILE
	GOTO
	IF
	RETURN
	STRUCT
	UNION
	ENUM
	SWITCH
	SIZEOF
	VOID
	CHAR
	INT
	FLOAT
	DOUBLE
	SIGNED
	UNSIGNED
	LONG
)

var tokenKindToStr = [...]string{
	ERROR:          "error",
	EOF:            "EOF",
	TYPENAME:       "typename",
	CHAR_CONSTANT:  "charconst",
	INT_CONSTANT:   "intconst",
	FLOAT_CONSTANT: "floatconst",
	IDENT:          "ident",
	STRING:         "string",
	ADD:            "'+'",
	SUB:            "'-'",
	MUL:            "'*'",
	QUO:            "'/'",
	REM:            "'%'",
	AND:            "'&'",
	OR:             "'|'",
	XOR:            "'^'",
	SHL:            "'<<'",
	SHR:            "'>>'",
	ADD_ASSIGN:     "'+='",
	SUB_ASSIGN:     "'-='",
	MUL_ASSIGN:     "'*='",
	QUO_ASSIGN:     "'/='",
	REM_ASSIGN:     "'%='",
	AND_ASSIGN:     "'&='",
	OR_ASSIGN:      "'|='",
	XOR_ASSIGN:     "'^='",
	SHL_ASSIGN:     "'<<='",
	SHR_ASSIGN:     "'>>='",
	LAND:           "'&&'",
	LOR:            "'||'",
	ARROW:          "'->'",
	INC:            "'++'",
	DEC:            "'--'",
	EQL:            "'=='",
	LSS:            "'<'",
	GTR:            "'>'",
	ASSIGN:         "'='",
	NOT:            "'!'",
	BNOT:           "'~'",
	NEQ:            "'!='",
	LEQ:            "'<='",
	GEQ:            "'>='",
	ELLIPSIS:       "'...'",
	LPAREN:         "'('",
	LBRACK:         "'['",
	LBRACE:         "'{'",
	COMMA:          "','",
	PERIOD:         "'.'",
	RPAREN:         "')'",
	RBRACK:         "']'",
	RBRACE:         "'}'",
	SEMICOLON:      "';'",
	COLON:          "':'",
	QUESTION:       "'?'",
	AUTO:           "auto",
	REGISTER:       "register",
	EXTERN:         "extern",
	STATIC:         "static",
	TYPEDEF:        "typedef",
	CONST:          "const",
	VOLATILE:       "volatile",
	RESTRICT:       "restrict",
	SHORT:          "short",
	BREAK:          "break",
	CASE:           "case",
	DO:             "do",
	CONTINUE:       "continue",
	DEFAULT:        "default",
	ELSE:           "else",
	FOR:            "for",
	WHILE:          "while",
	GOTO:           "goto",
	IF:             "if",
	RETURN:         "return",
	STRUCT:         "struct",
	UNION:          "union",
	ENUM:           "enum",
	SWITCH:         "switch",
	SIZEOF:         "sizeof",
	VOID:           "void",
	CHAR:           "char",
	INT:            "int",
	FLOAT:          "float",
	DOUBLE:         "double",
	SIGNED:         "signed",
	UNSIGNED:       "unsigned",
	LONG:           "long",
}

var keywordLUT = map[string]TokenKind{
	"auto":     AUTO,
	"register": REGISTER,
	"extern":   EXTERN,
	"static":   STATIC,
	"typedef":  TYPEDEF,
	"const":    CONST,
	"volatile": VOLATILE,
	"restrict": RESTRICT,
	"for":      FOR,
	"while":    WHILE,
	"do":       DO,
	"if":       IF,
	"else":     ELSE,
	"goto":     GOTO,
	"break":    BREAK,
	"continue": CONTINUE,
	"case":     CASE,
	"default":  DEFAULT,
	"switch":   SWITCH,
	"struct":   STRUCT,
	"union":    UNION,
	"enum":     ENUM,
	"signed":   SIGNED,
	"unsigned": UNSIGNED,
	"return":   RETURN,
	"void":     VOID,
	"char":     CHAR,
	"int":      INT,
	"short":    SHORT,
	"long":     LONG,
	"float":    FLOAT,
	"double":   DOUBLE,
	"sizeof":   SIZEOF,
}

type TokenKind uint32

func (tk TokenKind) String() string {
	if uint32(tk) >= uint32(len(tokenKindToStr)) {
		return "Unknown"
	}
	ret := tokenKindToStr[tk]
	if ret == "" {
		return "Unknown"
	}
	return ret
}

// IsKeyword reports whether tk is a reserved word.
func (tk TokenKind) IsKeyword() bool {
	return tk >= AUTO && tk <= LONG
}

// KeywordKind returns the keyword token for s, if s is reserved.
func KeywordKind(s string) (TokenKind, bool) {
	k, ok := keywordLUT[s]
	return k, ok
}

type FilePos struct {
	File string
	Line int
	Col  int
}

func (pos FilePos) String() string {
	return fmt.Sprintf("%s:%d:%d", pos.File, pos.Line, pos.Col)
}

// IsValid reports whether pos refers to a real source location.
func (pos FilePos) IsValid() bool {
	return pos.Line > 0
}

//Token represents a grouping of characters
//that provide semantic meaning in a C program.
type Token struct {
	Kind TokenKind
	Val  string
	Pos  FilePos
}

func (t Token) String() string {
	return fmt.Sprintf("%s at %s", t.Val, t.Pos)
}

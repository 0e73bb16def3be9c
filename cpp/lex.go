package cpp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Lexer reads C tokens from source that has already been preprocessed.
// Line markers left behind by an external preprocessor ("# 1 "foo.c"")
// are skipped, no macro expansion is done.
type Lexer struct {
	brdr      *bufio.Reader
	pos       FilePos
	lastPos   FilePos
	markedPos FilePos
	lastChar  rune
	// At the beginning on line not including whitespace.
	bol bool
	// Set to true if we have hit the end of file.
	eof bool
	// Set once the EOF token has been produced.
	done bool
	// Token produced by the current scan step.
	tok *Token

	err error
}

type breakout struct{}

// Lex returns a lexer over the contents of the reader.
// fname is used for error messages when showing the source location.
func Lex(fname string, r io.Reader) *Lexer {
	lx := new(Lexer)
	lx.pos.File = fname
	lx.pos.Line = 1
	lx.pos.Col = 1
	lx.markedPos = lx.pos
	lx.lastPos = lx.pos
	lx.brdr = bufio.NewReader(r)
	lx.bol = true
	return lx
}

// Next returns the next token. Once the input is exhausted every call
// returns an EOF token. After an error every call returns that error.
func (lx *Lexer) Next() (tok *Token, err error) {
	if lx.err != nil {
		return &Token{Kind: ERROR, Val: lx.err.Error(), Pos: lx.markedPos}, lx.err
	}
	if lx.done {
		return &Token{Kind: EOF, Pos: lx.pos}, nil
	}
	defer func() {
		if e := recover(); e != nil {
			_ = e.(*breakout) // Will re-panic if not a breakout.
			tok = &Token{Kind: ERROR, Val: lx.err.Error(), Pos: lx.markedPos}
			err = lx.err
		}
	}()
	lx.tok = nil
	for lx.tok == nil {
		lx.scan()
	}
	return lx.tok, nil
}

// Tokenize lexes all of r, the returned slice ends with the EOF token.
func Tokenize(fname string, r io.Reader) ([]*Token, error) {
	lx := Lex(fname, r)
	var toks []*Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

func (lx *Lexer) markPos() {
	lx.markedPos = lx.pos
}

func (lx *Lexer) sendTok(kind TokenKind, val string) {
	lx.bol = false
	lx.tok = &Token{
		Kind: kind,
		Val:  val,
		Pos:  lx.markedPos,
	}
}

func (lx *Lexer) unreadRune() {
	lx.pos = lx.lastPos
	if lx.lastChar == '\n' {
		lx.bol = false
	}
	if lx.eof {
		return
	}
	lx.brdr.UnreadRune()
}

func (lx *Lexer) readRune() (rune, bool) {
	r, _, err := lx.brdr.ReadRune()
	lx.lastPos = lx.pos
	if err != nil {
		if err == io.EOF {
			lx.eof = true
			lx.lastChar = 0
			return 0, true
		}
		lx.Error(err.Error())
	}
	switch r {
	case '\n':
		lx.pos.Line += 1
		lx.pos.Col = 1
		lx.bol = true
	case '\t':
		lx.pos.Col += 4
	default:
		lx.pos.Col += 1
	}
	lx.lastChar = r
	return r, false
}

// accept consumes the next rune if it is r.
func (lx *Lexer) accept(r rune) bool {
	c, eof := lx.readRune()
	if eof {
		return false
	}
	if c != r {
		lx.unreadRune()
		return false
	}
	return true
}

func (lx *Lexer) Error(e string) {
	lx.err = ErrWithLoc(errors.New(e), lx.pos)
	panic(&breakout{})
}

// scan consumes one lexeme. Whitespace and comments produce no token.
func (lx *Lexer) scan() {
	lx.markPos()
	first, eof := lx.readRune()
	if eof {
		lx.sendTok(EOF, "")
		lx.done = true
		return
	}
	switch {
	case isAlpha(first) || first == '_':
		lx.unreadRune()
		lx.readIdentOrKeyword()
	case isNumeric(first):
		lx.unreadRune()
		lx.readConstantIntOrFloat(false)
	case isWhiteSpace(first):
		lx.unreadRune()
		lx.skipWhiteSpace()
	default:
		switch first {
		case '#':
			if !lx.isAtLineStart() {
				lx.Error("stray '#' in program")
			}
			lx.skipLine()
		case '!':
			if lx.accept('=') {
				lx.sendTok(NEQ, "!=")
			} else {
				lx.sendTok(NOT, "!")
			}
		case '?':
			lx.sendTok(QUESTION, "?")
		case ':':
			lx.sendTok(COLON, ":")
		case '\'':
			lx.unreadRune()
			lx.readCChar()
		case '"':
			lx.unreadRune()
			lx.readCString()
		case '(':
			lx.sendTok(LPAREN, "(")
		case ')':
			lx.sendTok(RPAREN, ")")
		case '{':
			lx.sendTok(LBRACE, "{")
		case '}':
			lx.sendTok(RBRACE, "}")
		case '[':
			lx.sendTok(LBRACK, "[")
		case ']':
			lx.sendTok(RBRACK, "]")
		case '<':
			second, _ := lx.readRune()
			switch second {
			case '<':
				if lx.accept('=') {
					lx.sendTok(SHL_ASSIGN, "<<=")
				} else {
					lx.sendTok(SHL, "<<")
				}
			case '=':
				lx.sendTok(LEQ, "<=")
			default:
				lx.unreadRune()
				lx.sendTok(LSS, "<")
			}
		case '>':
			second, _ := lx.readRune()
			switch second {
			case '>':
				if lx.accept('=') {
					lx.sendTok(SHR_ASSIGN, ">>=")
				} else {
					lx.sendTok(SHR, ">>")
				}
			case '=':
				lx.sendTok(GEQ, ">=")
			default:
				lx.unreadRune()
				lx.sendTok(GTR, ">")
			}
		case '+':
			second, _ := lx.readRune()
			switch second {
			case '+':
				lx.sendTok(INC, "++")
			case '=':
				lx.sendTok(ADD_ASSIGN, "+=")
			default:
				lx.unreadRune()
				lx.sendTok(ADD, "+")
			}
		case '.':
			if next, _ := lx.brdr.Peek(2); string(next) == ".." {
				lx.readRune()
				lx.readRune()
				lx.sendTok(ELLIPSIS, "...")
				break
			}
			second, _ := lx.readRune()
			lx.unreadRune()
			if isNumeric(second) {
				lx.readConstantIntOrFloat(true)
			} else {
				lx.sendTok(PERIOD, ".")
			}
		case '~':
			lx.sendTok(BNOT, "~")
		case '^':
			if lx.accept('=') {
				lx.sendTok(XOR_ASSIGN, "^=")
			} else {
				lx.sendTok(XOR, "^")
			}
		case '-':
			second, _ := lx.readRune()
			switch second {
			case '>':
				lx.sendTok(ARROW, "->")
			case '-':
				lx.sendTok(DEC, "--")
			case '=':
				lx.sendTok(SUB_ASSIGN, "-=")
			default:
				lx.unreadRune()
				lx.sendTok(SUB, "-")
			}
		case ',':
			lx.sendTok(COMMA, ",")
		case '*':
			if lx.accept('=') {
				lx.sendTok(MUL_ASSIGN, "*=")
			} else {
				lx.sendTok(MUL, "*")
			}
		case '\\':
			r, _ := lx.readRune()
			if r == '\n' {
				break
			}
			lx.Error("misplaced '\\'.")
		case '/':
			second, _ := lx.readRune()
			switch second {
			case '*':
				lx.skipBlockComment()
			case '/':
				for {
					c, eof := lx.readRune()
					if c == '\n' || eof {
						break
					}
				}
			case '=':
				lx.sendTok(QUO_ASSIGN, "/=")
			default:
				lx.unreadRune()
				lx.sendTok(QUO, "/")
			}
		case '%':
			if lx.accept('=') {
				lx.sendTok(REM_ASSIGN, "%=")
			} else {
				lx.sendTok(REM, "%")
			}
		case '|':
			second, _ := lx.readRune()
			switch second {
			case '|':
				lx.sendTok(LOR, "||")
			case '=':
				lx.sendTok(OR_ASSIGN, "|=")
			default:
				lx.unreadRune()
				lx.sendTok(OR, "|")
			}
		case '&':
			second, _ := lx.readRune()
			switch second {
			case '&':
				lx.sendTok(LAND, "&&")
			case '=':
				lx.sendTok(AND_ASSIGN, "&=")
			default:
				lx.unreadRune()
				lx.sendTok(AND, "&")
			}
		case '=':
			if lx.accept('=') {
				lx.sendTok(EQL, "==")
			} else {
				lx.sendTok(ASSIGN, "=")
			}
		case ';':
			lx.sendTok(SEMICOLON, ";")
		default:
			lx.Error(fmt.Sprintf("bad char code '%d'", first))
		}
	}
}

// skipLine drops a preprocessor line marker up to and including the newline.
func (lx *Lexer) skipLine() {
	for {
		c, eof := lx.readRune()
		if c == '\n' || eof {
			return
		}
	}
}

func (lx *Lexer) skipBlockComment() {
	for {
		c, eof := lx.readRune()
		if eof {
			lx.Error("unclosed comment.")
		}
		if c == '*' {
			closeBar, eof := lx.readRune()
			if eof {
				lx.Error("unclosed comment.")
			}
			if closeBar == '/' {
				return
			}
			//Unread so that we dont lose newlines.
			lx.unreadRune()
		}
	}
}

func (lx *Lexer) readIdentOrKeyword() {
	var buff bytes.Buffer
	lx.markPos()
	first, _ := lx.readRune()
	if !isValidIdentStart(first) {
		panic("internal error")
	}
	buff.WriteRune(first)
	for {
		b, eof := lx.readRune()
		if !eof && isValidIdentTail(b) {
			buff.WriteRune(b)
			continue
		}
		lx.unreadRune()
		str := buff.String()
		tokType, ok := keywordLUT[str]
		if !ok {
			tokType = IDENT
		}
		lx.sendTok(tokType, str)
		return
	}
}

func (lx *Lexer) skipWhiteSpace() {
	for {
		r, eof := lx.readRune()
		if eof || !isWhiteSpace(r) {
			lx.unreadRune()
			return
		}
	}
}

// Due to the 1 character lookahead we need this bool
func (lx *Lexer) readConstantIntOrFloat(startedWithPeriod bool) {
	var buff bytes.Buffer
	const (
		START = iota
		SECOND
		HEX
		DEC
		FLOAT_START
		FLOAT_AFTER_E
		FLOAT_AFTER_E_SIGN
		INT_TAIL
		FLOAT_TAIL
		END
	)
	var tokType TokenKind
	var state int
	if startedWithPeriod {
		state = FLOAT_START
		tokType = FLOAT_CONSTANT
		buff.WriteRune('.')
	} else {
		state = START
		tokType = INT_CONSTANT
	}
	for state != END {
		r, eof := lx.readRune()
		if eof {
			state = END
			break
		}
		switch state {
		case START:
			if !isNumeric(r) {
				lx.Error("internal error")
			}
			buff.WriteRune(r)
			state = SECOND
		case SECOND:
			if r == 'x' || r == 'X' {
				state = HEX
				buff.WriteRune(r)
			} else if isNumeric(r) {
				state = DEC
				buff.WriteRune(r)
			} else if r == 'e' || r == 'E' {
				state = FLOAT_AFTER_E
				tokType = FLOAT_CONSTANT
				buff.WriteRune(r)
			} else if r == '.' {
				state = FLOAT_START
				tokType = FLOAT_CONSTANT
				buff.WriteRune(r)
			} else if r == 'l' || r == 'L' || r == 'u' || r == 'U' {
				state = INT_TAIL
				buff.WriteRune(r)
			} else {
				if isValidIdentStart(r) {
					lx.Error("invalid constant int")
				}
				state = END
			}
		case DEC:
			if !isNumeric(r) {
				switch r {
				case 'l', 'L', 'u', 'U':
					state = INT_TAIL
					buff.WriteRune(r)
				case 'e', 'E':
					state = FLOAT_AFTER_E
					tokType = FLOAT_CONSTANT
					buff.WriteRune(r)
				case '.':
					state = FLOAT_START
					tokType = FLOAT_CONSTANT
					buff.WriteRune(r)
				default:
					if isValidIdentStart(r) {
						lx.Error("invalid constant int")
					}
					state = END
				}
			} else {
				buff.WriteRune(r)
			}
		case HEX:
			if !isHexDigit(r) {
				switch r {
				case 'l', 'L', 'u', 'U':
					state = INT_TAIL
					buff.WriteRune(r)
				default:
					if isValidIdentStart(r) {
						lx.Error("invalid constant int")
					}
					state = END
				}
			} else {
				buff.WriteRune(r)
			}
		case INT_TAIL:
			switch r {
			case 'l', 'L', 'u', 'U':
				buff.WriteRune(r)
			default:
				state = END
			}
		case FLOAT_START:
			if !isNumeric(r) {
				switch r {
				case 'e', 'E':
					state = FLOAT_AFTER_E
					buff.WriteRune(r)
				case 'l', 'L', 'f', 'F':
					state = FLOAT_TAIL
					buff.WriteRune(r)
				default:
					if isValidIdentStart(r) {
						lx.Error("invalid floating point constant.")
					}
					state = END
				}
			} else {
				buff.WriteRune(r)
			}
		case FLOAT_AFTER_E:
			if r == '-' || r == '+' || isNumeric(r) {
				state = FLOAT_AFTER_E_SIGN
				buff.WriteRune(r)
			} else {
				lx.Error("invalid float constant - expected number or signed after e")
			}
		case FLOAT_AFTER_E_SIGN:
			if isNumeric(r) {
				buff.WriteRune(r)
			} else {
				switch r {
				case 'l', 'L', 'f', 'F':
					buff.WriteRune(r)
					state = FLOAT_TAIL
				default:
					if isValidIdentStart(r) {
						lx.Error("invalid float constant")
					} else {
						state = END
					}
				}
			}
		case FLOAT_TAIL:
			switch r {
			case 'l', 'L', 'f', 'F':
				buff.WriteRune(r)
			default:
				if isValidIdentStart(r) {
					lx.Error("invalid float constant")
				}
				state = END
			}
		default:
			lx.Error("internal error.")
		}
	}
	lx.unreadRune()
	lx.sendTok(tokType, buff.String())
}

// readQuoted reads a string or char literal delimited by quote.
// Escapes are kept verbatim, escaped newlines are line continuations.
func (lx *Lexer) readQuoted(quote rune, kind TokenKind, what string) {
	const (
		START = iota
		MID
		ESCAPED
		END
	)
	var buff bytes.Buffer
	var state int
	lx.markPos()
	for state != END {
		r, eof := lx.readRune()
		if eof {
			lx.Error("eof in " + what + " literal")
		}
		switch state {
		case START:
			if r != quote {
				lx.Error("internal error")
			}
			buff.WriteRune(r)
			state = MID
		case MID:
			switch r {
			case '\\':
				state = ESCAPED
			case '\n':
				lx.Error("newline in " + what + " literal")
			case quote:
				buff.WriteRune(r)
				state = END
			default:
				buff.WriteRune(r)
			}
		case ESCAPED:
			switch r {
			case '\r':
				// empty
			case '\n':
				state = MID
			default:
				buff.WriteRune('\\')
				buff.WriteRune(r)
				state = MID
			}
		}
	}
	lx.sendTok(kind, buff.String())
}

func (lx *Lexer) readCString() {
	lx.readQuoted('"', STRING, "string")
}

func (lx *Lexer) readCChar() {
	lx.readQuoted('\'', CHAR_CONSTANT, "char")
}

func (lx *Lexer) isAtLineStart() bool {
	return lx.bol
}

func isValidIdentTail(b rune) bool {
	return isValidIdentStart(b) || isNumeric(b) || b == '$'
}

func isValidIdentStart(b rune) bool {
	return b == '_' || isAlpha(b)
}

func isAlpha(b rune) bool {
	if b >= 'a' && b <= 'z' {
		return true
	}
	if b >= 'A' && b <= 'Z' {
		return true
	}
	return false
}

func isWhiteSpace(b rune) bool {
	return b == ' ' || b == '\r' || b == '\n' || b == '\t' || b == '\f' || b == '\v'
}

func isNumeric(b rune) bool {
	if b >= '0' && b <= '9' {
		return true
	}
	return false
}

func isHexDigit(b rune) bool {
	return isNumeric(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

package lower

import (
	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/cpp"
)

// binaryOperator maps the operator token of a binary level, including the
// comma operator, to its node kind.
func binaryOperator(k cpp.TokenKind) (ast.Kind, bool) {
	switch k {
	case ',':
		return ast.CommaExpression, true
	case cpp.LOR:
		return ast.LogicalOr, true
	case cpp.LAND:
		return ast.LogicalAnd, true
	case '|':
		return ast.BitwiseOr, true
	case '^':
		return ast.BitwiseXor, true
	case '&':
		return ast.BitwiseAnd, true
	case cpp.EQL:
		return ast.Equal, true
	case cpp.NEQ:
		return ast.NotEqual, true
	case '<':
		return ast.Less, true
	case '>':
		return ast.Greater, true
	case cpp.LEQ:
		return ast.LessOrEqual, true
	case cpp.GEQ:
		return ast.GreaterOrEqual, true
	case cpp.SHL:
		return ast.ShiftLeft, true
	case cpp.SHR:
		return ast.ShiftRight, true
	case '+':
		return ast.Addition, true
	case '-':
		return ast.Subtraction, true
	case '*':
		return ast.Multiplication, true
	case '/':
		return ast.Division, true
	case '%':
		return ast.Modulo, true
	}
	return 0, false
}

func assignmentOperator(k cpp.TokenKind) (ast.Kind, bool) {
	switch k {
	case '=':
		return ast.Assignment, true
	case cpp.MUL_ASSIGN:
		return ast.MulAssign, true
	case cpp.QUO_ASSIGN:
		return ast.DivAssign, true
	case cpp.REM_ASSIGN:
		return ast.ModAssign, true
	case cpp.ADD_ASSIGN:
		return ast.AddAssign, true
	case cpp.SUB_ASSIGN:
		return ast.SubAssign, true
	case cpp.SHL_ASSIGN:
		return ast.ShlAssign, true
	case cpp.SHR_ASSIGN:
		return ast.ShrAssign, true
	case cpp.AND_ASSIGN:
		return ast.AndAssign, true
	case cpp.XOR_ASSIGN:
		return ast.XorAssign, true
	case cpp.OR_ASSIGN:
		return ast.OrAssign, true
	}
	return 0, false
}

// unaryOperator covers the prefix operators. sizeof is handled by the
// caller since its kind depends on the operand.
func unaryOperator(k cpp.TokenKind) (ast.Kind, bool) {
	switch k {
	case cpp.INC:
		return ast.PreIncrement, true
	case cpp.DEC:
		return ast.PreDecrement, true
	case '&':
		return ast.AddressOf, true
	case '*':
		return ast.Dereference, true
	case '+':
		return ast.UnaryPlus, true
	case '-':
		return ast.UnaryMinus, true
	case '~':
		return ast.BitwiseNot, true
	case '!':
		return ast.LogicalNot, true
	}
	return 0, false
}

func postfixOperator(k cpp.TokenKind) (ast.Kind, bool) {
	switch k {
	case cpp.INC:
		return ast.PostIncrement, true
	case cpp.DEC:
		return ast.PostDecrement, true
	}
	return 0, false
}

// leafKind maps the tokens that survive lowering to their leaf kinds.
func leafKind(k cpp.TokenKind) (ast.Kind, bool) {
	switch k {
	case cpp.IDENT:
		return ast.Identifier, true
	case cpp.TYPENAME:
		return ast.TypedefName, true
	case cpp.VOID:
		return ast.VoidType, true
	case cpp.CHAR:
		return ast.CharType, true
	case cpp.SHORT:
		return ast.ShortType, true
	case cpp.INT:
		return ast.IntType, true
	case cpp.LONG:
		return ast.LongType, true
	case cpp.FLOAT:
		return ast.FloatType, true
	case cpp.DOUBLE:
		return ast.DoubleType, true
	case cpp.SIGNED:
		return ast.SignedType, true
	case cpp.UNSIGNED:
		return ast.UnsignedType, true
	case cpp.AUTO, cpp.REGISTER, cpp.EXTERN, cpp.STATIC, cpp.TYPEDEF:
		return ast.StorageClass, true
	case cpp.CONST, cpp.VOLATILE, cpp.RESTRICT:
		return ast.TypeQualifier, true
	case cpp.ELLIPSIS:
		return ast.Ellipsis, true
	case cpp.INT_CONSTANT:
		return ast.IntegerConstant, true
	case cpp.FLOAT_CONSTANT:
		return ast.FloatConstant, true
	case cpp.CHAR_CONSTANT:
		return ast.CharConstant, true
	case cpp.STRING:
		return ast.StringLiteral, true
	}
	return 0, false
}

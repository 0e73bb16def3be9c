package parse

import (
	"github.com/andrewchambers/cfront/cpp"
)

// Node is a node of the concrete syntax tree, either a *Rule or a *Terminal.
type Node interface {
	Pos() cpp.FilePos
	cstNode()
}

type RuleKind int

// Every grammar rule, and every labeled alternative the lowering needs to
// tell apart, has its own kind.
const (
	RuleTranslationUnit RuleKind = iota
	RuleFunctionDefinition
	RuleDeclaration
	RuleDeclarationSpecifiers
	RuleStorageClassSpecifier
	RuleTypeSpecifier
	RuleTypeQualifier
	RuleStructOrUnionSpecifier
	RuleStructDeclaration
	RuleEnumSpecifier
	RuleEnumerator
	RuleInitDeclaratorList
	RuleInitDeclarator
	RuleInitializer
	RuleInitializerList
	RuleDeclarator
	RulePointer
	RuleDirectDeclaratorIdentifier
	RuleDirectDeclaratorParenthesized
	RuleDirectDeclaratorArray
	RuleDirectDeclaratorFunction
	RuleParameterList
	RuleParameterDeclaration
	RuleTypeName

	RuleCompoundStatement
	RuleExpressionStatement
	RuleIfStatement
	RuleSwitchStatement
	RuleWhileStatement
	RuleDoWhileStatement
	RuleForStatement
	RuleLabeledStatement
	RuleCaseStatement
	RuleDefaultStatement
	RuleGotoStatement
	RuleContinueStatement
	RuleBreakStatement
	RuleReturnStatement

	RuleExpression
	RuleAssignmentExpression
	RuleConditionalExpression
	RuleLogicalOrExpression
	RuleLogicalAndExpression
	RuleInclusiveOrExpression
	RuleExclusiveOrExpression
	RuleAndExpression
	RuleEqualityExpression
	RuleRelationalExpression
	RuleShiftExpression
	RuleAdditiveExpression
	RuleMultiplicativeExpression
	RuleCastExpression
	RuleUnaryExpression
	RulePostfixExpression
	RuleArgumentExpressionList
	RulePrimaryExpression

	numRuleKinds
)

var ruleKindToStr = [...]string{
	RuleTranslationUnit:               "translation_unit",
	RuleFunctionDefinition:            "function_definition",
	RuleDeclaration:                   "declaration",
	RuleDeclarationSpecifiers:         "declaration_specifiers",
	RuleStorageClassSpecifier:         "storage_class_specifier",
	RuleTypeSpecifier:                 "type_specifier",
	RuleTypeQualifier:                 "type_qualifier",
	RuleStructOrUnionSpecifier:        "struct_or_union_specifier",
	RuleStructDeclaration:             "struct_declaration",
	RuleEnumSpecifier:                 "enum_specifier",
	RuleEnumerator:                    "enumerator",
	RuleInitDeclaratorList:            "init_declarator_list",
	RuleInitDeclarator:                "init_declarator",
	RuleInitializer:                   "initializer",
	RuleInitializerList:               "initializer_list",
	RuleDeclarator:                    "declarator",
	RulePointer:                       "pointer",
	RuleDirectDeclaratorIdentifier:    "direct_declarator_identifier",
	RuleDirectDeclaratorParenthesized: "direct_declarator_parenthesized",
	RuleDirectDeclaratorArray:         "direct_declarator_array",
	RuleDirectDeclaratorFunction:      "direct_declarator_function",
	RuleParameterList:                 "parameter_list",
	RuleParameterDeclaration:          "parameter_declaration",
	RuleTypeName:                      "type_name",
	RuleCompoundStatement:             "compound_statement",
	RuleExpressionStatement:           "expression_statement",
	RuleIfStatement:                   "if_statement",
	RuleSwitchStatement:               "switch_statement",
	RuleWhileStatement:                "while_statement",
	RuleDoWhileStatement:              "do_while_statement",
	RuleForStatement:                  "for_statement",
	RuleLabeledStatement:              "labeled_statement",
	RuleCaseStatement:                 "case_statement",
	RuleDefaultStatement:              "default_statement",
	RuleGotoStatement:                 "goto_statement",
	RuleContinueStatement:             "continue_statement",
	RuleBreakStatement:                "break_statement",
	RuleReturnStatement:               "return_statement",
	RuleExpression:                    "expression",
	RuleAssignmentExpression:          "assignment_expression",
	RuleConditionalExpression:         "conditional_expression",
	RuleLogicalOrExpression:           "logical_or_expression",
	RuleLogicalAndExpression:          "logical_and_expression",
	RuleInclusiveOrExpression:         "inclusive_or_expression",
	RuleExclusiveOrExpression:         "exclusive_or_expression",
	RuleAndExpression:                 "and_expression",
	RuleEqualityExpression:            "equality_expression",
	RuleRelationalExpression:          "relational_expression",
	RuleShiftExpression:               "shift_expression",
	RuleAdditiveExpression:            "additive_expression",
	RuleMultiplicativeExpression:      "multiplicative_expression",
	RuleCastExpression:                "cast_expression",
	RuleUnaryExpression:               "unary_expression",
	RulePostfixExpression:             "postfix_expression",
	RuleArgumentExpressionList:        "argument_expression_list",
	RulePrimaryExpression:             "primary_expression",
}

func (k RuleKind) String() string {
	if k < 0 || k >= numRuleKinds {
		return "unknown_rule"
	}
	return ruleKindToStr[k]
}

// Rule is an interior CST node.
type Rule struct {
	Kind     RuleKind
	Children []Node
}

func NewRule(kind RuleKind, children ...Node) *Rule {
	return &Rule{Kind: kind, Children: children}
}

func (r *Rule) cstNode() {}

// Pos is the position of the first token under r.
func (r *Rule) Pos() cpp.FilePos {
	for _, c := range r.Children {
		if pos := c.Pos(); pos.IsValid() {
			return pos
		}
	}
	return cpp.FilePos{}
}

// First returns the first child rule of the given kind.
func (r *Rule) First(kind RuleKind) *Rule {
	for _, c := range r.Children {
		if cr, ok := c.(*Rule); ok && cr.Kind == kind {
			return cr
		}
	}
	return nil
}

// All returns every child rule of the given kind, in order.
func (r *Rule) All(kind RuleKind) []*Rule {
	var ret []*Rule
	for _, c := range r.Children {
		if cr, ok := c.(*Rule); ok && cr.Kind == kind {
			ret = append(ret, cr)
		}
	}
	return ret
}

// Rules returns the child rules, dropping terminals.
func (r *Rule) Rules() []*Rule {
	var ret []*Rule
	for _, c := range r.Children {
		if cr, ok := c.(*Rule); ok {
			ret = append(ret, cr)
		}
	}
	return ret
}

// Token returns the first child terminal of the given token kind.
func (r *Rule) Token(kind cpp.TokenKind) *Terminal {
	for _, c := range r.Children {
		if t, ok := c.(*Terminal); ok && t.Kind() == kind {
			return t
		}
	}
	return nil
}

// TerminalAt returns child i if it is a terminal.
func (r *Rule) TerminalAt(i int) *Terminal {
	if i < 0 || i >= len(r.Children) {
		return nil
	}
	t, _ := r.Children[i].(*Terminal)
	return t
}

// Terminal is a CST leaf wrapping one token.
type Terminal struct {
	Tok *cpp.Token
}

func NewTerminal(tok *cpp.Token) *Terminal {
	return &Terminal{Tok: tok}
}

func (t *Terminal) cstNode() {}

func (t *Terminal) Pos() cpp.FilePos {
	return t.Tok.Pos
}

func (t *Terminal) Kind() cpp.TokenKind {
	return t.Tok.Kind
}

func (t *Terminal) Text() string {
	return t.Tok.Val
}

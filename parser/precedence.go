package parser

import "github.com/deepnoodle-ai/varmask/internal/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	COMMA       // a, b
	ASSIGN      // = += ...
	CONDITIONAL // ? :
	LOGICAL_OR  // || ??
	LOGICAL_AND // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALS      // == != === !==
	COMPARE     // < > <= >= in instanceof
	SHIFT       // << >> >>>
	SUM         // + -
	PRODUCT     // * / %
	EXPONENT    // **
	PREFIX      // -X !X typeof X
	POSTFIX     // X++ X--
	NEW         // new X
	CALL        // f(X) a?.b
	MEMBER      // a.b a[b]
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.COMMA:            COMMA,
	token.ASSIGN:           ASSIGN,
	token.PLUS_EQUALS:      ASSIGN,
	token.MINUS_EQUALS:     ASSIGN,
	token.ASTERISK_EQUALS:  ASSIGN,
	token.SLASH_EQUALS:     ASSIGN,
	token.MOD_EQUALS:       ASSIGN,
	token.POW_EQUALS:       ASSIGN,
	token.LT_LT_EQUALS:     ASSIGN,
	token.GT_GT_EQUALS:     ASSIGN,
	token.GT_GT_GT_EQUALS:  ASSIGN,
	token.AMPERSAND_EQUALS: ASSIGN,
	token.BITOR_EQUALS:     ASSIGN,
	token.CARET_EQUALS:     ASSIGN,
	token.AND_EQUALS:       ASSIGN,
	token.OR_EQUALS:        ASSIGN,
	token.NULLISH_EQUALS:   ASSIGN,
	token.QUESTION:         CONDITIONAL,
	token.OR:               LOGICAL_OR,
	token.NULLISH:          LOGICAL_OR,
	token.AND:              LOGICAL_AND,
	token.BITOR:            BIT_OR,
	token.CARET:            BIT_XOR,
	token.AMPERSAND:        BIT_AND,
	token.EQ:               EQUALS,
	token.NOT_EQ:           EQUALS,
	token.EQ_STRICT:        EQUALS,
	token.NE_STRICT:        EQUALS,
	token.LT:               COMPARE,
	token.GT:               COMPARE,
	token.LT_EQUALS:        COMPARE,
	token.GT_EQUALS:        COMPARE,
	token.IN:               COMPARE,
	token.INSTANCEOF:       COMPARE,
	token.LT_LT:            SHIFT,
	token.GT_GT:            SHIFT,
	token.GT_GT_GT:         SHIFT,
	token.PLUS:             SUM,
	token.MINUS:            SUM,
	token.ASTERISK:         PRODUCT,
	token.SLASH:            PRODUCT,
	token.MOD:              PRODUCT,
	token.POW:              EXPONENT,
	token.PLUS_PLUS:        POSTFIX,
	token.MINUS_MINUS:      POSTFIX,
	token.LPAREN:           CALL,
	token.QUESTION_DOT:     CALL,
	token.PERIOD:           MEMBER,
	token.LBRACKET:         MEMBER,
}

// Precedence returns the binding strength of a binary, logical or
// assignment operator as spelled in source, or LOWEST if the operator is
// unknown. The printer uses it to decide where parentheses are required.
func Precedence(op string) int {
	if p, ok := precedences[token.Type(op)]; ok {
		return p
	}
	switch op {
	case "in":
		return COMPARE
	case "instanceof":
		return COMPARE
	}
	return LOWEST
}

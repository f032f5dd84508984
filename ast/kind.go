package ast

// Kind identifies the syntactic form of a node.
type Kind uint8

const (
	Invalid Kind = iota

	// Program holds the top-level statements in List.
	Program

	// VarDecl is a variable declaration. Text is "var", "let" or "const" and
	// List holds Declarator nodes.
	VarDecl
	// Declarator binds X (Ident or pattern) to the optional initializer Y.
	Declarator
	// FuncDecl is a function declaration. X is the name, List the
	// parameters and Y the body Block.
	FuncDecl
	// ClassDecl is a class declaration. X is the name, Y the optional
	// superclass and List the Method members.
	ClassDecl
	// ExprStmt evaluates X. FlagDirective marks directive prologue entries.
	ExprStmt
	// Block holds statements in List.
	Block
	// Empty is the empty statement.
	Empty
	// Debugger is the debugger statement.
	Debugger
	// Return returns the optional X.
	Return
	// If tests X and runs Y, otherwise the optional Z.
	If
	// For has the optional init X, test Y, update Z and body W.
	For
	// ForIn assigns the keys of Y to the target X before each run of W.
	ForIn
	// ForOf assigns the values of Y to the target X before each run of W.
	ForOf
	// While runs W while X is truthy.
	While
	// DoWhile runs W, then repeats while X is truthy.
	DoWhile
	// Break has an optional label in Text.
	Break
	// Continue has an optional label in Text.
	Continue
	// Labeled attaches the label in Text to statement W.
	Labeled
	// Throw throws X.
	Throw
	// Try runs block X with the optional Catch Y and finally block Z.
	Try
	// Catch binds the optional parameter X and runs block W.
	Catch
	// Switch compares X against the Case nodes in List.
	Switch
	// Case has test X (NoNode for default) and statements in List.
	Case

	// Ident is an identifier. Text holds the name.
	Ident
	// This is the this keyword.
	This
	// Super is the super keyword.
	Super
	// Number is a numeric literal. Text holds the source form.
	Number
	// String is a string literal. Text holds the source form, quotes included.
	String
	// Literal is true, false or null, spelled in Text.
	Literal
	// Array holds elements in List. NoNode entries are holes.
	Array
	// Object holds Property and Spread nodes in List.
	Object
	// Property is an object member with key X and value Y. Text is "init",
	// "get", "set" or "method"; method values are FuncExpr nodes.
	Property
	// FuncExpr is a function expression. Same layout as FuncDecl; X may be
	// NoNode.
	FuncExpr
	// Arrow is an arrow function. List holds the parameters and Y the body,
	// which is an expression when FlagExprBody is set.
	Arrow
	// ClassExpr is a class expression. Same layout as ClassDecl.
	ClassExpr
	// Method is a class member with key X and value Y. Text is "method",
	// "get", "set", "constructor" or "field"; field values may be NoNode.
	Method
	// Member is a property access X.Y where Y is an Ident.
	Member
	// Index is a computed property access X[Y].
	Index
	// Call calls X with the arguments in List.
	Call
	// New constructs X with the arguments in List.
	New
	// Unary applies the operator in Text to X.
	Unary
	// Update applies ++ or -- (Text) to X. FlagPrefix marks the prefix form.
	Update
	// Binary applies the operator in Text to X and Y, including logical
	// operators.
	Binary
	// Assign assigns Y to the target X using the operator in Text.
	Assign
	// Cond evaluates X ? Y : Z.
	Cond
	// Sequence evaluates the expressions in List in order.
	Sequence
	// Spread spreads X into an array, call or object.
	Spread
	// Rest collects the remaining elements into the target X.
	Rest
	// AssignPattern is a binding target X with default value Y.
	AssignPattern
	// ObjectPattern destructures an object. List holds Property and Rest nodes.
	ObjectPattern
	// ArrayPattern destructures an iterable. List holds targets; NoNode
	// entries are holes.
	ArrayPattern
	// Yield yields the optional X. FlagDelegate marks yield*.
	Yield
	// Await awaits X.
	Await

	kindCount
)

var kindNames = [...]string{
	Invalid:       "Invalid",
	Program:       "Program",
	VarDecl:       "VarDecl",
	Declarator:    "Declarator",
	FuncDecl:      "FuncDecl",
	ClassDecl:     "ClassDecl",
	ExprStmt:      "ExprStmt",
	Block:         "Block",
	Empty:         "Empty",
	Debugger:      "Debugger",
	Return:        "Return",
	If:            "If",
	For:           "For",
	ForIn:         "ForIn",
	ForOf:         "ForOf",
	While:         "While",
	DoWhile:       "DoWhile",
	Break:         "Break",
	Continue:      "Continue",
	Labeled:       "Labeled",
	Throw:         "Throw",
	Try:           "Try",
	Catch:         "Catch",
	Switch:        "Switch",
	Case:          "Case",
	Ident:         "Ident",
	This:          "This",
	Super:         "Super",
	Number:        "Number",
	String:        "String",
	Literal:       "Literal",
	Array:         "Array",
	Object:        "Object",
	Property:      "Property",
	FuncExpr:      "FuncExpr",
	Arrow:         "Arrow",
	ClassExpr:     "ClassExpr",
	Method:        "Method",
	Member:        "Member",
	Index:         "Index",
	Call:          "Call",
	New:           "New",
	Unary:         "Unary",
	Update:        "Update",
	Binary:        "Binary",
	Assign:        "Assign",
	Cond:          "Cond",
	Sequence:      "Sequence",
	Spread:        "Spread",
	Rest:          "Rest",
	AssignPattern: "AssignPattern",
	ObjectPattern: "ObjectPattern",
	ArrayPattern:  "ArrayPattern",
	Yield:         "Yield",
	Await:         "Await",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsFunction reports whether the kind introduces a function body.
func (k Kind) IsFunction() bool {
	return k == FuncDecl || k == FuncExpr || k == Arrow
}

// IsClass reports whether the kind is a class declaration or expression.
func (k Kind) IsClass() bool {
	return k == ClassDecl || k == ClassExpr
}

// IsLoop reports whether the kind is an iteration statement.
func (k Kind) IsLoop() bool {
	switch k {
	case For, ForIn, ForOf, While, DoWhile:
		return true
	}
	return false
}

// IsStatement reports whether the kind is a statement or declaration.
func (k Kind) IsStatement() bool {
	return k >= VarDecl && k <= Case
}

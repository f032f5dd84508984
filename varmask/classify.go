package varmask

import (
	"sort"

	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/scope"
)

// Rejection records a binding of the function that stays a named variable.
type Rejection struct {
	Name   string
	Reason Reason
}

// classification is the outcome of classifying one function's bindings.
type classification struct {
	params []string
	// bindings qualify for relocation: parameters in declaration order,
	// then other bindings in order of their first declaration.
	bindings []*scope.Binding
	rejected []Rejection
	// pinned names a parameter that must stay a named variable, which
	// rules out replacing the parameter list.
	pinned string
}

// classify collects the bindings owned by the function's own scope and
// splits them into those that can move to the stack and those that cannot.
func classify(tree *ast.Tree, table *scope.Table, fn ast.NodeID) classification {
	var c classification
	fs, ok := table.ScopeOf(fn)
	if !ok {
		return c
	}
	n := tree.Node(fn)
	for _, param := range n.List {
		c.params = append(c.params, tree.Node(param).Text)
	}
	blockFuncs := nestedFunctionDecls(tree, fn)

	var params, others []*scope.Binding
	for _, b := range bindingsInOrder(fs) {
		reason := qualify(tree, table, fs, fn, b)
		if reason == "" && blockFuncs[b.Name] {
			reason = ReasonFuncDecl
		}
		isParam := b.Kind == scope.Param
		if reason != "" {
			c.rejected = append(c.rejected, Rejection{Name: b.Name, Reason: reason})
			if isParam && c.pinned == "" {
				c.pinned = b.Name
			}
			continue
		}
		if isParam {
			params = append(params, b)
		} else {
			others = append(others, b)
		}
	}
	sort.SliceStable(params, func(i, j int) bool {
		return lastIndex(c.params, params[i].Name) < lastIndex(c.params, params[j].Name)
	})
	c.bindings = append(params, others...)
	return c
}

func bindingsInOrder(s *scope.Scope) []*scope.Binding {
	out := make([]*scope.Binding, 0, len(s.Bindings))
	for _, b := range s.Bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return firstDecl(out[i]) < firstDecl(out[j])
	})
	return out
}

func firstDecl(b *scope.Binding) ast.NodeID {
	if len(b.Decls) == 0 {
		return 0
	}
	first := b.Decls[0]
	for _, id := range b.Decls[1:] {
		if id < first {
			first = id
		}
	}
	return first
}

func lastIndex(names []string, name string) int {
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == name {
			return i
		}
	}
	return -1
}

// qualify returns why a binding cannot be relocated, or "". Every
// declaration site must be a parameter of fn or the only, plain declarator
// of its declaration.
func qualify(tree *ast.Tree, table *scope.Table, fs *scope.Scope, fn ast.NodeID, b *scope.Binding) Reason {
	switch b.Kind {
	case scope.Param, scope.Var, scope.Let, scope.Const:
	default:
		return ReasonFuncDecl
	}
	for _, d := range b.Decls {
		parent := tree.Parent(d)
		p := tree.Node(parent)
		switch {
		case parent == fn:
			continue
		case p.Kind == ast.Declarator && p.X == d:
			if len(tree.Node(tree.Parent(parent)).List) != 1 {
				return ReasonMultiDecl
			}
			if shadowedBetween(table, fs, d, b.Name) {
				return ReasonShadowedDecl
			}
		case p.Kind == ast.FuncDecl || p.Kind.IsClass():
			return ReasonFuncDecl
		default:
			return ReasonPattern
		}
	}
	for _, r := range b.Refs {
		if p := tree.Node(tree.Parent(r)); p.Kind == ast.Unary && p.Text == "delete" {
			return ReasonDelete
		}
	}
	return ""
}

// shadowedBetween reports whether a scope between the declaration site and
// the function scope declares the same name. A var declarator inside a
// catch clause that names the catch parameter assigns the parameter, not
// the hoisted variable.
func shadowedBetween(table *scope.Table, fs *scope.Scope, ident ast.NodeID, name string) bool {
	for s := table.ScopeAt(ident); s != nil && s != fs; s = s.Parent {
		if _, ok := s.Own(name); ok {
			return true
		}
	}
	return false
}

// nestedFunctionDecls returns the names of function declarations inside
// blocks of fn, not counting those directly in its body. Such
// declarations also assign a same-named variable of the function when
// they are evaluated.
func nestedFunctionDecls(tree *ast.Tree, fn ast.NodeID) map[string]bool {
	names := map[string]bool{}
	body := tree.Node(fn).Y
	ast.Inspect(tree, fn, func(id ast.NodeID) bool {
		n := tree.Node(id)
		if id == fn || !n.Kind.IsFunction() {
			return true
		}
		if n.Kind == ast.FuncDecl && tree.Parent(id) != body && n.X != ast.NoNode {
			names[tree.Node(n.X).Text] = true
		}
		return false
	})
	return names
}

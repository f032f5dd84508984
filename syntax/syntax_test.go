package syntax

import (
	"context"
	"errors"
	"testing"

	"github.com/deepnoodle-ai/varmask/ast"
	verrors "github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/parser"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tree, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	return tree
}

func firstOf(tree *ast.Tree, kind ast.Kind) ast.NodeID {
	for id := range ast.Preorder(tree, tree.Root) {
		if tree.Kind(id) == kind {
			return id
		}
	}
	return ast.NoNode
}

func TestTransformerFunc(t *testing.T) {
	called := false
	transformer := TransformerFunc(func(ctx context.Context, tree *ast.Tree) error {
		called = true
		return nil
	})

	tree := parse(t, "1 + 2")
	require.NoError(t, transformer.Transform(context.Background(), tree))
	assert.True(t, called)
	assert.Equal(t, "func", transformer.Name())
}

func TestTransformerModifiesTree(t *testing.T) {
	// Doubles numeric literals.
	double := Named("double", func(ctx context.Context, tree *ast.Tree) error {
		for id := range ast.Preorder(tree, tree.Root) {
			if n := tree.Node(id); n.Kind == ast.Number && n.Text == "5" {
				n.Text = "10"
			}
		}
		return nil
	})

	tree := parse(t, "5")
	require.NoError(t, double.Transform(context.Background(), tree))
	assert.Equal(t, "10", tree.Node(firstOf(tree, ast.Number)).Text)
	assert.Equal(t, "double", double.Name())
}

func TestPipelineOrder(t *testing.T) {
	var order []string
	pass := func(name string) Transformer {
		return Named(name, func(context.Context, *ast.Tree) error {
			order = append(order, name)
			return nil
		})
	}
	p := NewPipeline([]Transformer{pass("a"), pass("b")}).Add(pass("c"))
	assert.Equal(t, []string{"a", "b", "c"}, p.Passes())

	require.NoError(t, p.Transform(context.Background(), parse(t, "x")))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPipelineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	p := NewPipeline([]Transformer{
		Named("fails", func(context.Context, *ast.Tree) error { return boom }),
		Named("after", func(context.Context, *ast.Tree) error { ran = true; return nil }),
	})

	err := p.Transform(context.Background(), parse(t, "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)

	var passErr *PassError
	require.ErrorAs(t, err, &passErr)
	assert.Equal(t, "fails", passErr.Pass)
}

func TestPipelineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := 0
	p := NewPipeline([]Transformer{
		Named("first", func(context.Context, *ast.Tree) error { ran++; cancel(); return nil }),
		Named("second", func(context.Context, *ast.Tree) error { ran++; return nil }),
	})
	err := p.Transform(ctx, parse(t, "x"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, ran)

	var te *verrors.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, verrors.E2002, te.Code)
	assert.Equal(t, "second", te.Pass)
}

func TestPipelineRecoversPanic(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	p := NewPipeline([]Transformer{
		Named("panics", func(context.Context, *ast.Tree) error { panic(boom) }),
		Named("after", func(context.Context, *ast.Tree) error { ran = true; return nil }),
	})

	err := p.Transform(context.Background(), parse(t, "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)

	var te *verrors.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, verrors.E2003, te.Code)
	assert.Equal(t, "panics", te.Pass)
	assert.Contains(t, te.Error(), "pass panicked: boom")
}

func TestPipelineAggregatesValidation(t *testing.T) {
	breaks := Named("breaks", func(ctx context.Context, tree *ast.Tree) error {
		// Point the identifier's parent link somewhere else.
		tree.Node(firstOf(tree, ast.Ident)).Parent = tree.Root
		return errors.New("also failed")
	})
	p := NewPipeline([]Transformer{breaks}, WithValidator(NewTreeValidator()))

	err := p.Transform(context.Background(), parse(t, "f(x)"))
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)

	var verrs *ValidationErrors
	require.ErrorAs(t, merr.Errors[1], &verrs)
	assert.Contains(t, verrs.Error(), "stale parent link")
}

func TestMarkUnsafe(t *testing.T) {
	tree := parse(t, "function f() {}")
	fn := firstOf(tree, ast.FuncDecl)
	assert.False(t, IsUnsafe(tree, fn))
	MarkUnsafe(tree, fn)
	assert.True(t, IsUnsafe(tree, fn))
	assert.Panics(t, func() { MarkUnsafe(tree, tree.Root) })
}

func TestTreeValidator(t *testing.T) {
	tests := []struct {
		name  string
		input string
		edit  func(tree *ast.Tree)
		want  []string
	}{
		{
			name:  "clean tree",
			input: "function f(a, b) { var c = a; for (c of b) {} return c; }",
		},
		{
			name:  "forbidden name",
			input: "var secret = 1; f(secret)",
			want:  []string{"identifier secret must not appear", "identifier secret must not appear"},
		},
		{
			name:  "spliced index is a valid target",
			input: "function f(a) { a = 1; a++; }",
			edit: func(tree *ast.Tree) {
				for _, id := range identsNamed(tree, "a")[1:] {
					tree.Replace(id, tree.Index(tree.Ident("s"), tree.Number(0)))
				}
			},
		},
		{
			name:  "call is not a target",
			input: "a = 1",
			edit: func(tree *ast.Tree) {
				tree.Replace(firstOf(tree, ast.Ident), tree.Call(tree.Ident("g")))
			},
			want: []string{"invalid assignment target"},
		},
		{
			name:  "root with a parent",
			input: "x",
			edit: func(tree *ast.Tree) {
				tree.Node(tree.Root).Parent = firstOf(tree, ast.Ident)
			},
			want: []string{"root has a parent"},
		},
		{
			name:  "rest not last",
			input: "function f(a, b) {}",
			edit: func(tree *ast.Tree) {
				tree.Replace(identsNamed(tree, "a")[0], tree.Rest(tree.Ident("r")))
			},
			want: []string{"rest parameter must be last"},
		},
	}
	v := NewTreeValidator("secret")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.input)
			if tt.edit != nil {
				tt.edit(tree)
			}
			var got []string
			for _, err := range v.Validate(tree) {
				got = append(got, err.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func identsNamed(tree *ast.Tree, name string) []ast.NodeID {
	var out []ast.NodeID
	for id := range ast.Preorder(tree, tree.Root) {
		if n := tree.Node(id); n.Kind == ast.Ident && n.Text == name {
			out = append(out, id)
		}
	}
	return out
}

func TestValidationErrorMessages(t *testing.T) {
	tree, err := parser.Parse(context.Background(), "f(\n  secret)", parser.WithFilename("main.js"))
	require.NoError(t, err)
	errs := NewTreeValidator("secret").Validate(tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "identifier secret must not appear at main.js:2:3", errs[0].Error())

	synthetic := ValidationError{Message: "bad", Node: 7}
	assert.Equal(t, "bad (node 7)", synthetic.Error())

	all := NewValidationErrors([]ValidationError{errs[0], synthetic})
	assert.Equal(t, "2 validation errors:\n  - identifier secret must not appear at main.js:2:3\n  - bad (node 7)\n", all.Error())
	assert.Equal(t, "no validation errors", NewValidationErrors(nil).Error())
}

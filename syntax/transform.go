// Package syntax hosts passes that rewrite a parsed tree in place.
//
// A Pipeline runs its transformers in order over one tree. Each transformer
// owns the tree for the duration of its call. Validators registered on the
// pipeline run after every pass and turn a broken tree into an error before
// the next pass sees it.
package syntax

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/hashicorp/go-multierror"
)

// Transformer modifies a tree in place.
type Transformer interface {
	// Name identifies the pass in errors and logs.
	Name() string

	// Transform rewrites the tree. An error stops the pipeline.
	Transform(ctx context.Context, tree *ast.Tree) error
}

// TransformerFunc is an adapter to use a function as a Transformer.
type TransformerFunc func(context.Context, *ast.Tree) error

// Name implements the Transformer interface.
func (f TransformerFunc) Name() string {
	return "func"
}

// Transform implements the Transformer interface.
func (f TransformerFunc) Transform(ctx context.Context, tree *ast.Tree) error {
	return f(ctx, tree)
}

type namedTransformer struct {
	name string
	fn   TransformerFunc
}

func (n namedTransformer) Name() string { return n.name }

func (n namedTransformer) Transform(ctx context.Context, tree *ast.Tree) error {
	return n.fn(ctx, tree)
}

// Named wraps a function as a Transformer with the given name.
func Named(name string, fn TransformerFunc) Transformer {
	return namedTransformer{name: name, fn: fn}
}

// PassError reports the failure of one pass.
type PassError struct {
	Pass string
	Err  error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pass, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

// Pipeline runs transformers in order.
type Pipeline struct {
	passes     []Transformer
	validators []Validator
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithValidator runs v after every pass.
func WithValidator(v Validator) PipelineOption {
	return func(p *Pipeline) {
		p.validators = append(p.validators, v)
	}
}

// NewPipeline returns a pipeline that runs the given passes in order.
func NewPipeline(passes []Transformer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{passes: passes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add appends passes to the pipeline.
func (p *Pipeline) Add(passes ...Transformer) *Pipeline {
	p.passes = append(p.passes, passes...)
	return p
}

// Passes returns the names of the passes in run order.
func (p *Pipeline) Passes() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name()
	}
	return names
}

// Name implements the Transformer interface, so pipelines nest.
func (p *Pipeline) Name() string {
	return "pipeline"
}

// Transform runs every pass over the tree. The context is checked before
// each pass; a cancelled context yields an E2002 TransformError wrapping
// ctx.Err(). A failing pass stops the pipeline; validation errors of that
// pass are collected alongside its error. A pass that panics fails with
// E2003.
func (p *Pipeline) Transform(ctx context.Context, tree *ast.Tree) error {
	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return Cancelled(pass.Name(), err)
		}
		var result *multierror.Error
		if err := runPass(ctx, pass, tree); err != nil {
			result = multierror.Append(result, &PassError{Pass: pass.Name(), Err: err})
		}
		for _, v := range p.validators {
			if errs := v.Validate(tree); len(errs) > 0 {
				result = multierror.Append(result, &PassError{
					Pass: pass.Name(),
					Err:  NewValidationErrors(errs),
				})
			}
		}
		if err := result.ErrorOrNil(); err != nil {
			return err
		}
	}
	return nil
}

// Cancelled returns the error reported when ctx is done before pass runs.
func Cancelled(pass string, err error) error {
	te := errors.TransformErrorf(errors.E2002, pass, "cancelled: %v", err)
	te.Err = err
	return te
}

func runPass(ctx context.Context, pass Transformer, tree *ast.Tree) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		te := errors.TransformErrorf(errors.E2003, pass.Name(), "pass panicked: %v", r)
		if e, ok := r.(error); ok {
			te.Err = e
		}
		err = te
	}()
	return pass.Transform(ctx, tree)
}

// MarkUnsafe tags a function so that later passes leave it alone.
func MarkUnsafe(tree *ast.Tree, fn ast.NodeID) {
	n := tree.Node(fn)
	if !n.Kind.IsFunction() {
		panic(fmt.Sprintf("syntax: MarkUnsafe on %s node", n.Kind))
	}
	n.Flags |= ast.FlagUnsafe
}

// IsUnsafe reports whether a function has been tagged by MarkUnsafe.
func IsUnsafe(tree *ast.Tree, fn ast.NodeID) bool {
	return tree.Node(fn).Flags.Has(ast.FlagUnsafe)
}

// Package varmask relocates the local variables of JavaScript functions into
// one array per function.
//
// Each eligible function has its parameter list replaced with a single rest
// parameter, the stack, and every parameter and single-declarator variable
// it owns becomes an indexed element of that stack:
//
//	function f(a, b) { var c = a + b; return c; }
//
// becomes
//
//	function f(...s0_varMask) { s0_varMask.length = 2; s0_varMask[2] = s0_varMask[0] + s0_varMask[1]; return s0_varMask[2]; }
//
// Functions are processed after the functions nested in them. Functions
// that could observe the change (strict mode, accessors, async and
// generator functions, non-plain parameters, direct eval, the arguments
// object) are left untouched, as are functions whose length the arity
// fixer cannot restore and functions the probability policy declines.
package varmask

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/deepnoodle-ai/varmask/arity"
	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/naming"
	"github.com/deepnoodle-ai/varmask/policy"
	"github.com/deepnoodle-ai/varmask/scope"
	"github.com/deepnoodle-ai/varmask/syntax"
	"github.com/rs/zerolog"
)

var _ syntax.Transformer = (*Transform)(nil)

// PassName is the name the transform reports to a pipeline.
const PassName = "variableMasking"

// State is the progress of one function through the transform.
type State int

const (
	Unevaluated State = iota
	Skipped
	Classified
	Rewritten
	Signed
	Done
)

func (s State) String() string {
	switch s {
	case Unevaluated:
		return "unevaluated"
	case Skipped:
		return "skipped"
	case Classified:
		return "classified"
	case Rewritten:
		return "rewritten"
	case Signed:
		return "signed"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Function is the outcome for one function.
type Function struct {
	Node  ast.NodeID
	Name  string
	State State
	// Reason is set when the function was skipped or had nothing to
	// relocate.
	Reason Reason
	// Stack is the name of the rest parameter that replaced the
	// parameter list.
	Stack string
	// Slots lists the relocated names by slot index.
	Slots []string
	// Kept lists the bindings that stay named variables.
	Kept []Rejection
}

// Masked reports whether the function was rewritten.
func (f *Function) Masked() bool {
	return f.Stack != ""
}

// Report describes one application of the transform.
type Report struct {
	Functions []*Function
	// Detached counts occurrences skipped because an earlier rewrite had
	// already removed their container.
	Detached int
}

// Masked returns the number of rewritten functions.
func (r *Report) Masked() int {
	n := 0
	for _, f := range r.Functions {
		if f.Masked() {
			n++
		}
	}
	return n
}

// Skips counts skipped functions by reason.
func (r *Report) Skips() map[Reason]int {
	out := map[Reason]int{}
	for _, f := range r.Functions {
		if f.State == Skipped {
			out[f.Reason]++
		}
	}
	return out
}

// Transform is the variable masking pass. It may be applied to any number
// of trees one after another.
type Transform struct {
	probability policy.Probability
	names       naming.Generator
	fixer       arity.Fixer
	logger      zerolog.Logger
	rng         *rand.Rand
}

// Option configures a Transform.
type Option func(*Transform)

// WithProbability sets the policy deciding which eligible functions are
// rewritten. The default rewrites all of them.
func WithProbability(p policy.Probability) Option {
	return func(t *Transform) {
		t.probability = p
	}
}

// WithSeed seeds the random source passed to the probability policy.
func WithSeed(seed int64) Option {
	return func(t *Transform) {
		t.rng = rand.New(rand.NewSource(seed))
	}
}

// WithNameGenerator sets the generator for stack names. The default is
// naming.Random seeded with 1.
func WithNameGenerator(g naming.Generator) Option {
	return func(t *Transform) {
		t.names = g
	}
}

// WithArityFixer sets how the original length of rewritten functions is
// restored. The default is arity.NewDefineLength().
func WithArityFixer(f arity.Fixer) Option {
	return func(t *Transform) {
		t.fixer = f
	}
}

// WithLogger sets the logger that receives per-function decisions at
// debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transform) {
		t.logger = logger
	}
}

// New returns a Transform configured with the given options.
func New(opts ...Option) *Transform {
	t := &Transform{
		probability: policy.Always,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.names == nil {
		t.names = naming.Random(1)
	}
	if t.fixer == nil {
		t.fixer = arity.NewDefineLength()
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(1))
	}
	return t
}

// Name implements syntax.Transformer.
func (t *Transform) Name() string {
	return PassName
}

// Transform implements syntax.Transformer.
func (t *Transform) Transform(ctx context.Context, tree *ast.Tree) error {
	if err := ctx.Err(); err != nil {
		return syntax.Cancelled(PassName, err)
	}
	report, err := t.Apply(tree)
	if err != nil {
		return err
	}
	t.logger.Debug().
		Str("file", tree.File).
		Int("functions", len(report.Functions)).
		Int("masked", report.Masked()).
		Msg("variable masking done")
	return nil
}

// Apply rewrites every eligible function of the tree in place.
func (t *Transform) Apply(tree *ast.Tree) (*Report, error) {
	report := &Report{}
	if tree.Root == ast.NoNode {
		return report, nil
	}
	table := scope.Build(tree)

	var fns []ast.NodeID
	for id := range ast.Postorder(tree, tree.Root) {
		if tree.Kind(id).IsFunction() {
			fns = append(fns, id)
		}
	}
	for _, fn := range fns {
		f, err := t.apply(tree, table, fn, report)
		if f != nil {
			report.Functions = append(report.Functions, f)
		}
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// apply runs the guard, classifier, rewriter and signature rewriter on one
// function. A function either ends Skipped, ends Done without changes, or
// is rewritten completely.
func (t *Transform) apply(tree *ast.Tree, table *scope.Table, fn ast.NodeID, report *Report) (*Function, error) {
	if !tree.Attached(fn) {
		return nil, nil
	}
	f := &Function{Node: fn, Name: functionName(tree, fn), State: Unevaluated}
	log := t.logger.With().Str("function", displayName(f.Name)).Logger()

	if reason := rejectReason(tree, table, fn); reason != "" {
		return t.skip(f, log, reason), nil
	}
	if !arity.CanSetLength(t.fixer, tree, fn, arity.Length(tree, fn)) {
		return t.skip(f, log, ReasonArity), nil
	}
	if !t.probability.Decide(f.Name, t.rng) {
		return t.skip(f, log, ReasonPolicy), nil
	}

	c := classify(tree, table, fn)
	f.State = Classified
	f.Kept = c.rejected
	if c.pinned != "" {
		log.Debug().Str("param", c.pinned).Msg("parameter pinned")
		return t.skip(f, log, ReasonParamPinned), nil
	}
	if len(c.bindings) == 0 {
		f.State = Done
		f.Reason = ReasonNoBindings
		log.Debug().Str("reason", string(f.Reason)).Msg("nothing to mask")
		return f, nil
	}

	stack := t.names.Next(table.Used)
	if stack == "" {
		err := errors.TransformErrorf(errors.E2001, PassName,
			"no fresh identifier for the stack of %s", displayName(f.Name))
		pos := tree.Node(fn).Pos
		err.Filename = pos.File
		err.Line = pos.LineNumber()
		err.Column = pos.ColumnNumber()
		return f, err
	}

	length := arity.Length(tree, fn)
	slots := NewSlotMap(c.params)
	rw := &rewriter{tree: tree, fn: fn, stack: stack}
	for _, b := range c.bindings {
		rw.rewrite(b, slots.Assign(b.Name))
		table.Remove(b)
	}
	f.State = Rewritten
	report.Detached += rw.skipped

	rewriteSignature(tree, table, fn, stack, len(c.params), slots.Len())
	f.State = Signed
	restoreArity(tree, t.fixer, fn, length)

	f.State = Done
	f.Stack = stack
	f.Slots = slots.Names()
	log.Debug().
		Str("stack", stack).
		Strs("slots", f.Slots).
		Int("kept", len(f.Kept)).
		Msg("masked")
	return f, nil
}

func (t *Transform) skip(f *Function, log zerolog.Logger, reason Reason) *Function {
	f.State = Skipped
	f.Reason = reason
	log.Debug().Str("reason", string(reason)).Msg("skipped")
	return f
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}

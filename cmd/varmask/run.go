package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/parser"
	"github.com/deepnoodle-ai/varmask/printer"
	"github.com/deepnoodle-ai/varmask/syntax"
	"github.com/deepnoodle-ai/varmask/varmask"
	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type source struct {
	name string
	path string
	code string
}

type result struct {
	source
	tree   *ast.Tree
	report *varmask.Report
}

func run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if v.GetBool("no-color") {
		color.NoColor = true
	}
	logger, err := getLogger(v, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	sources, err := getSources(cmd, v, args)
	if err != nil {
		return err
	}
	if v.GetString("output") != "" && len(sources) > 1 {
		return stderrors.New("--output requires a single input")
	}
	if v.GetBool("write") {
		for _, src := range sources {
			if src.path == "" {
				return stderrors.New("--write requires file arguments")
			}
		}
	}
	opts, err := getTransformOptions(v, logger)
	if err != nil {
		return err
	}
	transform := varmask.New(opts...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var parseOpts []parser.Option
	if depth := v.GetInt("max-depth"); depth > 0 {
		parseOpts = append(parseOpts, parser.WithMaxDepth(depth))
	}

	var merr *multierror.Error
	var results []*result
	for _, src := range sources {
		res := &result{source: src}
		// The pass is wrapped so the report of each tree is kept for
		// --report while the pipeline still validates the output.
		pass := syntax.Named(varmask.PassName, func(ctx context.Context, tree *ast.Tree) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := transform.Apply(tree)
			res.report = report
			return err
		})
		pipeline := syntax.NewPipeline([]syntax.Transformer{pass},
			syntax.WithValidator(syntax.NewTreeValidator()))

		tree, err := parser.Parse(ctx, src.code, append(parseOpts, parser.WithFilename(src.name))...)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		if err := pipeline.Transform(ctx, tree); err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		res.tree = tree
		logger.Info().
			Str("file", src.name).
			Int("masked", res.report.Masked()).
			Msg("transformed")
		results = append(results, res)
	}

	for _, res := range results {
		if err := writeResult(cmd, v, res, len(sources) > 1); err != nil {
			merr = multierror.Append(merr, err)
		}
		if v.GetBool("report") {
			printReport(cmd.ErrOrStderr(), res)
		}
	}
	return merr.ErrorOrNil()
}

func getSources(cmd *cobra.Command, v *viper.Viper, args []string) ([]source, error) {
	codeSet := cmd.Flags().Changed("code")
	stdinSet := v.GetBool("stdin")
	count := 0
	if codeSet {
		count++
	}
	if stdinSet {
		count++
	}
	if len(args) > 0 {
		count++
	}
	if count > 1 {
		return nil, stderrors.New("multiple input sources specified")
	}
	if count == 0 {
		return nil, stderrors.New("no input provided")
	}
	if codeSet {
		return []source{{name: "<code>", code: v.GetString("code")}}, nil
	}
	if stdinSet {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		return []source{{name: "<stdin>", code: string(data)}}, nil
	}
	sources := make([]source, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{name: path, path: path, code: string(data)})
	}
	return sources, nil
}

func writeResult(cmd *cobra.Command, v *viper.Viper, res *result, many bool) error {
	out := printer.Print(res.tree)
	if v.GetBool("write") {
		return os.WriteFile(res.path, []byte(out), 0o644)
	}
	if path := v.GetString("output"); path != "" {
		return os.WriteFile(path, []byte(out), 0o644)
	}
	w := cmd.OutOrStdout()
	if many {
		fmt.Fprintf(w, "// %s\n", res.name)
	}
	_, err := io.WriteString(w, out)
	return err
}

func printReport(w io.Writer, res *result) {
	r := res.report
	fmt.Fprintf(w, "%s: %s of %d functions masked\n",
		res.name, green(r.Masked()), len(r.Functions))
	skips := r.Skips()
	reasons := make([]string, 0, len(skips))
	for reason := range skips {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  skipped %s: %d\n", reason, skips[varmask.Reason(reason)])
	}
	for _, f := range r.Functions {
		if !f.Masked() || len(f.Kept) == 0 {
			continue
		}
		kept := make([]string, len(f.Kept))
		for i, k := range f.Kept {
			kept[i] = k.Name + " (" + string(k.Reason) + ")"
		}
		fmt.Fprintf(w, "  %s kept %s\n", displayName(f.Name), strings.Join(kept, ", "))
	}
	if n := skips[varmask.ReasonArity]; n > 0 {
		fmt.Fprintf(w, "  %s\n", yellow(fmt.Sprintf("%d methods kept their parameters; use --arity none to mask them", n)))
	}
	if r.Detached > 0 {
		fmt.Fprintf(w, "  detached occurrences: %d\n", r.Detached)
	}
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}

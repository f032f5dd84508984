package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("VARMASK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "varmask [flags] [file ...]",
		Short: "Relocate JavaScript function locals into a per-function stack array",
		Long: `varmask rewrites the functions of a JavaScript program so that their
parameters and local variables live in a single rest-parameter array.

Input is read from the files given as arguments, from --code, or from
standard input with --stdin. The result is printed to standard output
unless --write or --output is given.`,
		Example: `  varmask app.js
  varmask --probability 0.5 --seed 7 -o out.js app.js
  varmask --keep init,main --names sequence -w src/*.js
  echo 'function f(a) { return a; }' | varmask --stdin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP("code", "c", "", "JavaScript source to transform")
	flags.Bool("stdin", false, "Read the program from stdin")
	flags.StringP("output", "o", "", "Write the result to this file")
	flags.BoolP("write", "w", false, "Rewrite the input files in place")
	flags.String("probability", "true", "Chance that an eligible function is masked: true, false or 0..1")
	flags.Int64("seed", 1, "Seed for the probability policy and random names")
	flags.String("names", "random", "Stack name generator: random, sequence or uuid")
	flags.String("arity", "define", "Restore function length: define or none")
	flags.StringSlice("keep", nil, "Function names that are never masked")
	flags.Int("max-depth", 0, "Maximum parser nesting depth (0 for the default)")
	flags.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("report", false, "Print a per-file summary to stderr")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, formatError(err, !color.NoColor))
		os.Exit(1)
	}
}

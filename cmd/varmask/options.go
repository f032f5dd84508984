package main

import (
	"io"
	"strings"

	"github.com/deepnoodle-ai/varmask/arity"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/naming"
	"github.com/deepnoodle-ai/varmask/policy"
	"github.com/deepnoodle-ai/varmask/varmask"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var arityChoices = []string{"define", "none"}

func getLogger(v *viper.Viper, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log-level")))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.Nop(), errors.UnknownChoice("log-level", v.GetString("log-level"),
			[]string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"})
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: v.GetBool("no-color")}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func getProbability(v *viper.Viper) (policy.Probability, error) {
	p, err := policy.Parse(v.GetString("probability"))
	if err != nil {
		return nil, err
	}
	keep := v.GetStringSlice("keep")
	if len(keep) == 0 {
		return p, nil
	}
	names := make(map[string]bool, len(keep))
	for _, name := range keep {
		names[strings.TrimSpace(name)] = false
	}
	return policy.ByName(names, p), nil
}

func getArityFixer(v *viper.Viper) (arity.Fixer, error) {
	switch value := v.GetString("arity"); value {
	case "define":
		return arity.NewDefineLength(), nil
	case "none":
		return arity.Noop, nil
	default:
		return nil, errors.UnknownChoice("arity", value, arityChoices)
	}
}

func getTransformOptions(v *viper.Viper, logger zerolog.Logger) ([]varmask.Option, error) {
	prob, err := getProbability(v)
	if err != nil {
		return nil, err
	}
	seed := v.GetInt64("seed")
	kind := v.GetString("names")
	names, ok := naming.New(kind, seed)
	if !ok {
		return nil, errors.UnknownChoice("names", kind, naming.Kinds)
	}
	fixer, err := getArityFixer(v)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("probability", policy.Describe(prob)).
		Int64("seed", seed).
		Str("names", kind).
		Str("arity", v.GetString("arity")).
		Msg("configured")
	return []varmask.Option{
		varmask.WithProbability(prob),
		varmask.WithSeed(seed),
		varmask.WithNameGenerator(names),
		varmask.WithArityFixer(fixer),
		varmask.WithLogger(logger),
	}, nil
}

// Package policy decides whether a transform applies to a given function.
//
// A Probability is consulted once per function with the function's resolved
// name ("" for anonymous functions) and a random source. Implementations
// must not keep state between calls apart from what the random source
// holds.
package policy

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/varmask/errors"
)

// Probability decides whether a function named name is transformed.
type Probability interface {
	Decide(name string, rng *rand.Rand) bool
}

type constant bool

func (c constant) Decide(string, *rand.Rand) bool { return bool(c) }

func (c constant) String() string { return strconv.FormatBool(bool(c)) }

var (
	// Always transforms every function.
	Always Probability = constant(true)
	// Never transforms nothing.
	Never Probability = constant(false)
)

type chance float64

func (c chance) Decide(_ string, rng *rand.Rand) bool {
	return rng.Float64() < float64(c)
}

func (c chance) String() string { return strconv.FormatFloat(float64(c), 'g', -1, 64) }

// Chance transforms each function with probability p. Values of 0 and 1
// return Never and Always, which do not consume randomness.
func Chance(p float64) (Probability, error) {
	switch {
	case p < 0 || p > 1 || p != p:
		return nil, &errors.ConfigError{
			Code:    errors.E3001,
			Key:     "probability",
			Value:   strconv.FormatFloat(p, 'g', -1, 64),
			Message: "must be between 0 and 1",
		}
	case p == 0:
		return Never, nil
	case p == 1:
		return Always, nil
	}
	return chance(p), nil
}

// MustChance is like Chance but panics on an invalid probability.
func MustChance(p float64) Probability {
	c, err := Chance(p)
	if err != nil {
		panic(err)
	}
	return c
}

type byName struct {
	names    map[string]bool
	fallback Probability
}

func (b byName) Decide(name string, rng *rand.Rand) bool {
	if v, ok := b.names[name]; ok {
		return v
	}
	return b.fallback.Decide(name, rng)
}

// ByName looks the function name up in names and defers to fallback for
// names that are not listed. The anonymous name "" may be listed too.
func ByName(names map[string]bool, fallback Probability) Probability {
	if fallback == nil {
		fallback = Never
	}
	return byName{names: names, fallback: fallback}
}

// Func adapts a predicate on the function name.
type Func func(name string) bool

// Decide implements Probability.
func (f Func) Decide(name string, _ *rand.Rand) bool { return f(name) }

// Parse reads a probability from its command line form: "true", "false",
// or a number between 0 and 1.
func Parse(s string) (Probability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "always", "yes":
		return Always, nil
	case "false", "never", "no":
		return Never, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, &errors.ConfigError{
			Code:    errors.E3001,
			Key:     "probability",
			Value:   s,
			Message: "expected true, false or a number between 0 and 1",
			Choices: []string{"true", "false"},
		}
	}
	return Chance(f)
}

// Describe returns a short label for logs.
func Describe(p Probability) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	switch p.(type) {
	case byName:
		return "by-name"
	case Func:
		return "func"
	}
	return fmt.Sprintf("%T", p)
}

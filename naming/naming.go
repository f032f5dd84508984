// Package naming generates fresh identifiers for synthesized bindings.
//
// Every generator appends Suffix to its names and retries until the taken
// callback reports the candidate as free, so a generated name never
// collides with a name already used in the tree.
package naming

import (
	"crypto/rand"
	"fmt"
	"io"
	mrand "math/rand"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
)

// Suffix marks every generated name.
const Suffix = "_varMask"

// MaxAttempts bounds how many candidates a generator tries before giving
// up.
const MaxAttempts = 1000

// Generator produces identifiers. Next returns "" when no free name was
// found within MaxAttempts candidates.
type Generator interface {
	Next(taken func(string) bool) string
}

// GeneratorFunc adapts a candidate function to a Generator. The function is
// called until it yields a name that is not taken.
type GeneratorFunc func() string

// Next implements Generator.
func (f GeneratorFunc) Next(taken func(string) bool) string {
	for i := 0; i < MaxAttempts; i++ {
		name := f()
		if taken == nil || !taken(name) {
			return name
		}
	}
	return ""
}

// Sequence returns a deterministic generator producing prefix0_varMask,
// prefix1_varMask and so on. It is meant for tests and reproducible
// output.
func Sequence(prefix string) Generator {
	if prefix == "" {
		prefix = "s"
	}
	n := 0
	return GeneratorFunc(func() string {
		name := prefix + strconv.Itoa(n) + Suffix
		n++
		return name
	})
}

const (
	letters      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomLength = 6
)

// Random returns a generator of random letter identifiers seeded with seed.
// Longer names are tried as shorter ones run out.
func Random(seed int64) Generator {
	rng := mrand.New(mrand.NewSource(seed))
	attempt := 0
	return GeneratorFunc(func() string {
		size := randomLength + attempt/100
		attempt++
		var b strings.Builder
		b.Grow(size + len(Suffix))
		for i := 0; i < size; i++ {
			b.WriteByte(letters[rng.Intn(len(letters))])
		}
		b.WriteString(Suffix)
		return b.String()
	})
}

// UUID returns a generator of names derived from random version 4 UUIDs,
// such as v3b2f...c1_varMask.
func UUID() Generator {
	return UUIDFrom(rand.Reader)
}

// UUIDFrom is like UUID but reads randomness from r, which makes the output
// reproducible in tests.
func UUIDFrom(r io.Reader) Generator {
	return GeneratorFunc(func() string {
		u, err := newV4(r)
		if err != nil {
			return ""
		}
		return "v" + strings.ReplaceAll(u.String(), "-", "") + Suffix
	})
}

func newV4(r io.Reader) (uuid.UUID, error) {
	var buf [uuid.Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return uuid.Nil, fmt.Errorf("naming: reading uuid bytes: %w", err)
	}
	u, err := uuid.FromBytes(buf[:])
	if err != nil {
		return uuid.Nil, err
	}
	u.SetVersion(uuid.V4)
	u.SetVariant(uuid.VariantRFC4122)
	return u, nil
}

// Kinds lists the generator names accepted by New.
var Kinds = []string{"random", "sequence", "uuid"}

// New returns the generator with the given name. The seed is used by the
// random generator.
func New(kind string, seed int64) (Generator, bool) {
	switch kind {
	case "random":
		return Random(seed), true
	case "sequence":
		return Sequence("s"), true
	case "uuid":
		return UUID(), true
	}
	return nil, false
}

// IsIdentifier reports whether name is a valid ASCII JavaScript identifier.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/parser"
	"github.com/hashicorp/go-multierror"
)

// formatError renders err for the terminal. Parse, transform and
// configuration errors get the detailed form with source context; anything
// else is printed as a single red line.
func formatError(err error, useColor bool) string {
	f := errors.NewFormatter(useColor)
	var merr *multierror.Error
	if stderrors.As(err, &merr) {
		var b strings.Builder
		for _, e := range merr.Errors {
			b.WriteString(formatOne(f, e))
		}
		if n := len(merr.Errors); n > 1 {
			fmt.Fprintf(&b, "%s\n", red(fmt.Sprintf("%d inputs failed", n)))
		}
		return b.String()
	}
	return formatOne(f, err)
}

func formatOne(f *errors.Formatter, err error) string {
	var perrs *parser.Errors
	if stderrors.As(err, &perrs) {
		return f.FormatMultiple(perrs.ToFormattedMultiple())
	}
	var fe errors.FormattableError
	if stderrors.As(err, &fe) {
		return f.Format(fe.ToFormatted())
	}
	if !f.UseColor {
		return err.Error() + "\n"
	}
	return red(err.Error()) + "\n"
}

package cmd

import (
	"context"
	"errors"

	"github.com/lex00/pakman/args"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/output"
	"github.com/spf13/cobra"
)

// handlerError marks errors returned by a RunE so Execute can tell them from
// parser failures.
type handlerError struct{ err error }

func (e *handlerError) Error() string { return e.err.Error() }
func (e *handlerError) Unwrap() error { return e.err }

// Execute parses argv with c and runs it.
//
// argv is the only input; os.Args is never consulted. A flag with an
// optional value takes the following token unless it starts with a dash.
// Help and cobra's own messages go to out. Any failure raised while parsing
// (unknown flag, wrong number of positionals, a once-policy violation
// recorded in p) is returned as a usage error. Errors returned by a RunE come
// back untouched.
func Execute(ctx context.Context, c *cobra.Command, p *args.Parsed, out output.Output, argv []string) error {
	if argv == nil {
		argv = []string{}
	}
	w := output.Writer(out)
	c.SetOut(w)
	c.SetErr(w)
	c.SetArgs(prepareArgs(indexFlags(c), argv))
	c.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		if p != nil && p.Err() != nil {
			return p.Err()
		}
		return errs.Usage(err.Error())
	})
	markRunE(c)

	err := c.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var he *handlerError
	if errors.As(err, &he) {
		// a command executed twice has its RunE marked twice
		for {
			inner, ok := he.err.(*handlerError)
			if !ok {
				return he.err
			}
			he = inner
		}
	}
	if p != nil && p.Err() != nil {
		return p.Err()
	}
	if errs.KindOf(err) == errs.KindUsage {
		return err
	}
	return errs.Usage(err.Error())
}

func markRunE(c *cobra.Command) {
	if run := c.RunE; run != nil {
		c.RunE = func(c *cobra.Command, a []string) error {
			if err := run(c, a); err != nil {
				return &handlerError{err: err}
			}
			return nil
		}
	}
	for _, child := range c.Commands() {
		markRunE(child)
	}
}

package cmd

import (
	"strings"

	"github.com/lex00/pakman/args"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagIndex maps the long and short names of every flag in a command tree.
// The first command to declare a name wins.
type flagIndex struct {
	long  map[string]*pflag.Flag
	short map[string]*pflag.Flag
}

func indexFlags(c *cobra.Command) flagIndex {
	idx := flagIndex{long: map[string]*pflag.Flag{}, short: map[string]*pflag.Flag{}}
	idx.add(c)
	return idx
}

func (idx flagIndex) add(c *cobra.Command) {
	visit := func(f *pflag.Flag) {
		if _, ok := idx.long[f.Name]; !ok {
			idx.long[f.Name] = f
		}
		if _, ok := idx.short[f.Shorthand]; f.Shorthand != "" && !ok {
			idx.short[f.Shorthand] = f
		}
	}
	c.PersistentFlags().VisitAll(visit)
	c.Flags().VisitAll(visit)
	for _, child := range c.Commands() {
		idx.add(child)
	}
}

// match returns the value-taking flag tok refers to, the option string as
// typed and whether tok already carries the value. Boolean shorthands in a
// cluster are skipped.
func (idx flagIndex) match(tok string) (f *pflag.Flag, option string, inline bool) {
	switch {
	case strings.HasPrefix(tok, "--"):
		name, _, hasValue := strings.Cut(tok[2:], "=")
		if f = idx.long[name]; f == nil || isSwitch(f) {
			return nil, "", false
		}
		return f, "--" + name, hasValue
	case len(tok) > 1 && tok[0] == '-':
		for i := 1; i < len(tok); i++ {
			f = idx.short[tok[i:i+1]]
			if f == nil {
				return nil, "", false
			}
			if !isSwitch(f) {
				return f, "-" + tok[i:i+1], i+1 < len(tok)
			}
		}
	}
	return nil, "", false
}

func isSwitch(f *pflag.Flag) bool {
	switch f.Value.Type() {
	case "bool", "count":
		return true
	}
	return false
}

// prepareArgs rewrites argv before pflag parses it. A flag whose value may be
// omitted takes the next token as its value unless that token is itself a
// flag, so "-b missing" reads as "-b=missing" and a bare "-b" stays bare.
// Values implementing args.OptionRecorder learn each option string as typed.
func prepareArgs(idx flagIndex, argv []string) []string {
	out := make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		if tok == "--" {
			return append(out, argv[i:]...)
		}
		f, option, inline := idx.match(tok)
		if f == nil {
			out = append(out, tok)
			continue
		}
		if r, ok := f.Value.(args.OptionRecorder); ok {
			r.Seen(option)
		}
		hasNext := !inline && i+1 < len(argv)
		switch {
		case hasNext && f.NoOptDefVal == "":
			out = append(out, tok, argv[i+1])
			i++
		case hasNext && !strings.HasPrefix(argv[i+1], "-"):
			out = append(out, tok+"="+argv[i+1])
			i++
		default:
			out = append(out, tok)
		}
	}
	return out
}

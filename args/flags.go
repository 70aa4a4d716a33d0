package args

import (
	"strings"

	"github.com/spf13/pflag"
)

// Policy selects how repeated occurrences of a flag are handled.
type Policy int

const (
	// PolicyAccumulate collects every occurrence into an ordered sequence.
	PolicyAccumulate Policy = iota
	// PolicyOnce rejects a second occurrence.
	PolicyOnce
)

// Spec declares one flag bound to a destination.
type Spec struct {
	Name   string
	Short  string
	Dest   string
	Policy Policy
	// Default applies to once destinations only.
	Default string
	// Optional lets an accumulate flag be given without a value.
	Optional bool
	Usage    string
}

// Bind registers the flags described by specs on fs. A spec without Dest uses
// the flag name with dashes replaced by underscores.
func (p *Parsed) Bind(fs *pflag.FlagSet, specs ...Spec) {
	for _, s := range specs {
		dest := s.Dest
		if dest == "" {
			dest = strings.ReplaceAll(s.Name, "-", "_")
		}

		switch s.Policy {
		case PolicyOnce:
			if s.Default != "" {
				p.SetDefault(dest, s.Default)
			}
			fs.VarP(&onceValue{p: p, dest: dest, long: "--" + s.Name}, s.Name, s.Short, s.Usage)
		default:
			f := fs.VarPF(&accumulateValue{p: p, dest: dest}, s.Name, s.Short, s.Usage)
			if s.Optional {
				f.NoOptDefVal = NoValue
			}
		}
	}
}

// AccumulateVar binds a repeatable flag to dest.
func (p *Parsed) AccumulateVar(fs *pflag.FlagSet, name, short, dest, usage string) {
	p.Bind(fs, Spec{Name: name, Short: short, Dest: dest, Policy: PolicyAccumulate, Usage: usage})
}

// OnceVar binds a single-use flag to dest.
func (p *Parsed) OnceVar(fs *pflag.FlagSet, name, short, dest, usage string) {
	p.Bind(fs, Spec{Name: name, Short: short, Dest: dest, Policy: PolicyOnce, Usage: usage})
}

type accumulateValue struct {
	p    *Parsed
	dest string
}

func (v *accumulateValue) Set(s string) error {
	v.p.Accumulate(v.dest, s)
	return nil
}

func (v *accumulateValue) String() string {
	seq := v.p.Strings(v.dest)
	if len(seq) == 0 {
		return ""
	}
	return "[" + strings.Join(seq, ",") + "]"
}

func (v *accumulateValue) Type() string { return "stringArray" }

// OptionRecorder is implemented by flag values that name, in their errors,
// the option string the user typed (-r rather than --remote). Seen is called
// once per occurrence, in command line order, before parsing.
type OptionRecorder interface {
	Seen(option string)
}

type onceValue struct {
	p     *Parsed
	dest  string
	long  string
	typed []string
	n     int
}

func (v *onceValue) Seen(option string) { v.typed = append(v.typed, option) }

func (v *onceValue) Set(s string) error {
	option := v.long
	if v.n < len(v.typed) {
		option = v.typed[v.n]
	}
	v.n++
	return v.p.Once(v.dest, option, s)
}

func (v *onceValue) String() string { return v.p.String(v.dest) }

func (v *onceValue) Type() string { return "string" }

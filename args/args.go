// Package args implements the two argument extension policies used by pakman
// handlers on top of pflag.
//
// An accumulate destination collects every occurrence of its flags, in the
// order they appear on the command line. A once destination accepts a single
// assignment and rejects any further occurrence with a usage error instead of
// silently keeping the last value, unless it declares a default.
//
// All state lives in a Parsed value created for one parse. Several flags may
// share a destination (for example --settings and --settings-host); the shared
// destination is initialized by whichever flag arrives first and never reset
// by the others.
package args

import (
	"fmt"
	"strconv"

	"github.com/lex00/pakman/errs"
)

// NoValue is what an optional-value accumulate flag receives when given
// without a value (a bare --build). It initializes the destination to an
// empty sequence without appending anything.
const NoValue = "<none>"

// Parsed holds the destinations of one parse.
type Parsed struct {
	values      map[string]any
	defaults    map[string]any
	initialized map[string]bool
	assigned    map[string]bool
	err         error
}

// New returns empty per-parse state.
func New() *Parsed {
	return &Parsed{
		values:      make(map[string]any),
		defaults:    make(map[string]any),
		initialized: make(map[string]bool),
		assigned:    make(map[string]bool),
	}
}

// SetDefault declares the value dest holds until a flag assigns it.
// A default never counts as an assignment for the once policy.
func (p *Parsed) SetDefault(dest string, value any) {
	p.defaults[dest] = value
	if !p.initialized[dest] && !p.assigned[dest] {
		p.values[dest] = value
	}
}

// Accumulate applies one occurrence of an accumulate-policy flag to dest.
//
// The first occurrence replaces the default with an empty sequence. A string
// is appended, a []string or []any extends the sequence, anything else is
// appended as a single scalar.
func (p *Parsed) Accumulate(dest string, incoming any) {
	seq, _ := p.values[dest].([]string)
	if !p.initialized[dest] {
		seq = []string{}
		p.initialized[dest] = true
	}

	switch v := incoming.(type) {
	case nil:
	case string:
		if v != NoValue {
			seq = append(seq, v)
		}
	case []string:
		seq = append(seq, v...)
	case []any:
		for _, item := range v {
			seq = append(seq, fmt.Sprint(item))
		}
	default:
		seq = append(seq, fmt.Sprint(v))
	}
	p.values[dest] = seq
}

// Once applies one occurrence of a once-policy flag to dest. option is the
// flag as shown to the user in the error message. A destination with a
// declared default keeps the last value instead of failing.
func (p *Parsed) Once(dest, option, incoming string) error {
	if _, hasDefault := p.defaults[dest]; p.assigned[dest] && !hasDefault {
		err := errs.Usagef("%s can only be specified once", option)
		p.fail(err)
		return err
	}
	p.assigned[dest] = true
	p.values[dest] = incoming
	return nil
}

func (p *Parsed) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// Err returns the first policy violation seen during the parse.
func (p *Parsed) Err() error { return p.err }

// Lookup returns the current value of dest.
func (p *Parsed) Lookup(dest string) (any, bool) {
	v, ok := p.values[dest]
	return v, ok
}

// IsSet reports whether any flag assigned dest during the parse.
func (p *Parsed) IsSet(dest string) bool {
	return p.initialized[dest] || p.assigned[dest]
}

// Strings returns an accumulate destination. It is nil when no flag for dest
// was given and empty (non-nil) when only bare optional flags were given.
func (p *Parsed) Strings(dest string) []string {
	switch v := p.values[dest].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

// String returns a scalar destination, or "" when unset.
func (p *Parsed) String(dest string) string {
	switch v := p.values[dest].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns a scalar destination as an integer. ok is false when dest holds
// no value.
func (p *Parsed) Int(dest string) (value int, ok bool, err error) {
	v, found := p.values[dest]
	if !found || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false, errs.Usagef("argument %s: invalid int value: '%s'", dest, n)
		}
		return i, true, nil
	default:
		return 0, false, errs.Usagef("argument %s: invalid int value: '%v'", dest, v)
	}
}

// Values returns a copy of every destination that holds a value.
func (p *Parsed) Values() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// Package pkgconfig models pkg-config .pc files: ordered variables followed by
// keyword fields.
package pkgconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/lex00/pakman/errs"
)

// ErrUnknownKeyword is returned for keywords pkg-config does not define.
var ErrUnknownKeyword = errors.New("unknown pkg-config keyword")

// keywords in output order, lower-case name → field name in the file.
var keywords = []struct{ name, field string }{
	{"name", "Name"},
	{"version", "Version"},
	{"description", "Description"},
	{"url", "URL"},
	{"requires", "Requires"},
	{"requires.private", "Requires.private"},
	{"conflicts", "Conflicts"},
	{"provides", "Provides"},
	{"cflags", "Cflags"},
	{"cflags.private", "Cflags.private"},
	{"libs", "Libs"},
	{"libs.private", "Libs.private"},
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Variable is a name=value line.
type Variable struct {
	Key   string
	Value string
}

// Field is a Keyword: value line.
type Field struct {
	Keyword string
	Value   string
}

// Pkg is one .pc file.
type Pkg struct {
	variables []Variable
	keywords  map[string]string
}

// New returns an empty Pkg.
func New() *Pkg {
	return &Pkg{keywords: make(map[string]string)}
}

func canonical(name string) (string, error) {
	name = strings.ToLower(name)
	for _, k := range keywords {
		if k.name == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKeyword, name)
}

// SetKeyword sets a keyword and returns its previous value. An empty value
// removes the keyword.
func (p *Pkg) SetKeyword(name, value string) (string, error) {
	key, err := canonical(name)
	if err != nil {
		return "", err
	}
	prev := p.keywords[key]
	if value == "" {
		delete(p.keywords, key)
	} else {
		p.keywords[key] = value
	}
	return prev, nil
}

// Keyword returns the value of a keyword, "" when unset.
func (p *Pkg) Keyword(name string) (string, error) {
	key, err := canonical(name)
	if err != nil {
		return "", err
	}
	return p.keywords[key], nil
}

// SetVariable sets a variable, keeping the position of an existing one, and
// returns its previous value. An empty value removes the variable.
func (p *Pkg) SetVariable(name, value string) string {
	for i, v := range p.variables {
		if v.Key != name {
			continue
		}
		prev := v.Value
		if value == "" {
			p.variables = append(p.variables[:i], p.variables[i+1:]...)
		} else {
			p.variables[i].Value = value
		}
		return prev
	}
	if value != "" {
		p.variables = append(p.variables, Variable{Key: name, Value: value})
	}
	return ""
}

// Variable returns the value of a variable.
func (p *Pkg) Variable(name string) (string, bool) {
	for _, v := range p.variables {
		if v.Key == name {
			return v.Value, true
		}
	}
	return "", false
}

// Variables returns the variables in file order.
func (p *Pkg) Variables() []Variable {
	return append([]Variable(nil), p.variables...)
}

// Fields returns the set keywords in canonical order.
func (p *Pkg) Fields() []Field {
	var out []Field
	for _, k := range keywords {
		if v, ok := p.keywords[k.name]; ok {
			out = append(out, Field{Keyword: k.field, Value: v})
		}
	}
	return out
}

var pcTemplate = template.Must(template.New("pc").Parse(
	`{{range .Variables}}{{.Key}}={{.Value}}
{{end}}{{if and .Variables .Fields}}
{{end}}{{range .Fields}}{{.Keyword}}: {{.Value}}
{{end}}`))

// Content renders the .pc file.
func (p *Pkg) Content() (string, error) {
	var sb strings.Builder
	err := pcTemplate.Execute(&sb, struct {
		Variables []Variable
		Fields    []Field
	}{p.variables, p.Fields()})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Parse reads a .pc file. Comments start with '#'. A line is a variable when
// '=' comes before any ':', a keyword otherwise.
func Parse(r io.Reader) (*Pkg, error) {
	p := New()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		eq := strings.IndexByte(line, '=')
		colon := strings.IndexByte(line, ':')
		switch {
		case eq > 0 && (colon < 0 || eq < colon):
			key := strings.TrimSpace(line[:eq])
			if !keyPattern.MatchString(key) {
				return nil, errs.Domainf("line %d: invalid variable name %q", lineNo, key)
			}
			p.SetVariable(key, strings.TrimSpace(line[eq+1:]))
		case colon > 0:
			key := strings.TrimSpace(line[:colon])
			if _, err := p.SetKeyword(key, strings.TrimSpace(line[colon+1:])); err != nil {
				return nil, errs.Wrapf(errs.KindDomain, err, "line %d", lineNo)
			}
		default:
			return nil, errs.Domainf("line %d: expected 'name=value' or 'Keyword: value', got %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

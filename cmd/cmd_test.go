package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/lex00/pakman/args"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/output"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New("inspect <path_or_reference>", `
Displays recipe attributes, like name, version and options.

Works with a local folder or pakfile.yaml.
`)
	assert.Equal(t, "inspect", c.Name())
	assert.Equal(t, "Displays recipe attributes, like name, version and options.", c.Short)
	assert.Contains(t, c.Long, "Works with a local folder")
	assert.True(t, c.SilenceErrors)
	assert.True(t, c.SilenceUsage)
}

// newInspect builds a small parser resembling the inspect handler.
func newInspect(p *args.Parsed, got *[]string) *cobra.Command {
	c := New("inspect <path_or_reference>", "Displays attributes.")
	c.Args = cobra.ExactArgs(1)
	p.Bind(c.Flags(),
		args.Spec{Name: "attribute", Short: "a", Policy: args.PolicyAccumulate, Optional: true},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce},
	)
	c.RunE = func(c *cobra.Command, pos []string) error {
		*got = pos
		return nil
	}
	return c
}

func TestExecuteParsesPolicies(t *testing.T) {
	p := args.New()
	var pos []string
	c := newInspect(p, &pos)

	err := Execute(context.Background(), c, p, output.NewRecorder(),
		[]string{"zlib/1.3@", "-a", "name", "--attribute", "version", "-r", "central"})
	require.NoError(t, err)

	assert.Equal(t, []string{"zlib/1.3@"}, pos)
	assert.Equal(t, []string{"name", "version"}, p.Strings("attribute"))
	assert.Equal(t, "central", p.String("remote"))
}

func TestExecuteParserFailuresAreUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		message string
	}{
		{"unknown flag", []string{"path", "--bogus"}, "unknown flag: --bogus"},
		{"missing positional", nil, "accepts 1 arg(s), received 0"},
		{"too many positionals", []string{"a", "b"}, "accepts 1 arg(s), received 2"},
		{"once flag repeated", []string{"path", "-r", "a", "-r", "b"}, "-r can only be specified once"},
		{"once flag repeated long", []string{"path", "--remote=a", "--remote", "b"}, "--remote can only be specified once"},
		{"once flag missing value", []string{"path", "-r"}, "flag needs an argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := args.New()
			var pos []string
			err := Execute(context.Background(), newInspect(p, &pos), p, output.NewRecorder(), tt.argv)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrUsage), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestExecuteHandlerErrorsPassThrough(t *testing.T) {
	domainErr := errs.Domain("recipe not found")
	plainErr := errors.New("connection reset")

	for _, want := range []error{domainErr, plainErr, errs.Interrupted(context.Canceled)} {
		c := New("build <path>", "Builds.")
		c.RunE = func(*cobra.Command, []string) error { return want }
		err := Execute(context.Background(), c, args.New(), output.NewRecorder(), []string{"."})
		assert.Same(t, want, err)
	}
}

func TestExecuteHelp(t *testing.T) {
	p := args.New()
	var pos []string
	rec := output.NewRecorder()
	c := newInspect(p, &pos)

	err := Execute(context.Background(), c, p, rec, []string{"--help"})
	require.NoError(t, err)
	assert.Nil(t, pos)
	assert.Contains(t, rec.Text(), "inspect <path_or_reference>")
	assert.Contains(t, rec.Text(), "--attribute")
}

func TestExecuteNilArgvIgnoresProcessArgs(t *testing.T) {
	called := false
	c := New("list", "Lists.")
	c.Args = cobra.NoArgs
	c.RunE = func(*cobra.Command, []string) error {
		called = true
		return nil
	}
	require.NoError(t, Execute(context.Background(), c, nil, output.NewRecorder(), nil))
	assert.True(t, called)
}

func TestExecutePassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "invocation")
	var seen any
	c := New("get", "Gets.")
	c.RunE = func(c *cobra.Command, _ []string) error {
		seen = c.Context().Value(key{})
		return nil
	}
	require.NoError(t, Execute(ctx, c, nil, output.NewRecorder(), nil))
	assert.Equal(t, "invocation", seen)
}

func TestExecuteSubcommands(t *testing.T) {
	var ran string
	root := New("editable", "Manages editable packages.")
	root.RunE = func(*cobra.Command, []string) error {
		return errs.Usage("a subcommand is required")
	}
	add := New("add <path> <reference>", "Adds.")
	add.Args = cobra.ExactArgs(2)
	add.RunE = func(_ *cobra.Command, pos []string) error {
		ran = "add " + pos[0] + " " + pos[1]
		return nil
	}
	list := New("list", "Lists.")
	list.RunE = func(*cobra.Command, []string) error { return errs.Domain("store unavailable") }
	AddSubcommands(root, add, list)

	ctx := context.Background()
	require.NoError(t, Execute(ctx, root, nil, output.NewRecorder(), []string{"add", ".", "pkg/1.0@"}))
	assert.Equal(t, "add . pkg/1.0@", ran)

	err := Execute(ctx, root, nil, output.NewRecorder(), []string{"list"})
	assert.True(t, errors.Is(err, errs.ErrDomain))

	err = Execute(ctx, root, nil, output.NewRecorder(), []string{"frobnicate"})
	assert.True(t, errors.Is(err, errs.ErrUsage))

	err = Execute(ctx, root, nil, output.NewRecorder(), nil)
	require.Error(t, err)
	assert.Equal(t, "a subcommand is required", err.Error())
}

func TestExecuteOptionalValueTakesNextToken(t *testing.T) {
	tests := []struct {
		name  string
		argv  []string
		attrs []string
		pos   []string
	}{
		{"separate value", []string{"zlib/1.3@", "-a", "name"}, []string{"name"}, []string{"zlib/1.3@"}},
		{"repeated", []string{"-a", "a", "-a", "b", "--attribute", "c", "."}, []string{"a", "b", "c"}, []string{"."}},
		{"bare before flag", []string{".", "-a", "-r", "central"}, []string{}, []string{"."}},
		{"bare at end", []string{".", "--attribute"}, []string{}, []string{"."}},
		{"inline", []string{".", "-a=name", "--attribute=url"}, []string{"name", "url"}, []string{"."}},
		{"after terminator", []string{"-a", "--", "-a"}, []string{}, []string{"-a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := args.New()
			var pos []string
			err := Execute(context.Background(), newInspect(p, &pos), p, output.NewRecorder(), tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.attrs, p.Strings("attribute"))
			assert.Equal(t, tt.pos, pos)
		})
	}
}

func TestPrepareArgs(t *testing.T) {
	c := New("create <path>", "Creates.")
	p := args.New()
	p.Bind(c.Flags(),
		args.Spec{Name: "build", Short: "b", Optional: true},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce},
	)
	var update bool
	c.Flags().BoolVarP(&update, "update", "u", false, "update")
	idx := indexFlags(c)

	assert.Equal(t, []string{".", "-b=missing", "-u"}, prepareArgs(idx, []string{".", "-b", "missing", "-u"}))
	assert.Equal(t, []string{"-ub=missing"}, prepareArgs(idx, []string{"-ub", "missing"}))
	assert.Equal(t, []string{"-r", "-b", "-b=x"}, prepareArgs(idx, []string{"-r", "-b", "-b", "x"}))
	assert.Equal(t, []string{"-u", "missing"}, prepareArgs(idx, []string{"-u", "missing"}))
	assert.Equal(t, []string{"--build=a", "b"}, prepareArgs(idx, []string{"--build=a", "b"}))
}

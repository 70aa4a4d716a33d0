// Package commands holds the pakman command table.
//
// Every handler parses its own arguments with a standalone parser, checks
// argument combinations, delegates to the api.API collaborator and prints
// the result. Handlers return errors; they never exit the process.
package commands

import (
	"context"
	"os"
	"strings"

	"github.com/lex00/pakman/api"
	"github.com/lex00/pakman/args"
	"github.com/lex00/pakman/cmd"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/output"
	"github.com/lex00/pakman/registry"
	"github.com/lex00/pakman/serialize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Commands are the handlers and the dependencies they share.
type Commands struct {
	API api.API
	Out output.Output
	// Threads is the thread-count knob handed to parallel uploads.
	Threads func() int
	// Getwd resolves relative result artifact paths.
	Getwd func() (string, error)
}

// New returns the handlers bound to a collaborator and an output.
func New(a api.API, out output.Output, threads func() int) *Commands {
	return &Commands{API: a, Out: out, Threads: threads, Getwd: os.Getwd}
}

// Register adds every handler to b.
func (c *Commands) Register(b *registry.Builder) *registry.Builder {
	return b.
		Register("inspect", inspectDoc, registry.HandlerFunc(c.Inspect)).
		Register("test", testDoc, registry.HandlerFunc(c.Test)).
		Register("create", createDoc, registry.HandlerFunc(c.Create)).
		Register("download", downloadDoc, registry.HandlerFunc(c.Download)).
		Register("source", sourceDoc, registry.HandlerFunc(c.Source)).
		Register("build", buildDoc, registry.HandlerFunc(c.Build)).
		Register("imports", importsDoc, registry.HandlerFunc(c.Imports)).
		Register("remove", removeDoc, registry.HandlerFunc(c.Remove)).
		Register("upload", uploadDoc, registry.HandlerFunc(c.Upload)).
		Register("get", getDoc, registry.HandlerFunc(c.Get)).
		Register("editable", editableDoc, registry.HandlerFunc(c.Editable)).
		Register("export_pkg", exportPkgDoc, registry.HandlerFunc(c.ExportPkg))
}

// Registry builds the registry of every handler.
func (c *Commands) Registry() (*registry.Registry, error) {
	return c.Register(registry.NewBuilder()).Build()
}

// parser is the per-invocation parse state of one handler.
type parser struct {
	command *cobra.Command
	values  *args.Parsed
}

func newParser(use, doc string) *parser {
	c := cmd.New(use, doc)
	c.Annotations = map[string]string{cobra.CommandDisplayNameAnnotation: "pakman " + c.Name()}
	return &parser{command: c, values: args.New()}
}

func (p *parser) flags() *pflag.FlagSet { return p.command.Flags() }

func (p *parser) bind(specs ...args.Spec) { p.values.Bind(p.flags(), specs...) }

func (p *parser) run(ctx context.Context, out output.Output, argv []string, fn func(pos []string) error) error {
	p.command.RunE = func(_ *cobra.Command, pos []string) error { return fn(pos) }
	return cmd.Execute(ctx, p.command, p.values, out, argv)
}

// positionals accepts the required arguments followed by up to
// len(optional) more.
func positionals(required []string, optional ...string) cobra.PositionalArgs {
	return func(_ *cobra.Command, a []string) error {
		if len(a) < len(required) {
			return errs.Usagef("the following arguments are required: %s", strings.Join(required[len(a):], ", "))
		}
		if limit := len(required) + len(optional); len(a) > limit {
			return errs.Usagef("unrecognized arguments: %s", strings.Join(a[limit:], " "))
		}
		return nil
	}
}

const buildPolicyHelp = `Optional, specify which packages to build from source. Repeat to combine
policies; a bare --build builds everything. Use --build=never, --build=missing,
--build=cascade, --build=<pattern> or --build=!<pattern>. Default: --build=%s`

var profileKinds = []struct{ name, short, usage string }{
	{"env", "e", "Environment variables that will be set during the package build"},
	{"options", "o", "Define options values, e.g. -o pkg:shared=True"},
	{"profile", "p", "Apply the specified profile"},
	{"settings", "s", "Settings to build the package, overwriting the defaults, e.g. -s build_type=Debug"},
	{"conf", "c", "Configuration to build the package, overwriting the defaults"},
}

// bindProfileArgs declares -e/-o/-p/-s/-c and their --X-host/--X-build
// variants. The plain flag and its -host variant share a destination.
func (p *parser) bindProfileArgs() {
	for _, k := range profileKinds {
		p.bind(
			args.Spec{Name: k.name, Short: k.short, Dest: k.name + "_host", Usage: k.usage + " (host machine)"},
			args.Spec{Name: k.name + "-host", Dest: k.name + "_host", Usage: k.usage + " (host machine)"},
			args.Spec{Name: k.name + "-build", Dest: k.name + "_build", Usage: k.usage + " (build machine)"},
		)
	}
}

// bindInstallArgs declares the arguments shared by commands that install
// dependencies.
func (p *parser) bindInstallArgs(buildHelp string, update *bool) {
	p.bind(
		args.Spec{Name: "build", Short: "b", Optional: true, Usage: buildHelp},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce, Usage: "Look in the specified remote server"},
		args.Spec{Name: "lockfile", Short: "l", Policy: args.PolicyOnce, Usage: "Path to a lockfile"},
		args.Spec{Name: "lockfile-out", Policy: args.PolicyOnce, Usage: "Filename of the updated lockfile"},
	)
	p.flags().BoolVarP(update, "update", "u", false, "Check the remote for newer versions of the dependencies")
	p.bindProfileArgs()
}

func (p *parser) profile(machine string) api.ProfileData {
	v := p.values
	return api.ProfileData{
		Profiles: v.Strings("profile_" + machine),
		Settings: v.Strings("settings_" + machine),
		Options:  v.Strings("options_" + machine),
		Env:      v.Strings("env_" + machine),
		Conf:     v.Strings("conf_" + machine),
	}
}

func (p *parser) installOpts(update bool) api.InstallOpts {
	v := p.values
	return api.InstallOpts{
		Remote:      v.String("remote"),
		Update:      update,
		BuildModes:  v.Strings("build"),
		Lockfile:    v.String("lockfile"),
		LockfileOut: v.String("lockfile_out"),
		Host:        p.profile("host"),
		Build:       p.profile("build"),
	}
}

// writeJSON writes a result artifact when path is set and info exists. It
// runs whether or not the operation failed; the operation error wins.
func writeJSON[T any](c *Commands, path string, info *T, err error) error {
	if path == "" || info == nil {
		return err
	}
	cwd, werr := c.Getwd()
	if werr == nil {
		werr = serialize.WriteJSONFile(path, cwd, info)
	}
	if err != nil {
		return err
	}
	return werr
}

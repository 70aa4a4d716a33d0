// Package meson drives the Meson build system for a recipe.
package meson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/pakman/execx"
	"github.com/lex00/pakman/output"
)

// Machine files written by the toolchain generator into the generators folder.
const (
	CrossFilename  = "pakman_meson_cross.ini"
	NativeFilename = "pakman_meson_native.ini"
)

// Option is one command-line option. A true Value emits the key alone, a
// false Value omits it, anything else emits "key value".
type Option struct {
	Key   string
	Value any
}

// RunOptions configures Run.
type RunOptions struct {
	Options []Option
	// InfoName is shown as "Meson <InfoName> cmd: ...".
	InfoName string
	// Quiet suppresses the command echo.
	Quiet bool
}

// Meson runs meson commands for one build.
type Meson struct {
	Runner execx.Commander
	Out    output.Output

	BuildFolder      string
	SourceFolder     string
	GeneratorsFolder string
	PackageFolder    string
	// Jobs is passed as -jN to compile. Zero lets meson decide.
	Jobs int
}

// Run executes "meson <cmd> [options] [args]".
func (m *Meson) Run(ctx context.Context, cmd string, args []string, opts RunOptions) error {
	var sb strings.Builder
	sb.WriteString("meson")
	if cmd != "" {
		sb.WriteString(" " + cmd)
	}
	for _, o := range opts.Options {
		switch v := o.Value.(type) {
		case bool:
			if v {
				sb.WriteString(" " + o.Key)
			}
		default:
			fmt.Fprintf(&sb, " %s %v", o.Key, v)
		}
	}
	for _, a := range args {
		sb.WriteString(" " + a)
	}
	line := sb.String()

	if !opts.Quiet {
		info := ""
		if opts.InfoName != "" {
			info = " " + opts.InfoName
		}
		m.Out.Info("Meson%s cmd: %s", info, line)
	}
	return m.Runner.Run(ctx, line)
}

// RunSetup executes "meson setup <build> <source>". With reconfigure, an
// already configured build folder gets --reconfigure.
func (m *Meson) RunSetup(ctx context.Context, args []string, opts RunOptions, reconfigure bool) error {
	if opts.InfoName == "" {
		opts.InfoName = "setup"
	}
	if reconfigure && exists(filepath.Join(m.BuildFolder, "meson-private")) {
		opts.Options = append([]Option{{Key: "--reconfigure", Value: true}}, opts.Options...)
	}
	all := append([]string{quote(m.BuildFolder), quote(m.SourceFolder)}, args...)
	return m.Run(ctx, "setup", all, opts)
}

// RunConfigure executes "meson configure <build>".
func (m *Meson) RunConfigure(ctx context.Context, args []string, opts RunOptions) error {
	if opts.InfoName == "" {
		opts.InfoName = "configure"
	}
	return m.Run(ctx, "configure", append([]string{quote(m.BuildFolder)}, args...), opts)
}

// Configure sets up the build folder with the generated machine file and the
// package folder as install prefix.
func (m *Meson) Configure(ctx context.Context, options []Option) error {
	opts := append([]Option(nil), options...)
	cross := filepath.Join(m.GeneratorsFolder, CrossFilename)
	native := filepath.Join(m.GeneratorsFolder, NativeFilename)
	if exists(cross) {
		opts = append(opts, Option{Key: "--cross-file", Value: quote(cross)})
	} else {
		opts = append(opts, Option{Key: "--native-file", Value: quote(native)})
	}
	if m.PackageFolder != "" {
		opts = append(opts, Option{Key: "-D", Value: "prefix=" + quote(m.PackageFolder)})
	}
	return m.RunSetup(ctx, nil, RunOptions{Options: opts, InfoName: "configure"}, true)
}

// Build compiles target, or everything when target is empty.
func (m *Meson) Build(ctx context.Context, target string) error {
	cmd := "meson compile -C " + quote(m.BuildFolder)
	if m.Jobs > 0 {
		cmd += fmt.Sprintf(" -j%d", m.Jobs)
	}
	if target != "" {
		cmd += " " + target
	}
	m.Out.Info("Meson build cmd: %s", cmd)
	return m.Runner.Run(ctx, cmd)
}

// Install reconfigures the prefix and installs into the package folder.
func (m *Meson) Install(ctx context.Context) error {
	if err := m.Configure(ctx, nil); err != nil {
		return err
	}
	return m.Runner.Run(ctx, "meson install -C "+quote(m.BuildFolder))
}

// Test runs the project test suite.
func (m *Meson) Test(ctx context.Context) error {
	return m.Runner.Run(ctx, "meson test -v -C "+quote(m.BuildFolder))
}

func quote(s string) string { return `"` + s + `"` }

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package dispatch runs one pakman invocation: it resolves the command token
// against the registry, runs the handler and turns whatever the handler
// returned into exactly one exit code.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/exitcode"
	"github.com/lex00/pakman/output"
	"github.com/lex00/pakman/registry"
	"github.com/lex00/pakman/version"
	"github.com/sirupsen/logrus"
)

// State is the position of a Dispatcher in its run loop.
type State int

const (
	Idle State = iota
	Resolving
	Executing
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Dispatcher routes one argument vector to its handler.
type Dispatcher struct {
	reg   *registry.Registry
	out   output.Output
	log   logrus.FieldLogger
	state State
}

// New returns an idle dispatcher. A nil log discards diagnostics.
func New(reg *registry.Registry, out output.Output, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Dispatcher{reg: reg, out: out, log: log}
}

// State returns the current state.
func (d *Dispatcher) State() State { return d.state }

// Run executes argv, where argv[0] is the command token. The remaining
// arguments go to the handler unexamined. Run always ends Completed.
func (d *Dispatcher) Run(ctx context.Context, argv []string) (code exitcode.Code) {
	d.state = Resolving
	defer func() { d.state = Completed }()

	log := d.log.WithField("invocation", uuid.NewString())

	if len(argv) == 0 {
		d.out.Error("missing command")
		d.usage()
		return exitcode.GeneralError
	}
	token := argv[0]
	switch token {
	case "help", "-h", "--help":
		d.usage()
		return exitcode.Success
	case "-v", "--version":
		d.out.Writeln(version.String())
		return exitcode.Success
	}

	command, ok := d.reg.Lookup(token)
	if !ok {
		log.WithField("command", token).Debug("unknown command")
		d.out.Error("'%s' is not a pakman command. See 'pakman --help'.", token)
		d.printSimilar(token)
		return exitcode.GeneralError
	}

	d.state = Executing
	log = log.WithField("command", command.Name)
	log.WithField("args", strings.Join(argv[1:], " ")).Debug("running command")

	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack", string(debug.Stack())).Errorf("panic: %v", r)
			code = Report(d.out, log, command.Name, fmt.Errorf("internal error: %v", r))
		}
	}()

	_, err := command.Handler.Run(ctx, argv[1:])
	return Report(d.out, log, command.Name, err)
}

// Report prints err through out and returns its exit code. The first
// matching kind wins. Unclassified failures show only the redacted message;
// their detail goes to log.
func Report(out output.Output, log logrus.FieldLogger, command string, err error) exitcode.Code {
	if err == nil {
		return exitcode.Success
	}
	kind := errs.KindOf(err)
	entry := log.WithField("kind", kind.String())

	switch kind {
	case errs.KindUserInterrupt:
		entry.Info(err.Error())
		return exitcode.Success
	case errs.KindProcessExit:
		n, _ := errs.ExitCode(err)
		if n == 0 {
			return exitcode.Success
		}
		entry.WithField("status", n).Error(err.Error())
		if n != int(exitcode.GeneralError) {
			out.Error("Exiting with code: %d", n)
		}
		return exitcode.GeneralError
	case errs.KindInvalidConfiguration:
		entry.Warn(err.Error())
		out.Error("%s", errs.Message(err))
		return exitcode.InvalidConfiguration
	case errs.KindInvalidSystemRequirements:
		entry.Warn(err.Error())
		out.Error("%s", errs.Message(err))
		return exitcode.InvalidSystemRequirements
	case errs.KindUsage:
		entry.Info(err.Error())
		out.Error("%s", errs.Message(err))
		if command != "" {
			out.Info("Run 'pakman %s --help' for usage.", command)
		}
		return exitcode.GeneralError
	case errs.KindDomain:
		entry.Warn(err.Error())
		out.Error("%s", errs.Message(err))
		return exitcode.GeneralError
	default:
		entry.WithField("type", fmt.Sprintf("%T", err)).Errorf("unexpected error: %+v", err)
		out.Error("%s", errs.Message(err))
		return exitcode.GeneralError
	}
}

func (d *Dispatcher) printSimilar(token string) {
	matches := d.reg.Suggest(token)
	if len(matches) == 0 {
		return
	}
	if len(matches) > 1 {
		d.out.Info("The most similar commands are")
	} else {
		d.out.Info("The most similar command is")
	}
	for _, m := range matches {
		d.out.Info("    %s", m)
	}
	d.out.Info("")
}

func (d *Dispatcher) usage() {
	width := 0
	for _, name := range d.reg.Names() {
		width = max(width, len(name))
	}
	var sb strings.Builder
	sb.WriteString("Usage: pakman <command> [arguments]\n\nCommands:\n")
	for _, c := range d.reg.Commands() {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, c.Name, c.Summary)
	}
	sb.WriteString("\nRun 'pakman <command> --help' for more information on a command.")
	d.out.Writeln(sb.String())
}

// Package exitcode defines the process exit codes of pakman.
//
// The values are part of the command line contract and must not change
// between releases:
//
//	0  Success
//	1  GeneralError               any failure without a more specific code
//	3  UserCtrlC                  reserved, interrupted runs exit with Success
//	6  InvalidConfiguration       the package cannot be built for the given configuration
//	7  InvalidSystemRequirements  the host lacks required system tools or libraries
package exitcode

// Code is the single outcome of one pakman invocation.
type Code int

const (
	Success                   Code = 0
	GeneralError              Code = 1
	UserCtrlC                 Code = 3
	InvalidConfiguration      Code = 6
	InvalidSystemRequirements Code = 7
)

// String returns the outcome name.
func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case GeneralError:
		return "general-error"
	case UserCtrlC:
		return "user-ctrl-c"
	case InvalidConfiguration:
		return "invalid-configuration"
	case InvalidSystemRequirements:
		return "invalid-system-requirements"
	default:
		return "unknown"
	}
}

// Int returns the code as a process exit status.
func (c Code) Int() int { return int(c) }

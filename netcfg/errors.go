package netcfg

import "strconv"

// ValidationError reports bad or missing flag input. It is raised before
// any external command runs; the system is untouched when it appears.
type ValidationError struct {
	Flag   string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Flag == "" {
		return e.Reason
	}
	return "--" + e.Flag + ": " + e.Reason
}

// CommandError reports an external command that ran and exited non-zero.
// Whatever earlier commands in the sequence changed stays changed: there
// is no rollback.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e CommandError) Error() string {
	msg := e.Cmd + ": exit status " + strconv.Itoa(e.ExitCode)
	if e.Stderr != "" {
		msg = msg + ": " + e.Stderr
	}
	return msg
}

// NotFoundError reports a tool that could not be launched at all because
// it is not installed or not on PATH.
type NotFoundError struct {
	Tool string
}

func (e NotFoundError) Error() string {
	return e.Tool + ": command not found"
}

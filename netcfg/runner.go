package netcfg

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is what one external command produced.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes one external command and reports its outcome. A non-zero
// exit is a Result, not an error: err is reserved for failing to run the
// command at all, such as a missing tool or a broken transport.
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// LocalRunner runs commands on this host. No timeout is imposed beyond
// what ctx carries.
type LocalRunner struct{}

func (LocalRunner) Run(ctx context.Context, argv []string) (Result, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return res, NotFoundError{Tool: argv[0]}
		}
		return res, err
	}
	return res, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitRejected = 2
)

// ExitError carries the process exit code for err
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Execute runs cmd and reports failures on its error stream. The returned
// value is meant for os.Exit. Daemons return nil after a signal-driven
// shutdown, so an interrupted client is the only way cancellation surfaces
// here, and it is a failure.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		printError(cmd.ErrOrStderr(), cmd.Name(), err)
	}
	return ExitCode(err)
}

func printError(w io.Writer, name string, err error) {
	fmt.Fprintf(w, "%s: %v\n", name, err)
}

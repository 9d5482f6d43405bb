package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result holds the outcome of a finished child process.
type Result struct {
	Code   int
	Stdout string
	Stderr string
}

// Capture runs a command and collects stdout and stderr separately. The
// returned error is nil whenever the process ran to completion, even with a
// non-zero exit status; callers decide what a non-zero Code means. An error
// is returned only when the process could not be started at all.
func Capture(ctx context.Context, name string, args ...string) (Result, error) {
	if os.Getenv("DCM2NIIW_DEBUG") == "1" {
		fmt.Fprintf(os.Stderr, "+ %s\n", strings.Join(append([]string{name}, args...), " "))
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			res.Code = ee.ExitCode()
			return res, nil
		}
		res.Code = 1
		return res, err
	}
	return res, nil
}

package dcm2niix

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fepegar/dcm2niiw/internal/execx"
)

// Result reports a finished converter run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunError is returned when dcm2niix itself reports failure. The captured
// stderr is carried verbatim.
type RunError struct {
	ExitCode int
	Stderr   string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("dcm2niix exited with code %d", e.ExitCode)
}

// Convert runs dcm2niix over the DICOMs under inDir with the wrapper
// defaults, adjusted by opts. The call blocks until the converter exits.
// Output files land wherever the converter puts them; apart from the
// single-file move of WithOutFile the wrapper does not touch them.
//
// A missing executable and a non-zero converter exit surface as distinct
// errors: the former wraps exec.ErrNotFound, the latter is a *RunError.
func Convert(ctx context.Context, inDir string, opts ...Option) (*Result, error) {
	o := NewOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	for _, a := range o.Extra {
		if a == "-h" {
			return runHelp(ctx, &o)
		}
	}
	bin, err := Locate(o.Binary)
	if err != nil {
		return nil, err
	}
	var staging string
	if o.OutFile != "" {
		if err := os.MkdirAll(filepath.Dir(o.OutFile), 0o755); err != nil {
			return nil, err
		}
		staging, err = os.MkdirTemp("", "dcm2niiw-")
		if err != nil {
			return nil, err
		}
		o.Depth = 0
		o.OutDir = staging
	} else if o.OutDir != "" {
		if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
			return nil, err
		}
	}
	args := o.Args(inDir)
	log.Debugf("running %s %s", bin, strings.Join(args, " "))
	res, err := execx.Capture(ctx, bin, args...)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", bin, err)
	}
	out := &Result{ExitCode: res.Code, Stdout: res.Stdout, Stderr: res.Stderr}
	logConverterOutput(res.Stdout)
	if res.Code != 0 {
		log.Errorf("dcm2niix failed with exit code %d", res.Code)
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			log.Error(msg)
		}
		return out, &RunError{ExitCode: res.Code, Stderr: res.Stderr}
	}
	if o.OutFile != "" {
		if err := moveSingleOutput(staging, o.OutFile); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Command resolves the executable and assembles the argument list without
// running anything. The staging directory of single-file mode is created at
// run time, so with WithOutFile the shown -o reflects the options as given.
func Command(inDir string, opts ...Option) (string, []string, error) {
	o := NewOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return "", nil, err
	}
	bin, err := Locate(o.Binary)
	if err != nil {
		return "", nil, err
	}
	if o.OutFile != "" {
		o.Depth = 0
	}
	return bin, o.Args(inDir), nil
}

// Help returns the converter's own usage text.
func Help(ctx context.Context, opts ...Option) (string, error) {
	o := NewOptions()
	for _, opt := range opts {
		opt(&o)
	}
	res, err := runHelp(ctx, &o)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

func runHelp(ctx context.Context, o *Options) (*Result, error) {
	bin, err := Locate(o.Binary)
	if err != nil {
		return nil, err
	}
	res, err := execx.Capture(ctx, bin, "-h")
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", bin, err)
	}
	return &Result{ExitCode: res.Code, Stdout: res.Stdout, Stderr: res.Stderr}, nil
}

// moveSingleOutput promotes the lone converter output in staging to dest.
// Sidecar .json files do not count. With anything other than exactly one
// candidate the staging directory is kept so nothing is lost, and the run
// still succeeds.
func moveSingleOutput(staging, dest string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	var outputs []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			continue
		}
		outputs = append(outputs, filepath.Join(staging, e.Name()))
	}
	if len(outputs) != 1 {
		log.Warnf("expected a single output file, found %d; leaving them in %s", len(outputs), staging)
		return nil
	}
	if err := moveFile(outputs[0], dest); err != nil {
		return err
	}
	return os.RemoveAll(staging)
}

// moveFile renames src to dest, falling back to copy and remove when the
// rename crosses filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

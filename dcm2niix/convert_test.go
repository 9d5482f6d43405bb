package dcm2niix

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installConverter puts a fake dcm2niix on a private PATH that records its
// arguments and runs body.
func installConverter(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "argv")
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > \"" + argsFile + "\"\n" +
		body
	require.NoError(t, os.WriteFile(filepath.Join(dir, binaryName), []byte(script), 0o755))
	t.Setenv(EnvBinary, "")
	t.Setenv("PATH", dir)
	return argsFile
}

func recordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestConvertSuccess(t *testing.T) {
	argsFile := installConverter(t, "echo 'Conversion required 0.1 seconds'\n")
	in := t.TempDir()

	res, err := Convert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "Conversion required")

	got := recordedArgs(t, argsFile)
	require.GreaterOrEqual(t, len(got), 18)
	assert.Equal(t, []string{"-a", "n", "-d", "5", "-e", "n", "-f", "%f_%p_%t_%s"}, got[:8])
	assert.Equal(t, in, got[len(got)-1])
}

func TestConvertNonZeroExitIsRunError(t *testing.T) {
	installConverter(t, "echo 'Error: no DICOMs found' >&2\nexit 2\n")

	res, err := Convert(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, 2, runErr.ExitCode)
	assert.Contains(t, runErr.Stderr, "no DICOMs found")
	require.NotNil(t, res, "result still carries the captured output")
	assert.Equal(t, 2, res.ExitCode)
}

func TestConvertMissingExecutable(t *testing.T) {
	t.Setenv(EnvBinary, "")
	t.Setenv("PATH", t.TempDir())

	_, err := Convert(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound), "err=%v", err)
}

func TestConvertCreatesOutDir(t *testing.T) {
	installConverter(t, "")
	out := filepath.Join(t.TempDir(), "nested", "out")

	_, err := Convert(context.Background(), t.TempDir(), WithOutDir(out))
	require.NoError(t, err)
	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestConvertRejectsInvalidOptions(t *testing.T) {
	installConverter(t, "")

	_, err := Convert(context.Background(), t.TempDir(), WithCompressionLevel(42))
	require.Error(t, err)
}

func TestConvertSingleFileMode(t *testing.T) {
	// The fake converter drops one image plus a sidecar into the -o dir.
	argsFile := installConverter(t, `out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
: > "$out/study.nii.gz"
: > "$out/study.json"
`)
	dest := filepath.Join(t.TempDir(), "deep", "result.nii.gz")

	_, err := Convert(context.Background(), t.TempDir(), WithOutFile(dest))
	require.NoError(t, err)
	_, err = os.Stat(dest)
	require.NoError(t, err, "single output should have been moved to the target")

	got := recordedArgs(t, argsFile)
	for i, a := range got {
		if a == "-d" {
			assert.Equal(t, "0", got[i+1], "single-file mode forces depth 0")
		}
	}
}

func TestConvertSingleFileModeMultipleOutputs(t *testing.T) {
	installConverter(t, `out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
: > "$out/a.nii.gz"
: > "$out/b.nii.gz"
`)
	hook := logtest.NewGlobal()
	defer hook.Reset()
	dest := filepath.Join(t.TempDir(), "result.nii.gz")

	_, err := Convert(context.Background(), t.TempDir(), WithOutFile(dest))
	require.NoError(t, err, "ambiguous output is a warning, not a failure")
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "nothing should be moved when output is ambiguous")

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "single output") {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning naming the kept staging dir")
}

func TestConvertHelpPassThrough(t *testing.T) {
	installConverter(t, `if [ "$1" = "-h" ]; then echo "usage: dcm2niix [options] <in_folder>"; fi`)

	res, err := Convert(context.Background(), "", WithArgs("-h"))
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "usage: dcm2niix")
}

func TestHelpReturnsToolUsage(t *testing.T) {
	installConverter(t, `echo "usage: dcm2niix [options] <in_folder>"`)

	text, err := Help(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "usage: dcm2niix")
}

func TestCommandShowsResolvedInvocation(t *testing.T) {
	installConverter(t, "")

	bin, args, err := Command("/data/study1", WithArgs("--terse"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(bin, binaryName))
	assert.Equal(t, "--terse", args[len(args)-1])
	assert.Contains(t, args, "/data/study1")
}

func TestMoveFileCopiesAcrossDirs(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.nii.gz")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))
	dest := filepath.Join(t.TempDir(), "b.nii.gz")

	require.NoError(t, moveFile(src, dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

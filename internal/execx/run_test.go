package execx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCaptureSeparatesStreams(t *testing.T) {
	tool := writeScript(t, "echo out\necho err >&2\n")
	res, err := Capture(context.Background(), tool)
	if err != nil {
		t.Fatalf("Capture error: %v", err)
	}
	if res.Code != 0 {
		t.Fatalf("code=%d", res.Code)
	}
	if res.Stdout != "out\n" {
		t.Fatalf("stdout=%q", res.Stdout)
	}
	if res.Stderr != "err\n" {
		t.Fatalf("stderr=%q", res.Stderr)
	}
}

func TestCaptureReportsExitCodeWithoutError(t *testing.T) {
	tool := writeScript(t, "echo broken >&2\nexit 3\n")
	res, err := Capture(context.Background(), tool)
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}
	if res.Code != 3 {
		t.Fatalf("code=%d", res.Code)
	}
	if res.Stderr != "broken\n" {
		t.Fatalf("stderr=%q", res.Stderr)
	}
}

func TestCaptureMissingBinaryIsAnError(t *testing.T) {
	res, err := Capture(context.Background(), filepath.Join(t.TempDir(), "no-such-tool"))
	if err == nil {
		t.Fatal("expected start error for missing binary")
	}
	if res.Code == 0 {
		t.Fatalf("code=%d, want non-zero", res.Code)
	}
}

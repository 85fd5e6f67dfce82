package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/samcharles93/npywrite/pkg/npy"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI runs npywrite with an isolated config file unless one is given.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	argv := []string{"npywrite"}
	if !slices.Contains(args, "--config") {
		argv = append(argv, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	}
	argv = append(argv, args...)
	code := run(context.Background(), argv, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestConvertWritesFile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "m.npy")
	res := runCLI(t, "1 2 3\n4 5 6\n", "-d", "i32", "-o", out)
	if res.code != 0 {
		t.Fatalf("exit %d: stdout=%q stderr=%q", res.code, res.stdout, res.stderr)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(raw) != 152 {
		t.Fatalf("size: got %d want 152", len(raw))
	}
	if !strings.Contains(string(raw[:npy.HeaderSize]), "'shape': (2,3)") {
		t.Fatalf("unexpected header: %q", raw[:npy.HeaderSize])
	}
}

func TestConvertLongFlagsAndSeparator(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "row.npy")
	res := runCLI(t, "10,20,30,40\n", "--dtype", "u32", "--separator", ",", "--output", out)
	if res.code != 0 {
		t.Fatalf("exit %d: %q", res.code, res.stdout)
	}
	f, err := npy.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	vals, err := npy.Decode[uint32](f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(vals) != 4 || vals[3] != 40 {
		t.Fatalf("unexpected values: %v", vals)
	}
}

func TestConvertDefaultsToF32(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "f.npy")
	res := runCLI(t, "1.5\n2.5\n3.5\n", "-o", out)
	if res.code != 0 {
		t.Fatalf("exit %d: %q", res.code, res.stdout)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(raw) != 140 || !strings.Contains(string(raw), "'<f4'") {
		t.Fatalf("unexpected file: len=%d", len(raw))
	}
}

func TestConvertUnknownDTypeFallsBack(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "fb.npy")
	res := runCLI(t, "1\n", "-d", "f16", "-o", out, "--log-format", "text")
	if res.code != 0 {
		t.Fatalf("exit %d: %q", res.code, res.stdout)
	}
	if !strings.Contains(res.stderr, "unknown dtype") {
		t.Fatalf("expected fallback warning, got %q", res.stderr)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "'<f4'") {
		t.Fatalf("expected f32 fallback")
	}
}

func TestConvertStrictDTypeFails(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "strict.npy")
	res := runCLI(t, "1\n", "-d", "f16", "--strict-dtype", "-o", out)
	if res.code == 0 {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.stdout, "unknown dtype") {
		t.Fatalf("expected diagnostic on stdout, got %q", res.stdout)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output should not be created, stat err=%v", err)
	}
}

func TestConvertParseErrorExitsNonZero(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "bad.npy")
	res := runCLI(t, "not_a_number\n", "-d", "i64", "-o", out)
	if res.code == 0 {
		t.Fatal("expected failure")
	}
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "npywrite:") {
		t.Fatalf("expected one diagnostic line, got %q", res.stdout)
	}
}

func TestConvertRaggedRows(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "ragged.npy")
	if res := runCLI(t, "1 2\n3\n", "-d", "i32", "-o", out); res.code == 0 {
		t.Fatal("expected ragged input to fail")
	}
	if res := runCLI(t, "1 2\n3\n", "-d", "i32", "-o", out, "--allow-ragged"); res.code != 0 {
		t.Fatalf("exit %d: %q", res.code, res.stdout)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "'shape': (2,)") {
		t.Fatalf("expected last-line column count in header")
	}
}

func TestConvertToStdout(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "1 2\n", "-d", "i32", "-o", "-")
	if res.code != 0 {
		t.Fatalf("exit %d: %q", res.code, res.stderr)
	}
	if len(res.stdout) != npy.HeaderSize+8 {
		t.Fatalf("stdout length: got %d", len(res.stdout))
	}
	if !strings.HasPrefix(res.stdout, npy.Magic) {
		t.Fatalf("stdout is not an npy file")
	}

	res = runCLI(t, "x\n", "-o", "-")
	if res.code == 0 || res.stdout != "" {
		t.Fatalf("expected failure with clean stdout, got code=%d stdout=%q", res.code, res.stdout)
	}
	if !strings.Contains(res.stderr, "npywrite:") {
		t.Fatalf("expected diagnostic on stderr, got %q", res.stderr)
	}
}

func TestConvertRejectsPositionalArgs(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "1\n", "input.txt")
	if res.code == 0 {
		t.Fatal("expected failure for positional argument")
	}
}

func TestUsageErrorIsOneLine(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"--bogus"},
		{"-d"},
		{"inspect", "--bogus", "x.npy"},
		{"serve", "--read-timeout", "soon"},
	} {
		res := runCLI(t, "1\n", args...)
		if res.code == 0 {
			t.Fatalf("%v: expected failure", args)
		}
		if strings.Count(res.stdout, "\n") != 1 || !strings.HasPrefix(res.stdout, "npywrite: ") {
			t.Fatalf("%v: want one diagnostic line, got:\n%s", args, res.stdout)
		}
		if strings.Contains(res.stdout, "USAGE") || strings.Contains(res.stderr, "Incorrect Usage") {
			t.Fatalf("%v: help text printed:\nstdout: %s\nstderr: %s", args, res.stdout, res.stderr)
		}
	}
}

func TestInspectRejectsOverflowingShape(t *testing.T) {
	t.Parallel()

	hdr, err := npy.EncodeHeader(npy.Shape{Rows: 1 << 61, Cols: 5}, npy.Int32)
	if err != nil {
		t.Fatal(err)
	}
	raw := append(bytes.Repeat([]byte{' '}, npy.HeaderSize-1), '\n')
	copy(raw, hdr)
	path := filepath.Join(t.TempDir(), "huge.npy")
	if err := os.WriteFile(path, append(raw, make([]byte, 16)...), 0o644); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, "", "inspect", path)
	if res.code == 0 {
		t.Fatal("expected failure for overflowing shape")
	}
	if !strings.Contains(res.stdout, "corrupt") {
		t.Fatalf("unexpected diagnostic: %q", res.stdout)
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "i.npy")
	if res := runCLI(t, "1 2 3\n4 5 6\n", "-d", "i64", "-o", out); res.code != 0 {
		t.Fatalf("convert exit %d", res.code)
	}

	res := runCLI(t, "", "inspect", "--head", "4", out)
	if res.code != 0 {
		t.Fatalf("inspect exit %d: %q", res.code, res.stdout)
	}
	for _, want := range []string{"descr:         <i8 (i64)", "shape:         (2, 3)", "data:          48 bytes, 6 elements", "head:          1 2 3 4"} {
		if !strings.Contains(res.stdout, want) {
			t.Fatalf("missing %q in:\n%s", want, res.stdout)
		}
	}

	res = runCLI(t, "", "inspect", "--json", out)
	if res.code != 0 {
		t.Fatalf("inspect --json exit %d: %q", res.code, res.stdout)
	}
	if !strings.Contains(res.stdout, `"descr": "<i8"`) || !strings.Contains(res.stdout, `"elements": 6`) {
		t.Fatalf("unexpected JSON: %s", res.stdout)
	}
}

func TestInspectMissingFile(t *testing.T) {
	t.Parallel()

	if res := runCLI(t, "", "inspect"); res.code == 0 {
		t.Fatal("expected failure without FILE")
	}
	if res := runCLI(t, "", "inspect", filepath.Join(t.TempDir(), "nope.npy")); res.code == 0 {
		t.Fatal("expected failure for missing file")
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "version")
	if res.code != 0 || !strings.HasPrefix(res.stdout, "version: ") {
		t.Fatalf("unexpected version output: code=%d %q", res.code, res.stdout)
	}
}

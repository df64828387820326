package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempSource(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.lumen")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp source: %v", err)
	}
	return path
}

func TestRunFileExitsZeroOnSuccess(t *testing.T) {
	path := writeTempSource(t, `print "ok";`)
	if code := runFile(path, false); code != 0 {
		t.Fatalf("want exit 0, got %d", code)
	}
}

func TestRunFileExits65OnCompileError(t *testing.T) {
	path := writeTempSource(t, `var x = ;`)
	if code := runFile(path, false); code != 65 {
		t.Fatalf("want exit 65, got %d", code)
	}
}

func TestRunFileExits70OnRuntimeError(t *testing.T) {
	path := writeTempSource(t, `print undefinedGlobal;`)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	orig := os.Stderr
	os.Stderr = w

	code := runFile(path, false)

	w.Close()
	os.Stderr = orig
	var buf bytes.Buffer
	io.Copy(&buf, r)

	if code != 70 {
		t.Fatalf("want exit 70, got %d", code)
	}
	if !strings.Contains(buf.String(), "Undefined variable 'undefinedGlobal'") {
		t.Fatalf("expected stderr to contain the exact runtime error text, got %q", buf.String())
	}
}

func TestRunFileExits70OnMissingFile(t *testing.T) {
	if code := runFile(filepath.Join(t.TempDir(), "missing.lumen"), false); code != 70 {
		t.Fatalf("want exit 70 for unreadable file, got %d", code)
	}
}

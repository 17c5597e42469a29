package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{"no args", nil, exitUsage, "", "COMMANDS:"},
		{"help", []string{"help"}, exitOK, "COMMANDS:", ""},
		{"help command", []string{"help", "build"}, exitOK, "basicc build -", ""},
		{"help unknown", []string{"help", "nope"}, exitUsage, "", "unknown command: nope"},
		{"unknown", []string{"frobnicate"}, exitUsage, "", "unknown command: frobnicate"},
		{"build without files", []string{"build", "-color", "never"}, exitUsage, "", "no input files"},
		{"watch without files", []string{"watch"}, exitUsage, "", "no input files"},
		{"bad flag", []string{"build", "-nope"}, exitUsage, "", "flag provided but not defined"},
		{"bad color", []string{"build", "-color", "sometimes", "x.bas"}, exitUsage, "", "invalid color mode"},
		{"flag help", []string{"build", "-h"}, exitOK, "", "usage: basicc build"},
		{"tokens arity", []string{"tokens"}, exitUsage, "", "usage: basicc tokens file"},
		{"serve cert without key", []string{"serve", "-cert", "c.pem"}, exitUsage, "", "-cert and -key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.code, stderr)
			}
			if !strings.Contains(stdout, tt.stdout) {
				t.Errorf("stdout %q does not contain %q", stdout, tt.stdout)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr %q does not contain %q", stderr, tt.stderr)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI("version")
	if code != exitOK || !strings.HasPrefix(stdout, "basicc v") {
		t.Errorf("version: code %d, output %q", code, stdout)
	}

	code, stdout, _ = runCLI("version", "--json")
	if code != exitOK {
		t.Fatalf("version --json: code %d", code)
	}
	var out struct {
		Tool        string `json:"tool"`
		VersionInfo struct {
			Version string `json:"version"`
		} `json:"version_info"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if out.Tool != "basicc" || out.VersionInfo.Version == "" {
		t.Errorf("version JSON = %+v", out)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hello.bas", "LET a = 1\nPRINT a\n")

	code, _, stderr := runCLI("build", "-color", "never", src)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	out, err := os.ReadFile(filepath.Join(dir, "hello.c"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "    float a = 1;\n") {
		t.Errorf("output = %q", out)
	}
}

func TestBuildOutDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := writeFile(t, dir, "a.bas", "PRINT \"a\"\n")
	b := writeFile(t, dir, "b.bas", "PRINT \"b\"\n")

	code, _, stderr := runCLI("build", "-o", outDir, "-workers", "2", "-v", a, b)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	for _, name := range []string{"a.c", "b.c"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Error(err)
		}
	}
	if !strings.Contains(stderr, "2 files: 2 ok, 0 failed") {
		t.Errorf("verbose summary missing from %q", stderr)
	}
}

func TestBuildCompileError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.bas", "PRINT \"ok\"\n")
	bad := writeFile(t, dir, "bad.bas", "LET a = 1\nPRINT b\n")

	code, _, stderr := runCLI("build", "-color", "never", good, bad)
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	for _, want := range []string{"error[S0001]", "--> bad.bas:2:7", " 2 | PRINT b", "^"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr %q does not contain %q", stderr, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "good.c")); err != nil {
		t.Errorf("good file not built: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.c")); err == nil {
		t.Error("bad file produced output")
	}
}

func TestBuildMissingFile(t *testing.T) {
	code, _, stderr := runCLI("build", "-color", "never", filepath.Join(t.TempDir(), "missing.bas"))
	if code != exitFailure {
		t.Errorf("exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(stderr, "failed to read") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBuildConfigFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "p.bas", "PRINT \"x\"\n")
	cfg := writeFile(t, dir, "basicc.json", `{"out_dir": "`+filepath.ToSlash(filepath.Join(dir, "gen"))+`", "color": "never"}`)

	code, _, stderr := runCLI("build", "-config", cfg, src)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "gen", "p.c")); err != nil {
		t.Error(err)
	}
}

func TestBuildConfigRequirement(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "p.bas", "PRINT \"x\"\n")
	cfg := writeFile(t, dir, "basicc.json", `{"requires": ">= 99.0.0"}`)

	code, _, stderr := runCLI("build", "-config", cfg, src)
	if code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr, "basicc:") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestTokens(t *testing.T) {
	src := writeFile(t, t.TempDir(), "t.bas", "LET a = 1\n")

	code, stdout, stderr := runCLI("tokens", src)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d tokens, want 6:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "1:1\t") || !strings.Contains(lines[1], "IDENTIFIER(a)") {
		t.Errorf("unexpected dump:\n%s", stdout)
	}
}

func TestTokensLexicalError(t *testing.T) {
	src := writeFile(t, t.TempDir(), "t.bas", "LET a = 1 ! 2\n")

	code, _, stderr := runCLI("tokens", src)
	if code != exitFailure || !strings.Contains(stderr, "error[L0001]") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}

func TestAST(t *testing.T) {
	src := writeFile(t, t.TempDir(), "t.bas", "LET a = 1\nIF a > 0 THEN\nPRINT a\nENDIF\n")

	code, stdout, stderr := runCLI("ast", src)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	for _, want := range []string{"Program [a]", "  Let a", "  If", "    Print"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("dump %q does not contain %q", stdout, want)
		}
	}

	bad := writeFile(t, t.TempDir(), "bad.bas", "GOTO nowhere\n")
	if code, _, stderr := runCLI("ast", bad); code != exitFailure || !strings.Contains(stderr, "error[S0003]") {
		t.Errorf("undeclared label: code %d, stderr %q", code, stderr)
	}
}

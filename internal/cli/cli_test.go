package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tagcat/tagcat/internal/assemble"
	"github.com/tagcat/tagcat/internal/scan"
)

func isolateEnvironment(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	previousDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		t.Fatalf("getwd: %v", getwdError)
	}
	if chdirError := os.Chdir(workingDirectory); chdirError != nil {
		t.Fatalf("chdir %s: %v", workingDirectory, chdirError)
	}
	t.Cleanup(func() {
		if chdirError := os.Chdir(previousDirectory); chdirError != nil {
			t.Fatalf("chdir %s: %v", previousDirectory, chdirError)
		}
	})
	return workingDirectory
}

func writeSampleFile(t *testing.T, path, content string) {
	t.Helper()
	if mkdirError := os.MkdirAll(filepath.Dir(path), 0o755); mkdirError != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), mkdirError)
	}
	if writeError := os.WriteFile(path, []byte(content), 0o600); writeError != nil {
		t.Fatalf("write %s: %v", path, writeError)
	}
}

func runCommand(t *testing.T, arguments ...string) error {
	t.Helper()
	command := createRootCommand(zap.NewNop())
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	return command.Execute()
}

func TestRootCommandWritesTaggedDocument(t *testing.T) {
	workingDirectory := isolateEnvironment(t)

	scanRoot := t.TempDir()
	writeSampleFile(t, filepath.Join(scanRoot, "a.rs"), "x")
	writeSampleFile(t, filepath.Join(scanRoot, "b.txt"), "y")
	writeSampleFile(t, filepath.Join(scanRoot, "target", "c.rs"), "z")

	executeError := runCommand(t,
		"--ext", "rs", "--ext", "txt",
		"--exclude", "target",
		"--recursive",
		"--notes", "review carefully",
		scanRoot,
	)
	if executeError != nil {
		t.Fatalf("Execute error: %v", executeError)
	}

	outputBytes, readError := os.ReadFile(filepath.Join(workingDirectory, defaultOutputPath))
	if readError != nil {
		t.Fatalf("reading output document: %v", readError)
	}
	outputText := string(outputBytes)

	expectedPrefix := "<a.rs>\nx\n</a.rs>\n\n<b.txt>\ny\n</b.txt>\n\n"
	if !strings.HasPrefix(outputText, expectedPrefix) {
		t.Fatalf("unexpected document prefix:\n%q", outputText)
	}
	if strings.Contains(outputText, "c.rs") {
		t.Fatalf("excluded folder leaked into the document:\n%q", outputText)
	}
	if !strings.Contains(outputText, assemble.TrailerSectionHeader+"\nreview carefully\n") {
		t.Fatalf("trailer section missing:\n%q", outputText)
	}
}

func TestRootCommandOmitsTrailerWithoutNotes(t *testing.T) {
	workingDirectory := isolateEnvironment(t)

	scanRoot := t.TempDir()
	writeSampleFile(t, filepath.Join(scanRoot, "only.rs"), "body")

	if executeError := runCommand(t, "--ext", "rs", scanRoot); executeError != nil {
		t.Fatalf("Execute error: %v", executeError)
	}

	outputBytes, readError := os.ReadFile(filepath.Join(workingDirectory, defaultOutputPath))
	if readError != nil {
		t.Fatalf("reading output document: %v", readError)
	}
	if strings.Contains(string(outputBytes), assemble.TrailerSectionHeader) {
		t.Fatalf("trailer header must be omitted when no notes are given")
	}
}

func TestRootCommandFailsForInvalidRoot(t *testing.T) {
	isolateEnvironment(t)

	executeError := runCommand(t, "--ext", "rs", filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(executeError, scan.ErrNotADirectory) {
		t.Fatalf("expected ErrNotADirectory, got %v", executeError)
	}
}

func TestRootCommandRequiresExtensions(t *testing.T) {
	isolateEnvironment(t)

	executeError := runCommand(t, t.TempDir())
	if executeError == nil {
		t.Fatalf("expected an error when no extensions are selected")
	}
}

func TestRootCommandResolvesGroupFromStore(t *testing.T) {
	workingDirectory := isolateEnvironment(t)

	scanRoot := t.TempDir()
	writeSampleFile(t, filepath.Join(scanRoot, "main.go"), "package main")
	writeSampleFile(t, filepath.Join(scanRoot, "main.rs"), "fn main() {}")

	if executeError := runCommand(t, "--group", "Go", scanRoot); executeError != nil {
		t.Fatalf("Execute error: %v", executeError)
	}

	outputBytes, readError := os.ReadFile(filepath.Join(workingDirectory, defaultOutputPath))
	if readError != nil {
		t.Fatalf("reading output document: %v", readError)
	}
	outputText := string(outputBytes)
	if !strings.Contains(outputText, "<main.go>") {
		t.Fatalf("expected main.go block, got:\n%q", outputText)
	}
	if strings.Contains(outputText, "<main.rs>") {
		t.Fatalf("rust file must not match the Go group:\n%q", outputText)
	}
}

func TestRootCommandUnknownGroupFails(t *testing.T) {
	isolateEnvironment(t)

	executeError := runCommand(t, "--group", "Fortran", t.TempDir())
	if executeError == nil {
		t.Fatalf("expected an error for an unknown group")
	}
}

func TestGroupsCommandListsSeededStore(t *testing.T) {
	isolateEnvironment(t)

	command := createRootCommand(zap.NewNop())
	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"groups"})

	if executeError := command.Execute(); executeError != nil {
		t.Fatalf("Execute error: %v", executeError)
	}
	if !strings.Contains(outputBuffer.String(), "Go: go, mod") {
		t.Fatalf("expected the seeded Go group, got:\n%s", outputBuffer.String())
	}
}

func TestPresetsCommandListsSeededStore(t *testing.T) {
	isolateEnvironment(t)

	command := createRootCommand(zap.NewNop())
	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"presets"})

	if executeError := command.Execute(); executeError != nil {
		t.Fatalf("Execute error: %v", executeError)
	}
	if !strings.Contains(outputBuffer.String(), "Create Readme") {
		t.Fatalf("expected the seeded presets, got:\n%s", outputBuffer.String())
	}
}

func TestRootCommandStdoutOutput(t *testing.T) {
	isolateEnvironment(t)

	scanRoot := t.TempDir()
	writeSampleFile(t, filepath.Join(scanRoot, "one.rs"), "1")

	if executeError := runCommand(t, "--ext", "rs", "--output", "-", scanRoot); executeError != nil {
		t.Fatalf("Execute error: %v", executeError)
	}
	if _, statError := os.Stat(defaultOutputPath); !os.IsNotExist(statError) {
		t.Fatalf("no output file should be written in stdout mode")
	}
}

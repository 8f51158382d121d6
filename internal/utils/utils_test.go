package utils_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/tagcat/tagcat/internal/utils"
)

func TestDeduplicateStringsPreservesOrder(t *testing.T) {
	result := utils.DeduplicateStrings([]string{"b", "a", "b", "c", "a"})
	if strings.Join(result, ",") != "b,a,c" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestContainsString(t *testing.T) {
	values := []string{"target", ".git"}
	if !utils.ContainsString(values, "target") {
		t.Fatalf("expected target to be found")
	}
	if utils.ContainsString(values, "vendor") {
		t.Fatalf("vendor must not be found")
	}
}

func TestRelativePathOrSelf(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "sub", "file.rs")

	relative := utils.RelativePathOrSelf(nested, root)
	if relative != "sub/file.rs" {
		t.Fatalf("expected sub/file.rs, got %s", relative)
	}

	if utils.RelativePathOrSelf(root, root) != "." {
		t.Fatalf("expected '.' for identical paths")
	}
}

func TestIsDirectory(t *testing.T) {
	root := t.TempDir()
	if !utils.IsDirectory(root) {
		t.Fatalf("temp dir should be a directory")
	}
	if utils.IsDirectory(filepath.Join(root, "absent")) {
		t.Fatalf("missing path must not be a directory")
	}
}

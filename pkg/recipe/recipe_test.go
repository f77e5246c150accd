package recipe

import (
	"os"
	"path/filepath"
	"testing"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
)

func writeRecipe(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}
}

func TestParse(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "hello-world", `
name = "hello-world"
version = "1.2"
release = 3
depends = ["musl"]
`)

	r, err := Parse(filepath.Join(root, "hello-world", FileName))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Name != "hello-world" || r.Version != "1.2" || r.Release != 3 {
		t.Errorf("unexpected recipe: %+v", r)
	}
	if got := r.FullVersion(); got != "1.2-r3" {
		t.Errorf("FullVersion = %q, want 1.2-r3", got)
	}
	if len(r.Depends) != 1 || r.Depends[0] != "musl" {
		t.Errorf("depends = %v, want [musl]", r.Depends)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no name", "version = \"1.0\"\n"},
		{"no version", "name = \"x\"\n"},
		{"invalid version", "name = \"x\"\nversion = \"hello world\"\n"},
		{"not toml", "name = [[[\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeRecipe(t, root, "x", tt.content)
			_, err := Parse(filepath.Join(root, "x", FileName))
			if !apkerr.Is(err, apkerr.ErrCodeInvalidRecipe) {
				t.Errorf("error code = %v, want INVALID_RECIPE", apkerr.GetCode(err))
			}
		})
	}
}

func TestTreeFind(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "main/hello-world", "name = \"hello-world\"\nversion = \"1\"\n")
	writeRecipe(t, root, "extra/other", "name = \"other\"\nversion = \"2\"\n")

	tree := NewTree(root, nil)
	dir, err := tree.Find("hello-world")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if want := filepath.Join(root, "main", "hello-world"); dir != want {
		t.Errorf("Find = %q, want %q", dir, want)
	}

	dir, err = tree.Find("ghost")
	if err != nil || dir != "" {
		t.Errorf("Find(ghost) = %q, %v, want empty", dir, err)
	}
}

func TestTreeDuplicate(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "main/hello-world", "name = \"hello-world\"\nversion = \"1\"\n")
	writeRecipe(t, root, "extra/hello-world", "name = \"hello-world\"\nversion = \"2\"\n")

	_, err := NewTree(root, nil).Find("hello-world")
	if !apkerr.Is(err, apkerr.ErrCodeDuplicateRecipe) {
		t.Errorf("error code = %v, want DUPLICATE_RECIPE", apkerr.GetCode(err))
	}
}

func TestTreeNameMismatch(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "hello-world", "name = \"something-else\"\nversion = \"1\"\n")

	_, err := NewTree(root, nil).Load("hello-world")
	if !apkerr.Is(err, apkerr.ErrCodeInvalidRecipe) {
		t.Errorf("error code = %v, want INVALID_RECIPE", apkerr.GetCode(err))
	}
}

func TestTreeCandidate(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "hello-world", `
name = "hello-world"
version = "1.2"
release = 3
depends = ["musl", "busybox"]
`)

	tree := NewTree(root, nil)
	cand, err := tree.Candidate("hello-world")
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if cand.Name != "hello-world" || cand.Version != "1.2-r3" {
		t.Errorf("candidate = %+v", cand)
	}

	cand, err = tree.Candidate("ghost")
	if err != nil || cand != nil {
		t.Errorf("Candidate(ghost) = %v, %v, want nil, nil", cand, err)
	}
}

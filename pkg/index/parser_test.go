package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
)

// writeIndex writes content to an index file, appending the newline
// that turns a content ending in "\n" into the blank line terminating
// the final block. Content without a trailing "\n" stays truncated.
func writeIndex(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "APKINDEX.tar.gz")
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return path
}

func TestStripConstraint(t *testing.T) {
	tests := []struct {
		entry string
		want  string
	}{
		{"musl", "musl"},
		{"musl>=1.2", "musl"},
		{"musl>1.2", "musl"},
		{"musl=1.2-r0", "musl"},
		{"musl~1.2", "musl"},
		// "=" is probed before "<", so the cut lands after the "<".
		{"musl<=1.2", "musl<"},
		{"so:libc.musl-x86_64.so.1=1", "so:libc.musl-x86_64.so.1"},
		{"!conflict", "!conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			if got := StripConstraint(tt.entry); got != tt.want {
				t.Errorf("StripConstraint(%q) = %q, want %q", tt.entry, got, tt.want)
			}
		})
	}
}

func TestParseBlocks(t *testing.T) {
	path := writeIndex(t, strings.Join([]string{
		"A:x86_64",
		"P:hello-world",
		"V:2-r0",
		"t:1500000000",
		"o:hello-world",
		"D:!conflict so:libc.musl-x86_64.so.1",
		"",
		"A:x86_64",
		"P:hello-world-wrapper",
		"V:1-r2",
		"t:1500000000",
		"k:10",
		"p:hello-world=1 cmd:hello-world",
		"D:hello-world>=2",
		"",
	}, "\n"))

	blocks, err := ParseBlocks(path)
	if err != nil {
		t.Fatalf("ParseBlocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	first := blocks[0]
	if first.Name != "hello-world" || first.Version != "2-r0" || first.Arch != "x86_64" {
		t.Errorf("unexpected first block: %+v", first)
	}
	if first.Origin != "hello-world" || first.Timestamp != "1500000000" {
		t.Errorf("unexpected origin/timestamp: %+v", first)
	}
	if first.ProviderPriority != -1 {
		t.Errorf("undeclared priority = %d, want -1", first.ProviderPriority)
	}
	wantDeps := []string{"!conflict", "so:libc.musl-x86_64.so.1"}
	if len(first.Depends) != len(wantDeps) || first.Depends[0] != wantDeps[0] || first.Depends[1] != wantDeps[1] {
		t.Errorf("depends = %v, want %v", first.Depends, wantDeps)
	}

	second := blocks[1]
	if second.ProviderPriority != 10 {
		t.Errorf("declared priority = %d, want 10", second.ProviderPriority)
	}
	if len(second.Provides) != 2 || second.Provides[0] != "hello-world" || second.Provides[1] != "cmd:hello-world" {
		t.Errorf("provides = %v, want stripped names", second.Provides)
	}
	if len(second.Depends) != 1 || second.Depends[0] != "hello-world" {
		t.Errorf("depends = %v, want [hello-world]", second.Depends)
	}
}

func TestParseBlocksVirtual(t *testing.T) {
	path := writeIndex(t, strings.Join([]string{
		"A:noarch",
		"P:.makedepends-hello",
		"V:0",
		"",
	}, "\n"))

	blocks, err := ParseBlocks(path)
	if err != nil {
		t.Fatalf("ParseBlocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if !blocks[0].Virtual() {
		t.Errorf("block without timestamp should be virtual")
	}
}

func TestParseBlocksErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name: "key twice",
			content: strings.Join([]string{
				"A:x86_64",
				"P:test",
				"P:test",
				"V:2",
				"",
			}, "\n"),
			wantMsg: "specified twice",
		},
		{
			name: "required key missing",
			content: strings.Join([]string{
				"P:test",
				"V:2",
				"",
			}, "\n"),
			wantMsg: "missing required key",
		},
		{
			name: "new line missing",
			content: strings.Join([]string{
				"A:x86_64",
				"P:test",
				"V:2",
			}, "\n"),
			wantMsg: "does not end with a new line",
		},
		{
			name: "priority not a number",
			content: strings.Join([]string{
				"A:x86_64",
				"P:test",
				"V:2",
				"t:1500000000",
				"k:banana",
				"",
			}, "\n"),
			wantMsg: "not a number",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeIndex(t, tt.content)
			_, err := ParseBlocks(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !apkerr.Is(err, apkerr.ErrCodeInvalidIndex) {
				t.Errorf("error code = %v, want INVALID_INDEX", apkerr.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseBlocksMissingFile(t *testing.T) {
	_, err := ParseBlocks(filepath.Join(t.TempDir(), "nope"))
	if !apkerr.Is(err, apkerr.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", apkerr.GetCode(err))
	}
}

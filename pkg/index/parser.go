package index

import (
	"os"
	"strconv"
	"strings"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
)

// blockKeys maps the single-letter APKINDEX keys to field names. Keys
// outside this table are ignored.
var blockKeys = map[byte]string{
	'A': "arch",
	'D': "depends",
	'o': "origin",
	'P': "pkgname",
	'p': "provides",
	'k': "provider_priority",
	't': "timestamp",
	'V': "version",
}

// constraintOperators in the order they are probed when cutting version
// constraints off dependency and provides entries. The entry is cut at
// the first occurrence of the first operator found, so "pkg<=2" becomes
// "pkg<" (the "=" is probed before the "<").
var constraintOperators = []string{">", "=", "<", "~"}

// StripConstraint removes a trailing version constraint from a
// dependency or provides entry, returning the bare name.
func StripConstraint(entry string) string {
	for _, op := range constraintOperators {
		if i := strings.Index(entry, op); i >= 0 {
			return entry[:i]
		}
	}
	return entry
}

// splitLines splits raw file content the way a line-oriented reader
// would: the artifact element after a trailing newline is dropped, so a
// well-formed file ending in "\n\n" yields a final empty line marking
// the end of the last block.
func splitLines(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// parseNextBlock parses one block starting at lines[*cursor], advancing
// the cursor past the terminating blank line. It returns (nil, nil) at
// end of input. Structural problems are fatal: a key appearing twice, a
// missing required key, or a final block not terminated by a blank line
// all indicate a corrupt index.
func parseNextBlock(path string, lines []string, cursor *int) (*Package, error) {
	raw := make(map[string]string)
	terminated := false

	i := *cursor
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			i++
			terminated = true
			break
		}
		if len(line) < 2 || line[1] != ':' {
			continue
		}
		field, ok := blockKeys[line[0]]
		if !ok {
			continue
		}
		if _, dup := raw[field]; dup {
			return nil, apkerr.New(apkerr.ErrCodeInvalidIndex,
				"key %q (%c:) specified twice in block starting at line %d of %s",
				field, line[0], *cursor+1, path)
		}
		raw[field] = line[2:]
	}
	*cursor = i

	if !terminated {
		if len(raw) == 0 {
			return nil, nil
		}
		return nil, apkerr.New(apkerr.ErrCodeInvalidIndex,
			"last block in %s does not end with a new line, delete the file and try again", path)
	}

	for _, field := range []string{"arch", "pkgname", "version"} {
		if _, ok := raw[field]; !ok {
			return nil, apkerr.New(apkerr.ErrCodeInvalidIndex,
				"missing required key %q in block ending at line %d of %s", field, *cursor, path)
		}
	}

	pkg := &Package{
		Name:             raw["pkgname"],
		Version:          raw["version"],
		Arch:             raw["arch"],
		Origin:           raw["origin"],
		Timestamp:        raw["timestamp"],
		ProviderPriority: -1,
	}
	if deps := raw["depends"]; deps != "" {
		for _, entry := range strings.Fields(deps) {
			pkg.Depends = append(pkg.Depends, StripConstraint(entry))
		}
	}
	if provs := raw["provides"]; provs != "" {
		for _, entry := range strings.Fields(provs) {
			pkg.Provides = append(pkg.Provides, StripConstraint(entry))
		}
	}
	if prio, ok := raw["provider_priority"]; ok {
		n, err := strconv.Atoi(prio)
		if err != nil {
			return nil, apkerr.New(apkerr.ErrCodeInvalidIndex,
				"provider priority %q of package %s in %s is not a number", prio, pkg.Name, path)
		}
		pkg.ProviderPriority = n
	}
	return pkg, nil
}

// ParseBlocks reads an index file and returns every block, including
// virtual packages, in file order. It does not consult the cache.
func ParseBlocks(path string) ([]*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apkerr.Wrap(apkerr.ErrCodeFileNotFound, err, "read index %s", path)
	}
	return parseBlocks(path, data)
}

func parseBlocks(path string, data []byte) ([]*Package, error) {
	lines := splitLines(data)
	var blocks []*Package
	cursor := 0
	for {
		pkg, err := parseNextBlock(path, lines, &cursor)
		if err != nil {
			return nil, err
		}
		if pkg == nil {
			return blocks, nil
		}
		blocks = append(blocks, pkg)
	}
}

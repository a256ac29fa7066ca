package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// coreImports returns the imports of every non-test file in pkg/core, keyed by file name.
func coreImports(t *testing.T) map[string][]string {
	t.Helper()

	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatalf("Failed to read core directory: %v", err)
	}

	fset := token.NewFileSet()
	imports := make(map[string][]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		f, err := parser.ParseFile(fset, filepath.Join(".", name), nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", name, err)
			continue
		}
		for _, imp := range f.Imports {
			imports[name] = append(imports[name], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return imports
}

// TestCoreImportsOnlyStdlib verifies pkg/core stays a leaf: stdlib imports only,
// so providers, the site generator and the UI can all depend on it.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	for file, paths := range coreImports(t) {
		for _, p := range paths {
			// stdlib paths have no dot in their first element
			if first, _, _ := strings.Cut(p, "/"); strings.Contains(first, ".") {
				t.Errorf("%s imports non-stdlib package: %s", file, p)
			}
		}
	}
}

// TestCoreDoesNotImportInternal verifies pkg/core doesn't reach into internal packages.
func TestCoreDoesNotImportInternal(t *testing.T) {
	for file, paths := range coreImports(t) {
		for _, p := range paths {
			if strings.Contains(p, "/internal/") || strings.HasPrefix(p, "internal/") {
				t.Errorf("%s imports internal package: %s (core must not import internal packages)", file, p)
			}
		}
	}
}

package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/leapstack-labs/ifclint"

// imports returns the import paths of the non-test Go files in dir.
func imports(t *testing.T, dir string) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			out[path] = append(out[path], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return out
}

// TestCoreImportsOnlyStdlib verifies pkg/core depends on nothing but the
// standard library, so every other package can import it.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	for file, paths := range imports(t, ".") {
		for _, p := range paths {
			if strings.Contains(p, ".") {
				t.Errorf("%s imports forbidden package: %s", file, p)
			}
		}
	}
}

// TestPkgDoesNotImportInternal verifies no pkg/ package reaches into internal/.
func TestPkgDoesNotImportInternal(t *testing.T) {
	err := filepath.WalkDir("..", func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		for file, paths := range imports(t, path) {
			for _, p := range paths {
				if strings.HasPrefix(p, modulePath+"/internal/") {
					t.Errorf("%s imports internal package: %s", file, p)
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk pkg: %v", err)
	}
}

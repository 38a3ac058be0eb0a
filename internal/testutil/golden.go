package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// updateEnv names the environment variable that rewrites golden files
// instead of comparing against them.
const updateEnv = "TASKFLOW_UPDATE_GOLDEN"

// GoldenString compares got with testdata/<name>.golden. Line endings are
// normalized so files checked out on Windows still match.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(updateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create testdata: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v (set %s=1 to create it)\ngot:\n%s", path, err, updateEnv, got)
	}
	if normalized := strings.ReplaceAll(string(want), "\r\n", "\n"); normalized != got {
		t.Errorf("%s mismatch\nwant:\n%s\ngot:\n%s", name, normalized, got)
	}
}

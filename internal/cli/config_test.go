package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/shelfspace/pkg/errors"
)

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	out, err := runCLI(t, dir, "config", "path")
	if err != nil || strings.TrimSpace(out) != cfgPath {
		t.Errorf("config path = %q, %v; want %q", out, err, cfgPath)
	}

	out, err = runCLI(t, dir, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"[geometry]", "shelf_height = 300.0", filepath.Join(dir, "library.json")} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, dir, "--store", "memory", "config", "show"); err != nil {
		t.Errorf("--store memory error = %v", err)
	}
	if _, err := runCLI(t, dir, "--store", "floppy", "config", "show"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("--store floppy error = %v, want INVALID_CONFIG", err)
	}

	if _, err := runCLI(t, dir, "config", "init"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("config init over an existing file error = %v", err)
	}
	if _, err := runCLI(t, dir, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force error = %v", err)
	}
	data, _ := os.ReadFile(cfgPath)
	if !strings.Contains(string(data), "localhost:8080") {
		t.Errorf("config init wrote:\n%s", data)
	}
}

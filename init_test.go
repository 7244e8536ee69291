package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/templateloader/internal/options"
)

// TestGenerateConfigParses verifies that the generated file is accepted by
// the strict options decoder and only sets defaults.
func TestGenerateConfigParses(t *testing.T) {
	t.Parallel()

	o, err := options.Parse([]byte(generateConfig()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.Prefix() != options.DefaultCDNPrefix {
		t.Errorf("Prefix() = %q", o.Prefix())
	}
	if o.ProductionMode || o.OptimizeSSR != nil || o.Prettify != nil || o.CompilerOptions != nil {
		t.Errorf("generated file should only set defaults: %+v", o)
	}
}

// TestGenerateConfigUncommented verifies that every documented option is a
// known key once uncommented.
func TestGenerateConfigUncommented(t *testing.T) {
	t.Parallel()

	var lines []string
	for _, line := range strings.Split(generateConfig(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, ":") && !strings.Contains(line, ".") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	o, err := options.Parse([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Parse uncommented: %v", err)
	}
	if o.OptimizeSSR == nil || !*o.OptimizeSSR {
		t.Error("optimizeSSR not decoded")
	}
	if len(o.TransformAssetURLs["video"]) != 2 {
		t.Errorf("transformAssetUrls = %v", o.TransformAssetURLs)
	}
}

func TestInitDryRun(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run"}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if stdout.String() != generateConfig() {
		t.Error("dry run should print the generated file")
	}
}

func TestInitWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "templateloader.yaml")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != generateConfig() {
		t.Error("written file differs from generated config")
	}
	if !strings.Contains(stderr.String(), "wrote options to") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "templateloader.yaml")
	if err := os.WriteFile(path, []byte("cdnPrefix: mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for existing file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "cdnPrefix: mine\n" {
		t.Error("existing file was modified")
	}

	if err := runInit([]string{"-force", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit -force: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != generateConfig() {
		t.Error("-force should overwrite")
	}
}

//go:build mage

// Package main contains Mage build targets for filepopulator developer tooling.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/filepopulator/internal/populate"
	"github.com/pdiddy/filepopulator/pkg/types"
)

const (
	binDir    = "bin"
	binName   = "filepopulator"
	cmdPkg    = "./cmd/filepopulator"
	sampleDir = "sample"
)

// Build compiles the CLI binary into bin/. The version is taken from
// `git describe` when available.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Sample writes a small specification document and a matching config file
// into sample/.
func Sample() error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}

	doc := strings.Join([]string{
		"The project consists of the files below.",
		"",
		`<file path="hello/main.go">`,
		"```go",
		"package main",
		"",
		`import "fmt"`,
		"",
		"func main() {",
		`	fmt.Println("hello")`,
		"}",
		"```",
		"</file>",
		"",
		`<file path="hello/README.md">`,
		"Run `go run ./hello`. This declaration has no fenced block and is skipped.",
		"</file>",
		"",
	}, "\n")
	docPath := filepath.Join(sampleDir, populate.DefaultInputFile)
	if err := os.WriteFile(docPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", docPath, err)
	}

	cfg := types.PopulateConfig{
		InputFile: populate.DefaultInputFile,
		OutDir:    "out",
		NextSteps: []string{"cd out/hello", "go run ."},
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling sample config: %w", err)
	}
	cfgPath := filepath.Join(sampleDir, "filepopulator.yaml")
	if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfgPath, err)
	}

	fmt.Println("  ", docPath)
	fmt.Println("  ", cfgPath)
	return nil
}

// Demo builds the binary and runs it against the sample document.
func Demo() error {
	mg.Deps(Build, Sample)
	bin, err := filepath.Abs(filepath.Join(binDir, binName))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", binName, err)
	}
	return runIn(sampleDir, os.Stdout, bin)
}

// runIn runs name with args in dir without changing the working directory
// of the mage process.
func runIn(dir string, stdout io.Writer, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s in %s: %w", filepath.Base(name), dir, err)
	}
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports whether a directory should be left out of the metrics.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == binDir || name == sampleDir)
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords walks the tree and counts words in .md and .yaml files.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package populate materializes the file declarations of a specification
// document as files on disk.
//
// A specification document holds blocks of the form
//
//	<file path="src/main.py">
//	```python
//	print("hi")
//	```
//	</file>
//
// Each block names a target path relative to the output directory and
// carries the file content in a fenced code block. Declarations are
// processed in document order; a declaration that fails never stops the
// ones after it.
package populate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/filepopulator/pkg/types"
)

// DefaultInputFile is the specification document read when none is given.
const DefaultInputFile = "files.txt"

// DefaultNextSteps are the follow-up instructions printed after a run that
// created at least one file.
var DefaultNextSteps = []string{
	"Navigate to the 'nearby-nearby-admin' directory: cd nearby-nearby-admin",
	"Create a '.env.local' file from '.env' and set your ADMIN_PASSWORD.",
	"Install dependencies: npm install",
	"Run the development environment: docker-compose up --build",
}

const separator = "-------------------------------------------------"

var (
	// ErrInputUnavailable wraps any failure to read the specification document.
	ErrInputUnavailable = errors.New("specification document unavailable")

	// ErrUnsafePath marks a declared path that is absolute or leaves the
	// output directory.
	ErrUnsafePath = errors.New("path escapes the output directory")
)

// Outcome is the result of materializing one declaration.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
	OutcomeRejected Outcome = "rejected"
)

// BatchResult holds the outcome of one run over a document.
type BatchResult struct {
	Created  int
	Skipped  int
	Failed   int
	Rejected int
}

// Total returns the number of declarations processed.
func (r BatchResult) Total() int {
	return r.Created + r.Skipped + r.Failed + r.Rejected
}

// HasFailures reports whether any declaration could not be written.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Rejected > 0
}

// lineEndings normalizes CRLF and lone CR to LF.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ReadDocument returns the full text of the specification document at path
// with line endings normalized to LF. Any failure is wrapped with
// ErrInputUnavailable.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	return lineEndings.Replace(string(data)), nil
}

// ResolvePath maps a declared path to the path written on disk. Unless
// allowUnsafe is set, absolute paths and paths that climb out of outDir are
// rejected with ErrUnsafePath.
func ResolvePath(declared, outDir string, allowUnsafe bool) (string, error) {
	p := filepath.FromSlash(declared)
	if filepath.IsAbs(p) {
		if !allowUnsafe {
			return "", fmt.Errorf("%w: %q is absolute", ErrUnsafePath, declared)
		}
		return p, nil
	}

	cleaned := filepath.Clean(p)
	if !allowUnsafe && (cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator))) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, declared)
	}

	if outDir == "" {
		outDir = "."
	}
	return filepath.Join(outDir, p), nil
}

// PopulateFile materializes a single declaration, printing one status line
// per decision to w. Parent directories are created as needed and an
// existing file at the target is overwritten.
func PopulateFile(d Declaration, cfg types.PopulateConfig, w io.Writer) Outcome {
	if !d.HasPayload {
		fmt.Fprintf(w, "  - WARNING: Could not find a ```code``` block in %s. Skipping.\n", d.Path)
		return OutcomeSkipped
	}

	target, err := ResolvePath(d.Path, cfg.OutDir, cfg.AllowUnsafePaths)
	if err != nil {
		fmt.Fprintf(w, "  - ERROR: Refusing to write '%s'. Reason: %v\n", d.Path, err)
		return OutcomeRejected
	}

	// Only the declared directory part is reported.
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(w, "  - ERROR: Could not write file '%s'. Reason: %v\n", d.Path, err)
			return OutcomeFailed
		}
		if declaredDir := filepath.Dir(filepath.FromSlash(d.Path)); declaredDir != "." {
			fmt.Fprintf(w, "  - Directory '%s' created or already exists.\n", declaredDir)
		}
	}

	if err := os.WriteFile(target, []byte(d.Payload), 0o644); err != nil {
		fmt.Fprintf(w, "  - ERROR: Could not write file '%s'. Reason: %v\n", d.Path, err)
		return OutcomeFailed
	}

	fmt.Fprintf(w, "  - SUCCESS: Created file '%s'\n", d.Path)
	return OutcomeCreated
}

// PopulateBatch materializes decls in order and tallies the outcomes.
func PopulateBatch(decls []Declaration, cfg types.PopulateConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, d := range decls {
		switch PopulateFile(d, cfg, w) {
		case OutcomeCreated:
			result.Created++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeFailed:
			result.Failed++
		case OutcomeRejected:
			result.Rejected++
		}
	}
	return result
}

// Run reads the document named by cfg.InputFile, materializes every
// declaration in it and prints the summary. The only error returned wraps
// ErrInputUnavailable; per-file failures are reported on w and counted.
func Run(cfg types.PopulateConfig, w io.Writer) (BatchResult, error) {
	input := cfg.InputFile
	if input == "" {
		input = DefaultInputFile
	}

	fmt.Fprintf(w, "Reading project specification from: %s\n", input)
	content, err := ReadDocument(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "ERROR: The file '%s' was not found.\n", input)
			fmt.Fprintf(w, "Please save the <files> block into a file named '%s' in the current directory.\n", input)
		} else {
			fmt.Fprintf(w, "ERROR: Could not read '%s'. Reason: %v\n", input, err)
		}
		return BatchResult{}, err
	}

	result := PopulateBatch(Parse(content), cfg, w)
	PrintSummary(w, result, input, cfg.NextSteps)
	return result, nil
}

// PrintSummary writes the end-of-run report. Next steps are printed only
// when at least one file was created; nil nextSteps means DefaultNextSteps.
func PrintSummary(w io.Writer, result BatchResult, input string, nextSteps []string) {
	if nextSteps == nil {
		nextSteps = DefaultNextSteps
	}

	fmt.Fprintf(w, "\n%s\n", separator)
	if result.Created > 0 {
		noun, verb := "files", "were"
		if result.Created == 1 {
			noun, verb = "file", "was"
		}
		fmt.Fprintf(w, "Project creation complete. %d %s %s created.\n", result.Created, noun, verb)
		if result.Skipped+result.Failed+result.Rejected > 0 {
			fmt.Fprintf(w, "(%d skipped, %d failed, %d rejected)\n", result.Skipped, result.Failed, result.Rejected)
		}
		if len(nextSteps) > 0 {
			fmt.Fprintln(w, "Next steps:")
			for i, step := range nextSteps {
				fmt.Fprintf(w, "%d. %s\n", i+1, step)
			}
		}
	} else {
		fmt.Fprintf(w, "No files were created. Please check the format of '%s'.\n", input)
	}
	fmt.Fprintln(w, separator)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration shared between the CLI and the
// populate stage.
package types

// PopulateConfig holds settings for one populate run.
type PopulateConfig struct {
	// InputFile is the specification document to read (default "files.txt").
	InputFile string `json:"input_file" yaml:"input_file"`

	// OutDir is the directory declared paths are resolved against
	// (default ".", the current working directory).
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// AllowUnsafePaths writes absolute paths and paths containing parent
	// segments that leave OutDir instead of rejecting them.
	AllowUnsafePaths bool `json:"allow_unsafe_paths" yaml:"allow_unsafe_paths"`

	// NextSteps are the follow-up instructions printed after a successful run.
	NextSteps []string `json:"next_steps" yaml:"next_steps"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/filepopulator/internal/populate"
	"github.com/pdiddy/filepopulator/pkg/types"
)

// execute runs the root command with args inside dir and returns its output.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	chdir(t, dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := loadConfig(v)
	assert.Equal(t, types.PopulateConfig{
		InputFile: "files.txt",
		OutDir:    ".",
		NextSteps: populate.DefaultNextSteps,
	}, cfg)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filepopulator.yaml")
	content := "input_file: spec.txt\nout_dir: generated\nallow_unsafe_paths: true\nnext_steps:\n  - go mod tidy\n  - go test ./...\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg := loadConfig(v)
	assert.Equal(t, "spec.txt", cfg.InputFile)
	assert.Equal(t, "generated", cfg.OutDir)
	assert.True(t, cfg.AllowUnsafePaths)
	assert.Equal(t, []string{"go mod tidy", "go test ./..."}, cfg.NextSteps)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("FILEPOPULATOR_OUT_DIR", "from-env")

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FILEPOPULATOR")
	v.AutomaticEnv()

	assert.Equal(t, "from-env", loadConfig(v).OutDir)
}

func TestRootCommand_Populates(t *testing.T) {
	dir := t.TempDir()
	doc := "<file path=\"src/main.py\">\n```python\nprint(\"hi\")\n```\n</file>\n" +
		"<file path=\"README.md\">\nno code\n</file>\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.txt"), []byte(doc), 0o644))

	out, err := execute(t, dir, "--input", "spec.txt", "--out-dir", "project")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "project", "src", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, `print("hi")`, string(data))
	assert.NoFileExists(t, filepath.Join(dir, "project", "README.md"))
	assert.Contains(t, out, "1 file was created.")
}

func TestRootCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "--input", "files.txt", "--out-dir", "project")
	require.Error(t, err)
	assert.ErrorIs(t, err, populate.ErrInputUnavailable)
	assert.Contains(t, out, "ERROR: The file 'files.txt' was not found.")
	assert.NoDirExists(t, filepath.Join(dir, "project"))
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, t.TempDir(), "--input", "files.txt", "--out-dir", ".", "extra")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "config", "--input", "doc.txt", "--out-dir", "dest")
	require.NoError(t, err)

	var cfg types.PopulateConfig
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "doc.txt", cfg.InputFile)
	assert.Equal(t, "dest", cfg.OutDir)
	assert.NotEmpty(t, cfg.NextSteps)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "filepopulator dev\n", out)
}

// helperEnv switches the test binary into running main with the arguments
// that follow "--".
const helperEnv = "GO_FILEPOPULATOR_MAIN"

func TestMainHelper(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		t.Skip("run as a subprocess by TestMain_ExitCode")
	}
	args := []string{"filepopulator"}
	for i, a := range os.Args {
		if a == "--" {
			args = append(args, os.Args[i+1:]...)
			break
		}
	}
	os.Args = args
	main()
	os.Exit(0)
}

// runMain executes main in a subprocess rooted at dir and returns its exit
// code, stdout and stderr.
func runMain(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], append([]string{"-test.run=^TestMainHelper$", "--"}, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), helperEnv+"=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "running subprocess: %v", err)
		code = exitErr.ExitCode()
	}
	return code, stdout.String(), stderr.String()
}

func TestMain_ExitCode(t *testing.T) {
	t.Run("missing input exits 1 and reports once", func(t *testing.T) {
		dir := t.TempDir()

		code, stdout, stderr := runMain(t, dir)
		assert.Equal(t, 1, code)
		assert.Contains(t, stdout, "ERROR: The file 'files.txt' was not found.")
		assert.NotContains(t, stderr, "Error:")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("completed run exits 0", func(t *testing.T) {
		dir := t.TempDir()
		doc := "<file path=\"src/main.py\">\n```python\nprint(\"hi\")\n```\n</file>\n" +
			"<file path=\"README.md\">\nno code\n</file>\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "files.txt"), []byte(doc), 0o644))

		code, stdout, _ := runMain(t, dir)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "1 file was created.")

		data, err := os.ReadFile(filepath.Join(dir, "src", "main.py"))
		require.NoError(t, err)
		assert.Equal(t, `print("hi")`, string(data))
		assert.NoFileExists(t, filepath.Join(dir, "README.md"))
	})

	t.Run("invalid command line exits 1", func(t *testing.T) {
		code, _, stderr := runMain(t, t.TempDir(), "--no-such-flag")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "Error:")
	})
}

// chdir changes the working directory to dir for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("chdir: restoring %s: %v", prev, err)
		}
	})
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the filepopulator CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filepopulator/internal/populate"
	"github.com/pdiddy/filepopulator/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the populate pass when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "filepopulator",
	Short: "Create files from the <file> blocks of a specification document",
	Long: `filepopulator reads a specification document (files.txt by default) and
writes every <file path="..."> block it finds to disk. The content of each
file is taken from the first fenced code block inside its declaration;
parent directories are created as needed and existing files are
overwritten.

Declarations without a fenced block are skipped with a warning. A file that
cannot be written is reported and the run continues with the next one.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:         runPopulate,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./filepopulator.yaml or ~/.config/filepopulator/config.yaml)")
	pf.StringP("input", "i", populate.DefaultInputFile, "specification document to read")
	pf.StringP("out-dir", "o", ".", "directory declared paths are resolved against")
	pf.Bool("allow-unsafe-paths", false, "write absolute paths and paths that leave the output directory")

	_ = viper.BindPFlag("input_file", pf.Lookup("input"))
	_ = viper.BindPFlag("out_dir", pf.Lookup("out-dir"))
	_ = viper.BindPFlag("allow_unsafe_paths", pf.Lookup("allow-unsafe-paths"))
	setDefaults(viper.GetViper())
}

// setDefaults registers the values used when neither a flag, the
// environment nor the config file sets a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input_file", populate.DefaultInputFile)
	v.SetDefault("out_dir", ".")
	v.SetDefault("allow_unsafe_paths", false)
	v.SetDefault("next_steps", populate.DefaultNextSteps)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("filepopulator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "filepopulator"))
		}
	}

	viper.SetEnvPrefix("FILEPOPULATOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective populate settings from v.
func loadConfig(v *viper.Viper) types.PopulateConfig {
	return types.PopulateConfig{
		InputFile:        v.GetString("input_file"),
		OutDir:           v.GetString("out_dir"),
		AllowUnsafePaths: v.GetBool("allow_unsafe_paths"),
		NextSteps:        v.GetStringSlice("next_steps"),
	}
}

func runPopulate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	_, err := populate.Run(cfg, cmd.OutOrStdout())
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// populate.Run has already reported an unreadable input.
		if !errors.Is(err, populate.ErrInputUnavailable) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

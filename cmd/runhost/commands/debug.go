package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opencode-ai/runhost/internal/config"
)

var (
	debugYAML  bool
	debugForce bool
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug utilities",
	Long:  `Debug utilities for troubleshooting runhost configuration.`,
}

var debugConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE:  runDebugConfig,
}

var debugPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show system paths",
	RunE:  runDebugPaths,
}

var debugInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the runhost directories and a default global config",
	RunE:  runDebugInit,
}

func init() {
	debugConfigCmd.Flags().BoolVar(&debugYAML, "yaml", false, "Print YAML instead of JSON")
	debugInitCmd.Flags().BoolVar(&debugForce, "force", false, "Overwrite an existing global config")

	debugCmd.AddCommand(debugConfigCmd)
	debugCmd.AddCommand(debugPathsCmd)
	debugCmd.AddCommand(debugInitCmd)
}

func runDebugConfig(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(configDir)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}

	var data []byte
	if debugYAML {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runDebugPaths(cmd *cobra.Command, args []string) error {
	paths := config.GetPaths()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "runhost System Paths:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Config:   %s\n", paths.Config)
	fmt.Fprintf(out, "  State:    %s\n", paths.State)
	fmt.Fprintf(out, "  Log:      %s\n", paths.LogPath())
	fmt.Fprintf(out, "  Global:   %s\n", config.GlobalConfigPath())

	return nil
}

func runDebugInit(cmd *cobra.Command, args []string) error {
	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	path := config.GlobalConfigPath()
	if _, err := os.Stat(path); err == nil && !debugForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

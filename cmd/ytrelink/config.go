package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"ytrelink/pkg/backup"
	"ytrelink/pkg/checkpoint"
	"ytrelink/pkg/config"
	"ytrelink/pkg/mutator"
	"ytrelink/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage ytrelink configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (YTRELINK_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'ytrelink.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run:   runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate configuration for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields and value ranges
  - That no replacement contains a target, which would rewrite forever
  - That the state and log directories can be created`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# ytrelink configuration file
#
# Every option can also be set through environment variables prefixed with
# YTRELINK_, for example YTRELINK_MAX_PER_RUN=50 or YTRELINK_DRY_RUN=true.

youtube:
  # Data API base URL
  api_base_url: "https://www.googleapis.com/youtube/v3"

  # Playlist to walk. Leave empty to use the channel's uploads playlist.
  playlist_id: ""

  # Stored account from 'ytrelink auth login'. Empty picks the default.
  account: ""

  # Per-request timeout
  timeout: 30s

rewrite:
  # Substrings replaced, in this order
  targets:
    - "https://discord.com/invite/fUKMN3q"
    - "https://discord.gg/4ZgjkRx"

  # Written in place of every target. Must not contain any target.
  replacement: "https://discord.gg/mrJnesCk2Z"

run:
  # Videos processed per run, rounded up to a whole page. 0 means no limit.
  max_per_run: 200

  # Report changes without writing
  dry_run: false

  # Pause after each description update
  write_delay: 1s

  # Playlist items per page (1-50)
  page_size: 50

state:
  # Resumption checkpoint. Empty uses the data directory.
  checkpoint_file: ""

  # CSV backup of original descriptions. Empty uses the data directory.
  backup_file: ""

rate_limit:
  # Pacing for list and get calls. 0 disables pacing.
  reads_per_minute: 300
  burst: 10

logging:
  # debug, info, warn, error
  level: "info"

  # Optional log file, in addition to the console
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "ytrelink.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the targets and replacement")
	fmt.Println("2. Run 'ytrelink auth login' to authorize your channel")
	fmt.Println("3. Run 'ytrelink run --dry-run' to preview changes")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (YTRELINK_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var problems []string
	var warnings []string

	if _, err := mutator.NewRewriter(cfg.Rewrite.Targets, cfg.Rewrite.Replacement); err != nil {
		problems = append(problems, err.Error())
	}

	checkpointPath, err := config.ResolveDataPath(cfg.State.CheckpointFile, checkpoint.DefaultFileName)
	if err != nil {
		problems = append(problems, fmt.Sprintf("Cannot resolve checkpoint path: %v", err))
	}
	backupPath, err := config.ResolveDataPath(cfg.State.BackupFile, backup.DefaultFileName)
	if err != nil {
		problems = append(problems, fmt.Sprintf("Cannot resolve backup path: %v", err))
	}
	for _, path := range []string{checkpointPath, backupPath, cfg.Logging.File} {
		if path == "" {
			continue
		}
		if err := ensureParentDir(path); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if cfg.Run.MaxPerRun == 0 {
		warnings = append(warnings, "max_per_run is 0, a single run will walk the whole playlist")
	}
	if cfg.Run.WriteDelay == 0 && !cfg.Run.DryRun {
		warnings = append(warnings, "write_delay is 0, updates will be sent back to back")
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	playlist := cfg.YouTube.PlaylistID
	if playlist == "" {
		playlist = "(channel uploads)"
	}
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Playlist: %s\n", playlist)
	fmt.Printf("  Targets: %d\n", len(cfg.Rewrite.Targets))
	fmt.Printf("  Replacement: %s\n", cfg.Rewrite.Replacement)
	fmt.Printf("  Max per run: %d\n", cfg.Run.MaxPerRun)
	fmt.Printf("  Write delay: %s\n", cfg.Run.WriteDelay)
	fmt.Printf("  Checkpoint: %s\n", checkpointPath)
	fmt.Printf("  Backup: %s\n", backupPath)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

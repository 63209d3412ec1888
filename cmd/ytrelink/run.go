package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"ytrelink/pkg/auth"
	"ytrelink/pkg/config"
	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/relink"
	"ytrelink/pkg/ui"
)

var (
	maxPerRun      int
	dryRun         bool
	writeDelay     time.Duration
	targets        []string
	replacement    string
	playlistID     string
	accountName    string
	checkpointFile string
	backupFile     string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the next batch of videos",
	Long: `Process videos from the playlist, starting where the previous run stopped.

For every page of videos:
  1. The current descriptions are appended to the CSV backup
  2. Descriptions containing a target link are rewritten and saved
  3. The next page token is written to the checkpoint file

The run stops when --max-per-run videos have been processed or the playlist
is exhausted. Once the playlist is exhausted the checkpoint is removed, so
the next run starts over from the first page.

When no playlist is given, the uploads playlist of the authorized channel
is used.`,
	Example: `  # Process up to 200 videos from the channel's uploads
  ytrelink run

  # Preview what would change without writing
  ytrelink run --dry-run

  # Process everything left in one go
  ytrelink run --max-per-run 0

  # Custom links
  ytrelink run --target https://discord.gg/old --replacement https://discord.gg/new`,
	Args: cobra.NoArgs,
	Run:  runRelink,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&maxPerRun, "max-per-run", "n", 200, "maximum videos to process this run (0 = no limit)")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing them")
	runCmd.Flags().DurationVar(&writeDelay, "delay", time.Second, "pause after each description update")
	runCmd.Flags().StringArrayVarP(&targets, "target", "t", nil, "link to replace (repeatable, applied in order)")
	runCmd.Flags().StringVarP(&replacement, "replacement", "r", "", "link to write in place of every target")
	runCmd.Flags().StringVarP(&playlistID, "playlist", "p", "", "playlist ID (default: the channel's uploads)")
	runCmd.Flags().StringVarP(&accountName, "account", "a", "", "stored account to authorize with")
	runCmd.Flags().StringVar(&checkpointFile, "state-file", "", "checkpoint file path")
	runCmd.Flags().StringVar(&backupFile, "backup-file", "", "CSV backup file path")
}

// runFlags collects the flags the user actually set
func runFlags(cmd *cobra.Command) map[string]interface{} {
	flags := globalFlags()
	changed := cmd.Flags().Changed

	if changed("max-per-run") {
		flags["max-per-run"] = maxPerRun
	}
	if changed("dry-run") {
		flags["dry-run"] = dryRun
	}
	if changed("delay") {
		flags["write-delay"] = writeDelay
	}
	if changed("target") {
		flags["targets"] = targets
	}
	if changed("replacement") {
		flags["replacement"] = replacement
	}
	if changed("playlist") {
		flags["playlist"] = playlistID
	}
	if changed("account") {
		flags["account"] = accountName
	}
	if changed("state-file") {
		flags["checkpoint-file"] = checkpointFile
	}
	if changed("backup-file") {
		flags["backup-file"] = backupFile
	}
	return flags
}

func runRelink(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, runFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("ytrelink starting")

	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	cred, err := manager.Retrieve(cfg.YouTube.Account)
	if err != nil {
		log.WithError(err).Error("No credentials found")
		ui.PrintError("No YouTube credentials found", err.Error())
		fmt.Println("\nTo authorize this tool, run:")
		fmt.Println("  ytrelink auth login")
		fmt.Println("\nFor CI, set environment variables instead:")
		fmt.Printf("  export %s=...\n", auth.EnvClientID)
		fmt.Printf("  export %s=...\n", auth.EnvClientSecret)
		fmt.Printf("  export %s=...\n", auth.EnvRefreshToken)
		os.Exit(1)
	}
	ui.PrintInfo("Using account", cred.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Refreshed access tokens go back to the store the credential came from;
	// environment credentials have nowhere to go.
	var save func(*auth.Credential) error
	if !fromEnvironment(cred) {
		save = manager.Update
	}
	httpClient := auth.HTTPClient(ctx, cred, auth.GoogleEndpoint, save)
	httpClient.Timeout = cfg.YouTube.Timeout

	runner, err := relink.NewFromConfig(cfg, httpClient, log)
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}
	runner.SetReporter(ui.NewProgressDisplay(os.Stdout, cfg.Run.DryRun))

	if _, err := runner.Run(ctx); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			ui.PrintWarning("Interrupted, progress up to the last finished page is saved")
		case errs.IsType(err, errs.ErrorTypeRateLimit):
			ui.PrintError("YouTube quota exhausted, try again after the daily reset", err.Error())
		case errs.IsType(err, errs.ErrorTypeAuth):
			ui.PrintError("Authorization failed, run 'ytrelink auth login' again", err.Error())
		default:
			ui.PrintError("RUN FAILED", err.Error())
		}
		os.Exit(1)
	}
}

// fromEnvironment reports whether cred was built from environment variables
func fromEnvironment(cred *auth.Credential) bool {
	token := os.Getenv(auth.EnvRefreshToken)
	return token != "" && token == cred.RefreshToken
}

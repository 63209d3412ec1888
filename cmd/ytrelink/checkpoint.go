package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"ytrelink/pkg/backup"
	"ytrelink/pkg/checkpoint"
	"ytrelink/pkg/config"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/ui"
)

var clearForce bool

// checkpointCmd represents the checkpoint command
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or reset run progress",
	Long: `Inspect or reset the resumption checkpoint.

The checkpoint holds the page token the next run starts from. It is
removed automatically once the whole playlist has been processed.`,
}

// checkpointShowCmd represents the checkpoint show command
var checkpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved resumption point and backup size",
	Run:   runCheckpointShow,
}

// checkpointClearCmd represents the checkpoint clear command
var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget progress so the next run starts at the first page",
	Long: `Delete the checkpoint file so the next run starts at the first page.

Already rewritten descriptions no longer contain a target, so walking them
again changes nothing. The backup file is left untouched.`,
	Run: runCheckpointClear,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)

	checkpointCmd.PersistentFlags().StringVar(&checkpointFile, "state-file", "", "checkpoint file path")
	checkpointClearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "do not ask for confirmation")
}

func loadCheckpointStore() (*config.Config, *checkpoint.Store) {
	flags := globalFlags()
	if checkpointFile != "" {
		flags["checkpoint-file"] = checkpointFile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	store, err := checkpoint.NewStore(cfg.State.CheckpointFile, logger.GetLogger())
	if err != nil {
		ui.PrintError("Failed to open checkpoint", err.Error())
		os.Exit(1)
	}
	return cfg, store
}

func runCheckpointShow(cmd *cobra.Command, args []string) {
	cfg, store := loadCheckpointStore()

	info, err := store.Info()
	if err != nil {
		ui.PrintError("Failed to read checkpoint", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Checkpoint")
	fmt.Printf("  File: %s\n", store.Path())
	if info == nil {
		fmt.Println("  Next run starts at the first page")
	} else {
		fmt.Printf("  Next page token: %s\n", info.Token)
		fmt.Printf("  Saved: %s\n", info.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	backupLog, err := backup.NewLog(cfg.State.BackupFile, logger.GetLogger())
	if err != nil {
		ui.PrintError("Failed to open backup", err.Error())
		os.Exit(1)
	}
	records, err := backupLog.ReadAll()
	if err != nil {
		ui.PrintError("Failed to read backup", err.Error())
		os.Exit(1)
	}

	fmt.Println()
	ui.PrintHighlight("Backup")
	fmt.Printf("  File: %s\n", backupLog.Path())
	fmt.Printf("  Records: %d\n", len(records))
	if len(records) > 0 {
		unique := make(map[string]struct{}, len(records))
		for _, r := range records {
			unique[r.ID] = struct{}{}
		}
		fmt.Printf("  Distinct videos: %d\n", len(unique))
	}
}

func runCheckpointClear(cmd *cobra.Command, args []string) {
	_, store := loadCheckpointStore()

	if !store.Exists() {
		ui.PrintInfo("No checkpoint", filepath.Clean(store.Path()))
		return
	}

	if !clearForce {
		fmt.Printf("Delete %s? (y/N): ", store.Path())
		var input string
		fmt.Scanln(&input)
		if input != "y" && input != "Y" && input != "yes" {
			return
		}
	}

	if err := store.Delete(); err != nil {
		ui.PrintError("Failed to clear checkpoint", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Checkpoint cleared")
}

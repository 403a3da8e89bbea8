package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftworks/idlereap/internal/config"
	"github.com/driftworks/idlereap/internal/output"
	"github.com/driftworks/idlereap/internal/store"
	"github.com/driftworks/idlereap/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show monitor status and time until self-destruct",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}

	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return err
	}
	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		fmt.Println("Daemon: running")
	} else {
		fmt.Println("Daemon: not running")
	}
	fmt.Printf("Inactivity timeout: %s\n", formatDuration(cfg.Timeout()))

	if _, err := os.Stat(cfg.JournalPath); os.IsNotExist(err) {
		fmt.Println("Last activity: unknown (no journal yet)")
		return nil
	}

	journal, err := store.New(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	last, ok, err := journal.LatestActivity()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Last activity: none recorded")
		return nil
	}

	fmt.Printf("Last activity: %s (%s)\n",
		last.Local().Format("2006-01-02 15:04:05"),
		output.FormatRelativeTime(last))

	// The journal lags the in-memory clock by up to one flush interval,
	// so this is an estimate, not the daemon's own countdown.
	if running {
		remaining := cfg.Timeout() - time.Since(last)
		if remaining < 0 {
			remaining = 0
		}
		fmt.Printf("Self-destruct in: ~%s\n", formatDuration(remaining))
	}
	return nil
}

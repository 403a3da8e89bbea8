package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftworks/idlereap/internal/config"
	"github.com/driftworks/idlereap/internal/output"
	"github.com/driftworks/idlereap/internal/store"
)

var (
	journalLimit int

	journalCmd = &cobra.Command{
		Use:   "journal",
		Short: "Show recent activity events and the last action outcome",
		RunE:  runJournal,
	}
)

func init() {
	journalCmd.Flags().IntVar(&journalLimit, "limit", 20, "maximum number of events to show")
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.JournalPath); os.IsNotExist(err) {
		fmt.Println("No journal yet. Start the monitor with 'idlereap watch <directory>'.")
		return nil
	}

	journal, err := store.New(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	events, err := journal.RecentEvents(journalLimit)
	if err != nil {
		return err
	}
	fmt.Print(output.RenderEventTable(events))

	last, err := journal.LastAction()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(output.RenderActionSummary(last))
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/autosampler/config"
	"github.com/kilianp07/autosampler/core/journal"
)

var journalQuery struct {
	vessel     string
	experiment string
	action     string
	since      time.Duration
	limit      int
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print recorded sampler actions as JSON lines",
	RunE:  runJournal,
}

func init() {
	f := journalCmd.Flags()
	f.StringVar(&journalQuery.vessel, "vessel", "", "only this vessel id")
	f.StringVar(&journalQuery.experiment, "experiment", "", "only this experiment id")
	f.StringVar(&journalQuery.action, "action", "", "only this action (run, transfer, reset, warp_stop, error)")
	f.DurationVar(&journalQuery.since, "since", 0, "only records newer than this")
	f.IntVar(&journalQuery.limit, "limit", 0, "keep the most recent records")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := journal.New(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error while closing journal: %v\n", err)
		}
	}()

	q := journal.Query{
		VesselID:     journalQuery.vessel,
		ExperimentID: journalQuery.experiment,
		Action:       journalQuery.action,
		Limit:        journalQuery.limit,
	}
	if journalQuery.since > 0 {
		q.Start = time.Now().Add(-journalQuery.since)
	}
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <input>",
		Short: "Show past validation results from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd.Context(), cmd.OutOrStdout(), args[0], limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum entries to show (0 = all)")
	return cmd
}

func (a *app) runHistory(ctx context.Context, w io.Writer, arg string, limit int) error {
	l, err := a.ledger(ctx)
	if err != nil {
		return err
	}
	if l == nil {
		return errors.New("no ledger configured; set ledger.table in the configuration file")
	}
	entries, err := l.History(ctx, arg, limit)
	if err != nil {
		return err
	}
	return a.render(w, entries, func(w io.Writer) {
		fmt.Fprintln(w, "VERSION\tCHECKED\tVALID\tRECORDS\tFLAGGED\tVIOLATIONS")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%d\t%d\n",
				e.Version, e.CheckedAt.Format(time.RFC3339), e.Valid, e.Records, e.Flagged, e.Violations)
		}
	})
}

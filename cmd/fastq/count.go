package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/fastq"
)

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <input>...",
		Short: "Count records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(a.runCount(cmd.Context(), cmd.OutOrStdout(), args))
		},
	}
}

type countResult struct {
	Source  string `json:"source"`
	Records int64  `json:"records"`
	Bytes   int64  `json:"bytes"`
}

func (a *app) runCount(ctx context.Context, w io.Writer, args []string) error {
	results := make([]countResult, 0, len(args))
	for _, arg := range args {
		progress := fastq.NewProgress(0)
		noop := func(fastq.RecordView) error { return nil }

		var err error
		if a.cfg.Input.Stream {
			_, err = a.streamRecords(ctx, arg, func(fastq.Record) error { return nil }, fastq.WithProgress(progress))
		} else {
			_, err = a.visitRecords(ctx, arg, noop, fastq.WithProgress(progress))
		}
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		results = append(results, countResult{
			Source:  arg,
			Records: progress.Records(),
			Bytes:   progress.Bytes(),
		})
	}

	return a.render(w, results, func(w io.Writer) {
		fmt.Fprintln(w, "SOURCE\tRECORDS\tSIZE")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Source, r.Records, formatBytes(r.Bytes))
		}
	})
}

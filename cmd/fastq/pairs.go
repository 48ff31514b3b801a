package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/fastq"
)

func newPairsCmd(a *app) *cobra.Command {
	var noMateCheck bool
	cmd := &cobra.Command{
		Use:   "pairs <r1> [<r2>]",
		Short: "Check that paired-end mates line up",
		Long: `Pairs reads two mate inputs side by side, or one interleaved input, and
checks that both mates of every pair share their read name (the identifier up
to the first '/').`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(a.runPairs(cmd.Context(), cmd.OutOrStdout(), args, noMateCheck))
		},
	}
	cmd.Flags().BoolVar(&noMateCheck, "no-mate-check", false, "pair records by position only")
	return cmd
}

type pairCheck struct {
	Sources     []string `json:"sources"`
	Interleaved bool     `json:"interleaved"`
	Valid       bool     `json:"valid"`
	Pairs       int      `json:"pairs"`
	Error       string   `json:"error,omitempty"`
}

type pairReader interface {
	Next() (fastq.Pair, error)
	Pairs() int
}

func (a *app) runPairs(ctx context.Context, w io.Writer, args []string, noMateCheck bool) error {
	readers := make([]fastq.RecordReader, 0, len(args))
	for _, arg := range args {
		in, _, err := a.openStream(ctx, arg)
		if err != nil {
			return err
		}
		defer in.Close()

		sr, err := fastq.NewStreamReader(in, a.cfg.Parse, fastq.WithBlockSize(a.cfg.Input.BlockSize))
		if err != nil {
			return err
		}
		defer sr.Close()
		readers = append(readers, sr)
	}

	var opts []fastq.Option
	if noMateCheck {
		opts = append(opts, fastq.WithoutMateCheck())
	}
	var pr pairReader
	if len(readers) == 1 {
		pr = fastq.NewInterleavedReader(readers[0], opts...)
	} else {
		pr = fastq.NewPairedReader(readers[0], readers[1], opts...)
	}

	res := pairCheck{Sources: args, Interleaved: len(args) == 1, Valid: true}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := pr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Valid = false
			res.Error = err.Error()
			if k := fastq.KindOf(err); k != 0 {
				a.metrics.RecordViolation(k)
			}
			a.logger.WarnContext(ctx, "pairing failed", "sources", args, "pairs", pr.Pairs(), "error", err)
			break
		}
	}
	res.Pairs = pr.Pairs()

	if err := a.render(w, res, func(w io.Writer) {
		status := "ok"
		if !res.Valid {
			status = res.Error
		}
		fmt.Fprintf(w, "%s: %d pairs, %s\n", strings.Join(args, " + "), res.Pairs, status)
	}); err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("%s: %w", strings.Join(args, ", "), errInvalidInput)
	}
	return nil
}

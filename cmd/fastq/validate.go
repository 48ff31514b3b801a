package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/fastq"
	"github.com/hupe1980/fastq/ledger"
)

// errInvalidInput is returned when validation found violations.
var errInvalidInput = errors.New("input is not valid FASTQ")

func newValidateCmd(a *app) *cobra.Command {
	var (
		maxReport int
		table     string
	)
	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Check every record and report violations with a suggested fix",
		Long: `Validate decodes the whole input, collecting every violation instead of
stopping at the first one. With --stream only the first violation is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("ledger-table") {
				a.cfg.Ledger.Table = table
			}
			return a.finish(a.runValidate(cmd.Context(), cmd.OutOrStdout(), args[0], maxReport))
		},
	}
	cmd.Flags().IntVar(&maxReport, "max-report", 20, "maximum violations to print (0 = all)")
	cmd.Flags().StringVar(&table, "ledger-table", "", "append the result to this DynamoDB validation ledger")
	return cmd
}

// violation is one entry of the JSON validation report.
type violation struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Record  int    `json:"record,omitempty"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

type validation struct {
	Source     string      `json:"source"`
	Valid      bool        `json:"valid"`
	Records    int         `json:"records"`
	Flagged    uint64      `json:"flagged"`
	Violations []violation `json:"violations"`

	errs []error
}

func (a *app) runValidate(ctx context.Context, w io.Writer, arg string, maxReport int) error {
	var (
		res validation
		err error
	)
	if a.cfg.Input.Stream {
		res, err = a.validateStream(ctx, arg)
	} else {
		res, err = a.validateLoaded(ctx, arg)
	}
	if err != nil {
		return err
	}

	if err := a.record(ctx, res); err != nil {
		return err
	}

	all := res.Violations
	if maxReport > 0 && len(res.Violations) > maxReport {
		res.Violations = res.Violations[:maxReport]
	}
	if rerr := a.render(w, res, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %d records, %d flagged, %d violation(s)\n", res.Source, res.Records, res.Flagged, len(all))
		if len(res.errs) == 0 {
			return
		}
		fmt.Fprint(w, fastq.FormatReport(res.errs[:len(res.Violations)]))
		if len(res.Violations) < len(all) {
			fmt.Fprintf(w, "... %d more\n", len(all)-len(res.Violations))
		}
	}); rerr != nil {
		return rerr
	}

	if !res.Valid {
		return fmt.Errorf("%s: %w", arg, errInvalidInput)
	}
	return nil
}

func (a *app) validateLoaded(ctx context.Context, arg string) (validation, error) {
	src, err := a.open(ctx, arg)
	if err != nil {
		return validation{}, err
	}
	defer src.Close()

	p, err := fastq.NewParser(a.cfg.Parse)
	if err != nil {
		return validation{}, err
	}
	rr := p.ParseWithRecovery(src.Bytes())

	for _, err := range rr.Errors {
		a.metrics.RecordViolation(fastq.KindOf(err))
	}
	a.logger.WithSource(src.Name()).LogRecovery(ctx, len(rr.Records), int(rr.Flagged.GetCardinality()), len(rr.Errors))

	return validation{
		Source:     src.Name(),
		Valid:      rr.OK(),
		Records:    len(rr.Records),
		Flagged:    rr.Flagged.GetCardinality(),
		Violations: violations(rr.Errors),
		errs:       rr.Errors,
	}, nil
}

func (a *app) validateStream(ctx context.Context, arg string) (validation, error) {
	in, _, err := a.openStream(ctx, arg)
	if err != nil {
		return validation{}, err
	}
	defer in.Close()

	sr, err := fastq.NewStreamReader(in, a.cfg.Parse,
		fastq.WithBlockSize(a.cfg.Input.BlockSize),
	)
	if err != nil {
		return validation{}, err
	}
	defer sr.Close()

	res := validation{Source: arg, Valid: true}
	for rec, err := range sr.All() {
		if err := ctx.Err(); err != nil {
			return validation{}, err
		}
		if err != nil {
			var pe *fastq.ParseError
			if !errors.As(err, &pe) {
				return validation{}, err
			}
			a.metrics.RecordViolation(pe.Kind)
			res.Valid = false
			res.errs = []error{err}
			res.Violations = violations(res.errs)
			break
		}
		res.Records++
		if rec.Flags != 0 {
			res.Flagged++
		}
	}
	return res, nil
}

// record appends res to the validation ledger when one is configured.
func (a *app) record(ctx context.Context, res validation) error {
	l, err := a.ledger(ctx)
	if err != nil || l == nil {
		return err
	}
	e := ledger.Entry{
		Source:     res.Source,
		Valid:      res.Valid,
		Records:    res.Records,
		Flagged:    res.Flagged,
		Violations: len(res.Violations),
	}
	if len(res.Violations) > 0 {
		e.FirstViolation = res.Violations[0].Message
	}
	stored, err := l.Append(ctx, e)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "validation recorded", "source", stored.Source, "version", stored.Version)
	return nil
}

func violations(errs []error) []violation {
	out := make([]violation, 0, len(errs))
	for _, err := range errs {
		v := violation{Message: err.Error()}
		var pe *fastq.ParseError
		if errors.As(err, &pe) {
			v.Kind = pe.Kind.String()
			v.Line = pe.Line
			v.Column = pe.Column
			v.Record = pe.Record
			v.Fix = fastq.Remediation(pe.Kind)
		}
		out = append(out, v)
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/spf13/cobra"

	"github.com/hupe1980/fastq"
	"github.com/hupe1980/fastq/scan"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <input>",
		Short: "Summarize reads, bases, GC content and quality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(a.runStats(cmd.Context(), cmd.OutOrStdout(), args[0]))
		},
	}
}

// summary is the stats command output.
type summary struct {
	Source      string  `json:"source"`
	Compression string  `json:"compression"`
	Records     int64   `json:"records"`
	Bases       int64   `json:"bases"`
	MinLength   int     `json:"min_length"`
	MaxLength   int     `json:"max_length"`
	MeanLength  float64 `json:"mean_length"`
	GCContent   float64 `json:"gc_content"`
	NContent    float64 `json:"n_content"`
	MeanQuality float64 `json:"mean_quality"`
	Encoding    string  `json:"encoding"`
	Flagged     int64   `json:"flagged"`
}

// tally accumulates per-record statistics from concurrent workers.
type tally struct {
	mu      sync.Mutex
	records int64
	bases   int64
	minLen  int
	maxLen  int
	counts  scan.NucleotideCounts
	qualSum int64
	qualLen int64
	qualLo  byte
	qualHi  byte
	flagged int64
}

func newTally() *tally {
	return &tally{minLen: math.MaxInt, qualLo: 0xFF}
}

func (t *tally) add(v fastq.RecordView) {
	counts := scan.CountNucleotides(v.Sequence)
	var sum int64
	lo, hi := byte(0xFF), byte(0)
	for _, q := range v.Quality {
		sum += int64(q)
		lo = min(lo, q)
		hi = max(hi, q)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records++
	t.bases += int64(len(v.Sequence))
	t.minLen = min(t.minLen, len(v.Sequence))
	t.maxLen = max(t.maxLen, len(v.Sequence))
	t.counts = t.counts.Add(counts)
	t.qualSum += sum
	t.qualLen += int64(len(v.Quality))
	if len(v.Quality) > 0 {
		t.qualLo = min(t.qualLo, lo)
		t.qualHi = max(t.qualHi, hi)
	}
	if v.Flags != 0 {
		t.flagged++
	}
}

func (t *tally) summary(name string, c fmt.Stringer) summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := summary{
		Source:      name,
		Compression: c.String(),
		Records:     t.records,
		Bases:       t.bases,
		MaxLength:   t.maxLen,
		Flagged:     t.flagged,
	}
	if t.records == 0 {
		s.Encoding = fastq.EncodingPhred33.String()
		return s
	}
	s.MinLength = t.minLen
	s.MeanLength = float64(t.bases) / float64(t.records)
	if t.bases > 0 {
		s.GCContent = float64(t.counts.G+t.counts.C) / float64(t.bases) * 100
		s.NContent = float64(t.counts.N) / float64(t.bases) * 100
	}
	enc := fastq.EncodingPhred33
	if t.qualLen > 0 {
		enc = fastq.DetectEncoding([]byte{t.qualLo, t.qualHi})
		s.MeanQuality = float64(t.qualSum)/float64(t.qualLen) - float64(enc.Offset())
	}
	s.Encoding = enc.String()
	return s
}

func (a *app) runStats(ctx context.Context, w io.Writer, arg string) error {
	t := newTally()

	var (
		compression fmt.Stringer
		err         error
	)
	if a.cfg.Input.Stream {
		compression, err = a.streamRecords(ctx, arg, func(r fastq.Record) error {
			t.add(r.View())
			return nil
		})
	} else {
		compression, err = a.visitRecords(ctx, arg, func(v fastq.RecordView) error {
			t.add(v)
			return nil
		})
	}
	if err != nil {
		return err
	}

	s := t.summary(arg, compression)
	return a.render(w, s, func(w io.Writer) {
		fmt.Fprintf(w, "Source:\t%s\n", s.Source)
		fmt.Fprintf(w, "Compression:\t%s\n", s.Compression)
		fmt.Fprintf(w, "Records:\t%d\n", s.Records)
		fmt.Fprintf(w, "Bases:\t%d\n", s.Bases)
		fmt.Fprintf(w, "Length:\t%d-%d (mean %.1f)\n", s.MinLength, s.MaxLength, s.MeanLength)
		fmt.Fprintf(w, "GC:\t%.2f%%\n", s.GCContent)
		fmt.Fprintf(w, "N:\t%.2f%%\n", s.NContent)
		fmt.Fprintf(w, "Quality:\t%.2f (%s)\n", s.MeanQuality, s.Encoding)
		if s.Flagged > 0 {
			fmt.Fprintf(w, "Flagged:\t%d\n", s.Flagged)
		}
	})
}

// visitRecords loads arg and calls fn concurrently for every record.
func (a *app) visitRecords(ctx context.Context, arg string, fn func(fastq.RecordView) error, optFns ...fastq.Option) (fmt.Stringer, error) {
	src, err := a.open(ctx, arg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	co, err := a.coordinator(src.Name(), optFns...)
	if err != nil {
		return nil, err
	}
	if err := co.ParseWithCallback(ctx, src.Bytes(), fn); err != nil {
		return nil, err
	}
	return src.Compression(), nil
}

// streamRecords decodes arg in constant memory and calls fn in input order.
func (a *app) streamRecords(ctx context.Context, arg string, fn func(fastq.Record) error, optFns ...fastq.Option) (fmt.Stringer, error) {
	r, compression, err := a.openStream(ctx, arg)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	co, err := a.coordinator(arg, optFns...)
	if err != nil {
		return nil, err
	}
	if err := co.ParseStream(ctx, r, fn); err != nil {
		return nil, err
	}
	return compression, nil
}

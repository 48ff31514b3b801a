package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newChunksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chunks <input>",
		Short: "Show how the input would be split between workers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(a.runChunks(cmd.Context(), cmd.OutOrStdout(), args[0]))
		},
	}
}

type chunkInfo struct {
	Index int `json:"index"`
	Start int `json:"start"`
	End   int `json:"end"`
	Bytes int `json:"bytes"`
}

func (a *app) runChunks(ctx context.Context, w io.Writer, arg string) error {
	src, err := a.open(ctx, arg)
	if err != nil {
		return err
	}
	defer src.Close()

	co, err := a.coordinator(src.Name())
	if err != nil {
		return err
	}

	chunks := co.Chunks(src.Bytes())
	infos := make([]chunkInfo, 0, len(chunks))
	for _, ch := range chunks {
		infos = append(infos, chunkInfo{Index: ch.Index, Start: ch.Start, End: ch.End, Bytes: ch.Len()})
	}

	return a.render(w, infos, func(w io.Writer) {
		fmt.Fprintln(w, "CHUNK\tSTART\tEND\tSIZE")
		for _, c := range infos {
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", c.Index, c.Start, c.End, formatBytes(int64(c.Bytes)))
		}
	})
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <s3://bucket/prefix | minio://bucket/prefix>",
		Short: "List objects in a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(a.runList(cmd.Context(), cmd.OutOrStdout(), args[0]))
		},
	}
}

func (a *app) runList(ctx context.Context, w io.Writer, arg string) error {
	loc, err := parseLocation(arg)
	if err != nil {
		return err
	}
	if !loc.remote() {
		return fmt.Errorf("ls needs an s3:// or minio:// location, got %q", arg)
	}
	store, err := a.store(ctx, loc)
	if err != nil {
		return err
	}
	names, err := store.List(ctx, loc.key)
	if err != nil {
		return err
	}
	return a.render(w, names, func(w io.Writer) {
		for _, n := range names {
			fmt.Fprintf(w, "%s://%s/%s\n", loc.scheme, loc.bucket, n)
		}
	})
}

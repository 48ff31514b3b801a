package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hupe1980/fastq/internal/simd"
)

func newCPUCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cpu",
		Short: "Show the byte-scanning tier selected for this CPU",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCPU(cmd.OutOrStdout())
		},
	}
}

type cpuInfo struct {
	Arch      string          `json:"arch"`
	CPUs      int             `json:"cpus"`
	Active    string          `json:"active"`
	Features  simd.Features   `json:"features"`
	Available map[string]bool `json:"available"`
}

func (a *app) runCPU(w io.Writer) error {
	info := cpuInfo{
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		Active:    simd.ActiveISA().String(),
		Features:  simd.CPUFeatures(),
		Available: make(map[string]bool),
	}
	for _, isa := range []simd.ISA{simd.Generic, simd.SWAR, simd.Vector} {
		info.Available[isa.String()] = simd.IsAvailable(isa)
	}

	return a.render(w, info, func(w io.Writer) {
		fmt.Fprintf(w, "Arch:\t%s\n", info.Arch)
		fmt.Fprintf(w, "CPUs:\t%d\n", info.CPUs)
		fmt.Fprintf(w, "Active tier:\t%s\n", info.Active)
		fmt.Fprintf(w, "AVX2:\t%t\n", info.Features.AVX2)
		fmt.Fprintf(w, "SSE4.2:\t%t\n", info.Features.SSE42)
		fmt.Fprintf(w, "ASIMD:\t%t\n", info.Features.ASIMD)
	})
}

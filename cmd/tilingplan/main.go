// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// tilingplan computes and reports the tiling plan of a broadcast-to or tile operator on a hardware
// profile, optionally verifying it by executing it on the host.
//
// Examples:
//
//	tilingplan -in=3,1 -out=3,4000 -dtype=float16
//	tilingplan -in=2,3,1,1000,1,1 -multiples=2,3,1,1,2,2 -hw=large -verify
//	tilingplan -in=8,1,64 -out=8,16,64 -expect=small_innermost_broadcast
//	tilingplan -hw=small -hw_settings="units=4;scratchpad=32KiB" -sweep=1000
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/tiling/internal/workerspool"
	"github.com/gomlx/tiling/pkg/core/dtypes"
	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/gomlx/tiling/pkg/support/xslices"
	"github.com/gomlx/tiling/pkg/tiling"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"k8s.io/klog/v2"
)

var (
	flagIn  = xslices.Flag("in", nil, "Comma-separated dimensions of the input. Empty for a scalar.", xslices.ParseInt)
	flagOut = xslices.Flag("out", nil, "Comma-separated dimensions of the broadcast-to output.", xslices.ParseInt)

	flagMultiples = xslices.Flag("multiples", nil,
		"Comma-separated tile multiples, one per input axis. If set, plans a tile instead of a broadcast-to.", xslices.ParseInt)

	flagTarget = xslices.Flag("target", nil,
		"Value of the constant target shape of broadcast-to, if known. Only checked against -out.", xslices.ParseInt)

	flagDType    = flag.String("dtype", "float32", "Data type of the elements: its width is what matters to the tiling.")
	flagHardware = flag.String("hw", "default", fmt.Sprintf("Hardware profile, one of %q.", hardware.Names()))

	flagHardwareSettings = flag.String("hw_settings", "",
		"Overrides of the hardware profile, in the form \"key=value;key=value\", or \"file:<path>\" to read them from a file. "+
			"Keys: units, scratchpad, cache_line, vector, min_resident_broadcast, small_innermost, small_second_last, "+
			"max_tensor_elements, max_transfer_dims, sync_workspace.")

	flagBinary      = flag.Bool("binary", false, "Display a hex dump of the serialized tiling data.")
	flagVerify      = flag.Bool("verify", false, "Execute the plan on the host with random data and compare with a naive implementation.")
	flagParallelism = flag.Int("parallelism", 0, "Maximum number of units executed in parallel by -verify and -sweep. 0 uses the number of CPUs, -1 is unlimited.")
	flagSweep       = flag.Int("sweep", 0, "If > 0, plans and verifies this number of random broadcasts, and reports the strategies selected.")
	flagSeed        = flag.Uint64("seed", 42, "Random seed for -verify and -sweep.")
	flagSweepPlot   = flag.String("sweep_plot", "", "If set, saves a bar chart of the -sweep results to this file (png, svg or pdf).")

	flagExpect tiling.Strategy
)

func init() {
	flag.TextVar(&flagExpect, "expect", tiling.StrategyInvalid,
		fmt.Sprintf("If set, exits with an error unless the plan uses this strategy, one of %q.", tiling.StrategyStrings()[1:]))
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	hw := must.M1(loadProfile(*flagHardware, *flagHardwareSettings))
	dtype := must.M1(dtypes.FromName(*flagDType))
	pool := workerspool.New()
	if *flagParallelism != 0 {
		pool.SetMaxParallelism(*flagParallelism)
	}

	if *flagSweep > 0 {
		stats := must.M1(sweep(hw, dtype, *flagSweep, *flagSeed, pool, os.Stderr))
		reportSweep(hw, dtype, stats)
		if *flagSweepPlot != "" {
			must.M(plotSweep(stats, *flagSweepPlot))
		}
		return
	}

	if *flagIn == nil || (*flagOut == nil && *flagMultiples == nil) {
		klog.Errorf("Missing -in and one of -out or -multiples. See 'tilingplan -help'.")
		os.Exit(1)
	}
	req := request{
		dtype:     dtype,
		in:        *flagIn,
		out:       *flagOut,
		multiples: *flagMultiples,
		target:    *flagTarget,
	}
	result, err := req.compute(hw)
	if err != nil {
		klog.Errorf("Failed to compute tiling plan: %+v", err)
		os.Exit(1)
	}
	if *flagVerify {
		result.verifyErr = verify(result, *flagSeed, pool)
		result.verified = true
	}
	reportPlan(hw, result, *flagBinary)
	if result.verifyErr != nil {
		os.Exit(1)
	}
	if err := result.checkStrategy(flagExpect); err != nil {
		klog.Errorf("%v", err)
		os.Exit(1)
	}
}

// loadProfile looks up the named hardware profile and applies the settings overrides.
func loadProfile(name, settings string) (hardware.Profile, error) {
	hw, err := hardware.Lookup(name)
	if err != nil {
		return hw, err
	}
	hw, err = hardware.ParseSettings(hw, settings)
	if err != nil {
		return hw, err
	}
	hw = hw.WithDefaults()
	return hw, hw.Validate()
}

// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/gomlx/tiling/pkg/tiling"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotSweep saves a bar chart of the number of plans and the average number of launched units of each
// strategy. The image format is taken from the file extension (png, svg, pdf, ...).
func plotSweep(stats *sweepStats, filePath string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sweep %s: %d plans", stats.runID, stats.numPlans)
	p.Y.Label.Text = "plans / avg. units"

	var names []string
	var counts, avgUnits plotter.Values
	for _, s := range tiling.Strategies() {
		names = append(names, s.String())
		count := stats.count[s]
		counts = append(counts, float64(count))
		if count > 0 {
			avgUnits = append(avgUnits, float64(stats.launchUnits[s])/float64(count))
		} else {
			avgUnits = append(avgUnits, 0)
		}
	}

	barWidth := vg.Points(16)
	countBars, err := plotter.NewBarChart(counts, barWidth)
	if err != nil {
		return errors.Wrap(err, "failed to create bar chart of plans")
	}
	countBars.LineStyle.Width = vg.Length(0)
	countBars.Color = plotter.DefaultLineStyle.Color
	countBars.Offset = -barWidth / 2

	unitBars, err := plotter.NewBarChart(avgUnits, barWidth)
	if err != nil {
		return errors.Wrap(err, "failed to create bar chart of units")
	}
	unitBars.LineStyle.Width = vg.Length(0)
	unitBars.Offset = barWidth / 2

	p.Add(countBars, unitBars)
	p.Legend.Add("plans", countBars)
	p.Legend.Add("avg. units", unitBars)
	p.Legend.Top = true
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.5
	p.X.Tick.Label.XAlign = -1

	if err := p.Save(12*vg.Inch, 6*vg.Inch, filePath); err != nil {
		return errors.Wrapf(err, "failed to save sweep plot to %q", filePath)
	}
	return nil
}

// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/tiling/pkg/core/dtypes"
	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/gomlx/tiling/pkg/support/sets"
	"github.com/gomlx/tiling/pkg/tiling"
	"k8s.io/klog/v2"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)

	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F33"))
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == lgtable.HeaderRow {
				s = headerRowStyle
				return
			}
			switch {
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

func bytesStr(n int) string {
	return humanize.IBytes(uint64(n))
}

// reportPlan prints the plan tables to stdout.
func reportPlan(hw hardware.Profile, res *result, withBinary bool) {
	plan := res.plan
	fmt.Println(titleStyle.Render("Tiling Plan"))
	table := newPlainTable(false)
	if res.multiples != nil {
		table.Row("operator", fmt.Sprintf("Tile(multiples=%v)", res.multiples))
	} else {
		table.Row("operator", "BroadcastTo")
	}
	table.Row("input", fmt.Sprintf("%s, %s", res.input, bytesStr(int(res.input.Memory()))))
	table.Row("output", fmt.Sprintf("%s, %s", res.output, bytesStr(int(res.output.Memory()))))
	table.Row("hardware", hw.String())
	table.Row("normalized", plan.Shape.String())
	table.Row("strategy", plan.Strategy.String())
	table.Row("tiling key", fmt.Sprintf("%d", res.launch.TilingKey))
	table.Row("launch units", fmt.Sprintf("%d of %d", res.launch.LaunchUnits, hw.NumUnits))
	table.Row("workspace", bytesStr(res.launch.WorkspaceBytes))
	table.Row("tiling data", bytesStr(len(res.launch.Data)))
	table.Row("tensor size", fmt.Sprintf("%s elements, %s", humanize.Comma(int64(plan.Budget.TensorSize)),
		bytesStr(plan.Budget.TensorSize*plan.ElementBytes())))
	table.Row("buffers", fmt.Sprintf("%d", plan.Double.BufferCount))
	if res.verified {
		if res.verifyErr != nil {
			table.Row("verified", failStyle.Render(fmt.Sprintf("FAILED: %v", res.verifyErr)))
		} else {
			table.Row("verified", "ok")
		}
	}
	fmt.Println(table.Render())

	fmt.Println(titleStyle.Render("Loops"))
	table = newPlainTable(true)
	table.Headers("Loop", "Axes", "Dims", "Iterations", "Split")
	p := plan.Partition
	splitOf := func(axis tiling.BlockAxis) string {
		switch {
		case plan.Split.Axis == axis:
			return fmt.Sprintf("%d units x %d (tail %d)", plan.Split.UsedUnits, plan.Split.Normal, plan.Split.Tail)
		case plan.Double.Enabled && plan.Double.Axis == axis:
			return fmt.Sprintf("double: %d + %d", plan.Double.Normal, plan.Double.Tail)
		}
		return "-"
	}
	table.Row("A", fmt.Sprintf("%v", p.A.Axes), fmt.Sprintf("%v", p.A.Dims), humanize.Comma(int64(p.A.Count)), splitOf(tiling.BlockAxisA))
	table.Row("U", fmt.Sprintf("%d..%d", p.UnitAxis, plan.Shape.Rank()-1), fmt.Sprintf("%d", p.UnitAxisLen),
		fmt.Sprintf("%s x %d (tail %d)", humanize.Comma(int64(p.UnitLoops)), p.UnitExtent, p.UnitTail), splitOf(tiling.BlockAxisU))
	table.Row("B", fmt.Sprintf("%v", p.B.Axes), fmt.Sprintf("%v", p.B.Dims), humanize.Comma(int64(p.B.Count)), splitOf(tiling.BlockAxisB))
	fmt.Println(table.Render())

	if withBinary {
		fmt.Println(titleStyle.Render("Tiling Data"))
		fmt.Print(hex.Dump(res.launch.Data))
	}
}

// reportSweep prints the table of strategies selected by a sweep.
func reportSweep(hw hardware.Profile, dtype dtypes.DType, stats *sweepStats) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Sweep %s: %s plans, %s on %s", stats.runID, humanize.Comma(int64(stats.numPlans)), dtype, hw)))
	table := newPlainTable(true)
	table.Headers("Strategy", "Plans", "Distinct Shapes", "Avg. Units", "Elements")
	for _, s := range tiling.Strategies() {
		count := stats.count[s]
		avgUnits := "-"
		if count > 0 {
			avgUnits = fmt.Sprintf("%.1f", float64(stats.launchUnits[s])/float64(count))
		}
		table.Row(s.String(), humanize.Comma(int64(count)), humanize.Comma(int64(len(stats.shapes[s]))), avgUnits, humanize.Comma(int64(stats.elements[s])))
	}
	fmt.Println(table.Render())

	if klog.V(1).Enabled() {
		for _, s := range tiling.Strategies() {
			klog.Infof("%s shapes: %v", s, sets.Sorted(stats.shapes[s]))
		}
	}
}

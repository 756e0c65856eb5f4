// Package plot draws the fitness-over-generations curve for a finished
// run.
package plot

import (
	"github.com/jsphweid/fretwise/engine"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveHistory writes a PNG with the best and average fitness per
// generation.
func SaveHistory(history []engine.GenerationStats, title, outPath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	bestPts := make(plotter.XYs, len(history))
	avgPts := make(plotter.XYs, len(history))
	for i, g := range history {
		bestPts[i].X = float64(g.Generation)
		bestPts[i].Y = g.Best
		avgPts[i].X = float64(g.Generation)
		avgPts[i].Y = g.Avg
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	avgLine, err := plotter.NewLine(avgPts)
	if err != nil {
		return err
	}

	p.Add(bestLine, avgLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("avg", avgLine)
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}

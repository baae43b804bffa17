package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// SavePathPNG draws the planar path through states, with goals marked, to
// a PNG at filename.
func SavePathPNG(filename, title string, states, goals [][]float64) error {
	if len(states) == 0 {
		return fmt.Errorf("path plot: no states")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	path := make(plotter.XYs, len(states))
	for i, s := range states {
		path[i].X, path[i].Y = s[0], s[1]
	}
	line, err := plotter.NewLine(path)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 200, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("path", line)

	start, err := plotter.NewScatter(path[:1])
	if err != nil {
		return err
	}
	start.GlyphStyle.Shape = draw.CircleGlyph{}
	start.GlyphStyle.Color = color.RGBA{G: 160, A: 255}
	p.Add(start)
	p.Legend.Add("start", start)

	if len(goals) > 0 {
		pts := make(plotter.XYs, len(goals))
		for i, g := range goals {
			pts[i].X, pts[i].Y = g[0], g[1]
		}
		marks, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		marks.GlyphStyle.Shape = draw.CrossGlyph{}
		marks.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
		marks.GlyphStyle.Radius = vg.Points(4)
		p.Add(marks)
		p.Legend.Add("goal", marks)
	}

	return p.Save(6*vg.Inch, 6*vg.Inch, filename)
}

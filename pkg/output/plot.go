package output

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot renders the node-voltage waveforms of a recorded trace into an
// image file (format by extension: .png, .svg, .pdf). numNodes limits the
// chart to the node voltages; branch currents usually live on a different
// scale and would flatten them.
func Plot(mt *MemoryTrace, numNodes int, path string) error {
	if len(mt.Times) == 0 {
		return fmt.Errorf("empty trace")
	}

	p := plot.New()
	p.Title.Text = "Transient response"
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "V"
	p.Add(plotter.NewGrid())

	if numNodes > len(mt.Names) {
		numNodes = len(mt.Names)
	}
	for i := 0; i < numNodes; i++ {
		pts := make(plotter.XYs, len(mt.Times))
		for j, t := range mt.Times {
			pts[j].X = t
			pts[j].Y = mt.Rows[j][i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add("v("+mt.Names[i]+")", line)
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

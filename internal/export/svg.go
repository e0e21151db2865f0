package export

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/paulmach/orb"

	"steiner-planner/internal/steiner"
)

const (
	boundsStyle    = "fill:rgb(255,255,255);stroke:rgb(0,0,0);stroke-width:1"
	obstacleStyle  = "fill:rgb(128,128,128);fill-opacity:0.5;stroke:rgb(0,0,0);stroke-width:1"
	footprintStyle = "fill:rgb(0,0,255);fill-opacity:0.5;stroke:rgb(0,0,255);stroke-width:1"
	terminalStyle  = "fill:rgb(0,0,255)"
	unreachedStyle = "fill:rgb(255,0,0)"
	helperStyle    = "fill:rgb(0,160,0)"
	edgeStyle      = "stroke:rgb(255,0,0);stroke-width:2"
	labelStyle     = "font-family:sans-serif;font-size:12px;fill:rgb(0,0,0)"
)

// SVGRenderer draws the snapshot as an SVG image. World coordinates are
// scaled by Scale pixels per unit with the y axis pointing up.
type SVGRenderer struct {
	W      io.Writer
	Scale  float64 // pixels per unit, 50 when zero
	Margin int     // pixels around the bounding region, 20 when zero
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (r SVGRenderer) Render(s *steiner.Snapshot) error {
	scale := r.Scale
	if scale <= 0 {
		scale = 50
	}
	margin := r.Margin
	if margin <= 0 {
		margin = 20
	}

	box := s.Bounds.Bound()
	width := int(math.Ceil((box.Right()-box.Left())*scale)) + 2*margin
	height := int(math.Ceil((box.Top()-box.Bottom())*scale)) + 2*margin

	toScreen := func(p orb.Point) (int, int) {
		x := (p[0]-box.Left())*scale + float64(margin)
		y := (box.Top()-p[1])*scale + float64(margin)
		return int(math.Round(x)), int(math.Round(y))
	}
	drawPolygon := func(canvas *svg.SVG, poly orb.Polygon, style string) {
		if len(poly) == 0 {
			return
		}
		xs := make([]int, 0, len(poly[0]))
		ys := make([]int, 0, len(poly[0]))
		for _, p := range poly[0] {
			x, y := toScreen(p)
			xs = append(xs, x)
			ys = append(ys, y)
		}
		canvas.Polygon(xs, ys, style)
	}

	ew := &errWriter{w: r.W}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:rgb(255,255,255)")

	drawPolygon(canvas, s.Bounds, boundsStyle)
	for _, obs := range s.Obstacles {
		drawPolygon(canvas, obs, obstacleStyle)
	}
	for _, fp := range s.Footprints {
		if fp != nil {
			drawPolygon(canvas, fp, footprintStyle)
		}
	}
	for _, e := range s.Edges {
		x1, y1 := toScreen(e.A)
		x2, y2 := toScreen(e.B)
		canvas.Line(x1, y1, x2, y2, edgeStyle)
	}
	for _, h := range s.Helpers {
		x, y := toScreen(h)
		canvas.Circle(x, y, 3, helperStyle)
	}

	unreached := make(map[int]bool, len(s.Unreached))
	for _, i := range s.Unreached {
		unreached[i] = true
	}
	for i, p := range s.Terminals {
		x, y := toScreen(p)
		style := terminalStyle
		if unreached[i] {
			style = unreachedStyle
		}
		canvas.Circle(x, y, 4, style)
		canvas.Text(x+6, y-6, fmt.Sprintf("T%d", i), labelStyle)
	}

	canvas.Text(margin, height-margin/4, fmt.Sprintf("length %.3f", s.Length), labelStyle)
	canvas.End()
	return ew.err
}

// SaveSVG renders the snapshot into filename.
func SaveSVG(s *steiner.Snapshot, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return SVGRenderer{W: file}.Render(s)
}

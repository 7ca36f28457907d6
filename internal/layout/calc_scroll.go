package layout

import (
	"math"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/sys"
)

// Column describes one top-level column of a scroll layout in strip
// coordinates (x measured from the strip origin, before viewport offset).
type Column struct {
	Node  NodeID
	X     int
	Width int
}

// CalculateScrollLayout lays out layout l as a horizontal strip of columns.
// A column's natural width is half the screen per unit of weight. When the
// columns fit on screen they are solved to fill it exactly; otherwise they
// keep their natural widths and overflow into the strip, to be clipped by
// the viewport. Frames are returned in strip coordinates.
func (t *LayoutTree) CalculateScrollLayout(l LayoutID, screen sys.Rect, cfg *config.Config) ([]WindowFrame, []Column) {
	root := t.Root(l)
	outer := config.ClampGap(cfg.OuterGap, min(screen.Width, screen.Height))
	inner := config.ClampGap(cfg.InnerGap, min(screen.Width, screen.Height))
	content := screen.Inset(outer)

	children := t.nodes.Children(root)
	if len(children) == 0 {
		return nil, nil
	}

	minW := float64(cfg.MinWindowSize)
	inputs := make([]ColumnInput, len(children))
	natural := 0.0
	for i, child := range children {
		w := t.sizing.size(child) * float64(content.Width) / 2
		w = math.Min(math.Max(w, minW), float64(content.Width))
		inputs[i] = ColumnInput{
			Weight:    t.sizing.size(child),
			MinSize:   minW,
			MaxSize:   float64(content.Width),
			FixedSize: w,
		}
		natural += w
	}
	natural += float64(inner * (len(children) - 1))

	var widths []int
	if natural <= float64(content.Width) {
		// Everything fits: drop the fixed widths and let the solver
		// fill the screen proportionally.
		for i := range inputs {
			inputs[i].FixedSize = 0
		}
		solved := SolveColumnSizes(inputs, float64(content.Width), float64(inner))
		widths = roundWidths(solved)
	} else {
		solved := SolveColumnSizes(inputs, natural, float64(inner))
		widths = roundWidths(solved)
	}

	st := &calcState{t: t, cfg: cfg, innerGap: inner}
	columns := make([]Column, len(children))
	x := 0
	for i, child := range children {
		rect := sys.Rect{X: x, Y: content.Y, Width: widths[i], Height: content.Height}
		columns[i] = Column{Node: child, X: x, Width: widths[i]}
		localSel, _ := t.selection.localSelection(t.nodes, root)
		st.apply(child, rect, true, localSel == child)
		x += widths[i] + inner
	}
	return st.frames, columns
}

func roundWidths(solved []ColumnOutput) []int {
	widths := make([]int, len(solved))
	acc := 0.0
	carried := 0
	for i, s := range solved {
		acc += s.Size
		widths[i] = int(math.Round(acc)) - carried
		carried += widths[i]
	}
	return widths
}

// AverageColumnWidth reports the mean column width, used to convert wheel
// deltas into column steps.
func AverageColumnWidth(columns []Column) float64 {
	if len(columns) == 0 {
		return 0
	}
	total := 0
	for _, c := range columns {
		total += c.Width
	}
	return float64(total) / float64(len(columns))
}

package main

const (
	GridCellSize = 120.0 // ~2x agent height, platforms span many cells
	GridCols     = 21    // ceil(2400/120) + 1
	GridRows     = 13    // ceil(1400/120) + 1
)

// RectGrid is a fixed-size broad-phase grid over the level geometry.
// Each cell holds indices into the platform slice the grid was built
// from. The level rebuilds it whenever a breakable block toggles.
type RectGrid struct {
	cells [GridCols * GridRows][]int
}

// NewRectGrid indexes the given platforms
func NewRectGrid(platforms []Platform) *RectGrid {
	g := &RectGrid{}
	for i, p := range platforms {
		g.insert(p.Rect, i)
	}
	return g
}

func gridSpan(r Rect) (minCX, maxCX, minCY, maxCY int) {
	minCX = int(r.X / GridCellSize)
	maxCX = int(r.Right() / GridCellSize)
	minCY = int(r.Y / GridCellSize)
	maxCY = int(r.Bottom() / GridCellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= GridCols {
		maxCX = GridCols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= GridRows {
		maxCY = GridRows - 1
	}
	return
}

func (g *RectGrid) insert(r Rect, idx int) {
	minCX, maxCX, minCY, maxCY := gridSpan(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			cell := cy*GridCols + cx
			g.cells[cell] = append(g.cells[cell], idx)
		}
	}
}

// CellAt returns the platform indices registered in the cell that
// contains the point.
func (g *RectGrid) CellAt(x, y float64) []int {
	cx := int(x / GridCellSize)
	cy := int(y / GridCellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= GridCols {
		cx = GridCols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= GridRows {
		cy = GridRows - 1
	}
	return g.cells[cy*GridCols+cx]
}

// Query appends the platforms whose cells overlap r to buf and returns
// the extended slice. A platform spanning several cells is deduped, so
// callers can resolve each candidate exactly once.
func (g *RectGrid) Query(r Rect, platforms []Platform, buf []Platform) []Platform {
	minCX, maxCX, minCY, maxCY := gridSpan(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, idx := range g.cells[cy*GridCols+cx] {
				seen := false
				for _, p := range buf {
					if p.Rect == platforms[idx].Rect && p.Kind == platforms[idx].Kind {
						seen = true
						break
					}
				}
				if !seen {
					buf = append(buf, platforms[idx])
				}
			}
		}
	}
	return buf
}

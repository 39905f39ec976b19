package main

// TileKind tags a platform's collision behavior
type TileKind int

const (
	// TileSolid blocks movement from every direction
	TileSolid TileKind = 0
	// TileThin blocks only a downward crossing of its top edge
	TileThin TileKind = 1
)

const (
	WorldWidth  = 2400.0
	WorldHeight = 1400.0

	BreakableHP      = 40
	BreakableRespawn = 12.0
)

// Platform is one static collision rectangle
type Platform struct {
	Rect Rect
	Kind TileKind
}

// Breakable is a solid block that can be shot out and respawns after
// a delay. The subsystem is present but arenas ship without any, to
// keep bot training stable.
type Breakable struct {
	Rect     Rect
	HP       int
	MaxHP    int
	Down     bool
	RespawnT float64
}

// WindZone applies a continuous upward acceleration to any agent
// whose center lies inside its rectangle.
type WindZone struct {
	Rect     Rect
	Strength float64
}

// Teleporter relocates an agent whose bounding box touches the entry
// rectangle to the exit point.
type Teleporter struct {
	Entry Rect
	ExitX float64
	ExitY float64
}

// Level owns the arena geometry and the interactive zones defined
// over it. Static platforms never change; breakables toggle between
// present and absent, which invalidates the broad-phase grid.
type Level struct {
	Static      []Platform
	Breakables  []*Breakable
	Wind        []WindZone
	Teleporters []Teleporter

	active []Platform
	grid   *RectGrid
	dirty  bool
}

// NewLevel builds a level from its parts and indexes the geometry
func NewLevel(static []Platform, breakables []*Breakable, wind []WindZone, tps []Teleporter) *Level {
	l := &Level{
		Static:      static,
		Breakables:  breakables,
		Wind:        wind,
		Teleporters: tps,
		dirty:       true,
	}
	l.rebuild()
	return l
}

// BuildArena constructs the canonical wide arena: a long floor, side
// walls, and a ladder of thin platforms with a solid ledge mid-map.
func BuildArena() *Level {
	seg := WorldWidth / 5
	static := []Platform{
		{Rect{60, WorldHeight * 0.86, WorldWidth - 120, 40}, TileSolid},
		{Rect{0, 0, 40, WorldHeight}, TileSolid},
		{Rect{WorldWidth - 40, 0, 40, WorldHeight}, TileSolid},

		{Rect{seg * 0.6, WorldHeight * 0.70, seg * 1.0, 18}, TileThin},
		{Rect{seg * 2.0, WorldHeight * 0.62, seg * 1.0, 18}, TileSolid},
		{Rect{seg * 3.2, WorldHeight * 0.54, seg * 1.0, 18}, TileThin},
		{Rect{seg * 1.0, WorldHeight * 0.44, seg * 0.9, 18}, TileThin},
		{Rect{seg * 2.6, WorldHeight * 0.36, seg * 0.9, 18}, TileThin},
		{Rect{seg * 1.6, WorldHeight * 0.26, seg * 0.8, 18}, TileThin},
		{Rect{seg * 3.6, WorldHeight * 0.22, seg * 0.8, 18}, TileThin},
	}

	floorY := WorldHeight * 0.86
	topMargin := 120.0
	wind := []WindZone{
		{Rect{WorldWidth * 0.35, floorY - 180, 120, 180}, 1800},
		{Rect{WorldWidth * 0.62, floorY - 220, 120, 220}, 1600},
		{Rect{80, topMargin, 140, floorY - topMargin}, 2300},
		{Rect{WorldWidth - 220, topMargin, 140, floorY - topMargin}, 2300},
	}

	a := Rect{WorldWidth * 0.15, WorldHeight*0.40 - 24, 36, 60}
	b := Rect{WorldWidth*0.85 - 36, WorldHeight*0.32 - 24, 36, 60}
	c := Rect{WorldWidth*0.50 - 18, floorY - 64, 36, 60}
	d := Rect{WorldWidth*0.50 - 18, WorldHeight*0.22 - 60, 36, 60}
	tps := []Teleporter{
		{Entry: a, ExitX: b.Right() + 20, ExitY: b.Bottom()},
		{Entry: b, ExitX: a.X - 20, ExitY: a.Bottom()},
		{Entry: c, ExitX: d.Right() + 20, ExitY: d.Bottom()},
		{Entry: d, ExitX: c.X - 20, ExitY: c.Bottom()},
	}

	return NewLevel(static, nil, wind, tps)
}

// rebuild refreshes the active platform list and the broad-phase grid
func (l *Level) rebuild() {
	l.active = l.active[:0]
	l.active = append(l.active, l.Static...)
	for _, b := range l.Breakables {
		if !b.Down {
			l.active = append(l.active, Platform{Rect: b.Rect, Kind: TileSolid})
		}
	}
	l.grid = NewRectGrid(l.active)
	l.dirty = false
}

// ActiveRects returns the currently collidable platforms, including
// breakable blocks that are present. The slice is owned by the level
// and must not be mutated.
func (l *Level) ActiveRects() []Platform {
	if l.dirty {
		l.rebuild()
	}
	return l.active
}

// Query returns the platforms whose rectangles may overlap r
func (l *Level) Query(r Rect, buf []Platform) []Platform {
	if l.dirty {
		l.rebuild()
	}
	return l.grid.Query(r, l.active, buf)
}

// SolidAt reports whether the point is inside any solid platform.
// Used by beam tracing and bot line-of-sight checks.
func (l *Level) SolidAt(x, y float64) bool {
	if l.dirty {
		l.rebuild()
	}
	for _, idx := range l.grid.CellAt(x, y) {
		p := l.active[idx]
		if p.Kind == TileSolid && p.Rect.Contains(x, y) {
			return true
		}
	}
	return false
}

// DamageBreakable applies damage to any breakable overlapping r.
// Returns true if a block went down (geometry changed).
func (l *Level) DamageBreakable(r Rect, dmg int) bool {
	changed := false
	for _, b := range l.Breakables {
		if b.Down || !b.Rect.Intersects(r) {
			continue
		}
		b.HP -= dmg
		if b.HP <= 0 {
			b.Down = true
			b.RespawnT = BreakableRespawn
			changed = true
		}
	}
	if changed {
		l.dirty = true
	}
	return changed
}

// TickBreakables advances breakable respawn timers
func (l *Level) TickBreakables(dt float64) {
	for _, b := range l.Breakables {
		if !b.Down {
			continue
		}
		b.RespawnT -= dt
		if b.RespawnT <= 0 {
			b.Down = false
			b.HP = b.MaxHP
			l.dirty = true
		}
	}
}

// SpawnSurfaces returns the platforms eligible for weapon drops: all
// thin platforms plus wide, flat solid ledges inside the arena walls.
func (l *Level) SpawnSurfaces() []Rect {
	var out []Rect
	for _, p := range l.ActiveRects() {
		switch p.Kind {
		case TileThin:
			out = append(out, p.Rect)
		case TileSolid:
			if p.Rect.W > 200 && p.Rect.H <= 60 && p.Rect.X >= 0 && p.Rect.Right() <= WorldWidth {
				out = append(out, p.Rect)
			}
		}
	}
	return out
}

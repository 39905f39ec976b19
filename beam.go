package main

import "math"

const (
	BeamWarmup  = 0.35 // telegraph, no damage
	BeamActive  = 0.16 // damage window
	BeamFade    = 0.12 // visual only
	BeamWidth   = 38.0
	BeamStep    = 14.0 // ray march increment
	BeamMaxLen  = WorldWidth * 0.9
	BeamHitPad  = 18.0 // slack added to the half-width when testing agents
	BeamKnockX  = 80.0
	BeamKnockY  = -60.0
)

// Beam is an instant-raycast weapon effect. Its endpoint is fixed at
// cast time: the ray is stepped along the fire angle until it crosses
// a solid platform or reaches maximum range. Thin platforms never
// block it. Each cast damages a given agent at most once, no matter
// how many ticks the active phase spans.
type Beam struct {
	ID      string
	OwnerID string
	SX, SY  float64
	EX, EY  float64
	Angle   float64
	Color   string
	Damage  int
	Age     float64
	Alive   bool

	hit map[string]bool
}

// NewBeam casts a beam from (sx,sy) along angle, precomputing the
// blocked endpoint against the level's solid geometry.
func NewBeam(ownerID string, sx, sy, angle float64, dmg int, color string, level *Level) *Beam {
	b := &Beam{
		ID:      GenerateID(3),
		OwnerID: ownerID,
		SX:      sx,
		SY:      sy,
		Angle:   angle,
		Color:   color,
		Damage:  dmg,
		Alive:   true,
		hit:     make(map[string]bool),
	}

	c := math.Cos(angle)
	s := math.Sin(angle)
	x, y := sx, sy
	for d := 0.0; d < BeamMaxLen; d += BeamStep {
		nx := x + c*BeamStep
		ny := y + s*BeamStep
		seg := Rect{math.Min(x, nx), math.Min(y, ny), math.Abs(nx-x) + 1, math.Abs(ny-y) + 1}
		blocked := false
		for _, p := range level.Query(seg, nil) {
			if p.Kind == TileSolid && seg.Intersects(p.Rect) {
				blocked = true
				break
			}
		}
		x, y = nx, ny
		if blocked {
			break
		}
	}
	b.EX, b.EY = x, y
	return b
}

// ActiveNow reports whether the beam is in its damage window
func (b *Beam) ActiveNow() bool {
	return b.Age >= BeamWarmup && b.Age < BeamWarmup+BeamActive
}

// Update ages the beam and applies damage during the active phase.
// Marks itself dead once the fade phase ends.
func (b *Beam) Update(dt float64, g *Game) {
	if !b.Alive {
		return
	}
	b.Age += dt
	if b.ActiveNow() {
		for _, pl := range g.players {
			if !pl.Alive || pl.ID == b.OwnerID || b.hit[pl.ID] {
				continue
			}
			cx, cy := pl.Center()
			if SegPointDist(b.SX, b.SY, b.EX, b.EY, cx, cy) <= BeamWidth*0.5+BeamHitPad {
				g.ApplyDamage(pl, b.Damage, math.Cos(b.Angle)*BeamKnockX, BeamKnockY, b.OwnerID)
				b.hit[pl.ID] = true
			}
		}
	}
	if b.Age >= BeamWarmup+BeamActive+BeamFade {
		b.Alive = false
	}
}

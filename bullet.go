package main

import "math"

const (
	BulletLife   = 0.9 // seconds, default lifetime
	BulletRadius = 6.0

	BulletKnockX = 200.0 // direct-hit horizontal knockback
	BulletKnockY = -120.0

	BlastRadius = 180.0 // explosion splash radius
	BlastDamage = 18
	BlastKnockX = 240.0
	BlastKnockY = -160.0

	// Homing turn fraction is clamped per tick so a seeking round arcs
	// instead of snapping onto the target.
	SeekMaxBlend = 0.25
)

// Bullet is a ballistic projectile. Flags combine freely: the rocket
// is explosive with a proximity radius, the sniper round pierces thin
// platforms and homes.
type Bullet struct {
	ID        string
	OwnerID   string
	X, Y      float64
	VX, VY    float64
	Damage    int
	Life      float64
	Age       float64
	Radius    float64
	Explosive bool
	PierceThin bool
	Proximity float64 // detonation radius, 0 = direct hit only
	Seek      float64 // homing strength, 0 = none
	Alive     bool

	speed float64 // cached launch speed, preserved while homing
}

// NewBullet creates a live bullet travelling at (vx,vy)
func NewBullet(ownerID string, x, y, vx, vy float64, dmg int) *Bullet {
	spd := math.Hypot(vx, vy)
	if spd < epsilon {
		spd = 1
	}
	return &Bullet{
		ID:      GenerateID(3),
		OwnerID: ownerID,
		X:       x,
		Y:       y,
		VX:      vx,
		VY:      vy,
		Damage:  dmg,
		Life:    BulletLife,
		Radius:  BulletRadius,
		Alive:   true,
		speed:   spd,
	}
}

// AABB returns the bullet's bounding box
func (b *Bullet) AABB() Rect {
	return Rect{b.X - b.Radius, b.Y - b.Radius, b.Radius * 2, b.Radius * 2}
}

// Update advances the bullet one tick: homing blend, integration,
// proximity check, geometry, agent hits, expiry last. Marks itself
// dead on any terminal event; the orchestrator compacts dead bullets
// afterwards.
func (b *Bullet) Update(dt float64, g *Game) {
	if !b.Alive {
		return
	}
	b.Age += dt

	if b.Seek > 0 {
		b.steerToward(g.players, dt)
	}

	b.X += b.VX * dt
	b.Y += b.VY * dt
	box := b.AABB()

	// Proximity detonation fires before any direct-hit test this tick
	if b.Explosive && b.Proximity > 0 {
		r2 := b.Proximity * b.Proximity
		for _, pl := range g.players {
			if !pl.Alive || pl.ID == b.OwnerID {
				continue
			}
			cx, cy := pl.Center()
			if DistanceSq(cx, cy, b.X, b.Y) <= r2 {
				b.explode(g, b.X, b.Y)
				b.Alive = false
				return
			}
		}
	}

	for _, p := range g.level.Query(box, nil) {
		if p.Kind == TileThin {
			if b.PierceThin {
				continue
			}
			if b.VY > 0 && box.Bottom() > p.Rect.Top() && box.Top() < p.Rect.Top() &&
				box.Right() > p.Rect.Left() && box.Left() < p.Rect.Right() {
				b.explode(g, b.X, b.Y)
				b.Alive = false
				return
			}
		} else if box.Intersects(p.Rect) {
			g.level.DamageBreakable(box, b.Damage)
			b.explode(g, b.X, b.Y)
			b.Alive = false
			return
		}
	}

	for _, pl := range g.players {
		if !pl.Alive || pl.ID == b.OwnerID {
			continue
		}
		if box.Intersects(pl.AABB()) {
			g.ApplyDamage(pl, b.Damage, math.Copysign(BulletKnockX, b.VX), BulletKnockY, b.OwnerID)
			cx, cy := pl.Center()
			b.explode(g, cx, cy)
			b.Alive = false
			return
		}
	}

	if b.X < -200 || b.X > WorldWidth+200 || b.Y < -200 || b.Y > WorldHeight+200 {
		b.Alive = false
		return
	}

	// Expiry is the last check so the final tick of travel still lands
	if b.Age >= b.Life {
		b.Alive = false
	}
}

// steerToward blends velocity direction toward the nearest living
// non-owner agent, preserving speed magnitude.
func (b *Bullet) steerToward(players []*Player, dt float64) {
	var tx, ty float64
	best := math.MaxFloat64
	found := false
	for _, pl := range players {
		if !pl.Alive || pl.ID == b.OwnerID {
			continue
		}
		cx, cy := pl.Center()
		d2 := DistanceSq(b.X, b.Y, cx, cy)
		if d2 < best {
			best = d2
			tx = cx - b.X
			ty = cy - b.Y
			found = true
		}
	}
	if !found {
		return
	}

	dx, dy := Normalize(tx, ty)
	k := Clamp(b.Seek*dt, 0, SeekMaxBlend)
	b.VX = Lerp(b.VX, dx*b.speed, k)
	b.VY = Lerp(b.VY, dy*b.speed, k)
	spd := math.Hypot(b.VX, b.VY)
	if spd < epsilon {
		spd = 1
	}
	b.VX *= b.speed / spd
	b.VY *= b.speed / spd
}

// explode deals splash damage around (cx,cy). No-op for plain rounds.
func (b *Bullet) explode(g *Game, cx, cy float64) {
	if !b.Explosive {
		return
	}
	for _, pl := range g.players {
		if !pl.Alive {
			continue
		}
		px, py := pl.Center()
		if DistanceSq(px, py, cx, cy) < BlastRadius*BlastRadius {
			kx := BlastKnockX
			if px < cx {
				kx = -BlastKnockX
			}
			g.ApplyDamage(pl, BlastDamage, kx, BlastKnockY, b.OwnerID)
		}
	}
}

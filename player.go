package main

import (
	"math"
)

const (
	Gravity = 2200.0 // px/s²
	MaxFall = 2400.0 // terminal fall speed, px/s

	PlayerW     = 36.0
	PlayerH     = 54.0
	PlayerMaxHP = 100

	RunSpeed   = 440.0  // no-inertia horizontal speed
	JumpVel    = 1000.0 // ground jump impulse
	AirJumpVel = 940.0
	MaxAirJumps = 1

	DashSpeed    = 950.0
	DashDuration = 0.13
	DashCooldown = 0.6

	CoyoteTime     = 0.08 // jump grace after leaving ground
	JumpBufferTime = 0.12
	DropThroughTime = 0.20

	HitInvuln     = 0.35 // after taking a hit
	RespawnInvuln = 0.8
	HitlagTime    = 0.05 // full freeze on taking damage

	TeleportCooldown = 0.5
	TeleportDamp     = 0.2 // velocity multiplier on teleport

	PickupRangeX = 56.0
	PickupRangeY = 84.0
	TossSpeed    = 820.0
	TossOffset   = 24.0

	RingOutDamage = 999
)

// Input is one agent's control record for one tick. Edge-triggered
// fields (Jump, Fire, Toss, Dash) are pre-debounced by the input
// adapter; the kernel treats them as single-shot.
type Input struct {
	Left  bool
	Right bool
	Down  bool
	Jump  bool
	Fire  bool
	Toss  bool // pick up when unarmed, throw held weapon when armed
	Dash  bool
	AimX  float64
	AimY  float64
}

// Player is an agent in the arena: a human, a scripted bot, or the
// externally driven training agent. Position is the feet anchor.
type Player struct {
	ID    string
	Name  string
	Color string
	IsBot bool

	X, Y   float64 // feet
	W, H   float64
	VX, VY float64

	OnGround bool
	Face     int // -1 or 1, toward last aim

	HP     int
	MaxHP  int
	Alive  bool
	KOs    int
	Deaths int

	Holding *GunEntity
	FireCD  float64

	Invuln   float64
	Hitlag   float64
	Coyote   float64
	JumpBuf  float64
	DropT    float64
	DashCD   float64
	DashT    float64
	Dashing  bool
	AirJumps int
	TPCool   float64

	LastAimX float64
	LastAimY float64

	In Input // latest control record, written by the input adapter

	AuthPlayerID int64 // persistent account, 0 = guest
}

// NewPlayer creates a living agent at the given feet position
func NewPlayer(id, name, color string, isBot bool, x, y float64) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Color:    color,
		IsBot:    isBot,
		X:        x,
		Y:        y,
		W:        PlayerW,
		H:        PlayerH,
		HP:       PlayerMaxHP,
		MaxHP:    PlayerMaxHP,
		Alive:    true,
		Face:     1,
		AirJumps: MaxAirJumps,
		LastAimX: x + 100,
		LastAimY: y - 40,
	}
}

// AABB returns the agent's bounding box
func (p *Player) AABB() Rect {
	return Rect{p.X - p.W/2, p.Y - p.H, p.W, p.H}
}

// Center returns the body center point
func (p *Player) Center() (float64, float64) {
	return p.X, p.Y - p.H*0.5
}

// Hand returns the weapon-hand anchor, where shots and throws originate
func (p *Player) Hand() (float64, float64) {
	return p.X, p.Y - p.H*0.6
}

// Respawn relocates the agent and resets its combat state. A generous
// invulnerability window covers the arrival.
func (p *Player) Respawn(x, y float64) {
	p.X = x
	p.Y = y
	p.VX = 0
	p.VY = 0
	p.HP = p.MaxHP
	p.Alive = true
	p.Invuln = RespawnInvuln
	p.Holding = nil
	p.FireCD = 0
	p.AirJumps = MaxAirJumps
	p.TPCool = 0
}

func tickDown(t *float64, dt float64) {
	*t -= dt
	if *t < 0 {
		*t = 0
	}
}

// Update advances the agent one tick with the given control record.
// The order is load-bearing: timers, movement intent, gravity, hitlag
// gate, axis-separated collision, zone triggers, weapon handling,
// ring-out.
func (p *Player) Update(dt float64, in Input, g *Game) {
	tickDown(&p.FireCD, dt)
	tickDown(&p.Coyote, dt)
	tickDown(&p.JumpBuf, dt)
	tickDown(&p.DropT, dt)
	tickDown(&p.Invuln, dt)
	tickDown(&p.Hitlag, dt)
	tickDown(&p.DashCD, dt)
	tickDown(&p.TPCool, dt)
	tickDown(&p.DashT, dt)
	p.Dashing = p.DashT > 0

	if !p.Alive {
		return
	}

	if math.IsNaN(in.AimX) || math.IsNaN(in.AimY) {
		in.AimX = p.LastAimX
		in.AimY = p.LastAimY
	}
	p.LastAimX = in.AimX
	p.LastAimY = in.AimY

	// Horizontal intent: conflicting or absent input means stop
	dirX := 0.0
	if in.Left && !in.Right {
		dirX = -1
	} else if in.Right && !in.Left {
		dirX = 1
	}

	if in.Dash && p.DashCD <= 0 {
		dashDir := dirX
		if dashDir == 0 {
			if in.AimX > p.X {
				dashDir = 1
			} else {
				dashDir = -1
			}
		}
		p.VX = dashDir * DashSpeed
		p.VY *= 0.5
		p.DashT = DashDuration
		p.Dashing = true
		p.DashCD = DashCooldown
	}
	if !p.Dashing {
		p.VX = dirX * RunSpeed
	}

	if in.Jump {
		p.JumpBuf = JumpBufferTime
	}
	if p.JumpBuf > 0 {
		if p.OnGround || p.Coyote > 0 {
			p.VY = -JumpVel
			p.OnGround = false
			p.JumpBuf = 0
			p.AirJumps = MaxAirJumps
		} else if p.AirJumps > 0 {
			p.VY = -AirJumpVel
			p.AirJumps--
			p.JumpBuf = 0
		}
	}

	if in.Down && p.OnGround {
		p.DropT = DropThroughTime
	}

	p.VY += Gravity * dt
	cx, cy := p.Center()
	for _, wz := range g.level.Wind {
		if cx > wz.Rect.Left() && cx < wz.Rect.Right() && cy > wz.Rect.Top() && cy < wz.Rect.Bottom() {
			p.VY -= wz.Strength * dt
		}
	}
	if p.VY > MaxFall {
		p.VY = MaxFall
	}

	// Hit-reaction freeze: no integration, no new actions this tick
	if p.Hitlag > 0 {
		return
	}

	p.resolveHorizontal(dt, g.level)
	p.resolveVertical(dt, g.level)

	if in.AimX > p.X {
		p.Face = 1
	} else {
		p.Face = -1
	}

	if p.TPCool <= 0 {
		box := p.AABB()
		for _, tp := range g.level.Teleporters {
			if box.Intersects(tp.Entry) {
				p.X = tp.ExitX
				p.Y = tp.ExitY
				p.VX *= TeleportDamp
				p.VY *= TeleportDamp
				p.TPCool = TeleportCooldown
				break
			}
		}
	}

	if in.Toss {
		p.pickupOrThrow(in.AimX, in.AimY, g)
	}

	if in.Fire && p.FireCD <= 0 && p.Holding != nil {
		p.fire(in.AimX, in.AimY, g)
	}

	if p.Y > WorldHeight-4 {
		g.ApplyDamage(p, RingOutDamage, 0, 0, "")
	}
}

// resolveHorizontal integrates X and resolves against solid platforms
// only; agents pass through thin platforms sideways.
func (p *Player) resolveHorizontal(dt float64, level *Level) {
	p.X += p.VX * dt
	box := p.AABB()
	for _, pf := range level.Query(box, nil) {
		if pf.Kind == TileThin {
			continue
		}
		if box.Intersects(pf.Rect) {
			if p.VX > 0 {
				p.X = pf.Rect.Left() - p.W/2
			} else if p.VX < 0 {
				p.X = pf.Rect.Right() + p.W/2
			}
			p.VX = 0
			box = p.AABB()
		}
	}
}

// resolveVertical integrates Y and resolves against solids plus the
// one-way thin test. The thin test compares this step's bottom edge
// with the pre-step bottom edge so a fast fall still lands; at extreme
// speeds the crossing can be missed (known approximation).
func (p *Player) resolveVertical(dt float64, level *Level) {
	p.OnGround = false
	p.Y += p.VY * dt
	box := p.AABB()
	for _, pf := range level.Query(box, nil) {
		r := pf.Rect
		if pf.Kind == TileThin {
			if p.VY >= 0 && p.DropT <= 0 &&
				box.Bottom() > r.Top() && box.Bottom()-p.VY*dt <= r.Top()+2 &&
				box.Right() > r.Left() && box.Left() < r.Right() {
				p.Y = r.Top()
				p.VY = 0
				p.land()
				box = p.AABB()
			}
		} else if box.Intersects(r) {
			if p.VY > 0 {
				p.Y = r.Top()
				p.land()
			} else {
				p.Y = r.Bottom() + p.H
			}
			p.VY = 0
			box = p.AABB()
		}
	}
}

func (p *Player) land() {
	p.OnGround = true
	p.Coyote = CoyoteTime
	p.AirJumps = MaxAirJumps
}

// pickupOrThrow grabs the nearest eligible ground weapon when unarmed,
// otherwise hurls the held weapon toward the aim point.
func (p *Player) pickupOrThrow(aimX, aimY float64, g *Game) {
	if p.Holding == nil {
		for _, gun := range g.guns {
			if !gun.Alive || gun.State != GunGround {
				continue
			}
			if math.Abs(gun.X-p.X) < PickupRangeX && math.Abs(gun.Y-(p.Y-p.H)) < PickupRangeY {
				gun.State = GunHeld
				gun.OwnerID = p.ID
				p.Holding = gun
				return
			}
		}
		return
	}

	hx, hy := p.Hand()
	dx, dy := Normalize(aimX-hx, aimY-hy)
	gun := p.Holding
	gun.X = p.X + dx*TossOffset
	gun.Y = hy + dy*TossOffset
	gun.Toss(p.ID, dx, dy, TossSpeed)
	p.Holding = nil
}

// fire resolves the held weapon's special mode, spends ammo, and
// discards the weapon at zero.
func (p *Player) fire(aimX, aimY float64, g *Game) {
	def := p.Holding.Def
	hx, hy := p.Hand()
	angle := math.Atan2(aimY-hy, aimX-hx)

	emit := func(spread, speed float64, dmg int, life, radius float64, set func(*Bullet)) {
		if len(g.bullets) >= maxBulletsPerMatch {
			return
		}
		a := angle + spread
		b := NewBullet(p.ID, p.X, hy, math.Cos(a)*speed, math.Sin(a)*speed, dmg)
		b.Life = life
		b.Radius = radius
		if set != nil {
			set(b)
		}
		g.bullets = append(g.bullets, b)
	}

	shots := 0
	switch def.Special {
	case SpecialSpread:
		for i := 0; i < def.Pellets; i++ {
			offs := jitterRad(g.rng, def.SpreadDeg)
			emit(offs, def.Speed*0.9, def.Damage, 0.6, 5, nil)
			shots++
		}
	case SpecialBurst3:
		for i := 0; i < 3; i++ {
			offs := jitterRad(g.rng, def.SpreadDeg)
			emit(offs, def.Speed*0.95, def.Damage, 0.6, 5, nil)
			shots++
		}
	case SpecialSniper:
		emit(0, def.Speed, def.Damage, 1.1, 6, func(b *Bullet) {
			b.PierceThin = true
			b.Seek = 0.9
		})
		shots = 1
	case SpecialRocket:
		emit(0, def.Speed, def.Damage, 1.2, 7, func(b *Bullet) {
			b.Explosive = true
			b.Proximity = 160
		})
		shots = 1
	case SpecialBeam:
		g.beams = append(g.beams, NewBeam(p.ID, p.X, hy, angle, def.Damage, def.Color, g.level))
		shots = 1
	default:
		emit(0, def.Speed, def.Damage, BulletLife, BulletRadius, nil)
		shots = 1
	}

	// Beam included: cooldown starts at cast, not at damage resolution
	p.FireCD = def.Cooldown

	p.Holding.Ammo -= shots
	if p.Holding.Ammo <= 0 {
		p.Holding.Ammo = 0
		p.Holding.Alive = false
		p.Holding = nil
	}
}

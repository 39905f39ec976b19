package main

import "math/rand"

// SpecialMode selects a weapon's firing behavior. It is a closed set;
// fire dispatch switches over it exhaustively.
type SpecialMode int

const (
	SpecialNone   SpecialMode = iota // single projectile
	SpecialSpread                    // pellet fan, one ammo per pellet
	SpecialBurst3                    // three jittered projectiles per trigger
	SpecialSniper                    // piercing, lightly homing round
	SpecialRocket                    // proximity-detonated explosive
	SpecialBeam                      // instant raycast beam
)

// WeaponDef holds the immutable stats of a catalog weapon
type WeaponDef struct {
	Name      string
	Color     string // hex, client rendering only
	Damage    int
	Cooldown  float64 // seconds between shots
	Speed     float64 // muzzle speed, px/s
	Ammo      int     // magazine capacity
	Pellets   int     // projectiles per shot (spread mode)
	SpreadDeg float64 // max angle offset per pellet, degrees
	Special   SpecialMode
}

// Weapons is the canonical catalog. Stats are tuned for feel and are
// load-bearing for bot training; change them only deliberately.
var Weapons = []WeaponDef{
	{Name: "Pistol", Color: "#3FA7D6", Damage: 18, Cooldown: 0.25, Speed: 1000, Ammo: 18, Pellets: 1},
	{Name: "SMG", Color: "#2BB673", Damage: 9, Cooldown: 0.09, Speed: 950, Ammo: 32, Pellets: 1, SpreadDeg: 5, Special: SpecialBurst3},
	{Name: "Shotgun", Color: "#9C27B0", Damage: 24, Cooldown: 0.55, Speed: 820, Ammo: 16, Pellets: 7, SpreadDeg: 10, Special: SpecialSpread},
	{Name: "Rifle", Color: "#00ADB5", Damage: 22, Cooldown: 0.22, Speed: 1150, Ammo: 28, Pellets: 1},
	{Name: "Sniper", Color: "#FF8F6B", Damage: 50, Cooldown: 0.85, Speed: 1700, Ammo: 6, Pellets: 1, Special: SpecialSniper},
	{Name: "Rocket", Color: "#FD5E53", Damage: 55, Cooldown: 0.95, Speed: 720, Ammo: 7, Pellets: 1, Special: SpecialRocket},
	{Name: "Laser", Color: "#35D0FF", Damage: 70, Cooldown: 0.95, Speed: 0, Ammo: 3, Pellets: 1, Special: SpecialBeam},
}

// RandomWeapon picks a catalog definition using the game's RNG
func RandomWeapon(rng *rand.Rand) *WeaponDef {
	return &Weapons[rng.Intn(len(Weapons))]
}

// GunState is the lifecycle state of a weapon pickup entity
type GunState int

const (
	GunGround GunState = iota // lying on a platform, can be picked up
	GunTossed                 // thrown, a ballistic body until impact
	GunHeld                   // equipped by an agent
)

const (
	GunPickupRadius = 16.0
	GunTossGravity  = Gravity * 0.9
	GunTossDrag     = 0.995
)

// GunEntity is a weapon instance in the world: spawned on the ground,
// carried by an agent, or tumbling through the air after a throw.
type GunEntity struct {
	ID      string
	Def     *WeaponDef
	X, Y    float64
	VX, VY  float64
	State   GunState
	OwnerID string // holder or thrower, "" when unowned
	Ammo    int
	Alive   bool
}

// NewGunEntity creates a ground pickup at the given position. ammo <= 0
// means the full catalog magazine.
func NewGunEntity(def *WeaponDef, x, y float64, ammo int) *GunEntity {
	if ammo <= 0 {
		ammo = def.Ammo
	}
	return &GunEntity{
		ID:    GenerateID(3),
		Def:   def,
		X:     x,
		Y:     y,
		State: GunGround,
		Ammo:  ammo,
		Alive: true,
	}
}

// AABB returns the pickup's bounding box
func (g *GunEntity) AABB() Rect {
	return Rect{g.X - GunPickupRadius, g.Y - GunPickupRadius, GunPickupRadius * 2, GunPickupRadius * 2}
}

// Toss launches the gun as a ballistic body in the given direction
func (g *GunEntity) Toss(ownerID string, dirX, dirY, power float64) {
	g.OwnerID = ownerID
	g.State = GunTossed
	g.VX = dirX * power
	g.VY = dirY * power
}

// Update advances a tossed gun. Ground and held guns do not move on
// their own. Marks the gun dead once it strikes geometry or leaves the
// world.
func (g *GunEntity) Update(dt float64, level *Level) {
	if !g.Alive || g.State != GunTossed {
		return
	}

	g.VY += GunTossGravity * dt
	g.VX *= GunTossDrag
	if g.VY > MaxFall {
		g.VY = MaxFall
	}

	g.X += g.VX * dt
	box := g.AABB()
	for _, p := range level.Query(box, nil) {
		if box.Intersects(p.Rect) {
			g.Alive = false
			return
		}
	}

	g.Y += g.VY * dt
	box = g.AABB()
	for _, p := range level.Query(box, nil) {
		if p.Kind == TileThin {
			// One-way: only a downward crossing of the top edge counts
			if g.VY >= 0 && box.Bottom() > p.Rect.Top() && box.Bottom()-g.VY*dt <= p.Rect.Top()+2 &&
				box.Right() > p.Rect.Left() && box.Left() < p.Rect.Right() {
				g.Alive = false
				return
			}
		} else if box.Intersects(p.Rect) {
			g.Alive = false
			return
		}
	}

	if g.Y > WorldHeight+120 || g.X < -200 || g.X > WorldWidth+200 {
		g.Alive = false
	}
}

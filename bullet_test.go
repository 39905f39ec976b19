package main

import (
	"math"
	"testing"
)

func TestBulletExpires(t *testing.T) {
	g := newTestGame()
	b := NewBullet("p", 600, 500, 100, 0, 10)
	b.Life = 0.1

	for i := 0; i < 10; i++ {
		b.Update(TickDt, g)
	}
	if b.Alive {
		t.Error("bullet should expire after its lifetime")
	}
}

func TestBulletFinalTickStillLands(t *testing.T) {
	g := newTestGame()
	enemy := addTestPlayer(g, "enemy", 700, floorTop)

	// Lifetime runs out on the exact tick the bullet reaches the target
	b := NewBullet("shooter", 666, floorTop-27, 400, 0, 10)
	b.Life = 2 * TickDt

	b.Update(TickDt, g)
	if !b.Alive {
		t.Fatal("bullet should survive its first tick")
	}
	b.Update(TickDt, g)
	if b.Alive {
		t.Error("bullet should be gone after its final tick")
	}
	if enemy.HP != PlayerMaxHP-10 {
		t.Errorf("the final tick of travel should still land, HP=%d", enemy.HP)
	}
}

func TestBulletIgnoresOwner(t *testing.T) {
	g := newTestGame()
	p := addTestPlayer(g, "p", 600, floorTop)

	// Cross the owner's body left to right
	b := NewBullet(p.ID, 560, floorTop-27, 400, 0, 10)
	for i := 0; i < 15; i++ {
		b.Update(TickDt, g)
	}
	if p.HP != PlayerMaxHP {
		t.Error("a bullet must never hit its owner")
	}
	if !b.Alive {
		t.Error("passing through the owner should not stop the bullet")
	}
}

func TestBulletDirectHit(t *testing.T) {
	g := newTestGame()
	addTestPlayer(g, "shooter", 400, floorTop)
	enemy := addTestPlayer(g, "enemy", 700, floorTop)

	b := NewBullet("shooter", 660, floorTop-27, 800, 0, 20)
	g.bullets = append(g.bullets, b)

	for i := 0; i < 5 && b.Alive; i++ {
		b.Update(TickDt, g)
	}
	if b.Alive {
		t.Fatal("bullet should die on impact")
	}
	if enemy.HP != PlayerMaxHP-20 {
		t.Errorf("expected HP %d, got %d", PlayerMaxHP-20, enemy.HP)
	}
	if enemy.VX <= 0 {
		t.Error("knockback should follow the bullet's travel direction")
	}
}

func TestBulletAgainstInvulnerableTarget(t *testing.T) {
	g := newTestGame()
	enemy := addTestPlayer(g, "enemy", 700, floorTop)
	enemy.Invuln = 1.0

	b := NewBullet("shooter", 660, floorTop-27, 800, 0, 20)
	for i := 0; i < 5 && b.Alive; i++ {
		b.Update(TickDt, g)
	}
	if b.Alive {
		t.Error("bullet still dies on an invulnerable target")
	}
	if enemy.HP != PlayerMaxHP {
		t.Error("invulnerable target takes no damage")
	}
}

func TestBulletStopsOnThinPlatform(t *testing.T) {
	g := newTestGame()
	thinTop := WorldHeight * 0.70

	b := NewBullet("p", 400, thinTop-60, 0, 700, 10)
	b.Life = 2
	for i := 0; i < 20 && b.Alive; i++ {
		b.Update(TickDt, g)
	}
	if b.Alive {
		t.Error("a falling bullet should break on a thin platform's top edge")
	}
	if b.Y > thinTop+30 {
		t.Errorf("bullet should have stopped near the platform, y=%v", b.Y)
	}
}

func TestPiercingBulletCrossesThin(t *testing.T) {
	g := newTestGame()
	thinTop := WorldHeight * 0.70

	b := NewBullet("p", 400, thinTop-60, 0, 700, 10)
	b.Life = 2
	b.PierceThin = true
	for i := 0; i < 12; i++ {
		b.Update(TickDt, g)
	}
	if !b.Alive {
		t.Fatal("piercing round should survive the thin platform")
	}
	if b.Y < thinTop {
		t.Errorf("piercing round should be past the platform, y=%v", b.Y)
	}

	// The solid floor still stops it
	for i := 0; i < 60 && b.Alive; i++ {
		b.Update(TickDt, g)
	}
	if b.Alive {
		t.Error("solid geometry stops even piercing rounds")
	}
}

func TestRocketProximityDetonatesOnce(t *testing.T) {
	g := newTestGame()
	addTestPlayer(g, "shooter", 200, floorTop)
	enemy := addTestPlayer(g, "enemy", 900, floorTop)

	b := NewBullet("shooter", 500, floorTop-27, 900, 0, 55)
	b.Life = 2
	b.Explosive = true
	b.Proximity = 160
	g.bullets = append(g.bullets, b)

	for i := 0; i < 30 && b.Alive; i++ {
		b.Update(TickDt, g)
	}
	if b.Alive {
		t.Fatal("rocket should have detonated")
	}

	// Proximity detonation deals splash damage, not the direct-hit payload
	if enemy.HP != PlayerMaxHP-BlastDamage {
		t.Errorf("expected splash damage %d, took %d", BlastDamage, PlayerMaxHP-enemy.HP)
	}

	// Distance at detonation stayed outside the body
	if math.Abs(b.X-enemy.X) < 30 {
		t.Error("rocket should pop at proximity range, not on contact")
	}

	// A dead bullet never explodes again
	enemy.Invuln = 0
	b.Update(TickDt, g)
	if enemy.HP != PlayerMaxHP-BlastDamage {
		t.Error("detonation must happen exactly once")
	}
}

func TestExplosionSplashRadius(t *testing.T) {
	g := newTestGame()
	near := addTestPlayer(g, "near", 700, floorTop)
	far := addTestPlayer(g, "far", 700+BlastRadius+100, floorTop)

	b := NewBullet("shooter", 650, floorTop-27, 0, 0, 55)
	b.Explosive = true
	b.explode(g, 650, floorTop-27)

	if near.HP != PlayerMaxHP-BlastDamage {
		t.Errorf("agent inside the blast should take %d, took %d", BlastDamage, PlayerMaxHP-near.HP)
	}
	if far.HP != PlayerMaxHP {
		t.Error("agent outside the blast should be untouched")
	}
}

func TestSeekingBulletTurns(t *testing.T) {
	g := newTestGame()
	addTestPlayer(g, "enemy", 600, 600)

	// Fired rightward while the target sits above
	b := NewBullet("shooter", 600, 900, 1000, 0, 10)
	b.Life = 2
	b.Seek = 0.9
	for i := 0; i < 10; i++ {
		b.Update(TickDt, g)
	}
	if b.VY >= 0 {
		t.Errorf("seeking round should bend toward the target, VY=%v", b.VY)
	}

	// Speed magnitude is preserved while homing
	spd := math.Hypot(b.VX, b.VY)
	if math.Abs(spd-1000) > 1 {
		t.Errorf("homing should preserve speed, got %v", spd)
	}
}

func TestBulletLeavesWorld(t *testing.T) {
	g := newTestGame()
	b := NewBullet("p", 600, 300, 0, -2000, 10)
	b.Life = 10

	alive := true
	for i := 0; i < 30 && alive; i++ {
		b.Update(TickDt, g)
		alive = b.Alive
	}
	if alive {
		t.Error("bullet far out of bounds should despawn")
	}
}

package main

import (
	"math"
	"testing"
)

func TestBeamBlockedBySolid(t *testing.T) {
	g := newTestGame()
	// Cast leftward from mid-air into the left wall
	b := NewBeam("p", 600, 700, math.Pi, 70, "#35D0FF", g.level)

	if b.EX > 100 {
		t.Errorf("beam should stop at the wall, EX=%v", b.EX)
	}
	if b.EX < -BeamStep {
		t.Errorf("beam should not tunnel through the wall, EX=%v", b.EX)
	}
}

func TestBeamReachesMaxRangeInOpenAir(t *testing.T) {
	g := newTestGame()
	// Rightward from just inside the left wall, clear of all solids
	b := NewBeam("p", 120, 300, 0, 70, "#35D0FF", g.level)

	if math.Abs((b.EX-b.SX)-BeamMaxLen) > BeamStep {
		t.Errorf("unblocked beam should march out to max range, got %v", b.EX-b.SX)
	}
	if b.EY != 300 {
		t.Errorf("horizontal cast should stay level, EY=%v", b.EY)
	}
}

func TestBeamPassesThinPlatform(t *testing.T) {
	g := newTestGame()
	// Cast straight down through the thin ladder platform at y=980
	b := NewBeam("p", 400, 900, math.Pi/2, 70, "#35D0FF", g.level)

	thinTop := WorldHeight * 0.70
	if b.EY <= thinTop {
		t.Errorf("thin platforms never block beams, EY=%v", b.EY)
	}
	// The solid floor below does
	if b.EY > WorldHeight*0.86+2*BeamStep {
		t.Errorf("beam should stop at the floor, EY=%v", b.EY)
	}
}

func TestBeamWarmupDealsNoDamage(t *testing.T) {
	g := newTestGame()
	enemy := addTestPlayer(g, "enemy", 900, floorTop)

	b := NewBeam("shooter", 400, floorTop-27, 0, 70, "#35D0FF", g.level)
	g.beams = append(g.beams, b)

	ticks := int(BeamWarmup/TickDt) - 1
	for i := 0; i < ticks; i++ {
		b.Update(TickDt, g)
	}
	if enemy.HP != PlayerMaxHP {
		t.Errorf("no damage during warmup, HP=%d", enemy.HP)
	}
}

func TestBeamHitsOncePerCast(t *testing.T) {
	g := newTestGame()
	enemy := addTestPlayer(g, "enemy", 900, floorTop)

	b := NewBeam("shooter", 400, floorTop-27, 0, 70, "#35D0FF", g.level)

	// Step through warmup, active, and fade; keep clearing the
	// invulnerability window so only the per-cast guard can protect
	for i := 0; i < 60 && b.Alive; i++ {
		enemy.Invuln = 0
		b.Update(TickDt, g)
	}
	if b.Alive {
		t.Error("beam should expire after its fade phase")
	}
	if enemy.HP != PlayerMaxHP-70 {
		t.Errorf("one cast damages an agent exactly once, HP=%d", enemy.HP)
	}
}

func TestBeamIgnoresOwner(t *testing.T) {
	g := newTestGame()
	owner := addTestPlayer(g, "owner", 600, floorTop)

	b := NewBeam(owner.ID, 400, floorTop-27, 0, 70, "#35D0FF", g.level)
	for i := 0; i < 60 && b.Alive; i++ {
		b.Update(TickDt, g)
	}
	if owner.HP != PlayerMaxHP {
		t.Error("a beam must never hit its caster")
	}
}

func TestBeamMissesOffLine(t *testing.T) {
	g := newTestGame()
	// Agent well above the horizontal beam line
	enemy := addTestPlayer(g, "enemy", 900, floorTop-300)

	b := NewBeam("shooter", 400, floorTop-27, 0, 70, "#35D0FF", g.level)
	for i := 0; i < 60 && b.Alive; i++ {
		b.Update(TickDt, g)
	}
	if enemy.HP != PlayerMaxHP {
		t.Error("agents off the beam line should be untouched")
	}
}

func TestBeamActiveWindow(t *testing.T) {
	b := &Beam{Alive: true}

	b.Age = BeamWarmup / 2
	if b.ActiveNow() {
		t.Error("warming beam is not active")
	}
	b.Age = BeamWarmup + BeamActive/2
	if !b.ActiveNow() {
		t.Error("beam should be active mid-window")
	}
	b.Age = BeamWarmup + BeamActive + BeamFade/2
	if b.ActiveNow() {
		t.Error("fading beam is not active")
	}
}

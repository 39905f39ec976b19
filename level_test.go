package main

import "testing"

func TestBuildArenaGeometry(t *testing.T) {
	l := BuildArena()

	if len(l.Static) == 0 {
		t.Fatal("arena should have static platforms")
	}
	if len(l.Wind) == 0 {
		t.Error("arena should have wind zones")
	}
	if len(l.Teleporters) == 0 {
		t.Error("arena should have teleporters")
	}

	// At least one solid floor and one thin platform
	solids, thins := 0, 0
	for _, p := range l.Static {
		if p.Kind == TileSolid {
			solids++
		} else {
			thins++
		}
	}
	if solids == 0 || thins == 0 {
		t.Errorf("expected both tile kinds, got %d solid / %d thin", solids, thins)
	}

	// Teleporter exits must lie inside the world
	for _, tp := range l.Teleporters {
		if tp.ExitX < 0 || tp.ExitX > WorldWidth || tp.ExitY < 0 || tp.ExitY > WorldHeight {
			t.Errorf("teleporter exit out of world: (%v, %v)", tp.ExitX, tp.ExitY)
		}
	}
}

func TestLevelQueryFloor(t *testing.T) {
	l := BuildArena()
	floorY := WorldHeight * 0.86

	hits := l.Query(Rect{500, floorY - 10, 40, 40}, nil)
	found := false
	for _, p := range hits {
		if p.Kind == TileSolid && p.Rect.Y == floorY {
			found = true
		}
	}
	if !found {
		t.Error("query over the floor should return the floor platform")
	}
}

func TestSolidAt(t *testing.T) {
	l := BuildArena()

	if !l.SolidAt(20, 700) {
		t.Error("point inside the left wall should be solid")
	}
	if l.SolidAt(500, 500) {
		t.Error("open air should not be solid")
	}
}

func TestBreakableDamageAndRespawn(t *testing.T) {
	br := &Breakable{Rect: Rect{500, 500, 60, 60}, HP: BreakableHP, MaxHP: BreakableHP}
	l := NewLevel([]Platform{{Rect{0, 900, 2000, 40}, TileSolid}}, []*Breakable{br}, nil, nil)

	if len(l.ActiveRects()) != 2 {
		t.Fatalf("expected 2 active platforms, got %d", len(l.ActiveRects()))
	}

	// Chip damage does not drop the block
	if l.DamageBreakable(Rect{510, 510, 10, 10}, 10) {
		t.Error("partial damage should not change geometry")
	}
	if br.Down {
		t.Error("block should still be up")
	}

	// Finishing damage drops it and shrinks active geometry
	if !l.DamageBreakable(Rect{510, 510, 10, 10}, BreakableHP) {
		t.Error("lethal damage should change geometry")
	}
	if len(l.ActiveRects()) != 1 {
		t.Errorf("expected 1 active platform after break, got %d", len(l.ActiveRects()))
	}

	// Respawn timer brings it back at full HP
	l.TickBreakables(BreakableRespawn + 0.1)
	if br.Down || br.HP != br.MaxHP {
		t.Errorf("block should respawn at full HP, got down=%v hp=%d", br.Down, br.HP)
	}
	if len(l.ActiveRects()) != 2 {
		t.Errorf("expected 2 active platforms after respawn, got %d", len(l.ActiveRects()))
	}
}

func TestSpawnSurfaces(t *testing.T) {
	l := BuildArena()
	surfaces := l.SpawnSurfaces()
	if len(surfaces) == 0 {
		t.Fatal("arena should offer spawn surfaces")
	}
	// Walls are tall and narrow; they must never be spawn surfaces
	for _, r := range surfaces {
		if r.H > 60 {
			t.Errorf("tall rect should not be a spawn surface: %+v", r)
		}
	}
}

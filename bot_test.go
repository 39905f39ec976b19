package main

import (
	"math/rand"
	"testing"
)

func TestBotChasesGroundGun(t *testing.T) {
	g := newTestGame()
	bot := addTestPlayer(g, "bot", 900, floorTop)
	bot.IsBot = true
	g.guns = append(g.guns, NewGunEntity(&Weapons[0], 400, floorTop-24, 10))

	brain := NewBotBrain()
	rng := rand.New(rand.NewSource(3))
	in := brain.Think(bot, g, TickDt, rng)

	if !in.Left || in.Right {
		t.Error("unarmed bot should walk toward the nearest gun")
	}
	if in.Toss {
		t.Error("bot should not grab while out of range")
	}
}

func TestBotGrabsGunInRange(t *testing.T) {
	g := newTestGame()
	bot := addTestPlayer(g, "bot", 600, floorTop)
	bot.IsBot = true
	g.guns = append(g.guns, NewGunEntity(&Weapons[0], 620, floorTop-24, 10))

	brain := NewBotBrain()
	rng := rand.New(rand.NewSource(3))
	in := brain.Think(bot, g, TickDt, rng)

	if !in.Toss {
		t.Error("bot in pickup range should grab")
	}
}

func TestBotEngagesTarget(t *testing.T) {
	g := newTestGame()
	bot := addTestPlayer(g, "bot", 400, floorTop)
	bot.IsBot = true
	armPlayer(g, bot, "Pistol")
	target := addTestPlayer(g, "target", 1200, floorTop)

	brain := NewBotBrain()
	rng := rand.New(rand.NewSource(3))

	fired := false
	for i := 0; i < 120; i++ {
		in := brain.Think(bot, g, TickDt, rng)
		if !in.Right {
			t.Fatal("armed bot should close on a distant target")
		}
		if in.AimX != target.X {
			t.Fatal("bot should aim at its target")
		}
		if in.Fire {
			fired = true
		}
	}
	if !fired {
		t.Error("armed bot should pull the trigger sometimes")
	}
}

func TestBotIgnoresDeadTargets(t *testing.T) {
	g := newTestGame()
	bot := addTestPlayer(g, "bot", 400, floorTop)
	bot.IsBot = true
	armPlayer(g, bot, "Pistol")
	corpse := addTestPlayer(g, "corpse", 1200, floorTop)
	corpse.Alive = false

	brain := NewBotBrain()
	rng := rand.New(rand.NewSource(3))
	in := brain.Think(bot, g, TickDt, rng)

	if in.Fire || in.Right || in.Left {
		t.Error("bot with no living target should hold position")
	}
}

func TestBotsFightToABloodiedMatch(t *testing.T) {
	// Two scripted bots with weapons raining in should trade damage
	cfg := DefaultConfig()
	cfg.BotCount = 1
	g := NewGame(cfg, 77)

	// Make the primary slot a bot too
	p := g.players[0]
	p.IsBot = true
	g.brains[p.ID] = NewBotBrain()

	hurt := false
	for i := 0; i < 60*30 && !hurt; i++ {
		g.Advance(TickDt, nil)
		for _, q := range g.players {
			if q.HP < q.MaxHP || q.Deaths > 0 {
				hurt = true
			}
		}
	}
	if !hurt {
		t.Error("30 simulated seconds of bot combat should draw blood")
	}
}

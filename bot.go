package main

import (
	"math/rand"
)

// BotBrain drives a scripted agent. It holds only pacing scratch state
// between ticks; everything it reacts to is read fresh from the match.
type BotBrain struct {
	jumpCD float64
}

func NewBotBrain() *BotBrain {
	return &BotBrain{}
}

// Think produces one control record for the bot. Unarmed bots chase
// the nearest ground weapon; armed bots close to striking distance of
// the nearest living enemy and fire in probabilistic bursts so their
// output stays deterministic under a seeded match RNG.
func (b *BotBrain) Think(bot *Player, g *Game, dt float64, rng *rand.Rand) Input {
	b.jumpCD -= dt
	if b.jumpCD < 0 {
		b.jumpCD = 0
	}

	var target *Player
	bestD := 0.0
	for _, p := range g.players {
		if p == bot || !p.Alive {
			continue
		}
		d := DistanceSq(p.X, p.Y, bot.X, bot.Y)
		if target == nil || d < bestD {
			target = p
			bestD = d
		}
	}

	in := Input{
		AimX: bot.X + float64(bot.Face)*200,
		AimY: bot.Y - 40,
	}
	if target != nil {
		in.AimX = target.X
		in.AimY = target.Y - 40
	}

	if bot.Holding == nil {
		var near *GunEntity
		nearD := 0.0
		for _, gun := range g.guns {
			if !gun.Alive || gun.State != GunGround {
				continue
			}
			d := DistanceSq(gun.X, gun.Y, bot.X, bot.Y)
			if near == nil || d < nearD {
				near = gun
				nearD = d
			}
		}
		if near != nil {
			in.Left = near.X < bot.X
			in.Right = near.X > bot.X
			if b.jumpCD <= 0 && near.Y < bot.Y-40 && rng.Float64() < 0.6 {
				in.Jump = true
				b.jumpCD = 0.25
			}
			if absf(near.X-bot.X) < PickupRangeX && absf(near.Y-(bot.Y-bot.H)) < PickupRangeY {
				in.Toss = true
			}
		} else if rng.Float64() < 0.02 {
			in.Jump = true
		}
		return in
	}

	if target != nil {
		dx := target.X - bot.X
		if absf(dx) > 100 {
			in.Left = dx < 0
			in.Right = dx > 0
		}
		if absf(target.Y-bot.Y) > 50 && b.jumpCD <= 0 && rng.Float64() < 0.25 {
			in.Jump = true
			b.jumpCD = 0.35
		}
		if rng.Float64() < 0.35 {
			in.Fire = true
		}
	}
	return in
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

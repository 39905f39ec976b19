package main

import (
	"math"
	"math/rand"
)

const (
	ObservationSize = 36
	ActionCount     = 16
	EnvAimStep      = 120.0 // aim cursor nudge per aim action, world px
	EnvMaxSteps     = 1800  // 30 simulated seconds at the tick rate
)

// Macro actions for the external controller. Compound actions pair a
// movement with a trigger pull.
const (
	ActIdle = iota
	ActLeft
	ActRight
	ActJump
	ActDash
	ActDrop
	ActFire
	ActPickThrow
	ActAimLeft
	ActAimRight
	ActAimUp
	ActAimDown
	ActLeftFire
	ActRightFire
	ActJumpFire
	ActDashFire
)

// StepInfo carries per-step diagnostics alongside the reward
type StepInfo struct {
	DamageDealt int
	DamageTaken int
	YouKOs      int
	BotKOs      int
	Dist        float64
	HasGun      bool
	Ammo        int
}

// Env drives one designated agent of a headless match through a
// discrete action interface and reads rewards off state deltas. It
// steps the match synchronously and is not safe to combine with a
// running Game loop.
type Env struct {
	game *Game
	rng  *rand.Rand

	aimX, aimY float64

	lastYouHP  int
	lastBotHP  int
	lastYouKOs int
	lastBotKOs int

	steps    int
	maxSteps int
}

// NewEnv builds a seeded, non-restarting match for training
func NewEnv(cfg MatchConfig, seed int64, maxSteps int) *Env {
	if maxSteps <= 0 {
		maxSteps = EnvMaxSteps
	}
	g := NewGame(cfg, seed)
	g.autoRestart = false
	e := &Env{
		game:     g,
		rng:      rand.New(rand.NewSource(seed)),
		maxSteps: maxSteps,
	}
	e.syncTrackers()
	e.resetAim()
	return e
}

// Game exposes the underlying match for snapshot consumers
func (e *Env) Game() *Game {
	return e.game
}

func (e *Env) you() *Player { return e.game.players[0] }
func (e *Env) bot() *Player { return e.game.players[1] }

func (e *Env) resetAim() {
	e.aimX = e.you().X + 100
	e.aimY = e.you().Y - 40
}

func (e *Env) syncTrackers() {
	e.lastYouHP = e.you().HP
	e.lastBotHP = e.bot().HP
	e.lastYouKOs = e.you().KOs
	e.lastBotKOs = e.bot().KOs
}

// Reset starts a fresh episode and returns the initial observation.
// Spawn sides are swapped half the time so the policy cannot overfit
// a starting corner.
func (e *Env) Reset() []float64 {
	e.game.ResetMatch()
	you, bot := e.you(), e.bot()
	if e.rng.Float64() < 0.5 {
		you.X, bot.X = bot.X, you.X
	}
	e.resetAim()
	e.syncTrackers()
	e.steps = 0
	return e.Observation()
}

// Step advances the match one tick under the given action. done
// reports episode truncation (step cap or match clock), never an
// in-episode terminal: agents respawn, the fight continues.
func (e *Env) Step(action int) (obs []float64, reward float64, done bool, info StepInfo) {
	e.steps++

	in := e.actionToInput(action)
	e.game.Advance(TickDt, &in)

	you, bot := e.you(), e.bot()
	dealt := e.lastBotHP - bot.HP
	if dealt < 0 {
		dealt = 0
	}
	taken := e.lastYouHP - you.HP
	if taken < 0 {
		taken = 0
	}
	kosYou := you.KOs - e.lastYouKOs
	kosBot := bot.KOs - e.lastBotKOs

	reward = 0.30*float64(dealt) - 0.25*float64(taken)
	reward += 20.0*float64(kosYou) - 20.0*float64(kosBot)
	if e.game.stuckT > 0.6 {
		reward -= 0.02 * TickDt
	}
	reward -= 0.0002 * TickDt

	e.syncTrackers()

	yx, yy := you.Center()
	bx, by := bot.Center()
	info = StepInfo{
		DamageDealt: dealt,
		DamageTaken: taken,
		YouKOs:      you.KOs,
		BotKOs:      bot.KOs,
		Dist:        Distance(yx, yy, bx, by),
		HasGun:      you.Holding != nil,
	}
	if you.Holding != nil {
		info.Ammo = you.Holding.Ammo
	}

	done = e.steps >= e.maxSteps || e.game.timeLeft <= 0
	return e.Observation(), reward, done, info
}

// actionToInput maps a macro action onto one control record. Aim
// actions move a persistent cursor clamped to world bounds.
func (e *Env) actionToInput(a int) Input {
	switch a {
	case ActAimLeft:
		e.aimX -= EnvAimStep
	case ActAimRight:
		e.aimX += EnvAimStep
	case ActAimUp:
		e.aimY -= EnvAimStep
	case ActAimDown:
		e.aimY += EnvAimStep
	}
	e.aimX = Clamp(e.aimX, 0, WorldWidth)
	e.aimY = Clamp(e.aimY, 0, WorldHeight)

	return Input{
		Left:  a == ActLeft || a == ActLeftFire,
		Right: a == ActRight || a == ActRightFire,
		Down:  a == ActDrop,
		Jump:  a == ActJump || a == ActJumpFire,
		Dash:  a == ActDash || a == ActDashFire,
		Fire:  a == ActFire || a == ActLeftFire || a == ActRightFire || a == ActJumpFire || a == ActDashFire,
		Toss:  a == ActPickThrow,
		AimX:  e.aimX,
		AimY:  e.aimY,
	}
}

// Observation flattens the match state into a fixed-width normalized
// vector centered on the primary agent.
func (e *Env) Observation() []float64 {
	you, bot := e.you(), e.bot()
	relX := bot.X - you.X
	relY := (bot.Y - bot.H*0.5) - (you.Y - you.H*0.5)
	dist := math.Hypot(relX, relY)
	ang := math.Atan2(relY, relX)

	hasGun := 0.0
	ammo := 0
	if you.Holding != nil {
		hasGun = 1.0
		ammo = you.Holding.Ammo
	}
	if ammo > 50 {
		ammo = 50
	}

	gdx, gdy, gdist := e.nearestGun(you)
	bdx, bdy, bvx, bvy, _ := e.nearestBullet(you)
	bulletsN := 0.0
	if len(e.game.bullets) > 0 {
		bulletsN = 1.0
	}

	return []float64{
		you.X / WorldWidth, you.Y / WorldHeight, you.VX / 1000, you.VY / 1500,
		boolFloat(you.OnGround), float64(you.HP) / 100, hasGun, float64(ammo) / 50, you.FireCD,
		bot.X / WorldWidth, bot.Y / WorldHeight, bot.VX / 1000, bot.VY / 1500, float64(bot.HP) / 100,
		relX / 1000, relY / 1000, dist / 1500, math.Cos(ang), math.Sin(ang),
		float64(you.Face), float64(bot.Face),
		gdx / 1000, gdy / 1000, gdist / 1500,
		e.game.timeLeft / 120,
		bulletsN, bdx / 1000, bdy / 1000, bvx / 1500, bvy / 1500,
		you.DashCD, float64(you.AirJumps), you.TPCool, Clamp(e.game.stuckT, 0, 2) / 2,
		float64(you.KOs), float64(bot.KOs),
	}
}

func (e *Env) nearestGun(you *Player) (dx, dy, dist float64) {
	best := math.MaxFloat64
	found := false
	for _, gun := range e.game.guns {
		if !gun.Alive || gun.State != GunGround {
			continue
		}
		gx, gy := gun.X-you.X, gun.Y-(you.Y-you.H*0.5)
		d2 := gx*gx + gy*gy
		if d2 < best {
			best = d2
			dx, dy = gx, gy
			found = true
		}
	}
	if !found {
		return 0, 0, 9999
	}
	return dx, dy, math.Sqrt(best)
}

func (e *Env) nearestBullet(you *Player) (dx, dy, vx, vy, dist float64) {
	best := math.MaxFloat64
	found := false
	cx, cy := you.Center()
	for _, b := range e.game.bullets {
		if !b.Alive || b.OwnerID == you.ID {
			continue
		}
		bx, by := b.X-cx, b.Y-cy
		d2 := bx*bx + by*by
		if d2 < best {
			best = d2
			dx, dy, vx, vy = bx, by, b.VX, b.VY
			found = true
		}
	}
	if !found {
		return 0, 0, 0, 0, 9999
	}
	return dx, dy, vx, vy, math.Sqrt(best)
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

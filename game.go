package main

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
	TickDt         = 1.0 / float64(TickRate)
)

const (
	maxBulletsPerMatch = 500
	StuckDistance      = 32.0 // center distance below which agents get separated
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game holds the state for one arena match. The primary agent is
// always players[0]; it is the camera target and the slot an external
// controller may override per tick.
type Game struct {
	mu      sync.RWMutex
	cfg     MatchConfig
	level   *Level
	players []*Player
	guns    []*GunEntity
	bullets []*Bullet
	beams   []*Beam
	brains  map[string]*BotBrain
	clients map[string]Broadcaster // playerID -> client
	rng     *rand.Rand

	tick      uint64
	timeLeft  float64
	spawnIval float64
	spawnT    float64
	stuckT    float64
	camX      float64
	camY      float64

	running     bool
	autoRestart bool // real-time sessions roll into a new match; the env does not
	stop        chan struct{}

	db        *DB        // optional, nil in headless sims
	analytics *Analytics // optional
}

// NewGame creates a match over a freshly built arena. A fixed seed
// makes the whole match deterministic, which the training wrapper and
// the tests rely on.
func NewGame(cfg MatchConfig, seed int64) *Game {
	g := &Game{
		cfg:         cfg,
		level:       BuildArena(),
		brains:      make(map[string]*BotBrain),
		clients:     make(map[string]Broadcaster),
		rng:         rand.New(rand.NewSource(seed)),
		autoRestart: true,
		stop:        make(chan struct{}),
	}
	g.ResetMatch()
	return g
}

// ResetMatch rebuilds the roster and restarts the clock. Connected
// clients keep their slots; missing bots are refilled up to the
// configured count.
func (g *Game) ResetMatch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetMatchLocked()
}

func (g *Game) resetMatchLocked() {
	// Connected players carry their slots and IDs into the next match;
	// bots and unconnected slots are rebuilt.
	kept := g.players[:0]
	for _, p := range g.players {
		if _, connected := g.clients[p.ID]; connected && !p.IsBot {
			kept = append(kept, p)
		}
	}
	g.players = kept
	g.guns = g.guns[:0]
	g.bullets = g.bullets[:0]
	g.beams = g.beams[:0]
	g.brains = make(map[string]*BotBrain)

	for _, p := range g.players {
		p.KOs = 0
		p.Deaths = 0
		p.Holding = nil
		p.Respawn(g.spawnPoint())
	}

	if len(g.players) == 0 {
		primary := NewPlayer(GenerateID(4), "P1", "#9BE564", false,
			WorldWidth*0.25, WorldHeight*0.3)
		g.players = append(g.players, primary)
	}

	for i := 0; len(g.players) < 1+g.cfg.BotCount; i++ {
		x := WorldWidth * 0.75
		if i%2 == 1 {
			x = WorldWidth * 0.5
		}
		bot := NewPlayer(GenerateID(4), botName(i), "#FF6B6B", true, x, WorldHeight*0.3)
		g.players = append(g.players, bot)
		g.brains[bot.ID] = NewBotBrain()
	}

	for _, p := range g.players {
		g.giveRandomWeapon(p)
	}

	g.timeLeft = g.cfg.TimeLimit
	g.spawnIval = g.cfg.SpawnStart
	g.spawnT = 0.5
	g.stuckT = 0
	g.camX = 0
	g.camY = 0

	if g.analytics != nil {
		g.analytics.Track(EvtMatchStart, 0, map[string]interface{}{
			"players": len(g.players),
		})
	}
}

func botName(i int) string {
	names := []string{"BOT", "BOT-2", "BOT-3", "BOT-4"}
	if i < len(names) {
		return names[i]
	}
	return "BOT-X"
}

// giveRandomWeapon equips a fresh weapon with a full magazine
func (g *Game) giveRandomWeapon(p *Player) {
	def := RandomWeapon(g.rng)
	gun := NewGunEntity(def, p.X, p.Y-p.H*0.6, 0)
	gun.State = GunHeld
	gun.OwnerID = p.ID
	p.Holding = gun
	g.guns = append(g.guns, gun)
}

// Run starts the real-time loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.Advance(TickDt, nil)
			g.maybeBroadcast()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// AddPlayer adds a networked player to the match, claiming an
// unconnected slot (the fresh primary or a bot) when one is free.
// Returns nil when the match is full.
func (g *Game) AddPlayer(name string, authID int64) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.players {
		_, connected := g.clients[p.ID]
		if p.IsBot || !connected {
			delete(g.brains, p.ID)
			p.IsBot = false
			p.Name = name
			p.AuthPlayerID = authID
			p.Respawn(g.spawnPoint())
			g.giveRandomWeapon(p)
			return p
		}
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		return nil
	}
	sx, sy := g.spawnPoint()
	p := NewPlayer(GenerateID(4), name, "#F4D35E", false, sx, sy)
	p.AuthPlayerID = authID
	g.players = append(g.players, p)
	g.giveRandomWeapon(p)
	return p
}

// RemovePlayer turns a departed player's slot back into a bot so the
// match stays populated.
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, id)
	for _, p := range g.players {
		if p.ID == id {
			p.IsBot = true
			p.Name = "BOT"
			p.AuthPlayerID = 0
			g.brains[p.ID] = NewBotBrain()
			return
		}
	}
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// HandleInput stages a control record for one player; it is consumed
// on the next tick.
func (g *Game) HandleInput(playerID string, in Input) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.ID == playerID {
			p.In = in
			return
		}
	}
}

// PlayerCount returns the number of connected human players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, p := range g.players {
		if !p.IsBot {
			if _, ok := g.clients[p.ID]; ok {
				n++
			}
		}
	}
	return n
}

// Advance runs one simulation tick. When override is non-nil it
// replaces the primary agent's control record for this tick only,
// which is how the training wrapper drives the match.
func (g *Game) Advance(dt float64, override *Input) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	g.timeLeft -= dt
	if g.timeLeft < 0 {
		g.timeLeft = 0
	}

	// Weapon spawn cadence tightens as the match goes on
	g.spawnT -= dt
	if g.spawnT <= 0 {
		if g.groundGunCount() < g.cfg.MaxGuns {
			g.spawnGun()
			g.spawnIval = math.Max(g.cfg.SpawnMin, g.spawnIval*g.cfg.SpawnShrink)
		}
		g.spawnT = g.spawnIval
	}

	for i, p := range g.players {
		var in Input
		switch {
		case i == 0 && override != nil:
			in = *override
		case p.IsBot:
			in = g.brains[p.ID].Think(p, g, dt, g.rng)
		default:
			in = p.In
		}
		p.Update(dt, in, g)
		// Edge-triggered fields are one-shot; clear the staged copy
		p.In.Jump = false
		p.In.Fire = false
		p.In.Toss = false
		p.In.Dash = false
	}

	for _, gun := range g.guns {
		gun.Update(dt, g.level)
	}
	g.compactGuns()

	for _, b := range g.bullets {
		b.Update(dt, g)
	}
	g.compactBullets()

	for _, bm := range g.beams {
		bm.Update(dt, g)
	}
	g.compactBeams()

	g.level.TickBreakables(dt)

	// Arcade rules: the dead come back immediately, armed
	for _, p := range g.players {
		if !p.Alive {
			p.Respawn(g.spawnPoint())
			g.giveRandomWeapon(p)
		}
	}

	g.antiStuck(dt)
	g.updateCamera()

	if g.timeLeft <= 0 && g.autoRestart {
		g.finishMatch()
		g.resetMatchLocked()
	}
}

func (g *Game) groundGunCount() int {
	n := 0
	for _, gun := range g.guns {
		if gun.Alive && gun.State != GunHeld {
			n++
		}
	}
	return n
}

// spawnGun drops a weapon pickup on a random spawnable surface,
// retrying a few times to avoid stacking on an existing ground gun.
func (g *Game) spawnGun() {
	surfaces := g.level.SpawnSurfaces()
	for _, b := range g.level.Breakables {
		if !b.Down {
			surfaces = append(surfaces, b.Rect)
		}
	}
	if len(surfaces) == 0 {
		return
	}
	r := surfaces[g.rng.Intn(len(surfaces))]
	const pad = 40.0
	x := r.X + pad + g.rng.Float64()*(r.W-2*pad)
	y := r.Top() - 24
	for try := 0; try < 8; try++ {
		crowded := false
		for _, gun := range g.guns {
			if gun.Alive && gun.State == GunGround && DistanceSq(gun.X, gun.Y, x, y) < PickupRangeX*PickupRangeX {
				crowded = true
				break
			}
		}
		if !crowded {
			break
		}
		x = r.X + pad + g.rng.Float64()*(r.W-2*pad)
	}
	def := RandomWeapon(g.rng)
	ammo := def.Ammo + g.rng.Intn(5) - 2
	if ammo < 1 {
		ammo = 1
	}
	g.guns = append(g.guns, NewGunEntity(def, x, y, ammo))
}

func (g *Game) spawnPoint() (float64, float64) {
	pts := g.cfg.SpawnPoints
	p := pts[g.rng.Intn(len(pts))]
	return p[0], p[1]
}

// ApplyDamage is the single combat entry point: it honors the
// invulnerability window, applies knockback, and settles kill and
// death counters. attackerID may be empty for environmental deaths.
func (g *Game) ApplyDamage(target *Player, dmg int, kx, ky float64, attackerID string) {
	if !target.Alive || target.Invuln > 0 {
		return
	}
	target.HP -= dmg
	target.VX += kx
	target.VY += ky
	target.Invuln = HitInvuln
	target.Hitlag = HitlagTime

	if target.HP <= 0 {
		target.Alive = false
		target.Deaths++
		if attackerID != "" && attackerID != target.ID {
			for _, p := range g.players {
				if p.ID == attackerID {
					p.KOs++
					if g.analytics != nil {
						g.analytics.Track(EvtPlayerKO, p.AuthPlayerID, nil)
					}
					break
				}
			}
		}
		// Killed agents leave their weapon behind
		if target.Holding != nil {
			gun := target.Holding
			gun.State = GunGround
			gun.OwnerID = ""
			gun.X = target.X
			gun.Y = target.Y - target.H*0.6
			gun.VX = 0
			gun.VY = 0
			target.Holding = nil
		}
	}
}

// FindPlayer returns the player with the given ID, or nil
func (g *Game) FindPlayer(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// antiStuck pushes overlapping agents apart so neither can body-block
// the other indefinitely. Time spent overlapping the primary agent is
// tracked for the training wrapper.
func (g *Game) antiStuck(dt float64) {
	stuck := false
	for i := 0; i < len(g.players); i++ {
		for j := i + 1; j < len(g.players); j++ {
			a, b := g.players[i], g.players[j]
			if !a.Alive || !b.Alive {
				continue
			}
			ax, ay := a.Center()
			bx, by := b.Center()
			dx, dy := bx-ax, by-ay
			dist := math.Hypot(dx, dy)
			if dist >= StuckDistance {
				continue
			}
			if i == 0 || j == 0 {
				stuck = true
			}
			push := (StuckDistance - math.Max(dist, 1.0)) * 0.5
			if dx >= 0 {
				a.X -= push
				b.X += push
			} else {
				a.X += push
				b.X -= push
			}
			a.VX *= 0.5
			b.VX *= 0.5
		}
	}
	if stuck {
		g.stuckT += dt
	} else {
		g.stuckT = math.Max(0, g.stuckT-dt*0.5)
	}
}

// updateCamera eases the view toward the primary agent, clamped to
// world bounds
func (g *Game) updateCamera() {
	you := g.players[0]
	tx := you.X - g.cfg.ViewW/2
	ty := you.Y - g.cfg.ViewH/2
	g.camX = Clamp(Lerp(g.camX, tx, 0.15), 0, WorldWidth-g.cfg.ViewW)
	g.camY = Clamp(Lerp(g.camY, ty, 0.15), 0, WorldHeight-g.cfg.ViewH)
}

// finishMatch records the finished match for every authenticated
// player, then lets the caller restart the roster. A tied top score is
// a draw: nobody gets the win.
func (g *Game) finishMatch() {
	var topKOs, leaders int
	for _, p := range g.players {
		if p.KOs > topKOs {
			topKOs = p.KOs
		}
	}
	for _, p := range g.players {
		if p.KOs == topKOs {
			leaders++
		}
	}
	for _, p := range g.players {
		won := p.KOs == topKOs && topKOs > 0 && leaders == 1
		if g.db != nil && p.AuthPlayerID != 0 {
			prevLevel := 0
			if s, err := g.db.GetStats(p.AuthPlayerID); err == nil {
				prevLevel = s.Level
			}
			if err := g.db.RecordMatch(p.AuthPlayerID, p.KOs, p.Deaths, won); err == nil {
				unlocked := CheckAchievements(g.db, p.AuthPlayerID, p.KOs, p.Deaths, won)
				if len(unlocked) > 0 {
					if c, ok := g.clients[p.ID]; ok {
						c.SendJSON(Envelope{T: MsgUnlocked, Data: unlocked})
					}
				}
				if g.analytics != nil {
					for _, a := range unlocked {
						g.analytics.Track(EvtAchievement, p.AuthPlayerID, map[string]interface{}{"id": a.ID})
					}
					if s, err := g.db.GetStats(p.AuthPlayerID); err == nil && s.Level > prevLevel {
						g.analytics.Track(EvtLevelUp, p.AuthPlayerID, map[string]interface{}{"level": s.Level})
					}
				}
			}
		}
		if g.analytics != nil {
			g.analytics.Track(EvtMatchEnd, p.AuthPlayerID, map[string]interface{}{
				"kos": p.KOs, "deaths": p.Deaths, "won": won,
			})
		}
	}
}

// maybeBroadcast sends the state snapshot at the broadcast cadence
func (g *Game) maybeBroadcast() {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.tick%BroadcastEvery != 0 {
		return
	}
	data, err := EncodeSnapshot(g.snapshotLocked())
	if err != nil {
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// Snapshot returns a read-only copy of the visible match state
func (g *Game) Snapshot() GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() GameState {
	st := GameState{
		Tick:     g.tick,
		TimeLeft: round1(g.timeLeft),
		CamX:     round1(g.camX),
		CamY:     round1(g.camY),
	}
	for _, p := range g.players {
		ps := PlayerState{
			ID:    p.ID,
			Name:  p.Name,
			X:     round1(p.X),
			Y:     round1(p.Y),
			VX:    round1(p.VX),
			VY:    round1(p.VY),
			HP:    p.HP,
			MaxHP: p.MaxHP,
			Face:  p.Face,
			KOs:   p.KOs,
			Alive: p.Alive,
			Ground: p.OnGround,
		}
		if p.Holding != nil {
			ps.Weapon = p.Holding.Def.Name
			ps.Ammo = p.Holding.Ammo
		}
		st.Players = append(st.Players, ps)
	}
	for _, gun := range g.guns {
		if !gun.Alive || gun.State == GunHeld {
			continue
		}
		st.Guns = append(st.Guns, GunPickupState{
			ID:     gun.ID,
			Weapon: gun.Def.Name,
			X:      round1(gun.X),
			Y:      round1(gun.Y),
			Ammo:   gun.Ammo,
		})
	}
	for _, b := range g.bullets {
		if !b.Alive {
			continue
		}
		st.Bullets = append(st.Bullets, BulletState{
			ID: b.ID, X: round1(b.X), Y: round1(b.Y),
			VX: round1(b.VX), VY: round1(b.VY), R: b.Radius,
		})
	}
	for _, bm := range g.beams {
		if !bm.Alive {
			continue
		}
		st.Beams = append(st.Beams, BeamState{
			ID: bm.ID, SX: round1(bm.SX), SY: round1(bm.SY),
			EX: round1(bm.EX), EY: round1(bm.EY),
			Age: round1(bm.Age), Color: bm.Color,
		})
	}
	return st
}

// compactGuns removes dead guns in place after the update pass
func (g *Game) compactGuns() {
	kept := g.guns[:0]
	for _, gun := range g.guns {
		if gun.Alive {
			kept = append(kept, gun)
		}
	}
	g.guns = kept
}

func (g *Game) compactBullets() {
	kept := g.bullets[:0]
	for _, b := range g.bullets {
		if b.Alive {
			kept = append(kept, b)
		}
	}
	g.bullets = kept
}

func (g *Game) compactBeams() {
	kept := g.beams[:0]
	for _, bm := range g.beams {
		if bm.Alive {
			kept = append(kept, bm)
		}
	}
	g.beams = kept
}

package main

import (
	"math/rand"
	"sync"
	"testing"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	binary   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

// newTestGame builds a bare match with no roster, so tests place
// agents exactly where they need them.
func newTestGame() *Game {
	return &Game{
		cfg:     DefaultConfig(),
		level:   BuildArena(),
		brains:  make(map[string]*BotBrain),
		clients: make(map[string]Broadcaster),
		rng:     rand.New(rand.NewSource(1)),
		stop:    make(chan struct{}),
	}
}

func addTestPlayer(g *Game, id string, x, y float64) *Player {
	p := NewPlayer(id, id, "#FFFFFF", false, x, y)
	g.players = append(g.players, p)
	return p
}

func armPlayer(g *Game, p *Player, defName string) *GunEntity {
	var def *WeaponDef
	for i := range Weapons {
		if Weapons[i].Name == defName {
			def = &Weapons[i]
		}
	}
	gun := NewGunEntity(def, p.X, p.Y-p.H*0.6, 0)
	gun.State = GunHeld
	gun.OwnerID = p.ID
	p.Holding = gun
	g.guns = append(g.guns, gun)
	return gun
}

func TestNewGameRoster(t *testing.T) {
	g := NewGame(DefaultConfig(), 42)

	if len(g.players) != 1+g.cfg.BotCount {
		t.Fatalf("expected %d players, got %d", 1+g.cfg.BotCount, len(g.players))
	}
	if g.players[0].IsBot {
		t.Error("primary slot should not be a bot")
	}
	for i, p := range g.players {
		if p.Holding == nil {
			t.Errorf("player %d should start armed", i)
		}
		if p.IsBot && g.brains[p.ID] == nil {
			t.Errorf("bot %d has no brain", i)
		}
	}
	if g.timeLeft != g.cfg.TimeLimit {
		t.Errorf("expected clock %v, got %v", g.cfg.TimeLimit, g.timeLeft)
	}
}

func TestGameAddPlayerClaimsSlots(t *testing.T) {
	g := NewGame(DefaultConfig(), 1)

	// First joiner claims the unconnected primary slot
	p1 := g.AddPlayer("Alice", 0)
	if p1 == nil || p1.ID != g.players[0].ID {
		t.Fatal("first joiner should claim the primary slot")
	}
	g.SetClient(p1.ID, &mockBroadcaster{})

	// Second joiner claims the bot slot
	p2 := g.AddPlayer("Bob", 0)
	if p2 == nil || !((p2.ID == g.players[1].ID) && !p2.IsBot) {
		t.Fatal("second joiner should claim the bot slot")
	}
	if _, ok := g.brains[p2.ID]; ok {
		t.Error("claimed slot should lose its brain")
	}
	g.SetClient(p2.ID, &mockBroadcaster{})

	// Further joiners append until the cap
	p3 := g.AddPlayer("Carol", 0)
	g.SetClient(p3.ID, &mockBroadcaster{})
	p4 := g.AddPlayer("Dave", 0)
	g.SetClient(p4.ID, &mockBroadcaster{})
	if p3 == nil || p4 == nil {
		t.Fatal("match should accept up to MaxPlayers")
	}
	if g.AddPlayer("Eve", 0) != nil {
		t.Error("full match should reject joiners")
	}
}

func TestGameRemovePlayerRevertsToBot(t *testing.T) {
	g := NewGame(DefaultConfig(), 1)
	p := g.AddPlayer("Alice", 0)
	g.SetClient(p.ID, &mockBroadcaster{})

	g.RemovePlayer(p.ID)
	if !g.players[0].IsBot {
		t.Error("departed player's slot should become a bot")
	}
	if g.brains[p.ID] == nil {
		t.Error("reverted bot needs a brain")
	}
	if g.PlayerCount() != 0 {
		t.Errorf("expected 0 connected players, got %d", g.PlayerCount())
	}
}

func TestGameHandleInput(t *testing.T) {
	g := NewGame(DefaultConfig(), 1)
	p := g.players[0]

	g.HandleInput(p.ID, Input{Right: true, Fire: true, AimX: 500, AimY: 300})
	if !p.In.Right || !p.In.Fire || p.In.AimX != 500 {
		t.Error("input should be staged on the player")
	}
}

func TestAdvanceTickAndClock(t *testing.T) {
	g := NewGame(DefaultConfig(), 1)
	start := g.timeLeft

	for i := 0; i < 60; i++ {
		g.Advance(TickDt, nil)
	}
	if g.tick != 60 {
		t.Errorf("expected tick 60, got %d", g.tick)
	}
	if g.timeLeft >= start {
		t.Error("clock should tick down")
	}
}

func TestSpawnCadenceRespectsCap(t *testing.T) {
	g := NewGame(DefaultConfig(), 7)
	in := Input{}

	for i := 0; i < 60*40; i++ {
		g.Advance(TickDt, &in)
		if n := g.groundGunCount(); n > g.cfg.MaxGuns {
			t.Fatalf("tick %d: %d ground guns exceeds cap %d", i, n, g.cfg.MaxGuns)
		}
	}
	if g.groundGunCount() == 0 {
		t.Error("weapons should have spawned over 40 seconds")
	}
	if g.spawnIval >= g.cfg.SpawnStart {
		t.Error("spawn interval should shrink as the match goes on")
	}
	if g.spawnIval < g.cfg.SpawnMin {
		t.Errorf("spawn interval %v fell below floor %v", g.spawnIval, g.cfg.SpawnMin)
	}
}

func TestAntiStuckSeparates(t *testing.T) {
	g := newTestGame()
	a := addTestPlayer(g, "a", 600, 1000)
	b := addTestPlayer(g, "b", 610, 1000)

	g.antiStuck(TickDt)

	ax, _ := a.Center()
	bx, _ := b.Center()
	if bx-ax <= 10 {
		t.Error("overlapping agents should be pushed apart")
	}
	if g.stuckT <= 0 {
		t.Error("overlap involving the primary agent should accrue stuck time")
	}

	// Far apart agents decay the counter instead
	a.X, b.X = 200, 1200
	prev := g.stuckT
	g.antiStuck(TickDt)
	if g.stuckT >= prev {
		t.Error("stuck time should decay once separated")
	}
}

func TestApplyDamageAndKOAttribution(t *testing.T) {
	g := newTestGame()
	att := addTestPlayer(g, "att", 400, 1204)
	vic := addTestPlayer(g, "vic", 800, 1204)

	g.ApplyDamage(vic, 30, 100, -50, att.ID)
	if vic.HP != 70 {
		t.Errorf("expected HP 70, got %d", vic.HP)
	}
	if vic.VX != 100 || vic.VY != -50 {
		t.Error("knockback should apply")
	}
	if vic.Invuln <= 0 || vic.Hitlag <= 0 {
		t.Error("hit should grant invulnerability and hitlag")
	}

	vic.Invuln = 0
	g.ApplyDamage(vic, 999, 0, 0, att.ID)
	if vic.Alive {
		t.Error("victim should be dead")
	}
	if vic.Deaths != 1 {
		t.Errorf("expected 1 death, got %d", vic.Deaths)
	}
	if att.KOs != 1 {
		t.Errorf("expected 1 KO for attacker, got %d", att.KOs)
	}
}

func TestApplyDamageDuringInvuln(t *testing.T) {
	g := newTestGame()
	p := addTestPlayer(g, "p", 400, 1204)
	p.Invuln = 0.3

	g.ApplyDamage(p, 50, 100, 0, "")
	if p.HP != PlayerMaxHP {
		t.Errorf("invulnerable agent should take no damage, HP %d", p.HP)
	}
	if p.VX != 0 {
		t.Error("invulnerable agent should take no knockback")
	}
}

func TestEnvironmentalDeathCountsNoKO(t *testing.T) {
	g := newTestGame()
	p := addTestPlayer(g, "p", 400, 1204)

	g.ApplyDamage(p, RingOutDamage, 0, 0, "")
	if p.Alive {
		t.Error("ring-out damage should kill")
	}
	if p.Deaths != 1 {
		t.Errorf("expected 1 death, got %d", p.Deaths)
	}
	for _, q := range g.players {
		if q.KOs != 0 {
			t.Error("environmental death should credit nobody")
		}
	}
}

func TestDeathDropsHeldWeapon(t *testing.T) {
	g := newTestGame()
	p := addTestPlayer(g, "p", 700, 1204)
	gun := armPlayer(g, p, "Pistol")

	g.ApplyDamage(p, 999, 0, 0, "")
	if p.Holding != nil {
		t.Error("dead agent should not hold a weapon")
	}
	if gun.State != GunGround || !gun.Alive {
		t.Error("dropped weapon should be a live ground pickup")
	}
	if gun.X != p.X {
		t.Errorf("drop should land at the body, got x=%v", gun.X)
	}
}

func TestAdvanceRespawnsDeadArmed(t *testing.T) {
	g := NewGame(DefaultConfig(), 3)
	bot := g.players[1]

	g.ApplyDamage(bot, 999, 0, 0, g.players[0].ID)
	if bot.Alive {
		t.Fatal("bot should be dead")
	}

	g.Advance(TickDt, &Input{})
	if !bot.Alive {
		t.Error("dead agents respawn on the next tick")
	}
	if bot.HP != bot.MaxHP {
		t.Errorf("respawn should restore HP, got %d", bot.HP)
	}
	if bot.Holding == nil {
		t.Error("respawned agent should be re-armed")
	}
	if bot.Invuln <= 0 {
		t.Error("respawn should grant an invulnerability window")
	}
}

func TestSnapshotSkipsHeldGuns(t *testing.T) {
	g := NewGame(DefaultConfig(), 5)
	g.guns = append(g.guns, NewGunEntity(&Weapons[0], 500, 1180, 10))

	st := g.Snapshot()
	if len(st.Players) != len(g.players) {
		t.Errorf("expected %d players in snapshot, got %d", len(g.players), len(st.Players))
	}
	if len(st.Guns) != 1 {
		t.Fatalf("held guns must not appear as pickups, got %d", len(st.Guns))
	}
	if st.Players[0].Weapon == "" {
		t.Error("armed player's snapshot should name its weapon")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := NewGame(DefaultConfig(), 5)
	st := g.Snapshot()

	data, err := EncodeSnapshot(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.Players) != len(st.Players) || back.Tick != st.Tick {
		t.Error("snapshot should survive the binary round trip")
	}
	if back.Players[0].ID != st.Players[0].ID {
		t.Error("player identity lost in round trip")
	}
}

func TestMatchClockRestart(t *testing.T) {
	g := NewGame(DefaultConfig(), 9)
	g.players[0].KOs = 3
	g.timeLeft = TickDt / 2

	g.Advance(TickDt, &Input{})
	if g.timeLeft != g.cfg.TimeLimit {
		t.Errorf("expired match should restart the clock, got %v", g.timeLeft)
	}
	if g.players[0].KOs != 0 {
		t.Error("restart should zero the scoreboard")
	}
}

func TestMatchRestartKeepsConnectedPlayer(t *testing.T) {
	g := NewGame(DefaultConfig(), 7)
	p := g.AddPlayer("Ada", 0)
	g.SetClient(p.ID, &mockBroadcaster{})
	p.KOs = 2
	g.timeLeft = TickDt / 2

	g.Advance(TickDt, nil)

	kept := g.FindPlayer(p.ID)
	if kept == nil {
		t.Fatal("connected player should survive a match restart")
	}
	if kept != p {
		t.Error("restart should reuse the connected player's struct")
	}
	if _, ok := g.clients[p.ID]; !ok {
		t.Error("client mapping should survive the restart")
	}
	if kept.IsBot {
		t.Error("kept player must stay human")
	}
	if kept.KOs != 0 || !kept.Alive || kept.Holding == nil {
		t.Errorf("restart should reset and re-arm the kept player: KOs=%d alive=%v armed=%v",
			kept.KOs, kept.Alive, kept.Holding != nil)
	}
	if len(g.players) != 1+g.cfg.BotCount {
		t.Errorf("restart should refill bots, roster=%d", len(g.players))
	}

	g.HandleInput(p.ID, Input{Left: true})
	if !p.In.Left {
		t.Error("staged input should still reach the kept slot")
	}
}

func TestKOQueuesAnalyticsEvent(t *testing.T) {
	g := newTestGame()
	g.analytics = &Analytics{events: make(chan AnalyticsEvent, 8)}
	killer := addTestPlayer(g, "k", 400, floorTop)
	victim := addTestPlayer(g, "v", 700, floorTop)
	victim.HP = 5

	g.ApplyDamage(victim, 10, 0, 0, killer.ID)

	select {
	case evt := <-g.analytics.events:
		if evt.Type != EvtPlayerKO {
			t.Errorf("expected %s event, got %s", EvtPlayerKO, evt.Type)
		}
	default:
		t.Error("a KO should queue an analytics event")
	}
}

func TestFinishMatchTieIsADraw(t *testing.T) {
	db := openTestDB(t)
	g := NewGame(DefaultConfig(), 11)
	g.db = db

	id1, err := db.CreatePlayer("ada", "h")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := db.CreatePlayer("bob", "h")
	if err != nil {
		t.Fatal(err)
	}
	g.players[0].AuthPlayerID = id1
	g.players[1].AuthPlayerID = id2

	// Tied leaders: nobody wins
	g.players[0].KOs = 3
	g.players[1].KOs = 3
	g.finishMatch()
	for _, id := range []int64{id1, id2} {
		_, _, won, err := db.LastMatch(id)
		if err != nil {
			t.Fatal(err)
		}
		if won {
			t.Error("a tied top score should record a draw for everyone")
		}
	}

	// A unique leader still takes the win
	g.players[0].KOs = 5
	g.players[1].KOs = 3
	g.finishMatch()
	if _, _, won, _ := db.LastMatch(id1); !won {
		t.Error("the sole leader should record the win")
	}
	if _, _, won, _ := db.LastMatch(id2); won {
		t.Error("the runner-up should not record a win")
	}
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	g1 := NewGame(DefaultConfig(), 42)
	g2 := NewGame(DefaultConfig(), 42)

	in := Input{Right: true, AimX: 2000, AimY: 400}
	for i := 0; i < 600; i++ {
		g1.Advance(TickDt, &in)
		g2.Advance(TickDt, &in)
	}

	for i := range g1.players {
		a, b := g1.players[i], g2.players[i]
		if a.X != b.X || a.Y != b.Y || a.HP != b.HP || a.KOs != b.KOs {
			t.Fatalf("divergence at player %d: (%v,%v,%d) vs (%v,%v,%d)",
				i, a.X, a.Y, a.HP, b.X, b.Y, b.HP)
		}
	}
	if len(g1.bullets) != len(g2.bullets) || len(g1.guns) != len(g2.guns) {
		t.Error("entity counts diverged under identical seeds")
	}
}

func TestNoSolidOverlapUnderRandomInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BotCount = 0
	g := NewGame(cfg, 12345)
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 60*20; i++ {
		in := Input{
			Left:  rng.Float64() < 0.3,
			Right: rng.Float64() < 0.3,
			Down:  rng.Float64() < 0.1,
			Jump:  rng.Float64() < 0.15,
			Dash:  rng.Float64() < 0.05,
			Fire:  rng.Float64() < 0.2,
			Toss:  rng.Float64() < 0.05,
			AimX:  rng.Float64() * WorldWidth,
			AimY:  rng.Float64() * WorldHeight,
		}
		g.Advance(TickDt, &in)

		p := g.players[0]
		if !p.Alive {
			continue
		}
		box := p.AABB()
		for _, pf := range g.level.ActiveRects() {
			if pf.Kind == TileSolid && box.Intersects(pf.Rect) {
				t.Fatalf("tick %d: agent at (%v,%v) overlaps solid %+v", i, p.X, p.Y, pf.Rect)
			}
		}
	}
}

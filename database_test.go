package main

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreatePlayerAndStats(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreatePlayer("alice", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero player id")
	}

	stats, err := db.GetStats(id)
	if err != nil || stats == nil {
		t.Fatalf("stats row should exist: %v", err)
	}
	if stats.Level != 1 || stats.XP != 0 || stats.Matches != 0 {
		t.Errorf("fresh stats should be zeroed at level 1: %+v", stats)
	}

	// Usernames are unique
	if _, err := db.CreatePlayer("alice", "other"); err == nil {
		t.Error("duplicate username should fail")
	}

	exists, _ := db.UsernameExists("alice")
	if !exists {
		t.Error("username should exist")
	}
	exists, _ = db.UsernameExists("bob")
	if exists {
		t.Error("unknown username should not exist")
	}
}

func TestGetPlayerByUsername(t *testing.T) {
	db := openTestDB(t)
	db.CreatePlayer("alice", "hash")

	p, err := db.GetPlayerByUsername("alice")
	if err != nil || p == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if p.Username != "alice" || p.PassHash != "hash" {
		t.Errorf("wrong row: %+v", p)
	}

	p, err = db.GetPlayerByUsername("nobody")
	if err != nil || p != nil {
		t.Error("unknown username should return nil, nil")
	}
}

func TestRecordMatchAccumulates(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("alice", "hash")

	if err := db.RecordMatch(id, 5, 2, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordMatch(id, 1, 4, false); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats, _ := db.GetStats(id)
	if stats.KOs != 6 || stats.Deaths != 6 {
		t.Errorf("expected 6/6 KOs/deaths, got %d/%d", stats.KOs, stats.Deaths)
	}
	if stats.Wins != 1 || stats.Losses != 1 || stats.Matches != 2 {
		t.Errorf("expected 1W 1L over 2 matches: %+v", stats)
	}

	// XP: (5*25 + 10 + 40) + (1*25 + 10) = 210
	if stats.XP != 210 {
		t.Errorf("expected 210 XP, got %d", stats.XP)
	}

	kos, deaths, won, err := db.LastMatch(id)
	if err != nil {
		t.Fatalf("last match: %v", err)
	}
	if kos != 1 || deaths != 4 || won {
		t.Errorf("wrong last match: %d/%d won=%v", kos, deaths, won)
	}
}

func TestXPLevelCurve(t *testing.T) {
	if XPForLevel(1) != 0 {
		t.Error("level 1 requires no XP")
	}
	if XPForLevel(2) != 100 {
		t.Errorf("level 2 requires 100 XP, got %d", XPForLevel(2))
	}
	for lvl := 2; lvl < 20; lvl++ {
		if XPForLevel(lvl) <= XPForLevel(lvl-1) {
			t.Fatalf("XP curve must be strictly increasing at level %d", lvl)
		}
	}

	if CalculateLevel(0) != 1 {
		t.Error("0 XP is level 1")
	}
	if CalculateLevel(99) != 1 {
		t.Error("99 XP is still level 1")
	}
	if CalculateLevel(100) != 2 {
		t.Error("100 XP reaches level 2")
	}
	if CalculateLevel(1<<40) != 100 {
		t.Error("level caps at 100")
	}
}

func TestUnlockAchievementIdempotent(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("alice", "hash")

	fresh, err := db.UnlockAchievement(id, "first_blood")
	if err != nil || !fresh {
		t.Fatalf("first unlock should be new: %v", err)
	}
	again, err := db.UnlockAchievement(id, "first_blood")
	if err != nil || again {
		t.Error("repeat unlock should be a no-op")
	}

	ids, _ := db.GetAchievements(id)
	if len(ids) != 1 || ids[0] != "first_blood" {
		t.Errorf("expected single achievement, got %v", ids)
	}
}

func TestSettingsUpsert(t *testing.T) {
	db := openTestDB(t)

	if v := db.GetSetting("jwt_secret"); v != "" {
		t.Error("missing setting should read empty")
	}
	db.SetSetting("jwt_secret", "aaa")
	db.SetSetting("jwt_secret", "bbb")
	if v := db.GetSetting("jwt_secret"); v != "bbb" {
		t.Errorf("expected upserted value, got %q", v)
	}
}

func TestLeaderboardOrderAndGuests(t *testing.T) {
	db := openTestDB(t)
	a, _ := db.CreatePlayer("alice", "hash")
	b, _ := db.CreatePlayer("bob", "hash")
	guest, _ := db.CreateGuest("Guest-1234")

	db.RecordMatch(a, 2, 0, true)
	db.RecordMatch(b, 10, 1, true)
	db.RecordMatch(guest, 50, 0, true)

	top, err := db.GetLeaderboard("kos", 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("guests must be excluded, got %d rows", len(top))
	}
	if top[0].Username != "bob" || top[0].Rank != 1 {
		t.Errorf("bob should lead by KOs: %+v", top[0])
	}

	// Unknown sort keys fall back instead of injecting
	if _, err := db.GetLeaderboard("xp; DROP TABLE players", 10); err != nil {
		t.Errorf("unknown order key should fall back: %v", err)
	}
}

func TestCheckAchievementsFirstBlood(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("alice", "hash")
	db.RecordMatch(id, 3, 0, true)

	unlocked := CheckAchievements(db, id, 3, 0, true)
	found := map[string]bool{}
	for _, a := range unlocked {
		found[a.ID] = true
	}
	if !found["first_blood"] {
		t.Error("a KO should unlock first_blood")
	}
	if !found["flawless"] {
		t.Error("a deathless win should unlock flawless")
	}

	// Second identical match unlocks nothing new on those fronts
	db.RecordMatch(id, 3, 0, true)
	again := CheckAchievements(db, id, 3, 0, true)
	for _, a := range again {
		if a.ID == "first_blood" || a.ID == "flawless" {
			t.Errorf("%s should not unlock twice", a.ID)
		}
	}
}

func TestAnalyticsEventCountsRollup(t *testing.T) {
	db := openTestDB(t)
	a := &Analytics{db: db}

	now := time.Now().UTC()
	a.flush([]AnalyticsEvent{
		{Type: EvtPlayerKO, PlayerID: 1, Timestamp: now},
		{Type: EvtPlayerKO, PlayerID: 2, Timestamp: now},
		{Type: EvtMatchStart, Timestamp: now},
	})

	counts, err := a.EventCounts(7)
	if err != nil {
		t.Fatalf("event counts: %v", err)
	}
	if counts[EvtPlayerKO] != 2 {
		t.Errorf("expected 2 KO events, got %d", counts[EvtPlayerKO])
	}
	if counts[EvtMatchStart] != 1 {
		t.Errorf("expected 1 match start, got %d", counts[EvtMatchStart])
	}
}

package main

// MatchConfig holds the tunable rules for one arena match
type MatchConfig struct {
	TimeLimit   float64 // seconds on the match clock
	BotCount    int     // scripted agents filled in at reset
	MaxPlayers  int
	MaxGuns     int     // cap on ground+thrown weapon pickups
	SpawnStart  float64 // initial weapon spawn interval, seconds
	SpawnMin    float64 // floor the interval shrinks toward
	SpawnShrink float64 // interval multiplier per spawn
	ViewW       float64 // camera viewport size
	ViewH       float64
	SpawnPoints [][2]float64
}

// DefaultConfig returns the standard duel setup: one primary agent,
// one bot, two minutes on the clock.
func DefaultConfig() MatchConfig {
	return MatchConfig{
		TimeLimit:   120,
		BotCount:    1,
		MaxPlayers:  4,
		MaxGuns:     12,
		SpawnStart:  4.0,
		SpawnMin:    0.9,
		SpawnShrink: 0.96,
		ViewW:       1600,
		ViewH:       1200,
		SpawnPoints: [][2]float64{
			{WorldWidth * 0.18, WorldHeight * 0.2},
			{WorldWidth * 0.82, WorldHeight * 0.2},
			{WorldWidth * 0.5, WorldHeight * 0.2},
		},
	}
}

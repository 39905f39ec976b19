package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var AchievementList = []AchievementDef{
	{"first_blood", "First Blood", "Score your first KO"},
	{"sharpshooter", "Sharpshooter", "Reach 100 career KOs"},
	{"centurion", "Centurion", "Reach 1000 career KOs"},
	{"rampage", "Rampage", "Score 10 KOs in a single match"},
	{"flawless", "Flawless", "Win a match without dying"},
	{"victor", "Victor", "Win 10 matches"},
	{"veteran", "Veteran", "Reach level 10"},
	{"elite", "Elite", "Reach level 25"},
	{"legend", "Legend", "Reach level 50"},
	{"regular", "Regular", "Finish 50 matches"},
}

// CheckAchievements unlocks any achievements a player's latest match
// or career totals now satisfy. Returns the newly unlocked defs.
func CheckAchievements(db *DB, playerID int64, matchKOs, matchDeaths int, won bool) []AchievementDef {
	if db == nil {
		return nil
	}

	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}

	existing, err := db.GetAchievements(playerID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, id := range existing {
		has[id] = true
	}

	earned := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_blood":
			return stats.KOs >= 1
		case "sharpshooter":
			return stats.KOs >= 100
		case "centurion":
			return stats.KOs >= 1000
		case "rampage":
			return matchKOs >= 10
		case "flawless":
			return won && matchDeaths == 0
		case "victor":
			return stats.Wins >= 10
		case "veteran":
			return stats.Level >= 10
		case "elite":
			return stats.Level >= 25
		case "legend":
			return stats.Level >= 50
		case "regular":
			return stats.Matches >= 50
		}
		return false
	}

	var unlocked []AchievementDef
	for _, def := range AchievementList {
		if earned(def.ID) {
			if fresh, err := db.UnlockAchievement(playerID, def.ID); err == nil && fresh {
				unlocked = append(unlocked, def)
			}
		}
	}
	return unlocked
}

package analytics

import "testing"

func TestEvaluateMatchBadges_Speedster(t *testing.T) {
	stats := PlayerMatchStats{WPM: 80, Accuracy: 90}
	badges := EvaluateMatchBadges(stats)
	if !hasBadge(badges, BadgeSpeedster) {
		t.Error("should earn Speedster at 80 WPM")
	}
	if hasBadge(badges, BadgeBlazing) {
		t.Error("should not earn Blazing at 80 WPM")
	}
}

func TestEvaluateMatchBadges_NoSpeedster(t *testing.T) {
	stats := PlayerMatchStats{WPM: 79.9, Accuracy: 90}
	badges := EvaluateMatchBadges(stats)
	if hasBadge(badges, BadgeSpeedster) {
		t.Error("should not earn Speedster at 79.9 WPM")
	}
}

func TestEvaluateMatchBadges_Blazing(t *testing.T) {
	stats := PlayerMatchStats{WPM: 125, Accuracy: 90}
	badges := EvaluateMatchBadges(stats)
	if !hasBadge(badges, BadgeBlazing) || !hasBadge(badges, BadgeSpeedster) {
		t.Error("should earn Blazing and Speedster at 125 WPM")
	}
}

func TestEvaluateMatchBadges_Flawless(t *testing.T) {
	stats := PlayerMatchStats{WPM: 30, Accuracy: 100}
	badges := EvaluateMatchBadges(stats)
	if !hasBadge(badges, BadgeFlawless) {
		t.Error("should earn Flawless with 100% accuracy")
	}
}

func TestEvaluateMatchBadges_IdleNotFlawless(t *testing.T) {
	stats := PlayerMatchStats{WPM: 0, Accuracy: 100}
	badges := EvaluateMatchBadges(stats)
	if len(badges) != 0 {
		t.Errorf("idle player should earn no badges, got %d", len(badges))
	}
}

func TestEvaluateMatchBadges_Precise(t *testing.T) {
	stats := PlayerMatchStats{WPM: 40, Accuracy: 98}
	badges := EvaluateMatchBadges(stats)
	if !hasBadge(badges, BadgePrecise) {
		t.Error("should earn Precise at 40 WPM and 98% accuracy")
	}
}

func TestEvaluateMatchBadges_NoPrecise(t *testing.T) {
	stats := PlayerMatchStats{WPM: 39, Accuracy: 99}
	badges := EvaluateMatchBadges(stats)
	if hasBadge(badges, BadgePrecise) {
		t.Error("should not earn Precise below 40 WPM")
	}
}

func TestEvaluateMatchBadges_Champion(t *testing.T) {
	stats := PlayerMatchStats{Rank: 1, Players: 2, WPM: 50, Accuracy: 90}
	badges := EvaluateMatchBadges(stats)
	if !hasBadge(badges, BadgeChampion) {
		t.Error("should earn Champion for winning a two-player match")
	}
}

func TestEvaluateMatchBadges_NoChampionSolo(t *testing.T) {
	stats := PlayerMatchStats{Rank: 1, Players: 1, WPM: 50, Accuracy: 90}
	badges := EvaluateMatchBadges(stats)
	if hasBadge(badges, BadgeChampion) {
		t.Error("should not earn Champion in a solo match")
	}
}

func TestEvaluateMatchBadges_MultipleBadges(t *testing.T) {
	stats := PlayerMatchStats{Rank: 1, Players: 4, WPM: 130, Accuracy: 100}
	badges := EvaluateMatchBadges(stats)
	// Should earn: Speedster, Blazing, Flawless, Precise, Champion
	if len(badges) != 5 {
		t.Errorf("should earn 5 badges, got %d", len(badges))
	}
}

func TestEvaluateLifetimeBadges_Unstoppable(t *testing.T) {
	stats := PlayerLifetimeStats{WinStreak: 3}
	badges := EvaluateLifetimeBadges(stats)
	if !hasBadge(badges, BadgeUnstoppable) {
		t.Error("should earn Unstoppable with 3-match win streak")
	}
}

func TestEvaluateLifetimeBadges_NoUnstoppable(t *testing.T) {
	stats := PlayerLifetimeStats{WinStreak: 2}
	badges := EvaluateLifetimeBadges(stats)
	if hasBadge(badges, BadgeUnstoppable) {
		t.Error("should not earn Unstoppable with 2-match win streak")
	}
}

func TestEvaluateLifetimeBadges_Veteran(t *testing.T) {
	stats := PlayerLifetimeStats{MatchesPlayed: 10}
	badges := EvaluateLifetimeBadges(stats)
	if !hasBadge(badges, BadgeVeteran) {
		t.Error("should earn Veteran with 10 matches")
	}
}

func TestEvaluateLifetimeBadges_NoVeteran(t *testing.T) {
	stats := PlayerLifetimeStats{MatchesPlayed: 9}
	badges := EvaluateLifetimeBadges(stats)
	if hasBadge(badges, BadgeVeteran) {
		t.Error("should not earn Veteran with 9 matches")
	}
}

func TestLeaderboardQuery_Unknown(t *testing.T) {
	if _, err := leaderboardQuery("score"); err == nil {
		t.Error("unknown category should fail")
	}
	for _, cat := range []string{"wpm", "accuracy", "wins"} {
		if _, err := leaderboardQuery(cat); err != nil {
			t.Errorf("leaderboardQuery(%q) error: %v", cat, err)
		}
	}
}

func hasBadge(badges []Badge, id BadgeID) bool {
	for _, b := range badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

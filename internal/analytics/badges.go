package analytics

type BadgeID string

const (
	BadgeSpeedster   BadgeID = "speedster"
	BadgeBlazing     BadgeID = "blazing"
	BadgeFlawless    BadgeID = "flawless"
	BadgePrecise     BadgeID = "precise"
	BadgeChampion    BadgeID = "champion"
	BadgeUnstoppable BadgeID = "unstoppable"
	BadgeVeteran     BadgeID = "veteran"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeSpeedster:   {ID: BadgeSpeedster, Name: "Speedster", Description: "80+ WPM in a single match", Icon: "⚡"},
	BadgeBlazing:     {ID: BadgeBlazing, Name: "Blazing Fingers", Description: "120+ WPM in a single match", Icon: "🔥"},
	BadgeFlawless:    {ID: BadgeFlawless, Name: "Flawless", Description: "100% accuracy in a match", Icon: "✨"},
	BadgePrecise:     {ID: BadgePrecise, Name: "Precise", Description: "98%+ accuracy at 40+ WPM", Icon: "🎯"},
	BadgeChampion:    {ID: BadgeChampion, Name: "Champion", Description: "Won a match against at least one opponent", Icon: "🏆"},
	BadgeUnstoppable: {ID: BadgeUnstoppable, Name: "Unstoppable", Description: "3-match win streak", Icon: "💪"},
	BadgeVeteran:     {ID: BadgeVeteran, Name: "Veteran", Description: "Played 10+ matches", Icon: "🏅"},
}

// EvaluateMatchBadges checks which badges a player earned in a single match.
func EvaluateMatchBadges(stats PlayerMatchStats) []Badge {
	var earned []Badge

	if stats.WPM >= 80 {
		earned = append(earned, AllBadges[BadgeSpeedster])
	}

	if stats.WPM >= 120 {
		earned = append(earned, AllBadges[BadgeBlazing])
	}

	// Flawless needs some typing; an idle player keeps the initial 100%.
	if stats.WPM > 0 && stats.Accuracy >= 100 {
		earned = append(earned, AllBadges[BadgeFlawless])
	}

	if stats.WPM >= 40 && stats.Accuracy >= 98 {
		earned = append(earned, AllBadges[BadgePrecise])
	}

	if stats.Rank == 1 && stats.Players >= 2 && stats.WPM > 0 {
		earned = append(earned, AllBadges[BadgeChampion])
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	// Unstoppable: 3-match win streak
	if stats.WinStreak >= 3 {
		earned = append(earned, AllBadges[BadgeUnstoppable])
	}

	// Veteran: 10+ matches
	if stats.MatchesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}

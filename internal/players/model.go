package players

import "time"

type Player struct {
	ID       string
	Name     string
	Color    string
	WPM      float64
	Progress float64
	Accuracy float64
	JoinedAt time.Time
}

// Stats is the live typing state a client reports.
type Stats struct {
	WPM      float64
	Progress float64
	Accuracy float64
}

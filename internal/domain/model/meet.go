package model

import "time"

// DateLayout is the display layout for meet dates (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// Meet is a competition session and its entered athletes.
type Meet struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     string    `json:"date"`
	Location string    `json:"location"`
	Athletes []Athlete `json:"athletes"`
}

// Clone returns a deep copy of the meet.
func (m Meet) Clone() Meet {
	out := m
	if m.Athletes != nil {
		out.Athletes = make([]Athlete, len(m.Athletes))
		copy(out.Athletes, m.Athletes)
	}
	return out
}

// AthleteByID returns the athlete with the given id.
func (m Meet) AthleteByID(id string) (Athlete, bool) {
	for _, a := range m.Athletes {
		if a.ID == id {
			return a, true
		}
	}
	return Athlete{}, false
}

// HistoryAthlete is an athlete frozen in a saved leaderboard, with derived
// results captured at save time.
type HistoryAthlete struct {
	Athlete
	Bests [liftCount]Weight `json:"bests"`
	Total Weight            `json:"total"`
	GL    float64           `json:"gl"`
}

// HistoryEntry is a saved leaderboard snapshot. A meet has at most one entry;
// saving again replaces it.
type HistoryEntry struct {
	MeetID   string           `json:"meet_id"`
	MeetName string           `json:"meet_name"`
	Date     string           `json:"date"`
	Location string           `json:"location"`
	SavedAt  time.Time        `json:"saved_at"`
	SortMode string           `json:"sort_mode"`
	Athletes []HistoryAthlete `json:"athletes"`
}

// Package types contains the wire shapes exchanged with HTTP and CLI clients.
package types

import (
	"time"

	"github.com/okian/liftboard/internal/domain/judging"
	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/strategy"
)

// MeetInput creates or patches a meet. Empty fields are left unchanged on
// patch.
type MeetInput struct {
	Name     string `json:"name" validate:"omitempty,max=120"`
	Date     string `json:"date" validate:"omitempty,meetdate"`
	Location string `json:"location" validate:"omitempty,max=120"`
}

// AthleteInput registers or updates an athlete. WeightClass is derived from
// sex and bodyweight when empty.
type AthleteInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Sex         string  `json:"sex" validate:"required,oneof=Female Male"`
	Category    string  `json:"category" validate:"omitempty,oneof=Sub-Junior Junior Open 'Master 1'"`
	Bodyweight  float64 `json:"bodyweight" validate:"gte=0,lte=400"`
	WeightClass string  `json:"weight_class" validate:"omitempty,max=16"`
}

// AttemptWeightInput sets the declared weight of an attempt in kilograms.
type AttemptWeightInput struct {
	Weight float64 `json:"weight" validate:"gte=0,lte=600"`
}

// VerdictInput sets one judge light. An empty verdict cycles the light.
type VerdictInput struct {
	Verdict string `json:"verdict" validate:"omitempty,oneof=pending good bad"`
}

// EventInput is a table-side mutation submitted for asynchronous apply.
type EventInput struct {
	EventID   string  `json:"event_id" validate:"required,max=128"`
	AthleteID string  `json:"athlete_id" validate:"required"`
	Kind      string  `json:"kind" validate:"required,oneof=attempt_weight verdict cycle_verdict"`
	Lift      string  `json:"lift" validate:"required,oneof=squat bench deadlift"`
	Attempt   int     `json:"attempt" validate:"gte=1,lte=3"`
	Judge     int     `json:"judge" validate:"omitempty,gte=1,lte=3"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=600"`
	Verdict   string  `json:"verdict" validate:"omitempty,oneof=pending good bad"`
}

// Attempt is an attempt as shown on the board.
type Attempt struct {
	Weight   float64  `json:"weight"`
	Verdicts []string `json:"verdicts"`
	Status   string   `json:"status"`
}

// Athlete is an athlete with attempts grouped per lift.
type Athlete struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Sex         string               `json:"sex"`
	Category    string               `json:"category"`
	Bodyweight  float64              `json:"bodyweight"`
	WeightClass string               `json:"weight_class"`
	Attempts    map[string][]Attempt `json:"attempts"`
	Total       float64              `json:"total"`
	GL          float64              `json:"gl"`
}

// Meet is a meet with its roster.
type Meet struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     string    `json:"date"`
	Location string    `json:"location"`
	Athletes []Athlete `json:"athletes"`
}

// MeetSummary is a meet without its roster.
type MeetSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
	Athletes int    `json:"athletes"`
}

// Row is a leaderboard row.
type Row struct {
	Place       int     `json:"place"`
	AthleteID   string  `json:"athlete_id"`
	Name        string  `json:"name"`
	Sex         string  `json:"sex"`
	Category    string  `json:"category"`
	WeightClass string  `json:"weight_class"`
	Bodyweight  float64 `json:"bodyweight"`
	Squat       float64 `json:"squat"`
	Bench       float64 `json:"bench"`
	Deadlift    float64 `json:"deadlift"`
	Total       float64 `json:"total"`
	Score       float64 `json:"score"`
}

// Leaderboard is a ranked, filtered view of a meet.
type Leaderboard struct {
	MeetID string `json:"meet_id"`
	View   string `json:"view"`
	Metric string `json:"metric"`
	Rows   []Row  `json:"rows"`
}

// Strategy is a solver result ready for display.
type Strategy struct {
	Status     string  `json:"status"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	Tie        bool    `json:"tie"`
	Note       string  `json:"note"`
	Display    string  `json:"display"`
	Iterations int     `json:"iterations"`
}

// HistoryEntry is a saved meet snapshot.
type HistoryEntry struct {
	MeetID   string    `json:"meet_id"`
	MeetName string    `json:"meet_name"`
	Date     string    `json:"date"`
	Location string    `json:"location"`
	SavedAt  time.Time `json:"saved_at"`
	SortMode string    `json:"sort_mode"`
	Athletes []Row     `json:"athletes"`
}

// FromAthlete converts a domain athlete.
func FromAthlete(a model.Athlete, sc *scoring.Scorer) Athlete {
	sum := sc.Summarize(a)
	out := Athlete{
		ID:          a.ID,
		Name:        a.Name,
		Sex:         string(a.Sex),
		Category:    string(a.Category),
		Bodyweight:  a.Bodyweight.Kg(),
		WeightClass: a.WeightClass,
		Attempts:    make(map[string][]Attempt, 3),
		Total:       sum.Total.Kg(),
		GL:          sum.Score,
	}
	for _, l := range model.Lifts() {
		set := a.Set(l)
		attempts := make([]Attempt, 0, len(set))
		for _, at := range set {
			verdicts := make([]string, 0, len(at.Verdicts))
			for _, v := range at.Verdicts {
				verdicts = append(verdicts, v.String())
			}
			attempts = append(attempts, Attempt{
				Weight:   at.Weight.Kg(),
				Verdicts: verdicts,
				Status:   judging.Status(at),
			})
		}
		out.Attempts[l.String()] = attempts
	}
	return out
}

// FromMeet converts a domain meet.
func FromMeet(m model.Meet, sc *scoring.Scorer) Meet {
	out := Meet{
		ID:       m.ID,
		Name:     m.Name,
		Date:     m.Date,
		Location: m.Location,
		Athletes: make([]Athlete, 0, len(m.Athletes)),
	}
	for _, a := range m.Athletes {
		out.Athletes = append(out.Athletes, FromAthlete(a, sc))
	}
	return out
}

// Summarize converts a domain meet without its roster.
func Summarize(m model.Meet) MeetSummary {
	return MeetSummary{
		ID:       m.ID,
		Name:     m.Name,
		Date:     m.Date,
		Location: m.Location,
		Athletes: len(m.Athletes),
	}
}

// FromEntry converts a ranking entry.
func FromEntry(e ranking.Entry) Row {
	return Row{
		Place:       e.Place,
		AthleteID:   e.AthleteID,
		Name:        e.Name,
		Sex:         string(e.Sex),
		Category:    string(e.Category),
		WeightClass: e.WeightClass,
		Bodyweight:  e.Bodyweight.Kg(),
		Squat:       e.Best(model.Squat).Kg(),
		Bench:       e.Best(model.Bench).Kg(),
		Deadlift:    e.Best(model.Deadlift).Kg(),
		Total:       e.Total.Kg(),
		Score:       e.Score,
	}
}

// FromEntries converts a ranked slice, never returning nil.
func FromEntries(entries []ranking.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, FromEntry(e))
	}
	return rows
}

// FromResult converts a solver result.
func FromResult(r strategy.Result) Strategy {
	return Strategy{
		Status:     r.Status.String(),
		Value:      r.Value,
		Unit:       string(r.Unit),
		Tie:        r.Tie,
		Note:       r.Note,
		Display:    r.Display(),
		Iterations: r.Iterations,
	}
}

// FromHistory converts a history entry.
func FromHistory(h model.HistoryEntry) HistoryEntry {
	out := HistoryEntry{
		MeetID:   h.MeetID,
		MeetName: h.MeetName,
		Date:     h.Date,
		Location: h.Location,
		SavedAt:  h.SavedAt,
		SortMode: h.SortMode,
		Athletes: make([]Row, 0, len(h.Athletes)),
	}
	for i, a := range h.Athletes {
		out.Athletes = append(out.Athletes, Row{
			Place:       i + 1,
			AthleteID:   a.ID,
			Name:        a.Name,
			Sex:         string(a.Sex),
			Category:    string(a.Category),
			WeightClass: a.WeightClass,
			Bodyweight:  a.Bodyweight.Kg(),
			Squat:       a.Bests[model.Squat].Kg(),
			Bench:       a.Bests[model.Bench].Kg(),
			Deadlift:    a.Bests[model.Deadlift].Kg(),
			Total:       a.Total.Kg(),
			Score:       a.GL,
		})
	}
	return out
}

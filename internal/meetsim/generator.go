package meetsim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/types"
	"github.com/okian/liftboard/internal/domain/weightclass"
)

// Plate increment every attempt is rounded to.
const plateKg = 2.5

// Probability that a single judge gives a white light.
const goodLightRate = 0.8

type liftRange struct{ min, max float64 }

type profile struct {
	bodyweight liftRange
	lifts      [3]liftRange
}

var profiles = map[model.Sex]profile{
	model.Female: {
		bodyweight: liftRange{45, 100},
		lifts:      [3]liftRange{{80, 180}, {45, 110}, {100, 200}},
	},
	model.Male: {
		bodyweight: liftRange{59, 140},
		lifts:      [3]liftRange{{150, 300}, {90, 200}, {180, 330}},
	},
}

var firstNames = []string{
	"Ada", "Bea", "Cal", "Dee", "Eli", "Fay", "Gus", "Hal",
	"Ivy", "Jon", "Kai", "Lea", "Max", "Nia", "Oto", "Pia",
}

// Generator produces reproducible simulated meets.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Meet generates a meet with n fully judged athletes. Athlete ids are local
// placeholders until the server assigns real ones.
func (g *Generator) Meet(name string, n int) model.Meet {
	m := model.Meet{ID: "sim", Name: name, Location: "Simulated Platform"}
	categories := model.Categories()
	for i := range n {
		sex := model.Female
		if g.rng.IntN(2) == 1 {
			sex = model.Male
		}
		p := profiles[sex]
		a := model.Athlete{
			ID:         fmt.Sprintf("sim-%03d", i+1),
			Name:       fmt.Sprintf("%s %03d", firstNames[i%len(firstNames)], i+1),
			Sex:        sex,
			Category:   categories[g.rng.IntN(len(categories))],
			Bodyweight: model.FromKg(g.between(p.bodyweight, 0.1)),
		}
		a.WeightClass = weightclass.Lookup(a.Sex, a.Bodyweight)
		for _, l := range model.Lifts() {
			a.Attempts[l] = g.attempts(p.lifts[l])
		}
		m.Athletes = append(m.Athletes, a)
	}
	return m
}

func (g *Generator) attempts(r liftRange) model.AttemptSet {
	var set model.AttemptSet
	w := g.between(r, plateKg)
	for i := range set {
		if i > 0 {
			w += plateKg * float64(1+g.rng.IntN(4))
		}
		set[i].Weight = model.FromKg(w)
		for j := range set[i].Verdicts {
			set[i].Verdicts[j] = model.Bad
			if g.rng.Float64() < goodLightRate {
				set[i].Verdicts[j] = model.Good
			}
		}
	}
	return set
}

// between draws from r rounded to step.
func (g *Generator) between(r liftRange, step float64) float64 {
	v := r.min + g.rng.Float64()*(r.max-r.min)
	return math.Round(v/step) * step
}

// Events returns the table events that rebuild a's attempts on the server
// athlete with id athleteID, in shuffled order.
func (g *Generator) Events(a model.Athlete, athleteID string) []types.EventInput {
	var out []types.EventInput
	for _, l := range model.Lifts() {
		for i, at := range a.Set(l) {
			out = append(out, types.EventInput{
				EventID:   uuid.NewString(),
				AthleteID: athleteID,
				Kind:      string(model.MutationAttemptWeight),
				Lift:      l.String(),
				Attempt:   i + 1,
				Weight:    at.Weight.Kg(),
			})
			for j, v := range at.Verdicts {
				out = append(out, types.EventInput{
					EventID:   uuid.NewString(),
					AthleteID: athleteID,
					Kind:      string(model.MutationVerdict),
					Lift:      l.String(),
					Attempt:   i + 1,
					Judge:     j + 1,
					Verdict:   v.String(),
				})
			}
		}
	}
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Duplicates picks a rate-sized random sample of events to resubmit.
func (g *Generator) Duplicates(events []types.EventInput, rate float64) []types.EventInput {
	var out []types.EventInput
	for _, e := range events {
		if g.rng.Float64() < rate {
			out = append(out, e)
		}
	}
	return out
}

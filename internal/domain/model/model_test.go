package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	model "github.com/okian/liftboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestWeight(t *testing.T) {
	convey.Convey("Given kilogram inputs", t, func() {
		convey.Convey("When converting plate increments", func() {
			convey.So(model.FromKg(182.5), convey.ShouldEqual, model.Weight(18250))
			convey.So(model.FromKg(2.5).Kg(), convey.ShouldEqual, 2.5)
			convey.So(model.FromKg(0.1)+model.FromKg(0.2), convey.ShouldEqual, model.FromKg(0.3))
		})

		convey.Convey("When the input is negative or not finite", func() {
			convey.Convey("Then it clamps to zero", func() {
				convey.So(model.FromKg(-5), convey.ShouldEqual, model.Weight(0))
				convey.So(model.FromKg(math.NaN()), convey.ShouldEqual, model.Weight(0))
				convey.So(model.FromKg(math.Inf(1)), convey.ShouldEqual, model.Weight(0))
			})
		})

		convey.Convey("When the input is huge", func() {
			convey.Convey("Then it clamps so three lifts still sum", func() {
				convey.So(model.FromKg(1e300), convey.ShouldEqual, model.MaxWeight)
				convey.So(model.FromKg(1e300)*3, convey.ShouldBeGreaterThan, model.Weight(0))
			})
		})

		convey.Convey("When formatting", func() {
			convey.So(model.FromKg(510).String(), convey.ShouldEqual, "510.0")
			convey.So(model.FromKg(117.5).String(), convey.ShouldEqual, "117.5")
		})

		convey.Convey("When decoding JSON", func() {
			var w model.Weight
			convey.So(json.Unmarshal([]byte("142.5"), &w), convey.ShouldBeNil)
			convey.So(w, convey.ShouldEqual, model.FromKg(142.5))
			convey.So(json.Unmarshal([]byte("null"), &w), convey.ShouldBeNil)
			convey.So(w, convey.ShouldEqual, model.Weight(0))
			convey.So(json.Unmarshal([]byte(`"heavy"`), &w), convey.ShouldNotBeNil)
		})
	})
}

func TestLiftAndView(t *testing.T) {
	convey.Convey("Given lift names", t, func() {
		convey.Convey("When parsing known lifts", func() {
			for _, l := range model.Lifts() {
				parsed, err := model.ParseLift(l.Label())
				convey.So(err, convey.ShouldBeNil)
				convey.So(parsed, convey.ShouldEqual, l)
			}
		})

		convey.Convey("When parsing an unknown lift", func() {
			_, err := model.ParseLift("snatch")
			convey.So(errors.Is(err, model.ErrUnknownLift), convey.ShouldBeTrue)
		})

		convey.Convey("When mapping views to lifts", func() {
			l, ok := model.ViewOf(model.Bench).Lift()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(l, convey.ShouldEqual, model.Bench)

			_, ok = model.ViewTotal.Lift()
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(model.ViewTotal.IsTotal(), convey.ShouldBeTrue)
		})

		convey.Convey("When parsing views", func() {
			v, err := model.ParseView("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, model.ViewTotal)

			v, err = model.ParseView("Deadlift")
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, model.ViewDeadlift)

			_, err = model.ParseView("clean")
			convey.So(errors.Is(err, model.ErrUnknownView), convey.ShouldBeTrue)
		})
	})
}

func TestVerdict(t *testing.T) {
	convey.Convey("Given a judge light", t, func() {
		convey.Convey("When cycling", func() {
			convey.So(model.Pending.Next(), convey.ShouldEqual, model.Good)
			convey.So(model.Good.Next(), convey.ShouldEqual, model.Bad)
			convey.So(model.Bad.Next(), convey.ShouldEqual, model.Pending)
		})

		convey.Convey("When round-tripping through JSON", func() {
			var a model.Attempt
			err := json.Unmarshal([]byte(`{"weight":180,"verdicts":["good","bad","pending"]}`), &a)
			convey.So(err, convey.ShouldBeNil)
			convey.So(a.Weight, convey.ShouldEqual, model.FromKg(180))
			convey.So(a.Verdicts, convey.ShouldResemble, [3]model.Verdict{model.Good, model.Bad, model.Pending})
		})

		convey.Convey("When parsing an unknown verdict", func() {
			_, err := model.ParseVerdict("maybe")
			convey.So(errors.Is(err, model.ErrUnknownVerdict), convey.ShouldBeTrue)
		})
	})
}

func TestAthlete(t *testing.T) {
	convey.Convey("Given an athlete", t, func() {
		a := model.Athlete{ID: "a1", Name: "Ana", Sex: model.Female, Bodyweight: model.FromKg(62.4)}

		convey.Convey("When editing an attempt through the accessor", func() {
			att, ok := a.Attempt(model.Deadlift, 2)
			convey.So(ok, convey.ShouldBeTrue)
			att.Weight = model.FromKg(200)
			convey.So(a.Set(model.Deadlift)[2].Weight, convey.ShouldEqual, model.FromKg(200))
			convey.So(a.Set(model.Squat)[2].Weight, convey.ShouldEqual, model.Weight(0))
		})

		convey.Convey("When the attempt index is out of range", func() {
			_, ok := a.Attempt(model.Squat, 3)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = a.Attempt(model.Lift(7), 0)
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When parsing sex and category", func() {
			sex, err := model.ParseSex("male")
			convey.So(err, convey.ShouldBeNil)
			convey.So(sex, convey.ShouldEqual, model.Male)

			c, err := model.ParseCategory("master 1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(c, convey.ShouldEqual, model.Master1)

			_, err = model.ParseCategory("Veteran")
			convey.So(errors.Is(err, model.ErrUnknownCategory), convey.ShouldBeTrue)
		})
	})
}

func TestMeetClone(t *testing.T) {
	convey.Convey("Given a meet with athletes", t, func() {
		m := model.Meet{ID: "m1", Athletes: []model.Athlete{{ID: "a1"}, {ID: "a2"}}}

		convey.Convey("When the clone is modified", func() {
			c := m.Clone()
			c.Athletes[0].Attempts[model.Squat][0].Weight = model.FromKg(100)

			convey.Convey("Then the original is unchanged", func() {
				convey.So(m.Athletes[0].Attempts[model.Squat][0].Weight, convey.ShouldEqual, model.Weight(0))
			})
		})

		convey.Convey("When looking up by id", func() {
			a, ok := m.AthleteByID("a2")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(a.ID, convey.ShouldEqual, "a2")
			_, ok = m.AthleteByID("zz")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

package ranking_test

import (
	"testing"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func lifter(id string, bw, squat, bench, deadlift float64) model.Athlete {
	a := model.Athlete{ID: id, Name: id, Sex: model.Male, Bodyweight: model.FromKg(bw)}
	passed := [3]model.Verdict{model.Good, model.Good, model.Good}
	a.Attempts[model.Squat][0] = model.Attempt{Weight: model.FromKg(squat), Verdicts: passed}
	a.Attempts[model.Bench][0] = model.Attempt{Weight: model.FromKg(bench), Verdicts: passed}
	a.Attempts[model.Deadlift][0] = model.Attempt{Weight: model.FromKg(deadlift), Verdicts: passed}
	return a
}

func ids(entries []ranking.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.AthleteID
	}
	return out
}

func TestRank(t *testing.T) {
	Convey("Given two athletes with equal totals", t, func() {
		a := lifter("A", 80, 200, 100, 200)
		b := lifter("B", 82, 200, 100, 200)

		Convey("When ranked by total", func() {
			got := ranking.Rank([]model.Athlete{b, a}, model.ViewTotal, scoring.MetricTotal)

			Convey("Then the lighter athlete is first", func() {
				So(ids(got), ShouldResemble, []string{"A", "B"})
				So(got[0].Place, ShouldEqual, 1)
				So(got[1].Place, ShouldEqual, 2)
				So(got[0].Total, ShouldEqual, model.FromKg(500))
			})
		})
	})

	Convey("Given athletes with equal totals and bodyweights", t, func() {
		a := lifter("A", 80, 200, 100, 200)
		b := lifter("B", 80, 210, 90, 200)

		Convey("Then input order is kept", func() {
			So(ids(ranking.Rank([]model.Athlete{a, b}, model.ViewTotal, scoring.MetricTotal)), ShouldResemble, []string{"A", "B"})
			So(ids(ranking.Rank([]model.Athlete{b, a}, model.ViewTotal, scoring.MetricTotal)), ShouldResemble, []string{"B", "A"})
		})
	})

	Convey("Given a heavier athlete with a bigger total", t, func() {
		light := lifter("light", 60, 180, 100, 210)
		heavy := lifter("heavy", 120, 200, 110, 220)

		Convey("When ranked by total", func() {
			So(ids(ranking.Rank([]model.Athlete{light, heavy}, model.ViewTotal, scoring.MetricTotal)), ShouldResemble, []string{"heavy", "light"})
		})

		Convey("When ranked by GL", func() {
			got := ranking.Rank([]model.Athlete{heavy, light}, model.ViewTotal, scoring.MetricNormalized)
			So(ids(got), ShouldResemble, []string{"light", "heavy"})
			So(got[0].Score, ShouldBeGreaterThan, got[1].Score)
		})
	})

	Convey("Given equal totals at different bodyweights", t, func() {
		a := lifter("A", 90, 200, 100, 200)
		b := lifter("B", 80, 200, 100, 200)

		Convey("Then the GL secondary key decides before bodyweight", func() {
			got := ranking.Rank([]model.Athlete{a, b}, model.ViewTotal, scoring.MetricTotal)
			So(ids(got), ShouldResemble, []string{"B", "A"})
		})
	})

	Convey("Given a lift view", t, func() {
		a := lifter("A", 80, 200, 150, 200)
		b := lifter("B", 90, 250, 100, 200)
		c := lifter("C", 70, 250, 90, 190)

		Convey("Then only that lift's best counts, then bodyweight", func() {
			So(ids(ranking.Rank([]model.Athlete{a, b, c}, model.ViewBench, scoring.MetricTotal)), ShouldResemble, []string{"A", "B", "C"})
			So(ids(ranking.Rank([]model.Athlete{a, b, c}, model.ViewSquat, scoring.MetricTotal)), ShouldResemble, []string{"C", "B", "A"})
		})
	})

	Convey("Given an unchanged snapshot", t, func() {
		field := []model.Athlete{lifter("A", 80, 1, 2, 3), lifter("B", 70, 3, 2, 1), lifter("C", 75, 2, 2, 2)}
		before := field[0]

		Convey("Then ranking twice yields identical output and leaves input alone", func() {
			first := ranking.Rank(field, model.ViewTotal, scoring.MetricNormalized)
			second := ranking.Rank(field, model.ViewTotal, scoring.MetricNormalized)
			So(second, ShouldResemble, first)
			So(field[0], ShouldResemble, before)
		})
	})

	Convey("Given no athletes", t, func() {
		So(ranking.Rank(nil, model.ViewTotal, scoring.MetricTotal), ShouldBeEmpty)
	})
}

func TestFilter(t *testing.T) {
	Convey("Given a mixed field", t, func() {
		f1 := model.Athlete{ID: "f1", Sex: model.Female, Category: model.Open, WeightClass: "63kg"}
		f2 := model.Athlete{ID: "f2", Sex: model.Female, Category: model.Junior, WeightClass: "57kg"}
		m1 := model.Athlete{ID: "m1", Sex: model.Male, Category: model.Open, WeightClass: "83kg"}
		field := []model.Athlete{f1, f2, m1}

		Convey("When the filter is empty", func() {
			So(ranking.Filter{}.Apply(field), ShouldHaveLength, 3)
		})

		Convey("When filtering by sex", func() {
			So(ranking.Filter{Sex: model.Female}.Apply(field), ShouldResemble, []model.Athlete{f1, f2})
		})

		Convey("When filtering by category and class", func() {
			So(ranking.Filter{Category: model.Open, WeightClass: "83kg"}.Apply(field), ShouldResemble, []model.Athlete{m1})
		})
	})
}

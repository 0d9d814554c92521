package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/liftboard/internal/adapters/repository"
	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakePersister struct {
	meets   []model.Meet
	history []model.HistoryEntry
	saved   map[string]model.Meet
	deleted []string
	err     error
	closed  bool
}

func (f *fakePersister) Load(context.Context) ([]model.Meet, []model.HistoryEntry, error) {
	return f.meets, f.history, f.err
}

func (f *fakePersister) SaveMeet(_ context.Context, m model.Meet) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string]model.Meet)
	}
	f.saved[m.ID] = m
	return nil
}

func (f *fakePersister) DeleteMeet(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePersister) SaveHistory(_ context.Context, h model.HistoryEntry) error {
	if f.err != nil {
		return f.err
	}
	f.history = append(f.history, h)
	return nil
}

func (f *fakePersister) Close() error {
	f.closed = true
	return nil
}

func newStore(t *testing.T, opts ...repository.Option) *repository.MemoryStore {
	t.Helper()
	s, err := repository.NewMemoryStore(context.Background(), opts...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestMemoryStoreMeets(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		s := newStore(t)

		Convey("When a meet is created without an id", func() {
			m, err := s.CreateMeet(ctx, model.Meet{Name: "Open Session A", Location: "Main Platform"})

			Convey("Then an id is assigned and the meet can be read back", func() {
				So(err, ShouldBeNil)
				So(m.ID, ShouldNotBeEmpty)
				got, err := s.Meet(ctx, m.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Open Session A")
			})

			Convey("Then creating the same id again fails", func() {
				_, err := s.CreateMeet(ctx, model.Meet{ID: m.ID})
				So(errors.Is(err, repository.ErrInvalidMutation), ShouldBeTrue)
			})

			Convey("Then a patch changes only the given fields", func() {
				got, err := s.UpdateMeet(ctx, m.ID, repository.MeetPatch{Date: "14/10/2026"})
				So(err, ShouldBeNil)
				So(got.Date, ShouldEqual, "14/10/2026")
				So(got.Location, ShouldEqual, "Main Platform")
			})

			Convey("Then deleting removes it", func() {
				So(s.DeleteMeet(ctx, m.ID), ShouldBeNil)
				_, err := s.Meet(ctx, m.ID)
				So(errors.Is(err, repository.ErrMeetNotFound), ShouldBeTrue)
				So(errors.Is(s.DeleteMeet(ctx, m.ID), repository.ErrMeetNotFound), ShouldBeTrue)
			})
		})

		Convey("When several meets are created", func() {
			for _, id := range []string{"m3", "m1", "m2"} {
				_, err := s.CreateMeet(ctx, model.Meet{ID: id})
				So(err, ShouldBeNil)
			}

			Convey("Then they are listed in creation order", func() {
				meets, err := s.Meets(ctx)
				So(err, ShouldBeNil)
				So(meets, ShouldHaveLength, 3)
				So(meets[0].ID, ShouldEqual, "m3")
				So(meets[2].ID, ShouldEqual, "m2")
			})
		})

		Convey("When reading an unknown meet", func() {
			_, err := s.Meet(ctx, "missing")
			So(errors.Is(err, repository.ErrMeetNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreAthletes(t *testing.T) {
	Convey("Given a meet", t, func() {
		ctx := context.Background()
		s := newStore(t)
		m, err := s.CreateMeet(ctx, model.Meet{ID: "m1"})
		So(err, ShouldBeNil)

		Convey("When an athlete is added without a class", func() {
			a, err := s.AddAthlete(ctx, m.ID, model.Athlete{
				Name:       "Ada",
				Sex:        model.Female,
				Bodyweight: model.FromKg(62.4),
			})

			Convey("Then the class and category are derived", func() {
				So(err, ShouldBeNil)
				So(a.ID, ShouldNotBeEmpty)
				So(a.WeightClass, ShouldEqual, "63kg")
				So(a.Category, ShouldEqual, model.Open)
				meets, athletes := s.Count(ctx)
				So(meets, ShouldEqual, 1)
				So(athletes, ShouldEqual, 1)
			})

			Convey("Then a profile update keeps attempts and derives the class again", func() {
				_, err := s.Apply(ctx, model.Mutation{
					MeetID: m.ID, AthleteID: a.ID, Kind: model.MutationAttemptWeight,
					Lift: model.Squat, Attempt: 0, Weight: model.FromKg(140),
				})
				So(err, ShouldBeNil)

				a.Bodyweight = model.FromKg(70)
				a.WeightClass = ""
				got, err := s.UpdateAthlete(ctx, m.ID, a)
				So(err, ShouldBeNil)
				So(got.WeightClass, ShouldEqual, "76kg")
				So(got.Attempts[model.Squat][0].Weight, ShouldEqual, model.FromKg(140))
			})

			Convey("Then snapshots are isolated from later writes", func() {
				before, err := s.Meet(ctx, m.ID)
				So(err, ShouldBeNil)
				before.Athletes[0].Name = "changed"

				_, err = s.Apply(ctx, model.Mutation{
					MeetID: m.ID, AthleteID: a.ID, Kind: model.MutationVerdict,
					Lift: model.Bench, Attempt: 1, Judge: 2, Verdict: model.Good,
				})
				So(err, ShouldBeNil)

				So(before.Athletes[0].Attempts[model.Bench][1].Verdicts[2], ShouldEqual, model.Pending)
				after, _ := s.Meet(ctx, m.ID)
				So(after.Athletes[0].Name, ShouldEqual, "Ada")
				So(after.Athletes[0].Attempts[model.Bench][1].Verdicts[2], ShouldEqual, model.Good)
			})

			Convey("Then removing it twice fails the second time", func() {
				So(s.RemoveAthlete(ctx, m.ID, a.ID), ShouldBeNil)
				err := s.RemoveAthlete(ctx, m.ID, a.ID)
				So(errors.Is(err, repository.ErrAthleteNotFound), ShouldBeTrue)
			})
		})

		Convey("When updating an unknown athlete", func() {
			_, err := s.UpdateAthlete(ctx, m.ID, model.Athlete{ID: "nobody"})
			So(errors.Is(err, repository.ErrAthleteNotFound), ShouldBeTrue)
		})

		Convey("When adding to an unknown meet", func() {
			_, err := s.AddAthlete(ctx, "missing", model.Athlete{Name: "X"})
			So(errors.Is(err, repository.ErrMeetNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreApply(t *testing.T) {
	Convey("Given an athlete", t, func() {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.CreateMeet(ctx, model.Meet{ID: "m1", Athletes: []model.Athlete{{ID: "a1", Name: "Ada"}}})
		So(err, ShouldBeNil)

		base := model.Mutation{MeetID: "m1", AthleteID: "a1", Lift: model.Deadlift, Attempt: 2}

		Convey("When a judge light is cycled three times", func() {
			mu := base
			mu.Kind = model.MutationCycleVerdict
			mu.Judge = 1
			var seen []model.Verdict
			for range 3 {
				a, err := s.Apply(ctx, mu)
				So(err, ShouldBeNil)
				seen = append(seen, a.Attempts[model.Deadlift][2].Verdicts[1])
			}

			Convey("Then it goes good, bad, pending", func() {
				So(seen, ShouldResemble, []model.Verdict{model.Good, model.Bad, model.Pending})
			})
		})

		Convey("When a negative weight is set", func() {
			mu := base
			mu.Kind = model.MutationAttemptWeight
			mu.Weight = -5
			a, err := s.Apply(ctx, mu)
			So(err, ShouldBeNil)
			So(a.Attempts[model.Deadlift][2].Weight, ShouldEqual, model.Weight(0))
		})

		Convey("When addressing out of range slots", func() {
			mu := base
			mu.Kind = model.MutationVerdict
			mu.Verdict = model.Good

			bad := mu
			bad.Attempt = 3
			_, err := s.Apply(ctx, bad)
			So(errors.Is(err, repository.ErrInvalidAttempt), ShouldBeTrue)

			bad = mu
			bad.Judge = 3
			_, err = s.Apply(ctx, bad)
			So(errors.Is(err, repository.ErrInvalidJudge), ShouldBeTrue)

			bad = mu
			bad.Lift = model.Lift(7)
			_, err = s.Apply(ctx, bad)
			So(errors.Is(err, repository.ErrInvalidLift), ShouldBeTrue)

			bad = mu
			bad.Verdict = model.Verdict(9)
			_, err = s.Apply(ctx, bad)
			So(errors.Is(err, repository.ErrInvalidVerdict), ShouldBeTrue)

			bad = mu
			bad.Kind = "unknown"
			_, err = s.Apply(ctx, bad)
			So(errors.Is(err, repository.ErrInvalidMutation), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreHistory(t *testing.T) {
	Convey("Given two meets", t, func() {
		ctx := context.Background()
		clock := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
		s := newStore(t, repository.WithClock(func() time.Time { return clock }))
		_, _ = s.CreateMeet(ctx, model.Meet{ID: "m1"})
		_, _ = s.CreateMeet(ctx, model.Meet{ID: "m2"})

		Convey("When history is saved for both and one is saved again", func() {
			So(s.SaveHistory(ctx, model.HistoryEntry{MeetID: "m1", SortMode: "total"}), ShouldBeNil)
			clock = clock.Add(time.Minute)
			So(s.SaveHistory(ctx, model.HistoryEntry{MeetID: "m2"}), ShouldBeNil)
			clock = clock.Add(time.Minute)
			So(s.SaveHistory(ctx, model.HistoryEntry{MeetID: "m1", SortMode: "gl"}), ShouldBeNil)

			Convey("Then each meet has one entry, newest first", func() {
				h, err := s.History(ctx)
				So(err, ShouldBeNil)
				So(h, ShouldHaveLength, 2)
				So(h[0].MeetID, ShouldEqual, "m1")
				So(h[0].SortMode, ShouldEqual, "gl")
				So(h[1].MeetID, ShouldEqual, "m2")
			})
		})

		Convey("When history is saved for an unknown meet", func() {
			err := s.SaveHistory(ctx, model.HistoryEntry{MeetID: "nope"})
			So(errors.Is(err, repository.ErrMeetNotFound), ShouldBeTrue)
		})

		Convey("When a meet is deleted", func() {
			So(s.SaveHistory(ctx, model.HistoryEntry{MeetID: "m1"}), ShouldBeNil)
			So(s.DeleteMeet(ctx, "m1"), ShouldBeNil)
			h, _ := s.History(ctx)
			So(h, ShouldBeEmpty)
		})
	})
}

func TestMemoryStorePersistence(t *testing.T) {
	Convey("Given a persister with stored meets", t, func() {
		ctx := context.Background()
		p := &fakePersister{
			meets:   []model.Meet{{ID: "m1", Name: "Stored", Athletes: []model.Athlete{{ID: "a1"}}}},
			history: []model.HistoryEntry{{MeetID: "m1"}},
		}
		s := newStore(t, repository.WithPersister(p))

		Convey("Then state is loaded on construction", func() {
			m, err := s.Meet(ctx, "m1")
			So(err, ShouldBeNil)
			So(m.Name, ShouldEqual, "Stored")
			h, _ := s.History(ctx)
			So(h, ShouldHaveLength, 1)
		})

		Convey("Then writes go through to the persister", func() {
			_, err := s.AddAthlete(ctx, "m1", model.Athlete{ID: "a2"})
			So(err, ShouldBeNil)
			So(p.saved["m1"].Athletes, ShouldHaveLength, 2)
			So(s.DeleteMeet(ctx, "m1"), ShouldBeNil)
			So(p.deleted, ShouldResemble, []string{"m1"})
		})

		Convey("When the persister fails", func() {
			p.err = errors.New("disk full")
			_, err := s.AddAthlete(ctx, "m1", model.Athlete{ID: "a2"})

			Convey("Then the change is not published", func() {
				So(errors.Is(err, repository.ErrPersist), ShouldBeTrue)
				m, _ := s.Meet(ctx, "m1")
				So(m.Athletes, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a persister that fails to load", t, func() {
		p := &fakePersister{err: errors.New("corrupt")}
		_, err := repository.NewMemoryStore(context.Background(), repository.WithPersister(p))
		So(errors.Is(err, repository.ErrPersist), ShouldBeTrue)

		Convey("Then the persister is closed", func() {
			So(p.closed, ShouldBeTrue)
		})
	})
}

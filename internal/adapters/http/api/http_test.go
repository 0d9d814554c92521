package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/liftboard/internal/adapters/http/api"
	"github.com/okian/liftboard/internal/adapters/repository"
	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/strategy"
	"github.com/okian/liftboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	seen     map[string]bool
	enqueue  bool
	enqueued []model.Mutation

	meet    model.Meet
	applied []model.Mutation
	added   []model.Athlete
	err     error

	leaderboardView   model.View
	leaderboardMetric scoring.Metric
	leaderboardFilter ranking.Filter
	strategyReq       strategy.Request
	strategyRes       strategy.Result
	historyMetric     scoring.Metric
	history           []model.HistoryEntry
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		seen:    make(map[string]bool),
		enqueue: true,
		meet: model.Meet{ID: "m1", Name: "Open Session A", Athletes: []model.Athlete{
			{ID: "a1", Name: "Ada", Sex: model.Female},
		}},
	}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, id string) { delete(m.seen, id) }
func (m *mockDeps) Size() int64                          { return int64(len(m.seen)) }

func (m *mockDeps) Enqueue(_ context.Context, mu model.Mutation) bool {
	if !m.enqueue {
		return false
	}
	m.enqueued = append(m.enqueued, mu)
	return true
}

func (m *mockDeps) find(meetID string) (model.Meet, error) {
	if m.err != nil {
		return model.Meet{}, m.err
	}
	if meetID != m.meet.ID {
		return model.Meet{}, repository.ErrMeetNotFound
	}
	return m.meet, nil
}

func (m *mockDeps) CreateMeet(_ context.Context, in types.MeetInput) (model.Meet, error) {
	return model.Meet{ID: "new", Name: in.Name, Date: in.Date, Location: in.Location}, m.err
}

func (m *mockDeps) Meets(context.Context) ([]model.Meet, error) {
	return []model.Meet{m.meet}, m.err
}

func (m *mockDeps) Meet(_ context.Context, id string) (model.Meet, error) { return m.find(id) }

func (m *mockDeps) UpdateMeet(_ context.Context, id string, in types.MeetInput) (model.Meet, error) {
	meet, err := m.find(id)
	if in.Name != "" {
		meet.Name = in.Name
	}
	return meet, err
}

func (m *mockDeps) DeleteMeet(_ context.Context, id string) error {
	_, err := m.find(id)
	return err
}

func (m *mockDeps) AddAthlete(_ context.Context, meetID string, a model.Athlete) (model.Athlete, error) {
	if _, err := m.find(meetID); err != nil {
		return model.Athlete{}, err
	}
	a.ID = "a2"
	m.added = append(m.added, a)
	return a, nil
}

func (m *mockDeps) UpdateAthlete(_ context.Context, meetID string, a model.Athlete) (model.Athlete, error) {
	if _, err := m.find(meetID); err != nil {
		return model.Athlete{}, err
	}
	if a.ID != "a1" {
		return model.Athlete{}, repository.ErrAthleteNotFound
	}
	return a, nil
}

func (m *mockDeps) RemoveAthlete(_ context.Context, meetID, athleteID string) error {
	if _, err := m.find(meetID); err != nil {
		return err
	}
	if athleteID != "a1" {
		return repository.ErrAthleteNotFound
	}
	return nil
}

func (m *mockDeps) Apply(_ context.Context, mu model.Mutation) (model.Athlete, error) {
	if _, err := m.find(mu.MeetID); err != nil {
		return model.Athlete{}, err
	}
	m.applied = append(m.applied, mu)
	return m.meet.Athletes[0], nil
}

func (m *mockDeps) Leaderboard(_ context.Context, meetID string, view model.View, metric scoring.Metric, f ranking.Filter) ([]ranking.Entry, error) {
	meet, err := m.find(meetID)
	if err != nil {
		return nil, err
	}
	m.leaderboardView, m.leaderboardMetric, m.leaderboardFilter = view, metric, f
	return ranking.Rank(f.Apply(meet.Athletes), view, metric), nil
}

func (m *mockDeps) Strategy(_ context.Context, meetID string, _ ranking.Filter, req strategy.Request) (strategy.Result, error) {
	if _, err := m.find(meetID); err != nil {
		return strategy.Result{}, err
	}
	m.strategyReq = req
	return m.strategyRes, nil
}

func (m *mockDeps) SaveHistory(_ context.Context, meetID string, metric scoring.Metric) (model.HistoryEntry, error) {
	if _, err := m.find(meetID); err != nil {
		return model.HistoryEntry{}, err
	}
	m.historyMetric = metric
	return model.HistoryEntry{MeetID: meetID, SortMode: metric.String()}, nil
}

func (m *mockDeps) History(context.Context) ([]model.HistoryEntry, error) {
	return m.history, m.err
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"meets": 1}}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServerRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("Then health serves Prometheus metrics", func() {
			w := do(mux, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats returns the provider's map", func() {
			w := do(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"meets":1`)
		})

		Convey("Then a wrong method is rejected by the mux", func() {
			w := do(mux, "DELETE", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestMeetsHandler(t *testing.T) {
	Convey("Given the meets endpoints", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When listing meets", func() {
			w := do(mux, "GET", "/meets", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var out []types.MeetSummary
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out, ShouldHaveLength, 1)
			So(out[0].Athletes, ShouldEqual, 1)
		})

		Convey("When creating a meet with a valid body", func() {
			w := do(mux, "POST", "/meets", `{"name":"Open Session B","date":"14/10/2026"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(w.Body.String(), ShouldContainSubstring, `"Open Session B"`)
		})

		Convey("When creating a meet with a bad date", func() {
			w := do(mux, "POST", "/meets", `{"name":"X","date":"2026-10-14"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "validation")
			So(decodeError(w)["message"], ShouldContainSubstring, "date must be a DD/MM/YYYY date")
		})

		Convey("When the body has unknown fields", func() {
			w := do(mux, "POST", "/meets", `{"title":"X"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("When the body is missing", func() {
			w := do(mux, "POST", "/meets", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldEqual, "api.create_meet: bad request: empty body")
		})

		Convey("When getting a known and an unknown meet", func() {
			So(do(mux, "GET", "/meets/m1", "").Code, ShouldEqual, http.StatusOK)
			w := do(mux, "GET", "/meets/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("When patching and deleting", func() {
			w := do(mux, "PATCH", "/meets/m1", `{"name":"Renamed"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Renamed")
			So(do(mux, "DELETE", "/meets/m1", "").Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("When the service fails", func() {
			deps.err = errors.New("boom")
			w := do(mux, "GET", "/meets", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["code"], ShouldEqual, "internal_error")
		})
	})
}

func TestAthletesHandler(t *testing.T) {
	Convey("Given the athlete endpoints", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When adding a valid athlete", func() {
			w := do(mux, "POST", "/meets/m1/athletes",
				`{"name":"Bea","sex":"Male","category":"Master 1","bodyweight":92.5}`)

			Convey("Then it is created with parsed fields", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(deps.added, ShouldHaveLength, 1)
				So(deps.added[0].Sex, ShouldEqual, model.Male)
				So(deps.added[0].Category, ShouldEqual, model.Master1)
				So(deps.added[0].Bodyweight, ShouldEqual, model.FromKg(92.5))
			})
		})

		Convey("When required fields are missing", func() {
			w := do(mux, "POST", "/meets/m1/athletes", `{"bodyweight":-1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			msg := decodeError(w)["message"]
			So(msg, ShouldContainSubstring, "name is required")
			So(msg, ShouldContainSubstring, "sex is required")
			So(msg, ShouldContainSubstring, "bodyweight must be greater than or equal to 0")
		})

		Convey("When updating an unknown athlete", func() {
			w := do(mux, "PUT", "/meets/m1/athletes/zz", `{"name":"Bea","sex":"Female"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When removing an athlete", func() {
			So(do(mux, "DELETE", "/meets/m1/athletes/a1", "").Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("When setting an attempt weight", func() {
			w := do(mux, "PUT", "/meets/m1/athletes/a1/attempts/deadlift/3", `{"weight":212.5}`)

			Convey("Then a 0-based weight mutation is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.applied, ShouldHaveLength, 1)
				So(deps.applied[0].Kind, ShouldEqual, model.MutationAttemptWeight)
				So(deps.applied[0].Lift, ShouldEqual, model.Deadlift)
				So(deps.applied[0].Attempt, ShouldEqual, 2)
				So(deps.applied[0].Weight, ShouldEqual, model.FromKg(212.5))
			})
		})

		Convey("When the attempt or lift is out of range", func() {
			So(do(mux, "PUT", "/meets/m1/athletes/a1/attempts/deadlift/4", `{"weight":1}`).Code,
				ShouldEqual, http.StatusBadRequest)
			So(do(mux, "PUT", "/meets/m1/athletes/a1/attempts/clean/1", `{"weight":1}`).Code,
				ShouldEqual, http.StatusBadRequest)
			So(deps.applied, ShouldBeEmpty)
		})

		Convey("When setting a verdict explicitly", func() {
			w := do(mux, "PUT", "/meets/m1/athletes/a1/attempts/squat/1/judges/2", `{"verdict":"bad"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.applied[0].Kind, ShouldEqual, model.MutationVerdict)
			So(deps.applied[0].Judge, ShouldEqual, 1)
			So(deps.applied[0].Verdict, ShouldEqual, model.Bad)
		})

		Convey("When setting a verdict without a body", func() {
			w := do(mux, "PUT", "/meets/m1/athletes/a1/attempts/squat/1/judges/3", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.applied[0].Kind, ShouldEqual, model.MutationCycleVerdict)
			So(deps.applied[0].Judge, ShouldEqual, 2)
		})

		Convey("When a bodiless verdict arrives with an unknown length", func() {
			req := httptest.NewRequest("PUT", "/meets/m1/athletes/a1/attempts/squat/1/judges/3",
				io.NopCloser(strings.NewReader("")))
			So(req.ContentLength, ShouldEqual, int64(-1))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.applied, ShouldHaveLength, 1)
			So(deps.applied[0].Kind, ShouldEqual, model.MutationCycleVerdict)
		})

		Convey("When the verdict body is malformed", func() {
			w := do(mux, "PUT", "/meets/m1/athletes/a1/attempts/squat/1/judges/3", `{"verdict":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.applied, ShouldBeEmpty)
		})

		Convey("When the judge is out of range", func() {
			w := do(mux, "PUT", "/meets/m1/athletes/a1/attempts/squat/1/judges/0", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestEventsHandler(t *testing.T) {
	Convey("Given the events endpoint", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)
		body := `{"event_id":"e1","athlete_id":"a1","kind":"verdict","lift":"bench","attempt":2,"judge":1,"verdict":"good"}`

		Convey("When posting a valid event", func() {
			w := do(mux, "POST", "/meets/m1/events", body)

			Convey("Then it is accepted and enqueued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"accepted"`)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].MeetID, ShouldEqual, "m1")
				So(deps.enqueued[0].Attempt, ShouldEqual, 1)
				So(deps.enqueued[0].Judge, ShouldEqual, 0)
				So(deps.enqueued[0].Verdict, ShouldEqual, model.Good)
			})

			Convey("Then the same event id is a duplicate", func() {
				w := do(mux, "POST", "/meets/m1/events", body)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When a verdict event has no judge", func() {
			w := do(mux, "POST", "/meets/m1/events",
				`{"event_id":"e2","athlete_id":"a1","kind":"verdict","lift":"bench","attempt":1,"verdict":"good"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "validation")
		})

		Convey("When the kind is unknown", func() {
			w := do(mux, "POST", "/meets/m1/events",
				`{"event_id":"e3","athlete_id":"a1","kind":"teleport","lift":"bench","attempt":1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is full", func() {
			deps.enqueue = false
			w := do(mux, "POST", "/meets/m1/events", body)

			Convey("Then it returns 429 and forgets the event id", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
				So(deps.seen["e1"], ShouldBeFalse)
			})
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given the leaderboard endpoints", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When requesting a filtered GL bench board", func() {
			w := do(mux, "GET", "/meets/m1/leaderboard?view=bench&metric=gl&sex=female&weight_class=63kg", "")

			Convey("Then the parsed query reaches the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.leaderboardView, ShouldEqual, model.ViewOf(model.Bench))
				So(deps.leaderboardMetric, ShouldEqual, scoring.MetricNormalized)
				So(deps.leaderboardFilter.Sex, ShouldEqual, model.Female)
				So(deps.leaderboardFilter.WeightClass, ShouldEqual, "63kg")
				var out types.Leaderboard
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.View, ShouldEqual, "bench")
				So(out.Metric, ShouldEqual, "gl")
				So(out.Rows, ShouldNotBeNil)
			})
		})

		Convey("When the query is invalid", func() {
			So(do(mux, "GET", "/meets/m1/leaderboard?view=snatch", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "GET", "/meets/m1/leaderboard?metric=wilks", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "GET", "/meets/m1/leaderboard?category=Elder", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the meet is unknown", func() {
			So(do(mux, "GET", "/meets/zz/leaderboard", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When requesting a strategy", func() {
			deps.strategyRes = strategy.Result{Status: strategy.StatusFound, Value: 510, Unit: strategy.UnitKg, Tie: true}
			w := do(mux, "GET", "/meets/m1/strategy?athlete=a1&target=a2&focus=total&scoring=total", "")

			Convey("Then the result is rendered with its display value", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.strategyReq.AthleteID, ShouldEqual, "a1")
				So(deps.strategyReq.TargetID, ShouldEqual, "a2")
				So(deps.strategyReq.Focus, ShouldEqual, model.ViewTotal)
				var out types.Strategy
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.Status, ShouldEqual, "found")
				So(out.Display, ShouldEqual, "510.0 kg")
				So(out.Tie, ShouldBeTrue)
			})
		})
	})
}

func TestHistoryAndClasses(t *testing.T) {
	Convey("Given the history endpoints", t, func() {
		deps := newMockDeps()
		deps.history = []model.HistoryEntry{{MeetID: "m1"}, {MeetID: "m2"}}
		mux := newMux(deps)

		Convey("When saving with the GL metric", func() {
			w := do(mux, "POST", "/meets/m1/history?metric=gl", "")
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(deps.historyMetric, ShouldEqual, scoring.MetricNormalized)
		})

		Convey("When listing all history and one meet's history", func() {
			var all, one []types.HistoryEntry
			So(json.Unmarshal(do(mux, "GET", "/meets/m1/history", "").Body.Bytes(), &all), ShouldBeNil)
			So(json.Unmarshal(do(mux, "GET", "/meets/m1/history?scope=meet", "").Body.Bytes(), &one), ShouldBeNil)
			So(all, ShouldHaveLength, 2)
			So(one, ShouldHaveLength, 1)
		})
	})

	Convey("Given the weight class endpoint", t, func() {
		mux := newMux(newMockDeps())

		Convey("When looking up a bodyweight", func() {
			w := do(mux, "GET", "/weight-classes?sex=Male&bodyweight=120.5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"weight_class":"120+kg"`)
		})

		Convey("When listing classes for a sex", func() {
			w := do(mux, "GET", "/weight-classes?sex=Female", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"84+kg"`)
		})

		Convey("When the input is invalid", func() {
			So(do(mux, "GET", "/weight-classes?sex=X", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "GET", "/weight-classes?sex=Male&bodyweight=abc", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := errors.New("disk")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.op: bad request: disk")

		Convey("Then a cause that already carries the kind is not repeated", func() {
			inner := fmt.Errorf("%w: empty body", api.ErrBadRequest)
			wrapped := api.WrapKind("api.op", api.ErrBadRequest, inner)
			So(errors.Is(wrapped, api.ErrBadRequest), ShouldBeTrue)
			So(wrapped.Error(), ShouldEqual, "api.op: bad request: empty body")
		})
		So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
		So(api.Wrap("api.op", nil), ShouldBeNil)
	})
}

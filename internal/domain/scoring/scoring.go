// Package scoring derives best lifts, totals and bodyweight-normalized scores
// from athlete attempts.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/liftboard/internal/domain/judging"
	"github.com/okian/liftboard/internal/domain/model"
)

// Default GL curve coefficients.
const (
	defaultA = 1199.72839
	defaultB = 1025.18162
	defaultC = 0.00921

	percent = 100

	// pointsScale quantizes normalized scores so equal totals at equal
	// bodyweights always compare equal.
	pointsScale = 1e6
)

// Coefficients parameterise the score curve a - b*e^(-c*bodyweight).
type Coefficients struct {
	A float64
	B float64
	C float64
}

// DefaultCoefficients are the GL coefficients for raw total strength output.
func DefaultCoefficients() Coefficients {
	return Coefficients{A: defaultA, B: defaultB, C: defaultC}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithCoefficients replaces the curve coefficients. Zero values are ignored.
func WithCoefficients(c Coefficients) Option {
	return func(s *Scorer) {
		if c.A != 0 && c.B != 0 && c.C != 0 {
			s.coef = c
		}
	}
}

// Scorer computes normalized scores and metric values. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	coef Coefficients
}

// New creates a scorer with the default coefficients.
func New(opts ...Option) *Scorer {
	s := &Scorer{coef: DefaultCoefficients()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScorer = New()

// BestLift returns the heaviest good attempt of a set, or 0 when no attempt
// with a declared weight passed.
func BestLift(set model.AttemptSet) model.Weight {
	var best model.Weight
	for _, a := range set {
		if a.Weight > 0 && judging.Evaluate(a).IsGood && a.Weight > best {
			best = a.Weight
		}
	}
	return best
}

// Bests returns the best lift of each set, indexed by lift.
func Bests(a model.Athlete) [3]model.Weight {
	var out [3]model.Weight
	for _, l := range model.Lifts() {
		out[l] = BestLift(a.Set(l))
	}
	return out
}

// Total is the sum of the athlete's three best lifts.
func Total(a model.Athlete) model.Weight {
	var sum model.Weight
	for _, b := range Bests(a) {
		sum += b
	}
	return sum
}

// NormalizedScore scores a total against bodyweight with the default
// coefficients.
func NormalizedScore(total, bodyweight model.Weight) float64 {
	return defaultScorer.Normalized(total, bodyweight)
}

// Normalized returns total / (a - b*e^(-c*bw)) * 100. Non-positive totals,
// bodyweights and denominators score 0.
func (s *Scorer) Normalized(total, bodyweight model.Weight) float64 {
	if total <= 0 || bodyweight <= 0 {
		return 0
	}
	denom := s.coef.A - s.coef.B*math.Exp(-s.coef.C*bodyweight.Kg())
	if denom <= 0 {
		return 0
	}
	return total.Kg() / denom * percent
}

// Metric is the quantity athletes are compared on.
type Metric int

// Metrics.
const (
	MetricTotal Metric = iota
	MetricNormalized
)

func (m Metric) String() string {
	switch m {
	case MetricTotal:
		return "total"
	case MetricNormalized:
		return "gl"
	default:
		return fmt.Sprintf("metric(%d)", int(m))
	}
}

// Other returns the metric not chosen, used as the secondary ranking key.
func (m Metric) Other() Metric {
	if m == MetricNormalized {
		return MetricTotal
	}
	return MetricNormalized
}

// ParseMetric parses "total" or "gl". Empty input selects the total.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "total":
		return MetricTotal, nil
	case "gl", "normalized":
		return MetricNormalized, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(b []byte) error {
	parsed, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value returns the metric in display units: kilograms or GL points.
func (s *Scorer) Value(m Metric, total, bodyweight model.Weight) float64 {
	if m == MetricNormalized {
		return s.Normalized(total, bodyweight)
	}
	return total.Kg()
}

// Points is a metric value in fixed point. Totals are hundredths of a
// kilogram and normalized scores are millionths of a point. Points are only
// comparable within one metric.
type Points int64

// Points returns the fixed-point metric for comparisons.
func (s *Scorer) Points(m Metric, total, bodyweight model.Weight) Points {
	if m == MetricNormalized {
		return Points(math.Round(s.Normalized(total, bodyweight) * pointsScale))
	}
	return Points(total)
}

// Outcome is the result of comparing one athlete's metric against another's.
type Outcome struct {
	// Wins is set when a is strictly ahead or level and lighter.
	Wins bool
	// Tie is set when the win comes only from the bodyweight tie-break.
	Tie bool
}

// Compare decides whether metric a beats metric b, breaking exact ties in
// favour of the lighter bodyweight.
func Compare(a, b Points, bwA, bwB model.Weight) Outcome {
	switch {
	case a > b:
		return Outcome{Wins: true}
	case a == b && bwA < bwB:
		return Outcome{Wins: true, Tie: true}
	default:
		return Outcome{}
	}
}

// Summary holds the derived results of one athlete.
type Summary struct {
	Bests [3]model.Weight
	Total model.Weight
	Score float64
}

// Summarize derives bests, total and normalized score for an athlete.
func (s *Scorer) Summarize(a model.Athlete) Summary {
	bests := Bests(a)
	total := bests[model.Squat] + bests[model.Bench] + bests[model.Deadlift]
	return Summary{
		Bests: bests,
		Total: total,
		Score: s.Normalized(total, a.Bodyweight),
	}
}

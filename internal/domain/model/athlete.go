package model

import (
	"fmt"
	"strings"
)

// AttemptsPerLift is the number of attempts an athlete gets on each lift.
const AttemptsPerLift = 3

// Sex is the competition sex used for weight classes and filtering.
type Sex string

// Known sexes.
const (
	Female Sex = "Female"
	Male   Sex = "Male"
)

// Sexes returns the known sexes in display order.
func Sexes() []Sex {
	return []Sex{Female, Male}
}

// ParseSex parses a sex name case-insensitively.
func ParseSex(s string) (Sex, error) {
	for _, sex := range Sexes() {
		if strings.EqualFold(strings.TrimSpace(s), string(sex)) {
			return sex, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSex, s)
}

// Category is the age division an athlete competes in.
type Category string

// Known categories.
const (
	SubJunior Category = "Sub-Junior"
	Junior    Category = "Junior"
	Open      Category = "Open"
	Master1   Category = "Master 1"
)

// Categories returns the known categories in display order.
func Categories() []Category {
	return []Category{SubJunior, Junior, Open, Master1}
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Attempt is one judged try. A zero Weight means no weight was declared.
type Attempt struct {
	Weight   Weight              `json:"weight"`
	Verdicts [JudgeCount]Verdict `json:"verdicts"`
}

// AttemptSet holds the opener, second and third attempt of one lift.
type AttemptSet [AttemptsPerLift]Attempt

// Athlete is a competitor entered in a meet.
type Athlete struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Sex         Sex      `json:"sex"`
	Category    Category `json:"category"`
	Bodyweight  Weight   `json:"bodyweight"`
	WeightClass string   `json:"weight_class"`

	// Attempts is indexed by Lift.
	Attempts [liftCount]AttemptSet `json:"attempts"`
}

// Set returns the attempt set for a lift. Unknown lifts yield an empty set.
func (a Athlete) Set(l Lift) AttemptSet {
	if !l.Valid() {
		return AttemptSet{}
	}
	return a.Attempts[l]
}

// Attempt returns a pointer to one attempt for in-place edits on a copy.
// It returns false when the lift or attempt index is out of range.
func (a *Athlete) Attempt(l Lift, index int) (*Attempt, bool) {
	if !l.Valid() || index < 0 || index >= AttemptsPerLift {
		return nil, false
	}
	return &a.Attempts[l][index], true
}

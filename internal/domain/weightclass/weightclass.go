// Package weightclass maps bodyweights to competition weight classes.
package weightclass

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/liftboard/internal/domain/model"
)

// Class is an upper bodyweight limit and its label. The open-ended class
// has an infinite limit.
type Class struct {
	Limit float64
	Label string
}

// Table maps each sex to classes ordered by ascending limit.
type Table map[model.Sex][]Class

// Default returns the IPF weight class table.
func Default() Table {
	return Table{
		model.Female: {
			{43, "43kg"}, {47, "47kg"}, {52, "52kg"}, {57, "57kg"}, {63, "63kg"},
			{69, "69kg"}, {76, "76kg"}, {84, "84kg"}, {math.Inf(1), "84+kg"},
		},
		model.Male: {
			{59, "59kg"}, {66, "66kg"}, {74, "74kg"}, {83, "83kg"}, {93, "93kg"},
			{105, "105kg"}, {120, "120kg"}, {math.Inf(1), "120+kg"},
		},
	}
}

// Lookup returns the first class whose limit is at or above the bodyweight.
// It returns "" for unknown sexes and non-positive bodyweights.
func (t Table) Lookup(sex model.Sex, bodyweight model.Weight) string {
	if bodyweight <= 0 {
		return ""
	}
	bw := bodyweight.Kg()
	for _, c := range t[sex] {
		if bw <= c.Limit {
			return c.Label
		}
	}
	return ""
}

// Lookup uses the default table.
func Lookup(sex model.Sex, bodyweight model.Weight) string {
	return defaultTable.Lookup(sex, bodyweight)
}

var defaultTable = Default()

// Labels returns the distinct labels in natural order, so "52kg" sorts before
// "120kg" and "120kg" before "120+kg". Empty labels are dropped.
func Labels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != "" && !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, compareLabels)
	return out
}

func compareLabels(a, b string) int {
	na, pa := parseLabel(a)
	nb, pb := parseLabel(b)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	case pa != pb:
		if pa {
			return 1
		}
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// parseLabel reads the leading number and whether the label is open-ended.
// Labels without a number sort last.
func parseLabel(label string) (float64, bool) {
	end := 0
	for end < len(label) && (label[end] == '.' || (label[end] >= '0' && label[end] <= '9')) {
		end++
	}
	n, err := strconv.ParseFloat(label[:end], 64)
	if err != nil {
		return math.Inf(1), false
	}
	return n, strings.Contains(label[end:], "+")
}

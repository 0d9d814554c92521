package model

import (
	"math"
	"strconv"
)

// weightScale is the number of Weight units per kilogram.
const weightScale = 100

// MaxWeight is the largest Weight FromKg returns. Three of them, one per
// lift, still sum without overflow.
const MaxWeight Weight = math.MaxInt64 / 4

// Weight is a mass in hundredths of a kilogram. Fixed-point keeps totals and
// tie comparisons exact where float64 sums of plate increments would drift.
type Weight int64

// FromKg converts kilograms to Weight, rounding to the nearest hundredth.
// Negative, NaN and infinite inputs clamp to zero; huge inputs clamp to
// MaxWeight.
func FromKg(kg float64) Weight {
	if math.IsNaN(kg) || math.IsInf(kg, 0) || kg <= 0 {
		return 0
	}
	scaled := math.Round(kg * weightScale)
	if scaled >= float64(MaxWeight) {
		return MaxWeight
	}
	return Weight(scaled)
}

// Kg returns the weight in kilograms.
func (w Weight) Kg() float64 {
	return float64(w) / weightScale
}

// String renders the weight with one decimal, e.g. "182.5".
func (w Weight) String() string {
	return strconv.FormatFloat(w.Kg(), 'f', 1, 64)
}

// MarshalText encodes the weight as kilograms.
func (w Weight) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, w.Kg(), 'f', -1, 64), nil
}

// UnmarshalText decodes kilograms; an empty value is an absent weight.
func (w *Weight) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*w = 0
		return nil
	}
	kg, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*w = FromKg(kg)
	return nil
}

// MarshalJSON encodes the weight as a JSON number of kilograms.
func (w Weight) MarshalJSON() ([]byte, error) {
	return w.MarshalText()
}

// UnmarshalJSON accepts a number of kilograms or null.
func (w *Weight) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*w = 0
		return nil
	}
	return w.UnmarshalText(b)
}

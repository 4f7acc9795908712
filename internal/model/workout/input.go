package workout

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Gender is the biological sex selected in the form.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ErrInvalidGender is returned for any value other than male or female.
var ErrInvalidGender = errors.New("gender must be male or female")

// ParseGender normalises user input into a Gender.
func ParseGender(raw string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(raw))) {
	case Male:
		return Male, nil
	case Female:
		return Female, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, raw)
	}
}

// Indicator returns the numeric encoding used in the training data.
func (g Gender) Indicator() (float64, error) {
	switch g {
	case Male:
		return 0, nil
	case Female:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidGender, string(g))
	}
}

// Field limits mirror the form widgets.
const (
	MinAge, MaxAge             = 10, 100
	MinHeightCm, MaxHeightCm   = 100.0, 250.0
	MinWeightKg, MaxWeightKg   = 30.0, 200.0
	MinDuration, MaxDuration   = 1, 180
	MinHeartRate, MaxHeartRate = 60, 220
	MinBodyTemp, MaxBodyTemp   = 35.0, 45.0
)

// SessionInput is one submission of the workout form.
type SessionInput struct {
	Gender       Gender  `json:"gender"`
	Age          int     `json:"age"`
	HeightCm     float64 `json:"heightCm"`
	WeightKg     float64 `json:"weightKg"`
	DurationMin  int     `json:"durationMin"`
	HeartRateBpm int     `json:"heartRateBpm"`
	BodyTempC    float64 `json:"bodyTempC"`
}

// DefaultInput returns the values the form starts with.
func DefaultInput() SessionInput {
	return SessionInput{
		Gender:       Male,
		Age:          30,
		HeightCm:     170,
		WeightKg:     70,
		DurationMin:  45,
		HeartRateBpm: 140,
		BodyTempC:    40,
	}
}

// Clamped pulls every numeric field into its widget range. Body temperature
// is snapped to the slider's 0.1 step.
func (in SessionInput) Clamped() SessionInput {
	out := in
	out.Age = clampInt(in.Age, MinAge, MaxAge)
	out.HeightCm = clampFloat(in.HeightCm, MinHeightCm, MaxHeightCm)
	out.WeightKg = clampFloat(in.WeightKg, MinWeightKg, MaxWeightKg)
	out.DurationMin = clampInt(in.DurationMin, MinDuration, MaxDuration)
	out.HeartRateBpm = clampInt(in.HeartRateBpm, MinHeartRate, MaxHeartRate)
	out.BodyTempC = clampFloat(math.Round(in.BodyTempC*10)/10, MinBodyTemp, MaxBodyTemp)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

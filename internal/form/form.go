// Package form turns raw workout form fields into a validated workout.Input.
package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"backend-workoutmap/internal/workout"
)

// Message is what the user sees on any rejected submission.
const Message = "Inputs have to be positive numbers!"

var ErrInvalidInput = errors.New("invalid workout input")

// Input carries the form fields exactly as typed.
type Input struct {
	Type      string `json:"type" form:"type"`
	Distance  string `json:"distance" form:"distance"`
	Duration  string `json:"duration" form:"duration"`
	Cadence   string `json:"cadence" form:"cadence"`
	Elevation string `json:"elevation" form:"elevation"`
}

type ValidationError struct {
	Field  string
	Reason string
	err    error
}

func (e *ValidationError) Error() string {
	return Message
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, err: ErrInvalidInput}
}

// Parse validates raw. Distance, duration and the variant field must be
// finite; distance, duration, cadence and elevation must be positive; cadence
// must be a whole number of steps.
func Parse(raw Input) (workout.Input, error) {
	kind, err := workout.ParseKind(strings.TrimSpace(raw.Type))
	if err != nil {
		return workout.Input{}, &ValidationError{Field: "type", Reason: "unknown kind", err: fmt.Errorf("%w: %w", ErrInvalidInput, err)}
	}

	distance, err := positive("distance", raw.Distance)
	if err != nil {
		return workout.Input{}, err
	}
	duration, err := positive("duration", raw.Duration)
	if err != nil {
		return workout.Input{}, err
	}

	in := workout.Input{Kind: kind, DistanceKm: distance, DurationMin: duration}
	switch kind {
	case workout.KindRunning:
		cadence, err := positive("cadence", raw.Cadence)
		if err != nil {
			return workout.Input{}, err
		}
		if cadence != math.Trunc(cadence) || cadence > math.MaxInt32 {
			return workout.Input{}, invalid("cadence", "not a whole number")
		}
		in.Cadence = int(cadence)
	case workout.KindCycling:
		elevation, err := positive("elevation", raw.Elevation)
		if err != nil {
			return workout.Input{}, err
		}
		in.ElevationGainM = elevation
	}
	return in, nil
}

func finite(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(field, "not a finite number")
	}
	return v, nil
}

func positive(field, value string) (float64, error) {
	v, err := finite(field, value)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, invalid(field, "not positive")
	}
	return v, nil
}

// VisibleFields lists the variant-specific field shown for kind; toggling the
// kind swaps cadence and elevation.
func VisibleFields(kind workout.Kind) []string {
	if kind == workout.KindCycling {
		return []string{"distance", "duration", "elevation"}
	}
	return []string{"distance", "duration", "cadence"}
}

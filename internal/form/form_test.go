package form

import (
	"errors"
	"testing"

	"backend-workoutmap/internal/workout"
)

func TestParseRunning(t *testing.T) {
	in, err := Parse(Input{Type: "running", Distance: "5", Duration: "30", Cadence: "180", Elevation: "ignored"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if in.Kind != workout.KindRunning || in.DistanceKm != 5 || in.DurationMin != 30 || in.Cadence != 180 {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestParseCycling(t *testing.T) {
	in, err := Parse(Input{Type: " cycling ", Distance: " 20 ", Duration: "60", Elevation: "100.5"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if in.Kind != workout.KindCycling || in.DistanceKm != 20 || in.ElevationGainM != 100.5 {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		field string
	}{
		{"negative distance", Input{Type: "running", Distance: "-1", Duration: "30", Cadence: "180"}, "distance"},
		{"zero distance", Input{Type: "running", Distance: "0", Duration: "30", Cadence: "180"}, "distance"},
		{"empty distance", Input{Type: "running", Distance: "", Duration: "30", Cadence: "180"}, "distance"},
		{"text duration", Input{Type: "running", Distance: "5", Duration: "half an hour", Cadence: "180"}, "duration"},
		{"infinite duration", Input{Type: "cycling", Distance: "5", Duration: "Inf", Elevation: "10"}, "duration"},
		{"nan distance", Input{Type: "cycling", Distance: "NaN", Duration: "30", Elevation: "10"}, "distance"},
		{"negative cadence", Input{Type: "running", Distance: "5", Duration: "30", Cadence: "-180"}, "cadence"},
		{"fractional cadence", Input{Type: "running", Distance: "5", Duration: "30", Cadence: "180.5"}, "cadence"},
		{"missing cadence", Input{Type: "running", Distance: "5", Duration: "30", Elevation: "100"}, "cadence"},
		{"negative elevation", Input{Type: "cycling", Distance: "20", Duration: "60", Elevation: "-5"}, "elevation"},
		{"zero elevation", Input{Type: "cycling", Distance: "20", Duration: "60", Elevation: "0"}, "elevation"},
		{"unknown type", Input{Type: "swimming", Distance: "1", Duration: "1"}, "type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError")
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
			if err.Error() != Message {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestParseUnknownTypeKeepsKindError(t *testing.T) {
	_, err := Parse(Input{Type: "", Distance: "1", Duration: "1"})
	if !errors.Is(err, workout.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind in chain, got %v", err)
	}
}

func TestVisibleFields(t *testing.T) {
	run := VisibleFields(workout.KindRunning)
	cyc := VisibleFields(workout.KindCycling)
	if run[2] != "cadence" || cyc[2] != "elevation" {
		t.Fatalf("unexpected fields: %v / %v", run, cyc)
	}
}

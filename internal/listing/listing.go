// Package listing turns workouts into the entries shown in the sidebar list.
package listing

import (
	"strconv"

	"backend-workoutmap/internal/workout"
)

type Detail struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

type Entry struct {
	ID      string       `json:"id"`
	Kind    workout.Kind `json:"kind"`
	Class   string       `json:"class"`
	Title   string       `json:"title"`
	Details []Detail     `json:"details"`
}

func For(rec workout.Record) Entry {
	e := Entry{
		ID:    rec.ID(),
		Kind:  rec.Kind(),
		Class: "workout--" + string(rec.Kind()),
		Title: rec.Description(),
		Details: []Detail{
			{Icon: rec.Icon(), Value: plain(rec.DistanceKm()), Unit: "km"},
			{Icon: "⏱", Value: plain(rec.DurationMin()), Unit: "min"},
		},
	}

	if run, ok := rec.Running(); ok {
		e.Details = append(e.Details,
			Detail{Icon: "⚡️", Value: oneDecimal(run.PaceMinPerKm), Unit: "min/km"},
			Detail{Icon: "🦶🏼", Value: strconv.Itoa(run.CadenceStepsPerMin), Unit: "spm"},
		)
	}
	if cyc, ok := rec.Cycling(); ok {
		e.Details = append(e.Details,
			Detail{Icon: "⛰", Value: plain(cyc.ElevationGainM), Unit: "m"},
			Detail{Icon: "⚡️", Value: oneDecimal(cyc.SpeedKmPerH), Unit: "km/h"},
		)
	}
	return e
}

// All renders entries in the order records were given.
func All(records []workout.Record) []Entry {
	out := make([]Entry, 0, len(records))
	for _, rec := range records {
		out = append(out, For(rec))
	}
	return out
}

func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

package workout

import (
	"fmt"
	"strings"
	"time"
)

// New builds the variant selected by in.Kind. Numbers are taken as given;
// validation belongs to the form layer.
func New(in Input, coords Coords, at time.Time) (Record, error) {
	switch in.Kind {
	case KindRunning:
		return NewRunning(in.DistanceKm, in.DurationMin, coords, in.Cadence, at), nil
	case KindCycling:
		return NewCycling(in.DistanceKm, in.DurationMin, coords, in.ElevationGainM, at), nil
	}
	return Record{}, fmt.Errorf("%w: %q", ErrUnknownKind, in.Kind)
}

func NewRunning(distanceKm, durationMin float64, coords Coords, cadence int, at time.Time) Record {
	r := newBase(KindRunning, distanceKm, durationMin, coords, at)
	r.running = Running{
		CadenceStepsPerMin: cadence,
		PaceMinPerKm:       durationMin / distanceKm,
	}
	return r
}

func NewCycling(distanceKm, durationMin float64, coords Coords, elevationGainM float64, at time.Time) Record {
	r := newBase(KindCycling, distanceKm, durationMin, coords, at)
	r.cycling = Cycling{
		ElevationGainM: elevationGainM,
		SpeedKmPerH:    distanceKm / (durationMin / 60),
	}
	return r
}

func newBase(kind Kind, distanceKm, durationMin float64, coords Coords, at time.Time) Record {
	return Record{
		id:          nextID(at),
		createdAt:   at,
		kind:        kind,
		distanceKm:  distanceKm,
		durationMin: durationMin,
		coords:      coords,
		description: Describe(kind, at),
	}
}

// Describe renders "{Kind} on {day} {Month}" in at's own location.
func Describe(kind Kind, at time.Time) string {
	name := string(kind)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s on %d %s", name, at.Day(), at.Month())
}

func (r Record) ID() string           { return r.id }
func (r Record) CreatedAt() time.Time { return r.createdAt }
func (r Record) Kind() Kind           { return r.kind }
func (r Record) DistanceKm() float64  { return r.distanceKm }
func (r Record) DurationMin() float64 { return r.durationMin }
func (r Record) Coords() Coords       { return r.coords }
func (r Record) Description() string  { return r.description }

// Running returns the running payload; ok is false for other variants.
func (r Record) Running() (Running, bool) {
	return r.running, r.kind == KindRunning
}

// Cycling returns the cycling payload; ok is false for other variants.
func (r Record) Cycling() (Cycling, bool) {
	return r.cycling, r.kind == KindCycling
}

func (r Record) Icon() string {
	if r.kind == KindRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♂️"
}

func (r Record) PopupText() string {
	return r.Icon() + " " + r.description
}

func (r Record) PopupClass() string {
	return string(r.kind) + "-popup"
}

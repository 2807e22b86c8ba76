package workout

import (
	"encoding/json"
	"fmt"
	"time"
)

// Flat is the persisted shape of a record: base and variant fields side by
// side, variant fields omitted when they do not apply.
type Flat struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Kind        Kind      `json:"kind"`
	DistanceKm  float64   `json:"distanceKm"`
	DurationMin float64   `json:"durationMin"`
	Coords      Coords    `json:"coords"`
	Description string    `json:"description"`

	CadenceStepsPerMin *int     `json:"cadenceStepsPerMin,omitempty"`
	PaceMinPerKm       *float64 `json:"paceMinPerKm,omitempty"`
	ElevationGainM     *float64 `json:"elevationGainM,omitempty"`
	SpeedKmPerH        *float64 `json:"speedKmPerH,omitempty"`
}

func (r Record) Flat() Flat {
	f := Flat{
		ID:          r.id,
		CreatedAt:   r.createdAt,
		Kind:        r.kind,
		DistanceKm:  r.distanceKm,
		DurationMin: r.durationMin,
		Coords:      r.coords,
		Description: r.description,
	}
	switch r.kind {
	case KindRunning:
		cadence, pace := r.running.CadenceStepsPerMin, r.running.PaceMinPerKm
		f.CadenceStepsPerMin, f.PaceMinPerKm = &cadence, &pace
	case KindCycling:
		elevation, speed := r.cycling.ElevationGainM, r.cycling.SpeedKmPerH
		f.ElevationGainM, f.SpeedKmPerH = &elevation, &speed
	}
	return f
}

// FromFlat re-tags persisted data into its variant. Stored derived metrics
// are kept verbatim, never recomputed.
func FromFlat(f Flat) (Record, error) {
	kind, err := ParseKind(string(f.Kind))
	if err != nil {
		return Record{}, err
	}
	r := Record{
		id:          f.ID,
		createdAt:   f.CreatedAt,
		kind:        kind,
		distanceKm:  f.DistanceKm,
		durationMin: f.DurationMin,
		coords:      f.Coords,
		description: f.Description,
	}
	switch kind {
	case KindRunning:
		if f.CadenceStepsPerMin == nil || f.PaceMinPerKm == nil {
			return Record{}, fmt.Errorf("running record %s: missing cadence or pace", f.ID)
		}
		r.running = Running{CadenceStepsPerMin: *f.CadenceStepsPerMin, PaceMinPerKm: *f.PaceMinPerKm}
	case KindCycling:
		if f.ElevationGainM == nil || f.SpeedKmPerH == nil {
			return Record{}, fmt.Errorf("cycling record %s: missing elevation or speed", f.ID)
		}
		r.cycling = Cycling{ElevationGainM: *f.ElevationGainM, SpeedKmPerH: *f.SpeedKmPerH}
	}
	return r, nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Flat())
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var f Flat
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	rec, err := FromFlat(f)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

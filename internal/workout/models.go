package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownKind = errors.New("unknown workout kind")

type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindRunning, KindCycling:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Coords is a (latitude, longitude) pair. It travels as a two element JSON
// array, the shape map libraries take directly.
type Coords struct {
	Lat float64
	Lng float64
}

func (c Coords) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

func (c *Coords) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	c.Lat, c.Lng = pair[0], pair[1]
	return nil
}

// Input is a validated, variant-tagged parameter bundle. Only the field that
// matches Kind is read.
type Input struct {
	Kind           Kind
	DistanceKm     float64
	DurationMin    float64
	Cadence        int
	ElevationGainM float64
}

type Running struct {
	CadenceStepsPerMin int
	PaceMinPerKm       float64
}

type Cycling struct {
	ElevationGainM float64
	SpeedKmPerH    float64
}

// Record is one tracked activity. Fields are unexported so derived metrics
// cannot drift from the inputs they were computed from.
type Record struct {
	id          string
	createdAt   time.Time
	kind        Kind
	distanceKm  float64
	durationMin float64
	coords      Coords
	description string

	running Running
	cycling Cycling
}

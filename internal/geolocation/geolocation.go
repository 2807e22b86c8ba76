// Package geolocation resolves the user's position once per controller run.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backend-workoutmap/internal/workout"
)

var ErrUnavailable = errors.New("position unavailable")

type Provider interface {
	Locate(ctx context.Context) (workout.Coords, error)
}

// Static always answers with the same configured position.
type Static struct {
	Coords workout.Coords
}

func (s Static) Locate(ctx context.Context) (workout.Coords, error) {
	if err := ctx.Err(); err != nil {
		return workout.Coords{}, err
	}
	return s.Coords, nil
}

type result struct {
	coords workout.Coords
	err    error
}

// Relay hands positions reported by the browser to whoever is waiting in
// Locate. Only the latest unclaimed report is kept.
type Relay struct {
	mu      sync.Mutex
	pending chan result
}

func NewRelay() *Relay {
	return &Relay{pending: make(chan result, 1)}
}

func (r *Relay) Deliver(coords workout.Coords) {
	r.put(result{coords: coords})
}

func (r *Relay) Fail(reason string) {
	if reason == "" {
		r.put(result{err: ErrUnavailable})
		return
	}
	r.put(result{err: fmt.Errorf("%w: %s", ErrUnavailable, reason)})
}

func (r *Relay) put(res result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.pending:
	default:
	}
	r.pending <- res
}

func (r *Relay) Locate(ctx context.Context) (workout.Coords, error) {
	select {
	case res := <-r.pending:
		return res.coords, res.err
	case <-ctx.Done():
		return workout.Coords{}, ctx.Err()
	}
}

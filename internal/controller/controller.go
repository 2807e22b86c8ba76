// Package controller runs the workout map session: it waits for a position,
// opens the form on map clicks, records submitted workouts and replays stored
// ones.
package controller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"backend-workoutmap/internal/events"
	"backend-workoutmap/internal/form"
	"backend-workoutmap/internal/geolocation"
	"backend-workoutmap/internal/listing"
	"backend-workoutmap/internal/mapview"
	"backend-workoutmap/internal/observability"
	"backend-workoutmap/internal/store"
	"backend-workoutmap/internal/workout"
)

const NoPositionMessage = "No position found!"

var (
	ErrNoPendingLocation = errors.New("no map location selected")
	ErrWorkoutNotFound   = errors.New("workout not found")
	ErrMapUnavailable    = errors.New("map unavailable")
)

type State int

const (
	AwaitingPosition State = iota
	MapReady
	AwaitingFormInput
	PositionUnavailable
)

func (s State) String() string {
	switch s {
	case AwaitingPosition:
		return "awaiting_position"
	case MapReady:
		return "map_ready"
	case AwaitingFormInput:
		return "awaiting_form_input"
	case PositionUnavailable:
		return "position_unavailable"
	}
	return "unknown"
}

// View is everything the controller shows outside the map.
type View interface {
	ShowForm(coords workout.Coords)
	HideForm(reopenAfter time.Duration)
	RenderWorkout(entry listing.Entry)
	ClearList()
	Alert(msg string)
	ToggleKindFields(kind workout.Kind, visible []string)
}

type Options struct {
	Zoom            int
	LocateTimeout   time.Duration
	FormReopenDelay time.Duration
	Now             func() time.Time
}

type Controller struct {
	store   *store.Store
	mapView mapview.Adapter
	locator geolocation.Provider
	view    View
	events  events.Publisher
	opts    Options

	mu       sync.Mutex
	state    State
	position *workout.Coords
	pending  *workout.Coords

	cancel context.CancelFunc
	done   chan struct{}
}

func New(st *store.Store, m mapview.Adapter, locator geolocation.Provider, v View, pub events.Publisher, opts Options) *Controller {
	if opts.Zoom == 0 {
		opts.Zoom = 15
	}
	if opts.LocateTimeout <= 0 {
		opts.LocateTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Controller{
		store:   st,
		mapView: m,
		locator: locator,
		view:    v,
		events:  pub,
		opts:    opts,
	}
}

// Start restores stored workouts into the list and begins acquiring the
// position in the background. The map is only touched once a position
// arrives.
func (c *Controller) Start(ctx context.Context) {
	c.stop()

	c.mu.Lock()
	c.state = AwaitingPosition
	c.position = nil
	c.pending = nil
	c.mu.Unlock()

	for _, rec := range c.store.Load(ctx) {
		c.view.RenderWorkout(listing.For(rec))
	}

	c.launch(ctx)
}

// Relocate retries position acquisition after an earlier one failed, leaving
// stored workouts and the list alone. It reports whether a new attempt began.
func (c *Controller) Relocate(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != PositionUnavailable {
		c.mu.Unlock()
		return false
	}
	c.state = AwaitingPosition
	c.mu.Unlock()

	c.launch(ctx)
	return true
}

// launch swaps in a new acquisition, cancelling and waiting out whichever one
// was registered before it.
func (c *Controller) launch(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	prevCancel, prevDone := c.cancel, c.done
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}
	go c.acquire(runCtx, done)
}

func (c *Controller) acquire(ctx context.Context, done chan struct{}) {
	defer close(done)

	locateCtx, cancel := context.WithTimeout(ctx, c.opts.LocateTimeout)
	defer cancel()
	coords, err := c.locator.Locate(locateCtx)

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		observability.RecordGeolocation(observability.GeolocationCanceled)
		return
	}
	if err != nil {
		c.state = PositionUnavailable
		c.mu.Unlock()

		outcome := observability.GeolocationFailed
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = observability.GeolocationTimeout
		}
		observability.RecordGeolocation(outcome)
		log.Printf("controller: locate: %v", err)
		c.view.Alert(NoPositionMessage)
		return
	}
	c.position = &coords
	c.state = MapReady
	c.mu.Unlock()

	// stop waits on done, so a Close or Reset never overtakes these commands.
	c.mapView.SetView(coords, c.opts.Zoom)
	c.mapView.OnClick(c.HandleMapClick)
	for _, rec := range c.store.All() {
		c.mapView.AddMarker(mapview.MarkerFor(rec))
	}
	observability.RecordGeolocation(observability.GeolocationSuccess)
}

// Wait blocks until the current position acquisition has finished.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Controller) stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Close abandons a pending position request.
func (c *Controller) Close() {
	c.stop()
}

func (c *Controller) HandleMapClick(coords workout.Coords) {
	c.mu.Lock()
	if c.state != MapReady && c.state != AwaitingFormInput {
		state := c.state
		c.mu.Unlock()
		log.Printf("controller: map click ignored in state %s", state)
		return
	}
	c.pending = &coords
	c.state = AwaitingFormInput
	c.mu.Unlock()

	c.view.ShowForm(coords)
}

// Submit validates raw against the clicked location and records the workout.
// A rejected submission leaves the form open.
func (c *Controller) Submit(ctx context.Context, raw form.Input) (workout.Record, error) {
	rec, err := c.claim(raw)
	if err != nil {
		return workout.Record{}, err
	}

	c.store.Add(ctx, rec)
	c.mapView.AddMarker(mapview.MarkerFor(rec))
	c.view.RenderWorkout(listing.For(rec))
	c.view.HideForm(c.opts.FormReopenDelay)
	observability.RecordWorkout(string(rec.Kind()))

	if err := c.events.Publish(ctx, events.NewWorkoutRecorded(rec, c.opts.Now())); err != nil {
		log.Printf("controller: publish %s: %v", rec.ID(), err)
	}
	return rec, nil
}

// claim consumes the pending location for a valid submission.
func (c *Controller) claim(raw form.Input) (workout.Record, error) {
	c.mu.Lock()
	if c.state != AwaitingFormInput || c.pending == nil {
		c.mu.Unlock()
		return workout.Record{}, ErrNoPendingLocation
	}

	in, err := form.Parse(raw)
	if err != nil {
		c.mu.Unlock()
		observability.RecordRejection()
		c.view.Alert(form.Message)
		return workout.Record{}, err
	}
	rec, err := workout.New(in, *c.pending, c.opts.Now())
	if err != nil {
		c.mu.Unlock()
		return workout.Record{}, err
	}
	c.pending = nil
	c.state = MapReady
	c.mu.Unlock()
	return rec, nil
}

// Select pans the map to the workout with id.
func (c *Controller) Select(id string) error {
	rec, ok := c.store.FindByID(id)
	if !ok {
		log.Printf("controller: select %q: no such workout", id)
		return ErrWorkoutNotFound
	}

	c.mu.Lock()
	ready := c.position != nil
	c.mu.Unlock()
	if !ready {
		log.Printf("controller: select %q: map unavailable", id)
		return ErrMapUnavailable
	}
	c.mapView.SetView(rec.Coords(), c.opts.Zoom)
	return nil
}

func (c *Controller) ToggleKind(raw string) error {
	kind, err := workout.ParseKind(raw)
	if err != nil {
		return err
	}
	c.view.ToggleKindFields(kind, form.VisibleFields(kind))
	return nil
}

// Reset wipes stored workouts, clears the map and list, then starts over.
// If the persisted history cannot be deleted the restart reloads it, so the
// session shows exactly what is still stored, and the delete error is
// returned.
func (c *Controller) Reset(ctx context.Context) error {
	c.stop()

	err := c.store.Reset(ctx)
	if err != nil {
		log.Printf("controller: reset store: %v", err)
	}
	c.mapView.Clear()
	c.view.ClearList()
	c.view.HideForm(0)

	c.Start(context.WithoutCancel(ctx))
	return err
}

type Status struct {
	State    string          `json:"state"`
	Position *workout.Coords `json:"position,omitempty"`
	Pending  *workout.Coords `json:"pending,omitempty"`
	Workouts int             `json:"workouts"`
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:    c.state.String(),
		Position: c.position,
		Pending:  c.pending,
		Workouts: c.store.Len(),
	}
}

func (c *Controller) Store() *store.Store {
	return c.store
}

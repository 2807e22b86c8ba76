// Package mapview drives the client-side map. The map library itself runs in
// the browser; this side only sends it commands and receives its clicks.
package mapview

import (
	"errors"
	"sync"

	"backend-workoutmap/internal/stream"
	"backend-workoutmap/internal/workout"
)

var ErrNotReady = errors.New("map is not ready")

const (
	EventView   = "map.view"
	EventMarker = "map.marker"
	EventClear  = "map.clear"
)

type Marker struct {
	Coords workout.Coords `json:"coords"`
	Popup  string         `json:"popup"`
	Class  string         `json:"class"`
}

func MarkerFor(rec workout.Record) Marker {
	return Marker{Coords: rec.Coords(), Popup: rec.PopupText(), Class: rec.PopupClass()}
}

type Adapter interface {
	SetView(coords workout.Coords, zoom int)
	AddMarker(m Marker)
	OnClick(handler func(workout.Coords))
	Clear()
}

type View struct {
	Coords workout.Coords `json:"coords"`
	Zoom   int            `json:"zoom"`
}

// Stream forwards map commands to the widget channel on the hub.
type Stream struct {
	hub     *stream.Hub
	channel string

	mu      sync.RWMutex
	onClick func(workout.Coords)
	view    *View
	markers []Marker
}

func NewStream(hub *stream.Hub, channel string) *Stream {
	return &Stream{hub: hub, channel: channel}
}

func (s *Stream) SetView(coords workout.Coords, zoom int) {
	v := View{Coords: coords, Zoom: zoom}
	s.mu.Lock()
	s.view = &v
	s.mu.Unlock()
	s.hub.Publish(s.channel, stream.Event{Type: EventView, Payload: v})
}

func (s *Stream) AddMarker(m Marker) {
	s.mu.Lock()
	s.markers = append(s.markers, m)
	s.mu.Unlock()
	s.hub.Publish(s.channel, stream.Event{Type: EventMarker, Payload: m})
}

func (s *Stream) OnClick(handler func(workout.Coords)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClick = handler
}

// Clear removes every marker and forgets the click subscription.
func (s *Stream) Clear() {
	s.mu.Lock()
	s.view = nil
	s.markers = nil
	s.onClick = nil
	s.mu.Unlock()
	s.hub.Publish(s.channel, stream.Event{Type: EventClear})
}

// Click reports a click made on the client map.
func (s *Stream) Click(coords workout.Coords) error {
	s.mu.RLock()
	handler := s.onClick
	s.mu.RUnlock()
	if handler == nil {
		return ErrNotReady
	}
	handler(coords)
	return nil
}

// Snapshot returns the commands a freshly connected client needs to rebuild
// the current map.
func (s *Stream) Snapshot() []stream.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []stream.Event
	if s.view != nil {
		out = append(out, stream.Event{Type: EventView, Payload: *s.view})
	}
	for _, m := range s.markers {
		out = append(out, stream.Event{Type: EventMarker, Payload: m})
	}
	return out
}

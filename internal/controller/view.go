package controller

import (
	"sync"
	"time"

	"backend-workoutmap/internal/listing"
	"backend-workoutmap/internal/stream"
	"backend-workoutmap/internal/workout"
)

const (
	EventFormShow   = "form.show"
	EventFormHide   = "form.hide"
	EventFormFields = "form.fields"
	EventListEntry  = "list.entry"
	EventListClear  = "list.clear"
	EventAlert      = "alert"
)

// StreamView sends view updates to the widget channel and remembers enough to
// bring a late client up to date.
type StreamView struct {
	hub     *stream.Hub
	channel string

	mu      sync.Mutex
	form    *workout.Coords
	entries []listing.Entry
}

func NewStreamView(hub *stream.Hub, channel string) *StreamView {
	return &StreamView{hub: hub, channel: channel}
}

func (v *StreamView) ShowForm(coords workout.Coords) {
	v.mu.Lock()
	v.form = &coords
	v.mu.Unlock()
	v.publish(EventFormShow, fields{"coords": coords})
}

func (v *StreamView) HideForm(reopenAfter time.Duration) {
	v.mu.Lock()
	v.form = nil
	v.mu.Unlock()
	v.publish(EventFormHide, fields{"reopen_after_ms": reopenAfter.Milliseconds()})
}

func (v *StreamView) RenderWorkout(entry listing.Entry) {
	v.mu.Lock()
	v.entries = append(v.entries, entry)
	v.mu.Unlock()
	v.publish(EventListEntry, entry)
}

func (v *StreamView) ClearList() {
	v.mu.Lock()
	v.entries = nil
	v.mu.Unlock()
	v.publish(EventListClear, nil)
}

func (v *StreamView) Alert(msg string) {
	v.publish(EventAlert, fields{"message": msg})
}

func (v *StreamView) ToggleKindFields(kind workout.Kind, visible []string) {
	v.publish(EventFormFields, fields{"kind": kind, "visible": visible})
}

// Snapshot replays the list and an open form.
func (v *StreamView) Snapshot() []stream.Event {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]stream.Event, 0, len(v.entries)+1)
	for _, e := range v.entries {
		out = append(out, stream.Event{Type: EventListEntry, Payload: e})
	}
	if v.form != nil {
		out = append(out, stream.Event{Type: EventFormShow, Payload: fields{"coords": *v.form}})
	}
	return out
}

func (v *StreamView) publish(kind string, payload any) {
	v.hub.Publish(v.channel, stream.Event{Type: kind, Payload: payload})
}

type fields map[string]any

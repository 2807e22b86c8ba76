// Package store keeps the session's workouts in insertion order and mirrors
// the whole collection to a single persisted blob after every change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"sync"

	"backend-workoutmap/internal/kv"
	"backend-workoutmap/internal/observability"
	"backend-workoutmap/internal/shared/geo"
	"backend-workoutmap/internal/workout"
)

const DefaultKey = "workouts"

type Store struct {
	blobs kv.Store
	key   string

	mu      sync.RWMutex
	records []workout.Record

	// writeMu orders snapshot+write pairs so an older snapshot never lands last.
	writeMu sync.Mutex
}

func New(blobs kv.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{blobs: blobs, key: key}
}

// Add appends rec and persists the collection. A failed write is logged and
// counted but the in-memory append stands.
func (s *Store) Add(ctx context.Context, rec workout.Record) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()

	if err := s.Persist(ctx); err != nil {
		log.Printf("store: persist after add %s: %v", rec.ID(), err)
	}
}

// Persist overwrites the blob with the full collection.
func (s *Store) Persist(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	records := s.records
	if records == nil {
		records = []workout.Record{}
	}
	data, err := json.Marshal(records)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		observability.RecordPersistenceFailure("save")
		return err
	}
	return nil
}

// Load replaces the in-memory list with what the blob holds. A missing,
// unreadable or malformed blob means no prior history.
func (s *Store) Load(ctx context.Context) []workout.Record {
	restored := s.readBlob(ctx)

	s.mu.Lock()
	s.records = restored
	s.mu.Unlock()
	return s.All()
}

func (s *Store) readBlob(ctx context.Context) []workout.Record {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		observability.RecordPersistenceFailure("load")
		log.Printf("store: read %q: %v", s.key, err)
		return nil
	}

	var flats []workout.Flat
	if err := json.Unmarshal(data, &flats); err != nil {
		observability.RecordPersistenceFailure("load")
		log.Printf("store: decode %q: %v", s.key, err)
		return nil
	}

	records := make([]workout.Record, 0, len(flats))
	for _, f := range flats {
		rec, err := workout.FromFlat(f)
		if err != nil {
			log.Printf("store: skipping stored workout %q: %v", f.ID, err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (s *Store) FindByID(id string) (workout.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID() == id {
			return rec, true
		}
	}
	return workout.Record{}, false
}

func (s *Store) All() []workout.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]workout.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Reset drops the persisted blob and the in-memory list together. The list
// is cleared even when the delete fails.
func (s *Store) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()

	if err := s.blobs.Delete(ctx, s.key); err != nil {
		observability.RecordPersistenceFailure("reset")
		return err
	}
	return nil
}

// Nearby returns records within radiusKm of center, nearest first.
func (s *Store) Nearby(center workout.Coords, radiusKm float64) []workout.Record {
	type hit struct {
		rec  workout.Record
		dist float64
	}

	var hits []hit
	for _, rec := range s.All() {
		c := rec.Coords()
		d := geo.HaversineKm(center.Lat, center.Lng, c.Lat, c.Lng)
		if d <= radiusKm {
			hits = append(hits, hit{rec: rec, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]workout.Record, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	return out
}

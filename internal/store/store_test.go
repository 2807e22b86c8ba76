package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-workoutmap/internal/kv"
	"backend-workoutmap/internal/workout"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var errBlob = errors.New("blob error")

type failingBlobs struct {
	kv.Store
	getErr, setErr, deleteErr error
	sets                      int
}

func (f *failingBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *failingBlobs) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingBlobs) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, key)
}

var (
	london  = workout.Coords{Lat: 51.5074, Lng: -0.1278}
	jakarta = workout.Coords{Lat: -6.2, Lng: 106.816}
)

func running(at time.Time) workout.Record {
	return workout.NewRunning(5, 30, london, 180, at)
}

func cycling(at time.Time) workout.Record {
	return workout.NewCycling(20, 60, jakarta, 100, at)
}

func TestAddPersistsAndRoundTrips(t *testing.T) {
	blobs := kv.NewMemory()
	s := New(blobs, "")

	w := running(time.Date(2026, time.June, 3, 6, 0, 0, 0, time.UTC))
	c := cycling(time.Date(2026, time.June, 4, 6, 0, 0, 0, time.UTC))
	s.Add(context.Background(), w)
	s.Add(context.Background(), c)
	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("persist: %v", err)
	}

	fresh := New(blobs, DefaultKey)
	loaded := fresh.Load(context.Background())
	if len(loaded) != 2 {
		t.Fatalf("expected 2 restored records, got %d", len(loaded))
	}
	got := loaded[0]
	if got.DistanceKm() != w.DistanceKm() || got.DurationMin() != w.DurationMin() || got.Coords() != w.Coords() ||
		got.Kind() != w.Kind() || got.Description() != w.Description() {
		t.Fatalf("restored record differs from original")
	}
	if _, ok := loaded[1].Cycling(); !ok {
		t.Fatalf("expected second record re-tagged as cycling")
	}
	if fresh.Len() != 2 {
		t.Fatalf("expected load to replace the in-memory list")
	}
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	s := New(kv.NewMemory(), DefaultKey)
	base := time.Now()
	var ids []string
	for i := 0; i < 5; i++ {
		rec := running(base.Add(time.Duration(i) * time.Second))
		ids = append(ids, rec.ID())
		s.Add(context.Background(), rec)
	}
	for i, rec := range s.All() {
		if rec.ID() != ids[i] {
			t.Fatalf("record %d out of order", i)
		}
	}
}

func TestAddSurvivesPersistFailure(t *testing.T) {
	blobs := &failingBlobs{Store: kv.NewMemory(), setErr: errBlob}
	s := New(blobs, DefaultKey)

	s.Add(context.Background(), running(time.Now()))
	if s.Len() != 1 {
		t.Fatalf("expected in-memory append despite persist failure")
	}
	if blobs.sets != 1 {
		t.Fatalf("expected one write attempt, got %d", blobs.sets)
	}
	if err := s.Persist(context.Background()); !errors.Is(err, errBlob) {
		t.Fatalf("explicit persist should surface the error, got %v", err)
	}
}

func TestLoadTreatsProblemsAsEmpty(t *testing.T) {
	ctx := context.Background()

	if got := New(kv.NewMemory(), DefaultKey).Load(ctx); len(got) != 0 {
		t.Fatalf("absent blob should load empty")
	}

	malformed := kv.NewMemory()
	_ = malformed.Set(ctx, DefaultKey, []byte(`{not json`))
	if got := New(malformed, DefaultKey).Load(ctx); len(got) != 0 {
		t.Fatalf("malformed blob should load empty")
	}

	unavailable := &failingBlobs{Store: kv.NewMemory(), getErr: errBlob}
	if got := New(unavailable, DefaultKey).Load(ctx); len(got) != 0 {
		t.Fatalf("unavailable store should load empty")
	}

	null := kv.NewMemory()
	_ = null.Set(ctx, DefaultKey, []byte(`null`))
	if got := New(null, DefaultKey).Load(ctx); len(got) != 0 {
		t.Fatalf("null blob should load empty")
	}
}

func TestLoadSkipsUnknownKinds(t *testing.T) {
	ctx := context.Background()
	blobs := kv.NewMemory()
	_ = blobs.Set(ctx, DefaultKey, []byte(`[
		{"id":"0000000001","kind":"rowing","distanceKm":1,"durationMin":1,"coords":[0,0]},
		{"id":"0000000002","kind":"running","distanceKm":5,"durationMin":30,"coords":[1,2],"description":"Running on 1 May","cadenceStepsPerMin":180,"paceMinPerKm":6}
	]`))

	got := New(blobs, DefaultKey).Load(ctx)
	if len(got) != 1 || got[0].ID() != "0000000002" {
		t.Fatalf("expected only the running record, got %d", len(got))
	}
}

func TestResetClearsBoth(t *testing.T) {
	ctx := context.Background()
	blobs := kv.NewMemory()
	s := New(blobs, DefaultKey)
	s.Add(ctx, running(time.Now()))

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty in-memory list")
	}
	if got := New(blobs, DefaultKey).Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty collection after reset, got %d", len(got))
	}
}

func TestResetDeleteFailure(t *testing.T) {
	blobs := &failingBlobs{Store: kv.NewMemory(), deleteErr: errBlob}
	s := New(blobs, DefaultKey)
	s.Add(context.Background(), running(time.Now()))

	if err := s.Reset(context.Background()); !errors.Is(err, errBlob) {
		t.Fatalf("expected delete error, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("in-memory list must be cleared even when delete fails")
	}
}

func TestFindByID(t *testing.T) {
	s := New(kv.NewMemory(), DefaultKey)
	rec := running(time.Now())
	s.Add(context.Background(), rec)

	got, ok := s.FindByID(rec.ID())
	if !ok || got.ID() != rec.ID() {
		t.Fatalf("expected to find record")
	}
	if _, ok := s.FindByID("9999999999"); ok {
		t.Fatalf("expected not-found for unknown id")
	}
	if _, ok := New(kv.NewMemory(), DefaultKey).FindByID(""); ok {
		t.Fatalf("expected not-found on empty store")
	}
}

func TestNearby(t *testing.T) {
	s := New(kv.NewMemory(), DefaultKey)
	far := cycling(time.Now())
	near := workout.NewRunning(3, 20, workout.Coords{Lat: 51.51, Lng: -0.13}, 170, time.Now())
	exact := running(time.Now())
	s.Add(context.Background(), far)
	s.Add(context.Background(), near)
	s.Add(context.Background(), exact)

	got := s.Nearby(london, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 nearby records, got %d", len(got))
	}
	if got[0].ID() != exact.ID() || got[1].ID() != near.ID() {
		t.Fatalf("expected nearest first")
	}
}

func TestRedisBackedRoundTrip(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	s := New(kv.NewRedis(client), DefaultKey)
	s.Add(context.Background(), cycling(time.Now()))

	if !server.Exists(DefaultKey) {
		t.Fatalf("expected blob written to redis")
	}
	got := New(kv.NewRedis(client), DefaultKey).Load(context.Background())
	if len(got) != 1 || got[0].Kind() != workout.KindCycling {
		t.Fatalf("unexpected restore from redis")
	}
}

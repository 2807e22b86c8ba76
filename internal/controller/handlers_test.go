package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backend-workoutmap/internal/form"
	"backend-workoutmap/internal/geolocation"
	"backend-workoutmap/internal/listing"
	"backend-workoutmap/internal/workout"

	"github.com/gofiber/fiber/v2"
)

func newApp(t *testing.T, seed ...workout.Record) (*fiber.App, harness) {
	t.Helper()
	h := newHarness(geolocation.Static{Coords: home}, seed...)
	h.ctrl.Start(context.Background())
	h.ctrl.Wait()

	app := fiber.New()
	RegisterRoutes(app, h.ctrl)
	return app, h
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestSubmitHandler(t *testing.T) {
	app, h := newApp(t)

	resp, _ := do(t, app, http.MethodPost, "/workouts", `{"type":"running","distance":"5","duration":"30","cadence":"180"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 without a click, got %d", resp.StatusCode)
	}

	h.mp.click(t, home)
	resp, body := do(t, app, http.MethodPost, "/workouts", `{"type":"running","distance":"abc","duration":"30","cadence":"180"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(string(body), form.Message) {
		t.Fatalf("expected 422 with message, got %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodPost, "/workouts", `{"type":"running","distance":"5","duration":"30","cadence":"180"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", resp.StatusCode, body)
	}
	var created workout.Flat
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.PaceMinPerKm == nil || *created.PaceMinPerKm != 6 || created.Kind != workout.KindRunning {
		t.Fatalf("unexpected body %s", body)
	}

	resp, _ = do(t, app, http.MethodPost, "/workouts", `{bad`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListHandlers(t *testing.T) {
	near := workout.NewRunning(5, 30, workout.Coords{Lat: 51.51, Lng: -0.12}, 180, time.Now())
	far := workout.NewCycling(20, 60, workout.Coords{Lat: 48.85, Lng: 2.35}, 100, time.Now())
	app, _ := newApp(t, near, far)

	resp, body := do(t, app, http.MethodGet, "/workouts", "")
	var records []workout.Flat
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &records) != nil || len(records) != 2 {
		t.Fatalf("unexpected workouts response %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodGet, "/workouts/entries", "")
	var entries []listing.Entry
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &entries) != nil || len(entries) != 2 || entries[1].Class != "workout--cycling" {
		t.Fatalf("unexpected entries response %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodGet, "/workouts/nearby?lat=51.5074&lng=-0.1278", "")
	var nearby []workout.Flat
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &nearby) != nil || len(nearby) != 1 || nearby[0].ID != near.ID() {
		t.Fatalf("unexpected nearby response %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, http.MethodGet, "/workouts/nearby?lat=x&lng=1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSelectAndKindHandlers(t *testing.T) {
	stored := workout.NewRunning(5, 30, workout.Coords{Lat: 1, Lng: 2}, 180, time.Now())
	app, h := newApp(t, stored)

	resp, _ := do(t, app, http.MethodPost, "/workouts/"+stored.ID()+"/select", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if last := h.mp.views[len(h.mp.views)-1]; last.Coords != stored.Coords() {
		t.Fatalf("expected pan, got %+v", last)
	}

	resp, _ = do(t, app, http.MethodPost, "/workouts/nope/select", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, _ = do(t, app, http.MethodPost, "/form/kind", `{"type":"cycling"}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodPost, "/form/kind", `{"type":"swim"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStateAndResetHandlers(t *testing.T) {
	stored := workout.NewRunning(5, 30, home, 180, time.Now())
	app, h := newApp(t, stored)

	resp, body := do(t, app, http.MethodGet, "/widget/state", "")
	var st Status
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &st) != nil {
		t.Fatalf("unexpected state response %d %s", resp.StatusCode, body)
	}
	if st.State != "map_ready" || st.Workouts != 1 || st.Position == nil || *st.Position != home {
		t.Fatalf("unexpected status %+v", st)
	}

	resp, _ = do(t, app, http.MethodPost, "/reset", "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	h.ctrl.Wait()
	if h.store.Len() != 0 || h.ctrl.State() != MapReady {
		t.Fatalf("expected fresh session after reset")
	}
}

package server

import (
	"context"

	"backend-workoutmap/internal/config"
	"backend-workoutmap/internal/controller"
	"backend-workoutmap/internal/events"
	"backend-workoutmap/internal/geolocation"
	"backend-workoutmap/internal/kv"
	"backend-workoutmap/internal/mapview"
	"backend-workoutmap/internal/store"
	"backend-workoutmap/internal/stream"
	"backend-workoutmap/internal/workout"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App        *fiber.App
	Cfg        config.Config
	Redis      *redis.Client
	Stream     *stream.Hub
	Map        *mapview.Stream
	View       *controller.StreamView
	Relay      *geolocation.Relay
	Controller *controller.Controller
}

// NewServer wires the widget session. A nil blobs falls back to process
// memory; a nil publisher drops workout events.
func NewServer(cfg config.Config, blobs kv.Store, redisClient *redis.Client, publisher events.Publisher) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	if blobs == nil {
		blobs = kv.NewMemory()
	}
	if cfg.StreamChannel == "" {
		cfg.StreamChannel = "widget"
	}

	hub := stream.NewHub(redisClient)
	s := &Server{
		App:    app,
		Cfg:    cfg,
		Redis:  redisClient,
		Stream: hub,
		Map:    mapview.NewStream(hub, cfg.StreamChannel),
		View:   controller.NewStreamView(hub, cfg.StreamChannel),
	}

	var locator geolocation.Provider
	if cfg.HasStaticPosition() {
		locator = geolocation.Static{Coords: workout.Coords{Lat: cfg.GeoLat, Lng: cfg.GeoLng}}
	} else {
		s.Relay = geolocation.NewRelay()
		locator = s.Relay
	}

	s.Controller = controller.New(store.New(blobs, cfg.StorageKey), s.Map, locator, s.View, publisher, controller.Options{
		Zoom:            cfg.MapZoom,
		LocateTimeout:   cfg.GeolocationTimeout,
		FormReopenDelay: cfg.FormReopenDelay,
	})

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	controller.RegisterRoutes(s.App, s.Controller)
	mapview.RegisterRoutes(s.App, s.Map)
	if s.Relay != nil {
		geolocation.RegisterRoutes(s.App, s.Relay, func() {
			s.Controller.Relocate(context.Background())
		})
	}
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.snapshot)
}

// snapshot is what a client joining mid-session needs: the map first, then
// the list and any open form.
func (s *Server) snapshot(channel string) []stream.Event {
	if channel != s.Cfg.StreamChannel {
		return nil
	}
	return append(s.Map.Snapshot(), s.View.Snapshot()...)
}

// Close stops the controller and the redis relay.
func (s *Server) Close() {
	s.Controller.Close()
	s.Stream.Close()
}

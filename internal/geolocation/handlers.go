package geolocation

import (
	"math"

	"backend-workoutmap/internal/workout"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes accepts browser position reports. onPosition, when set, runs
// after each successful report is queued.
func RegisterRoutes(r fiber.Router, relay *Relay, onPosition func()) {
	r.Post("/geolocation", func(c *fiber.Ctx) error {
		var body struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
			Error     string   `json:"error"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Error != "" {
			relay.Fail(body.Error)
			return c.SendStatus(fiber.StatusAccepted)
		}
		if body.Latitude == nil || body.Longitude == nil {
			return fiber.NewError(fiber.StatusBadRequest, "latitude and longitude required")
		}
		lat, lng := *body.Latitude, *body.Longitude
		if math.Abs(lat) > 90 || math.Abs(lng) > 180 {
			return fiber.NewError(fiber.StatusBadRequest, "coordinates out of range")
		}
		relay.Deliver(workout.Coords{Lat: lat, Lng: lng})
		if onPosition != nil {
			onPosition()
		}
		return c.SendStatus(fiber.StatusAccepted)
	})
}

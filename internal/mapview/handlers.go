package mapview

import (
	"errors"

	"backend-workoutmap/internal/workout"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, m *Stream) {
	r.Post("/map/click", func(c *fiber.Ctx) error {
		var body struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Latitude == nil || body.Longitude == nil {
			return fiber.NewError(fiber.StatusBadRequest, "latitude and longitude required")
		}
		err := m.Click(workout.Coords{Lat: *body.Latitude, Lng: *body.Longitude})
		if errors.Is(err, ErrNotReady) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.SendStatus(fiber.StatusAccepted)
	})
}

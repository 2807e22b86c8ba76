package controller

import (
	"errors"
	"strconv"

	"backend-workoutmap/internal/form"
	"backend-workoutmap/internal/listing"
	"backend-workoutmap/internal/workout"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, ctrl *Controller) {
	r.Get("/widget/state", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Status())
	})

	r.Post("/workouts", func(c *fiber.Ctx) error {
		var req form.Input
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rec, err := ctrl.Submit(c.UserContext(), req)
		switch {
		case errors.Is(err, ErrNoPendingLocation):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, form.ErrInvalidInput):
			return fiber.NewError(fiber.StatusUnprocessableEntity, form.Message)
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	r.Get("/workouts", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Store().All())
	})

	r.Get("/workouts/entries", func(c *fiber.Ctx) error {
		return c.JSON(listing.All(ctrl.Store().All()))
	})

	r.Get("/workouts/nearby", func(c *fiber.Ctx) error {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat required")
		}
		lng, err := strconv.ParseFloat(c.Query("lng"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lng required")
		}
		radius, _ := strconv.ParseFloat(c.Query("radius_km"), 64)
		if radius <= 0 {
			radius = 5
		}
		return c.JSON(ctrl.Store().Nearby(workout.Coords{Lat: lat, Lng: lng}, radius))
	})

	r.Post("/workouts/:id/select", func(c *fiber.Ctx) error {
		err := ctrl.Select(c.Params("id"))
		switch {
		case errors.Is(err, ErrWorkoutNotFound):
			return fiber.NewError(fiber.StatusNotFound, "workout not found")
		case errors.Is(err, ErrMapUnavailable):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/form/kind", func(c *fiber.Ctx) error {
		var body struct {
			Type string `json:"type" form:"type"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ctrl.ToggleKind(body.Type); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/reset", func(c *fiber.Ctx) error {
		if err := ctrl.Reset(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusAccepted)
	})
}

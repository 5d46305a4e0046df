package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type LocationHandler struct {
	service ports.LocationService
	log     *zap.Logger
}

func NewLocationHandler(service ports.LocationService, log *zap.Logger) *LocationHandler {
	return &LocationHandler{
		service: service,
		log:     log,
	}
}

type LocationUpdateRequest struct {
	DeviceID  uint    `json:"device_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Update ingests a GPS fix from an onboard device. Zone transitions ripple
// from here: entering the route zone closes the active trip and settles the
// driver's pending balance.
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	var req LocationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.RecordLocation(c.Context(), req.DeviceID, req.Latitude, req.Longitude)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

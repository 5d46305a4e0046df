package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/http/fiber/middleware"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type TripHandler struct {
	service ports.TripService
	log     *zap.Logger
}

func NewTripHandler(service ports.TripService, log *zap.Logger) *TripHandler {
	return &TripHandler{
		service: service,
		log:     log,
	}
}

type StartTripRequest struct {
	VehicleID uint `json:"vehicle_id" validate:"required"`
	RouteID   uint `json:"route_id" validate:"required"`
}

func (h *TripHandler) Start(c *fiber.Ctx) error {
	var req StartTripRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	trip, err := h.service.Start(c.Context(), middleware.ActorID(c), req.VehicleID, req.RouteID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(trip)
}

func (h *TripHandler) End(c *fiber.Ctx) error {
	trip, err := h.service.End(c.Context(), middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(trip)
}

func (h *TripHandler) Active(c *fiber.Ctx) error {
	trip, err := h.service.ActiveTrip(c.Context(), middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(trip)
}

type DeviceActiveTripRequest struct {
	DeviceID uint `json:"device_id" validate:"required"`
}

// ActiveByDevice resolves the active trip of the driver a device is
// assigned to. Validators call it to tag fares with the right trip.
func (h *TripHandler) ActiveByDevice(c *fiber.Ctx) error {
	var req DeviceActiveTripRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	trip, err := h.service.ActiveTripByDevice(c.Context(), req.DeviceID)
	if err != nil {
		return err
	}
	return c.JSON(trip)
}

// QRCode serves the rotating payment token for the driver's active trip.
// Clients poll this endpoint and render the payload as a QR image.
func (h *TripHandler) QRCode(c *fiber.Ctx) error {
	trip, err := h.service.ActiveTrip(c.Context(), middleware.ActorID(c))
	if err != nil {
		return err
	}

	payload, err := h.service.QRPayload(c.Context(), trip.ID)
	if err != nil {
		return err
	}
	return c.JSON(payload)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service ports.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

type ProcessFareRequest struct {
	UID           string          `json:"uid" validate:"required"`
	TripID        uint            `json:"trip_id" validate:"required"`
	Fare          decimal.Decimal `json:"fare" validate:"required"`
	PaymentMethod string          `json:"payment_method"`
}

func (h *PaymentHandler) ProcessFare(c *fiber.Ctx) error {
	var req ProcessFareRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	payment, err := h.service.ProcessFare(c.Context(), ports.ProcessFareInput{
		PassengerUID: req.UID,
		TripID:       req.TripID,
		Fare:         req.Fare,
		Method:       domain.ParsePaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

type QRFareRequest struct {
	Token string          `json:"token" validate:"required,len=32"`
	UID   string          `json:"uid" validate:"required"`
	Fare  decimal.Decimal `json:"fare" validate:"required"`
}

func (h *PaymentHandler) ProcessFareByQRToken(c *fiber.Ctx) error {
	var req QRFareRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	payment, err := h.service.ProcessFareByQRToken(c.Context(), req.Token, req.UID, req.Fare)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

type DeviceBalanceRequest struct {
	UID        string          `json:"uid" validate:"required"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Action     string          `json:"action" validate:"required,oneof=topup payment"`
	DeviceID   uint            `json:"device_id"`
}

// DeviceBalanceUpdate receives the card balance an NFC validator reports
// after a tap, either a recharge or an on-vehicle payment.
func (h *PaymentHandler) DeviceBalanceUpdate(c *fiber.Ctx) error {
	var req DeviceBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ProcessDeviceBalanceUpdate(c.Context(), ports.DeviceBalanceInput{
		PassengerUID: req.UID,
		NewBalance:   req.NewBalance,
		Action:       ports.DeviceBalanceAction(req.Action),
		DeviceID:     req.DeviceID,
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

type DriverSpendRequest struct {
	UID    string          `json:"uid" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

func (h *PaymentHandler) DriverSpend(c *fiber.Ctx) error {
	var req DriverSpendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	newBalance, err := h.service.DriverSpend(c.Context(), req.UID, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "paid", "new_balance": newBalance})
}

func (h *PaymentHandler) History(c *fiber.Ctx) error {
	payments, err := h.service.PaymentsByPassenger(c.Context(), c.Params("uid"))
	if err != nil {
		return err
	}
	return c.JSON(payments)
}

func (h *PaymentHandler) ByTrip(c *fiber.Ctx) error {
	tripID, err := c.ParamsInt("id")
	if err != nil || tripID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid trip id")
	}

	payments, err := h.service.PaymentsByTrip(c.Context(), uint(tripID))
	if err != nil {
		return err
	}
	return c.JSON(payments)
}

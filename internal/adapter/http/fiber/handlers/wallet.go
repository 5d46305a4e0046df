package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/http/fiber/middleware"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type WalletHandler struct {
	service ports.WalletService
	log     *zap.Logger
}

func NewWalletHandler(service ports.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		log:     log,
	}
}

// Balance serves the wallet of the authenticated account, whichever kind
// it is.
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	kind, _ := c.Locals("actor_kind").(domain.ActorKind)
	id := middleware.ActorID(c)

	switch kind {
	case domain.ActorKindPassenger:
		w, err := h.service.PassengerWallet(c.Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(w)
	case domain.ActorKindDriver:
		w, err := h.service.DriverWallet(c.Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(w)
	default:
		return fiber.NewError(fiber.StatusUnauthorized, "unknown account type")
	}
}

type TransferRequest struct {
	SenderPhone   string          `json:"sender_phone" validate:"required,len=11,numeric"`
	ReceiverPhone string          `json:"receiver_phone" validate:"required,len=11,numeric"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	transfer, err := h.service.Transfer(c.Context(), req.SenderPhone, req.ReceiverPhone, req.Amount)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(transfer)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/http/fiber/middleware"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type AccountHandler struct {
	service ports.AccountService
	log     *zap.Logger
}

func NewAccountHandler(service ports.AccountService, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		log:     log,
	}
}

type RegisterPassengerRequest struct {
	Name          string `json:"name" validate:"required"`
	NationalID    string `json:"national_id" validate:"required,len=14,numeric"`
	Phone         string `json:"phone" validate:"required,len=11,numeric"`
	Email         string `json:"email" validate:"omitempty,email"`
	Password      string `json:"password" validate:"required,min=6"`
	GovernorateID *uint  `json:"governorate_id"`
	CityID        *uint  `json:"city_id"`
}

func (h *AccountHandler) RegisterPassenger(c *fiber.Ctx) error {
	var req RegisterPassengerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	p, err := h.service.RegisterPassenger(c.Context(), ports.RegisterPassengerInput{
		Name:          req.Name,
		NationalID:    req.NationalID,
		Phone:         req.Phone,
		Email:         req.Email,
		Password:      req.Password,
		GovernorateID: req.GovernorateID,
		CityID:        req.CityID,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}

type RegisterDriverRequest struct {
	Name          string `json:"name" validate:"required"`
	NationalID    string `json:"national_id" validate:"required,len=14,numeric"`
	Phone         string `json:"phone" validate:"required,len=11,numeric"`
	Email         string `json:"email" validate:"omitempty,email"`
	Password      string `json:"password" validate:"required,min=6"`
	LicenseNumber string `json:"license_number" validate:"required"`
	GovernorateID *uint  `json:"governorate_id"`
	CityID        *uint  `json:"city_id"`
}

func (h *AccountHandler) RegisterDriver(c *fiber.Ctx) error {
	var req RegisterDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	d, err := h.service.RegisterDriver(c.Context(), ports.RegisterDriverInput{
		Name:          req.Name,
		NationalID:    req.NationalID,
		Phone:         req.Phone,
		Email:         req.Email,
		Password:      req.Password,
		LicenseNumber: req.LicenseNumber,
		GovernorateID: req.GovernorateID,
		CityID:        req.CityID,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *AccountHandler) PassengerByUID(c *fiber.Ctx) error {
	p, err := h.service.PassengerByUID(c.Context(), c.Params("uid"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *AccountHandler) Me(c *fiber.Ctx) error {
	d, err := h.service.DriverByID(c.Context(), middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(d)
}

type CreateVehicleRequest struct {
	Number string `json:"number" validate:"required"`
}

func (h *AccountHandler) CreateVehicle(c *fiber.Ctx) error {
	var req CreateVehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	v, err := h.service.CreateVehicle(c.Context(), middleware.ActorID(c), req.Number)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

type StopRequest struct {
	Name   string  `json:"name" validate:"required"`
	MinLat float64 `json:"min_lat" validate:"min=-90,max=90"`
	MinLng float64 `json:"min_lng" validate:"min=-180,max=180"`
	MaxLat float64 `json:"max_lat" validate:"min=-90,max=90"`
	MaxLng float64 `json:"max_lng" validate:"min=-180,max=180"`
}

type CreateRouteRequest struct {
	CityID uint          `json:"city_id" validate:"required"`
	Stops  []StopRequest `json:"stops" validate:"required,min=2,dive"`
}

func (h *AccountHandler) CreateRoute(c *fiber.Ctx) error {
	var req CreateRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	stops := make([]ports.StopInput, 0, len(req.Stops))
	for _, st := range req.Stops {
		stops = append(stops, ports.StopInput{
			Name:   st.Name,
			MinLat: st.MinLat,
			MinLng: st.MinLng,
			MaxLat: st.MaxLat,
			MaxLng: st.MaxLng,
		})
	}

	r, err := h.service.CreateRoute(c.Context(), req.CityID, stops)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

type CreateGovernorateRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *AccountHandler) CreateGovernorate(c *fiber.Ctx) error {
	var req CreateGovernorateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	g, err := h.service.CreateGovernorate(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

type CreateCityRequest struct {
	GovernorateID uint   `json:"governorate_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
}

func (h *AccountHandler) CreateCity(c *fiber.Ctx) error {
	var req CreateCityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	city, err := h.service.CreateCity(c.Context(), req.GovernorateID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(city)
}

type CreateDeviceRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *AccountHandler) CreateDevice(c *fiber.Ctx) error {
	var req CreateDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	d, err := h.service.CreateDevice(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *AccountHandler) Governorates(c *fiber.Ctx) error {
	gs, err := h.service.Governorates(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(gs)
}

func (h *AccountHandler) Cities(c *fiber.Ctx) error {
	var governorateID *uint
	if raw := c.QueryInt("governorate_id"); raw > 0 {
		id := uint(raw)
		governorateID = &id
	}

	cities, err := h.service.Cities(c.Context(), governorateID)
	if err != nil {
		return err
	}
	return c.JSON(cities)
}

func (h *AccountHandler) Routes(c *fiber.Ctx) error {
	cityID := c.QueryInt("city_id")
	if cityID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "city_id query parameter is required")
	}

	routes, err := h.service.RoutesByCity(c.Context(), uint(cityID))
	if err != nil {
		return err
	}
	return c.JSON(routes)
}

// MyVehicles lists the authenticated driver's vehicles.
func (h *AccountHandler) MyVehicles(c *fiber.Ctx) error {
	vehicles, err := h.service.VehiclesByDriver(c.Context(), middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(vehicles)
}

type RegisterCardRequest struct {
	CardUID string `json:"card_uid" validate:"required"`
}

func (h *AccountHandler) RegisterCard(c *fiber.Ctx) error {
	var req RegisterCardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	card, err := h.service.RegisterCard(c.Context(), c.Params("uid"), req.CardUID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(card)
}

type AssignDeviceRequest struct {
	DriverID uint `json:"driver_id" validate:"required"`
	DeviceID uint `json:"device_id" validate:"required"`
}

func (h *AccountHandler) AssignDevice(c *fiber.Ctx) error {
	var req AssignDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.AssignDevice(c.Context(), req.DriverID, req.DeviceID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "assigned"})
}

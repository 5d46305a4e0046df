package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/cache"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/http/fiber/handlers"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/http/fiber/middleware"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/queue"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/storage/postgres"
	wsAdapter "github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/websocket"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/service/account"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/service/auth"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/service/geofence"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/service/location"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/service/payment"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/service/trip"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/service/wallet"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/pkg/config"
)

const (
	serviceName    = "ptpay"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting PTPay",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// Run migrations
	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 4. Initialize Redis Cache (falls back to in-memory when unreachable)
	appCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 5. Initialize Message Queue
	messageQueue := newMessageQueue(cfg, logger)
	if messageQueue != nil {
		defer messageQueue.Close()
	}

	// 6. Initialize Repositories
	txManager := postgres.NewTxManager(db)
	passengerRepo := postgres.NewPassengerRepository(db, logger)
	driverRepo := postgres.NewDriverRepository(db, logger)
	walletRepo := postgres.NewWalletRepository(db, logger)
	tripRepo := postgres.NewTripRepository(db, logger)
	vehicleRepo := postgres.NewVehicleRepository(db, logger)
	routeRepo := postgres.NewRouteRepository(db, logger)
	geoRepo := postgres.NewGeoRepository(db, logger)
	paymentRepo := postgres.NewPaymentRepository(db, logger)
	transferRepo := postgres.NewTransferRepository(db, logger)
	deviceRepo := postgres.NewDeviceRepository(db, logger)
	cardRepo := postgres.NewNFCCardRepository(db, logger)

	// 7. Initialize WebSocket Hub (live vehicle positions)
	wsHub := wsAdapter.NewHub()
	go wsHub.Run()

	// 8. Initialize Services (Business Logic Layer)
	walletService := wallet.NewService(txManager, walletRepo, passengerRepo, driverRepo, transferRepo, messageQueue, logger)
	tripService := trip.NewService(txManager, tripRepo, vehicleRepo, routeRepo, driverRepo, walletService, messageQueue, logger)
	tripService.SetQRTokenTTL(cfg.QR.TokenTTL)
	geofenceService := geofence.NewService(txManager, driverRepo, tripService, walletService, messageQueue, logger)
	paymentService := payment.NewService(txManager, tripRepo, passengerRepo, driverRepo, walletRepo, paymentRepo, deviceRepo, cardRepo, walletService, messageQueue, logger)
	accountService := account.NewService(txManager, passengerRepo, driverRepo, walletRepo, vehicleRepo, routeRepo, geoRepo, deviceRepo, cardRepo, logger)
	authService := auth.NewService(passengerRepo, driverRepo, appCache, cfg.JWT.Secret, cfg.JWT.AccessTokenDuration, cfg.JWT.RefreshTokenDuration, logger)
	locationService := location.NewService(deviceRepo, driverRepo, routeRepo, geofenceService, appCache, wsHub, logger)

	// 9. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.Metrics())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(cfg.CircuitBreaker, logger))
	}

	// Health Check Endpoints
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if err := sqlDB.Ping(); err != nil {
			return c.Status(503).SendString("Database not ready")
		}
		if err := appCache.Ping(); err != nil {
			return c.Status(503).SendString("Cache not ready")
		}
		return c.SendString("Ready")
	})

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Auth routes (public)
	authHandler := handlers.NewAuthHandler(authService, logger)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/refresh", authHandler.Refresh)

	// Registration routes (public)
	accountHandler := handlers.NewAccountHandler(accountService, logger)
	v1.Post("/passengers/register", accountHandler.RegisterPassenger)
	v1.Post("/drivers/register", accountHandler.RegisterDriver)

	// Device ingest routes (called by onboard hardware)
	locationHandler := handlers.NewLocationHandler(locationService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	tripHandler := handlers.NewTripHandler(tripService, logger)
	v1.Post("/devices/location", locationHandler.Update)
	v1.Post("/devices/balance", paymentHandler.DeviceBalanceUpdate)
	v1.Post("/devices/active-trip", tripHandler.ActiveByDevice)

	// Protected routes
	protected := v1.Group("", middleware.AuthRequired(authService))

	// Account routes
	protected.Get("/passengers/:uid", accountHandler.PassengerByUID)
	protected.Post("/passengers/:uid/cards", accountHandler.RegisterCard)
	protected.Get("/drivers/me", middleware.DriverOnly(), accountHandler.Me)

	// Fleet and geography administration
	protected.Get("/vehicles", middleware.DriverOnly(), accountHandler.MyVehicles)
	protected.Post("/vehicles", middleware.DriverOnly(), accountHandler.CreateVehicle)
	protected.Get("/routes", accountHandler.Routes)
	protected.Post("/routes", accountHandler.CreateRoute)
	protected.Get("/governorates", accountHandler.Governorates)
	protected.Post("/governorates", accountHandler.CreateGovernorate)
	protected.Get("/cities", accountHandler.Cities)
	protected.Post("/cities", accountHandler.CreateCity)
	protected.Post("/devices", accountHandler.CreateDevice)
	protected.Post("/devices/assign", accountHandler.AssignDevice)

	// Trip routes (driver)
	protected.Post("/trips/start", middleware.DriverOnly(), tripHandler.Start)
	protected.Post("/trips/end", middleware.DriverOnly(), tripHandler.End)
	protected.Get("/trips/active", middleware.DriverOnly(), tripHandler.Active)
	protected.Get("/trips/qr", middleware.DriverOnly(), tripHandler.QRCode)
	protected.Get("/trips/:id/payments", paymentHandler.ByTrip)

	// Payment routes
	protected.Post("/payments/fare", middleware.PassengerOnly(), paymentHandler.ProcessFare)
	protected.Post("/payments/qr", middleware.PassengerOnly(), paymentHandler.ProcessFareByQRToken)
	protected.Post("/payments/driver-spend", middleware.DriverOnly(), paymentHandler.DriverSpend)
	protected.Get("/payments/history/:uid", paymentHandler.History)

	// Wallet routes
	walletHandler := handlers.NewWalletHandler(walletService, logger)
	protected.Get("/wallet", walletHandler.Balance)
	protected.Post("/wallet/transfer", walletHandler.Transfer)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Live vehicle positions WebSocket
	app.Get("/ws/positions", websocket.New(func(c *websocket.Conn) {
		actorID := c.Query("actorId", "guest")
		wsHub.AddClient(c, actorID)
	}))

	// 10. Start Background Workers
	if messageQueue != nil {
		go startBackgroundWorkers(messageQueue, logger)
	}

	// 11. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// newMessageQueue builds the configured broker adapter; returns nil when
// eventing is disabled, which the services treat as a no-op publisher.
func newMessageQueue(cfg *config.Config, logger *zap.Logger) queue.MessageQueue {
	switch cfg.Queue.Driver {
	case "nats", "":
		mq, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", zap.Error(err))
			return nil
		}
		return mq
	case "rabbitmq":
		mq, err := queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
			return nil
		}
		return mq
	case "none":
		return nil
	default:
		logger.Warn("Unknown queue driver, events disabled", zap.String("driver", cfg.Queue.Driver))
		return nil
	}
}

// startBackgroundWorkers subscribes the audit consumers for domain events.
func startBackgroundWorkers(mq queue.MessageQueue, logger *zap.Logger) {
	logger.Info("Starting background workers")

	subjects := []string{
		"trip.started",
		"trip.ended",
		"driver.zone_entered",
		"payment.processed",
		"wallet.transfer",
		"wallet.topup",
	}
	for _, subject := range subjects {
		subject := subject
		if err := mq.Subscribe(subject, func(msg []byte) error {
			logger.Info("domain event", zap.String("subject", subject), zap.ByteString("payload", msg))
			return nil
		}); err != nil {
			logger.Error("failed to subscribe", zap.String("subject", subject), zap.Error(err))
		}
	}
}

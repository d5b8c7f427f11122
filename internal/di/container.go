package di

import (
	"github.com/smane4123/PitchPulse/internal/gateway"
	"github.com/smane4123/PitchPulse/internal/handler"
	"github.com/smane4123/PitchPulse/internal/repository"
	"github.com/smane4123/PitchPulse/internal/service"
	"github.com/smane4123/PitchPulse/pkg/database"
	"github.com/smane4123/PitchPulse/pkg/redis"
)

// Container holds all dependencies for the reservation engine
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Gateways
	PaymentGateway gateway.PaymentGateway

	// Repositories
	VenueRepo   repository.VenueRepository
	BookingRepo repository.BookingRepository
	ReviewRepo  repository.ReviewRepository
	HoldRepo    repository.SlotHoldRepository

	// Services
	AvailabilityService service.AvailabilityService
	BookingService      service.BookingService
	PaymentService      service.PaymentService
	ReviewService       service.ReviewService

	// Handlers
	HealthHandler       *handler.HealthHandler
	AvailabilityHandler *handler.AvailabilityHandler
	BookingHandler      *handler.BookingHandler
	PaymentHandler      *handler.PaymentHandler
	ReviewHandler       *handler.ReviewHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	PaymentGateway gateway.PaymentGateway
	EventPublisher service.EventPublisher
	PaymentConfig  *service.PaymentServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		PaymentGateway: cfg.PaymentGateway,
	}

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)

	pool := c.DB.Pool()
	c.VenueRepo = repository.NewPostgresVenueRepository(pool)
	c.BookingRepo = repository.NewPostgresBookingRepository(pool)
	c.ReviewRepo = repository.NewPostgresReviewRepository(pool)
	if c.Redis != nil {
		c.HoldRepo = repository.NewRedisSlotHoldRepository(c.Redis)
	}

	c.AvailabilityService = service.NewAvailabilityService(c.VenueRepo, c.BookingRepo)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.VenueRepo, c.HoldRepo, cfg.EventPublisher)
	c.PaymentService = service.NewPaymentService(
		c.PaymentGateway, c.BookingRepo, c.VenueRepo, c.HoldRepo, cfg.EventPublisher, cfg.PaymentConfig)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.BookingRepo, c.VenueRepo, cfg.EventPublisher)

	c.AvailabilityHandler = handler.NewAvailabilityHandler(c.AvailabilityService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService)
	c.ReviewHandler = handler.NewReviewHandler(c.ReviewService)

	return c
}

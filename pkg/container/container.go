package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/config"
	infraCache "homefinder-backend/internal/infrastructure/cache"
	"homefinder-backend/internal/infrastructure/database"
	"homefinder-backend/internal/infrastructure/document"
	"homefinder-backend/internal/infrastructure/email"
	"homefinder-backend/internal/infrastructure/geocoding"
	"homefinder-backend/internal/infrastructure/metrics"
	"homefinder-backend/internal/infrastructure/realtime"
	"homefinder-backend/internal/infrastructure/storage"
	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/jwt"

	userHandler "homefinder-backend/internal/domains/user/handler"
	userRepo "homefinder-backend/internal/domains/user/repository"
	userService "homefinder-backend/internal/domains/user/service"

	propertyHandler "homefinder-backend/internal/domains/property/handler"
	propertyRepo "homefinder-backend/internal/domains/property/repository"
	propertyService "homefinder-backend/internal/domains/property/service"

	bookingHandler "homefinder-backend/internal/domains/booking/handler"
	bookingRepo "homefinder-backend/internal/domains/booking/repository"
	bookingService "homefinder-backend/internal/domains/booking/service"

	chatHandler "homefinder-backend/internal/domains/chat/handler"
	chatRepo "homefinder-backend/internal/domains/chat/repository"
	chatService "homefinder-backend/internal/domains/chat/service"

	locationHandler "homefinder-backend/internal/domains/location/handler"
	locationService "homefinder-backend/internal/domains/location/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every long lived dependency of the API and the worker.
// Build order: config -> infrastructure -> repositories -> services -> handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config      *config.Config
	DB          *database.PostgresDB
	Mongo       *document.MongoDB
	Redis       *infraCache.RedisClient // nil when Redis was unreachable at startup
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Metrics     *metrics.Metrics // nil when METRICS_ENABLED=false
	AsynqClient *asynq.Client
	Storage     storage.ImageStore
	Mailer      email.Sender
	Hub         *realtime.Hub
	Geocoder    geocoding.Geocoder

	// ========================================
	// REPOSITORY LAYER
	// ========================================

	UserRepo     userRepo.Repository
	PropertyRepo propertyRepo.Repository
	BookingRepo  bookingRepo.Repository
	ChatRepo     chatRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================

	UserService     userService.ServiceInterface
	PropertyService propertyService.ServiceInterface
	BookingService  bookingService.ServiceInterface
	ChatService     chatService.ServiceInterface
	LocationService locationService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================

	UserHandler     *userHandler.UserHandler
	PropertyHandler *propertyHandler.PropertyHandler
	BookingHandler  *bookingHandler.BookingHandler
	ChatHandler     *chatHandler.ChatHandler
	LocationHandler *locationHandler.LocationHandler
	RealtimeHandler *realtime.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer loads the configuration and builds the whole dependency graph.
// Postgres, MongoDB and MinIO are required; Redis degrades to an in-process cache.
func NewContainer() (*Container, error) {
	log.Info().Msg("[CONTAINER] Initializing")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("[CONTAINER] Config loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// ========================================
	// STEP 2: INITIALIZE INFRASTRUCTURE
	// ========================================
	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ========================================
	// STEP 3: INITIALIZE REPOSITORIES
	// ========================================
	if err := c.initRepositories(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	log.Info().Msg("[CONTAINER] Repositories initialized")

	// ========================================
	// STEP 4: INITIALIZE SERVICES
	// ========================================
	c.initServices()
	log.Info().Msg("[CONTAINER] Services initialized")

	// ========================================
	// STEP 5: INITIALIZE HANDLERS
	// ========================================
	c.initHandlers()
	log.Info().Msg("[CONTAINER] Handlers initialized")

	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	// PostgreSQL
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// MongoDB holds chats and messages
	mongoDB, err := document.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	c.Mongo = mongoDB

	// Redis is optional: without it the cache and the token blacklist stay in process
	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[REDIS] Unavailable, falling back to in-memory cache")
		_ = redisClient.Close()
		c.Cache = cache.NewMemoryCache()
	} else {
		c.Redis = redisClient
		c.Cache = infraCache.NewRedisCache(redisClient)
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New(cfg.Metrics.Prefix)
	}

	c.AsynqClient = asynq.NewClient(c.RedisClientOpt())

	// MinIO
	store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = store

	// Email: queue hands messages to the worker, direct sends inline over SMTP
	var mailer email.Sender
	if cfg.Email.Delivery == "queue" {
		mailer = email.NewQueueSender(c.AsynqClient)
	} else {
		mailer = c.smtpSender()
	}
	c.Mailer = email.WithResults(mailer, c.recorder())

	c.Hub = realtime.NewHub()
	c.Geocoder = geocoding.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Timeout)

	log.Info().Str("email_delivery", cfg.Email.Delivery).Msg("[CONTAINER] Infrastructure ready")
	return nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.PropertyRepo = propertyRepo.NewPostgresRepository(pool, c.Cache)

	// Booking writes flip the property status inside their own transaction
	c.BookingRepo = bookingRepo.NewPostgresRepository(pool, c.PropertyRepo)

	c.ChatRepo = chatRepo.NewMongoRepository(c.Mongo)
	if err := c.ChatRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("chat indexes: %w", err)
	}

	return nil
}

func (c *Container) initServices() {
	cfg := c.Config

	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.JWTManager,
		c.Cache, // token revocations
		c.Mailer,
		cfg.Auth,
	)

	c.PropertyService = propertyService.NewPropertyService(
		c.PropertyRepo,
		c.Storage,
		storage.NewImageProcessor(cfg.Upload.MaxImageSize),
		c.AsynqClient,
		c.BookingRepo, // active reservation windows
		cfg.Upload,
	)

	c.BookingService = bookingService.NewBookingService(
		c.BookingRepo,
		c.PropertyService,
		c.UserService,
		c.Mailer,
		c.Metrics,
		cfg.Booking,
		cfg.App.ClientURL,
	)

	c.ChatService = chatService.NewChatService(
		c.ChatRepo,
		c.UserService,
		c.PropertyService,
		c.Hub,
		c.Metrics,
	)

	c.LocationService = locationService.NewLocationService(c.Geocoder, c.Cache)
}

func (c *Container) initHandlers() {
	cfg := c.Config

	c.UserHandler = userHandler.NewUserHandler(c.UserService, userHandler.CookieConfig{
		Name:   cfg.JWT.CookieName,
		MaxAge: int(cfg.JWT.Expiry.Seconds()),
		Secure: cfg.IsProduction(),
	})
	c.PropertyHandler = propertyHandler.NewPropertyHandler(c.PropertyService, cfg.Upload.MaxImageSize)
	c.BookingHandler = bookingHandler.NewBookingHandler(c.BookingService)
	c.ChatHandler = chatHandler.NewChatHandler(c.ChatService)
	c.LocationHandler = locationHandler.NewLocationHandler(c.LocationService)
	c.RealtimeHandler = realtime.NewHandler(c.Hub, c.JWTManager, c.Cache, c.AllowedOrigins())
}

// ========================================
// HELPER METHODS
// ========================================

// RedisClientOpt is shared by the asynq client, server and scheduler.
func (c *Container) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// DirectMailer delivers over SMTP regardless of EMAIL_DELIVERY. The worker uses it to
// drain the email queue.
func (c *Container) DirectMailer() email.Sender {
	return email.WithResults(c.smtpSender(), c.recorder())
}

// AllowedOrigins splits CLIENT_URL, which may list several origins separated by commas.
func (c *Container) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Config.App.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Container) smtpSender() email.Sender {
	cfg := c.Config.Email
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
	})
}

func (c *Container) recorder() email.ResultRecorder {
	if c.Metrics == nil {
		return nil
	}
	return c.Metrics
}

// Cleanup releases every connection. Safe on a partially built container.
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up resources")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("[QUEUE] Failed to close client")
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Mongo.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("[MONGO] Failed to disconnect")
		}
		cancel()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[REDIS] Failed to close")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("[CONTAINER] Cleanup completed")
}

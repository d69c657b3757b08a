package bootstrap

import (
	"context"
	"log"

	"leadflow-be/internal/config"
	"leadflow-be/internal/controller"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/pkg/mailer"
	"leadflow-be/internal/pkg/metrics"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/realtime"
	"leadflow-be/internal/repository/implementation"
	"leadflow-be/internal/repository/memory"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/internal/service"
	"leadflow-be/pkg/assignment"
	"leadflow-be/pkg/eventbus"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	LeadController         controller.ILeadController
	NotificationController controller.INotificationController
	LocationController     controller.ILocationController
	ProviderController     controller.IProviderController
	PlanController         controller.PlanController
	SettingsController     controller.ISettingsController
	AdminController        controller.IAdminController
	BroadcastingController controller.IBroadcastingController
	Guards                 *controller.Guards

	// Background services (run by main)
	NotificationService service.INotificationService
	Hub                 *realtime.Hub

	Tokens  *serverutils.TokenManager
	Metrics *metrics.Metrics
	Logger  logger.ILogger

	bus eventbus.Bus
	rdb *redis.Client
}

// NewContainer wires the application. A nil db selects the in-memory
// repositories.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	realtimeLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	m := metrics.New()
	tokens := serverutils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var (
		uowFactory unitofwork.RepositoryFactory
		dbCursors  assignment.CursorStore
	)
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		dbCursors = implementation.NewAssignmentCursorRepository(db)
	} else {
		log.Println("[WARN] DB_CONNECTION_STRING is empty, using in-memory repositories")
		store := memory.NewStore()
		uowFactory = memory.NewRepositoryFactory(store)
		dbCursors = memory.NewAssignmentCursorRepository(store)
	}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Infrastructure
	// NATS, with the in-process bus as fallback
	var bus eventbus.Bus
	if cfg.App.NatsURL != "" {
		natsBus, err := eventbus.NewNatsBus(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS: %v. Using in-process event bus", err)
		} else {
			bus = natsBus
		}
	}
	if bus == nil {
		bus = eventbus.NewGoChannelBus(watermill.NewStdLogger(false, false))
	}

	// Redis
	rdb := connectRedis(cfg.App.RedisURL)

	// 3. Assignment
	cursors := []assignment.CursorStore{}
	if rdb != nil {
		cursors = append(cursors, assignment.NewRedisCursorStore(rdb))
	}
	cursors = append(cursors, dbCursors)
	resolverOpts := []assignment.Option{assignment.WithLogger(sysLogger.Zap())}
	if cfg.Keys.Geoapify != "" {
		resolverOpts = append(resolverOpts, assignment.WithRanker(assignment.NewGeoapifyRanker(cfg.Keys.Geoapify)))
	}
	resolver := assignment.NewResolver(assignment.NewFallbackCursorStore(sysLogger.Zap(), cursors...), resolverOpts...)

	// 4. Realtime
	var hubRedis redis.UniversalClient
	if rdb != nil {
		hubRedis = rdb
	}
	hub := realtime.NewHub(realtime.Credentials{
		AppKey:    cfg.Realtime.AppKey,
		AppSecret: cfg.Realtime.AppSecret,
	}, hubRedis, realtimeLogger, m)

	// 5. Services
	providerService := service.NewProviderService(uowFactory, sysLogger)
	settingsService := service.NewSettingsService(uowFactory, entity.RealtimeConfig{
		Enabled: cfg.Realtime.Enabled,
		AppKey:  cfg.Realtime.AppKey,
		Cluster: cfg.Realtime.Cluster,
	}, sysLogger)
	leadService := service.NewLeadService(uowFactory, resolver, bus, emailService, m, sysLogger)
	notificationService := service.NewNotificationService(uowFactory, bus, hub, m, realtimeLogger)
	authService := service.NewAuthService(uowFactory, tokens, sysLogger)
	locationService := service.NewLocationService(uowFactory, sysLogger)
	planService := service.NewPlanService(uowFactory)
	analyticsService := service.NewAnalyticsService(uowFactory)
	logService := service.NewLogService(sysLogger)
	broadcastingService := service.NewBroadcastingService(cfg.Realtime.AppKey, cfg.Realtime.AppSecret, providerService, settingsService, realtimeLogger)

	// 6. Controllers
	return &Container{
		AuthController:         controller.NewAuthController(authService, providerService),
		LeadController:         controller.NewLeadController(leadService),
		NotificationController: controller.NewNotificationController(notificationService),
		LocationController:     controller.NewLocationController(locationService),
		ProviderController:     controller.NewProviderController(providerService),
		PlanController:         controller.NewPlanController(planService),
		SettingsController:     controller.NewSettingsController(settingsService),
		AdminController:        controller.NewAdminController(analyticsService, logService),
		BroadcastingController: controller.NewBroadcastingController(broadcastingService),
		Guards:                 controller.NewGuards(tokens, providerService),

		NotificationService: notificationService,
		Hub:                 hub,

		Tokens:  tokens,
		Metrics: m,
		Logger:  sysLogger,

		bus: bus,
		rdb: rdb,
	}
}

// connectRedis returns nil when REDIS_URL is empty or unreachable; the hub
// then stays single-instance and cursors live in the database.
func connectRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close releases the event bus and redis connections.
func (c *Container) Close() error {
	defer c.Logger.Sync()
	if err := c.bus.Close(); err != nil {
		return err
	}
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// cmd/inventoryservice/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fb_logger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	httpctl "github.com/ecomsys/inventory-service/internal/adapter/controller/http"
	kafkaevt "github.com/ecomsys/inventory-service/internal/adapter/event/kafka"
	redislock "github.com/ecomsys/inventory-service/internal/adapter/lock/redis"
	gormrepo "github.com/ecomsys/inventory-service/internal/adapter/repository/gorm"
	"github.com/ecomsys/inventory-service/internal/adapter/repository/gorm/model"
	appconfig "github.com/ecomsys/inventory-service/internal/config"
	"github.com/ecomsys/inventory-service/internal/domain/repository"
	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/internal/usecase"
	applogger "github.com/ecomsys/inventory-service/pkg/logger"
	appmiddleware "github.com/ecomsys/inventory-service/pkg/middleware"
	"github.com/ecomsys/inventory-service/pkg/health"
)

// Repositories holds all repository implementations.
type Repositories struct {
	Inventory repository.InventoryRepository
	Ledger    repository.ReservationLedgerRepository
	Dedup     repository.DedupRepository
}

// Usecases holds all usecase implementations.
type Usecases struct {
	Reserve *usecase.ReserveUsecase
	Release *usecase.ReleaseUsecase
	Deduct  *usecase.DeductUsecase
	Admin   *usecase.AdminUsecase
	Order   *usecase.OrderEventHandler
	Catalog *usecase.CatalogEventHandler
}

// Controllers holds all controllers.
type Controllers struct {
	HTTP *httpctl.InventoryHandler
}

// Servers holds all server instances and background consumers.
type Servers struct {
	HTTP     *fiber.App
	Consumer *kafkaevt.Consumer
}

// GormLogAdapter adapts the application logger to GORM's logger interface.
type GormLogAdapter struct {
	log applogger.Logger
}

func (l *GormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func main() {
	configPath := flag.String("config", "config.inventory.yaml", "path to config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := applogger.NewZapLogger()
	log.Info("Starting inventory service")

	config, err := appconfig.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	db, err := initDatabase(config.Database, log)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}

	redisClient := initRedis(config.Redis)

	publisher := kafkaevt.NewPublisher(kafkaConfigFrom(config.Kafka))

	repositories := initRepositories(db)
	lockSvc := redislock.NewLockService(redisClient)

	usecases := initUsecases(repositories, lockSvc, publisher, log)

	consumer := kafkaevt.NewConsumer(kafkaConfigFrom(config.Kafka), usecases.Order, usecases.Catalog, log)

	controllers := initControllers(usecases, log)

	healthChecks := health.NewHealth(log, db, redisClient, consumer.LastCommitTime)

	servers := initServers(ctx, config, controllers, healthChecks, consumer, log)

	handleGracefulShutdown(cancel, servers, db, redisClient, publisher, log)
}

func kafkaConfigFrom(cfg appconfig.KafkaConfig) kafkaevt.Config {
	return kafkaevt.Config{
		Brokers:             cfg.Brokers,
		InventoryTopic:      cfg.InventoryTopic,
		OrderCreatedTopic:   cfg.OrderCreatedTopic,
		OrderUpdatedTopic:   cfg.OrderUpdatedTopic,
		OrderCancelledTopic: cfg.OrderCancelledTopic,
		OrderDeliveredTopic: cfg.OrderDeliveredTopic,
		OrderShippedTopic:   cfg.OrderShippedTopic,
		OrderPaidTopic:      cfg.OrderPaidTopic,
		CatalogTopic:        cfg.CatalogTopic,
		ConsumerGroupID:     cfg.ConsumerGroupID,
	}
}

// initDatabase opens the MySQL connection and migrates the four tables this
// service owns.
func initDatabase(config appconfig.DatabaseConfig, log applogger.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.User, config.Password, config.Host, config.Port, config.Name)

	gormLogger := gormlogger.New(
		&GormLogAdapter{log: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to database")

	if err := db.AutoMigrate(
		&model.InventoryItem{},
		&model.ReservationLedgerEntry{},
		&model.StockTransaction{},
		&model.ProcessedOrderEvent{},
	); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(config.MaxIdle)
	sqlDB.SetMaxOpenConns(config.MaxOpen)
	sqlDB.SetConnMaxLifetime(config.MaxLife)

	return db, nil
}

func initRedis(cfg appconfig.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Inventory: gormrepo.NewGormInventoryRepository(db),
		Ledger:    gormrepo.NewGormReservationLedgerRepository(db),
		Dedup:     gormrepo.NewGormDedupRepository(db),
	}
}

func initUsecases(repos *Repositories, lock service.LockService, events service.EventPublisherService, log applogger.Logger) *Usecases {
	reserve := usecase.NewReserveUsecase(repos.Inventory, repos.Ledger, lock, events, log)
	release := usecase.NewReleaseUsecase(repos.Inventory, repos.Ledger, lock, events, log)
	deduct := usecase.NewDeductUsecase(repos.Inventory, repos.Ledger, lock, events, log)
	admin := usecase.NewAdminUsecase(repos.Inventory)
	order := usecase.NewOrderEventHandler(repos.Dedup, reserve, release, deduct, log)
	catalog := usecase.NewCatalogEventHandler(repos.Inventory, events, log)

	return &Usecases{
		Reserve: reserve,
		Release: release,
		Deduct:  deduct,
		Admin:   admin,
		Order:   order,
		Catalog: catalog,
	}
}

func initControllers(usecases *Usecases, log applogger.Logger) *Controllers {
	return &Controllers{
		HTTP: httpctl.NewInventoryHandler(usecases.Admin, log),
	}
}

func initServers(ctx context.Context, config *appconfig.Config, controllers *Controllers, healthChecks *health.Health, consumer *kafkaevt.Consumer, log applogger.Logger) *Servers {
	httpServer := initHTTPServer(config, controllers.HTTP, healthChecks, log)

	go func() {
		log.Info("Starting Fiber server", "addr", config.Server.Address)
		if err := httpServer.Listen(config.Server.Address); err != nil {
			log.Fatal("Server failed to start", "error", err)
		}
	}()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error("Kafka consumer stopped", "error", err)
		}
	}()

	return &Servers{HTTP: httpServer, Consumer: consumer}
}

func initHTTPServer(config *appconfig.Config, handler *httpctl.InventoryHandler, healthChecks *health.Health, log applogger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Error("HTTP error", "status", code, "error", err.Error())
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(appmiddleware.CorrelationID(log))
	app.Use(appmiddleware.RequestLogger(log))
	app.Use(appmiddleware.SecurityHeaders())
	app.Use(fb_logger.New())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, err interface{}) {
			log.Error("Recovered from panic", "error", err, "stack", string(debug.Stack()))
			c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	}))

	for path, h := range healthChecks.GetHandlers() {
		app.Get(path, h)
	}

	api := app.Group("/api")
	authMiddleware := appmiddleware.AdminAPIKeyAuth(config.Admin.HashedAPIKey)
	handler.RegisterRoutes(api, authMiddleware)

	return app
}

func handleGracefulShutdown(cancel context.CancelFunc, servers *Servers, db *gorm.DB, redisClient *goredis.Client, publisher *kafkaevt.Publisher, log applogger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down inventory service...")

	if err := servers.HTTP.Shutdown(); err != nil {
		log.Error("Error during HTTP server shutdown", "error", err)
	}

	cancel()

	if err := servers.Consumer.Close(); err != nil {
		log.Error("Error closing kafka consumer", "error", err)
	}
	if err := publisher.Close(); err != nil {
		log.Error("Error closing kafka publisher", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing redis client", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database", "error", err)
		}
	}

	log.Info("Shutdown complete")
}

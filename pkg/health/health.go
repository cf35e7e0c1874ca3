package health

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ecomsys/inventory-service/pkg/logger"
)

// Check represents a health check function.
type Check func(ctx context.Context) error

// Health contains handlers for health checks, wired against the MySQL and
// Redis backends and the age of the last Kafka consumer commit.
type Health struct {
	logger          logger.Logger
	startTime       time.Time
	db              *gorm.DB
	redisClient     *redis.Client
	lastKafkaCommit func() time.Time
	checks          map[string]Check
}

// NewHealth creates a new Health instance. lastKafkaCommit reports the time
// of the most recent successful CommitMessages call across all consumer
// topics; a nil func disables the staleness check.
func NewHealth(log logger.Logger, db *gorm.DB, redisClient *redis.Client, lastKafkaCommit func() time.Time) *Health {
	h := &Health{
		logger:          log,
		startTime:       time.Now(),
		db:              db,
		redisClient:     redisClient,
		lastKafkaCommit: lastKafkaCommit,
		checks:          make(map[string]Check),
	}

	h.RegisterCheck("db", h.checkDatabase)
	h.RegisterCheck("redis", h.checkRedis)
	h.RegisterCheck("kafka", h.checkKafka)

	return h
}

// RegisterCheck registers a new health check.
func (h *Health) RegisterCheck(name string, check Check) {
	h.checks[name] = check
}

// GetHandlers returns Fiber handlers for health check endpoints.
func (h *Health) GetHandlers() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		"/health":        h.HealthHandler,
		"/health/ready":  h.ReadinessHandler,
		"/health/live":   h.LivenessHandler,
		"/health/info":   h.InfoHandler,
		"/health/status": h.StatusHandler,
	}
}

func (h *Health) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}
	return nil
}

func (h *Health) checkRedis(ctx context.Context) error {
	if h.redisClient == nil {
		return errors.New("redis client not initialized")
	}
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis check failed: %w", err)
	}
	return nil
}

// checkKafka reports unhealthy once no consumer has committed an offset for
// longer than a consumer is expected to go idle, catching a wedged reader
// goroutine that stopped making progress without exiting.
const kafkaCommitStalenessThreshold = 2 * time.Minute

func (h *Health) checkKafka(ctx context.Context) error {
	if h.lastKafkaCommit == nil {
		return nil
	}
	last := h.lastKafkaCommit()
	if last.IsZero() {
		return nil
	}
	if age := time.Since(last); age > kafkaCommitStalenessThreshold {
		return fmt.Errorf("no kafka commit in %s", age.Round(time.Second))
	}
	return nil
}

func (h *Health) runChecks(ctx context.Context) map[string]error {
	results := make(map[string]error)

	for name, check := range h.checks {
		results[name] = check(ctx)
	}

	return results
}

// HealthHandler handles the /health endpoint.
func (h *Health) HealthHandler(c *fiber.Ctx) error {
	results := h.runChecks(c.Context())

	allPassed := true
	statusDetails := make(map[string]string)

	for name, err := range results {
		if err != nil {
			allPassed = false
			statusDetails[name] = "down"
		} else {
			statusDetails[name] = "up"
		}
	}

	status := "up"
	if !allPassed {
		status = "degraded"
		c.Status(fiber.StatusServiceUnavailable)
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"details": statusDetails,
	})
}

// ReadinessHandler handles the /health/ready endpoint.
func (h *Health) ReadinessHandler(c *fiber.Ctx) error {
	results := h.runChecks(c.Context())

	allPassed := true
	for _, err := range results {
		if err != nil {
			allPassed = false
			break
		}
	}

	if !allPassed {
		c.Status(fiber.StatusServiceUnavailable)
		return c.JSON(fiber.Map{
			"status": "not ready",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

// LivenessHandler handles the /health/live endpoint.
func (h *Health) LivenessHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// InfoHandler handles the /health/info endpoint.
func (h *Health) InfoHandler(c *fiber.Ctx) error {
	info := map[string]interface{}{
		"service":    "inventory-service",
		"start_time": h.startTime.Format(time.RFC3339),
		"uptime":     time.Since(h.startTime).String(),
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
		"goroutines": runtime.NumGoroutine(),
		"cpu_cores":  runtime.NumCPU(),
	}

	return c.JSON(info)
}

// StatusHandler handles the /health/status endpoint.
func (h *Health) StatusHandler(c *fiber.Ctx) error {
	results := h.runChecks(c.Context())

	statusDetails := make(map[string]interface{})
	for name, err := range results {
		details := map[string]interface{}{
			"status": "up",
			"error":  nil,
		}
		if err != nil {
			details["status"] = "down"
			details["error"] = err.Error()
		}
		statusDetails[name] = details
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	memory := map[string]interface{}{
		"alloc":        memStats.Alloc,
		"total_alloc":  memStats.TotalAlloc,
		"sys":          memStats.Sys,
		"num_gc":       memStats.NumGC,
		"heap_objects": memStats.HeapObjects,
	}

	return c.JSON(fiber.Map{
		"components": statusDetails,
		"memory":     memory,
		"uptime":     time.Since(h.startTime).String(),
	})
}

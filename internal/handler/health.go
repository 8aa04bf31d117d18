package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// StatusReporter is implemented by dependencies that can describe their own
// state without a network round trip (the SMTP mailer's breaker).
type StatusReporter interface {
	Status() string
}

// HealthDeps lists what /health checks. Redis and Mailer may be nil.
type HealthDeps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Mailer StatusReporter
}

// Health reports database and redis reachability plus the mailer state. Only
// the database and a configured redis decide the status code: a tripped
// mailer degrades password reset by email, nothing else.
func Health(deps HealthDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{
			"db":    ping(ctx, deps.DB),
			"redis": "disabled",
			"smtp":  "disabled",
		}
		if deps.Redis != nil {
			body["redis"] = "connected"
			if deps.Redis.Ping(ctx).Err() != nil {
				body["redis"] = "error"
			}
		}
		if deps.Mailer != nil {
			body["smtp"] = deps.Mailer.Status()
		}

		ok := body["db"] == "connected" && body["redis"] != "error"
		body["ok"] = ok
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}

func ping(ctx context.Context, db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return "error"
	}
	return "connected"
}

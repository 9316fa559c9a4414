// internal/api/router.go
package api

import (
	"context"
	"time"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"
	sendnotification "application-intake/internal/workers/application/send-notification"
	submitapplication "application-intake/internal/workers/application/submit-application"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submitter runs one form submission.
type Submitter interface {
	Submit(ctx context.Context, in *submitapplication.Input) (*submitapplication.Result, error)
}

// Notifier sends the two notification emails on request.
type Notifier interface {
	NotifyHR(ctx context.Context, record *models.ApplicationRecord, refs models.DocumentRefs) (*sendnotification.Output, error)
	NotifyCandidate(ctx context.Context, record *models.ApplicationRecord) (*sendnotification.Output, error)
}

// Pinger is a backing service checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	AllowedOrigins []string
	// MaxUploadBytes limits each document; the request body may hold two.
	MaxUploadBytes int64
}

type Dependencies struct {
	Submitter Submitter
	Notifier  Notifier
	Checks    map[string]Pinger
	Logger    logger.Logger
}

// corsAllowHeaders are the headers browser clients send to the notification functions.
var corsAllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

type handlers struct {
	opts      Options
	submitter Submitter
	notifier  Notifier
	checks    map[string]Pinger
	logger    logger.Logger
}

// NewRouter builds the gin engine serving the intake API.
func NewRouter(opts Options, deps Dependencies) *gin.Engine {
	h := &handlers{
		opts:      opts,
		submitter: deps.Submitter,
		notifier:  deps.Notifier,
		checks:    deps.Checks,
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = 2 * opts.MaxUploadBytes
	}

	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/applications", h.limitBody(), h.submitApplication)
	}

	functions := r.Group("/functions/v1")
	{
		functions.POST("/"+sendnotification.TaskTypeApplicationEmail, h.sendApplicationEmail)
		functions.POST("/"+sendnotification.TaskTypeConfirmationEmail, h.sendConfirmationEmail)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = corsAllowHeaders
	cfg.MaxAge = 12 * time.Hour

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Info("request", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(started).Milliseconds(),
		})
	}
}

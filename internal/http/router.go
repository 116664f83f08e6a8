package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/leadtriage/backend/internal/blob"
	"github.com/leadtriage/backend/internal/config"
	"github.com/leadtriage/backend/internal/http/handlers"
	"github.com/leadtriage/backend/internal/http/middleware"
	"github.com/leadtriage/backend/internal/service"
	"github.com/leadtriage/backend/internal/store"

	_ "github.com/leadtriage/backend/docs"
)

func Router(cfg config.Config, leads *store.Store, runner *service.Runner, storage blob.Store, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "" || cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		for _, o := range strings.Split(cfg.CORSAllowed, ",") {
			if o = strings.TrimSpace(o); o != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, o)
			}
		}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     leads,
		Runner:    runner,
		Storage:   storage,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/leads", h.LeadsList)
		api.GET("/leads/:id", h.LeadDetails)
		api.GET("/stats", h.Stats)
		api.GET("/runs/latest", h.RunsLatest)
		api.GET("/qualify/events", h.QualifyEvents)
	}

	limiter := middleware.NewIPRateLimiter(cfg.MutationRatePerMin)
	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey), limiter.RateLimit())
	{
		admin.POST("/leads", h.LeadCreate)
		admin.POST("/leads/:id/override", h.LeadOverride)
		admin.PUT("/leads/:id/notes", h.LeadNotes)
		admin.DELETE("/leads/:id", h.LeadDelete)
		admin.POST("/leads/:id/qualify", h.QualifyLead)
		admin.POST("/qualify", h.QualifyAll)
		admin.POST("/qualify/cancel", h.QualifyCancel)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

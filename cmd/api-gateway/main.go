package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/cse-hub/crs-api/api/swagger"
	"github.com/cse-hub/crs-api/internal/handler"
	internalmiddleware "github.com/cse-hub/crs-api/internal/middleware"
	"github.com/cse-hub/crs-api/internal/repository"
	"github.com/cse-hub/crs-api/internal/service"
	"github.com/cse-hub/crs-api/pkg/cache"
	"github.com/cse-hub/crs-api/pkg/config"
	"github.com/cse-hub/crs-api/pkg/database"
	"github.com/cse-hub/crs-api/pkg/logger"
	corsmiddleware "github.com/cse-hub/crs-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cse-hub/crs-api/pkg/middleware/requestid"
)

// @title Course Request System API
// @version 1.0.0
// @description Enrollment-based request and response workflows for courses
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, disconnect, err := database.NewMongo(cfg.Mongo)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to mongo", "error", err)
	}
	defer disconnect(context.Background()) //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	userRepo := repository.NewUserRepository(db, cfg.Mongo.QueryTimeout, metricsSvc)
	courseRepo := repository.NewCourseRepository(db, cfg.Mongo.QueryTimeout, metricsSvc)
	requestRepo := repository.NewRequestRepository(db, cfg.Mongo.QueryTimeout, metricsSvc)

	userSvc := service.NewUserService(userRepo, logr)
	courseSvc := newCourseService(cfg, logr, metricsSvc, courseRepo, userRepo)
	requestSvc := service.NewRequestService(requestRepo, userRepo, courseRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	var notifier service.Notifier
	if cfg.Notifications.Enabled {
		notifier = service.NewNotificationService(userSvc, cfg.Notifications.BaseURL, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, notifier, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Client().Ping(c.Request.Context(), nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/users/me", userHandler.Me)
	secured.PATCH("/users/me/name", userHandler.UpdateName)
	secured.GET("/classes/members", userHandler.ClassMembers)

	secured.GET("/courses", courseHandler.ListFromEnrollment)
	secured.GET("/courses/:code/:term", courseHandler.Get)
	secured.PUT("/courses/:code/:term/sections", courseHandler.UpdateSections)
	secured.PUT("/courses/:code/:term/request-types", courseHandler.SetRequestTypes)

	secured.POST("/requests", requestHandler.Create)
	secured.GET("/requests", requestHandler.List)
	secured.GET("/requests/export", requestHandler.Export)
	secured.GET("/requests/:id", requestHandler.Get)
	secured.POST("/requests/:id/response", requestHandler.CreateResponse)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newCourseService wires the course service with an optional redis cache in
// front of course lookups.
func newCourseService(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository) *service.CourseService {
	if !cfg.Cache.Enabled {
		return service.NewCourseService(courseRepo, courseRepo, userRepo, nil, logr)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, course cache disabled", "error", err)
		return service.NewCourseService(courseRepo, courseRepo, userRepo, nil, logr)
	}

	courseCache := repository.NewCourseCache(courseRepo, redisClient, cfg.Cache.CourseTTL, metricsSvc, logr)
	return service.NewCourseService(courseRepo, courseCache, userRepo, courseCache, logr)
}

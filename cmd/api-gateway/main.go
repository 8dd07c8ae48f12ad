package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/handler"
	"github.com/campusops/timetable-api/internal/middleware"
	"github.com/campusops/timetable-api/internal/repository"
	"github.com/campusops/timetable-api/internal/service"
	"github.com/campusops/timetable-api/pkg/cache"
	"github.com/campusops/timetable-api/pkg/config"
	"github.com/campusops/timetable-api/pkg/database"
	"github.com/campusops/timetable-api/pkg/jobs"
	"github.com/campusops/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusops/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/timetable-api/pkg/middleware/requestid"
	"github.com/campusops/timetable-api/pkg/runlock"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	var locker runlock.Locker = runlock.NewMemoryLocker()
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		locker = runlock.NewRedisLocker(redisClient)
	}

	configRepo := repository.NewScheduleConfigRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)
	entryRepo := repository.NewTimetableEntryRepository(db)
	runRepo := repository.NewGenerationRunRepository(db)

	metricsSvc := service.NewMetricsService()
	configSvc := service.NewScheduleConfigService(configRepo, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	roomSvc := service.NewRoomService(roomRepo, nil, logr)
	batchSvc := service.NewBatchService(batchRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	assignmentSvc := service.NewTeacherAssignmentService(assignmentRepo, teacherRepo, subjectRepo, nil, logr)
	validationSvc := service.NewValidationService(configRepo, teacherRepo, roomRepo, batchRepo, subjectRepo, assignmentRepo, entryRepo, cfg.Scheduler, nil, logr)
	timetableSvc := service.NewTimetableService(configRepo, teacherRepo, roomRepo, batchRepo, subjectRepo, assignmentRepo, entryRepo, runRepo, configRepo, db, locker, cfg.Scheduler, metricsSvc, nil, logr)

	var queue *jobs.Queue
	if cfg.Jobs.Enabled {
		queue = jobs.NewQueue("generation", timetableSvc.HandleGenerateJob, jobs.QueueConfig{
			Workers:    cfg.Jobs.Workers,
			BufferSize: cfg.Jobs.BufferSize,
			ResultTTL:  cfg.Jobs.ResultTTL,
			Logger:     logr,
		})
		queue.Start(context.Background())
		defer queue.Stop()
		timetableSvc.AttachQueue(queue)
	}

	configHandler := handler.NewScheduleConfigHandler(configSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	batchHandler := handler.NewBatchHandler(batchSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	assignmentHandler := handler.NewTeacherAssignmentHandler(assignmentSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, validationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/configs", configHandler.List)
		api.POST("/configs", configHandler.Create)
		api.GET("/configs/:id", configHandler.Get)
		api.PATCH("/configs/:id/status", configHandler.UpdateStatus)

		api.GET("/teachers", teacherHandler.List)
		api.POST("/teachers", teacherHandler.Create)
		api.GET("/teachers/:id", teacherHandler.Get)
		api.PUT("/teachers/:id", teacherHandler.Update)
		api.DELETE("/teachers/:id", teacherHandler.Deactivate)

		api.GET("/rooms", roomHandler.List)
		api.POST("/rooms", roomHandler.Create)
		api.GET("/rooms/:id", roomHandler.Get)

		api.GET("/batches", batchHandler.ListBatches)
		api.POST("/batches", batchHandler.CreateBatch)
		api.GET("/batches/:id", batchHandler.GetBatch)
		api.GET("/sections", batchHandler.ListSections)
		api.POST("/sections", batchHandler.CreateSection)

		api.GET("/subjects", subjectHandler.List)
		api.POST("/subjects", subjectHandler.Create)
		api.GET("/subjects/:id", subjectHandler.Get)

		api.GET("/assignments", assignmentHandler.List)
		api.POST("/assignments", assignmentHandler.Create)
		api.DELETE("/assignments/:id", assignmentHandler.Delete)

		api.POST("/timetable/generate", timetableHandler.Generate)
		api.POST("/timetable/validate", timetableHandler.Validate)
		api.PATCH("/timetable/entries/:id/move", timetableHandler.Move)
		api.GET("/timetable/entries", timetableHandler.ListEntries)
		api.GET("/timetable/runs/:id", timetableHandler.GetRun)
		api.GET("/configs/:id/runs/latest", timetableHandler.LatestRun)
		api.GET("/timetable/jobs/:id", timetableHandler.JobStatus)

		api.GET("/stats", metricsHandler.Stats)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}

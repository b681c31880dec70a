package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/presensi-qr-api/api/swagger"
	"github.com/noah-isme/presensi-qr-api/internal/handler"
	"github.com/noah-isme/presensi-qr-api/internal/middleware"
	"github.com/noah-isme/presensi-qr-api/internal/service"
	"github.com/noah-isme/presensi-qr-api/internal/state"
	"github.com/noah-isme/presensi-qr-api/internal/store"
	"github.com/noah-isme/presensi-qr-api/pkg/config"
	"github.com/noah-isme/presensi-qr-api/pkg/jobs"
	"github.com/noah-isme/presensi-qr-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/presensi-qr-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/presensi-qr-api/pkg/middleware/requestid"
	"github.com/noah-isme/presensi-qr-api/pkg/storage"
)

// @title Presensi QR API
// @version 1.0.0
// @description School attendance administration with QR check-in
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

	metrics := service.NewMetricsService()

	kv, err := openStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open snapshot store", "driver", cfg.Store.Driver, "error", err)
	}
	kv = store.WithMetrics(kv, metrics)

	appState := state.New(kv, logr)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	appState.Load(loadCtx)
	cancelLoad()

	validate := validator.New()

	authSvc := service.NewAuthService(appState, validate, logr, cfg.Auth)
	studentSvc := service.NewStudentService(appState, validate, logr)
	teacherSvc := service.NewTeacherService(appState, validate, logr)
	classSvc := service.NewClassService(appState, validate, logr)
	schoolSvc := service.NewSchoolService(appState, validate, logr)
	calendarSvc := service.NewCalendarService(appState, validate, logr)

	evidenceStore, err := storage.NewLocalStorage(cfg.Evidence.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init evidence storage", "error", err)
	}
	permissionSvc := service.NewPermissionService(appState, validate, logr, evidenceStore, cfg.Evidence)
	checkinSvc := service.NewCheckinService(appState, metrics, logr)
	reportSvc := service.NewReportService(appState, logr)
	dashboardSvc := service.NewDashboardService(appState, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewDownloadSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(reportSvc, appState, exportStore, signer, metrics, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	exportQueue := jobs.NewQueue("recap-exports", exportSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportQueue.Start(context.Background())
	defer exportQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	classHandler := handler.NewClassHandler(classSvc)
	schoolHandler := handler.NewSchoolHandler(schoolSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	permissionHandler := handler.NewPermissionHandler(permissionSvc)
	checkinHandler := handler.NewCheckinHandler(checkinSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc, exportQueue)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	// Downloads are authorized by their signed token, not the session.
	api.GET("/exports/download/:token", exportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		protected.GET("/students", studentHandler.List)
		protected.POST("/students", studentHandler.Create)
		protected.GET("/students/:id", studentHandler.Get)
		protected.PUT("/students/:id", studentHandler.Update)
		protected.DELETE("/students/:id", studentHandler.Delete)

		protected.GET("/teachers", teacherHandler.List)
		protected.POST("/teachers", teacherHandler.Create)
		protected.GET("/teachers/:id", teacherHandler.Get)
		protected.PUT("/teachers/:id", teacherHandler.Update)
		protected.DELETE("/teachers/:id", teacherHandler.Delete)

		protected.GET("/classes", classHandler.List)
		protected.POST("/classes", classHandler.Create)
		protected.PUT("/classes/:id", classHandler.Update)
		protected.DELETE("/classes/:id", classHandler.Delete)

		protected.GET("/school", schoolHandler.Get)
		protected.PUT("/school", schoolHandler.Update)

		protected.GET("/calendar", calendarHandler.List)
		protected.POST("/calendar", calendarHandler.Create)
		protected.PUT("/calendar/:id", calendarHandler.Update)
		protected.DELETE("/calendar/:id", calendarHandler.Delete)

		protected.GET("/permissions", permissionHandler.List)
		protected.POST("/permissions", permissionHandler.Create)
		protected.POST("/permissions/:id/verify", permissionHandler.Verify)

		protected.POST("/checkin/scan", checkinHandler.Scan)
		protected.POST("/checkin/reset", checkinHandler.Reset)
		protected.GET("/checkin/status", checkinHandler.Status)

		protected.GET("/reports/recap", reportHandler.Recap)
		protected.GET("/dashboard", dashboardHandler.Summary)

		protected.POST("/exports", exportHandler.Create)
		protected.GET("/exports/:id", exportHandler.Status)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config) (store.KV, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		return store.NewFileKV(cfg.Store.Dir)
	case config.StoreDriverRedis:
		return store.NewRedisKV(cfg.Redis)
	case config.StoreDriverPostgres:
		return store.NewPostgresKV(cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

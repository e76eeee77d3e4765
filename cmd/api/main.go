package main

import (
	"context"
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

	_ "github.com/pudocs/dept-portal-api/api/swagger"
	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/handler"
	"github.com/pudocs/dept-portal-api/internal/middleware"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	"github.com/pudocs/dept-portal-api/internal/service"
	"github.com/pudocs/dept-portal-api/pkg/cache"
	"github.com/pudocs/dept-portal-api/pkg/config"
	"github.com/pudocs/dept-portal-api/pkg/firebase"
	"github.com/pudocs/dept-portal-api/pkg/logger"
	corsmiddleware "github.com/pudocs/dept-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pudocs/dept-portal-api/pkg/middleware/requestid"
	"github.com/pudocs/dept-portal-api/pkg/storage"
)

// @title Department Portal API
// @version 0.1.0
// @description Offline-first department data layer
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fb, err := firebase.New(ctx, cfg.Firebase)
	if err != nil {
		logr.Sugar().Fatalw("failed to init firebase", "error", err)
	}
	defer fb.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	store := docstore.NewFirestoreStore(fb.Firestore)
	validate := validator.New()

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr, cfg.Cache.TTL, cfg.Cache.MaxEntrySize).WithMetrics(metricsSvc)
	studentRepo := repository.NewStudentRepository(store, logr)
	staffRepo := repository.NewStaffRepository(store)
	userRepo := repository.NewUserRepository(store)
	noticeRepo := repository.NewNoticeRepository(store)
	examRepo := repository.NewExamRepository(store)
	attendanceRepo := repository.NewAttendanceRepository(store)
	feeRepo := repository.NewFeeRepository(store)
	timetableRepo := repository.NewTimetableRepository(store)

	identity := service.NewFirebaseIdentity(fb.Auth)

	authSvc := service.NewAuthService(identity, userRepo, staffRepo, studentRepo, cacheRepo, cfg.JWT, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, cacheRepo, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, validate, logr)
	noticeSvc := service.NewNoticeService(noticeRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, studentRepo, nil, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	feeSvc := service.NewFeeService(feeRepo, studentRepo, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr)

	syncSvc := service.NewSyncService(buildFetchers(noticeSvc, examSvc, studentRepo, timetableSvc, feeSvc), cacheRepo, cfg.Sync, logr).WithMetrics(metricsSvc)
	if cfg.Sync.Enabled {
		if err := syncSvc.StartScheduler(); err != nil {
			logr.Sugar().Fatalw("failed to start sync scheduler", "error", err)
		}
	}

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled && fb.Bucket != nil {
		blobs := storage.NewBlobStore(fb.Bucket, cfg.Firebase.StorageBucket, cfg.Exports.PathPrefix)
		exportSvc = service.NewExportService(studentRepo, examRepo, blobs, cfg.Exports, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	reg := handler.Registry{
		Auth:       handler.NewAuthHandler(authSvc, syncSvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Staff:      handler.NewStaffHandler(staffSvc),
		Notices:    handler.NewNoticeHandler(noticeSvc),
		Exams:      handler.NewExamHandler(examSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Fees:       handler.NewFeeHandler(feeSvc),
		Timetables: handler.NewTimetableHandler(timetableSvc),
		Sync:       handler.NewSyncHandler(syncSvc),
		Metrics:    metricsHandler,
	}
	if exportSvc != nil {
		reg.Exports = handler.NewExportHandler(exportSvc, "")
	}
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), reg, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	syncSvc.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// buildFetchers assembles the per-entity loaders the warm-up runs through.
func buildFetchers(notices *service.NoticeService, exams *service.ExamService, students *repository.StudentRepository, timetables *service.TimetableService, fees *service.FeeService) []service.EntityFetcher {
	return []service.EntityFetcher{
		{
			Name: "notices",
			Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
				return notices.ListNotices(ctx, user.Role, models.NoticeFilter{})
			},
		},
		{
			Name: "events",
			Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
				return notices.ListEvents(ctx, user.Role, models.NoticeFilter{})
			},
		},
		{
			Name: "exams",
			Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
				return exams.ListExams(ctx, "", "", 0)
			},
		},
		{
			Name: "results",
			Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
				if user.Role != models.RoleStudent {
					return nil, nil
				}
				student, err := students.FindByEmail(ctx, user.Email)
				if err != nil {
					return nil, nil
				}
				return exams.ListResults(ctx, student.RegisterNumber)
			},
		},
		{
			Name: "fees",
			Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
				if user.Role != models.RoleStudent {
					return nil, nil
				}
				student, err := students.FindByEmail(ctx, user.Email)
				if err != nil {
					return nil, nil
				}
				return fees.ListByStudent(ctx, student.RegisterNumber)
			},
		},
		{
			Name: "timetable",
			Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
				if user.Role != models.RoleStudent {
					return nil, nil
				}
				student, err := students.FindByEmail(ctx, user.Email)
				if err != nil {
					return nil, nil
				}
				tt, err := timetables.Get(ctx, student.Course, student.Program, student.Year, student.Section)
				if err != nil {
					return nil, nil
				}
				return tt, nil
			},
		},
	}
}

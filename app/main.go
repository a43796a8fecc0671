// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"rep-admin/internal/integrations/backend"
	"rep-admin/internal/listeners"
	"rep-admin/internal/repositories"
	"rep-admin/internal/routes"
	"rep-admin/internal/services"
	"rep-admin/migrations"
	"rep-admin/pkg/config"
	"rep-admin/pkg/customvalidator"
	"rep-admin/pkg/database/postgresql"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/eventbus"
	"rep-admin/pkg/filestorage"
	applogger "rep-admin/pkg/logger"
	"rep-admin/pkg/middleware"
	"rep-admin/pkg/service"
	"rep-admin/pkg/utils"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true

	// 2. Middleware
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Internal server error", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderRequestID, "X-Confirm-Token"},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition, middleware.HeaderRequestID},
	}))

	cv, err := customvalidator.New()
	if err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = cv

	// 3. Файлы превью
	uploadsDir, err := filepath.Abs(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("не удалось получить абсолютный путь к uploads", zap.Error(err))
	}
	storage, err := filestorage.NewLocalFileStorage(uploadsDir)
	if err != nil {
		logger.Fatal("не удалось подготовить хранилище файлов", zap.Error(err))
	}
	e.Static(filestorage.PublicPrefix, uploadsDir)

	// 4. PostgreSQL (журнал действий) и Redis
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	dbConn, err := postgresql.ConnectDB(startCtx, cfg.Postgres.DSN, logger)
	cancel()
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if err := postgresql.RunMigrations(dbConn, migrations.FS); err != nil {
		logger.Fatal("ошибка миграций", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	// 5. Репозитории
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	queries := repositories.NewQueryCache(cacheRepo, cfg.Cache.QueryTTL, logger)
	guard := repositories.NewActionGuard(cacheRepo, cfg.Cache.InFlightTTL, logger)
	confirmations := repositories.NewConfirmationRepository(cacheRepo, cfg.Cache.ConfirmTTL)
	workspaces := repositories.NewWorkspaceRepository(cacheRepo, cfg.Cache.WorkspaceTTL, logger)
	sessions := repositories.NewSessionRepository(cacheRepo)
	auditRepo := repositories.NewAuditRepository(dbConn, logger)

	// 6. События: каждое изменение пишется в журнал асинхронно
	bus := eventbus.New(logger)
	listeners.NewAuditListener(auditRepo, logger).Register(bus)

	// 7. Сервисы
	upstream := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)
	base := services.NewBaseService(bus, storage, logger)

	svc := &routes.Services{
		Auth:          services.NewAuthService(base, upstream, sessions, workspaces, cacheRepo, jwtSvc, cfg.Auth, logger),
		Profile:       services.NewProfileService(base, upstream, queries, workspaces, guard, storage, cv, logger),
		CronJobs:      services.NewCronJobService(base, upstream, queries, guard, confirmations, logger),
		Distributions: services.NewDistributionService(base, upstream, queries, guard, confirmations, logger),
		Users:         services.NewUserService(base, upstream, logger),
		Audit:         services.NewAuditService(auditRepo, logger),
	}

	// 8. Роуты
	routes.InitRouter(e, svc, routes.NewLoggers(logger))

	// 9. Запуск и мягкая остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port), zap.String("backend", upstream.Name()))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Остановка сервера...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	// дописываем журнал до закрытия пула
	bus.Wait()
}

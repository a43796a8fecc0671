package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rep-admin/internal/controllers"
	"rep-admin/internal/services"
	"rep-admin/pkg/middleware"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Profile *zap.Logger
	Jobs    *zap.Logger
	Audit   *zap.Logger
}

// NewLoggers - одинаковый логгер для всех областей с разными именами.
func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:    base,
		Auth:    base.Named("auth"),
		Profile: base.Named("profile"),
		Jobs:    base.Named("jobs"),
		Audit:   base.Named("audit"),
	}
}

// Services - всё, что нужно маршрутам. Собирается в main и в тестах.
type Services struct {
	Auth          services.AuthServiceInterface
	Profile       services.ProfileServiceInterface
	CronJobs      services.CronJobServiceInterface
	Distributions services.DistributionServiceInterface
	Users         services.UserServiceInterface
	Audit         services.AuditServiceInterface
}

func InitRouter(e *echo.Echo, svc *Services, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(svc.Auth, loggers.Auth)

	runAuthRouter(api, controllers.NewAuthController(svc.Auth, loggers.Auth), authMW)

	secureGroup := api.Group("", authMW.Auth)

	profileController := controllers.NewProfileController(svc.Profile, loggers.Profile)
	runProfileRouter(secureGroup, profileController)
	runUploadRouter(secureGroup, profileController)

	runCronJobRouter(secureGroup, controllers.NewCronJobController(svc.CronJobs, loggers.Jobs))
	runDistributionRouter(secureGroup, controllers.NewDistributionController(svc.Distributions, loggers.Jobs))
	runUserRouter(secureGroup, controllers.NewUserController(svc.Users, loggers.Main), authMW)
	runAuditRouter(secureGroup, controllers.NewAuditController(svc.Audit, loggers.Audit), authMW)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}

// repPrefixes - страница профиля открывается и для выбранного представителя, и для себя.
var repPrefixes = []string{"/reps/:rep_id", "/me"}

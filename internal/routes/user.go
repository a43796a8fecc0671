package routes

import (
	"github.com/labstack/echo/v4"

	"rep-admin/internal/controllers"
	"rep-admin/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	secureGroup.POST("/users", userCtrl.CreateUser, authMW.RequireStaff)
}

func runAuditRouter(secureGroup *echo.Group, auditCtrl *controllers.AuditController, authMW *middleware.AuthMiddleware) {
	secureGroup.GET("/audit-log", auditCtrl.GetAuditLog, authMW.RequireStaff)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"rep-admin/internal/controllers"
	"rep-admin/pkg/middleware"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/logout", authCtrl.Logout, authMW.Auth)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
	}
}

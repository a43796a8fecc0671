package routes

import (
	"github.com/labstack/echo/v4"

	"rep-admin/internal/controllers"
)

func runCronJobRouter(secureGroup *echo.Group, ctrl *controllers.CronJobController) {
	g := secureGroup.Group("/cron-jobs")

	g.GET("", ctrl.GetCronJobs)
	g.POST("", ctrl.CreateCronJob)
	g.PUT("/:id", ctrl.UpdateCronJob)
	g.POST("/:id/delete-request", ctrl.RequestDelete)
	g.DELETE("/:id", ctrl.DeleteCronJob)
	g.POST("/:id/:action", ctrl.ApplyAction)
}

func runDistributionRouter(secureGroup *echo.Group, ctrl *controllers.DistributionController) {
	g := secureGroup.Group("/distributions/:type")

	g.GET("", ctrl.GetDistributions)
	g.POST("/:id/delete-request", ctrl.RequestDelete)
	g.DELETE("/:id", ctrl.DeleteDistribution)
	g.POST("/:id/:action", ctrl.ApplyAction)
}

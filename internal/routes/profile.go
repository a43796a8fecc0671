package routes

import (
	"github.com/labstack/echo/v4"

	"rep-admin/internal/controllers"
)

func runProfileRouter(secureGroup *echo.Group, ctrl *controllers.ProfileController) {
	for _, prefix := range repPrefixes {
		g := secureGroup.Group(prefix)

		g.GET("/profile", ctrl.GetProfile)
		g.POST("/profile/edit", ctrl.BeginProfileEdit)
		g.PATCH("/profile/draft", ctrl.ApplyProfileDraft)
		g.POST("/profile/cancel", ctrl.CancelProfileEdit)
		g.POST("/profile/submit", ctrl.SubmitProfile)

		g.POST("/cards/email_settings/select-all", ctrl.SelectAll)
		g.POST("/cards/:card/edit", ctrl.BeginEdit)
		g.PATCH("/cards/:card/draft", ctrl.ApplyDraft)
		g.POST("/cards/:card/cancel", ctrl.Cancel)
		g.POST("/cards/:card/submit", ctrl.Submit)

		g.GET("/:resource", ctrl.GetResource)
		g.PUT("/:resource", ctrl.UpdateResource)
	}
}

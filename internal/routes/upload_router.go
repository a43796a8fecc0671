package routes

import (
	"github.com/labstack/echo/v4"

	"rep-admin/internal/controllers"
)

// runUploadRouter - выбор и сброс файлов в карточках и в общем режиме.
func runUploadRouter(secureGroup *echo.Group, ctrl *controllers.ProfileController) {
	for _, prefix := range repPrefixes {
		g := secureGroup.Group(prefix)

		g.POST("/cards/:card/files/:field", ctrl.AttachFile)
		g.DELETE("/cards/:card/files/:field", ctrl.ClearFile)
		g.POST("/profile/files/:field", ctrl.AttachProfileFile)
		g.DELETE("/profile/files/:field", ctrl.ClearProfileFile)
	}
}

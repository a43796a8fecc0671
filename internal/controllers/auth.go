package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/services"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO

	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Error("Login: ошибка привязки данных", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid login payload."))
	}

	if err := c.Validate(&payload); err != nil {
		ctrl.logger.Warn("Login: ошибка валидации данных", zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	return utils.SuccessResponse(c, res, "Signed in", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if err := ctrl.authService.Logout(c.Request().Context()); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Signed out", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	me, err := ctrl.authService.Me(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, me, "", http.StatusOK)
}

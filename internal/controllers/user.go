package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/services"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser - регистрация представителя. Ошибки по полям возвращаются картой,
// форма остаётся на месте.
func (c *UserController) CreateUser(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var form entities.NewUser
	if err := ctx.Bind(&form); err != nil {
		c.logger.Error("CreateUser: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body."), c.logger)
	}
	if err := ctx.Validate(&form); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.userService.Create(reqCtx, form)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "User created", http.StatusCreated)
}

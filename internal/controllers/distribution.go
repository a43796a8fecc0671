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

type DistributionController struct {
	distributionService services.DistributionServiceInterface
	logger              *zap.Logger
}

func NewDistributionController(distributionService services.DistributionServiceInterface, logger *zap.Logger) *DistributionController {
	return &DistributionController{distributionService: distributionService, logger: logger}
}

func distributionType(ctx echo.Context) (entities.DistributionType, error) {
	dtype, ok := entities.ParseDistributionType(ctx.Param("type"))
	if !ok {
		return "", apperrors.ErrUnknownResource
	}
	return dtype, nil
}

func (c *DistributionController) GetDistributions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	dtype, err := distributionType(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if wantsXLSX(ctx) {
		items, err := c.distributionService.Export(reqCtx, dtype)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return respondWithXLSX(ctx, string(dtype)+"_distributions", distributionSheet(items))
	}

	items, err := c.distributionService.List(reqCtx, dtype)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, items, "", http.StatusOK)
}

func (c *DistributionController) ApplyAction(ctx echo.Context) error {
	dtype, err := distributionType(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	result, err := c.distributionService.Apply(ctx.Request().Context(), dtype, id, ctx.Param("action"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, result.Message, http.StatusOK)
}

func (c *DistributionController) RequestDelete(ctx echo.Context) error {
	dtype, err := distributionType(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	confirmation, err := c.distributionService.RequestDelete(ctx.Request().Context(), dtype, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, confirmation, "Confirm deletion.", http.StatusOK)
}

func (c *DistributionController) DeleteDistribution(ctx echo.Context) error {
	dtype, err := distributionType(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	result, err := c.distributionService.Delete(ctx.Request().Context(), dtype, id, confirmToken(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, result.Message, http.StatusOK)
}

var distributionHeaders = []string{"ID", "Name", "Target", "Status", "Scheduled at", "Recipients", "Sent", "Failed", "Created at"}

func distributionSheet(items []entities.Distribution) sheet {
	rows := make([][]interface{}, 0, len(items))
	for _, d := range items {
		rows = append(rows, []interface{}{
			d.ID, d.Name, d.Target, d.Status, formatTime(d.ScheduledAt.Time),
			d.RecipientsCount, d.SentCount, d.FailedCount, formatTime(d.CreatedAt.Time),
		})
	}
	return sheet{
		name:    "Distributions",
		headers: distributionHeaders,
		rows:    rows,
		widths:  map[string]float64{"B": 30, "E": 18, "I": 18},
	}
}

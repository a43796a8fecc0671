package controllers

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/services"
	"rep-admin/pkg/api"
	"rep-admin/pkg/utils"
)

const auditExportLimit = 100000

type AuditController struct {
	auditService services.AuditServiceInterface
	logger       *zap.Logger
}

func NewAuditController(auditService services.AuditServiceInterface, logger *zap.Logger) *AuditController {
	return &AuditController{auditService: auditService, logger: logger}
}

func (c *AuditController) parseFilter(ctx echo.Context) entities.AuditFilter {
	filter := entities.AuditFilter{Filter: utils.ParseFilterFromQuery(ctx.Request().URL.Query())}

	if df := ctx.QueryParam("date_from"); df != "" {
		if t, err := time.Parse(time.RFC3339, df); err == nil {
			filter.DateFrom = &t
		}
	}
	if dt := ctx.QueryParam("date_to"); dt != "" {
		if t, err := time.Parse(time.RFC3339, dt); err == nil {
			filter.DateTo = &t
		}
	}

	if wantsXLSX(ctx) {
		// Выгружаем все записи
		filter.Limit = auditExportLimit
		filter.Offset = 0
		filter.Page = 1
	}
	return filter
}

func (c *AuditController) GetAuditLog(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := c.parseFilter(ctx)
	c.logger.Debug("Запрос журнала изменений", zap.Any("filter", filter))

	entries, total, err := c.auditService.List(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if wantsXLSX(ctx) {
		return respondWithXLSX(ctx, "audit_log", auditSheet(entries))
	}
	return api.SuccessList(ctx, "", entries, total, filter.Page, filter.Limit)
}

var auditHeaders = []string{"ID", "Date", "Operator", "Action", "Target", "Target ID", "Rep ID", "Outcome", "Message", "Request ID"}

func auditSheet(entries []entities.AuditEntry) sheet {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.ID, formatTime(e.CreatedAt), e.OperatorEmail, e.Action, e.TargetType,
			e.TargetID, e.RepID, e.Outcome, e.Message, e.RequestID,
		})
	}
	return sheet{
		name:    "Audit log",
		headers: auditHeaders,
		rows:    rows,
		widths:  map[string]float64{"B": 18, "C": 28, "D": 22, "I": 50, "J": 38},
	}
}

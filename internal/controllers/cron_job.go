package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/services"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/utils"
)

const HeaderConfirmToken = "X-Confirm-Token"

type CronJobController struct {
	cronJobService services.CronJobServiceInterface
	logger         *zap.Logger
}

func NewCronJobController(cronJobService services.CronJobServiceInterface, logger *zap.Logger) *CronJobController {
	return &CronJobController{cronJobService: cronJobService, logger: logger}
}

func parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewBadRequestError("Invalid id.")
	}
	return id, nil
}

// confirmToken - токен подтверждения из query или заголовка.
func confirmToken(ctx echo.Context) string {
	if token := ctx.QueryParam("confirm_token"); token != "" {
		return token
	}
	return ctx.Request().Header.Get(HeaderConfirmToken)
}

func (c *CronJobController) GetCronJobs(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if wantsXLSX(ctx) {
		jobs, err := c.cronJobService.Export(reqCtx)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return respondWithXLSX(ctx, "cron_jobs", cronJobSheet(jobs))
	}

	jobs, err := c.cronJobService.List(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, jobs, "", http.StatusOK)
}

func (c *CronJobController) bindForm(ctx echo.Context) (dto.CronJobFormDTO, error) {
	var form dto.CronJobFormDTO
	if err := ctx.Bind(&form); err != nil {
		c.logger.Error("CronJob: ошибка привязки данных", zap.Error(err))
		return form, apperrors.NewBadRequestError("Invalid request body.")
	}
	if err := ctx.Validate(&form); err != nil {
		return form, err
	}
	return form, nil
}

func (c *CronJobController) CreateCronJob(ctx echo.Context) error {
	form, err := c.bindForm(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	job, err := c.cronJobService.Create(ctx.Request().Context(), form)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, job, "Cron job created.", http.StatusCreated)
}

func (c *CronJobController) UpdateCronJob(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	form, err := c.bindForm(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	job, err := c.cronJobService.Update(ctx.Request().Context(), id, form)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, job, "Cron job updated.", http.StatusOK)
}

func (c *CronJobController) ApplyAction(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	result, err := c.cronJobService.Apply(ctx.Request().Context(), id, ctx.Param("action"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, result.Message, http.StatusOK)
}

func (c *CronJobController) RequestDelete(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	confirmation, err := c.cronJobService.RequestDelete(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, confirmation, "Confirm deletion.", http.StatusOK)
}

func (c *CronJobController) DeleteCronJob(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	result, err := c.cronJobService.Delete(ctx.Request().Context(), id, confirmToken(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, result.Message, http.StatusOK)
}

var cronJobHeaders = []string{"ID", "Name", "Schedule", "Type", "Template", "Status", "Last run", "Next run", "Description"}

func cronJobSheet(jobs []entities.CronJob) sheet {
	rows := make([][]interface{}, 0, len(jobs))
	for _, job := range jobs {
		template := ""
		if job.TemplateID.Valid {
			template = strconv.Itoa(job.TemplateID.Int)
		}
		rows = append(rows, []interface{}{
			job.ID, job.Name, job.Schedule, job.JobType, template, job.Status,
			formatTime(job.LastRunAt.Time), formatTime(job.NextRunAt.Time), job.Description,
		})
	}
	return sheet{
		name:    "Cron jobs",
		headers: cronJobHeaders,
		rows:    rows,
		widths:  map[string]float64{"B": 30, "C": 18, "I": 50},
	}
}

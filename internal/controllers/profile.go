package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/services"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/utils"
)

type ProfileController struct {
	profileService services.ProfileServiceInterface
	logger         *zap.Logger
}

func NewProfileController(profileService services.ProfileServiceInterface, logger *zap.Logger) *ProfileController {
	return &ProfileController{profileService: profileService, logger: logger}
}

func (c *ProfileController) errorResponse(ctx echo.Context, err error) error {
	return utils.ErrorResponse(ctx, err, c.logger)
}

// repID - представитель из пути, а для маршрутов /me - из сессии оператора.
func repID(ctx echo.Context) string {
	if id := ctx.Param("rep_id"); id != "" {
		return id
	}
	if session, err := utils.GetSessionFromCtx(ctx.Request().Context()); err == nil {
		return session.RepID
	}
	return ""
}

func kindParam(ctx echo.Context, name string) (entities.Kind, error) {
	kind, ok := entities.ParseKind(ctx.Param(name))
	if !ok {
		return "", apperrors.ErrUnknownResource
	}
	return kind, nil
}

func readPatch(ctx echo.Context) (json.RawMessage, error) {
	var patch json.RawMessage
	if err := json.NewDecoder(ctx.Request().Body).Decode(&patch); err != nil {
		return nil, apperrors.NewBadRequestError("Request body must be a JSON object.")
	}
	return patch, nil
}

func (c *ProfileController) GetProfile(ctx echo.Context) error {
	view, err := c.profileService.View(ctx.Request().Context(), repID(ctx))
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, view, "", http.StatusOK)
}

// cardAction - общий каркас для операций над одной карточкой.
func (c *ProfileController) cardAction(ctx echo.Context, fn func(kind entities.Kind) (*dto.CardDTO, error)) error {
	kind, err := kindParam(ctx, "card")
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	card, err := fn(kind)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, card, "", http.StatusOK)
}

func (c *ProfileController) BeginEdit(ctx echo.Context) error {
	return c.cardAction(ctx, func(kind entities.Kind) (*dto.CardDTO, error) {
		return c.profileService.BeginEdit(ctx.Request().Context(), repID(ctx), kind)
	})
}

func (c *ProfileController) ApplyDraft(ctx echo.Context) error {
	patch, err := readPatch(ctx)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return c.cardAction(ctx, func(kind entities.Kind) (*dto.CardDTO, error) {
		return c.profileService.ApplyDraft(ctx.Request().Context(), repID(ctx), kind, patch)
	})
}

func (c *ProfileController) SelectAll(ctx echo.Context) error {
	var payload dto.SelectAllDTO
	if err := json.NewDecoder(ctx.Request().Body).Decode(&payload); err != nil {
		return c.errorResponse(ctx, apperrors.NewBadRequestError("Request body must be a JSON object."))
	}
	card, err := c.profileService.SelectAll(ctx.Request().Context(), repID(ctx), payload.Active)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, card, "", http.StatusOK)
}

func (c *ProfileController) AttachFile(ctx echo.Context) error {
	upload, src, err := readUpload(ctx)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	defer src.Close()

	return c.cardAction(ctx, func(kind entities.Kind) (*dto.CardDTO, error) {
		return c.profileService.AttachFile(ctx.Request().Context(), repID(ctx), kind, ctx.Param("field"), upload)
	})
}

func (c *ProfileController) ClearFile(ctx echo.Context) error {
	return c.cardAction(ctx, func(kind entities.Kind) (*dto.CardDTO, error) {
		return c.profileService.ClearFile(ctx.Request().Context(), repID(ctx), kind, ctx.Param("field"))
	})
}

func (c *ProfileController) Cancel(ctx echo.Context) error {
	return c.cardAction(ctx, func(kind entities.Kind) (*dto.CardDTO, error) {
		return c.profileService.Cancel(ctx.Request().Context(), repID(ctx), kind)
	})
}

func (c *ProfileController) Submit(ctx echo.Context) error {
	return c.cardAction(ctx, func(kind entities.Kind) (*dto.CardDTO, error) {
		return c.profileService.Submit(ctx.Request().Context(), repID(ctx), kind)
	})
}

func (c *ProfileController) profileAction(ctx echo.Context, fn func() (*dto.ProfileViewDTO, error)) error {
	view, err := fn()
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, view, "", http.StatusOK)
}

func (c *ProfileController) BeginProfileEdit(ctx echo.Context) error {
	return c.profileAction(ctx, func() (*dto.ProfileViewDTO, error) {
		return c.profileService.BeginProfileEdit(ctx.Request().Context(), repID(ctx))
	})
}

func (c *ProfileController) ApplyProfileDraft(ctx echo.Context) error {
	patch, err := readPatch(ctx)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return c.profileAction(ctx, func() (*dto.ProfileViewDTO, error) {
		return c.profileService.ApplyProfileDraft(ctx.Request().Context(), repID(ctx), patch)
	})
}

func (c *ProfileController) AttachProfileFile(ctx echo.Context) error {
	upload, src, err := readUpload(ctx)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	defer src.Close()

	return c.profileAction(ctx, func() (*dto.ProfileViewDTO, error) {
		return c.profileService.AttachProfileFile(ctx.Request().Context(), repID(ctx), ctx.Param("field"), upload)
	})
}

func (c *ProfileController) ClearProfileFile(ctx echo.Context) error {
	return c.profileAction(ctx, func() (*dto.ProfileViewDTO, error) {
		return c.profileService.ClearProfileFile(ctx.Request().Context(), repID(ctx), ctx.Param("field"))
	})
}

func (c *ProfileController) CancelProfileEdit(ctx echo.Context) error {
	return c.profileAction(ctx, func() (*dto.ProfileViewDTO, error) {
		return c.profileService.CancelProfileEdit(ctx.Request().Context(), repID(ctx))
	})
}

func (c *ProfileController) SubmitProfile(ctx echo.Context) error {
	return c.profileAction(ctx, func() (*dto.ProfileViewDTO, error) {
		return c.profileService.SubmitProfile(ctx.Request().Context(), repID(ctx))
	})
}

// GetResource и UpdateResource - работа с под-ресурсом без режима редактирования.
func (c *ProfileController) GetResource(ctx echo.Context) error {
	kind, err := kindParam(ctx, "resource")
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	card, err := c.profileService.GetResource(ctx.Request().Context(), repID(ctx), kind)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, card, "", http.StatusOK)
}

func (c *ProfileController) UpdateResource(ctx echo.Context) error {
	kind, err := kindParam(ctx, "resource")
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	patch, err := readPatch(ctx)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	card, err := c.profileService.UpdateResource(ctx.Request().Context(), repID(ctx), kind, patch)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, card, "Changes saved", http.StatusOK)
}

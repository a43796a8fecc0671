package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rep-admin/config"
	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/forms"
	"rep-admin/internal/integrations"
	"rep-admin/internal/repositories"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/filestorage"
	"rep-admin/pkg/types"
	"rep-admin/pkg/utils"
	"rep-admin/pkg/validation"
)

const (
	loadFailedMessage = "Failed to load data."
	saveFailedMessage = "Failed to save changes."
)

type ProfileServiceInterface interface {
	View(ctx context.Context, repID string) (*dto.ProfileViewDTO, error)

	BeginEdit(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error)
	ApplyDraft(ctx context.Context, repID string, kind entities.Kind, patch json.RawMessage) (*dto.CardDTO, error)
	SelectAll(ctx context.Context, repID string, active bool) (*dto.CardDTO, error)
	AttachFile(ctx context.Context, repID string, kind entities.Kind, field string, upload dto.UploadDTO) (*dto.CardDTO, error)
	ClearFile(ctx context.Context, repID string, kind entities.Kind, field string) (*dto.CardDTO, error)
	Cancel(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error)
	Submit(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error)

	BeginProfileEdit(ctx context.Context, repID string) (*dto.ProfileViewDTO, error)
	ApplyProfileDraft(ctx context.Context, repID string, patch json.RawMessage) (*dto.ProfileViewDTO, error)
	AttachProfileFile(ctx context.Context, repID string, field string, upload dto.UploadDTO) (*dto.ProfileViewDTO, error)
	ClearProfileFile(ctx context.Context, repID string, field string) (*dto.ProfileViewDTO, error)
	CancelProfileEdit(ctx context.Context, repID string) (*dto.ProfileViewDTO, error)
	SubmitProfile(ctx context.Context, repID string) (*dto.ProfileViewDTO, error)

	GetResource(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error)
	UpdateResource(ctx context.Context, repID string, kind entities.Kind, patch json.RawMessage) (*dto.CardDTO, error)
}

type ProfileService struct {
	*BaseService
	backend    integrations.Backend
	queries    repositories.QueryCacheInterface
	workspaces repositories.WorkspaceRepositoryInterface
	guard      repositories.ActionGuardInterface
	storage    filestorage.FileStorageInterface
	validator  forms.Validator
	logger     *zap.Logger

	// locks сериализуют чтение-изменение-запись workspace внутри процесса.
	// Набор фиксированный: workspace попадает в полосу по хешу ключа.
	locks [workspaceLockStripes]sync.Mutex
}

func NewProfileService(
	base *BaseService,
	backend integrations.Backend,
	queries repositories.QueryCacheInterface,
	workspaces repositories.WorkspaceRepositoryInterface,
	guard repositories.ActionGuardInterface,
	storage filestorage.FileStorageInterface,
	validator forms.Validator,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		BaseService: base,
		backend:     backend,
		queries:     queries,
		workspaces:  workspaces,
		guard:       guard,
		storage:     storage,
		validator:   validator,
		logger:      logger.Named("profile_service"),
	}
}

// target - над чем работает операция: карточка или общий режим редактирования.
type target struct {
	kind    entities.Kind
	profile bool
}

func cardTarget(kind entities.Kind) target { return target{kind: kind} }

var profileTarget = target{kind: entities.KindPersonal, profile: true}

func (t target) state(ws *forms.Workspace) *forms.State {
	if t.profile {
		return ws.Profile
	}
	return ws.Card(t.kind)
}

func (t target) check(ws *forms.Workspace) error {
	if t.profile {
		if !ws.ProfileMode() {
			return apperrors.ErrCardNotEditing
		}
		return nil
	}
	if ws.ProfileMode() {
		return apperrors.ErrProfileLocked
	}
	return nil
}

func (t target) scope(sessionID, repID string) string {
	if t.profile {
		return fmt.Sprintf("submit:%s:%s:profile", sessionID, repID)
	}
	return fmt.Sprintf("submit:%s:%s:%s", sessionID, repID, t.kind)
}

func (s *ProfileService) operator(ctx context.Context, repID string) (*types.Session, error) {
	session, err := utils.GetSessionFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if repID == "" {
		return nil, apperrors.ErrUnidentifiedUser
	}
	return session, nil
}

const workspaceLockStripes = 64

func (s *ProfileService) workspaceLock(sessionID, repID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID + ":" + repID))
	return &s.locks[h.Sum32()%workspaceLockStripes]
}

func (s *ProfileService) lockWorkspace(sessionID, repID string) func() {
	mu := s.workspaceLock(sessionID, repID)
	mu.Lock()
	return mu.Unlock
}

// update загружает workspace, применяет fn и сохраняет результат даже при ошибке fn:
// ошибки полей должны остаться видны в карточке.
func (s *ProfileService) update(ctx context.Context, session *types.Session, repID string, fn func(ws *forms.Workspace) error) (*forms.Workspace, error) {
	unlock := s.lockWorkspace(session.ID, repID)
	defer unlock()

	ws, err := s.workspaces.Load(ctx, session.ID, repID)
	if err != nil {
		return nil, err
	}
	fnErr := fn(ws)
	if err := s.workspaces.Save(ctx, ws); err != nil {
		s.logger.Error("Не удалось сохранить workspace", zap.String("repID", repID), zap.Error(err))
		return nil, err
	}
	return ws, fnErr
}

func (s *ProfileService) editor(kind entities.Kind, st *forms.State) (*forms.Editor, error) {
	def, ok := forms.Lookup(kind)
	if !ok {
		return nil, apperrors.ErrUnknownResource
	}
	return forms.NewEditor(def, st, s.validator), nil
}

func (s *ProfileService) fetchCard(ctx context.Context, kind entities.Kind, repID string) (json.RawMessage, error) {
	return s.queries.Fetch(ctx, repositories.ResourceQueryKey(kind, repID), func(ctx context.Context) (json.RawMessage, error) {
		return s.backend.FetchResource(ctx, kind, repID)
	})
}

func (s *ProfileService) loadInto(ed *forms.Editor, raw json.RawMessage, fetchErr error) {
	if fetchErr != nil {
		ed.Fail(errors.New(integrations.UserMessage(fetchErr, loadFailedMessage)))
		return
	}
	if err := ed.Load(raw); err != nil {
		s.logger.Warn("Ответ бэкенда не разобран", zap.String("kind", string(ed.State().Kind)), zap.Error(err))
		ed.Fail(errors.New(loadFailedMessage))
	}
}

type fetchResult struct {
	raw json.RawMessage
	err error
}

// View загружает все карточки параллельно. Ошибка одной карточки не мешает остальным.
func (s *ProfileService) View(ctx context.Context, repID string) (*dto.ProfileViewDTO, error) {
	session, err := s.operator(ctx, repID)
	if err != nil {
		return nil, err
	}

	results := make([]fetchResult, len(entities.ProfileKinds))
	g := new(errgroup.Group)
	g.SetLimit(len(entities.ProfileKinds))
	for i, kind := range entities.ProfileKinds {
		g.Go(func() error {
			raw, err := s.fetchCard(ctx, kind, repID)
			results[i] = fetchResult{raw: raw, err: err}
			return nil
		})
	}
	_ = g.Wait()

	ws, err := s.update(ctx, session, repID, func(ws *forms.Workspace) error {
		for i, kind := range entities.ProfileKinds {
			ed, err := s.editor(kind, ws.Card(kind))
			if err != nil {
				return err
			}
			if results[i].err != nil {
				s.logger.Warn("Карточка не загружена",
					zap.String("repID", repID),
					zap.String("kind", string(kind)),
					zap.Error(results[i].err),
				)
			}
			s.loadInto(ed, results[i].raw, results[i].err)

			if kind == entities.KindPersonal && ws.ProfileMode() {
				pe, _ := s.editor(kind, ws.Profile)
				s.loadInto(pe, results[i].raw, results[i].err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.viewDTO(ws), nil
}

func (s *ProfileService) viewDTO(ws *forms.Workspace) *dto.ProfileViewDTO {
	view := &dto.ProfileViewDTO{
		RepID:      ws.RepID,
		Monolithic: ws.ProfileMode(),
		Cards:      make([]dto.CardDTO, 0, len(entities.ProfileKinds)),
	}
	for _, kind := range entities.ProfileKinds {
		view.Cards = append(view.Cards, s.cardDTO(ws.Card(kind), ws.ProfileMode()))
	}
	if ws.ProfileMode() {
		ed, _ := s.editor(entities.KindPersonal, ws.Profile)
		view.ProfileEdit = &dto.ProfileEditDTO{
			Submitting:  ws.Profile.Submitting,
			Data:        ed.Display(),
			Files:       ed.Files(),
			FieldErrors: ws.Profile.FieldErrors,
		}
	}
	return view
}

func (s *ProfileService) cardDTO(st *forms.State, locked bool) dto.CardDTO {
	ed, _ := s.editor(st.Kind, st)
	card := dto.CardDTO{
		Kind:        st.Kind,
		Message:     st.LoadError,
		Editing:     st.Editing,
		Submitting:  st.Submitting,
		CanEdit:     ed.HasData() && !locked && !st.Editing,
		Data:        ed.Display(),
		Files:       ed.Files(),
		FieldErrors: st.FieldErrors,
	}
	switch {
	case !st.Loaded && st.LoadError == "":
		card.Status = dto.CardStatusLoading
	case st.LoadError != "" && !ed.HasData():
		card.Status = dto.CardStatusError
	case !ed.HasData():
		card.Status = dto.CardStatusNoData
	default:
		card.Status = dto.CardStatusReady
	}
	return card
}

// withCard выполняет операцию над редактором карточки и возвращает её новое состояние.
func (s *ProfileService) withCard(ctx context.Context, repID string, kind entities.Kind, fn func(ed *forms.Editor) error) (*dto.CardDTO, error) {
	session, err := s.operator(ctx, repID)
	if err != nil {
		return nil, err
	}
	if _, ok := forms.Lookup(kind); !ok {
		return nil, apperrors.ErrUnknownResource
	}

	t := cardTarget(kind)
	ws, err := s.update(ctx, session, repID, func(ws *forms.Workspace) error {
		if err := t.check(ws); err != nil {
			return err
		}
		ed, err := s.editor(kind, t.state(ws))
		if err != nil {
			return err
		}
		return fn(ed)
	})
	if ws == nil {
		return nil, err
	}
	card := s.cardDTO(ws.Card(kind), ws.ProfileMode())
	return &card, err
}

func (s *ProfileService) withProfile(ctx context.Context, repID string, fn func(ed *forms.Editor) error) (*dto.ProfileViewDTO, error) {
	session, err := s.operator(ctx, repID)
	if err != nil {
		return nil, err
	}

	ws, err := s.update(ctx, session, repID, func(ws *forms.Workspace) error {
		if err := profileTarget.check(ws); err != nil {
			return err
		}
		ed, err := s.editor(entities.KindPersonal, ws.Profile)
		if err != nil {
			return err
		}
		return fn(ed)
	})
	if ws == nil {
		return nil, err
	}
	return s.viewDTO(ws), err
}

// BeginEdit перечитывает карточку и открывает её на редактирование.
func (s *ProfileService) BeginEdit(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error) {
	if _, err := s.operator(ctx, repID); err != nil {
		return nil, err
	}
	raw, fetchErr := s.fetchCard(ctx, kind, repID)

	return s.withCard(ctx, repID, kind, func(ed *forms.Editor) error {
		if ed.State().Editing {
			return nil
		}
		s.loadInto(ed, raw, fetchErr)
		return ed.BeginEdit()
	})
}

func (s *ProfileService) ApplyDraft(ctx context.Context, repID string, kind entities.Kind, patch json.RawMessage) (*dto.CardDTO, error) {
	return s.withCard(ctx, repID, kind, func(ed *forms.Editor) error {
		return ed.Apply(patch)
	})
}

// SelectAll - переключатель "включить/выключить все" в настройках писем.
// Сам переключатель на бэкенд не уходит, меняются только поля поводов.
func (s *ProfileService) SelectAll(ctx context.Context, repID string, active bool) (*dto.CardDTO, error) {
	return s.withCard(ctx, repID, entities.KindEmailSettings, func(ed *forms.Editor) error {
		return ed.SetAll(active)
	})
}

// stageUpload проверяет файл и кладёт его во временное хранилище для превью.
func (s *ProfileService) stageUpload(kind entities.Kind, field string, upload dto.UploadDTO) (forms.FileRef, error) {
	def, ok := forms.Lookup(kind)
	if !ok {
		return forms.FileRef{}, apperrors.ErrUnknownResource
	}
	if !def.IsFileField(field) {
		return forms.FileRef{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownField, field)
	}
	if err := validation.ValidateFile(upload.Size, upload.File, field); err != nil {
		return forms.FileRef{}, apperrors.NewClientValidationError(apperrors.FieldErrors{field: {err.Error()}})
	}

	path, err := s.storage.Save(upload.File, upload.FileName, config.UploadContexts[field].PathPrefix)
	if err != nil {
		return forms.FileRef{}, fmt.Errorf("не удалось сохранить файл: %w", err)
	}
	return forms.FileRef{
		Handle:     uuid.NewString(),
		Path:       path,
		FileName:   upload.FileName,
		PreviewURL: filestorage.PublicPrefix + path,
	}, nil
}

func (s *ProfileService) attach(ed *forms.Editor, field string, ref forms.FileRef) error {
	superseded, err := ed.AttachFile(field, ref)
	if err != nil {
		s.ReleaseFiles([]forms.FileRef{ref})
		return err
	}
	if superseded != nil {
		s.ReleaseFiles([]forms.FileRef{*superseded})
	}
	return nil
}

func (s *ProfileService) clear(ed *forms.Editor, field string) error {
	old, err := ed.ClearFile(field)
	if err != nil {
		return err
	}
	if old != nil {
		s.ReleaseFiles([]forms.FileRef{*old})
	}
	return nil
}

func (s *ProfileService) AttachFile(ctx context.Context, repID string, kind entities.Kind, field string, upload dto.UploadDTO) (*dto.CardDTO, error) {
	if _, err := s.operator(ctx, repID); err != nil {
		return nil, err
	}
	ref, err := s.stageUpload(kind, field, upload)
	if err != nil {
		return nil, err
	}
	card, err := s.withCard(ctx, repID, kind, func(ed *forms.Editor) error {
		return s.attach(ed, field, ref)
	})
	if card == nil && err != nil {
		s.ReleaseFiles([]forms.FileRef{ref})
	}
	return card, err
}

func (s *ProfileService) ClearFile(ctx context.Context, repID string, kind entities.Kind, field string) (*dto.CardDTO, error) {
	return s.withCard(ctx, repID, kind, func(ed *forms.Editor) error {
		return s.clear(ed, field)
	})
}

// Cancel возвращает карточку к последнему полученному значению.
func (s *ProfileService) Cancel(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error) {
	var released []forms.FileRef
	card, err := s.withCard(ctx, repID, kind, func(ed *forms.Editor) error {
		released = ed.Cancel()
		return nil
	})
	s.ReleaseFiles(released)
	return card, err
}

// submit отправляет черновик цели t. Workspace не держится заблокированным во время
// запроса к бэкенду: состояние перечитывается перед фиксацией результата.
func (s *ProfileService) submit(ctx context.Context, repID string, t target) (*forms.Workspace, error) {
	session, err := s.operator(ctx, repID)
	if err != nil {
		return nil, err
	}

	entry := entities.AuditEntry{Action: "card.submit", TargetType: string(t.kind), TargetID: repID, RepID: repID}
	if t.profile {
		entry.Action = "profile.submit"
	}

	release, err := s.guard.Acquire(ctx, t.scope(session.ID, repID))
	if err != nil {
		return nil, err
	}
	defer release()

	var payload dto.Payload
	ws, err := s.update(ctx, session, repID, func(ws *forms.Workspace) error {
		if err := t.check(ws); err != nil {
			return err
		}
		ed, err := s.editor(t.kind, t.state(ws))
		if err != nil {
			return err
		}
		// блокировка отправки у нас: флаг отправки мог остаться от прерванной попытки
		ed.ResetSubmitting()
		payload, err = ed.Prepare()
		return err
	})
	if err != nil {
		s.Audit(ctx, entry, err)
		return ws, err
	}

	payload.BindFiles(s.storage.Open)
	_, upErr := s.backend.UpdateResource(ctx, t.kind, repID, payload)
	submitErr := integrations.ToAppError(upErr, saveFailedMessage)
	if upErr != nil {
		s.logger.Warn("Бэкенд отклонил изменения",
			zap.String("repID", repID),
			zap.String("kind", string(t.kind)),
			zap.Error(upErr),
		)
	}

	var raw json.RawMessage
	var fetchErr error
	if submitErr == nil {
		if err := s.queries.Invalidate(ctx, repositories.ResourceQueryKey(t.kind, repID)); err != nil {
			s.logger.Error("Не удалось сбросить кеш карточки", zap.String("kind", string(t.kind)), zap.Error(err))
		}
		raw, fetchErr = s.fetchCard(ctx, t.kind, repID)
	}

	var released []forms.FileRef
	ws, err = s.update(ctx, session, repID, func(ws *forms.Workspace) error {
		st := t.state(ws)
		if st == nil {
			// Общий режим успели отменить, пока шёл запрос.
			return nil
		}
		ed, err := s.editor(t.kind, st)
		if err != nil {
			return err
		}
		released = ed.Complete(submitErr)
		if submitErr != nil {
			return nil
		}
		s.loadInto(ed, raw, fetchErr)
		if t.profile {
			ws.Profile = nil
			card, _ := s.editor(t.kind, ws.Card(t.kind))
			s.loadInto(card, raw, fetchErr)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Не удалось зафиксировать результат отправки", zap.String("repID", repID), zap.String("kind", string(t.kind)), zap.Error(err))
		s.abandonSubmit(ctx, session, repID, t)
	}
	s.ReleaseFiles(released)
	s.Audit(ctx, entry, submitErr)

	if err != nil {
		return ws, err
	}
	return ws, submitErr
}

// abandonSubmit снимает флаг отправки, если результат не удалось сохранить.
func (s *ProfileService) abandonSubmit(ctx context.Context, session *types.Session, repID string, t target) {
	_, err := s.update(context.WithoutCancel(ctx), session, repID, func(ws *forms.Workspace) error {
		if st := t.state(ws); st != nil {
			st.Submitting = false
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Флаг отправки останется до следующей попытки", zap.String("repID", repID), zap.Error(err))
	}
}

func (s *ProfileService) Submit(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error) {
	if _, ok := forms.Lookup(kind); !ok {
		return nil, apperrors.ErrUnknownResource
	}
	ws, err := s.submit(ctx, repID, cardTarget(kind))
	if ws == nil {
		return nil, err
	}
	card := s.cardDTO(ws.Card(kind), ws.ProfileMode())
	return &card, err
}

// BeginProfileEdit включает общий режим редактирования: открытые карточки закрываются.
func (s *ProfileService) BeginProfileEdit(ctx context.Context, repID string) (*dto.ProfileViewDTO, error) {
	session, err := s.operator(ctx, repID)
	if err != nil {
		return nil, err
	}
	raw, fetchErr := s.fetchCard(ctx, entities.KindPersonal, repID)

	var released []forms.FileRef
	ws, err := s.update(ctx, session, repID, func(ws *forms.Workspace) error {
		if ws.ProfileMode() {
			return nil
		}
		st := &forms.State{Kind: entities.KindPersonal}
		ed, err := s.editor(entities.KindPersonal, st)
		if err != nil {
			return err
		}
		s.loadInto(ed, raw, fetchErr)
		if err := ed.BeginEdit(); err != nil {
			return err
		}

		card, _ := s.editor(entities.KindPersonal, ws.Card(entities.KindPersonal))
		s.loadInto(card, raw, fetchErr)

		released = ws.CancelCards()
		ws.Profile = st
		return nil
	})
	s.ReleaseFiles(released)
	if ws == nil {
		return nil, err
	}
	return s.viewDTO(ws), err
}

func (s *ProfileService) ApplyProfileDraft(ctx context.Context, repID string, patch json.RawMessage) (*dto.ProfileViewDTO, error) {
	return s.withProfile(ctx, repID, func(ed *forms.Editor) error {
		return ed.Apply(patch)
	})
}

func (s *ProfileService) AttachProfileFile(ctx context.Context, repID string, field string, upload dto.UploadDTO) (*dto.ProfileViewDTO, error) {
	if _, err := s.operator(ctx, repID); err != nil {
		return nil, err
	}
	ref, err := s.stageUpload(entities.KindPersonal, field, upload)
	if err != nil {
		return nil, err
	}
	view, err := s.withProfile(ctx, repID, func(ed *forms.Editor) error {
		return s.attach(ed, field, ref)
	})
	if view == nil && err != nil {
		s.ReleaseFiles([]forms.FileRef{ref})
	}
	return view, err
}

func (s *ProfileService) ClearProfileFile(ctx context.Context, repID string, field string) (*dto.ProfileViewDTO, error) {
	return s.withProfile(ctx, repID, func(ed *forms.Editor) error {
		return s.clear(ed, field)
	})
}

func (s *ProfileService) CancelProfileEdit(ctx context.Context, repID string) (*dto.ProfileViewDTO, error) {
	session, err := s.operator(ctx, repID)
	if err != nil {
		return nil, err
	}
	var released []forms.FileRef
	ws, err := s.update(ctx, session, repID, func(ws *forms.Workspace) error {
		if !ws.ProfileMode() {
			return nil
		}
		ed, err := s.editor(entities.KindPersonal, ws.Profile)
		if err != nil {
			return err
		}
		released = ed.Cancel()
		ws.Profile = nil
		return nil
	})
	s.ReleaseFiles(released)
	if ws == nil {
		return nil, err
	}
	return s.viewDTO(ws), err
}

func (s *ProfileService) SubmitProfile(ctx context.Context, repID string) (*dto.ProfileViewDTO, error) {
	ws, err := s.submit(ctx, repID, profileTarget)
	if ws == nil {
		return nil, err
	}
	return s.viewDTO(ws), err
}

// GetResource - чтение под-ресурса без workspace.
func (s *ProfileService) GetResource(ctx context.Context, repID string, kind entities.Kind) (*dto.CardDTO, error) {
	if _, err := s.operator(ctx, repID); err != nil {
		return nil, err
	}
	st := &forms.State{Kind: kind}
	ed, err := s.editor(kind, st)
	if err != nil {
		return nil, err
	}

	raw, err := s.fetchCard(ctx, kind, repID)
	if err != nil {
		return nil, integrations.ToAppError(err, loadFailedMessage)
	}
	s.loadInto(ed, raw, nil)

	card := s.cardDTO(st, false)
	card.CanEdit = true
	return &card, nil
}

// UpdateResource - правка под-ресурса одним запросом: черновик строится на свежем
// значении (или умолчаниях, если записи нет), затем те же проверки и тело запроса,
// что и у карточки.
func (s *ProfileService) UpdateResource(ctx context.Context, repID string, kind entities.Kind, patch json.RawMessage) (*dto.CardDTO, error) {
	session, err := s.operator(ctx, repID)
	if err != nil {
		return nil, err
	}
	st := &forms.State{Kind: kind}
	ed, err := s.editor(kind, st)
	if err != nil {
		return nil, err
	}

	entry := entities.AuditEntry{Action: "resource.update", TargetType: string(kind), TargetID: repID, RepID: repID}

	release, err := s.guard.Acquire(ctx, cardTarget(kind).scope(session.ID, repID))
	if err != nil {
		return nil, err
	}
	defer release()

	raw, err := s.fetchCard(ctx, kind, repID)
	if err != nil {
		return nil, integrations.ToAppError(err, loadFailedMessage)
	}
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	if err := ed.Load(raw); err != nil {
		return nil, integrations.ToAppError(err, loadFailedMessage)
	}
	if err := ed.BeginEdit(); err != nil {
		return nil, err
	}
	if err := ed.Apply(patch); err != nil {
		return nil, err
	}

	// без staged-файлов: освобождать нечего
	_, submitErr := ed.Submit(ctx, func(ctx context.Context, payload dto.Payload) error {
		_, upErr := s.backend.UpdateResource(ctx, kind, repID, payload)
		return integrations.ToAppError(upErr, saveFailedMessage)
	})
	s.Audit(ctx, entry, submitErr)
	if submitErr != nil {
		return nil, submitErr
	}

	if err := s.queries.Invalidate(ctx, repositories.ResourceQueryKey(kind, repID)); err != nil {
		s.logger.Error("Не удалось сбросить кеш карточки", zap.String("kind", string(kind)), zap.Error(err))
	}
	fresh, fetchErr := s.fetchCard(ctx, kind, repID)
	s.loadInto(ed, fresh, fetchErr)

	card := s.cardDTO(st, false)
	return &card, nil
}

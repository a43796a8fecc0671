// Файл: internal/routes/main_router_test.go
package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/integrations/mock"
	"rep-admin/internal/listeners"
	"rep-admin/internal/repositories"
	"rep-admin/internal/services"
	"rep-admin/pkg/config"
	"rep-admin/pkg/customvalidator"
	"rep-admin/pkg/eventbus"
	"rep-admin/pkg/filestorage"
	"rep-admin/pkg/middleware"
	"rep-admin/pkg/service"
)

// memoryAuditRepo - журнал в памяти вместо Postgres.
type memoryAuditRepo struct {
	mu      sync.Mutex
	entries []entities.AuditEntry
}

func (r *memoryAuditRepo) Create(ctx context.Context, entry entities.AuditEntry) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint64(len(r.entries) + 1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return entry.ID, nil
}

func (r *memoryAuditRepo) List(ctx context.Context, filter entities.AuditFilter) ([]entities.AuditEntry, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.AuditEntry(nil), r.entries...), uint64(len(r.entries)), nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

// RouterTestSuite гоняет HTTP-запросы через весь стек на бэкенде в памяти.
type RouterTestSuite struct {
	suite.Suite
	Echo    *echo.Echo
	Backend *mock.MockProvider
	Bus     *eventbus.Bus
	Token   string
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func (s *RouterTestSuite) SetupTest() {
	nopLogger := zap.NewNop()

	e := echo.New()
	cv, err := customvalidator.New()
	s.Require().NoError(err)
	e.Validator = cv
	e.Use(middleware.RequestID())

	backend := mock.NewMockProvider()
	backend.Users["OP1"] = entities.User{ID: 9, RepID: "OP1", FirstName: "Ann", LastName: "Admin", Email: "ann@example.com", IsStaff: true}
	backend.Credentials["ann@example.com"] = "correct-horse"
	backend.SetResource(entities.KindPersonal, "R1", map[string]interface{}{
		"rep_id": "R1", "first_name": "Jane", "last_name": "Doe", "email": "jane@example.com", "cellphone": "8583695555",
	})
	backend.SetResource(entities.KindSocials, "R1", map[string]interface{}{"facebook": "https://facebook.com/jane"})
	backend.SetResource(entities.KindBranding, "R1", map[string]interface{}{"personal_bio": "Bio"})
	backend.CronJobs = []entities.CronJob{
		{ID: 1, Name: "Birthdays", Schedule: "0 9 * * *", JobType: "BIRTHDAY", Status: entities.JobStatusRunning},
	}
	backend.Distributions[entities.DistributionEcard] = []entities.Distribution{
		{ID: 10, Name: "Spring", Status: entities.DistributionPending},
	}

	storage, err := filestorage.NewLocalFileStorage(s.T().TempDir())
	s.Require().NoError(err)

	bus := eventbus.New(nopLogger)
	auditRepo := &memoryAuditRepo{}
	listeners.NewAuditListener(auditRepo, nopLogger).Register(bus)

	cache := repositories.NewMemoryCacheRepository()
	queries := repositories.NewQueryCache(cache, time.Minute, nopLogger)
	guard := repositories.NewActionGuard(cache, time.Minute, nopLogger)
	confirmations := repositories.NewConfirmationRepository(cache, time.Minute)
	workspaces := repositories.NewWorkspaceRepository(cache, time.Hour, nopLogger)
	sessions := repositories.NewSessionRepository(cache)

	base := services.NewBaseService(bus, storage, nopLogger)
	svc := &Services{
		Auth: services.NewAuthService(base, backend, sessions, workspaces, cache,
			service.NewJWTService("test-secret", time.Hour, nopLogger),
			config.AuthConfig{MaxLoginAttempts: 5, LockoutDuration: time.Minute},
			nopLogger,
		),
		Profile:       services.NewProfileService(base, backend, queries, workspaces, guard, storage, cv, nopLogger),
		CronJobs:      services.NewCronJobService(base, backend, queries, guard, confirmations, nopLogger),
		Distributions: services.NewDistributionService(base, backend, queries, guard, confirmations, nopLogger),
		Users:         services.NewUserService(base, backend, nopLogger),
		Audit:         services.NewAuditService(auditRepo, nopLogger),
	}
	InitRouter(e, svc, NewLoggers(nopLogger))

	s.Echo = e
	s.Backend = backend
	s.Bus = bus

	rec := s.request(http.MethodPost, "/api/auth/login", `{"email": "ann@example.com", "password": "correct-horse"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	s.decode(rec, &auth)
	s.Require().NotEmpty(auth.AccessToken)
	s.Token = auth.AccessToken
}

func (s *RouterTestSuite) send(req *http.Request) *httptest.ResponseRecorder {
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.send(req)
}

// decode разбирает конверт {status, message, body} и кладёт body в out.
func (s *RouterTestSuite) decode(rec *httptest.ResponseRecorder, out interface{}) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if out != nil && len(env.Body) > 0 {
		s.Require().NoError(json.Unmarshal(env.Body, out))
	}
	return env
}

func (s *RouterTestSuite) TestAuthRequired() {
	s.Token = ""
	rec := s.request(http.MethodGet, "/api/reps/R1/profile", "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/api/auth/login", `{"email": "ann@example.com", "password": "nope"}`)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/api/auth/login", `{"email": "not-an-email", "password": "x"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestMeAndLogout() {
	rec := s.request(http.MethodGet, "/api/auth/me", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var me struct {
		RepID string `json:"rep_id"`
	}
	s.decode(rec, &me)
	s.Equal("OP1", me.RepID)

	rec = s.request(http.MethodPost, "/api/auth/logout", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/api/auth/me", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestProfileView() {
	rec := s.request(http.MethodGet, "/api/reps/R1/profile", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var view struct {
		RepID string `json:"rep_id"`
		Cards []struct {
			Kind    string `json:"kind"`
			Status  string `json:"status"`
			CanEdit bool   `json:"can_edit"`
		} `json:"cards"`
	}
	s.decode(rec, &view)
	s.Equal("R1", view.RepID)
	s.Require().Len(view.Cards, len(entities.ProfileKinds))

	statuses := make(map[string]string)
	for _, c := range view.Cards {
		statuses[c.Kind] = c.Status
	}
	s.Equal("ready", statuses["socials"])
	s.Equal("no_data", statuses["account"])

	rec = s.request(http.MethodGet, "/api/me/profile", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &view)
	s.Equal("OP1", view.RepID)
}

func (s *RouterTestSuite) TestCardEditFlow() {
	rec := s.request(http.MethodPost, "/api/reps/R1/cards/socials/edit", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.request(http.MethodPatch, "/api/reps/R1/cards/socials/draft", `{"facebook": "facebook dot com"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.request(http.MethodPost, "/api/reps/R1/cards/socials/submit", "")
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var fieldErrs struct {
		Source      string            `json:"source"`
		FieldErrors map[string]string `json:"field_errors"`
	}
	s.decode(rec, &fieldErrs)
	s.Equal("client", fieldErrs.Source)
	s.Equal("Enter a valid URL.", fieldErrs.FieldErrors["facebook"])
	s.Empty(s.Backend.Calls("UpdateResource"))

	rec = s.request(http.MethodPatch, "/api/reps/R1/cards/socials/draft", `{"facebook": "https://facebook.com/new"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	rec = s.request(http.MethodPost, "/api/reps/R1/cards/socials/submit", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var card struct {
		Editing bool                   `json:"editing"`
		Data    map[string]interface{} `json:"data"`
	}
	s.decode(rec, &card)
	s.False(card.Editing)
	s.Equal("https://facebook.com/new", card.Data["facebook"])
}

func (s *RouterTestSuite) TestCardErrors() {
	rec := s.request(http.MethodPost, "/api/reps/R1/cards/horoscope/edit", "")
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.request(http.MethodPost, "/api/reps/R1/cards/account/edit", "")
	s.Equal(http.StatusConflict, rec.Code, "карточка без данных не редактируется")

	rec = s.request(http.MethodPatch, "/api/reps/R1/cards/socials/draft", `{"facebook": "https://x.io"}`)
	s.Equal(http.StatusConflict, rec.Code, "черновик без режима редактирования")
}

func (s *RouterTestSuite) TestProfileModeLocksCards() {
	rec := s.request(http.MethodPost, "/api/reps/R1/profile/edit", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.request(http.MethodPost, "/api/reps/R1/cards/socials/edit", "")
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.request(http.MethodPost, "/api/reps/R1/profile/cancel", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/api/reps/R1/cards/socials/edit", "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestFileUpload() {
	rec := s.request(http.MethodPost, "/api/reps/R1/cards/branding/edit", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "logo.png")
	s.Require().NoError(err)
	_, err = part.Write(pngHeader)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reps/R1/cards/branding/files/logo", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec = s.send(req)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.request(http.MethodPost, "/api/reps/R1/cards/branding/submit", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	updates := s.Backend.Calls("UpdateResource")
	s.Require().Len(updates, 1)
	s.Equal(pngHeader, updates[0].Uploads["logo"])

	req = httptest.NewRequest(http.MethodPost, "/api/reps/R1/cards/branding/files/logo", nil)
	rec = s.send(req)
	s.Equal(http.StatusBadRequest, rec.Code, "без файла")
}

func (s *RouterTestSuite) TestStatelessResource() {
	rec := s.request(http.MethodPut, "/api/reps/R1/call_to_action", `{"label_1": "Call me", "url_1": "https://example.com"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.request(http.MethodGet, "/api/reps/R1/call_to_action", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var card struct {
		Data map[string]interface{} `json:"data"`
	}
	s.decode(rec, &card)
	s.Equal("Call me", card.Data["label_1"])
}

func (s *RouterTestSuite) TestCronJobLifecycle() {
	rec := s.request(http.MethodGet, "/api/cron-jobs", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var jobs []struct {
		ID      uint64   `json:"id"`
		Actions []string `json:"actions"`
	}
	s.decode(rec, &jobs)
	s.Require().Len(jobs, 1)
	s.Contains(jobs[0].Actions, "stop")

	rec = s.request(http.MethodPost, "/api/cron-jobs/1/start", "")
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.request(http.MethodPost, "/api/cron-jobs/1/stop", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	env := s.decode(rec, nil)
	s.Equal("Job stop requested.", env.Message)

	rec = s.request(http.MethodDelete, "/api/cron-jobs/1", "")
	s.Equal(http.StatusPreconditionRequired, rec.Code)

	rec = s.request(http.MethodPost, "/api/cron-jobs/1/delete-request", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var confirmation struct {
		Token string `json:"confirm_token"`
	}
	s.decode(rec, &confirmation)

	rec = s.request(http.MethodDelete, "/api/cron-jobs/1?confirm_token="+confirmation.Token, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Empty(s.Backend.CronJobs)
}

func (s *RouterTestSuite) TestCronJobCreateValidation() {
	rec := s.request(http.MethodPost, "/api/cron-jobs", `{"name": "", "schedule": "0 0 * * *", "job_type": "BIRTHDAY"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.request(http.MethodPost, "/api/cron-jobs", `{"name": "Holidays", "schedule": "0 0 * * *", "job_type": "HOLIDAY"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var job struct {
		Status string `json:"status"`
	}
	s.decode(rec, &job)
	s.Equal(entities.JobStatusStopped, job.Status)
}

func (s *RouterTestSuite) TestCronJobExport() {
	rec := s.request(http.MethodGet, "/api/cron-jobs?format=xlsx", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	s.Require().NoError(err)
	defer f.Close()

	header, err := f.GetCellValue("Cron jobs", "B1")
	s.Require().NoError(err)
	s.Equal("Name", header)
	name, err := f.GetCellValue("Cron jobs", "B2")
	s.Require().NoError(err)
	s.Equal("Birthdays", name)
}

func (s *RouterTestSuite) TestDistributions() {
	rec := s.request(http.MethodGet, "/api/distributions/sms", "")
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.request(http.MethodPost, "/api/distributions/ecard/10/mark-completed", "")
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.request(http.MethodPost, "/api/distributions/ecard/10/cancel", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("Distribution cancelled.", s.decode(rec, nil).Message)
}

func (s *RouterTestSuite) TestCreateUser() {
	rec := s.request(http.MethodPost, "/api/users", `{"rep_id": "R9", "email": "bob@example.com"}`)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var fieldErrs struct {
		FieldErrors map[string]string `json:"field_errors"`
	}
	s.decode(rec, &fieldErrs)
	s.Equal("This field is required.", fieldErrs.FieldErrors["first_name"])
	s.Empty(s.Backend.Calls("CreateUser"))

	rec = s.request(http.MethodPost, "/api/users", `{"rep_id": "R9", "first_name": "Bob", "last_name": "Stone",
		"email": "bob@example.com", "password": "password1", "cellphone": "(858) 369-5555"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.Equal("8583695555", s.Backend.Users["R9"].Cellphone)
}

func (s *RouterTestSuite) TestAuditLog() {
	rec := s.request(http.MethodPost, "/api/cron-jobs/1/stop", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Bus.Wait()

	rec = s.request(http.MethodGet, "/api/audit-log?limit=10", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		List []entities.AuditEntry `json:"list"`
		Pagination struct {
			TotalCount uint64 `json:"total_count"`
		} `json:"pagination"`
	}
	s.decode(rec, &list)
	s.Require().Len(list.List, 1)
	s.Equal("cron_job.stop", list.List[0].Action)
	s.Equal("ann@example.com", list.List[0].OperatorEmail)
	s.NotEmpty(list.List[0].RequestID, fmt.Sprintf("%+v", list.List[0]))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

package mock

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/integrations"
	integrationDTO "rep-admin/internal/integrations/dto"
	apperrors "rep-admin/pkg/errors"
)

// Call - записанный вызов бэкенда.
type Call struct {
	Method  string
	Kind    entities.Kind
	RepID   string
	ID      uint64
	Action  string
	Payload dto.Payload
	// Uploads - содержимое файлов multipart-запроса по имени поля.
	Uploads map[string][]byte
}

// MockProvider - бэкенд в памяти для тестов и локального запуска без сети.
type MockProvider struct {
	mu sync.Mutex

	Users         map[string]entities.User
	Credentials   map[string]string
	Resources     map[entities.Kind]map[string]json.RawMessage
	CronJobs      []entities.CronJob
	Distributions map[entities.DistributionType][]entities.Distribution

	// Errors - ошибка, которую вернёт метод с таким именем.
	Errors map[string]error
	// ResourceErrors - ошибка чтения конкретного под-ресурса.
	ResourceErrors map[entities.Kind]error
	// Block, если задан, держит UpdateResource до закрытия канала.
	Block chan struct{}

	calls []Call
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Users:          make(map[string]entities.User),
		Credentials:    make(map[string]string),
		Resources:      make(map[entities.Kind]map[string]json.RawMessage),
		Distributions:  make(map[entities.DistributionType][]entities.Distribution),
		Errors:         make(map[string]error),
		ResourceErrors: make(map[entities.Kind]error),
	}
}

var _ integrations.Backend = (*MockProvider)(nil)

func (m *MockProvider) Name() string {
	return "mock"
}

// SetResource кладёт JSON под-ресурса. nil убирает запись.
func (m *MockProvider) SetResource(kind entities.Kind, repID string, body interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Resources[kind] == nil {
		m.Resources[kind] = make(map[string]json.RawMessage)
	}
	if body == nil {
		delete(m.Resources[kind], repID)
		return
	}
	raw, _ := json.Marshal(body)
	m.Resources[kind][repID] = raw
}

func (m *MockProvider) Fail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

func (m *MockProvider) FailResource(kind entities.Kind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResourceErrors[kind] = err
}

func (m *MockProvider) Calls(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, 0)
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockProvider) record(c Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	return m.Errors[c.Method]
}

func (m *MockProvider) Login(ctx context.Context, email, password string) (*integrationDTO.LoginResult, error) {
	if err := m.record(Call{Method: "Login"}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if expected, ok := m.Credentials[email]; !ok || expected != password {
		return nil, apperrors.ErrInvalidCredentials
	}
	for _, u := range m.Users {
		if u.Email == email {
			return &integrationDTO.LoginResult{Token: "token-" + u.RepID, User: u}, nil
		}
	}
	return nil, apperrors.ErrUnidentifiedUser
}

func (m *MockProvider) CurrentUser(ctx context.Context) (*entities.User, error) {
	if err := m.record(Call{Method: "CurrentUser"}); err != nil {
		return nil, err
	}
	return nil, apperrors.ErrUnidentifiedUser
}

func (m *MockProvider) CreateUser(ctx context.Context, newUser entities.NewUser) (*entities.User, error) {
	if err := m.record(Call{Method: "CreateUser", RepID: newUser.RepID}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user := entities.User{
		ID:        uint64(len(m.Users) + 1),
		RepID:     newUser.RepID,
		FirstName: newUser.FirstName,
		LastName:  newUser.LastName,
		Email:     newUser.Email,
		Cellphone: newUser.Cellphone,
		IsActive:  newUser.IsActive,
	}
	m.Users[newUser.RepID] = user
	return &user, nil
}

func (m *MockProvider) FetchResource(ctx context.Context, kind entities.Kind, repID string) (json.RawMessage, error) {
	if err := m.record(Call{Method: "FetchResource", Kind: kind, RepID: repID}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ResourceErrors[kind]; err != nil {
		return nil, err
	}
	raw, ok := m.Resources[kind][repID]
	if !ok {
		return nil, nil
	}
	return raw, nil
}

// UpdateResource сливает поля запроса с текущей записью, как это делает бэкенд.
func (m *MockProvider) UpdateResource(ctx context.Context, kind entities.Kind, repID string, payload dto.Payload) (json.RawMessage, error) {
	uploads := make(map[string][]byte)
	for _, f := range payload.Files {
		if f.Open == nil {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		uploads[f.Field] = data
	}

	if err := m.record(Call{Method: "UpdateResource", Kind: kind, RepID: repID, Payload: payload, Uploads: uploads}); err != nil {
		return nil, err
	}
	if m.Block != nil {
		<-m.Block
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := make(map[string]interface{})
	if raw, ok := m.Resources[kind][repID]; ok {
		_ = json.Unmarshal(raw, &current)
	}
	for k, v := range payload.Fields {
		current[k] = v
	}
	for _, f := range payload.Files {
		current[f.Field] = "/media/" + f.FileName
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	if m.Resources[kind] == nil {
		m.Resources[kind] = make(map[string]json.RawMessage)
	}
	m.Resources[kind][repID] = raw
	return raw, nil
}

func (m *MockProvider) ListCronJobs(ctx context.Context) ([]entities.CronJob, error) {
	if err := m.record(Call{Method: "ListCronJobs"}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.CronJob{}, m.CronJobs...), nil
}

func (m *MockProvider) CreateCronJob(ctx context.Context, input entities.CronJobInput) (*entities.CronJob, error) {
	if err := m.record(Call{Method: "CreateCronJob"}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	status := input.Status
	if status == "" {
		status = entities.JobStatusStopped
	}
	job := entities.CronJob{
		ID:          uint64(len(m.CronJobs) + 1),
		Name:        input.Name,
		Schedule:    input.Schedule,
		Description: input.Description,
		JobType:     input.JobType,
		TemplateID:  input.TemplateID,
		Status:      status,
	}
	m.CronJobs = append(m.CronJobs, job)
	return &job, nil
}

func (m *MockProvider) UpdateCronJob(ctx context.Context, id uint64, input entities.CronJobInput) (*entities.CronJob, error) {
	if err := m.record(Call{Method: "UpdateCronJob", ID: id}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.CronJobs {
		if m.CronJobs[i].ID == id {
			m.CronJobs[i].Name = input.Name
			m.CronJobs[i].Schedule = input.Schedule
			m.CronJobs[i].Description = input.Description
			m.CronJobs[i].JobType = input.JobType
			m.CronJobs[i].TemplateID = input.TemplateID
			job := m.CronJobs[i]
			return &job, nil
		}
	}
	return nil, integrations.NewAPIError(404, []byte(`{"detail":"Not found."}`))
}

var jobStatusAfter = map[string]string{
	entities.JobActionStart:   entities.JobStatusRunning,
	entities.JobActionStop:    entities.JobStatusStopped,
	entities.JobActionRestart: entities.JobStatusRunning,
}

func (m *MockProvider) CronJobAction(ctx context.Context, id uint64, action string) (string, error) {
	if err := m.record(Call{Method: "CronJobAction", ID: id, Action: action}); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.CronJobs {
		if m.CronJobs[i].ID == id {
			m.CronJobs[i].Status = jobStatusAfter[action]
			return "Job " + action + " requested.", nil
		}
	}
	return "", integrations.NewAPIError(404, []byte(`{"detail":"Not found."}`))
}

func (m *MockProvider) DeleteCronJob(ctx context.Context, id uint64) (string, error) {
	if err := m.record(Call{Method: "DeleteCronJob", ID: id}); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.CronJobs {
		if m.CronJobs[i].ID == id {
			m.CronJobs = append(m.CronJobs[:i], m.CronJobs[i+1:]...)
			return "", nil
		}
	}
	return "", integrations.NewAPIError(404, []byte(`{"detail":"Not found."}`))
}

func (m *MockProvider) ListDistributions(ctx context.Context, dtype entities.DistributionType) ([]entities.Distribution, error) {
	if err := m.record(Call{Method: "ListDistributions"}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Distribution{}, m.Distributions[dtype]...), nil
}

var distributionStatusAfter = map[string]string{
	entities.DistributionActionCancel:   entities.DistributionCancelled,
	entities.DistributionActionComplete: entities.DistributionCompleted,
}

func (m *MockProvider) DistributionAction(ctx context.Context, dtype entities.DistributionType, id uint64, action string) (string, error) {
	if err := m.record(Call{Method: "DistributionAction", ID: id, Action: action}); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.Distributions[dtype]
	for i := range list {
		if list[i].ID == id {
			list[i].Status = distributionStatusAfter[action]
			return "", nil
		}
	}
	return "", integrations.NewAPIError(404, []byte(`{"detail":"Not found."}`))
}

func (m *MockProvider) DeleteDistribution(ctx context.Context, dtype entities.DistributionType, id uint64) (string, error) {
	if err := m.record(Call{Method: "DeleteDistribution", ID: id}); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.Distributions[dtype]
	for i := range list {
		if list[i].ID == id {
			m.Distributions[dtype] = append(list[:i], list[i+1:]...)
			return "", nil
		}
	}
	return "", integrations.NewAPIError(404, []byte(`{"detail":"Not found."}`))
}

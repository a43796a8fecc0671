package integrations

import (
	"context"
	"encoding/json"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	integrationDTO "rep-admin/internal/integrations/dto"
)

// Backend - REST-бэкенд, которому принадлежат пользователи, задачи и рассылки.
// Все вызовы однократные, без повторов.
type Backend interface {
	Name() string

	Login(ctx context.Context, email, password string) (*integrationDTO.LoginResult, error)
	CurrentUser(ctx context.Context) (*entities.User, error)
	CreateUser(ctx context.Context, user entities.NewUser) (*entities.User, error)

	// FetchResource возвращает nil без ошибки, если у пользователя нет такого под-ресурса.
	FetchResource(ctx context.Context, kind entities.Kind, repID string) (json.RawMessage, error)
	UpdateResource(ctx context.Context, kind entities.Kind, repID string, payload dto.Payload) (json.RawMessage, error)

	ListCronJobs(ctx context.Context) ([]entities.CronJob, error)
	CreateCronJob(ctx context.Context, input entities.CronJobInput) (*entities.CronJob, error)
	UpdateCronJob(ctx context.Context, id uint64, input entities.CronJobInput) (*entities.CronJob, error)
	CronJobAction(ctx context.Context, id uint64, action string) (string, error)
	DeleteCronJob(ctx context.Context, id uint64) (string, error)

	ListDistributions(ctx context.Context, dtype entities.DistributionType) ([]entities.Distribution, error)
	DistributionAction(ctx context.Context, dtype entities.DistributionType, id uint64, action string) (string, error)
	DeleteDistribution(ctx context.Context, dtype entities.DistributionType, id uint64) (string, error)
}

package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/integrations"
	"rep-admin/internal/repositories"
	apperrors "rep-admin/pkg/errors"
)

type CronJobServiceInterface interface {
	List(ctx context.Context) ([]dto.CronJobDTO, error)
	Create(ctx context.Context, form dto.CronJobFormDTO) (*dto.CronJobDTO, error)
	Update(ctx context.Context, id uint64, form dto.CronJobFormDTO) (*dto.CronJobDTO, error)
	Apply(ctx context.Context, id uint64, action string) (*dto.ActionResultDTO, error)
	RequestDelete(ctx context.Context, id uint64) (*dto.ConfirmationDTO, error)
	Delete(ctx context.Context, id uint64, confirmToken string) (*dto.ActionResultDTO, error)
	Export(ctx context.Context) ([]entities.CronJob, error)
}

type CronJobService struct {
	lifecycle
	backend integrations.Backend
}

func NewCronJobService(
	base *BaseService,
	backend integrations.Backend,
	queries repositories.QueryCacheInterface,
	guard repositories.ActionGuardInterface,
	confirmations repositories.ConfirmationRepositoryInterface,
	logger *zap.Logger,
) *CronJobService {
	return &CronJobService{
		lifecycle: lifecycle{
			BaseService:   base,
			queries:       queries,
			guard:         guard,
			confirmations: confirmations,
			logger:        logger.Named("cron_job_service"),
		},
		backend: backend,
	}
}

func cronJobTarget(id uint64) string {
	return fmt.Sprintf("cron-job:%d", id)
}

func (s *CronJobService) jobs(ctx context.Context) ([]entities.CronJob, error) {
	jobs, err := cachedList(ctx, s.queries, repositories.CronJobsQueryKey(), s.backend.ListCronJobs)
	if err != nil {
		return nil, integrations.ToActionError(err, "Failed to load cron jobs.")
	}
	return jobs, nil
}

func (s *CronJobService) find(ctx context.Context, id uint64) (*entities.CronJob, error) {
	jobs, err := s.jobs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *CronJobService) List(ctx context.Context) ([]dto.CronJobDTO, error) {
	jobs, err := s.jobs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CronJobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, dto.NewCronJobDTO(job))
	}
	return out, nil
}

func (s *CronJobService) Export(ctx context.Context) ([]entities.CronJob, error) {
	return s.jobs(ctx)
}

// Create - новая задача всегда создаётся остановленной.
func (s *CronJobService) Create(ctx context.Context, form dto.CronJobFormDTO) (*dto.CronJobDTO, error) {
	input := form.ToInput()
	input.Status = entities.JobStatusStopped
	entry := entities.AuditEntry{Action: "cron_job.create", TargetType: "cron_job", TargetID: input.Name}

	job, err := s.backend.CreateCronJob(ctx, input)
	if err != nil {
		actionErr := integrations.ToActionError(err, "Failed to create cron job.")
		s.Audit(ctx, entry, actionErr)
		return nil, actionErr
	}
	s.invalidate(ctx, repositories.CronJobsQueryKey())

	if job == nil {
		job = &entities.CronJob{Name: input.Name, Schedule: input.Schedule, Description: input.Description,
			JobType: input.JobType, TemplateID: input.TemplateID, Status: input.Status}
	}
	entry.TargetID = fmt.Sprint(job.ID)
	s.Audit(ctx, entry, nil)

	out := dto.NewCronJobDTO(*job)
	return &out, nil
}

func (s *CronJobService) Update(ctx context.Context, id uint64, form dto.CronJobFormDTO) (*dto.CronJobDTO, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := entities.AuditEntry{Action: "cron_job.update", TargetType: "cron_job", TargetID: fmt.Sprint(id)}

	release, err := s.guard.Acquire(ctx, cronJobTarget(id))
	if err != nil {
		return nil, err
	}
	defer release()

	input := form.ToInput()
	input.Status = current.Status
	job, err := s.backend.UpdateCronJob(ctx, id, input)
	if err != nil {
		actionErr := integrations.ToActionError(err, "Failed to update cron job.")
		s.Audit(ctx, entry, actionErr)
		return nil, actionErr
	}
	s.invalidate(ctx, repositories.CronJobsQueryKey())
	s.Audit(ctx, entry, nil)

	if job == nil {
		job = current
	}
	out := dto.NewCronJobDTO(*job)
	return &out, nil
}

// Apply - start/stop/restart. Переход проверяется по последнему известному статусу.
func (s *CronJobService) Apply(ctx context.Context, id uint64, action string) (*dto.ActionResultDTO, error) {
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := entities.AuditEntry{Action: "cron_job." + action, TargetType: "cron_job", TargetID: fmt.Sprint(id)}
	if !job.CanApply(action) {
		s.Audit(ctx, entry, apperrors.ErrInvalidTransition)
		return nil, fmt.Errorf("%w: cannot %s a %s job", apperrors.ErrInvalidTransition, action, job.Status)
	}

	return s.run(ctx, actionSpec{
		scope:         cronJobTarget(id),
		collectionKey: repositories.CronJobsQueryKey(),
		entry:         entry,
		fallback:      fmt.Sprintf("Failed to %s the job.", action),
		success:       fmt.Sprintf("Job %q: %s requested.", job.Name, action),
	}, func(ctx context.Context) (string, error) {
		return s.backend.CronJobAction(ctx, id, action)
	})
}

func (s *CronJobService) RequestDelete(ctx context.Context, id uint64) (*dto.ConfirmationDTO, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	return s.requestConfirmation(ctx, cronJobTarget(id))
}

func (s *CronJobService) Delete(ctx context.Context, id uint64, confirmToken string) (*dto.ActionResultDTO, error) {
	entry := entities.AuditEntry{Action: "cron_job.delete", TargetType: "cron_job", TargetID: fmt.Sprint(id)}
	if err := s.confirm(ctx, confirmToken, cronJobTarget(id)); err != nil {
		s.Audit(ctx, entry, err)
		return nil, err
	}

	return s.run(ctx, actionSpec{
		scope:         cronJobTarget(id),
		collectionKey: repositories.CronJobsQueryKey(),
		entry:         entry,
		fallback:      "Failed to delete the job.",
		success:       "Cron job deleted.",
	}, func(ctx context.Context) (string, error) {
		return s.backend.DeleteCronJob(ctx, id)
	})
}

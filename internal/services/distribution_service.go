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

type DistributionServiceInterface interface {
	List(ctx context.Context, dtype entities.DistributionType) ([]dto.DistributionDTO, error)
	Apply(ctx context.Context, dtype entities.DistributionType, id uint64, action string) (*dto.ActionResultDTO, error)
	RequestDelete(ctx context.Context, dtype entities.DistributionType, id uint64) (*dto.ConfirmationDTO, error)
	Delete(ctx context.Context, dtype entities.DistributionType, id uint64, confirmToken string) (*dto.ActionResultDTO, error)
	Export(ctx context.Context, dtype entities.DistributionType) ([]entities.Distribution, error)
}

type DistributionService struct {
	lifecycle
	backend integrations.Backend
}

func NewDistributionService(
	base *BaseService,
	backend integrations.Backend,
	queries repositories.QueryCacheInterface,
	guard repositories.ActionGuardInterface,
	confirmations repositories.ConfirmationRepositoryInterface,
	logger *zap.Logger,
) *DistributionService {
	return &DistributionService{
		lifecycle: lifecycle{
			BaseService:   base,
			queries:       queries,
			guard:         guard,
			confirmations: confirmations,
			logger:        logger.Named("distribution_service"),
		},
		backend: backend,
	}
}

func distributionTarget(dtype entities.DistributionType, id uint64) string {
	return fmt.Sprintf("%s-distribution:%d", dtype, id)
}

var distributionSuccess = map[string]string{
	entities.DistributionActionCancel:   "Distribution cancelled.",
	entities.DistributionActionComplete: "Distribution marked as completed.",
}

func (s *DistributionService) items(ctx context.Context, dtype entities.DistributionType) ([]entities.Distribution, error) {
	items, err := cachedList(ctx, s.queries, repositories.DistributionsQueryKey(dtype), func(ctx context.Context) ([]entities.Distribution, error) {
		return s.backend.ListDistributions(ctx, dtype)
	})
	if err != nil {
		return nil, integrations.ToActionError(err, "Failed to load distributions.")
	}
	return items, nil
}

func (s *DistributionService) find(ctx context.Context, dtype entities.DistributionType, id uint64) (*entities.Distribution, error) {
	items, err := s.items(ctx, dtype)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *DistributionService) List(ctx context.Context, dtype entities.DistributionType) ([]dto.DistributionDTO, error) {
	items, err := s.items(ctx, dtype)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DistributionDTO, 0, len(items))
	for _, d := range items {
		out = append(out, dto.NewDistributionDTO(dtype, d))
	}
	return out, nil
}

func (s *DistributionService) Export(ctx context.Context, dtype entities.DistributionType) ([]entities.Distribution, error) {
	return s.items(ctx, dtype)
}

// Apply - cancel (только pending) или mark-completed (только in_progress).
func (s *DistributionService) Apply(ctx context.Context, dtype entities.DistributionType, id uint64, action string) (*dto.ActionResultDTO, error) {
	d, err := s.find(ctx, dtype, id)
	if err != nil {
		return nil, err
	}
	entry := entities.AuditEntry{Action: "distribution." + action, TargetType: string(dtype) + "_distribution", TargetID: fmt.Sprint(id)}
	if !d.CanApply(action) {
		s.Audit(ctx, entry, apperrors.ErrInvalidTransition)
		return nil, fmt.Errorf("%w: cannot %s a %s distribution", apperrors.ErrInvalidTransition, action, d.Status)
	}

	return s.run(ctx, actionSpec{
		scope:         distributionTarget(dtype, id),
		collectionKey: repositories.DistributionsQueryKey(dtype),
		entry:         entry,
		fallback:      "Failed to update the distribution.",
		success:       distributionSuccess[action],
	}, func(ctx context.Context) (string, error) {
		return s.backend.DistributionAction(ctx, dtype, id, action)
	})
}

func (s *DistributionService) RequestDelete(ctx context.Context, dtype entities.DistributionType, id uint64) (*dto.ConfirmationDTO, error) {
	if _, err := s.find(ctx, dtype, id); err != nil {
		return nil, err
	}
	return s.requestConfirmation(ctx, distributionTarget(dtype, id))
}

func (s *DistributionService) Delete(ctx context.Context, dtype entities.DistributionType, id uint64, confirmToken string) (*dto.ActionResultDTO, error) {
	entry := entities.AuditEntry{Action: "distribution.delete", TargetType: string(dtype) + "_distribution", TargetID: fmt.Sprint(id)}
	if err := s.confirm(ctx, confirmToken, distributionTarget(dtype, id)); err != nil {
		s.Audit(ctx, entry, err)
		return nil, err
	}

	return s.run(ctx, actionSpec{
		scope:         distributionTarget(dtype, id),
		collectionKey: repositories.DistributionsQueryKey(dtype),
		entry:         entry,
		fallback:      "Failed to delete the distribution.",
		success:       "Distribution deleted.",
	}, func(ctx context.Context) (string, error) {
		return s.backend.DeleteDistribution(ctx, dtype, id)
	})
}

package dto

import (
	"github.com/aarondl/null/v8"

	"rep-admin/internal/entities"
)

// CronJobFormDTO - диалог создания/редактирования задачи.
// Синтаксис расписания проверяет бэкенд.
type CronJobFormDTO struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Schedule    string   `json:"schedule" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	JobType     string   `json:"job_type" validate:"required,oneof=BIRTHDAY HOLIDAY NEWSLETTER ECARD REPORT OTHER"`
	TemplateID  null.Int `json:"template_id" validate:"omitempty,gte=1"`
}

func (f CronJobFormDTO) ToInput() entities.CronJobInput {
	return entities.CronJobInput{
		Name:        f.Name,
		Schedule:    f.Schedule,
		Description: f.Description,
		JobType:     f.JobType,
		TemplateID:  f.TemplateID,
	}
}

type CronJobDTO struct {
	entities.CronJob
	Actions []string `json:"actions"`
}

func NewCronJobDTO(job entities.CronJob) CronJobDTO {
	return CronJobDTO{CronJob: job, Actions: job.AvailableActions()}
}

type DistributionDTO struct {
	entities.Distribution
	Type    entities.DistributionType `json:"type"`
	Actions []string                  `json:"actions"`
}

func NewDistributionDTO(dtype entities.DistributionType, d entities.Distribution) DistributionDTO {
	return DistributionDTO{Distribution: d, Type: dtype, Actions: d.AvailableActions()}
}

// ActionResultDTO - сообщение бэкенда, показывается пользователю как есть.
type ActionResultDTO struct {
	Message string `json:"message"`
}

// ConfirmationDTO - одноразовый токен подтверждения удаления.
type ConfirmationDTO struct {
	Token     string `json:"confirm_token"`
	ExpiresIn int64  `json:"expires_in"`
}

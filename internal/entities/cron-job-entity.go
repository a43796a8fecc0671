package entities

import (
	"slices"

	"github.com/aarondl/null/v8"
)

const (
	JobStatusRunning = "running"
	JobStatusStopped = "stopped"
	JobStatusPaused  = "paused"
)

const (
	JobActionStart   = "start"
	JobActionStop    = "stop"
	JobActionRestart = "restart"
	JobActionEdit    = "edit"
	JobActionDelete  = "delete"
)

var JobTypes = []string{"BIRTHDAY", "HOLIDAY", "NEWSLETTER", "ECARD", "REPORT", "OTHER"}

// jobTransitions - из каких статусов доступно действие.
var jobTransitions = map[string][]string{
	JobActionStart:   {JobStatusStopped, JobStatusPaused},
	JobActionStop:    {JobStatusRunning},
	JobActionRestart: {JobStatusRunning, JobStatusStopped, JobStatusPaused},
}

type CronJob struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	Description string    `json:"description"`
	JobType     string    `json:"job_type"`
	TemplateID  null.Int  `json:"template_id"`
	Status      string    `json:"status"`
	LastRunAt   null.Time `json:"last_run_at"`
	NextRunAt   null.Time `json:"next_run_at"`
	CreatedAt   null.Time `json:"created_at"`
}

// CronJobInput - тело запроса на создание/изменение задачи.
type CronJobInput struct {
	Name        string   `json:"name"`
	Schedule    string   `json:"schedule"`
	Description string   `json:"description"`
	JobType     string   `json:"job_type"`
	TemplateID  null.Int `json:"template_id"`
	Status      string   `json:"status,omitempty"`
}

// CanApply сообщает, разрешено ли действие в текущем статусе.
// Неизвестное действие запрещено.
func (j CronJob) CanApply(action string) bool {
	allowed, ok := jobTransitions[action]
	return ok && slices.Contains(allowed, j.Status)
}

// AvailableActions - кнопки строки в списке задач.
func (j CronJob) AvailableActions() []string {
	actions := make([]string, 0, 5)
	for _, a := range []string{JobActionStart, JobActionStop, JobActionRestart} {
		if j.CanApply(a) {
			actions = append(actions, a)
		}
	}
	return append(actions, JobActionEdit, JobActionDelete)
}

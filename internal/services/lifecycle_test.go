package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/integrations"
	apperrors "rep-admin/pkg/errors"
)

func seedJobs(h *harness) {
	h.backend.CronJobs = []entities.CronJob{
		{ID: 1, Name: "Birthdays", Schedule: "0 9 * * *", JobType: "BIRTHDAY", Status: entities.JobStatusRunning},
		{ID: 2, Name: "Newsletter", Schedule: "0 8 1 * *", JobType: "NEWSLETTER", Status: entities.JobStatusPaused},
	}
}

func TestCronJobService_ListShowsAvailableActions(t *testing.T) {
	h := newHarness(t)
	seedJobs(h)

	jobs, err := h.cronJobs.List(h.ctx())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, []string{"stop", "restart", "edit", "delete"}, jobs[0].Actions)
	assert.Equal(t, []string{"start", "restart", "edit", "delete"}, jobs[1].Actions)

	_, err = h.cronJobs.List(h.ctx())
	require.NoError(t, err)
	assert.Len(t, h.backend.Calls("ListCronJobs"), 1)
}

func TestCronJobService_ApplyChecksTransition(t *testing.T) {
	h := newHarness(t)
	seedJobs(h)

	_, err := h.cronJobs.Apply(h.ctx(), 1, entities.JobActionStart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Empty(t, h.backend.Calls("CronJobAction"))

	result, err := h.cronJobs.Apply(h.ctx(), 1, entities.JobActionStop)
	require.NoError(t, err)
	assert.Equal(t, "Job stop requested.", result.Message)

	jobs, err := h.cronJobs.List(h.ctx())
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusStopped, jobs[0].Status, "список перечитан после действия")

	_, err = h.cronJobs.Apply(h.ctx(), 42, entities.JobActionStop)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	entries := h.auditLog()
	require.Len(t, entries, 2)
	assert.Equal(t, entities.AuditOutcomeRejected, entries[0].Outcome)
	assert.Equal(t, "cron_job.stop", entries[1].Action)
	assert.Equal(t, "Job stop requested.", entries[1].Message)
}

func TestCronJobService_ApplyUsesUpstreamMessageOnFailure(t *testing.T) {
	h := newHarness(t)
	seedJobs(h)
	h.backend.Fail("CronJobAction", integrations.NewAPIError(409, []byte(`{"message": "Job is locked."}`)))

	_, err := h.cronJobs.Apply(h.ctx(), 2, entities.JobActionStart)
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 409, httpErr.Code)
	assert.Equal(t, "Job is locked.", httpErr.Message)
}

func TestCronJobService_CreateForcesStopped(t *testing.T) {
	h := newHarness(t)

	job, err := h.cronJobs.Create(h.ctx(), dto.CronJobFormDTO{Name: "Holidays", Schedule: "0 0 * * *", JobType: "HOLIDAY"})
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusStopped, job.Status)
	assert.Contains(t, job.Actions, entities.JobActionStart)
}

func TestCronJobService_CreateReportsScheduleError(t *testing.T) {
	h := newHarness(t)
	h.backend.Fail("CreateCronJob", integrations.NewAPIError(400, []byte(`{"name": ["Too long."], "schedule": ["Invalid cron expression."]}`)))

	_, err := h.cronJobs.Create(h.ctx(), dto.CronJobFormDTO{Name: "x", Schedule: "every day", JobType: "OTHER"})
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Invalid cron expression.", httpErr.Message)
	details, ok := httpErr.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "Too long.", "schedule": "Invalid cron expression."}, details["field_errors"])
}

func TestCronJobService_UpdateKeepsStatus(t *testing.T) {
	h := newHarness(t)
	seedJobs(h)

	job, err := h.cronJobs.Update(h.ctx(), 1, dto.CronJobFormDTO{Name: "Birthdays v2", Schedule: "0 10 * * *", JobType: "BIRTHDAY"})
	require.NoError(t, err)
	assert.Equal(t, "Birthdays v2", job.Name)
	assert.Equal(t, entities.JobStatusRunning, job.Status)
}

func TestCronJobService_DeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	seedJobs(h)

	_, err := h.cronJobs.Delete(h.ctx(), 1, "")
	assert.ErrorIs(t, err, apperrors.ErrConfirmationRequired)

	other, err := h.cronJobs.RequestDelete(h.ctx(), 2)
	require.NoError(t, err)
	_, err = h.cronJobs.Delete(h.ctx(), 1, other.Token)
	assert.ErrorIs(t, err, apperrors.ErrConfirmationRequired, "токен выдан для другой задачи")
	assert.Empty(t, h.backend.Calls("DeleteCronJob"))

	confirmation, err := h.cronJobs.RequestDelete(h.ctx(), 1)
	require.NoError(t, err)
	assert.Positive(t, confirmation.ExpiresIn)

	result, err := h.cronJobs.Delete(h.ctx(), 1, confirmation.Token)
	require.NoError(t, err)
	assert.Equal(t, "Cron job deleted.", result.Message)

	_, err = h.cronJobs.Delete(h.ctx(), 1, confirmation.Token)
	assert.ErrorIs(t, err, apperrors.ErrConfirmationRequired)

	jobs, err := h.cronJobs.List(h.ctx())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestCronJobService_ActionWhileInFlight(t *testing.T) {
	h := newHarness(t)
	seedJobs(h)

	release, err := h.cronJobs.guard.Acquire(h.ctx(), cronJobTarget(1))
	require.NoError(t, err)

	_, err = h.cronJobs.Apply(h.ctx(), 1, entities.JobActionStop)
	assert.ErrorIs(t, err, apperrors.ErrActionInProgress)

	release()
	_, err = h.cronJobs.Apply(h.ctx(), 1, entities.JobActionStop)
	assert.NoError(t, err)
}

func TestDistributionService_Transitions(t *testing.T) {
	h := newHarness(t)
	h.backend.Distributions[entities.DistributionEcard] = []entities.Distribution{
		{ID: 10, Name: "Spring", Status: entities.DistributionPending},
		{ID: 11, Name: "Summer", Status: entities.DistributionInProgress},
	}

	items, err := h.distributions.List(h.ctx(), entities.DistributionEcard)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, entities.DistributionEcard, items[0].Type)
	assert.Equal(t, []string{"cancel", "delete"}, items[0].Actions)
	assert.Equal(t, []string{"mark-completed", "delete"}, items[1].Actions)

	_, err = h.distributions.Apply(h.ctx(), entities.DistributionEcard, 10, entities.DistributionActionComplete)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	result, err := h.distributions.Apply(h.ctx(), entities.DistributionEcard, 10, entities.DistributionActionCancel)
	require.NoError(t, err)
	assert.Equal(t, "Distribution cancelled.", result.Message)

	items, err = h.distributions.List(h.ctx(), entities.DistributionEcard)
	require.NoError(t, err)
	assert.Equal(t, entities.DistributionCancelled, items[0].Status)

	newsletters, err := h.distributions.List(h.ctx(), entities.DistributionNewsletter)
	require.NoError(t, err)
	assert.Empty(t, newsletters)
}

func TestDistributionService_Delete(t *testing.T) {
	h := newHarness(t)
	h.backend.Distributions[entities.DistributionNewsletter] = []entities.Distribution{
		{ID: 5, Name: "May", Status: entities.DistributionSent},
	}

	confirmation, err := h.distributions.RequestDelete(h.ctx(), entities.DistributionNewsletter, 5)
	require.NoError(t, err)

	_, err = h.distributions.Delete(h.ctx(), entities.DistributionEcard, 5, confirmation.Token)
	assert.ErrorIs(t, err, apperrors.ErrConfirmationRequired, "тип рассылки входит в цель подтверждения")

	confirmation, err = h.distributions.RequestDelete(h.ctx(), entities.DistributionNewsletter, 5)
	require.NoError(t, err)
	result, err := h.distributions.Delete(h.ctx(), entities.DistributionNewsletter, 5, confirmation.Token)
	require.NoError(t, err)
	assert.Equal(t, "Distribution deleted.", result.Message)

	items, err := h.distributions.List(h.ctx(), entities.DistributionNewsletter)
	require.NoError(t, err)
	assert.Empty(t, items)
}

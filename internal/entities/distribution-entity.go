package entities

import (
	"slices"

	"github.com/aarondl/null/v8"
)

// DistributionType - рассылки открыток и новостных писем живут на разных эндпоинтах.
type DistributionType string

const (
	DistributionEcard      DistributionType = "ecard"
	DistributionNewsletter DistributionType = "newsletter"
)

func ParseDistributionType(raw string) (DistributionType, bool) {
	switch DistributionType(raw) {
	case DistributionEcard, DistributionNewsletter:
		return DistributionType(raw), true
	}
	return "", false
}

const (
	DistributionPending    = "pending"
	DistributionInProgress = "in_progress"
	DistributionSent       = "sent"
	DistributionDelivered  = "delivered"
	DistributionCompleted  = "completed"
	DistributionCancelled  = "cancelled"
	DistributionFailed     = "failed"
)

const (
	DistributionActionCancel   = "cancel"
	DistributionActionComplete = "mark-completed"
	DistributionActionDelete   = "delete"
)

var distributionTransitions = map[string][]string{
	DistributionActionCancel:   {DistributionPending},
	DistributionActionComplete: {DistributionInProgress},
}

type Distribution struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Target          string    `json:"target"`
	Status          string    `json:"status"`
	ScheduledAt     null.Time `json:"scheduled_at"`
	RecipientsCount int       `json:"recipients_count"`
	SentCount       int       `json:"sent_count"`
	FailedCount     int       `json:"failed_count"`
	CreatedAt       null.Time `json:"created_at"`
}

func (d Distribution) CanApply(action string) bool {
	allowed, ok := distributionTransitions[action]
	return ok && slices.Contains(allowed, d.Status)
}

func (d Distribution) AvailableActions() []string {
	actions := make([]string, 0, 3)
	for _, a := range []string{DistributionActionCancel, DistributionActionComplete} {
		if d.CanApply(a) {
			actions = append(actions, a)
		}
	}
	return append(actions, DistributionActionDelete)
}

package entities

import (
	"time"

	"rep-admin/pkg/types"
)

const (
	AuditOutcomeSuccess  = "success"
	AuditOutcomeFailure  = "failure"
	AuditOutcomeRejected = "rejected"
)

// AuditEntry - одна запись журнала изменений, сделанных через админку.
type AuditEntry struct {
	ID            uint64    `json:"id"`
	OperatorID    uint64    `json:"operator_id"`
	OperatorEmail string    `json:"operator_email"`
	Action        string    `json:"action"`
	TargetType    string    `json:"target_type"`
	TargetID      string    `json:"target_id"`
	RepID         string    `json:"rep_id"`
	Outcome       string    `json:"outcome"`
	Message       string    `json:"message"`
	RequestID     string    `json:"request_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditFilter - параметры списка журнала. Даты включительные.
type AuditFilter struct {
	types.Filter
	DateFrom *time.Time
	DateTo   *time.Time
}

package events

import "rep-admin/internal/entities"

const MutationPerformedName = "admin.mutation.performed"

// MutationPerformedEvent - оператор изменил что-то на бэкенде (или попытался).
type MutationPerformedEvent struct {
	Entry entities.AuditEntry
}

// Name - реализуем интерфейс eventbus.Event
func (e MutationPerformedEvent) Name() string {
	return MutationPerformedName
}

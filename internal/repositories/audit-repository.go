package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/infrastructure/bd"
)

const auditTable = "audit_log"

var auditMap = map[string]string{
	"id":             "id",
	"operator_id":    "operator_id",
	"operator_email": "operator_email",
	"action":         "action",
	"target_type":    "target_type",
	"target_id":      "target_id",
	"rep_id":         "rep_id",
	"outcome":        "outcome",
	"created_at":     "created_at",
}

var auditColumns = []string{
	"id", "operator_id", "operator_email", "action", "target_type", "target_id",
	"rep_id", "outcome", "message", "request_id", "created_at",
}

type AuditRepositoryInterface interface {
	Create(ctx context.Context, entry entities.AuditEntry) (uint64, error)
	List(ctx context.Context, filter entities.AuditFilter) ([]entities.AuditEntry, uint64, error)
}

type AuditRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewAuditRepository(storage querier, logger *zap.Logger) AuditRepositoryInterface {
	return &AuditRepository{storage: storage, logger: logger}
}

func scanAuditEntry(row pgx.Row) (*entities.AuditEntry, error) {
	var e entities.AuditEntry
	err := row.Scan(
		&e.ID, &e.OperatorID, &e.OperatorEmail, &e.Action, &e.TargetType, &e.TargetID,
		&e.RepID, &e.Outcome, &e.Message, &e.RequestID, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования audit_log: %w", err)
	}
	return &e, nil
}

func (r *AuditRepository) Create(ctx context.Context, entry entities.AuditEntry) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(auditTable).
		Columns("operator_id", "operator_email", "action", "target_type", "target_id", "rep_id", "outcome", "message", "request_id").
		Values(entry.OperatorID, entry.OperatorEmail, entry.Action, entry.TargetType, entry.TargetID, entry.RepID, entry.Outcome, entry.Message, entry.RequestID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка записи в audit_log: %w", err)
	}
	return id, nil
}

// applyAuditWhere - поиск и диапазон дат, общие для COUNT и SELECT.
func applyAuditWhere(b sq.SelectBuilder, filter entities.AuditFilter) sq.SelectBuilder {
	if filter.Search != "" {
		pat := "%" + filter.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"operator_email": pat},
			sq.ILike{"target_id": pat},
			sq.ILike{"rep_id": pat},
			sq.ILike{"message": pat},
		})
	}
	if filter.DateFrom != nil {
		b = b.Where(sq.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		b = b.Where(sq.LtOrEq{"created_at": *filter.DateTo})
	}
	return b
}

func buildAuditQueries(filter entities.AuditFilter) (sq.SelectBuilder, sq.SelectBuilder) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countFilter := filter.Filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder := applyAuditWhere(psql.Select("COUNT(id)").From(auditTable), filter)
	countBuilder = bd.ApplyListParams(countBuilder, countFilter, auditMap)

	selectBuilder := applyAuditWhere(psql.Select(auditColumns...).From(auditTable), filter)
	if len(filter.Sort) == 0 {
		selectBuilder = selectBuilder.OrderBy("created_at DESC", "id DESC")
	}
	selectBuilder = bd.ApplyListParams(selectBuilder, filter.Filter, auditMap)

	return countBuilder, selectBuilder
}

func (r *AuditRepository) List(ctx context.Context, filter entities.AuditFilter) ([]entities.AuditEntry, uint64, error) {
	countBuilder, selectBuilder := buildAuditQueries(filter)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.AuditEntry{}, 0, nil
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]entities.AuditEntry, 0, filter.Limit)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, total, rows.Err()
}

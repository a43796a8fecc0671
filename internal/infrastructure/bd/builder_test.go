package bd

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rep-admin/pkg/types"
)

func TestApplyListParams(t *testing.T) {
	base := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select("id").From("audit_log")
	allowed := map[string]string{"outcome": "outcome", "action": "action", "created_at": "created_at"}

	filter := types.Filter{
		Filter:         map[string]interface{}{"outcome": "success,failure", "password": "x", "action": "submit"},
		Sort:           map[string]string{"created_at": "desc"},
		Limit:          10,
		Offset:         20,
		WithPagination: true,
	}

	query, args, err := ApplyListParams(base, filter, allowed).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM audit_log WHERE action = $1 AND outcome IN ($2,$3) ORDER BY created_at DESC LIMIT 10 OFFSET 20", query)
	assert.Equal(t, []interface{}{"submit", "success", "failure"}, args)
}

func TestApplyListParams_NoPagination(t *testing.T) {
	base := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select("COUNT(id)").From("audit_log")

	query, _, err := ApplyListParams(base, types.Filter{Limit: 10}, nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(id) FROM audit_log", query)
}

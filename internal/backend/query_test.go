package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	lastSelect Query
	lastTable  string
	lastRows   []Row
	selectRet  []any
}

func (r *recordingExecutor) ExecSelect(ctx context.Context, q Query) ([]any, error) {
	r.lastSelect = q
	return r.selectRet, nil
}

func (r *recordingExecutor) ExecInsert(ctx context.Context, table string, rows []Row) error {
	r.lastTable = table
	r.lastRows = rows
	return nil
}

func TestQueryBuilder_Select(t *testing.T) {
	exec := &recordingExecutor{selectRet: []any{map[string]any{"role_name": "hr"}}}

	rows, err := NewQuery(exec, "user_roles").
		Select("role_name").
		Eq("user_id", "u-1").
		Do(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "user_roles", exec.lastSelect.Table)
	assert.Equal(t, "role_name", exec.lastSelect.Columns)
	assert.Equal(t, []Filter{{Column: "user_id", Value: "u-1"}}, exec.lastSelect.Filters)
	assert.Len(t, rows, 1)
}

func TestQueryBuilder_DefaultsToStar(t *testing.T) {
	exec := &recordingExecutor{}

	_, err := NewQuery(exec, "employees").Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "*", exec.lastSelect.Columns)
}

func TestQueryBuilder_Insert(t *testing.T) {
	exec := &recordingExecutor{}
	row := Row{"user_id": "u-1", "role_name": "employee"}

	rows, err := NewQuery(exec, "user_roles").Insert(row).Do(context.Background())
	require.NoError(t, err)

	assert.Nil(t, rows)
	assert.Equal(t, "user_roles", exec.lastTable)
	require.Len(t, exec.lastRows, 1)
	assert.Equal(t, row, exec.lastRows[0])
	assert.Zero(t, exec.lastSelect.Table, "insert must not run a select")
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

const taskColumns = `id, user_id, to_char(date, 'YYYY-MM-DD') AS date, project_id, parent_id,
	order_index, title, COALESCE(description, '') AS description, completed, created_at, updated_at`

// inPartition matches NULL date and NULL project as keys of their own.
const inPartition = `user_id = $1 AND date IS NOT DISTINCT FROM $2::date AND project_id IS NOT DISTINCT FROM $3::bigint`

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// taskWriteErr maps constraint violations of a task write.
func taskWriteErr(op string, err error) error {
	switch {
	case isForeignKeyViolation(err):
		if constraintName(err) == "tasks_parent_id_fkey" {
			return core.ErrTaskNotFound
		}
		return core.ErrProjectNotFound
	case isCheckViolation(err):
		return core.ErrTaskInvalidArgs
	case errors.Is(err, sql.ErrNoRows):
		return core.ErrTaskNotFound
	}
	return storageErr(op, err)
}

func (r repo) GetTask(ctx context.Context, id, userID int64) (core.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	var t core.Task
	if err := r.q.GetContext(ctx, &t, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, storageErr("get task", err)
	}
	return t, nil
}

func (r repo) ListTasks(ctx context.Context, userID int64, f core.ListTasksFilter) ([]core.Task, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var (
		sb   strings.Builder
		args = []any{userID}
		n    = 2
	)

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)

	if f.Date != nil {
		args = append(args, *f.Date)
		sb.WriteString(fmt.Sprintf(" AND date = $%d::date", n))
		n++
	}
	if f.From != nil {
		args = append(args, *f.From)
		sb.WriteString(fmt.Sprintf(" AND date >= $%d::date", n))
		n++
	}
	if f.To != nil {
		args = append(args, *f.To)
		sb.WriteString(fmt.Sprintf(" AND date <= $%d::date", n))
		n++
	}
	if f.Undated {
		sb.WriteString(" AND date IS NULL")
	}
	if f.ProjectID != nil {
		args = append(args, *f.ProjectID)
		sb.WriteString(fmt.Sprintf(" AND project_id = $%d", n))
		n++
	}
	if f.ParentID != nil {
		args = append(args, *f.ParentID)
		sb.WriteString(fmt.Sprintf(" AND parent_id = $%d", n))
		n++
	}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		sb.WriteString(fmt.Sprintf(" AND completed = $%d", n))
		n++
	}

	args = append(args, f.Limit, f.Offset)
	sb.WriteString(fmt.Sprintf(
		" ORDER BY date ASC NULLS LAST, project_id ASC NULLS FIRST, order_index ASC, id ASC LIMIT $%d OFFSET $%d", n, n+1))

	out := []core.Task{}
	if err := r.q.SelectContext(ctx, &out, sb.String(), args...); err != nil {
		return nil, storageErr("list tasks", err)
	}
	return out, nil
}

func (r repo) ListChildTasks(ctx context.Context, parentID, userID int64) ([]core.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_id = $1 AND user_id = $2 ORDER BY id`

	var out []core.Task
	if err := r.q.SelectContext(ctx, &out, q, parentID, userID); err != nil {
		return nil, storageErr("list child tasks", err)
	}
	return out, nil
}

func (r repo) CountTasksOnDate(ctx context.Context, userID int64, date string) (int, error) {
	const q = `SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND date = $2::date`

	var n int
	if err := r.q.GetContext(ctx, &n, q, userID, date); err != nil {
		return 0, storageErr("count tasks on date", err)
	}
	return n, nil
}

func (r repo) MaxOrderIndex(ctx context.Context, p core.Partition, exceptID int64) (int, error) {
	q := `SELECT COALESCE(MAX(order_index), 0) FROM tasks WHERE ` + inPartition + ` AND id <> $4`

	var last int
	if err := r.q.GetContext(ctx, &last, q, p.UserID, p.Date, p.ProjectID, exceptID); err != nil {
		return 0, storageErr("max order index", err)
	}
	return last, nil
}

func (r repo) ShiftOrder(ctx context.Context, p core.Partition, from, delta int, exceptID int64) error {
	q := `
		UPDATE tasks
		SET order_index = order_index + $5
		WHERE ` + inPartition + ` AND id <> $4 AND order_index >= $6
	`

	if _, err := r.q.ExecContext(ctx, q, p.UserID, p.Date, p.ProjectID, exceptID, delta, from); err != nil {
		return storageErr("shift order", err)
	}
	return nil
}

func (r repo) InsertTask(ctx context.Context, t core.Task) (core.Task, error) {
	q := `
		INSERT INTO tasks(user_id, date, project_id, parent_id, order_index, title, description, completed, created_at, updated_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
		RETURNING ` + taskColumns

	var out core.Task
	err := r.q.QueryRowxContext(ctx, q,
		t.UserID, t.Date, t.ProjectID, t.ParentID, t.OrderIndex,
		t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt,
	).StructScan(&out)
	if err != nil {
		return core.Task{}, taskWriteErr("insert task", err)
	}
	return out, nil
}

func (r repo) UpdateTask(ctx context.Context, t core.Task) (core.Task, error) {
	q := `
		UPDATE tasks
		SET date = $3::date, project_id = $4, parent_id = $5, order_index = $6,
			title = $7, description = NULLIF($8, ''), completed = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	var out core.Task
	err := r.q.QueryRowxContext(ctx, q,
		t.ID, t.UserID, t.Date, t.ProjectID, t.ParentID, t.OrderIndex,
		t.Title, t.Description, t.Completed, t.UpdatedAt,
	).StructScan(&out)
	if err != nil {
		return core.Task{}, taskWriteErr("update task", err)
	}
	return out, nil
}

// DeleteTask removes the task; its subtree goes with it through the
// parent_id cascade.
func (r repo) DeleteTask(ctx context.Context, id, userID int64) error {
	const q = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	res, err := r.q.ExecContext(ctx, q, id, userID)
	if err != nil {
		return storageErr("delete task", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrTaskNotFound
	}
	return nil
}

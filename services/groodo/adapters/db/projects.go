package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

const projectColumns = `id, user_id, name, COALESCE(description, '') AS description, COALESCE(color, '') AS color, created_at, updated_at`

func (r repo) GetProject(ctx context.Context, id, userID int64) (core.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND user_id = $2`

	var p core.Project
	if err := r.q.GetContext(ctx, &p, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Project{}, core.ErrProjectNotFound
		}
		return core.Project{}, storageErr("get project", err)
	}
	return p, nil
}

func (r repo) ListProjects(ctx context.Context, userID int64) ([]core.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY lower(name) ASC, id ASC`

	out := []core.Project{}
	if err := r.q.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, storageErr("list projects", err)
	}
	return out, nil
}

func (r repo) InsertProject(ctx context.Context, p core.Project) (core.Project, error) {
	q := `
		INSERT INTO projects(user_id, name, description, color, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		RETURNING ` + projectColumns

	var out core.Project
	err := r.q.QueryRowxContext(ctx, q, p.UserID, p.Name, p.Description, p.Color, p.CreatedAt, p.UpdatedAt).
		StructScan(&out)
	if err != nil {
		if isCheckViolation(err) {
			return core.Project{}, core.ErrProjectInvalidArgs
		}
		return core.Project{}, storageErr("insert project", err)
	}
	return out, nil
}

func (r repo) UpdateProject(ctx context.Context, p core.Project) (core.Project, error) {
	q := `
		UPDATE projects
		SET name = $3, description = NULLIF($4, ''), color = NULLIF($5, ''), updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + projectColumns

	var out core.Project
	err := r.q.QueryRowxContext(ctx, q, p.ID, p.UserID, p.Name, p.Description, p.Color, p.UpdatedAt).
		StructScan(&out)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Project{}, core.ErrProjectNotFound
		}
		if isCheckViolation(err) {
			return core.Project{}, core.ErrProjectInvalidArgs
		}
		return core.Project{}, storageErr("update project", err)
	}
	return out, nil
}

// DeleteProject removes the project and, by cascade, every task in it.
func (r repo) DeleteProject(ctx context.Context, id, userID int64) error {
	const q = `DELETE FROM projects WHERE id = $1 AND user_id = $2`

	res, err := r.q.ExecContext(ctx, q, id, userID)
	if err != nil {
		return storageErr("delete project", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrProjectNotFound
	}
	return nil
}

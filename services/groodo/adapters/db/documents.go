package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

const documentColumns = `id, user_id, parent_id, title, COALESCE(content, '') AS content, created_at, updated_at`

func documentWriteErr(op string, err error) error {
	switch {
	case isForeignKeyViolation(err):
		if constraintName(err) == "documents_parent_id_fkey" {
			// RESTRICT on delete, missing parent on write
			if op == "delete document" {
				return core.ErrDocumentHasChildren
			}
			return core.ErrDocumentNotFound
		}
		return storageErr(op, err)
	case isCheckViolation(err):
		return core.ErrDocumentInvalidArgs
	case errors.Is(err, sql.ErrNoRows):
		return core.ErrDocumentNotFound
	}
	return storageErr(op, err)
}

func (r repo) GetDocument(ctx context.Context, id, userID int64) (core.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2`

	var d core.Document
	if err := r.q.GetContext(ctx, &d, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Document{}, core.ErrDocumentNotFound
		}
		return core.Document{}, storageErr("get document", err)
	}
	return d, nil
}

func (r repo) ListDocuments(ctx context.Context, userID int64, f core.ListDocumentsFilter) ([]core.Document, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var (
		sb   strings.Builder
		args = []any{userID}
		n    = 2
	)

	sb.WriteString(`SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1`)

	if f.ParentID != nil {
		args = append(args, *f.ParentID)
		sb.WriteString(fmt.Sprintf(" AND parent_id = $%d", n))
		n++
	} else if f.RootsOnly {
		sb.WriteString(" AND parent_id IS NULL")
	}

	args = append(args, f.Limit, f.Offset)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d", n, n+1))

	out := []core.Document{}
	if err := r.q.SelectContext(ctx, &out, sb.String(), args...); err != nil {
		return nil, storageErr("list documents", err)
	}
	return out, nil
}

func (r repo) ListChildDocumentIDs(ctx context.Context, parentID, userID int64) ([]int64, error) {
	const q = `SELECT id FROM documents WHERE parent_id = $1 AND user_id = $2 ORDER BY id`

	var out []int64
	if err := r.q.SelectContext(ctx, &out, q, parentID, userID); err != nil {
		return nil, storageErr("list child documents", err)
	}
	return out, nil
}

func (r repo) InsertDocument(ctx context.Context, d core.Document) (core.Document, error) {
	q := `
		INSERT INTO documents(user_id, parent_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING ` + documentColumns

	var out core.Document
	err := r.q.QueryRowxContext(ctx, q, d.UserID, d.ParentID, d.Title, d.Content, d.CreatedAt, d.UpdatedAt).
		StructScan(&out)
	if err != nil {
		return core.Document{}, documentWriteErr("insert document", err)
	}
	return out, nil
}

func (r repo) UpdateDocument(ctx context.Context, d core.Document) (core.Document, error) {
	q := `
		UPDATE documents
		SET parent_id = $3, title = $4, content = NULLIF($5, ''), updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + documentColumns

	var out core.Document
	err := r.q.QueryRowxContext(ctx, q, d.ID, d.UserID, d.ParentID, d.Title, d.Content, d.UpdatedAt).
		StructScan(&out)
	if err != nil {
		return core.Document{}, documentWriteErr("update document", err)
	}
	return out, nil
}

func (r repo) DeleteDocument(ctx context.Context, id, userID int64) error {
	const q = `DELETE FROM documents WHERE id = $1 AND user_id = $2`

	res, err := r.q.ExecContext(ctx, q, id, userID)
	if err != nil {
		return documentWriteErr("delete document", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrDocumentNotFound
	}
	return nil
}

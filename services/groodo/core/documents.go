package core

import (
	"context"
	"strings"
)

type NewDocument struct {
	Title    string
	Content  string
	ParentID *int64
}

type DocumentPatch struct {
	Title   *string
	Content *string
}

func (s *Service) CreateDocument(ctx context.Context, userID int64, in NewDocument) (Document, error) {
	title := strings.TrimSpace(in.Title)
	if userID <= 0 || title == "" || len(title) > maxTitleLen {
		return Document{}, ErrDocumentInvalidArgs
	}

	var out Document
	err := s.db.InTx(ctx, func(repo Repository) error {
		if in.ParentID != nil {
			if err := lockKeys(ctx, repo, treeKey("documents", userID)); err != nil {
				return err
			}
			ok, err := documentHierarchy(repo, userID).CanAttachChild(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			if !ok {
				recordRejection("document", "depth")
				return ErrDepthExceeded
			}
		}

		now := s.now()
		var err error
		out, err = repo.InsertDocument(ctx, Document{
			UserID:    userID,
			ParentID:  in.ParentID,
			Title:     title,
			Content:   in.Content,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return out, nil
}

func (s *Service) GetDocument(ctx context.Context, id, userID int64) (Document, error) {
	if id <= 0 || userID <= 0 {
		return Document{}, ErrDocumentInvalidArgs
	}
	return s.db.GetDocument(ctx, id, userID)
}

func (s *Service) ListDocuments(ctx context.Context, userID int64, f ListDocumentsFilter) ([]Document, error) {
	if userID <= 0 || f.Limit < 0 || f.Offset < 0 {
		return nil, ErrDocumentInvalidArgs
	}
	if f.ParentID != nil && f.RootsOnly {
		return nil, ErrDocumentInvalidArgs
	}
	return s.db.ListDocuments(ctx, userID, f)
}

func (s *Service) PatchDocument(ctx context.Context, id, userID int64, p DocumentPatch) (Document, error) {
	if id <= 0 || userID <= 0 || (p.Title == nil && p.Content == nil) {
		return Document{}, ErrDocumentInvalidArgs
	}

	var out Document
	err := s.db.InTx(ctx, func(repo Repository) error {
		cur, err := repo.GetDocument(ctx, id, userID)
		if err != nil {
			return err
		}
		if p.Title != nil {
			title := strings.TrimSpace(*p.Title)
			if title == "" || len(title) > maxTitleLen {
				return ErrDocumentInvalidArgs
			}
			cur.Title = title
		}
		if p.Content != nil {
			cur.Content = *p.Content
		}
		cur.UpdatedAt = s.now()

		out, err = repo.UpdateDocument(ctx, cur)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return out, nil
}

// UpdateParent moves a document under newParentID, or to the top level when
// newParentID is nil.
func (s *Service) UpdateParent(ctx context.Context, id, userID int64, newParentID *int64) (Document, error) {
	if id <= 0 || userID <= 0 {
		return Document{}, ErrDocumentInvalidArgs
	}
	if newParentID != nil && IsSelfParent(id, *newParentID) {
		recordRejection("document", "self_parent")
		return Document{}, ErrSelfParent
	}

	var out Document
	err := s.db.InTx(ctx, func(repo Repository) error {
		if err := lockKeys(ctx, repo, treeKey("documents", userID)); err != nil {
			return err
		}
		d, err := repo.GetDocument(ctx, id, userID)
		if err != nil {
			return err
		}

		if newParentID != nil {
			h := documentHierarchy(repo, userID)
			cycle, err := h.WouldCreateCycle(ctx, d.ID, *newParentID)
			if err != nil {
				return err
			}
			if cycle {
				recordRejection("document", "cycle")
				return ErrCycleDetected
			}
			height, err := h.HeightOf(ctx, d.ID)
			if err != nil {
				return err
			}
			ok, err := h.CanAttachSubtree(ctx, *newParentID, height)
			if err != nil {
				return err
			}
			if !ok {
				recordRejection("document", "depth")
				return ErrDepthExceeded
			}
		}

		d.ParentID = newParentID
		d.UpdatedAt = s.now()
		out, err = repo.UpdateDocument(ctx, d)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return out, nil
}

// DeleteDocument removes a childless document.
func (s *Service) DeleteDocument(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return ErrDocumentInvalidArgs
	}

	return s.db.InTx(ctx, func(repo Repository) error {
		if err := lockKeys(ctx, repo, treeKey("documents", userID)); err != nil {
			return err
		}
		if _, err := repo.GetDocument(ctx, id, userID); err != nil {
			return err
		}
		children, err := repo.ListChildDocumentIDs(ctx, id, userID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return ErrDocumentHasChildren
		}
		return repo.DeleteDocument(ctx, id, userID)
	})
}

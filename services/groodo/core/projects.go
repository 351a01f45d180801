package core

import (
	"context"
	"regexp"
	"strings"
)

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
}

func validProject(p Project) bool {
	return p.Name != "" && len(p.Name) <= maxTitleLen &&
		len(p.Description) <= maxDescriptionLen &&
		(p.Color == "" || colorRe.MatchString(p.Color))
}

func (s *Service) CreateProject(ctx context.Context, userID int64, name, description, color string) (Project, error) {
	now := s.now()
	p := Project{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Color:       strings.TrimSpace(color),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if userID <= 0 || !validProject(p) {
		return Project{}, ErrProjectInvalidArgs
	}
	return s.db.InsertProject(ctx, p)
}

func (s *Service) GetProject(ctx context.Context, id, userID int64) (Project, error) {
	if id <= 0 || userID <= 0 {
		return Project{}, ErrProjectInvalidArgs
	}
	return s.db.GetProject(ctx, id, userID)
}

func (s *Service) ListProjects(ctx context.Context, userID int64) ([]Project, error) {
	if userID <= 0 {
		return nil, ErrProjectInvalidArgs
	}
	return s.db.ListProjects(ctx, userID)
}

func (s *Service) PatchProject(ctx context.Context, id, userID int64, patch ProjectPatch) (Project, error) {
	if id <= 0 || userID <= 0 {
		return Project{}, ErrProjectInvalidArgs
	}
	if patch.Name == nil && patch.Description == nil && patch.Color == nil {
		return Project{}, ErrProjectInvalidArgs
	}

	var out Project
	err := s.db.InTx(ctx, func(repo Repository) error {
		cur, err := repo.GetProject(ctx, id, userID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			cur.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			cur.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Color != nil {
			cur.Color = strings.TrimSpace(*patch.Color)
		}
		if !validProject(cur) {
			return ErrProjectInvalidArgs
		}
		cur.UpdatedAt = s.now()

		out, err = repo.UpdateProject(ctx, cur)
		return err
	})
	if err != nil {
		return Project{}, err
	}
	return out, nil
}

// DeleteProject removes a project; its tasks go with it, whole partitions
// at a time, so no order repair is needed.
func (s *Service) DeleteProject(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return ErrProjectInvalidArgs
	}
	return s.db.DeleteProject(ctx, id, userID)
}

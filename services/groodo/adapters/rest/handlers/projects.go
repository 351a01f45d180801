package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/adapters/rest"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/pkg/res"
)

func NewCreateProjectHandler(_ *slog.Logger, svc Projects, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var in rest.CreateProjectIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		p, err := svc.CreateProject(ctx, userID, in.Name, in.Description, in.Color)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, p, http.StatusCreated)
	}
}

func NewGetProjectHandler(_ *slog.Logger, svc Projects, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		p, err := svc.GetProject(ctx, id, userID)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, p, http.StatusOK)
	}
}

func NewListProjectsHandler(_ *slog.Logger, svc Projects, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListProjects(ctx, userID)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"projects": items}, http.StatusOK)
	}
}

func NewPatchProjectHandler(_ *slog.Logger, svc Projects, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var in rest.PatchProjectIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}
		if in.Name == nil && in.Description == nil && in.Color == nil {
			res.Error(w, "no fields to update", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		p, err := svc.PatchProject(ctx, id, userID, core.ProjectPatch{
			Name:        in.Name,
			Description: in.Description,
			Color:       in.Color,
		})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, p, http.StatusOK)
	}
}

func NewDeleteProjectHandler(log *slog.Logger, svc Projects, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.DeleteProject(ctx, id, userID); err != nil {
			rest.WriteErr(w, err)
			return
		}
		log.Debug("project deleted", "project_id", id, "user_id", userID)
		res.NoContent(w)
	}
}

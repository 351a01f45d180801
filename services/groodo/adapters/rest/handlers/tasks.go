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

func queryString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

func NewCreateTaskHandler(_ *slog.Logger, svc Tasks, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var in rest.CreateTaskIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.CreateTask(ctx, userID, core.NewTask{
			Title:       in.Title,
			Description: in.Description,
			Date:        in.Date,
			ProjectID:   in.ProjectID,
			ParentID:    in.ParentID,
			AfterID:     in.AfterID,
			First:       in.First,
		})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusCreated)
	}
}

func NewGetTaskHandler(_ *slog.Logger, svc Tasks, timeout time.Duration) http.HandlerFunc {
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

		t, err := svc.GetTask(ctx, id, userID)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewListTasksHandler(_ *slog.Logger, svc Tasks, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		f := core.ListTasksFilter{
			Date: queryString(r, "date"),
			From: queryString(r, "from"),
			To:   queryString(r, "to"),
		}
		if f.ProjectID, ok = queryInt64(w, r, "project_id"); !ok {
			return
		}
		if f.ParentID, ok = queryInt64(w, r, "parent_id"); !ok {
			return
		}
		if f.Completed, ok = queryBool(w, r, "completed"); !ok {
			return
		}
		undated, ok := queryBool(w, r, "undated")
		if !ok {
			return
		}
		f.Undated = undated != nil && *undated
		if f.Limit, f.Offset, ok = queryPage(w, r); !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListTasks(ctx, userID, f)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"tasks": items}, http.StatusOK)
	}
}

func NewPatchTaskHandler(_ *slog.Logger, svc Tasks, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var in rest.PatchTaskIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}
		if in.Title == nil && in.Description == nil && in.Completed == nil {
			res.Error(w, "no fields to update", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.PatchTask(ctx, id, userID, core.TaskPatch{
			Title:       in.Title,
			Description: in.Description,
			Completed:   in.Completed,
		})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewDeleteTaskHandler(log *slog.Logger, svc Tasks, timeout time.Duration) http.HandlerFunc {
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

		if err := svc.DeleteTask(ctx, id, userID); err != nil {
			rest.WriteErr(w, err)
			return
		}
		log.Debug("task deleted", "task_id", id, "user_id", userID)
		res.NoContent(w)
	}
}

func NewUpdateTaskOrderHandler(_ *slog.Logger, svc Tasks, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var in rest.UpdateOrderIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.UpdateOrder(ctx, id, userID, core.MoveTask{
			Date:      in.Date,
			ProjectID: in.ProjectID,
			AfterID:   in.AfterID,
		})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewUpdateTaskParentHandler(_ *slog.Logger, svc Tasks, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var in rest.UpdateParentIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.ReassignParent(ctx, id, userID, in.ParentID)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

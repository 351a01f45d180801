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

func NewCreateDocumentHandler(_ *slog.Logger, svc Documents, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var in rest.CreateDocumentIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		d, err := svc.CreateDocument(ctx, userID, core.NewDocument{
			Title:    in.Title,
			Content:  in.Content,
			ParentID: in.ParentID,
		})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, d, http.StatusCreated)
	}
}

func NewGetDocumentHandler(_ *slog.Logger, svc Documents, timeout time.Duration) http.HandlerFunc {
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

		d, err := svc.GetDocument(ctx, id, userID)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, d, http.StatusOK)
	}
}

func NewListDocumentsHandler(_ *slog.Logger, svc Documents, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var f core.ListDocumentsFilter
		if f.ParentID, ok = queryInt64(w, r, "parent_id"); !ok {
			return
		}
		rootsOnly, ok := queryBool(w, r, "roots_only")
		if !ok {
			return
		}
		f.RootsOnly = rootsOnly != nil && *rootsOnly
		if f.Limit, f.Offset, ok = queryPage(w, r); !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListDocuments(ctx, userID, f)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"documents": items}, http.StatusOK)
	}
}

func NewPatchDocumentHandler(_ *slog.Logger, svc Documents, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var in rest.PatchDocumentIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}
		if in.Title == nil && in.Content == nil {
			res.Error(w, "no fields to update", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		d, err := svc.PatchDocument(ctx, id, userID, core.DocumentPatch{Title: in.Title, Content: in.Content})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, d, http.StatusOK)
	}
}

func NewUpdateDocumentParentHandler(_ *slog.Logger, svc Documents, timeout time.Duration) http.HandlerFunc {
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

		d, err := svc.UpdateParent(ctx, id, userID, in.ParentID)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, d, http.StatusOK)
	}
}

func NewDeleteDocumentHandler(log *slog.Logger, svc Documents, timeout time.Duration) http.HandlerFunc {
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

		if err := svc.DeleteDocument(ctx, id, userID); err != nil {
			rest.WriteErr(w, err)
			return
		}
		log.Debug("document deleted", "document_id", id, "user_id", userID)
		res.NoContent(w)
	}
}

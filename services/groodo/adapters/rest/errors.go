package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/pkg/res"
)

func WriteErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidArgs):
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, core.ErrConflict):
		res.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, core.ErrInvalidCredentials):
		res.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, core.ErrUnauthorized):
		res.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, context.DeadlineExceeded):
		res.Error(w, "request timed out", http.StatusServiceUnavailable)
	default:
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}

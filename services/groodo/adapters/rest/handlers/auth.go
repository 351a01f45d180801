package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/adapters/rest"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/pkg/res"
)

func NewRegisterHandler(log *slog.Logger, svc Users, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.RegisterIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		u, err := svc.Register(ctx, in.Email, in.Password, in.FullName)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		log.Info("user registered", "user_id", u.ID)
		res.Json(w, u, http.StatusCreated)
	}
}

func NewLoginHandler(log *slog.Logger, svc Users, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.LoginIn
		if err := rest.Decode(r, &in); err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		session, err := svc.Login(ctx, in.Email, in.Password)
		if err != nil {
			log.Debug("login failed", "error", err)
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, session, http.StatusOK)
	}
}

func NewMeHandler(_ *slog.Logger, svc Users, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		u, err := svc.GetUser(ctx, userID)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, u, http.StatusOK)
	}
}

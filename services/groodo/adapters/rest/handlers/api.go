package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/adapters/rest/middleware"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/pkg/res"
)

type Tasks interface {
	CreateTask(ctx context.Context, userID int64, in core.NewTask) (core.Task, error)
	GetTask(ctx context.Context, id, userID int64) (core.Task, error)
	ListTasks(ctx context.Context, userID int64, f core.ListTasksFilter) ([]core.Task, error)
	PatchTask(ctx context.Context, id, userID int64, p core.TaskPatch) (core.Task, error)
	DeleteTask(ctx context.Context, id, userID int64) error
	UpdateOrder(ctx context.Context, id, userID int64, in core.MoveTask) (core.Task, error)
	ReassignParent(ctx context.Context, id, userID int64, newParentID *int64) (core.Task, error)
}

type Projects interface {
	CreateProject(ctx context.Context, userID int64, name, description, color string) (core.Project, error)
	GetProject(ctx context.Context, id, userID int64) (core.Project, error)
	ListProjects(ctx context.Context, userID int64) ([]core.Project, error)
	PatchProject(ctx context.Context, id, userID int64, p core.ProjectPatch) (core.Project, error)
	DeleteProject(ctx context.Context, id, userID int64) error
}

type Documents interface {
	CreateDocument(ctx context.Context, userID int64, in core.NewDocument) (core.Document, error)
	GetDocument(ctx context.Context, id, userID int64) (core.Document, error)
	ListDocuments(ctx context.Context, userID int64, f core.ListDocumentsFilter) ([]core.Document, error)
	PatchDocument(ctx context.Context, id, userID int64, p core.DocumentPatch) (core.Document, error)
	UpdateParent(ctx context.Context, id, userID int64, newParentID *int64) (core.Document, error)
	DeleteDocument(ctx context.Context, id, userID int64) error
}

type Users interface {
	Register(ctx context.Context, email, password, fullName string) (core.User, error)
	Login(ctx context.Context, email, password string) (core.Session, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
}

type Deps struct {
	DB        core.Pinger
	Tasks     Tasks
	Projects  Projects
	Documents Documents
	Users     Users
	Tokens    middleware.TokenParser
}

func Register(mux *http.ServeMux, log *slog.Logger, deps Deps, timeout time.Duration) {
	auth := middleware.Auth(log, deps.Tokens)

	// ping
	mux.Handle("GET /api/ping", NewPingHandler(log, map[string]core.Pinger{"db": deps.DB}, timeout))

	// auth
	mux.Handle("POST /api/auth/register", NewRegisterHandler(log, deps.Users, timeout))
	mux.Handle("POST /api/auth/login", NewLoginHandler(log, deps.Users, timeout))
	mux.Handle("GET /api/auth/me", auth(NewMeHandler(log, deps.Users, timeout)))

	// tasks
	mux.Handle("POST /api/tasks", auth(NewCreateTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("GET /api/tasks", auth(NewListTasksHandler(log, deps.Tasks, timeout)))
	mux.Handle("GET /api/tasks/{id}", auth(NewGetTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("PATCH /api/tasks/{id}", auth(NewPatchTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("DELETE /api/tasks/{id}", auth(NewDeleteTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("PUT /api/tasks/{id}/order", auth(NewUpdateTaskOrderHandler(log, deps.Tasks, timeout)))
	mux.Handle("PUT /api/tasks/{id}/parent", auth(NewUpdateTaskParentHandler(log, deps.Tasks, timeout)))

	// projects
	mux.Handle("POST /api/projects", auth(NewCreateProjectHandler(log, deps.Projects, timeout)))
	mux.Handle("GET /api/projects", auth(NewListProjectsHandler(log, deps.Projects, timeout)))
	mux.Handle("GET /api/projects/{id}", auth(NewGetProjectHandler(log, deps.Projects, timeout)))
	mux.Handle("PATCH /api/projects/{id}", auth(NewPatchProjectHandler(log, deps.Projects, timeout)))
	mux.Handle("DELETE /api/projects/{id}", auth(NewDeleteProjectHandler(log, deps.Projects, timeout)))

	// documents
	mux.Handle("POST /api/documents", auth(NewCreateDocumentHandler(log, deps.Documents, timeout)))
	mux.Handle("GET /api/documents", auth(NewListDocumentsHandler(log, deps.Documents, timeout)))
	mux.Handle("GET /api/documents/{id}", auth(NewGetDocumentHandler(log, deps.Documents, timeout)))
	mux.Handle("PATCH /api/documents/{id}", auth(NewPatchDocumentHandler(log, deps.Documents, timeout)))
	mux.Handle("DELETE /api/documents/{id}", auth(NewDeleteDocumentHandler(log, deps.Documents, timeout)))
	mux.Handle("PUT /api/documents/{id}/parent", auth(NewUpdateDocumentParentHandler(log, deps.Documents, timeout)))
}

// pathID parses the {id} wildcard and answers 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		res.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// currentUser answers 401 when the request carries no authenticated user.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		res.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

func queryInt64(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		res.Error(w, "invalid "+name, http.StatusBadRequest)
		return nil, false
	}
	return &n, true
}

func queryBool(w http.ResponseWriter, r *http.Request, name string) (*bool, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		res.Error(w, "invalid "+name, http.StatusBadRequest)
		return nil, false
	}
	return &b, true
}

// queryPage reads limit and offset.
func queryPage(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			res.Error(w, "invalid limit", http.StatusBadRequest)
			return 0, 0, false
		}
		limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			res.Error(w, "invalid offset", http.StatusBadRequest)
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

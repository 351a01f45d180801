package core

import (
	"context"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Repository is the query surface of the core. Every read and write is
// filtered by owner; rows of another user are reported as not found.
// A Repository handed out by DB.InTx runs every call in that transaction.
type Repository interface {
	// Lock takes transaction-scoped locks on the given keys.
	Lock(ctx context.Context, keys ...string) error

	TaskRepository
	DocumentRepository
	ProjectRepository
	UserRepository
}

type TaskRepository interface {
	GetTask(ctx context.Context, id, userID int64) (Task, error)
	ListTasks(ctx context.Context, userID int64, f ListTasksFilter) ([]Task, error)
	ListChildTasks(ctx context.Context, parentID, userID int64) ([]Task, error)
	CountTasksOnDate(ctx context.Context, userID int64, date string) (int, error)
	// MaxOrderIndex returns 0 for an empty partition. exceptID (0 for none)
	// is left out of the aggregate.
	MaxOrderIndex(ctx context.Context, p Partition, exceptID int64) (int, error)
	// ShiftOrder adds delta to order_index of every row in p with
	// order_index >= from, except the row exceptID (0 for none).
	ShiftOrder(ctx context.Context, p Partition, from, delta int, exceptID int64) error
	InsertTask(ctx context.Context, t Task) (Task, error)
	UpdateTask(ctx context.Context, t Task) (Task, error)
	DeleteTask(ctx context.Context, id, userID int64) error
}

type DocumentRepository interface {
	GetDocument(ctx context.Context, id, userID int64) (Document, error)
	ListDocuments(ctx context.Context, userID int64, f ListDocumentsFilter) ([]Document, error)
	ListChildDocumentIDs(ctx context.Context, parentID, userID int64) ([]int64, error)
	InsertDocument(ctx context.Context, d Document) (Document, error)
	UpdateDocument(ctx context.Context, d Document) (Document, error)
	DeleteDocument(ctx context.Context, id, userID int64) error
}

type ProjectRepository interface {
	GetProject(ctx context.Context, id, userID int64) (Project, error)
	ListProjects(ctx context.Context, userID int64) ([]Project, error)
	InsertProject(ctx context.Context, p Project) (Project, error)
	UpdateProject(ctx context.Context, p Project) (Project, error)
	DeleteProject(ctx context.Context, id, userID int64) error
}

type UserRepository interface {
	InsertUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// DB is the storage the service runs on.
type DB interface {
	Pinger
	Repository

	// InTx runs fn in one transaction. The transaction is committed when fn
	// returns nil and rolled back otherwise, including on ctx cancellation.
	InTx(ctx context.Context, fn func(repo Repository) error) error
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(userID int64) (token string, expiresAt time.Time, err error)
}

package core

import (
	"strconv"
	"time"
)

// DateLayout is the wire and storage format of a task date.
const DateLayout = "2006-01-02"

const (
	MaxTaskDepth     = 2
	MaxDocumentDepth = 5
	DailyTaskLimit   = 50
)

type Task struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Date        *string   `db:"date" json:"date"` // nil for tasks attached only to a project
	ProjectID   *int64    `db:"project_id" json:"project_id"`
	ParentID    *int64    `db:"parent_id" json:"parent_id"`
	OrderIndex  int       `db:"order_index" json:"order_index"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Partition returns the ordering scope the task belongs to.
func (t Task) Partition() Partition {
	return Partition{UserID: t.UserID, Date: t.Date, ProjectID: t.ProjectID}
}

type Document struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ParentID  *int64    `db:"parent_id" json:"parent_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Project struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Color       string    `db:"color" json:"color"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Partition is the (user, date, project) scope of a dense task order.
// Nil Date and nil ProjectID are keys too: two partitions are equal only
// when all three components are equal, nil matching nil.
type Partition struct {
	UserID    int64
	Date      *string
	ProjectID *int64
}

func (p Partition) Equal(o Partition) bool {
	return p.UserID == o.UserID && eqPtr(p.Date, o.Date) && eqPtr(p.ProjectID, o.ProjectID)
}

// Key is a stable textual form of the partition, used for locking and sorting.
func (p Partition) Key() string {
	date, project := "-", "-"
	if p.Date != nil {
		date = *p.Date
	}
	if p.ProjectID != nil {
		project = strconv.FormatInt(*p.ProjectID, 10)
	}
	return "tasks:" + strconv.FormatInt(p.UserID, 10) + ":" + date + ":" + project
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func ptr[T any](v T) *T {
	return &v
}

package core_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

var errInjected = errors.New("injected storage failure")

// fakeDB is an in-memory core.DB. InTx serializes transactions and restores
// a snapshot when fn fails, like a rolled back database transaction.
type fakeDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID int64

	users     map[int64]core.User
	projects  map[int64]core.Project
	tasks     map[int64]core.Task
	documents map[int64]core.Document

	locks []string
	// fail makes the named method return errInjected.
	fail map[string]bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		nextID:    1,
		users:     make(map[int64]core.User),
		projects:  make(map[int64]core.Project),
		tasks:     make(map[int64]core.Task),
		documents: make(map[int64]core.Document),
		fail:      make(map[string]bool),
	}
}

func cloneTask(t core.Task) core.Task {
	out := t
	if t.Date != nil {
		d := *t.Date
		out.Date = &d
	}
	if t.ProjectID != nil {
		p := *t.ProjectID
		out.ProjectID = &p
	}
	if t.ParentID != nil {
		p := *t.ParentID
		out.ParentID = &p
	}
	return out
}

func cloneDocument(d core.Document) core.Document {
	out := d
	if d.ParentID != nil {
		p := *d.ParentID
		out.ParentID = &p
	}
	return out
}

func (db *fakeDB) id() int64 {
	id := db.nextID
	db.nextID++
	return id
}

func (db *fakeDB) failing(method string) error {
	if db.fail[method] {
		return errInjected
	}
	return nil
}

func (db *fakeDB) Ping(context.Context) error {
	return nil
}

func (db *fakeDB) InTx(ctx context.Context, fn func(repo core.Repository) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snapshot := struct {
		nextID    int64
		users     map[int64]core.User
		projects  map[int64]core.Project
		tasks     map[int64]core.Task
		documents map[int64]core.Document
	}{db.nextID, maps.Clone(db.users), maps.Clone(db.projects), make(map[int64]core.Task), make(map[int64]core.Document)}
	for id, t := range db.tasks {
		snapshot.tasks[id] = cloneTask(t)
	}
	for id, d := range db.documents {
		snapshot.documents[id] = cloneDocument(d)
	}
	db.mu.Unlock()

	err := fn(db)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		db.mu.Lock()
		db.nextID = snapshot.nextID
		db.users = snapshot.users
		db.projects = snapshot.projects
		db.tasks = snapshot.tasks
		db.documents = snapshot.documents
		db.mu.Unlock()
	}
	return err
}

func (db *fakeDB) Lock(_ context.Context, keys ...string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failing("Lock"); err != nil {
		return err
	}
	db.locks = append(db.locks, keys...)
	return nil
}

// Tasks

func (db *fakeDB) GetTask(_ context.Context, id, userID int64) (core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[id]
	if !ok || t.UserID != userID {
		return core.Task{}, core.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (db *fakeDB) ListTasks(_ context.Context, userID int64, f core.ListTasksFilter) ([]core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []core.Task
	for _, t := range db.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Date != nil && (t.Date == nil || *t.Date != *f.Date) {
			continue
		}
		if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
			continue
		}
		if f.ParentID != nil && (t.ParentID == nil || *t.ParentID != *f.ParentID) {
			continue
		}
		if f.Undated && t.Date != nil {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

func (db *fakeDB) ListChildTasks(_ context.Context, parentID, userID int64) ([]core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []core.Task
	for _, t := range db.tasks {
		if t.UserID == userID && t.ParentID != nil && *t.ParentID == parentID {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (db *fakeDB) CountTasksOnDate(_ context.Context, userID int64, date string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, t := range db.tasks {
		if t.UserID == userID && t.Date != nil && *t.Date == date {
			n++
		}
	}
	return n, nil
}

func (db *fakeDB) MaxOrderIndex(_ context.Context, p core.Partition, exceptID int64) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	last := 0
	for _, t := range db.tasks {
		if t.ID != exceptID && t.Partition().Equal(p) && t.OrderIndex > last {
			last = t.OrderIndex
		}
	}
	return last, nil
}

func (db *fakeDB) ShiftOrder(_ context.Context, p core.Partition, from, delta int, exceptID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failing("ShiftOrder"); err != nil {
		return err
	}
	for id, t := range db.tasks {
		if t.ID != exceptID && t.Partition().Equal(p) && t.OrderIndex >= from {
			t.OrderIndex += delta
			db.tasks[id] = t
		}
	}
	return nil
}

func (db *fakeDB) InsertTask(_ context.Context, t core.Task) (core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failing("InsertTask"); err != nil {
		return core.Task{}, err
	}
	t.ID = db.id()
	db.tasks[t.ID] = cloneTask(t)
	return cloneTask(t), nil
}

func (db *fakeDB) UpdateTask(_ context.Context, t core.Task) (core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failing("UpdateTask"); err != nil {
		return core.Task{}, err
	}
	cur, ok := db.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return core.Task{}, core.ErrTaskNotFound
	}
	db.tasks[t.ID] = cloneTask(t)
	return cloneTask(t), nil
}

func (db *fakeDB) DeleteTask(_ context.Context, id, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[id]
	if !ok || t.UserID != userID {
		return core.ErrTaskNotFound
	}
	db.deleteTaskCascade(id)
	return nil
}

// deleteTaskCascade mirrors ON DELETE CASCADE on tasks.parent_id.
func (db *fakeDB) deleteTaskCascade(id int64) {
	delete(db.tasks, id)
	for childID, t := range db.tasks {
		if t.ParentID != nil && *t.ParentID == id {
			db.deleteTaskCascade(childID)
		}
	}
}

// Documents

func (db *fakeDB) GetDocument(_ context.Context, id, userID int64) (core.Document, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	d, ok := db.documents[id]
	if !ok || d.UserID != userID {
		return core.Document{}, core.ErrDocumentNotFound
	}
	return cloneDocument(d), nil
}

func (db *fakeDB) ListDocuments(_ context.Context, userID int64, f core.ListDocumentsFilter) ([]core.Document, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []core.Document
	for _, d := range db.documents {
		if d.UserID != userID {
			continue
		}
		if f.ParentID != nil && (d.ParentID == nil || *d.ParentID != *f.ParentID) {
			continue
		}
		if f.RootsOnly && d.ParentID != nil {
			continue
		}
		out = append(out, cloneDocument(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (db *fakeDB) ListChildDocumentIDs(_ context.Context, parentID, userID int64) ([]int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []int64
	for _, d := range db.documents {
		if d.UserID == userID && d.ParentID != nil && *d.ParentID == parentID {
			out = append(out, d.ID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (db *fakeDB) InsertDocument(_ context.Context, d core.Document) (core.Document, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	d.ID = db.id()
	db.documents[d.ID] = cloneDocument(d)
	return cloneDocument(d), nil
}

func (db *fakeDB) UpdateDocument(_ context.Context, d core.Document) (core.Document, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur, ok := db.documents[d.ID]
	if !ok || cur.UserID != d.UserID {
		return core.Document{}, core.ErrDocumentNotFound
	}
	db.documents[d.ID] = cloneDocument(d)
	return cloneDocument(d), nil
}

func (db *fakeDB) DeleteDocument(_ context.Context, id, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	d, ok := db.documents[id]
	if !ok || d.UserID != userID {
		return core.ErrDocumentNotFound
	}
	for _, other := range db.documents {
		if other.ParentID != nil && *other.ParentID == id {
			// ON DELETE RESTRICT
			return errInjected
		}
	}
	delete(db.documents, id)
	return nil
}

// Projects

func (db *fakeDB) GetProject(_ context.Context, id, userID int64) (core.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.projects[id]
	if !ok || p.UserID != userID {
		return core.Project{}, core.ErrProjectNotFound
	}
	return p, nil
}

func (db *fakeDB) ListProjects(_ context.Context, userID int64) ([]core.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []core.Project
	for _, p := range db.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (db *fakeDB) InsertProject(_ context.Context, p core.Project) (core.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p.ID = db.id()
	db.projects[p.ID] = p
	return p, nil
}

func (db *fakeDB) UpdateProject(_ context.Context, p core.Project) (core.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur, ok := db.projects[p.ID]
	if !ok || cur.UserID != p.UserID {
		return core.Project{}, core.ErrProjectNotFound
	}
	db.projects[p.ID] = p
	return p, nil
}

func (db *fakeDB) DeleteProject(_ context.Context, id, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.projects[id]
	if !ok || p.UserID != userID {
		return core.ErrProjectNotFound
	}
	delete(db.projects, id)
	for taskID, t := range db.tasks {
		if t.ProjectID != nil && *t.ProjectID == id {
			delete(db.tasks, taskID)
		}
	}
	return nil
}

// Users

func (db *fakeDB) InsertUser(_ context.Context, u core.User) (core.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, other := range db.users {
		if other.Email == u.Email {
			return core.User{}, core.ErrUserAlreadyExists
		}
	}
	u.ID = db.id()
	db.users[u.ID] = u
	return u, nil
}

func (db *fakeDB) GetUser(_ context.Context, id int64) (core.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (db *fakeDB) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

// helpers

var (
	fixedNow   = time.Date(2025, 9, 28, 12, 0, 0, 0, time.UTC)
	fixedClock = core.ClockFunc(func() time.Time { return fixedNow })
)

func newServiceWithFakeDB(opts ...core.Option) (*fakeDB, *core.Service) {
	db := newFakeDB()
	opts = append([]core.Option{core.WithClock(fixedClock)}, opts...)
	return db, core.NewService(db, opts...)
}

// partitionOrder returns task ids of p sorted by order_index and the
// indices themselves.
func (db *fakeDB) partitionOrder(p core.Partition) ([]int64, []int) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var rows []core.Task
	for _, t := range db.tasks {
		if t.Partition().Equal(p) {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OrderIndex < rows[j].OrderIndex })

	ids := make([]int64, 0, len(rows))
	indices := make([]int, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
		indices = append(indices, t.OrderIndex)
	}
	return ids, indices
}

// allPartitionsDense reports whether every partition holds exactly 1..n.
func (db *fakeDB) allPartitionsDense() bool {
	db.mu.Lock()
	byKey := make(map[string][]int)
	for _, t := range db.tasks {
		k := t.Partition().Key()
		byKey[k] = append(byKey[k], t.OrderIndex)
	}
	db.mu.Unlock()

	for _, indices := range byKey {
		slices.Sort(indices)
		for i, v := range indices {
			if v != i+1 {
				return false
			}
		}
	}
	return true
}

func strPtr(v string) *string {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}
